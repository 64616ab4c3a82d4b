// Package httputil carries the JSON request/response helpers shared by
// the monitor's handlers, so every endpoint speaks the same envelope and
// server-side failures are logged without leaking detail to callers.
package httputil
