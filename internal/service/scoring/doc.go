// Package scoring implements the ad risk scoring engine.
//
// A run fetches recent per-ad metrics from the platform, aggregates a
// short current window against a trailing baseline window, computes a
// weighted risk score per ad unit, and rolls the results up into a
// portfolio summary with budget-eater flags and a ranked list of
// creatives ready for rotation.
//
// The calculator itself is pure: identical snapshots and config always
// produce identical scores. Everything stateful (persistence, the Graph
// API, Redis, locks) is reached through interfaces defined in this
// package; implementations live in repository/postgres/, meta/, and
// the pkg helpers. The service layer should never import handler code.
package scoring
