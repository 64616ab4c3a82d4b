package logger

import "strings"

// RedactToken keeps a four-character prefix of an API credential so
// operators can tell which token was in play without the log ever
// holding a usable one.
func RedactToken(token string) string {
	if len(token) <= 4 {
		return "***"
	}
	return token[:4] + "***"
}

// RedactEmail masks the local part of an address and keeps the domain.
// Local parts of one or two characters are masked fully; anything that
// does not look like an address is masked entirely.
func RedactEmail(email string) string {
	if strings.Count(email, "@") != 1 {
		return "***@***"
	}
	at := strings.Index(email, "@")
	local, domain := email[:at], email[at+1:]
	if len(local) <= 2 {
		return "***@" + domain
	}
	return local[:2] + "***@" + domain
}
