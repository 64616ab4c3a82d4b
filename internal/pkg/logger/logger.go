// Package logger emits one JSON object per log entry and scrubs values
// before they land: Graph API credentials and lead contact addresses
// must never reach log storage in the clear.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Level orders log severities.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// ParseLevel maps a level name to its Level. Unknown names mean INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger writes structured entries to a single writer under a mutex.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	level     Level
	redactPII bool
}

var defaultLogger = &Logger{
	out:       os.Stderr,
	level:     ParseLevel(os.Getenv("LOG_LEVEL")),
	redactPII: true,
}

// SetLevel sets the minimum level for the default logger.
func SetLevel(l Level) { defaultLogger.level = l }

// SetRedactPII toggles value scrubbing for the default logger.
func SetRedactPII(r bool) { defaultLogger.redactPII = r }

// SetOutput redirects the default logger, returning the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := defaultLogger.out
	defaultLogger.out = w
	return prev
}

// Debug emits a DEBUG-level entry.
func Debug(msg string, fields ...interface{}) { defaultLogger.log(DEBUG, msg, fields...) }

// Info emits an INFO-level entry.
func Info(msg string, fields ...interface{}) { defaultLogger.log(INFO, msg, fields...) }

// Warn emits a WARN-level entry.
func Warn(msg string, fields ...interface{}) { defaultLogger.log(WARN, msg, fields...) }

// Error emits an ERROR-level entry.
func Error(msg string, fields ...interface{}) { defaultLogger.log(ERROR, msg, fields...) }

func (l *Logger) log(level Level, msg string, fields ...interface{}) {
	if level < l.level {
		return
	}

	entry := map[string]interface{}{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"level": levelNames[level],
		"msg":   msg,
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		entry[key] = l.fieldValue(key, fields[i+1])
	}
	if len(fields)%2 == 1 {
		entry[fmt.Sprintf("%v", fields[len(fields)-1])] = "(MISSING)"
	}

	data, err := json.Marshal(entry)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"level":%q,"msg":%q}`, levelNames[level], msg))
	}
	l.mu.Lock()
	fmt.Fprintln(l.out, string(data))
	l.mu.Unlock()
}

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// fieldValue scrubs a field before it enters the entry. Credential keys
// and contact keys are masked by name; free-form strings are scanned for
// embedded addresses. Non-string values keep their JSON type.
func (l *Logger) fieldValue(key string, v interface{}) interface{} {
	if !l.redactPII {
		return v
	}
	lk := strings.ToLower(key)
	if strings.Contains(lk, "token") || strings.Contains(lk, "secret") || strings.Contains(lk, "api_key") {
		return RedactToken(fmt.Sprintf("%v", v))
	}
	if strings.Contains(lk, "email") || strings.Contains(lk, "lead_contact") {
		return RedactEmail(fmt.Sprintf("%v", v))
	}
	switch val := v.(type) {
	case string:
		return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
	case error:
		return emailRegex.ReplaceAllStringFunc(val.Error(), RedactEmail)
	default:
		return v
	}
}
