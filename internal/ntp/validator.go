package ntp

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	hostnamePattern  = regexp.MustCompile(`^[a-zA-Z0-9_]([a-zA-Z0-9\-_]{0,61}[a-zA-Z0-9_])?(\.[a-zA-Z0-9_]([a-zA-Z0-9\-_]{0,61}[a-zA-Z0-9_])?)*\.?$`)
	ipLiteralPattern = regexp.MustCompile(`^[0-9a-fA-F:.]+(%[a-zA-Z0-9_.\-]+)?$`)
	maliciousPattern = regexp.MustCompile(`[;&|<>$` + "`" + `\s]`)
)

// maxHostLength is the longest DNS name allowed
const maxHostLength = 253

// ValidateHost checks a server host argument before any network activity
func ValidateHost(host string) error {
	if host == "" {
		return argumentError("host", errors.New("server address is empty"))
	}

	if len(host) > maxHostLength {
		return argumentError("host", errors.New("server address is too long"))
	}

	if strings.Contains(host, "\x00") {
		return argumentError("host", errors.New("server address contains null byte"))
	}

	if maliciousPattern.MatchString(host) {
		return argumentError("host", errors.New("server address contains invalid characters"))
	}

	if strings.Contains(host, ":") {
		// IPv6 literal, possibly bracketed
		trimmed := strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
		if !ipLiteralPattern.MatchString(trimmed) {
			return argumentError("host", errors.New("invalid server address format"))
		}
		return nil
	}

	if !hostnamePattern.MatchString(host) {
		return argumentError("host", errors.New("invalid server address format"))
	}

	return nil
}

// NormalizeHost strips the brackets of an IPv6 literal
func NormalizeHost(host string) string {
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return host[1 : len(host)-1]
	}
	return host
}

// ParsePort parses a destination port. Any unsigned 16-bit value is
// accepted, including 0.
func ParsePort(s string) (uint16, error) {
	if s == "" {
		return DefaultPort, nil
	}
	p, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, argumentError("port", err)
	}
	return uint16(p), nil
}

// ValidateTimeout checks that the read timeout is usable
func ValidateTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	if timeout < 500*time.Millisecond {
		return errors.New("timeout too short (minimum 500ms)")
	}

	if timeout > 60*time.Second {
		return errors.New("timeout too long (maximum 60s)")
	}

	return nil
}

func argumentError(what string, err error) *Error {
	return &Error{Kind: ErrInvalidArgument, Detail: what, Err: err}
}
