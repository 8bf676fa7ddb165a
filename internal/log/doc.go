// Package log provides an slog handler that masks sensitive values.
//
// A scan handles credentials from the config file (cookies, auth headers)
// and observes third-party URLs that may carry identifiers. The
// SecureHandler masks:
//   - values of credential keys such as authorization, token or password
//   - cookie values, keeping the cookie names
//   - values that look like bearer tokens, JWTs or API keys
//   - user info and identifying query parameters in URLs
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("request", "cookie", "_ga=GA1.2.3; sid=42")
//	// cookie="_ga=***REDACTED***; sid=***REDACTED***"
package log
