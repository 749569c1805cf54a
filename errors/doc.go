// Package errors provides the structured error type shared by clientkit
// packages. Every error carries a machine-readable code so callers can
// tell a misconfigured registration apart from a failing settings provider
// or a missing container entry without matching on message text.
package errors
