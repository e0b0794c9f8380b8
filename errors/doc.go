// Package errors provides the unified error type for the authentication
// core. It implements structured errors with machine-readable codes, HTTP
// status mapping, and retryable detection.
//
// Error messages never contain plaintext passwords, password hashes, or
// signing secrets. Credential failures are intentionally undifferentiated:
// InvalidCredentials is returned both when the account does not exist and
// when the password is wrong, so callers cannot enumerate accounts.
package errors
