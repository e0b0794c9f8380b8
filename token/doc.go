// Package token issues and verifies the signed, time-limited bearer tokens
// that bind a request to an account identity.
//
// A token is a JWT carrying {subject: accountID, expiresAt: now + TTL},
// signed with a process-wide secret. Tokens are never stored server-side;
// verification is pure computation and there is no revocation list.
//
// Usage:
//
//	svc, err := token.NewService(&token.Config{Secret: secret})
//	tok, err := svc.Issue(accountID)
//	accountID, err := svc.Verify(tok)
package token
