// Package validation enforces the credential format rules for accounts:
// email shape, password strength, display-name length, and role membership.
//
// The Validate* functions are pure and total: they accept any string and
// return a boolean, never an error. ValidateUserData aggregates them and
// reports the first failing reason in a fixed order. The package also
// provides a chainable field Validator and a struct-tag validator used by
// the HTTP layer for request shapes.
package validation
