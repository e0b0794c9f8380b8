// Package password provides password hashing and verification.
//
// It defines a Hasher interface with two implementations:
//   - BcryptHasher: industry-standard bcrypt hashing (default)
//   - Argon2Hasher: modern argon2id hashing
//
// Both produce salted, opaque hashes: hashing the same plaintext twice
// yields different outputs, and verification is constant time with respect
// to content. Password strength policy is enforced by the validation
// package, not here; the hasher only guards algorithm hard limits and
// reports them with sentinel errors callers can classify.
//
// Usage:
//
//	hasher := password.NewBcryptHasher()
//	hash, err := hasher.Hash("my-password")
//	err = hasher.Verify("my-password", hash)
package password
