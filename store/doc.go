// Package store owns persistence of account records.
//
// AccountStore is the persistence abstraction; MongoStore backs it with a
// MongoDB collection and MemoryStore with an in-process map for tests and
// local development. Both enforce the same contract: exactly one account
// per normalized (lowercased, trimmed) email, guaranteed atomically with
// the insert itself rather than by a separate existence check, so two
// concurrent registrations for the same email cannot both succeed.
//
// The store is the only component that ever sees a plaintext password, and
// only for the duration of Create: it validates, hashes, and persists the
// hash. ListAll excludes the password hash at the projection level.
package store
