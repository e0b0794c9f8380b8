package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/wellmind/authcore/errors"
	"github.com/wellmind/authcore/password"
	"github.com/wellmind/authcore/validation"
)

// MemoryStore implements AccountStore with an in-process map. It honors the
// same contract as MongoStore: insertion and the email-uniqueness check
// happen under one lock, so concurrent registrations for the same email
// resolve to exactly one winner.
type MemoryStore struct {
	mu      sync.Mutex
	byID    map[string]*Account
	byEmail map[string]string // normalized email -> id
	hasher  password.Hasher
}

// NewMemoryStore creates an empty in-memory account store.
func NewMemoryStore(hasher password.Hasher) *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Account),
		byEmail: make(map[string]string),
		hasher:  hasher,
	}
}

func (s *MemoryStore) Create(ctx context.Context, data NewAccount) (*Account, error) {
	acct, err := newAccountRecord(data, s.hasher)
	if err != nil {
		return nil, err
	}
	return s.insert(acct)
}

// insert adds a prepared record, enforcing email uniqueness atomically
// under the store lock.
func (s *MemoryStore) insert(acct *Account) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[acct.Email]; exists {
		return nil, errors.EmailConflict()
	}

	acct.ID = bson.NewObjectID()
	id := acct.ID.Hex()
	s.byID[id] = acct
	s.byEmail[acct.Email] = id

	copied := *acct
	return &copied, nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[validation.NormalizeEmail(email)]
	if !ok {
		return nil, errors.AccountNotFound()
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byID[id]
	if !ok {
		return nil, errors.AccountNotFound()
	}
	copied := *acct
	return &copied, nil
}

func (s *MemoryStore) UpdateFields(ctx context.Context, id string, patch AccountPatch) (bool, error) {
	if patch.IsEmpty() {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byID[id]
	if !ok {
		return false, nil
	}

	if patch.Email != nil {
		email := validation.NormalizeEmail(*patch.Email)
		if other, exists := s.byEmail[email]; exists && other != id {
			return false, errors.EmailConflict()
		}
		delete(s.byEmail, acct.Email)
		acct.Email = email
		s.byEmail[email] = id
	}
	if patch.Name != nil {
		acct.Name = *patch.Name
	}
	if patch.Role != nil {
		acct.Role = *patch.Role
	}
	acct.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	delete(s.byEmail, acct.Email)
	delete(s.byID, id)
	return true, nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]Account, 0, len(s.byID))
	for _, acct := range s.byID {
		copied := *acct
		copied.PasswordHash = ""
		accounts = append(accounts, copied)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (s *MemoryStore) SeedTestAccounts(ctx context.Context) error {
	for _, seed := range seedAccounts() {
		acct, err := seed.record(s.hasher)
		if err != nil {
			return err
		}
		if _, err := s.insert(acct); err != nil {
			if errors.CodeOf(err) == errors.ErrCodeConflict {
				continue
			}
			return err
		}
	}
	return nil
}
