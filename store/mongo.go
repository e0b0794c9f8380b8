package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wellmind/authcore/errors"
	"github.com/wellmind/authcore/logger"
	"github.com/wellmind/authcore/password"
	"github.com/wellmind/authcore/validation"
)

// MongoStore implements AccountStore on a MongoDB collection.
type MongoStore struct {
	coll   *mongo.Collection
	hasher password.Hasher
	log    *logger.Logger
}

// Connect establishes a MongoDB client and verifies connectivity with a
// ping bounded by the configured connect timeout.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ConnectTimeout)*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return client, nil
}

// NewMongoStore creates a MongoStore over the configured database and
// collection and ensures the unique email index exists. The index is what
// makes duplicate-email rejection atomic with the insert.
func NewMongoStore(ctx context.Context, client *mongo.Client, cfg Config, hasher password.Hasher, log *logger.Logger) (*MongoStore, error) {
	coll := client.Database(cfg.Database).Collection(cfg.Collection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("store: ensure email index: %w", err)
	}

	return &MongoStore{
		coll:   coll,
		hasher: hasher,
		log:    log.WithComponent("store"),
	}, nil
}

func (s *MongoStore) Create(ctx context.Context, data NewAccount) (*Account, error) {
	acct, err := newAccountRecord(data, s.hasher)
	if err != nil {
		return nil, err
	}

	res, err := s.coll.InsertOne(ctx, acct)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, errors.EmailConflict()
		}
		return nil, s.storeErr("create", err)
	}

	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		acct.ID = oid
	}
	s.log.Debug("Account created", logger.Fields(
		logger.FieldAccountID, acct.ID.Hex(),
		logger.FieldEmail, acct.Email,
		logger.FieldRole, acct.Role,
	))
	return acct, nil
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var acct Account
	err := s.coll.FindOne(ctx, bson.D{{Key: "email", Value: validation.NormalizeEmail(email)}}).Decode(&acct)
	if err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.AccountNotFound()
		}
		return nil, s.storeErr("find_by_email", err)
	}
	return &acct, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*Account, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		// Malformed ids are indistinguishable from missing records.
		return nil, errors.AccountNotFound()
	}

	var acct Account
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&acct)
	if err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.AccountNotFound()
		}
		return nil, s.storeErr("find_by_id", err)
	}
	return &acct, nil
}

func (s *MongoStore) UpdateFields(ctx context.Context, id string, patch AccountPatch) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	if patch.IsEmpty() {
		return false, nil
	}

	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Email != nil {
		set = append(set, bson.E{Key: "email", Value: validation.NormalizeEmail(*patch.Email)})
	}
	if patch.Role != nil {
		set = append(set, bson.E{Key: "role", Value: *patch.Role})
	}

	res, err := s.coll.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, errors.EmailConflict()
		}
		return false, s.storeErr("update_fields", err)
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, s.storeErr("delete", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) ListAll(ctx context.Context) ([]Account, error) {
	// Hash excluded here at the projection level, not just in responses.
	opts := options.Find().SetProjection(bson.D{{Key: "password_hash", Value: 0}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, s.storeErr("list_all", err)
	}
	defer cur.Close(ctx)

	accounts := make([]Account, 0)
	if err := cur.All(ctx, &accounts); err != nil {
		return nil, s.storeErr("list_all", err)
	}
	return accounts, nil
}

func (s *MongoStore) SeedTestAccounts(ctx context.Context) error {
	for _, seed := range seedAccounts() {
		_, err := s.FindByEmail(ctx, seed.email)
		if err == nil {
			continue
		}
		if errors.CodeOf(err) != errors.ErrCodeNotFound {
			return err
		}

		acct, err := seed.record(s.hasher)
		if err != nil {
			return err
		}
		if _, err := s.coll.InsertOne(ctx, acct); err != nil {
			// Lost a race against another seeding process; the account exists.
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return s.storeErr("seed", err)
		}
		s.log.Info("Test account created", logger.Fields(
			logger.FieldEmail, seed.email,
			logger.FieldRole, seed.role,
		))
	}
	return nil
}

// storeErr classifies a driver error: connectivity problems surface as
// STORE_UNAVAILABLE (retryable, by the caller, never by the core), anything
// else as INTERNAL.
func (s *MongoStore) storeErr(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || stderrors.Is(err, context.DeadlineExceeded) {
		s.log.Error("Store unreachable", logger.ErrorFields(op, err))
		return errors.StoreUnavailable(err)
	}
	s.log.Error("Store operation failed", logger.ErrorFields(op, err))
	return errors.Internal(err)
}
