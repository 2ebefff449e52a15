package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/demurrage"
	"github.com/xraph/demurrage/balance"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/id"
	demurragestore "github.com/xraph/demurrage/store"
)

// Collection name constants.
const (
	colBalances = "demurrage_balances"
	colIssuance = "demurrage_issuance"
)

// compile-time interface check
var _ demurragestore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all demurrage collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("demurrage/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Balance Store ====================

func (s *Store) GetBalance(ctx context.Context, c currency.ID, account id.AccountID) (*balance.Entry, error) {
	var m balanceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": balanceKey(c, account)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, demurrage.ErrEntryNotFound
		}
		return nil, fmt.Errorf("demurrage/mongo: get balance: %w", err)
	}
	h, err := fromBalanceModel(&m)
	if err != nil {
		return nil, err
	}
	return &h.Entry, nil
}

func (s *Store) PutBalance(ctx context.Context, c currency.ID, account id.AccountID, e balance.Entry) error {
	m := toBalanceModel(c, account, e)

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		SetUpdate(bson.M{"$set": bson.M{
			"currency_id": m.CurrencyID,
			"account_id":  m.AccountID,
			"principal":   m.Principal,
			"last_update": m.LastUpdate,
			"updated_at":  m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("demurrage/mongo: put balance: %w", err)
	}
	return nil
}

func (s *Store) ListBalances(ctx context.Context, c currency.ID) ([]balance.Holding, error) {
	var models []balanceModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"currency_id": c.String()}).
		Sort(bson.D{{Key: "account_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("demurrage/mongo: list balances: %w", err)
	}

	result := make([]balance.Holding, len(models))
	for i := range models {
		h, err := fromBalanceModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = h
	}
	return result, nil
}

// ==================== Issuance Store ====================

func (s *Store) GetIssuance(ctx context.Context, c currency.ID) (*balance.Entry, error) {
	var m issuanceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": c.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, demurrage.ErrEntryNotFound
		}
		return nil, fmt.Errorf("demurrage/mongo: get issuance: %w", err)
	}
	e, err := fromIssuanceModel(&m)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) PutIssuance(ctx context.Context, c currency.ID, e balance.Entry) error {
	m := toIssuanceModel(c, e)

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		SetUpdate(bson.M{"$set": bson.M{
			"principal":   m.Principal,
			"last_update": m.LastUpdate,
			"updated_at":  m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("demurrage/mongo: put issuance: %w", err)
	}
	return nil
}

func (s *Store) ListCurrencies(ctx context.Context) ([]currency.ID, error) {
	var models []issuanceModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("demurrage/mongo: list currencies: %w", err)
	}

	result := make([]currency.ID, len(models))
	for i := range models {
		c, err := currency.ParseID(models[i].ID)
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all demurrage collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colBalances: {
			{
				Keys:    bson.D{{Key: "currency_id", Value: 1}, {Key: "account_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "account_id", Value: 1}}},
		},
		colIssuance: {},
	}
}
