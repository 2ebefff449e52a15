package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/demurrage"
	"github.com/xraph/demurrage/balance"
	"github.com/xraph/demurrage/currency"
	"github.com/xraph/demurrage/id"
	demurragestore "github.com/xraph/demurrage/store"
)

// compile-time interface check
var _ demurragestore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("demurrage/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("demurrage/postgres: migration failed: %w", err)
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
	m := new(balanceModel)
	err := s.pg.NewSelect(m).
		Where("currency_id = $1", c.String()).
		Where("account_id = $2", account.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, demurrage.ErrEntryNotFound
		}
		return nil, err
	}
	h, err := fromBalanceModel(m)
	if err != nil {
		return nil, err
	}
	return &h.Entry, nil
}

func (s *Store) PutBalance(ctx context.Context, c currency.ID, account id.AccountID, e balance.Entry) error {
	m := toBalanceModel(c, account, e)
	_, err := s.pg.NewInsert(m).
		OnConflict("(currency_id, account_id) DO UPDATE").
		Set("principal = EXCLUDED.principal").
		Set("last_update = EXCLUDED.last_update").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) ListBalances(ctx context.Context, c currency.ID) ([]balance.Holding, error) {
	var models []balanceModel
	err := s.pg.NewSelect(&models).
		Where("currency_id = $1", c.String()).
		OrderExpr("account_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
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
	m := new(issuanceModel)
	err := s.pg.NewSelect(m).
		Where("currency_id = $1", c.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, demurrage.ErrEntryNotFound
		}
		return nil, err
	}
	e, err := fromIssuanceModel(m)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) PutIssuance(ctx context.Context, c currency.ID, e balance.Entry) error {
	m := toIssuanceModel(c, e)
	_, err := s.pg.NewInsert(m).
		OnConflict("(currency_id) DO UPDATE").
		Set("principal = EXCLUDED.principal").
		Set("last_update = EXCLUDED.last_update").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) ListCurrencies(ctx context.Context) ([]currency.ID, error) {
	var models []issuanceModel
	if err := s.pg.NewSelect(&models).OrderExpr("currency_id ASC").Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]currency.ID, len(models))
	for i := range models {
		c, err := currency.ParseID(models[i].CurrencyID)
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

// ==================== Helpers ====================

func now() time.Time {
	return time.Now().UTC()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
