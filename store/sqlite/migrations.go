package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the demurrage store.
var Migrations = migrate.NewGroup("demurrage")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_demurrage_balances",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS demurrage_balances (
    currency_id TEXT NOT NULL,
    account_id  TEXT NOT NULL,
    principal   TEXT NOT NULL,
    last_update INTEGER NOT NULL DEFAULT 0,
    updated_at  TEXT NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (currency_id, account_id)
);

CREATE INDEX IF NOT EXISTS idx_demurrage_balances_account ON demurrage_balances (account_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS demurrage_balances`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_demurrage_issuance",
			Version: "20260101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS demurrage_issuance (
    currency_id TEXT PRIMARY KEY,
    principal   TEXT NOT NULL,
    last_update INTEGER NOT NULL DEFAULT 0,
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS demurrage_issuance`)
				return err
			},
		},
	)
}
