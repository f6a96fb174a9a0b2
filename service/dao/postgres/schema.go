package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS flowcore_records (
    collection TEXT NOT NULL,
    id         TEXT NOT NULL,
    attributes JSONB NOT NULL DEFAULT '{}',
    data       JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_flowcore_records_attributes ON flowcore_records USING GIN (attributes);
`

// CreateSchema creates the records table if it does not exist.
func CreateSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the records table.
func DropSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `DROP TABLE IF EXISTS flowcore_records`)
	return err
}
