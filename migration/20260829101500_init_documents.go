package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitDocuments, downInitDocuments)
}

func upInitDocuments(ctx context.Context, tx *sql.Tx) error {
	// Create documents table
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE documents (
			path VARCHAR(512) PRIMARY KEY,
			value JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	// Path prefix lookups ("users/{id}/trips/...") use LIKE on the key.
	_, err = tx.ExecContext(ctx, `CREATE INDEX idx_documents_path_pattern ON documents(path varchar_pattern_ops);`)
	if err != nil {
		return err
	}

	return nil
}

func downInitDocuments(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS documents;`)
	if err != nil {
		return err
	}

	return nil
}
