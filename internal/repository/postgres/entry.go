package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

var _ model.EntryStore = (*EntryRepository)(nil)

// DBTX is the subset of database/sql used by the repository.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type EntryRepository struct {
	db DBTX
}

func NewEntryRepository(db DBTX) *EntryRepository {
	return &EntryRepository{
		db: db,
	}
}

const entryColumns = `owner_id, record_id, label, location, account_name, secret_ciphertext, notes, created_at, updated_at`

func (r *EntryRepository) Create(ctx context.Context, entry model.Entry) error {
	query := `
		INSERT INTO vault_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (owner_id, record_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		entry.OwnerID, entry.ID, entry.Label, entry.Location, entry.AccountName,
		entry.SecretCiphertext, entry.Notes, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	if n == 0 {
		return model.ErrConflict
	}
	return nil
}

// Replace overwrites every mutable column. created_at is left untouched.
func (r *EntryRepository) Replace(ctx context.Context, entry model.Entry) error {
	const query = `
		UPDATE vault_entries
		SET label = $3, location = $4, account_name = $5, secret_ciphertext = $6, notes = $7, updated_at = $8
		WHERE owner_id = $1 AND record_id = $2`

	res, err := r.db.ExecContext(ctx, query,
		entry.OwnerID, entry.ID, entry.Label, entry.Location, entry.AccountName,
		entry.SecretCiphertext, entry.Notes, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *EntryRepository) Get(ctx context.Context, ownerID, recordID uuid.UUID) (model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries WHERE owner_id = $1 AND record_id = $2`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, ownerID, recordID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Entry{}, model.ErrNotFound
		}
		return model.Entry{}, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

func (r *EntryRepository) Delete(ctx context.Context, ownerID, recordID uuid.UUID) error {
	const query = `DELETE FROM vault_entries WHERE owner_id = $1 AND record_id = $2`

	res, err := r.db.ExecContext(ctx, query, ownerID, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *EntryRepository) Scan(ctx context.Context, ownerID uuid.UUID) ([]model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries WHERE owner_id = $1 ORDER BY label, record_id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (model.Entry, error) {
	var e model.Entry
	err := row.Scan(
		&e.OwnerID, &e.ID, &e.Label, &e.Location, &e.AccountName,
		&e.SecretCiphertext, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return model.Entry{}, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}
