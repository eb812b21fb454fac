package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-studio/internal/storage"
)

// table returns the table backing a collection. Collection names are never
// interpolated into SQL unless they are known.
func table(collection string) (string, error) {
	if !storage.ValidCollection(collection) {
		return "", fmt.Errorf("unknown collection %q", collection)
	}
	return pgx.Identifier{collection}.Sanitize(), nil
}

func selectQuery(tbl string, f storage.Filter) (string, []any) {
	order := "ASC"
	if f.NewestFirst {
		order = "DESC"
	}
	query := fmt.Sprintf(`SELECT id, user_id, content, created_at FROM %s WHERE user_id = $1 ORDER BY created_at %s, id %s`, tbl, order, order)
	args := []any{f.UserID}
	if f.Limit > 0 {
		query += " LIMIT $2"
		args = append(args, f.Limit)
	}
	return query, args
}

// Insert implements storage.Store
func (db *DB) Insert(ctx context.Context, collection string, rec storage.Record) (storage.Record, error) {
	tbl, err := table(collection)
	if err != nil {
		return storage.Record{}, &storage.Error{Op: "insert", Collection: collection, Cause: err}
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	err = db.pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, user_id, content) VALUES ($1, $2, $3) RETURNING created_at`, tbl),
		rec.ID, rec.UserID, []byte(rec.Content),
	).Scan(&rec.CreatedAt)
	if err != nil {
		return storage.Record{}, &storage.Error{Op: "insert", Collection: collection, Cause: err}
	}
	rec.Collection = collection
	return rec, nil
}

// Select implements storage.Store
func (db *DB) Select(ctx context.Context, collection string, f storage.Filter) ([]storage.Record, error) {
	tbl, err := table(collection)
	if err != nil {
		return nil, &storage.Error{Op: "select", Collection: collection, Cause: err}
	}

	query, args := selectQuery(tbl, f)
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &storage.Error{Op: "select", Collection: collection, Cause: err}
	}
	defer rows.Close()

	records := []storage.Record{}
	for rows.Next() {
		rec := storage.Record{Collection: collection}
		var content []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &content, &rec.CreatedAt); err != nil {
			return nil, &storage.Error{Op: "select", Collection: collection, Cause: fmt.Errorf("failed to scan record: %w", err)}
		}
		rec.Content = content
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.Error{Op: "select", Collection: collection, Cause: err}
	}
	return records, nil
}

// Delete implements storage.Store
func (db *DB) Delete(ctx context.Context, collection string, userID string, id uuid.UUID) error {
	tbl, err := table(collection)
	if err != nil {
		return &storage.Error{Op: "delete", Collection: collection, Cause: err}
	}

	result, err := db.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, tbl),
		id, userID,
	)
	if err != nil {
		return &storage.Error{Op: "delete", Collection: collection, Cause: err}
	}
	if result.RowsAffected() == 0 {
		return &storage.Error{Op: "delete", Collection: collection, Cause: storage.ErrNotFound}
	}
	return nil
}

var _ storage.Store = (*DB)(nil)
