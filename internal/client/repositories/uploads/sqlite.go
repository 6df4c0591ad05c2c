package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/dbx"
)

var now = time.Now

type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a journal bound to db, which may be a transaction.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `select id, file_name, mime_type, file_size, description, status, target_url, error, created_at, updated_at from uploads`

func (r *SQLiteRepository) Create(ctx context.Context, a *models.UploadAttempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	query := `insert into uploads (id, file_name, mime_type, file_size, description, status, target_url, error, created_at, updated_at)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, a.ID, a.FileName, a.MimeType, a.FileSize, a.Description,
		string(a.Status), a.TargetURL, a.Error, a.CreatedAt.UnixMilli(), a.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert upload attempt: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, u Update) error {
	at := u.At
	if at.IsZero() {
		at = now()
	}

	query := `update uploads set status = ?,
			target_url = coalesce(nullif(?, ''), target_url),
			error = coalesce(nullif(?, ''), error),
			updated_at = ?
		where id = ?`
	result, err := r.db.ExecContext(ctx, query, string(u.Status), u.TargetURL, u.Error, at.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to update upload attempt: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.UploadAttempt, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` where id = ?`, id)

	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload attempt: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*models.UploadAttempt, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.query(ctx, selectColumns+` order by created_at desc, id limit ?`, limit)
}

func (r *SQLiteRepository) ListByStatus(ctx context.Context, status models.AttemptStatus) ([]*models.UploadAttempt, error) {
	return r.query(ctx, selectColumns+` where status = ? order by created_at desc, id`, string(status))
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.UploadAttempt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting upload attempts: %w", err)
	}
	defer rows.Close()

	var result []*models.UploadAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload attempt: %w", err)
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(s scanner) (*models.UploadAttempt, error) {
	var (
		a                models.UploadAttempt
		status           string
		created, updated int64
	)
	err := s.Scan(&a.ID, &a.FileName, &a.MimeType, &a.FileSize, &a.Description, &status,
		&a.TargetURL, &a.Error, &created, &updated)
	if err != nil {
		return nil, err
	}
	a.Status = models.AttemptStatus(status)
	a.CreatedAt = time.UnixMilli(created)
	a.UpdatedAt = time.UnixMilli(updated)
	return &a, nil
}
