package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Custodio30/tennis-bot-tipster/internal/database"
	"github.com/Custodio30/tennis-bot-tipster/internal/models"
)

// PostgresModelRepository implements ModelRepository for PostgreSQL
type PostgresModelRepository struct {
	db *database.DB
}

// NewPostgresModelRepository creates a new model repository
func NewPostgresModelRepository(db *database.DB) ModelRepository {
	return &PostgresModelRepository{db: db}
}

const modelColumns = `id, name, version, kind, path, metrics, trained_at, active, created_at`

// Create inserts a new model record
func (r *PostgresModelRepository) Create(ctx context.Context, record *models.ModelRecord) error {
	query := `
		INSERT INTO model_records (` + modelColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.ID, record.Name, record.Version, record.Kind, record.Path,
		record.Metrics, record.TrainedAt, record.Active, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create model record: %w", err)
	}

	return nil
}

// GetActive retrieves the active model record for a name
func (r *PostgresModelRepository) GetActive(ctx context.Context, name string) (*models.ModelRecord, error) {
	query := `SELECT ` + modelColumns + ` FROM model_records WHERE name = $1 AND active ORDER BY trained_at DESC LIMIT 1`

	record := &models.ModelRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, name).Scan(
		&record.ID, &record.Name, &record.Version, &record.Kind, &record.Path,
		&record.Metrics, &record.TrainedAt, &record.Active, &record.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active model: %w", err)
	}

	return record, nil
}

// SetActive marks one record active and deactivates its siblings in a
// single transaction.
func (r *PostgresModelRepository) SetActive(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE model_records SET active = TRUE WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to activate model: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}

		_, err = tx.Exec(ctx, `
			UPDATE model_records SET active = FALSE
			WHERE id <> $1 AND name = (SELECT name FROM model_records WHERE id = $1)
		`, id)
		if err != nil {
			return fmt.Errorf("failed to deactivate previous models: %w", err)
		}
		return nil
	})
}

// List retrieves recent model records for a name, newest first.
func (r *PostgresModelRepository) List(ctx context.Context, name string, limit int) ([]*models.ModelRecord, error) {
	query := `SELECT ` + modelColumns + ` FROM model_records WHERE name = $1 ORDER BY trained_at DESC LIMIT $2`

	rows, err := r.db.GetPool().Query(ctx, query, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query model records: %w", err)
	}
	defer rows.Close()

	var records []*models.ModelRecord
	for rows.Next() {
		record := &models.ModelRecord{}
		err := rows.Scan(
			&record.ID, &record.Name, &record.Version, &record.Kind, &record.Path,
			&record.Metrics, &record.TrainedAt, &record.Active, &record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
