package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Custodio30/tennis-bot-tipster/internal/database"
	"github.com/Custodio30/tennis-bot-tipster/internal/models"
)

// PostgresTipRepository implements TipRepository for PostgreSQL
type PostgresTipRepository struct {
	db *database.DB
}

// NewPostgresTipRepository creates a new tip repository
func NewPostgresTipRepository(db *database.DB) TipRepository {
	return &PostgresTipRepository{db: db}
}

const tipColumns = `id, player1, player2, surface, odds_p1, odds_p2, prob_p1, prob_p2,
	       ev_p1, ev_p2, pick, best_ev, stake, created_at`

// Create inserts a new tip
func (r *PostgresTipRepository) Create(ctx context.Context, tip *models.Tip) error {
	query := `
		INSERT INTO tips (` + tipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		tip.ID, tip.Player1, tip.Player2, tip.Surface, tip.OddsP1, tip.OddsP2,
		tip.ProbP1, tip.ProbP2, tip.EVP1, tip.EVP2, tip.Pick, tip.BestEV,
		tip.Stake, tip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tip: %w", err)
	}

	return nil
}

// CreateBatch inserts a slate of tips in one transaction so a partial
// slate is never persisted.
func (r *PostgresTipRepository) CreateBatch(ctx context.Context, tips []*models.Tip) error {
	query := `
		INSERT INTO tips (` + tipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, tip := range tips {
			_, err := tx.Exec(ctx, query,
				tip.ID, tip.Player1, tip.Player2, tip.Surface, tip.OddsP1, tip.OddsP2,
				tip.ProbP1, tip.ProbP2, tip.EVP1, tip.EVP2, tip.Pick, tip.BestEV,
				tip.Stake, tip.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to create tip: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a tip by ID
func (r *PostgresTipRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tip, error) {
	query := `SELECT ` + tipColumns + ` FROM tips WHERE id = $1`

	tip := &models.Tip{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&tip.ID, &tip.Player1, &tip.Player2, &tip.Surface, &tip.OddsP1, &tip.OddsP2,
		&tip.ProbP1, &tip.ProbP2, &tip.EVP1, &tip.EVP2, &tip.Pick, &tip.BestEV,
		&tip.Stake, &tip.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tip: %w", err)
	}

	return tip, nil
}

// GetByDateRange retrieves tips created within a date range, best value
// first.
func (r *PostgresTipRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Tip, error) {
	query := `
		SELECT ` + tipColumns + `
		FROM tips
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY best_ev DESC, created_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query tips: %w", err)
	}
	defer rows.Close()

	var tips []*models.Tip
	for rows.Next() {
		tip := &models.Tip{}
		err := rows.Scan(
			&tip.ID, &tip.Player1, &tip.Player2, &tip.Surface, &tip.OddsP1, &tip.OddsP2,
			&tip.ProbP1, &tip.ProbP2, &tip.EVP1, &tip.EVP2, &tip.Pick, &tip.BestEV,
			&tip.Stake, &tip.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tip: %w", err)
		}
		tips = append(tips, tip)
	}

	return tips, rows.Err()
}
