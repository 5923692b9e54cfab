// Package repository persists generated tips and trained model records.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Custodio30/tennis-bot-tipster/internal/models"
)

// TipRepository stores admitted tips.
type TipRepository interface {
	Create(ctx context.Context, tip *models.Tip) error
	CreateBatch(ctx context.Context, tips []*models.Tip) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tip, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Tip, error)
}

// ModelRepository stores trained model provenance.
type ModelRepository interface {
	Create(ctx context.Context, record *models.ModelRecord) error
	GetActive(ctx context.Context, name string) (*models.ModelRecord, error)
	SetActive(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, name string, limit int) ([]*models.ModelRecord, error)
}
