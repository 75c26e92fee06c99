package repositories

import (
	"context"

	"github.com/chrisdamba/tripzones/internal/models"
)

type ReportRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveReport(ctx context.Context, report *models.Report) error
	GetZoneRankings(ctx context.Context, runID string) ([]models.RankedZone, error)
	GetSlotRankings(ctx context.Context, runID string) ([]models.RankedSlot, error)
	DeleteReport(ctx context.Context, runID string) error
}
