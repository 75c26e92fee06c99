package postgres

import (
	"context"
	"fmt"

	"github.com/chrisdamba/tripzones/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS ranking_runs (
    run_id       TEXT PRIMARY KEY,
    source       TEXT NOT NULL,
    generated_at TIMESTAMPTZ NOT NULL,
    k            INTEGER NOT NULL,
    zones        INTEGER NOT NULL,
    lines_read   BIGINT NOT NULL,
    accepted     BIGINT NOT NULL,
    skipped      BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS zone_rankings (
    run_id TEXT NOT NULL REFERENCES ranking_runs(run_id) ON DELETE CASCADE,
    rank   INTEGER NOT NULL,
    zone   TEXT NOT NULL,
    trips  BIGINT NOT NULL,
    PRIMARY KEY (run_id, rank)
);

CREATE TABLE IF NOT EXISTS slot_rankings (
    run_id TEXT NOT NULL REFERENCES ranking_runs(run_id) ON DELETE CASCADE,
    rank   INTEGER NOT NULL,
    zone   TEXT NOT NULL,
    hour   INTEGER NOT NULL,
    trips  BIGINT NOT NULL,
    PRIMARY KEY (run_id, rank)
);`

type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// SaveReport inserts the run header and both rankings in one transaction.
func (r *ReportRepository) SaveReport(ctx context.Context, report *models.Report) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO ranking_runs (
            run_id, source, generated_at, k, zones, lines_read, accepted, skipped
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		report.RunID,
		report.Source,
		report.GeneratedAt,
		report.K,
		report.Zones,
		report.Counters.LinesRead,
		report.Counters.Accepted,
		report.Counters.Skipped,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for i, z := range report.TopZones {
		batch.Queue(`INSERT INTO zone_rankings (run_id, rank, zone, trips) VALUES ($1, $2, $3, $4)`,
			report.RunID, i+1, z.Zone, z.Count)
	}
	for i, s := range report.TopSlots {
		batch.Queue(`INSERT INTO slot_rankings (run_id, rank, zone, hour, trips) VALUES ($1, $2, $3, $4, $5)`,
			report.RunID, i+1, s.Zone, s.Hour, s.Count)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert rankings: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *ReportRepository) GetZoneRankings(ctx context.Context, runID string) ([]models.RankedZone, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT zone, trips FROM zone_rankings WHERE run_id = $1 ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []models.RankedZone
	for rows.Next() {
		var z models.RankedZone
		if err := rows.Scan(&z.Zone, &z.Count); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func (r *ReportRepository) GetSlotRankings(ctx context.Context, runID string) ([]models.RankedSlot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT zone, hour, trips FROM slot_rankings WHERE run_id = $1 ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []models.RankedSlot
	for rows.Next() {
		var s models.RankedSlot
		if err := rows.Scan(&s.Zone, &s.Hour, &s.Count); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *ReportRepository) DeleteReport(ctx context.Context, runID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM ranking_runs WHERE run_id = $1`, runID)
	return err
}
