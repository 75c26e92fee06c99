package output

import (
	"context"
	"fmt"
	"log"

	"github.com/chrisdamba/tripzones/internal/models"
	"github.com/chrisdamba/tripzones/internal/repositories"
	"github.com/chrisdamba/tripzones/internal/repositories/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOutput stores the rankings of each report through a
// ReportRepository.
type PostgresOutput struct {
	repo  repositories.ReportRepository
	close func()
}

func NewPostgresOutput(ctx context.Context, config *models.Config) (*PostgresOutput, error) {
	poolConfig, err := pgxpool.ParseConfig(config.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("error parsing database url: %w", err)
	}
	if config.Database.MaxConns > 0 {
		poolConfig.MaxConns = config.Database.MaxConns
	}

	connectCtx := ctx
	if config.Database.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, config.Database.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	repo := postgres.NewReportRepository(pool)
	if err := repo.EnsureSchema(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating ranking tables: %w", err)
	}
	return &PostgresOutput{repo: repo, close: pool.Close}, nil
}

func NewPostgresOutputWithRepository(repo repositories.ReportRepository) *PostgresOutput {
	return &PostgresOutput{repo: repo}
}

func (p *PostgresOutput) WriteReport(ctx context.Context, report *models.Report) error {
	if err := p.repo.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("failed to store report %s: %w", report.RunID, err)
	}
	log.Printf("Report %s stored (%d zones, %d slots)", report.RunID, len(report.TopZones), len(report.TopSlots))
	return nil
}

func (p *PostgresOutput) Close() error {
	if p.close != nil {
		p.close()
		p.close = nil
	}
	return nil
}
