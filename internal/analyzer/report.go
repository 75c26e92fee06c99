package analyzer

import (
	"time"

	"github.com/chrisdamba/tripzones/internal/models"
	"github.com/lucsky/cuid"
)

// Report snapshots both rankings together with the line counters.
func (a *Analyzer) Report(k int, source string) *models.Report {
	return &models.Report{
		RunID:       cuid.New(),
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		K:           a.limit(k),
		Zones:       a.ZoneCount(),
		Counters:    a.Counters(),
		TopZones:    a.TopZones(k),
		TopSlots:    a.TopBusySlots(k),
	}
}
