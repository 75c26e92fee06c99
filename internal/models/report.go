package models

import "time"

type RankedZone struct {
	Zone  string `json:"zone" yaml:"zone"`
	Count int    `json:"count" yaml:"count"`
}

type RankedSlot struct {
	Zone  string `json:"zone" yaml:"zone"`
	Hour  int    `json:"hour" yaml:"hour"`
	Count int    `json:"count" yaml:"count"`
}

// Counters tracks how many lines an analyzer has seen. Accepted + Skipped
// always equals LinesRead.
type Counters struct {
	LinesRead int64 `json:"linesRead" yaml:"lines_read"`
	Accepted  int64 `json:"accepted" yaml:"accepted"`
	Skipped   int64 `json:"skipped" yaml:"skipped"`
}

// Report is the snapshot handed to output destinations after ingestion.
type Report struct {
	RunID       string       `json:"runId" yaml:"run_id"`
	Source      string       `json:"source" yaml:"source"`
	GeneratedAt time.Time    `json:"generatedAt" yaml:"generated_at"`
	K           int          `json:"k" yaml:"k"`
	Zones       int          `json:"zones" yaml:"zones"`
	Counters    Counters     `json:"counters" yaml:"counters"`
	TopZones    []RankedZone `json:"topZones" yaml:"top_zones"`
	TopSlots    []RankedSlot `json:"topSlots" yaml:"top_slots"`
}
