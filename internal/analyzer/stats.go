package analyzer

// ZoneStats holds the counters of one zone. Total always equals the sum of
// Hourly.
type ZoneStats struct {
	Total  int
	Hourly []int
}

func newZoneStats(hourBuckets int) ZoneStats {
	return ZoneStats{Hourly: make([]int, hourBuckets)}
}

func (s *ZoneStats) record(hour int) {
	s.Total++
	s.Hourly[hour]++
}

func (s ZoneStats) clone() ZoneStats {
	hourly := make([]int, len(s.Hourly))
	copy(hourly, s.Hourly)
	return ZoneStats{Total: s.Total, Hourly: hourly}
}
