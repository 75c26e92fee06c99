package analyzer

import (
	"cmp"
	"slices"

	"github.com/chrisdamba/tripzones/internal/models"
)

// TopZones ranks zones by trip count, highest first, breaking ties by zone
// name in byte order. At most k entries are returned; a negative k means the
// configured default and zero an empty ranking.
func (a *Analyzer) TopZones(k int) []models.RankedZone {
	k = a.limit(k)
	if k == 0 {
		return []models.RankedZone{}
	}
	ids := make([]int, len(a.stats))
	for i := range ids {
		ids[i] = i
	}
	slices.SortFunc(ids, func(x, y int) int {
		if c := cmp.Compare(a.stats[y].Total, a.stats[x].Total); c != 0 {
			return c
		}
		return cmp.Compare(a.registry.Name(x), a.registry.Name(y))
	})
	if len(ids) > k {
		ids = ids[:k]
	}

	ranked := make([]models.RankedZone, 0, len(ids))
	for _, id := range ids {
		ranked = append(ranked, models.RankedZone{Zone: a.registry.Name(id), Count: a.stats[id].Total})
	}
	return ranked
}

type slot struct {
	zone, hour, count int
}

// TopBusySlots ranks the (zone, hour) pairs with at least one trip by count,
// highest first, then by zone name and hour ascending.
func (a *Analyzer) TopBusySlots(k int) []models.RankedSlot {
	k = a.limit(k)
	if k == 0 {
		return []models.RankedSlot{}
	}
	slots := make([]slot, 0, len(a.stats)*2)
	for id, s := range a.stats {
		for hour, count := range s.Hourly {
			if count != 0 {
				slots = append(slots, slot{zone: id, hour: hour, count: count})
			}
		}
	}
	slices.SortFunc(slots, func(x, y slot) int {
		if c := cmp.Compare(y.count, x.count); c != 0 {
			return c
		}
		if x.zone != y.zone {
			return cmp.Compare(a.registry.Name(x.zone), a.registry.Name(y.zone))
		}
		return cmp.Compare(x.hour, y.hour)
	})
	if len(slots) > k {
		slots = slots[:k]
	}

	ranked := make([]models.RankedSlot, 0, len(slots))
	for _, s := range slots {
		ranked = append(ranked, models.RankedSlot{Zone: a.registry.Name(s.zone), Hour: s.hour, Count: s.count})
	}
	return ranked
}

// limit resolves a requested ranking length. Only a negative k falls back
// to the configured default.
func (a *Analyzer) limit(k int) int {
	if k < 0 {
		return a.opts.TopK
	}
	return k
}
