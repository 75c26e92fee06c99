package generator

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/chrisdamba/tripzones/internal/factories"
	"github.com/chrisdamba/tripzones/internal/models"
	"github.com/jaswdr/faker"
)

type Slot struct {
	Zone string
	Hour int
}

// Summary describes what Generate wrote, so a reader of the feed knows the
// counts to expect.
type Summary struct {
	LinesWritten int
	Records      int
	Malformed    int
	Header       bool
	ZoneTotals   map[string]int
	SlotTotals   map[Slot]int
}

// Generator writes synthetic trip feeds mixing the short, dropoff and full
// record layouts.
type Generator struct {
	Config      models.GeneratorConfig
	Zones       []string
	Rng         *rand.Rand
	zoneWeights []float64
	trips       *factories.TripFactory
}

func NewGenerator(config models.GeneratorConfig) *Generator {
	fake := faker.NewWithSeed(rand.NewSource(config.Seed))
	zones := factories.NewZoneFactory(fake).CreateZones(config.Zones)
	return &Generator{
		Config:      config,
		Zones:       zones,
		Rng:         rand.New(rand.NewSource(config.Seed)),
		zoneWeights: zoneWeights(len(zones)),
		trips:       factories.NewTripFactory(fake),
	}
}

func (g *Generator) Generate(w io.Writer) (*Summary, error) {
	bw := bufio.NewWriter(w)
	summary := &Summary{
		Header:     g.Config.Header,
		ZoneTotals: make(map[string]int, len(g.Zones)),
		SlotTotals: make(map[Slot]int),
	}

	if g.Config.Header {
		if _, err := fmt.Fprintln(bw, models.FullLayoutHeader); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		summary.LinesWritten++
	}

	for i := 0; i < g.Config.Records; i++ {
		trip := g.nextTrip()

		var line string
		if g.Rng.Float64() < g.Config.MalformedRatio {
			line = factories.FormatMalformedTrip(trip, g.Rng.Intn(factories.MalformedTripVariants))
			summary.Malformed++
		} else {
			line = factories.FormatTrip(trip, models.Layout(g.Rng.Intn(3)))
			summary.Records++
			summary.ZoneTotals[trip.PickupZone]++
			summary.SlotTotals[Slot{Zone: trip.PickupZone, Hour: trip.PickupTime.Hour()}]++
		}

		if _, err := fmt.Fprintln(bw, line); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
		summary.LinesWritten++
	}

	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush feed: %w", err)
	}
	log.Printf("Generated %d lines (%d records, %d malformed) across %d zones",
		summary.LinesWritten, summary.Records, summary.Malformed, len(summary.ZoneTotals))
	return summary, nil
}

func (g *Generator) nextTrip() models.Trip {
	pickup := g.Zones[pick(g.zoneWeights, g.Rng.Float64())]
	dropoff := ""
	if g.Rng.Float64() < 0.9 {
		dropoff = g.Zones[g.Rng.Intn(len(g.Zones))]
	}
	return g.trips.CreateTrip(pickup, dropoff, g.pickupTime())
}

// pickupTime draws a day in [StartDate, EndDate) and an hour weighted by
// demand on that day.
func (g *Generator) pickupTime() time.Time {
	start := g.Config.StartDate.UTC().Truncate(24 * time.Hour)
	days := int(g.Config.EndDate.Sub(start).Hours() / 24)
	if days < 1 {
		days = 1
	}
	day := start.AddDate(0, 0, g.Rng.Intn(days))
	hour := pick(hourWeights(g.Config.PeakHourFactor, isWeekend(day)), g.Rng.Float64())
	return day.Add(time.Duration(hour)*time.Hour +
		time.Duration(g.Rng.Intn(60))*time.Minute +
		time.Duration(g.Rng.Intn(60))*time.Second)
}
