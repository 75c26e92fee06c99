package factories

import (
	"fmt"
	"math"
	"time"

	"github.com/chrisdamba/tripzones/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

const (
	baseFare     = 2.5
	farePerKm    = 1.75
	maxTripKm    = 30.0
	defaultField = "NA"
)

type TripFactory struct {
	fake faker.Faker
}

func NewTripFactory(fake faker.Faker) *TripFactory {
	return &TripFactory{fake: fake}
}

func (tf *TripFactory) CreateTrip(pickup, dropoff string, pickupTime time.Time) models.Trip {
	distance := tf.fake.Float64(2, 0, int(maxTripKm))
	return models.Trip{
		ID:          cuid.New(),
		PickupZone:  pickup,
		DropoffZone: dropoff,
		PickupTime:  pickupTime,
		DistanceKm:  distance,
		Fare:        math.Round((baseFare+distance*farePerKm)*100) / 100,
	}
}

// FormatTrip renders trip as one comma-separated record in layout.
func FormatTrip(trip models.Trip, layout models.Layout) string {
	pickupTime := trip.PickupTime.Format(models.PickupTimeFormat)
	switch layout {
	case models.LayoutShort:
		return fmt.Sprintf("%s,%s,%s", trip.ID, trip.PickupZone, pickupTime)
	case models.LayoutDropoff:
		return fmt.Sprintf("%s,%s,%s,%s", trip.ID, trip.PickupZone, dropoffOrDefault(trip), pickupTime)
	default:
		return fmt.Sprintf("%s,%s,%s,%s,%.2f,%.2f",
			trip.ID, trip.PickupZone, dropoffOrDefault(trip), pickupTime, trip.DistanceKm, trip.Fare)
	}
}

func dropoffOrDefault(trip models.Trip) string {
	if trip.DropoffZone == "" {
		return defaultField
	}
	return trip.DropoffZone
}

var malformedTemplates = []func(trip models.Trip) string{
	func(trip models.Trip) string { return trip.ID },
	func(trip models.Trip) string { return trip.ID + "," + trip.PickupZone },
	func(trip models.Trip) string {
		return fmt.Sprintf("%s,,%s", trip.ID, trip.PickupTime.Format(models.PickupTimeFormat))
	},
	func(trip models.Trip) string {
		return fmt.Sprintf("%s,%s,%s", trip.ID, trip.PickupZone, trip.PickupTime.Format("2006-01-02T15:04:05"))
	},
	func(trip models.Trip) string {
		return fmt.Sprintf("%s,%s,%s 24:00:00", trip.ID, trip.PickupZone, trip.PickupTime.Format("2006-01-02"))
	},
	func(trip models.Trip) string {
		return fmt.Sprintf("%s,%s,%s,%s", trip.ID, trip.PickupZone, trip.PickupTime.Format(models.PickupTimeFormat), defaultField)
	},
}

// MalformedTripVariants is the number of distinct malformed shapes.
var MalformedTripVariants = len(malformedTemplates)

// FormatMalformedTrip renders trip in a shape that carries no usable zone or
// hour. variant selects the shape modulo MalformedTripVariants.
func FormatMalformedTrip(trip models.Trip, variant int) string {
	return malformedTemplates[variant%len(malformedTemplates)](trip)
}
