package models

import "time"

// Layout is the column shape of a generated trip record.
type Layout int

const (
	// LayoutShort is id,pickup_zone,pickup_time.
	LayoutShort Layout = iota
	// LayoutDropoff is id,pickup_zone,dropoff_zone,pickup_time.
	LayoutDropoff
	// LayoutFull is id,pickup_zone,dropoff_zone,pickup_time,distance_km,fare.
	LayoutFull
)

const PickupTimeFormat = "2006-01-02 15:04:05"

var FullLayoutHeader = "trip_id,pickup_zone,dropoff_zone,pickup_time,distance_km,fare"

type Trip struct {
	ID          string
	PickupZone  string
	DropoffZone string
	PickupTime  time.Time
	DistanceKm  float64
	Fare        float64
}
