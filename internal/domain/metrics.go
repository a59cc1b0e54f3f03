package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyMetrics is the persisted per-hotel per-day aggregate. One row per
// (hotel_id, date); recalculation overwrites in place.
type DailyMetrics struct {
	ID      int64
	HotelID int64
	Date    time.Time // date only, UTC midnight

	OccupancyRate  float64 // percentage 0..100
	RoomsOccupied  int
	RoomsAvailable int

	TotalRevenue decimal.Decimal // prorated revenue earned on this date
	ADR          decimal.Decimal // average daily rate: revenue / rooms occupied
	RevPAR       decimal.Decimal // revenue per available room

	BookingCount      int // check-ins on this date
	CancellationCount int // cancelled check-ins on this date

	CalculatedAt time.Time
}

// RevenueSummary is the computed (never persisted) period aggregate.
type RevenueSummary struct {
	TotalRevenue  decimal.Decimal
	TotalBookings int
	ADR           decimal.Decimal // per room-night over the period
	OccupancyRate float64         // room-nights sold / room-nights available, pct
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
}

// DailyStats is the on-demand point-in-time view of a single hotel day.
type DailyStats struct {
	HotelID       int64
	Date          time.Time
	RoomsOccupied int
	TotalRooms    int
	OccupancyRate float64
	DailyRevenue  decimal.Decimal
}

// SystemSummary backs the analytics summary endpoint.
type SystemSummary struct {
	TotalHotels           int
	TotalRooms            int
	TotalBookings         int
	ActiveBookings        int
	CurrentMonthRevenue   decimal.Decimal
	CurrentMonthOccupancy float64
}
