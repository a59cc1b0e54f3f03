package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking statuses. A booking is confirmed at creation, may be cancelled,
// and is completed once the stay is in the past.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

type Booking struct {
	ID      int64
	HotelID int64
	RoomID  int64

	CheckIn    time.Time // date only, UTC midnight
	CheckOut   time.Time // date only, UTC midnight; always after CheckIn
	GuestName  string
	GuestEmail *string
	NumGuests  int

	BookingPrice decimal.Decimal // actual price charged for the whole stay
	BasePrice    decimal.Decimal // undiscounted price for the whole stay

	BookedAt time.Time
	Source   string // website|booking.com|direct|expedia|makemytrip|...
	Status   string
}

// Nights returns the length of stay in nights.
func (b Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// Occupies reports whether the stay covers the given date
// (check-in inclusive, check-out exclusive).
func (b Booking) Occupies(d time.Time) bool {
	return !b.CheckIn.After(d) && b.CheckOut.After(d)
}

// Active reports whether the booking counts toward occupancy and revenue.
func (b Booking) Active() bool {
	return b.Status == StatusConfirmed || b.Status == StatusCompleted
}
