package domain

import (
	"context"
	"time"
)

type Repository interface {
	// Hotels
	CreateHotel(ctx context.Context, h Hotel) (int64, error)
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	GetHotelByName(ctx context.Context, name string) (Hotel, error)
	ListHotels(ctx context.Context, pg PageQuery) ([]Hotel, error)
	DeleteHotel(ctx context.Context, id int64) error

	// Rooms
	CreateRoom(ctx context.Context, r Room) (int64, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	ListRooms(ctx context.Context, hotelID *int64, pg PageQuery) ([]Room, error)

	// Bookings
	CreateBooking(ctx context.Context, b Booking) (int64, error)
	CreateBookings(ctx context.Context, bs []Booking) (BatchResult, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	ListBookings(ctx context.Context, q BookingsQuery) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error

	// Metrics
	UpsertDailyMetrics(ctx context.Context, m DailyMetrics) error
	ListDailyMetrics(ctx context.Context, hotelID int64, start, end time.Time) ([]DailyMetrics, error)

	// Aggregates used by analytics
	CountHotels(ctx context.Context) (int, error)
	CountRooms(ctx context.Context) (int, error)
	CountBookings(ctx context.Context, status *string) (int, error)
	SumTotalRooms(ctx context.Context) (int, error)
	BookingDateBounds(ctx context.Context) (earliest, latest time.Time, ok bool, err error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// BookingFeed pulls raw booking records from an external channel source.
type BookingFeed interface {
	FetchBookings(ctx context.Context, since time.Time, limit int) ([]map[string]any, error)
}

type PageQuery struct {
	Offset int
	Limit  int
}

type BookingsQuery struct {
	HotelID   *int64
	Status    *string
	StartDate *time.Time // check-in on or after
	EndDate   *time.Time // check-out on or before
	Offset    int
	Limit     int
}

// BatchResult summarizes a bulk booking insert.
type BatchResult struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
	Total   int `json:"total"`
}
