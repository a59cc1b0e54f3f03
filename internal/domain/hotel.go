package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Hotel struct {
	ID         int64
	Name       string
	Location   string
	TotalRooms int
	StarRating *float64
	CreatedAt  time.Time
}

type Room struct {
	ID           int64
	HotelID      int64
	RoomNumber   string
	RoomType     string // Standard|Deluxe|Executive|Suite
	BasePrice    decimal.Decimal
	MaxOccupancy int
	Available    bool
}
