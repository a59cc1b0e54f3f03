package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
)

// Feeds disagree on field names; one alias registry keeps the lookup order in
// a single place.
var bookingAliases = map[string][]string{
	"hotel_id":      {"hotel_id", "hotelId", "property_id", "hotel.id"},
	"room_id":       {"room_id", "roomId", "unit_id", "room.id"},
	"check_in":      {"check_in_date", "check_in", "checkin", "arrival", "arrival_date"},
	"check_out":     {"check_out_date", "check_out", "checkout", "departure", "departure_date"},
	"guest_name":    {"guest_name", "guest", "name", "customer_name", "guest.name"},
	"guest_email":   {"guest_email", "email", "customer_email", "guest.email"},
	"num_guests":    {"num_guests", "guests", "pax", "occupancy"},
	"booking_price": {"booking_price", "price", "amount", "total", "total_price"},
	"base_price":    {"base_price", "rack_rate", "original_price", "list_price"},
	"booked_at":     {"booking_date", "booked_at", "created_at", "createdAt"},
	"source":        {"booking_source", "source", "channel", "platform", "origin"},
	"status":        {"status", "state", "booking_status"},
}

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func aliasStr(m map[string]any, key string) string {
	for _, p := range bookingAliases[key] {
		if v := lookupAny(m, p); v != nil {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func aliasInt(m map[string]any, key string) (int64, bool) {
	for _, p := range bookingAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return int64(v), true
		case int:
			return int64(v), true
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func aliasDecimal(m map[string]any, key string) (decimal.Decimal, bool) {
	for _, p := range bookingAliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return decimal.NewFromFloat(v), true
		case int:
			return decimal.NewFromInt(int64(v)), true
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if d, err := decimal.NewFromString(s); err == nil {
				return d, true
			}
		}
	}
	return decimal.Zero, false
}

func aliasDate(m map[string]any, key string) (time.Time, bool) {
	s := aliasStr(m, key)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// mapFeedBooking converts one raw feed record into a domain booking; missing
// required fields surface as an error so the sync can skip and count it.
func mapFeedBooking(m map[string]any) (domain.Booking, error) {
	var b domain.Booking
	var ok bool

	if b.HotelID, ok = aliasInt(m, "hotel_id"); !ok {
		return b, fmt.Errorf("record has no hotel id")
	}
	if b.RoomID, ok = aliasInt(m, "room_id"); !ok {
		return b, fmt.Errorf("record has no room id")
	}
	if b.CheckIn, ok = aliasDate(m, "check_in"); !ok {
		return b, fmt.Errorf("record has no check-in date")
	}
	if b.CheckOut, ok = aliasDate(m, "check_out"); !ok {
		return b, fmt.Errorf("record has no check-out date")
	}
	if b.BookingPrice, ok = aliasDecimal(m, "booking_price"); !ok {
		return b, fmt.Errorf("record has no price")
	}
	if b.BasePrice, ok = aliasDecimal(m, "base_price"); !ok {
		b.BasePrice = b.BookingPrice
	}

	b.GuestName = aliasStr(m, "guest_name")
	if e := aliasStr(m, "guest_email"); e != "" {
		b.GuestEmail = &e
	}
	if n, ok := aliasInt(m, "num_guests"); ok {
		b.NumGuests = int(n)
	} else {
		b.NumGuests = 1
	}
	if t, ok := aliasDate(m, "booked_at"); ok {
		b.BookedAt = t
	}
	b.Source = aliasStr(m, "source")
	b.Status = strings.ToLower(aliasStr(m, "status"))
	return b, nil
}
