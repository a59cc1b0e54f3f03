package etl

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
)

type dedupKey struct {
	hotelID int64
	roomID  int64
	checkIn time.Time
}

func keyOf(b domain.Booking) dedupKey {
	d := b.CheckIn
	return dedupKey{b.HotelID, b.RoomID, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)}
}

// Validate runs the quality checks on a parsed batch. It never mutates the
// input; Clean does that afterwards.
func Validate(bs []domain.Booking) QualityReport {
	var rep QualityReport

	if len(bs) == 0 {
		rep.AddError("no records to validate")
		return rep
	}
	rep.AddInfo(fmt.Sprintf("all required columns present, total rows: %d", len(bs)))

	var badDates, badPrices, badGuests, missingIDs, missingNames int
	seen := map[dedupKey]int{}
	for _, b := range bs {
		if b.HotelID <= 0 || b.RoomID <= 0 {
			missingIDs++
		}
		if strings.TrimSpace(b.GuestName) == "" {
			missingNames++
		}
		if !b.CheckOut.After(b.CheckIn) {
			badDates++
		}
		if !b.BookingPrice.IsPositive() || !b.BasePrice.IsPositive() {
			badPrices++
		}
		if b.NumGuests <= 0 {
			badGuests++
		}
		seen[keyOf(b)]++
	}
	if missingIDs > 0 {
		rep.AddError(fmt.Sprintf("%d records missing hotel or room id", missingIDs))
	}
	if missingNames > 0 {
		rep.AddError(fmt.Sprintf("%d records missing guest name", missingNames))
	}
	if badDates > 0 {
		rep.AddError(fmt.Sprintf("%d bookings have check-out before/same as check-in", badDates))
	}
	if badPrices > 0 {
		rep.AddError(fmt.Sprintf("%d bookings have invalid prices (<=0)", badPrices))
	}
	if badGuests > 0 {
		rep.AddError(fmt.Sprintf("%d bookings have invalid guest count", badGuests))
	}

	var dupes int
	for _, n := range seen {
		if n > 1 {
			dupes += n
		}
	}
	if dupes > 0 {
		rep.AddWarning(fmt.Sprintf("%d potential duplicate bookings detected", dupes))
	}

	// Price outliers beyond mean + 3 sigma.
	prices := make([]float64, len(bs))
	for i, b := range bs {
		prices[i] = b.BookingPrice.InexactFloat64()
	}
	mean, std := meanStd(prices)
	var outliers int
	for _, p := range prices {
		if p > mean+3*std {
			outliers++
		}
	}
	if outliers > 0 {
		rep.AddWarning(fmt.Sprintf("%d bookings with unusually high prices", outliers))
	}

	rep.Stats = stats(bs, prices, mean)
	if rep.Valid() {
		rep.AddInfo("data validation passed")
	}
	return rep
}

// Clean trims strings, fills defaults and drops duplicate (hotel, room,
// check-in) rows keeping the first occurrence.
func Clean(bs []domain.Booking, now time.Time) []domain.Booking {
	out := make([]domain.Booking, 0, len(bs))
	seen := map[dedupKey]bool{}
	for _, b := range bs {
		k := keyOf(b)
		if seen[k] {
			continue
		}
		seen[k] = true

		b.GuestName = strings.TrimSpace(b.GuestName)
		if b.GuestEmail != nil {
			e := strings.TrimSpace(*b.GuestEmail)
			b.GuestEmail = &e
		}
		if strings.TrimSpace(b.Source) == "" {
			b.Source = "direct"
		} else {
			b.Source = strings.TrimSpace(b.Source)
		}
		if strings.TrimSpace(b.Status) == "" {
			b.Status = domain.StatusConfirmed
		} else {
			b.Status = strings.TrimSpace(b.Status)
		}
		if b.BookedAt.IsZero() {
			b.BookedAt = now
		}
		out = append(out, b)
	}
	return out
}

func stats(bs []domain.Booking, prices []float64, mean float64) QualityStats {
	hotels := map[int64]bool{}
	rooms := map[int64]bool{}
	var earliest, latest time.Time
	for i, b := range bs {
		hotels[b.HotelID] = true
		rooms[b.RoomID] = true
		if i == 0 || b.CheckIn.Before(earliest) {
			earliest = b.CheckIn
		}
		if i == 0 || b.CheckOut.After(latest) {
			latest = b.CheckOut
		}
	}

	sorted := append([]float64(nil), prices...)
	sort.Float64s(sorted)

	st := QualityStats{
		TotalRecords: len(bs),
		UniqueHotels: len(hotels),
		UniqueRooms:  len(rooms),
		PriceStats: PriceStats{
			Min:    sorted[0],
			Max:    sorted[len(sorted)-1],
			Mean:   mean,
			Median: median(sorted),
		},
	}
	st.DateRange.Earliest = &earliest
	st.DateRange.Latest = &latest
	return st
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	if len(xs) < 2 {
		return mean, 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	// sample stddev, matching pandas' default ddof=1
	return mean, math.Sqrt(ss / float64(len(xs)-1))
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
