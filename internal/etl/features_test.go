package etl_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/etl"
)

func TestFeatures_TimeAndStay(t *testing.T) {
	// 2026-01-10 is a Saturday in peak winter season
	b := mkBooking(1, 1, "2026-01-10", 3, 9000)
	b.BasePrice = decimal.NewFromInt(10000)
	b.BookedAt = time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	rows := etl.Features([]domain.Booking{b}, map[int64]int{1: 10})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]

	if r.DayOfWeek != 5 || !r.IsWeekend {
		t.Errorf("expected Saturday (5, weekend), got dow=%d weekend=%v", r.DayOfWeek, r.IsWeekend)
	}
	if r.Season != "winter" || !r.IsPeak || !r.IsHoliday {
		t.Errorf("unexpected season flags: %+v", r)
	}
	if r.Month != 1 || r.Quarter != 1 || r.Year != 2026 {
		t.Errorf("unexpected calendar fields: %+v", r)
	}

	if r.LengthOfStay != 3 || r.StayCategory != "medium" {
		t.Errorf("expected 3-night medium stay, got %d %q", r.LengthOfStay, r.StayCategory)
	}
	if r.LeadTimeDays != 8 || r.IsLastMinute {
		t.Errorf("expected 8-day lead time, got %d last_minute=%v", r.LeadTimeDays, r.IsLastMinute)
	}
}

func TestFeatures_Pricing(t *testing.T) {
	b := mkBooking(1, 1, "2026-01-10", 3, 9000)
	b.BasePrice = decimal.NewFromInt(10000)

	r := etl.Features([]domain.Booking{b}, nil)[0]

	if !r.PricePerNight.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected price per night 3000, got %s", r.PricePerNight)
	}
	if r.PriceCategory != "budget" {
		t.Errorf("expected budget category, got %q", r.PriceCategory)
	}
	if !r.DiscountPct.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected 10%% discount, got %s", r.DiscountPct)
	}
}

func TestFeatures_DiscountNeverNegative(t *testing.T) {
	// booked above base price
	b := mkBooking(1, 1, "2026-01-10", 1, 5000)
	b.BasePrice = decimal.NewFromInt(4000)

	r := etl.Features([]domain.Booking{b}, nil)[0]
	if !r.DiscountPct.IsZero() {
		t.Errorf("expected discount clipped to 0, got %s", r.DiscountPct)
	}
}

func TestFeatures_TrailingWindowsAndPrevPrice(t *testing.T) {
	bs := []domain.Booking{
		mkBooking(1, 1, "2026-01-12", 1, 4000), // out of order on purpose
		mkBooking(1, 1, "2026-01-10", 1, 9000),
	}
	rows := etl.Features(bs, nil)

	// rows come back sorted by check-in
	if !rows[0].AvgPrice7.Equal(decimal.NewFromInt(9000)) || rows[0].BookingCnt7 != 1 {
		t.Errorf("first row window wrong: avg=%s cnt=%d", rows[0].AvgPrice7, rows[0].BookingCnt7)
	}
	if !rows[1].AvgPrice7.Equal(decimal.NewFromInt(6500)) || rows[1].BookingCnt7 != 2 {
		t.Errorf("second row window wrong: avg=%s cnt=%d", rows[1].AvgPrice7, rows[1].BookingCnt7)
	}

	if rows[0].PrevPrice != nil {
		t.Errorf("first booking for room must have no previous price")
	}
	if rows[1].PrevPrice == nil || !rows[1].PrevPrice.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("expected previous price 9000, got %v", rows[1].PrevPrice)
	}
}

func TestFeatures_Occupancy(t *testing.T) {
	bs := []domain.Booking{
		mkBooking(1, 1, "2026-01-10", 2, 4000),
		mkBooking(1, 2, "2026-01-10", 1, 5000),
		mkBooking(1, 3, "2026-01-11", 1, 5000),
	}
	rows := etl.Features(bs, map[int64]int{1: 10})

	// two check-ins on the 10th against 10 rooms
	if rows[0].OccupancyRate != 20 {
		t.Errorf("expected 20%% occupancy, got %v", rows[0].OccupancyRate)
	}
	if rows[2].OccupancyRate != 10 {
		t.Errorf("expected 10%% occupancy, got %v", rows[2].OccupancyRate)
	}
	if rows[0].HotelTotalRooms != 10 {
		t.Errorf("expected total rooms carried onto row, got %d", rows[0].HotelTotalRooms)
	}
}

func TestSummarize(t *testing.T) {
	s := etl.Summarize()
	if s.TotalFeatures == 0 {
		t.Fatal("expected a non-empty feature summary")
	}
	var n int
	for _, g := range s.FeatureGroups {
		n += g
	}
	if n != s.TotalFeatures {
		t.Errorf("group counts %d do not add up to total %d", n, s.TotalFeatures)
	}
}
