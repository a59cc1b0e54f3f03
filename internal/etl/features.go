package etl

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
)

// FeatureRow is one booking enriched with the engineered model inputs used by
// the demand-forecasting and pricing work downstream.
type FeatureRow struct {
	HotelID int64 `json:"hotel_id"`
	RoomID  int64 `json:"room_id"`

	// time features
	DayOfWeek  int    `json:"day_of_week"` // 0=Monday .. 6=Sunday
	DayOfMonth int    `json:"day_of_month"`
	Month      int    `json:"month"`
	Quarter    int    `json:"quarter"`
	Year       int    `json:"year"`
	WeekOfYear int    `json:"week_of_year"`
	IsWeekend  bool   `json:"is_weekend"`
	Season     string `json:"season"` // winter|spring|monsoon|autumn
	IsPeak     bool   `json:"is_peak_season"`
	IsHoliday  bool   `json:"is_holiday_season"`

	// stay features
	LengthOfStay int    `json:"length_of_stay"`
	StayCategory string `json:"stay_category"` // short|medium|long|extended
	LeadTimeDays int    `json:"lead_time_days"`
	IsLastMinute bool   `json:"is_last_minute"`

	// pricing features
	PricePerNight decimal.Decimal `json:"price_per_night"`
	DiscountPct   decimal.Decimal `json:"discount_pct"`
	PriceCategory string          `json:"price_category"` // budget|mid_range|premium|luxury

	// aggregates over the hotel's trailing bookings (row windows, check-in order)
	AvgPrice7    decimal.Decimal  `json:"avg_price_7d"`
	AvgPrice30   decimal.Decimal  `json:"avg_price_30d"`
	BookingCnt7  int              `json:"booking_count_7d"`
	BookingCnt30 int              `json:"booking_count_30d"`
	PrevPrice    *decimal.Decimal `json:"prev_booking_price,omitempty"`

	// occupancy features
	HotelTotalRooms int     `json:"hotel_total_rooms"`
	OccupancyRate   float64 `json:"occupancy_rate"` // bookings checking in that day / total rooms, pct
}

var seasonByMonth = map[time.Month]string{
	time.December: "winter", time.January: "winter", time.February: "winter",
	time.March: "spring", time.April: "spring", time.May: "spring",
	time.June: "monsoon", time.July: "monsoon", time.August: "monsoon",
	time.September: "autumn", time.October: "autumn", time.November: "autumn",
}

func peakSeason(m time.Month) bool {
	return m == time.October || m == time.November || m == time.December ||
		m == time.January || m == time.February
}

func holidaySeason(m time.Month) bool {
	return m == time.December || m == time.January || m == time.April || m == time.October
}

func stayCategory(nights int) string {
	switch {
	case nights <= 0:
		return ""
	case nights == 1:
		return "short"
	case nights <= 3:
		return "medium"
	case nights <= 7:
		return "long"
	case nights <= 30:
		return "extended"
	default:
		return ""
	}
}

func priceCategory(perNight decimal.Decimal) string {
	switch {
	case perNight.LessThanOrEqual(decimal.NewFromInt(3000)):
		return "budget"
	case perNight.LessThanOrEqual(decimal.NewFromInt(6000)):
		return "mid_range"
	case perNight.LessThanOrEqual(decimal.NewFromInt(10000)):
		return "premium"
	default:
		return "luxury"
	}
}

// mondayBased converts Go's Sunday-first weekday to the 0=Monday convention
// the feature consumers expect.
func mondayBased(d time.Weekday) int { return (int(d) + 6) % 7 }

// Features engineers the full feature set for a batch. totalRooms maps hotel
// id to room inventory; rows come back sorted by check-in date, which is also
// the window order for the trailing aggregates.
func Features(bs []domain.Booking, totalRooms map[int64]int) []FeatureRow {
	sorted := append([]domain.Booking(nil), bs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CheckIn.Before(sorted[j].CheckIn) })

	// per-day check-in counts for the occupancy feature
	type hotelDay struct {
		hotel int64
		day   time.Time
	}
	checkins := map[hotelDay]int{}
	for _, b := range sorted {
		checkins[hotelDay{b.HotelID, day(b.CheckIn)}]++
	}

	rows := make([]FeatureRow, 0, len(sorted))
	hist := map[int64][]decimal.Decimal{}        // per-hotel price history in window order
	lastByRoom := map[[2]int64]decimal.Decimal{} // (hotel, room) -> previous booking price
	seenRoom := map[[2]int64]bool{}

	for _, b := range sorted {
		r := FeatureRow{HotelID: b.HotelID, RoomID: b.RoomID}

		ci := b.CheckIn
		r.DayOfWeek = mondayBased(ci.Weekday())
		r.DayOfMonth = ci.Day()
		r.Month = int(ci.Month())
		r.Quarter = (int(ci.Month())-1)/3 + 1
		r.Year = ci.Year()
		_, r.WeekOfYear = ci.ISOWeek()
		r.IsWeekend = r.DayOfWeek == 5 || r.DayOfWeek == 6
		r.Season = seasonByMonth[ci.Month()]
		r.IsPeak = peakSeason(ci.Month())
		r.IsHoliday = holidaySeason(ci.Month())

		nights := b.Nights()
		r.LengthOfStay = nights
		r.StayCategory = stayCategory(nights)
		if !b.BookedAt.IsZero() {
			r.LeadTimeDays = int(day(ci).Sub(day(b.BookedAt)).Hours() / 24)
			r.IsLastMinute = r.LeadTimeDays <= 3
		}

		if nights > 0 {
			r.PricePerNight = b.BookingPrice.DivRound(decimal.NewFromInt(int64(nights)), 2)
		}
		if b.BasePrice.IsPositive() {
			pct := b.BasePrice.Sub(b.BookingPrice).
				Div(b.BasePrice).
				Mul(decimal.NewFromInt(100)).
				Round(2)
			if pct.IsNegative() {
				pct = decimal.Zero
			}
			r.DiscountPct = pct
		}
		r.PriceCategory = priceCategory(r.PricePerNight)

		h := append(hist[b.HotelID], b.BookingPrice)
		hist[b.HotelID] = h
		r.AvgPrice7, r.BookingCnt7 = trailingAvg(h, 7)
		r.AvgPrice30, r.BookingCnt30 = trailingAvg(h, 30)

		rk := [2]int64{b.HotelID, b.RoomID}
		if seenRoom[rk] {
			prev := lastByRoom[rk]
			r.PrevPrice = &prev
		}
		lastByRoom[rk] = b.BookingPrice
		seenRoom[rk] = true

		r.HotelTotalRooms = totalRooms[b.HotelID]
		if r.HotelTotalRooms > 0 {
			booked := checkins[hotelDay{b.HotelID, day(ci)}]
			r.OccupancyRate = round2(float64(booked) / float64(r.HotelTotalRooms) * 100)
		}

		rows = append(rows, r)
	}
	return rows
}

// trailingAvg averages the last n entries of the window (including the
// current one), mirroring a min_periods=1 rolling mean over rows.
func trailingAvg(window []decimal.Decimal, n int) (decimal.Decimal, int) {
	start := len(window) - n
	if start < 0 {
		start = 0
	}
	slice := window[start:]
	sum := decimal.Zero
	for _, p := range slice {
		sum = sum.Add(p)
	}
	return sum.DivRound(decimal.NewFromInt(int64(len(slice))), 2), len(slice)
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}

// FeatureSummary groups the engineered feature names the way downstream
// consumers discover them.
type FeatureSummary struct {
	TotalFeatures int                 `json:"total_features"`
	FeatureGroups map[string]int      `json:"feature_groups"`
	FeatureList   map[string][]string `json:"feature_list"`
}

func Summarize() FeatureSummary {
	groups := map[string][]string{
		"time_features":       {"day_of_week", "day_of_month", "month", "quarter", "year", "week_of_year", "is_weekend", "season", "is_peak_season", "is_holiday_season"},
		"stay_features":       {"length_of_stay", "stay_category", "lead_time_days", "is_last_minute"},
		"pricing_features":    {"price_per_night", "discount_pct", "price_category"},
		"aggregated_features": {"avg_price_7d", "avg_price_30d", "booking_count_7d", "booking_count_30d", "prev_booking_price"},
		"occupancy_features":  {"hotel_total_rooms", "occupancy_rate"},
	}
	counts := make(map[string]int, len(groups))
	total := 0
	for g, fs := range groups {
		counts[g] = len(fs)
		total += len(fs)
	}
	return FeatureSummary{TotalFeatures: total, FeatureGroups: counts, FeatureList: groups}
}
