package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
)

// defaultPeriodDays is assumed when a summary is requested without bounds.
const defaultPeriodDays = 180

// RevenueSummary aggregates revenue, ADR (per room-night) and occupancy over
// a period, across all hotels or for one.
func (c *Calculator) RevenueSummary(ctx context.Context, hotelID *int64, start, end *time.Time) (domain.RevenueSummary, error) {
	var bs []domain.Booking
	for _, st := range []string{domain.StatusConfirmed, domain.StatusCompleted} {
		st := st
		part, err := c.repo.ListBookings(ctx, domain.BookingsQuery{
			HotelID:   hotelID,
			Status:    &st,
			StartDate: start,
			EndDate:   end,
			Limit:     1000000,
		})
		if err != nil {
			return domain.RevenueSummary{}, err
		}
		bs = append(bs, part...)
	}

	out := domain.RevenueSummary{
		TotalRevenue: decimal.Zero,
		ADR:          decimal.Zero,
		PeriodStart:  start,
		PeriodEnd:    end,
	}
	if len(bs) == 0 {
		return out, nil
	}

	roomNights := 0
	for _, b := range bs {
		out.TotalRevenue = out.TotalRevenue.Add(b.BookingPrice)
		roomNights += b.Nights()
	}
	out.TotalBookings = len(bs)
	out.TotalRevenue = out.TotalRevenue.Round(2)
	if roomNights > 0 {
		out.ADR = out.TotalRevenue.DivRound(decimal.NewFromInt(int64(roomNights)), 2)
	}

	totalRooms, err := c.periodRooms(ctx, hotelID)
	if err != nil {
		return domain.RevenueSummary{}, err
	}
	days := defaultPeriodDays
	if start != nil && end != nil {
		days = int(day(*end).Sub(day(*start)).Hours() / 24)
	}
	if available := totalRooms * days; available > 0 {
		out.OccupancyRate = round2(float64(roomNights) / float64(available) * 100)
	}
	return out, nil
}

func (c *Calculator) periodRooms(ctx context.Context, hotelID *int64) (int, error) {
	if hotelID == nil {
		return c.repo.SumTotalRooms(ctx)
	}
	h, err := c.repo.GetHotel(ctx, *hotelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return h.TotalRooms, nil
}

// DailyStats is the point-in-time view of one hotel day; nothing is persisted.
func (c *Calculator) DailyStats(ctx context.Context, hotelID int64, date time.Time) (domain.DailyStats, error) {
	h, err := c.repo.GetHotel(ctx, hotelID)
	if err != nil {
		return domain.DailyStats{}, err
	}
	bs, err := c.hotelBookings(ctx, hotelID)
	if err != nil {
		return domain.DailyStats{}, err
	}
	m := dailyFor(h, bs, date)
	return domain.DailyStats{
		HotelID:       hotelID,
		Date:          m.Date,
		RoomsOccupied: m.RoomsOccupied,
		TotalRooms:    h.TotalRooms,
		OccupancyRate: m.OccupancyRate,
		DailyRevenue:  m.TotalRevenue,
	}, nil
}

// SystemSummary backs the overview endpoint: entity counts plus the running
// month's revenue and occupancy.
func (c *Calculator) SystemSummary(ctx context.Context) (domain.SystemSummary, error) {
	var out domain.SystemSummary
	var err error

	if out.TotalHotels, err = c.repo.CountHotels(ctx); err != nil {
		return out, err
	}
	if out.TotalRooms, err = c.repo.CountRooms(ctx); err != nil {
		return out, err
	}
	if out.TotalBookings, err = c.repo.CountBookings(ctx, nil); err != nil {
		return out, err
	}
	confirmed := domain.StatusConfirmed
	if out.ActiveBookings, err = c.repo.CountBookings(ctx, &confirmed); err != nil {
		return out, err
	}

	today := day(c.now())
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	sum, err := c.RevenueSummary(ctx, nil, &monthStart, &today)
	if err != nil {
		return out, err
	}
	out.CurrentMonthRevenue = sum.TotalRevenue
	out.CurrentMonthOccupancy = sum.OccupancyRate
	return out, nil
}
