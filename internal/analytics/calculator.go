package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
)

// Calculator derives occupancy/revenue aggregates (occupancy rate, ADR,
// RevPAR) from raw bookings and persists them as daily_metrics rows.
type Calculator struct {
	repo    domain.Repository
	workers int64
	now     func() time.Time
}

func NewCalculator(repo domain.Repository, workers int) *Calculator {
	if workers <= 0 {
		workers = 8
	}
	return &Calculator{repo: repo, workers: int64(workers), now: time.Now}
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(f float64) float64 { return float64(int64(f*100+0.5)) / 100 }

// hotelBookings pulls the full booking history for one hotel once per
// calculation pass; day-level math then happens in memory.
func (c *Calculator) hotelBookings(ctx context.Context, hotelID int64) ([]domain.Booking, error) {
	return c.repo.ListBookings(ctx, domain.BookingsQuery{HotelID: &hotelID, Limit: 1000000})
}

func dailyFor(h domain.Hotel, bs []domain.Booking, d time.Time) domain.DailyMetrics {
	d = day(d)

	occupied := 0
	revenue := decimal.Zero
	bookingCount := 0
	cancellations := 0
	for _, b := range bs {
		if day(b.CheckIn).Equal(d) {
			bookingCount++
			if b.Status == domain.StatusCancelled {
				cancellations++
			}
		}
		if !b.Active() || !b.Occupies(d) {
			continue
		}
		occupied++
		if n := b.Nights(); n > 0 {
			revenue = revenue.Add(b.BookingPrice.Div(decimal.NewFromInt(int64(n))))
		}
	}

	m := domain.DailyMetrics{
		HotelID:           h.ID,
		Date:              d,
		RoomsOccupied:     occupied,
		RoomsAvailable:    h.TotalRooms,
		TotalRevenue:      revenue.Round(2),
		BookingCount:      bookingCount,
		CancellationCount: cancellations,
	}
	if h.TotalRooms > 0 {
		m.OccupancyRate = round2(float64(occupied) / float64(h.TotalRooms) * 100)
		m.RevPAR = revenue.DivRound(decimal.NewFromInt(int64(h.TotalRooms)), 2)
	}
	if occupied > 0 {
		m.ADR = revenue.DivRound(decimal.NewFromInt(int64(occupied)), 2)
	}
	return m
}

// CalculateDaily computes and upserts the metrics row for one hotel day.
func (c *Calculator) CalculateDaily(ctx context.Context, hotelID int64, date time.Time) (domain.DailyMetrics, error) {
	h, err := c.repo.GetHotel(ctx, hotelID)
	if err != nil {
		return domain.DailyMetrics{}, err
	}
	bs, err := c.hotelBookings(ctx, hotelID)
	if err != nil {
		return domain.DailyMetrics{}, err
	}
	m := dailyFor(h, bs, date)
	if err := c.repo.UpsertDailyMetrics(ctx, m); err != nil {
		return domain.DailyMetrics{}, err
	}
	m.CalculatedAt = c.now()
	return m, nil
}

// CalculateRange computes and upserts metrics for every day in [start, end].
func (c *Calculator) CalculateRange(ctx context.Context, hotelID int64, start, end time.Time) ([]domain.DailyMetrics, error) {
	h, err := c.repo.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	bs, err := c.hotelBookings(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	var out []domain.DailyMetrics
	for d := day(start); !d.After(day(end)); d = d.AddDate(0, 0, 1) {
		m := dailyFor(h, bs, d)
		if err := c.repo.UpsertDailyMetrics(ctx, m); err != nil {
			return nil, fmt.Errorf("upsert metrics %s/%s: %w", h.Name, d.Format("2006-01-02"), err)
		}
		m.CalculatedAt = c.now()
		out = append(out, m)
	}
	return out, nil
}

// RecalcResult reports a full recalculation pass.
type RecalcResult struct {
	HotelsProcessed   int        `json:"hotels_processed"`
	MetricsCalculated int        `json:"metrics_calculated"`
	PeriodStart       *time.Time `json:"period_start,omitempty"`
	PeriodEnd         *time.Time `json:"period_end,omitempty"`
}

// RecalculateAll rebuilds every hotel's daily metrics over the full booking
// date span, a bounded number of hotels at a time.
func (c *Calculator) RecalculateAll(ctx context.Context) (RecalcResult, error) {
	hotels, err := c.repo.ListHotels(ctx, domain.PageQuery{Limit: 10000})
	if err != nil {
		return RecalcResult{}, err
	}
	earliest, latest, ok, err := c.repo.BookingDateBounds(ctx)
	if err != nil {
		return RecalcResult{}, err
	}
	if !ok {
		return RecalcResult{}, nil
	}

	sem := semaphore.NewWeighted(c.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0
	var firstErr error

	for _, h := range hotels {
		h := h
		if err := sem.Acquire(ctx, 1); err != nil {
			return RecalcResult{}, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			ms, err := c.CalculateRange(ctx, h.ID, earliest, latest)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				log.Warn().Int64("hotel_id", h.ID).Err(err).Msg("metric recalculation failed")
				return
			}
			total += len(ms)
			log.Info().Int64("hotel_id", h.ID).Int("days", len(ms)).Msg("metrics recalculated")
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return RecalcResult{}, firstErr
	}

	e, l := day(earliest), day(latest)
	return RecalcResult{
		HotelsProcessed:   len(hotels),
		MetricsCalculated: total,
		PeriodStart:       &e,
		PeriodEnd:         &l,
	}, nil
}
