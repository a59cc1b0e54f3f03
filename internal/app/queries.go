package app

import (
	"context"
	"fmt"
	"time"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/analytics"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
)

type QueryService struct {
	repo     domain.Repository
	cache    domain.Cache
	calc     *analytics.Calculator
	cacheTTL time.Duration
}

func NewQueryService(r domain.Repository, c domain.Cache, calc *analytics.Calculator, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, calc: calc, cacheTTL: ttl}
}

func (s *QueryService) ttl() int { return int(s.cacheTTL.Seconds()) }

func (s *QueryService) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	key := fmt.Sprintf("hotel:%d", id)
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	_ = s.cache.Set(ctx, key, h, s.ttl())
	return h, nil
}

func (s *QueryService) ListHotels(ctx context.Context, pg domain.PageQuery) ([]domain.Hotel, error) {
	key := fmt.Sprintf("hotels:%d:%d", pg.Offset, pg.Limit)
	var out []domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	hs, err := s.repo.ListHotels(ctx, pg)
	if err != nil {
		return nil, err
	}
	// copy before caching so callers can't mutate the cached slice
	cp := append([]domain.Hotel(nil), hs...)
	_ = s.cache.Set(ctx, key, cp, s.ttl())
	return cp, nil
}

func (s *QueryService) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	return s.repo.GetRoom(ctx, id)
}

func (s *QueryService) ListRooms(ctx context.Context, hotelID *int64, pg domain.PageQuery) ([]domain.Room, error) {
	return s.repo.ListRooms(ctx, hotelID, pg)
}

func (s *QueryService) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// ListBookings is uncached: the filter space is too wide for useful keys and
// bookings churn constantly.
func (s *QueryService) ListBookings(ctx context.Context, q domain.BookingsQuery) ([]domain.Booking, error) {
	return s.repo.ListBookings(ctx, q)
}

func (s *QueryService) ListDailyMetrics(ctx context.Context, hotelID int64, start, end time.Time) ([]domain.DailyMetrics, error) {
	return s.repo.ListDailyMetrics(ctx, hotelID, start, end)
}

func (s *QueryService) RevenueSummary(ctx context.Context, hotelID *int64, start, end *time.Time) (domain.RevenueSummary, error) {
	key := revenueKey(hotelID, start, end)
	var out domain.RevenueSummary
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	sum, err := s.calc.RevenueSummary(ctx, hotelID, start, end)
	if err != nil {
		return domain.RevenueSummary{}, err
	}
	_ = s.cache.Set(ctx, key, sum, s.ttl())
	return sum, nil
}

func (s *QueryService) DailyStats(ctx context.Context, hotelID int64, date time.Time) (domain.DailyStats, error) {
	return s.calc.DailyStats(ctx, hotelID, date)
}

func (s *QueryService) SystemSummary(ctx context.Context) (domain.SystemSummary, error) {
	const key = "summary"
	var out domain.SystemSummary
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	sum, err := s.calc.SystemSummary(ctx)
	if err != nil {
		return domain.SystemSummary{}, err
	}
	_ = s.cache.Set(ctx, key, sum, s.ttl())
	return sum, nil
}

func revenueKey(hotelID *int64, start, end *time.Time) string {
	h := int64(0)
	if hotelID != nil {
		h = *hotelID
	}
	f := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("2006-01-02")
	}
	return fmt.Sprintf("revenue:%d:%s:%s", h, f(start), f(end))
}
