package analytics_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/analytics"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
)

// ---- fake repo ----

type fakeRepo struct {
	hotels   []domain.Hotel
	bookings []domain.Booking

	mu       sync.Mutex
	upserted []domain.DailyMetrics
}

func (f *fakeRepo) CreateHotel(ctx context.Context, h domain.Hotel) (int64, error) { return 0, nil }
func (f *fakeRepo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	for _, h := range f.hotels {
		if h.ID == id {
			return h, nil
		}
	}
	return domain.Hotel{}, domain.ErrNotFound
}
func (f *fakeRepo) GetHotelByName(ctx context.Context, name string) (domain.Hotel, error) {
	return domain.Hotel{}, domain.ErrNotFound
}
func (f *fakeRepo) ListHotels(ctx context.Context, pg domain.PageQuery) ([]domain.Hotel, error) {
	return f.hotels, nil
}
func (f *fakeRepo) DeleteHotel(ctx context.Context, id int64) error              { return nil }
func (f *fakeRepo) CreateRoom(ctx context.Context, r domain.Room) (int64, error) { return 0, nil }
func (f *fakeRepo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	return domain.Room{}, domain.ErrNotFound
}
func (f *fakeRepo) ListRooms(ctx context.Context, hotelID *int64, pg domain.PageQuery) ([]domain.Room, error) {
	return nil, nil
}
func (f *fakeRepo) CreateBooking(ctx context.Context, b domain.Booking) (int64, error) {
	return 0, nil
}
func (f *fakeRepo) CreateBookings(ctx context.Context, bs []domain.Booking) (domain.BatchResult, error) {
	return domain.BatchResult{}, nil
}
func (f *fakeRepo) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	return domain.Booking{}, domain.ErrNotFound
}
func (f *fakeRepo) ListBookings(ctx context.Context, q domain.BookingsQuery) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range f.bookings {
		if q.HotelID != nil && b.HotelID != *q.HotelID {
			continue
		}
		if q.Status != nil && b.Status != *q.Status {
			continue
		}
		if q.StartDate != nil && b.CheckIn.Before(*q.StartDate) {
			continue
		}
		if q.EndDate != nil && b.CheckOut.After(*q.EndDate) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
func (f *fakeRepo) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	return nil
}
func (f *fakeRepo) UpsertDailyMetrics(ctx context.Context, m domain.DailyMetrics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, m)
	return nil
}
func (f *fakeRepo) ListDailyMetrics(ctx context.Context, hotelID int64, start, end time.Time) ([]domain.DailyMetrics, error) {
	return nil, nil
}
func (f *fakeRepo) CountHotels(ctx context.Context) (int, error) { return len(f.hotels), nil }
func (f *fakeRepo) CountRooms(ctx context.Context) (int, error)  { return 0, nil }
func (f *fakeRepo) CountBookings(ctx context.Context, status *string) (int, error) {
	n := 0
	for _, b := range f.bookings {
		if status == nil || b.Status == *status {
			n++
		}
	}
	return n, nil
}
func (f *fakeRepo) SumTotalRooms(ctx context.Context) (int, error) {
	n := 0
	for _, h := range f.hotels {
		n += h.TotalRooms
	}
	return n, nil
}
func (f *fakeRepo) BookingDateBounds(ctx context.Context) (time.Time, time.Time, bool, error) {
	if len(f.bookings) == 0 {
		return time.Time{}, time.Time{}, false, nil
	}
	earliest, latest := f.bookings[0].CheckIn, f.bookings[0].CheckOut
	for _, b := range f.bookings {
		if b.CheckIn.Before(earliest) {
			earliest = b.CheckIn
		}
		if b.CheckOut.After(latest) {
			latest = b.CheckOut
		}
	}
	return earliest, latest, true, nil
}

// ---- helpers ----

func date(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func booking(hotel, room int64, in, out string, price float64, status string) domain.Booking {
	return domain.Booking{
		HotelID:      hotel,
		RoomID:       room,
		CheckIn:      date(in),
		CheckOut:     date(out),
		GuestName:    "Guest",
		NumGuests:    2,
		BookingPrice: decimal.NewFromFloat(price),
		BasePrice:    decimal.NewFromFloat(price),
		Status:       status,
	}
}

// ---- tests ----

func TestCalculateDaily(t *testing.T) {
	repo := &fakeRepo{
		hotels: []domain.Hotel{{ID: 1, Name: "Grand Plaza", TotalRooms: 10}},
		bookings: []domain.Booking{
			// 2 nights at 4000 total: 2000 earned per night
			booking(1, 1, "2026-01-10", "2026-01-12", 4000, domain.StatusConfirmed),
			// overlaps the 10th as well
			booking(1, 2, "2026-01-10", "2026-01-11", 3000, domain.StatusCompleted),
			// cancelled stays out of occupancy but counts as a cancellation
			booking(1, 3, "2026-01-10", "2026-01-12", 9000, domain.StatusCancelled),
			// checkout day, does not occupy the 10th
			booking(1, 4, "2026-01-08", "2026-01-10", 2000, domain.StatusConfirmed),
		},
	}
	calc := analytics.NewCalculator(repo, 2)

	m, err := calc.CalculateDaily(context.Background(), 1, date("2026-01-10"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if m.RoomsOccupied != 2 {
		t.Errorf("expected 2 rooms occupied, got %d", m.RoomsOccupied)
	}
	if m.OccupancyRate != 20 {
		t.Errorf("expected 20%% occupancy, got %v", m.OccupancyRate)
	}
	// 4000/2 + 3000/1 = 5000
	if !m.TotalRevenue.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected revenue 5000, got %s", m.TotalRevenue)
	}
	if !m.ADR.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("expected ADR 2500, got %s", m.ADR)
	}
	if !m.RevPAR.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected RevPAR 500, got %s", m.RevPAR)
	}
	if m.BookingCount != 3 || m.CancellationCount != 1 {
		t.Errorf("expected 3 check-ins / 1 cancellation, got %d/%d", m.BookingCount, m.CancellationCount)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(repo.upserted))
	}
}

func TestCalculateRange(t *testing.T) {
	repo := &fakeRepo{
		hotels: []domain.Hotel{{ID: 1, Name: "Grand Plaza", TotalRooms: 5}},
		bookings: []domain.Booking{
			booking(1, 1, "2026-01-10", "2026-01-13", 3000, domain.StatusConfirmed),
		},
	}
	calc := analytics.NewCalculator(repo, 2)

	ms, err := calc.CalculateRange(context.Background(), 1, date("2026-01-09"), date("2026-01-13"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(ms) != 5 {
		t.Fatalf("expected 5 days, got %d", len(ms))
	}
	// empty day before check-in
	if ms[0].RoomsOccupied != 0 || !ms[0].TotalRevenue.IsZero() {
		t.Errorf("expected empty day, got %+v", ms[0])
	}
	// each of the 3 stay nights earns 1000
	for i := 1; i <= 3; i++ {
		if !ms[i].TotalRevenue.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("day %d: expected 1000, got %s", i, ms[i].TotalRevenue)
		}
	}
	// checkout day earns nothing
	if ms[4].RoomsOccupied != 0 {
		t.Errorf("checkout day must not count as occupied: %+v", ms[4])
	}
}

func TestRecalculateAll(t *testing.T) {
	repo := &fakeRepo{
		hotels: []domain.Hotel{
			{ID: 1, Name: "A", TotalRooms: 10},
			{ID: 2, Name: "B", TotalRooms: 20},
		},
		bookings: []domain.Booking{
			booking(1, 1, "2026-01-10", "2026-01-12", 4000, domain.StatusConfirmed),
			booking(2, 5, "2026-01-11", "2026-01-13", 6000, domain.StatusConfirmed),
		},
	}
	calc := analytics.NewCalculator(repo, 4)

	res, err := calc.RecalculateAll(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.HotelsProcessed != 2 {
		t.Errorf("expected 2 hotels, got %d", res.HotelsProcessed)
	}
	// span is Jan 10..13 inclusive: 4 days per hotel
	if res.MetricsCalculated != 8 {
		t.Errorf("expected 8 metric rows, got %d", res.MetricsCalculated)
	}
}

func TestRecalculateAll_NoBookings(t *testing.T) {
	repo := &fakeRepo{hotels: []domain.Hotel{{ID: 1, TotalRooms: 10}}}
	calc := analytics.NewCalculator(repo, 2)

	res, err := calc.RecalculateAll(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.HotelsProcessed != 0 || res.MetricsCalculated != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestRevenueSummary(t *testing.T) {
	start, end := date("2026-01-01"), date("2026-01-31")
	repo := &fakeRepo{
		hotels: []domain.Hotel{{ID: 1, Name: "Grand Plaza", TotalRooms: 10}},
		bookings: []domain.Booking{
			booking(1, 1, "2026-01-10", "2026-01-12", 4000, domain.StatusConfirmed),
			booking(1, 2, "2026-01-15", "2026-01-16", 3000, domain.StatusCompleted),
			// cancelled revenue is excluded
			booking(1, 3, "2026-01-20", "2026-01-22", 9000, domain.StatusCancelled),
		},
	}
	calc := analytics.NewCalculator(repo, 2)

	hotelID := int64(1)
	sum, err := calc.RevenueSummary(context.Background(), &hotelID, &start, &end)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if sum.TotalBookings != 2 {
		t.Errorf("expected 2 bookings, got %d", sum.TotalBookings)
	}
	if !sum.TotalRevenue.Equal(decimal.NewFromInt(7000)) {
		t.Errorf("expected revenue 7000, got %s", sum.TotalRevenue)
	}
	// 3 room-nights sold: 7000/3
	if !sum.ADR.Equal(decimal.NewFromFloat(2333.33)) {
		t.Errorf("expected ADR 2333.33, got %s", sum.ADR)
	}
	// 3 room-nights over 10 rooms * 30 days = 1%
	if sum.OccupancyRate != 1 {
		t.Errorf("expected 1%% occupancy, got %v", sum.OccupancyRate)
	}
}

func TestRevenueSummary_Empty(t *testing.T) {
	repo := &fakeRepo{hotels: []domain.Hotel{{ID: 1, TotalRooms: 10}}}
	calc := analytics.NewCalculator(repo, 2)

	sum, err := calc.RevenueSummary(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if sum.TotalBookings != 0 || !sum.TotalRevenue.IsZero() {
		t.Errorf("expected zero summary, got %+v", sum)
	}
}

func TestDailyStats(t *testing.T) {
	repo := &fakeRepo{
		hotels: []domain.Hotel{{ID: 1, Name: "Grand Plaza", TotalRooms: 4}},
		bookings: []domain.Booking{
			booking(1, 1, "2026-01-10", "2026-01-12", 4000, domain.StatusConfirmed),
		},
	}
	calc := analytics.NewCalculator(repo, 2)

	st, err := calc.DailyStats(context.Background(), 1, date("2026-01-11"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if st.RoomsOccupied != 1 || st.TotalRooms != 4 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if st.OccupancyRate != 25 {
		t.Errorf("expected 25%% occupancy, got %v", st.OccupancyRate)
	}
	if !st.DailyRevenue.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected daily revenue 2000, got %s", st.DailyRevenue)
	}
	if len(repo.upserted) != 0 {
		t.Errorf("daily stats must not persist anything")
	}
}
