//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
	mysqlrepo "github.com/karan00190/HotelIQ-Revenue-Management/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string     { return &s }
func pfloat(f float64) *float64 { return &f }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func date(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

// ---------- the test ----------
func TestRepo_MySQL_FullLifecycle(t *testing.T) {
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hoteliq",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "hoteliq")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// hotels
	hotelID, err := repo.CreateHotel(ctx, domain.Hotel{
		Name:       "Grand Plaza Mumbai",
		Location:   "Mumbai, Maharashtra",
		TotalRooms: 150,
		StarRating: pfloat(5.0),
	})
	if err != nil {
		t.Fatalf("CreateHotel: %v", err)
	}
	if _, err := repo.CreateHotel(ctx, domain.Hotel{
		Name: "Grand Plaza Mumbai", Location: "elsewhere", TotalRooms: 1,
	}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate hotel name, got %v", err)
	}

	byName, err := repo.GetHotelByName(ctx, "Grand Plaza Mumbai")
	if err != nil || byName.ID != hotelID {
		t.Fatalf("GetHotelByName: id=%d err=%v", byName.ID, err)
	}
	if byName.StarRating == nil || *byName.StarRating != 5.0 {
		t.Fatalf("star rating lost: %+v", byName)
	}

	// rooms
	roomID, err := repo.CreateRoom(ctx, domain.Room{
		HotelID:      hotelID,
		RoomNumber:   "101",
		RoomType:     "Deluxe",
		BasePrice:    decimal.NewFromFloat(6500.50),
		MaxOccupancy: 2,
		Available:    true,
	})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	room, err := repo.GetRoom(ctx, roomID)
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	if !room.BasePrice.Equal(decimal.NewFromFloat(6500.50)) {
		t.Fatalf("base price round-trip lost precision: %s", room.BasePrice)
	}

	// single booking
	b := domain.Booking{
		HotelID:      hotelID,
		RoomID:       roomID,
		CheckIn:      date("2026-01-10"),
		CheckOut:     date("2026-01-12"),
		GuestName:    "Rahul Sharma",
		GuestEmail:   pstr("rahul@example.com"),
		NumGuests:    2,
		BookingPrice: decimal.NewFromInt(13000),
		BasePrice:    decimal.NewFromInt(13001),
		Source:       "website",
		Status:       domain.StatusConfirmed,
	}
	bookingID, err := repo.CreateBooking(ctx, b)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	// batch insert: one new row, one duplicate slot
	dup := b
	dup.GuestName = "Someone Else"
	fresh := b
	fresh.CheckIn = date("2026-02-01")
	fresh.CheckOut = date("2026-02-03")
	res, err := repo.CreateBookings(ctx, []domain.Booking{dup, fresh})
	if err != nil {
		t.Fatalf("CreateBookings: %v", err)
	}
	if res.Loaded != 1 || res.Skipped != 1 || res.Total != 2 {
		t.Fatalf("unexpected batch result: %+v", res)
	}

	// filtered listing
	st := domain.StatusConfirmed
	from := date("2026-01-01")
	got, err := repo.ListBookings(ctx, domain.BookingsQuery{
		HotelID:   &hotelID,
		Status:    &st,
		StartDate: &from,
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 confirmed bookings, got %d", len(got))
	}

	// status updates
	if err := repo.UpdateBookingStatus(ctx, bookingID, domain.StatusCancelled); err != nil {
		t.Fatalf("UpdateBookingStatus: %v", err)
	}
	if err := repo.UpdateBookingStatus(ctx, bookingID, domain.StatusCancelled); err != nil {
		t.Fatalf("same-status update should be a no-op, got %v", err)
	}
	if err := repo.UpdateBookingStatus(ctx, 999999, domain.StatusCancelled); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing booking, got %v", err)
	}
	after, err := repo.GetBooking(ctx, bookingID)
	if err != nil || after.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled booking, got %+v err=%v", after, err)
	}

	// daily metrics upsert is keyed on (hotel, date): second write overwrites
	m := domain.DailyMetrics{
		HotelID:        hotelID,
		Date:           date("2026-01-10"),
		OccupancyRate:  1.5,
		RoomsOccupied:  2,
		RoomsAvailable: 150,
		TotalRevenue:   decimal.NewFromInt(13000),
		ADR:            decimal.NewFromInt(6500),
		RevPAR:         decimal.NewFromFloat(86.67),
		BookingCount:   2,
	}
	if err := repo.UpsertDailyMetrics(ctx, m); err != nil {
		t.Fatalf("UpsertDailyMetrics: %v", err)
	}
	m.RoomsOccupied = 3
	if err := repo.UpsertDailyMetrics(ctx, m); err != nil {
		t.Fatalf("UpsertDailyMetrics (overwrite): %v", err)
	}
	ms, err := repo.ListDailyMetrics(ctx, hotelID, date("2026-01-01"), date("2026-01-31"))
	if err != nil {
		t.Fatalf("ListDailyMetrics: %v", err)
	}
	if len(ms) != 1 || ms[0].RoomsOccupied != 3 {
		t.Fatalf("expected single overwritten metrics row, got %+v", ms)
	}

	// aggregates
	if n, _ := repo.CountHotels(ctx); n != 1 {
		t.Fatalf("CountHotels: %d", n)
	}
	if n, _ := repo.SumTotalRooms(ctx); n != 150 {
		t.Fatalf("SumTotalRooms: %d", n)
	}
	earliest, latest, ok, err := repo.BookingDateBounds(ctx)
	if err != nil || !ok {
		t.Fatalf("BookingDateBounds: ok=%v err=%v", ok, err)
	}
	if !earliest.Equal(date("2026-01-10")) || !latest.Equal(date("2026-02-03")) {
		t.Fatalf("unexpected bounds: %v..%v", earliest, latest)
	}

	// cascade delete
	if err := repo.DeleteHotel(ctx, hotelID); err != nil {
		t.Fatalf("DeleteHotel: %v", err)
	}
	if _, err := repo.GetBooking(ctx, bookingID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected bookings to cascade away, got %v", err)
	}
}
