package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// dateOnly normalizes to UTC midnight so DATE columns round-trip exactly.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isDuplicate(err error) bool {
	var me *driver.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- hotels ----

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertHotelSQL, h.Name, h.Location, h.TotalRooms, valF64(h.StarRating))
	if err != nil {
		if isDuplicate(err) {
			return 0, domain.ErrConflict
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	return scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
}

func (r *Repo) GetHotelByName(ctx context.Context, name string) (domain.Hotel, error) {
	return scanHotel(r.db.QueryRowContext(ctx, getHotelByNameSQL, name))
}

func scanHotel(row *sql.Row) (domain.Hotel, error) {
	var h domain.Hotel
	var stars sql.NullFloat64
	if err := row.Scan(&h.ID, &h.Name, &h.Location, &h.TotalRooms, &stars, &h.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Hotel{}, domain.ErrNotFound
		}
		return domain.Hotel{}, err
	}
	if stars.Valid {
		s := stars.Float64
		h.StarRating = &s
	}
	return h, nil
}

func (r *Repo) ListHotels(ctx context.Context, pg domain.PageQuery) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL, pg.Limit, pg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Hotel
	for rows.Next() {
		var h domain.Hotel
		var stars sql.NullFloat64
		if err := rows.Scan(&h.ID, &h.Name, &h.Location, &h.TotalRooms, &stars, &h.CreatedAt); err != nil {
			return nil, err
		}
		if stars.Valid {
			s := stars.Float64
			h.StarRating = &s
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteHotel(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteHotelSQL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ---- rooms ----

func (r *Repo) CreateRoom(ctx context.Context, rm domain.Room) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertRoomSQL,
		rm.HotelID, rm.RoomNumber, rm.RoomType, rm.BasePrice, rm.MaxOccupancy, rm.Available)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	var rm domain.Room
	err := r.db.QueryRowContext(ctx, getRoomSQL, id).Scan(
		&rm.ID, &rm.HotelID, &rm.RoomNumber, &rm.RoomType, &rm.BasePrice, &rm.MaxOccupancy, &rm.Available)
	if err == sql.ErrNoRows {
		return domain.Room{}, domain.ErrNotFound
	}
	return rm, err
}

func (r *Repo) ListRooms(ctx context.Context, hotelID *int64, pg domain.PageQuery) ([]domain.Room, error) {
	q := `SELECT id, hotel_id, room_number, room_type, base_price, max_occupancy, is_available FROM rooms`
	args := []any{}
	if hotelID != nil {
		q += ` WHERE hotel_id = ?`
		args = append(args, *hotelID)
	}
	q += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, pg.Limit, pg.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.ID, &rm.HotelID, &rm.RoomNumber, &rm.RoomType,
			&rm.BasePrice, &rm.MaxOccupancy, &rm.Available); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// ---- bookings ----

func bookingArgs(b domain.Booking) []any {
	var bookedAt any
	if !b.BookedAt.IsZero() {
		bookedAt = b.BookedAt
	}
	return []any{
		b.HotelID,
		b.RoomID,
		dateOnly(b.CheckIn),
		dateOnly(b.CheckOut),
		b.GuestName,
		valStr(b.GuestEmail),
		b.NumGuests,
		b.BookingPrice,
		b.BasePrice,
		bookedAt,
		b.Source,
		b.Status,
	}
}

func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertBookingSQL, bookingArgs(b)...)
	if err != nil {
		if isDuplicate(err) {
			return 0, domain.ErrConflict
		}
		return 0, err
	}
	return res.LastInsertId()
}

// CreateBookings loads a batch; a row colliding on (hotel_id, room_id,
// check_in_date) is counted as skipped, not an error. On a batch-level failure
// it falls back to row-at-a-time so one bad record doesn't sink the rest.
func (r *Repo) CreateBookings(ctx context.Context, bs []domain.Booking) (domain.BatchResult, error) {
	out := domain.BatchResult{Total: len(bs)}
	if len(bs) == 0 {
		return out, nil
	}

	values := make([]string, 0, len(bs))
	args := make([]any, 0, len(bs)*12)
	for _, b := range bs {
		values = append(values, "(?,?,?,?,?,?,?,?,?,COALESCE(?, CURRENT_TIMESTAMP),?,?)")
		args = append(args, bookingArgs(b)...)
	}

	res, err := r.db.ExecContext(ctx, insertBookingsPrefix+strings.Join(values, ",")+insertBookingsOnDup, args...)
	if err == nil {
		n, _ := res.RowsAffected()
		out.Loaded = int(n)
		out.Skipped = out.Total - out.Loaded
		return out, nil
	}

	for _, b := range bs {
		if _, err := r.CreateBooking(ctx, b); err != nil {
			if err == domain.ErrConflict {
				out.Skipped++
			} else {
				out.Errors++
			}
			continue
		}
		out.Loaded++
	}
	return out, nil
}

func (r *Repo) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	row := r.db.QueryRowContext(ctx, getBookingSQL, id)
	b, err := scanBooking(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, err
}

func scanBooking(scan func(...any) error) (domain.Booking, error) {
	var b domain.Booking
	var email, source, status sql.NullString
	var bookedAt sql.NullTime
	err := scan(&b.ID, &b.HotelID, &b.RoomID, &b.CheckIn, &b.CheckOut,
		&b.GuestName, &email, &b.NumGuests, &b.BookingPrice, &b.BasePrice,
		&bookedAt, &source, &status)
	if err != nil {
		return domain.Booking{}, err
	}
	if email.Valid {
		e := email.String
		b.GuestEmail = &e
	}
	if bookedAt.Valid {
		b.BookedAt = bookedAt.Time
	}
	b.Source = source.String
	b.Status = status.String
	return b, nil
}

func (r *Repo) ListBookings(ctx context.Context, q domain.BookingsQuery) ([]domain.Booking, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT id, hotel_id, room_id, check_in_date, check_out_date, guest_name, guest_email,
       num_guests, booking_price, base_price, booking_date, booking_source, status
FROM bookings WHERE 1=1`)
	args := []any{}
	if q.HotelID != nil {
		sb.WriteString(` AND hotel_id = ?`)
		args = append(args, *q.HotelID)
	}
	if q.Status != nil {
		sb.WriteString(` AND status = ?`)
		args = append(args, *q.Status)
	}
	if q.StartDate != nil {
		sb.WriteString(` AND check_in_date >= ?`)
		args = append(args, dateOnly(*q.StartDate))
	}
	if q.EndDate != nil {
		sb.WriteString(` AND check_out_date <= ?`)
		args = append(args, dateOnly(*q.EndDate))
	}
	sb.WriteString(` ORDER BY check_in_date DESC, id DESC LIMIT ? OFFSET ?`)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, updateBookingStatusSQL, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// distinguish "missing" from "already in that status"
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// ---- daily metrics ----

func (r *Repo) UpsertDailyMetrics(ctx context.Context, m domain.DailyMetrics) error {
	_, err := r.db.ExecContext(ctx, upsertDailyMetricsSQL,
		m.HotelID, dateOnly(m.Date), m.OccupancyRate, m.RoomsOccupied, m.RoomsAvailable,
		m.TotalRevenue, m.ADR, m.RevPAR, m.BookingCount, m.CancellationCount)
	return err
}

func (r *Repo) ListDailyMetrics(ctx context.Context, hotelID int64, start, end time.Time) ([]domain.DailyMetrics, error) {
	rows, err := r.db.QueryContext(ctx, listDailyMetricsSQL, hotelID, dateOnly(start), dateOnly(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DailyMetrics
	for rows.Next() {
		var m domain.DailyMetrics
		if err := rows.Scan(&m.ID, &m.HotelID, &m.Date, &m.OccupancyRate,
			&m.RoomsOccupied, &m.RoomsAvailable, &m.TotalRevenue, &m.ADR, &m.RevPAR,
			&m.BookingCount, &m.CancellationCount, &m.CalculatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---- aggregates ----

func (r *Repo) CountHotels(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM hotels`)
}

func (r *Repo) CountRooms(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM rooms`)
}

func (r *Repo) CountBookings(ctx context.Context, status *string) (int, error) {
	if status == nil {
		return r.count(ctx, `SELECT COUNT(*) FROM bookings`)
	}
	return r.count(ctx, `SELECT COUNT(*) FROM bookings WHERE status = ?`, *status)
}

func (r *Repo) SumTotalRooms(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COALESCE(SUM(total_rooms), 0) FROM hotels`)
}

func (r *Repo) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

func (r *Repo) BookingDateBounds(ctx context.Context) (time.Time, time.Time, bool, error) {
	var earliest, latest sql.NullTime
	if err := r.db.QueryRowContext(ctx, bookingDateBoundsSQL).Scan(&earliest, &latest); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !earliest.Valid || !latest.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	return earliest.Time, latest.Time, true, nil
}
