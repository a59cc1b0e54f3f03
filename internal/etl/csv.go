package etl

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
)

// Required CSV columns for a booking upload. Optional ones:
// guest_email, booking_source, status, booking_date.
var requiredColumns = []string{
	"hotel_id", "room_id", "check_in_date", "check_out_date",
	"guest_name", "num_guests", "booking_price", "base_price",
}

const dateLayout = "2006-01-02"

// ParseCSV decodes a booking upload. Header validation errors come back in
// the report; row-level parse failures are collected as errors too, so the
// caller sees the whole picture in one pass.
func ParseCSV(r io.Reader) ([]domain.Booking, QualityReport) {
	var rep QualityReport

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		rep.AddError(fmt.Sprintf("read header: %v", err))
		return nil, rep
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := col[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		rep.AddError(fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
		return nil, rep
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []domain.Booking
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rep.AddError(fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		b, err := parseRow(row, field)
		if err != nil {
			rep.AddError(fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		out = append(out, b)
	}
	return out, rep
}

func parseRow(row []string, field func([]string, string) string) (domain.Booking, error) {
	var b domain.Booking
	var err error

	if b.HotelID, err = strconv.ParseInt(field(row, "hotel_id"), 10, 64); err != nil {
		return b, fmt.Errorf("hotel_id: %w", err)
	}
	if b.RoomID, err = strconv.ParseInt(field(row, "room_id"), 10, 64); err != nil {
		return b, fmt.Errorf("room_id: %w", err)
	}
	if b.CheckIn, err = time.ParseInLocation(dateLayout, field(row, "check_in_date"), time.UTC); err != nil {
		return b, fmt.Errorf("check_in_date: %w", err)
	}
	if b.CheckOut, err = time.ParseInLocation(dateLayout, field(row, "check_out_date"), time.UTC); err != nil {
		return b, fmt.Errorf("check_out_date: %w", err)
	}
	b.GuestName = field(row, "guest_name")
	if b.NumGuests, err = strconv.Atoi(field(row, "num_guests")); err != nil {
		return b, fmt.Errorf("num_guests: %w", err)
	}
	if b.BookingPrice, err = decimal.NewFromString(field(row, "booking_price")); err != nil {
		return b, fmt.Errorf("booking_price: %w", err)
	}
	if b.BasePrice, err = decimal.NewFromString(field(row, "base_price")); err != nil {
		return b, fmt.Errorf("base_price: %w", err)
	}

	if v := field(row, "guest_email"); v != "" {
		b.GuestEmail = &v
	}
	b.Source = field(row, "booking_source")
	b.Status = field(row, "status")
	if v := field(row, "booking_date"); v != "" {
		// accept date or datetime forms
		if t, err := time.ParseInLocation(dateLayout, v, time.UTC); err == nil {
			b.BookedAt = t
		} else if t, err := time.Parse(time.RFC3339, v); err == nil {
			b.BookedAt = t
		} else {
			return b, fmt.Errorf("booking_date: unrecognized value %q", v)
		}
	}
	return b, nil
}
