package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/app"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	C *app.CommandService
	I *app.IngestionService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/hotels", h.listHotels)
		r.Post("/hotels", h.createHotel)
		r.Get("/hotels/{id}", h.getHotel)
		r.Delete("/hotels/{id}", h.deleteHotel)

		r.Get("/rooms", h.listRooms)
		r.Post("/rooms", h.createRoom)
		r.Get("/rooms/{id}", h.getRoom)

		r.Get("/bookings", h.listBookings)
		r.Post("/bookings", h.createBooking)
		r.Get("/bookings/{id}", h.getBooking)
		r.Patch("/bookings/{id}/cancel", h.cancelBooking)

		r.Get("/analytics/revenue", h.revenueAnalytics)
		r.Get("/analytics/daily/{hotelID}", h.dailyAnalytics)
		r.Get("/analytics/summary", h.systemSummary)
		r.Get("/analytics/metrics/{hotelID}", h.listDailyMetrics)

		r.Post("/ingestion/csv", h.uploadCSV)
		r.Post("/ingestion/reprocess", h.reprocess)
		r.Post("/ingestion/feed", h.syncFeed)
		r.Post("/ingestion/metrics", h.calculateMetrics)
		r.Post("/ingestion/metrics/recalculate", h.recalculateAll)
		r.Get("/ingestion/quality", h.qualityCheck)
		r.Get("/ingestion/features", h.featurePreview)
	})
}

// ---- plumbing ----

const dateLayout = "2006-01-02"

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrInvalid):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeETagJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func queryInt64Ptr(r *http.Request, name string) *int64 {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return &n
		}
	}
	return nil
}

func queryDatePtr(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func page(r *http.Request) domain.PageQuery {
	limit := queryInt(r, "limit", 100)
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	offset := queryInt(r, "skip", 0)
	if offset < 0 {
		offset = 0
	}
	return domain.PageQuery{Offset: offset, Limit: limit}
}

// ---- DTOs ----

type hotelDTO struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	TotalRooms int       `json:"total_rooms"`
	StarRating *float64  `json:"star_rating"`
	CreatedAt  time.Time `json:"created_at"`
}

func toHotelDTO(h domain.Hotel) hotelDTO {
	return hotelDTO{ID: h.ID, Name: h.Name, Location: h.Location, TotalRooms: h.TotalRooms, StarRating: h.StarRating, CreatedAt: h.CreatedAt}
}

type roomDTO struct {
	ID           int64   `json:"id"`
	HotelID      int64   `json:"hotel_id"`
	RoomNumber   string  `json:"room_number"`
	RoomType     string  `json:"room_type"`
	BasePrice    float64 `json:"base_price"`
	MaxOccupancy int     `json:"max_occupancy"`
	IsAvailable  bool    `json:"is_available"`
}

func toRoomDTO(r domain.Room) roomDTO {
	return roomDTO{
		ID: r.ID, HotelID: r.HotelID, RoomNumber: r.RoomNumber, RoomType: r.RoomType,
		BasePrice: r.BasePrice.InexactFloat64(), MaxOccupancy: r.MaxOccupancy, IsAvailable: r.Available,
	}
}

type bookingDTO struct {
	ID            int64   `json:"id"`
	HotelID       int64   `json:"hotel_id"`
	RoomID        int64   `json:"room_id"`
	CheckInDate   string  `json:"check_in_date"`
	CheckOutDate  string  `json:"check_out_date"`
	GuestName     string  `json:"guest_name"`
	GuestEmail    *string `json:"guest_email"`
	NumGuests     int     `json:"num_guests"`
	BookingPrice  float64 `json:"booking_price"`
	BasePrice     float64 `json:"base_price"`
	BookingDate   string  `json:"booking_date"`
	BookingSource string  `json:"booking_source"`
	Status        string  `json:"status"`
}

func toBookingDTO(b domain.Booking) bookingDTO {
	return bookingDTO{
		ID: b.ID, HotelID: b.HotelID, RoomID: b.RoomID,
		CheckInDate:   b.CheckIn.Format(dateLayout),
		CheckOutDate:  b.CheckOut.Format(dateLayout),
		GuestName:     b.GuestName,
		GuestEmail:    b.GuestEmail,
		NumGuests:     b.NumGuests,
		BookingPrice:  b.BookingPrice.InexactFloat64(),
		BasePrice:     b.BasePrice.InexactFloat64(),
		BookingDate:   b.BookedAt.UTC().Format(time.RFC3339),
		BookingSource: b.Source,
		Status:        b.Status,
	}
}

// ---- hotels ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Q.ListHotels(r.Context(), page(r))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]hotelDTO, 0, len(hs))
	for _, x := range hs {
		out = append(out, toHotelDTO(x))
	}
	writeETagJSON(w, r, out)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	hotel, err := h.Q.GetHotel(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeETagJSON(w, r, toHotelDTO(hotel))
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name       string   `json:"name"`
		Location   string   `json:"location"`
		TotalRooms int      `json:"total_rooms"`
		StarRating *float64 `json:"star_rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	hotel, err := h.C.CreateHotel(r.Context(), domain.Hotel{
		Name: in.Name, Location: in.Location, TotalRooms: in.TotalRooms, StarRating: in.StarRating,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHotelDTO(hotel))
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	if err := h.C.DeleteHotel(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- rooms ----

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Q.ListRooms(r.Context(), queryInt64Ptr(r, "hotel_id"), page(r))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]roomDTO, 0, len(rs))
	for _, x := range rs {
		out = append(out, toRoomDTO(x))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	room, err := h.Q.GetRoom(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomDTO(room))
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	var in struct {
		HotelID      int64   `json:"hotel_id"`
		RoomNumber   string  `json:"room_number"`
		RoomType     string  `json:"room_type"`
		BasePrice    float64 `json:"base_price"`
		MaxOccupancy int     `json:"max_occupancy"`
		IsAvailable  *bool   `json:"is_available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}
	room, err := h.C.CreateRoom(r.Context(), domain.Room{
		HotelID:      in.HotelID,
		RoomNumber:   in.RoomNumber,
		RoomType:     in.RoomType,
		BasePrice:    decimal.NewFromFloat(in.BasePrice),
		MaxOccupancy: in.MaxOccupancy,
		Available:    available,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomDTO(room))
}

// ---- bookings ----

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	start, err := queryDatePtr(r, "start_date")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "start_date must be YYYY-MM-DD")
		return
	}
	end, err := queryDatePtr(r, "end_date")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "end_date must be YYYY-MM-DD")
		return
	}
	pg := page(r)
	q := domain.BookingsQuery{
		HotelID:   queryInt64Ptr(r, "hotel_id"),
		StartDate: start,
		EndDate:   end,
		Offset:    pg.Offset,
		Limit:     pg.Limit,
	}
	if st := r.URL.Query().Get("status"); st != "" {
		q.Status = &st
	}
	bs, err := h.Q.ListBookings(r.Context(), q)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]bookingDTO, 0, len(bs))
	for _, x := range bs {
		out = append(out, toBookingDTO(x))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	b, err := h.Q.GetBooking(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var in struct {
		HotelID      int64   `json:"hotel_id"`
		RoomID       int64   `json:"room_id"`
		CheckInDate  string  `json:"check_in_date"`
		CheckOutDate string  `json:"check_out_date"`
		GuestName    string  `json:"guest_name"`
		GuestEmail   *string `json:"guest_email"`
		NumGuests    int     `json:"num_guests"`
		BookingPrice float64 `json:"booking_price"`
		BasePrice    float64 `json:"base_price"`
		Source       string  `json:"booking_source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	checkIn, err := time.ParseInLocation(dateLayout, in.CheckInDate, time.UTC)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "check_in_date must be YYYY-MM-DD")
		return
	}
	checkOut, err := time.ParseInLocation(dateLayout, in.CheckOutDate, time.UTC)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "check_out_date must be YYYY-MM-DD")
		return
	}
	b, err := h.C.CreateBooking(r.Context(), domain.Booking{
		HotelID:      in.HotelID,
		RoomID:       in.RoomID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		GuestName:    in.GuestName,
		GuestEmail:   in.GuestEmail,
		NumGuests:    in.NumGuests,
		BookingPrice: decimal.NewFromFloat(in.BookingPrice),
		BasePrice:    decimal.NewFromFloat(in.BasePrice),
		Source:       in.Source,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingDTO(b))
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	b, err := h.C.CancelBooking(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

// ---- analytics ----

func (h *Handlers) revenueAnalytics(w http.ResponseWriter, r *http.Request) {
	start, err := queryDatePtr(r, "start_date")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "start_date must be YYYY-MM-DD")
		return
	}
	end, err := queryDatePtr(r, "end_date")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "end_date must be YYYY-MM-DD")
		return
	}
	// default to the trailing 30 days
	if end == nil {
		t := time.Now().UTC().Truncate(24 * time.Hour)
		end = &t
	}
	if start == nil {
		t := end.AddDate(0, 0, -30)
		start = &t
	}

	sum, err := h.Q.RevenueSummary(r.Context(), queryInt64Ptr(r, "hotel_id"), start, end)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := struct {
		TotalRevenue  float64 `json:"total_revenue"`
		TotalBookings int     `json:"total_bookings"`
		ADR           float64 `json:"average_daily_rate"`
		OccupancyRate float64 `json:"occupancy_rate"`
		PeriodStart   string  `json:"period_start"`
		PeriodEnd     string  `json:"period_end"`
	}{
		TotalRevenue:  sum.TotalRevenue.InexactFloat64(),
		TotalBookings: sum.TotalBookings,
		ADR:           sum.ADR.InexactFloat64(),
		OccupancyRate: sum.OccupancyRate,
		PeriodStart:   start.Format(dateLayout),
		PeriodEnd:     end.Format(dateLayout),
	}
	writeETagJSON(w, r, out)
}

func (h *Handlers) dailyAnalytics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "hotelID")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "hotel id must be a positive number")
		return
	}
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if d, err := queryDatePtr(r, "date"); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "date must be YYYY-MM-DD")
		return
	} else if d != nil {
		date = *d
	}

	st, err := h.Q.DailyStats(r.Context(), id, date)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := struct {
		Date          string  `json:"date"`
		HotelID       int64   `json:"hotel_id"`
		RoomsOccupied int     `json:"rooms_occupied"`
		TotalRooms    int     `json:"total_rooms"`
		OccupancyRate float64 `json:"occupancy_rate"`
		DailyRevenue  float64 `json:"daily_revenue"`
	}{
		Date:          st.Date.Format(dateLayout),
		HotelID:       st.HotelID,
		RoomsOccupied: st.RoomsOccupied,
		TotalRooms:    st.TotalRooms,
		OccupancyRate: st.OccupancyRate,
		DailyRevenue:  st.DailyRevenue.InexactFloat64(),
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) systemSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Q.SystemSummary(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := struct {
		TotalHotels           int     `json:"total_hotels"`
		TotalRooms            int     `json:"total_rooms"`
		TotalBookings         int     `json:"total_bookings"`
		ActiveBookings        int     `json:"active_bookings"`
		CurrentMonthRevenue   float64 `json:"current_month_revenue"`
		CurrentMonthOccupancy float64 `json:"current_month_occupancy"`
	}{
		TotalHotels:           sum.TotalHotels,
		TotalRooms:            sum.TotalRooms,
		TotalBookings:         sum.TotalBookings,
		ActiveBookings:        sum.ActiveBookings,
		CurrentMonthRevenue:   sum.CurrentMonthRevenue.InexactFloat64(),
		CurrentMonthOccupancy: sum.CurrentMonthOccupancy,
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listDailyMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "hotelID")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "hotel id must be a positive number")
		return
	}
	start, err := queryDatePtr(r, "start_date")
	if err != nil || start == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "start_date is required as YYYY-MM-DD")
		return
	}
	end, err := queryDatePtr(r, "end_date")
	if err != nil || end == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "end_date is required as YYYY-MM-DD")
		return
	}
	ms, err := h.Q.ListDailyMetrics(r.Context(), id, *start, *end)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	type metricDTO struct {
		Date              string  `json:"date"`
		OccupancyRate     float64 `json:"occupancy_rate"`
		RoomsOccupied     int     `json:"rooms_occupied"`
		RoomsAvailable    int     `json:"rooms_available"`
		TotalRevenue      float64 `json:"total_revenue"`
		ADR               float64 `json:"average_daily_rate"`
		RevPAR            float64 `json:"revenue_per_available_room"`
		BookingCount      int     `json:"booking_count"`
		CancellationCount int     `json:"cancellation_count"`
	}
	out := make([]metricDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, metricDTO{
			Date:              m.Date.Format(dateLayout),
			OccupancyRate:     m.OccupancyRate,
			RoomsOccupied:     m.RoomsOccupied,
			RoomsAvailable:    m.RoomsAvailable,
			TotalRevenue:      m.TotalRevenue.InexactFloat64(),
			ADR:               m.ADR.InexactFloat64(),
			RevPAR:            m.RevPAR.InexactFloat64(),
			BookingCount:      m.BookingCount,
			CancellationCount: m.CancellationCount,
		})
	}
	writeETagJSON(w, r, out)
}

// ---- ingestion ----

const maxUploadBytes = 32 << 20

func (h *Handlers) uploadCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Upload", err.Error())
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Upload", "multipart field 'file' is required")
		return
	}
	defer f.Close()

	if !strings.EqualFold(filepath.Ext(hdr.Filename), ".csv") {
		writeProblem(w, http.StatusBadRequest, "Invalid Upload", "file must be a CSV")
		return
	}

	res, err := h.I.UploadCSV(r.Context(), f)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, struct {
		Filename   string `json:"filename"`
		UploadedAt string `json:"uploaded_at"`
		Result     any    `json:"pipeline_result"`
	}{hdr.Filename, time.Now().UTC().Format(time.RFC3339), res})
}

func (h *Handlers) reprocess(w http.ResponseWriter, r *http.Request) {
	since, err := queryDatePtr(r, "start_date")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "start_date must be YYYY-MM-DD")
		return
	}
	res, err := h.I.Reprocess(r.Context(), queryInt64Ptr(r, "hotel_id"), since)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func (h *Handlers) syncFeed(w http.ResponseWriter, r *http.Request) {
	since := time.Now().UTC().AddDate(0, 0, -1)
	if d, err := queryDatePtr(r, "since"); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "since must be YYYY-MM-DD")
		return
	} else if d != nil {
		since = *d
	}
	limit := queryInt(r, "limit", 500)
	if limit <= 0 || limit > 5000 {
		limit = 500
	}
	res, err := h.I.SyncFeed(r.Context(), since, limit)
	if err != nil {
		writeProblem(w, http.StatusBadGateway, "Feed Sync Failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) calculateMetrics(w http.ResponseWriter, r *http.Request) {
	hotelID := queryInt64Ptr(r, "hotel_id")
	if hotelID == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "hotel_id is required")
		return
	}
	start, err := queryDatePtr(r, "start_date")
	if err != nil || start == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "start_date is required as YYYY-MM-DD")
		return
	}
	end, err := queryDatePtr(r, "end_date")
	if err != nil || end == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "end_date is required as YYYY-MM-DD")
		return
	}
	n, err := h.I.CalculateMetrics(r.Context(), *hotelID, *start, *end)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		HotelID           int64  `json:"hotel_id"`
		DateRange         string `json:"date_range"`
		MetricsCalculated int    `json:"metrics_calculated"`
	}{*hotelID, start.Format(dateLayout) + " to " + end.Format(dateLayout), n})
}

// recalculateAll answers immediately and rebuilds in the background; the
// request context dies with the response, so the job gets its own.
func (h *Handlers) recalculateAll(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if res, err := h.I.RecalculateAll(ctx); err != nil {
			log.Error().Err(err).Msg("background metric recalculation failed")
		} else {
			log.Info().
				Int("hotels", res.HotelsProcessed).
				Int("metrics", res.MetricsCalculated).
				Msg("background metric recalculation complete")
		}
	}()
	writeJSON(w, http.StatusAccepted, struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{"started", "metrics recalculation started in background"})
}

func (h *Handlers) qualityCheck(w http.ResponseWriter, r *http.Request) {
	rep, err := h.I.QualityCheck(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		IsValid  bool     `json:"is_valid"`
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings"`
		Info     []string `json:"info"`
		Stats    any      `json:"statistics"`
	}{rep.Valid(), rep.Errors, rep.Warnings, rep.Info, rep.Stats})
}

func (h *Handlers) featurePreview(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, summary, err := h.I.FeaturePreview(r.Context(), limit)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	sample := rows
	if len(sample) > 5 {
		sample = sample[:5]
	}
	writeJSON(w, http.StatusOK, struct {
		Summary any `json:"feature_summary"`
		Sample  any `json:"sample_records"`
	}{summary, sample})
}
