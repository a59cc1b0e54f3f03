package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
)

type CommandService struct {
	repo  domain.Repository
	cache domain.Cache
}

func NewCommandService(r domain.Repository, cache domain.Cache) *CommandService {
	return &CommandService{repo: r, cache: cache}
}

func (s *CommandService) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	h.Name = strings.TrimSpace(h.Name)
	h.Location = strings.TrimSpace(h.Location)
	if h.Name == "" || h.Location == "" {
		return domain.Hotel{}, fmt.Errorf("%w: name and location are required", domain.ErrInvalid)
	}
	if h.TotalRooms <= 0 {
		return domain.Hotel{}, fmt.Errorf("%w: total_rooms must be positive", domain.ErrInvalid)
	}
	if h.StarRating != nil && (*h.StarRating < 0 || *h.StarRating > 5) {
		return domain.Hotel{}, fmt.Errorf("%w: star_rating must be between 0 and 5", domain.ErrInvalid)
	}

	if _, err := s.repo.GetHotelByName(ctx, h.Name); err == nil {
		return domain.Hotel{}, fmt.Errorf("%w: hotel %q", domain.ErrConflict, h.Name)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Hotel{}, err
	}

	id, err := s.repo.CreateHotel(ctx, h)
	if err != nil {
		return domain.Hotel{}, err
	}
	s.invalidateHotelLists(ctx)
	return s.repo.GetHotel(ctx, id)
}

func (s *CommandService) DeleteHotel(ctx context.Context, id int64) error {
	if err := s.repo.DeleteHotel(ctx, id); err != nil {
		return err
	}
	s.invalidateHotel(ctx, id)
	s.invalidateHotelLists(ctx)
	return nil
}

func (s *CommandService) CreateRoom(ctx context.Context, r domain.Room) (domain.Room, error) {
	if strings.TrimSpace(r.RoomType) == "" {
		return domain.Room{}, fmt.Errorf("%w: room_type is required", domain.ErrInvalid)
	}
	if !r.BasePrice.IsPositive() {
		return domain.Room{}, fmt.Errorf("%w: base_price must be positive", domain.ErrInvalid)
	}
	if r.MaxOccupancy <= 0 {
		return domain.Room{}, fmt.Errorf("%w: max_occupancy must be positive", domain.ErrInvalid)
	}
	if _, err := s.repo.GetHotel(ctx, r.HotelID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Room{}, fmt.Errorf("%w: hotel %d", domain.ErrNotFound, r.HotelID)
		}
		return domain.Room{}, err
	}

	id, err := s.repo.CreateRoom(ctx, r)
	if err != nil {
		return domain.Room{}, err
	}
	return s.repo.GetRoom(ctx, id)
}

func (s *CommandService) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	if !b.CheckOut.After(b.CheckIn) {
		return domain.Booking{}, fmt.Errorf("%w: check-out must be after check-in", domain.ErrInvalid)
	}
	if b.NumGuests <= 0 {
		return domain.Booking{}, fmt.Errorf("%w: num_guests must be positive", domain.ErrInvalid)
	}
	if !b.BookingPrice.IsPositive() || !b.BasePrice.IsPositive() {
		return domain.Booking{}, fmt.Errorf("%w: prices must be positive", domain.ErrInvalid)
	}
	if strings.TrimSpace(b.GuestName) == "" {
		return domain.Booking{}, fmt.Errorf("%w: guest_name is required", domain.ErrInvalid)
	}

	room, err := s.repo.GetRoom(ctx, b.RoomID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, fmt.Errorf("%w: room %d", domain.ErrNotFound, b.RoomID)
		}
		return domain.Booking{}, err
	}
	if room.HotelID != b.HotelID {
		return domain.Booking{}, fmt.Errorf("%w: room %d does not belong to hotel %d", domain.ErrInvalid, b.RoomID, b.HotelID)
	}

	if b.Source == "" {
		b.Source = "direct"
	}
	if b.Status == "" {
		b.Status = domain.StatusConfirmed
	}

	id, err := s.repo.CreateBooking(ctx, b)
	if err != nil {
		return domain.Booking{}, err
	}
	s.invalidateAnalytics(ctx)
	return s.repo.GetBooking(ctx, id)
}

func (s *CommandService) CancelBooking(ctx context.Context, id int64) (domain.Booking, error) {
	if err := s.repo.UpdateBookingStatus(ctx, id, domain.StatusCancelled); err != nil {
		return domain.Booking{}, err
	}
	s.invalidateAnalytics(ctx)
	return s.repo.GetBooking(ctx, id)
}

// ---- cache invalidation ----

func (s *CommandService) invalidateHotel(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, fmt.Sprintf("hotel:%d", id))
}

// Hotel lists are keyed by page; clear the variants handlers actually serve.
func (s *CommandService) invalidateHotelLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, lim := range []int{100, 200} {
		_ = s.cache.Del(ctx, fmt.Sprintf("hotels:0:%d", lim))
	}
	_ = s.cache.Del(ctx, "summary")
}

func (s *CommandService) invalidateAnalytics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, "summary")
}
