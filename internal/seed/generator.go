package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
)

// Generator populates the database with a deterministic demo dataset:
// three hotels, their full room inventory and six months of bookings.
// Every step is idempotent so the seeder can be re-run safely.
type Generator struct {
	repo domain.Repository
	rng  *rand.Rand
	now  func() time.Time
}

func New(repo domain.Repository, seed int64) *Generator {
	return &Generator{
		repo: repo,
		rng:  rand.New(rand.NewSource(seed)),
		now:  time.Now,
	}
}

type hotelSpec struct {
	name       string
	location   string
	totalRooms int
	starRating float64
}

var hotelCatalog = []hotelSpec{
	{"Grand Plaza Mumbai", "Mumbai, Maharashtra", 150, 5.0},
	{"Coastal Inn Goa", "Goa", 80, 4.0},
	{"Heritage Stay Jaipur", "Jaipur, Rajasthan", 60, 4.5},
}

var bookingSources = []string{"website", "booking.com", "direct", "expedia", "makemytrip"}

var guestNames = []string{
	"Rahul Sharma", "Priya Patel", "Amit Kumar", "Sneha Reddy", "Vikram Singh",
	"Anjali Gupta", "Rohan Desai", "Pooja Mehta", "Arjun Nair", "Kavya Iyer",
	"Sanjay Verma", "Neha Kapoor", "Karan Shah", "Riya Malhotra", "Aditya Joshi",
}

// Result reports how many records each phase produced.
type Result struct {
	Hotels   int `json:"hotels"`
	Rooms    int `json:"rooms"`
	Bookings int `json:"bookings"`
}

// Run executes all three phases in dependency order.
func (g *Generator) Run(ctx context.Context, bookingCount int) (Result, error) {
	var res Result

	hotels, err := g.hotels(ctx)
	if err != nil {
		return res, fmt.Errorf("seed hotels: %w", err)
	}
	res.Hotels = len(hotels)
	log.Info().Int("count", len(hotels)).Msg("hotels ready")

	rooms, err := g.rooms(ctx, hotels)
	if err != nil {
		return res, fmt.Errorf("seed rooms: %w", err)
	}
	res.Rooms = len(rooms)
	log.Info().Int("count", len(rooms)).Msg("rooms ready")

	n, err := g.bookings(ctx, rooms, bookingCount)
	if err != nil {
		return res, fmt.Errorf("seed bookings: %w", err)
	}
	res.Bookings = n
	log.Info().Int("count", n).Msg("bookings ready")

	return res, nil
}

func (g *Generator) hotels(ctx context.Context) ([]domain.Hotel, error) {
	out := make([]domain.Hotel, 0, len(hotelCatalog))
	for _, spec := range hotelCatalog {
		existing, err := g.repo.GetHotelByName(ctx, spec.name)
		if err == nil {
			out = append(out, existing)
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		rating := spec.starRating
		h := domain.Hotel{
			Name:       spec.name,
			Location:   spec.location,
			TotalRooms: spec.totalRooms,
			StarRating: &rating,
		}
		id, err := g.repo.CreateHotel(ctx, h)
		if err != nil {
			return nil, err
		}
		h.ID = id
		out = append(out, h)
	}
	return out, nil
}

func (g *Generator) rooms(ctx context.Context, hotels []domain.Hotel) ([]domain.Room, error) {
	var out []domain.Room
	for _, h := range hotels {
		existing, err := g.repo.ListRooms(ctx, &h.ID, domain.PageQuery{Limit: h.TotalRooms + 1})
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			out = append(out, existing...)
			continue
		}

		rating := 4.0
		if h.StarRating != nil {
			rating = *h.StarRating
		}
		for i := 1; i <= h.TotalRooms; i++ {
			roomType, price := g.roomTypeFor(i, h.TotalRooms)
			price *= rating / 4.0

			maxOccupancy := 2
			if roomType == "Executive" || roomType == "Suite" {
				maxOccupancy = 4
			}
			room := domain.Room{
				HotelID:      h.ID,
				RoomNumber:   fmt.Sprintf("%d%02d", (i-1)/10+1, (i-1)%10+1),
				RoomType:     roomType,
				BasePrice:    decimal.NewFromFloat(price).Round(2),
				MaxOccupancy: maxOccupancy,
				Available:    true,
			}
			id, err := g.repo.CreateRoom(ctx, room)
			if err != nil {
				return nil, err
			}
			room.ID = id
			out = append(out, room)
		}
	}
	return out, nil
}

// roomTypeFor splits the inventory 40/30/20/10 across the four room
// types, cheapest first, with a base price drawn from the type's band.
func (g *Generator) roomTypeFor(i, total int) (string, float64) {
	switch {
	case float64(i) <= float64(total)*0.4:
		return "Standard", g.uniform(3000, 5000)
	case float64(i) <= float64(total)*0.7:
		return "Deluxe", g.uniform(5000, 8000)
	case float64(i) <= float64(total)*0.9:
		return "Executive", g.uniform(8000, 12000)
	default:
		return "Suite", g.uniform(12000, 20000)
	}
}

func (g *Generator) bookings(ctx context.Context, rooms []domain.Room, count int) (int, error) {
	if count <= 0 || len(rooms) == 0 {
		return 0, nil
	}
	existing, err := g.repo.CountBookings(ctx, nil)
	if err != nil {
		return 0, err
	}
	if existing >= count {
		log.Info().Int("existing", existing).Msg("bookings already seeded, skipping")
		return existing, nil
	}

	today := day(g.now().UTC())
	periodStart := today.AddDate(0, 0, -180)

	batch := make([]domain.Booking, 0, count)
	for len(batch) < count {
		room := rooms[g.rng.Intn(len(rooms))]

		daysOffset := g.rng.Intn(181)
		checkIn := periodStart.AddDate(0, 0, daysOffset)
		if checkIn.After(today) {
			continue
		}
		nights := g.rng.Intn(7) + 1
		checkOut := checkIn.AddDate(0, 0, nights)

		base, _ := room.BasePrice.Float64()
		mult := g.priceMultiplier(checkIn)
		price := decimal.NewFromFloat(base * mult * float64(nights)).Round(2)

		status := domain.StatusConfirmed
		if g.rng.Float64() >= 0.9 {
			status = domain.StatusCancelled
		}
		if checkOut.Before(today) && status == domain.StatusConfirmed {
			status = domain.StatusCompleted
		}

		guest := guestNames[g.rng.Intn(len(guestNames))]
		email := strings.ToLower(strings.ReplaceAll(guestNames[g.rng.Intn(len(guestNames))], " ", ".")) + "@example.com"

		batch = append(batch, domain.Booking{
			HotelID:      room.HotelID,
			RoomID:       room.ID,
			CheckIn:      checkIn,
			CheckOut:     checkOut,
			GuestName:    guest,
			GuestEmail:   &email,
			NumGuests:    g.rng.Intn(room.MaxOccupancy) + 1,
			BookingPrice: price,
			BasePrice:    room.BasePrice.Mul(decimal.NewFromInt(int64(nights))),
			BookedAt:     g.now().UTC().AddDate(0, 0, -(daysOffset + g.rng.Intn(30) + 1)),
			Source:       bookingSources[g.rng.Intn(len(bookingSources))],
			Status:       status,
		})
	}

	res, err := g.repo.CreateBookings(ctx, batch)
	if err != nil {
		return 0, err
	}
	if res.Skipped > 0 {
		log.Info().Int("skipped", res.Skipped).Msg("duplicate booking slots skipped")
	}
	return res.Loaded, nil
}

// priceMultiplier models simple dynamic pricing: a weekend premium on
// Friday/Saturday check-ins, a peak-season uplift Oct..Jan and a
// monsoon discount Jun..Aug.
func (g *Generator) priceMultiplier(checkIn time.Time) float64 {
	var mult float64
	wd := checkIn.Weekday()
	if wd == time.Friday || wd == time.Saturday {
		mult = g.uniform(1.2, 1.5)
	} else {
		mult = g.uniform(0.85, 1.15)
	}
	switch checkIn.Month() {
	case time.December, time.January, time.October, time.November:
		mult *= g.uniform(1.1, 1.3)
	case time.June, time.July, time.August:
		mult *= g.uniform(0.7, 0.9)
	}
	return mult
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
