package feed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/adapters/feed"
)

func TestClient_FetchBookings_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode([]map[string]any{{"hotel_id": 1.0, "room_id": 2.0}})
		}
	}))
	defer ts.Close()

	cl, err := feed.New(ts.URL, "test-key", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.FetchBookings(ctx, time.Now().AddDate(0, 0, -1), 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	id, ok := got[0]["hotel_id"].(float64)
	if !ok || int(id) != 1 {
		t.Fatalf("unexpected record: %+v", got[0])
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_FetchBookings_LegacyFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// only the legacy path shape exists on this server
		if r.URL.Path == "/v1/bookings" {
			w.WriteHeader(404)
			return
		}
		w.WriteHeader(200)
		_ = json.NewEncoder(w).Encode([]map[string]any{{"hotel_id": 7.0}})
	}))
	defer ts.Close()

	cl, err := feed.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := cl.FetchBookings(ctx, time.Now(), 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected legacy endpoint to answer, got %+v", got)
	}
}

func TestClient_FetchBookings_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := feed.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.FetchBookings(ctx, time.Now(), 10)
	if err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := feed.New("http://localhost", "", 5); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
