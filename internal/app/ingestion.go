package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/karan00190/HotelIQ-Revenue-Management/internal/analytics"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/domain"
	"github.com/karan00190/HotelIQ-Revenue-Management/internal/etl"
)

// IngestionService fronts every path data enters the system: CSV uploads,
// reprocessing of stored history, external feed sync, and the metric
// recalculations that follow.
type IngestionService struct {
	repo     domain.Repository
	pipeline *etl.Pipeline
	calc     *analytics.Calculator
	feed     domain.BookingFeed
	cache    domain.Cache
}

func NewIngestionService(repo domain.Repository, p *etl.Pipeline, calc *analytics.Calculator, feed domain.BookingFeed, cache domain.Cache) *IngestionService {
	return &IngestionService{repo: repo, pipeline: p, calc: calc, feed: feed, cache: cache}
}

// UploadCSV runs the full ETL over an uploaded booking CSV.
func (s *IngestionService) UploadCSV(ctx context.Context, r io.Reader) (etl.Result, error) {
	res, err := s.pipeline.RunCSV(ctx, r)
	if err != nil {
		return etl.Result{}, err
	}
	if res.Success && res.Load.Loaded > 0 {
		s.invalidateAnalytics(ctx)
	}
	return res, nil
}

// Reprocess re-runs validation and feature engineering over stored bookings.
func (s *IngestionService) Reprocess(ctx context.Context, hotelID *int64, since *time.Time) (etl.Result, error) {
	return s.pipeline.RunStored(ctx, hotelID, since)
}

// SyncFeed pulls records from the external booking feed and loads the ones
// that survive validation. Unmappable records are skipped and counted.
func (s *IngestionService) SyncFeed(ctx context.Context, since time.Time, limit int) (domain.BatchResult, error) {
	if s.feed == nil {
		return domain.BatchResult{}, fmt.Errorf("no booking feed configured")
	}
	raw, err := s.feed.FetchBookings(ctx, since, limit)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("fetch feed: %w", err)
	}

	if len(raw) == 0 {
		log.Info().Time("since", since).Msg("feed sync: no new records")
		return domain.BatchResult{}, nil
	}

	var bs []domain.Booking
	dropped := 0
	for _, rec := range raw {
		b, err := mapFeedBooking(rec)
		if err != nil {
			dropped++
			log.Warn().Err(err).Msg("feed record dropped")
			continue
		}
		bs = append(bs, b)
	}
	if len(bs) == 0 {
		log.Warn().Int("fetched", len(raw)).Msg("feed sync: no mappable records")
		return domain.BatchResult{Total: len(raw), Errors: dropped}, nil
	}

	rep := etl.Validate(bs)
	if !rep.Valid() {
		return domain.BatchResult{Total: len(raw), Errors: len(raw)},
			fmt.Errorf("feed batch failed validation: %v", rep.Errors)
	}

	res, err := s.repo.CreateBookings(ctx, etl.Clean(bs, time.Now()))
	if err != nil {
		return domain.BatchResult{}, err
	}
	res.Total = len(raw)
	res.Errors += dropped
	if res.Loaded > 0 {
		s.invalidateAnalytics(ctx)
	}
	log.Info().
		Int("fetched", len(raw)).
		Int("loaded", res.Loaded).
		Int("skipped", res.Skipped).
		Int("errors", res.Errors).
		Msg("feed sync complete")
	return res, nil
}

// CalculateMetrics computes daily metrics for one hotel over a range.
func (s *IngestionService) CalculateMetrics(ctx context.Context, hotelID int64, start, end time.Time) (int, error) {
	ms, err := s.calc.CalculateRange(ctx, hotelID, start, end)
	if err != nil {
		return 0, err
	}
	return len(ms), nil
}

// RecalculateAll rebuilds all metrics; callers run it in the background.
func (s *IngestionService) RecalculateAll(ctx context.Context) (analytics.RecalcResult, error) {
	return s.calc.RecalculateAll(ctx)
}

// QualityCheck validates stored bookings without modifying anything.
func (s *IngestionService) QualityCheck(ctx context.Context) (etl.QualityReport, error) {
	return s.pipeline.QualityCheck(ctx)
}

// FeaturePreview returns engineered features over recent bookings.
func (s *IngestionService) FeaturePreview(ctx context.Context, limit int) ([]etl.FeatureRow, etl.FeatureSummary, error) {
	return s.pipeline.EngineerStored(ctx, limit)
}

func (s *IngestionService) invalidateAnalytics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, "summary")
}
