package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"stepcount/clients/googlefit"
	"stepcount/internal/models"

	"golang.org/x/sync/errgroup"
	fitness "google.golang.org/api/fitness/v1"
)

type StepAggregator interface {
	AggregateSteps(ctx context.Context, start, end time.Time) (*fitness.AggregateResponse, error)
}

type StepService struct {
	agg StepAggregator
	now func() time.Time
}

func NewStepService(agg StepAggregator, now func() time.Time) StepService {
	if now == nil {
		now = time.Now
	}
	return StepService{agg: agg, now: now}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Today returns the steps taken between local midnight and now.
func (s StepService) Today(ctx context.Context) (int64, error) {
	now := s.now()
	resp, err := s.agg.AggregateSteps(ctx, startOfDay(now), now)
	if err != nil {
		return 0, fmt.Errorf("error getting today's steps: %w", err)
	}
	return googlefit.FirstBucketSteps(resp), nil
}

// SevenDayAverage averages the daily buckets of the seven days before today.
// The divisor is the number of buckets returned, not seven.
func (s StepService) SevenDayAverage(ctx context.Context) (int64, error) {
	now := s.now()
	end := startOfDay(now)
	start := time.Date(now.Year(), now.Month(), now.Day()-7, 0, 0, 0, 0, now.Location())

	resp, err := s.agg.AggregateSteps(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("error getting seven day steps: %w", err)
	}
	if resp == nil {
		return 0, nil
	}

	slog.Debug("got seven day buckets", "buckets", len(resp.Bucket))
	return averageSteps(resp.Bucket), nil
}

func averageSteps(buckets []*fitness.AggregateBucket) int64 {
	if len(buckets) == 0 {
		return 0
	}
	var total int64
	for _, b := range buckets {
		total += googlefit.BucketSteps(b)
	}
	return int64(math.Round(float64(total) / float64(len(buckets))))
}

// Report runs both queries concurrently. If either fails the other is
// cancelled and the error is returned.
func (s StepService) Report(ctx context.Context) (models.StepReport, error) {
	var report models.StepReport
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		today, err := s.Today(ctx)
		if err != nil {
			return err
		}
		report.Today = today
		return nil
	})

	g.Go(func() error {
		avg, err := s.SevenDayAverage(ctx)
		if err != nil {
			return err
		}
		report.WeeklyAverage = avg
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.StepReport{}, err
	}
	return report, nil
}
