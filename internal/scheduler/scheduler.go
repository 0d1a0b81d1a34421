// Package scheduler runs the shop's periodic jobs: low stock alerts and the
// end of day sales summary.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"nainai/backend/internal/report"
	"nainai/backend/internal/service"
)

const jobTimeout = 30 * time.Second

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Scheduler struct {
	svc  *service.Service
	cron *cron.Cron
	log  *zap.Logger
}

// New registers both jobs. An empty spec disables its job. A nil log uses the
// global logger.
func New(svc *service.Service, log *zap.Logger, lowStockSpec string, dailySummarySpec string) (*Scheduler, error) {
	if log == nil {
		log = zap.L().Named("scheduler")
	}
	s := &Scheduler{
		svc:  svc,
		cron: cron.New(cron.WithLocation(svc.Location()), cron.WithParser(cronParser)),
		log:  log,
	}
	jobs := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"low_stock", lowStockSpec, s.LowStockJob},
		{"daily_summary", dailySummarySpec, s.DailySummaryJob},
	}
	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(job.spec, s.wrap(job.name, job.run)); err != nil {
			return nil, fmt.Errorf("schedule %s %q: %w", job.name, job.spec, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("jobs still running at shutdown")
	}
}

func (s *Scheduler) wrap(name string, run func(context.Context)) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("job panicked", zap.String("job", name), zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		run(ctx)
	}
}

// LowStockJob logs one warning per ingredient below its threshold.
func (s *Scheduler) LowStockJob(ctx context.Context) {
	for _, ingredient := range s.svc.LowStock(ctx) {
		s.log.Warn("low stock",
			zap.String("ingredient", ingredient.Name),
			zap.String("stock", ingredient.StockQuantity.StringFixed(2)),
			zap.String("threshold", ingredient.LowStockThreshold.StringFixed(2)),
			zap.String("unit", ingredient.Unit),
		)
	}
}

func (s *Scheduler) DailySummaryJob(ctx context.Context) {
	summary := s.svc.TodaySummary(ctx)
	s.log.Info(report.DailySummary(s.svc.Today(), summary),
		zap.Int("orders", summary.OrderCount),
		zap.String("revenue", summary.TotalRevenue.StringFixed(2)),
	)
}
