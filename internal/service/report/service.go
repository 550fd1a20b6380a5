package report

import (
	"context"
	"time"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/internal/service"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
	"github.com/jwalitptl/clinic-console/pkg/validator"
)

type Service struct {
	repo  repository.ReportRepository
	valid validator.Validator
	obs   *service.Observer
}

func NewService(repo repository.ReportRepository, v validator.Validator, obs *service.Observer) *Service {
	return &Service{repo: repo, valid: v, obs: obs}
}

func (s *Service) DailyVisits(ctx context.Context, date string) httputil.Envelope[[]model.DailyVisit] {
	start := time.Now()
	if err := service.CheckField(s.valid, "date", date, "required", "datetime=2006-01-02"); err != nil {
		return service.Reject[[]model.DailyVisit](s.obs, "reports.daily_visits", start, err)
	}
	data, err := s.repo.DailyVisits(ctx, date)
	return service.Finish(s.obs, "reports.daily_visits", start, data, err)
}

func (s *Service) DailyDrugs(ctx context.Context, date string) httputil.Envelope[[]model.DailyDrug] {
	start := time.Now()
	if err := service.CheckField(s.valid, "date", date, "required", "datetime=2006-01-02"); err != nil {
		return service.Reject[[]model.DailyDrug](s.obs, "reports.daily_drugs", start, err)
	}
	data, err := s.repo.DailyDrugs(ctx, date)
	return service.Finish(s.obs, "reports.daily_drugs", start, data, err)
}

func (s *Service) MonthlyVisits(ctx context.Context, month string) httputil.Envelope[[]model.MonthlyVisit] {
	start := time.Now()
	if err := service.CheckField(s.valid, "month", month, "required", "datetime=2006-01"); err != nil {
		return service.Reject[[]model.MonthlyVisit](s.obs, "reports.monthly_visits", start, err)
	}
	data, err := s.repo.MonthlyVisits(ctx, month)
	return service.Finish(s.obs, "reports.monthly_visits", start, data, err)
}

func (s *Service) MonthlyDrugs(ctx context.Context, month string) httputil.Envelope[[]model.MonthlyDrug] {
	start := time.Now()
	if err := service.CheckField(s.valid, "month", month, "required", "datetime=2006-01"); err != nil {
		return service.Reject[[]model.MonthlyDrug](s.obs, "reports.monthly_drugs", start, err)
	}
	data, err := s.repo.MonthlyDrugs(ctx, month)
	return service.Finish(s.obs, "reports.monthly_drugs", start, data, err)
}

func (s *Service) Custom(ctx context.Context, filters model.CustomReportFilters) httputil.Envelope[[]model.CustomReportRow] {
	start := time.Now()
	if err := service.Check(s.valid, filters); err != nil {
		return service.Reject[[]model.CustomReportRow](s.obs, "reports.custom", start, err)
	}
	data, err := s.repo.Custom(ctx, filters)
	return service.Finish(s.obs, "reports.custom", start, data, err)
}
