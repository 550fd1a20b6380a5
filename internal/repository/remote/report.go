package remote

import (
	"context"
	"net/http"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/normalize"
	"github.com/jwalitptl/clinic-console/internal/repository"
)

type reportRepository struct {
	c *Client
}

func NewReportRepository(c *Client) repository.ReportRepository {
	return &reportRepository{c: c}
}

func (r *reportRepository) DailyVisits(ctx context.Context, date string) ([]model.DailyVisit, error) {
	var out normalize.List[model.DailyVisit]
	if err := r.c.do(ctx, http.MethodGet, "/reports/daily/visits", newParams().setStr("date", date).values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out.List, normalize.DailyVisit), nil
}

func (r *reportRepository) DailyDrugs(ctx context.Context, date string) ([]model.DailyDrug, error) {
	var out normalize.List[model.DailyDrug]
	if err := r.c.do(ctx, http.MethodGet, "/reports/daily/drugs", newParams().setStr("date", date).values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out.List, func(d model.DailyDrug) model.DailyDrug { return d }), nil
}

func (r *reportRepository) MonthlyVisits(ctx context.Context, month string) ([]model.MonthlyVisit, error) {
	var out normalize.List[model.MonthlyVisit]
	if err := r.c.do(ctx, http.MethodGet, "/reports/monthly/visits", newParams().setStr("month", month).values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out.List, func(v model.MonthlyVisit) model.MonthlyVisit { return v }), nil
}

func (r *reportRepository) MonthlyDrugs(ctx context.Context, month string) ([]model.MonthlyDrug, error) {
	var out normalize.List[model.MonthlyDrug]
	if err := r.c.do(ctx, http.MethodGet, "/reports/monthly/drugs", newParams().setStr("month", month).values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out.List, func(d model.MonthlyDrug) model.MonthlyDrug { return d }), nil
}

func (r *reportRepository) Custom(ctx context.Context, filters model.CustomReportFilters) ([]model.CustomReportRow, error) {
	var out normalize.List[model.CustomReportRow]
	q := newParams().
		setStr("deptName", filters.DeptName).
		setStr("doctorName", filters.DoctorName).
		setStr("dateStart", filters.DateStart).
		setStr("dateEnd", filters.DateEnd)
	if err := r.c.do(ctx, http.MethodGet, "/reports/custom", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out.List, normalize.CustomReportRow), nil
}
