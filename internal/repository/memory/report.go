package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/identifier"
)

// Reports are computed on read from appointments and prescriptions.

func (s *Store) beginReport(ctx context.Context) error {
	return s.enter(ctx, s.latency.Reports)
}

func parseDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return errors.BadRequest("invalid date, expected YYYY-MM-DD", err)
	}
	return nil
}

func parseMonth(month string) error {
	if _, err := time.Parse(monthLayout, month); err != nil {
		return errors.BadRequest("invalid month, expected YYYY-MM", err)
	}
	return nil
}

func (s *Store) visitRow(a model.Appointment) model.DailyVisit {
	a = s.joinAppointment(a)
	id, _ := identifier.MintFromDateString(identifier.KindAppointment, datePart(a.Time), int(a.ApptID))
	return model.DailyVisit{
		ID:         id,
		Patient:    a.Patient,
		Department: a.Department,
		Doctor:     a.Doctor,
		Time:       a.Time,
		Status:     string(a.Status),
	}
}

func (s *Store) DailyVisits(ctx context.Context, date string) ([]model.DailyVisit, error) {
	if err := parseDate(date); err != nil {
		return nil, err
	}
	if err := s.beginReport(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.DailyVisit, 0)
	for _, a := range s.appointments {
		if datePart(a.Time) == date {
			out = append(out, s.visitRow(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (s *Store) DailyDrugs(ctx context.Context, date string) ([]model.DailyDrug, error) {
	if err := parseDate(date); err != nil {
		return nil, err
	}
	if err := s.beginReport(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.DailyDrug, 0)
	for _, rx := range s.prescriptions {
		if datePart(rx.CreatedAt) != date {
			continue
		}
		for n, it := range rx.Items {
			row := model.DailyDrug{
				ID:         rx.ID + "-" + strconv.Itoa(n+1),
				Medicine:   it.Name,
				Quantity:   it.Qty,
				Unit:       it.Unit,
				Patient:    rx.Patient,
				Department: rx.Department,
				Doctor:     rx.Doctor,
				Date:       date,
			}
			if mi := s.medicineIndex(it.MedicineID); mi >= 0 {
				row.Medicine = s.medicines[mi].Name
				row.Specification = s.medicines[mi].Specification
			}
			out = append(out, row)
		}
	}
	return out, nil
}

// countByDay tallies weights per YYYY-MM-DD within month, sorted by day.
func countByDay(month string, days []string, weights []int) ([]string, map[string]int) {
	totals := make(map[string]int)
	for i, d := range days {
		if strings.HasPrefix(d, month+"-") {
			totals[d] += weights[i]
		}
	}
	keys := make([]string, 0, len(totals))
	for d := range totals {
		keys = append(keys, d)
	}
	sort.Strings(keys)
	return keys, totals
}

func (s *Store) MonthlyVisits(ctx context.Context, month string) ([]model.MonthlyVisit, error) {
	if err := parseMonth(month); err != nil {
		return nil, err
	}
	if err := s.beginReport(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	days := make([]string, 0, len(s.appointments))
	weights := make([]int, 0, len(s.appointments))
	for _, a := range s.appointments {
		days = append(days, datePart(a.Time))
		weights = append(weights, 1)
	}
	keys, totals := countByDay(month, days, weights)
	out := make([]model.MonthlyVisit, 0, len(keys))
	for _, d := range keys {
		out = append(out, model.MonthlyVisit{Date: d, Count: totals[d]})
	}
	return out, nil
}

func (s *Store) MonthlyDrugs(ctx context.Context, month string) ([]model.MonthlyDrug, error) {
	if err := parseMonth(month); err != nil {
		return nil, err
	}
	if err := s.beginReport(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	days := make([]string, 0, len(s.prescriptions))
	weights := make([]int, 0, len(s.prescriptions))
	for _, rx := range s.prescriptions {
		days = append(days, datePart(rx.CreatedAt))
		weights = append(weights, len(rx.Items))
	}
	keys, totals := countByDay(month, days, weights)
	out := make([]model.MonthlyDrug, 0, len(keys))
	for _, d := range keys {
		out = append(out, model.MonthlyDrug{Date: d, Items: totals[d]})
	}
	return out, nil
}

// Custom lists visits matching the filters, each with the number of
// prescription items written the same day by the same doctor and department.
// DateEnd is inclusive.
func (s *Store) Custom(ctx context.Context, filters model.CustomReportFilters) ([]model.CustomReportRow, error) {
	for _, d := range []string{filters.DateStart, filters.DateEnd} {
		if d == "" {
			continue
		}
		if err := parseDate(d); err != nil {
			return nil, err
		}
	}
	if err := s.beginReport(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	drugItems := make(map[string]int)
	for _, rx := range s.prescriptions {
		drugItems[datePart(rx.CreatedAt)+"|"+rx.Doctor+"|"+rx.Department] += len(rx.Items)
	}

	deptName := strings.TrimSpace(filters.DeptName)
	doctorName := strings.TrimSpace(filters.DoctorName)
	out := make([]model.CustomReportRow, 0)
	for _, a := range s.appointments {
		v := s.visitRow(a)
		day := datePart(v.Time)
		switch {
		case deptName != "" && v.Department != deptName:
			continue
		case doctorName != "" && v.Doctor != doctorName:
			continue
		case filters.DateStart != "" && day < filters.DateStart:
			continue
		case filters.DateEnd != "" && day > filters.DateEnd:
			continue
		}
		out = append(out, model.CustomReportRow{
			ID:         v.ID,
			Patient:    v.Patient,
			Department: v.Department,
			Doctor:     v.Doctor,
			Time:       v.Time,
			Status:     v.Status,
			DrugItems:  drugItems[day+"|"+v.Doctor+"|"+v.Department],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}
