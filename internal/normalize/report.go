package normalize

import (
	"strings"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
)

// Report rows carry appointment statuses as strings.
func reportStatus(s string) string {
	status := strings.ToLower(strings.TrimSpace(s))
	if !lifecycle.Declared(lifecycle.Appointment, status) {
		return string(model.AppointmentStatusPending)
	}
	return status
}

func DailyVisit(v model.DailyVisit) model.DailyVisit {
	v.Status = reportStatus(v.Status)
	return v
}

func CustomReportRow(r model.CustomReportRow) model.CustomReportRow {
	r.Status = reportStatus(r.Status)
	return r
}
