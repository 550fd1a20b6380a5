package remote

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/normalize"
	"github.com/jwalitptl/clinic-console/internal/repository"
)

type appointmentRepository struct {
	c *Client
}

func NewAppointmentRepository(c *Client) repository.AppointmentRepository {
	return &appointmentRepository{c: c}
}

// Departments

func (r *appointmentRepository) ListDepartments(ctx context.Context, page model.Pagination) ([]model.Department, error) {
	var out normalize.List[normalize.BackendDepartment]
	q := newParams().page(page.Page, page.PageSize, model.DefaultPageSize)
	if err := r.c.do(ctx, http.MethodGet, "/departments", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out.List, normalize.Department), nil
}

func (r *appointmentRepository) CreateDepartment(ctx context.Context, req model.CreateDepartmentRequest) (model.Department, error) {
	var out normalize.BackendDepartment
	if err := r.c.do(ctx, http.MethodPost, "/departments", nil, normalize.CreateDepartmentPayload(req), &out); err != nil {
		return model.Department{}, err
	}
	return normalize.Department(out), nil
}

func (r *appointmentRepository) UpdateDepartment(ctx context.Context, id int64, req model.UpdateDepartmentRequest) (model.Department, error) {
	var out normalize.BackendDepartment
	if err := r.c.do(ctx, http.MethodPut, idPath("/departments/%s", id), nil, normalize.UpdateDepartmentPayload(req), &out); err != nil {
		return model.Department{}, err
	}
	return normalize.Department(out), nil
}

func (r *appointmentRepository) DeleteDepartment(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodDelete, idPath("/departments/%s", id), nil, nil, nil)
}

// Doctors

func (r *appointmentRepository) ListDoctors(ctx context.Context, filters model.DoctorFilters) ([]model.Doctor, error) {
	var out normalize.List[normalize.BackendDoctor]
	q := newParams().setInt("deptId", filters.DeptID).page(filters.Page, filters.PageSize, model.DefaultPageSize)
	if err := r.c.do(ctx, http.MethodGet, "/doctors", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out.List, normalize.Doctor), nil
}

func (r *appointmentRepository) CreateDoctor(ctx context.Context, req model.CreateDoctorRequest) (model.Doctor, error) {
	var out normalize.BackendDoctor
	if err := r.c.do(ctx, http.MethodPost, "/doctors", nil, normalize.CreateDoctorPayload(req), &out); err != nil {
		return model.Doctor{}, err
	}
	return normalize.Doctor(out), nil
}

func (r *appointmentRepository) UpdateDoctor(ctx context.Context, id int64, req model.UpdateDoctorRequest) (model.Doctor, error) {
	var out normalize.BackendDoctor
	if err := r.c.do(ctx, http.MethodPut, idPath("/doctors/%s", id), nil, normalize.UpdateDoctorPayload(req), &out); err != nil {
		return model.Doctor{}, err
	}
	return normalize.Doctor(out), nil
}

func (r *appointmentRepository) DeleteDoctor(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodDelete, idPath("/doctors/%s", id), nil, nil, nil)
}

// Schedules

func (r *appointmentRepository) ListSchedules(ctx context.Context, filters model.ScheduleFilters) ([]model.Schedule, error) {
	var out normalize.List[normalize.BackendSchedule]
	q := newParams().setInt("doctorId", filters.DoctorID).page(filters.Page, filters.PageSize, model.DefaultPageSize)
	if err := r.c.do(ctx, http.MethodGet, "/schedules", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out.List, normalize.Schedule), nil
}

// Appointments

func (r *appointmentRepository) ListAppointments(ctx context.Context, filters model.AppointmentFilters) ([]model.Appointment, error) {
	var out normalize.List[normalize.BackendAppointment]
	q := newParams().
		setInt("patientId", filters.PatientID).
		setInt("doctorId", filters.DoctorID).
		page(filters.Page, filters.PageSize, model.DefaultPageSize)
	if filters.Status != "" {
		q.values().Set("status", strconv.Itoa(filters.Status.Code()))
	}
	if err := r.c.do(ctx, http.MethodGet, "/appointments", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out.List, normalize.Appointment), nil
}

func (r *appointmentRepository) GetAppointment(ctx context.Context, apptID int64) (model.Appointment, error) {
	var out normalize.BackendAppointment
	if err := r.c.do(ctx, http.MethodGet, idPath("/appointments/%s", apptID), nil, nil, &out); err != nil {
		return model.Appointment{}, err
	}
	return normalize.Appointment(out), nil
}

// CreateAppointment books for req.PatientID, or for the signed-in user when
// it is unset.
func (r *appointmentRepository) CreateAppointment(ctx context.Context, req model.CreateAppointmentRequest) (model.Appointment, error) {
	var out normalize.BackendAppointment
	payload := normalize.CreateAppointmentPayload(req, r.c.userID())
	if err := r.c.do(ctx, http.MethodPost, "/appointments", nil, payload, &out); err != nil {
		return model.Appointment{}, err
	}
	return normalize.Appointment(out), nil
}

// UpdateAppointmentStatus reads the current status first so illegal moves
// are refused before the backend sees them.
func (r *appointmentRepository) UpdateAppointmentStatus(ctx context.Context, apptID int64, status model.AppointmentStatus) (model.Appointment, error) {
	current, err := r.GetAppointment(ctx, apptID)
	if err != nil {
		return model.Appointment{}, err
	}
	if err := lifecycle.Apply(lifecycle.Appointment, current.Status, status); err != nil {
		return model.Appointment{}, err
	}
	var out normalize.BackendAppointment
	path := idPath("/appointments/%s", apptID) + "/status"
	if err := r.c.do(ctx, http.MethodPatch, path, nil, normalize.AppointmentStatusPayloadOf(status), &out); err != nil {
		return model.Appointment{}, err
	}
	if out.ApptTime == "" {
		current.Status = status
		return current, nil
	}
	return normalize.Appointment(out), nil
}
