package appointment

import (
	"context"
	"time"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/internal/service"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
	"github.com/jwalitptl/clinic-console/pkg/validator"
)

type Service struct {
	repo  repository.AppointmentRepository
	creds repository.Credentials
	valid validator.Validator
	obs   *service.Observer
}

// NewService builds the appointments gateway. creds may be nil, in which
// case bookings must name their patient.
func NewService(repo repository.AppointmentRepository, creds repository.Credentials, v validator.Validator, obs *service.Observer) *Service {
	return &Service{repo: repo, creds: creds, valid: v, obs: obs}
}

// Departments

func (s *Service) ListDepartments(ctx context.Context, page model.Pagination) httputil.Envelope[[]model.Department] {
	start := time.Now()
	data, err := s.repo.ListDepartments(ctx, page)
	return service.Finish(s.obs, "appointments.list_departments", start, data, err)
}

func (s *Service) CreateDepartment(ctx context.Context, req model.CreateDepartmentRequest) httputil.Envelope[model.Department] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.Department](s.obs, "appointments.create_department", start, err)
	}
	data, err := s.repo.CreateDepartment(ctx, req)
	return service.Finish(s.obs, "appointments.create_department", start, data, err)
}

func (s *Service) UpdateDepartment(ctx context.Context, id int64, req model.UpdateDepartmentRequest) httputil.Envelope[model.Department] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.Department](s.obs, "appointments.update_department", start, err)
	}
	data, err := s.repo.UpdateDepartment(ctx, id, req)
	return service.Finish(s.obs, "appointments.update_department", start, data, err)
}

func (s *Service) DeleteDepartment(ctx context.Context, id int64) httputil.Envelope[service.Done] {
	start := time.Now()
	err := s.repo.DeleteDepartment(ctx, id)
	return service.Finish(s.obs, "appointments.delete_department", start, service.Done{}, err)
}

// Doctors

func (s *Service) ListDoctors(ctx context.Context, filters model.DoctorFilters) httputil.Envelope[[]model.Doctor] {
	start := time.Now()
	data, err := s.repo.ListDoctors(ctx, filters)
	return service.Finish(s.obs, "appointments.list_doctors", start, data, err)
}

func (s *Service) CreateDoctor(ctx context.Context, req model.CreateDoctorRequest) httputil.Envelope[model.Doctor] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.Doctor](s.obs, "appointments.create_doctor", start, err)
	}
	data, err := s.repo.CreateDoctor(ctx, req)
	return service.Finish(s.obs, "appointments.create_doctor", start, data, err)
}

func (s *Service) UpdateDoctor(ctx context.Context, id int64, req model.UpdateDoctorRequest) httputil.Envelope[model.Doctor] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.Doctor](s.obs, "appointments.update_doctor", start, err)
	}
	data, err := s.repo.UpdateDoctor(ctx, id, req)
	return service.Finish(s.obs, "appointments.update_doctor", start, data, err)
}

func (s *Service) DeleteDoctor(ctx context.Context, id int64) httputil.Envelope[service.Done] {
	start := time.Now()
	err := s.repo.DeleteDoctor(ctx, id)
	return service.Finish(s.obs, "appointments.delete_doctor", start, service.Done{}, err)
}

func (s *Service) ListSchedules(ctx context.Context, filters model.ScheduleFilters) httputil.Envelope[[]model.Schedule] {
	start := time.Now()
	data, err := s.repo.ListSchedules(ctx, filters)
	return service.Finish(s.obs, "appointments.list_schedules", start, data, err)
}

// Appointments

func (s *Service) ListAppointments(ctx context.Context, filters model.AppointmentFilters) httputil.Envelope[[]model.Appointment] {
	start := time.Now()
	data, err := s.repo.ListAppointments(ctx, filters)
	return service.Finish(s.obs, "appointments.list", start, data, err)
}

func (s *Service) GetAppointment(ctx context.Context, apptID int64) httputil.Envelope[model.Appointment] {
	start := time.Now()
	data, err := s.repo.GetAppointment(ctx, apptID)
	return service.Finish(s.obs, "appointments.get", start, data, err)
}

// CreateAppointment books for the signed-in user unless req names a patient.
func (s *Service) CreateAppointment(ctx context.Context, req model.CreateAppointmentRequest) httputil.Envelope[model.Appointment] {
	start := time.Now()
	if req.PatientID == 0 && s.creds != nil {
		req.PatientID = s.creds.UserID()
	}
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.Appointment](s.obs, "appointments.create", start, err)
	}
	if req.PatientID == 0 {
		return service.Reject[model.Appointment](s.obs, "appointments.create", start, errors.BadRequest("patientId is required", nil))
	}
	data, err := s.repo.CreateAppointment(ctx, req)
	return service.Finish(s.obs, "appointments.create", start, data, err)
}

func (s *Service) UpdateAppointmentStatus(ctx context.Context, apptID int64, req model.UpdateAppointmentStatusRequest) httputil.Envelope[model.Appointment] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.Appointment](s.obs, "appointments.update_status", start, err)
	}
	data, err := s.repo.UpdateAppointmentStatus(ctx, apptID, req.Status)
	env := service.Finish(s.obs, "appointments.update_status", start, data, err)
	if env.OK() {
		s.obs.StatusChanged(ctx, lifecycle.Appointment, env.Data.ID, string(req.Status))
	}
	return env
}
