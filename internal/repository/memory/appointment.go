package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/identifier"
)

// Joins. Callers hold s.mu.

func (s *Store) department(id int64) (model.Department, bool) {
	i := indexOf(s.departments, func(d model.Department) bool { return d.ID == id })
	if i < 0 {
		return model.Department{}, false
	}
	return s.departments[i], true
}

func (s *Store) doctor(id int64) (model.Doctor, bool) {
	i := indexOf(s.doctors, func(d model.Doctor) bool { return d.ID == id })
	if i < 0 {
		return model.Doctor{}, false
	}
	d := s.doctors[i]
	dept, _ := s.department(d.DeptID)
	d.DeptName = dept.Name
	return d, true
}

func (s *Store) patient(id int64) (model.Patient, bool) {
	i := indexOf(s.patients, func(p model.Patient) bool { return p.ID == id })
	if i < 0 {
		return model.Patient{}, false
	}
	return s.patients[i], true
}

// resolvePatient accepts either a patient id or the id of the user account
// a patient profile belongs to.
func (s *Store) resolvePatient(id int64) (model.Patient, bool) {
	if p, ok := s.patient(id); ok {
		return p, true
	}
	i := indexOf(s.patients, func(p model.Patient) bool { return p.UserID != 0 && p.UserID == id })
	if i < 0 {
		return model.Patient{}, false
	}
	return s.patients[i], true
}

func (s *Store) booked(scheduleID int64) int {
	n := 0
	for _, a := range s.appointments {
		if a.ScheduleID == scheduleID && a.Status != model.AppointmentStatusCancelled {
			n++
		}
	}
	return n
}

func (s *Store) schedule(id int64) (model.Schedule, bool) {
	i := indexOf(s.schedules, func(sc model.Schedule) bool { return sc.ID == id })
	if i < 0 {
		return model.Schedule{}, false
	}
	sc := s.schedules[i]
	doc, _ := s.doctor(sc.DoctorID)
	sc.DoctorName = doc.Name
	sc.DeptID = doc.DeptID
	sc.DeptName = doc.DeptName
	sc.BookedCount = s.booked(sc.ID)
	sc.AvailableQuota = sc.TotalQuota - sc.BookedCount
	if sc.AvailableQuota < 0 {
		sc.AvailableQuota = 0
	}
	return sc, true
}

func (s *Store) joinAppointment(a model.Appointment) model.Appointment {
	if p, ok := s.patient(a.PatientID); ok {
		a.Patient = p.Name
	}
	if d, ok := s.doctor(a.DoctorID); ok {
		a.Doctor = d.Name
		a.DeptID = d.DeptID
		a.Department = d.DeptName
	}
	return a
}

// Departments

func (s *Store) ListDepartments(ctx context.Context, page model.Pagination) ([]model.Department, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	all := append([]model.Department(nil), s.departments...)
	sortByID(all, func(d model.Department) int64 { return d.ID })
	return paginate(all, page, model.DefaultPageSize), nil
}

func (s *Store) CreateDepartment(ctx context.Context, req model.CreateDepartmentRequest) (model.Department, error) {
	if err := s.begin(ctx); err != nil {
		return model.Department{}, err
	}
	defer s.mu.Unlock()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Department{}, errors.BadRequest("department name is required", nil)
	}
	if indexOf(s.departments, func(d model.Department) bool { return d.Name == name }) >= 0 {
		return model.Department{}, errors.BadRequest("department name already exists", nil)
	}
	d := model.Department{
		ID:          nextID(s.departments, func(d model.Department) int64 { return d.ID }),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}
	s.departments = append(s.departments, d)
	return d, nil
}

func (s *Store) UpdateDepartment(ctx context.Context, id int64, req model.UpdateDepartmentRequest) (model.Department, error) {
	if err := s.begin(ctx); err != nil {
		return model.Department{}, err
	}
	defer s.mu.Unlock()

	i := indexOf(s.departments, func(d model.Department) bool { return d.ID == id })
	if i < 0 {
		return model.Department{}, errors.NotFound("department", nil)
	}
	d := s.departments[i]
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return model.Department{}, errors.BadRequest("department name is required", nil)
		}
		d.Name = name
	}
	if req.Description != nil {
		d.Description = strings.TrimSpace(*req.Description)
	}
	s.departments[i] = d
	return d, nil
}

func (s *Store) DeleteDepartment(ctx context.Context, id int64) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	i := indexOf(s.departments, func(d model.Department) bool { return d.ID == id })
	if i < 0 {
		return errors.NotFound("department", nil)
	}
	s.departments = append(s.departments[:i], s.departments[i+1:]...)
	return nil
}

// Doctors

func (s *Store) ListDoctors(ctx context.Context, filters model.DoctorFilters) ([]model.Doctor, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		if filters.DeptID != 0 && d.DeptID != filters.DeptID {
			continue
		}
		joined, _ := s.doctor(d.ID)
		out = append(out, joined)
	}
	sortByID(out, func(d model.Doctor) int64 { return d.ID })
	return paginate(out, filters.Pagination, model.DefaultPageSize), nil
}

func (s *Store) CreateDoctor(ctx context.Context, req model.CreateDoctorRequest) (model.Doctor, error) {
	if err := s.begin(ctx); err != nil {
		return model.Doctor{}, err
	}
	defer s.mu.Unlock()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Doctor{}, errors.BadRequest("doctor name is required", nil)
	}
	if _, ok := s.department(req.DeptID); !ok {
		return model.Doctor{}, errors.BadRequest("department does not exist", nil)
	}
	d := model.Doctor{
		ID:           nextID(s.doctors, func(d model.Doctor) int64 { return d.ID }),
		Name:         name,
		DeptID:       req.DeptID,
		Title:        strings.TrimSpace(req.Title),
		Specialty:    strings.TrimSpace(req.Specialty),
		Introduction: strings.TrimSpace(req.Introduction),
	}
	s.doctors = append(s.doctors, d)
	joined, _ := s.doctor(d.ID)
	return joined, nil
}

func (s *Store) UpdateDoctor(ctx context.Context, id int64, req model.UpdateDoctorRequest) (model.Doctor, error) {
	if err := s.begin(ctx); err != nil {
		return model.Doctor{}, err
	}
	defer s.mu.Unlock()

	i := indexOf(s.doctors, func(d model.Doctor) bool { return d.ID == id })
	if i < 0 {
		return model.Doctor{}, errors.NotFound("doctor", nil)
	}
	d := s.doctors[i]
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return model.Doctor{}, errors.BadRequest("doctor name is required", nil)
		}
		d.Name = name
	}
	if req.DeptID != nil {
		if _, ok := s.department(*req.DeptID); !ok {
			return model.Doctor{}, errors.BadRequest("department does not exist", nil)
		}
		d.DeptID = *req.DeptID
	}
	if req.Title != nil {
		d.Title = strings.TrimSpace(*req.Title)
	}
	if req.Specialty != nil {
		d.Specialty = strings.TrimSpace(*req.Specialty)
	}
	if req.Introduction != nil {
		d.Introduction = strings.TrimSpace(*req.Introduction)
	}
	s.doctors[i] = d
	joined, _ := s.doctor(id)
	return joined, nil
}

func (s *Store) DeleteDoctor(ctx context.Context, id int64) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	i := indexOf(s.doctors, func(d model.Doctor) bool { return d.ID == id })
	if i < 0 {
		return errors.NotFound("doctor", nil)
	}
	s.doctors = append(s.doctors[:i], s.doctors[i+1:]...)
	return nil
}

// Schedules

func (s *Store) ListSchedules(ctx context.Context, filters model.ScheduleFilters) ([]model.Schedule, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.Schedule, 0, len(s.schedules))
	for _, sc := range s.schedules {
		if filters.DoctorID != 0 && sc.DoctorID != filters.DoctorID {
			continue
		}
		joined, _ := s.schedule(sc.ID)
		out = append(out, joined)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return paginate(out, filters.Pagination, model.DefaultPageSize), nil
}

// Appointments

func (s *Store) ListAppointments(ctx context.Context, filters model.AppointmentFilters) ([]model.Appointment, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		if filters.PatientID != 0 && a.PatientID != filters.PatientID {
			continue
		}
		if filters.DoctorID != 0 && a.DoctorID != filters.DoctorID {
			continue
		}
		if filters.Status != "" && a.Status != filters.Status {
			continue
		}
		out = append(out, s.joinAppointment(a))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time > out[j].Time })
	return paginate(out, filters.Pagination, model.DefaultPageSize), nil
}

func (s *Store) GetAppointment(ctx context.Context, apptID int64) (model.Appointment, error) {
	if err := s.begin(ctx); err != nil {
		return model.Appointment{}, err
	}
	defer s.mu.Unlock()

	i := indexOf(s.appointments, func(a model.Appointment) bool { return a.ApptID == apptID })
	if i < 0 {
		return model.Appointment{}, errors.NotFound("appointment", nil)
	}
	return s.joinAppointment(s.appointments[i]), nil
}

// CreateAppointment books a pending appointment. The patient, doctor and
// schedule must exist, the schedule must be the doctor's, the time must fall
// inside it and the schedule must have quota left.
func (s *Store) CreateAppointment(ctx context.Context, req model.CreateAppointmentRequest) (model.Appointment, error) {
	if err := s.begin(ctx); err != nil {
		return model.Appointment{}, err
	}
	defer s.mu.Unlock()

	patient, ok := s.resolvePatient(req.PatientID)
	if !ok {
		return model.Appointment{}, errors.BadRequest("patient does not exist", nil)
	}
	doc, ok := s.doctor(req.DoctorID)
	if !ok {
		return model.Appointment{}, errors.BadRequest("doctor does not exist", nil)
	}
	sc, ok := s.schedule(req.ScheduleID)
	if !ok {
		return model.Appointment{}, errors.BadRequest("schedule does not exist", nil)
	}
	if sc.DoctorID != doc.ID {
		return model.Appointment{}, errors.BadRequest("schedule does not belong to the doctor", nil)
	}

	apptTime := strings.TrimSpace(req.ApptTime)
	if apptTime == "" {
		apptTime = fmt.Sprintf("%s %s", strings.TrimSpace(req.Date), strings.TrimSpace(req.StartTime))
		if len(strings.TrimSpace(req.StartTime)) == len(clockLayout) {
			apptTime += ":00"
		}
	}
	at, err := time.Parse(dateTimeLayout, apptTime)
	if err != nil {
		return model.Appointment{}, errors.BadRequest("invalid appointment time", err)
	}
	start, errStart := time.Parse(minuteLayout, sc.Date+" "+sc.StartTime)
	end, errEnd := time.Parse(minuteLayout, sc.Date+" "+sc.EndTime)
	if errStart != nil || errEnd != nil || at.Before(start) || at.After(end) {
		return model.Appointment{}, errors.BadRequest("appointment time is outside the schedule", nil)
	}
	if sc.BookedCount >= sc.TotalQuota {
		return model.Appointment{}, errors.BadRequest("schedule is fully booked", nil)
	}
	dup := indexOf(s.appointments, func(a model.Appointment) bool {
		return a.PatientID == patient.ID && a.Time == apptTime && a.Status != model.AppointmentStatusCancelled
	})
	if dup >= 0 {
		return model.Appointment{}, errors.BadRequest("patient already has an appointment at this time", nil)
	}

	apptID := nextID(s.appointments, func(a model.Appointment) int64 { return a.ApptID })
	id, err := identifier.Mint(identifier.KindAppointment, at, int(apptID))
	if err != nil {
		return model.Appointment{}, errors.Internal(err)
	}
	a := model.Appointment{
		ID:         id,
		ApptID:     apptID,
		PatientID:  patient.ID,
		DoctorID:   doc.ID,
		DeptID:     doc.DeptID,
		ScheduleID: sc.ID,
		Time:       apptTime,
		Symptom:    strings.TrimSpace(req.Symptom),
		Status:     model.AppointmentStatusPending,
	}
	s.appointments = append(s.appointments, a)
	return s.joinAppointment(a), nil
}

func (s *Store) UpdateAppointmentStatus(ctx context.Context, apptID int64, status model.AppointmentStatus) (model.Appointment, error) {
	if err := s.begin(ctx); err != nil {
		return model.Appointment{}, err
	}
	defer s.mu.Unlock()

	i := indexOf(s.appointments, func(a model.Appointment) bool { return a.ApptID == apptID })
	if i < 0 {
		return model.Appointment{}, errors.NotFound("appointment", nil)
	}
	if err := lifecycle.Apply(lifecycle.Appointment, s.appointments[i].Status, status); err != nil {
		return model.Appointment{}, err
	}
	s.appointments[i].Status = status
	return s.joinAppointment(s.appointments[i]), nil
}
