package normalize

import (
	"strings"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/identifier"
)

type BackendDepartment struct {
	DeptID   int64  `json:"deptId"`
	DeptName string `json:"deptName"`
	DeptDesc string `json:"deptDesc"`
}

type BackendDoctor struct {
	DoctorID     int64  `json:"doctorId"`
	DoctorName   string `json:"doctorName"`
	DeptID       int64  `json:"deptId"`
	DeptName     string `json:"deptName"`
	Title        string `json:"title"`
	Specialty    string `json:"specialty"`
	Introduction string `json:"introduction"`
}

type BackendSchedule struct {
	ScheduleID     int64  `json:"scheduleId"`
	DoctorID       int64  `json:"doctorId"`
	DoctorName     string `json:"doctorName"`
	DeptID         int64  `json:"deptId"`
	DeptName       string `json:"deptName"`
	WorkDate       string `json:"workDate"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	TotalQuota     int    `json:"totalQuota"`
	BookedCount    int    `json:"bookedCount"`
	AvailableQuota int    `json:"availableQuota"`
}

type BackendAppointment struct {
	ApptID      int64  `json:"apptId"`
	PatientID   int64  `json:"patientId"`
	PatientName string `json:"patientName"`
	DoctorID    int64  `json:"doctorId"`
	DoctorName  string `json:"doctorName"`
	DeptID      int64  `json:"deptId"`
	DeptName    string `json:"deptName"`
	ScheduleID  int64  `json:"scheduleId"`
	ApptTime    string `json:"apptTime"`
	Status      int    `json:"status"`
	SymptomDesc string `json:"symptomDesc"`
}

type DepartmentPayload struct {
	DeptName *string `json:"deptName,omitempty"`
	DeptDesc *string `json:"deptDesc,omitempty"`
}

type DoctorPayload struct {
	DoctorName   *string `json:"doctorName,omitempty"`
	DeptID       *int64  `json:"deptId,omitempty"`
	UserID       *int64  `json:"userId,omitempty"`
	Title        *string `json:"title,omitempty"`
	Specialty    *string `json:"specialty,omitempty"`
	Introduction *string `json:"introduction,omitempty"`
}

type AppointmentPayload struct {
	PatientID   int64  `json:"patientId"`
	DoctorID    int64  `json:"doctorId"`
	ScheduleID  int64  `json:"scheduleId"`
	ApptTime    string `json:"apptTime"`
	SymptomDesc string `json:"symptomDesc"`
}

type AppointmentStatusPayload struct {
	Status int `json:"status"`
}

// Inbound

func Department(d BackendDepartment) model.Department {
	return model.Department{ID: d.DeptID, Name: d.DeptName, Description: d.DeptDesc}
}

func Doctor(d BackendDoctor) model.Doctor {
	return model.Doctor{
		ID:           d.DoctorID,
		Name:         d.DoctorName,
		DeptID:       d.DeptID,
		DeptName:     d.DeptName,
		Title:        d.Title,
		Specialty:    d.Specialty,
		Introduction: d.Introduction,
	}
}

func Schedule(s BackendSchedule) model.Schedule {
	return model.Schedule{
		ID:             s.ScheduleID,
		DoctorID:       s.DoctorID,
		DoctorName:     s.DoctorName,
		DeptID:         s.DeptID,
		DeptName:       s.DeptName,
		Date:           s.WorkDate,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		TotalQuota:     s.TotalQuota,
		BookedCount:    s.BookedCount,
		AvailableQuota: s.AvailableQuota,
	}
}

// Appointment derives the display id from the appointment date and the
// backend's numeric id.
func Appointment(a BackendAppointment) model.Appointment {
	id, _ := identifier.MintFromDateString(identifier.KindAppointment, a.ApptTime, int(a.ApptID))
	return model.Appointment{
		ID:         id,
		ApptID:     a.ApptID,
		PatientID:  a.PatientID,
		Patient:    a.PatientName,
		DoctorID:   a.DoctorID,
		Doctor:     a.DoctorName,
		DeptID:     a.DeptID,
		Department: a.DeptName,
		ScheduleID: a.ScheduleID,
		Time:       a.ApptTime,
		Symptom:    a.SymptomDesc,
		Status:     model.AppointmentStatusFromCode(a.Status),
	}
}

// Inverse mappings used when serving the backend surface.

func BackendDepartmentOf(d model.Department) BackendDepartment {
	return BackendDepartment{DeptID: d.ID, DeptName: d.Name, DeptDesc: d.Description}
}

func BackendDoctorOf(d model.Doctor) BackendDoctor {
	return BackendDoctor{
		DoctorID:     d.ID,
		DoctorName:   d.Name,
		DeptID:       d.DeptID,
		DeptName:     d.DeptName,
		Title:        d.Title,
		Specialty:    d.Specialty,
		Introduction: d.Introduction,
	}
}

func BackendScheduleOf(s model.Schedule) BackendSchedule {
	return BackendSchedule{
		ScheduleID:     s.ID,
		DoctorID:       s.DoctorID,
		DoctorName:     s.DoctorName,
		DeptID:         s.DeptID,
		DeptName:       s.DeptName,
		WorkDate:       s.Date,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		TotalQuota:     s.TotalQuota,
		BookedCount:    s.BookedCount,
		AvailableQuota: s.AvailableQuota,
	}
}

func BackendAppointmentOf(a model.Appointment) BackendAppointment {
	return BackendAppointment{
		ApptID:      a.ApptID,
		PatientID:   a.PatientID,
		PatientName: a.Patient,
		DoctorID:    a.DoctorID,
		DoctorName:  a.Doctor,
		DeptID:      a.DeptID,
		DeptName:    a.Department,
		ScheduleID:  a.ScheduleID,
		ApptTime:    a.Time,
		Status:      a.Status.Code(),
		SymptomDesc: a.Symptom,
	}
}

// Outbound

func CreateDepartmentPayload(req model.CreateDepartmentRequest) DepartmentPayload {
	return DepartmentPayload{
		DeptName: ptr(strings.TrimSpace(req.Name)),
		DeptDesc: ptr(strings.TrimSpace(req.Description)),
	}
}

func UpdateDepartmentPayload(req model.UpdateDepartmentRequest) DepartmentPayload {
	return DepartmentPayload{DeptName: trimPtr(req.Name), DeptDesc: trimPtr(req.Description)}
}

func CreateDoctorPayload(req model.CreateDoctorRequest) DoctorPayload {
	p := DoctorPayload{
		DoctorName:   ptr(strings.TrimSpace(req.Name)),
		DeptID:       ptr(req.DeptID),
		Title:        ptr(strings.TrimSpace(req.Title)),
		Specialty:    ptr(strings.TrimSpace(req.Specialty)),
		Introduction: ptr(strings.TrimSpace(req.Introduction)),
	}
	if req.UserID != 0 {
		p.UserID = ptr(req.UserID)
	}
	return p
}

func UpdateDoctorPayload(req model.UpdateDoctorRequest) DoctorPayload {
	return DoctorPayload{
		DoctorName:   trimPtr(req.Name),
		DeptID:       req.DeptID,
		Title:        trimPtr(req.Title),
		Specialty:    trimPtr(req.Specialty),
		Introduction: trimPtr(req.Introduction),
	}
}

// ApptTime composes "YYYY-MM-DD HH:MM:SS" from the request. An explicit
// ApptTime wins; otherwise Date and StartTime are joined and a bare HH:MM
// gets ":00" appended.
func ApptTime(req model.CreateAppointmentRequest) string {
	if t := strings.TrimSpace(req.ApptTime); t != "" {
		return t
	}
	start := strings.TrimSpace(req.StartTime)
	if len(start) == 5 {
		start += ":00"
	}
	return strings.TrimSpace(req.Date) + " " + start
}

// CreateAppointmentPayload defaults the patient to the signed-in user.
func CreateAppointmentPayload(req model.CreateAppointmentRequest, userID int64) AppointmentPayload {
	patientID := req.PatientID
	if patientID == 0 {
		patientID = userID
	}
	return AppointmentPayload{
		PatientID:   patientID,
		DoctorID:    req.DoctorID,
		ScheduleID:  req.ScheduleID,
		ApptTime:    ApptTime(req),
		SymptomDesc: strings.TrimSpace(req.Symptom),
	}
}

func AppointmentStatusPayloadOf(status model.AppointmentStatus) AppointmentStatusPayload {
	return AppointmentStatusPayload{Status: status.Code()}
}

// Payload readers used when serving the backend surface.

func CreateDepartmentRequestOf(p DepartmentPayload) model.CreateDepartmentRequest {
	return model.CreateDepartmentRequest{Name: deref(p.DeptName), Description: deref(p.DeptDesc)}
}

func UpdateDepartmentRequestOf(p DepartmentPayload) model.UpdateDepartmentRequest {
	return model.UpdateDepartmentRequest{Name: p.DeptName, Description: p.DeptDesc}
}

func CreateDoctorRequestOf(p DoctorPayload) model.CreateDoctorRequest {
	return model.CreateDoctorRequest{
		Name:         deref(p.DoctorName),
		DeptID:       deref(p.DeptID),
		UserID:       deref(p.UserID),
		Title:        deref(p.Title),
		Specialty:    deref(p.Specialty),
		Introduction: deref(p.Introduction),
	}
}

func UpdateDoctorRequestOf(p DoctorPayload) model.UpdateDoctorRequest {
	return model.UpdateDoctorRequest{
		Name:         p.DoctorName,
		DeptID:       p.DeptID,
		Title:        p.Title,
		Specialty:    p.Specialty,
		Introduction: p.Introduction,
	}
}

func CreateAppointmentRequestOf(p AppointmentPayload) model.CreateAppointmentRequest {
	return model.CreateAppointmentRequest{
		PatientID:  p.PatientID,
		DoctorID:   p.DoctorID,
		ScheduleID: p.ScheduleID,
		ApptTime:   p.ApptTime,
		Symptom:    p.SymptomDesc,
	}
}
