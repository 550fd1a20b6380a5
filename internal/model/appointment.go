package model

type Department struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateDepartmentRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type UpdateDepartmentRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
}

type Doctor struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DeptID       int64  `json:"deptId"`
	DeptName     string `json:"deptName"`
	Title        string `json:"title"`
	Specialty    string `json:"specialty"`
	Introduction string `json:"introduction"`
}

type CreateDoctorRequest struct {
	Name         string `json:"name" validate:"required"`
	DeptID       int64  `json:"deptId" validate:"required,gt=0"`
	UserID       int64  `json:"userId"`
	Title        string `json:"title"`
	Specialty    string `json:"specialty"`
	Introduction string `json:"introduction"`
}

type UpdateDoctorRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1"`
	DeptID       *int64  `json:"deptId,omitempty" validate:"omitempty,gt=0"`
	Title        *string `json:"title,omitempty"`
	Specialty    *string `json:"specialty,omitempty"`
	Introduction *string `json:"introduction,omitempty"`
}

type DoctorFilters struct {
	DeptID int64
	Pagination
}

type Schedule struct {
	ID             int64  `json:"id"`
	DoctorID       int64  `json:"doctorId"`
	DoctorName     string `json:"doctorName"`
	DeptID         int64  `json:"deptId"`
	DeptName       string `json:"deptName"`
	Date           string `json:"date"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	TotalQuota     int    `json:"totalQuota"`
	BookedCount    int    `json:"bookedCount"`
	AvailableQuota int    `json:"availableQuota"`
}

type ScheduleFilters struct {
	DoctorID int64
	Pagination
}

type Appointment struct {
	ID         string            `json:"id"`
	ApptID     int64             `json:"apptId"`
	PatientID  int64             `json:"patientId"`
	Patient    string            `json:"patient"`
	DoctorID   int64             `json:"doctorId"`
	Doctor     string            `json:"doctor"`
	DeptID     int64             `json:"deptId"`
	Department string            `json:"department"`
	ScheduleID int64             `json:"scheduleId"`
	Time       string            `json:"time"`
	Symptom    string            `json:"symptom"`
	Status     AppointmentStatus `json:"status"`
}

// CreateAppointmentRequest books a slot. Either ApptTime or Date plus
// StartTime must be given; PatientID falls back to the signed-in user.
type CreateAppointmentRequest struct {
	PatientID  int64  `json:"patientId,omitempty"`
	DoctorID   int64  `json:"doctorId" validate:"required,gt=0"`
	ScheduleID int64  `json:"scheduleId" validate:"required,gt=0"`
	Date       string `json:"date,omitempty" validate:"required_without=ApptTime"`
	StartTime  string `json:"startTime,omitempty" validate:"required_without=ApptTime"`
	ApptTime   string `json:"apptTime,omitempty"`
	Symptom    string `json:"symptom,omitempty"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" validate:"required,oneof=pending completed cancelled"`
}

type AppointmentFilters struct {
	PatientID int64
	DoctorID  int64
	Status    AppointmentStatus
	Pagination
}
