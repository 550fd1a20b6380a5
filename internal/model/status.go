package model

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentStatusFromCode maps the backend's numeric status. Unknown codes
// are treated as pending.
func AppointmentStatusFromCode(code int) AppointmentStatus {
	switch code {
	case 1:
		return AppointmentStatusCompleted
	case 2:
		return AppointmentStatusCancelled
	default:
		return AppointmentStatusPending
	}
}

// Code is the inverse of AppointmentStatusFromCode.
func (s AppointmentStatus) Code() int {
	switch s {
	case AppointmentStatusCompleted:
		return 1
	case AppointmentStatusCancelled:
		return 2
	default:
		return 0
	}
}

type RecordStatus string

const (
	RecordStatusDraft     RecordStatus = "draft"
	RecordStatusFinalized RecordStatus = "finalized"
	RecordStatusArchived  RecordStatus = "archived"
)

type PrescriptionStatus string

const (
	PrescriptionStatusPending   PrescriptionStatus = "pending"
	PrescriptionStatusApproved  PrescriptionStatus = "approved"
	PrescriptionStatusDispensed PrescriptionStatus = "dispensed"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)
