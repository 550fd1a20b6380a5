package repository

import (
	"context"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
)

// Every domain has two providers behind these interfaces: remote talks to
// the REST backend, memory simulates it. Both return canonical shapes and
// report failures as *errors.AppError or domain errors that carry their
// envelope code.
type (
	AppointmentRepository interface {
		ListDepartments(ctx context.Context, page model.Pagination) ([]model.Department, error)
		CreateDepartment(ctx context.Context, req model.CreateDepartmentRequest) (model.Department, error)
		UpdateDepartment(ctx context.Context, id int64, req model.UpdateDepartmentRequest) (model.Department, error)
		DeleteDepartment(ctx context.Context, id int64) error

		ListDoctors(ctx context.Context, filters model.DoctorFilters) ([]model.Doctor, error)
		CreateDoctor(ctx context.Context, req model.CreateDoctorRequest) (model.Doctor, error)
		UpdateDoctor(ctx context.Context, id int64, req model.UpdateDoctorRequest) (model.Doctor, error)
		DeleteDoctor(ctx context.Context, id int64) error

		ListSchedules(ctx context.Context, filters model.ScheduleFilters) ([]model.Schedule, error)

		ListAppointments(ctx context.Context, filters model.AppointmentFilters) ([]model.Appointment, error)
		GetAppointment(ctx context.Context, apptID int64) (model.Appointment, error)
		CreateAppointment(ctx context.Context, req model.CreateAppointmentRequest) (model.Appointment, error)
		UpdateAppointmentStatus(ctx context.Context, apptID int64, status model.AppointmentStatus) (model.Appointment, error)
	}

	RecordRepository interface {
		ListRecords(ctx context.Context, filters model.RecordFilters) ([]model.MedicalRecord, error)
		GetRecord(ctx context.Context, id string) (model.MedicalRecord, error)
		CreateRecord(ctx context.Context, req model.CreateRecordRequest) (model.MedicalRecord, error)
		UpdateRecord(ctx context.Context, id string, req model.UpdateRecordRequest) (model.MedicalRecord, error)
		UpdateRecordStatus(ctx context.Context, id string, status model.RecordStatus) (model.MedicalRecord, error)

		ListTemplates(ctx context.Context) ([]model.RecordTemplate, error)
		GetTemplate(ctx context.Context, id int64) (model.RecordTemplate, error)
		CreateTemplate(ctx context.Context, req model.CreateTemplateRequest) (model.RecordTemplate, error)
		UpdateTemplate(ctx context.Context, id int64, req model.UpdateTemplateRequest) (model.RecordTemplate, error)
		DeleteTemplate(ctx context.Context, id int64) error

		Dictionaries(ctx context.Context) (model.Dictionaries, error)
		ImagingDictionary(ctx context.Context) ([]string, error)
		LabDictionary(ctx context.Context) ([]string, error)

		ListPatients(ctx context.Context, filters model.PatientFilters) (httputil.Page[model.Patient], error)
		GetPatient(ctx context.Context, id int64) (model.Patient, error)
	}

	PharmacyRepository interface {
		ListMedicines(ctx context.Context) ([]model.Medicine, error)
		ListBatches(ctx context.Context) ([]model.InventoryBatch, error)
		ListInventoryLogs(ctx context.Context) ([]model.InventoryLog, error)
		StockIn(ctx context.Context, req model.StockInRequest) (model.StockMovement, error)
		StockOut(ctx context.Context, req model.StockOutRequest) (model.StockMovement, error)

		ListPrescriptions(ctx context.Context, status model.PrescriptionStatus) ([]model.Prescription, error)
		CreatePrescription(ctx context.Context, req model.CreatePrescriptionRequest) (model.Prescription, error)
		UpdatePrescriptionStatus(ctx context.Context, id string, status model.PrescriptionStatus) (model.Prescription, error)

		ListSuppliers(ctx context.Context) ([]model.Supplier, error)
		CreateSupplier(ctx context.Context, req model.CreateSupplierRequest) (model.Supplier, error)
		DeleteSupplier(ctx context.Context, id int64) error

		ListOrders(ctx context.Context, status model.OrderStatus) ([]model.SupplierOrder, error)
		CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.SupplierOrder, error)
		UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.SupplierOrder, error)
	}

	ReportRepository interface {
		DailyVisits(ctx context.Context, date string) ([]model.DailyVisit, error)
		DailyDrugs(ctx context.Context, date string) ([]model.DailyDrug, error)
		MonthlyVisits(ctx context.Context, month string) ([]model.MonthlyVisit, error)
		MonthlyDrugs(ctx context.Context, month string) ([]model.MonthlyDrug, error)
		Custom(ctx context.Context, filters model.CustomReportFilters) ([]model.CustomReportRow, error)
	}

	// Credentials is what providers need from the session: the bearer
	// token and the signed-in user's id.
	Credentials interface {
		Token() string
		UserID() int64
	}
)
