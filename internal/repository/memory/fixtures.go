package memory

import "github.com/jwalitptl/clinic-console/internal/model"

// DefaultSeed is the demo dataset the console ships with in simulated mode.
func DefaultSeed() Seed {
	return Seed{
		Departments: []model.Department{
			{ID: 1, Name: "Internal Medicine", Description: "General adult medicine"},
			{ID: 2, Name: "Surgery", Description: "General and trauma surgery"},
			{ID: 3, Name: "Pediatrics", Description: "Children under 14"},
		},
		Doctors: []model.Doctor{
			{ID: 1, Name: "Dr. Zhang Wei", DeptID: 1, Title: "Chief Physician", Specialty: "Cardiology"},
			{ID: 2, Name: "Dr. Li Na", DeptID: 2, Title: "Attending Surgeon", Specialty: "Orthopedics"},
			{ID: 3, Name: "Dr. Chen Jing", DeptID: 3, Title: "Resident", Specialty: "Neonatology"},
		},
		Schedules: []model.Schedule{
			{ID: 1, DoctorID: 1, Date: "2025-01-05", StartTime: "08:00", EndTime: "12:00", TotalQuota: 20},
			{ID: 2, DoctorID: 2, Date: "2025-01-05", StartTime: "13:30", EndTime: "17:30", TotalQuota: 15},
			{ID: 3, DoctorID: 3, Date: "2025-01-06", StartTime: "08:00", EndTime: "12:00", TotalQuota: 2},
		},
		Patients: []model.Patient{
			{ID: 1, UserID: 4, Name: "Wang Fang", Gender: 2, Birthday: "1988-03-12", IDCard: "110101198803120021", Address: "12 Chaoyang Road", EmergencyContact: "Wang Lei", EmergencyPhone: "13800000001"},
			{ID: 2, UserID: 0, Name: "Liu Yang", Gender: 1, Birthday: "1975-11-02", IDCard: "110101197511020013", Address: "8 Haidian Street", EmergencyContact: "Liu Min", EmergencyPhone: "13800000002"},
			{ID: 3, UserID: 0, Name: "Zhao Min", Gender: 2, Birthday: "2019-06-30", IDCard: "110101201906300044", Address: "3 Dongcheng Lane", EmergencyContact: "Zhao Gang", EmergencyPhone: "13800000003"},
		},
		Appointments: []model.Appointment{
			{ID: "R-20250101-0001", ApptID: 1, PatientID: 1, DoctorID: 1, DeptID: 1, ScheduleID: 1, Time: "2025-01-01 09:00:00", Symptom: "Persistent cough", Status: model.AppointmentStatusCompleted},
			{ID: "R-20250102-0002", ApptID: 2, PatientID: 2, DoctorID: 2, DeptID: 2, ScheduleID: 2, Time: "2025-01-02 14:00:00", Symptom: "Knee pain", Status: model.AppointmentStatusPending},
			{ID: "R-20250103-0003", ApptID: 3, PatientID: 3, DoctorID: 3, DeptID: 3, ScheduleID: 3, Time: "2025-01-03 10:30:00", Symptom: "Fever", Status: model.AppointmentStatusCancelled},
		},
		Records: []model.MedicalRecord{
			{
				ID: "MR-20250101-0001", PatientID: 1, PatientName: "Wang Fang", DeptID: 1, DoctorID: 1,
				CreatedAt: "2025-01-01 09:20", ChiefComplaint: "Cough for two weeks", Diagnosis: "Acute bronchitis",
				Prescriptions: []string{"Amoxicillin 0.25g"}, Labs: []string{"Complete blood count"}, Imaging: []string{"Chest X-ray"},
				HasLab: true, HasImaging: true, Status: model.RecordStatusFinalized,
			},
			{
				ID: "MR-20250102-0002", PatientID: 2, PatientName: "Liu Yang", DeptID: 2, DoctorID: 2,
				CreatedAt: "2025-01-02 14:10", ChiefComplaint: "Right knee pain after a fall",
				Prescriptions: []string{}, Labs: []string{}, Imaging: []string{"Knee MRI"},
				HasImaging: true, Status: model.RecordStatusDraft,
			},
		},
		Templates: []model.RecordTemplate{
			{ID: 1, Name: "Outpatient visit", Scope: model.DefaultTemplateScope, Fields: []string{"chiefComplaint", "diagnosis", "prescriptions"}, Defaults: map[string]interface{}{}},
			{ID: 2, Name: "Respiratory infection", Scope: "Internal Medicine", Fields: []string{"chiefComplaint", "diagnosis", "labs", "imaging"},
				Defaults: map[string]interface{}{"labs": []interface{}{"Complete blood count"}, "imaging": []interface{}{"Chest X-ray"}}},
		},
		Dictionaries: model.Dictionaries{
			Imaging: []string{"Chest X-ray", "Abdominal ultrasound", "Head CT", "Knee MRI"},
			Labs:    []string{"Complete blood count", "Liver function", "Renal function", "Blood glucose"},
		},
		Medicines: []model.Medicine{
			{ID: 1, Name: "Amoxicillin", Specification: "0.25g x 24", Unit: "box", Price: 18.5, WarningStock: 20, CurrentStock: 120},
			{ID: 2, Name: "Ibuprofen", Specification: "0.2g x 20", Unit: "box", Price: 12, WarningStock: 30, CurrentStock: 25},
			{ID: 3, Name: "Saline", Specification: "500ml", Unit: "bottle", Price: 4.2, WarningStock: 50, CurrentStock: 300},
		},
		Batches: []model.InventoryBatch{
			{ID: 1, MedicineID: 1, BatchNo: "AMX-2401", Quantity: 120, ReceivedAt: "2024-12-01", ExpiryDate: "2026-12-01"},
			{ID: 2, MedicineID: 2, BatchNo: "IBU-2402", Quantity: 25, ReceivedAt: "2024-12-10", ExpiryDate: "2025-01-20"},
			{ID: 3, MedicineID: 3, BatchNo: "SAL-2403", Quantity: 300, ReceivedAt: "2024-12-15", ExpiryDate: "2027-06-30"},
		},
		Logs: []model.InventoryLog{
			{ID: 1, Type: model.MovementIn, MedicineID: 1, Quantity: 120, Time: "2024-12-01 10:00:00", Note: "Initial stock"},
			{ID: 2, Type: model.MovementIn, MedicineID: 2, Quantity: 25, Time: "2024-12-10 10:00:00", Note: "Initial stock"},
			{ID: 3, Type: model.MovementIn, MedicineID: 3, Quantity: 300, Time: "2024-12-15 10:00:00", Note: "Initial stock"},
		},
		Prescriptions: []model.Prescription{
			{
				ID: "RX-20250101-0001", Patient: "Wang Fang", Department: "Internal Medicine", Doctor: "Dr. Zhang Wei",
				CreatedAt: "2025-01-01 09:30:00", Status: model.PrescriptionStatusDispensed,
				Items: []model.PrescriptionItem{{MedicineID: 1, Name: "Amoxicillin", Qty: 2, Unit: "box", Price: 18.5}},
			},
			{
				ID: "RX-20250102-0002", Patient: "Liu Yang", Department: "Surgery", Doctor: "Dr. Li Na",
				CreatedAt: "2025-01-02 14:30:00", Status: model.PrescriptionStatusPending,
				Items: []model.PrescriptionItem{
					{MedicineID: 2, Name: "Ibuprofen", Qty: 1, Unit: "box", Price: 12},
					{MedicineID: 3, Name: "Saline", Qty: 2, Unit: "bottle", Price: 4.2},
				},
			},
		},
		Suppliers: []model.Supplier{
			{ID: 1, Name: "North Pharma Supply", Contact: "Sun Hao", Phone: "010-88880001", Address: "21 Industrial Park"},
			{ID: 2, Name: "Eastern Medical Trading", Contact: "Zhou Lin", Phone: "010-88880002", Address: "5 Harbor Road"},
		},
		Orders: []model.SupplierOrder{
			{
				ID: "PO-20241230-0001", SupplierID: 1, CreatedAt: "2024-12-30 16:00:00", Status: model.OrderStatusPending, Amount: 370,
				Items: []model.SupplierOrderItem{{MedicineID: 1, Name: "Amoxicillin", Qty: 20, Unit: "box", Price: 18.5}},
			},
		},
	}
}
