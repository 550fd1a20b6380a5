package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-console/internal/model"
)

func TestRecordMissingListsBecomeEmpty(t *testing.T) {
	var wire BackendRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"MR-20250105-0001","patient":"Wang","status":"finalized","unexpected":{"x":1}}`), &wire))

	rec := Record(wire)
	assert.NotNil(t, rec.Prescriptions)
	assert.NotNil(t, rec.Labs)
	assert.NotNil(t, rec.Imaging)
	assert.Empty(t, rec.Labs)
	assert.False(t, rec.HasLab)
	assert.Equal(t, "Wang", rec.PatientName)
	assert.Equal(t, model.RecordStatusFinalized, rec.Status)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"labs":[]`)
	assert.Contains(t, string(out), `"imaging":[]`)
	assert.Contains(t, string(out), `"prescriptions":[]`)
}

func TestRecordPrefersExplicitNames(t *testing.T) {
	rec := Record(BackendRecord{
		Patient:     "old",
		PatientName: "new",
		Department:  "1",
		DeptName:    "Internal Medicine",
		Labs:        []string{"CBC"},
		Status:      "bogus",
	})
	assert.Equal(t, "new", rec.PatientName)
	assert.Equal(t, "Internal Medicine", rec.Department)
	assert.True(t, rec.HasLab)
	assert.Equal(t, model.RecordStatusDraft, rec.Status)
}

func TestAppointmentMapping(t *testing.T) {
	tests := []struct {
		status int
		want   model.AppointmentStatus
	}{
		{0, model.AppointmentStatusPending},
		{1, model.AppointmentStatusCompleted},
		{2, model.AppointmentStatusCancelled},
		{9, model.AppointmentStatusPending},
	}
	for _, tt := range tests {
		a := Appointment(BackendAppointment{ApptID: 7, ApptTime: "2025-01-05 09:00:00", Status: tt.status, DeptName: "Surgery"})
		assert.Equal(t, tt.want, a.Status)
		assert.Equal(t, "R-20250105-0007", a.ID)
		assert.Equal(t, "Surgery", a.Department)
	}

	a := Appointment(BackendAppointment{ApptID: 123456, ApptTime: "2025-01-05 09:00:00"})
	assert.Equal(t, "R-20250105-3456", a.ID)
}

func TestAppointmentRoundTripThroughBackendShape(t *testing.T) {
	a := model.Appointment{
		ID: "R-20250105-0012", ApptID: 12, PatientID: 3, Patient: "Li", DoctorID: 1, Doctor: "Dr. Zhang",
		DeptID: 1, Department: "Internal Medicine", ScheduleID: 1, Time: "2025-01-05 09:00:00",
		Symptom: "fever", Status: model.AppointmentStatusCancelled,
	}
	assert.Equal(t, a, Appointment(BackendAppointmentOf(a)))
}

func TestDepartmentAndDoctorDecode(t *testing.T) {
	var list List[BackendDoctor]
	body := `{"list":[{"doctorId":2,"doctorName":"Dr. Li","deptId":1,"deptName":"Internal","title":"Chief","createdAt":"2025-01-01T00:00:00"}],"total":1,"page":1,"pageSize":100}`
	require.NoError(t, json.Unmarshal([]byte(body), &list))

	doctors := Map(list.List, Doctor)
	require.Len(t, doctors, 1)
	assert.Equal(t, model.Doctor{ID: 2, Name: "Dr. Li", DeptID: 1, DeptName: "Internal", Title: "Chief"}, doctors[0])

	assert.NotNil(t, Map([]BackendDepartment(nil), Department))
}

func TestApptTime(t *testing.T) {
	assert.Equal(t, "2025-01-05 09:00:00", ApptTime(model.CreateAppointmentRequest{Date: "2025-01-05", StartTime: "09:00"}))
	assert.Equal(t, "2025-01-05 09:00:30", ApptTime(model.CreateAppointmentRequest{Date: "2025-01-05", StartTime: "09:00:30"}))
	assert.Equal(t, "2025-02-01 10:00:00", ApptTime(model.CreateAppointmentRequest{ApptTime: " 2025-02-01 10:00:00 ", Date: "2025-01-05"}))
}

func TestCreateAppointmentPayloadDefaultsPatient(t *testing.T) {
	p := CreateAppointmentPayload(model.CreateAppointmentRequest{DoctorID: 1, ScheduleID: 1, Date: "2025-01-05", StartTime: "09:00", Symptom: "  cough "}, 42)
	assert.Equal(t, int64(42), p.PatientID)
	assert.Equal(t, "cough", p.SymptomDesc)

	p = CreateAppointmentPayload(model.CreateAppointmentRequest{PatientID: 5, DoctorID: 1, ScheduleID: 1, ApptTime: "2025-01-05 09:00:00"}, 42)
	assert.Equal(t, int64(5), p.PatientID)
}

func TestDepartmentPayloadOmitsUnsetFields(t *testing.T) {
	name := "  Cardiology "
	out, err := json.Marshal(UpdateDepartmentPayload(model.UpdateDepartmentRequest{Name: &name}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"deptName":"Cardiology"}`, string(out))

	out, err = json.Marshal(CreateDepartmentPayload(model.CreateDepartmentRequest{Name: " Eye ", Description: " eyes "}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"deptName":"Eye","deptDesc":"eyes"}`, string(out))
}

func TestTemplatePayloadDefaults(t *testing.T) {
	p := CreateTemplatePayload(model.CreateTemplateRequest{Name: " Basic ", Fields: []string{"diagnosis", "", "  "}})
	assert.Equal(t, "Basic", p.Name)
	assert.Equal(t, model.DefaultTemplateScope, p.Scope)
	assert.Equal(t, []string{"diagnosis"}, p.Fields)
	assert.NotNil(t, p.Defaults)
}

func TestDictionariesDefault(t *testing.T) {
	d := Dictionaries(nil)
	assert.NotNil(t, d.Imaging)
	assert.NotNil(t, d.Labs)
}

func TestSupplierPayloadDefaultsName(t *testing.T) {
	p := CreateSupplierPayload(model.CreateSupplierRequest{Name: "   ", Phone: " 123 "})
	assert.Equal(t, model.DefaultSupplierName, p.Name)
	assert.Equal(t, "123", p.Phone)
}

func TestPrescriptionNormalization(t *testing.T) {
	var p model.Prescription
	require.NoError(t, json.Unmarshal([]byte(`{"id":"RX-20250105-0001","patient":"Wang","status":"APPROVED"}`), &p))

	n := Prescription(p)
	assert.NotNil(t, n.Items)
	assert.Equal(t, model.PrescriptionStatusApproved, n.Status)
	assert.Equal(t, model.PrescriptionStatusPending, PrescriptionStatus("lost"))
	assert.Equal(t, model.OrderStatusCancelled, OrderStatus("cancelled"))
	assert.Equal(t, model.MovementOut, MovementType("OUT"))
}

func TestUserName(t *testing.T) {
	assert.Equal(t, model.User{ID: 3, Name: "Zhang"}, User(BackendAuthUser{UserID: 3, Username: "z", RealName: "Zhang"}))
	assert.Equal(t, model.User{ID: 3, Name: "z"}, User(BackendAuthUser{UserID: 3, Username: "z"}))
}
