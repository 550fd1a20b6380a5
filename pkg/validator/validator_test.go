package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/errors"
)

func TestValidate(t *testing.T) {
	v := New()

	tests := []struct {
		name string
		obj  interface{}
		want string
	}{
		{"valid", model.LoginRequest{Username: "admin", Password: "admin123"}, ""},
		{"missing", model.LoginRequest{Username: "admin"}, "password is required"},
		{"short password", model.RegisterRequest{Username: "u", Password: "123"}, "password must be at least 6 characters long"},
		{"bad email", model.RegisterRequest{Username: "u", Password: "123456", Email: "nope"}, "email must be a valid email"},
		{"no slot", model.CreateAppointmentRequest{DoctorID: 1, ScheduleID: 1}, "date is required"},
		{"appt time", model.CreateAppointmentRequest{DoctorID: 1, ScheduleID: 1, ApptTime: "2025-01-05 09:00:00"}, ""},
		{"empty items", model.CreatePrescriptionRequest{Patient: "p"}, "items is required"},
		{"bad item", model.CreatePrescriptionRequest{Patient: "p", Items: []model.LineItemRequest{{MedicineID: 1}}}, "qty is required"},
		{"bad status", model.UpdateOrderStatusRequest{Status: "pending"}, "status must be one of [completed cancelled]"},
		{"bad date", model.StockInRequest{MedicineID: 1, BatchNo: "b", Quantity: 1, ReceivedAt: "01/05/2025"}, "receivedAt must match 2006-01-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.obj)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, 400, errors.CodeOf(err))
			assert.Equal(t, tt.want, errors.MessageOf(err))
		})
	}
}

func TestValidateField(t *testing.T) {
	v := New()
	assert.NoError(t, v.ValidateField("date", "2025-01-05", "datetime=2006-01-02"))
	err := v.ValidateField("month", "2025/01", "required", "datetime=2006-01")
	assert.Equal(t, "month must match 2006-01", errors.MessageOf(err))
}
