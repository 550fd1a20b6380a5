package record

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/repository/memory"
	"github.com/jwalitptl/clinic-console/pkg/validator"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := memory.NewStore(memory.DefaultSeed(),
		memory.WithLatency(memory.Latency{}),
		memory.WithClock(func() time.Time { return time.Date(2025, 1, 5, 9, 30, 0, 0, time.UTC) }),
	)
	return NewService(store, validator.New(), nil)
}

func TestRecordFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created := svc.CreateRecord(ctx, model.CreateRecordRequest{DeptID: 1, DoctorID: 1, PatientName: "Zhao Min", ChiefComplaint: "fever"})
	require.Equal(t, 200, created.Code, created.Message)
	assert.Equal(t, model.RecordStatusDraft, created.Data.Status)
	assert.Equal(t, []string{}, created.Data.Labs)

	final := svc.UpdateRecordStatus(ctx, created.Data.ID, model.UpdateRecordStatusRequest{Status: model.RecordStatusFinalized})
	require.Equal(t, 200, final.Code, final.Message)

	back := svc.UpdateRecordStatus(ctx, created.Data.ID, model.UpdateRecordStatusRequest{Status: model.RecordStatusDraft})
	assert.Equal(t, 400, back.Code)

	got := svc.GetRecord(ctx, created.Data.ID)
	require.True(t, got.OK())
	assert.Equal(t, model.RecordStatusFinalized, got.Data.Status)
}

func TestRecordInputErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.Equal(t, 400, svc.GetRecord(ctx, "not-an-id").Code)
	assert.Equal(t, 404, svc.GetRecord(ctx, "MR-20250101-0099").Code)
	assert.Equal(t, "patientName is required", svc.CreateRecord(ctx, model.CreateRecordRequest{DeptID: 1, DoctorID: 1}).Message)
	assert.Equal(t, 400, svc.ListRecords(ctx, model.RecordFilters{Date: "05/01/2025"}).Code)
}

func TestPatientsPage(t *testing.T) {
	svc := newTestService(t)
	env := svc.ListPatients(context.Background(), model.PatientFilters{Name: "a"})
	require.True(t, env.OK())
	assert.Equal(t, 1, env.Data.Page)
	assert.Equal(t, model.DefaultPatientPageSize, env.Data.PageSize)
	assert.Equal(t, env.Data.Total, len(env.Data.List))
}
