package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-console/internal/config"
	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/internal/repository/memory"
	"github.com/jwalitptl/clinic-console/internal/repository/remote"
	"github.com/jwalitptl/clinic-console/internal/service"
	"github.com/jwalitptl/clinic-console/internal/session"
	apperrors "github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/messaging"
	"github.com/jwalitptl/clinic-console/pkg/security"
)

var testNow = time.Date(2025, 1, 5, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func newTestStore() *memory.Store {
	return memory.NewStore(memory.DefaultSeed(), memory.WithLatency(memory.Latency{}), memory.WithClock(clock))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.JWTSecret = "test-secret"
	cfg.Auth.Roles = map[string]string{"3": "patient", "4": "nurse"}
	cfg.Log.Level = "error"
	return cfg
}

func testHasher() security.PasswordHasher {
	return security.NewBcryptHasher(bcrypt.MinCost)
}

func startEmulator(t *testing.T, cfg *config.Config, store *memory.Store) *httptest.Server {
	t.Helper()
	r, err := NewEmulator(cfg, EmulatorDeps{Store: store, Hasher: testHasher()})
	require.NoError(t, err)
	srv := httptest.NewServer(r.Engine())
	t.Cleanup(srv.Close)
	return srv
}

// remotePair signs in to an emulator over a fresh store and returns the
// remote repositories next to an identical store queried directly.
type remotePair struct {
	direct   *memory.Store
	appts    repository.AppointmentRepository
	records  repository.RecordRepository
	pharmacy repository.PharmacyRepository
	reports  repository.ReportRepository
	session  *session.Store
}

func newRemotePair(t *testing.T, username, password string) *remotePair {
	t.Helper()
	cfg := testConfig(t)
	srv := startEmulator(t, cfg, newTestStore())

	sess := session.New(nil)
	client := remote.NewClient(remote.Config{BaseURL: srv.URL}, sess)
	roles, err := cfg.RoleTable()
	require.NoError(t, err)
	authn := session.NewAPIAuthenticator(remote.NewAuthService(client), roles)
	require.NoError(t, sess.SignIn(context.Background(), authn, model.LoginRequest{Username: username, Password: password}))

	return &remotePair{
		direct:   newTestStore(),
		appts:    remote.NewAppointmentRepository(client),
		records:  remote.NewRecordRepository(client, time.Minute),
		pharmacy: remote.NewPharmacyRepository(client),
		reports:  remote.NewReportRepository(client),
		session:  sess,
	}
}

func TestRemoteSignInAgainstEmulator(t *testing.T) {
	p := newRemotePair(t, "patient", "patient123")
	assert.Equal(t, model.RolePatient, p.session.Role())
	assert.Equal(t, int64(4), p.session.UserID())
	assert.NotEmpty(t, p.session.Token())
}

func TestRemoteSignInRejected(t *testing.T) {
	cfg := testConfig(t)
	srv := startEmulator(t, cfg, newTestStore())
	client := remote.NewClient(remote.Config{BaseURL: srv.URL}, nil)
	authn := session.NewAPIAuthenticator(remote.NewAuthService(client), nil)

	_, err := authn.Authenticate(context.Background(), model.LoginRequest{Username: "doctor", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, "login failed: invalid username or password", err.Error())
}

func TestRemoteMatchesSimulatedAppointments(t *testing.T) {
	ctx := context.Background()
	p := newRemotePair(t, "patient", "patient123")

	wantDepts, err := p.direct.ListDepartments(ctx, model.Pagination{})
	require.NoError(t, err)
	gotDepts, err := p.appts.ListDepartments(ctx, model.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, wantDepts, gotDepts)

	wantDoctors, err := p.direct.ListDoctors(ctx, model.DoctorFilters{DeptID: 1})
	require.NoError(t, err)
	gotDoctors, err := p.appts.ListDoctors(ctx, model.DoctorFilters{DeptID: 1})
	require.NoError(t, err)
	assert.Equal(t, wantDoctors, gotDoctors)

	wantSchedules, err := p.direct.ListSchedules(ctx, model.ScheduleFilters{DoctorID: 1})
	require.NoError(t, err)
	gotSchedules, err := p.appts.ListSchedules(ctx, model.ScheduleFilters{DoctorID: 1})
	require.NoError(t, err)
	assert.Equal(t, wantSchedules, gotSchedules)

	for _, filters := range []model.AppointmentFilters{
		{},
		{Status: model.AppointmentStatusPending},
		{DoctorID: 3},
	} {
		want, err := p.direct.ListAppointments(ctx, filters)
		require.NoError(t, err)
		got, err := p.appts.ListAppointments(ctx, filters)
		require.NoError(t, err)
		assert.Equal(t, want, got, "filters %+v", filters)
	}

	want, err := p.direct.GetAppointment(ctx, 2)
	require.NoError(t, err)
	got, err := p.appts.GetAppointment(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = p.appts.GetAppointment(ctx, 99)
	assert.Equal(t, 404, apperrors.CodeOf(err))
}

func TestRemoteMatchesSimulatedBooking(t *testing.T) {
	ctx := context.Background()
	p := newRemotePair(t, "patient", "patient123")

	req := model.CreateAppointmentRequest{DoctorID: 1, ScheduleID: 1, Date: "2025-01-05", StartTime: "09:00", Symptom: "headache"}
	got, err := p.appts.CreateAppointment(ctx, req)
	require.NoError(t, err)

	req.PatientID = p.session.UserID()
	want, err := p.direct.CreateAppointment(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "R-20250105-0004", got.ID)

	cancelled, err := p.appts.UpdateAppointmentStatus(ctx, got.ApptID, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)

	_, err = p.appts.UpdateAppointmentStatus(ctx, got.ApptID, model.AppointmentStatusCompleted)
	assert.Equal(t, 400, apperrors.CodeOf(err))

	_, err = p.appts.CreateAppointment(ctx, model.CreateAppointmentRequest{DoctorID: 1, ScheduleID: 99, ApptTime: "2025-01-05 09:00:00"})
	assert.Equal(t, 400, apperrors.CodeOf(err))
}

func TestRemoteMatchesSimulatedRecords(t *testing.T) {
	ctx := context.Background()
	p := newRemotePair(t, "doctor", "doc123")

	want, err := p.direct.ListRecords(ctx, model.RecordFilters{})
	require.NoError(t, err)
	got, err := p.records.ListRecords(ctx, model.RecordFilters{})
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Status, got[i].Status)
		assert.Equal(t, want[i].PatientName, got[i].PatientName)
		assert.Equal(t, want[i].Doctor, got[i].Doctor)
		assert.Equal(t, want[i].HasLab, got[i].HasLab)
	}

	finalized, err := p.records.UpdateRecordStatus(ctx, want[0].ID, nextRecordStatus(want[0].Status))
	require.NoError(t, err)
	assert.Equal(t, want[0].ID, finalized.ID)
	assert.Equal(t, want[0].Diagnosis, finalized.Diagnosis)

	_, err = p.records.GetRecord(ctx, "MR-20990101-0099")
	assert.Equal(t, 404, apperrors.CodeOf(err))

	wantDict, err := p.direct.Dictionaries(ctx)
	require.NoError(t, err)
	gotDict, err := p.records.Dictionaries(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantDict, gotDict)
}

func nextRecordStatus(s model.RecordStatus) model.RecordStatus {
	if s == model.RecordStatusDraft {
		return model.RecordStatusFinalized
	}
	return model.RecordStatusArchived
}

func TestRemoteMatchesSimulatedPharmacy(t *testing.T) {
	ctx := context.Background()
	p := newRemotePair(t, "nurse", "nurse123")

	wantMeds, err := p.direct.ListMedicines(ctx)
	require.NoError(t, err)
	gotMeds, err := p.pharmacy.ListMedicines(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantMeds, gotMeds)

	wantBatches, err := p.direct.ListBatches(ctx)
	require.NoError(t, err)
	gotBatches, err := p.pharmacy.ListBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantBatches, gotBatches)

	wantSuppliers, err := p.direct.ListSuppliers(ctx)
	require.NoError(t, err)
	gotSuppliers, err := p.pharmacy.ListSuppliers(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantSuppliers, gotSuppliers)

	wantRx, err := p.direct.ListPrescriptions(ctx, "")
	require.NoError(t, err)
	gotRx, err := p.pharmacy.ListPrescriptions(ctx, "")
	require.NoError(t, err)
	require.Len(t, gotRx, len(wantRx))
	for i := range wantRx {
		assert.Equal(t, wantRx[i].ID, gotRx[i].ID)
		assert.Equal(t, wantRx[i].Status, gotRx[i].Status)
		assert.Len(t, gotRx[i].Items, len(wantRx[i].Items))
	}

	_, err = p.pharmacy.UpdatePrescriptionStatus(ctx, "RX-20990101-0099", model.PrescriptionStatusApproved)
	assert.Equal(t, 404, apperrors.CodeOf(err))
}

func TestRemoteMatchesSimulatedReports(t *testing.T) {
	ctx := context.Background()
	p := newRemotePair(t, "admin", "admin123")

	wantVisits, err := p.direct.DailyVisits(ctx, "2025-01-01")
	require.NoError(t, err)
	gotVisits, err := p.reports.DailyVisits(ctx, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, wantVisits, gotVisits)

	wantDrugs, err := p.direct.DailyDrugs(ctx, "2025-01-02")
	require.NoError(t, err)
	gotDrugs, err := p.reports.DailyDrugs(ctx, "2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, wantDrugs, gotDrugs)

	wantMonthly, err := p.direct.MonthlyVisits(ctx, "2025-01")
	require.NoError(t, err)
	gotMonthly, err := p.reports.MonthlyVisits(ctx, "2025-01")
	require.NoError(t, err)
	assert.Equal(t, wantMonthly, gotMonthly)

	wantMonthlyDrugs, err := p.direct.MonthlyDrugs(ctx, "2025-01")
	require.NoError(t, err)
	gotMonthlyDrugs, err := p.reports.MonthlyDrugs(ctx, "2025-01")
	require.NoError(t, err)
	assert.Equal(t, wantMonthlyDrugs, gotMonthlyDrugs)

	_, err = p.reports.DailyVisits(ctx, "")
	assert.Equal(t, 400, apperrors.CodeOf(err))
}

func TestEmulatorRequiresToken(t *testing.T) {
	srv := startEmulator(t, testConfig(t), newTestStore())

	res, err := http.Get(srv.URL + "/departments")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, string(body), `"code":401`)
}

func TestEmulatorOpsRoutes(t *testing.T) {
	srv := startEmulator(t, testConfig(t), newTestStore())

	res, err := http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, strings.Contains(string(body), "omms_emulator_http_requests_total"))
}

func TestConsoleSimulatedPasswordLogin(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	c, err := New(ctx, cfg, WithHasher(testHasher()), WithLogOutput(io.Discard),
		WithStoreOptions(memory.WithLatency(memory.Latency{}), memory.WithClock(clock)), WithClock(clock))
	require.NoError(t, err)
	defer c.Close()

	assert.Error(t, c.SignIn(ctx, model.LoginRequest{Username: "doctor", Password: "wrong"}))
	require.NoError(t, c.SignIn(ctx, model.LoginRequest{Username: "doctor", Password: "doc123"}))
	assert.Equal(t, model.RoleDoctor, c.Session.Role())
	assert.Nil(t, c.Registrar)

	env := c.Appointments.ListDepartments(ctx, model.Pagination{})
	require.True(t, env.OK(), env.Message)
	assert.NotEmpty(t, env.Data)

	daily := c.Reports.DailyVisits(ctx, "2025-01-01")
	require.True(t, daily.OK(), daily.Message)
	assert.Len(t, daily.Data, 1)
}

func TestConsoleRemoteAPILogin(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	srv := startEmulator(t, cfg, newTestStore())

	cfg.Provider = config.ProviderRemote
	cfg.Remote.BaseURL = srv.URL
	cfg.Auth.Mode = config.AuthAPI

	c, err := New(ctx, cfg, WithLogOutput(io.Discard), WithClock(clock))
	require.NoError(t, err)
	defer c.Close()
	require.NotNil(t, c.Registrar)

	require.NoError(t, c.SignIn(ctx, model.LoginRequest{Username: "nurse", Password: "nurse123"}))
	assert.Equal(t, model.RoleNurse, c.Session.Role())

	env := c.Pharmacy.ListMedicines(ctx)
	require.True(t, env.OK(), env.Message)
	assert.NotEmpty(t, env.Data)

	u, err := c.Registrar.Register(ctx, model.RegisterRequest{Username: "newpatient", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "newpatient", u.Username)

	_, err = c.Registrar.Register(ctx, model.RegisterRequest{Username: "newpatient", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, "registration failed: username already exists", err.Error())
}

func TestConsoleSessionSurvivesRestartOnRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Session.Storage = config.StorageRedis
	cfg.Session.RedisURL = "redis://" + mr.Addr()

	opts := []Option{WithHasher(testHasher()), WithLogOutput(io.Discard), WithStoreOptions(memory.WithLatency(memory.Latency{}))}
	first, err := New(ctx, cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, first.SignIn(ctx, model.LoginRequest{Username: "admin", Password: "admin123"}))
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg, opts...)
	require.NoError(t, err)
	defer second.Close()
	assert.True(t, second.Session.IsAuthenticated())
	assert.Equal(t, model.RoleAdmin, second.Session.Role())
	assert.Equal(t, "dev-admin-token", second.Session.Token())
}

func TestConsolePublishesStatusChangesToRedis(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Events.Broker = config.BrokerRedis
	cfg.Events.RedisURL = "redis://" + mr.Addr()

	c, err := New(ctx, cfg, WithHasher(testHasher()), WithLogOutput(io.Discard), WithStoreOptions(memory.WithLatency(memory.Latency{})))
	require.NoError(t, err)
	defer c.Close()
	require.NotNil(t, c.Events)

	events, err := c.Events.Subscribe(ctx, cfg.Events.Channel)
	require.NoError(t, err)

	env := c.Appointments.UpdateAppointmentStatus(ctx, 2, model.UpdateAppointmentStatusRequest{Status: model.AppointmentStatusCompleted})
	require.True(t, env.OK(), env.Message)

	select {
	case raw := <-events:
		msg, err := messaging.Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, service.EventStatusChanged, msg.Type)
		var change service.StatusChange
		require.NoError(t, json.Unmarshal(msg.Payload, &change))
		assert.Equal(t, lifecycle.Appointment, change.Entity)
		assert.Equal(t, "R-20250102-0002", change.ID)
		assert.Equal(t, "completed", change.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("status event not received")
	}
}

func TestConsoleEventsDisabledByDefault(t *testing.T) {
	c, err := New(context.Background(), testConfig(t), WithHasher(testHasher()), WithLogOutput(io.Discard))
	require.NoError(t, err)
	defer c.Close()
	assert.Nil(t, c.Events)
}
