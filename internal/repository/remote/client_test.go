package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/metrics"
)

type staticCreds struct {
	token  string
	userID int64
}

func (c staticCreds) Token() string { return c.token }
func (c staticCreds) UserID() int64 { return c.userID }

func writeEnvelope(w http.ResponseWriter, code int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": code, "data": data, "message": message})
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/"}, staticCreds{token: "tok", userID: 4}, opts...)
}

func TestClientSendsAuthAndRequestID(t *testing.T) {
	var gotAuth, gotID, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get(HeaderXRequestID)
		gotQuery = r.URL.RawQuery
		writeEnvelope(w, 200, map[string]interface{}{"list": []interface{}{}, "total": 0}, "success")
	})

	_, err := NewAppointmentRepository(c).ListDoctors(context.Background(), model.DoctorFilters{DeptID: 2})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.NotEmpty(t, gotID)
	assert.Equal(t, "deptId=2&page=1&pageSize=100", gotQuery)
}

func TestClientEnvelopeFailureKeepsCodeAndMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 404, nil, "appointment not found")
	})

	_, err := NewAppointmentRepository(c).GetAppointment(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.CodeOf(err))
	assert.Equal(t, "appointment not found", apperrors.MessageOf(err))
}

func TestClientDecodesValidationDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["query","date"],"msg":"field required"}]}`))
	})

	_, err := NewReportRepository(c).DailyVisits(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.CodeOf(err))
	assert.Equal(t, "field required", apperrors.MessageOf(err))
}

func TestClientNonEnvelopeBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("nope"))
	})

	_, err := NewPharmacyRepository(c).ListSuppliers(context.Background())
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.CodeOf(err))
	assert.Equal(t, "internal server error", apperrors.MessageOf(err))
}

func TestClientNullDataWithoutCodeIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":null}`))
	})

	_, err := NewPharmacyRepository(c).ListSuppliers(context.Background())
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.CodeOf(err))
}

func TestClientBreakerOpensOnUnavailableBackend(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := metrics.NewMetrics(prometheus.NewRegistry(), "omms", "test")
	c := NewClient(Config{
		BaseURL: srv.URL,
		Breaker: circuitbreaker.Settings{Name: "backend", MaxFailures: 2, Timeout: time.Minute},
	}, nil, WithMetrics(m))
	repo := NewPharmacyRepository(c)

	for i := 0; i < 3; i++ {
		_, err := repo.ListMedicines(context.Background())
		require.Error(t, err)
		assert.Equal(t, 500, apperrors.CodeOf(err))
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "open", c.breaker.State())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BreakerState.WithLabelValues("backend")))
}

func TestClientCancelledRequestDoesNotTripBreaker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	c.breaker = circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{Name: "backend", MaxFailures: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewPharmacyRepository(c).ListSuppliers(ctx)
	require.Error(t, err)
	assert.Equal(t, "closed", c.breaker.State())
}

func TestCreateAppointmentDefaultsPatientToSignedInUser(t *testing.T) {
	var body map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeEnvelope(w, 200, map[string]interface{}{
			"apptId": 7, "patientId": 1, "doctorId": 1, "scheduleId": 1,
			"apptTime": "2025-01-05 09:00:00", "status": 0,
		}, "success")
	})

	appt, err := NewAppointmentRepository(c).CreateAppointment(context.Background(), model.CreateAppointmentRequest{
		DoctorID: 1, ScheduleID: 1, Date: "2025-01-05", StartTime: "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(4), body["patientId"])
	assert.Equal(t, "2025-01-05 09:00:00", body["apptTime"])
	assert.Equal(t, "R-20250105-0007", appt.ID)
	assert.Equal(t, model.AppointmentStatusPending, appt.Status)
}

func TestUpdateAppointmentStatusRefusesIllegalMoveLocally(t *testing.T) {
	var patched bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			patched = true
		}
		writeEnvelope(w, 200, map[string]interface{}{"apptId": 3, "apptTime": "2025-01-03 08:30:00", "status": 2}, "success")
	})

	_, err := NewAppointmentRepository(c).UpdateAppointmentStatus(context.Background(), 3, model.AppointmentStatusCompleted)
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrIllegalTransition)
	assert.False(t, patched)
}

func TestUpdateAppointmentStatusMinimalResponseKeepsPreRead(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			writeEnvelope(w, 200, map[string]interface{}{"apptId": 2, "status": 2}, "success")
			return
		}
		writeEnvelope(w, 200, map[string]interface{}{"apptId": 2, "apptTime": "2025-01-02 14:00:00", "symptomDesc": "Knee pain", "status": 0}, "success")
	})

	appt, err := NewAppointmentRepository(c).UpdateAppointmentStatus(context.Background(), 2, model.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, "R-20250102-0002", appt.ID)
	assert.Equal(t, "Knee pain", appt.Symptom)
	assert.Equal(t, model.AppointmentStatusCancelled, appt.Status)
}

func TestUpdateRecordStatusKeepsPreReadFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeEnvelope(w, 200, map[string]interface{}{
				"id": "MR-20250102-0002", "patientName": "Liu Yang", "status": "draft",
				"chiefComplaint": "cough", "labs": []string{"CBC"},
			}, "success")
		case http.MethodPatch:
			writeEnvelope(w, 200, map[string]interface{}{"id": "MR-20250102-0002", "status": "finalized"}, "success")
		}
	})

	rec, err := NewRecordRepository(c, 0).UpdateRecordStatus(context.Background(), "MR-20250102-0002", model.RecordStatusFinalized)
	require.NoError(t, err)
	assert.Equal(t, model.RecordStatusFinalized, rec.Status)
	assert.Equal(t, "Liu Yang", rec.PatientName)
	assert.Equal(t, []string{"CBC"}, rec.Labs)
	assert.Equal(t, []string{}, rec.Imaging)
}

func TestDictionariesAreCached(t *testing.T) {
	var calls int32
	m := metrics.NewMetrics(prometheus.NewRegistry(), "omms", "test")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, 200, map[string]interface{}{"imaging": []string{"X-ray"}, "labs": []string{"CBC"}}, "success")
	}, WithMetrics(m))
	repo := NewRecordRepository(c, time.Minute)
	ctx := context.Background()

	d, err := repo.Dictionaries(ctx)
	require.NoError(t, err)
	d.Labs[0] = "mutated"

	labs, err := repo.LabDictionary(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CBC"}, labs)

	_, err = repo.Dictionaries(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheHits.WithLabelValues(dictionaryCacheKey)))
}

func TestPrescriptionStatusAcceptsMinimalResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, map[string]interface{}{"id": "RX-20250102-0002", "status": "approved"}, "success")
	})
	repo := NewPharmacyRepository(c)

	rx, err := repo.UpdatePrescriptionStatus(context.Background(), "RX-20250102-0002", model.PrescriptionStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.PrescriptionStatusApproved, rx.Status)
	assert.Equal(t, []model.PrescriptionItem{}, rx.Items)

	_, err = repo.UpdatePrescriptionStatus(context.Background(), "RX-20250102-0002", "shipped")
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.CodeOf(err))
}

func TestReportStatusNormalized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dateEnd=2025-01-31&deptName=Surgery", r.URL.RawQuery)
		writeEnvelope(w, 200, map[string]interface{}{
			"list":  []map[string]interface{}{{"id": "R-20250103-0003", "status": "CANCELLED", "drugItems": 2}, {"id": "R-20250104-0004", "status": "weird"}},
			"total": 2,
		}, "success")
	})

	rows, err := NewReportRepository(c).Custom(context.Background(), model.CustomReportFilters{DeptName: "Surgery", DateEnd: "2025-01-31"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "cancelled", rows[0].Status)
	assert.Equal(t, 2, rows[0].DrugItems)
	assert.Equal(t, "pending", rows[1].Status)
}

func TestAuthLoginAndRegister(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			writeEnvelope(w, 200, map[string]interface{}{
				"accessToken": "jwt", "tokenType": "bearer", "expiresIn": 3600,
				"user": map[string]interface{}{"userId": 4, "username": "wang", "realName": "Wang Fang", "roleId": 3},
			}, "success")
		case "/auth/register":
			writeEnvelope(w, 200, map[string]interface{}{"userId": 9, "username": "new", "roleId": 3}, "success")
		}
	})
	svc := NewAuthService(c)

	login, err := svc.Login(context.Background(), model.LoginRequest{Username: " wang ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", login.AccessToken)
	assert.Equal(t, int64(4), login.User.UserID)

	reg, err := svc.Register(context.Background(), model.RegisterRequest{Username: "new", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, model.RegisteredUser{UserID: 9, Username: "new", RoleID: 3}, reg)
}
