// Package memory is the simulated backend: an explicit, constructible store
// of owned collections plus repository adapters that add artificial latency.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/identifier"
)

const (
	dateLayout     = "2006-01-02"
	monthLayout    = "2006-01"
	dateTimeLayout = "2006-01-02 15:04:05"
	minuteLayout   = "2006-01-02 15:04"
	clockLayout    = "15:04"
)

// Seed is the initial content of a Store.
type Seed struct {
	Departments   []model.Department
	Doctors       []model.Doctor
	Schedules     []model.Schedule
	Patients      []model.Patient
	Appointments  []model.Appointment
	Records       []model.MedicalRecord
	Templates     []model.RecordTemplate
	Dictionaries  model.Dictionaries
	Medicines     []model.Medicine
	Batches       []model.InventoryBatch
	Logs          []model.InventoryLog
	Prescriptions []model.Prescription
	Suppliers     []model.Supplier
	Orders        []model.SupplierOrder
}

// Latency is the artificial delay applied before each simulated call.
type Latency struct {
	Default  time.Duration
	Pharmacy time.Duration
	Reports  time.Duration
}

// DefaultLatency mirrors how slow the demo backend felt.
var DefaultLatency = Latency{
	Default:  500 * time.Millisecond,
	Pharmacy: 500 * time.Millisecond,
	Reports:  300 * time.Millisecond,
}

// Store owns every simulated collection and implements the four repository
// interfaces over them. All access goes through its methods, which
// serialize on one mutex and hand out copies.
type Store struct {
	mu      sync.Mutex
	now     func() time.Time
	latency Latency

	departments   []model.Department
	doctors       []model.Doctor
	schedules     []model.Schedule
	patients      []model.Patient
	appointments  []model.Appointment
	records       []model.MedicalRecord
	templates     []model.RecordTemplate
	dictionaries  model.Dictionaries
	medicines     []model.Medicine
	batches       []model.InventoryBatch
	logs          []model.InventoryLog
	prescriptions []model.Prescription
	suppliers     []model.Supplier
	orders        []model.SupplierOrder

	sequences map[identifier.Kind]identifier.Sequencer
}

var (
	_ repository.AppointmentRepository = (*Store)(nil)
	_ repository.RecordRepository      = (*Store)(nil)
	_ repository.PharmacyRepository    = (*Store)(nil)
	_ repository.ReportRepository      = (*Store)(nil)
)

type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLatency sets the per-call delay. A zero Latency disables it.
func WithLatency(l Latency) Option {
	return func(s *Store) { s.latency = l }
}

// WithSequencer overrides the sequence source used when minting ids of kind.
func WithSequencer(kind identifier.Kind, seq identifier.Sequencer) Option {
	return func(s *Store) { s.sequences[kind] = seq }
}

// NewStore copies seed into a fresh store. Record, prescription and order
// ids are minted from running counters that start after the seeded rows.
func NewStore(seed Seed, opts ...Option) *Store {
	s := &Store{
		now:           time.Now,
		latency:       DefaultLatency,
		departments:   append([]model.Department(nil), seed.Departments...),
		doctors:       append([]model.Doctor(nil), seed.Doctors...),
		schedules:     append([]model.Schedule(nil), seed.Schedules...),
		patients:      append([]model.Patient(nil), seed.Patients...),
		appointments:  append([]model.Appointment(nil), seed.Appointments...),
		dictionaries:  seed.Dictionaries.Clone(),
		medicines:     append([]model.Medicine(nil), seed.Medicines...),
		batches:       append([]model.InventoryBatch(nil), seed.Batches...),
		logs:          append([]model.InventoryLog(nil), seed.Logs...),
		suppliers:     append([]model.Supplier(nil), seed.Suppliers...),
		sequences:     make(map[identifier.Kind]identifier.Sequencer),
		records:       make([]model.MedicalRecord, 0, len(seed.Records)),
		templates:     make([]model.RecordTemplate, 0, len(seed.Templates)),
		prescriptions: make([]model.Prescription, 0, len(seed.Prescriptions)),
		orders:        make([]model.SupplierOrder, 0, len(seed.Orders)),
	}
	for _, r := range seed.Records {
		s.records = append(s.records, r.Clone())
	}
	for _, t := range seed.Templates {
		s.templates = append(s.templates, t.Clone())
	}
	for _, p := range seed.Prescriptions {
		s.prescriptions = append(s.prescriptions, p.Clone())
	}
	for _, o := range seed.Orders {
		s.orders = append(s.orders, o.Clone())
	}

	s.sequences[identifier.KindRecord] = identifier.NewCounter(len(s.records))
	s.sequences[identifier.KindPrescription] = identifier.NewCounter(len(s.prescriptions))
	s.sequences[identifier.KindSupplierOrder] = identifier.NewCounter(len(s.orders))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wait sleeps for d unless ctx ends first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// begin applies the default latency and takes the lock. Callers must
// defer s.mu.Unlock() when err is nil.
func (s *Store) begin(ctx context.Context) error {
	return s.enter(ctx, s.latency.Default)
}

func (s *Store) enter(ctx context.Context, d time.Duration) error {
	if err := wait(ctx, d); err != nil {
		return err
	}
	s.mu.Lock()
	return nil
}

// mint draws sequence numbers until the id is unused for that date.
func (s *Store) mint(kind identifier.Kind, date time.Time, taken func(string) bool) (string, error) {
	seq, ok := s.sequences[kind]
	if !ok {
		return "", errors.Internal(fmt.Errorf("no sequence source for %s", kind))
	}
	for attempt := 0; attempt < 10000; attempt++ {
		id, err := identifier.Mint(kind, date, seq.Next())
		if err != nil {
			return "", errors.Internal(err)
		}
		if !taken(id) {
			return id, nil
		}
	}
	return "", errors.Internal(fmt.Errorf("sequence space for %s on %s exhausted", kind, date.Format(dateLayout)))
}

func paginate[T any](items []T, p model.Pagination, pageSize int) []T {
	start, end := p.WithDefaults(pageSize).Window(len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

func sortByID[T any](items []T, id func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

func nextID[T any](items []T, id func(T) int64) int64 {
	var max int64
	for _, it := range items {
		if v := id(it); v > max {
			max = v
		}
	}
	return max + 1
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}

func datePart(s string) string {
	if len(s) >= len(dateLayout) {
		return s[:len(dateLayout)]
	}
	return s
}
