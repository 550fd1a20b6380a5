package pharmacy

import (
	"context"
	"time"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/internal/service"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
	"github.com/jwalitptl/clinic-console/pkg/validator"
)

const dateLayout = "2006-01-02"

type Service struct {
	repo  repository.PharmacyRepository
	valid validator.Validator
	obs   *service.Observer
	now   func() time.Time
}

type Option func(*Service)

// WithClock sets the clock used to decide which batches are expiring.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo repository.PharmacyRepository, v validator.Validator, obs *service.Observer, opts ...Option) *Service {
	s := &Service{repo: repo, valid: v, obs: obs, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Inventory

func (s *Service) ListMedicines(ctx context.Context) httputil.Envelope[[]model.Medicine] {
	start := time.Now()
	data, err := s.repo.ListMedicines(ctx)
	return service.Finish(s.obs, "pharmacy.list_medicines", start, data, err)
}

// LowStockMedicines lists medicines whose stock is at or below the warning
// level.
func (s *Service) LowStockMedicines(ctx context.Context) httputil.Envelope[[]model.Medicine] {
	start := time.Now()
	all, err := s.repo.ListMedicines(ctx)
	if err != nil {
		return service.Reject[[]model.Medicine](s.obs, "pharmacy.low_stock", start, err)
	}
	out := make([]model.Medicine, 0, len(all))
	for _, m := range all {
		if m.LowStock() {
			out = append(out, m)
		}
	}
	return service.Finish(s.obs, "pharmacy.low_stock", start, out, nil)
}

func (s *Service) ListBatches(ctx context.Context) httputil.Envelope[[]model.InventoryBatch] {
	start := time.Now()
	data, err := s.repo.ListBatches(ctx)
	return service.Finish(s.obs, "pharmacy.list_batches", start, data, err)
}

// ExpiringBatches lists batches expiring between today and today+days,
// both inclusive. days <= 0 uses model.DefaultExpiryWindowDays. Batches
// without an expiry date never match.
func (s *Service) ExpiringBatches(ctx context.Context, days int) httputil.Envelope[[]model.InventoryBatch] {
	start := time.Now()
	if days <= 0 {
		days = model.DefaultExpiryWindowDays
	}
	all, err := s.repo.ListBatches(ctx)
	if err != nil {
		return service.Reject[[]model.InventoryBatch](s.obs, "pharmacy.expiring_batches", start, err)
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	limit := today.AddDate(0, 0, days)

	out := make([]model.InventoryBatch, 0, len(all))
	for _, b := range all {
		exp, err := time.Parse(dateLayout, b.ExpiryDate)
		if err != nil {
			continue
		}
		if !exp.Before(today) && !exp.After(limit) {
			out = append(out, b)
		}
	}
	return service.Finish(s.obs, "pharmacy.expiring_batches", start, out, nil)
}

func (s *Service) ListInventoryLogs(ctx context.Context) httputil.Envelope[[]model.InventoryLog] {
	start := time.Now()
	data, err := s.repo.ListInventoryLogs(ctx)
	return service.Finish(s.obs, "pharmacy.list_logs", start, data, err)
}

func (s *Service) StockIn(ctx context.Context, req model.StockInRequest) httputil.Envelope[model.StockMovement] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.StockMovement](s.obs, "pharmacy.stock_in", start, err)
	}
	data, err := s.repo.StockIn(ctx, req)
	return service.Finish(s.obs, "pharmacy.stock_in", start, data, err)
}

func (s *Service) StockOut(ctx context.Context, req model.StockOutRequest) httputil.Envelope[model.StockMovement] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.StockMovement](s.obs, "pharmacy.stock_out", start, err)
	}
	data, err := s.repo.StockOut(ctx, req)
	return service.Finish(s.obs, "pharmacy.stock_out", start, data, err)
}

// Prescriptions

func (s *Service) ListPrescriptions(ctx context.Context, status model.PrescriptionStatus) httputil.Envelope[[]model.Prescription] {
	start := time.Now()
	data, err := s.repo.ListPrescriptions(ctx, status)
	return service.Finish(s.obs, "pharmacy.list_prescriptions", start, data, err)
}

func (s *Service) CreatePrescription(ctx context.Context, req model.CreatePrescriptionRequest) httputil.Envelope[model.Prescription] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.Prescription](s.obs, "pharmacy.create_prescription", start, err)
	}
	data, err := s.repo.CreatePrescription(ctx, req)
	return service.Finish(s.obs, "pharmacy.create_prescription", start, data, err)
}

// UpdatePrescriptionStatus moves a prescription along its lifecycle.
// Dispensing deducts stock and logs an outbound movement per item.
func (s *Service) UpdatePrescriptionStatus(ctx context.Context, id string, req model.UpdatePrescriptionStatusRequest) httputil.Envelope[model.Prescription] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.Prescription](s.obs, "pharmacy.update_prescription_status", start, err)
	}
	data, err := s.repo.UpdatePrescriptionStatus(ctx, id, req.Status)
	env := service.Finish(s.obs, "pharmacy.update_prescription_status", start, data, err)
	if env.OK() {
		s.obs.StatusChanged(ctx, lifecycle.Prescription, id, string(req.Status))
	}
	return env
}

// Suppliers

func (s *Service) ListSuppliers(ctx context.Context) httputil.Envelope[[]model.Supplier] {
	start := time.Now()
	data, err := s.repo.ListSuppliers(ctx)
	return service.Finish(s.obs, "pharmacy.list_suppliers", start, data, err)
}

func (s *Service) CreateSupplier(ctx context.Context, req model.CreateSupplierRequest) httputil.Envelope[model.Supplier] {
	start := time.Now()
	data, err := s.repo.CreateSupplier(ctx, req)
	return service.Finish(s.obs, "pharmacy.create_supplier", start, data, err)
}

func (s *Service) DeleteSupplier(ctx context.Context, id int64) httputil.Envelope[service.Done] {
	start := time.Now()
	err := s.repo.DeleteSupplier(ctx, id)
	return service.Finish(s.obs, "pharmacy.delete_supplier", start, service.Done{}, err)
}

// Supplier orders

func (s *Service) ListOrders(ctx context.Context, status model.OrderStatus) httputil.Envelope[[]model.SupplierOrder] {
	start := time.Now()
	data, err := s.repo.ListOrders(ctx, status)
	return service.Finish(s.obs, "pharmacy.list_orders", start, data, err)
}

func (s *Service) CreateOrder(ctx context.Context, req model.CreateOrderRequest) httputil.Envelope[model.SupplierOrder] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.SupplierOrder](s.obs, "pharmacy.create_order", start, err)
	}
	data, err := s.repo.CreateOrder(ctx, req)
	return service.Finish(s.obs, "pharmacy.create_order", start, data, err)
}

// UpdateOrderStatus completes or cancels a pending order. Completion stocks
// every item in as a new batch.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, req model.UpdateOrderStatusRequest) httputil.Envelope[model.SupplierOrder] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.SupplierOrder](s.obs, "pharmacy.update_order_status", start, err)
	}
	data, err := s.repo.UpdateOrderStatus(ctx, id, req.Status)
	env := service.Finish(s.obs, "pharmacy.update_order_status", start, data, err)
	if env.OK() {
		s.obs.StatusChanged(ctx, lifecycle.SupplierOrder, id, string(req.Status))
	}
	return env
}
