package remote

import (
	"context"
	"net/http"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/normalize"
	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/pkg/errors"
)

// The backend enforces prescription and order transitions itself, so
// status updates here only refuse undeclared target states.
type pharmacyRepository struct {
	c *Client
}

func NewPharmacyRepository(c *Client) repository.PharmacyRepository {
	return &pharmacyRepository{c: c}
}

func (r *pharmacyRepository) ListMedicines(ctx context.Context) ([]model.Medicine, error) {
	var out normalize.List[model.Medicine]
	q := newParams().page(1, model.DefaultPageSize, model.DefaultPageSize)
	if err := r.c.do(ctx, http.MethodGet, "/pharmacy/medicines", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out.List, func(m model.Medicine) model.Medicine { return m }), nil
}

func (r *pharmacyRepository) ListBatches(ctx context.Context) ([]model.InventoryBatch, error) {
	var out []model.InventoryBatch
	if err := r.c.do(ctx, http.MethodGet, "/pharmacy/inventory/batches", nil, nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out, func(b model.InventoryBatch) model.InventoryBatch {
		if b.Medicine == "" {
			b.Medicine = model.UnknownMedicine
		}
		return b
	}), nil
}

func (r *pharmacyRepository) ListInventoryLogs(ctx context.Context) ([]model.InventoryLog, error) {
	var out []model.InventoryLog
	if err := r.c.do(ctx, http.MethodGet, "/pharmacy/inventory/logs", nil, nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out, func(l model.InventoryLog) model.InventoryLog {
		l = normalize.InventoryLog(l)
		if l.Medicine == "" {
			l.Medicine = model.UnknownMedicine
		}
		return l
	}), nil
}

func (r *pharmacyRepository) StockIn(ctx context.Context, req model.StockInRequest) (model.StockMovement, error) {
	var out model.StockMovement
	if err := r.c.do(ctx, http.MethodPost, "/pharmacy/inventory/in", nil, normalize.StockInPayload(req), &out); err != nil {
		return model.StockMovement{}, err
	}
	return out, nil
}

func (r *pharmacyRepository) StockOut(ctx context.Context, req model.StockOutRequest) (model.StockMovement, error) {
	var out model.StockMovement
	if err := r.c.do(ctx, http.MethodPost, "/pharmacy/inventory/out", nil, normalize.StockOutPayload(req), &out); err != nil {
		return model.StockMovement{}, err
	}
	return out, nil
}

// Prescriptions

func (r *pharmacyRepository) ListPrescriptions(ctx context.Context, status model.PrescriptionStatus) ([]model.Prescription, error) {
	var out []model.Prescription
	q := newParams().setStr("status", string(status))
	if err := r.c.do(ctx, http.MethodGet, "/pharmacy/prescriptions", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out, normalize.Prescription), nil
}

func (r *pharmacyRepository) CreatePrescription(ctx context.Context, req model.CreatePrescriptionRequest) (model.Prescription, error) {
	var out model.Prescription
	if err := r.c.do(ctx, http.MethodPost, "/pharmacy/prescriptions", nil, normalize.CreatePrescriptionPayload(req), &out); err != nil {
		return model.Prescription{}, err
	}
	return normalize.Prescription(out), nil
}

func (r *pharmacyRepository) UpdatePrescriptionStatus(ctx context.Context, id string, status model.PrescriptionStatus) (model.Prescription, error) {
	if !lifecycle.Declared(lifecycle.Prescription, status) {
		return model.Prescription{}, errors.BadRequest("unknown prescription status "+string(status), nil)
	}
	out := model.Prescription{ID: id}
	path := idPath("/pharmacy/prescriptions/%s", id) + "/status"
	if err := r.c.do(ctx, http.MethodPatch, path, nil, normalize.StatusPayload{Status: string(status)}, &out); err != nil {
		return model.Prescription{}, err
	}
	return normalize.Prescription(out), nil
}

// Suppliers

func (r *pharmacyRepository) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	var out []model.Supplier
	if err := r.c.do(ctx, http.MethodGet, "/pharmacy/suppliers", nil, nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out, func(s model.Supplier) model.Supplier { return s }), nil
}

func (r *pharmacyRepository) CreateSupplier(ctx context.Context, req model.CreateSupplierRequest) (model.Supplier, error) {
	var out model.Supplier
	if err := r.c.do(ctx, http.MethodPost, "/pharmacy/suppliers", nil, normalize.CreateSupplierPayload(req), &out); err != nil {
		return model.Supplier{}, err
	}
	return out, nil
}

func (r *pharmacyRepository) DeleteSupplier(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodDelete, idPath("/pharmacy/suppliers/%s", id), nil, nil, nil)
}

// Supplier orders

func (r *pharmacyRepository) ListOrders(ctx context.Context, status model.OrderStatus) ([]model.SupplierOrder, error) {
	var out []model.SupplierOrder
	q := newParams().setStr("status", string(status))
	if err := r.c.do(ctx, http.MethodGet, "/pharmacy/orders", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out, normalize.SupplierOrder), nil
}

func (r *pharmacyRepository) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.SupplierOrder, error) {
	var out model.SupplierOrder
	if err := r.c.do(ctx, http.MethodPost, "/pharmacy/orders", nil, normalize.CreateOrderPayload(req), &out); err != nil {
		return model.SupplierOrder{}, err
	}
	return normalize.SupplierOrder(out), nil
}

func (r *pharmacyRepository) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.SupplierOrder, error) {
	if !lifecycle.Declared(lifecycle.SupplierOrder, status) {
		return model.SupplierOrder{}, errors.BadRequest("unknown order status "+string(status), nil)
	}
	out := model.SupplierOrder{ID: id}
	path := idPath("/pharmacy/orders/%s", id) + "/status"
	if err := r.c.do(ctx, http.MethodPatch, path, nil, normalize.StatusPayload{Status: string(status)}, &out); err != nil {
		return model.SupplierOrder{}, err
	}
	return normalize.SupplierOrder(out), nil
}
