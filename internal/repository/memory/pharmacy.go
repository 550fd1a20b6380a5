package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/normalize"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/identifier"
)

func (s *Store) medicineIndex(id int64) int {
	return indexOf(s.medicines, func(m model.Medicine) bool { return m.ID == id })
}

func (s *Store) joinBatch(b model.InventoryBatch) model.InventoryBatch {
	b.Medicine, b.Specification = model.UnknownMedicine, ""
	if i := s.medicineIndex(b.MedicineID); i >= 0 {
		b.Medicine, b.Specification = s.medicines[i].Name, s.medicines[i].Specification
	}
	return b
}

func (s *Store) joinLog(l model.InventoryLog) model.InventoryLog {
	l.Medicine, l.Specification = model.UnknownMedicine, ""
	if i := s.medicineIndex(l.MedicineID); i >= 0 {
		l.Medicine, l.Specification = s.medicines[i].Name, s.medicines[i].Specification
	}
	return l
}

// appendLog records a movement and returns its id. Callers hold s.mu.
func (s *Store) appendLog(kind model.MovementType, medicineID int64, qty int, at, note string) int64 {
	l := model.InventoryLog{
		ID:         nextID(s.logs, func(l model.InventoryLog) int64 { return l.ID }),
		Type:       kind,
		MedicineID: medicineID,
		Quantity:   qty,
		Time:       at,
		Note:       note,
	}
	s.logs = append(s.logs, l)
	return l.ID
}

// receive adds a batch and an "in" log. Callers hold s.mu and have checked
// that the medicine exists.
func (s *Store) receive(medicineID int64, batchNo string, qty int, receivedAt, expiry, at, note string) model.StockMovement {
	b := model.InventoryBatch{
		ID:         nextID(s.batches, func(b model.InventoryBatch) int64 { return b.ID }),
		MedicineID: medicineID,
		BatchNo:    batchNo,
		Quantity:   qty,
		ReceivedAt: receivedAt,
		ExpiryDate: expiry,
	}
	s.batches = append(s.batches, b)
	s.medicines[s.medicineIndex(medicineID)].CurrentStock += qty
	logID := s.appendLog(model.MovementIn, medicineID, qty, at, note)
	return model.StockMovement{BatchID: b.ID, LogID: logID, MedicineID: medicineID}
}

// Inventory

func (s *Store) ListMedicines(ctx context.Context) ([]model.Medicine, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := append([]model.Medicine{}, s.medicines...)
	sortByID(out, func(m model.Medicine) int64 { return m.ID })
	return paginate(out, model.Pagination{}, model.DefaultPageSize), nil
}

func (s *Store) ListBatches(ctx context.Context) ([]model.InventoryBatch, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.InventoryBatch, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, s.joinBatch(b))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) ListInventoryLogs(ctx context.Context) ([]model.InventoryLog, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.InventoryLog, 0, len(s.logs))
	for _, l := range s.logs {
		out = append(out, s.joinLog(l))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) StockIn(ctx context.Context, req model.StockInRequest) (model.StockMovement, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return model.StockMovement{}, err
	}
	defer s.mu.Unlock()

	req = normalize.StockInPayload(req)
	if s.medicineIndex(req.MedicineID) < 0 {
		return model.StockMovement{}, errors.NotFound("medicine", nil)
	}
	if req.Quantity <= 0 {
		return model.StockMovement{}, errors.BadRequest("quantity must be positive", nil)
	}
	if req.BatchNo == "" {
		return model.StockMovement{}, errors.BadRequest("batch number is required", nil)
	}
	if _, err := time.Parse(dateLayout, req.ReceivedAt); err != nil {
		return model.StockMovement{}, errors.BadRequest("invalid received date", err)
	}
	if req.ExpiryDate != "" {
		if _, err := time.Parse(dateLayout, req.ExpiryDate); err != nil {
			return model.StockMovement{}, errors.BadRequest("invalid expiry date", err)
		}
	}
	note := req.Note
	if note == "" {
		note = "Batch " + req.BatchNo
	}
	return s.receive(req.MedicineID, req.BatchNo, req.Quantity, req.ReceivedAt, req.ExpiryDate, s.now().Format(dateTimeLayout), note), nil
}

func (s *Store) StockOut(ctx context.Context, req model.StockOutRequest) (model.StockMovement, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return model.StockMovement{}, err
	}
	defer s.mu.Unlock()

	req = normalize.StockOutPayload(req)
	i := s.medicineIndex(req.MedicineID)
	if i < 0 {
		return model.StockMovement{}, errors.NotFound("medicine", nil)
	}
	if req.Quantity <= 0 {
		return model.StockMovement{}, errors.BadRequest("quantity must be positive", nil)
	}
	if s.medicines[i].CurrentStock < req.Quantity {
		return model.StockMovement{}, errors.BadRequest("insufficient stock", nil)
	}
	at := req.Time
	if at == "" {
		at = s.now().Format(dateTimeLayout)
	} else if _, err := time.Parse(dateTimeLayout, at); err != nil {
		return model.StockMovement{}, errors.BadRequest("invalid time", err)
	}
	s.medicines[i].CurrentStock -= req.Quantity
	logID := s.appendLog(model.MovementOut, req.MedicineID, req.Quantity, at, req.Note)
	return model.StockMovement{LogID: logID, MedicineID: req.MedicineID}, nil
}

// Prescriptions

func (s *Store) prescriptionIndex(id string) int {
	return indexOf(s.prescriptions, func(p model.Prescription) bool { return p.ID == id })
}

func (s *Store) ListPrescriptions(ctx context.Context, status model.PrescriptionStatus) ([]model.Prescription, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.Prescription, 0, len(s.prescriptions))
	for _, p := range s.prescriptions {
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// lineItem prices an item from the medicine catalog. Callers hold s.mu.
func (s *Store) lineItem(it model.LineItemRequest) (model.PrescriptionItem, error) {
	i := s.medicineIndex(it.MedicineID)
	if i < 0 {
		return model.PrescriptionItem{}, errors.NotFound("medicine", nil)
	}
	if it.Qty <= 0 {
		return model.PrescriptionItem{}, errors.BadRequest("quantity must be positive", nil)
	}
	m := s.medicines[i]
	item := model.PrescriptionItem{MedicineID: m.ID, Name: m.Name, Qty: it.Qty, Unit: strings.TrimSpace(it.Unit), Price: m.Price}
	if item.Unit == "" {
		item.Unit = m.Unit
	}
	if it.Price != nil {
		item.Price = *it.Price
	}
	return item, nil
}

func (s *Store) CreatePrescription(ctx context.Context, req model.CreatePrescriptionRequest) (model.Prescription, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return model.Prescription{}, err
	}
	defer s.mu.Unlock()

	p := normalize.CreatePrescriptionPayload(req)
	if p.Patient == "" {
		return model.Prescription{}, errors.BadRequest("patient is required", nil)
	}
	if len(req.Items) == 0 {
		return model.Prescription{}, errors.BadRequest("at least one item is required", nil)
	}
	items := make([]model.PrescriptionItem, 0, len(req.Items))
	for _, it := range req.Items {
		item, err := s.lineItem(it)
		if err != nil {
			return model.Prescription{}, err
		}
		items = append(items, item)
	}
	now := s.now()
	id, err := s.mint(identifier.KindPrescription, now, func(id string) bool { return s.prescriptionIndex(id) >= 0 })
	if err != nil {
		return model.Prescription{}, err
	}
	rx := model.Prescription{
		ID:         id,
		Patient:    p.Patient,
		Department: p.Department,
		Doctor:     p.Doctor,
		CreatedAt:  now.Format(dateTimeLayout),
		Status:     model.PrescriptionStatusPending,
		Items:      items,
	}
	s.prescriptions = append(s.prescriptions, rx.Clone())
	return rx, nil
}

// UpdatePrescriptionStatus advances pending, approved, dispensed. Dispensing
// deducts every item from stock or nothing at all.
func (s *Store) UpdatePrescriptionStatus(ctx context.Context, id string, status model.PrescriptionStatus) (model.Prescription, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return model.Prescription{}, err
	}
	defer s.mu.Unlock()

	i := s.prescriptionIndex(id)
	if i < 0 {
		return model.Prescription{}, errors.NotFound("prescription", nil)
	}
	rx := s.prescriptions[i]
	if err := lifecycle.Apply(lifecycle.Prescription, rx.Status, status); err != nil {
		return model.Prescription{}, err
	}
	if status == model.PrescriptionStatusDispensed {
		need := make(map[int64]int)
		for _, it := range rx.Items {
			need[it.MedicineID] += it.Qty
		}
		for medID, qty := range need {
			mi := s.medicineIndex(medID)
			if mi < 0 {
				return model.Prescription{}, errors.NotFound("medicine", nil)
			}
			if s.medicines[mi].CurrentStock < qty {
				return model.Prescription{}, errors.BadRequest(fmt.Sprintf("insufficient stock for %s", s.medicines[mi].Name), nil)
			}
		}
		at := s.now().Format(dateTimeLayout)
		for _, it := range rx.Items {
			s.medicines[s.medicineIndex(it.MedicineID)].CurrentStock -= it.Qty
			s.appendLog(model.MovementOut, it.MedicineID, it.Qty, at, "Dispensed "+rx.ID)
		}
	}
	s.prescriptions[i].Status = status
	return s.prescriptions[i].Clone(), nil
}

// Suppliers

func (s *Store) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := append([]model.Supplier{}, s.suppliers...)
	sortByID(out, func(sp model.Supplier) int64 { return sp.ID })
	return out, nil
}

func (s *Store) CreateSupplier(ctx context.Context, req model.CreateSupplierRequest) (model.Supplier, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return model.Supplier{}, err
	}
	defer s.mu.Unlock()

	p := normalize.CreateSupplierPayload(req)
	sp := model.Supplier{
		ID:      nextID(s.suppliers, func(sp model.Supplier) int64 { return sp.ID }),
		Name:    p.Name,
		Contact: p.Contact,
		Phone:   p.Phone,
		Address: p.Address,
	}
	s.suppliers = append(s.suppliers, sp)
	return sp, nil
}

func (s *Store) DeleteSupplier(ctx context.Context, id int64) error {
	if err := s.beginPharmacy(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	i := indexOf(s.suppliers, func(sp model.Supplier) bool { return sp.ID == id })
	if i < 0 {
		return errors.NotFound("supplier", nil)
	}
	s.suppliers = append(s.suppliers[:i], s.suppliers[i+1:]...)
	return nil
}

// Supplier orders

func (s *Store) orderIndex(id string) int {
	return indexOf(s.orders, func(o model.SupplierOrder) bool { return o.ID == id })
}

func (s *Store) ListOrders(ctx context.Context, status model.OrderStatus) ([]model.SupplierOrder, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.SupplierOrder, 0, len(s.orders))
	for _, o := range s.orders {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (s *Store) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.SupplierOrder, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return model.SupplierOrder{}, err
	}
	defer s.mu.Unlock()

	if indexOf(s.suppliers, func(sp model.Supplier) bool { return sp.ID == req.SupplierID }) < 0 {
		return model.SupplierOrder{}, errors.NotFound("supplier", nil)
	}
	if len(req.Items) == 0 {
		return model.SupplierOrder{}, errors.BadRequest("at least one item is required", nil)
	}
	o := model.SupplierOrder{SupplierID: req.SupplierID, Status: model.OrderStatusPending}
	for _, it := range req.Items {
		item, err := s.lineItem(it)
		if err != nil {
			return model.SupplierOrder{}, err
		}
		o.Items = append(o.Items, model.SupplierOrderItem(item))
		o.Amount += item.Price * float64(item.Qty)
	}
	now := s.now()
	id, err := s.mint(identifier.KindSupplierOrder, now, func(id string) bool { return s.orderIndex(id) >= 0 })
	if err != nil {
		return model.SupplierOrder{}, err
	}
	o.ID = id
	o.CreatedAt = now.Format(dateTimeLayout)
	s.orders = append(s.orders, o.Clone())
	return o, nil
}

// UpdateOrderStatus completes or cancels a pending order. Completing it
// receives one batch per line item.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.SupplierOrder, error) {
	if err := s.beginPharmacy(ctx); err != nil {
		return model.SupplierOrder{}, err
	}
	defer s.mu.Unlock()

	i := s.orderIndex(id)
	if i < 0 {
		return model.SupplierOrder{}, errors.NotFound("order", nil)
	}
	o := s.orders[i]
	if err := lifecycle.Apply(lifecycle.SupplierOrder, o.Status, status); err != nil {
		return model.SupplierOrder{}, err
	}
	if status == model.OrderStatusCompleted {
		for _, it := range o.Items {
			if s.medicineIndex(it.MedicineID) < 0 {
				return model.SupplierOrder{}, errors.NotFound("medicine", nil)
			}
		}
		now := s.now()
		for _, it := range o.Items {
			batchNo := fmt.Sprintf("B-%s-%d", o.ID, it.MedicineID)
			s.receive(it.MedicineID, batchNo, it.Qty, now.Format(dateLayout), "", now.Format(dateTimeLayout), "Order stock-in "+o.ID)
		}
	}
	s.orders[i].Status = status
	return s.orders[i].Clone(), nil
}

func (s *Store) beginPharmacy(ctx context.Context) error {
	return s.enter(ctx, s.latency.Pharmacy)
}
