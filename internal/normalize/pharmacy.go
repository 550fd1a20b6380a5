package normalize

import (
	"strings"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
)

// The pharmacy endpoints already speak camelCase, so their wire shapes are
// the canonical structs. Inbound normalization only repairs nil lists and
// undeclared statuses.

type LineItemPayload struct {
	MedicineID int64    `json:"medicineId"`
	Qty        int      `json:"qty"`
	Unit       string   `json:"unit,omitempty"`
	Price      *float64 `json:"price,omitempty"`
}

type PrescriptionPayload struct {
	Patient    string            `json:"patient"`
	Department string            `json:"department"`
	Doctor     string            `json:"doctor"`
	Items      []LineItemPayload `json:"items"`
}

type SupplierPayload struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type OrderPayload struct {
	SupplierID int64             `json:"supplierId"`
	Items      []LineItemPayload `json:"items"`
}

// Inbound

func PrescriptionStatus(s string) model.PrescriptionStatus {
	status := model.PrescriptionStatus(strings.ToLower(strings.TrimSpace(s)))
	if !lifecycle.Declared(lifecycle.Prescription, status) {
		return model.PrescriptionStatusPending
	}
	return status
}

func OrderStatus(s string) model.OrderStatus {
	status := model.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !lifecycle.Declared(lifecycle.SupplierOrder, status) {
		return model.OrderStatusPending
	}
	return status
}

func Prescription(p model.Prescription) model.Prescription {
	p = p.Clone()
	p.Status = PrescriptionStatus(string(p.Status))
	return p
}

func SupplierOrder(o model.SupplierOrder) model.SupplierOrder {
	o = o.Clone()
	o.Status = OrderStatus(string(o.Status))
	return o
}

func MovementType(s string) model.MovementType {
	if strings.EqualFold(strings.TrimSpace(s), string(model.MovementOut)) {
		return model.MovementOut
	}
	return model.MovementIn
}

func InventoryLog(l model.InventoryLog) model.InventoryLog {
	l.Type = MovementType(string(l.Type))
	return l
}

// Outbound

func LineItems(items []model.LineItemRequest) []LineItemPayload {
	return Map(items, func(it model.LineItemRequest) LineItemPayload {
		return LineItemPayload{
			MedicineID: it.MedicineID,
			Qty:        it.Qty,
			Unit:       strings.TrimSpace(it.Unit),
			Price:      it.Price,
		}
	})
}

func CreatePrescriptionPayload(req model.CreatePrescriptionRequest) PrescriptionPayload {
	return PrescriptionPayload{
		Patient:    strings.TrimSpace(req.Patient),
		Department: strings.TrimSpace(req.Department),
		Doctor:     strings.TrimSpace(req.Doctor),
		Items:      LineItems(req.Items),
	}
}

// CreateSupplierPayload trims every field and names anonymous suppliers.
func CreateSupplierPayload(req model.CreateSupplierRequest) SupplierPayload {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = model.DefaultSupplierName
	}
	return SupplierPayload{
		Name:    name,
		Contact: strings.TrimSpace(req.Contact),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}
}

func CreateOrderPayload(req model.CreateOrderRequest) OrderPayload {
	return OrderPayload{SupplierID: req.SupplierID, Items: LineItems(req.Items)}
}

func StockInPayload(req model.StockInRequest) model.StockInRequest {
	req.BatchNo = strings.TrimSpace(req.BatchNo)
	req.ReceivedAt = strings.TrimSpace(req.ReceivedAt)
	req.ExpiryDate = strings.TrimSpace(req.ExpiryDate)
	req.Note = strings.TrimSpace(req.Note)
	return req
}

func StockOutPayload(req model.StockOutRequest) model.StockOutRequest {
	req.Time = strings.TrimSpace(req.Time)
	req.Note = strings.TrimSpace(req.Note)
	return req
}

// Payload readers used when serving the backend surface.

func lineItemRequests(items []LineItemPayload) []model.LineItemRequest {
	return Map(items, func(it LineItemPayload) model.LineItemRequest {
		return model.LineItemRequest{MedicineID: it.MedicineID, Qty: it.Qty, Unit: it.Unit, Price: it.Price}
	})
}

func CreatePrescriptionRequestOf(p PrescriptionPayload) model.CreatePrescriptionRequest {
	return model.CreatePrescriptionRequest{
		Patient:    p.Patient,
		Department: p.Department,
		Doctor:     p.Doctor,
		Items:      lineItemRequests(p.Items),
	}
}

func CreateSupplierRequestOf(p SupplierPayload) model.CreateSupplierRequest {
	return model.CreateSupplierRequest{Name: p.Name, Contact: p.Contact, Phone: p.Phone, Address: p.Address}
}

func CreateOrderRequestOf(p OrderPayload) model.CreateOrderRequest {
	return model.CreateOrderRequest{SupplierID: p.SupplierID, Items: lineItemRequests(p.Items)}
}
