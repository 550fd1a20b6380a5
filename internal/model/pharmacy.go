package model

type Medicine struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Specification string  `json:"specification"`
	Unit          string  `json:"unit"`
	Price         float64 `json:"price"`
	WarningStock  int     `json:"warningStock"`
	CurrentStock  int     `json:"currentStock"`
}

// LowStock reports whether stock has reached the warning level.
func (m Medicine) LowStock() bool {
	return m.CurrentStock <= m.WarningStock
}

type InventoryBatch struct {
	ID            int64  `json:"id"`
	MedicineID    int64  `json:"medicineId"`
	Medicine      string `json:"medicine"`
	Specification string `json:"specification"`
	BatchNo       string `json:"batchNo"`
	Quantity      int    `json:"quantity"`
	ReceivedAt    string `json:"receivedAt"`
	ExpiryDate    string `json:"expiryDate"`
}

type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

type InventoryLog struct {
	ID            int64        `json:"id"`
	Type          MovementType `json:"type"`
	MedicineID    int64        `json:"medicineId"`
	Medicine      string       `json:"medicine"`
	Specification string       `json:"specification"`
	Quantity      int          `json:"quantity"`
	Time          string       `json:"time"`
	Note          string       `json:"note"`
}

// UnknownMedicine labels batches and logs whose medicine no longer exists.
const UnknownMedicine = "Unknown medicine"

type StockInRequest struct {
	MedicineID int64  `json:"medicineId" validate:"required,gt=0"`
	BatchNo    string `json:"batchNo" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	ReceivedAt string `json:"receivedAt" validate:"required,datetime=2006-01-02"`
	ExpiryDate string `json:"expiryDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Note       string `json:"note,omitempty"`
}

type StockOutRequest struct {
	MedicineID int64  `json:"medicineId" validate:"required,gt=0"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	Time       string `json:"time,omitempty" validate:"omitempty,datetime=2006-01-02 15:04:05"`
	Note       string `json:"note,omitempty"`
}

// StockMovement identifies the rows written by a stock-in or stock-out.
type StockMovement struct {
	BatchID    int64 `json:"batch,omitempty"`
	LogID      int64 `json:"log"`
	MedicineID int64 `json:"medicine"`
}

type PrescriptionItem struct {
	MedicineID int64   `json:"medicineId"`
	Name       string  `json:"name"`
	Qty        int     `json:"qty"`
	Unit       string  `json:"unit"`
	Price      float64 `json:"price"`
}

type Prescription struct {
	ID         string             `json:"id"`
	Patient    string             `json:"patient"`
	Department string             `json:"department"`
	Doctor     string             `json:"doctor"`
	CreatedAt  string             `json:"createdAt"`
	Status     PrescriptionStatus `json:"status"`
	Items      []PrescriptionItem `json:"items"`
}

func (p Prescription) Clone() Prescription {
	items := make([]PrescriptionItem, len(p.Items))
	copy(items, p.Items)
	p.Items = items
	return p
}

type LineItemRequest struct {
	MedicineID int64    `json:"medicineId" validate:"required,gt=0"`
	Qty        int      `json:"qty" validate:"required,gt=0"`
	Unit       string   `json:"unit,omitempty"`
	Price      *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

type CreatePrescriptionRequest struct {
	Patient    string            `json:"patient" validate:"required"`
	Department string            `json:"department"`
	Doctor     string            `json:"doctor"`
	Items      []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdatePrescriptionStatusRequest struct {
	Status PrescriptionStatus `json:"status" validate:"required,oneof=pending approved dispensed"`
}

type Supplier struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// DefaultSupplierName applies when a supplier is created without a name.
const DefaultSupplierName = "Unnamed supplier"

type CreateSupplierRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type SupplierOrderItem struct {
	MedicineID int64   `json:"medicineId"`
	Name       string  `json:"name"`
	Qty        int     `json:"qty"`
	Unit       string  `json:"unit"`
	Price      float64 `json:"price"`
}

type SupplierOrder struct {
	ID         string              `json:"id"`
	SupplierID int64               `json:"supplierId"`
	CreatedAt  string              `json:"createdAt"`
	Status     OrderStatus         `json:"status"`
	Amount     float64             `json:"amount"`
	Items      []SupplierOrderItem `json:"items"`
}

func (o SupplierOrder) Clone() SupplierOrder {
	items := make([]SupplierOrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

type CreateOrderRequest struct {
	SupplierID int64             `json:"supplierId" validate:"required,gt=0"`
	Items      []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=completed cancelled"`
}

// DefaultExpiryWindowDays is the look-ahead used for expiring batches.
const DefaultExpiryWindowDays = 30
