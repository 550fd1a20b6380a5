package pharmacy

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-console/internal/handler"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/normalize"
	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/pkg/validator"
)

type Handler struct {
	repo  repository.PharmacyRepository
	valid validator.Validator
}

func NewHandler(repo repository.PharmacyRepository, v validator.Validator) *Handler {
	if v == nil {
		v = validator.New()
	}
	return &Handler{repo: repo, valid: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	p := r.Group("/pharmacy")
	{
		p.GET("/medicines", h.ListMedicines)

		p.GET("/inventory/batches", h.ListBatches)
		p.GET("/inventory/logs", h.ListInventoryLogs)
		p.POST("/inventory/in", h.StockIn)
		p.POST("/inventory/out", h.StockOut)

		p.GET("/prescriptions", h.ListPrescriptions)
		p.POST("/prescriptions", h.CreatePrescription)
		p.PATCH("/prescriptions/:id/status", h.UpdatePrescriptionStatus)

		p.GET("/suppliers", h.ListSuppliers)
		p.POST("/suppliers", h.CreateSupplier)
		p.DELETE("/suppliers/:id", h.DeleteSupplier)

		p.GET("/orders", h.ListOrders)
		p.POST("/orders", h.CreateOrder)
		p.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	}
}

// ListMedicines pages over the catalogue.
func (h *Handler) ListMedicines(c *gin.Context) {
	page, err := handler.QueryPage(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	items, err := h.repo.ListMedicines(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	page = page.WithDefaults(model.DefaultPageSize)
	start, end := page.Window(len(items))
	handler.Respond(c, normalize.List[model.Medicine]{
		List:     items[start:end],
		Total:    len(items),
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil)
}

func (h *Handler) ListBatches(c *gin.Context) {
	items, err := h.repo.ListBatches(c.Request.Context())
	handler.Respond(c, items, err)
}

func (h *Handler) ListInventoryLogs(c *gin.Context) {
	items, err := h.repo.ListInventoryLogs(c.Request.Context())
	handler.Respond(c, items, err)
}

func (h *Handler) StockIn(c *gin.Context) {
	var req model.StockInRequest
	if err := handler.Bind(c, &req); err != nil {
		handler.Fail(c, err)
		return
	}
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	mv, err := h.repo.StockIn(c.Request.Context(), req)
	handler.Respond(c, mv, err)
}

func (h *Handler) StockOut(c *gin.Context) {
	var req model.StockOutRequest
	if err := handler.Bind(c, &req); err != nil {
		handler.Fail(c, err)
		return
	}
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	mv, err := h.repo.StockOut(c.Request.Context(), req)
	handler.Respond(c, mv, err)
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	status := model.PrescriptionStatus(strings.TrimSpace(c.Query("status")))
	items, err := h.repo.ListPrescriptions(c.Request.Context(), status)
	handler.Respond(c, items, err)
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var p normalize.PrescriptionPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	req := normalize.CreatePrescriptionRequestOf(p)
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	rx, err := h.repo.CreatePrescription(c.Request.Context(), req)
	handler.Respond(c, rx, err)
}

func (h *Handler) UpdatePrescriptionStatus(c *gin.Context) {
	var p normalize.StatusPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	req := model.UpdatePrescriptionStatusRequest{Status: model.PrescriptionStatus(strings.TrimSpace(p.Status))}
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	rx, err := h.repo.UpdatePrescriptionStatus(c.Request.Context(), c.Param("id"), req.Status)
	handler.Respond(c, rx, err)
}

func (h *Handler) ListSuppliers(c *gin.Context) {
	items, err := h.repo.ListSuppliers(c.Request.Context())
	handler.Respond(c, items, err)
}

func (h *Handler) CreateSupplier(c *gin.Context) {
	var p normalize.SupplierPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	s, err := h.repo.CreateSupplier(c.Request.Context(), normalize.CreateSupplierRequestOf(p))
	handler.Respond(c, s, err)
}

func (h *Handler) DeleteSupplier(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Respond(c, nil, h.repo.DeleteSupplier(c.Request.Context(), id))
}

func (h *Handler) ListOrders(c *gin.Context) {
	status := model.OrderStatus(strings.TrimSpace(c.Query("status")))
	items, err := h.repo.ListOrders(c.Request.Context(), status)
	handler.Respond(c, items, err)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var p normalize.OrderPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	req := normalize.CreateOrderRequestOf(p)
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	o, err := h.repo.CreateOrder(c.Request.Context(), req)
	handler.Respond(c, o, err)
}

// UpdateOrderStatus leaves transition checks to the store, which also
// stocks in the order's items on completion.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var p normalize.StatusPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	status := model.OrderStatus(strings.TrimSpace(p.Status))
	if err := h.valid.ValidateField("status", string(status), "required"); err != nil {
		handler.Fail(c, err)
		return
	}
	o, err := h.repo.UpdateOrderStatus(c.Request.Context(), c.Param("id"), status)
	handler.Respond(c, o, err)
}
