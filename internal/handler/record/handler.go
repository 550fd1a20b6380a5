package record

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
	repo  repository.RecordRepository
	valid validator.Validator
}

func NewHandler(repo repository.RecordRepository, v validator.Validator) *Handler {
	if v == nil {
		v = validator.New()
	}
	return &Handler{repo: repo, valid: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/records")
	{
		records.GET("", h.ListRecords)
		records.POST("", h.CreateRecord)
		records.GET("/dictionaries", h.Dictionaries)
		records.GET("/dictionaries/imaging", h.ImagingDictionary)
		records.GET("/dictionaries/labs", h.LabDictionary)
		records.GET("/:id", h.GetRecord)
		records.PUT("/:id", h.UpdateRecord)
		records.PATCH("/:id/status", h.UpdateRecordStatus)
	}

	templates := r.Group("/record-templates")
	{
		templates.GET("", h.ListTemplates)
		templates.POST("", h.CreateTemplate)
		templates.GET("/:id", h.GetTemplate)
		templates.PUT("/:id", h.UpdateTemplate)
		templates.DELETE("/:id", h.DeleteTemplate)
	}

	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) ListRecords(c *gin.Context) {
	f := model.RecordFilters{
		Status: model.RecordStatus(strings.TrimSpace(c.Query("status"))),
		Date:   strings.TrimSpace(c.Query("date")),
	}
	var err error
	if f.DeptID, err = handler.QueryInt(c, "deptId"); err != nil {
		handler.Fail(c, err)
		return
	}
	if f.DoctorID, err = handler.QueryInt(c, "doctorId"); err != nil {
		handler.Fail(c, err)
		return
	}
	if f.HasLab, err = handler.QueryBool(c, "hasLab"); err != nil {
		handler.Fail(c, err)
		return
	}
	if f.HasImaging, err = handler.QueryBool(c, "hasImaging"); err != nil {
		handler.Fail(c, err)
		return
	}
	if f.Pagination, err = handler.QueryPage(c); err != nil {
		handler.Fail(c, err)
		return
	}

	items, err := h.repo.ListRecords(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	list := normalize.Map(items, normalize.BackendRecordOf)
	handler.Respond(c, normalize.List[normalize.BackendRecord]{List: list, Total: len(list)}, nil)
}

func (h *Handler) GetRecord(c *gin.Context) {
	rec, err := h.repo.GetRecord(c.Request.Context(), c.Param("id"))
	handler.Respond(c, normalize.BackendRecordOf(rec), err)
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var p normalize.RecordPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	req := normalize.CreateRecordRequestOf(p)
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	rec, err := h.repo.CreateRecord(c.Request.Context(), req)
	handler.Respond(c, normalize.BackendRecordOf(rec), err)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	var p normalize.RecordUpdatePayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	rec, err := h.repo.UpdateRecord(c.Request.Context(), c.Param("id"), normalize.UpdateRecordRequestOf(p))
	handler.Respond(c, normalize.BackendRecordOf(rec), err)
}

type recordStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// UpdateRecordStatus answers with only the id and the new status.
func (h *Handler) UpdateRecordStatus(c *gin.Context) {
	var p normalize.StatusPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	req := model.UpdateRecordStatusRequest{Status: model.RecordStatus(strings.TrimSpace(p.Status))}
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	rec, err := h.repo.UpdateRecordStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Respond(c, recordStatus{ID: rec.ID, Status: string(rec.Status)}, nil)
}

func (h *Handler) ListTemplates(c *gin.Context) {
	items, err := h.repo.ListTemplates(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Respond(c, normalize.Map(items, normalize.BackendTemplateOf), nil)
}

func (h *Handler) GetTemplate(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	t, err := h.repo.GetTemplate(c.Request.Context(), id)
	handler.Respond(c, normalize.BackendTemplateOf(t), err)
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var p normalize.TemplatePayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	req := normalize.CreateTemplateRequestOf(p)
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	t, err := h.repo.CreateTemplate(c.Request.Context(), req)
	handler.Respond(c, normalize.BackendTemplateOf(t), err)
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	var p normalize.TemplateUpdatePayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	req := normalize.UpdateTemplateRequestOf(p)
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	t, err := h.repo.UpdateTemplate(c.Request.Context(), id, req)
	handler.Respond(c, normalize.BackendTemplateOf(t), err)
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Respond(c, nil, h.repo.DeleteTemplate(c.Request.Context(), id))
}

func (h *Handler) Dictionaries(c *gin.Context) {
	d, err := h.repo.Dictionaries(c.Request.Context())
	handler.Respond(c, d, err)
}

func (h *Handler) ImagingDictionary(c *gin.Context) {
	items, err := h.repo.ImagingDictionary(c.Request.Context())
	handler.Respond(c, items, err)
}

func (h *Handler) LabDictionary(c *gin.Context) {
	items, err := h.repo.LabDictionary(c.Request.Context())
	handler.Respond(c, items, err)
}

func (h *Handler) ListPatients(c *gin.Context) {
	page, err := handler.QueryPage(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	f := model.PatientFilters{Name: strings.TrimSpace(c.Query("name")), Pagination: page}
	res, err := h.repo.ListPatients(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Respond(c, normalize.List[normalize.BackendPatient]{
		List:     normalize.Map(res.List, normalize.BackendPatientOf),
		Total:    res.Total,
		Page:     res.Page,
		PageSize: res.PageSize,
	}, nil)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	p, err := h.repo.GetPatient(c.Request.Context(), id)
	handler.Respond(c, normalize.BackendPatientOf(p), err)
}
