package report

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
	repo  repository.ReportRepository
	valid validator.Validator
}

func NewHandler(repo repository.ReportRepository, v validator.Validator) *Handler {
	if v == nil {
		v = validator.New()
	}
	return &Handler{repo: repo, valid: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/daily/visits", h.DailyVisits)
		reports.GET("/daily/drugs", h.DailyDrugs)
		reports.GET("/monthly/visits", h.MonthlyVisits)
		reports.GET("/monthly/drugs", h.MonthlyDrugs)
		reports.GET("/custom", h.Custom)
	}
}

func daily[T any](items []T) normalize.List[T] {
	return normalize.List[T]{List: items, Total: len(items)}
}

func monthly[T any](items []T) normalize.List[T] {
	return normalize.List[T]{List: items, TotalDays: len(items)}
}

func (h *Handler) query(c *gin.Context, key, layout string) (string, bool) {
	v := strings.TrimSpace(c.Query(key))
	if err := h.valid.ValidateField(key, v, "required", "datetime="+layout); err != nil {
		handler.Fail(c, err)
		return "", false
	}
	return v, true
}

func (h *Handler) DailyVisits(c *gin.Context) {
	date, ok := h.query(c, "date", "2006-01-02")
	if !ok {
		return
	}
	items, err := h.repo.DailyVisits(c.Request.Context(), date)
	handler.Respond(c, daily(items), err)
}

func (h *Handler) DailyDrugs(c *gin.Context) {
	date, ok := h.query(c, "date", "2006-01-02")
	if !ok {
		return
	}
	items, err := h.repo.DailyDrugs(c.Request.Context(), date)
	handler.Respond(c, daily(items), err)
}

func (h *Handler) MonthlyVisits(c *gin.Context) {
	month, ok := h.query(c, "month", "2006-01")
	if !ok {
		return
	}
	items, err := h.repo.MonthlyVisits(c.Request.Context(), month)
	handler.Respond(c, monthly(items), err)
}

func (h *Handler) MonthlyDrugs(c *gin.Context) {
	month, ok := h.query(c, "month", "2006-01")
	if !ok {
		return
	}
	items, err := h.repo.MonthlyDrugs(c.Request.Context(), month)
	handler.Respond(c, monthly(items), err)
}

func (h *Handler) Custom(c *gin.Context) {
	f := model.CustomReportFilters{
		DeptName:   strings.TrimSpace(c.Query("deptName")),
		DoctorName: strings.TrimSpace(c.Query("doctorName")),
		DateStart:  strings.TrimSpace(c.Query("dateStart")),
		DateEnd:    strings.TrimSpace(c.Query("dateEnd")),
	}
	if err := h.valid.Validate(f); err != nil {
		handler.Fail(c, err)
		return
	}
	items, err := h.repo.Custom(c.Request.Context(), f)
	handler.Respond(c, daily(items), err)
}
