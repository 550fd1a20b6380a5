package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-console/internal/handler"
	"github.com/jwalitptl/clinic-console/internal/middleware"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/normalize"
	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/validator"
)

// Handler serves departments, doctors, schedules and appointments in the
// backend's wire shapes.
type Handler struct {
	repo  repository.AppointmentRepository
	valid validator.Validator
}

func NewHandler(repo repository.AppointmentRepository, v validator.Validator) *Handler {
	if v == nil {
		v = validator.New()
	}
	return &Handler{repo: repo, valid: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	departments := r.Group("/departments")
	{
		departments.GET("", h.ListDepartments)
		departments.POST("", h.CreateDepartment)
		departments.PUT("/:id", h.UpdateDepartment)
		departments.DELETE("/:id", h.DeleteDepartment)
	}

	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.POST("", h.CreateDoctor)
		doctors.PUT("/:id", h.UpdateDoctor)
		doctors.DELETE("/:id", h.DeleteDoctor)
	}

	r.GET("/schedules", h.ListSchedules)

	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PATCH("/:id/status", h.UpdateAppointmentStatus)
	}
}

func listOf[T any](items []T) normalize.List[T] {
	if items == nil {
		items = []T{}
	}
	return normalize.List[T]{List: items, Total: len(items)}
}

func (h *Handler) ListDepartments(c *gin.Context) {
	page, err := handler.QueryPage(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	items, err := h.repo.ListDepartments(c.Request.Context(), page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Respond(c, listOf(normalize.Map(items, normalize.BackendDepartmentOf)), nil)
}

func (h *Handler) CreateDepartment(c *gin.Context) {
	var p normalize.DepartmentPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	req := normalize.CreateDepartmentRequestOf(p)
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	d, err := h.repo.CreateDepartment(c.Request.Context(), req)
	handler.Respond(c, normalize.BackendDepartmentOf(d), err)
}

func (h *Handler) UpdateDepartment(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	var p normalize.DepartmentPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	req := normalize.UpdateDepartmentRequestOf(p)
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	d, err := h.repo.UpdateDepartment(c.Request.Context(), id, req)
	handler.Respond(c, normalize.BackendDepartmentOf(d), err)
}

func (h *Handler) DeleteDepartment(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Respond(c, nil, h.repo.DeleteDepartment(c.Request.Context(), id))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	deptID, err := handler.QueryInt(c, "deptId")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	page, err := handler.QueryPage(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	items, err := h.repo.ListDoctors(c.Request.Context(), model.DoctorFilters{DeptID: deptID, Pagination: page})
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Respond(c, listOf(normalize.Map(items, normalize.BackendDoctorOf)), nil)
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var p normalize.DoctorPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	req := normalize.CreateDoctorRequestOf(p)
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	d, err := h.repo.CreateDoctor(c.Request.Context(), req)
	handler.Respond(c, normalize.BackendDoctorOf(d), err)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	var p normalize.DoctorPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	req := normalize.UpdateDoctorRequestOf(p)
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	d, err := h.repo.UpdateDoctor(c.Request.Context(), id, req)
	handler.Respond(c, normalize.BackendDoctorOf(d), err)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Respond(c, nil, h.repo.DeleteDoctor(c.Request.Context(), id))
}

func (h *Handler) ListSchedules(c *gin.Context) {
	doctorID, err := handler.QueryInt(c, "doctorId")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	page, err := handler.QueryPage(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	items, err := h.repo.ListSchedules(c.Request.Context(), model.ScheduleFilters{DoctorID: doctorID, Pagination: page})
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Respond(c, listOf(normalize.Map(items, normalize.BackendScheduleOf)), nil)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var f model.AppointmentFilters
	var err error
	if f.PatientID, err = handler.QueryInt(c, "patientId"); err != nil {
		handler.Fail(c, err)
		return
	}
	if f.DoctorID, err = handler.QueryInt(c, "doctorId"); err != nil {
		handler.Fail(c, err)
		return
	}
	if c.Query("status") != "" {
		code, err := handler.QueryInt(c, "status")
		if err != nil {
			handler.Fail(c, err)
			return
		}
		f.Status = model.AppointmentStatusFromCode(int(code))
	}
	if f.Pagination, err = handler.QueryPage(c); err != nil {
		handler.Fail(c, err)
		return
	}
	items, err := h.repo.ListAppointments(c.Request.Context(), f)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Respond(c, listOf(normalize.Map(items, normalize.BackendAppointmentOf)), nil)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	a, err := h.repo.GetAppointment(c.Request.Context(), id)
	handler.Respond(c, normalize.BackendAppointmentOf(a), err)
}

// CreateAppointment books for the token's user when the payload names no
// patient.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var p normalize.AppointmentPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	req := normalize.CreateAppointmentRequestOf(p)
	if req.PatientID == 0 {
		req.PatientID = middleware.GetUserID(c)
	}
	if err := h.valid.Validate(req); err != nil {
		handler.Fail(c, err)
		return
	}
	a, err := h.repo.CreateAppointment(c.Request.Context(), req)
	handler.Respond(c, normalize.BackendAppointmentOf(a), err)
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		handler.Fail(c, err)
		return
	}
	var p normalize.AppointmentStatusPayload
	if err := handler.Bind(c, &p); err != nil {
		handler.Fail(c, err)
		return
	}
	if p.Status < 0 || p.Status > 2 {
		handler.Fail(c, errors.BadRequest("status must be one of [0 1 2]", nil))
		return
	}
	a, err := h.repo.UpdateAppointmentStatus(c.Request.Context(), id, model.AppointmentStatusFromCode(p.Status))
	handler.Respond(c, normalize.BackendAppointmentOf(a), err)
}
