package normalize

import (
	"strings"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
)

// BackendRecord accepts both naming schemes the backend has used for the
// joined names: patient/department/doctor and patientName/deptName/doctorName.
type BackendRecord struct {
	ID             string   `json:"id"`
	PatientID      int64    `json:"patientId,omitempty"`
	Patient        string   `json:"patient"`
	PatientName    string   `json:"patientName,omitempty"`
	DeptID         int64    `json:"deptId,omitempty"`
	Department     string   `json:"department"`
	DeptName       string   `json:"deptName,omitempty"`
	DoctorID       int64    `json:"doctorId,omitempty"`
	Doctor         string   `json:"doctor"`
	DoctorName     string   `json:"doctorName,omitempty"`
	CreatedAt      string   `json:"createdAt"`
	Status         string   `json:"status"`
	HasLab         *bool    `json:"hasLab,omitempty"`
	HasImaging     *bool    `json:"hasImaging,omitempty"`
	ChiefComplaint string   `json:"chiefComplaint"`
	Diagnosis      string   `json:"diagnosis"`
	Prescriptions  []string `json:"prescriptions"`
	Labs           []string `json:"labs"`
	Imaging        []string `json:"imaging"`
}

type BackendTemplate struct {
	ID       int64                  `json:"id"`
	Name     string                 `json:"name"`
	Scope    string                 `json:"scope"`
	Fields   []string               `json:"fields"`
	Defaults map[string]interface{} `json:"defaults"`
}

type BackendPatient struct {
	PatientID        int64  `json:"patientId"`
	UserID           int64  `json:"userId"`
	Name             string `json:"name"`
	Gender           int    `json:"gender"`
	Birthday         string `json:"birthday"`
	IDCard           string `json:"idCard"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergencyContact"`
	EmergencyPhone   string `json:"emergencyPhone"`
}

type RecordPayload struct {
	DeptID         int64    `json:"deptId"`
	DoctorID       int64    `json:"doctorId"`
	PatientID      int64    `json:"patientId,omitempty"`
	PatientName    string   `json:"patientName,omitempty"`
	Time           string   `json:"time,omitempty"`
	ChiefComplaint string   `json:"chiefComplaint"`
	Diagnosis      string   `json:"diagnosis"`
	Prescriptions  []string `json:"prescriptions"`
	Labs           []string `json:"labs"`
	Imaging        []string `json:"imaging"`
	TemplateID     int64    `json:"templateId,omitempty"`
}

type RecordUpdatePayload struct {
	PatientName    *string  `json:"patientName,omitempty"`
	ChiefComplaint *string  `json:"chiefComplaint,omitempty"`
	Diagnosis      *string  `json:"diagnosis,omitempty"`
	Prescriptions  []string `json:"prescriptions"`
	Labs           []string `json:"labs"`
	Imaging        []string `json:"imaging"`
}

type TemplatePayload struct {
	Name     string                 `json:"name"`
	Scope    string                 `json:"scope"`
	Fields   []string               `json:"fields"`
	Defaults map[string]interface{} `json:"defaults"`
}

type TemplateUpdatePayload struct {
	Name     *string                `json:"name,omitempty"`
	Scope    *string                `json:"scope,omitempty"`
	Fields   []string               `json:"fields,omitempty"`
	Defaults map[string]interface{} `json:"defaults,omitempty"`
}

// Inbound

// RecordStatus maps a backend record status. Anything undeclared is draft.
func RecordStatus(s string) model.RecordStatus {
	status := model.RecordStatus(strings.ToLower(strings.TrimSpace(s)))
	if !lifecycle.Declared(lifecycle.Record, status) {
		return model.RecordStatusDraft
	}
	return status
}

func Record(r BackendRecord) model.MedicalRecord {
	rec := model.MedicalRecord{
		ID:             r.ID,
		PatientID:      r.PatientID,
		PatientName:    firstNonEmpty(r.PatientName, r.Patient),
		DeptID:         r.DeptID,
		Department:     firstNonEmpty(r.DeptName, r.Department),
		DoctorID:       r.DoctorID,
		Doctor:         firstNonEmpty(r.DoctorName, r.Doctor),
		CreatedAt:      r.CreatedAt,
		ChiefComplaint: r.ChiefComplaint,
		Diagnosis:      r.Diagnosis,
		Prescriptions:  Strings(r.Prescriptions),
		Labs:           Strings(r.Labs),
		Imaging:        Strings(r.Imaging),
		Status:         RecordStatus(r.Status),
	}
	rec.HasLab = len(rec.Labs) > 0
	if r.HasLab != nil {
		rec.HasLab = *r.HasLab
	}
	rec.HasImaging = len(rec.Imaging) > 0
	if r.HasImaging != nil {
		rec.HasImaging = *r.HasImaging
	}
	return rec
}

func Template(t BackendTemplate) model.RecordTemplate {
	defaults := make(map[string]interface{}, len(t.Defaults))
	for k, v := range t.Defaults {
		defaults[k] = v
	}
	return model.RecordTemplate{
		ID:       t.ID,
		Name:     t.Name,
		Scope:    t.Scope,
		Fields:   Strings(t.Fields),
		Defaults: defaults,
	}
}

// Dictionaries treats a missing body as two empty lists.
func Dictionaries(d *model.Dictionaries) model.Dictionaries {
	if d == nil {
		return model.Dictionaries{Imaging: []string{}, Labs: []string{}}
	}
	return d.Clone()
}

func Patient(p BackendPatient) model.Patient {
	return model.Patient{
		ID:               p.PatientID,
		UserID:           p.UserID,
		Name:             p.Name,
		Gender:           p.Gender,
		Birthday:         p.Birthday,
		IDCard:           p.IDCard,
		Address:          p.Address,
		EmergencyContact: p.EmergencyContact,
		EmergencyPhone:   p.EmergencyPhone,
	}
}

// Inverse mappings used when serving the backend surface.

func BackendRecordOf(r model.MedicalRecord) BackendRecord {
	hasLab, hasImaging := r.HasLab, r.HasImaging
	return BackendRecord{
		ID:             r.ID,
		PatientID:      r.PatientID,
		Patient:        r.PatientName,
		DeptID:         r.DeptID,
		Department:     r.Department,
		DoctorID:       r.DoctorID,
		Doctor:         r.Doctor,
		CreatedAt:      r.CreatedAt,
		Status:         string(r.Status),
		HasLab:         &hasLab,
		HasImaging:     &hasImaging,
		ChiefComplaint: r.ChiefComplaint,
		Diagnosis:      r.Diagnosis,
		Prescriptions:  Strings(r.Prescriptions),
		Labs:           Strings(r.Labs),
		Imaging:        Strings(r.Imaging),
	}
}

func BackendTemplateOf(t model.RecordTemplate) BackendTemplate {
	c := t.Clone()
	return BackendTemplate{ID: c.ID, Name: c.Name, Scope: c.Scope, Fields: c.Fields, Defaults: c.Defaults}
}

func BackendPatientOf(p model.Patient) BackendPatient {
	return BackendPatient{
		PatientID:        p.ID,
		UserID:           p.UserID,
		Name:             p.Name,
		Gender:           p.Gender,
		Birthday:         p.Birthday,
		IDCard:           p.IDCard,
		Address:          p.Address,
		EmergencyContact: p.EmergencyContact,
		EmergencyPhone:   p.EmergencyPhone,
	}
}

// Outbound

func CreateRecordPayload(req model.CreateRecordRequest) RecordPayload {
	return RecordPayload{
		DeptID:         req.DeptID,
		DoctorID:       req.DoctorID,
		PatientID:      req.PatientID,
		PatientName:    strings.TrimSpace(req.PatientName),
		Time:           strings.TrimSpace(req.Time),
		ChiefComplaint: strings.TrimSpace(req.ChiefComplaint),
		Diagnosis:      strings.TrimSpace(req.Diagnosis),
		Prescriptions:  NonEmpty(req.Prescriptions),
		Labs:           NonEmpty(req.Labs),
		Imaging:        NonEmpty(req.Imaging),
		TemplateID:     req.TemplateID,
	}
}

func UpdateRecordPayload(req model.UpdateRecordRequest) RecordUpdatePayload {
	return RecordUpdatePayload{
		PatientName:    trimPtr(req.PatientName),
		ChiefComplaint: trimPtr(req.ChiefComplaint),
		Diagnosis:      trimPtr(req.Diagnosis),
		Prescriptions:  NonEmpty(req.Prescriptions),
		Labs:           NonEmpty(req.Labs),
		Imaging:        NonEmpty(req.Imaging),
	}
}

// CreateTemplatePayload applies the default scope and drops blank fields.
func CreateTemplatePayload(req model.CreateTemplateRequest) TemplatePayload {
	scope := strings.TrimSpace(req.Scope)
	if scope == "" {
		scope = model.DefaultTemplateScope
	}
	defaults := req.Defaults
	if defaults == nil {
		defaults = map[string]interface{}{}
	}
	return TemplatePayload{
		Name:     strings.TrimSpace(req.Name),
		Scope:    scope,
		Fields:   NonEmpty(req.Fields),
		Defaults: defaults,
	}
}

func UpdateTemplatePayload(req model.UpdateTemplateRequest) TemplateUpdatePayload {
	p := TemplateUpdatePayload{
		Name:     trimPtr(req.Name),
		Scope:    trimPtr(req.Scope),
		Defaults: req.Defaults,
	}
	if req.Fields != nil {
		p.Fields = NonEmpty(req.Fields)
	}
	return p
}

// Payload readers used when serving the backend surface.

func CreateRecordRequestOf(p RecordPayload) model.CreateRecordRequest {
	return model.CreateRecordRequest{
		DeptID:         p.DeptID,
		DoctorID:       p.DoctorID,
		PatientID:      p.PatientID,
		PatientName:    p.PatientName,
		Time:           p.Time,
		ChiefComplaint: p.ChiefComplaint,
		Diagnosis:      p.Diagnosis,
		Prescriptions:  p.Prescriptions,
		Labs:           p.Labs,
		Imaging:        p.Imaging,
		TemplateID:     p.TemplateID,
	}
}

func UpdateRecordRequestOf(p RecordUpdatePayload) model.UpdateRecordRequest {
	return model.UpdateRecordRequest{
		PatientName:    p.PatientName,
		ChiefComplaint: p.ChiefComplaint,
		Diagnosis:      p.Diagnosis,
		Prescriptions:  p.Prescriptions,
		Labs:           p.Labs,
		Imaging:        p.Imaging,
	}
}

func CreateTemplateRequestOf(p TemplatePayload) model.CreateTemplateRequest {
	return model.CreateTemplateRequest{Name: p.Name, Scope: p.Scope, Fields: p.Fields, Defaults: p.Defaults}
}

func UpdateTemplateRequestOf(p TemplateUpdatePayload) model.UpdateTemplateRequest {
	return model.UpdateTemplateRequest{Name: p.Name, Scope: p.Scope, Fields: p.Fields, Defaults: p.Defaults}
}
