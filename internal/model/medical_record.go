package model

type MedicalRecord struct {
	ID             string       `json:"id"`
	PatientID      int64        `json:"patientId"`
	PatientName    string       `json:"patientName"`
	DeptID         int64        `json:"deptId"`
	Department     string       `json:"department"`
	DoctorID       int64        `json:"doctorId"`
	Doctor         string       `json:"doctor"`
	CreatedAt      string       `json:"createdAt"`
	ChiefComplaint string       `json:"chiefComplaint"`
	Diagnosis      string       `json:"diagnosis"`
	Prescriptions  []string     `json:"prescriptions"`
	Labs           []string     `json:"labs"`
	Imaging        []string     `json:"imaging"`
	HasLab         bool         `json:"hasLab"`
	HasImaging     bool         `json:"hasImaging"`
	Status         RecordStatus `json:"status"`
}

// Clone returns a deep copy.
func (r MedicalRecord) Clone() MedicalRecord {
	r.Prescriptions = cloneStrings(r.Prescriptions)
	r.Labs = cloneStrings(r.Labs)
	r.Imaging = cloneStrings(r.Imaging)
	return r
}

type CreateRecordRequest struct {
	DeptID         int64    `json:"deptId" validate:"required,gt=0"`
	DoctorID       int64    `json:"doctorId" validate:"required,gt=0"`
	PatientID      int64    `json:"patientId,omitempty"`
	PatientName    string   `json:"patientName,omitempty" validate:"required_without=PatientID"`
	Time           string   `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	ChiefComplaint string   `json:"chiefComplaint,omitempty"`
	Diagnosis      string   `json:"diagnosis,omitempty"`
	Prescriptions  []string `json:"prescriptions,omitempty"`
	Labs           []string `json:"labs,omitempty"`
	Imaging        []string `json:"imaging,omitempty"`
	TemplateID     int64    `json:"templateId,omitempty"`
}

// UpdateRecordRequest is a full-record update. Nil scalars keep their
// current value; the three lists are always replaced.
type UpdateRecordRequest struct {
	PatientName    *string  `json:"patientName,omitempty"`
	ChiefComplaint *string  `json:"chiefComplaint,omitempty"`
	Diagnosis      *string  `json:"diagnosis,omitempty"`
	Prescriptions  []string `json:"prescriptions"`
	Labs           []string `json:"labs"`
	Imaging        []string `json:"imaging"`
}

type UpdateRecordStatusRequest struct {
	Status RecordStatus `json:"status" validate:"required,oneof=draft finalized archived"`
}

type RecordFilters struct {
	Status     RecordStatus
	Date       string
	DeptID     int64
	DoctorID   int64
	HasLab     *bool
	HasImaging *bool
	Pagination
}

type RecordTemplate struct {
	ID       int64                  `json:"id"`
	Name     string                 `json:"name"`
	Scope    string                 `json:"scope"`
	Fields   []string               `json:"fields"`
	Defaults map[string]interface{} `json:"defaults"`
}

// Clone returns a copy whose slices and top-level map are not shared.
func (t RecordTemplate) Clone() RecordTemplate {
	t.Fields = cloneStrings(t.Fields)
	defaults := make(map[string]interface{}, len(t.Defaults))
	for k, v := range t.Defaults {
		defaults[k] = v
	}
	t.Defaults = defaults
	return t
}

// DefaultTemplateScope applies when a template is created without a scope.
const DefaultTemplateScope = "General"

type CreateTemplateRequest struct {
	Name     string                 `json:"name" validate:"required"`
	Scope    string                 `json:"scope"`
	Fields   []string               `json:"fields"`
	Defaults map[string]interface{} `json:"defaults"`
}

type UpdateTemplateRequest struct {
	Name     *string                `json:"name,omitempty" validate:"omitempty,min=1"`
	Scope    *string                `json:"scope,omitempty"`
	Fields   []string               `json:"fields,omitempty"`
	Defaults map[string]interface{} `json:"defaults,omitempty"`
}

type Dictionaries struct {
	Imaging []string `json:"imaging"`
	Labs    []string `json:"labs"`
}

func (d Dictionaries) Clone() Dictionaries {
	return Dictionaries{Imaging: cloneStrings(d.Imaging), Labs: cloneStrings(d.Labs)}
}
