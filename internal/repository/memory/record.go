package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/normalize"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
	"github.com/jwalitptl/clinic-console/pkg/identifier"
)

const defaultVisitClock = "10:00"

func (s *Store) joinRecord(r model.MedicalRecord) model.MedicalRecord {
	r = r.Clone()
	if d, ok := s.department(r.DeptID); ok {
		r.Department = d.Name
	}
	if d, ok := s.doctor(r.DoctorID); ok {
		r.Doctor = d.Name
	}
	if r.PatientName == "" {
		if p, ok := s.patient(r.PatientID); ok {
			r.PatientName = p.Name
		}
	}
	r.HasLab = len(r.Labs) > 0
	r.HasImaging = len(r.Imaging) > 0
	return r
}

func (s *Store) recordIndex(id string) int {
	return indexOf(s.records, func(r model.MedicalRecord) bool { return r.ID == id })
}

func (s *Store) ListRecords(ctx context.Context, filters model.RecordFilters) ([]model.MedicalRecord, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.MedicalRecord, 0, len(s.records))
	for _, r := range s.records {
		r = s.joinRecord(r)
		switch {
		case filters.Status != "" && r.Status != filters.Status:
			continue
		case filters.Date != "" && datePart(r.CreatedAt) != filters.Date:
			continue
		case filters.DeptID != 0 && r.DeptID != filters.DeptID:
			continue
		case filters.DoctorID != 0 && r.DoctorID != filters.DoctorID:
			continue
		case filters.HasLab != nil && r.HasLab != *filters.HasLab:
			continue
		case filters.HasImaging != nil && r.HasImaging != *filters.HasImaging:
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return paginate(out, filters.Pagination, model.DefaultRecordPageSize), nil
}

func (s *Store) GetRecord(ctx context.Context, id string) (model.MedicalRecord, error) {
	if err := s.begin(ctx); err != nil {
		return model.MedicalRecord{}, err
	}
	defer s.mu.Unlock()

	i := s.recordIndex(id)
	if i < 0 {
		return model.MedicalRecord{}, errors.NotFound("record", nil)
	}
	return s.joinRecord(s.records[i]), nil
}

// CreateRecord opens a draft. Empty fields are filled from the template
// named by TemplateID when it carries defaults for them.
func (s *Store) CreateRecord(ctx context.Context, req model.CreateRecordRequest) (model.MedicalRecord, error) {
	if err := s.begin(ctx); err != nil {
		return model.MedicalRecord{}, err
	}
	defer s.mu.Unlock()

	if _, ok := s.department(req.DeptID); !ok {
		return model.MedicalRecord{}, errors.BadRequest("department does not exist", nil)
	}
	if _, ok := s.doctor(req.DoctorID); !ok {
		return model.MedicalRecord{}, errors.BadRequest("doctor does not exist", nil)
	}
	patientName := strings.TrimSpace(req.PatientName)
	if req.PatientID != 0 {
		p, ok := s.patient(req.PatientID)
		if !ok {
			return model.MedicalRecord{}, errors.BadRequest("patient does not exist", nil)
		}
		if patientName == "" {
			patientName = p.Name
		}
	}
	if patientName == "" {
		return model.MedicalRecord{}, errors.BadRequest("patient is required", nil)
	}

	clock := strings.TrimSpace(req.Time)
	if clock == "" {
		clock = defaultVisitClock
	}
	now := s.now()
	id, err := s.mint(identifier.KindRecord, now, func(id string) bool { return s.recordIndex(id) >= 0 })
	if err != nil {
		return model.MedicalRecord{}, err
	}

	r := model.MedicalRecord{
		ID:             id,
		PatientID:      req.PatientID,
		PatientName:    patientName,
		DeptID:         req.DeptID,
		DoctorID:       req.DoctorID,
		CreatedAt:      now.Format(dateLayout) + " " + clock,
		ChiefComplaint: strings.TrimSpace(req.ChiefComplaint),
		Diagnosis:      strings.TrimSpace(req.Diagnosis),
		Prescriptions:  normalize.NonEmpty(req.Prescriptions),
		Labs:           normalize.NonEmpty(req.Labs),
		Imaging:        normalize.NonEmpty(req.Imaging),
		Status:         model.RecordStatusDraft,
	}
	if req.TemplateID != 0 {
		ti := s.templateIndex(req.TemplateID)
		if ti < 0 {
			return model.MedicalRecord{}, errors.BadRequest("template does not exist", nil)
		}
		applyTemplateDefaults(&r, s.templates[ti].Defaults)
	}
	s.records = append(s.records, r)
	return s.joinRecord(r), nil
}

func applyTemplateDefaults(r *model.MedicalRecord, defaults map[string]interface{}) {
	text := func(field *string, key string) {
		if v, ok := defaults[key].(string); ok && *field == "" {
			*field = strings.TrimSpace(v)
		}
	}
	list := func(field *[]string, key string) {
		if len(*field) > 0 {
			return
		}
		switch v := defaults[key].(type) {
		case []string:
			*field = normalize.NonEmpty(v)
		case []interface{}:
			items := make([]string, 0, len(v))
			for _, it := range v {
				if str, ok := it.(string); ok {
					items = append(items, str)
				}
			}
			*field = normalize.NonEmpty(items)
		}
	}
	text(&r.ChiefComplaint, "chiefComplaint")
	text(&r.Diagnosis, "diagnosis")
	list(&r.Prescriptions, "prescriptions")
	list(&r.Labs, "labs")
	list(&r.Imaging, "imaging")
}

func (s *Store) UpdateRecord(ctx context.Context, id string, req model.UpdateRecordRequest) (model.MedicalRecord, error) {
	if err := s.begin(ctx); err != nil {
		return model.MedicalRecord{}, err
	}
	defer s.mu.Unlock()

	i := s.recordIndex(id)
	if i < 0 {
		return model.MedicalRecord{}, errors.NotFound("record", nil)
	}
	r := s.records[i].Clone()
	if req.PatientName != nil {
		r.PatientName = strings.TrimSpace(*req.PatientName)
	}
	if req.ChiefComplaint != nil {
		r.ChiefComplaint = strings.TrimSpace(*req.ChiefComplaint)
	}
	if req.Diagnosis != nil {
		r.Diagnosis = strings.TrimSpace(*req.Diagnosis)
	}
	r.Prescriptions = normalize.NonEmpty(req.Prescriptions)
	r.Labs = normalize.NonEmpty(req.Labs)
	r.Imaging = normalize.NonEmpty(req.Imaging)
	s.records[i] = r
	return s.joinRecord(r), nil
}

// UpdateRecordStatus moves a record along draft, finalized, archived.
// A record cannot be finalized without a chief complaint or a diagnosis.
func (s *Store) UpdateRecordStatus(ctx context.Context, id string, status model.RecordStatus) (model.MedicalRecord, error) {
	if err := s.begin(ctx); err != nil {
		return model.MedicalRecord{}, err
	}
	defer s.mu.Unlock()

	i := s.recordIndex(id)
	if i < 0 {
		return model.MedicalRecord{}, errors.NotFound("record", nil)
	}
	r := s.records[i]
	if err := lifecycle.Apply(lifecycle.Record, r.Status, status); err != nil {
		return model.MedicalRecord{}, err
	}
	if status == model.RecordStatusFinalized && r.ChiefComplaint == "" && r.Diagnosis == "" {
		return model.MedicalRecord{}, errors.BadRequest("chief complaint or diagnosis is required to finalize", nil)
	}
	s.records[i].Status = status
	return s.joinRecord(s.records[i]), nil
}

// Templates

func (s *Store) templateIndex(id int64) int {
	return indexOf(s.templates, func(t model.RecordTemplate) bool { return t.ID == id })
}

func (s *Store) ListTemplates(ctx context.Context) ([]model.RecordTemplate, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.RecordTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t.Clone())
	}
	sortByID(out, func(t model.RecordTemplate) int64 { return t.ID })
	return out, nil
}

func (s *Store) GetTemplate(ctx context.Context, id int64) (model.RecordTemplate, error) {
	if err := s.begin(ctx); err != nil {
		return model.RecordTemplate{}, err
	}
	defer s.mu.Unlock()

	i := s.templateIndex(id)
	if i < 0 {
		return model.RecordTemplate{}, errors.NotFound("template", nil)
	}
	return s.templates[i].Clone(), nil
}

func (s *Store) CreateTemplate(ctx context.Context, req model.CreateTemplateRequest) (model.RecordTemplate, error) {
	if err := s.begin(ctx); err != nil {
		return model.RecordTemplate{}, err
	}
	defer s.mu.Unlock()

	p := normalize.CreateTemplatePayload(req)
	if p.Name == "" {
		return model.RecordTemplate{}, errors.BadRequest("template name is required", nil)
	}
	t := model.RecordTemplate{
		ID:       nextID(s.templates, func(t model.RecordTemplate) int64 { return t.ID }),
		Name:     p.Name,
		Scope:    p.Scope,
		Fields:   p.Fields,
		Defaults: p.Defaults,
	}
	s.templates = append(s.templates, t.Clone())
	return t.Clone(), nil
}

func (s *Store) UpdateTemplate(ctx context.Context, id int64, req model.UpdateTemplateRequest) (model.RecordTemplate, error) {
	if err := s.begin(ctx); err != nil {
		return model.RecordTemplate{}, err
	}
	defer s.mu.Unlock()

	i := s.templateIndex(id)
	if i < 0 {
		return model.RecordTemplate{}, errors.NotFound("template", nil)
	}
	t := s.templates[i].Clone()
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return model.RecordTemplate{}, errors.BadRequest("template name is required", nil)
		}
		t.Name = name
	}
	if req.Scope != nil {
		t.Scope = strings.TrimSpace(*req.Scope)
	}
	if req.Fields != nil {
		t.Fields = normalize.NonEmpty(req.Fields)
	}
	if req.Defaults != nil {
		t.Defaults = req.Defaults
	}
	s.templates[i] = t.Clone()
	return t.Clone(), nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id int64) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	i := s.templateIndex(id)
	if i < 0 {
		return errors.NotFound("template", nil)
	}
	s.templates = append(s.templates[:i], s.templates[i+1:]...)
	return nil
}

// Dictionaries

func (s *Store) Dictionaries(ctx context.Context) (model.Dictionaries, error) {
	if err := s.begin(ctx); err != nil {
		return model.Dictionaries{}, err
	}
	defer s.mu.Unlock()
	return s.dictionaries.Clone(), nil
}

func (s *Store) ImagingDictionary(ctx context.Context) ([]string, error) {
	d, err := s.Dictionaries(ctx)
	return d.Imaging, err
}

func (s *Store) LabDictionary(ctx context.Context) ([]string, error) {
	d, err := s.Dictionaries(ctx)
	return d.Labs, err
}

// Patients

func (s *Store) ListPatients(ctx context.Context, filters model.PatientFilters) (httputil.Page[model.Patient], error) {
	if err := s.begin(ctx); err != nil {
		return httputil.Page[model.Patient]{}, err
	}
	defer s.mu.Unlock()

	name := strings.ToLower(strings.TrimSpace(filters.Name))
	matched := make([]model.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			continue
		}
		matched = append(matched, p)
	}
	sortByID(matched, func(p model.Patient) int64 { return p.ID })
	page := filters.Pagination.WithDefaults(model.DefaultPatientPageSize)
	return httputil.Page[model.Patient]{
		List:     paginate(matched, page, model.DefaultPatientPageSize),
		Total:    len(matched),
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (s *Store) GetPatient(ctx context.Context, id int64) (model.Patient, error) {
	if err := s.begin(ctx); err != nil {
		return model.Patient{}, err
	}
	defer s.mu.Unlock()

	p, ok := s.patient(id)
	if !ok {
		return model.Patient{}, errors.NotFound("patient", nil)
	}
	return p, nil
}
