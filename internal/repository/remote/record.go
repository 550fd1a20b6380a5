package remote

import (
	"context"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/normalize"
	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
)

const dictionaryCacheKey = "dictionaries"

type recordRepository struct {
	c     *Client
	cache *cache.Cache
}

// NewRecordRepository caches the lookup dictionaries for ttl. A zero ttl
// fetches them on every call.
func NewRecordRepository(c *Client, ttl time.Duration) repository.RecordRepository {
	r := &recordRepository{c: c}
	if ttl > 0 {
		r.cache = cache.New(ttl, 2*ttl)
	}
	return r
}

func (r *recordRepository) ListRecords(ctx context.Context, filters model.RecordFilters) ([]model.MedicalRecord, error) {
	var out normalize.List[normalize.BackendRecord]
	q := newParams().
		setStr("status", string(filters.Status)).
		setStr("date", filters.Date).
		setInt("deptId", filters.DeptID).
		setInt("doctorId", filters.DoctorID).
		setBool("hasLab", filters.HasLab).
		setBool("hasImaging", filters.HasImaging).
		page(filters.Page, filters.PageSize, model.DefaultRecordPageSize)
	if err := r.c.do(ctx, http.MethodGet, "/records", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out.List, normalize.Record), nil
}

func (r *recordRepository) GetRecord(ctx context.Context, id string) (model.MedicalRecord, error) {
	var out normalize.BackendRecord
	if err := r.c.do(ctx, http.MethodGet, idPath("/records/%s", id), nil, nil, &out); err != nil {
		return model.MedicalRecord{}, err
	}
	return normalize.Record(out), nil
}

func (r *recordRepository) CreateRecord(ctx context.Context, req model.CreateRecordRequest) (model.MedicalRecord, error) {
	var out normalize.BackendRecord
	if err := r.c.do(ctx, http.MethodPost, "/records", nil, normalize.CreateRecordPayload(req), &out); err != nil {
		return model.MedicalRecord{}, err
	}
	return normalize.Record(out), nil
}

func (r *recordRepository) UpdateRecord(ctx context.Context, id string, req model.UpdateRecordRequest) (model.MedicalRecord, error) {
	var out normalize.BackendRecord
	if err := r.c.do(ctx, http.MethodPut, idPath("/records/%s", id), nil, normalize.UpdateRecordPayload(req), &out); err != nil {
		return model.MedicalRecord{}, err
	}
	return normalize.Record(out), nil
}

// UpdateRecordStatus pre-reads the record to check the transition. The
// backend answers the PATCH with only the id and new status, so the result
// is the pre-read record carrying that status.
func (r *recordRepository) UpdateRecordStatus(ctx context.Context, id string, status model.RecordStatus) (model.MedicalRecord, error) {
	current, err := r.GetRecord(ctx, id)
	if err != nil {
		return model.MedicalRecord{}, err
	}
	if err := lifecycle.Apply(lifecycle.Record, current.Status, status); err != nil {
		return model.MedicalRecord{}, err
	}
	var out normalize.StatusPayload
	path := idPath("/records/%s", id) + "/status"
	if err := r.c.do(ctx, http.MethodPatch, path, nil, normalize.StatusPayload{Status: string(status)}, &out); err != nil {
		return model.MedicalRecord{}, err
	}
	current.Status = status
	if out.Status != "" {
		current.Status = normalize.RecordStatus(out.Status)
	}
	return current, nil
}

// Templates

func (r *recordRepository) ListTemplates(ctx context.Context) ([]model.RecordTemplate, error) {
	var out []normalize.BackendTemplate
	if err := r.c.do(ctx, http.MethodGet, "/record-templates", nil, nil, &out); err != nil {
		return nil, err
	}
	return normalize.Map(out, normalize.Template), nil
}

func (r *recordRepository) GetTemplate(ctx context.Context, id int64) (model.RecordTemplate, error) {
	var out normalize.BackendTemplate
	if err := r.c.do(ctx, http.MethodGet, idPath("/record-templates/%s", id), nil, nil, &out); err != nil {
		return model.RecordTemplate{}, err
	}
	return normalize.Template(out), nil
}

func (r *recordRepository) CreateTemplate(ctx context.Context, req model.CreateTemplateRequest) (model.RecordTemplate, error) {
	var out normalize.BackendTemplate
	if err := r.c.do(ctx, http.MethodPost, "/record-templates", nil, normalize.CreateTemplatePayload(req), &out); err != nil {
		return model.RecordTemplate{}, err
	}
	return normalize.Template(out), nil
}

func (r *recordRepository) UpdateTemplate(ctx context.Context, id int64, req model.UpdateTemplateRequest) (model.RecordTemplate, error) {
	var out normalize.BackendTemplate
	if err := r.c.do(ctx, http.MethodPut, idPath("/record-templates/%s", id), nil, normalize.UpdateTemplatePayload(req), &out); err != nil {
		return model.RecordTemplate{}, err
	}
	return normalize.Template(out), nil
}

func (r *recordRepository) DeleteTemplate(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodDelete, idPath("/record-templates/%s", id), nil, nil, nil)
}

// Dictionaries

func (r *recordRepository) Dictionaries(ctx context.Context) (model.Dictionaries, error) {
	if r.cache != nil {
		if v, ok := r.cache.Get(dictionaryCacheKey); ok {
			r.c.cacheLookup(dictionaryCacheKey, true)
			return v.(model.Dictionaries).Clone(), nil
		}
		r.c.cacheLookup(dictionaryCacheKey, false)
	}
	var out *model.Dictionaries
	if err := r.c.do(ctx, http.MethodGet, "/records/dictionaries", nil, nil, &out); err != nil {
		return model.Dictionaries{}, err
	}
	d := normalize.Dictionaries(out)
	if r.cache != nil {
		r.cache.SetDefault(dictionaryCacheKey, d.Clone())
	}
	return d, nil
}

func (r *recordRepository) ImagingDictionary(ctx context.Context) ([]string, error) {
	return r.dictionary(ctx, "/records/dictionaries/imaging", func(d model.Dictionaries) []string { return d.Imaging })
}

func (r *recordRepository) LabDictionary(ctx context.Context) ([]string, error) {
	return r.dictionary(ctx, "/records/dictionaries/labs", func(d model.Dictionaries) []string { return d.Labs })
}

// dictionary serves one list from the cached pair when present.
func (r *recordRepository) dictionary(ctx context.Context, path string, pick func(model.Dictionaries) []string) ([]string, error) {
	if r.cache != nil {
		if v, ok := r.cache.Get(dictionaryCacheKey); ok {
			r.c.cacheLookup(dictionaryCacheKey, true)
			return normalize.Strings(pick(v.(model.Dictionaries))), nil
		}
	}
	var out []string
	if err := r.c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return normalize.Strings(out), nil
}

// Patients

func (r *recordRepository) ListPatients(ctx context.Context, filters model.PatientFilters) (httputil.Page[model.Patient], error) {
	var out normalize.List[normalize.BackendPatient]
	page := filters.Pagination.WithDefaults(model.DefaultPatientPageSize)
	q := newParams().setStr("name", filters.Name).page(page.Page, page.PageSize, model.DefaultPatientPageSize)
	if err := r.c.do(ctx, http.MethodGet, "/patients", q.values(), nil, &out); err != nil {
		return httputil.Page[model.Patient]{}, err
	}
	res := httputil.Page[model.Patient]{
		List:     normalize.Map(out.List, normalize.Patient),
		Total:    out.Total,
		Page:     out.Page,
		PageSize: out.PageSize,
	}
	if res.Page == 0 {
		res.Page = page.Page
	}
	if res.PageSize == 0 {
		res.PageSize = page.PageSize
	}
	return res, nil
}

func (r *recordRepository) GetPatient(ctx context.Context, id int64) (model.Patient, error) {
	var out normalize.BackendPatient
	if err := r.c.do(ctx, http.MethodGet, idPath("/patients/%s", id), nil, nil, &out); err != nil {
		return model.Patient{}, err
	}
	return normalize.Patient(out), nil
}
