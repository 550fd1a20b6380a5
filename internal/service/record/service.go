package record

import (
	"context"
	"time"

	"github.com/jwalitptl/clinic-console/internal/lifecycle"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/repository"
	"github.com/jwalitptl/clinic-console/internal/service"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
	"github.com/jwalitptl/clinic-console/pkg/identifier"
	"github.com/jwalitptl/clinic-console/pkg/validator"
)

type Service struct {
	repo  repository.RecordRepository
	valid validator.Validator
	obs   *service.Observer
}

func NewService(repo repository.RecordRepository, v validator.Validator, obs *service.Observer) *Service {
	return &Service{repo: repo, valid: v, obs: obs}
}

func (s *Service) ListRecords(ctx context.Context, filters model.RecordFilters) httputil.Envelope[[]model.MedicalRecord] {
	start := time.Now()
	if filters.Date != "" {
		if err := service.CheckField(s.valid, "date", filters.Date, "datetime=2006-01-02"); err != nil {
			return service.Reject[[]model.MedicalRecord](s.obs, "records.list", start, err)
		}
	}
	data, err := s.repo.ListRecords(ctx, filters)
	return service.Finish(s.obs, "records.list", start, data, err)
}

// GetRecord refuses malformed ids before asking the repository.
func (s *Service) GetRecord(ctx context.Context, id string) httputil.Envelope[model.MedicalRecord] {
	start := time.Now()
	if _, err := identifier.Parse(id); err != nil {
		return service.Reject[model.MedicalRecord](s.obs, "records.get", start, err)
	}
	data, err := s.repo.GetRecord(ctx, id)
	return service.Finish(s.obs, "records.get", start, data, err)
}

func (s *Service) CreateRecord(ctx context.Context, req model.CreateRecordRequest) httputil.Envelope[model.MedicalRecord] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.MedicalRecord](s.obs, "records.create", start, err)
	}
	data, err := s.repo.CreateRecord(ctx, req)
	return service.Finish(s.obs, "records.create", start, data, err)
}

func (s *Service) UpdateRecord(ctx context.Context, id string, req model.UpdateRecordRequest) httputil.Envelope[model.MedicalRecord] {
	start := time.Now()
	if _, err := identifier.Parse(id); err != nil {
		return service.Reject[model.MedicalRecord](s.obs, "records.update", start, err)
	}
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.MedicalRecord](s.obs, "records.update", start, err)
	}
	data, err := s.repo.UpdateRecord(ctx, id, req)
	return service.Finish(s.obs, "records.update", start, data, err)
}

func (s *Service) UpdateRecordStatus(ctx context.Context, id string, req model.UpdateRecordStatusRequest) httputil.Envelope[model.MedicalRecord] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.MedicalRecord](s.obs, "records.update_status", start, err)
	}
	data, err := s.repo.UpdateRecordStatus(ctx, id, req.Status)
	env := service.Finish(s.obs, "records.update_status", start, data, err)
	if env.OK() {
		s.obs.StatusChanged(ctx, lifecycle.Record, id, string(req.Status))
	}
	return env
}

// Templates

func (s *Service) ListTemplates(ctx context.Context) httputil.Envelope[[]model.RecordTemplate] {
	start := time.Now()
	data, err := s.repo.ListTemplates(ctx)
	return service.Finish(s.obs, "records.list_templates", start, data, err)
}

func (s *Service) GetTemplate(ctx context.Context, id int64) httputil.Envelope[model.RecordTemplate] {
	start := time.Now()
	data, err := s.repo.GetTemplate(ctx, id)
	return service.Finish(s.obs, "records.get_template", start, data, err)
}

func (s *Service) CreateTemplate(ctx context.Context, req model.CreateTemplateRequest) httputil.Envelope[model.RecordTemplate] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.RecordTemplate](s.obs, "records.create_template", start, err)
	}
	data, err := s.repo.CreateTemplate(ctx, req)
	return service.Finish(s.obs, "records.create_template", start, data, err)
}

func (s *Service) UpdateTemplate(ctx context.Context, id int64, req model.UpdateTemplateRequest) httputil.Envelope[model.RecordTemplate] {
	start := time.Now()
	if err := service.Check(s.valid, req); err != nil {
		return service.Reject[model.RecordTemplate](s.obs, "records.update_template", start, err)
	}
	data, err := s.repo.UpdateTemplate(ctx, id, req)
	return service.Finish(s.obs, "records.update_template", start, data, err)
}

func (s *Service) DeleteTemplate(ctx context.Context, id int64) httputil.Envelope[service.Done] {
	start := time.Now()
	err := s.repo.DeleteTemplate(ctx, id)
	return service.Finish(s.obs, "records.delete_template", start, service.Done{}, err)
}

// Dictionaries

func (s *Service) Dictionaries(ctx context.Context) httputil.Envelope[model.Dictionaries] {
	start := time.Now()
	data, err := s.repo.Dictionaries(ctx)
	return service.Finish(s.obs, "records.dictionaries", start, data, err)
}

func (s *Service) ImagingDictionary(ctx context.Context) httputil.Envelope[[]string] {
	start := time.Now()
	data, err := s.repo.ImagingDictionary(ctx)
	return service.Finish(s.obs, "records.imaging_dictionary", start, data, err)
}

func (s *Service) LabDictionary(ctx context.Context) httputil.Envelope[[]string] {
	start := time.Now()
	data, err := s.repo.LabDictionary(ctx)
	return service.Finish(s.obs, "records.lab_dictionary", start, data, err)
}

// Patients

func (s *Service) ListPatients(ctx context.Context, filters model.PatientFilters) httputil.Envelope[httputil.Page[model.Patient]] {
	start := time.Now()
	data, err := s.repo.ListPatients(ctx, filters)
	return service.Finish(s.obs, "records.list_patients", start, data, err)
}

func (s *Service) GetPatient(ctx context.Context, id int64) httputil.Envelope[model.Patient] {
	start := time.Now()
	data, err := s.repo.GetPatient(ctx, id)
	return service.Finish(s.obs, "records.get_patient", start, data, err)
}
