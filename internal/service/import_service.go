package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"terroir/internal/config"
	"terroir/internal/domain"
	"terroir/internal/dossier"
	"terroir/internal/importer"
	"terroir/internal/metrics"
	"terroir/internal/port"
	"terroir/internal/sanitizer"
	"terroir/internal/validator"
)

// Operation names used as the metrics mode label.
const (
	modeSanitize = "sanitize"
	modePreview  = "preview"
	modeCommit   = "commit"
	modeDraft    = "draft"
)

// PreviewInput is the DTO for a dry-run import.
type PreviewInput struct {
	Raw     string
	Targets *dossier.Targets
	Strict  bool
}

// CommitInput is the DTO for an import that persists on success.
type CommitInput struct {
	Raw     string
	Targets *dossier.Targets
	Strict  bool
	Actor   string
}

// DraftInput is the DTO for asking a research assistant to write a dossier.
type DraftInput struct {
	Territory string
	Notes     string
	Targets   *dossier.Targets
	Strict    bool
	Actor     string
}

// SanitizeResult is the repaired text with the passes that changed it.
type SanitizeResult struct {
	Sanitized string           `json:"sanitized"`
	Extracted bool             `json:"extracted"`
	Steps     []sanitizer.Step `json:"steps"`
}

// CommitResult describes what a commit did. Committed is false when the
// document failed validation; Preview then carries the diagnostics.
type CommitResult struct {
	Committed      bool                  `json:"committed"`
	Record         *domain.DossierRecord `json:"record,omitempty"`
	Preview        *importer.Preview     `json:"preview"`
	ArchiveKey     string                `json:"archive_key,omitempty"`
	IntegrityError string                `json:"integrity_error,omitempty"`
}

// DraftResult is an assistant answer together with its preview.
type DraftResult struct {
	Raw     string            `json:"raw"`
	Model   string            `json:"model"`
	Preview *importer.Preview `json:"preview"`
}

// ImportService defines the dossier import contract.
type ImportService interface {
	Sanitize(raw string) *SanitizeResult
	Preview(ctx context.Context, input *PreviewInput) (*importer.Preview, error)
	Commit(ctx context.Context, input *CommitInput) (*CommitResult, error)
	Draft(ctx context.Context, input *DraftInput) (*DraftResult, error)
	Rules() []validator.RuleInfo
	Get(ctx context.Context, targets dossier.Targets) (*domain.DossierRecord, error)
	History(ctx context.Context, targets dossier.Targets, offset, limit int) ([]domain.ImportAuditEntry, int, error)
}

type importService struct {
	pipeline  *importer.Pipeline
	dossiers  port.DossierRepository
	auditRepo port.ImportAuditRepository
	storage   port.ObjectStorage
	assistant port.DossierAssistant
	integrity port.IntegrityChecker
	metrics   *metrics.Metrics
	cfg       config.ImportConfig
	s3        config.S3Config
	now       func() time.Time
	logger    *slog.Logger
}

// NewImportService creates an ImportService. storage, assistant, integrity and
// m may be nil: archiving, drafting, post-commit checks and metrics are then
// skipped (drafting fails with domain.ErrAssistantUnavailable).
func NewImportService(
	pipeline *importer.Pipeline,
	dossiers port.DossierRepository,
	auditRepo port.ImportAuditRepository,
	storage port.ObjectStorage,
	assistant port.DossierAssistant,
	integrity port.IntegrityChecker,
	m *metrics.Metrics,
	importCfg config.ImportConfig,
	s3Cfg config.S3Config,
) ImportService {
	return &importService{
		pipeline:  pipeline,
		dossiers:  dossiers,
		auditRepo: auditRepo,
		storage:   storage,
		assistant: assistant,
		integrity: integrity,
		metrics:   m,
		cfg:       importCfg,
		s3:        s3Cfg,
		now:       time.Now,
		logger:    slog.Default().With("component", "importService"),
	}
}

func (s *importService) Sanitize(raw string) *SanitizeResult {
	start := time.Now()
	payload, extracted := sanitizer.ExtractPayload(raw)
	text, steps := sanitizer.SanitizeWithReport(payload)
	if steps == nil {
		steps = []sanitizer.Step{}
	}
	s.metrics.ObserveImport(modeSanitize, metrics.OutcomeOK, time.Since(start))
	return &SanitizeResult{Sanitized: text, Extracted: extracted, Steps: steps}
}

func (s *importService) Preview(ctx context.Context, input *PreviewInput) (*importer.Preview, error) {
	start := time.Now()
	pv, err := s.preview(input.Raw, input.Targets, input.Strict)
	if err != nil {
		s.metrics.ObserveImport(modePreview, metrics.OutcomeRejected, time.Since(start))
		s.logger.DebugContext(ctx, "preview rejected", "error", err)
		return nil, err
	}
	s.metrics.ObserveImport(modePreview, metrics.OutcomeOK, time.Since(start))
	return pv, nil
}

func (s *importService) preview(raw string, targets *dossier.Targets, strict bool) (*importer.Preview, error) {
	pv, err := s.pipeline.Preview(raw, validator.Options{
		Targets: targets,
		Strict:  s.cfg.Strict || strict,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObservePreview(pv)
	return pv, nil
}

func (s *importService) Commit(ctx context.Context, input *CommitInput) (*CommitResult, error) {
	start := time.Now()
	if input.Targets == nil || strings.TrimSpace(input.Targets.TerritoryID) == "" || strings.TrimSpace(input.Targets.DossierID) == "" {
		s.metrics.ObserveImport(modeCommit, metrics.OutcomeRejected, time.Since(start))
		return nil, domain.ErrTargetsRequired
	}
	targets := *input.Targets
	log := s.logger.With("territory_id", targets.TerritoryID, "dossier_id", targets.DossierID)

	pv, err := s.preview(input.Raw, &targets, input.Strict)
	if err != nil {
		s.metrics.ObserveImport(modeCommit, metrics.OutcomeRejected, time.Since(start))
		return nil, err
	}

	if !pv.Validation.Valid {
		log.InfoContext(ctx, "commit refused", "errors", len(pv.Validation.Errors))
		s.audit(ctx, targets, domain.ImportActionCommitRefused, input.Actor, "", pv)
		s.metrics.ObserveImport(modeCommit, metrics.OutcomeRefused, time.Since(start))
		return &CommitResult{Committed: false, Preview: pv}, nil
	}

	archiveKey, err := s.archive(ctx, targets, input.Raw)
	if err != nil {
		log.ErrorContext(ctx, "archiving raw import failed", "error", err)
		s.metrics.ObserveImport(modeCommit, metrics.OutcomeFailed, time.Since(start))
		return nil, fmt.Errorf("%w: %w", domain.ErrArchiveFailed, err)
	}

	record, err := s.dossiers.Save(ctx, targets, pv.Document, domain.Scores{
		Completeness: pv.Validation.CompletenessScore,
		Quality:      pv.Validation.QualityScore,
	})
	if err != nil {
		log.ErrorContext(ctx, "persisting dossier failed", "error", err)
		if archiveKey != "" {
			if delErr := s.storage.Delete(ctx, s.s3.Bucket, archiveKey); delErr != nil {
				log.WarnContext(ctx, "removing orphaned archive failed", "key", archiveKey, "error", delErr)
			}
		}
		s.metrics.ObserveImport(modeCommit, metrics.OutcomeFailed, time.Since(start))
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistFailed, err)
	}

	result := &CommitResult{Committed: true, Record: record, Preview: pv, ArchiveKey: archiveKey}
	if s.integrity != nil {
		if err := s.integrity.Check(ctx, targets); err != nil {
			log.WarnContext(ctx, "post-commit integrity check failed", "error", err)
			result.IntegrityError = err.Error()
		}
	}

	s.audit(ctx, targets, domain.ImportActionCommit, input.Actor, archiveKey, pv)
	s.metrics.ObserveImport(modeCommit, metrics.OutcomeCommitted, time.Since(start))
	log.InfoContext(ctx, "dossier committed", "revision", record.Revision, "completeness", record.CompletenessScore, "quality", record.QualityScore)
	return result, nil
}

// archive stores the raw text when archiving is enabled and returns its key.
func (s *importService) archive(ctx context.Context, targets dossier.Targets, raw string) (string, error) {
	if !s.cfg.ArchiveRaw || s.storage == nil {
		return "", nil
	}
	key := fmt.Sprintf("%s/%s/%s/%s-%s.txt",
		strings.Trim(s.s3.Prefix, "/"),
		targets.TerritoryID,
		targets.DossierID,
		s.now().UTC().Format("20060102T150405Z"),
		uuid.New(),
	)
	key = strings.TrimPrefix(key, "/")
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3.Bucket,
		Key:         key,
		Body:        strings.NewReader(raw),
		ContentType: "text/plain; charset=utf-8",
		Size:        int64(len(raw)),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *importService) Draft(ctx context.Context, input *DraftInput) (*DraftResult, error) {
	start := time.Now()
	if s.assistant == nil {
		s.metrics.ObserveImport(modeDraft, metrics.OutcomeFailed, time.Since(start))
		return nil, domain.ErrAssistantUnavailable
	}
	if strings.TrimSpace(input.Territory) == "" {
		s.metrics.ObserveImport(modeDraft, metrics.OutcomeRejected, time.Since(start))
		return nil, fmt.Errorf("%w: territory name", domain.ErrEmptyInput)
	}

	out, err := s.assistant.Draft(ctx, port.DraftInput{Territory: input.Territory, Notes: input.Notes})
	if err != nil {
		s.logger.ErrorContext(ctx, "assistant draft failed", "territory", input.Territory, "error", err)
		s.metrics.ObserveImport(modeDraft, metrics.OutcomeFailed, time.Since(start))
		if errors.Is(err, domain.ErrAssistantUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrAssistantUnavailable, err)
	}

	pv, err := s.preview(out.Text, input.Targets, input.Strict)
	if err != nil {
		s.metrics.ObserveImport(modeDraft, metrics.OutcomeRejected, time.Since(start))
		return nil, err
	}

	if input.Targets != nil {
		s.audit(ctx, *input.Targets, domain.ImportActionDraft, input.Actor, "", pv)
	}
	s.metrics.ObserveImport(modeDraft, metrics.OutcomeOK, time.Since(start))
	return &DraftResult{Raw: out.Text, Model: out.ModelUsed, Preview: pv}, nil
}

func (s *importService) Rules() []validator.RuleInfo {
	return s.pipeline.Rules()
}

func (s *importService) Get(ctx context.Context, targets dossier.Targets) (*domain.DossierRecord, error) {
	return s.dossiers.GetByTargets(ctx, targets)
}

func (s *importService) History(ctx context.Context, targets dossier.Targets, offset, limit int) ([]domain.ImportAuditEntry, int, error) {
	return s.auditRepo.ListByTargets(ctx, targets, offset, limit)
}

// audit records an import attempt. Failures are logged but never block the import.
func (s *importService) audit(ctx context.Context, targets dossier.Targets, action domain.ImportAction, actor, archiveKey string, pv *importer.Preview) {
	if s.auditRepo == nil {
		return
	}
	summary := domain.AuditSummary{
		Valid:             pv.Validation.Valid,
		Errors:            len(pv.Validation.Errors),
		Warnings:          len(pv.Validation.Warnings),
		Corrections:       len(pv.Corrections),
		CompletenessScore: pv.Validation.CompletenessScore,
		QualityScore:      pv.Validation.QualityScore,
		SanitizerSteps:    make([]string, 0, len(pv.Sanitized.Steps)),
	}
	for _, st := range pv.Sanitized.Steps {
		summary.SanitizerSteps = append(summary.SanitizerSteps, st.Name)
	}
	raw, _ := json.Marshal(summary)

	entry := &domain.ImportAuditEntry{
		ID:          uuid.New(),
		TerritoryID: targets.TerritoryID,
		DossierID:   targets.DossierID,
		Action:      action,
		Actor:       actor,
		ArchiveKey:  archiveKey,
		Summary:     raw,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to write import audit entry", "action", action, "error", err)
	}
}
