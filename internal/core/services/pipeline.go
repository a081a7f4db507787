package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driving"
	"github.com/markz0r/M365PowerKit/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineRunner = (*PipelineService)(nil)

// parametersFile is the parameter snapshot written into each run's
// working directory.
const parametersFile = "parameters.txt"

// PipelineService sequences search, export, download and extract
// against one mailbox. It holds no durable state between runs; job
// names and disk artifacts carry everything needed to resume.
type PipelineService struct {
	search    driving.SearchCoordinator
	export    driving.ExportCoordinator
	transfer  driving.TransferService
	extractor driving.ArchiveExtractor
	runs      driven.RunStore
	baseDir   string
}

// NewPipelineService creates a new pipeline service. The run store is
// optional; with nil, runs are not recorded.
func NewPipelineService(
	search driving.SearchCoordinator,
	export driving.ExportCoordinator,
	transfer driving.TransferService,
	extractor driving.ArchiveExtractor,
	runs driven.RunStore,
	baseDir string,
) *PipelineService {
	return &PipelineService{
		search:    search,
		export:    export,
		transfer:  transfer,
		extractor: extractor,
		runs:      runs,
		baseDir:   baseDir,
	}
}

// Run executes the pipeline. Skips form a prefix: skipping a later
// stage implies skipping everything before it. On a stage failure the
// remaining stages are abandoned and the error names the stage and the
// entity in progress.
func (s *PipelineService) Run(ctx context.Context, req driving.PipelineRequest) (*driving.PipelineReport, error) {
	if req.SkipDownload {
		req.SkipExport = true
	}
	if req.SkipExport {
		req.SkipSearch = true
	}

	// 1. Validate before any remote call
	if err := s.validate(req); err != nil {
		return nil, domain.NewStageError(domain.StageValidate, req.JobName, err)
	}

	run := domain.RunRecord{
		ID:        uuid.NewString(),
		JobName:   req.JobName,
		Mailbox:   req.Mailbox,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now(),
	}

	report, err := s.runStages(ctx, req, &run)

	run.FinishedAt = time.Now()
	if err != nil {
		run.Status = domain.RunStatusFailed
		run.Error = err.Error()
		var stageErr *domain.StageError
		if errors.As(err, &stageErr) {
			run.FailedStage = stageErr.Stage
		}
	} else {
		run.Status = domain.RunStatusCompleted
	}
	s.record(ctx, run)

	return report, err
}

func (s *PipelineService) validate(req driving.PipelineRequest) error {
	if req.SkipSearch {
		if req.JobName == "" {
			return domain.ErrMissingJobName
		}
		return nil
	}
	if req.Mailbox == "" {
		return domain.ErrMissingMailbox
	}
	if req.NamingMode != "" && !req.NamingMode.IsValid() {
		return fmt.Errorf("%w: naming mode %q", domain.ErrInvalidInput, req.NamingMode)
	}
	return req.Query.Validate()
}

//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *PipelineService) runStages(ctx context.Context, req driving.PipelineRequest, run *domain.RunRecord) (*driving.PipelineReport, error) {
	// 2. Search: resolve the job identity. Predicate dedup may hand
	// back an earlier job's name, so the working directory can only be
	// created after this point.
	jobName := req.JobName
	query := ""
	if !req.SkipSearch {
		var err error
		query, err = domain.BuildQuery(req.Query, time.Now())
		if err != nil {
			return nil, domain.NewStageError(domain.StageValidate, jobName, err)
		}
		if jobName == "" {
			jobName = domain.SearchJobName(time.Now(), req.Mailbox, req.Query.Subject)
		}
		job, err := s.search.StartOrReuse(ctx, jobName, query, req.Mailbox)
		if err != nil {
			return nil, domain.NewStageError(domain.StageSearch, jobName, err)
		}
		jobName = job.Name
	}
	run.JobName = jobName
	run.Query = query

	// 3. Working directory and parameter snapshot
	baseDir := req.BaseDir
	if baseDir == "" {
		baseDir = s.baseDir
	}
	outputDir := filepath.Join(baseDir, jobName)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, domain.NewStageError(domain.StageValidate, jobName,
			fmt.Errorf("create working directory %s: %w", outputDir, err))
	}
	run.OutputDir = outputDir
	s.record(ctx, *run)

	if err := s.writeSnapshot(filepath.Join(outputDir, parametersFile), req, jobName, query); err != nil {
		return nil, domain.NewStageError(domain.StageValidate, jobName, err)
	}

	if !req.SkipSearch {
		if _, err := s.search.WaitForCompletion(ctx, jobName); err != nil {
			return nil, domain.NewStageError(domain.StageSearch, jobName, err)
		}
	}

	// 4. Export: request packaging, then wait until the transfer
	// descriptor can be read from the results blob
	exportName := domain.ExportName(jobName)
	if !req.SkipExport {
		export, err := s.export.Request(ctx, jobName)
		if err != nil {
			return nil, domain.NewStageError(domain.StageExport, jobName, err)
		}
		exportName = export.Name
	}

	var descriptor *domain.TransferDescriptor
	if !req.SkipDownload {
		var err error
		descriptor, err = s.export.WaitForDescriptor(ctx, exportName)
		if err != nil {
			return nil, domain.NewStageError(domain.StageExport, exportName, err)
		}
	}

	// 5. Download, or pick up archives a previous run left behind
	var archives []domain.DownloadedArchive
	if req.SkipDownload {
		var err error
		archives, err = reuseArchives(outputDir, jobName)
		if err != nil {
			return nil, domain.NewStageError(domain.StageDownload, jobName, err)
		}
		logger.Info("Reusing %d archive(s) already in %s", len(archives), outputDir)
	} else {
		var err error
		archives, err = s.transfer.Download(ctx, *descriptor, outputDir)
		if err != nil {
			return nil, domain.NewStageError(domain.StageDownload, descriptor.JobName, err)
		}
	}

	// 6. Extract each archive in turn; the first failure aborts
	results := make([]domain.ExtractionResult, 0, len(archives))
	for _, archive := range archives {
		result, err := s.extractor.ExtractAttachments(ctx, driving.ExtractRequest{
			ArchivePath:     archive.Path,
			OutputDir:       outputDir,
			ExtensionFilter: req.ExtensionFilter,
			NamingMode:      req.NamingMode,
		})
		if err != nil {
			return nil, domain.NewStageError(domain.StageExtract, filepath.Base(archive.Path), err)
		}
		results = append(results, *result)
	}

	return &driving.PipelineReport{
		JobName:     jobName,
		OutputDir:   outputDir,
		Archives:    archives,
		Extractions: results,
	}, nil
}

// reuseArchives lists archives already present under dir for a run that
// skips the download stage.
func reuseArchives(dir, jobName string) ([]domain.DownloadedArchive, error) {
	paths, err := findArchives(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, domain.ErrNoArchives)
	}

	archives := make([]domain.DownloadedArchive, 0, len(paths))
	for _, path := range paths {
		archive := domain.DownloadedArchive{
			Path:         path,
			OriginalName: filepath.Base(path),
			JobName:      jobName,
		}
		if info, err := os.Stat(path); err == nil {
			archive.Size = info.Size()
		}
		archives = append(archives, archive)
	}
	return archives, nil
}

// writeSnapshot records the run parameters next to the run's output so
// a later invocation can tell what produced the directory.
func (s *PipelineService) writeSnapshot(path string, req driving.PipelineRequest, jobName, query string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "job_name: %s\n", jobName)
	fmt.Fprintf(&b, "mailbox: %s\n", req.Mailbox)
	fmt.Fprintf(&b, "query: %s\n", query)
	fmt.Fprintf(&b, "extension_filter: %s\n", req.ExtensionFilter)
	fmt.Fprintf(&b, "naming_mode: %s\n", req.NamingMode)
	fmt.Fprintf(&b, "skip_search: %t\n", req.SkipSearch)
	fmt.Fprintf(&b, "skip_export: %t\n", req.SkipExport)
	fmt.Fprintf(&b, "skip_download: %t\n", req.SkipDownload)
	fmt.Fprintf(&b, "created: %s\n", time.Now().Format(time.RFC3339))

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", parametersFile, err)
	}
	return nil
}

// record persists the run's current state. History is observational;
// failures to write it never block the pipeline.
func (s *PipelineService) record(ctx context.Context, run domain.RunRecord) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Save(ctx, run); err != nil {
		logger.Warn("Could not record run %s: %v", run.ID, err)
	}
}
