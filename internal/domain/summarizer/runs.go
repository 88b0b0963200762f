package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
	"github.com/yanqian/ai-summarizer/pkg/util"
)

// JobSummarizeArticle is the queue job that executes a submitted run.
const JobSummarizeArticle = "summarize_article"

// RunService accepts articles for background summarization and tracks their runs.
type RunService struct {
	summarizer Service
	runs       RunRepository
	storage    ArticleStorage
	queue      JobQueue
	logger     *slog.Logger
}

// NewRunService wires the asynchronous run workflow.
func NewRunService(summarizer Service, runs RunRepository, storage ArticleStorage, queue JobQueue, logger *slog.Logger) *RunService {
	return &RunService{
		summarizer: summarizer,
		runs:       runs,
		storage:    storage,
		queue:      queue,
		logger:     logger.With("component", "summarizer.runs"),
	}
}

// Submit validates the request, stores the article, records a pending run and enqueues it.
func (s *RunService) Submit(ctx context.Context, req Request) (Run, error) {
	if err := ValidateRequest(req); err != nil {
		return Run{}, err
	}
	now := util.NowUTC()
	run := Run{
		ID:        uuid.New(),
		Title:     req.Title,
		Model:     req.Model,
		Status:    RunPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return Run{}, apperrors.Wrap(apperrors.CodeInvalidInput, "failed to encode article", err)
	}
	key := fmt.Sprintf("articles/%s.json", run.ID)
	obj, err := s.storage.Put(ctx, key, payload, "application/json")
	if err != nil {
		return Run{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store article", err)
	}
	run.StorageKey = obj.Key

	if err := s.runs.Create(ctx, run); err != nil {
		return Run{}, apperrors.Wrap(apperrors.CodeStorage, "failed to persist run", err)
	}

	if err := s.queue.Enqueue(ctx, JobSummarizeArticle, map[string]any{"run_id": run.ID.String()}); err != nil {
		s.logger.Warn("enqueue summarize_article failed", "run_id", run.ID, "error", err)
		run = s.fail(ctx, run, apperrors.Wrap(apperrors.CodeStorage, "failed to enqueue run", err))
		return run, apperrors.Wrap(apperrors.CodeStorage, "failed to enqueue run", err)
	}
	s.logger.Info("run submitted", "run_id", run.ID)
	return run, nil
}

// Get returns a run by id.
func (s *RunService) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	run, found, err := s.runs.Get(ctx, id)
	if err != nil {
		return Run{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load run", err)
	}
	if !found {
		return Run{}, apperrors.Wrap(apperrors.CodeNotFound, "run not found", nil)
	}
	return run, nil
}

// HandleJob is the queue handler for summarize_article jobs.
func (s *RunService) HandleJob(ctx context.Context, name string, payload map[string]any) {
	if name != JobSummarizeArticle {
		s.logger.Warn("unknown job ignored", "job", name)
		return
	}
	raw, _ := payload["run_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn("invalid run id in job payload", "run_id", raw, "error", err)
		return
	}
	if err := s.Process(ctx, id); err != nil {
		s.logger.Error("run failed", "run_id", id, "error", err)
	}
}

// Process executes one stored run to completion. Finished runs are left untouched.
func (s *RunService) Process(ctx context.Context, id uuid.UUID) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if run.Finished() {
		return nil
	}

	run.Status = RunRunning
	run.UpdatedAt = util.NowUTC()
	if err := s.runs.Update(ctx, run); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to update run", err)
	}

	req, err := s.loadRequest(ctx, run.StorageKey)
	if err != nil {
		s.fail(ctx, run, err)
		return err
	}

	resp, err := s.summarizer.Summarize(ctx, req)
	if err != nil {
		s.fail(ctx, run, err)
		return err
	}

	run.Status = RunSucceeded
	run.Summary = resp.Summary
	run.Model = resp.Model
	run.Chunks = resp.Chunks
	run.Usage = resp.Usage
	run.UpdatedAt = util.NowUTC()
	if err := s.runs.Update(ctx, run); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to persist run result", err)
	}
	s.logger.Info("run succeeded", "run_id", run.ID, "chunks", run.Chunks)
	return nil
}

func (s *RunService) loadRequest(ctx context.Context, key string) (Request, error) {
	body, err := s.storage.Get(ctx, key)
	if err != nil {
		return Request{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load article", err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return Request{}, apperrors.Wrap(apperrors.CodeStorage, "failed to read article", err)
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, apperrors.Wrap(apperrors.CodeStorage, "stored article malformed", err)
	}
	return req, nil
}

func (s *RunService) fail(ctx context.Context, run Run, cause error) Run {
	run.Status = RunFailed
	run.Error = cause.Error()
	run.ErrorCode = apperrors.CodeOf(cause)
	run.UpdatedAt = util.NowUTC()
	if err := s.runs.Update(ctx, run); err != nil {
		s.logger.Error("failed to record run failure", "run_id", run.ID, "error", err)
	}
	return run
}
