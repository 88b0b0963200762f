package summarizer

import (
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/ai-summarizer/pkg/metrics"
)

// Config configures the summarization run defaults.
type Config struct {
	SummaryLengthWords int
	Temperature        float32
	Model              string
	Profiles           ProfileRegistry
}

// Article is the immutable input of a run.
type Article struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// Request represents the incoming summarization payload.
type Request struct {
	Title              string   `json:"title,omitempty"`
	Text               string   `json:"text"`
	SummaryLengthWords int      `json:"summaryLengthWords,omitempty"`
	Temperature        *float32 `json:"temperature,omitempty"`
	Model              string   `json:"model,omitempty"`
}

// Response is returned once the final completion call finishes.
type Response struct {
	Summary    string           `json:"summary"`
	Chunks     int              `json:"chunks"`
	Model      string           `json:"model"`
	DurationMs int64            `json:"durationMs,omitempty"`
	Usage      metrics.RunUsage `json:"usage"`
}

// RunStatus tracks the lifecycle of an asynchronous run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is the persisted record of an asynchronous summarization.
type Run struct {
	ID         uuid.UUID        `json:"runId"`
	Title      string           `json:"title,omitempty"`
	Model      string           `json:"model"`
	Status     RunStatus        `json:"status"`
	StorageKey string           `json:"-"`
	Summary    string           `json:"summary,omitempty"`
	Error      string           `json:"error,omitempty"`
	ErrorCode  string           `json:"errorCode,omitempty"`
	Chunks     int              `json:"chunks"`
	Usage      metrics.RunUsage `json:"usage"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// Finished reports whether the run reached a terminal state.
func (r Run) Finished() bool {
	return r.Status == RunSucceeded || r.Status == RunFailed
}
