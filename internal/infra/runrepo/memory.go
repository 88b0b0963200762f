package runrepo

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
)

// MemoryRepository keeps runs in process memory for tests and local dev.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]summarizer.Run
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: make(map[uuid.UUID]summarizer.Run)}
}

// Create inserts a new run.
func (r *MemoryRepository) Create(_ context.Context, run summarizer.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	r.runs[run.ID] = run
	return nil
}

// Update replaces an existing run.
func (r *MemoryRepository) Update(_ context.Context, run summarizer.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[run.ID]; !exists {
		return fmt.Errorf("run %s not found", run.ID)
	}
	r.runs[run.ID] = run
	return nil
}

// Get fetches a run by id.
func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (summarizer.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	return run, ok, nil
}

var _ summarizer.RunRepository = (*MemoryRepository)(nil)
