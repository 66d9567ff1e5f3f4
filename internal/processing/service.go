package processing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"

	"datalab-backend/internal/apiconfig"
	"datalab-backend/internal/chunker"
	"datalab-backend/internal/dimensions"
	"datalab-backend/internal/llm"
	"datalab-backend/internal/prompts"
	"datalab-backend/internal/shared/telemetry"
)

var (
	// ErrInvalidInput is returned for requests missing required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoChunkSucceeded marks a job where every chunk failed.
	ErrNoChunkSucceeded = errors.New("no chunk succeeded")
)

// Service orchestrates the chunked processing pipeline: split, per-chunk
// provider call, tolerant parse, progress publication, aggregation.
type Service struct {
	Prompts    prompts.Repo
	Dimensions dimensions.Repo
	Providers  *apiconfig.Service
	Store      StatusStore
	Pool       *ants.Pool

	// now is injectable for tests.
	now func() time.Time
}

// NewService constructs a Service.
func NewService(promptRepo prompts.Repo, dimRepo dimensions.Repo, providers *apiconfig.Service, store StatusStore, pool *ants.Pool) *Service {
	return &Service{
		Prompts:    promptRepo,
		Dimensions: dimRepo,
		Providers:  providers,
		Store:      store,
		Pool:       pool,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SubmitRequest is a request to process content.
type SubmitRequest struct {
	Content      string
	ProcessType  string
	DimensionIDs []int64
}

// Submit validates the request, resolves the prompt and provider, and
// starts the job on a pool worker. It returns the job key immediately; the
// caller polls Status for progress. Configuration and validation problems
// are reported here, before any work begins.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	req.ProcessType = strings.ToLower(strings.TrimSpace(req.ProcessType))
	if strings.TrimSpace(req.Content) == "" {
		return "", fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if req.ProcessType != TypeCleaning && req.ProcessType != TypeLabeling {
		return "", fmt.Errorf("%w: process_type must be cleaning or labeling", ErrInvalidInput)
	}
	if len(req.DimensionIDs) == 0 {
		return "", fmt.Errorf("%w: dimensions are required", ErrInvalidInput)
	}

	client, _, err := s.Providers.ActiveClient(ctx)
	if err != nil {
		return "", err
	}

	prompt, err := s.Prompts.Default(ctx, req.ProcessType)
	if err != nil {
		return "", fmt.Errorf("resolve %s prompt: %w", req.ProcessType, err)
	}

	names, err := s.Dimensions.NamesByIDs(ctx, req.ProcessType, req.DimensionIDs)
	if err != nil {
		return "", fmt.Errorf("resolve dimensions: %w", err)
	}

	key := NewJobKey()
	systemPrompt := buildSystemPrompt(prompt, names)
	jobCtx := backgroundWithRequestID(ctx)

	run := func() {
		s.run(jobCtx, key, client, systemPrompt, req.ProcessType, req.Content)
	}
	if s.Pool != nil {
		if err := s.Pool.Submit(run); err != nil {
			return "", fmt.Errorf("submit job: %w", err)
		}
	} else {
		go run()
	}
	return key, nil
}

// Status returns the current snapshot for a job key. An absent key reads as
// still processing, which absorbs publication lag between accept and the
// first snapshot write.
func (s *Service) Status(ctx context.Context, key string) (Snapshot, error) {
	value, found, err := s.Store.Get(ctx, key)
	if err != nil {
		return Snapshot{}, err
	}
	if !found {
		return Snapshot{Status: StatusProcessing, Timestamp: s.now()}, nil
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(value), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// run executes one job to completion. Chunk iteration is strictly
// sequential so snapshots are written in chunk order; a chunk failure is
// logged and skipped rather than aborting the job.
func (s *Service) run(ctx context.Context, key string, client llm.Client, systemPrompt, processType, content string) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("processing.panic", map[string]any{
				"request_id":     requestIDFromContext(ctx),
				"processing_key": key,
				"panic":          fmt.Sprint(r),
			})
			s.publish(ctx, key, Snapshot{
				Status:      StatusFailed,
				ProcessType: processType,
				Error:       "internal error",
				Timestamp:   s.now(),
			})
		}
	}()

	chunks := chunker.Split(content, MaxChunkChars)
	total := len(chunks)
	telemetry.Info("processing.started", map[string]any{
		"request_id":     requestIDFromContext(ctx),
		"processing_key": key,
		"process_type":   processType,
		"chunks_total":   total,
	})

	var results []any
	failed := 0
	for i, chunk := range chunks {
		messages := []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: chunk.Text},
		}

		reply, err := client.ChatCompletion(ctx, messages, processType)
		if err != nil {
			failed++
			telemetry.Warn("processing.chunk_failed", map[string]any{
				"request_id":     requestIDFromContext(ctx),
				"processing_key": key,
				"chunk_index":    i,
				"error":          err.Error(),
			})
		} else if parsed, perr := Parse(reply); perr != nil {
			failed++
			telemetry.Warn("processing.chunk_unparseable", map[string]any{
				"request_id":     requestIDFromContext(ctx),
				"processing_key": key,
				"chunk_index":    i,
				"error":          perr.Error(),
			})
		} else {
			results = append(results, parsed)
		}

		s.publish(ctx, key, Snapshot{
			Status:         StatusProcessing,
			Progress:       100 * float64(i+1) / float64(total),
			ProcessType:    processType,
			PartialResults: results,
			ChunksTotal:    total,
			ChunksFailed:   failed,
			Timestamp:      s.now(),
		})
	}

	if len(results) == 0 {
		telemetry.Error("processing.failed", map[string]any{
			"request_id":     requestIDFromContext(ctx),
			"processing_key": key,
			"chunks_total":   total,
		})
		s.publish(ctx, key, Snapshot{
			Status:       StatusFailed,
			ProcessType:  processType,
			Error:        ErrNoChunkSucceeded.Error(),
			ChunksTotal:  total,
			ChunksFailed: failed,
			Timestamp:    s.now(),
		})
		return
	}

	telemetry.Info("processing.completed", map[string]any{
		"request_id":     requestIDFromContext(ctx),
		"processing_key": key,
		"chunks_total":   total,
		"chunks_failed":  failed,
	})
	s.publish(ctx, key, Snapshot{
		Status:       StatusCompleted,
		Progress:     100,
		ProcessType:  processType,
		Result:       results,
		ChunksTotal:  total,
		ChunksFailed: failed,
		Timestamp:    s.now(),
	})
}

func (s *Service) publish(ctx context.Context, key string, snap Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		telemetry.Error("processing.snapshot_marshal", map[string]any{
			"processing_key": key,
			"error":          err.Error(),
		})
		return
	}
	if err := s.Store.Set(ctx, key, string(payload), SnapshotTTL); err != nil {
		telemetry.Error("processing.snapshot_write", map[string]any{
			"processing_key": key,
			"error":          err.Error(),
		})
	}
}

// buildSystemPrompt appends the selected dimension names, and for labeling
// the expected reply schema, to the stored prompt content.
func buildSystemPrompt(prompt prompts.SystemPrompt, names []string) string {
	var b strings.Builder
	b.WriteString(prompt.Content)
	if len(names) > 0 {
		b.WriteString("\n\nDimensions:\n")
		for _, name := range names {
			b.WriteString("- ")
			b.WriteString(name)
			b.WriteString("\n")
		}
	}
	if prompt.JSONSchema != "" {
		b.WriteString("\nReply with JSON shaped like:\n")
		b.WriteString(prompt.JSONSchema)
	}
	return b.String()
}
