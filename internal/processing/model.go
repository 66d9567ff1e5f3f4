package processing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job statuses. A job is created as processing and ends completed or failed.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Process types accepted by the pipeline.
const (
	TypeCleaning = "cleaning"
	TypeLabeling = "labeling"
)

// MaxChunkChars bounds each chunk sent to the provider, in characters.
const MaxChunkChars = 3072

// SnapshotTTL is how long job snapshots stay readable after the last write.
const SnapshotTTL = 3600 * time.Second

// Snapshot is the externally visible state of a processing job. It is
// written to the status store after every chunk and read back by pollers.
type Snapshot struct {
	Status         string    `json:"status"`
	Progress       float64   `json:"progress"`
	ProcessType    string    `json:"process_type,omitempty"`
	PartialResults []any     `json:"partial_results,omitempty"`
	Result         []any     `json:"result,omitempty"`
	Error          string    `json:"error,omitempty"`
	ChunksTotal    int       `json:"chunks_total,omitempty"`
	ChunksFailed   int       `json:"chunks_failed,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// StatusStore is the key-value store snapshots are published through.
// Implementations must be safe for concurrent use; per-key last-write-wins
// is sufficient.
type StatusStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
}

// NewJobKey returns an opaque job key. The unix timestamp keeps keys
// human-sortable in the store; the uuid fragment keeps them unique.
func NewJobKey() string {
	return fmt.Sprintf("process_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
}
