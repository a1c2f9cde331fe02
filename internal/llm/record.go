package llm

import (
	"context"
	"time"
)

// CallRecord captures one structured inference call for the run history.
type CallRecord struct {
	RunID     string
	Flow      string
	Stage     string
	Model     string
	StartedAt time.Time
	Duration  time.Duration
	Status    string
	Payload   []byte
}

// Recorder persists call records. Implementations must tolerate a nil
// payload for failed calls.
type Recorder interface {
	Record(ctx context.Context, rec CallRecord) error
}
