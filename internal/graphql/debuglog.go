package graphql

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// DebugLog appends one JSON line per GraphQL call. Write failures are
// ignored; the log never affects a call's result.
type DebugLog struct {
	mu sync.Mutex
	w  io.Writer
}

func NewDebugLog(w io.Writer) *DebugLog {
	if w == nil {
		return nil
	}
	return &DebugLog{w: w}
}

type debugEntry struct {
	Time       time.Time      `json:"time"`
	RequestID  string         `json:"request_id"`
	Operation  string         `json:"operation"`
	Variables  map[string]any `json:"variables,omitempty"`
	Status     int            `json:"status,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
}

func (d *DebugLog) write(e debugEntry) {
	if d == nil {
		return
	}
	line, err := json.Marshal(e)
	if err != nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.w.Write(append(line, '\n'))
}
