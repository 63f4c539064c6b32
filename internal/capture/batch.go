package capture

import (
	"encoding/json"

	"github.com/pfrederiksen/timebox/internal/course"
)

// Source names the path a batch was captured through.
type Source string

const (
	SourceNetwork Source = "network"
	SourceGrid    Source = "grid"
)

// TimestampFormat matches JavaScript's Date.toISOString.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Batch is one captured set of course records.
type Batch struct {
	ID         string          `json:"id"`
	Source     Source          `json:"source"`
	Records    []course.Record `json:"records"`
	Courses    []course.Course `json:"courses"`
	RawPayload json.RawMessage `json:"rawPayload,omitempty"`
	Timestamp  string          `json:"timestamp"`
}

// Len returns the number of raw records in the batch.
func (b Batch) Len() int {
	return len(b.Records)
}
