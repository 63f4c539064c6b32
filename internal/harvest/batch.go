package harvest

import (
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/timebox/internal/capture"
)

// Batch packages the result like a network capture so both paths feed the
// same arming window and exporter. Each record holds the row's raw cells.
func (r *Result) Batch(now time.Time) capture.Batch {
	return capture.Batch{
		ID:        uuid.NewString(),
		Source:    capture.SourceGrid,
		Records:   r.Records(),
		Courses:   append(r.Courses[:0:0], r.Courses...),
		Timestamp: now.UTC().Format(capture.TimestampFormat),
	}
}
