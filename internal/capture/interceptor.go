package capture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/timebox/internal/course"
	"github.com/pfrederiksen/timebox/internal/logger"
)

const (
	DefaultEndpointMarker = "select_rqM0_F0"
	DefaultFieldKey       = "dlt_rsM0_F0"
)

// ErrCaptureParse marks a matching response whose body could not be used.
var ErrCaptureParse = errors.New("capture: unusable response body")

// Config selects the target endpoint and the field holding its records.
type Config struct {
	EndpointMarker string
	FieldKey       string
}

// Inspector is what a Transport reports completed responses to.
type Inspector interface {
	// Matches reports whether responses for url should be inspected.
	Matches(url string) bool
	// Inspect examines a response body. It never fails the request.
	Inspect(url string, body []byte)
}

// Transport is a request primitive the interceptor can wrap.
type Transport interface {
	// Hook routes completed responses through in. It is called at most once
	// per Transport by Interceptor.Install.
	Hook(in Inspector) error
}

// Interceptor turns matching API responses into Batches.
type Interceptor struct {
	cfg  Config
	sink func(Batch)
	now  func() time.Time

	mu        sync.Mutex
	installed map[Transport]bool
}

// NewInterceptor creates an interceptor that hands every captured batch to
// sink. Empty config fields fall back to the portal defaults.
func NewInterceptor(cfg Config, sink func(Batch)) *Interceptor {
	if cfg.EndpointMarker == "" {
		cfg.EndpointMarker = DefaultEndpointMarker
	}
	if cfg.FieldKey == "" {
		cfg.FieldKey = DefaultFieldKey
	}
	return &Interceptor{
		cfg:       cfg,
		sink:      sink,
		now:       time.Now,
		installed: make(map[Transport]bool),
	}
}

// Install hooks t once. Installing the same transport again is a no-op.
func (ic *Interceptor) Install(t Transport) error {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if ic.installed[t] {
		return nil
	}
	if err := t.Hook(ic); err != nil {
		return fmt.Errorf("installing interceptor: %w", err)
	}
	ic.installed[t] = true
	logger.Debug("capture: interceptor installed", logger.Fields{"transport": fmt.Sprintf("%T", t)})
	return nil
}

// Matches reports whether url contains the endpoint marker.
func (ic *Interceptor) Matches(url string) bool {
	return strings.Contains(url, ic.cfg.EndpointMarker)
}

// Inspect parses a matching response and emits a Batch. Non-matching URLs
// are ignored; unusable bodies are logged and dropped.
func (ic *Interceptor) Inspect(url string, body []byte) {
	if !ic.Matches(url) {
		return
	}

	batch, err := ic.parse(body)
	if err != nil {
		logger.IncrCounter("capture.parse_errors")
		logger.Warn("capture: discarding response", logger.Fields{
			"url":   url,
			"error": err.Error(),
		})
		return
	}

	logger.IncrCounter("capture.batches")
	logger.Info("capture: batch captured", logger.Fields{
		"url":     url,
		"records": batch.Len(),
		"batch":   batch.ID,
	})
	if ic.sink != nil {
		ic.sink(batch)
	}
}

func (ic *Interceptor) parse(body []byte) (Batch, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return Batch{}, fmt.Errorf("%w: %v", ErrCaptureParse, err)
	}

	field, ok := payload[ic.cfg.FieldKey]
	if !ok {
		return Batch{}, fmt.Errorf("%w: missing field %q", ErrCaptureParse, ic.cfg.FieldKey)
	}
	if trimmed := bytes.TrimSpace(field); len(trimmed) == 0 || trimmed[0] != '[' {
		return Batch{}, fmt.Errorf("%w: field %q is not an array", ErrCaptureParse, ic.cfg.FieldKey)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(field, &elems); err != nil {
		return Batch{}, fmt.Errorf("%w: field %q: %v", ErrCaptureParse, ic.cfg.FieldKey, err)
	}

	// Any array is accepted. Only object elements become records; the rest
	// stay in RawPayload.
	records := make([]course.Record, 0, len(elems))
	skipped := 0
	for _, elem := range elems {
		var r course.Record
		if trimmed := bytes.TrimSpace(elem); len(trimmed) == 0 || trimmed[0] != '{' {
			skipped++
			continue
		}
		if err := json.Unmarshal(elem, &r); err != nil {
			skipped++
			continue
		}
		records = append(records, r)
	}
	if skipped > 0 {
		logger.AddCounter("capture.non_object_elements", int64(skipped))
		logger.Debug("capture: non-object elements kept only in the raw payload", logger.Fields{
			"skipped": skipped,
		})
	}

	return Batch{
		ID:         uuid.NewString(),
		Source:     SourceNetwork,
		Records:    records,
		Courses:    course.FromRecords(records),
		RawPayload: append(json.RawMessage(nil), body...),
		Timestamp:  ic.now().UTC().Format(TimestampFormat),
	}, nil
}
