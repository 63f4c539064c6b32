package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/pfrederiksen/timebox/internal/capture"
	"github.com/pfrederiksen/timebox/internal/logger"
)

// BodyReader fetches the body of a response the page has finished loading.
type BodyReader interface {
	ResponseBody(id proto.NetworkRequestID) ([]byte, error)
}

// PageBodies reads response bodies from a page's network domain.
type PageBodies struct {
	Page *rod.Page
}

// ResponseBody implements BodyReader.
func (p PageBodies) ResponseBody(id proto.NetworkRequestID) ([]byte, error) {
	res, err := proto.NetworkGetResponseBody{RequestID: id}.Call(p.Page)
	if err != nil {
		return nil, err
	}
	return decodeBody(res.Body, res.Base64Encoded)
}

func decodeBody(body string, base64Encoded bool) ([]byte, error) {
	if !base64Encoded {
		return []byte(body), nil
	}
	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("decoding response body: %w", err)
	}
	return data, nil
}

// NetworkTransport lets an interceptor observe the page's API responses
// through the DevTools network events. Requests are never paused or
// re-issued: the page loads every response itself, with its own cookies,
// and the body of a matching one is read after it finishes loading.
type NetworkTransport struct {
	page *rod.Page

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ capture.Transport = (*NetworkTransport)(nil)

// NewNetworkTransport prepares page for observation.
func NewNetworkTransport(page *rod.Page) *NetworkTransport {
	return &NetworkTransport{page: page}
}

// Hook subscribes to the page's network events. A transport can be hooked
// once.
func (t *NetworkTransport) Hook(in capture.Inspector) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return errors.New("browser: network transport already hooked")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := t.page.Context(ctx)
	tracker := newResponseTracker(in, PageBodies{Page: p})

	wait := p.EachEvent(
		func(e *proto.NetworkResponseReceived) {
			if e.Response != nil {
				tracker.responseReceived(e.RequestID, e.Response.URL)
			}
		},
		func(e *proto.NetworkLoadingFinished) {
			// Body reads are CDP calls; keep them off the event loop.
			go tracker.loadingFinished(e.RequestID)
		},
		func(e *proto.NetworkLoadingFailed) {
			tracker.loadingFailed(e.RequestID)
		},
	)
	// EachEvent has already enabled the Network domain and subscribed.
	go wait()

	t.cancel = cancel
	return nil
}

// Close stops observing the page.
func (t *NetworkTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	return nil
}

// responseTracker pairs a matching response with its loading-finished event
// and hands the body to the inspector once.
type responseTracker struct {
	in     capture.Inspector
	bodies BodyReader

	mu      sync.Mutex
	pending map[proto.NetworkRequestID]string
}

func newResponseTracker(in capture.Inspector, bodies BodyReader) *responseTracker {
	return &responseTracker{
		in:      in,
		bodies:  bodies,
		pending: make(map[proto.NetworkRequestID]string),
	}
}

func (r *responseTracker) responseReceived(id proto.NetworkRequestID, url string) {
	if !r.in.Matches(url) {
		return
	}
	r.mu.Lock()
	r.pending[id] = url
	r.mu.Unlock()
}

func (r *responseTracker) loadingFinished(id proto.NetworkRequestID) {
	r.mu.Lock()
	url, ok := r.pending[id]
	delete(r.pending, id)
	r.mu.Unlock()
	if !ok {
		return
	}

	body, err := r.bodies.ResponseBody(id)
	if err != nil {
		logger.Warn("browser: reading response body failed", logger.Fields{
			"url":   url,
			"error": err.Error(),
		})
		return
	}
	r.in.Inspect(url, body)
}

func (r *responseTracker) loadingFailed(id proto.NetworkRequestID) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}
