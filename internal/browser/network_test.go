package browser

import (
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/go-rod/rod/lib/proto"

	"github.com/pfrederiksen/timebox/internal/capture"
)

const searchURL = "https://portal.example.ac.kr/select_rqM0_F0.do"

const searchBody = `{"dlt_rsM0_F0": [{"SBJT_NM": "자료구조", "OPEN_DCLSS": "01", "TIME": "월09:00~10:30"}]}`

// fakeBodies serves response bodies by request ID and records each read.
type fakeBodies struct {
	mu     sync.Mutex
	bodies map[proto.NetworkRequestID]string
	err    error
	reads  []proto.NetworkRequestID
}

func (f *fakeBodies) ResponseBody(id proto.NetworkRequestID) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, id)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.bodies[id]), nil
}

type batchSink struct {
	batches []capture.Batch
}

func (s *batchSink) add(b capture.Batch) {
	s.batches = append(s.batches, b)
}

func newTracker(bodies *fakeBodies) (*responseTracker, *batchSink) {
	sink := &batchSink{}
	ic := capture.NewInterceptor(capture.Config{}, sink.add)
	return newResponseTracker(ic, bodies), sink
}

func TestResponseTracker_InspectsMatchingResponseOnce(t *testing.T) {
	bodies := &fakeBodies{bodies: map[proto.NetworkRequestID]string{"7": searchBody}}
	tr, sink := newTracker(bodies)

	tr.responseReceived("7", searchURL)
	tr.loadingFinished("7")
	tr.loadingFinished("7")

	if len(sink.batches) != 1 || sink.batches[0].Len() != 1 {
		t.Fatalf("batches = %+v, want one batch with one record", sink.batches)
	}
	if len(bodies.reads) != 1 {
		t.Errorf("body read %d times, want 1", len(bodies.reads))
	}
}

func TestResponseTracker_IgnoresOtherURLs(t *testing.T) {
	bodies := &fakeBodies{bodies: map[proto.NetworkRequestID]string{"1": searchBody}}
	tr, sink := newTracker(bodies)

	tr.responseReceived("1", "https://portal.example.ac.kr/select_menu.do")
	tr.loadingFinished("1")
	tr.loadingFinished("2")

	if len(bodies.reads) != 0 {
		t.Errorf("read bodies %v for requests that were not searches", bodies.reads)
	}
	if len(sink.batches) != 0 {
		t.Errorf("batches = %d, want 0", len(sink.batches))
	}
}

func TestResponseTracker_BodyUnavailable(t *testing.T) {
	bodies := &fakeBodies{err: errors.New("No resource with given identifier found")}
	tr, sink := newTracker(bodies)

	tr.responseReceived("3", searchURL)
	tr.loadingFinished("3")

	if len(sink.batches) != 0 {
		t.Errorf("batches = %d, want 0", len(sink.batches))
	}
	if len(tr.pending) != 0 {
		t.Errorf("pending = %v, want empty", tr.pending)
	}
}

func TestResponseTracker_LoadingFailed(t *testing.T) {
	bodies := &fakeBodies{bodies: map[proto.NetworkRequestID]string{"4": searchBody}}
	tr, sink := newTracker(bodies)

	tr.responseReceived("4", searchURL)
	tr.loadingFailed("4")
	tr.loadingFinished("4")

	if len(bodies.reads) != 0 || len(sink.batches) != 0 {
		t.Errorf("failed request was inspected: reads=%v batches=%d", bodies.reads, len(sink.batches))
	}
}

func TestResponseTracker_InterleavedRequests(t *testing.T) {
	bodies := &fakeBodies{bodies: map[proto.NetworkRequestID]string{
		"a": searchBody,
		"b": `{"dlt_rsM0_F0": []}`,
	}}
	tr, sink := newTracker(bodies)

	tr.responseReceived("a", searchURL)
	tr.responseReceived("b", searchURL+"?page=2")
	tr.loadingFinished("b")
	tr.loadingFinished("a")

	if len(sink.batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(sink.batches))
	}
	if sink.batches[0].Len() != 0 || sink.batches[1].Len() != 1 {
		t.Errorf("batches out of completion order: %d, %d records", sink.batches[0].Len(), sink.batches[1].Len())
	}
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		base64  bool
		want    string
		wantErr bool
	}{
		{name: "plain", body: searchBody, want: searchBody},
		{name: "base64", body: base64.StdEncoding.EncodeToString([]byte(searchBody)), base64: true, want: searchBody},
		{name: "bad base64", body: "%%%", base64: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBody(tt.body, tt.base64)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeBody() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Errorf("decodeBody() = %q, want %q", got, tt.want)
			}
		})
	}
}
