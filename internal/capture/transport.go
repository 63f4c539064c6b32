package capture

import (
	"bytes"
	"io"
	"net/http"
)

// ClientTransport hooks an *http.Client by wrapping its RoundTripper. The
// caller receives each response as it would have without the hook.
type ClientTransport struct {
	client *http.Client
}

// NewClientTransport prepares c for installation.
func NewClientTransport(c *http.Client) *ClientTransport {
	return &ClientTransport{client: c}
}

// Hook wraps the client's RoundTripper. A client already wrapped is left
// alone.
func (t *ClientTransport) Hook(in Inspector) error {
	if _, wrapped := t.client.Transport.(*inspectingTransport); wrapped {
		return nil
	}
	next := t.client.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	t.client.Transport = &inspectingTransport{next: next, in: in}
	return nil
}

// WrapRoundTripper returns next with in applied, for callers that build
// their own clients.
func WrapRoundTripper(next http.RoundTripper, in Inspector) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &inspectingTransport{next: next, in: in}
}

type inspectingTransport struct {
	next http.RoundTripper
	in   Inspector
}

func (t *inspectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil || resp == nil || resp.Body == nil {
		return resp, err
	}

	url := req.URL.String()
	if !t.in.Matches(url) {
		return resp, nil
	}

	data, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		// Hand back what was read followed by the same failure.
		resp.Body = io.NopCloser(io.MultiReader(bytes.NewReader(data), errReader{readErr}))
		return resp, nil
	}

	resp.Body = io.NopCloser(bytes.NewReader(data))
	t.in.Inspect(url, data)
	return resp, nil
}

type errReader struct {
	err error
}

func (r errReader) Read([]byte) (int, error) {
	return 0, r.err
}
