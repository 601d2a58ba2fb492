package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"sidenote-sync-server/internal/github"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]interface{}
}

type cannedResponse struct {
	status int
	body   string
}

// fakeGitHub answers canned responses keyed by "METHOD /path" and records
// every request it receives. Unknown routes answer 500.
type fakeGitHub struct {
	t        *testing.T
	mu       sync.Mutex
	routes   map[string]cannedResponse
	requests []recordedRequest
	server   *httptest.Server
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{t: t, routes: make(map[string]cannedResponse)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGitHub) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = cannedResponse{status: status, body: body}
}

func (f *fakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec.Body); err != nil {
			f.t.Errorf("request body is not JSON: %v", err)
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	resp, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"unexpected request ` + r.Method + " " + r.URL.Path + `"}`))
		return
	}
	w.WriteHeader(resp.status)
	w.Write([]byte(resp.body))
}

func (f *fakeGitHub) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeGitHub) calls() []string {
	var out []string
	for _, r := range f.recorded() {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func (f *fakeGitHub) find(method, path string) (recordedRequest, bool) {
	for _, r := range f.recorded() {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return recordedRequest{}, false
}

func (f *fakeGitHub) remote() RemoteAPI {
	return f.factory()(context.Background(), "ghp_test")
}

func (f *fakeGitHub) factory() RemoteFactory {
	return GitHubRemoteFactory(github.WithBaseURL(f.server.URL), github.WithHTTPClient(f.server.Client()))
}
