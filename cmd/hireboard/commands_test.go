package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu      sync.Mutex
	created []map[string]any
	reorder []map[string]int
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/jobs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[`+
			`{"id":"job-1","title":"Backend Engineer","slug":"backend-engineer","status":"active","order":0,"tags":["go"]},`+
			`{"id":"job-2","title":"Designer","slug":"designer","status":"archived","order":1}]}`)
	})
	mux.HandleFunc("POST /api/jobs", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["title"] == "Dup" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"success":false,"error":"validation","message":"title already used"}`)
			return
		}
		f.mu.Lock()
		f.created = append(f.created, body)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": body})
	})
	mux.HandleFunc("PATCH /api/jobs/reorder", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.reorder = append(f.reorder, body)
		f.mu.Unlock()
		fmt.Fprint(w, `{"success":true}`)
	})
	mux.HandleFunc("GET /api/candidates", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[{"id":"cand-1","name":"Ada","email":"ada@example.com","jobId":"job-1","stage":"screen"}]}`)
	})
	mux.HandleFunc("PATCH /api/candidates/{id}", func(w http.ResponseWriter, r *http.Request) {
		var patch map[string]string
		_ = json.NewDecoder(r.Body).Decode(&patch)
		fmt.Fprintf(w, `{"success":true,"data":{"id":%q,"name":"Ada","email":"ada@example.com","jobId":"job-1","stage":%q}}`,
			r.PathValue("id"), patch["stage"])
	})
	mux.HandleFunc("GET /api/assessments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, apiURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf(
		"api_url = %q\nmax_retries = 0\nlog_level = \"warn\"\nstore_path = %q\nprefs_path = %q\n",
		apiURL, filepath.Join(dir, "db"), filepath.Join(dir, "prefs.toml"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestSync(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := (&fakeAPI{}).server(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "--config", cfg, "sync")
	require.NoError(t, err)
	assert.Equal(t, "synced 2 jobs, 1 candidates, 0 assessments\n", out)
}

func TestJobsList(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := (&fakeAPI{}).server(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "--config", cfg, "jobs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend Engineer")
	assert.Contains(t, out, "Designer")

	out, err = execute(t, "--config", cfg, "jobs", "list", "--status", "archived")
	require.NoError(t, err)
	assert.NotContains(t, out, "Backend Engineer")
	assert.Contains(t, out, "Designer")
}

func TestJobsAdd(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	api := &fakeAPI{}
	cfg := writeConfig(t, api.server(t).URL)

	out, err := execute(t, "--config", cfg, "jobs", "add", "--title", "QA Engineer", "--tag", "qa")
	require.NoError(t, err)
	assert.Contains(t, out, "created QA Engineer (")

	require.Len(t, api.created, 1)
	assert.Equal(t, "QA Engineer", api.created[0]["title"])
	assert.Equal(t, "qa-engineer", api.created[0]["slug"])
	assert.EqualValues(t, 2, api.created[0]["order"])
}

func TestJobsAdd_RejectedShowsServerMessage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := (&fakeAPI{}).server(t)
	cfg := writeConfig(t, srv.URL)

	_, err := execute(t, "--config", cfg, "jobs", "add", "--title", "Dup")
	require.Error(t, err)
	assert.Equal(t, "title already used", err.Error())
}

func TestJobsAdd_RequiresTitle(t *testing.T) {
	_, err := execute(t, "jobs", "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func TestJobsMove(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	api := &fakeAPI{}
	cfg := writeConfig(t, api.server(t).URL)

	out, err := execute(t, "--config", cfg, "jobs", "move", "0", "1")
	require.NoError(t, err)
	assert.Equal(t, "moved job from 0 to 1\n", out)
	require.Len(t, api.reorder, 1)
	assert.Equal(t, map[string]int{"fromIndex": 0, "toIndex": 1}, api.reorder[0])

	_, err = execute(t, "--config", cfg, "jobs", "move", "0", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
	assert.Len(t, api.reorder, 1)
}

func TestJobsMove_BadIndex(t *testing.T) {
	_, err := execute(t, "jobs", "move", "first", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FROM must be a board position")
}

func TestCandidatesStage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := (&fakeAPI{}).server(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "--config", cfg, "candidates", "stage", "cand-1", "Tech")
	require.NoError(t, err)
	assert.Equal(t, "Ada is now in tech\n", out)

	out, err = execute(t, "--config", cfg, "candidates", "list", "--job", "job-1")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")
}

func TestCandidatesStage_UnknownStage(t *testing.T) {
	_, err := execute(t, "candidates", "stage", "cand-1", "nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown stage "nowhere"`)
}
