package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// testSite serves extractor responses and the media they point at.
type testSite struct {
	srv         *httptest.Server
	extracts    int32
	media       []byte
	title       string
	errorText   string
	errorStatus int
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	s := &testSite{media: bytes.Repeat([]byte("v"), 256*1024), title: "Surf day"}
	mux := http.NewServeMux()
	mux.HandleFunc("/extract/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.extracts, 1)
		w.Header().Set("Content-Type", "application/json")
		if s.errorStatus != 0 {
			w.WriteHeader(s.errorStatus)
		}
		if s.errorText != "" {
			_ = json.NewEncoder(w).Encode(map[string]string{"error": s.errorText})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"title":          s.title,
			"best_quality":   s.srv.URL + "/media/best.mp4",
			"medium_quality": s.srv.URL + "/media/medium.mp4",
			"thumbnail":      s.srv.URL + "/media/thumb.jpg",
		})
	})
	mux.HandleFunc("/media/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(len(s.media)))
		_, _ = w.Write(s.media)
	})
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

// testEnv is a config file plus the directories it points at.
type testEnv struct {
	dir        string
	configPath string
	gallery    string
	sdcard     string
}

func newTestEnv(t *testing.T, site *testSite) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "reelmate.toml"),
		gallery:    filepath.Join(dir, "gallery"),
		sdcard:     filepath.Join(dir, "sdcard"),
	}

	endpoint := "http://127.0.0.1:1/extract/"
	if site != nil {
		endpoint = site.srv.URL + "/extract/"
	}
	cfg := fmt.Sprintf(`
[log]
level = "error"

[library]
root = %q
database = %q

[extractor]
endpoint = %q
cache_ttl = "-1s"

[download]
cache_dir = %q

[permission]
grant_file = %q

[status]
storage_root = %q
grant_file = %q
`,
		env.gallery,
		filepath.Join(dir, "reelmate.db"),
		endpoint,
		filepath.Join(dir, "cache"),
		filepath.Join(dir, "media_grant"),
		env.sdcard,
		filepath.Join(dir, "wa_statuses_uri"),
	)
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0644))
	return env
}

// run executes the CLI with stdin and returns stdout.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, "", args...)
	require.NoError(t, err, "reelmate %s", strings.Join(args, " "))
	return out
}
