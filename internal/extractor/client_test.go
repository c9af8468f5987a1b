package extractor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/reelmate/internal/apperr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	opts = append([]Option{WithEndpoint(server.URL + "/"), WithLogger(testLogger())}, opts...)
	return NewClient(opts...), &calls
}

func TestClient_Extract(t *testing.T) {
	const source = "https://www.instagram.com/reel/abc123/"

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, source, r.URL.Query().Get("url"))
		assert.Contains(t, r.URL.RawQuery, "url=https%3A%2F%2Fwww.instagram.com%2Freel%2Fabc123%2F")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"title":          "X",
			"best_quality":   "https://cdn/x.mp4",
			"medium_quality": "https://cdn/x_med.mp4",
		})
	})

	d, err := client.Extract(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, "X", d.Title)
	assert.Equal(t, "https://cdn/x.mp4", d.BestQualityURL)
	assert.Equal(t, "https://cdn/x_med.mp4", d.MediumQualityURL)
	assert.Empty(t, d.ThumbnailURL)
	assert.Equal(t, source, d.SourceURL)
	assert.Equal(t, PlatformInstagram, d.Platform)

	u, err := d.URLFor(QualityBest)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.mp4", u)
	assert.Equal(t, []Quality{QualityBest, QualityMedium}, d.Qualities())
}

func TestClient_Extract_ErrorFieldNeverYieldsDescriptor(t *testing.T) {
	bodies := []string{
		`{"error":"Private video"}`,
		`{"error":"Private video","title":"X","best_quality":"https://cdn/x.mp4"}`,
		`{"error":""}`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			d, err := client.Extract(context.Background(), "https://www.instagram.com/reel/abc/")
			assert.Nil(t, d)
			var svcErr *ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.False(t, apperr.IsRetryable(err))
		})
	}
}

func TestClient_Extract_ErrorMessageVerbatim(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Não foi possível extrair o vídeo"}`))
	})

	_, err := client.Extract(context.Background(), "https://www.facebook.com/watch?v=1")
	require.Error(t, err)
	assert.Equal(t, "Não foi possível extrair o vídeo", err.Error())
}

func TestClient_Extract_Non2xx(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream timeout"}`))
	})

	d, err := client.Extract(context.Background(), "https://www.instagram.com/reel/abc/")
	assert.Nil(t, d)
	assert.ErrorIs(t, err, apperr.ErrNetworkFailure)
	assert.True(t, apperr.IsRetryable(err))

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusBadGateway, svcErr.StatusCode)
	assert.Equal(t, "upstream timeout", svcErr.Message)
}

func TestClient_Extract_Non2xxWithoutBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Extract(context.Background(), "https://www.instagram.com/reel/abc/")
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "500 Internal Server Error", svcErr.Message)
}

func TestClient_Extract_NoLinks(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"X"}`))
	})

	d, err := client.Extract(context.Background(), "https://www.instagram.com/reel/abc/")
	assert.Nil(t, d)
	var svcErr *ServiceError
	assert.ErrorAs(t, err, &svcErr)
}

func TestClient_Extract_BadJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	d, err := client.Extract(context.Background(), "https://www.instagram.com/reel/abc/")
	assert.Nil(t, d)
	assert.ErrorContains(t, err, "decode response")
}

func TestClient_Extract_BlockedBeforeNetwork(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("extractor must not be called")
	})

	for _, u := range []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://m.YouTube.com/shorts/abc",
	} {
		d, err := client.Extract(context.Background(), u)
		assert.Nil(t, d)
		assert.ErrorIs(t, err, ErrBlockedHost, u)
	}
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestClient_Extract_InvalidURL(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, u := range []string{"", "instagram.com/reel/abc", "ftp://instagram.com/x"} {
		_, err := client.Extract(context.Background(), u)
		assert.ErrorIs(t, err, ErrInvalidURL, u)
	}
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestClient_Extract_NetworkFailure(t *testing.T) {
	client := NewClient(WithEndpoint("http://127.0.0.1:1/"), WithLogger(testLogger()))

	_, err := client.Extract(context.Background(), "https://www.instagram.com/reel/abc/")
	assert.ErrorIs(t, err, apperr.ErrNetworkFailure)
	assert.True(t, apperr.IsRetryable(err))
}

func TestClient_Extract_Cached(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"X","best_quality":"https://cdn/x.mp4","medium_quality":"https://cdn/m.mp4"}`))
	})

	for i := 0; i < 3; i++ {
		d, err := client.Extract(context.Background(), "https://www.instagram.com/reel/abc/")
		require.NoError(t, err)
		d.Title = "mutated"
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	d, err := client.Extract(context.Background(), "https://www.instagram.com/reel/abc/")
	require.NoError(t, err)
	assert.Equal(t, "X", d.Title, "callers must not be able to mutate cached entries")
}

func TestClient_Extract_FailuresNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			_, _ = w.Write([]byte(`{"error":"try later"}`))
			return
		}
		_, _ = w.Write([]byte(`{"title":"X","best_quality":"https://cdn/x.mp4"}`))
	})

	_, err := client.Extract(context.Background(), "https://www.instagram.com/reel/abc/")
	require.Error(t, err)

	fail.Store(false)
	d, err := client.Extract(context.Background(), "https://www.instagram.com/reel/abc/")
	require.NoError(t, err)
	assert.Equal(t, "X", d.Title)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestClient_Extract_CacheDisabled(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"X","best_quality":"https://cdn/x.mp4"}`))
	}, WithCacheTTL(-1))

	for i := 0; i < 2; i++ {
		_, err := client.Extract(context.Background(), "https://www.instagram.com/reel/abc/")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestClient_Extract_ContextCanceled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Extract(ctx, "https://www.instagram.com/reel/abc/")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_UserAgent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "reelmate/test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"best_quality":"https://cdn/x.mp4"}`))
	}, WithUserAgent("reelmate/test"))

	d, err := client.Extract(context.Background(), "https://www.instagram.com/reel/abc/")
	require.NoError(t, err)
	assert.Equal(t, "Video", d.Title)
}
