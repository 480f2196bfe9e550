package report

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWebhookPublishPosts(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, zap.NewNop())
	require.NoError(t, p.Publish(sampleReport()))

	assert.Equal(t, "application/json", gotContentType)
	var m map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &m))
	assert.Equal(t, "RAB-001", m["device_id"])
}

func TestWebhookPublishFollowsRedirect(t *testing.T) {
	// Apps Script answers POSTs with a 302 to a one-time result URL.
	var landed bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/exec":
			http.Redirect(w, r, "/result", http.StatusFound)
		case "/result":
			landed = true
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL+"/exec", zap.NewNop())
	require.NoError(t, p.Publish(sampleReport()))
	assert.True(t, landed)
}

func TestWebhookPublishErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, zap.NewNop())
	err := p.Publish(sampleReport())
	assert.ErrorContains(t, err, "status 500")
}

func TestWebhookPublishUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewWebhookPublisher(url, zap.NewNop())
	assert.Error(t, p.Publish(sampleReport()))
}
