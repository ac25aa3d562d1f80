package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "contact", body["form"])
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	resp, err := PostJSON(context.Background(), NewStandardClient(0), server.URL,
		map[string]string{"form": "contact"}, map[string]string{"Authorization": "Bearer key"})
	require.NoError(t, err)
	defer Drain(resp)

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestPostForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "token", r.PostForm.Get("response"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := PostForm(context.Background(), NewStandardClient(0), server.URL, url.Values{"response": {"token"}})
	require.NoError(t, err)
	Drain(resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGet_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Get(ctx, NewStandardClient(0), "http://127.0.0.1:1")
	assert.Error(t, err)
}

func TestDrain_Nil(t *testing.T) {
	Drain(nil)
}
