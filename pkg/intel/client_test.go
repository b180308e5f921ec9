package intel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReports(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("_limit"))
		assert.Equal(t, "7", r.URL.Query().Get("userId"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"userId": 7, "id": 1, "title": "sightings", "body": "north docks"},
			{"userId": 7, "id": 2, "title": "chatter", "body": "iceberg lounge"}
		]`))
	}))
	defer upstream.Close()

	c := New(upstream.URL)
	userID := 7
	reports, err := c.Reports(context.Background(), 3, &userID)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "sightings", reports[0].Title)
	assert.Equal(t, 7, reports[1].UserID)
}

func TestReportsNoUserFilter(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("userId"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	reports, err := New(upstream.URL).Reports(context.Background(), 5, nil)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestReportsUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	_, err := New(upstream.URL).Reports(context.Background(), 5, nil)
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusInternalServerError, ue.Status)
}

func TestContact(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/4", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 4, "name": "Patricia Lebsack", "email": "julianne@kory.org"}`))
	}))
	defer upstream.Close()

	contact, err := New(upstream.URL).Contact(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, contact.ID)
	assert.Equal(t, "Patricia Lebsack", contact.Name)
}

func TestContactNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	_, err := New(upstream.URL).Contact(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // connection refused from here on

	_, err := New(upstream.URL).Contact(context.Background(), 1)
	var ue *UnavailableError
	require.True(t, errors.As(err, &ue))
}

func TestNewDefaultsBaseURL(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
