package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandev/archiver/internal/common/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *BasicAuthClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewBasicAuthClient(config.TrackerConfig{
		BaseURL:        server.URL,
		APIPath:        "/rest/api/3",
		Email:          "ops@example.com",
		APIToken:       "token",
		ArchivedStatus: "archived",
		TimeoutSeconds: 5,
	})
}

func TestBasicAuthHeader(t *testing.T) {
	// base64("ops@example.com:token")
	assert.Equal(t, "Basic b3BzQGV4YW1wbGUuY29tOnRva2Vu", BasicAuthHeader("ops@example.com", "token"))
}

func TestListProjects(t *testing.T) {
	t.Run("returns values in tracker order", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/rest/api/3/project/search", r.URL.Path)
			assert.Equal(t, BasicAuthHeader("ops@example.com", "token"), r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"values":[{"id":"10","key":"B","name":"Beta"},{"id":"11","key":"A"}],"total":2}`))
		})

		projects, err := client.ListProjects(context.Background())
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, Project{ID: "10", Key: "B", Name: "Beta"}, projects[0])
		assert.Equal(t, "A", projects[1].Key)
	})

	t.Run("api path joins without duplicate slashes", func(t *testing.T) {
		tests := []struct {
			name     string
			basePath string
			apiPath  string
		}{
			{name: "separate api path", apiPath: "/rest/api/3"},
			{name: "api path with slashes", apiPath: "/rest/api/3/"},
			{name: "empty api path", basePath: "/rest/api/3/"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "/rest/api/3/project/search", r.URL.Path)
					_, _ = w.Write([]byte(`{"values":[]}`))
				}))
				t.Cleanup(server.Close)

				client := NewBasicAuthClient(config.TrackerConfig{
					BaseURL:        server.URL + tt.basePath,
					APIPath:        tt.apiPath,
					TimeoutSeconds: 5,
				})
				_, err := client.ListProjects(context.Background())
				require.NoError(t, err)
			})
		}
	})

	t.Run("missing values yields empty slice", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"total":0}`))
		})

		projects, err := client.ListProjects(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, projects)
		assert.Empty(t, projects)
	})

	t.Run("non-2xx is a transport error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errorMessages":["unauthorized"]}`))
		})

		_, err := client.ListProjects(context.Background())
		require.Error(t, err)

		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
		assert.Equal(t, OpListProjects, te.Op)
		assert.Contains(t, te.Body, "unauthorized")
		assert.Contains(t, err.Error(), "returned 401")
	})

	t.Run("malformed body is a transport error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"values":`))
		})

		_, err := client.ListProjects(context.Background())
		require.Error(t, err)
		assert.True(t, IsTransportError(err))
	})
}

func TestListProjects_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewBasicAuthClient(config.TrackerConfig{BaseURL: url, APIPath: "/rest/api/3", TimeoutSeconds: 1})
	_, err := client.ListProjects(context.Background())
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
	assert.NotNil(t, te.Unwrap())
}

func TestGetLastUpdated(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *time.Time
	}{
		{
			name: "rfc3339",
			body: `{"lastUpdated":"2024-01-15T10:30:00Z"}`,
			want: ptrTime(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)),
		},
		{
			name: "jira offset format",
			body: `{"lastUpdated":"2024-01-15T10:30:00.000+0000"}`,
			want: ptrTime(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)),
		},
		{
			name: "without zone is local time",
			body: `{"lastUpdated":"2023-01-15T10:00:00"}`,
			want: ptrTime(time.Date(2023, 1, 15, 10, 0, 0, 0, time.Local)),
		},
		{
			name: "date only",
			body: `{"lastUpdated":"2023-01-15"}`,
			want: ptrTime(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)),
		},
		{
			name: "epoch milliseconds",
			body: `{"lastUpdated":1700000000000}`,
			want: ptrTime(time.UnixMilli(1700000000000)),
		},
		{name: "missing", body: `{}`},
		{name: "null", body: `{"lastUpdated":null}`},
		{name: "false", body: `{"lastUpdated":false}`},
		{name: "zero", body: `{"lastUpdated":0}`},
		{name: "empty", body: `{"lastUpdated":""}`},
		{name: "object", body: `{"lastUpdated":{"value":"2024-01-15"}}`},
		{name: "unparseable", body: `{"lastUpdated":"last tuesday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/rest/api/3/project/OPS/statuses", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := client.GetLastUpdated(context.Background(), "OPS")
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestGetLastUpdated_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetLastUpdated(context.Background(), "GONE")
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, OpGetLastUpdated, te.Op)
	assert.Equal(t, "/project/GONE/statuses", te.Endpoint)
}

func TestArchiveProject(t *testing.T) {
	t.Run("puts archived status", func(t *testing.T) {
		var gotBody map[string]string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/rest/api/3/project/OLD", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, BasicAuthHeader("ops@example.com", "token"), r.Header.Get("Authorization"))
			data, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.NoError(t, json.Unmarshal(data, &gotBody))
			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, client.ArchiveProject(context.Background(), "OLD"))
		assert.Equal(t, map[string]string{"status": "archived"}, gotBody)
	})

	t.Run("failure status is a transport error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("forbidden"))
		})

		err := client.ArchiveProject(context.Background(), "OLD")
		require.Error(t, err)

		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, http.StatusForbidden, te.StatusCode)
		assert.Equal(t, OpArchiveProject, te.Op)
	})

	t.Run("escapes project key", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/api/3/project/A%2FB", r.URL.RawPath)
			w.WriteHeader(http.StatusOK)
		})

		require.NoError(t, client.ArchiveProject(context.Background(), "A/B"))
	})
}

func TestProjectString(t *testing.T) {
	assert.Equal(t, "OPS", Project{Key: "OPS"}.String())
	assert.Equal(t, "OPS (Operations)", Project{Key: "OPS", Name: "Operations"}.String())
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
