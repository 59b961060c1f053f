package asana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListLeaveTasks_Paginates(t *testing.T) {
	var offsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/P1/tasks", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Contains(t, r.URL.Query().Get("opt_fields"), "custom_fields.display_value")

		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)

		w.Header().Set("Content-Type", "application/json")
		if offset == "" {
			_, _ = w.Write([]byte(`{
				"data": [
					{"gid": "1", "custom_fields": [
						{"gid": "a", "name": "Name", "display_value": "Alice"},
						{"gid": "b", "name": "Leave Type", "display_value": null}
					]}
				],
				"next_page": {"offset": "tok2", "path": "/projects/P1/tasks?offset=tok2"}
			}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"data": [{"gid": "2", "custom_fields": []}],
			"next_page": null
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", 2)
	tasks, err := client.ListLeaveTasks(context.Background(), "P1")
	require.NoError(t, err)

	assert.Equal(t, []string{"", "tok2"}, offsets)
	require.Len(t, tasks, 2)
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, []leave.Attribute{
		{Name: "Name", Value: "Alice", HasValue: true},
		{Name: "Leave Type"},
	}, tasks[0].Attributes)

	name, ok := tasks[0].Field("name")
	assert.True(t, ok)
	assert.Equal(t, "Alice", name)
	_, ok = tasks[0].Field("Leave Type")
	assert.False(t, ok)
}

func TestClient_ListUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "W1", r.URL.Query().Get("workspace"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{
				{"gid": "u1", "name": "Alice", "email": "alice@example.com"},
				{"gid": "u2", "name": "Bob", "email": "bob@example.com"},
			},
		})
	}))
	defer srv.Close()

	users, err := NewClient(srv.URL, "secret", 100).ListUsers(context.Background(), "W1")
	require.NoError(t, err)
	assert.Equal(t, []leave.DirectoryUser{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	}, users)
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Not Authorized"}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "bad", 100).ListLeaveTasks(context.Background(), "P1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Not Authorized")
}

func TestClient_ListLeaveTasks_RequiresProject(t *testing.T) {
	_, err := NewClient("", "token", 0).ListLeaveTasks(context.Background(), "")
	assert.Error(t, err)
}
