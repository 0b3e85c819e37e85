package glclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"labdash/internal/domain"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1", staticToken("secret-token")), srv
}

func TestListUsersEncodesParams(t *testing.T) {
	t.Parallel()
	var gotPath string
	var gotQuery map[string][]string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()

		require.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"), "every request carries a correlation id")

		json.NewEncoder(w).Encode([]domain.User{{ID: 7, Username: "alice", Name: "Alice"}})
	})

	users, err := client.ListUsers(context.Background(), ListUsersParams{
		Page: 2, PerPage: 20, Search: "ali", Humans: true,
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "alice", users[0].Username)

	require.Equal(t, "/api/v1/users", gotPath)
	require.Equal(t, []string{"2"}, gotQuery["page"])
	require.Equal(t, []string{"20"}, gotQuery["per_page"])
	require.Equal(t, []string{"ali"}, gotQuery["search"])
	require.Equal(t, []string{"true"}, gotQuery["humans"])
}

func TestEmptySearchParamIsOmitted(t *testing.T) {
	t.Parallel()
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["search"]
		require.False(t, present, "empty search must be absent, not blank")
		w.Write([]byte("[]"))
	})

	_, err := client.ListUsers(context.Background(), ListUsersParams{Page: 1, PerPage: 20})
	require.NoError(t, err)
}

func TestListProjectsMembershipFilter(t *testing.T) {
	t.Parallel()
	var gotMembership []string
	var present bool
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMembership, present = r.URL.Query()["membership"], r.URL.Query().Has("membership")
		w.Write([]byte("[]"))
	})

	_, err := client.ListProjects(context.Background(), ListProjectsParams{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.False(t, present, "nil membership means no filter param")

	yes := true
	_, err = client.ListProjects(context.Background(), ListProjectsParams{Page: 1, PerPage: 20, Membership: &yes})
	require.NoError(t, err)
	require.Equal(t, []string{"true"}, gotMembership)
}

func TestListProjectMembersPath(t *testing.T) {
	t.Parallel()
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/projects/42/members", r.URL.Path)
		json.NewEncoder(w).Encode([]domain.Member{{ID: 1, Username: "bob", AccessLevelName: "Developer"}})
	})

	members, err := client.ListProjectMembers(context.Background(), 42, ListMembersParams{Page: 1, PerPage: 20})
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "Developer", members[0].AccessLevelName)
}

func TestAPIErrorDecoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"wrapped detail", http.StatusUnauthorized, `{"error":{"detail":"login_required"}}`, "login_required"},
		{"top-level detail", 428, `{"detail":"gitlab_token_required"}`, "gitlab_token_required"},
		{"no detail", http.StatusBadGateway, `{}`, ""},
		{"unparseable body", http.StatusInternalServerError, `<html>upstream died</html>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.ListUsers(context.Background(), ListUsersParams{Page: 1, PerPage: 20})
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.Status)
			require.Equal(t, tt.wantDetail, apiErr.Detail)
			require.Equal(t, tt.wantDetail, apiErr.ErrorDetail())
		})
	}
}

func TestContextCancellationPassesThrough(t *testing.T) {
	t.Parallel()
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListUsers(ctx, ListUsersParams{Page: 1, PerPage: 20})
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled), "cancellation must stay visible to errors.Is")
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL, staticToken(""))
	_, err := client.ListUsers(context.Background(), ListUsersParams{Page: 1, PerPage: 20})
	require.NoError(t, err)
}
