package portalapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perrors "github.com/jrsteele09/go-job-portal/internal/errors"
	"github.com/jrsteele09/go-job-portal/portalapi"
	"github.com/jrsteele09/go-job-portal/portalapi/fakebackend"
	"github.com/jrsteele09/go-job-portal/users"
	"github.com/stretchr/testify/require"
)

type clientFixture struct {
	backend *fakebackend.Backend
	client  *portalapi.Client
}

func newClientFixture(t *testing.T, wrap bool) clientFixture {
	t.Helper()
	backend := fakebackend.New()
	backend.AddUser("jane", "s3cret", users.Roles{users.RoleCandidate}, &users.Profile{FirstName: "Jane", LastName: "Doe"})

	srv := httptest.NewServer(backend.Handler(wrap))
	t.Cleanup(srv.Close)

	client, err := portalapi.New(srv.URL + "/")
	require.NoError(t, err)
	return clientFixture{backend: backend, client: client}
}

func TestClientLoginAndMe(t *testing.T) {
	for _, wrap := range []bool{false, true} {
		f := newClientFixture(t, wrap)
		ctx := context.Background()

		tokens, err := f.client.Login(ctx, users.Credentials{Username: "jane", Password: "s3cret"})
		require.NoError(t, err)
		require.NotEmpty(t, tokens.AccessToken)
		require.NotEmpty(t, tokens.RefreshToken)
		require.Equal(t, fakebackend.DefaultTokenLifetime, tokens.Lifetime())

		me, err := f.client.Me(ctx, tokens.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "jane", me.Username)
		require.True(t, me.HasRole(users.RoleCandidate))
		require.Equal(t, "Jane Doe", me.DisplayName())
	}
}

func TestClientLoginRejected(t *testing.T) {
	f := newClientFixture(t, false)

	_, err := f.client.Login(context.Background(), users.Credentials{Username: "jane", Password: "wrong"})
	require.Error(t, err)

	var apiErr *perrors.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Invalid username or password", perrors.UserMessage(err, "Sign in failed"))
}

func TestClientRefreshRotates(t *testing.T) {
	f := newClientFixture(t, true)
	ctx := context.Background()

	first, err := f.client.Login(ctx, users.Credentials{Username: "jane", Password: "s3cret"})
	require.NoError(t, err)

	second, err := f.client.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.client.Refresh(ctx, first.RefreshToken)
	require.Error(t, err)
	require.True(t, perrors.IsAuthFailure(err))
}

func TestClientMeRevoked(t *testing.T) {
	f := newClientFixture(t, false)
	ctx := context.Background()

	tokens, err := f.client.Login(ctx, users.Credentials{Username: "jane", Password: "s3cret"})
	require.NoError(t, err)
	f.backend.Revoke("jane")

	_, err = f.client.Me(ctx, tokens.AccessToken)
	require.True(t, perrors.IsAuthFailure(err))
}

func TestClientSignup(t *testing.T) {
	f := newClientFixture(t, false)
	ctx := context.Background()

	dob, err := users.ParseDate("24-03-1990")
	require.NoError(t, err)
	created, err := f.client.Signup(ctx, users.Registration{
		Username:    "sam",
		Password:    "pw",
		Email:       "sam@example.com",
		FirstName:   "Sam",
		LastName:    "Lee",
		DateOfBirth: dob,
	})
	require.NoError(t, err)
	require.Equal(t, "sam", created.Username)

	_, err = f.client.Signup(ctx, users.Registration{Username: "sam", Password: "pw"})
	require.Equal(t, "Username sam already exists", perrors.UserMessage(err, ""))
}

func TestClientSendsDateOfBirthFormatted(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":7,"username":"sam","roles":[{"name":"ROLE_CANDIDATE"}]}`))
	}))
	defer srv.Close()

	client, err := portalapi.New(srv.URL)
	require.NoError(t, err)

	dob, err := users.ParseDate("01-12-1999")
	require.NoError(t, err)
	created, err := client.Signup(context.Background(), users.Registration{Username: "sam", Password: "pw", DateOfBirth: dob})
	require.NoError(t, err)
	require.Equal(t, "01-12-1999", got["dateOfBirth"])
	require.Equal(t, int64(7), created.ID)
	require.True(t, created.HasRole(users.RoleCandidate))
}

func TestClientErrorWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	client, err := portalapi.New(srv.URL)
	require.NoError(t, err)

	_, err = client.Me(context.Background(), "token")
	var apiErr *perrors.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.Status)
	require.False(t, perrors.IsAuthFailure(err))
	require.Equal(t, perrors.GenericMessage, perrors.UserMessage(err, ""))
}

func TestClientMissingTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"accessToken":"only-access","expiresIn":1000}`))
	}))
	defer srv.Close()

	client, err := portalapi.New(srv.URL)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), users.Credentials{Username: "a", Password: "b"})
	require.ErrorIs(t, err, perrors.ErrInternal)
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client, err := portalapi.New(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Me(ctx, "token")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := portalapi.New("localhost:8081")
	require.Error(t, err)
}
