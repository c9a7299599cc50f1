package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/trainingdiary/internal/logger"
	"github.com/nkiryanov/trainingdiary/internal/models"
	"github.com/nkiryanov/trainingdiary/internal/service/auth"
	"github.com/nkiryanov/trainingdiary/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/trainingdiary/internal/service/user"
	"github.com/nkiryanov/trainingdiary/internal/testutil"
)

const testSecret = "test-secret-key-that-is-long-enough-for-hs256"

type testServer struct {
	url     string
	auth    *auth.AuthService
	users   *user.UserService
	storage *testutil.MemStorage
}

// Run http server with production services over in-memory storage
func newTestServer(t *testing.T) testServer {
	storage := testutil.NewMemStorage()
	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}

	tokens, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
	require.NoError(t, err, "token manager should be created without errors")

	as, err := auth.NewService(auth.Config{Hasher: hasher}, tokens, storage)
	require.NoError(t, err, "auth service starting error")
	us := user.NewService(hasher, storage)

	srv := httptest.NewServer(NewRouter(as, us, logger.NewNoOpLogger()))
	t.Cleanup(srv.Close)

	return testServer{url: srv.URL, auth: as, users: us, storage: storage}
}

// Register user and change its role if needed
func (s testServer) createUser(t *testing.T, login string, password string, role models.Role) models.User {
	u, err := s.auth.Register(t.Context(), login, password)
	require.NoError(t, err)
	if role != models.RoleUser {
		u, err = s.users.ChangeRole(t.Context(), u.ID, role)
		require.NoError(t, err)
	}
	return u
}

func (s testServer) login(t *testing.T, login string, password string) models.AuthResult {
	res, err := s.auth.Login(t.Context(), login, password)
	require.NoError(t, err)
	return res
}

// Make request and return status code with body
func (s testServer) do(t *testing.T, method string, path string, token string, body any) (int, string) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, s.url+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode, string(respBody)
}
