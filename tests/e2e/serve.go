package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/trainingdiary/internal/handlers"
	"github.com/nkiryanov/trainingdiary/internal/logger"
	"github.com/nkiryanov/trainingdiary/internal/repository"
	"github.com/nkiryanov/trainingdiary/internal/repository/postgres"
	"github.com/nkiryanov/trainingdiary/internal/service/auth"
	"github.com/nkiryanov/trainingdiary/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/trainingdiary/internal/service/user"
	"github.com/nkiryanov/trainingdiary/internal/testutil"
)

const TestSecretKey = "test-secret-key-that-is-long-enough-for-hs256"

type Services struct {
	AuthService *auth.AuthService
	UserService *user.UserService
	Storage     repository.Storage
}

// Create db transaction and run server in with that connection (one connection cause one transaction)
// The created transaction is rolled back when fn returns
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)
		hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}

		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: TestSecretKey})
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{Hasher: hasher}, tokenManager, storage)
		require.NoError(t, err, "auth service starting error")
		us := user.NewService(hasher, storage)

		// Run http server with the router in transaction
		srv := httptest.NewServer(handlers.NewRouter(as, us, logger.NewNoOpLogger()))
		defer srv.Close()

		fn(srv.URL, Services{
			AuthService: as,
			UserService: us,
			Storage:     storage,
		})
	})
}

// Do sends JSON request with optional bearer token
// Successful response is decoded into out if it is not nil
func Do(t *testing.T, method string, url string, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
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

	if out != nil && resp.StatusCode < 300 {
		require.NoErrorf(t, json.Unmarshal(respBody, out), "can't decode body: %s", string(respBody))
	}
	return resp.StatusCode
}
