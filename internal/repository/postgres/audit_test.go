package postgres

import (
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/trainingdiary/internal/models"
	"github.com/nkiryanov/trainingdiary/internal/testutil"
)

func TestAuditRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("save and list newest first", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := NewStorage(tx)

			first, err := storage.Audit().Save(t.Context(), models.AuditEvent{
				Login:   "alice",
				Action:  models.AuditActionRegister,
				Outcome: models.AuditOutcomeSuccess,
			})
			require.NoError(t, err)
			require.NotZero(t, first.ID)
			require.NotZero(t, first.CreatedAt)

			second, err := storage.Audit().Save(t.Context(), models.AuditEvent{
				Login:   "alice",
				Action:  models.AuditActionLogin,
				Outcome: models.AuditOutcomeFailure,
				Detail:  "invalid credentials",
			})
			require.NoError(t, err)

			_, err = storage.Audit().Save(t.Context(), models.AuditEvent{
				Login:   "bob",
				Action:  models.AuditActionLogin,
				Outcome: models.AuditOutcomeSuccess,
			})
			require.NoError(t, err)

			events, err := storage.Audit().ListByLogin(t.Context(), "alice", 10)
			require.NoError(t, err)
			require.Equal(t, []models.AuditEvent{second, first}, events)

			events, err = storage.Audit().ListByLogin(t.Context(), "alice", 1)
			require.NoError(t, err)
			require.Len(t, events, 1, "limit must be respected")
		})
	})

	t.Run("login longer than user login is saved", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := NewStorage(tx)
			login := strings.Repeat("a", 80)

			_, err := storage.Audit().Save(t.Context(), models.AuditEvent{
				Login:   login,
				Action:  models.AuditActionLogin,
				Outcome: models.AuditOutcomeFailure,
				Detail:  "invalid login or password",
			})
			require.NoError(t, err)

			events, err := storage.Audit().ListByLogin(t.Context(), login, 10)
			require.NoError(t, err)
			require.Len(t, events, 1)
		})
	})
}
