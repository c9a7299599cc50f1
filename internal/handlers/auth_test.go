package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/trainingdiary/internal/models"
)

func Test_AuthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login ok", func(t *testing.T) {
		s := newTestServer(t)
		u := s.createUser(t, "nk", "StrongEnoughPassword", models.RoleUser)

		code, body := s.do(t, http.MethodPost, "/auth/login", "", `{"login": "nk", "password": "StrongEnoughPassword"}`)

		require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
		var res tokensResponse
		require.NoError(t, json.Unmarshal([]byte(body), &res))
		require.Equal(t, u.ID, res.ID)
		require.Equal(t, "nk", res.Login)
		require.True(t, s.auth.Validate(res.AccessToken), "access token should be valid")
		require.True(t, s.auth.Validate(res.RefreshToken), "refresh token should be valid")
	})

	t.Run("login failed", func(t *testing.T) {
		s := newTestServer(t)
		s.createUser(t, "nk", "StrongEnoughPassword", models.RoleUser)

		for _, data := range []string{
			`{"login": "nk", "password": "wrong-password"}`,
			`{"login": "unknown", "password": "StrongEnoughPassword"}`,
		} {
			code, body := s.do(t, http.MethodPost, "/auth/login", "", data)

			require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Invalid login or password"
				}`, body)
		}
	})

	t.Run("login validation", func(t *testing.T) {
		s := newTestServer(t)

		code, body := s.do(t, http.MethodPost, "/auth/login", "", `{"login": "nk"}`)

		require.Equal(t, http.StatusBadRequest, code)
		require.JSONEq(t, `
			{
				"error": "validation_failed",
				"message": "Request validation failed",
				"fields": {"password": "This field is required"}
			}`, body)
	})

	t.Run("login too long rejected before auth", func(t *testing.T) {
		s := newTestServer(t)

		code, body := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
			"login":    strings.Repeat("a", 80),
			"password": "StrongEnoughPassword",
		})

		require.Equal(t, http.StatusBadRequest, code)
		require.JSONEq(t, `
			{
				"error": "validation_failed",
				"message": "Request validation failed",
				"fields": {"login": "Value is too long (maximum 50)"}
			}`, body)
		require.Empty(t, s.storage.Events(), "rejected request must not reach auth service")
	})

	t.Run("register ok", func(t *testing.T) {
		s := newTestServer(t)

		code, body := s.do(t, http.MethodPost, "/auth/register", "", `{"login": "nk", "password": "StrongEnoughPassword"}`)

		require.Equalf(t, http.StatusCreated, code, "not expected code. Body: %s", body)
		u, err := s.storage.User().GetUserByLogin(t.Context(), "nk")
		require.NoError(t, err)
		require.JSONEq(t, fmt.Sprintf(`{"id": %d, "login": "nk", "role": "USER"}`, u.ID), body)
	})

	t.Run("register validation", func(t *testing.T) {
		s := newTestServer(t)

		code, body := s.do(t, http.MethodPost, "/auth/register", "", `{"login": "n", "password": "123"}`)

		require.Equal(t, http.StatusBadRequest, code)
		require.JSONEq(t, `
			{
				"error": "validation_failed",
				"message": "Request validation failed",
				"fields": {
					"login": "Value is too short (minimum 2)",
					"password": "Value is too short (minimum 4)"
				}
			}`, body)
	})

	t.Run("register existed user fails", func(t *testing.T) {
		s := newTestServer(t)
		s.createUser(t, "nk", "StrongEnoughPassword", models.RoleUser)

		code, body := s.do(t, http.MethodPost, "/auth/register", "", `{"login": "nk", "password": "OtherPassword"}`)

		require.Equalf(t, http.StatusConflict, code, "not expected code. Body: %s", body)
		require.JSONEq(t, `
			{
				"error": "service_error",
				"message": "User already exists"
			}`, body)
	})

	t.Run("refresh token ok", func(t *testing.T) {
		s := newTestServer(t)
		s.createUser(t, "nk", "StrongEnoughPassword", models.RoleUser)
		first := s.login(t, "nk", "StrongEnoughPassword")

		code, body := s.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": first.Tokens.Refresh.Value})

		require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
		var res tokensResponse
		require.NoError(t, json.Unmarshal([]byte(body), &res))
		require.Equal(t, first.UserID, res.ID)
		require.Equal(t, "nk", res.Login)
		require.NotEqual(t, first.Tokens.Refresh.Value, res.RefreshToken, "refresh token should be changed after refresh")
		require.NotEqual(t, first.Tokens.Access.Value, res.AccessToken, "access token should be changed after refresh")
	})

	t.Run("refresh with invalid token is denied", func(t *testing.T) {
		s := newTestServer(t)
		s.createUser(t, "nk", "StrongEnoughPassword", models.RoleUser)
		first := s.login(t, "nk", "StrongEnoughPassword")

		for _, token := range []string{"garbage", first.Tokens.Access.Value, first.Tokens.Refresh.Value + "x"} {
			code, body := s.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": token})

			require.Equalf(t, http.StatusForbidden, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Access denied"
				}`, body)
		}
	})

	t.Run("refresh for deleted user", func(t *testing.T) {
		s := newTestServer(t)
		s.createUser(t, "nk", "StrongEnoughPassword", models.RoleUser)
		first := s.login(t, "nk", "StrongEnoughPassword")
		s.storage.DeleteUser("nk")

		code, body := s.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": first.Tokens.Refresh.Value})

		require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)
		require.JSONEq(t, `
			{
				"error": "service_error",
				"message": "Invalid identity"
			}`, body)
	})
}
