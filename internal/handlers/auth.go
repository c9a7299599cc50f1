package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/trainingdiary/internal/apperrors"
	"github.com/nkiryanov/trainingdiary/internal/handlers/render"
	"github.com/nkiryanov/trainingdiary/internal/logger"
	"github.com/nkiryanov/trainingdiary/internal/models"
)

type tokensResponse struct {
	ID           int64  `json:"id"`
	Login        string `json:"login"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func newTokensResponse(res models.AuthResult) tokensResponse {
	return tokensResponse{
		ID:           res.UserID,
		Login:        res.Login,
		AccessToken:  res.Tokens.Access.Value,
		RefreshToken: res.Tokens.Refresh.Value,
	}
}

func handleRegister(as authService, l logger.Logger) http.Handler {
	type request struct {
		Login    string `json:"login" validate:"required,min=2,max=50"`
		Password string `json:"password" validate:"required,min=4"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := as.Register(r.Context(), data.Login, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			default:
				logger.FromContext(r.Context(), l).Error("can't register user", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, newUserResponse(user), http.StatusCreated)
	})
}

func handleLogin(as authService, l logger.Logger) http.Handler {
	type request struct {
		Login    string `json:"login" validate:"required,max=50"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		res, err := as.Login(r.Context(), data.Login, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidCredentials):
				render.ServiceError(w, "Invalid login or password", http.StatusUnauthorized)
			default:
				logger.FromContext(r.Context(), l).Error("can't login user", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, newTokensResponse(res))
	})
}

func handleTokenRefresh(as authService, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		res, err := as.Refresh(r.Context(), data.RefreshToken)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrAccessDenied):
				render.ServiceError(w, "Access denied", http.StatusForbidden)
			case errors.Is(err, apperrors.ErrInvalidIdentity):
				render.ServiceError(w, "Invalid identity", http.StatusUnauthorized)
			default:
				logger.FromContext(r.Context(), l).Error("can't refresh tokens", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, newTokensResponse(res))
	})
}
