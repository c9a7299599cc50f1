package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nkiryanov/trainingdiary/internal/apperrors"
	"github.com/nkiryanov/trainingdiary/internal/handlers/render"
	"github.com/nkiryanov/trainingdiary/internal/handlers/userctx"
	"github.com/nkiryanov/trainingdiary/internal/logger"
	"github.com/nkiryanov/trainingdiary/internal/models"
)

type userResponse struct {
	ID    int64       `json:"id"`
	Login string      `json:"login"`
	Role  models.Role `json:"role"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{ID: u.ID, Login: u.Login, Role: u.Role}
}

func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := userctx.FromContext(r.Context())
		render.JSON(w, userResponse{ID: p.UserID, Login: p.Login, Role: p.Role})
	})
}

func handleGetUser(us userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}

		user, err := us.GetUser(r.Context(), userID)
		if err != nil {
			userError(w, r, l, err)
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}

func handleListUsers(us userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		users, err := us.ListUsers(r.Context())
		if err != nil {
			userError(w, r, l, err)
			return
		}

		res := make([]userResponse, 0, len(users))
		for _, u := range users {
			res = append(res, newUserResponse(u))
		}
		render.JSON(w, res)
	})
}

func handleChangeRole(us userService, l logger.Logger) http.Handler {
	type request struct {
		Role string `json:"role" validate:"required,role"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := us.ChangeRole(r.Context(), userID, models.Role(data.Role))
		if err != nil {
			userError(w, r, l, err)
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}

func handleUserAudit(us userService, l logger.Logger) http.Handler {
	type event struct {
		CreatedAt time.Time `json:"createdAt"`
		Action    string    `json:"action"`
		Outcome   string    `json:"outcome"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		events, err := us.AuditTrail(r.Context(), userID, limit)
		if err != nil {
			userError(w, r, l, err)
			return
		}

		res := make([]event, 0, len(events))
		for _, e := range events {
			res = append(res, event{CreatedAt: e.CreatedAt, Action: e.Action, Outcome: e.Outcome})
		}
		render.JSON(w, res)
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func userError(w http.ResponseWriter, r *http.Request, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		render.ServiceError(w, "User not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrInvalidRole):
		render.ServiceError(w, "Invalid role", http.StatusBadRequest)
	default:
		logger.FromContext(r.Context(), l).Error("user request failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
