package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/homefindr/estate-api/internal/api"
	"github.com/homefindr/estate-api/internal/api/auth"
	"github.com/homefindr/estate-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetUser(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

// NewHandlerImpl creates a new user HandlerImpl instance.
func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// GetUser godoc
// @Summary      Get User
// @Description  Retrieves a sanitized user for public display (contact-landlord lookup).
// @Tags         User
// @Produce      json
// @Success      200 {object} types.User "User"
// @Failure      404 {object} types.Response "User Not Found"
// @Router       /user/{id} [get]
func (h *HandlerImpl) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "GetUser")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetUser"))

	userID := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("user.id", userID))

	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get user", slog.Any("error", err))
		span.RecordError(err)
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve user")
		}
		return
	}

	span.SetStatus(codes.Ok, "User fetched")
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

// UpdateUser godoc
// @Summary      Update User
// @Description  Partially updates the authenticated user's own account. Password is re-hashed server-side.
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        body body types.UpdateProfileParams true "Profile Update Parameters"
// @Success      200 {object} types.User "Updated User"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      403 {object} types.Response "Not Account Owner"
// @Failure      404 {object} types.Response "User Not Found"
// @Security     BearerAuth
// @Router       /user/update/{id} [post]
func (h *HandlerImpl) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "UpdateUser")
	defer span.End()
	l := h.logger.With(slog.String("handler", "UpdateUser"))

	callerID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || callerID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		span.SetStatus(codes.Error, "Unauthorized - User ID missing")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("user.id", targetID))

	var params types.UpdateProfileParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.userService.UpdateProfile(ctx, targetID, callerID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update user", slog.Any("error", err))
		span.RecordError(err)
		switch {
		case errors.Is(err, types.ErrForbidden):
			api.ErrorResponse(w, r, http.StatusForbidden, err.Error())
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, err.Error())
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}

	span.SetStatus(codes.Ok, "User updated")
	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteUser godoc
// @Summary      Delete User
// @Description  Deletes the authenticated user's own account and clears the session cookie.
// @Tags         User
// @Produce      json
// @Success      200 {object} types.Response "Deleted"
// @Failure      403 {object} types.Response "Not Account Owner"
// @Security     BearerAuth
// @Router       /user/delete/{id} [delete]
func (h *HandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserHandler").Start(r.Context(), "DeleteUser")
	defer span.End()
	l := h.logger.With(slog.String("handler", "DeleteUser"))

	callerID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || callerID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		span.SetStatus(codes.Error, "Unauthorized - User ID missing")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("user.id", targetID))

	err := h.userService.DeleteUser(ctx, targetID, callerID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to delete user", slog.Any("error", err))
		span.RecordError(err)
		switch {
		case errors.Is(err, types.ErrForbidden):
			api.ErrorResponse(w, r, http.StatusForbidden, err.Error())
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete user")
		}
		return
	}

	// The deletion is already durable; clearing the cookie is best-effort
	// and never fails the request.
	auth.ClearSessionCookie(w)

	span.SetStatus(codes.Ok, "User deleted")
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "User has been deleted",
	})
}
