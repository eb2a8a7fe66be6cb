package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/markbates/goth"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/homefindr/estate-api/internal/api"
	"github.com/homefindr/estate-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Signup(w http.ResponseWriter, r *http.Request)
	Signin(w http.ResponseWriter, r *http.Request)
	GoogleSignin(w http.ResponseWriter, r *http.Request)
	Signout(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
}

func NewHandlerImpl(authService AuthService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// Signup godoc
// @Summary      Register Account
// @Description  Creates a new account from username/email/password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.SignupRequest true "Signup Parameters"
// @Success      201 {object} types.User "Created User"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      409 {object} types.Response "Username or Email Taken"
// @Router       /auth/signup [post]
func (h *HandlerImpl) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Signup")
	defer span.End()
	l := h.logger.With(slog.String("handler", "Signup"))

	var req types.SignupRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
		span.RecordError(err)
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, err.Error())
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create account")
		}
		return
	}

	span.SetStatus(codes.Ok, "User registered")
	api.WriteJSONResponse(w, r, http.StatusCreated, user)
}

// Signin godoc
// @Summary      Sign In
// @Description  Verifies credentials, sets the access_token cookie and returns the sanitized user.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.SigninRequest true "Signin Parameters"
// @Success      200 {object} types.AuthResponse "Session Credential"
// @Failure      401 {object} types.Response "Invalid Credentials"
// @Router       /auth/signin [post]
func (h *HandlerImpl) Signin(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Signin")
	defer span.End()
	l := h.logger.With(slog.String("handler", "Signin"))

	var req types.SigninRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		l.WarnContext(ctx, "Login failed", slog.Any("error", err))
		span.RecordError(err)
		if errors.Is(err, types.ErrUnauthenticated) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, err.Error())
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to sign in")
		}
		return
	}

	SetSessionCookie(w, token, sessionCookieTTL)
	span.SetStatus(codes.Ok, "User signed in")
	api.WriteJSONResponse(w, r, http.StatusOK, types.AuthResponse{AccessToken: token, User: user})
}

// GoogleSignin godoc
// @Summary      Google Sign In
// @Description  Signs in from a Google profile, creating the account on first arrival.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.GoogleSigninRequest true "Provider Profile"
// @Success      200 {object} types.AuthResponse "Session Credential"
// @Router       /auth/google [post]
func (h *HandlerImpl) GoogleSignin(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "GoogleSignin")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GoogleSignin"))

	var req types.GoogleSigninRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	providerUser := goth.User{
		Provider:  "google",
		Name:      req.Name,
		Email:     req.Email,
		AvatarURL: req.Avatar,
	}

	token, user, err := h.authService.GetOrCreateUserFromProvider(ctx, "google", providerUser)
	if err != nil {
		l.ErrorContext(ctx, "Provider sign-in failed", slog.Any("error", err))
		span.RecordError(err)
		if errors.Is(err, types.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to sign in")
		}
		return
	}

	SetSessionCookie(w, token, sessionCookieTTL)
	span.SetStatus(codes.Ok, "Provider user signed in")
	api.WriteJSONResponse(w, r, http.StatusOK, types.AuthResponse{AccessToken: token, User: user})
}

// Signout godoc
// @Summary      Sign Out
// @Description  Clears the session cookie.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.Response "Signed Out"
// @Router       /auth/signout [get]
func (h *HandlerImpl) Signout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w)
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "User has been signed out",
	})
}
