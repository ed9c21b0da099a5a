package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/service"
	"github.com/sakif/second-brain/internal/validation"
)

// AuthHandler serves signup, signin, the current-user lookup, and the
// optional GitHub OAuth flow.
type AuthHandler struct {
	auths    *service.AuthService
	github   *auth.GitHubProvider // nil when OAuth is not configured
	validate *validation.Validator
	logger   *slog.Logger
}

func NewAuthHandler(
	auths *service.AuthService,
	github *auth.GitHubProvider,
	validate *validation.Validator,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auths:    auths,
		github:   github,
		validate: validate,
		logger:   logger,
	}
}

// signupRequest carries the signup payload with its validation rules:
// username 4–20 chars, a real email address, and a password of at least 8
// chars containing an uppercase letter, a digit, and a special character.
type signupRequest struct {
	Username string `json:"username" validate:"required,min=4,max=20"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password"`
}

// HandleSignup registers a new account.
//
// HTTP: POST /api/v1/signup
// Body: {"username": ..., "email": ..., "password": ...}
//
// 200 on success, 400 for missing/malformed fields or a taken username.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.auths.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Signup successful"})
}

type signinRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleSignin authenticates and returns a bearer token.
//
// HTTP: POST /api/v1/signin
// Body: {"username": ..., "password": ...}
//
// Both "no such user" and "wrong password" respond 400 on this route —
// the signin contract predates the general 404/401 mapping and the
// frontend depends on it.
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	token, err := h.auths.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "not_found",
				Message: "User does not exist",
			})
		case errors.Is(err, apperror.ErrUnauthorized):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Incorrect credentials",
			})
		default:
			writeError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Signin successful",
		"token":   token,
	})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/v1/me (bearer)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but don't assume.
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	user, err := h.auths.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleGitHubLogin starts the GitHub OAuth flow.
//
// HTTP: GET /auth/github/login
//
// A random state value goes into a short-lived HttpOnly cookie; the
// callback verifies it matches GitHub's echo, which proves the flow was
// initiated here and not by a cross-site attacker.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow and responds with the same
// bearer token a password signin would return.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state mismatch or missing")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid OAuth state",
		})
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "missing OAuth code",
		})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "authentication failed",
		})
		return
	}

	result, err := h.auths.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("oauth callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Signin successful",
		"token":   result.Token,
	})
}
