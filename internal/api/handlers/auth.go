package handlers

import (
	"errors"
	"net/http"

	"github.com/baharkarakas/skillstack-backend/internal/api/httpx"
	"github.com/baharkarakas/skillstack-backend/internal/api/validate"
	"github.com/baharkarakas/skillstack-backend/internal/auth"
	"github.com/baharkarakas/skillstack-backend/internal/logger"
	"github.com/baharkarakas/skillstack-backend/internal/middleware"
	"github.com/baharkarakas/skillstack-backend/internal/models"
	repo "github.com/baharkarakas/skillstack-backend/internal/repository"
	"github.com/baharkarakas/skillstack-backend/internal/services"
)

const (
	msgRegisterFields     = "Please provide username, email, and password"
	msgLoginFields        = "Please provide email and password"
	msgInvalidCredentials = "Invalid email or password"
)

type AuthHandler struct {
	svc *services.UserService
	dev bool
}

// NewAuthHandler builds the /api/auth handlers. In dev, 500 responses carry
// the internal error under details.
func NewAuthHandler(svc *services.UserService, appEnv string) *AuthHandler {
	return &AuthHandler{svc: svc, dev: appEnv == "dev"}
}

type userResp struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Level    int            `json:"level"`
	XP       int            `json:"xp"`
	Streak   int            `json:"streak"`
	Profile  models.Profile `json:"profile"`
}

type authResp struct {
	Success bool     `json:"success"`
	Data    userResp `json:"data"`
	Token   string   `json:"token"`
}

type dataResp struct {
	Success bool     `json:"success"`
	Data    userResp `json:"data"`
}

func toUserResp(u models.User) userResp {
	return userResp{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Level:    u.Level,
		XP:       u.XP,
		Streak:   u.Streak,
		Profile:  u.Profile,
	}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, msgRegisterFields, nil)
		return
	}
	if errs := validate.Collect(
		validate.Required("username", req.Username),
		validate.Required("email", req.Email),
		validate.Required("password", req.Password),
	); len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, msgRegisterFields, errs)
		return
	}

	res, err := h.svc.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, authResp{Success: true, Data: toUserResp(res.User), Token: res.Token})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, msgLoginFields, nil)
		return
	}
	if errs := validate.Collect(
		validate.Required("email", req.Email),
		validate.Required("password", req.Password),
	); len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, msgLoginFields, errs)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authResp{Success: true, Data: toUserResp(res.User), Token: res.Token})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Not authorized, no token", nil)
		return
	}
	u, err := h.svc.Me(r.Context(), uid)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dataResp{Success: true, Data: toUserResp(u)})
}

type profileReq struct {
	Bio *string `json:"bio"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Not authorized, no token", nil)
		return
	}
	var req profileReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil || req.Bio == nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "Please provide bio", nil)
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), uid, *req.Bio)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dataResp{Success: true, Data: toUserResp(u)})
}

type passwordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Not authorized, no token", nil)
		return
	}
	var req passwordReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, "Please provide current and new password", nil)
		return
	}
	if err := h.svc.ChangePassword(r.Context(), uid, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeErr is the single place service errors become HTTP responses.
func (h *AuthHandler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve   *models.ValidationError
		dup  *repo.DuplicateFieldError
		cred *auth.CredentialError
	)
	switch {
	case errors.As(err, &ve):
		var details interface{}
		if ve.Field != "" {
			details = validate.Errs{{Field: ve.Field, Msg: ve.Msg}}
		}
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeValidation, ve.Msg, details)
	case errors.As(err, &dup):
		msg := "Username is already taken"
		if dup.Field == "email" {
			msg = "Email is already taken"
		}
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeDuplicateField, msg, map[string]string{"field": dup.Field})
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeInvalidCredentials, msgInvalidCredentials, nil)
	case errors.Is(err, services.ErrWrongPassword):
		httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeInvalidCredentials, "Current password is incorrect", nil)
	case errors.Is(err, repo.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.CodeNotFound, "User not found", nil)
	default:
		l := logger.FromContext(r.Context())
		if errors.As(err, &cred) {
			l.Error("credential failure", "op", cred.Op, "err", err)
		} else {
			l.Error("request failed", "err", err)
		}
		var details interface{}
		if h.dev {
			details = err.Error()
		}
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "Server error", details)
	}
}
