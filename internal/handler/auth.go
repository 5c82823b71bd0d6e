package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Manikandan063/air-ambulance-backend/internal/config"
	"github.com/Manikandan063/air-ambulance-backend/internal/model"
	"github.com/Manikandan063/air-ambulance-backend/internal/repository"
	"github.com/Manikandan063/air-ambulance-backend/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Mailer *utils.Mailer
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, m *utils.Mailer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Mailer: m}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}
type authResp struct {
	User        userPart  `json:"user"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Expires     time.Time `json:"expires"`
}

// Register: create user and return an access token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.FullName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and full_name required"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleHospitalStaff
	}
	if !model.KnownRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, req.FullName, req.Phone, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, req.Email, uid, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusCreated, authResp{
		User:        userPart{ID: uid, Email: req.Email, FullName: req.FullName, Role: role},
		AccessToken: access.Token,
		TokenType:   "bearer",
		Expires:     access.Exp,
	})
}

// Login: verify credentials and return a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "inactive user"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect email or password"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.Email, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:        userPart{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role},
		AccessToken: access.Token,
		TokenType:   "bearer",
		Expires:     access.Exp,
	})
}

// ForgotPassword stores a short-lived OTP on the account and mails it.
// The response is identical whether or not the email exists, so the
// endpoint cannot be used to probe for accounts.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp := echo.Map{"message": "If the email is registered, a reset code has been sent"}

	otp, err := utils.NewOTP()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "otp generation failed"})
	}
	expiry := time.Now().UTC().Add(time.Duration(h.Cfg.OTPTTLMin) * time.Minute)
	if err := h.Users.SetResetOTP(ctx, email, otp, expiry); err != nil {
		// Unknown email gets the same response as a known one.
		return c.JSON(http.StatusOK, resp)
	}
	if err := h.Mailer.SendOTP(email, otp); err != nil {
		c.Logger().Errorf("auth: OTP mail to %s failed: %v", email, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ResetPassword swaps the password when the submitted OTP matches and has
// not expired.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, otp and new_password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
	}
	if u.ResetOTP == nil || u.OTPExpiry == nil || *u.ResetOTP != req.OTP || time.Now().UTC().After(*u.OTPExpiry) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
	}
	if err := h.Users.ResetPassword(ctx, u.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := c.Get("user").(*model.User)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role})
}
