package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

// AuthHandler implements sign-up, sign-in, token refresh, sign-out and
// the current profile.
type AuthHandler struct {
	Cfg      config.Config
	Profiles ProfileStore
	Tokens   TokenStore
	Log      *slog.Logger
}

func NewAuthHandler(cfg config.Config, p ProfileStore, t TokenStore, log *slog.Logger) *AuthHandler {
	if p == nil || t == nil {
		panic("nil store passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Profiles: p, Tokens: t, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	FullName string  `json:"full_name" validate:"required,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,e164"`
	Role     string  `json:"role" validate:"omitempty,oneof=client owner"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type updateProfileReq struct {
	FullName string  `json:"full_name" validate:"required,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,e164"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    *model.Profile `json:"user"`
	Access  tokenPart      `json:"access"`
	Refresh tokenPart      `json:"refresh"`
}

// mint signs an access token and draws a refresh token for p.  Nothing
// is stored.
func (h *AuthHandler) mint(p *model.Profile) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, p.ID, p.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    p,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

// issue mints a pair and stores the refresh hash.
func (h *AuthHandler) issue(c echo.Context, p *model.Profile) (authResp, error) {
	resp, err := h.mint(p)
	if err != nil {
		return authResp{}, err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Tokens.StoreRefresh(ctx, p.ID, utils.HashRefreshRaw(resp.Refresh.Token), resp.Refresh.Expires); err != nil {
		return authResp{}, err
	}
	return resp, nil
}

// Register creates a client or owner account and signs it in.  Admin is
// never self-assigned.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	role := model.RoleClient
	if strings.EqualFold(req.Role, string(model.RoleOwner)) {
		role = model.RoleOwner
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	uid, err := h.Profiles.Create(ctx, repository.NewProfile{
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		FullName: req.FullName,
		Phone:    req.Phone,
	}, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, utils.ErrWeakPassword) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": err.Error()})
		}
		return respondError(c, h.Log, err)
	}
	p, err := h.Profiles.GetByID(ctx, uid)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	resp, err := h.issue(c, p)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	h.Log.Info("user registered", "user_id", uid, "role", role)
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return respondError(c, h.Log, err)
	}
	if !p.IsActive || !utils.VerifyPassword(p.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	resp, err := h.issue(c, p)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// validRefresh resolves the owner of a refresh token from the body.
func (h *AuthHandler) validRefresh(c echo.Context) (string, *model.Profile, error) {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return "", nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := dbCtx(c)
	defer cancel()

	uid, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidRefresh) {
			return "", nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return "", nil, respondError(c, h.Log, err)
	}
	p, err := h.Profiles.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return "", nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return "", nil, respondError(c, h.Log, err)
	}
	return hash, p, nil
}

// Refresh rotates the refresh token: the presented one is revoked and a
// new pair is returned.  A token can be rotated only once.
func (h *AuthHandler) Refresh(c echo.Context) error {
	hash, p, err := h.validRefresh(c)
	if p == nil {
		return err
	}
	resp, err := h.mint(p)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	next := utils.HashRefreshRaw(resp.Refresh.Token)
	if err := h.Tokens.Rotate(ctx, hash, p.ID, next, resp.Refresh.Expires); err != nil {
		if errors.Is(err, repository.ErrInvalidRefresh) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAccess returns a new access token and leaves the refresh token
// in place.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	_, p, err := h.validRefresh(c)
	if p == nil {
		return err
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, p.ID, p.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes the refresh token in the body, or every session of the
// caller when only a valid bearer token is presented.
func (h *AuthHandler) Logout(c echo.Context) error {
	var (
		uid       uint64
		hasBearer bool
	)
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
			uid, hasBearer = claims.UserID, true
		}
	}

	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := dbCtx(c)
	defer cancel()

	switch {
	case refreshToken != "":
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return respondError(c, h.Log, err)
		}
		return c.NoContent(http.StatusNoContent)
	case hasBearer:
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return respondError(c, h.Log, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	p, err := h.Profiles.GetByID(ctx, s.UserID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateMe changes the caller's display name and phone.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	var req updateProfileReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Profiles.UpdateProfile(ctx, s.UserID, req.FullName, req.Phone); err != nil {
		return respondError(c, h.Log, err)
	}
	p, err := h.Profiles.GetByID(ctx, s.UserID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}
