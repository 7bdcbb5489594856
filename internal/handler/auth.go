package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventra/eventra-backend/internal/config"
	"github.com/eventra/eventra-backend/internal/model"
	"github.com/eventra/eventra-backend/internal/notify"
	"github.com/eventra/eventra-backend/internal/repository"
	"github.com/eventra/eventra-backend/internal/utils"
)

// AuthHandler bundles dependencies for registration, login and contact
// verification across both principal collections.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
	Hosts HostStore
	OTPs  *repository.OTPStore
	Email notify.EmailSender
	SMS   notify.SMSSender
}

func NewAuthHandler(cfg config.Config, u UserStore, h HostStore,
	o *repository.OTPStore, email notify.EmailSender, sms notify.SMSSender) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Hosts: h, OTPs: o, Email: email, SMS: sms}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	HostType string `json:"hostType"` // hosts only
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
	Type  string `json:"type"` // email | mobile
	Kind  string `json:"kind"` // user | host, defaults to user
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

func (h *AuthHandler) validateRegister(req *registerReq) map[string]string {
	fields := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		fields["name"] = "name is required"
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fields["email"] = "valid email is required"
	}
	if req.Phone == "" {
		fields["phone"] = "phone is required"
	}
	if len(req.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	return fields
}

// issueOTPs stores fresh verification codes and delivers them; delivery is
// best-effort and never fails the registration.
func (h *AuthHandler) issueOTPs(ctx context.Context, kind, email, phone string) {
	emailCode, err := utils.GenerateOTP()
	if err != nil {
		log.Printf("auth: otp generation failed: %v", err)
		return
	}
	mobileCode, err := utils.GenerateOTP()
	if err != nil {
		log.Printf("auth: otp generation failed: %v", err)
		return
	}
	if err := h.OTPs.CreatePending(ctx, kind, email, emailCode, mobileCode); err != nil {
		log.Printf("auth: storing otp for %s failed: %v", email, err)
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.Email.Send(sendCtx, email, "Your verification code",
		"Your email verification code is "+emailCode+". It expires in 10 minutes."); err != nil {
		log.Printf("auth: otp email to %s failed: %v", email, err)
	}
	if err := h.SMS.Send(sendCtx, phone,
		"Your mobile verification code is "+mobileCode+". It expires in 10 minutes."); err != nil {
		log.Printf("auth: otp sms to %s failed: %v", phone, err)
	}
}

// RegisterUser handles POST /v1/auth/register/user.
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if fields := h.validateRegister(&req); len(fields) > 0 {
		return failFields(c, http.StatusBadRequest, fields)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Phone, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fail(c, http.StatusConflict, "email or phone already registered")
		}
		return fail(c, http.StatusInternalServerError, "create user failed")
	}
	h.issueOTPs(ctx, "user", req.Email, req.Phone)

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, string(model.KindUser), h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue token failed")
	}
	h.setTokenCookie(c, access)
	return respond(c, http.StatusCreated, echo.Map{
		"user":   echo.Map{"id": uid, "name": req.Name, "email": req.Email, "phone": req.Phone},
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// RegisterHost handles POST /v1/auth/register/host.
func (h *AuthHandler) RegisterHost(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	fields := h.validateRegister(&req)
	hostType := model.HostType(strings.ToLower(strings.TrimSpace(req.HostType)))
	if !model.ValidHostType(hostType) {
		fields["hostType"] = "hostType must be venue, caterer, decorator or organizer"
	}
	if len(fields) > 0 {
		return failFields(c, http.StatusBadRequest, fields)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hid, err := h.Hosts.Create(ctx, req.Name, req.Email, req.Phone, req.Password, hostType, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fail(c, http.StatusConflict, "email or phone already registered")
		}
		return fail(c, http.StatusInternalServerError, "create host failed")
	}
	h.issueOTPs(ctx, "host", req.Email, req.Phone)

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, hid, string(model.KindHost), h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue token failed")
	}
	h.setTokenCookie(c, access)
	return respond(c, http.StatusCreated, echo.Map{
		"host":   echo.Map{"id": hid, "name": req.Name, "email": req.Email, "phone": req.Phone, "hostType": hostType},
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// VerifyOTP handles POST /v1/auth/verify-otp. Each channel is consumed
// independently; once both are confirmed the aggregate verified flag is set
// and the pending record released.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if kind == "" {
		kind = "user"
	}
	if req.Email == "" || req.OTP == "" {
		return fail(c, http.StatusBadRequest, "email and otp are required")
	}
	if req.Type != "email" && req.Type != "mobile" {
		return fail(c, http.StatusBadRequest, "type must be email or mobile")
	}
	if kind != "user" && kind != "host" {
		return fail(c, http.StatusBadRequest, "kind must be user or host")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	both, err := h.OTPs.VerifyChannel(ctx, kind, req.Email, req.Type, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOTPMismatch):
			return fail(c, http.StatusUnauthorized, "incorrect verification code")
		case errors.Is(err, repository.ErrOTPExpired):
			return fail(c, http.StatusBadRequest, "verification code expired or not requested")
		}
		return fail(c, http.StatusInternalServerError, "verification failed")
	}

	if kind == "host" {
		err = h.Hosts.SetChannelVerified(ctx, req.Email, req.Type)
	} else {
		err = h.Users.SetChannelVerified(ctx, req.Email, req.Type)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "persisting verification failed")
	}
	return respond(c, http.StatusOK, echo.Map{"verified": req.Type, "fullyVerified": both})
}

// LoginUser handles POST /v1/auth/login/user. Accounts listed in
// ADMIN_EMAILS receive the ADMIN kind.
func (h *AuthHandler) LoginUser(c echo.Context) error {
	req, err := bindLogin(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "email and password are required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, "invalid credentials")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	kind := model.KindUser
	if h.Cfg.IsAdmin(u.Email) {
		kind = model.KindAdmin
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(kind), h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue token failed")
	}
	h.setTokenCookie(c, access)
	return respond(c, http.StatusOK, echo.Map{
		"user":   echo.Map{"id": u.ID, "name": u.Name, "email": u.Email, "isVerified": u.IsVerified},
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// LoginHost handles POST /v1/auth/login/host.
func (h *AuthHandler) LoginHost(c echo.Context) error {
	req, err := bindLogin(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "email and password are required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	host, err := h.Hosts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, "invalid credentials")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if !utils.VerifyPassword(host.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, host.ID, string(model.KindHost), h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "issue token failed")
	}
	h.setTokenCookie(c, access)
	return respond(c, http.StatusOK, echo.Map{
		"host":   echo.Map{"id": host.ID, "name": host.Name, "email": host.Email, "hostType": host.HostType, "isVerified": host.IsVerified},
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Me handles GET /v1/auth/me, returning the profile behind the credential.
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if actor.Kind == model.KindHost {
		host, err := h.Hosts.GetByID(ctx, actor.ID)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "load profile failed")
		}
		return respond(c, http.StatusOK, host)
	}
	u, err := h.Users.GetByID(ctx, actor.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "load profile failed")
	}
	return respond(c, http.StatusOK, u)
}

// Logout handles GET /v1/auth/logout by expiring the token cookie. Access
// tokens themselves stay valid until expiry; there is no server-side session.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     utils.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return respond(c, http.StatusOK, echo.Map{"loggedOut": true})
}

func (h *AuthHandler) setTokenCookie(c echo.Context, t utils.AccessToken) {
	c.SetCookie(&http.Cookie{
		Name:     utils.CookieName,
		Value:    t.Token,
		Path:     "/",
		Expires:  t.Exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func bindLogin(c echo.Context) (loginReq, error) {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return req, err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return req, errors.New("missing credentials")
	}
	return req, nil
}
