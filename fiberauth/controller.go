package fiberauth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-chat-auth"
	"github.com/goliatone/go-chat-auth/social"
	goerrors "github.com/goliatone/go-errors"
)

const (
	DefaultCookieName      = "chat_session"
	DefaultStateCookieName = "chat_oauth_state"
	DefaultLocalsKey       = "session"
	stateCookieTTL         = 10 * time.Minute
)

// SessionService signs users in and resolves sessions from tokens.
type SessionService interface {
	SignIn(ctx context.Context, attempt auth.SignInAttempt) (*auth.SignInResult, error)
	GetSession(ctx context.Context, token string) (*auth.Session, error)
}

// FederatedFlow runs the OAuth redirect dance.
type FederatedFlow interface {
	BeginAuth(ctx context.Context, provider, redirectURL string) (*social.AuthRedirect, error)
	CompleteAuth(ctx context.Context, provider, code, state string) (*social.AuthResult, error)
}

// Config controls cookie handling and token lookup.
type Config struct {
	Prefix          string
	CookieName      string
	CookieSecure    bool
	CookieDomain    string
	StateCookieName string
	// TokenLookup defaults to the Authorization header then the session cookie.
	TokenLookup string
	AuthScheme  string
	LocalsKey   string
}

func (c Config) withDefaults() Config {
	if c.Prefix == "" {
		c.Prefix = "/auth"
	}
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.StateCookieName == "" {
		c.StateCookieName = DefaultStateCookieName
	}
	if c.AuthScheme == "" {
		c.AuthScheme = "Bearer"
	}
	if c.TokenLookup == "" {
		c.TokenLookup = "header:" + fiber.HeaderAuthorization + ",cookie:" + c.CookieName
	}
	if c.LocalsKey == "" {
		c.LocalsKey = DefaultLocalsKey
	}
	return c
}

// Controller exposes sign in and session routes over fiber.
type Controller struct {
	sessions   SessionService
	flow       FederatedFlow
	cfg        Config
	extractors []TokenExtractor
	logger     auth.Logger
}

// NewController creates a controller. flow may be nil when no federated
// provider is configured.
func NewController(sessions SessionService, flow FederatedFlow, cfg Config) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		sessions:   sessions,
		flow:       flow,
		cfg:        cfg,
		extractors: GetExtractors(cfg.TokenLookup, cfg.AuthScheme),
		logger:     auth.DefaultLogger(),
	}
}

// WithLogger sets the logger.
func (h *Controller) WithLogger(logger auth.Logger) *Controller {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// Register mounts the auth routes on r.
func (h *Controller) Register(r fiber.Router) {
	g := r.Group(h.cfg.Prefix)
	g.Post("/login", h.Login)
	g.Post("/logout", h.Logout)
	g.Get("/session", h.Session)

	if h.flow != nil {
		g.Get("/oauth/:provider", h.OAuthBegin)
		g.Get("/oauth/:provider/callback", h.OAuthCallback)
	}
}

type loginPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type sessionResponse struct {
	Token   string        `json:"token,omitempty"`
	Session *auth.Session `json:"session"`
}

// Login handles credential sign in.
func (h *Controller) Login(c *fiber.Ctx) error {
	var payload loginPayload
	if err := c.BodyParser(&payload); err != nil {
		// still run through SignIn so a bad body costs the same as a bad password
		payload = loginPayload{}
	}

	res, err := h.sessions.SignIn(c.UserContext(), auth.PasswordAttempt{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	h.setSessionCookie(c, res)
	return c.JSON(sessionResponse{Token: res.Token, Session: res.Session})
}

// Logout clears the session cookie.
func (h *Controller) Logout(c *fiber.Ctx) error {
	h.clearCookie(c, h.cfg.CookieName)
	return c.SendStatus(fiber.StatusNoContent)
}

// Session returns the current session view.
func (h *Controller) Session(c *fiber.Ctx) error {
	session, err := h.resolve(c)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(sessionResponse{Session: session})
}

// OAuthBegin redirects to the provider consent page.
func (h *Controller) OAuthBegin(c *fiber.Ctx) error {
	redirect, err := h.flow.BeginAuth(c.UserContext(), c.Params("provider"), c.Query("redirect"))
	if err != nil {
		return h.respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.StateCookieName,
		Value:    redirect.State,
		Path:     h.cfg.Prefix,
		Domain:   h.cfg.CookieDomain,
		Expires:  time.Now().Add(stateCookieTTL),
		Secure:   h.cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect(redirect.URL, fiber.StatusFound)
}

// OAuthCallback completes the federated sign in.
func (h *Controller) OAuthCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	bound := c.Cookies(h.cfg.StateCookieName)
	h.clearCookie(c, h.cfg.StateCookieName)

	if errCode := c.Query("error"); errCode != "" {
		h.logger.Info("oauth consent denied", "provider", c.Params("provider"), "error", errCode)
		return h.respondError(c, auth.ErrSignInRejected)
	}

	if state == "" || state != bound {
		h.logger.Warn("oauth state not bound to browser", "provider", c.Params("provider"))
		return h.respondError(c, social.ErrInvalidState)
	}

	res, err := h.flow.CompleteAuth(c.UserContext(), c.Params("provider"), c.Query("code"), state)
	if err != nil {
		return h.respondError(c, err)
	}

	h.setSessionCookie(c, res.SignInResult)
	return c.Redirect(res.RedirectURL, fiber.StatusFound)
}

func (h *Controller) resolve(c *fiber.Ctx) (*auth.Session, error) {
	token := ExtractToken(c, h.extractors)
	if token == "" {
		return nil, auth.ErrNoSession
	}
	return h.sessions.GetSession(c.UserContext(), token)
}

func (h *Controller) setSessionCookie(c *fiber.Ctx, res *auth.SignInResult) {
	if res == nil {
		return
	}

	expires := time.Time{}
	if res.Session != nil {
		expires = res.Session.Expires
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    res.Token,
		Path:     "/",
		Domain:   h.cfg.CookieDomain,
		Expires:  expires,
		Secure:   h.cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *Controller) clearCookie(c *fiber.Ctx, name string) {
	path := "/"
	if name == h.cfg.StateCookieName {
		path = h.cfg.Prefix
	}
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Domain:   h.cfg.CookieDomain,
		Expires:  time.Unix(0, 0),
		Secure:   h.cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *Controller) respondError(c *fiber.Ctx, err error) error {
	status, body := errorBody(err)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("auth request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(body)
}

func errorBody(err error) (int, errorResponse) {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich == nil {
		return fiber.StatusInternalServerError, errorResponse{Error: "internal error"}
	}

	switch rich.TextCode {
	case auth.TextCodeNoSession, auth.TextCodeTokenExpired, auth.TextCodeTokenMalformed:
		return fiber.StatusUnauthorized, errorResponse{Error: auth.ErrNoSession.Message, Code: auth.TextCodeNoSession}
	case auth.TextCodeSignInRejected:
		return fiber.StatusUnauthorized, errorResponse{Error: rich.Message, Code: rich.TextCode}
	case social.TextCodeProviderNotFound:
		return fiber.StatusNotFound, errorResponse{Error: rich.Message, Code: rich.TextCode}
	case social.TextCodeInvalidState, social.TextCodeStateExpired:
		return fiber.StatusBadRequest, errorResponse{Error: rich.Message, Code: rich.TextCode}
	case social.TextCodeTokenExchangeFail, social.TextCodeUserInfoFail, social.TextCodeEmailNotVerified:
		return fiber.StatusUnauthorized, errorResponse{Error: auth.ErrSignInRejected.Message, Code: auth.TextCodeSignInRejected}
	}

	if rich.Category == goerrors.CategoryBadInput || rich.Category == goerrors.CategoryValidation {
		return fiber.StatusBadRequest, errorResponse{Error: rich.Message, Code: rich.TextCode}
	}
	return fiber.StatusInternalServerError, errorResponse{Error: "internal error"}
}
