// Package server wires the auth commands to their HTTP surface.
package server

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"

	"github.com/kavyakala/kavyakala/auth"
	"github.com/kavyakala/kavyakala/config"
	"github.com/kavyakala/kavyakala/middleware/jwtware"
)

type Server struct {
	app    *fiber.App
	cfg    *config.Config
	logger auth.Logger
	auther *auth.Auther

	signup         *auth.SignupHandler
	verify         *auth.VerifyEmailHandler
	resend         *auth.ResendVerificationHandler
	createSubadmin *auth.CreateSubadminHandler
	setActive      *auth.SetUserActiveHandler
	changeRole     *auth.ChangeUserRoleHandler
	deleteUser     *auth.DeleteUserHandler
	listUsers      *auth.ListUsersHandler
}

func New(cfg *config.Config, logger auth.Logger, repo auth.RepositoryManager, auther *auth.Auther, mail auth.Mailer) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "kavyakala",
		ErrorHandler: ErrorHandler(logger),
	})

	s := &Server{
		app:    app,
		cfg:    cfg,
		logger: logger,
		auther: auther,

		signup:         auth.NewSignupHandler(repo, mail, cfg.APIBaseURL, logger),
		verify:         auth.NewVerifyEmailHandler(repo, auther.TokenService()),
		resend:         auth.NewResendVerificationHandler(repo, mail, cfg.APIBaseURL, logger),
		createSubadmin: auth.NewCreateSubadminHandler(repo),
		setActive:      auth.NewSetUserActiveHandler(repo),
		changeRole:     auth.NewChangeUserRoleHandler(repo),
		deleteUser:     auth.NewDeleteUserHandler(repo),
		listUsers:      auth.NewListUsersHandler(repo),
	}

	s.registerRoutes()

	return s
}

// App exposes the underlying fiber instance, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	protect := jwtware.New(jwtware.Config{
		TokenValidator: tokenValidatorAdapter{s.auther.TokenService()},
		ContextKey:     s.cfg.ContextKey,
		TokenLookup:    s.cfg.TokenLookup,
		AuthScheme:     s.cfg.AuthScheme,
	})

	api := s.app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", s.handleSignup)
	authGroup.Post("/login", s.handleLogin)
	authGroup.Get("/verify/:token", s.handleVerifyEmail)
	authGroup.Post("/resend-verification", s.handleResendVerification)
	authGroup.Get("/me", protect, s.handleMe)

	admin := api.Group("/admin",
		protect,
		jwtware.RequireRoles(s.cfg.ContextKey, string(auth.RoleAdmin)),
	)
	admin.Post("/create-subadmin", s.handleCreateSubadmin)
	admin.Get("/users", s.handleListUsers)
	admin.Patch("/users/:id/activate", s.handleActivateUser)
	admin.Patch("/users/:id/deactivate", s.handleDeactivateUser)
	admin.Patch("/users/:id/role", s.handleChangeRole)
	admin.Delete("/users/:id", s.handleDeleteUser)
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	payload := SignupRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	if s.cfg.Debug {
		fmt.Println(print.MaybePrettyJSON(payload))
	}

	var resp *auth.SignupResponse

	msg := auth.SignupMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Handle:   payload.Handle,
		Password: payload.Password,
		OnResponse: func(r *auth.SignupResponse) {
			resp = r
		},
	}

	if err := s.signup.Execute(c.UserContext(), msg); err != nil {
		return err
	}

	if resp.Resent {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message":            "Account exists but is not verified. A new verification email has been sent.",
			"needs_verification": true,
		})
	}

	message := "Signup successful. Check your email to verify your account."
	if !resp.EmailSent {
		message = "Account created, but email could not be sent. Use resend verification."
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    message,
		"email_sent": resp.EmailSent,
		"user":       resp.User,
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	payload := LoginRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	token, user, err := s.auther.Login(c.UserContext(), payload.Identifier, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(LoginResponse{
		Token: token,
		User:  user.Public(),
	})
}

// handleVerifyEmail consumes the emailed token and bounces the browser to
// the frontend callback. The session token travels in the URL fragment so
// it never reaches server logs or Referer headers.
func (s *Server) handleVerifyEmail(c *fiber.Ctx) error {
	var resp *auth.VerifyEmailResponse

	msg := auth.VerifyEmailMessage{
		Token: c.Params("token"),
		OnResponse: func(r *auth.VerifyEmailResponse) {
			resp = r
		},
	}

	if err := s.verify.Execute(c.UserContext(), msg); err != nil {
		return err
	}

	next := c.Query("next", "/")
	redirect := fmt.Sprintf("%s/auth/callback?verified=1&next=%s#token=%s",
		s.cfg.AppBaseURL,
		url.QueryEscape(next),
		url.QueryEscape(resp.Token),
	)

	return c.Redirect(redirect, fiber.StatusFound)
}

func (s *Server) handleResendVerification(c *fiber.Ctx) error {
	payload := ResendVerificationRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	var resp *auth.ResendVerificationResponse

	msg := auth.ResendVerificationMessage{
		Email: payload.Email,
		OnResponse: func(r *auth.ResendVerificationResponse) {
			resp = r
		},
	}

	if err := s.resend.Execute(c.UserContext(), msg); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":    "Verification email sent.",
		"email_sent": resp.EmailSent,
	})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	claims := jwtware.ClaimsFromContext(c, s.cfg.ContextKey)
	if claims == nil {
		return jwtware.ErrMissingClaims
	}

	user, err := s.auther.CurrentUser(c.UserContext(), claims.UserID())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": user.Public()})
}

func (s *Server) handleCreateSubadmin(c *fiber.Ctx) error {
	payload := CreateSubadminRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	var resp *auth.CreateSubadminResponse

	msg := auth.CreateSubadminMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Handle:   payload.Handle,
		Password: payload.Password,
		OnResponse: func(r *auth.CreateSubadminResponse) {
			resp = r
		},
	}

	if err := s.createSubadmin.Execute(c.UserContext(), msg); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": resp.User})
}

func (s *Server) handleListUsers(c *fiber.Ctx) error {
	var resp *auth.ListUsersResponse

	msg := auth.ListUsersMessage{
		OnResponse: func(r *auth.ListUsersResponse) {
			resp = r
		},
	}

	if err := s.listUsers.Execute(c.UserContext(), msg); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"users": resp.Users})
}

func (s *Server) handleActivateUser(c *fiber.Ctx) error {
	return s.setUserActive(c, true)
}

func (s *Server) handleDeactivateUser(c *fiber.Ctx) error {
	return s.setUserActive(c, false)
}

func (s *Server) setUserActive(c *fiber.Ctx, active bool) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	var resp *auth.SetUserActiveResponse

	msg := auth.SetUserActiveMessage{
		UserID: id,
		Active: active,
		OnResponse: func(r *auth.SetUserActiveResponse) {
			resp = r
		},
	}

	if err := s.setActive.Execute(c.UserContext(), msg); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": resp.User})
}

func (s *Server) handleChangeRole(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	payload := ChangeRoleRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	var resp *auth.ChangeUserRoleResponse

	msg := auth.ChangeUserRoleMessage{
		UserID: id,
		Role:   auth.UserRole(payload.Role),
		OnResponse: func(r *auth.ChangeUserRoleResponse) {
			resp = r
		},
	}

	if err := s.changeRole.Execute(c.UserContext(), msg); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": resp.User})
}

func (s *Server) handleDeleteUser(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	var resp *auth.DeleteUserResponse

	msg := auth.DeleteUserMessage{
		UserID: id,
		OnResponse: func(r *auth.DeleteUserResponse) {
			resp = r
		},
	}

	if err := s.deleteUser.Execute(c.UserContext(), msg); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"deleted": resp.Deleted, "id": resp.UserID})
}

func parseUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}
	return id, nil
}

// tokenValidatorAdapter narrows auth.TokenService to the middleware's
// validator interface.
type tokenValidatorAdapter struct {
	tokens auth.TokenService
}

func (a tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
