package server

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spigell/interview-prep/internal/ai"
	"github.com/spigell/interview-prep/internal/analysis"
	"github.com/spigell/interview-prep/internal/feedback"
	"github.com/spigell/interview-prep/internal/render"
)

const sessionCookie = "interview_prep_session"

// Options tune the HTTP server.
type Options struct {
	SessionTTL   time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server exposes the analysis session over HTTP.
type Server struct {
	app     *fiber.App
	session *analysis.Session
	store   *store
	logger  *zap.Logger
}

type analyzeResponse struct {
	RunID  string      `json:"run_id"`
	Result render.View `json:"result"`
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	// Thumb is a shortcut for rating: "up" means 5, "down" means 1.
	Thumb string `json:"thumb"`
	Force bool   `json:"force"`
}

// New builds the fiber application and its routes.
func New(session *analysis.Session, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		session: session,
		store:   newStore(opts.SessionTTL),
		logger:  logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "interview-prep",
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	s.app.Use(recover.New())
	s.app.Use(s.requestLogger)

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api")
	api.Post("/analyze", s.handleAnalyze)
	api.Get("/result", s.handleResult)
	api.Post("/feedback", s.handleFeedback)

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = statusFor(err)
	}

	s.logger.Debug("http request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
	)

	return err
}

func (s *Server) entry(c *fiber.Ctx) *entry {
	id, e := s.store.get(c.Cookies(sessionCookie))
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return e
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	var req ai.Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	e := s.entry(c)
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := s.session.Submit(c.UserContext(), e.state, req)
	if err != nil {
		return err
	}

	return c.JSON(analyzeResponse{
		RunID:  e.state.RunID,
		Result: render.FromResult(result, e.state.Request.Mode),
	})
}

func (s *Server) handleResult(c *fiber.Ctx) error {
	e := s.entry(c)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Result == nil {
		return analysis.ErrNoResult
	}

	return c.JSON(analyzeResponse{
		RunID:  e.state.RunID,
		Result: render.FromResult(e.state.Result, e.state.Request.Mode),
	})
}

func (s *Server) handleFeedback(c *fiber.Ctx) error {
	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	rating, err := req.rating()
	if err != nil {
		return err
	}

	e := s.entry(c)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := s.session.RecordFeedback(c.UserContext(), e.state, rating, req.Comment, req.Force); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"run_id":   e.state.RunID,
		"recorded": true,
	})
}

func (r feedbackRequest) rating() (int, error) {
	switch strings.ToLower(strings.TrimSpace(r.Thumb)) {
	case "":
		return r.Rating, nil
	case "up":
		return feedback.MaxRating, nil
	case "down":
		return feedback.MinRating, nil
	default:
		return 0, fiber.NewError(fiber.StatusBadRequest, "thumb must be up or down")
	}
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)

	body := fiber.Map{
		"error": err.Error(),
		"code":  code,
	}

	var validationErr *ai.InputValidationError
	if errors.As(err, &validationErr) {
		body["fields"] = validationErr.Fields
	}

	var providerErr *ai.ProviderError
	if errors.As(err, &providerErr) {
		body["kind"] = providerErr.Kind
		body["retryable"] = providerErr.Retryable
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Warn("request failed", zap.String("path", c.Path()), zap.Int("status", code), zap.Error(err))
	}

	return c.Status(code).JSON(body)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	switch {
	case errors.Is(err, ai.ErrInvalidInput), errors.Is(err, feedback.ErrInvalidRating):
		return fiber.StatusBadRequest
	case errors.Is(err, analysis.ErrNoResult):
		return fiber.StatusNotFound
	case errors.Is(err, analysis.ErrFeedbackAlreadyRecorded):
		return fiber.StatusConflict
	case errors.Is(err, ai.ErrInvalidResponse):
		return fiber.StatusBadGateway
	}

	var providerErr *ai.ProviderError
	if errors.As(err, &providerErr) {
		if providerErr.Kind == ai.ProviderAuth {
			return fiber.StatusBadGateway
		}
		return fiber.StatusServiceUnavailable
	}

	return fiber.StatusInternalServerError
}
