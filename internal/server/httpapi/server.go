// Package httpapi serves semantic search and health checks over HTTP with
// fiber, next to the gRPC endpoint.
package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/embedding"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/dmitrijs2005/trailkeeper/internal/server/auth"
	"github.com/dmitrijs2005/trailkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const identityLocal = "identity_id"

type Searcher interface {
	Search(ctx context.Context, identityID, query, searchType string, topK int) (*services.SearchResult, error)
	Configured() bool
}

type SearchRequest struct {
	Query      string `json:"query"`
	SearchType string `json:"search_type"`
	TopK       int    `json:"top_k"`
}

type SearchResult struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Score           float64 `json:"score"`
	Name            string  `json:"name,omitempty"`
	Location        string  `json:"location,omitempty"`
	Description     string  `json:"description,omitempty"`
	ObservationText string  `json:"observation_text,omitempty"`
	HikeID          string  `json:"hike_id,omitempty"`
}

type SearchResponse struct {
	Results              []SearchResult `json:"results"`
	QueryEmbeddingLength int            `json:"query_embedding_length"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	GeminiConfigured bool   `json:"gemini_configured"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type Server struct {
	address   string
	app       *fiber.App
	search    Searcher
	logger    logging.Logger
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, search Searcher, secretKey string) *Server {
	s := &Server{
		address:   address,
		search:    search,
		logger:    l.With("module", "http_server"),
		jwtSecret: []byte(secretKey),
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             1 << 20,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(s.requestLogger)

	app.Get("/health", s.health)
	app.Post("/search", s.authenticate, s.searchHandler)

	s.app = app
	return s
}

// App exposes the fiber application, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens until ctx is done and then shuts the app down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- s.app.Listen(s.address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(shutdownCtx)
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug(c.UserContext(), "http request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start).String(),
	)
	return err
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	} else {
		s.logger.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(ErrorResponse{Error: true, Message: msg})
}

// authenticate accepts the token as "Authorization: Bearer …" or in the
// access_token header used by gRPC clients.
func (s *Server) authenticate(c *fiber.Ctx) error {
	token := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
	if token == "" {
		token = c.Get(common.AccessTokenHeaderName)
	}
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}

	identityID, err := auth.GetIdentityFromToken(token, s.jwtSecret)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: invalid or expired token")
	}
	c.Locals(identityLocal, identityID)
	return c.Next()
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:           "healthy",
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		GeminiConfigured: s.search.Configured(),
	})
}

func (s *Server) searchHandler(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	identityID, _ := c.Locals(identityLocal).(string)
	res, err := s.search.Search(c.UserContext(), identityID, req.Query, req.SearchType, req.TopK)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidArgument):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, common.ErrUnauthorized):
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		case errors.Is(err, embedding.ErrNotConfigured):
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		default:
			return err
		}
	}

	resp := SearchResponse{Results: make([]SearchResult, 0, len(res.Hits)), QueryEmbeddingLength: res.QueryVectorSize}
	for _, h := range res.Hits {
		resp.Results = append(resp.Results, SearchResult(h))
	}
	return c.JSON(resp)
}
