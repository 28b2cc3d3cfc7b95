package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/Remi1095/chronicle/pkg/types"
	"github.com/Remi1095/chronicle/server/storage/memory"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-ID"

// Server serves the chronicle REST API from a memory store under /api.
type Server struct {
	store    *memory.Store
	app      *fiber.App
	logger   zerolog.Logger
	mu       sync.Mutex
	listener net.Listener
	stopped  bool
	wg       sync.WaitGroup
}

// NewServer creates a new HTTP server instance
func NewServer(store *memory.Store, logger zerolog.Logger) *Server {
	s := &Server{
		store:  store,
		logger: logger.With().Str("component", "http-server").Logger(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "chronicle-devserver",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(s.logRequests)
	s.app.Get("/health", s.handleHealth)

	api := s.app.Group("/api")

	api.Get("/tables", s.listTables)
	api.Post("/tables", s.createTable)
	api.Put("/tables/:table_id", s.updateTable)
	api.Patch("/tables/:table_id", s.updateTable)
	api.Delete("/tables/:table_id", s.deleteTable)
	api.Get("/tables/:table_id/data", s.getDataTable)

	api.Get("/tables/:table_id/fields", s.listFields)
	api.Post("/tables/:table_id/fields", s.createField)
	api.Put("/tables/:table_id/fields/:field_id", s.updateField)
	api.Patch("/tables/:table_id/fields/:field_id", s.updateField)
	api.Delete("/tables/:table_id/fields/:field_id", s.deleteField)

	api.Post("/tables/:table_id/entries", s.createEntry)
	api.Put("/tables/:table_id/entries/:entry_id", s.updateEntry)
	api.Patch("/tables/:table_id/entries/:entry_id", s.updateEntry)
	api.Delete("/tables/:table_id/entries/:entry_id", s.deleteEntry)

	return s
}

// App exposes the fiber application, mostly for in-process tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on addr and serves in the background until Stop is called
// or ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(ErrListenFailed, err, "failed to listen").AddContext("address", addr)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info().Str("address", ln.Addr().String()).Msg("Starting HTTP server")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.app.Listener(ln); err != nil && !s.isStopped() {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	context.AfterFunc(ctx, func() {
		if err := s.Stop(); err != nil {
			s.logger.Error().Err(err).Msg("Error during HTTP server shutdown")
		}
	})

	return nil
}

// Addr returns the address the server listens on, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.stopped || s.listener == nil {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	ln := s.listener
	s.mu.Unlock()

	s.logger.Info().Msg("Stopping HTTP server")

	err := s.app.ShutdownWithTimeout(30 * time.Second)
	// Unblocks Listener when shutdown raced its startup.
	_ = ln.Close()
	s.wg.Wait()
	if err != nil {
		return errors.Wrap(ErrShutdownFailed, err, "failed to shut down HTTP server")
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

func (s *Server) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// logRequests runs the chain, renders any error and logs the outcome.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	requestID := c.Get(RequestIDHeader)
	if requestID != "" {
		c.Set(RequestIDHeader, requestID)
	}

	if chainErr := c.Next(); chainErr != nil {
		if err := s.app.ErrorHandler(c, chainErr); err != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.logger.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Str("request_id", requestID).
		Dur("duration", time.Since(start)).
		Msg("Handled request")
	return nil
}

// handleError maps store and request errors onto responses: validation
// failures become a 422 JSON object, missing resources a 404 text body.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var validation *memory.ValidationError
	if stderrors.As(err, &validation) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(validation.Fields)
	}

	if memory.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).SendString(errors.AsError(err).Message)
	}

	var fiberErr *fiber.Error
	if stderrors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).SendString(fiberErr.Message)
	}

	s.logger.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"server":    "chronicle-devserver",
	})
}

// pathID reads a numeric path parameter.
func pathID(c *fiber.Ctx, name string) (types.ID, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name+": "+raw)
	}
	return types.ID(id), nil
}

// decodeBody decodes the JSON request body into v. Malformed JSON is a
// 400; JSON of the wrong shape is a 422.
func decodeBody(c *fiber.Ctx, v any) error {
	body := c.Body()
	if !json.Valid(body) {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed JSON body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Failed to deserialize the JSON body: "+err.Error())
	}
	return nil
}
