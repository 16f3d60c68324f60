// Package server exposes the handler over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pricofy/word-translator/internal/dictionary"
	"github.com/pricofy/word-translator/internal/domain"
	"github.com/pricofy/word-translator/internal/handler"
	"github.com/pricofy/word-translator/internal/registration"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Server is the HTTP front end.
type Server struct {
	handler *handler.Handler
	metrics http.Handler
	logger  *slog.Logger
	router  *gin.Engine
}

// New builds the routes. metricsHandler may be nil.
func New(h *handler.Handler, metricsHandler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), accessLog(logger))

	s := &Server{handler: h, metrics: metricsHandler, logger: logger, router: router}

	router.POST("/translate", s.translate)
	router.POST("/words", s.register)
	router.GET("/languages", s.languages)
	router.GET("/languages/:id", s.language)
	router.GET("/examples", s.examples)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) translate(c *gin.Context) {
	var req domain.TransReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.JsonErr{Content: "invalid translate request: " + err.Error()})
		return
	}

	resp, err := s.handler.Translate(c.Request.Context(), req)
	if err != nil {
		c.JSON(translateStatus(err), domain.TransErr{Content: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) register(c *gin.Context) {
	var req domain.NewTransReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.JsonErr{Content: "invalid register request: " + err.Error()})
		return
	}

	if err := s.handler.Register(c.Request.Context(), req); err != nil {
		c.JSON(registerStatus(err), registration.Payload(err))
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) languages(c *gin.Context) {
	c.JSON(http.StatusOK, s.handler.Languages())
}

func (s *Server) language(c *gin.Context) {
	lang, err := s.handler.Language(c.Param("id"))
	if err != nil {
		c.JSON(translateStatus(err), domain.TransErr{Content: err.Error()})
		return
	}
	c.JSON(http.StatusOK, lang)
}

func (s *Server) examples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"translate": domain.ExampleTransReq(),
		"register":  domain.ExampleNewTransReq(),
	})
}

func translateStatus(err error) int {
	var reqErr *handler.RequestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, dictionary.ErrUnknownLanguage):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func registerStatus(err error) int {
	var reqErr *handler.RequestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, registration.ErrNotPersisted):
		return http.StatusInternalServerError
	case errors.Is(err, registration.ErrUnknownLanguage):
		return http.StatusNotFound
	case errors.Is(err, registration.ErrDuplicateMeaning), errors.Is(err, registration.ErrDuplicateWord):
		return http.StatusConflict
	case errors.Is(err, registration.ErrInvalidSymbol), errors.Is(err, registration.ErrNoMeanings):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
