// Package httpapi exposes the diagram parser over HTTP.
//
//	POST /v1/parse            diagram text in, model summary and warnings out
//	POST /v1/ddl?dialect=...  diagram text in, DDL as text/plain out
//	GET  /healthz
//
// Structural diagram errors answer 422 with the offending line.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/syssam/pumlgen"
	"github.com/syssam/pumlgen/compiler"
	"github.com/syssam/pumlgen/compiler/gen"
	"github.com/syssam/pumlgen/dialect"
	"github.com/syssam/pumlgen/dialect/sql/schema"
)

// DefaultMaxBody bounds the size of a request diagram.
const DefaultMaxBody = 1 << 20

// RequestIDHeader carries the request id.
const RequestIDHeader = "X-Request-ID"

// Server handles the HTTP routes.
type Server struct {
	opts     []gen.Option
	log      *slog.Logger
	maxBody  int64
	cache    pumlgen.Cache
	cacheTTL time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithGenOptions sets the options every request is parsed with.
func WithGenOptions(opts ...gen.Option) Option {
	return func(s *Server) { s.opts = append(s.opts, opts...) }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMaxBody bounds the request body size in bytes.
func WithMaxBody(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// WithCache caches rendered responses by diagram digest for ttl. A zero
// ttl keeps entries forever.
func WithCache(c pumlgen.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// New returns a Server.
func New(opts ...Option) *Server {
	s := &Server{
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBody: DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the gin engine serving all routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), s.logRequests())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	v1 := router.Group("/v1")
	{
		v1.POST("/parse", s.Parse)
		v1.POST("/ddl", s.DDL)
	}
	return router
}

// RequestID propagates the X-Request-ID header, generating one when the
// client did not send it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"id", c.GetString("requestId"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Parse handles POST /v1/parse.
func (s *Server) Parse(c *gin.Context) {
	body, ok := s.body(c)
	if !ok {
		return
	}
	key := pumlgen.NewCacheKey("parse", "", body)
	if b := s.cached(c, key); b != nil {
		Success(c, http.StatusOK, json.RawMessage(b), "diagram parsed")
		return
	}
	g, ok := s.graph(c, body)
	if !ok {
		return
	}
	b, err := json.Marshal(g.Summary())
	if err != nil {
		Fail(c, http.StatusInternalServerError, err, "cannot encode model")
		return
	}
	s.store(c, key, b)
	Success(c, http.StatusOK, json.RawMessage(b), "diagram parsed")
}

// DDL handles POST /v1/ddl.
func (s *Server) DDL(c *gin.Context) {
	name := c.DefaultQuery("dialect", dialect.Postgres)
	if err := dialect.Validate(name); err != nil {
		Fail(c, http.StatusBadRequest, err, "unsupported dialect")
		return
	}
	body, ok := s.body(c)
	if !ok {
		return
	}
	key := pumlgen.NewCacheKey("ddl", name, body)
	if b := s.cached(c, key); b != nil {
		c.Data(http.StatusOK, "text/plain; charset=utf-8", b)
		return
	}
	g, ok := s.graph(c, body)
	if !ok {
		return
	}
	ddl, err := schema.DDL(c.Request.Context(), g, name)
	if err != nil {
		Fail(c, http.StatusUnprocessableEntity, err, "diagram cannot be mapped to tables")
		return
	}
	s.store(c, key, []byte(ddl))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(ddl))
}

func (s *Server) cached(c *gin.Context, key pumlgen.CacheKey) []byte {
	if s.cache == nil {
		return nil
	}
	b, err := s.cache.Get(c.Request.Context(), key.String())
	if err != nil {
		s.log.Warn("cache get failed", "key", key.String(), "error", err)
		return nil
	}
	if b != nil {
		c.Header("X-Cache", "hit")
	}
	return b
}

func (s *Server) store(c *gin.Context, key pumlgen.CacheKey, b []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(c.Request.Context(), key.String(), b, s.cacheTTL); err != nil {
		s.log.Warn("cache set failed", "key", key.String(), "error", err)
	}
}

// body reads the request diagram. It writes the error response and
// returns false on failure.
func (s *Server) body(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Fail(c, http.StatusRequestEntityTooLarge, err, "diagram too large")
			return nil, false
		}
		Fail(c, http.StatusBadRequest, err, "cannot read request body")
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		Fail(c, http.StatusBadRequest, nil, "empty diagram")
		return nil, false
	}
	return body, true
}

// graph parses a diagram. It writes the error response and returns false
// on failure.
func (s *Server) graph(c *gin.Context, body []byte) (*gen.Graph, bool) {
	g, err := compiler.Parse(bytes.NewReader(body), s.opts...)
	switch {
	case pumlgen.IsParseError(err):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, APIResponse{
			Status:  "error",
			Message: "invalid diagram",
			Error:   err.Error(),
			Line:    pumlgen.LineOf(err),
		})
		return nil, false
	case err != nil:
		Fail(c, http.StatusInternalServerError, err, "cannot parse diagram")
		return nil, false
	}
	return g, true
}
