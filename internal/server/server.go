// Package server exposes mask rasterisation over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"seehuhn.de/go/labelmask"
	"seehuhn.de/go/labelmask/internal/cache"
	"seehuhn.de/go/labelmask/internal/config"
	"seehuhn.de/go/labelmask/labelme"
	"seehuhn.de/go/labelmask/maskio"
)

// KeyHeader carries the cache key of a generated mask.
const KeyHeader = "X-Mask-Key"

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	BuildTime string
	BuildID   string
	GitCommit string
	GitBranch string
}

// Server holds the state shared by the request handlers.
type Server struct {
	cfg    *config.Config
	store  cache.Store
	logger *zap.Logger
	info   BuildInfo
}

// New returns a server. If store is nil, masks are not cached and
// lookups by key always fail.
func New(cfg *config.Config, store cache.Store, logger *zap.Logger, info BuildInfo) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
		info:   info,
	}
}

// Router returns the HTTP handler for all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Logger(s.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": s.info.Version,
			"cache":   s.store != nil,
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    s.info.Version,
			"build_time": s.info.BuildTime,
			"build_id":   s.info.BuildID,
			"git_commit": s.info.GitCommit,
			"git_branch": s.info.GitBranch,
		})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/masks", s.CreateMask)
		api.GET("/masks/:key", s.GetMask)
	}
	return r
}

// ErrorResponse is the body of all failed requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// MaskResponse is the body of a mask request with encoding=base64.
type MaskResponse struct {
	Key    string `json:"key"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Data   string `json:"data"`
}

type maskRequest struct {
	shape   int // -1 if not given
	label   string
	hasLbl  bool
	invert  bool
	format  maskio.Format
	base64  bool
	options labelme.Options
}

func (s *Server) parseRequest(c *gin.Context) (*maskRequest, error) {
	req := &maskRequest{
		shape:   -1,
		invert:  s.cfg.Mask.Invert,
		options: s.cfg.LabelmeOptions(),
	}
	req.format = s.cfg.MaskioOptions().Format

	if v, ok := c.GetQuery("shape"); ok {
		i, err := strconv.Atoi(v)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("invalid shape index %q", v)
		}
		req.shape = i
	}
	req.label, req.hasLbl = c.GetQuery("label")
	if req.shape >= 0 && req.hasLbl {
		return nil, errors.New("shape and label are mutually exclusive")
	}
	if v, ok := c.GetQuery("invert"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid invert value %q", v)
		}
		req.invert = b
	}
	if v, ok := c.GetQuery("format"); ok {
		f, err := maskio.ParseFormat(v)
		if err != nil {
			return nil, err
		}
		req.format = f
	}
	switch enc := c.Query("encoding"); enc {
	case "", "raw":
	case "base64":
		req.base64 = true
	default:
		return nil, fmt.Errorf("unknown encoding %q", enc)
	}
	return req, nil
}

func (req *maskRequest) key(body []byte) string {
	o := req.options
	return cache.Key(body,
		strconv.Itoa(req.shape),
		strconv.FormatBool(req.hasLbl), req.label,
		strconv.FormatBool(req.invert),
		req.format.String(),
		strconv.Itoa(o.LineWidth),
		strconv.Itoa(o.PointRadius),
		o.Rule.String(),
		strconv.FormatBool(o.UnknownAsPolygon))
}

func (req *maskRequest) mask(f *labelme.File) (*labelmask.Mask, error) {
	switch {
	case req.shape >= 0:
		return f.Mask(req.shape, req.options)
	case req.hasLbl:
		return f.LabelMask(req.label, req.options)
	default:
		return f.UnionMask(req.options)
	}
}

// CreateMask rasterises the labelme document in the request body.
func (s *Server) CreateMask(c *gin.Context) {
	req, err := s.parseRequest(c)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid request parameters", err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxBodySize)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(c, http.StatusRequestEntityTooLarge, "request body too large", err)
		} else {
			s.fail(c, http.StatusBadRequest, "failed to read request body", err)
		}
		return
	}

	ctx := c.Request.Context()
	key := req.key(body)

	if e := s.lookup(ctx, key); e != nil {
		s.logger.Debug("cache hit", zap.String("key", key))
		s.respond(c, req, key, e)
		return
	}

	f, err := labelme.Decode(bytes.NewReader(body))
	if err != nil {
		s.fail(c, http.StatusBadRequest, "invalid annotation file", err)
		return
	}
	if err := labelmask.CheckDimensions(f.ImageHeight, f.ImageWidth, s.cfg.Server.MaxPixels); err != nil {
		s.fail(c, http.StatusBadRequest, "unsupported image size", err)
		return
	}
	m, err := req.mask(f)
	if err != nil {
		s.fail(c, statusFor(err), "failed to rasterise mask", err)
		return
	}

	buf := &bytes.Buffer{}
	if err := maskio.Encode(buf, m, maskio.Options{Format: req.format, Invert: req.invert}); err != nil {
		s.fail(c, http.StatusInternalServerError, "failed to encode mask", err)
		return
	}
	e := &cache.Entry{
		Format: req.format.String(),
		Width:  m.Width(),
		Height: m.Height(),
		Data:   buf.Bytes(),
	}

	if s.store != nil {
		if err := s.store.Set(ctx, key, e); err != nil {
			s.logger.Warn("failed to set cache", zap.String("key", key), zap.Error(err))
		}
	}

	s.logger.Info("mask created",
		zap.String("key", key),
		zap.Int("width", e.Width),
		zap.Int("height", e.Height),
		zap.Int("records", len(f.Shapes)),
		zap.String("format", e.Format))
	s.respond(c, req, key, e)
}

// GetMask returns a previously created mask.
func (s *Server) GetMask(c *gin.Context) {
	key := c.Param("key")
	if s.store == nil {
		s.fail(c, http.StatusNotFound, "mask cache is disabled", nil)
		return
	}

	e, err := s.store.Get(c.Request.Context(), key)
	if errors.Is(err, cache.ErrMiss) {
		s.fail(c, http.StatusNotFound, "no mask with this key", nil)
		return
	} else if err != nil {
		s.fail(c, http.StatusInternalServerError, "cache lookup failed", err)
		return
	}

	format, err := maskio.ParseFormat(e.Format)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "corrupt cache entry", err)
		return
	}
	c.Header(KeyHeader, key)
	c.Data(http.StatusOK, format.ContentType(), e.Data)
}

func (s *Server) lookup(ctx context.Context, key string) *cache.Entry {
	if s.store == nil {
		return nil
	}
	e, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("failed to get cache", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	return e
}

func (s *Server) respond(c *gin.Context, req *maskRequest, key string, e *cache.Entry) {
	c.Header(KeyHeader, key)
	if req.base64 {
		c.JSON(http.StatusOK, MaskResponse{
			Key:    key,
			Width:  e.Width,
			Height: e.Height,
			Format: e.Format,
			Data:   base64.StdEncoding.EncodeToString(e.Data),
		})
		return
	}
	c.Data(http.StatusOK, req.format.ContentType(), e.Data)
}

func (s *Server) fail(c *gin.Context, status int, msg string, err error) {
	resp := ErrorResponse{Success: false, Message: msg}
	if err != nil {
		resp.Error = err.Error()
		_ = c.Error(err)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	}
	c.JSON(status, resp)
}

// statusFor maps rasterisation errors to HTTP status codes.
func statusFor(err error) int {
	var shapeErr *labelmask.InvalidShapeError
	var dimErr *labelmask.InvalidDimensionsError
	switch {
	case errors.Is(err, labelme.ErrNoSuchLabel), errors.Is(err, labelme.ErrNoSuchShape):
		return http.StatusNotFound
	case errors.As(err, &shapeErr), errors.As(err, &dimErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
