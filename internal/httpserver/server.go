package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"acfileserver/internal/config"
	"acfileserver/internal/model"
	"acfileserver/internal/registry"
)

// shutdownTimeout bounds how long Run waits for in-flight downloads when
// the serve context is cancelled.
const shutdownTimeout = 5 * time.Second

// Server wires the registry and configuration into a gin engine.
type Server struct {
	cfg    *config.Config
	reg    *registry.Registry
	log    *zap.Logger
	engine *gin.Engine
}

// New builds the server and registers all routes. The admin route comes
// from the configuration; callers are responsible for having logged it
// somewhere the operator can see.
func New(cfg *config.Config, reg *registry.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.SetHTMLTemplate(pageTemplates)

	s := &Server{cfg: cfg, reg: reg, log: log, engine: engine}

	engine.Use(s.requestLogger(), gin.Recovery())

	engine.GET("/", s.handleIndex)
	engine.GET("/download/:filename", s.handleDownload)
	engine.GET("/healthz", s.handleHealthz)

	admin := engine.Group("/" + cfg.AdminRoute)
	admin.Use(requireBasicAuth(cfg.AdminUsername, cfg.AdminPassword))
	admin.GET("", s.handleAdminPanel)
	admin.POST("", s.handleAdminUpdate)

	return s
}

// Handler exposes the engine as an http.Handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
// A nil return means the server was stopped by the context; any other
// error is a listen/serve failure.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// requestLogger logs one line per request through zap. The admin route is
// masked in logs so a leaked logfile doesn't leak the panel URL.
func (s *Server) requestLogger() gin.HandlerFunc {
	adminPrefix := "/" + s.cfg.AdminRoute
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		if path == adminPrefix {
			path = "/(admin)"
		}
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("client", c.ClientIP()),
			zap.Duration("latency", time.Since(start)))
	}
}

// handleIndex renders the public file list: published files only.
func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title": s.cfg.PageTitle,
		"Files": s.reg.Published(),
	})
}

// handleDownload serves one published file as an attachment.
//
// Responses mirror the publication model: an unknown (or invalid) name is
// 404, a known but unpublished file is 403. Name validation runs before
// any filesystem access so traversal attempts never reach a path join.
func (s *Server) handleDownload(c *gin.Context) {
	name := c.Param("filename")
	if err := model.ValidateFileName(name); err != nil {
		c.String(http.StatusNotFound, "file not found")
		return
	}
	if !s.reg.Has(name) {
		c.String(http.StatusNotFound, "file not found")
		return
	}
	if !s.reg.IsPublished(name) {
		c.String(http.StatusForbidden, "this file is not currently published")
		return
	}

	path, err := s.reg.Path(name)
	if err != nil {
		// The file vanished between the checks and now; the watcher will
		// catch the registry up shortly.
		c.String(http.StatusNotFound, "file not found")
		return
	}
	c.FileAttachment(path, name)
}

// handleHealthz is a plaintext liveness probe.
func (s *Server) handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

// handleAdminPanel renders all files with their publication checkboxes.
// A refresh runs first so the panel always shows the live directory even
// if a watcher event is still in its debounce window.
func (s *Server) handleAdminPanel(c *gin.Context) {
	if err := s.reg.Refresh(); err != nil {
		s.log.Warn("refresh before admin render failed", zap.Error(err))
	}
	c.HTML(http.StatusOK, "admin.html", gin.H{
		"Files": s.reg.List(),
	})
}

// handleAdminUpdate applies the submitted checkbox set: a tracked file is
// published iff its checkbox was sent. Browsers omit unchecked boxes, so
// the absence of a field means unpublish. Afterwards the client is
// redirected back to the panel (303, so the browser re-GETs).
func (s *Server) handleAdminUpdate(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "invalid form data")
		return
	}

	published := make(map[string]bool)
	for _, entry := range s.reg.List() {
		_, checked := c.Request.PostForm[entry.Name]
		published[entry.Name] = checked
	}

	if err := s.reg.Apply(published); err != nil {
		s.log.Error("applying publication update failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to update publication state")
		return
	}

	c.Redirect(http.StatusSeeOther, "/"+s.cfg.AdminRoute)
}
