// Package server 暴露编辑、预览与导出的 HTTP 接口。
package server

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/bytecv/export"
	"github.com/ByLCY/bytecv/layout"
	"github.com/ByLCY/bytecv/pipeline"
	"github.com/ByLCY/bytecv/resume"
	"github.com/ByLCY/bytecv/session"
)

// TruncationWarning 在预览丢弃内容时返回给编辑端。
const TruncationWarning = "Content truncated. Only one page supported."

const maxBodyBytes = 1 << 20

// Options 配置 HTTP 服务。
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Gatherer       prometheus.Gatherer
	Logger         *logrus.Entry
}

type Server struct {
	ctrl   *session.Controller
	exp    *export.Exporter
	log    *logrus.Entry
	engine *gin.Engine
}

// New 创建服务并注册全部路由。
func New(ctrl *session.Controller, exp *export.Exporter, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{ctrl: ctrl, exp: exp, log: log, engine: gin.New()}

	r := s.engine
	r.Use(s.requestLogger(), gin.Recovery())
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	limited := newLimiterStore(opts.RateLimitRPS, opts.RateLimitBurst).middleware()
	api := r.Group("/api")
	api.GET("/resume", s.getResume)
	api.GET("/preview", s.preview)
	api.GET("/preview/debug", s.previewDebug)
	api.GET("/export.pdf", s.exportPDF)
	api.PUT("/resume", limited, s.importResume)
	api.POST("/resume/ops", limited, s.applyOp)
	api.POST("/save", limited, s.save)
	api.POST("/reset", limited, s.reset)
	api.POST("/export", limited, s.publish)
	return s
}

// Handler 返回 http.Handler。
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
			"dur":    time.Since(start),
		}).Debug("request")
	}
}

// mutationResponse 中 stale 为 true 表示修改已保存但预览沿用上一次结果。
type mutationResponse struct {
	ID        string `json:"id,omitempty"`
	Version   uint64 `json:"version"`
	Truncated bool   `json:"truncated"`
	Stale     bool   `json:"stale,omitempty"`
}

func (s *Server) respondMutation(c *gin.Context, id string, snap session.Snapshot, err error) {
	if err != nil && !errors.Is(err, pipeline.ErrMeasure) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, mutationResponse{ID: id, Version: snap.Version, Truncated: snap.Truncated, Stale: err != nil})
}

func (s *Server) getResume(c *gin.Context) {
	data, err := resume.Encode(s.ctrl.Document(), s.ctrl.LastSaved())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *Server) importResume(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := resume.Decode(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := s.ctrl.Replace(rec.Document)
	s.respondMutation(c, "", snap, err)
}

func (s *Server) applyOp(c *gin.Context) {
	var op resume.Op
	if err := c.ShouldBindJSON(&op); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, snap, err := s.ctrl.Apply(op)
	if isRequestError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.respondMutation(c, id, snap, err)
}

func isRequestError(err error) bool {
	return errors.Is(err, resume.ErrUnknownOp) ||
		errors.Is(err, resume.ErrUnknownCollection) ||
		errors.Is(err, resume.ErrUnknownField)
}

type previewResponse struct {
	Version   uint64      `json:"version"`
	Truncated bool        `json:"truncated"`
	Warning   string      `json:"warning,omitempty"`
	Keys      []string    `json:"keys"`
	Page      layout.Page `json:"page"`
	At        time.Time   `json:"at"`
	LastSaved *time.Time  `json:"lastSaved,omitempty"`
}

func (s *Server) preview(c *gin.Context) {
	snap := s.ctrl.Current()
	if snap.Result == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "preview not available"})
		return
	}
	out := previewResponse{
		Version:   snap.Version,
		Truncated: snap.Truncated,
		Keys:      snap.Keys,
		Page:      snap.Result.Page,
		At:        snap.At,
	}
	if snap.Truncated {
		out.Warning = TruncationWarning
	}
	if at := s.ctrl.LastSaved(); !at.IsZero() {
		out.LastSaved = &at
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) previewDebug(c *gin.Context) {
	snap := s.ctrl.Current()
	if snap.Result == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "preview not available"})
		return
	}
	var buf bytes.Buffer
	if err := layout.EncodeDebugJSON(&buf, snap.Result); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf.Bytes())
}

func (s *Server) save(c *gin.Context) {
	if err := s.ctrl.Save(c.Request.Context()); err != nil {
		s.log.WithError(err).Error("save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lastSaved": s.ctrl.LastSaved()})
}

func (s *Server) reset(c *gin.Context) {
	snap, err := s.ctrl.Reset(c.Request.Context())
	s.respondMutation(c, "", snap, err)
}

func (s *Server) exportPDF(c *gin.Context) {
	doc := s.ctrl.Document()
	pdf, err := s.exp.PDF(doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", attachment(export.FileName(doc)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) publish(c *gin.Context) {
	out, err := s.exp.Publish(c.Request.Context(), s.ctrl.Document())
	if errors.Is(err, export.ErrNoSink) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// attachment 生成下载头；非 ASCII 文件名按 RFC 2231 编码为 filename*。
func attachment(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}
