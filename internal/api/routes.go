package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/analysis"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/ocr"
)

const defaultMaxUploadBytes = 10 << 20

// Analyzer produces a result for every request; a non-nil error marks a
// pipeline failure whose result is still rendered.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error)
}

// Config defines server dependencies.
type Config struct {
	Analyzer       Analyzer
	Recognizer     ocr.Recognizer
	AllowedOrigins []string
	MaxUploadBytes int64
	Logger         logrus.FieldLogger
}

// Server wires HTTP handlers to the analysis pipeline.
type Server struct {
	analyzer       Analyzer
	recognizer     ocr.Recognizer
	allowedOrigins []string
	maxUpload      int64
	logger         logrus.FieldLogger
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Analyzer == nil {
		return nil, errors.New("analyzer required")
	}
	server := &Server{
		analyzer:       cfg.Analyzer,
		recognizer:     cfg.Recognizer,
		allowedOrigins: cfg.AllowedOrigins,
		maxUpload:      cfg.MaxUploadBytes,
		logger:         cfg.Logger,
	}
	if server.recognizer == nil {
		server.recognizer = ocr.Disabled{}
	}
	if server.maxUpload <= 0 {
		server.maxUpload = defaultMaxUploadBytes
	}
	if server.logger == nil {
		server.logger = logrus.StandardLogger()
	}
	return server, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog())

	corsCfg := cors.DefaultConfig()
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	corsCfg.ExposeHeaders = []string{requestIDHeader}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", s.handleHealth)
	r.POST("/analyze", s.handleAnalyze)
	r.POST("/ocr", s.handleOCR)

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analysis.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		// An unreadable body is analyzed as empty input.
		s.requestLogger(c).WithError(err).Debug("decode analyze request")
		req = analysis.Request{}
	}

	result, err := s.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleOCR(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.renderError(c, http.StatusBadRequest, errors.New("image too large"))
		case errors.Is(err, http.ErrMissingFile):
			s.renderError(c, http.StatusBadRequest, errors.New("image file required"))
		default:
			s.renderError(c, http.StatusBadRequest, errors.New("failed to parse form"))
		}
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		s.renderError(c, http.StatusBadRequest, errors.New("failed to read image"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, errors.New("failed to read image"))
		return
	}
	mimeType, ok := allowedImageMIME(data)
	if !ok {
		s.renderError(c, http.StatusBadRequest, errors.New("unsupported image format"))
		return
	}

	text, err := s.recognizer.Recognize(c.Request.Context(), data, mimeType)
	switch {
	case errors.Is(err, ocr.ErrDisabled):
		s.renderError(c, http.StatusServiceUnavailable, errors.New("text recognition is not configured"))
	case errors.Is(err, ocr.ErrNoText):
		s.renderError(c, http.StatusUnprocessableEntity, errors.New("no text found in image"))
	case err != nil:
		s.requestLogger(c).WithError(err).WithField("mime_type", mimeType).Error("recognize image")
		s.renderError(c, http.StatusInternalServerError, errors.New("text recognition failed"))
	default:
		c.JSON(http.StatusOK, OCRResponse{Text: text})
	}
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
