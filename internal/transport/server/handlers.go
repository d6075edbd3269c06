package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oshokin/tube-grabber/internal/logger"
	"github.com/oshokin/tube-grabber/internal/service/grabber"
)

// errInvalidBody is reported for bodies that are not the expected JSON object.
var errInvalidBody = errors.New("invalid request body")

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, newHealthResponse(s.service.Status(c.Request.Context())))
}

func (s *Server) handleInfo(c *gin.Context) {
	var req infoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, badRequest(err))

		return
	}

	result, err := s.service.Info(c.Request.Context(), req.URL)
	if err != nil {
		s.abort(c, err)

		return
	}

	c.JSON(http.StatusOK, newInfoResponse(result))
}

func (s *Server) handleDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, badRequest(err))

		return
	}

	pkg, err := s.service.Download(c.Request.Context(), &grabber.DownloadRequest{
		URL:     req.URL,
		Format:  req.Format,
		Quality: req.Quality,
	})
	if err != nil {
		s.abort(c, err)

		return
	}

	c.Header("Content-Disposition", grabber.ContentDisposition(pkg.Filename))
	c.Header("Content-Length", strconv.Itoa(len(pkg.Data)))

	for _, warning := range pkg.Warnings {
		c.Writer.Header().Add(warningHeader, warning)
	}

	c.Data(http.StatusOK, pkg.ContentType, pkg.Data)
}

// abort maps err to a status: invalid input is the client's fault, everything else is ours.
func (s *Server) abort(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, grabber.ErrInvalidInput) {
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logger.Warnf(c.Request.Context(), "Request failed: %v", err)
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: userMessage(err)})
}

// badRequest classifies body decoding failures as invalid input.
func badRequest(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return &grabber.Error{Kind: grabber.KindInvalidInput, Message: "request body too large", Err: err}
	}

	return &grabber.Error{Kind: grabber.KindInvalidInput, Message: errInvalidBody.Error(), Err: err}
}

func userMessage(err error) string {
	var e *grabber.Error
	if errors.As(err, &e) {
		return e.Error()
	}

	return "internal server error"
}
