package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/priyxstudio/pathway/internal/errdefs"
)

// errorResponse is the body rendered for every failed request.
type errorResponse struct {
	Error     string       `json:"error"`
	Code      errdefs.Code `json:"code"`
	RequestID string       `json:"request_id,omitempty"`
}

// CaptureAndAbort aborts the request and attaches the provided error to the gin
// context so it can be rendered by CaptureErrors. Errors that carry no code are
// reported as OperationFailed and their details are only written to the logs.
func CaptureAndAbort(c *gin.Context, err error) {
	c.Abort()
	_ = c.Error(err)
}

func renderError(c *gin.Context, err error) {
	err = errdefs.Classify(err)
	e, _ := errdefs.As(err)
	status := e.Code.Status()

	logger := ExtractLogger(c).WithField("code", e.Code).WithField("status", status)
	if status >= http.StatusInternalServerError {
		logger.WithField("error", err).Error("error while handling HTTP request")
	} else {
		logger.WithField("error", err).Debug("request rejected")
	}

	c.AbortWithStatusJSON(status, errorResponse{
		Error:     e.Message,
		Code:      e.Code,
		RequestID: c.GetString("request_id"),
	})
}
