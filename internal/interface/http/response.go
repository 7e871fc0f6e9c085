package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-hub/course-registry/internal/domain/shared"
	"github.com/campus-hub/course-registry/pkg/logger"
)

const internalMessage = "Internal server error"

// envelope is the body of every response.
type envelope struct {
	Data interface{} `json:"data"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Data: data})
}

// statusOf maps a domain error kind onto an HTTP status.
func statusOf(kind shared.Kind) int {
	switch kind {
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindInvalidInput:
		return http.StatusBadRequest
	case shared.KindUnauthorized:
		return http.StatusUnauthorized
	case shared.KindForbidden:
		return http.StatusForbidden
	case shared.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"data": "<message>"}. Internal errors are logged with
// their cause and hidden behind a generic message.
func (s *Server) fail(c *gin.Context, err error) {
	kind := shared.KindOf(err)
	status := statusOf(kind)

	if kind == shared.KindInternal {
		logger.FromContext(c.Request.Context()).Error("request failed",
			logger.Err(err),
			logger.String("path", c.Request.URL.Path),
		)
		respond(c, status, internalMessage)
		return
	}

	respond(c, status, shared.MessageOf(err, http.StatusText(status)))
}
