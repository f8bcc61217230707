package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/matthieukhl/shopfront/internal/apperr"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

var errBadBody = apperr.Validation("invalid request body")

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: msg})
}

// respondError renders err with the status of its kind. Internal causes are
// logged and never sent to the client.
func (s *Server) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		s.log.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err))
	} else {
		s.log.Debug("request rejected",
			slog.String("path", c.Request.URL.Path),
			slog.String("kind", kind.String()),
			slog.String("reason", err.Error()))
	}
	fail(c, kind.HTTPStatus(), apperr.PublicMessage(err))
}

// bindJSON decodes the request body into dst. An empty body leaves dst
// untouched so the service reports what is missing. A body failing its
// binding:"required" tags yields dst's missing-fields error.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var verrs validator.ValidationErrors
	if m, ok := dst.(missingFieldsError); ok && errors.As(err, &verrs) {
		return m.missingFields()
	}
	return errBadBody
}
