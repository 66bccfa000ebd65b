package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/envelope"
	"github.com/labstack/echo/v4"
)

func requestInfo(c echo.Context) envelope.RequestInfo {
	r := c.Request()
	return envelope.RequestInfo{IP: c.RealIP(), Method: r.Method, URL: r.RequestURI}
}

func (s *Server) ok(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, s.envelope.Success(requestInfo(c), status, message, data))
}

func (s *Server) fail(c echo.Context, status int, message string, err error) error {
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed", "status", status, "error", err)
	} else {
		s.logger.Debug(c.Request().Context(), "request rejected", "status", status, "message", message, "error", err)
	}
	return c.JSON(status, s.envelope.Failure(requestInfo(c), status, message, err))
}

// failService maps a service error to status and message. notFound is the
// message used for common.ErrorNotFound.
func (s *Server) failService(c echo.Context, err error, notFound string) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return s.fail(c, http.StatusNotFound, notFound, err)
	case errors.Is(err, common.ErrorInvalidInput):
		return s.fail(c, http.StatusBadRequest, inputMessage(err), err)
	case errors.Is(err, common.ErrorDuplicateIdentity):
		msg := envelope.MsgEmailAlreadyExists
		var dup *common.DuplicateError
		if errors.As(err, &dup) && dup.Field == common.FieldUsername {
			msg = envelope.MsgUsernameAlreadyExists
		}
		return s.fail(c, http.StatusBadRequest, msg, err)
	case errors.Is(err, common.ErrorInvalidCredentials):
		return s.fail(c, http.StatusUnauthorized, envelope.MsgInvalidCredentials, err)
	case errors.Is(err, common.ErrorUnauthenticated):
		return s.fail(c, http.StatusUnauthorized, envelope.MsgNoToken, err)
	case errors.Is(err, context.DeadlineExceeded):
		return s.fail(c, http.StatusServiceUnavailable, envelope.MsgServerError, err)
	default:
		return s.fail(c, http.StatusInternalServerError, envelope.MsgServerError, err)
	}
}

// inputMessage turns "invalid input: folder name is required" into
// "Folder name is required".
func inputMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), common.ErrorInvalidInput.Error())
	msg = strings.TrimSpace(strings.TrimPrefix(msg, ":"))
	if msg == "" {
		return "Invalid input"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// handleError renders errors that escaped the handlers, including echo's own
// 404 and 405, as envelopes.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := envelope.MsgServerError

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch status {
		case http.StatusNotFound:
			msg = envelope.NotFound("Route")
		case http.StatusInternalServerError:
		default:
			msg = fmt.Sprint(he.Message)
		}
	}

	if err := s.fail(c, status, msg, err); err != nil {
		s.logger.Error(c.Request().Context(), "writing error response failed", "error", err)
	}
}
