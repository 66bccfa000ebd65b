package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/envelope"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

var corsMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete,
}

func (s *Server) registerMiddleware() {
	e := s.echo

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method, "uri", v.URI, "status", v.Status,
				"latency", v.Latency, "ip", v.RemoteIP, "request_id", v.RequestID,
			}
			ctx := c.Request().Context()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				s.logger.Error(ctx, "request", append(args, "error", v.Error)...)
				return nil
			}
			s.logger.Info(ctx, "request", args...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     s.cfg.AllowedOrigins,
		AllowMethods:     corsMethods,
		AllowCredentials: true,
	}))
	if s.cfg.RateLimitRequests > 0 && s.cfg.RateLimitWindow > 0 {
		e.Use(s.rateLimiter())
	}
	if s.cfg.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{Timeout: s.cfg.RequestTimeout}))
	}
}

// rateLimiter allows RateLimitRequests per RateLimitWindow per client ip.
func (s *Server) rateLimiter() echo.MiddlewareFunc {
	perSecond := rate.Limit(float64(s.cfg.RateLimitRequests) / s.cfg.RateLimitWindow.Seconds())

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      perSecond,
			Burst:     s.cfg.RateLimitRequests,
			ExpiresIn: s.cfg.RateLimitWindow,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return s.fail(c, http.StatusForbidden, envelope.MsgServerError, err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return s.fail(c, http.StatusTooManyRequests, envelope.MsgTooManyRequests, err)
		},
	})
}

// requireUser is the access guard. It stores the caller's id in the request
// context and rejects the request before any handler runs otherwise.
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := s.guard.Authenticate(c.Request().Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			msg := envelope.MsgInvalidToken
			switch {
			case errors.Is(err, common.ErrTokenExpired):
				msg = envelope.MsgTokenExpired
			case !errors.Is(err, common.ErrInvalidToken):
				msg = envelope.MsgNoToken
			}
			return s.fail(c, http.StatusUnauthorized, msg, err)
		}

		req := c.Request()
		c.SetRequest(req.WithContext(auth.WithUserID(req.Context(), userID)))
		return next(c)
	}
}

// callerID returns the id stored by requireUser.
func callerID(c echo.Context) (string, error) {
	id, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return "", common.ErrorUnauthenticated
	}
	return id, nil
}
