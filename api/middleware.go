package api

import (
	"time"

	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/labstack/echo/v4"
)

// RequestLogger returns an echo middleware that logs each request through
// the "HTTP" component logger. Server errors log at error level, client
// errors at warn and everything else at debug.
func RequestLogger() echo.MiddlewareFunc {
	logger := util.GetLogger("HTTP")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let echo write the response so the logged status is final
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			evt := logger.Debug()
			switch {
			case res.Status >= 500:
				evt = logger.Error().Err(err)
			case res.Status >= 400:
				evt = logger.Warn()
			}
			evt.
				Str("id", res.Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("query", req.URL.RawQuery).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Int64("bytes_out", res.Size).
				Msg("Request")

			return nil
		}
	}
}
