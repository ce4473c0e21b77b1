package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// RequestLogger assigns a request id (reusing an incoming X-Request-ID) and
// logs one line per request with method, path, status and latency.
func RequestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, rid)
			c.Set("request_id", rid)

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo write the error response so the status is final.
				c.Error(err)
			}

			status := c.Response().Status
			kv := []interface{}{
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"latency", time.Since(start).Round(time.Microsecond),
				"request_id", rid,
			}
			if id, ok := UserID(c); ok {
				kv = append(kv, "user", id)
			}
			switch {
			case status >= 500:
				logger.Error("request", append(kv, "err", err)...)
			case status >= 400:
				logger.Warn("request", kv...)
			default:
				logger.Info("request", kv...)
			}
			return nil
		}
	}
}
