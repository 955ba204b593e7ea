package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/repairdesk/dashboard-state/internal/metrics"
)

// Metrics records request latency per matched route.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the status before it is observed.
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.DevAPIRequestDuration.
				WithLabelValues(route, strconv.Itoa(c.Response().Status)).
				Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
