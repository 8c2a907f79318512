package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/apperror"
)

// Recovery turns a panic into a 500 AppError so the visitor gets the
// regular error page. The stack and, when browser is set, the browser ID
// are logged.
func Recovery(browser Identify) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				attrs := []any{
					slog.Any("panic", r),
					slog.String("method", c.Request().Method),
					slog.String("path", c.Request().URL.Path),
					slog.String("stack", string(debug.Stack())),
				}
				if browser != nil {
					attrs = append(attrs, slog.String("browser_id", browser(c)))
				}
				slog.Error("panic recovered", attrs...)
				err = apperror.NewInternal(fmt.Errorf("panic: %v", r))
			}()
			return next(c)
		}
	}
}
