package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	HeaderRequestID = "X-Request-Id"
	CtxRequestIDKey = "req_id" // string
)

// RequestID は X-Request-Id を引き継ぐ（無ければ採番）。
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set(CtxRequestIDKey, rid)
			c.Response().Header().Set(HeaderRequestID, rid)
			return next(c)
		}
	}
}

// Logger はリクエストごとに開始/完了を出す。
func Logger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := log
			if rid, ok := c.Get(CtxRequestIDKey).(string); ok && rid != "" {
				l = l.WithField("req_id", rid)
			}

			req := c.Request()
			l = l.WithFields(logrus.Fields{
				"method":     req.Method,
				"path":       req.URL.Path,
				"remoteaddr": c.RealIP(),
			})

			start := time.Now()
			err := next(c)
			if err != nil {
				//ステータスを確定させる
				c.Error(err)
			}

			res := c.Response()
			l = l.WithFields(logrus.Fields{
				"statuscode": res.Status,
				"bytes":      res.Size,
				"since":      time.Since(start).Nanoseconds(),
			})
			if res.Status >= 500 {
				l.Error("completed")
			} else {
				l.Info("completed")
			}
			return nil
		}
	}
}
