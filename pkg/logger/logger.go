package logger

import (
	"time"

	"clinic-service/pkg/config"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// InitLogger builds the process-wide zap logger. Production gets JSON
// output, anything else gets the colored development encoder.
func InitLogger(cfg *config.Config) {
	var zc zap.Config
	if cfg.Server.Env == "production" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	zc.Level.SetLevel(level)

	built, err := zc.Build()
	if err != nil {
		panic("logger init failed: " + err.Error())
	}
	log = built
	log.Info("logger initialized", zap.String("level", level.String()))
}

// GetLogger returns the global logger, lazily falling back to a
// production logger when InitLogger was never called (tests).
func GetLogger() *zap.Logger {
	if log == nil {
		fallback, err := zap.NewProduction()
		if err != nil {
			panic("fallback logger failed: " + err.Error())
		}
		log = fallback
	}
	return log
}

// Middleware stashes a request-scoped logger in the echo context and
// emits one access-log line per request.
func Middleware(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			requestID := c.Request().Header.Get(RequestIDKey)
			if requestID == "" {
				requestID = c.Response().Header().Get(RequestIDKey)
			}
			reqLogger := base.With(zap.String("request_id", requestID))
			c.Set(loggerKey, reqLogger)

			err := next(c)

			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
				zap.String("user_agent", c.Request().UserAgent()),
			}
			if err != nil {
				reqLogger.Error("request failed", append(fields, zap.Error(err))...)
			} else {
				reqLogger.Info("request completed", fields...)
			}
			return err
		}
	}
}
