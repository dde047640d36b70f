package app

import (
	"log/slog"
	"time"
)

type Option func(app *App)

type OpsAPIConfig struct {
	OpsHTTPServerPort int
	AuthTokenSecret   string
}

func WithOpsAPIConfig(config OpsAPIConfig) func(a *App) {
	return func(a *App) {
		a.opsAPIConfig = NewOptional[OpsAPIConfig](config)
	}
}

func WithRabbitmqHost(host string) func(a *App) { return func(a *App) { a.rabbitmqHost = host } }

func WithRabbitmqPort(port int) func(a *App) { return func(a *App) { a.rabbitmqPort = port } }

func WithRabbitmqUser(user string) func(a *App) { return func(a *App) { a.rabbitmqUser = user } }

func WithRabbitmqPassword(password string) func(a *App) {
	return func(a *App) { a.rabbitmqPassword = password }
}

func WithMongoDBURL(url string) func(a *App) { return func(a *App) { a.mongodbURL = url } }

func WithRedisAddr(addr string) func(a *App) { return func(a *App) { a.redisAddr = addr } }

func WithPublishRetry(maxAttempts int, delay time.Duration) func(a *App) {
	return func(a *App) {
		a.publishMaxAttempts = maxAttempts
		a.publishRetryDelay = delay
	}
}

func WithLogHandler(handler slog.Handler) func(app *App) {
	return func(app *App) { app.logHandler = handler }
}
