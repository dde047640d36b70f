package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"backoffice-events/internal/app"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, ctxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer ctxCancel()

	rabbitmqHost := mustGetEnv("RABBITMQ_HOST")
	rabbitmqPort := mustGetIntEnv("RABBITMQ_PORT")
	rabbitmqUser := mustGetEnv("RABBITMQ_USER")
	rabbitmqPassword := mustGetEnv("RABBITMQ_PASSWORD")
	mongodbURL := mustGetEnv("MONGODB_URL")
	redisAddr := mustGetEnv("REDIS_ADDR")

	opts := []app.Option{
		app.WithRabbitmqHost(rabbitmqHost),
		app.WithRabbitmqPort(rabbitmqPort),
		app.WithRabbitmqUser(rabbitmqUser),
		app.WithRabbitmqPassword(rabbitmqPassword),
		app.WithMongoDBURL(mongodbURL),
		app.WithRedisAddr(redisAddr),
	}

	if opsPort, found := os.LookupEnv("OPS_HTTP_SERVER_PORT"); found {
		port, err := strconv.Atoi(opsPort)
		if err != nil {
			panic("env var is not an int: OPS_HTTP_SERVER_PORT")
		}
		opts = append(opts, app.WithOpsAPIConfig(app.OpsAPIConfig{
			OpsHTTPServerPort: port,
			AuthTokenSecret:   mustGetEnv("OPS_AUTH_TOKEN_SECRET"),
		}))
	}

	if maxRetries, found := os.LookupEnv("PUBLISH_MAX_RETRIES"); found {
		attempts, err := strconv.Atoi(maxRetries)
		if err != nil {
			panic("env var is not an int: PUBLISH_MAX_RETRIES")
		}
		delayMs := mustGetIntEnv("PUBLISH_RETRY_DELAY_MS")
		opts = append(opts, app.WithPublishRetry(attempts, time.Duration(delayMs)*time.Millisecond))
	}

	app, err := app.NewApp(opts...)
	if err != nil {
		panic(err)
	}

	err = app.Run(ctx)
	if err != nil {
		panic(err)
	}

	<-ctx.Done()

	shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCtxCancel()

	app.Stop(shutdownCtx)
}

func mustGetEnv(envName string) string {
	value, found := os.LookupEnv(envName)
	if !found {
		panic("env var not defined: " + envName)
	}
	return value
}

func mustGetIntEnv(envName string) int {
	strEnvValue := mustGetEnv(envName)
	intEnvValue, err := strconv.Atoi(strEnvValue)
	if err != nil {
		panic("env var is not an int: " + envName)
	}
	return intEnvValue
}
