package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"backoffice-events/internal/app"
	"backoffice-events/internal/events"

	"github.com/cucumber/godog"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
	eventskit "github.com/walletera/eventskit/events"
	"github.com/walletera/eventskit/rabbitmq"
	slogwatcher "github.com/walletera/logs-watcher/slog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

const (
	appKey                    = "app"
	appCtxCancelFuncKey       = "appCtxCancelFuncKey"
	logsWatcherKey            = "logsWatcher"
	rawEventKey               = "rawEvent"
	eventTopicKey             = "eventTopic"
	logsWatcherWaitForTimeout = 5 * time.Second
	opsHTTPServerPort         = 8585
	opsAuthTokenSecret        = "integration-tests-secret"
	mongodbURL                = "mongodb://localhost:27017/?retryWrites=true&w=majority"
	redisAddr                 = "localhost:6379"
)

var mongodbClient *mongo.Client

func beforeScenarioHook(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
	handler, err := newZapHandler()
	if err != nil {
		return ctx, err
	}
	logsWatcher := slogwatcher.NewWatcher(handler)
	ctx = context.WithValue(ctx, logsWatcherKey, logsWatcher)

	client, err := getMongodbClient()
	if err != nil {
		return ctx, err
	}

	// cleanup state before each scenario
	for _, collection := range []string{
		app.MongoDBProductsCollection,
		app.MongoDBOrdersCollection,
		app.MongoDBUsersCollection,
		app.MongoDBPointsHistoryCollection,
	} {
		err = client.Database(app.MongoDBName).Collection(collection).Drop(ctx)
		if err != nil {
			return nil, err
		}
	}

	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer redisClient.Close()
	if err := redisClient.FlushAll(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed flushing redis: %w", err)
	}

	return ctx, nil
}

func afterScenarioHook(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
	logsWatcher := logsWatcherFromCtx(ctx)

	appFromCtx(ctx).Stop(ctx)
	foundLogEntry := logsWatcher.WaitFor("backoffice-events stopped", logsWatcherWaitForTimeout)
	if !foundLogEntry {
		return ctx, fmt.Errorf("app termination failed (didn't find expected log entry)")
	}

	if cancelFunc, ok := ctx.Value(appCtxCancelFuncKey).(context.CancelFunc); ok {
		cancelFunc()
	}

	err = logsWatcher.Stop()
	if err != nil {
		return ctx, fmt.Errorf("failed stopping the logsWatcher: %w", err)
	}

	return ctx, nil
}

func aRunningBackofficeEventsService(ctx context.Context) (context.Context, error) {
	logHandler := logsWatcherFromCtx(ctx).DecoratedHandler()

	appCtx, appCtxCancelFunc := context.WithCancel(ctx)

	backofficeApp, err := app.NewApp(
		app.WithRabbitmqHost(rabbitmq.DefaultHost),
		app.WithRabbitmqPort(rabbitmq.DefaultPort),
		app.WithRabbitmqUser(rabbitmq.DefaultUser),
		app.WithRabbitmqPassword(rabbitmq.DefaultPassword),
		app.WithMongoDBURL(mongodbURL),
		app.WithRedisAddr(redisAddr),
		app.WithOpsAPIConfig(app.OpsAPIConfig{
			OpsHTTPServerPort: opsHTTPServerPort,
			AuthTokenSecret:   opsAuthTokenSecret,
		}),
		app.WithLogHandler(logHandler),
	)
	if err != nil {
		appCtxCancelFunc()
		return ctx, fmt.Errorf("failed initializing backoffice-events app: %w", err)
	}

	err = backofficeApp.Run(appCtx)
	if err != nil {
		appCtxCancelFunc()
		return ctx, fmt.Errorf("failed running backoffice-events app: %w", err)
	}

	ctx = context.WithValue(ctx, appKey, backofficeApp)
	ctx = context.WithValue(ctx, appCtxCancelFuncKey, appCtxCancelFunc)

	foundLogEntry := logsWatcherFromCtx(ctx).WaitFor("backoffice-events started", logsWatcherWaitForTimeout)
	if !foundLogEntry {
		return ctx, fmt.Errorf("backoffice-events startup failed (didn't find expected log entry)")
	}

	return ctx, nil
}

func aProductInTheCatalog(ctx context.Context, doc *godog.DocString) (context.Context, error) {
	return insertDocument(ctx, app.MongoDBProductsCollection, doc)
}

func aUserInTheDirectory(ctx context.Context, doc *godog.DocString) (context.Context, error) {
	return insertDocument(ctx, app.MongoDBUsersCollection, doc)
}

func insertDocument(ctx context.Context, collection string, doc *godog.DocString) (context.Context, error) {
	if doc == nil || len(doc.Content) == 0 {
		return ctx, fmt.Errorf("the document is empty or was not defined")
	}

	var document bson.M
	err := bson.UnmarshalExtJSON([]byte(doc.Content), false, &document)
	if err != nil {
		return ctx, fmt.Errorf("error parsing document: %w", err)
	}

	client, err := getMongodbClient()
	if err != nil {
		return ctx, err
	}

	_, err = client.Database(app.MongoDBName).Collection(collection).InsertOne(ctx, document)
	if err != nil {
		return ctx, fmt.Errorf("error inserting document: %w", err)
	}

	return ctx, nil
}

func anEvent(ctx context.Context, event *godog.DocString) (context.Context, error) {
	if event == nil || len(event.Content) == 0 {
		return ctx, fmt.Errorf("the event is empty or was not defined")
	}
	rawEvent := []byte(event.Content)

	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(rawEvent, &envelope); err != nil {
		return ctx, fmt.Errorf("error parsing event envelope: %w", err)
	}
	topic, err := topicForEventType(envelope.Type)
	if err != nil {
		return ctx, err
	}

	ctx = context.WithValue(ctx, eventTopicKey, topic)
	return context.WithValue(ctx, rawEventKey, rawEvent), nil
}

func topicForEventType(eventType string) (string, error) {
	switch {
	case strings.HasPrefix(eventType, "product."):
		return events.ProductTopic, nil
	case strings.HasPrefix(eventType, "order."):
		return events.OrderTopic, nil
	case strings.HasPrefix(eventType, "user."):
		return events.UserTopic, nil
	default:
		return "", fmt.Errorf("no topic for event type: %s", eventType)
	}
}

func theEventIsPublished(ctx context.Context) (context.Context, error) {
	publisher, err := rabbitmq.NewClient(
		rabbitmq.WithExchangeName(events.Exchange),
		rabbitmq.WithExchangeType(rabbitmq.ExchangeTypeTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating rabbitmq client: %s", err.Error())
	}

	rawEvent := ctx.Value(rawEventKey).([]byte)
	topic := ctx.Value(eventTopicKey).(string)
	err = publisher.Publish(ctx, rawPublishable{rawEvent: rawEvent}, eventskit.RoutingInfo{
		Topic:      events.Exchange,
		RoutingKey: topic,
	})
	if err != nil {
		return ctx, fmt.Errorf("error publishing event to rabbitmq: %s", err.Error())
	}

	return ctx, nil
}

func theSameEventIsPublishedAgain(ctx context.Context) (context.Context, error) {
	return theEventIsPublished(ctx)
}

func theServiceProducesTheFollowingLog(ctx context.Context, logMsg string) (context.Context, error) {
	logsWatcher := logsWatcherFromCtx(ctx)
	foundLogEntry := logsWatcher.WaitFor(logMsg, logsWatcherWaitForTimeout)
	if !foundLogEntry {
		return ctx, fmt.Errorf("didn't find expected log entry: %s", logMsg)
	}
	return ctx, nil
}

func theRollupExistsInTheStateStore(ctx context.Context, key string) (context.Context, error) {
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer redisClient.Close()

	_, err := redisClient.Get(ctx, key).Result()
	if err != nil {
		return ctx, fmt.Errorf("rollup %s not found in the state store: %w", key, err)
	}
	return ctx, nil
}

func theStatsRollupIsServedByTheOpsAPI(ctx context.Context, name string) (context.Context, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	signedToken, err := token.SignedString([]byte(opsAuthTokenSecret))
	if err != nil {
		return ctx, fmt.Errorf("failed signing ops token: %w", err)
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/stats/%s", opsHTTPServerPort, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ctx, err
	}
	req.Header.Set("Authorization", "Bearer "+signedToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return ctx, fmt.Errorf("failed calling ops api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ctx, fmt.Errorf("expected status 200 from ops api, got %d", resp.StatusCode)
	}
	return ctx, nil
}

func logsWatcherFromCtx(ctx context.Context) *slogwatcher.Watcher {
	value := ctx.Value(logsWatcherKey)
	if value == nil {
		panic("logs watcher not found in context")
	}
	watcher, ok := value.(*slogwatcher.Watcher)
	if !ok {
		panic("logs watcher has invalid type")
	}
	return watcher
}

func appFromCtx(ctx context.Context) *app.App {
	value := ctx.Value(appKey)
	if value == nil {
		panic("backoffice-events app not found in context")
	}
	backofficeApp, ok := value.(*app.App)
	if !ok {
		panic("backoffice-events app has invalid type")
	}
	return backofficeApp
}

func newZapHandler() (slog.Handler, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(zap.DebugLevel),
		Development:       false,
		DisableStacktrace: true,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	if zapLogger.Core() == nil {
		return nil, fmt.Errorf("zapLogger.Core() is nil")
	}
	return zapslog.NewHandler(zapLogger.Core()), nil
}

func getMongodbClient() (*mongo.Client, error) {
	if mongodbClient != nil {
		return mongodbClient, nil
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(mongodbURL).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, err
	}
	mongodbClient = client

	return mongodbClient, nil
}
