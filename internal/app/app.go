package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"backoffice-events/internal/adapters/input/http/ops"
	"backoffice-events/internal/adapters/mongodb"
	"backoffice-events/internal/adapters/redisstore"
	"backoffice-events/internal/consumer"
	"backoffice-events/internal/domain/catalog"
	"backoffice-events/internal/domain/members"
	"backoffice-events/internal/domain/orders"
	"backoffice-events/internal/domain/stats"
	"backoffice-events/internal/events"
	"backoffice-events/internal/publisher"
	"backoffice-events/pkg/backoff"
	"backoffice-events/pkg/logattr"

	"github.com/walletera/eventskit/messages"
	"github.com/walletera/eventskit/rabbitmq"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

const (
	MongoDBName = "backoffice"

	MongoDBProductsCollection      = "products"
	MongoDBOrdersCollection        = "orders"
	MongoDBUsersCollection         = "users"
	MongoDBPointsHistoryCollection = "points_history"
)

type App struct {
	rabbitmqHost       string
	rabbitmqPort       int
	rabbitmqUser       string
	rabbitmqPassword   string
	mongodbURL         string
	redisAddr          string
	opsAPIConfig       Optional[OpsAPIConfig]
	publishMaxAttempts int
	publishRetryDelay  time.Duration
	logHandler         slog.Handler
	logger             *slog.Logger
	mongoClient        *mongo.Client
	stateStore         *redisstore.Store
	httpServersToStop  []*http.Server
}

func NewApp(opts ...Option) (*App, error) {
	app := &App{}
	err := setDefaultOpts(app)
	if err != nil {
		return nil, fmt.Errorf("failed setting default options: %w", err)
	}
	for _, opt := range opts {
		opt(app)
	}
	return app, nil
}

func (app *App) Run(ctx context.Context) error {
	app.logger = slog.
		New(app.logHandler).
		With(logattr.ServiceName("backoffice-events"))

	mongoClient, err := connectMongoDB(app.mongodbURL)
	if err != nil {
		return fmt.Errorf("error connecting to mongodb: %w", err)
	}
	app.mongoClient = mongoClient

	app.stateStore = redisstore.NewStore(app.redisAddr)

	eventsPublisher, err := createEventsPublisher(app)
	if err != nil {
		return fmt.Errorf("error creating events publisher: %w", err)
	}

	dispatcher := createDispatcher(app, eventsPublisher)

	var httpServersToStop []*http.Server
	if app.opsAPIConfig.Set {
		opsHTTPServer := app.startOpsAPIHTTPServer(app.logger)
		httpServersToStop = append(httpServersToStop, opsHTTPServer)
	}
	app.httpServersToStop = httpServersToStop

	err = dispatcher.Start(ctx)
	if err != nil {
		return fmt.Errorf("error starting events dispatcher: %w", err)
	}

	app.logger.Info("backoffice-events started")

	return nil
}

func (app *App) Stop(ctx context.Context) {
	// TODO implement dispatcher graceful shutdown
	err := app.mongoClient.Disconnect(context.TODO())
	if err != nil {
		app.logger.Error("error disconnecting from mongo", logattr.Error(err.Error()))
	}
	if err := app.stateStore.Close(); err != nil {
		app.logger.Error("error closing redis store", logattr.Error(err.Error()))
	}
	for _, httpServer := range app.httpServersToStop {
		err := httpServer.Shutdown(ctx)
		if err != nil {
			app.logger.Error("error stopping http server", logattr.Error(err.Error()))
		}
	}
	app.logger.Info("backoffice-events stopped")
}

func setDefaultOpts(app *App) error {
	zapLogger, err := newZapLogger()
	if err != nil {
		return err
	}
	app.logHandler = zapslog.NewHandler(zapLogger.Core())
	return nil
}

func newZapLogger() (*zap.Logger, error) {
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
	return zapConfig.Build()
}

func connectMongoDB(url string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(url).SetServerAPIOptions(serverAPI)
	return mongo.Connect(opts)
}

func createEventsPublisher(app *App) (*publisher.Publisher, error) {
	rabbitMQClient, err := rabbitmq.NewClient(
		rabbitmq.WithHost(app.rabbitmqHost),
		rabbitmq.WithPort(uint(app.rabbitmqPort)),
		rabbitmq.WithUser(app.rabbitmqUser),
		rabbitmq.WithPassword(app.rabbitmqPassword),
		rabbitmq.WithExchangeName(events.Exchange),
		rabbitmq.WithExchangeType(rabbitmq.ExchangeTypeTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rabbitmq client: %w", err)
	}

	var publisherOpts []publisher.Option
	if app.publishMaxAttempts > 0 {
		publisherOpts = append(publisherOpts, publisher.WithRetryPolicy(backoff.NewPolicy(
			backoff.WithMaxAttempts(app.publishMaxAttempts),
			backoff.WithDelay(app.publishRetryDelay),
		)))
	}

	return publisher.NewPublisher(
		rabbitMQClient,
		app.logger.With(logattr.Component("publisher.Publisher")),
		publisherOpts...,
	), nil
}

func createDispatcher(app *App, eventsPublisher *publisher.Publisher) *consumer.Dispatcher {
	productsRepository := mongodb.NewProductsRepository(app.mongoClient, MongoDBName, MongoDBProductsCollection)
	ordersRepository := mongodb.NewOrdersRepository(app.mongoClient, MongoDBName, MongoDBOrdersCollection)
	usersRepository := mongodb.NewUsersRepository(app.mongoClient, MongoDBName, MongoDBUsersCollection)
	pointsHistoryRepository := mongodb.NewPointsHistoryRepository(app.mongoClient, MongoDBName, MongoDBPointsHistoryCollection)

	statsRecorder := stats.NewRecorder(
		productsRepository,
		ordersRepository,
		usersRepository,
		app.stateStore,
		eventsPublisher,
		app.logger.With(logattr.Component("stats.Recorder")),
	)

	catalogEventsHandler := catalog.NewEventsHandler(
		app.stateStore,
		statsRecorder,
		eventsPublisher,
		app.logger.With(logattr.Component("catalog.EventsHandler")),
	)
	ordersEventsHandler := orders.NewEventsHandler(
		productsRepository,
		usersRepository,
		pointsHistoryRepository,
		app.stateStore,
		statsRecorder,
		eventsPublisher,
		app.logger.With(logattr.Component("orders.EventsHandler")),
	)
	membersEventsHandler := members.NewEventsHandler(
		app.stateStore,
		statsRecorder,
		eventsPublisher,
		app.logger.With(logattr.Component("members.EventsHandler")),
	)

	return consumer.NewDispatcher(
		app.newTopicConsumer,
		app.logger.With(logattr.Component("consumer.Dispatcher")),
		consumer.WithProductHandler(catalogEventsHandler),
		consumer.WithOrderHandler(ordersEventsHandler),
		consumer.WithUserHandler(membersEventsHandler),
	)
}

// newTopicConsumer opens a rabbitmq consumer whose queue name and binding
// key both equal the topic name.
func (app *App) newTopicConsumer(topic string) (messages.Consumer, error) {
	client, err := rabbitmq.NewClient(
		rabbitmq.WithHost(app.rabbitmqHost),
		rabbitmq.WithPort(uint(app.rabbitmqPort)),
		rabbitmq.WithUser(app.rabbitmqUser),
		rabbitmq.WithPassword(app.rabbitmqPassword),
		rabbitmq.WithExchangeName(events.Exchange),
		rabbitmq.WithExchangeType(rabbitmq.ExchangeTypeTopic),
		rabbitmq.WithQueueName(topic),
		rabbitmq.WithConsumerRoutingKeys(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rabbitmq client for topic %s: %w", topic, err)
	}
	return client, nil
}

func (app *App) startOpsAPIHTTPServer(appLogger *slog.Logger) *http.Server {
	handler := ops.NewBearerAuth(
		app.opsAPIConfig.Value.AuthTokenSecret,
		ops.NewHandler(
			app.stateStore,
			appLogger.With(logattr.Component("http.OpsHandler")),
		),
		appLogger.With(logattr.Component("http.OpsBearerAuth")),
	)

	mux := http.NewServeMux()
	mux.Handle("/stats/", handler)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", app.opsAPIConfig.Value.OpsHTTPServerPort),
		Handler: mux,
	}

	go func() {
		defer appLogger.Info("http server stopped")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("http server error", logattr.Error(err.Error()))
		}
	}()

	appLogger.Info("http server started")

	return httpServer
}
