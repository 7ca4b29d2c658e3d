package main

import (
	adminhandler "cloudbase/internal/admin/handler"
	adminrepo "cloudbase/internal/admin/repository"
	adminservice "cloudbase/internal/admin/service"
	adminvalidator "cloudbase/internal/admin/validator"
	authhandler "cloudbase/internal/auth/handler"
	authrepo "cloudbase/internal/auth/repository"
	authservice "cloudbase/internal/auth/service"
	authstore "cloudbase/internal/auth/store"
	"cloudbase/internal/engine"
	flighthandler "cloudbase/internal/flights/handler"
	flightrepo "cloudbase/internal/flights/repository"
	flightservice "cloudbase/internal/flights/service"
	"cloudbase/internal/notifier"
	paymenthandler "cloudbase/internal/payments/handler"
	"cloudbase/internal/payments/provider"
	paymentservice "cloudbase/internal/payments/service"
	tickethandler "cloudbase/internal/tickets/handler"
	ticketrepo "cloudbase/internal/tickets/repository"
	ticketservice "cloudbase/internal/tickets/service"
	ticketvalidator "cloudbase/internal/tickets/validator"
	"cloudbase/pkg/app"
	"cloudbase/pkg/client"
	"cloudbase/pkg/config"
	"cloudbase/pkg/contracts"
	"cloudbase/pkg/kafka"
	kafka_config "cloudbase/pkg/kafka/config"
	kafkamw "cloudbase/pkg/kafka/middleware"
	"cloudbase/pkg/token"
)

const ServiceName = "api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting API service")

	sealer, err := token.NewSealer(cfg.TokenKey, cfg.TokenTTL)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize token sealer", "error", err)
	}

	kafkaCfg := kafka_config.Load()
	pricingProducer := newProducer(cfg, kafkaCfg, kafkaCfg.TopicPricing)
	defer pricingProducer.Close()
	notificationProducer := newProducer(cfg, kafkaCfg, kafkaCfg.TopicNotifications)
	defer notificationProducer.Close()

	handlers := initHandlers(cfg, sealer, pricingProducer, notificationProducer)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handlers...)
	serverApp.Run()
}

func newProducer(cfg *config.Config, kafkaCfg *kafka_config.Config, topic string) *kafka.Producer {
	producer, err := kafka.NewProducer(kafkaCfg, topic, topic+".dlq")
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka producer", "topic", topic, "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamw.LoggingProducerMiddleware())
		producer.Use(kafkamw.MetricsProducerMiddleware())
	}
	return producer
}

func initHandlers(
	cfg *config.Config,
	sealer *token.Sealer,
	pricingProducer *kafka.Producer,
	notificationProducer *kafka.Producer,
) []contracts.Handler {
	pricingEngine := engine.NewKafkaPricingEngine(pricingProducer, cfg.Log)
	notifierPub := notifier.NewKafkaPublisher(notificationProducer, cfg.Log)
	routingEngine := engine.NewHTTPRoutingEngine(
		client.NewHttpClient(cfg.RoutingEngineURL, cfg.RoutingEngineTimeout),
		cfg.Log,
	)

	flightRepo := flightrepo.NewMongoFlightRepository(cfg)
	flightSvc := flightservice.NewFlightService(flightRepo, routingEngine, cfg.Client.Redis, cfg)

	paymentSvc := paymentservice.NewPaymentService(
		flightRepo,
		provider.NewStripeProvider(cfg.StripeSecretKey),
		cfg,
	)

	ticketSvc := ticketservice.NewTicketService(
		ticketrepo.NewMongoTicketRepository(cfg),
		flightRepo,
		paymentSvc,
		pricingEngine,
		notifierPub,
		ticketvalidator.NewTicketValidator(cfg.Log),
		cfg,
	)

	scheduleSvc := adminservice.NewScheduleService(
		adminrepo.NewMongoScheduleRepository(cfg),
		adminrepo.NewRunwayLockRepository(cfg),
		flightRepo,
		pricingEngine,
		adminvalidator.NewScheduleValidator(cfg.Log),
		cfg,
	)

	authSvc := authservice.NewAuthService(
		authrepo.NewMongoUserRepository(cfg),
		authstore.NewRedisOTPStore(cfg.Client.Redis, cfg),
		sealer,
		notifierPub,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		flighthandler.NewFlightHandler(flightSvc, cfg.Log),
		tickethandler.NewTicketHandler(ticketSvc, sealer, cfg),
		paymenthandler.NewPaymentHandler(paymentSvc, sealer, cfg),
		adminhandler.NewScheduleHandler(scheduleSvc, flightSvc, sealer, cfg),
		authhandler.NewAuthHandler(authSvc, cfg),
	}
}
