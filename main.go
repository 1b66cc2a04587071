package main

import (
	"context"
	"embed"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/maitreclub/maitre/internal/mongo"
	"github.com/maitreclub/maitre/internal/notify"
	"github.com/maitreclub/maitre/internal/order"
	"github.com/maitreclub/maitre/internal/tables"
	"github.com/maitreclub/maitre/pkg"
)

//go:embed seed.json
var seedFS embed.FS

const (
	appNamespace = "MAITRE"
	appName      = "coordination"
	appVersion   = "0.1.0"
)

func main() {
	config, err := aqm.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup with error: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := aqm.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	defer cancelSeeds()

	lifecycle := []interface{}{}

	tableRepo := mongo.NewTableRepo(config, logger)
	err = tableRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start table repository: %v", appName, appVersion, err)
	}

	db := tableRepo.GetDatabase()
	if db == nil {
		err := errors.New("cannot get table repo database")
		log.Fatalf("%s(%s) cannot initialize database: %v", appName, appVersion, err)
	}

	reservationRepo := mongo.NewReservationRepo(db)
	orderRepo := mongo.NewOrderRepo(db)
	orderItemRepo := mongo.NewOrderItemRepo(db)
	ticketRepo := mongo.NewTicketRepo(db)

	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%s(%s) cannot create order indexes: %v", appName, appVersion, err)
	}

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	publisher, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	subscriber, err := pkg.NewNATSSubscriber(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	lifecycle = append(lifecycle, aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	lifecycle = append(lifecycle, aqm.LifecycleHooks{
		OnStop: func(context.Context) error {
			return subscriber.Close()
		},
	})

	machine := tables.NewStateMachine(tableRepo, orderRepo, logger)
	floorPlan := tables.NewFloorPlan(tableRepo, logger)
	suggester := tables.NewSuggester(tableRepo, reservationRepo, logger)

	tableHandler := tables.NewHandler(
		tables.HandlerDeps{
			TableRepo:       tableRepo,
			ReservationRepo: reservationRepo,
			Machine:         machine,
			FloorPlan:       floorPlan,
			Suggester:       suggester,
			Publisher:       publisher,
		},
		config,
		logger,
	)

	catalogURL, _ := config.GetString("services.catalog.url")
	var catalogClient *aqm.ServiceClient
	if catalogURL != "" {
		catalogClient = aqm.NewServiceClient(catalogURL)
	}
	products := order.NewProductCache(catalogClient, logger)
	if catalogClient != nil {
		lifecycle = append(lifecycle, aqm.LifecycleHooks{
			OnStart: func(ctx context.Context) error {
				if err := products.Warm(ctx); err != nil {
					logger.Info("product cache warmup failed", "error", err)
				}
				return nil
			},
		})
	}

	orderHandler := order.NewHandler(
		order.HandlerDeps{
			OrderRepo:  orderRepo,
			ItemRepo:   orderItemRepo,
			TicketRepo: ticketRepo,
			TableRepo:  tableRepo,
			Machine:    machine,
			Products:   products,
			Publisher:  publisher,
		},
		config,
		logger,
	)

	hub := notify.NewHub(logger)
	relay := notify.NewRelay(subscriber, hub, logger)
	notifyHandler := notify.NewHandler(hub, logger)

	lifecycle = append(lifecycle, aqm.LifecycleHooks{
		OnStart: relay.Start,
	})

	demoEnabled, _ := config.GetString("seeding.demo")
	var seedingFunc func(ctx context.Context) error
	if demoEnabled == "true" {
		logger.Info("Demo seeding enabled")
		seedingFunc = tables.DemoSeedingFunc(seedCtx, tableRepo, reservationRepo, seedFS, logger)
	} else {
		seedingFunc = tables.SeedingFunc(seedCtx, tableRepo, seedFS, logger)
	}

	seedHooks := aqm.LifecycleHooks{
		OnStart: seedingFunc,
		OnStop:  tables.StopFunc(cancelSeeds),
	}
	lifecycle = append(lifecycle, seedHooks)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	options := []aqm.Option{
		aqm.WithConfig(config),
		aqm.WithLogger(logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", tableHandler, orderHandler, notifyHandler),
		aqm.WithLifecycle(lifecycle...),
		aqm.WithHealthChecks(appName),
	}

	ms := aqm.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		_ = tableRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}

	_ = tableRepo.Stop(context.Background())
	logger.Infof("%s(%s) stopped", appName, appVersion)
}
