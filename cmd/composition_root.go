package cmd

import (
	"context"
	"log/slog"

	httpadapter "ordertracker/internal/adapters/in/http"
	"ordertracker/internal/adapters/out/courier"
	"ordertracker/internal/adapters/out/notify"
	"ordertracker/internal/adapters/out/postgres"
	"ordertracker/internal/adapters/out/postgres/notificationrepo"
	"ordertracker/internal/adapters/out/postgres/orderrepo"
	"ordertracker/internal/adapters/out/postgres/stagerepo"
	"ordertracker/internal/core/application/catalog"
	"ordertracker/internal/core/application/courierstatus"
	"ordertracker/internal/core/application/notification"
	"ordertracker/internal/core/application/usecases/commands"
	"ordertracker/internal/core/application/usecases/queries"
	"ordertracker/internal/core/domain/services"
	"ordertracker/internal/core/ports"
	"ordertracker/internal/jobs"
	"ordertracker/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     *slog.Logger

	registry   *prometheus.Registry
	collector  *metrics.Collector
	catalog    *catalog.Catalog
	vocabulary *courierstatus.Vocabulary
	policy     services.TransitionPolicy
	dispatcher *notification.Dispatcher
}

// NewCompositionRoot wires the long-lived collaborators. vocabulary comes from
// the catalog file when one is configured.
func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	vocabulary *courierstatus.Vocabulary,
	logger *slog.Logger,
) (*CompositionRoot, error) {
	policy, err := services.NewTransitionPolicy(config.TransitionPolicy, config.ForwardOnlyExitStages)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(registry)

	sinks := []ports.NotificationSink{notificationrepo.NewGormNotificationSink(gormDB)}
	if config.SMTPHost != "" {
		email, emailErr := notify.NewEmailSink(notify.SMTPConfig{
			Host:     config.SMTPHost,
			Port:     config.SMTPPort,
			User:     config.SMTPUser,
			Password: config.SMTPPassword,
			From:     config.SMTPFrom,
		})
		if emailErr != nil {
			return nil, emailErr
		}
		sinks = append(sinks, email)
	}

	return &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
		registry:   registry,
		collector:  collector,
		catalog:    catalog.New(stagerepo.NewGormStageRepository(gormDB), logger),
		vocabulary: vocabulary,
		policy:     policy,
		dispatcher: notification.NewDispatcher(sinks, config.NotifyTimeout, collector, logger),
	}, nil
}

// LoadStageRegistry fails when the registry table is empty.
func (c *CompositionRoot) LoadStageRegistry(ctx context.Context) error {
	return c.catalog.Refresh(ctx)
}

// Shutdown waits for in-flight notifications.
func (c *CompositionRoot) Shutdown() {
	c.dispatcher.Wait()
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	var f commands.TransitionUoWFactory = FuncTransitionUoWFactory(func() commands.TransitionUoW {
		return c.uowFactory.Create()
	})
	return commands.NewTransitionOrderCommandHandler(f, c.catalog, c.policy, c.dispatcher, c.collector, c.logger)
}

func (c *CompositionRoot) CreateIngestCourierEventCommandHandler() commands.IngestCourierEventCommandHandler {
	return commands.NewIngestCourierEventCommandHandler(
		c.vocabulary,
		c.catalog,
		orderrepo.NewGormOrderRepository(c.gormDB),
		c.CreateTransitionOrderCommandHandler(),
		c.collector,
		c.logger,
	)
}

func (c *CompositionRoot) CreateRegisterOrderCommandHandler() commands.RegisterOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRegisterOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateSeedStagesCommandHandler() commands.SeedStagesCommandHandler {
	var f commands.StageUoWFactory = FuncStageUoWFactory(func() commands.StageUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSeedStagesCommandHandler(f, c.catalog, c.logger)
}

func (c *CompositionRoot) CreatePushCourierStatusesCommandHandler() commands.PushCourierStatusesCommandHandler {
	var f commands.CourierPushUoWFactory = FuncCourierPushUoWFactory(func() commands.CourierPushUoW {
		return c.uowFactory.Create()
	})

	policy := commands.DefaultPushPolicy()
	policy.Timeout = c.config.CourierPushTimeout
	policy.MaxAttempts = c.config.CourierPushMaxAttempts
	policy.Lease = c.config.CourierPushLease

	client := courier.NewClient(c.config.CourierAPIURL, c.config.CourierAPIKey, c.config.CourierPushTimeout)
	return commands.NewPushCourierStatusesCommandHandler(f, client, c.vocabulary, policy, c.collector, c.logger)
}

func (c *CompositionRoot) CreateReconcileOrderStagesCommandHandler() commands.ReconcileOrderStagesCommandHandler {
	var f commands.ReconcileUoWFactory = FuncReconcileUoWFactory(func() commands.ReconcileUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReconcileOrderStagesCommandHandler(
		orderrepo.NewGormOrderRepository(c.gormDB),
		commands.NewReconcileOrderStageCommandHandler(f, c.logger),
		c.logger,
	)
}

func (c *CompositionRoot) CreateGetCurrentStageQueryHandler() queries.GetCurrentStageQueryHandler {
	return queries.NewGetCurrentStageQueryHandler(c.gormDB, c.catalog)
}

func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() queries.GetOrderHistoryQueryHandler {
	return queries.NewGetOrderHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListStagesQueryHandler() queries.ListStagesQueryHandler {
	return queries.NewListStagesQueryHandler(c.catalog)
}

func (c *CompositionRoot) CreateRouter(ctx context.Context) (*echo.Echo, error) {
	spec, err := httpadapter.LoadSpec(ctx)
	if err != nil {
		return nil, err
	}

	server := httpadapter.NewServer(httpadapter.Handlers{
		RegisterOrder:      c.CreateRegisterOrderCommandHandler(),
		TransitionOrder:    c.CreateTransitionOrderCommandHandler(),
		IngestCourierEvent: c.CreateIngestCourierEventCommandHandler(),
		GetCurrentStage:    c.CreateGetCurrentStageQueryHandler(),
		GetOrderHistory:    c.CreateGetOrderHistoryQueryHandler(),
		ListStages:         c.CreateListStagesQueryHandler(),
	}, spec, httpadapter.WebhookConfig{
		Tokens:  c.config.WebhookTokens,
		Timeout: c.config.WebhookTimeout,
	}, c.logger)

	return httpadapter.NewRouter(server, c.collector, c.registry, c.logger), nil
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreatePushCourierStatusesCommandHandler(),
		c.CreateReconcileOrderStagesCommandHandler(),
		jobs.Schedules{
			CourierPush: c.config.CourierPushSchedule,
			Reconcile:   c.config.ReconcileSchedule,
		},
		c.logger,
	)
}

type FuncTransitionUoWFactory func() commands.TransitionUoW

func (f FuncTransitionUoWFactory) Create() commands.TransitionUoW {
	return f()
}

type FuncReconcileUoWFactory func() commands.ReconcileUoW

func (f FuncReconcileUoWFactory) Create() commands.ReconcileUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncStageUoWFactory func() commands.StageUoW

func (f FuncStageUoWFactory) Create() commands.StageUoW {
	return f()
}

type FuncCourierPushUoWFactory func() commands.CourierPushUoW

func (f FuncCourierPushUoWFactory) Create() commands.CourierPushUoW {
	return f()
}
