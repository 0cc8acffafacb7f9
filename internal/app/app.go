package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	_ "tasktracker/docs"
	"tasktracker/internal/clock"
	"tasktracker/internal/config"
	"tasktracker/internal/handlers"
	"tasktracker/internal/middleware"
	"tasktracker/internal/notify"
	"tasktracker/internal/pdf"
	"tasktracker/internal/realtime"
	"tasktracker/internal/repositories"
	"tasktracker/internal/routes"
	"tasktracker/internal/scheduler"
	"tasktracker/internal/services"
	"tasktracker/internal/utils"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		NewLogger,
		clock.NewRealClock,
	),
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

var RepositoryModule = fx.Module("repositories",
	fx.Provide(
		repositories.NewTaskRepository,
		repositories.NewUserRepository,
		repositories.NewNotificationRepository,
		repositories.NewProjectRepository,
		repositories.NewCostRepository,
	),
)

var NotifyModule = fx.Module("notify",
	fx.Provide(
		realtime.NewRegistry,
		NewChannels,
		NewDispatcher,
		func(d *notify.Dispatcher) notify.Sender { return d },
		func(d *notify.Dispatcher) notify.RecipientSender { return d },
		func(r repositories.UserRepository) notify.UserLookup { return r },
		notify.NewStatusNotifier,
		func(n *notify.StatusNotifier) services.StatusChangeNotifier { return n },
		NewScheduler,
	),
	fx.Invoke(registerScheduler),
)

var ServiceModule = fx.Module("services",
	fx.Provide(
		services.NewTaskService,
		services.NewProjectService,
		services.NewCostService,
		services.NewUserService,
		services.NewNotificationService,
		services.NewReportService,
		func(cfg config.Config) pdf.Generator { return pdf.NewReportGenerator(cfg.Reports.FontPath) },
	),
)

var HTTPModule = fx.Module("http",
	fx.Provide(
		handlers.NewTaskHandler,
		handlers.NewProjectHandler,
		handlers.NewCostHandler,
		handlers.NewReportHandler,
		handlers.NewNotificationHandler,
		func(s services.UserService, cfg config.Config, clk clock.Clock, logger *slog.Logger) *handlers.UserHandler {
			return handlers.NewUserHandler(s, cfg.JWT, clk, logger)
		},
		func(s *scheduler.Scheduler, logger *slog.Logger) *handlers.ReminderHandler {
			return handlers.NewReminderHandler(s, logger)
		},
		func(db *sqlx.DB) *handlers.HealthHandler { return handlers.NewHealthHandler(db) },
		NewEngine,
	),
	fx.Invoke(startServer),
)

// Module wires the whole application.
var Module = fx.Options(
	ConfigModule,
	DBModule,
	RepositoryModule,
	NotifyModule,
	ServiceModule,
	HTTPModule,
	fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
		return &fxevent.SlogLogger{Logger: logger.With("component", "fx")}
	}),
)

func New(opts ...fx.Option) *fx.App {
	return fx.New(append([]fx.Option{Module}, opts...)...)
}

func NewLogger(cfg config.Config) *slog.Logger {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	return middleware.NewLogger(cfg.Log)
}

func NewDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := repositories.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("[db] connected", "driver", cfg.Database.Driver)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Info("[db] closing")
			return db.Close()
		},
	})
	return db, nil
}

type channelDeps struct {
	fx.In

	Config        config.Config
	Logger        *slog.Logger
	Notifications repositories.NotificationRepository
	Registry      *realtime.Registry
}

// NewChannels assembles the delivery channels in fan-out order. Store and live
// are always present; email, telegram and SMS depend on configuration.
func NewChannels(d channelDeps) []notify.Channel {
	channels := []notify.Channel{notify.StoreChannel{Store: d.Notifications}}

	if d.Config.Email.Enabled() {
		channels = append(channels, notify.EmailChannel{Sender: services.NewEmailService(d.Config.Email, d.Logger)})
	} else {
		d.Logger.Warn("[notify][init] SMTP not configured, email channel disabled")
	}

	channels = append(channels, notify.LiveChannel{Registry: d.Registry})

	if d.Config.Telegram.BotToken != "" {
		tg, err := services.NewTelegramService(d.Config.Telegram.BotToken, d.Logger)
		if err != nil {
			d.Logger.Warn("[notify][init] telegram channel disabled", "error", err)
		} else {
			channels = append(channels, notify.TelegramChannel{Sender: tg})
		}
	}

	if d.Config.Mobizon.Enabled() {
		channels = append(channels, notify.SMSChannel{Sender: utils.NewClient(d.Config.Mobizon, d.Logger)})
	}
	return channels
}

func NewDispatcher(users notify.UserLookup, clk clock.Clock, logger *slog.Logger, channels []notify.Channel) *notify.Dispatcher {
	d := notify.NewDispatcher(users, clk, logger, channels...)
	logger.Info("[notify][init] dispatcher ready", "channels", d.Channels())
	return d
}

func NewScheduler(tasks repositories.TaskRepository, users notify.UserLookup, sender notify.RecipientSender, clk clock.Clock, logger *slog.Logger, cfg config.Config) *scheduler.Scheduler {
	return scheduler.New(tasks, users, sender, clk, logger, scheduler.Options{
		Interval: cfg.Reminders.Interval,
		Window:   cfg.Reminders.Window,
	})
}

func registerScheduler(lc fx.Lifecycle, s *scheduler.Scheduler, cfg config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if cfg.Reminders.Disabled {
				logger.Info("[scheduler] disabled by configuration")
				return nil
			}
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			if err := s.Wait(ctx); err != nil {
				logger.Warn("[scheduler] scan still running at shutdown", "error", err)
			}
			return nil
		},
	})
}

type engineDeps struct {
	fx.In

	Config       config.Config
	Logger       *slog.Logger
	Task         *handlers.TaskHandler
	Project      *handlers.ProjectHandler
	Cost         *handlers.CostHandler
	Report       *handlers.ReportHandler
	Notification *handlers.NotificationHandler
	User         *handlers.UserHandler
	Reminder     *handlers.ReminderHandler
	Health       *handlers.HealthHandler
}

func NewEngine(d engineDeps) *gin.Engine {
	return routes.SetupRoutes(d.Config, d.Logger, routes.Handlers{
		Task:         d.Task,
		Project:      d.Project,
		Cost:         d.Cost,
		Report:       d.Report,
		Notification: d.Notification,
		User:         d.User,
		Reminder:     d.Reminder,
		Health:       d.Health,
	})
}

func startServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("[http] listening", "address", srv.Addr, "mode", gin.Mode())
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("[http] server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("[http] shutting down")
			return srv.Shutdown(ctx)
		},
	})
}
