package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claimdesk/notifier/pkg/config"
	"github.com/claimdesk/notifier/pkg/dispatch"
	"github.com/claimdesk/notifier/pkg/email"
	"github.com/claimdesk/notifier/pkg/identity"
	"github.com/claimdesk/notifier/pkg/logger"
	"github.com/claimdesk/notifier/pkg/notification"
	"github.com/claimdesk/notifier/pkg/pg"
	"github.com/claimdesk/notifier/pkg/preference"
	"github.com/claimdesk/notifier/pkg/push"
	"github.com/claimdesk/notifier/pkg/queue"
	"github.com/claimdesk/notifier/pkg/redis"
	"github.com/claimdesk/notifier/pkg/sms"
	"github.com/claimdesk/notifier/pkg/whatsapp"
)

type appConfig struct {
	Environment     string        `env:"APP_ENV" envDefault:"development"`
	LeaseEnabled    bool          `env:"NOTIFIER_LEASE_ENABLED" envDefault:"false"` // claim work via Redis when running more than one instance
	HealthInterval  time.Duration `env:"NOTIFIER_HEALTH_INTERVAL" envDefault:"1m"`
	ShutdownTimeout time.Duration `env:"NOTIFIER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

func main() {
	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, "notifierd"))
	logger.SetAsDefault(log)

	if err := run(appCfg, log); err != nil {
		log.Error("notifierd exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(appCfg appConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	records := notification.NewPgStorage(pool)
	prefs := preference.NewPgStorage(pool)
	batches := queue.NewPgStorage(pool)
	directory := identity.NewPgDirectory(pool)

	senders := buildSenders(log)
	dispatcher := dispatch.NewDispatcher(senders, records, prefs,
		dispatch.WithDispatcherLogger(log))
	resolver := preference.NewResolver(prefs)
	service := dispatch.NewService(directory, resolver, records, batches, dispatcher,
		dispatch.WithServiceLogger(log))
	bulk := dispatch.NewBulkProcessor(service, batches, log)

	checks := map[string]func(context.Context) error{
		"postgres": pg.Healthcheck(pool),
	}

	procOpts := []dispatch.ProcessorOption{dispatch.WithProcessorLogger(log)}
	if appCfg.LeaseEnabled {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)

		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()

		checks["redis"] = redis.Healthcheck(client)
		procOpts = append(procOpts, dispatch.WithLocker(redis.NewLease(client, "notifier")))
		log.Info("work lease enabled")
	}

	go monitorHealth(ctx, log, appCfg.HealthInterval, checks)

	processor := dispatch.NewProcessor(directory, records, batches, dispatcher, bulk, procOpts...)
	if err := processor.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutting down")

	if err := processor.Stop(appCfg.ShutdownTimeout); err != nil {
		return err
	}
	return nil
}

// monitorHealth pings the backing stores on an interval and logs any
// dependency that stops answering, so degradation shows up in the logs
// before delivery failures pile up.
func monitorHealth(ctx context.Context, log *slog.Logger, interval time.Duration, checks map[string]func(context.Context) error) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for name, check := range checks {
				if err := check(ctx); err != nil {
					log.Warn("dependency unhealthy",
						slog.String("dependency", name),
						logger.Error(err),
					)
				}
			}
		}
	}
}

// buildSenders assembles the channel registry from whatever providers are
// configured. Unconfigured channels still get a sender so their failures
// are recorded instead of silently dropped; email falls back to the dev
// sender outside production.
func buildSenders(log *slog.Logger) dispatch.Registry {
	senders := dispatch.Registry{
		notification.ChannelInApp: dispatch.NewInAppSender(),
	}

	var emailCfg email.Config
	config.MustLoad(&emailCfg)
	if emailCfg.Configured() {
		transport, err := email.NewPostmarkClient(emailCfg)
		if err != nil {
			log.Error("failed to build postmark client", logger.Error(err))
		} else {
			senders[notification.ChannelEmail] = dispatch.NewEmailSender(transport, nil)
		}
	}
	if _, ok := senders[notification.ChannelEmail]; !ok {
		log.Warn("email provider not configured, using dev sender")
		senders[notification.ChannelEmail] = dispatch.NewEmailSender(email.NewDevSender(log), nil)
	}

	var smsCfg sms.Config
	config.MustLoad(&smsCfg)
	if smsCfg.Configured() {
		client, err := sms.NewClient(smsCfg)
		if err != nil {
			log.Error("failed to build sms client", logger.Error(err))
		} else {
			senders[notification.ChannelSMS] = dispatch.NewSMSSender(client)
		}
	} else {
		log.Warn("sms provider not configured")
		senders[notification.ChannelSMS] = dispatch.NewSMSSender(nil)
	}

	var pushCfg push.Config
	config.MustLoad(&pushCfg)
	if pushCfg.Configured() {
		client, err := push.NewClient(pushCfg)
		if err != nil {
			log.Error("failed to build push client", logger.Error(err))
		} else {
			senders[notification.ChannelPush] = dispatch.NewPushSender(client)
		}
	} else {
		log.Warn("push provider not configured")
		senders[notification.ChannelPush] = dispatch.NewPushSender(nil)
	}

	var waCfg whatsapp.Config
	config.MustLoad(&waCfg)
	if waCfg.Configured() {
		client, err := whatsapp.NewClient(waCfg)
		if err != nil {
			log.Error("failed to build whatsapp client", logger.Error(err))
		} else {
			senders[notification.ChannelWhatsApp] = dispatch.NewWhatsAppSender(client)
		}
	} else {
		log.Warn("whatsapp provider not configured")
		senders[notification.ChannelWhatsApp] = dispatch.NewWhatsAppSender(nil)
	}

	return senders
}
