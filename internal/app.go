package internal

import (
	"context"
	"fmt"
	"github.com/RobinLinde/MapComplete-MQTT/internal/controllers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/statistic/interfaces"
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
)

type App struct {
	WebServer *http.Server
}

func newWebServer(conf *structures.Config, healthController *controllers.HealthController, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) *http.Server {
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", providers.MetricsMiddleware(metrics, router, apiMux))

	return &http.Server{
		Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewApp runs the publisher until SIGINT or SIGTERM. In dry-run mode it runs a
// single cycle against the no-op sink and returns.
func NewApp(healthController *controllers.HealthController, scheduler interfaces.SchedulerInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface, sink providers.SinkProviderInterface) (*App, error) {
	defer logger.Close()
	defer sink.Close()

	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	if err := scheduler.Restore(); err != nil {
		logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}

	app := &App{}

	if conf.DryRun {
		logger.Infof(providers.TypeApp, "Dry run: one update cycle, nothing is sent to the broker")
		if err := scheduler.RunOnce(context.Background()); err != nil {
			return nil, err
		}
		if err := scheduler.Persist(); err != nil {
			return nil, err
		}
		return app, nil
	}

	if err := scheduler.RunOnce(context.Background()); err != nil {
		logger.Errorf(providers.TypeApp, "Initial update cycle failed: %s", err)
	}
	scheduler.Init()

	serverErr := make(chan error, 1)
	if conf.WebServer.Enabled {
		app.WebServer = newWebServer(conf, healthController, router, metrics)
		go func() {
			logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
			if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				serverErr <- err
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		scheduler.Stop()
		return nil, fmt.Errorf("server error: %w", err)
	}

	scheduler.Stop()

	if app.WebServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.WebServer.Shutdown(ctx); err != nil {
			return nil, err
		}
	}
	if err := scheduler.Persist(); err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}
