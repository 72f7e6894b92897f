package main

import (
	"log"
	"os"
	"runtime/debug"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/roster-import/modules/roster/domain/roster"
	"github.com/iota-uz/roster-import/modules/roster/infrastructure/persistence"
	"github.com/iota-uz/roster-import/modules/roster/presentation/controllers"
	"github.com/iota-uz/roster-import/modules/roster/services"
	"github.com/iota-uz/roster-import/pkg/configuration"
	"github.com/iota-uz/roster-import/pkg/eventbus"
	"github.com/iota-uz/roster-import/pkg/metrics"
	"github.com/iota-uz/roster-import/pkg/middleware"
	"github.com/iota-uz/roster-import/pkg/server"
	"github.com/iota-uz/roster-import/pkg/sparql"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	client := sparql.NewHTTPClient(conf.SPARQL.Endpoint, conf.SPARQL.Timeout)
	base := persistence.NewResourceBase(conf.Roster.ResourceBaseURI)

	bus := eventbus.NewEventPublisher(logger)
	bus.Subscribe(func(e *roster.ImportCompletedEvent) {
		logger.WithFields(logrus.Fields{
			"created": e.Created,
			"updated": e.Updated,
			"skipped": e.SkippedNoGroup,
			"failed":  e.Failed,
		}).Info("roster import completed")
	})

	importService := services.NewImportService(services.ImportServiceOptions{
		Groups:     persistence.NewGroupRepository(client),
		Persons:    persistence.NewPersonRepository(client, base),
		Accounts:   persistence.NewAccountRepository(client, base),
		Publisher:  bus,
		Logger:     logger,
		Delimiter:  conf.Roster.DelimiterRune(),
		HeaderRows: conf.Roster.HeaderRows,
	})

	httpControllers := []server.Controller{
		controllers.NewImportController(importService, controllers.ImportControllerOptions{
			MaxUploadSize:   conf.MaxUploadSize,
			MaxUploadMemory: conf.MaxUploadMemory,
		}),
		controllers.NewHealthController(),
	}
	if conf.Prometheus.Enabled {
		httpControllers = append(httpControllers, metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(logger, conf),
		middleware.Cors(conf.AllowedOrigins),
	}
	if conf.RateLimit.Enabled {
		middlewares = append(middlewares, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerPeriod: conf.RateLimit.GlobalRPS,
		}))
	}

	serverInstance := server.NewHTTPServer(httpControllers, middlewares, nil, nil)
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
