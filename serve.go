package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberRecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"procurement-backend/config"
	apiv1 "procurement-backend/controllers/v1"
	"procurement-backend/db"
	"procurement-backend/fiberlog"
	"procurement-backend/initializers"
	"procurement-backend/lib/ws"
	"procurement-backend/middleware"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	initializers.InitAllServices(ctx)
	defer db.Close()
	defer initializers.ClosePublisher()

	app := newApp()
	initializers.InitWorkers(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(fmt.Sprintf("%s:%d", config.Conf.App.ListenAddr, config.Conf.App.Port))
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("gracefully shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("HTTP server stopped")
	return nil
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: config.Conf.App.BodyLimit,
	})
	app.Use(fiberRecover.New())
	app.Use(swagger.New(swagger.Config{
		Path:     "/swagger",
		FilePath: "./docs/swagger.json",
	}))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	//api
	apiV1 := fiber.New()
	apiV1.Use(fiberlog.New(*initializers.LoggerConfig))
	if config.Conf.App.ErrNotify != "" {
		apiV1.Use(middleware.ErrNotify(config.Conf.App.ErrNotify))
	}
	app.Mount("/api/v1", apiV1)
	apiV1.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, PUT",
	}))
	apiV1.Use(middleware.WithBodyLimit(int64(config.Conf.App.BodyLimit)))
	apiV1.Use(middleware.AuthorizationRequired(), middleware.ActorRequired())
	apiv1.InitPurchaseRequestApiRouters(apiV1)
	ws.InitWs(apiV1)
	return app
}
