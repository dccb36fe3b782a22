package main

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/storepulse/storepulse/app/controllers"
	"github.com/storepulse/storepulse/app/repository"
	apiv1 "github.com/storepulse/storepulse/internal/api/v1"
	"github.com/storepulse/storepulse/internal/pkg/cache"
	"github.com/storepulse/storepulse/internal/pkg/env"
	"github.com/storepulse/storepulse/internal/pkg/handshake"
	"github.com/storepulse/storepulse/internal/pkg/jobqueue"
	"github.com/storepulse/storepulse/internal/pkg/push"
	"github.com/storepulse/storepulse/internal/pkg/recordstore"
	"github.com/storepulse/storepulse/internal/pkg/router"
	"github.com/storepulse/storepulse/internal/pkg/webhooks"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()

	records := recordstore.NewClientFromEnv()
	repos := repository.NewRepositories(records)

	var responseCache cache.CacheStore
	if env.GetEnv("CACHE_BACKEND", "memory") == "redis" {
		cache.SetupCache()
		responseCache = cache.NewRedisCache(cache.GetClient())
	} else {
		responseCache = cache.NewMemoryCache()
	}

	subs := push.NewMemorySubscriptionStore()
	sender := push.NewWebPushSenderFromEnv()
	if !sender.Configured() {
		log.Print("push sender: VAPID keys missing, notification delivery will fail")
	}

	workers := jobqueue.DefaultWorkers
	if n, err := strconv.Atoi(env.GetEnv("PUSH_WORKERS", "")); err == nil && n > 0 {
		workers = n
	}
	queue := jobqueue.NewQueue(sender, workers)
	queue.Start()

	provisioner := webhooks.NewProvisioner(repos.Webhook)
	coordinator := handshake.NewCoordinator(repos.Store, provisioner)

	server := &apiv1.APIServer{
		SSO:      controllers.NewSSOController(coordinator),
		Payments: controllers.NewPaymentsController(repos.Store),
		Push:     controllers.NewPushController(repos.Store, subs, queue),
		Webhooks: controllers.NewWebhookController(repos.Store, repos.Webhook, repos.Event, subs, queue),
		Data:     controllers.NewDataController(repos.Store, repos.Webhook, responseCache),
	}

	app := fiber.New(fiber.Config{
		AppName:   env.GetEnv("APP_NAME", "StorePulse"),
		BodyLimit: 4 * 1024 * 1024,
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app, server)

	return app
}
