package main

import (
	"context"
	"net/http"

	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/miguelmartinez95/rest-api-project/internal/app"
	"github.com/miguelmartinez95/rest-api-project/internal/config"
	"github.com/miguelmartinez95/rest-api-project/internal/controllers"
	"github.com/miguelmartinez95/rest-api-project/internal/db/migrate"
	"github.com/miguelmartinez95/rest-api-project/internal/repositories"
	"github.com/miguelmartinez95/rest-api-project/internal/services"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	if cfg.MigrateOnStart {
		if err := migrate.Run(cfg.DBUrl, "up"); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to apply migrations")
		}
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	userRepo := repositories.NewUserRepository(application.DB)
	storeRepo := repositories.NewStoreRepository(application.DB)
	itemRepo := repositories.NewItemRepository(application.DB)
	tagRepo := repositories.NewTagRepository(application.DB)

	if err := app.SeedAdmin(context.Background(), userRepo, cfg); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to seed admin user")
	}

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	jwtService := services.NewJWTService(cfg.JWTSecretKey)
	sessionService := services.NewSessionService(userRepo, jwtService, application.Revocations, cfg)
	notificationService := services.NewNotificationService(cfg)
	userService := services.NewUserService(userRepo, cfg, notificationService.SendWelcome)
	storeService := services.NewStoreService(storeRepo, itemRepo, tagRepo)
	itemService := services.NewItemService(itemRepo, tagRepo)
	tagService := services.NewTagService(tagRepo, itemRepo, storeRepo)
	blocklistCleanupService := services.NewBlocklistCleanupService(application.Revocations)

	//----------------------------------------------------------------------
	// Controllers & router
	//----------------------------------------------------------------------
	router := app.NewRouter(app.Handlers{
		Health: controllers.NewHealthController(application.DB),
		Auth:   controllers.NewUserAuthController(userService, sessionService),
		Stores: controllers.NewStoreController(storeService),
		Items:  controllers.NewItemController(itemService),
		Tags:   controllers.NewTagController(tagService),
	}, sessionService)

	//----------------------------------------------------------------------
	// Setup daily cleanup via cron
	//----------------------------------------------------------------------
	c := cron.New()
	_, schErr := c.AddFunc(cfg.BlocklistCleanupSchedule, func() {
		if e := blocklistCleanupService.CleanupDaily(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled blocklist cleanup failed")
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule blocklist cleanup job")
	}
	c.Start()
	defer c.Stop()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
