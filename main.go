// @title Org Site Registration API
// @version 1.0
// @description Event registration forms, submissions and exports.
// @host localhost:8000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"log"
	"time"

	_ "orgsite-backend/docs"

	"orgsite-backend/bootstrap"
	"orgsite-backend/config"
	"orgsite-backend/database"
	"orgsite-backend/internal/mailer"
	"orgsite-backend/internal/repository"
	"orgsite-backend/internal/routes"
	"orgsite-backend/internal/services"
)

func openStore(ctx context.Context, cfg config.Config) (repository.Store, func()) {
	switch cfg.StoreDriver {
	case "mongo":
		client, db := database.ConnectMongo(cfg.MongoURI, cfg.MongoDB)
		if err := bootstrap.EnsureIndexes(ctx, db); err != nil {
			log.Fatalf("ensure indexes failed: %v", err)
		}
		return repository.NewMongoStore(db), func() { _ = client.Disconnect(context.Background()) }
	default:
		db, err := database.OpenSQL(cfg.StoreDriver, cfg.SQLDSN)
		if err != nil {
			log.Fatalf("open %s: %v", cfg.StoreDriver, err)
		}
		store := repository.NewSQLStore(db, cfg.StoreDriver)
		if err := store.Migrate(ctx); err != nil {
			log.Fatalf("migrate failed: %v", err)
		}
		log.Printf("Connected to %s", cfg.StoreDriver)
		return store, func() { _ = db.Close() }
	}
}

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	dispatcher, err := mailer.NewDispatcher(mailer.NewTransport(cfg.SMTP), cfg.OrgName, cfg.Location)
	if err != nil {
		log.Fatalf("mail templates: %v", err)
	}

	auth := services.NewAuthService(store, cfg.JWTSecret, cfg.JWTTTL)
	if err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}
	cancel()

	app := routes.NewApp(routes.AppOptions{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   true,
	}, routes.Services{
		Events: services.NewEventService(store),
		Forms:  services.NewFormService(store),
		Registrations: services.NewRegistrationService(store, dispatcher, services.RegistrationOptions{
			DefaultNationality: cfg.DefaultNationality,
			Location:           cfg.Location,
			ExportTimeLayout:   cfg.ExportTimeFormat,
		}),
		Auth: auth,
	})

	// RUN SERVER
	log.Fatal(app.Listen(":" + cfg.Port))
}
