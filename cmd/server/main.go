// Command server runs the credential service: account registration, login,
// session verification, and account administration over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wellmind/authcore/auth"
	"github.com/wellmind/authcore/config"
	"github.com/wellmind/authcore/logger"
	"github.com/wellmind/authcore/password"
	"github.com/wellmind/authcore/server"
	"github.com/wellmind/authcore/store"
	"github.com/wellmind/authcore/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()
	log.Info("Configuration loaded", map[string]interface{}{
		"environment": cfg.App.Environment,
		"store":       string(cfg.Store.Driver),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hasher := password.NewHasher(cfg.Password)

	accounts, cleanup, err := buildStore(ctx, cfg, hasher, log)
	if err != nil {
		log.Fatal("Failed to initialize account store", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer cleanup()

	// Known test credentials are only provisioned outside production.
	if cfg.IsDevelopment() {
		if err := accounts.SeedTestAccounts(ctx); err != nil {
			log.Warn("Failed to seed test accounts", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	tokens, err := token.NewService(&cfg.Token)
	if err != nil {
		log.Fatal("Failed to initialize token service", map[string]interface{}{
			"error": err.Error(),
		})
	}

	svc := auth.NewService(accounts, hasher, tokens, log)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()
	server.NewAuthHandler(svc, log).RegisterRoutes(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		log.Fatal("Failed to start server", map[string]interface{}{
			"error": err.Error(),
		})
	}

	<-ctx.Done()

	if err := srv.Stop(context.Background()); err != nil {
		log.Error("Shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}

// buildStore creates the configured AccountStore and returns a cleanup
// function to release its resources.
func buildStore(ctx context.Context, cfg *config.Config, hasher password.Hasher, log *logger.Logger) (store.AccountStore, func(), error) {
	switch cfg.Store.Driver {
	case store.DriverMemory:
		return store.NewMemoryStore(hasher), func() {}, nil
	default:
		client, err := store.Connect(ctx, cfg.Store)
		if err != nil {
			return nil, nil, err
		}
		s, err := store.NewMongoStore(ctx, client, cfg.Store, hasher, log)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		cleanup := func() {
			_ = client.Disconnect(context.Background())
		}
		return s, cleanup, nil
	}
}
