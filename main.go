package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"signaly.chapter42.de/a/internal/config"
	"signaly.chapter42.de/a/internal/handlers"
	"signaly.chapter42.de/a/internal/logger"
	"signaly.chapter42.de/a/internal/persistence"
	"signaly.chapter42.de/a/internal/registry"
	"signaly.chapter42.de/a/internal/runner"
	"signaly.chapter42.de/a/internal/scheduler"
)

func main() {
	// Lokale .env ist optional, in der Pipeline kommen die Secrets
	// direkt aus der Umgebung.
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug("Keine .env Datei gefunden.")
	}

	// Konfiguration laden
	if err := config.InitConfig(logger.Log); err != nil {
		fmt.Fprintln(os.Stderr, "Konfiguration ungültig:", err)
		os.Exit(1)
	}

	// Logger initialisieren
	logger.InitLogger(config.Config.Debug)
	defer logger.Log.Sync()

	interval, err := time.ParseDuration(config.Config.Interval)
	if err != nil {
		logger.Log.Fatal("Ungültiges Intervall:", zap.String("interval", config.Config.Interval), zap.Error(err))
	}

	// Laufhistorie des letzten Prozesses wiederherstellen
	reg := registry.New()
	persistence.RestoreRuns(reg)

	var feedRunner runner.Runner
	switch config.Config.Feed.Mode {
	case "script":
		feedRunner = runner.NewScriptRunner(&config.Config.Feed)
	default:
		feedRunner = runner.NewNativeRunner(&config.Config.Feed)
	}

	// Scheduler im festen Takt starten
	ctx, cancel := context.WithCancel(context.Background())
	sched := scheduler.New(interval, feedRunner, reg)
	sched.Start(ctx)

	// Gin-Router initialisieren
	router := gin.Default()
	router.Use(cors.Default())
	router.POST("/runs", handlers.NewTriggerHandler(sched))
	router.GET("/runs", handlers.NewListRunsHandler(reg))
	router.GET("/runs/latest", handlers.NewLatestRunHandler(reg))
	router.GET("/healthz", handlers.NewHealthHandler())

	// Server starten
	port := config.Config.Port
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	// Goroutine für das Abfangen von Shutdown-Signalen
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Log.Info("Server wird heruntergefahren...")

		// Aktiven Lauf abbrechen und auf dessen Abmeldung warten
		cancel()
		sched.Drain()

		// Laufhistorie sichern
		persistence.SaveRuns(reg)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Fatal("Server-Shutdown fehlgeschlagen:", zap.Error(err))
		}

		logger.Log.Info("Server heruntergefahren.")
	}()

	// Server starten (blockierend)
	logger.Log.Info("Server startet...", zap.String("port", port), zap.String("mode", config.Config.Feed.Mode))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logger.Log.Fatal("Fehler beim Starten des Servers:", zap.Error(err))
	}
}
