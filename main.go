package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"capitalrise/config"
	"capitalrise/database"
	"capitalrise/ledger"
	"capitalrise/logger"
	"capitalrise/routers"
	"capitalrise/utils"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.WithError(err).Fatalf("Invalid TIMEZONE %q", cfg.Timezone)
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to the database")
	}

	var linkChecker ledger.KYCLinkChecker
	if cfg.SandboxApiKey != "" {
		linkChecker = utils.NewSandboxClient(cfg.SandboxApiURL, cfg.SandboxApiKey, cfg.SandboxSecretKey, cfg.SandboxApiVersion)
	}

	svc := ledger.NewService(db, ledger.Options{
		DefaultSponsorID: cfg.DefaultSponsorID,
		SaltRound:        cfg.SaltRound,
		Location:         loc,
		Notifier:         utils.NewEmailNotifier(cfg.SendGridAPIKey, cfg.EmailSender, log),
		LinkChecker:      linkChecker,
		Log:              log,
	})

	scheduler, err := utils.StartHousekeeping(cfg.HousekeepingSpec, loc, svc, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to start housekeeping")
	}

	app := routers.NewApp(cfg, svc, loc, log)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down...")
		<-scheduler.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Error during shutdown")
		}
	}()

	log.Infof("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
