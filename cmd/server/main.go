package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/app"
)

func init() {
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

// @title           Task Tracker API
// @version         1.0
// @description     Tasks, projects, costs, reports and multi-channel notifications.

// @BasePath  /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	configPath := flag.String("config", "", "path to the YAML config (overrides TRACKER_CONFIG)")
	createAdmin := flag.String("create-admin", "", "create an admin user with this first name, print an access token and exit")
	adminEmail := flag.String("admin-email", "", "email for -create-admin")
	flag.Parse()

	if *configPath != "" {
		_ = os.Setenv("TRACKER_CONFIG", *configPath)
	}

	if *createAdmin != "" {
		if err := bootstrapAdmin(*createAdmin, *adminEmail); err != nil {
			slog.Error("failed to create admin", "error", err)
			os.Exit(1)
		}
		return
	}

	fxApp := app.New()

	if err := fxApp.Start(context.Background()); err != nil {
		slog.Error("application failed to start", "error", err)
		os.Exit(1)
	}

	<-fxApp.Done()

	if err := fxApp.Stop(context.Background()); err != nil {
		slog.Error("application did not stop cleanly", "error", err)
	}

	slog.Info("application stopped")
}
