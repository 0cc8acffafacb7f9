package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	"tasktracker/internal/app"
	"tasktracker/internal/authz"
	"tasktracker/internal/clock"
	"tasktracker/internal/config"
	"tasktracker/internal/middleware"
	"tasktracker/internal/models"
	"tasktracker/internal/services"
)

// bootstrapAdmin provisions the first administrator. Every API route except
// the health check requires a token, so this is the way in on a fresh database.
func bootstrapAdmin(firstName, email string) error {
	var (
		cfg   config.Config
		users services.UserService
		clk   clock.Clock
	)
	fxApp := fx.New(
		app.ConfigModule,
		app.DBModule,
		app.RepositoryModule,
		fx.Provide(services.NewUserService),
		fx.Populate(&cfg, &users, &clk),
		fx.NopLogger,
	)
	if err := fxApp.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := fxApp.Start(ctx); err != nil {
		return err
	}
	defer fxApp.Stop(context.Background()) //nolint:errcheck

	u := &models.User{FirstName: firstName, IsAdmin: true}
	if email != "" {
		u.Email = &email
	}
	created, err := users.Create(ctx, u)
	if err != nil {
		return err
	}
	token, err := middleware.IssueToken(cfg.JWT, created.ID, authz.RoleFor(created), clk.Now())
	if err != nil {
		return err
	}
	fmt.Printf("admin user %d created\n%s\n", created.ID, token)
	return nil
}
