//go:build integration

package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"tasktracker/internal/config"
	"tasktracker/internal/models"
)

const (
	pgUser     = "tracker"
	pgPassword = "trackerpass"
	pgDatabase = "tracker"
)

func pgDSN(host string, port nat.Port) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		pgUser, pgPassword, host, port.Port(), pgDatabase)
}

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
			"POSTGRES_DB":       pgDatabase,
		},
		Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw"},
		Cmd:   []string{"postgres", "-c", "fsync=off", "-c", "synchronous_commit=off"},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", pgDSN).
			WithStartupTimeout(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := Open(ctx, config.DatabaseConfig{Driver: "postgres", DSN: pgDSN(host, port)})
	require.NoError(t, err, "open postgres")
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPostgresRepositories(t *testing.T) {
	ctx := context.Background()
	db := startPostgres(t)

	require.NoError(t, Migrate(ctx, db), "second migrate is a no-op")

	users := NewUserRepository(db)
	tasks := NewTaskRepository(db, discardLogger())
	notifications := NewNotificationRepository(db)

	owner := seedUser(t, users, "Olga")
	due := base.Add(5 * time.Hour)
	task := &models.Task{
		CreatorID:  owner.ID,
		AssigneeID: owner.ID,
		Name:       "ship release",
		Status:     models.StatusPending,
		DueAt:      &due,
		CreatedAt:  base,
		UpdatedAt:  base,
	}
	require.NoError(t, tasks.Store(ctx, task))
	require.NotZero(t, task.ID)

	t.Run("status updates append comments", func(t *testing.T) {
		require.NoError(t, tasks.UpdateStatus(ctx, task.ID, models.StatusInProgress, "started", base.Add(time.Hour)))
		require.NoError(t, tasks.UpdateStatus(ctx, task.ID, models.StatusInProgress, "  halfway ", base.Add(2*time.Hour)))

		got, err := tasks.FindByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, got.Status)
		assert.Equal(t, "started\nhalfway", got.Comments)
		require.NotNil(t, got.DueAt)
		assert.True(t, got.DueAt.Equal(due))
	})

	t.Run("list all and counts", func(t *testing.T) {
		all, err := tasks.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		_, err = tasks.FindByID(ctx, task.ID+1000)
		assert.Error(t, err)
	})

	t.Run("notifications", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, notifications.Insert(ctx, &models.Notification{
				UserID:    owner.ID,
				Message:   fmt.Sprintf("message %d", i),
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}
		unread, err := notifications.ListByUser(ctx, owner.ID, true, 10)
		require.NoError(t, err)
		require.Len(t, unread, 3)
		assert.Equal(t, "message 2", unread[0].Message)

		require.NoError(t, notifications.MarkRead(ctx, unread[0].ID, owner.ID))
		n, err := notifications.MarkAllRead(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}
