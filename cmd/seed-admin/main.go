// Command seed-admin provisions the archive administrator in DynamoDB.
// Running it again with the same password is a no-op; a new password is
// re-hashed and saved.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/pickup-archive/pickups-api/internal/config"
	"github.com/pickup-archive/pickups-api/internal/logging"
	"github.com/pickup-archive/pickups-api/internal/models"
	"github.com/pickup-archive/pickups-api/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func main() {
	username := flag.String("username", os.Getenv("ADMIN_USERNAME"), "admin username (ADMIN_USERNAME)")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (ADMIN_PASSWORD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg)

	if *username == "" || *password == "" {
		logger.Fatal("Both username and password are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := store.NewDynamoClient(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize DynamoDB client")
	}
	admins := store.NewAdminStore(client, cfg.DynamoDB.AdminsTableName)

	created, changed, err := seed(ctx, admins, *username, *password, time.Now().UTC())
	if err != nil {
		logger.WithError(err).Fatal("Failed to seed admin")
	}

	logger.WithFields(logrus.Fields{
		"username": *username,
		"created":  created,
		"changed":  changed,
	}).Info("Admin provisioned")
}

type adminStore interface {
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	Save(ctx context.Context, admin *models.Admin) error
}

// seed creates the admin or updates its password, saving only when
// something changed.
func seed(ctx context.Context, admins adminStore, username, password string, now time.Time) (created, changed bool, err error) {
	admin, err := admins.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		admin = &models.Admin{
			AdminID:   uuid.NewString(),
			Username:  username,
			CreatedAt: now,
		}
		created = true
	case err != nil:
		return false, false, err
	}

	changed, err = admin.SetPassword(password)
	if err != nil {
		return created, false, err
	}
	if !created && !changed {
		return false, false, nil
	}

	admin.UpdatedAt = now
	if err := admins.Save(ctx, admin); err != nil {
		return created, changed, err
	}
	return created, changed, nil
}
