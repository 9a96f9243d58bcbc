package app

import (
	"context"
	"time"

	"contentboard/internal/config"
	"contentboard/internal/database"
	"contentboard/internal/logger"
	"contentboard/internal/repository"
	"contentboard/internal/service"
	"contentboard/internal/storage"
)

// App connects the database and object storage and builds the services.
// A MinIO outage does not stop the board; uploads fail until it is back.
func App(cfg *config.Config, log *logger.Logger) (*database.DB, *service.Service, error) {
	// connection DB
	db, err := database.ConnectDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	// connection MinIO
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var images storage.Storage
	minioClient, err := storage.NewMinIOClient(ctx, cfg)
	if err != nil {
		log.Warn("image storage unavailable, uploads disabled", "endpoint", cfg.MinIO.Endpoint, "error", err)
	} else {
		images = minioClient
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB)
	services := service.NewService(repo, db, cfg, images, log)

	return db, services, nil
}
