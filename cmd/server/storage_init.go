// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/hearth/internal/config"
	"github.com/tomtom215/hearth/internal/files"
	"github.com/tomtom215/hearth/internal/logging"
)

// initStorage selects the file storage backend. A bucket wins over a local
// path; with neither configured it returns nil and the file routes answer 503.
func initStorage(ctx context.Context, cfg *config.StorageConfig) (*files.Store, error) {
	var backend files.Backend
	switch {
	case cfg.Bucket != "":
		gcs, err := files.NewGCSBackend(ctx, files.GCSConfig{
			Bucket:          cfg.Bucket,
			CredentialsFile: cfg.CredentialsFile,
			RetryAttempts:   cfg.RetryAttempts,
		})
		if err != nil {
			return nil, fmt.Errorf("gcs backend: %w", err)
		}
		backend = gcs
		logging.Info().Str("bucket", cfg.Bucket).Msg("File storage using Google Cloud Storage")
	case cfg.LocalPath != "":
		local, err := files.NewLocalBackend(cfg.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("local backend: %w", err)
		}
		backend = local
		logging.Info().Str("path", cfg.LocalPath).Msg("File storage using local directory")
	default:
		logging.Info().Msg("File storage disabled (GCS_BUCKET and STORAGE_LOCAL_PATH not set)")
		return nil, nil
	}
	return files.NewStore(backend, cfg.MaxUploadBytes), nil
}
