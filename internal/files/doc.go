// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

/*
Package files stores per-user files (photos, notes) for the display.

Store owns naming and limits: objects live under users/<userID>/<name>, names
are single path segments, and uploads are capped at a configured size. The
bytes themselves go to a Backend:

  - GCSBackend: a Google Cloud Storage bucket, with transient failures retried
  - LocalBackend: a directory on the local filesystem

Missing objects surface as ErrObjectNotFound regardless of backend.
*/
package files
