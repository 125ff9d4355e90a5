// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/hearth/internal/files"
	"github.com/tomtom215/hearth/internal/logging"
)

func (h *Handler) storageEnabled(w http.ResponseWriter, r *http.Request) bool {
	if h.deps.Files == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeStorageDisabled, "File storage is not configured", nil)
		return false
	}
	return true
}

// ListFiles handles GET /api/v1/files.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	if !h.storageEnabled(w, r) {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	list, err := h.deps.Files.List(r.Context(), claims.UserID)
	if err != nil {
		respondFileError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, list)
}

// UploadFile handles PUT /api/v1/files/{name}. The body is the raw file.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if !h.storageEnabled(w, r) {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if r.ContentLength > h.deps.Files.MaxUploadBytes() {
		respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "File too large", nil)
		return
	}

	info, err := h.deps.Files.Upload(r.Context(), claims.UserID, chi.URLParam(r, "name"), r.Body, r.Header.Get("Content-Type"))
	if err != nil {
		respondFileError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, info)
}

// DownloadFile handles GET /api/v1/files/{name}. The file is streamed as-is.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	if !h.storageEnabled(w, r) {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	rc, info, err := h.deps.Files.Download(r.Context(), claims.UserID, chi.URLParam(r, "name"))
	if err != nil {
		respondFileError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-cache")
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if !info.Updated.IsZero() {
		w.Header().Set("Last-Modified", info.Updated.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("File download interrupted")
	}
}

// DeleteFile handles DELETE /api/v1/files/{name}.
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if !h.storageEnabled(w, r) {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if err := h.deps.Files.Delete(r.Context(), claims.UserID, chi.URLParam(r, "name")); err != nil {
		respondFileError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondFileError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, files.ErrObjectNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "File not found", nil)
	case errors.Is(err, files.ErrInvalidName):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "Invalid file name", nil)
	case errors.Is(err, files.ErrTooLarge):
		respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "File too large", nil)
	default:
		respondError(w, r, http.StatusBadGateway, ErrCodeUpstream, "File storage request failed", err)
	}
}
