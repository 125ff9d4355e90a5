// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

// Package validation provides struct validation using go-playground/validator v10.
//
// A singleton validator caches struct metadata and reports fields by their json
// names. Besides the built-in tags (required, min, max, latitude, longitude,
// oneof) it registers:
//   - username: 3-32 characters of letters, digits, '.', '_' and '-'
//   - objectname: a single path segment usable as a storage object name
//
// Example:
//
//	type LocationRequest struct {
//	    Latitude  *float64 `json:"latitude" validate:"required,latitude"`
//	    Longitude *float64 `json:"longitude" validate:"required,longitude"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr.Code, apiErr.Message, apiErr.Details
//	}
package validation
