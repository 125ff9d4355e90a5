// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillAdapter implements watermill.LoggerAdapter on top of zerolog.
// Watermill's Info level is noisy (one line per subscriber), so it is
// written at debug.
type WatermillAdapter struct {
	logger zerolog.Logger
	fields watermill.LogFields
}

// NewWatermillAdapter returns an adapter tagged with component=eventbus.
func NewWatermillAdapter() *WatermillAdapter {
	return &WatermillAdapter{logger: WithComponent("eventbus")}
}

// NewWatermillAdapterWithLogger wraps a specific zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWatermillAdapterWithLogger(logger zerolog.Logger) *WatermillAdapter {
	return &WatermillAdapter{logger: logger}
}

func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.write(a.logger.Error().Err(err), msg, fields)
}

func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.write(a.logger.Debug(), msg, fields)
}

func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.write(a.logger.Debug(), msg, fields)
}

func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.write(a.logger.Trace(), msg, fields)
}

// With returns an adapter that adds fields to every subsequent entry.
func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{logger: a.logger, fields: a.fields.Add(fields)}
}

func (a *WatermillAdapter) write(event *zerolog.Event, msg string, fields watermill.LogFields) {
	for k, v := range a.fields {
		event = event.Interface(k, v)
	}
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}
