// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package models

import (
	"errors"
	"fmt"
)

// ProviderErrorKind tags the ways a provider call can fail.
type ProviderErrorKind string

const (
	ProviderErrTimeout     ProviderErrorKind = "timeout"
	ProviderErrCanceled    ProviderErrorKind = "canceled"
	ProviderErrHTTPStatus  ProviderErrorKind = "http_status"
	ProviderErrMalformed   ProviderErrorKind = "malformed"
	ProviderErrTransport   ProviderErrorKind = "transport"
	ProviderErrUnavailable ProviderErrorKind = "unavailable"
	ProviderErrConfig      ProviderErrorKind = "config"
)

// ProviderError is the only error type a provider adapter returns.
type ProviderError struct {
	Source     Source
	Kind       ProviderErrorKind
	Message    string
	StatusCode int
	Err        error
}

// NewProviderError builds a ProviderError with a formatted message.
func NewProviderError(source Source, kind ProviderErrorKind, format string, args ...interface{}) *ProviderError {
	return &ProviderError{Source: source, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Source, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Wrap attaches a cause and returns e for chaining.
func (e *ProviderError) Wrap(err error) *ProviderError {
	e.Err = err
	return e
}

// AsProviderError extracts a *ProviderError from err. Foreign errors are
// wrapped as transport failures for source.
func AsProviderError(source Source, err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{Source: source, Kind: ProviderErrTransport, Message: err.Error(), Err: err}
}

// ErrEntryTooLarge is returned by the cache for values bigger than its budget.
var ErrEntryTooLarge = errors.New("entry exceeds cache size budget")

// CacheError is an internal cache failure. Callers log it and fall back to a
// live fetch.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
