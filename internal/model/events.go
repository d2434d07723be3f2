// Package model holds the wire-level data types shared across the ring
// buffers, event pipeline, network capture, file logger, and HTTP API:
// LogEvent and NetworkRequestSummary from spec.md §3.
package model

// Level is the closed set of LogEvent severities.
type Level string

const (
	LevelTrace    Level = "trace"
	LevelDebug    Level = "debug"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelException Level = "exception"
)

// Location is a selected stack frame location, 1-based per spec.md §4.4.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// LogEvent is immutable once emitted, per spec.md §3.
type LogEvent struct {
	ID        int64          `json:"id"`
	Ts        int64          `json:"ts"`
	Level     Level          `json:"level"`
	Text      string         `json:"text"`
	Args      map[string]any `json:"args,omitempty"`
	Source    string         `json:"source"`
	Location  *Location      `json:"location,omitempty"`
	PageURL   string         `json:"pageUrl,omitempty"`
	PageTitle string         `json:"pageTitle,omitempty"`
}

// NetworkRequestSummary is one completed or failed request, per spec.md §3.
type NetworkRequestSummary struct {
	ID                int64  `json:"id"`
	Ts                int64  `json:"ts"`
	Method            string `json:"method"`
	URL               string `json:"url"`
	ResourceType      string `json:"resourceType"`
	Status            int    `json:"status,omitempty"`
	EncodedDataLength int64  `json:"encodedDataLength,omitempty"`
	ErrorText         string `json:"errorText,omitempty"`
	DurationMs        float64 `json:"durationMs"`
}
