// Package events translates CDP console/exception events into the internal
// LogEvent shape, per spec.md §4.4: normalizing levels, concatenating
// string-coerced args, and picking the best stack frame via the
// source-map-aware selector.
package events

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/vforsh/argus/internal/cdp"
	"github.com/vforsh/argus/internal/model"
)

// PageInfo is the most recently observed page identity, used to stamp
// LogEvent.PageURL/PageTitle as of the moment of capture.
type PageInfo struct {
	URL   string
	Title string
}

// Pipeline wires a Session's console/exception events to a sink func.
type Pipeline struct {
	Selector   *LocationSelector
	Serializer *Serializer
	Sink       func(model.LogEvent)
	PageInfo   func() PageInfo
}

// NewPipeline builds a Pipeline backed by sess for object-property
// serialization.
func NewPipeline(sess *cdp.Session, selector *LocationSelector, sink func(model.LogEvent), pageInfo func() PageInfo) *Pipeline {
	return &Pipeline{
		Selector:   selector,
		Serializer: &Serializer{Session: sess},
		Sink:       sink,
		PageInfo:   pageInfo,
	}
}

// Attach subscribes to Runtime.consoleAPICalled, Log.entryAdded, and
// Runtime.exceptionThrown on sess, per spec.md §4.4. Returns a combined
// unsubscribe.
func (p *Pipeline) Attach(sess *cdp.Session) cdp.Unsubscribe {
	u1 := sess.OnEvent("Runtime.consoleAPICalled", p.handleConsoleAPICalled)
	u2 := sess.OnEvent("Log.entryAdded", p.handleLogEntryAdded)
	u3 := sess.OnEvent("Runtime.exceptionThrown", p.handleExceptionThrown)
	return func() {
		u1()
		u2()
		u3()
	}
}

type consoleAPICalledParams struct {
	Type      string         `json:"type"`
	Args      []RemoteObject `json:"args"`
	Timestamp float64        `json:"timestamp"`
	StackTrace *StackTrace   `json:"stackTrace,omitempty"`
}

var consoleTypeToLevel = map[string]model.Level{
	"log":     model.LevelInfo,
	"info":    model.LevelInfo,
	"debug":   model.LevelDebug,
	"trace":   model.LevelTrace,
	"warning": model.LevelWarning,
	"error":   model.LevelError,
}

func (p *Pipeline) handleConsoleAPICalled(ev cdp.Event) {
	var params consoleAPICalledParams
	if err := json.Unmarshal(ev.Params, &params); err != nil {
		return
	}
	level, ok := consoleTypeToLevel[params.Type]
	if !ok {
		level = model.LevelInfo
	}

	ctx := context.Background()
	previews := make([]any, len(params.Args))
	argsMap := make(map[string]any, len(params.Args))
	for i, arg := range params.Args {
		v := p.Serializer.SerializeArg(ctx, arg)
		previews[i] = v
		argsMap[strconv.Itoa(i)] = v
	}

	e := model.LogEvent{
		Ts:     int64(params.Timestamp),
		Level:  level,
		Text:   ConcatText(previews),
		Args:   argsMap,
		Source: "console",
	}
	e.Location = p.Selector.Select(params.StackTrace)
	p.stampPage(&e)
	p.Sink(e)
}

type logEntryAddedParams struct {
	Entry struct {
		Source    string  `json:"source"`
		Level     string  `json:"level"`
		Text      string  `json:"text"`
		Timestamp float64 `json:"timestamp"`
		URL       string  `json:"url,omitempty"`
		LineNumber int    `json:"lineNumber,omitempty"`
	} `json:"entry"`
}

var logLevelToLevel = map[string]model.Level{
	"verbose": model.LevelTrace,
	"info":    model.LevelInfo,
	"warning": model.LevelWarning,
	"error":   model.LevelError,
}

func (p *Pipeline) handleLogEntryAdded(ev cdp.Event) {
	var params logEntryAddedParams
	if err := json.Unmarshal(ev.Params, &params); err != nil {
		return
	}
	level, ok := logLevelToLevel[params.Entry.Level]
	if !ok {
		level = model.LevelInfo
	}

	e := model.LogEvent{
		Ts:     int64(params.Entry.Timestamp),
		Level:  level,
		Text:   params.Entry.Text,
		Source: "console",
	}
	if params.Entry.URL != "" {
		e.Location = &model.Location{File: params.Entry.URL, Line: params.Entry.LineNumber + 1}
		if p.Selector.Ignore.Ignored(e.Location.File) {
			e.Location = nil
		}
	}
	p.stampPage(&e)
	p.Sink(e)
}

type exceptionThrownParams struct {
	Timestamp        float64 `json:"timestamp"`
	ExceptionDetails struct {
		Text             string      `json:"text"`
		URL              string      `json:"url,omitempty"`
		LineNumber       int         `json:"lineNumber"`
		ColumnNumber     int         `json:"columnNumber"`
		StackTrace       *StackTrace `json:"stackTrace,omitempty"`
		Exception        *RemoteObject `json:"exception,omitempty"`
	} `json:"exceptionDetails"`
}

func (p *Pipeline) handleExceptionThrown(ev cdp.Event) {
	var params exceptionThrownParams
	if err := json.Unmarshal(ev.Params, &params); err != nil {
		return
	}
	details := params.ExceptionDetails
	text := details.Text
	if details.Exception != nil && details.Exception.Description != "" {
		text = details.Exception.Description
	}

	e := model.LogEvent{
		Ts:     int64(params.Timestamp),
		Level:  model.LevelException,
		Text:   text,
		Source: "exception",
	}
	if details.StackTrace != nil {
		e.Location = p.Selector.Select(details.StackTrace)
	} else if details.URL != "" {
		loc := &model.Location{File: details.URL, Line: details.LineNumber + 1, Column: details.ColumnNumber + 1}
		if !p.Selector.Ignore.Ignored(loc.File) {
			e.Location = loc
		}
	}
	p.stampPage(&e)
	p.Sink(e)
}

func (p *Pipeline) stampPage(e *model.LogEvent) {
	if p.PageInfo == nil {
		return
	}
	info := p.PageInfo()
	e.PageURL = info.URL
	e.PageTitle = info.Title
}
