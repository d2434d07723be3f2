package events

import "github.com/vforsh/argus/internal/model"

// CallFrame mirrors the CDP Runtime.CallFrame shape used for stack frames.
type CallFrame struct {
	URL          string `json:"url"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber"`
	FunctionName string `json:"functionName"`
}

// StackTrace mirrors the CDP Runtime.StackTrace shape.
type StackTrace struct {
	CallFrames []CallFrame `json:"callFrames"`
}

// LocationSelector implements the frame-selection algorithm of spec.md
// §4.4.1: walk stack frames in order, skip ignored files, prefer a
// source-mapped location when the resolved source is not itself ignored.
type LocationSelector struct {
	Ignore   *IgnoreList
	Resolver SourceMapResolver
}

// Select returns the first non-ignored location in stack, or nil if every
// frame is ignored or stack is empty.
func (s *LocationSelector) Select(stack *StackTrace) *model.Location {
	if stack == nil {
		return nil
	}
	for _, frame := range stack.CallFrames {
		// CDP line/column numbers are 0-based; convert to 1-based per
		// spec.md §4.4.1 step 1.
		line := frame.LineNumber + 1
		column := frame.ColumnNumber + 1

		if s.Ignore.Ignored(frame.URL) {
			continue
		}

		if s.Resolver != nil {
			if resolved, ok := s.Resolver.Resolve(frame.URL, line, column); ok {
				if !s.Ignore.Ignored(resolved.File) {
					return &model.Location{File: resolved.File, Line: resolved.Line, Column: resolved.Column}
				}
			}
		}

		return &model.Location{File: frame.URL, Line: line, Column: column}
	}
	return nil
}
