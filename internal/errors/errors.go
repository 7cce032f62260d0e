// Package errors defines the structured failure taxonomy of the dispensing
// pipeline. Every stage returns one of these types instead of propagating a
// bare error; callers branch with errors.As and halt at the first failure.
package errors

import (
	"fmt"
)

// IngestCause distinguishes the two ways ingestion can fail.
type IngestCause string

const (
	// CauseDecode means both supported text encodings were exhausted.
	CauseDecode IngestCause = "decode-failure"
	// CauseParse means the bytes decoded but the table could not be read.
	CauseParse IngestCause = "parse-failure"
)

// IngestError reports a failure turning raw bytes into a table.
type IngestError struct {
	Cause IngestCause
	Err   error
}

func (e *IngestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingest %s: %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("ingest %s", e.Cause)
}

func (e *IngestError) Unwrap() error { return e.Err }

// NewDecodeError creates an IngestError for exhausted encodings.
func NewDecodeError(err error) *IngestError {
	return &IngestError{Cause: CauseDecode, Err: err}
}

// NewParseError creates an IngestError for malformed tabular input.
func NewParseError(err error) *IngestError {
	return &IngestError{Cause: CauseParse, Err: err}
}

// SchemaError reports a required column missing after label normalization.
// It is non-recoverable for the current file; no partial output is produced.
type SchemaError struct {
	Missing string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: required column %q not found after normalization", e.Missing)
}

// NewSchemaError creates a SchemaError for the named missing column.
func NewSchemaError(missing string) *SchemaError {
	return &SchemaError{Missing: missing}
}

// EmptyDatasetError reports that zero rows survived normalization, so no
// shares can be computed.
type EmptyDatasetError struct{}

func (e *EmptyDatasetError) Error() string {
	return "empty dataset: no rows remain after normalization"
}

// RenderStage identifies which document-export stage failed.
type RenderStage string

const (
	StageRasterizeBar RenderStage = "rasterize-bar"
	StageRasterizePie RenderStage = "rasterize-pie"
	StageAssemble     RenderStage = "assemble"
	StageSerialize    RenderStage = "serialize"
)

// RenderError reports a stage-tagged document export failure. These are
// deterministic for a given input, so no retry policy applies.
type RenderError struct {
	Stage RenderStage
	Err   error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("render %s", e.Stage)
}

func (e *RenderError) Unwrap() error { return e.Err }

// NewRenderError tags err with the stage that produced it.
func NewRenderError(stage RenderStage, err error) *RenderError {
	return &RenderError{Stage: stage, Err: err}
}

// IOError reports a filesystem failure while persisting pipeline output.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError creates an IOError for the given operation and path.
func NewIOError(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Err: err}
}
