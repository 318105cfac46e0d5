// Package censuserr defines the error taxonomy shared across the census
// pipeline. Every sentinel is wrapped with fmt.Errorf("...: %w", ...) at the
// call site so errors.Is still matches while the message carries the asset
// path or other diagnostic context the spec requires.
package censuserr

import "errors"

// Sentinel errors corresponding to the taxonomy. Fatal unless noted.
var (
	// ErrAssetNotFound means a path-id or backing file could not be located.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrDanglingReference means a path-id reference could not be resolved
	// within its bundle.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrParse means a JSON, XML, or dumped-asset file failed to parse.
	ErrParse = errors.New("parse error")

	// ErrSchemaMismatch means a required field was absent or had an
	// unexpected type at a point the design requires it.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrAmbiguous means a scene-name or item-name collision could not be
	// resolved even after disambiguation. Fatal for scenes; a warning with
	// lowest-id fallback for items (see pkg/text).
	ErrAmbiguous = errors.New("ambiguous")

	// ErrUnknownOpcode is non-fatal: callers fall back to a generic carrier
	// statement and continue.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrCycleDetected is non-fatal: callers truncate and proceed.
	ErrCycleDetected = errors.New("cycle detected")

	// ErrUnknownTable means a designer-config table name has no loader
	// registered for it.
	ErrUnknownTable = errors.New("unknown table")

	// ErrSceneAmbiguous means a scene system-name or id could not be
	// resolved to a single scene after manual overrides. Fatal.
	ErrSceneAmbiguous = errors.New("scene ambiguous")
)
