package domain

import "errors"

// Error taxonomy surfaced to callers. All of these propagate to the HTTP
// layer, which maps them to status codes; none are retried or swallowed.
var (
	// ErrNotInitialized means no persisted index exists for the requested
	// course. Build one first.
	ErrNotInitialized = errors.New("knowledge base not initialized")

	// ErrEmptyIndex means an index was loaded but contains zero chunks.
	ErrEmptyIndex = errors.New("index is empty")

	// ErrCorruptIndex means the persisted artifacts disagree with each
	// other (e.g. vector and chunk counts differ after load).
	ErrCorruptIndex = errors.New("index is corrupt")

	// ErrUpstreamModel means the hosted LLM call failed or returned a
	// non-success response.
	ErrUpstreamModel = errors.New("upstream model error")

	// ErrInvalidInput covers empty questions, unknown courses and
	// malformed chunking parameters.
	ErrInvalidInput = errors.New("invalid input")
)
