package domain

import "errors"

var (
	// ErrInvalidRequest - the provider rejected the request parameters.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrProvider - the provider client or API failed.
	ErrProvider = errors.New("provider error")

	// ErrInvalidToolInput - a tool was called without its required input.
	ErrInvalidToolInput = errors.New("invalid tool input")

	// ErrUnknownTool - the model asked for a tool that is not declared.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrCollectionNotFound - the vector collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
)
