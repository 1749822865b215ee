package tree

import "errors"

// Errors returned by tree construction and parsing.
var (
	// ErrInvalidRange indicates inconsistent slider bounds or precision.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidIdentifier indicates a malformed item identifier.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvalidValue indicates text that cannot be parsed for an option kind.
	ErrInvalidValue = errors.New("invalid value")

	// ErrEmptyID indicates a node without a key.
	ErrEmptyID = errors.New("empty id")

	// ErrCycle indicates a category would become its own descendant.
	ErrCycle = errors.New("category cycle")

	// ErrAttached indicates a category already belongs to another parent.
	ErrAttached = errors.New("category already attached")
)

// SkipCategory is returned by a WalkFunc to skip a category's children.
var SkipCategory = errors.New("skip category")
