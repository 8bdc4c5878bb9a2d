package resolver

import "errors"

var (
	// ErrLayoutFetchFailed marks a rejected, panicking, or timed out fetch.
	ErrLayoutFetchFailed = errors.New("resolver: layout fetch failed")
	// ErrLayoutShapeInvalid marks a response without a widgets sequence.
	ErrLayoutShapeInvalid = errors.New("resolver: layout shape invalid")
	// ErrWidgetDescriptorInvalid marks a descriptor dropped during validation.
	ErrWidgetDescriptorInvalid = errors.New("resolver: widget descriptor invalid")
)
