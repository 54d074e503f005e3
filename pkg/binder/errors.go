package binder

import "errors"

var (
	// ErrBinderNotApplicable signals the binder cannot serve this request and
	// should be skipped rather than treated as a failure.
	ErrBinderNotApplicable = errors.New("binder not applicable to request")

	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidForm          = errors.New("failed to parse form data")
	ErrInvalidQuery         = errors.New("failed to parse query parameters")
)
