package analyticsdomain

import "errors"

var (
	// ErrNoData is returned by renderers when the input table is empty. It is
	// a "nothing to show" result, not a failure.
	ErrNoData = errors.New("no data")

	// ErrUnsupportedFormat is returned for an export format other than csv or xlsx.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
