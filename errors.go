package screener

import "errors"

var (
	// ErrSymbolNotFound is returned by providers when the symbol is not recognized.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrNoData is returned by providers when there is no record for the requested window.
	ErrNoData = errors.New("no data")

	// ErrUnknownField is returned when a keyword constructor receives a key the record does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrFieldType is returned when a keyword value cannot be converted to the field type.
	ErrFieldType = errors.New("invalid field value")
)
