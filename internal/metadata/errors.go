package metadata

import (
	"errors"
	"fmt"

	"github.com/danferreira/torrentinfo/internal/bencode"
)

var (
	ErrMissingField        = errors.New("missing field")
	ErrWrongType           = errors.New("wrong type")
	ErrInvalidTextEncoding = errors.New("invalid text encoding")
	ErrOutOfRange          = errors.New("value out of range")
)

// SchemaError reports a torrent dict that decoded fine but does not have
// the expected shape. Field is a dotted path such as "info.piece length";
// it is empty for the top-level value.
type SchemaError struct {
	Field    string
	Expected bencode.Kind
	Err      error
}

func (e *SchemaError) Error() string {
	field := e.Field
	if field == "" {
		field = "torrent"
	}

	if errors.Is(e.Err, ErrWrongType) {
		return fmt.Sprintf("metadata: %s: %v, expected %s", field, e.Err, e.Expected)
	}

	return fmt.Sprintf("metadata: %s: %v", field, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func missing(field string) error {
	return &SchemaError{Field: field, Err: ErrMissingField}
}

func wrongType(field string, expected bencode.Kind) error {
	return &SchemaError{Field: field, Expected: expected, Err: ErrWrongType}
}

func outOfRange(field string, n int64) error {
	return &SchemaError{Field: field, Err: fmt.Errorf("%w: %d", ErrOutOfRange, n)}
}
