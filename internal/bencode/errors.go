package bencode

import (
	"errors"
	"fmt"
)

var (
	ErrUnrecognizedTag     = errors.New("unrecognized tag")
	ErrTruncatedString     = errors.New("truncated string")
	ErrMalformedLength     = errors.New("malformed string length")
	ErrMalformedInteger    = errors.New("malformed integer")
	ErrUnterminatedInteger = errors.New("unterminated integer")
	ErrUnterminatedList    = errors.New("unterminated list")
	ErrUnterminatedDict    = errors.New("unterminated dict")
	ErrNonStringDictKey    = errors.New("dict key is not a string")
	ErrMissingDictValue    = errors.New("dict key without value")
	ErrDuplicateDictKey    = errors.New("duplicate dict key")
	ErrTrailingBytes       = errors.New("trailing bytes after value")
	ErrNestingTooDeep      = errors.New("lists and dicts nested too deep")
)

// SyntaxError reports malformed input and the byte offset where it was found.
type SyntaxError struct {
	Offset int
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bencode: %v at offset %d", e.Err, e.Offset)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func syntaxErr(offset int, err error) error {
	return &SyntaxError{Offset: offset, Err: err}
}
