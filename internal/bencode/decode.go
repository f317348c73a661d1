package bencode

import (
	"bytes"
	"fmt"
	"strconv"
)

// Decode parses exactly one value spanning the whole of buf.
func Decode(buf []byte) (Value, error) {
	v, next, err := DecodeAt(buf, 0)
	if err != nil {
		return Value{}, err
	}

	if next != len(buf) {
		return Value{}, syntaxErr(next, ErrTrailingBytes)
	}

	return v, nil
}

// DecodeAt parses one value starting at start and returns the offset
// immediately after it. Bytes past that offset are not inspected.
func DecodeAt(buf []byte, start int) (Value, int, error) {
	if start < 0 || start > len(buf) {
		return Value{}, start, syntaxErr(start, ErrUnrecognizedTag)
	}

	d := decoder{buf: buf, pos: start}
	v, err := d.value()
	if err != nil {
		return Value{}, start, err
	}

	return v, d.pos, nil
}

// MaxDepth bounds how many lists and dicts may be open at once.
const MaxDepth = 512

// decoder is a cursor over a read-only buffer. Every method consumes one
// term and leaves pos on the first byte after it.
type decoder struct {
	buf   []byte
	pos   int
	depth int
}

func (d *decoder) enter() error {
	if d.depth >= MaxDepth {
		return syntaxErr(d.pos, fmt.Errorf("%w: more than %d levels", ErrNestingTooDeep, MaxDepth))
	}
	d.depth++

	return nil
}

func (d *decoder) value() (Value, error) {
	if d.pos >= len(d.buf) {
		return Value{}, syntaxErr(d.pos, ErrUnrecognizedTag)
	}

	switch c := d.buf[d.pos]; {
	case isDigit(c):
		return d.str()
	case c == 'i':
		return d.integer()
	case c == 'l':
		return d.list()
	case c == 'd':
		return d.dict()
	default:
		return Value{}, syntaxErr(d.pos, fmt.Errorf("%w %q", ErrUnrecognizedTag, c))
	}
}

func (d *decoder) str() (Value, error) {
	start := d.pos

	end := start
	for end < len(d.buf) && isDigit(d.buf[end]) {
		end++
	}

	if end == len(d.buf) {
		return Value{}, syntaxErr(start, ErrTruncatedString)
	}

	if d.buf[end] != ':' {
		return Value{}, syntaxErr(end, ErrMalformedLength)
	}

	digits := d.buf[start:end]
	if len(digits) > 1 && digits[0] == '0' {
		return Value{}, syntaxErr(start, fmt.Errorf("%w %q", ErrMalformedLength, digits))
	}

	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return Value{}, syntaxErr(start, fmt.Errorf("%w %q", ErrMalformedLength, digits))
	}

	payload := end + 1
	if n > int64(len(d.buf)-payload) {
		return Value{}, syntaxErr(start, fmt.Errorf("%w: want %d bytes, have %d", ErrTruncatedString, n, len(d.buf)-payload))
	}

	d.pos = payload + int(n)

	return Value{kind: KindString, str: bytes.Clone(d.buf[payload:d.pos])}, nil
}

func (d *decoder) integer() (Value, error) {
	start := d.pos

	end := bytes.IndexByte(d.buf[start+1:], 'e')
	if end < 0 {
		return Value{}, syntaxErr(start, ErrUnterminatedInteger)
	}

	text := d.buf[start+1 : start+1+end]
	if !validInteger(text) {
		return Value{}, syntaxErr(start, fmt.Errorf("%w %q", ErrMalformedInteger, text))
	}

	n, err := strconv.ParseInt(string(text), 10, 64)
	if err != nil {
		return Value{}, syntaxErr(start, fmt.Errorf("%w %q", ErrMalformedInteger, text))
	}

	d.pos = start + 1 + end + 1

	return Integer(n), nil
}

func (d *decoder) list() (Value, error) {
	if err := d.enter(); err != nil {
		return Value{}, err
	}
	defer func() { d.depth-- }()

	start := d.pos
	d.pos++

	var items []Value
	for {
		if d.pos >= len(d.buf) {
			return Value{}, syntaxErr(start, ErrUnterminatedList)
		}

		if d.buf[d.pos] == 'e' {
			d.pos++
			return Value{kind: KindList, items: items}, nil
		}

		item, err := d.value()
		if err != nil {
			return Value{}, err
		}

		items = append(items, item)
	}
}

// dict rejects repeated keys. Keys are accepted in any order; the encoder
// restores canonical order.
func (d *decoder) dict() (Value, error) {
	if err := d.enter(); err != nil {
		return Value{}, err
	}
	defer func() { d.depth-- }()

	start := d.pos
	d.pos++

	var entries []Entry
	seen := make(map[string]struct{})

	for {
		if d.pos >= len(d.buf) {
			return Value{}, syntaxErr(start, ErrUnterminatedDict)
		}

		if d.buf[d.pos] == 'e' {
			d.pos++
			return Value{kind: KindDict, entries: entries}, nil
		}

		keyAt := d.pos
		key, err := d.value()
		if err != nil {
			return Value{}, err
		}

		if key.kind != KindString {
			return Value{}, syntaxErr(keyAt, fmt.Errorf("%w: got %s", ErrNonStringDictKey, key.kind))
		}

		if _, dup := seen[string(key.str)]; dup {
			return Value{}, syntaxErr(keyAt, fmt.Errorf("%w %q", ErrDuplicateDictKey, key.str))
		}

		if d.pos >= len(d.buf) {
			return Value{}, syntaxErr(start, ErrUnterminatedDict)
		}

		if d.buf[d.pos] == 'e' {
			return Value{}, syntaxErr(d.pos, fmt.Errorf("%w %q", ErrMissingDictValue, key.str))
		}

		val, err := d.value()
		if err != nil {
			return Value{}, err
		}

		seen[string(key.str)] = struct{}{}
		entries = append(entries, Entry{Key: key.str, Value: val})
	}
}

func validInteger(text []byte) bool {
	digits := text
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
		// no -0
		if len(digits) > 0 && digits[0] == '0' {
			return false
		}
	}

	if len(digits) == 0 || (digits[0] == '0' && len(digits) > 1) {
		return false
	}

	for _, c := range digits {
		if !isDigit(c) {
			return false
		}
	}

	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
