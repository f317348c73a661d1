// Package bencode decodes and canonically encodes bencoded data.
package bencode

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
)

type Kind uint8

const (
	KindString Kind = iota
	KindInteger
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	}

	return "unknown"
}

// Value is a decoded bencode term. The zero Value is an empty byte string.
type Value struct {
	kind    Kind
	str     []byte
	num     int64
	items   []Value
	entries []Entry
}

// Entry is a single key/value pair of a dict.
type Entry struct {
	Key   []byte
	Value Value
}

func String(b []byte) Value {
	return Value{kind: KindString, str: bytes.Clone(b)}
}

func Text(s string) Value {
	return Value{kind: KindString, str: []byte(s)}
}

func Integer(n int64) Value {
	return Value{kind: KindInteger, num: n}
}

func List(items ...Value) Value {
	return Value{kind: KindList, items: slices.Clone(items)}
}

// Dict builds a dict from entries in the given order. A repeated key
// replaces the earlier value but keeps the earlier position.
func Dict(entries ...Entry) Value {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]int, len(entries))

	for _, e := range entries {
		if i, ok := seen[string(e.Key)]; ok {
			out[i].Value = e.Value
			continue
		}

		seen[string(e.Key)] = len(out)
		out = append(out, Entry{Key: bytes.Clone(e.Key), Value: e.Value})
	}

	return Value{kind: KindDict, entries: out}
}

// Pair is shorthand for an Entry with a text key.
func Pair(key string, v Value) Entry {
	return Entry{Key: []byte(key), Value: v}
}

func (v Value) Kind() Kind { return v.kind }

// Bytes returns a copy of the payload of a byte string, or nil for other kinds.
func (v Value) Bytes() []byte {
	if v.kind != KindString {
		return nil
	}

	return bytes.Clone(v.str)
}

func (v Value) Int() int64 { return v.num }

func (v Value) Items() []Value {
	return slices.Clone(v.items)
}

// Entries returns the dict entries in decode (or construction) order.
func (v Value) Entries() []Entry {
	return slices.Clone(v.entries)
}

// Lookup returns the value stored under key in a dict.
func (v Value) Lookup(key string) (Value, bool) {
	for _, e := range v.entries {
		if string(e.Key) == key {
			return e.Value, true
		}
	}

	return Value{}, false
}

// Len is the payload length of a string or the element count of a list or dict.
func (v Value) Len() int {
	switch v.kind {
	case KindString:
		return len(v.str)
	case KindList:
		return len(v.items)
	case KindDict:
		return len(v.entries)
	}

	return 0
}

// Equal reports whether a and b hold the same term. Lists compare in
// order, dicts compare by key set and values.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindString:
		return bytes.Equal(a.str, b.str)
	case KindInteger:
		return a.num == b.num
	case KindList:
		return slices.EqualFunc(a.items, b.items, Equal)
	case KindDict:
		if len(a.entries) != len(b.entries) {
			return false
		}

		for _, e := range a.entries {
			other, ok := b.Lookup(string(e.Key))
			if !ok || !Equal(e.Value, other) {
				return false
			}
		}

		return true
	}

	return false
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(string(v.str))
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindList:
		return fmt.Sprint(v.items)
	case KindDict:
		var b bytes.Buffer
		b.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%q:%s", e.Key, e.Value)
		}
		b.WriteByte('}')
		return b.String()
	}

	return "<invalid>"
}
