package bencode

import (
	"bytes"
	"slices"
	"strconv"
)

// Encode returns the canonical encoding of v. Dict entries are written in
// ascending byte order of their keys whatever order v holds them in.
func Encode(v Value) []byte {
	return AppendEncode(nil, v)
}

// AppendEncode appends the canonical encoding of v to dst.
func AppendEncode(dst []byte, v Value) []byte {
	switch v.kind {
	case KindString:
		return appendString(dst, v.str)
	case KindInteger:
		dst = append(dst, 'i')
		dst = strconv.AppendInt(dst, v.num, 10)
		return append(dst, 'e')
	case KindList:
		dst = append(dst, 'l')
		for _, item := range v.items {
			dst = AppendEncode(dst, item)
		}
		return append(dst, 'e')
	case KindDict:
		sorted := slices.Clone(v.entries)
		slices.SortFunc(sorted, func(a, b Entry) int {
			return bytes.Compare(a.Key, b.Key)
		})

		dst = append(dst, 'd')
		for _, e := range sorted {
			dst = appendString(dst, e.Key)
			dst = AppendEncode(dst, e.Value)
		}
		return append(dst, 'e')
	}

	return dst
}

func appendString(dst, s []byte) []byte {
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, ':')
	return append(dst, s...)
}
