package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/roach88/menukit/internal/ir"
)

// MaxListLen caps the element count accepted when decoding a list whose
// elements occupy zero bytes (list<unit>). Lists of wider elements are
// bounded by the remaining input instead.
const MaxListLen = 4096

// appendValue encodes v as type t onto dst.
//
// Every encoding is canonical: a value has exactly one byte form, so
// decoding and re-encoding an untouched token reproduces it byte for byte.
func appendValue(dst []byte, t Type, v ir.Value, path string) ([]byte, error) {
	switch t.kind {
	case KindUnit:
		if _, ok := v.(ir.Null); !ok {
			return nil, mismatch(path, t, "want null, got %T", v)
		}
		return dst, nil

	case KindBool:
		b, ok := v.(ir.Bool)
		if !ok {
			return nil, mismatch(path, t, "want bool, got %T", v)
		}
		if b {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil

	case KindInt:
		n, ok := v.(ir.Int)
		if !ok {
			return nil, mismatch(path, t, "want int, got %T", v)
		}
		// AppendVarint zig-zag encodes, so small negatives stay short.
		return binary.AppendVarint(dst, int64(n)), nil

	case KindFloat:
		f, ok := v.(ir.Float)
		if !ok {
			return nil, mismatch(path, t, "want float, got %T", v)
		}
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(float64(f))), nil

	case KindString:
		s, ok := v.(ir.String)
		if !ok {
			return nil, mismatch(path, t, "want string, got %T", v)
		}
		if !utf8.ValidString(string(s)) {
			return nil, mismatch(path, t, "string is not valid UTF-8")
		}
		dst = binary.AppendUvarint(dst, uint64(len(s)))
		return append(dst, s...), nil

	case KindEnum:
		s, ok := v.(ir.String)
		if !ok {
			return nil, mismatch(path, t, "want enum member name, got %T", v)
		}
		ord := t.Ordinal(string(s))
		if ord < 0 {
			return nil, mismatch(path, t, "%q is not a member", string(s))
		}
		return binary.AppendUvarint(dst, uint64(ord)), nil

	case KindNullable:
		if _, ok := v.(ir.Null); ok {
			return append(dst, 0), nil
		}
		return appendValue(append(dst, 1), *t.elem, v, path)

	case KindList:
		arr, ok := v.(ir.Array)
		if !ok {
			return nil, mismatch(path, t, "want array, got %T", v)
		}
		if len(arr) > MaxListLen && minWidth(*t.elem) == 0 {
			return nil, mismatch(path, t, "list of %d zero-width elements exceeds %d", len(arr), MaxListLen)
		}
		dst = binary.AppendUvarint(dst, uint64(len(arr)))
		var err error
		for i, elem := range arr {
			dst, err = appendValue(dst, *t.elem, elem, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
		}
		return dst, nil

	case KindRecord:
		arr, ok := v.(ir.Array)
		if !ok {
			return nil, mismatch(path, t, "want array, got %T", v)
		}
		if len(arr) != len(t.fields) {
			return nil, mismatch(path, t, "want %d fields, got %d", len(t.fields), len(arr))
		}
		var err error
		for i, f := range t.fields {
			dst, err = appendValue(dst, f, arr[i], fmt.Sprintf("%s.field[%d]", path, i))
			if err != nil {
				return nil, err
			}
		}
		return dst, nil

	default:
		return nil, mismatch(path, t, "unknown kind")
	}
}

// minWidth is the fewest bytes any value of t can occupy.
func minWidth(t Type) int {
	switch t.kind {
	case KindUnit:
		return 0
	case KindFloat:
		return 8
	case KindRecord:
		n := 0
		for _, f := range t.fields {
			n += minWidth(f)
		}
		return n
	default:
		return 1
	}
}

// reader walks an encoded byte sequence. When build is false it only
// validates and advances, which is how Split finds token boundaries without
// allocating decoded values.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) fail(code ErrorCode, path, format string, args ...any) *Error {
	return &Error{Code: code, Offset: r.pos, Path: path, Message: fmt.Sprintf(format, args...)}
}

func (r *reader) readByte(path string) (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.fail(ErrCodeTruncated, path, "unexpected end of input")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) uvarint(path string) (uint64, error) {
	v, n := binary.Uvarint(r.data[r.pos:])
	if n == 0 {
		return 0, r.fail(ErrCodeTruncated, path, "unexpected end of input in varint")
	}
	if n < 0 {
		return 0, r.fail(ErrCodeMalformed, path, "varint overflows 64 bits")
	}
	// A trailing zero continuation group means a longer-than-minimal form,
	// which would not survive a re-encode unchanged.
	if n > 1 && r.data[r.pos+n-1] == 0 {
		return 0, r.fail(ErrCodeMalformed, path, "non-minimal varint")
	}
	r.pos += n
	return v, nil
}

func (r *reader) varint(path string) (int64, error) {
	v, n := binary.Varint(r.data[r.pos:])
	if n == 0 {
		return 0, r.fail(ErrCodeTruncated, path, "unexpected end of input in varint")
	}
	if n < 0 {
		return 0, r.fail(ErrCodeMalformed, path, "varint overflows 64 bits")
	}
	if n > 1 && r.data[r.pos+n-1] == 0 {
		return 0, r.fail(ErrCodeMalformed, path, "non-minimal varint")
	}
	r.pos += n
	return v, nil
}

func (r *reader) take(n uint64, path string) ([]byte, error) {
	if n > uint64(len(r.data)-r.pos) {
		return nil, r.fail(ErrCodeTruncated, path, "need %d bytes, have %d", n, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

// read decodes one value of type t. With build=false the returned value is nil.
func (r *reader) read(t Type, path string, build bool) (ir.Value, error) {
	switch t.kind {
	case KindUnit:
		if build {
			return ir.Null{}, nil
		}
		return nil, nil

	case KindBool:
		b, err := r.readByte(path)
		if err != nil {
			return nil, err
		}
		if b > 1 {
			r.pos--
			return nil, r.fail(ErrCodeMalformed, path, "bool byte 0x%02x", b)
		}
		if build {
			return ir.Bool(b == 1), nil
		}
		return nil, nil

	case KindInt:
		n, err := r.varint(path)
		if err != nil {
			return nil, err
		}
		if build {
			return ir.Int(n), nil
		}
		return nil, nil

	case KindFloat:
		b, err := r.take(8, path)
		if err != nil {
			return nil, err
		}
		if build {
			return ir.Float(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
		}
		return nil, nil

	case KindString:
		n, err := r.uvarint(path)
		if err != nil {
			return nil, err
		}
		start := r.pos
		b, err := r.take(n, path)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			r.pos = start
			return nil, r.fail(ErrCodeMalformed, path, "string is not valid UTF-8")
		}
		if build {
			return ir.String(b), nil
		}
		return nil, nil

	case KindEnum:
		start := r.pos
		ord, err := r.uvarint(path)
		if err != nil {
			return nil, err
		}
		if ord >= uint64(len(t.names)) {
			r.pos = start
			return nil, r.fail(ErrCodeMalformed, path, "enum ordinal %d out of range for %s", ord, t)
		}
		if build {
			return ir.String(t.names[ord]), nil
		}
		return nil, nil

	case KindNullable:
		flag, err := r.readByte(path)
		if err != nil {
			return nil, err
		}
		switch flag {
		case 0:
			if build {
				return ir.Null{}, nil
			}
			return nil, nil
		case 1:
			// Null always encodes as absent at the outermost nullable, so a
			// present flag may not lead to a null.
			switch {
			case t.elem.kind == KindUnit:
				r.pos--
				return nil, r.fail(ErrCodeMalformed, path, "present flag before %s", t.elem)
			case t.elem.kind == KindNullable && r.pos < len(r.data) && r.data[r.pos] == 0:
				r.pos--
				return nil, r.fail(ErrCodeMalformed, path, "present flag before null %s", t.elem)
			}
			return r.read(*t.elem, path, build)
		default:
			r.pos--
			return nil, r.fail(ErrCodeMalformed, path, "presence byte 0x%02x", flag)
		}

	case KindList:
		start := r.pos
		count, err := r.uvarint(path)
		if err != nil {
			return nil, err
		}
		if w := minWidth(*t.elem); w == 0 {
			if count > MaxListLen {
				r.pos = start
				return nil, r.fail(ErrCodeMalformed, path, "list length %d exceeds %d", count, MaxListLen)
			}
		} else if count > uint64(len(r.data)-r.pos)/uint64(w) {
			r.pos = start
			return nil, r.fail(ErrCodeTruncated, path, "list length %d exceeds remaining input", count)
		}
		var arr ir.Array
		if build {
			arr = make(ir.Array, 0, int(count))
		}
		for i := uint64(0); i < count; i++ {
			elem, err := r.read(*t.elem, fmt.Sprintf("%s[%d]", path, i), build)
			if err != nil {
				return nil, err
			}
			if build {
				arr = append(arr, elem)
			}
		}
		if build {
			return arr, nil
		}
		return nil, nil

	case KindRecord:
		var arr ir.Array
		if build {
			arr = make(ir.Array, 0, len(t.fields))
		}
		for i, f := range t.fields {
			elem, err := r.read(f, fmt.Sprintf("%s.field[%d]", path, i), build)
			if err != nil {
				return nil, err
			}
			if build {
				arr = append(arr, elem)
			}
		}
		if build {
			return arr, nil
		}
		return nil, nil

	default:
		return nil, r.fail(ErrCodeMalformed, path, "unknown kind %s", t.kind)
	}
}
