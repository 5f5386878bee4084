package menu

import (
	"fmt"

	"github.com/roach88/menukit/internal/codec"
	"github.com/roach88/menukit/internal/ir"
)

// Type pairs a wire type with conversions to and from a Go type, so menu
// definitions read and write slots as ordinary Go values.
type Type[T any] struct {
	Codec codec.Type
	to    func(T) ir.Value
	from  func(ir.Value) (T, error)
}

func (t Type[T]) value(v T) ir.Value {
	return t.to(v)
}

func (t Type[T]) convert(v ir.Value) (T, error) {
	return t.from(v)
}

func conversionError(want string, v ir.Value) error {
	return fmt.Errorf("want %s, got %T", want, v)
}

// Int is a signed integer slot.
var Int = Type[int]{
	Codec: codec.Int,
	to:    func(v int) ir.Value { return ir.Int(v) },
	from: func(v ir.Value) (int, error) {
		n, ok := v.(ir.Int)
		if !ok {
			return 0, conversionError("int", v)
		}
		return int(n), nil
	},
}

// String is a UTF-8 string slot.
var String = Type[string]{
	Codec: codec.String,
	to:    func(v string) ir.Value { return ir.String(v) },
	from: func(v ir.Value) (string, error) {
		s, ok := v.(ir.String)
		if !ok {
			return "", conversionError("string", v)
		}
		return string(s), nil
	},
}

// Bool is a boolean slot.
var Bool = Type[bool]{
	Codec: codec.Bool,
	to:    func(v bool) ir.Value { return ir.Bool(v) },
	from: func(v ir.Value) (bool, error) {
		b, ok := v.(ir.Bool)
		if !ok {
			return false, conversionError("bool", v)
		}
		return bool(b), nil
	},
}

// Float is a float64 slot.
var Float = Type[float64]{
	Codec: codec.Float,
	to:    func(v float64) ir.Value { return ir.Float(v) },
	from: func(v ir.Value) (float64, error) {
		f, ok := v.(ir.Float)
		if !ok {
			return 0, conversionError("float", v)
		}
		return float64(f), nil
	},
}

// Enum is a slot holding one of a fixed set of names, encoded by ordinal.
func Enum[E ~string](members ...E) Type[E] {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = string(m)
	}
	return Type[E]{
		Codec: codec.Enum(names...),
		to:    func(v E) ir.Value { return ir.String(v) },
		from: func(v ir.Value) (E, error) {
			s, ok := v.(ir.String)
			if !ok {
				return "", conversionError("enum member", v)
			}
			return E(s), nil
		},
	}
}

// Nullable is a slot that may be absent. nil encodes as absent.
func Nullable[T any](elem Type[T]) Type[*T] {
	return Type[*T]{
		Codec: codec.Nullable(elem.Codec),
		to: func(v *T) ir.Value {
			if v == nil {
				return ir.Null{}
			}
			return elem.to(*v)
		},
		from: func(v ir.Value) (*T, error) {
			if _, ok := v.(ir.Null); ok {
				return nil, nil
			}
			x, err := elem.from(v)
			if err != nil {
				return nil, err
			}
			return &x, nil
		},
	}
}

// List is an ordered list slot.
func List[T any](elem Type[T]) Type[[]T] {
	return Type[[]T]{
		Codec: codec.List(elem.Codec),
		to: func(v []T) ir.Value {
			arr := make(ir.Array, len(v))
			for i, x := range v {
				arr[i] = elem.to(x)
			}
			return arr
		},
		from: func(v ir.Value) ([]T, error) {
			arr, ok := v.(ir.Array)
			if !ok {
				return nil, conversionError("array", v)
			}
			out := make([]T, len(arr))
			for i, x := range arr {
				y, err := elem.from(x)
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", i, err)
				}
				out[i] = y
			}
			return out, nil
		},
	}
}

// Raw is a slot of any wire type, read and written as ir values. Records
// and other composite layouts without a dedicated Go type use it.
func Raw(t codec.Type) Type[ir.Value] {
	return Type[ir.Value]{
		Codec: t,
		to:    func(v ir.Value) ir.Value { return v },
		from:  func(v ir.Value) (ir.Value, error) { return v, nil },
	}
}
