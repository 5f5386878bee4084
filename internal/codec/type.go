package codec

import (
	"fmt"
	"strings"
)

// Kind identifies the shape of a Type.
type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindEnum
	KindNullable
	KindList
	KindRecord
)

var kindNames = map[Kind]string{
	KindUnit:     "unit",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindEnum:     "enum",
	KindNullable: "nullable",
	KindList:     "list",
	KindRecord:   "record",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Type describes how a slot value is encoded. Types are immutable values;
// compare them with Equal.
//
// Value mapping:
//   - Unit     -> ir.Null
//   - Bool     -> ir.Bool
//   - Int      -> ir.Int
//   - Float    -> ir.Float
//   - String   -> ir.String
//   - Enum     -> ir.String holding one of the member names
//   - Nullable -> ir.Null or the element value
//   - List     -> ir.Array of element values
//   - Record   -> ir.Array with one value per field, in field order
type Type struct {
	kind   Kind
	elem   *Type
	fields []Type
	names  []string
}

// Scalar types.
var (
	Unit   = Type{kind: KindUnit}
	Bool   = Type{kind: KindBool}
	Int    = Type{kind: KindInt}
	Float  = Type{kind: KindFloat}
	String = Type{kind: KindString}
)

// Enum returns an enumeration over the given member names. Members are
// encoded by ordinal, so reordering them changes the meaning of encoded state.
func Enum(names ...string) Type {
	return Type{kind: KindEnum, names: append([]string(nil), names...)}
}

// Nullable wraps t with a presence flag.
func Nullable(t Type) Type {
	return Type{kind: KindNullable, elem: &t}
}

// List returns a variable-length homogeneous list of t.
func List(t Type) Type {
	return Type{kind: KindList, elem: &t}
}

// Record returns a fixed sequence of heterogeneous fields.
func Record(fields ...Type) Type {
	return Type{kind: KindRecord, fields: append([]Type(nil), fields...)}
}

// Kind returns the type's kind.
func (t Type) Kind() Kind {
	return t.kind
}

// Elem returns the wrapped type of a Nullable or List.
// Panics for other kinds.
func (t Type) Elem() Type {
	if t.elem == nil {
		panic(fmt.Sprintf("codec: Elem of %s", t.kind))
	}
	return *t.elem
}

// Fields returns the field types of a Record.
func (t Type) Fields() []Type {
	return append([]Type(nil), t.fields...)
}

// Names returns the member names of an Enum.
func (t Type) Names() []string {
	return append([]string(nil), t.names...)
}

// Ordinal returns the position of name within an Enum, or -1.
func (t Type) Ordinal(name string) int {
	for i, n := range t.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Equal reports whether two types describe the same encoding.
func (t Type) Equal(other Type) bool {
	return t.String() == other.String()
}

// String renders the type in the grammar accepted by ParseType, e.g.
// "list<nullable<int>>", "enum<red|green>", "record<int,string>".
func (t Type) String() string {
	switch t.kind {
	case KindEnum:
		return "enum<" + strings.Join(t.names, "|") + ">"
	case KindNullable, KindList:
		return t.kind.String() + "<" + t.elem.String() + ">"
	case KindRecord:
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			parts[i] = f.String()
		}
		return "record<" + strings.Join(parts, ",") + ">"
	default:
		return t.kind.String()
	}
}

// TypeNames returns the String form of each type, in order.
func TypeNames(types []Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}

// ParseType parses the grammar produced by Type.String.
//
//	type   := scalar | "enum<" name ("|" name)* ">" | "nullable<" type ">"
//	        | "list<" type ">" | "record<" [type ("," type)*] ">"
//	scalar := "unit" | "bool" | "int" | "float" | "string"
//
// Whitespace around tokens is ignored.
func ParseType(s string) (Type, error) {
	p := &typeParser{src: s}
	t, err := p.parse()
	if err != nil {
		return Type{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Type{}, fmt.Errorf("parse type %q: unexpected %q at offset %d", s, p.src[p.pos:], p.pos)
	}
	return t, nil
}

// ParseTypeList parses a comma-separated list of types at the top level,
// e.g. "int, list<string>, record<bool,int>".
func ParseTypeList(s string) ([]Type, error) {
	p := &typeParser{src: s}
	var types []Type
	p.skipSpace()
	if p.pos == len(p.src) {
		return types, nil
	}
	for {
		t, err := p.parse()
		if err != nil {
			return nil, err
		}
		types = append(types, t)
		p.skipSpace()
		if p.pos == len(p.src) {
			return types, nil
		}
		if p.src[p.pos] != ',' {
			return nil, fmt.Errorf("parse types %q: expected ',' at offset %d", s, p.pos)
		}
		p.pos++
	}
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '<' || c == '>' || c == ',' || c == '|' || c == ' ' || c == '\t' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return fmt.Errorf("parse type %q: expected %q at offset %d", p.src, c, p.pos)
	}
	p.pos++
	return nil
}

func (p *typeParser) peek(c byte) bool {
	p.skipSpace()
	return p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *typeParser) parse() (Type, error) {
	name := p.ident()
	switch name {
	case "unit":
		return Unit, nil
	case "bool":
		return Bool, nil
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	case "string":
		return String, nil
	case "nullable", "list":
		if err := p.expect('<'); err != nil {
			return Type{}, err
		}
		elem, err := p.parse()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect('>'); err != nil {
			return Type{}, err
		}
		if name == "list" {
			return List(elem), nil
		}
		return Nullable(elem), nil
	case "enum":
		if err := p.expect('<'); err != nil {
			return Type{}, err
		}
		var names []string
		for {
			member := p.ident()
			if member == "" {
				return Type{}, fmt.Errorf("parse type %q: empty enum member at offset %d", p.src, p.pos)
			}
			names = append(names, member)
			if p.peek('|') {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect('>'); err != nil {
			return Type{}, err
		}
		return Enum(names...), nil
	case "record":
		if err := p.expect('<'); err != nil {
			return Type{}, err
		}
		var fields []Type
		if !p.peek('>') {
			for {
				f, err := p.parse()
				if err != nil {
					return Type{}, err
				}
				fields = append(fields, f)
				if p.peek(',') {
					p.pos++
					continue
				}
				break
			}
		}
		if err := p.expect('>'); err != nil {
			return Type{}, err
		}
		return Record(fields...), nil
	case "":
		return Type{}, fmt.Errorf("parse type %q: missing type at offset %d", p.src, p.pos)
	default:
		return Type{}, fmt.Errorf("parse type %q: unknown type %q", p.src, name)
	}
}
