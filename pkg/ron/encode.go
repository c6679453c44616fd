package ron

import (
	"fmt"
	"strconv"
	"strings"
)

const indentStep = "    "

// Marshal renders a value tree back to RON text. Struct fields, list
// elements and map entries come out in the order they are stored, so a
// parsed document re-serializes with its authored ordering intact.
func Marshal(v Value) []byte {
	var b strings.Builder
	encode(&b, v, "")
	b.WriteByte('\n')
	return []byte(b.String())
}

func encode(b *strings.Builder, v Value, indent string) {
	switch t := v.(type) {
	case Bool:
		if t {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Int:
		b.WriteString(strconv.FormatInt(int64(t), 10))
	case Float:
		b.WriteString(formatFloat(float64(t)))
	case String:
		b.WriteString(formatString(string(t)))
	case Ident:
		b.WriteString(string(t))
	case List:
		encodeList(b, t, indent)
	case Map:
		encodeMap(b, t, indent)
	case Struct:
		encodeStruct(b, t, indent)
	default:
		// Unreachable for trees produced by Parse.
		fmt.Fprintf(b, "/* unencodable %T */", v)
	}
}

func encodeList(b *strings.Builder, list List, indent string) {
	if len(list) == 0 {
		b.WriteString("[]")
		return
	}
	inner := indent + indentStep
	b.WriteString("[\n")
	for _, v := range list {
		b.WriteString(inner)
		encode(b, v, inner)
		b.WriteString(",\n")
	}
	b.WriteString(indent)
	b.WriteString("]")
}

func encodeMap(b *strings.Builder, m Map, indent string) {
	if len(m) == 0 {
		b.WriteString("{}")
		return
	}
	inner := indent + indentStep
	b.WriteString("{\n")
	for _, e := range m {
		b.WriteString(inner)
		encode(b, e.Key, inner)
		b.WriteString(": ")
		encode(b, e.Value, inner)
		b.WriteString(",\n")
	}
	b.WriteString(indent)
	b.WriteString("}")
}

func encodeStruct(b *strings.Builder, s Struct, indent string) {
	b.WriteString(s.Name)
	if len(s.Fields) == 0 && len(s.Items) == 0 {
		b.WriteString("()")
		return
	}
	if len(s.Items) > 0 {
		if allScalar(s.Items) {
			b.WriteString("(")
			for i, v := range s.Items {
				if i > 0 {
					b.WriteString(", ")
				}
				encode(b, v, indent)
			}
			b.WriteString(")")
			return
		}
		inner := indent + indentStep
		b.WriteString("(\n")
		for _, v := range s.Items {
			b.WriteString(inner)
			encode(b, v, inner)
			b.WriteString(",\n")
		}
		b.WriteString(indent)
		b.WriteString(")")
		return
	}
	inner := indent + indentStep
	b.WriteString("(\n")
	for _, f := range s.Fields {
		b.WriteString(inner)
		b.WriteString(f.Name)
		b.WriteString(": ")
		encode(b, f.Value, inner)
		b.WriteString(",\n")
	}
	b.WriteString(indent)
	b.WriteString(")")
}

func allScalar(items []Value) bool {
	for _, v := range items {
		switch t := v.(type) {
		case Bool, Int, Float, Ident:
		case String:
			if strings.Contains(string(t), "\n") {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// formatString prefers the raw form for multi-line strings (embedded shader
// source mostly), falling back to the escaped form when the content cannot
// appear inside r#"..."#.
func formatString(s string) string {
	if strings.Contains(s, "\n") && !strings.Contains(s, `"#`) {
		return `r#"` + s + `"#`
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
