package value

import (
	"strconv"
	"strings"
)

// AppendJSON renders v as JSON onto buf, without HTML-escaping (matching
// the encoder policy the teacher corpus uses for JSONL export), and returns
// the extended buffer.
func AppendJSON(buf []byte, v Value) []byte {
	switch v.Kind {
	case KindNull:
		return append(buf, "null"...)
	case KindBool:
		if v.Bool {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case KindNumber:
		if v.Int {
			return strconv.AppendInt(buf, int64(v.Number), 10)
		}
		return strconv.AppendFloat(buf, v.Number, 'f', -1, 64)
	case KindString:
		return appendJSONString(buf, v.Str)
	case KindDateTime:
		return appendJSONString(buf, v.Time.Format(v.TimeForm))
	case KindArray:
		buf = append(buf, '[')
		for i, e := range v.Array {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = AppendJSON(buf, e)
		}
		return append(buf, ']')
	case KindObject:
		buf = append(buf, '{')
		for i, f := range v.Object {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendJSONString(buf, f.Name)
			buf = append(buf, ':')
			buf = AppendJSON(buf, f.Value)
		}
		return append(buf, '}')
	default:
		return append(buf, "null"...)
	}
}

// appendJSONString appends a JSON-quoted string without HTML escaping.
func appendJSONString(buf []byte, s string) []byte {
	var b strings.Builder
	b.Grow(len(s) + 2)
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
			if r < 0x20 {
				const hex = "0123456789abcdef"
				b.WriteString(`\u00`)
				b.WriteByte(hex[r>>4])
				b.WriteByte(hex[r&0xf])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return append(buf, b.String()...)
}

// JSON renders v as a standalone JSON document.
func JSON(v Value) []byte {
	return AppendJSON(make([]byte, 0, 64), v)
}
