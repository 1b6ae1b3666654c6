package interpreter

import (
	"strconv"
	"strings"

	"pawscript/internal/object"
)

// Render implements spec.md §4.6's value-to-string rendering, used by
// `say`, string concatenation (`String + X`), and default printing.
func Render(v object.Object) string {
	switch v := v.(type) {
	case *object.Integer:
		return strconv.FormatInt(int64(v.Value), 10)
	case *object.Long:
		return strconv.FormatInt(v.Value, 10)
	case *object.Float:
		return strconv.FormatFloat(float64(v.Value), 'g', -1, 32)
	case *object.Double:
		return strconv.FormatFloat(v.Value, 'g', -1, 64)
	case *object.Bool:
		return strconv.FormatBool(v.Value)
	case *object.Char:
		return string(v.Value)
	case *object.String:
		return v.Value
	case *object.Nil:
		return "nopaw"
	case *object.Array:
		parts := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			parts[i] = Render(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *object.Record:
		var b strings.Builder
		b.WriteString(v.Def.Name)
		b.WriteString(" { ")
		for i, f := range v.Def.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			b.WriteString(Render(v.Fields[f.Name]))
		}
		b.WriteString(" }")
		return b.String()
	case *object.Function:
		if v.IsAsync {
			return "<async fun " + v.Name + ">"
		}
		return "<fun " + v.Name + ">"
	case *object.Builtin:
		return "<fun " + v.Name + ">"
	case *object.Future:
		value, err, done := v.Poll()
		if !done {
			return "<future>"
		}
		if err != nil {
			return "<future failed>"
		}
		_ = value
		return "<future resolved>"
	case *object.Module:
		return "<module " + v.Name + ">"
	case *object.Any:
		return Render(v.Inner)
	}
	return "<unknown>"
}
