package renderer

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Widget selects how an inspected field is drawn.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetBool
	WidgetSkip
)

// Field is one exported component field with its drawing hints.
type Field struct {
	Name    string
	Value   any
	Widget  Widget
	Options map[string]string
}

// ParseTag parses an `inspect:"widget[,key:value...]"` struct tag, e.g.
// `inspect:"bar,max:0.5"` or `inspect:"label,fmt:%.2f"`.
func ParseTag(tag string) (Widget, map[string]string) {
	opts := make(map[string]string)
	if tag == "" {
		return WidgetAuto, opts
	}
	parts := strings.Split(tag, ",")
	w := WidgetAuto
	switch strings.TrimSpace(parts[0]) {
	case "label":
		w = WidgetLabel
	case "bar":
		w = WidgetBar
	case "bool":
		w = WidgetBool
	case "skip":
		w = WidgetSkip
	}
	for _, p := range parts[1:] {
		if k, v, ok := strings.Cut(strings.TrimSpace(p), ":"); ok {
			opts[k] = v
		}
	}
	return w, opts
}

// ExtractFields lists the exported, non-skipped fields of a component
// struct (or pointer to one). Anything else yields nil.
func ExtractFields(component any) []Field {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	t := v.Type()
	var fields []Field
	for i := range v.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		w, opts := ParseTag(sf.Tag.Get("inspect"))
		if w == WidgetSkip {
			continue
		}
		fv := v.Field(i)
		if w == WidgetAuto {
			w = WidgetLabel
			if fv.Kind() == reflect.Bool {
				w = WidgetBool
			}
		}
		fields = append(fields, Field{Name: sf.Name, Value: fv.Interface(), Widget: w, Options: opts})
	}
	return fields
}

// ComponentName returns the bare type name of a component value.
func ComponentName(component any) string {
	t := reflect.TypeOf(component)
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// FormatValue renders a field value with an optional fmt verb. Floats
// default to two decimals.
func FormatValue(value any, verb string) string {
	if verb != "" {
		return fmt.Sprintf(verb, value)
	}
	switch v := value.(type) {
	case float32, float64:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprint(value)
	}
}

// barMax returns the bar's full-scale value, defaulting to 1.
func barMax(opts map[string]string) float32 {
	if s, ok := opts["max"]; ok {
		if m, err := strconv.ParseFloat(s, 32); err == nil && m > 0 {
			return float32(m)
		}
	}
	return 1
}

// floatValue converts a numeric field value for bars.
func floatValue(value any) (float32, bool) {
	v := reflect.ValueOf(value)
	switch {
	case v.CanFloat():
		return float32(v.Float()), true
	case v.CanInt():
		return float32(v.Int()), true
	case v.CanUint():
		return float32(v.Uint()), true
	}
	return 0, false
}
