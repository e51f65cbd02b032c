package artifact

import (
	"fmt"
	"reflect"
	"strings"
)

// Hyperparameters flattens a family's config struct into the plain mapping
// stored in the yaml record. Values yaml cannot represent (functions,
// channels, arbitrary objects) are replaced by their type name, so the record
// stays readable without losing which variant was configured.
func Hyperparameters(cfg any) map[string]any {
	out := map[string]any{}
	value := reflect.ValueOf(cfg)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return out
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return out
	}

	typ := value.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		out[fieldKey(field)] = fieldValue(value.Field(i))
	}
	return out
}

func fieldKey(field reflect.StructField) string {
	if tag := field.Tag.Get("yaml"); tag != "" {
		if name := strings.Split(tag, ",")[0]; name != "" && name != "-" {
			return name
		}
	}
	return strings.ToLower(field.Name)
}

func fieldValue(v reflect.Value) any {
	if v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return v.Interface()
	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = fieldValue(v.Index(i))
		}
		return out
	case reflect.Map:
		out := map[string]any{}
		for _, key := range v.MapKeys() {
			out[fmt.Sprint(key.Interface())] = fieldValue(v.MapIndex(key))
		}
		return out
	default:
		return typeName(v.Type())
	}
}

func typeName(t reflect.Type) string {
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

// The lookup helpers below read values back out of a restored record's
// hyperparameter map. Numbers tolerate the loose typing a yaml round trip
// produces; a missing or mistyped key yields the fallback.

// Int returns the integer hyperparameter under key.
func Int(h map[string]any, key string, fallback int) int {
	switch v := h[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// Float returns the float hyperparameter under key.
func Float(h map[string]any, key string, fallback float64) float64 {
	switch v := h[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return fallback
}

// String returns the string hyperparameter under key.
func String(h map[string]any, key, fallback string) string {
	if v, ok := h[key].(string); ok {
		return v
	}
	return fallback
}

// Ints returns the integer-slice hyperparameter under key.
func Ints(h map[string]any, key string, fallback []int) []int {
	raw, ok := h[key].([]any)
	if !ok {
		return fallback
	}
	out := make([]int, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case int:
			out[i] = v
		case int64:
			out[i] = int(v)
		case float64:
			out[i] = int(v)
		default:
			return fallback
		}
	}
	return out
}
