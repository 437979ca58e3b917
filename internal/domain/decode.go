package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// DecodeFields converts loosely typed input into dst, a pointer to a struct.
// Input usually comes from multipart forms, so numeric and boolean strings are
// coerced using the target field types, strings are trimmed and comma separated
// values fill string slices. Keys unknown to dst are ignored.
func DecodeFields(fields map[string]any, dst any) error {
	t := reflect.TypeOf(dst)
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return errors.New("decode target must be a pointer to a struct")
	}
	raw, err := json.Marshal(coerceObject(fields, t.Elem()))
	if err != nil {
		return NewValidationError("body", "request body could not be encoded")
	}
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return NewValidationError(typeErr.Field, typeErr.Field+" must be a "+typeErr.Type.String())
		}
		return NewValidationError("body", err.Error())
	}
	return nil
}

// StripFields removes client supplied values for server managed keys.
func StripFields(fields map[string]any, keys ...string) {
	for _, k := range keys {
		delete(fields, k)
	}
}

// MergeFields overlays patch onto dst, descending into nested objects.
func MergeFields(dst, patch map[string]any) {
	for k, v := range patch {
		pv, pok := v.(map[string]any)
		dv, dok := dst[k].(map[string]any)
		if pok && dok {
			MergeFields(dv, pv)
			continue
		}
		dst[k] = v
	}
}

// ToFields renders v as a generic JSON object.
func ToFields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func coerceObject(in map[string]any, t reflect.Type) map[string]any {
	out := make(map[string]any, len(in))
	for name, ft := range jsonFields(t) {
		v, ok := in[name]
		if !ok {
			continue
		}
		if cv, keep := coerceValue(v, ft); keep {
			out[name] = cv
		}
	}
	return out
}

// jsonFields maps JSON names to field types, flattening embedded structs.
func jsonFields(t reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			continue
		}
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			for k, v := range jsonFields(f.Type) {
				fields[k] = v
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields[name] = f.Type
	}
	return fields
}

func coerceValue(v any, t reflect.Type) (any, bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s, isString := v.(string)
	if isString {
		s = strings.TrimSpace(s)
	}

	if t == timeType {
		if !isString {
			return v, true
		}
		if s == "" {
			return nil, false
		}
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.Format(time.RFC3339Nano), true
			}
		}
		return s, true
	}

	switch t.Kind() {
	case reflect.String:
		if isString {
			return s, true
		}
		return v, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if !isString {
			return v, true
		}
		if s == "" {
			return nil, false
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n, true
		}
		return s, true
	case reflect.Bool:
		if !isString {
			return v, true
		}
		switch strings.ToLower(s) {
		case "true", "1", "on", "yes":
			return true, true
		case "false", "0", "off", "no":
			return false, true
		case "":
			return nil, false
		}
		return s, true
	case reflect.Slice:
		if t.Elem().Kind() != reflect.String {
			return v, true
		}
		switch tv := v.(type) {
		case string:
			return splitList(s), true
		case []string:
			out := make([]any, 0, len(tv))
			for _, item := range tv {
				out = append(out, splitList(item)...)
			}
			return out, true
		case []any:
			out := make([]any, 0, len(tv))
			for _, item := range tv {
				if is, ok := item.(string); ok {
					if is = strings.TrimSpace(is); is != "" {
						out = append(out, is)
					}
					continue
				}
				out = append(out, item)
			}
			return out, true
		}
		return v, true
	case reflect.Struct:
		if isString {
			if s == "" {
				return nil, false
			}
			var obj map[string]any
			if err := json.Unmarshal([]byte(s), &obj); err != nil {
				return s, true
			}
			return coerceObject(obj, t), true
		}
		if obj, ok := v.(map[string]any); ok {
			return coerceObject(obj, t), true
		}
		return v, true
	}
	return v, true
}

func splitList(s string) []any {
	out := []any{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
