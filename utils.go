package quill

// LocalizedMap coerces a stored localized field value into its
// locale-keyed form. Returns nil when the value is not locale-keyed.
func LocalizedMap(value any) map[string]any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return m
}

// ResolveLocalized picks a localized field's value for locale, falling
// back to fallback when the locale has no entry.
func ResolveLocalized(value any, locale string, fallback string) (any, bool) {
	m := LocalizedMap(value)
	if m == nil {
		return value, true
	}
	if v, ok := m[locale]; ok && v != nil {
		return v, true
	}
	if fallback != "" && fallback != locale {
		if v, ok := m[fallback]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// CloneFields deep-copies a field map. The duplicate operation hands the
// same shapes to several pipeline stages and must not alias them.
func CloneFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneFields(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
