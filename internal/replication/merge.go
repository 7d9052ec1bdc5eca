package replication

// mergeTrees merges two decoded YAML trees field-wise. Mappings merge
// recursively; scalars and sequences from the overlay replace the base
// value wholesale. Neither input is mutated.
func mergeTrees(base, overlay map[string]any) map[string]any {
	if base == nil && overlay == nil {
		return nil
	}
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = cloneTree(v)
	}
	for k, v := range overlay {
		if bm, ok := out[k].(map[string]any); ok {
			if om, ok := v.(map[string]any); ok {
				out[k] = mergeTrees(bm, om)
				continue
			}
		}
		out[k] = cloneTree(v)
	}
	return out
}

// mergeOptions overlays per-key source options. Unlike meta there is no
// recursion: an entry value replaces the default for that key.
func mergeOptions(base, overlay map[string]any) map[string]any {
	if base == nil && overlay == nil {
		return nil
	}
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = cloneTree(v)
	}
	for k, v := range overlay {
		out[k] = cloneTree(v)
	}
	return out
}

// cloneTree deep-copies a decoded YAML value so resolved streams never
// alias the document they came from.
func cloneTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneTree(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneTree(e)
		}
		return out
	default:
		return v
	}
}
