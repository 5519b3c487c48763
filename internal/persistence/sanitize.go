package persistence

// The record store rejects "absent" values the way a remote document store
// rejects undefined: they must be stripped from the payload tree before the
// write, while explicit nulls and every other primitive survive.

type absentMarker struct{}

// Absent marks a value that should not exist in a persisted document, as
// opposed to a null. It only appears in generic payload trees built by
// callers; JSON decoding never produces it.
var Absent any = absentMarker{}

// StripAbsent walks a generic value tree (maps, slices, primitives) and
// removes every Absent leaf: map entries are deleted, slice elements are
// dropped. nil (null) and all other values pass through untouched. The input
// tree is not modified.
func StripAbsent(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if val == Absent {
				continue
			}
			out[k] = StripAbsent(val)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			if val == Absent {
				continue
			}
			out = append(out, StripAbsent(val))
		}
		return out
	default:
		return v
	}
}
