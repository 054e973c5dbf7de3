package params

import "slices"

// ReservedKeys are routing and form-control keys that carry no search meaning.
var ReservedKeys = []string{"action", "controller", "id", "commit", "utf8"}

// ContextKeys hold result-list position; they are meaningless once the
// constraint set changes.
var ContextKeys = []string{"page", "counter"}

// Sanitize returns a copy of p without absent or empty values and without
// ReservedKeys.
func Sanitize(p *Set) *Set {
	out := New()
	if p == nil {
		return out
	}
	for _, k := range p.keys {
		v := p.values[k]
		if v == nil || v.isEmpty() || slices.Contains(ReservedKeys, k) {
			continue
		}
		out.Put(k, v.clone())
	}
	return out
}

// Reset sanitizes p and additionally drops ContextKeys.
func Reset(p *Set) *Set {
	return Sanitize(p).Delete(ContextKeys...)
}
