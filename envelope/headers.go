package envelope

// Headers is an ordered string-to-string bag carried unchanged through the
// framework. The core never interprets header semantics; it only preserves
// keys, values and insertion order. The zero value is an empty, usable bag.
//
// Headers has value semantics: every method returns a copy and never mutates
// the receiver, so a Headers value owned by an Envelope cannot be changed
// from outside.
type Headers struct {
	keys   []string
	values map[string]string
}

// NewHeaders builds a header bag from alternating key/value pairs.
// A trailing key without a value is ignored.
func NewHeaders(pairs ...string) Headers {
	h := Headers{}
	for i := 0; i+1 < len(pairs); i += 2 {
		h = h.With(pairs[i], pairs[i+1])
	}
	return h
}

// Get returns the value for a key.
func (h Headers) Get(key string) (string, bool) {
	v, ok := h.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
// Returns a copy to preserve immutability.
func (h Headers) Keys() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Len returns the number of headers.
func (h Headers) Len() int {
	return len(h.keys)
}

// With returns a copy of the bag with the key set. Setting an existing key
// replaces its value in place, keeping the original position.
func (h Headers) With(key, value string) Headers {
	out := Headers{
		keys:   make([]string, len(h.keys)),
		values: make(map[string]string, len(h.values)+1),
	}
	copy(out.keys, h.keys)
	for k, v := range h.values {
		out.values[k] = v
	}

	if _, exists := out.values[key]; !exists {
		out.keys = append(out.keys, key)
	}
	out.values[key] = value
	return out
}

// Without returns a copy of the bag with the key removed.
func (h Headers) Without(key string) Headers {
	out := Headers{values: make(map[string]string, len(h.values))}
	for _, k := range h.keys {
		if k == key {
			continue
		}
		out.keys = append(out.keys, k)
		out.values[k] = h.values[k]
	}
	return out
}

// ForEach visits every header in insertion order.
func (h Headers) ForEach(fn func(key, value string)) {
	for _, k := range h.keys {
		fn(k, h.values[k])
	}
}

// Equal compares two bags for identical keys, values and ordering.
func (h Headers) Equal(other Headers) bool {
	if len(h.keys) != len(other.keys) {
		return false
	}
	for i, k := range h.keys {
		if other.keys[i] != k {
			return false
		}
		if h.values[k] != other.values[k] {
			return false
		}
	}
	return true
}
