package connector

import "encoding/json"

// OrderedProps is an insertion-ordered string->string map. Keys are never
// sorted: the connector compiler's determinism guarantee is about repeatable
// insertion order for a given input, not lexical order (spec.md §9 "Flat
// property emission").
type OrderedProps struct {
	keys []string
	vals map[string]string
}

func NewOrderedProps() *OrderedProps {
	return &OrderedProps{vals: make(map[string]string)}
}

// Set appends key if new, or overwrites its value in place if already present.
func (p *OrderedProps) Set(key, value string) {
	if _, exists := p.vals[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = value
}

func (p *OrderedProps) Get(key string) (string, bool) {
	v, ok := p.vals[key]
	return v, ok
}

func (p *OrderedProps) Keys() []string {
	return append([]string(nil), p.keys...)
}

func (p *OrderedProps) Len() int { return len(p.keys) }

// MarshalJSON emits the map as a JSON object preserving insertion order,
// since encoding/json's map support would otherwise sort keys.
func (p *OrderedProps) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range p.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.vals[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}
