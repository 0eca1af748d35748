package config

import (
	"github.com/pelletier/go-toml/v2/unstable"
)

// keyOrder records, per top-level table, the order in which its direct sub-keys first appear
// in the document. Decoding into a map loses that order.
type keyOrder map[string][]string

func (o keyOrder) add(table, key string) {
	for _, k := range o[table] {
		if k == key {
			return
		}
	}
	o[table] = append(o[table], key)
}

// index is the position of key within table, or -1 if it was never seen.
func (o keyOrder) index(table, key string) int {
	for i, k := range o[table] {
		if k == key {
			return i
		}
	}
	return -1
}

func keyParts(n *unstable.Node) []string {
	var parts []string
	it := n.Key()
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

// scanKeyOrder walks the document headers and key/values in source order. It covers
// [flags.'cond'] headers as well as 'cond'.key = ... and 'cond' = { ... } inside [flags].
func scanKeyOrder(data []byte) (keyOrder, error) {
	order := make(keyOrder)
	var current []string

	p := unstable.Parser{}
	p.Reset(data)
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			current = keyParts(e)
			if len(current) >= 2 {
				order.add(current[0], current[1])
			}
		case unstable.KeyValue:
			parts := append(append([]string(nil), current...), keyParts(e)...)
			if len(parts) >= 2 {
				order.add(parts[0], parts[1])
			}
		}
	}
	return order, p.Error()
}
