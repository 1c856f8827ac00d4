package topology

import (
	v1 "github.com/infinidb/emtools/api/v1"
)

// FactTable holds one InstanceInfo per host and remembers the order in
// which hosts were first recorded.
type FactTable struct {
	order []string
	facts map[string]*v1.InstanceInfo
}

func NewFactTable() *FactTable {
	return &FactTable{facts: map[string]*v1.InstanceInfo{}}
}

// Add records info under key. An existing record is never replaced; Add
// reports whether info was recorded.
func (t *FactTable) Add(key string, info *v1.InstanceInfo) bool {
	if _, ok := t.facts[key]; ok {
		return false
	}
	t.facts[key] = info
	t.order = append(t.order, key)
	return true
}

func (t *FactTable) Get(key string) (*v1.InstanceInfo, bool) {
	info, ok := t.facts[key]
	return info, ok
}

func (t *FactTable) Has(key string) bool {
	_, ok := t.facts[key]
	return ok
}

func (t *FactTable) Len() int {
	return len(t.order)
}

// Order returns the keys in discovery order.
func (t *FactTable) Order() []string {
	return append([]string(nil), t.order...)
}

// Each calls fn for every record in discovery order until fn returns false.
func (t *FactTable) Each(fn func(key string, info *v1.InstanceInfo) bool) {
	for _, key := range t.order {
		if !fn(key, t.facts[key]) {
			return
		}
	}
}

// Map returns the records keyed by host.
func (t *FactTable) Map() map[string]*v1.InstanceInfo {
	m := make(map[string]*v1.InstanceInfo, len(t.facts))
	for k, v := range t.facts {
		m[k] = v
	}
	return m
}
