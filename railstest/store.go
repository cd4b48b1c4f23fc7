package railstest

import (
	"sort"
	"strconv"
	"sync"

	"github.com/kbukum/railskit/interpolate"
)

type store struct {
	spec Spec

	mu      sync.Mutex
	nextID  int
	records map[string]map[string]any
}

func newStore(spec Spec) *store {
	st := &store{spec: spec, nextID: 1, records: make(map[string]map[string]any)}
	for _, rec := range spec.Seed {
		st.create(rec)
	}
	return st
}

func (st *store) create(attrs map[string]any) map[string]any {
	st.mu.Lock()
	defer st.mu.Unlock()

	rec := cloneRecord(attrs)
	if _, ok := rec["id"]; !ok {
		rec["id"] = st.nextID
	}
	key := interpolate.Stringify(rec["id"])
	if n, err := strconv.Atoi(key); err == nil && n >= st.nextID {
		st.nextID = n + 1
	}
	st.records[key] = rec
	return cloneRecord(rec)
}

func (st *store) get(id string) (map[string]any, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	rec, ok := st.records[id]
	if !ok {
		return nil, false
	}
	return cloneRecord(rec), true
}

func (st *store) update(id string, attrs map[string]any) (map[string]any, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	rec, ok := st.records[id]
	if !ok {
		return nil, false
	}
	for k, v := range cloneRecord(attrs) {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	return cloneRecord(rec), true
}

func (st *store) remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.records[id]; !ok {
		return false
	}
	delete(st.records, id)
	return true
}

// list returns the records ordered by id.
func (st *store) list() []map[string]any {
	st.mu.Lock()
	defer st.mu.Unlock()
	ids := make([]string, 0, len(st.records))
	for id := range st.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneRecord(st.records[id]))
	}
	return out
}

func idLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
