package analyzer

const initialZoneCapacity = 4096

// ZoneRegistry hands out dense ids to zone keys in order of first sight.
type ZoneRegistry struct {
	ids   map[string]int
	names []string
}

func NewZoneRegistry() *ZoneRegistry {
	return &ZoneRegistry{
		ids:   make(map[string]int, initialZoneCapacity),
		names: make([]string, 0, initialZoneCapacity),
	}
}

// IDOf returns the id for key, registering it when unseen. created reports
// whether this call registered it. The key bytes are copied on insert only.
func (r *ZoneRegistry) IDOf(key []byte) (id int, created bool) {
	if id, ok := r.ids[string(key)]; ok {
		return id, false
	}
	name := string(key)
	id = len(r.names)
	r.ids[name] = id
	r.names = append(r.names, name)
	return id, true
}

func (r *ZoneRegistry) Lookup(name string) (int, bool) {
	id, ok := r.ids[name]
	return id, ok
}

func (r *ZoneRegistry) Name(id int) string {
	return r.names[id]
}

func (r *ZoneRegistry) Len() int {
	return len(r.names)
}
