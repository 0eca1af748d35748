package project

// Registry keeps finalized projects by name, in registration order. Projects are never removed.
type Registry struct {
	byName map[string]*Project
	order  []*Project
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Project)}
}

// Add registers p and reports false if the name is taken.
func (r *Registry) Add(p *Project) bool {
	if _, ok := r.byName[p.Name]; ok {
		return false
	}
	r.byName[p.Name] = p
	r.order = append(r.order, p)
	return true
}

func (r *Registry) Get(name string) (*Project, bool) {
	p, ok := r.byName[name]
	return p, ok
}

func (r *Registry) All() []*Project {
	return append([]*Project(nil), r.order...)
}

func (r *Registry) Len() int { return len(r.order) }
