package registry

import (
	"sort"

	"promptforge/internal/ports"
)

type Registry struct{ byFormat map[string]ports.Parser }

func New() *Registry { return &Registry{byFormat: map[string]ports.Parser{}} }

func (r *Registry) Register(p ports.Parser) { r.byFormat[p.Format()] = p }

func (r *Registry) Get(format string) (ports.Parser, bool) { p, ok := r.byFormat[format]; return p, ok }

func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byFormat))
	for f := range r.byFormat {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
