package mildred

import (
	"sort"
)

// Params is the variable context a template is rendered with.
type Params map[string]any

func copyParams(ps Params) Params {
	nps := make(Params, len(ps))
	for n, v := range ps {
		nps[n] = v
	}

	return nps
}

func (p Params) names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}
