package surrogate

import (
	"sort"
	"strings"

	"surrobench/pkg/core"
)

var families = map[string]core.Factory{
	"FullyConnected": NewFullyConnected,
	"LatentPoly":     NewLatentPoly,
}

// Lookup resolves a family name to its factory. Matching is
// case-insensitive so config files can use either spelling.
func Lookup(name string) (core.Factory, bool) {
	if factory, ok := families[name]; ok {
		return factory, true
	}
	for known, factory := range families {
		if strings.EqualFold(known, name) {
			return factory, true
		}
	}
	return nil, false
}

// Names lists the registered families in stable order.
func Names() []string {
	out := make([]string, 0, len(families))
	for name := range families {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
