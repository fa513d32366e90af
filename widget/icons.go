package widget

import (
	"fmt"
	"sort"
)

// Icon sets selectable with the top-level `icons` option.
const (
	IconsAwesome  = "awesome"
	IconsMaterial = "material"
	IconsNone     = "none"
)

// Glyphs for icon names used by blocks.
var iconSets = map[string]map[string]string{
	IconsAwesome: {
		"update":  "",
		"error":   "",
		"time":    "",
		"net_up":  "",
		"net_off": "",
	},
	IconsMaterial: {
		"update":  "\U000f06b0",
		"error":   "\U000f0026",
		"time":    "\U000f0954",
		"net_up":  "\U000f005d",
		"net_off": "\U000f0156",
	},
	IconsNone: {
		"update":  "UPD",
		"error":   "ERR",
		"time":    "TIME",
		"net_up":  "UP",
		"net_off": "OFF",
	},
}

// IconSetNames lists the available icon sets in stable order.
func IconSetNames() []string {
	names := make([]string, 0, len(iconSets))
	for name := range iconSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupIconSet(name string) (map[string]string, error) {
	if name == "" {
		name = IconsAwesome
	}
	set, ok := iconSets[name]
	if !ok {
		return nil, fmt.Errorf("unknown icon set %q (available: %v)", name, IconSetNames())
	}
	return set, nil
}
