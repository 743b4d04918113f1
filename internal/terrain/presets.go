package terrain

import (
	"sort"
	"strings"
)

// Built-in template programs. These are Azgaar-style DSL sources; they are
// parsed on lookup so file-based and built-in templates go through the one
// code path.

const volcanoDSL = `
Hill 1 90-100 44-56 40-60
Multiply 0.8
Range 1 30-55 45-55 40-60 20-40 2-5
Smooth 3
Mask radial 0.5
Normalize
SeaRatio 0.85
`

const highIslandDSL = `
Hill 1 90-100 65-75 47-53
Add 7
Hill 5-6 20-30 25-55 45-55
Range 1 40-50 45-55 45-55
Multiply 0.8
Mask radial 0.5
Smooth 2
Trough 2-3 20-30 20-30 20-30
Trough 2-3 20-30 60-80 70-80
Hill 1 10-15 60-60 50-50
Range 1 30-40 15-85 30-40 20-40 2-5
Range 1 30-40 15-85 60-70 20-40 2-5
Pit 3-5 10-30 15-85 20-80
Normalize
SeaRatio 0.75
`

const continentsDSL = `
# Multiple continental blocks
Hill 1 80-85 60-80 40-60 15-25
Hill 1 80-85 20-30 40-60 15-25
Hill 6-7 15-30 25-75 15-85 8-15
Multiply 0.6
Hill 8-10 5-10 15-85 20-80 5-10
Range 1-2 30-60 5-15 25-75 30-50 3-6
Range 1-2 30-60 80-95 25-75 30-50 3-6
Range 0-3 30-60 80-90 20-80 25-45 2-5
Strait 2 vertical 50 30
Strait 1 vertical 30 25
Smooth 3
Trough 3-4 15-20 15-85 20-80 20-40 2-4
Trough 3-4 5-10 45-55 45-55 15-30 2-4
Pit 3-4 10-20 15-85 20-80 8-15
Mask radial 0.3
Normalize
SeaRatio 0.7
`

const archipelagoDSL = `
# Island chains in open ocean
Hill 25 40-80 10-90 10-90 3-8
Hill 5 60-100 20-80 20-80 8-12
Trough 4 25-40 5-95 5-95 40-70 3-6
Pit 10 20-35 5-95 5-95 8-15
Normalize
SeaRatio 0.87
`

const pangeaDSL = `
# Single supercontinent
Hill 1 60-70 45-55 25-40 25-35
Hill 8-10 45-60 25-75 15-60 15-25
Hill 3-4 40-55 35-65 0-12 12-20
Smooth 3
Range 2-3 25-35 35-65 20-50 25-40 3-6
Normalize
SeaRatio 0.45
`

const mediterraneanDSL = `
# Inland sea ringed by land
Range 4-6 30-80 0-100 0-10 40-60 4-8
Range 4-6 30-80 0-100 90-100 40-60 4-8
Hill 6-8 30-50 10-90 0-5 10-18
Hill 6-8 30-50 10-90 95-100 10-18
Multiply 0.9
Mask edge -0.3
Smooth 1
Hill 2-3 30-70 0-5 20-80 8-15
Hill 2-3 30-70 95-100 20-80 8-15
Trough 3-6 40-50 0-100 0-10 30-50 3-6
Trough 3-6 40-50 0-100 90-100 30-50 3-6
Normalize
SeaRatio 0.5
`

const fracturedDSL = `
# Many islands, many seas
Hill 12-15 50-80 5-95 5-95 8-15
Mask edge -0.2
Mask radial 0.5
Add -20
Range 6-8 40-50 5-95 10-90 35-55 3-6
Trough 8-12 30-50 10-90 10-90 20-40 2-5
Normalize
SeaRatio 0.65
`

const riftValleyDSL = `
# Great rift valley
Hill 2 60-80 20-80 30-70 20-30
Trough 1 40-60 45-55 10-90 60-80 3-6
Range 2 50-70 30-40 20-80 40-60 3-5
Range 2 50-70 60-70 20-80 40-60 3-5
Hill 1 70-90 50 50 8-12
Pit 2-3 20-35 45-55 30-70 8-12
Smooth 1
Normalize
SeaRatio 0.25
`

const earthLikeDSL = `
# Balanced continents and oceans, about 30% land
Hill 4 80-120 10-90 10-90 15-25
Hill 8 50-80 0-100 0-100 8-15
Trough 3 20-40 0-100 0-100 30-60 2-5
Pit 5 15-30 0-100 0-100 10-20
Smooth 2
Normalize
SeaRatio 0.7
`

const continentalDSL = `
# One or two major continents
Mountain 150 50 50 30
Hill 12 70-110 20-80 20-80 12-22
Range 3 80-120 10-90 10-90 40-70 4-8
Trough 2 30-50 0-100 0-100 30-50 3-5
Smooth 3
Normalize
SeaRatio 0.55
`

const volcanicIslandDSL = `
# One towering volcanic island
Mountain 200 50 50 15
Hill 5 40-80 35-65 35-65 5-10
Hill 3 30-60 20-80 20-80 3-6
Normalize
SeaRatio 0.9
`

const atollDSL = `
# Ring islands around a shallow lagoon
Pit 1 5-8 45-55 45-55 15-20
Hill 12 35-55 30-70 30-70 4-7
Hill 4 50-70 35-65 35-65 5-8
Mask center 0.3
Normalize
SeaRatio 0.92
`

const peninsulaDSL = `
# Land reaching in from one side
Hill 8 80-120 0-40 10-90 15-25
Range 2 70-100 20-70 30-70 40-60 8-12 0-0.5
Hill 6 50-80 50-100 0-100 6-12
Trough 2 25-40 30-90 0-100 30-50 3-5 0-3.14159
Smooth 2
Normalize
SeaRatio 0.65
`

const highlandDSL = `
# Plateau and mountain dominated terrain
Hill 20 60-100 0-100 0-100 10-20
Range 5 80-120 0-100 0-100 30-60 5-10
Pit 4 30-50 10-90 10-90 8-15
Smooth 2
Normalize
SeaRatio 0.3
`

const oceanicDSL = `
# Open ocean with scattered islands
Hill 5 50-90 10-90 10-90 4-8
Range 3 20-40 0-100 0-100 50-80 2-4
Trough 2 15-25 0-100 0-100 40-70 3-6
Pit 8 10-20 0-100 0-100 10-20
Normalize
SeaRatio 0.95
`

var presetSources = map[string]struct {
	description string
	dsl         string
}{
	"volcano":         {"Single volcanic peak with a radial mask", volcanoDSL},
	"high-island":     {"High island with radiating ridges", highIslandDSL},
	"continents":      {"Multiple continental blocks", continentsDSL},
	"archipelago":     {"Island chains in open ocean", archipelagoDSL},
	"pangea":          {"Single supercontinent", pangeaDSL},
	"mediterranean":   {"Inland sea ringed by land", mediterraneanDSL},
	"fractured":       {"Many islands, many seas", fracturedDSL},
	"rift-valley":     {"Great rift valley", riftValleyDSL},
	"earth-like":      {"Balanced continents and oceans", earthLikeDSL},
	"continental":     {"One or two major continents", continentalDSL},
	"volcanic-island": {"One towering volcanic island", volcanicIslandDSL},
	"atoll":           {"Ring islands around a shallow lagoon", atollDSL},
	"peninsula":       {"Land reaching in from one side", peninsulaDSL},
	"highland":        {"Plateau and mountain dominated terrain", highlandDSL},
	"oceanic":         {"Open ocean with scattered islands", oceanicDSL},
}

// TemplateNames lists the built-in templates, sorted.
func TemplateNames() []string {
	names := make([]string, 0, len(presetSources))
	for n := range presetSources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TemplateByName returns a built-in template. Lookup is case-insensitive
// and accepts underscores in place of hyphens; ok is false for unknown
// names.
func TemplateByName(name string) (*Template, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	src, ok := presetSources[key]
	if !ok {
		return nil, false
	}
	t, err := Parse(key, src.description, src.dsl)
	if err != nil {
		// Built-in sources are covered by tests; a parse failure here is a
		// programming error.
		panic("terrain: bad built-in template " + key + ": " + err.Error())
	}
	return t, true
}
