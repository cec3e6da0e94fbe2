package domain

import (
	"regexp"
	"strings"
)

// parenthesizedRe matches the shortest span from "(" to the next ")",
// e.g. "강남(2호선)" -> "강남".
var parenthesizedRe = regexp.MustCompile(`\(.*?\)`)

// stationSuffix is the "station" character. It is removed wherever it occurs.
const stationSuffix = "역"

// NormalizeStationName derives the join key for a raw station name.
func NormalizeStationName(name string) string {
	s := parenthesizedRe.ReplaceAllString(name, "")
	s = strings.ReplaceAll(s, stationSuffix, "")
	return strings.TrimSpace(s)
}

// NameMap maps a normalized key to the raw names that produce it.
type NameMap map[string][]string

// BuildNameMap indexes every non-empty station name found in the recognised
// name columns of the given tables. Raw names are recorded once, in the order
// they are first seen.
func BuildNameMap(tables ...Table) NameMap {
	m := NameMap{}
	seen := map[string]struct{}{}
	for _, t := range tables {
		for _, col := range StationNameColumns {
			if !t.HasColumn(col) {
				continue
			}
			for _, row := range t.Rows {
				raw := row[col]
				if raw == "" {
					continue
				}
				if _, ok := seen[raw]; ok {
					continue
				}
				seen[raw] = struct{}{}
				key := NormalizeStationName(raw)
				m[key] = append(m[key], raw)
			}
		}
	}
	return m
}

// Keys returns the map's keys.
func (m NameMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
