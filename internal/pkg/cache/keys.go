package cache

import "strings"

// Well-known keys for reference data that rarely changes within a browsing session.
const (
	KeyColleges  = "colleges"
	KeyCities    = "cities"
	KeyBatches   = "batches"
	KeyMentor    = "mentor"
	KeyDirectory = "directory"
)

// ReferenceKeys are the lists behind the directory filters.
var ReferenceKeys = []string{KeyColleges, KeyCities, KeyBatches}

// Key joins parts into a cache key, e.g. Key("conversation", id) == "conversation:<id>".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
