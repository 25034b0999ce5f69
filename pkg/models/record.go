package models

// Record is a single fetched row that can be deduplicated by its natural key.
// The key must be stable across fetches so that re-running a sync with the
// same provider data never inserts a row twice.
type Record interface {
	NaturalKey() string
}
