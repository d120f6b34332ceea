package model

import (
	"reflect"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// RawData is the provider native payload returned by an adapter's FetchRaw.
// Only the adapter that produced it can normalize it.
type RawData interface {
	Provider() Provider
}

// CanonicalData is the provider agnostic dictionary produced by normalization.
// It holds one "*_info" entry, a primary content list and lookup maps of
// referenced entities.
type CanonicalData map[string]any

// Validate checks the "*_info" entry and that primaryKey holds a non-nil value
func (d CanonicalData) Validate(primaryKey string) error {
	var hasInfo bool
	for k, v := range d {
		if strings.HasSuffix(k, "_info") && !isNil(v) {
			hasInfo = true
			break
		}
	}
	if !hasInfo {
		return goerr.New("canonical data has no info entry")
	}

	if v, ok := d[primaryKey]; !ok || isNil(v) {
		return goerr.New("canonical data has no primary list", goerr.V("key", primaryKey))
	}
	return nil
}

// Placeholder returns the stand-in entity used when enrichment of id failed
func Placeholder(id string) map[string]any {
	return map[string]any{
		"id":          id,
		"name":        "unknown",
		"placeholder": true,
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
