package session

import (
	"encoding/json"
	"fmt"
	"strconv"

	"lubd/app/platform/user"
)

// Property is the canonical shape handed to the session consumer. Both
// identifier fields carry the same coerced string so downstream code can
// read either.
type Property struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	Name       string `json:"name"`
}

// listShape covers the wire shapes the upstream is known to produce for
// collections: a bare array, {results: [...], count}, or {jobs: [...],
// count}. Exactly one of the fields is set after decoding.
type listShape struct {
	Results []json.RawMessage `json:"results"`
	Jobs    []json.RawMessage `json:"jobs"`
}

// NormalizeList maps any of the known collection shapes to a flat slice
// of raw entries. Unknown shapes normalize to nil rather than an error;
// callers treat that as an empty collection.
func NormalizeList(raw []byte) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries
	}

	var wrapped listShape
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil
	}
	if wrapped.Results != nil {
		return wrapped.Results
	}
	return wrapped.Jobs
}

// propertyEntry tolerates both identifier spellings and mixed-type ids.
type propertyEntry struct {
	ID         any    `json:"id"`
	PropertyID any    `json:"property_id"`
	Name       string `json:"name"`
}

// NormalizeProperties maps an upstream properties payload to the
// canonical list. Entries without any usable identifier are dropped.
func NormalizeProperties(raw []byte) []Property {
	entries := NormalizeList(raw)
	if len(entries) == 0 {
		return nil
	}

	properties := make([]Property, 0, len(entries))
	for _, entry := range entries {
		var pe propertyEntry
		if err := json.Unmarshal(entry, &pe); err != nil {
			continue
		}

		id := coerceID(pe.ID)
		if id == "" {
			id = coerceID(pe.PropertyID)
		}
		if id == "" {
			continue
		}

		properties = append(properties, Property{
			ID:         id,
			PropertyID: id,
			Name:       fallbackName(pe.Name, id),
		})
	}

	return properties
}

// normalizeLocal maps rows from the local store to the canonical shape.
func normalizeLocal(rows []user.PropertyRow) []Property {
	properties := make([]Property, 0, len(rows))
	for _, row := range rows {
		id := strconv.FormatUint(uint64(row.ID), 10)
		properties = append(properties, Property{
			ID:         id,
			PropertyID: id,
			Name:       fallbackName(row.Name, id),
		})
	}

	return properties
}

func coerceID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	case int:
		return strconv.Itoa(id)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", id)
	}
}

func fallbackName(name, id string) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("Property %s", id)
}
