package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Page is a list response normalized to the paginated envelope returned by the API:
//
//	{"count": 12, "next": "...", "previous": null, "results": [...]}
//
// Endpoints that are not paginated return a bare array; DecodePage fills Count from its length.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Items resolves a list response to its ordered items.
//
// A bare array is returned as is, an object returns its results array.
// Any other shape (null, a scalar, an object without a results array, invalid JSON) gives an empty slice.
func Items(raw json.RawMessage) []json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []json.RawMessage{}
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return []json.RawMessage{}
		}
		return items
	case '{':
		results, ok := envelopeResults(raw)
		if !ok {
			return []json.RawMessage{}
		}
		return Items(results)
	}
	return []json.RawMessage{}
}

// DecodeItems resolves a list response with Items and decodes each item into T
func DecodeItems[T any](raw json.RawMessage) ([]T, error) {
	items := Items(raw)
	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("decoding list item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodePage returns the pagination metadata with the decoded items.
// Shapes that Items treats as empty give an empty page.
func DecodePage[T any](raw json.RawMessage) (Page[T], error) {
	results, err := DecodeItems[T](raw)
	if err != nil {
		return Page[T]{}, err
	}

	page := Page[T]{Results: results, Count: len(results)}

	if _, ok := envelopeResults(raw); !ok {
		return page, nil
	}

	var meta struct {
		Count    *int    `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return page, nil
	}
	page.Next = meta.Next
	page.Previous = meta.Previous
	if meta.Count != nil {
		page.Count = *meta.Count
	}
	return page, nil
}

// envelopeResults returns the results array of a paginated envelope
func envelopeResults(raw json.RawMessage) (json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, false
	}
	results := bytes.TrimSpace(envelope.Results)
	if len(results) == 0 || results[0] != '[' {
		return nil, false
	}
	return results, true
}

// Decode unmarshals a single payload returned by a client operation
func Decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decoding response: %w", err)
	}
	return v, nil
}
