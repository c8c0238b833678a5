package textutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Thiès", want: "thies"},
		{input: "ÉLÉPHANT", want: "elephant"},
		{input: "Saint-Louis", want: "saint-louis"},
		{input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.input))
		})
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("Concession de Thiès", "thies"))
	assert.True(t, Contains("Aminata Diallo", "DIAL"))
	assert.True(t, Contains("anything", ""))
	assert.False(t, Contains("Dakar", "thies"))
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Clients fidèles", want: "clients-fideles"},
		{input: "  Export: véhicules / 2025 ", want: "export-vehicules-2025"},
		{input: "locations", want: "locations"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.input))
		})
	}
}

func TestFilterItems(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"id": 1, "nom_complet": "Aminata Diallo", "ville": "Thiès"}`),
		json.RawMessage(`{"id": 2, "nom_complet": "Moussa Ndiaye", "ville": "Dakar"}`),
		json.RawMessage(`{"id": 3, "client": {"nom_complet": "Fatou Sène"}, "ville": null}`),
		json.RawMessage(`not json`),
	}

	tests := []struct {
		name    string
		query   string
		fields  []string
		wantIDs []int
	}{
		{name: "accent insensitive", query: "thies", fields: []string{"ville"}, wantIDs: []int{1}},
		{name: "any field", query: "ndiaye", fields: []string{"ville", "nom_complet"}, wantIDs: []int{2}},
		{name: "nested field", query: "sene", fields: []string{"client.nom_complet"}, wantIDs: []int{3}},
		{name: "no match", query: "ziguinchor", fields: []string{"ville"}, wantIDs: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterItems(items, tt.query, tt.fields...)
			ids := make([]int, 0, len(got))
			for _, item := range got {
				var v struct {
					ID int `json:"id"`
				}
				_ = json.Unmarshal(item, &v)
				ids = append(ids, v.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("empty query keeps everything", func(t *testing.T) {
		assert.Len(t, FilterItems(items, "  ", "ville"), len(items))
	})
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{amount: 25000, want: "25 000 FCFA"},
		{amount: 1500000, want: "1 500 000 FCFA"},
		{amount: 950, want: "950 FCFA"},
		{amount: 0, want: "0 FCFA"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.amount))
		})
	}
}

func TestFormatLongDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "2025-01-02", want: "2 janvier 2025"},
		{input: "2024-08-15T10:30:00Z", want: "15 août 2024"},
		{input: "2024-12-31T23:00:00.123456", want: "31 décembre 2024"},
		{input: "", want: "N/A"},
		{input: "bientôt", want: "bientôt"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLongDate(tt.input))
		})
	}
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2025-04-11T08:00:00+02:00")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 4, 11, 6, 0, 0, 0, time.UTC), got.UTC())

	_, ok = ParseDate("11/04/2025")
	assert.False(t, ok)
}
