package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItems(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "bare array", raw: `[{"id": 1}, {"id": 2}]`, want: []string{`{"id": 1}`, `{"id": 2}`}},
		{name: "paginated envelope", raw: `{"count": 40, "next": "http://x/?page=2", "previous": null, "results": [{"id": 3}]}`, want: []string{`{"id": 3}`}},
		{name: "empty envelope", raw: `{"count": 0, "results": []}`, want: []string{}},
		{name: "results not an array", raw: `{"results": {"id": 1}}`, want: []string{}},
		{name: "plain object", raw: `{"id": 1}`, want: []string{}},
		{name: "null", raw: `null`, want: []string{}},
		{name: "scalar", raw: `42`, want: []string{}},
		{name: "empty", raw: ``, want: []string{}},
		{name: "invalid json", raw: `[{"id": 1}`, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Items(json.RawMessage(tt.raw))
			require.NotNil(t, items)
			got := make([]string, len(items))
			for i, item := range items {
				got[i] = string(item)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

type vehicle struct {
	ID     int    `json:"id"`
	Marque string `json:"marque"`
}

func TestDecodePage(t *testing.T) {
	t.Run("envelope", func(t *testing.T) {
		page, err := DecodePage[vehicle](json.RawMessage(
			`{"count": 25, "next": "http://localhost:8000/api/vehicules/?page=2", "previous": null,
			  "results": [{"id": 1, "marque": "Toyota"}, {"id": 2, "marque": "Peugeot"}]}`))
		require.NoError(t, err)

		assert.Equal(t, 25, page.Count)
		require.NotNil(t, page.Next)
		assert.Equal(t, "http://localhost:8000/api/vehicules/?page=2", *page.Next)
		assert.Nil(t, page.Previous)
		assert.Equal(t, []vehicle{{1, "Toyota"}, {2, "Peugeot"}}, page.Results)
	})

	t.Run("bare array counts its items", func(t *testing.T) {
		page, err := DecodePage[vehicle](json.RawMessage(`[{"id": 7, "marque": "Kia"}]`))
		require.NoError(t, err)
		assert.Equal(t, 1, page.Count)
		assert.Nil(t, page.Next)
	})

	t.Run("unexpected shape is empty", func(t *testing.T) {
		page, err := DecodePage[vehicle](json.RawMessage(`{"detail": "ok"}`))
		require.NoError(t, err)
		assert.Equal(t, 0, page.Count)
		assert.Empty(t, page.Results)
	})

	t.Run("bad item", func(t *testing.T) {
		_, err := DecodePage[vehicle](json.RawMessage(`[{"id": "un"}]`))
		assert.Error(t, err)
	})
}

func TestDecode(t *testing.T) {
	v, err := Decode[vehicle](json.RawMessage(`{"id": 4, "marque": "Hyundai"}`))
	require.NoError(t, err)
	assert.Equal(t, vehicle{4, "Hyundai"}, v)

	_, err = Decode[vehicle](nil)
	assert.Error(t, err)
}
