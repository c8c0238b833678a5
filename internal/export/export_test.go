package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteCSV(t *testing.T) {
	table := Table{
		Headers: []string{"Nom", "Message"},
		Rows: [][]string{
			{"Aminata Diallo", `Véhicule "comme neuf", merci`},
			{"Moussa Ndiaye", ""},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	want := `"Nom","Message"` + "\n" +
		`"Aminata Diallo","Véhicule ""comme neuf"", merci"` + "\n" +
		`"Moussa Ndiaye",""`
	assert.Equal(t, want, buf.String())
}

func TestWriteXLSX(t *testing.T) {
	table := Table{
		Headers: []string{"Nom", "Locations"},
		Rows:    [][]string{{"Aminata Diallo", "4"}, {"Moussa Ndiaye", "0"}},
	}

	data, err := Encode(table, FormatXLSX)
	require.NoError(t, err)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows("Export")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Nom", "Locations"},
		{"Aminata Diallo", "4"},
		{"Moussa Ndiaye", "0"},
	}, rows)
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	_, err := Encode(Table{}, "pdf")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 3, 9, 18, 45, 0, 0, time.UTC)
	assert.Equal(t, "clients_2025-03-09.csv", Filename("clients", FormatCSV, now))
	assert.Equal(t, "demandes-recues_2025-03-09.xlsx", Filename("Demandes reçues", FormatXLSX, now))
	assert.Equal(t, "depenses_trimestre_2025-03-09.csv", Filename("depenses_trimestre", FormatCSV, now))

	// 22:30 on the 9th in UTC-5 is already the 10th in UTC
	evening := time.Date(2025, 3, 9, 22, 30, 0, 0, time.FixedZone("UTC-5", -5*60*60))
	assert.Equal(t, "clients_2025-03-10.csv", Filename("clients", FormatCSV, evening))
}

func TestFilterPeriod(t *testing.T) {
	now := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	items := []json.RawMessage{
		json.RawMessage(`{"id": 1, "date_debut": "2025-05-02"}`),
		json.RawMessage(`{"id": 2, "date_debut": "2025-04-11T08:00:00Z"}`),
		json.RawMessage(`{"id": 3, "date_debut": "2025-01-15"}`),
		json.RawMessage(`{"id": 4, "date_debut": "2024-05-02"}`),
		json.RawMessage(`{"id": 5}`),
	}

	tests := []struct {
		period  string
		wantIDs []int
	}{
		{PeriodMonth, []int{1}},
		{PeriodQuarter, []int{1, 2}},
		{"annee", []int{1, 2, 3}},
		{PeriodAll, []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			got, err := FilterPeriod(items, "date_debut", tt.period, now)
			require.NoError(t, err)

			ids := make([]int, 0, len(got))
			for _, item := range got {
				var doc struct {
					ID int `json:"id"`
				}
				require.NoError(t, json.Unmarshal(item, &doc))
				ids = append(ids, doc.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	_, err := FilterPeriod(items, "date_debut", "SEMAINE", now)
	assert.EqualError(t, err, `période invalide "SEMAINE" (périodes : MOIS, TRIMESTRE, ANNEE, TOUT)`)
}

func TestSpendingTable(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"date_debut": "2025-05-02", "date_fin": "2025-05-05", "vehicule": {"nom_complet": "Kia Picanto 2021"},
			"duree_location": 3, "prix_total": "75000.00", "statut": "TERMINEE"}`),
	}

	table := SpendingTable(items)

	assert.Equal(t, []string{"Date début", "Date fin", "Véhicule", "Durée (jours)", "Prix total", "Statut"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"2 mai 2025", "5 mai 2025", "Kia Picanto 2021", "3", "75000.00", "TERMINEE"}, table.Rows[0])
}

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "Clients_2025", sanitizeSheetName("Clients/2025"))
	assert.Equal(t, "Sheet1", sanitizeSheetName("  "))
	assert.Len(t, []rune(sanitizeSheetName("une feuille avec un nom beaucoup trop long")), 31)
}

func TestClientBadge(t *testing.T) {
	tests := []struct {
		rentals int
		want    string
	}{
		{0, "Nouveau"}, {1, "Actif"}, {2, "Actif"}, {3, "Fidèle"}, {4, "Fidèle"}, {5, "VIP"}, {12, "VIP"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClientBadge(tt.rentals), "rentals=%d", tt.rentals)
	}
}

func TestClientsTable(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"nom_complet": "Aminata Diallo", "email": "aminata@example.sn", "telephone": "+221770000000",
			"ville": "Thiès", "nombre_locations": 4, "montant_total_depense": 125000, "date_inscription": "2024-08-15T10:30:00Z"}`),
		json.RawMessage(`{"nom_complet": "Moussa Ndiaye", "email": "moussa@example.sn", "telephone": "+221780000000",
			"ville": null, "nombre_locations": 0, "montant_total_depense": null, "date_inscription": null}`),
	}

	table := ClientsTable(items)

	assert.Equal(t, []string{"Nom", "Email", "Téléphone", "Ville", "Locations", "Dépenses", "Inscription"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Aminata Diallo", "aminata@example.sn", "+221770000000", "Thiès", "4", "125000", "15 août 2024"}, table.Rows[0])
	assert.Equal(t, []string{"Moussa Ndiaye", "moussa@example.sn", "+221780000000", "N/A", "0", "0", "N/A"}, table.Rows[1])
}

func TestDemandsTable(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"date_creation": "2025-01-02", "client": {"nom_complet": "Fatou Sène"}, "type": "ESSAI",
			"vehicule": {"nom_complet": "Toyota Corolla 2022"}, "statut": "EN_ATTENTE", "message": "Disponible samedi ?"}`),
	}

	table := DemandsTable(items)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"2 janvier 2025", "Fatou Sène", "ESSAI", "Toyota Corolla 2022", "EN_ATTENTE", "Disponible samedi ?"}, table.Rows[0])
}
