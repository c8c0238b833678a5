// Package export turns API list responses into CSV and XLSX files
package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/autoloc-sn/autoloc/internal/textutil"
	"github.com/xuri/excelize/v2"
)

// Formats supported by Write
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Table is a header row followed by data rows of the same width
type Table struct {
	Headers []string
	Rows    [][]string
}

// Write encodes the table in the given format
func Write(w io.Writer, t Table, format string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t, "Export")
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteCSV writes every field double quoted, with embedded quotes doubled, and rows separated by \n.
func WriteCSV(w io.Writer, t Table) error {
	bw := bufio.NewWriter(w)
	writeRow := func(row []string) {
		for i, cell := range row {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			bw.WriteByte('"')
		}
	}

	writeRow(t.Headers)
	for _, row := range t.Rows {
		bw.WriteByte('\n')
		writeRow(row)
	}
	return bw.Flush()
}

// WriteXLSX writes the table to a single sheet workbook
func WriteXLSX(w io.Writer, t Table, sheet string) error {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet = sanitizeSheetName(sheet)
	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := xl.SetSheetRow(sheet, "A1", &t.Headers); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := xl.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if _, err := xl.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Encode returns the encoded table, ready to hand to a download directory
func Encode(t Table, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, t, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename returns {prefix}_{YYYY-MM-DD}.{format}, dated in UTC.
// Underscores in prefix are kept, each part between them is slugified.
func Filename(prefix, format string, now time.Time) string {
	parts := strings.Split(prefix, "_")
	for i, part := range parts {
		parts[i] = textutil.Slug(part)
	}
	return fmt.Sprintf("%s_%s.%s", strings.Join(parts, "_"), now.UTC().Format(time.DateOnly), format)
}

// excel sheet names cannot contain : \ / ? * [ ] and are limited to 31 characters
func sanitizeSheetName(name string) string {
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	name = strings.TrimSpace(replacer.Replace(name))
	if name == "" {
		return "Sheet1"
	}
	if r := []rune(name); len(r) > 31 {
		return string(r[:31])
	}
	return name
}

// Spending periods, matched against the start date of a rental
const (
	PeriodMonth   = "MOIS"
	PeriodQuarter = "TRIMESTRE"
	PeriodYear    = "ANNEE"
	PeriodAll     = "TOUT"
)

// Periods lists the values accepted by FilterPeriod
var Periods = []string{PeriodMonth, PeriodQuarter, PeriodYear, PeriodAll}

// FilterPeriod keeps the items whose date field falls in the current month, quarter or year of now.
// PeriodAll keeps every item. With the other periods, items without a readable date are dropped.
func FilterPeriod(items []json.RawMessage, field, period string, now time.Time) ([]json.RawMessage, error) {
	period = strings.ToUpper(period)
	if !slices.Contains(Periods, period) {
		return nil, fmt.Errorf("période invalide %q (périodes : %s)", period, strings.Join(Periods, ", "))
	}
	if period == PeriodAll {
		return items, nil
	}

	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		var doc map[string]any
		if err := json.Unmarshal(item, &doc); err != nil {
			continue
		}
		date, ok := textutil.ParseDate(textutil.Field(doc, field))
		if !ok || date.Year() != now.Year() {
			continue
		}
		switch period {
		case PeriodMonth:
			if date.Month() != now.Month() {
				continue
			}
		case PeriodQuarter:
			if (date.Month()-1)/3 != (now.Month()-1)/3 {
				continue
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// SpendingTable builds a client's spending export from the /locations/mes-locations/ items
func SpendingTable(items []json.RawMessage) Table {
	t := Table{Headers: []string{"Date début", "Date fin", "Véhicule", "Durée (jours)", "Prix total", "Statut"}}
	for _, item := range items {
		var doc map[string]any
		if err := json.Unmarshal(item, &doc); err != nil {
			continue
		}
		t.Rows = append(t.Rows, []string{
			textutil.FormatLongDate(textutil.Field(doc, "date_debut")),
			textutil.FormatLongDate(textutil.Field(doc, "date_fin")),
			textutil.Field(doc, "vehicule.nom_complet"),
			textutil.Field(doc, "duree_location"),
			textutil.Field(doc, "prix_total"),
			textutil.Field(doc, "statut"),
		})
	}
	return t
}

// ClientBadge classifies a dealer's customer by number of rentals
func ClientBadge(rentals int) string {
	switch {
	case rentals >= 5:
		return "VIP"
	case rentals >= 3:
		return "Fidèle"
	case rentals > 0:
		return "Actif"
	default:
		return "Nouveau"
	}
}

// ClientsTable builds the customer export of a dealer from the /clients/mes-clients/ items
func ClientsTable(items []json.RawMessage) Table {
	t := Table{Headers: []string{"Nom", "Email", "Téléphone", "Ville", "Locations", "Dépenses", "Inscription"}}
	for _, item := range items {
		var doc map[string]any
		if err := json.Unmarshal(item, &doc); err != nil {
			continue
		}
		t.Rows = append(t.Rows, []string{
			textutil.Field(doc, "nom_complet"),
			textutil.Field(doc, "email"),
			textutil.Field(doc, "telephone"),
			orDefault(textutil.Field(doc, "ville"), "N/A"),
			orDefault(textutil.Field(doc, "nombre_locations"), "0"),
			orDefault(textutil.Field(doc, "montant_total_depense"), "0"),
			textutil.FormatLongDate(textutil.Field(doc, "date_inscription")),
		})
	}
	return t
}

// DemandsTable builds the enquiry export of a dealer from the /demands/demandes-recues/ items
func DemandsTable(items []json.RawMessage) Table {
	t := Table{Headers: []string{"Date", "Client", "Type", "Véhicule", "Statut", "Message"}}
	for _, item := range items {
		var doc map[string]any
		if err := json.Unmarshal(item, &doc); err != nil {
			continue
		}
		t.Rows = append(t.Rows, []string{
			textutil.FormatLongDate(textutil.Field(doc, "date_creation")),
			textutil.Field(doc, "client.nom_complet"),
			textutil.Field(doc, "type"),
			textutil.Field(doc, "vehicule.nom_complet"),
			textutil.Field(doc, "statut"),
			textutil.Field(doc, "message"),
		})
	}
	return t
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
