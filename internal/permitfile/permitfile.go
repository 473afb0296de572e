// Package permitfile parses county permit exports (CSV and XLSX) into raw
// permit rows for the record store. Column names are matched loosely because
// no two county portals export the same header set.
package permitfile

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

// columnAliases maps canonical column keys to header spellings seen in
// county exports. Matching is case-insensitive on the normalized header.
var columnAliases = map[string][]string{
	"description":    {"description", "work description", "permit description", "scope of work", "work_desc"},
	"classification": {"classification", "permit type", "permit_type", "type", "category"},
	"status":         {"status", "permit status", "permit_status"},
	"issue_date":     {"issue date", "issue_date", "issued", "date issued", "issued_date"},
	"finalize_date":  {"finalize date", "final date", "finaled date", "finalized", "completion date", "final_date"},
	"approval_date":  {"approval date", "approved", "date approved", "approval_date"},
	"valuation":      {"valuation", "job value", "value", "estimated cost", "job_value"},
}

// dateLayouts are attempted in order when parsing permit date cells.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02T15:04:05Z07:00",
	"Jan 2, 2006",
}

type columnIndex map[string]int

func indexHeader(header []string) columnIndex {
	idx := make(columnIndex)
	for i, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		for key, aliases := range columnAliases {
			if _, seen := idx[key]; seen {
				continue
			}
			for _, alias := range aliases {
				if h == alias {
					idx[key] = i
					break
				}
			}
		}
	}
	return idx
}

func (c columnIndex) get(row []string, key string) string {
	i, ok := c[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func parseValuation(s string) float64 {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func rowToPermit(idx columnIndex, row []string, homeID string) model.PermitRow {
	return model.PermitRow{
		HomeID:         homeID,
		Description:    idx.get(row, "description"),
		Classification: idx.get(row, "classification"),
		Status:         idx.get(row, "status"),
		IssueDate:      parseDate(idx.get(row, "issue_date")),
		FinalizeDate:   parseDate(idx.get(row, "finalize_date")),
		ApprovalDate:   parseDate(idx.get(row, "approval_date")),
		Valuation:      parseValuation(idx.get(row, "valuation")),
	}
}

// ParseCSV reads a permit CSV export. The first row must be a header.
// Rows with an empty description are skipped: there is nothing to classify.
func ParseCSV(r io.Reader, homeID string) ([]model.PermitRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "permitfile: read csv header")
	}
	idx := indexHeader(header)
	if _, ok := idx["description"]; !ok {
		return nil, eris.New("permitfile: csv has no recognizable description column")
	}

	var permits []model.PermitRow
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "permitfile: read csv row")
		}
		p := rowToPermit(idx, row, homeID)
		if p.Description == "" {
			continue
		}
		permits = append(permits, p)
	}
	return permits, nil
}

// ParseCSVFile opens and parses a permit CSV export from disk.
func ParseCSVFile(path, homeID string) ([]model.PermitRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "permitfile: open %s", path)
	}
	defer f.Close()
	return ParseCSV(f, homeID)
}

// ParseXLSX reads a permit XLSX export from the first sheet.
func ParseXLSX(path, homeID string) ([]model.PermitRow, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "permitfile: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("permitfile: %s has no sheets", path)
	}
	sheet := f.Sheets[0]

	var idx columnIndex
	var permits []model.PermitRow
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if i == 0 {
			idx = indexHeader(cells)
			if _, ok := idx["description"]; !ok {
				return nil, eris.New("permitfile: xlsx has no recognizable description column")
			}
			continue
		}
		p := rowToPermit(idx, cells, homeID)
		if p.Description == "" {
			continue
		}
		permits = append(permits, p)
	}
	return permits, nil
}
