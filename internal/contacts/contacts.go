// Package contacts imports an address-book CSV export into the graph:
// each row becomes a person, organizations are fuzzy-matched against
// existing companies (creating them when nothing matches), and an
// employed_by edge links the two.
package contacts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Contact is one address-book entry.
type Contact struct {
	GivenName    string
	FamilyName   string
	Organization string
	Title        string
	Emails       []string
	Phones       []string
}

// FullName joins the non-empty name parts.
func (c Contact) FullName() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{c.GivenName, c.FamilyName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// DisplayName falls back to the organization when the contact has no
// personal name.
func (c Contact) DisplayName() string {
	if n := c.FullName(); n != "" {
		return n
	}
	return c.Organization
}

// csv columns recognized by ReadCSV. Email and phone cells may hold
// several values separated by semicolons.
const (
	colGivenName    = "given_name"
	colFamilyName   = "family_name"
	colOrganization = "organization"
	colTitle        = "title"
	colEmail        = "email"
	colPhone        = "phone"
)

// ReadCSV parses a contacts export. The first row is a header naming
// the columns; unknown columns are ignored and rows with no display
// name are skipped.
func ReadCSV(r io.Reader) ([]Contact, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := index[colGivenName]; !ok {
		if _, ok := index[colOrganization]; !ok {
			return nil, fmt.Errorf("csv header has neither %q nor %q", colGivenName, colOrganization)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []Contact
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}
		c := Contact{
			GivenName:    cell(row, colGivenName),
			FamilyName:   cell(row, colFamilyName),
			Organization: cell(row, colOrganization),
			Title:        cell(row, colTitle),
			Emails:       splitMulti(cell(row, colEmail)),
			Phones:       splitMulti(cell(row, colPhone)),
		}
		if c.DisplayName() == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func splitMulti(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
