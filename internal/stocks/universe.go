package stocks

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed data/symbols.json
var symbolsData []byte

// Company is one entry of the bundled symbol universe.
type Company struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Index  string `json:"index"`
}

// Universe holds the bundled company list used for fuzzy symbol resolution.
type Universe struct {
	companies []Company
	names     []string
}

// LoadUniverse parses the embedded symbol dataset.
func LoadUniverse() (*Universe, error) {
	var payload struct {
		Companies []Company `json:"companies"`
	}
	if err := json.Unmarshal(symbolsData, &payload); err != nil {
		return nil, fmt.Errorf("stocks: parse symbol universe: %w", err)
	}
	u := &Universe{companies: payload.Companies}
	u.names = make([]string, len(payload.Companies))
	for i, c := range payload.Companies {
		u.names[i] = c.Name
	}
	return u, nil
}

// AllCompanyNames returns every company name in dataset order.
func (u *Universe) AllCompanyNames() []string {
	return u.names
}

// SymbolForName returns the ticker for the first company whose name
// contains the given text, compared case-insensitively.
func (u *Universe) SymbolForName(name string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}
	for _, c := range u.companies {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			return c.Symbol, true
		}
	}
	return "", false
}

// Len reports the number of companies in the universe.
func (u *Universe) Len() int {
	return len(u.companies)
}
