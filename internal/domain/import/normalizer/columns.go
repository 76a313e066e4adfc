// Package normalizer maps free-form spreadsheet headers onto the canonical
// transaction fields and converts raw rows into validated, typed records.
package normalizer

import "strings"

// Canonical row fields every recognized header spelling normalizes into.
const (
	FieldAccountName  = "account_name"
	FieldCategoryName = "category_name"
	FieldMode         = "mode"
	FieldCurrency     = "currency"
	FieldAmount       = "amount"
	FieldDate         = "transaction_date"
	FieldDescription  = "description"
)

// ColumnMap holds the column index bound to each canonical field, or -1
// when no header matched.
type ColumnMap struct {
	AccountCol  int
	CategoryCol int
	ModeCol     int
	CurrencyCol int
	AmountCol   int
	DateCol     int
	DescCol     int
}

// columnRule matches one header spelling to a canonical field.
type columnRule struct {
	field    string
	contains []string
	equals   []string
}

// Rules are ordered; each header binds to the first rule it satisfies, and
// each canonical field binds to the first (leftmost) header that matched
// it. Later headers matching an already-bound field are ignored, so the
// mapping is deterministic regardless of duplicate columns.
var columnRules = []columnRule{
	{field: FieldAccountName, contains: []string{"account"}},
	{field: FieldCategoryName, contains: []string{"category"}},
	{field: FieldMode, equals: []string{"mode"}, contains: []string{"type"}},
	{field: FieldCurrency, contains: []string{"currency"}, equals: []string{"curr"}},
	{field: FieldAmount, equals: []string{"amount"}, contains: []string{"amt"}},
	{field: FieldDate, contains: []string{"date"}},
	{field: FieldDescription, contains: []string{"desc", "note"}},
}

func (r columnRule) matches(header string) bool {
	for _, eq := range r.equals {
		if header == eq {
			return true
		}
	}
	for _, sub := range r.contains {
		if strings.Contains(header, sub) {
			return true
		}
	}
	return false
}

// MapColumns binds original headers to canonical fields using the ordered
// rule table. Headers matching no rule are dropped.
func MapColumns(headers []string) ColumnMap {
	cm := ColumnMap{
		AccountCol:  -1,
		CategoryCol: -1,
		ModeCol:     -1,
		CurrencyCol: -1,
		AmountCol:   -1,
		DateCol:     -1,
		DescCol:     -1,
	}

	bind := map[string]*int{
		FieldAccountName:  &cm.AccountCol,
		FieldCategoryName: &cm.CategoryCol,
		FieldMode:         &cm.ModeCol,
		FieldCurrency:     &cm.CurrencyCol,
		FieldAmount:       &cm.AmountCol,
		FieldDate:         &cm.DateCol,
		FieldDescription:  &cm.DescCol,
	}

	for i, header := range headers {
		h := strings.ToLower(strings.TrimSpace(header))
		if h == "" {
			continue
		}
		for _, rule := range columnRules {
			if !rule.matches(h) {
				continue
			}
			if col := bind[rule.field]; *col < 0 {
				*col = i
			}
			break
		}
	}

	return cm
}
