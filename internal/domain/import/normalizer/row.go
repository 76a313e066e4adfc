package normalizer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisa-app/paisa-api/pkg/money"
)

// maxAmount caps a single transaction at 10^15 major units so the minor
// unit conversion cannot overflow int64.
var maxAmount = decimal.New(1, 15)

// Mode classifies a transaction.
type Mode string

const (
	ModeIncome     Mode = "Income"
	ModeExpense    Mode = "Expense"
	ModeCreditCard Mode = "Credit Card"
)

// Currency is a supported ISO-4217 code.
type Currency string

const (
	CurrencyINR Currency = money.INR
	CurrencySAR Currency = money.SAR
)

// ValidatedRow is a fully typed, accepted data row, ready for entity
// resolution and persistence.
type ValidatedRow struct {
	AccountName  string
	CategoryName string
	Mode         Mode
	Currency     Currency
	AmountMinor  int64
	Date         time.Time // calendar date at UTC midnight
	Description  string
}

// serialEpoch is the spreadsheet serial-date epoch. Day 1 is 1900-01-01;
// the epoch sits two days earlier to absorb the historical 1900 leap-year
// quirk carried by every spreadsheet tool.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// DateFromSerial converts a spreadsheet serial day count to a calendar
// date. Fractional time-of-day is rounded away.
func DateFromSerial(serial float64) time.Time {
	return serialEpoch.AddDate(0, 0, int(math.Round(serial)))
}

// SerialFromDate converts a calendar date back to its serial day count.
func SerialFromDate(t time.Time) int {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(serialEpoch).Hours() / 24)
}

// ConvertRow validates one data row against the column map. Checks run in a
// fixed order and the first failure wins; the returned error message is the
// human-readable reason recorded for that row. No error ever escapes a row
// boundary as a panic.
func ConvertRow(cm ColumnMap, record []string) (*ValidatedRow, error) {
	rawAmount := cell(record, cm.AmountCol)
	amount, err := money.ParseDecimal(rawAmount)
	if err != nil || amount.Sign() <= 0 || amount.GreaterThan(maxAmount) {
		return nil, fmt.Errorf("Invalid amount: %s", rawAmount)
	}

	rawMode := cell(record, cm.ModeCol)
	mode, ok := parseMode(rawMode)
	if !ok {
		return nil, fmt.Errorf("Invalid mode: %s. Use Income, Expense, or Credit Card.", rawMode)
	}

	rawCurrency := cell(record, cm.CurrencyCol)
	currency, ok := parseCurrency(rawCurrency)
	if !ok {
		return nil, fmt.Errorf("Invalid currency: %s. Use INR or SAR.", rawCurrency)
	}

	rawDate := cell(record, cm.DateCol)
	date, ok := parseDate(rawDate)
	if !ok {
		return nil, fmt.Errorf("Invalid date: %s. Use YYYY-MM-DD or spreadsheet date format.", rawDate)
	}

	accountName := cell(record, cm.AccountCol)
	categoryName := cell(record, cm.CategoryCol)
	if accountName == "" || categoryName == "" {
		return nil, fmt.Errorf("Account Name and Category Name are required.")
	}

	return &ValidatedRow{
		AccountName:  accountName,
		CategoryName: categoryName,
		Mode:         mode,
		Currency:     currency,
		AmountMinor:  money.MinorUnits(amount, string(currency)),
		Date:         date,
		Description:  cell(record, cm.DescCol),
	}, nil
}

func cell(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

func parseMode(raw string) (Mode, bool) {
	switch strings.ToLower(raw) {
	case "income":
		return ModeIncome, true
	case "expense":
		return ModeExpense, true
	case "credit card", "cc":
		return ModeCreditCard, true
	default:
		return "", false
	}
}

func parseCurrency(raw string) (Currency, bool) {
	switch strings.ToUpper(raw) {
	case money.INR:
		return CurrencyINR, true
	case money.SAR:
		return CurrencySAR, true
	default:
		return "", false
	}
}

// maxSerial bounds accepted serial dates. 200000 is well past year 2400;
// anything larger is a stray number, not a date.
const maxSerial = 200000

// parseDate accepts a numeric spreadsheet serial, ISO YYYY-MM-DD,
// DD-MM-YYYY, or DD/MM/YYYY. ParseFloat also accepts "inf", "nan", and
// arbitrary exponents, so the serial branch rejects anything outside the
// plausible day range instead of silently collapsing it onto the epoch.
func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 || serial > maxSerial {
			return time.Time{}, false
		}
		return DateFromSerial(serial), true
	}

	for _, layout := range []string{"2006-01-02", "02-01-2006", "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}
