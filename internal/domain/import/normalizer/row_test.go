package normalizer

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// standard column order used by the row tests:
// account, category, mode, currency, amount, date, description
var testColumns = ColumnMap{
	AccountCol:  0,
	CategoryCol: 1,
	ModeCol:     2,
	CurrencyCol: 3,
	AmountCol:   4,
	DateCol:     5,
	DescCol:     6,
}

func row(account, category, mode, currency, amount, date, desc string) []string {
	return []string{account, category, mode, currency, amount, date, desc}
}

func TestConvertRow(t *testing.T) {
	t.Run("valid row", func(t *testing.T) {
		v, err := ConvertRow(testColumns, row("HDFC", "Salary", "income", "inr", "50000", "2024-04-12", "pay"))
		require.NoError(t, err)

		assert.Equal(t, "HDFC", v.AccountName)
		assert.Equal(t, "Salary", v.CategoryName)
		assert.Equal(t, ModeIncome, v.Mode)
		assert.Equal(t, CurrencyINR, v.Currency)
		assert.Equal(t, int64(5000000), v.AmountMinor)
		assert.Equal(t, time.Date(2024, time.April, 12, 0, 0, 0, 0, time.UTC), v.Date)
		assert.Equal(t, "pay", v.Description)
	})

	t.Run("description optional", func(t *testing.T) {
		v, err := ConvertRow(testColumns, row("HDFC", "Rent", "Expense", "SAR", "2000", "2025-01-17", ""))
		require.NoError(t, err)
		assert.Equal(t, "", v.Description)
	})

	t.Run("short record treated as blank cells", func(t *testing.T) {
		_, err := ConvertRow(testColumns, []string{"HDFC"})
		require.Error(t, err)
	})
}

func TestConvertRow_Amount(t *testing.T) {
	t.Run("negative rejected", func(t *testing.T) {
		_, err := ConvertRow(testColumns, row("HDFC", "Rent", "Expense", "INR", "-5", "2025-01-17", ""))
		require.EqualError(t, err, "Invalid amount: -5")
	})

	t.Run("zero rejected", func(t *testing.T) {
		_, err := ConvertRow(testColumns, row("HDFC", "Rent", "Expense", "INR", "0", "2025-01-17", ""))
		require.EqualError(t, err, "Invalid amount: 0")
	})

	t.Run("non-numeric rejected", func(t *testing.T) {
		_, err := ConvertRow(testColumns, row("HDFC", "Rent", "Expense", "INR", "ten", "2025-01-17", ""))
		require.EqualError(t, err, "Invalid amount: ten")
	})

	t.Run("absurdly large rejected before minor units overflow", func(t *testing.T) {
		_, err := ConvertRow(testColumns, row("HDFC", "Rent", "Expense", "INR", "1e30", "2025-01-17", ""))
		require.EqualError(t, err, "Invalid amount: 1e30")
	})

	t.Run("amount failure reported before other bad fields", func(t *testing.T) {
		_, err := ConvertRow(testColumns, row("", "", "bogus", "USD", "-1", "never", ""))
		require.EqualError(t, err, "Invalid amount: -1")
	})
}

func TestConvertRow_Mode(t *testing.T) {
	for _, raw := range []string{"income", "INCOME", "Income"} {
		v, err := ConvertRow(testColumns, row("HDFC", "Salary", raw, "INR", "10", "2024-04-12", ""))
		require.NoError(t, err, raw)
		assert.Equal(t, ModeIncome, v.Mode, raw)
	}

	t.Run("cc alias", func(t *testing.T) {
		v, err := ConvertRow(testColumns, row("HDFC", "Shopping", "cc", "INR", "10", "2024-04-12", ""))
		require.NoError(t, err)
		assert.Equal(t, ModeCreditCard, v.Mode)
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		_, err := ConvertRow(testColumns, row("HDFC", "Salary", "transfer", "INR", "10", "2024-04-12", ""))
		require.EqualError(t, err, "Invalid mode: transfer. Use Income, Expense, or Credit Card.")
	})
}

func TestConvertRow_Currency(t *testing.T) {
	t.Run("lowercase normalized", func(t *testing.T) {
		v, err := ConvertRow(testColumns, row("HDFC", "Salary", "Income", "inr", "10", "2024-04-12", ""))
		require.NoError(t, err)
		assert.Equal(t, CurrencyINR, v.Currency)
	})

	t.Run("unsupported currency rejected", func(t *testing.T) {
		_, err := ConvertRow(testColumns, row("HDFC", "Salary", "Income", "USD", "10", "2024-04-12", ""))
		require.EqualError(t, err, "Invalid currency: USD. Use INR or SAR.")
	})
}

func TestConvertRow_Date(t *testing.T) {
	want := time.Date(2024, time.April, 12, 0, 0, 0, 0, time.UTC)

	cases := map[string]string{
		"ISO":        "2024-04-12",
		"DD-MM-YYYY": "12-04-2024",
		"DD/MM/YYYY": "12/04/2024",
		"serial":     "45394",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			v, err := ConvertRow(testColumns, row("HDFC", "Salary", "Income", "INR", "10", raw, ""))
			require.NoError(t, err)
			assert.Equal(t, want, v.Date)
		})
	}

	t.Run("fractional serial rounded", func(t *testing.T) {
		v, err := ConvertRow(testColumns, row("HDFC", "Salary", "Income", "INR", "10", "45393.75", ""))
		require.NoError(t, err)
		assert.Equal(t, want, v.Date)
	})

	t.Run("unrecognized shape rejected", func(t *testing.T) {
		_, err := ConvertRow(testColumns, row("HDFC", "Salary", "Income", "INR", "10", "April 12, 2024", ""))
		require.EqualError(t, err, "Invalid date: April 12, 2024. Use YYYY-MM-DD or spreadsheet date format.")
	})

	t.Run("float-parseable non-dates rejected", func(t *testing.T) {
		// ParseFloat accepts all of these; none is a calendar date.
		for _, raw := range []string{"inf", "-inf", "nan", "1e300", "0", "-45394", "999999999"} {
			_, err := ConvertRow(testColumns, row("HDFC", "Salary", "Income", "INR", "10", raw, ""))
			require.EqualError(t, err,
				fmt.Sprintf("Invalid date: %s. Use YYYY-MM-DD or spreadsheet date format.", raw), raw)
		}
	})
}

func TestConvertRow_Names(t *testing.T) {
	t.Run("blank account rejected", func(t *testing.T) {
		_, err := ConvertRow(testColumns, row("  ", "Rent", "Expense", "SAR", "2000", "2025-01-17", ""))
		require.EqualError(t, err, "Account Name and Category Name are required.")
	})

	t.Run("blank category rejected", func(t *testing.T) {
		_, err := ConvertRow(testColumns, row("SNB", "", "Expense", "SAR", "2000", "2025-01-17", ""))
		require.EqualError(t, err, "Account Name and Category Name are required.")
	})
}

func TestSerialDates(t *testing.T) {
	t.Run("known serial", func(t *testing.T) {
		assert.Equal(t, time.Date(2024, time.April, 12, 0, 0, 0, 0, time.UTC), DateFromSerial(45394))
	})

	t.Run("round trip", func(t *testing.T) {
		date := DateFromSerial(45394)
		serial := SerialFromDate(date)
		assert.Equal(t, 45394, serial)
		assert.Equal(t, date, DateFromSerial(float64(serial)))
	})

	t.Run("epoch", func(t *testing.T) {
		assert.Equal(t, time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC), DateFromSerial(2))
	})
}
