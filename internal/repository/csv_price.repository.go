package repository

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"portfolioanalysis/internal/domain"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// long format rows, one price per line
type priceCsvRow struct {
	Date   string `csv:"date"`
	Symbol string `csv:"symbol"`
	Price  string `csv:"price"`
}

// LoadPriceCsv reads closing prices from a csv in either wide format
// (first column is the date, one column per symbol) or long format
// (date,symbol,price). Blank or unparseable cells become NaN so
// cleaning can drop them.
func LoadPriceCsv(r io.Reader) (*domain.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: csv is empty", domain.ErrEmptyData)
	}

	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	if isLongFormat(header) {
		return loadLongCsv(lowercaseHeader(data))
	}
	return loadWideCsv(data, header)
}

// gocsv matches struct tags exactly, so Date,Symbol,Price needs to
// become date,symbol,price
func lowercaseHeader(data []byte) []byte {
	end := bytes.IndexByte(data, '\n')
	if end < 0 {
		return bytes.ToLower(data)
	}
	out := append([]byte{}, bytes.ToLower(data[:end])...)
	return append(out, data[end:]...)
}

func isLongFormat(header []string) bool {
	seen := map[string]bool{}
	for _, h := range header {
		seen[strings.ToLower(strings.TrimSpace(h))] = true
	}
	return len(header) == 3 && seen["date"] && seen["symbol"] && seen["price"]
}

func loadWideCsv(data []byte, header []string) (*domain.RawTable, error) {
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: csv needs a date column and at least one symbol column", domain.ErrEmptyData)
	}
	rows, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	// rows are keyed by the raw header, symbols are cleaned up
	dateColumn := header[0]
	columns := header[1:]
	table := &domain.RawTable{
		Dates:   make([]string, 0, len(rows)),
		Symbols: make([]string, len(columns)),
		Values:  make([][]float64, 0, len(rows)),
	}
	for j, c := range columns {
		table.Symbols[j] = strings.ToUpper(strings.TrimSpace(c))
	}
	for _, row := range rows {
		values := make([]float64, len(columns))
		for j, c := range columns {
			values[j] = parseCell(row[c])
		}
		table.Dates = append(table.Dates, row[dateColumn])
		table.Values = append(table.Values, values)
	}

	return table, nil
}

func loadLongCsv(data []byte) (*domain.RawTable, error) {
	rows := []priceCsvRow{}
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	dateIndex := map[string]int{}
	symbolIndex := map[string]int{}
	table := &domain.RawTable{}
	for _, row := range rows {
		symbol := strings.ToUpper(strings.TrimSpace(row.Symbol))
		if symbol == "" {
			continue
		}
		if _, ok := symbolIndex[symbol]; !ok {
			symbolIndex[symbol] = len(table.Symbols)
			table.Symbols = append(table.Symbols, symbol)
			for i := range table.Values {
				table.Values[i] = append(table.Values[i], math.NaN())
			}
		}
		date := strings.TrimSpace(row.Date)
		if _, ok := dateIndex[date]; !ok {
			dateIndex[date] = len(table.Dates)
			table.Dates = append(table.Dates, date)
			values := make([]float64, len(table.Symbols))
			for j := range values {
				values[j] = math.NaN()
			}
			table.Values = append(table.Values, values)
		}
		table.Values[dateIndex[date]][symbolIndex[symbol]] = parseCell(row.Price)
	}

	return table, nil
}

func parseCell(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
