// Package inventory turns uploaded product sheets into products for a bulk upsert.
package inventory

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/MarcGrol/shopperbot/lib/myerrors"
	"github.com/MarcGrol/shopperbot/services/backend"
)

const defaultCategory = "Other"

type Result struct {
	Products []backend.Product
	Skipped  int
}

type record map[string]string

// Parse reads a CSV, XLSX or JSON product list. Column names are matched case-insensitively;
// rows without barcode, name or a positive price are skipped.
func Parse(fileName string, data []byte) (Result, error) {
	var (
		records []record
		err     error
	)

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		records, err = parseCSV(data)
	case ".xlsx":
		records, err = parseXLSX(data)
	case ".json":
		records, err = parseJSON(data)
	default:
		return Result{}, myerrors.NewInvalidInputErrorf("unsupported format %q: please send CSV, XLSX, or JSON", filepath.Ext(fileName))
	}
	if err != nil {
		return Result{}, myerrors.NewInvalidInputError(err)
	}

	result := Result{Products: []backend.Product{}}
	for _, r := range records {
		product, ok := r.toProduct()
		if !ok {
			result.Skipped++
			continue
		}
		result.Products = append(result.Products, product)
	}

	if len(result.Products) == 0 {
		return result, myerrors.NewInvalidInputErrorf("empty or invalid data: check barcode/name/price columns")
	}

	return result, nil
}

func (r record) toProduct() (backend.Product, bool) {
	barcode := r["barcode"]
	name := r["name"]
	if barcode == "" || name == "" {
		return backend.Product{}, false
	}

	price, err := strconv.ParseFloat(strings.ReplaceAll(r["price"], ",", ""), 64)
	if err != nil || price <= 0 {
		return backend.Product{}, false
	}

	category := r["category"]
	if category == "" {
		category = defaultCategory
	}

	return backend.Product{
		Barcode:     barcode,
		Name:        name,
		Price:       int(math.Round(price)),
		Category:    category,
		Description: r["description"],
	}, true
}

func newRecord(header []string, values []string) record {
	r := record{}
	for i, column := range header {
		if i < len(values) {
			r[column] = strings.TrimSpace(values[i])
		}
	}
	return r
}

func normalizeHeader(columns []string) []string {
	header := make([]string, 0, len(columns))
	for _, c := range columns {
		header = append(header, strings.ToLower(strings.TrimSpace(c)))
	}
	return header
}

func parseCSV(data []byte) ([]record, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	columns, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading csv header: %w", err)
	}
	header := normalizeHeader(columns)

	records := []record{}
	for {
		values, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading csv: %w", err)
		}
		records = append(records, newRecord(header, values))
	}
	return records, nil
}

func parseXLSX(data []byte) ([]record, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("error reading xlsx: %w", err)
	}
	if len(file.Sheets) == 0 || len(file.Sheets[0].Rows) < 1 {
		return nil, fmt.Errorf("xlsx file is empty or missing header row")
	}

	rows := file.Sheets[0].Rows
	header := normalizeHeader(cellValues(rows[0]))

	records := []record{}
	for _, row := range rows[1:] {
		if row == nil {
			continue
		}
		records = append(records, newRecord(header, cellValues(row)))
	}
	return records, nil
}

func cellValues(row *xlsx.Row) []string {
	values := make([]string, 0, len(row.Cells))
	for _, cell := range row.Cells {
		values = append(values, cell.String())
	}
	return values
}

func parseJSON(data []byte) ([]record, error) {
	rows := []map[string]interface{}{}
	err := json.Unmarshal(data, &rows)
	if err != nil {
		return nil, fmt.Errorf("error reading json, expected a list of products: %w", err)
	}

	records := []record{}
	for _, row := range rows {
		r := record{}
		for k, v := range row {
			r[strings.ToLower(strings.TrimSpace(k))] = jsonValue(v)
		}
		records = append(records, r)
	}
	return records, nil
}

func jsonValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}
