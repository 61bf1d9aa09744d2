package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Exchange rate between the two storefront currencies, used when a row
// carries only a shmeckle price.
const shmecklesPerFlurbo = 100

// CSVImporter reads catalog CSV exports and inserts/updates products.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

type csvRow struct {
	ID             int64
	Name           string
	Desc           string
	ImageURL       string
	PriceShmeckles float64
	PriceFlurbos   float64
	Category       string
	Tags           []string
}

// Run parses CSV rows and upserts products one per row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Name == "" || row.PriceShmeckles <= 0 {
		return fmt.Errorf("invalid product row (missing required fields) for %q", row.Name)
	}
	if row.PriceFlurbos == 0 {
		row.PriceFlurbos = row.PriceShmeckles / shmecklesPerFlurbo
	}

	p := domain.Product{
		ID:             row.ID,
		Name:           row.Name,
		Description:    row.Desc,
		ImageURL:       row.ImageURL,
		PriceShmeckles: row.PriceShmeckles,
		PriceFlurbos:   row.PriceFlurbos,
	}
	if row.Category != "" {
		p.Category = &domain.Category{Name: row.Category}
	}
	for _, tag := range row.Tags {
		p.Tags = append(p.Tags, domain.Tag{Name: tag})
	}

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Name, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	name := pick(record, index, "name")
	if name == "" {
		return nil
	}

	row := &csvRow{
		Name:     name,
		Desc:     pick(record, index, "description"),
		ImageURL: pick(record, index, "image_url"),
		Category: pick(record, index, "category"),
	}
	if idStr := pick(record, index, "id"); idStr != "" {
		row.ID, _ = strconv.ParseInt(idStr, 10, 64)
	}
	if s := pick(record, index, "price_shmeckles"); s != "" {
		row.PriceShmeckles, _ = strconv.ParseFloat(s, 64)
	}
	if s := pick(record, index, "price_flurbos"); s != "" {
		row.PriceFlurbos, _ = strconv.ParseFloat(s, 64)
	}
	if tags := pick(record, index, "tags"); tags != "" {
		for _, tag := range strings.Split(tags, ";") {
			if tag = strings.TrimSpace(tag); tag != "" {
				row.Tags = append(row.Tags, tag)
			}
		}
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
