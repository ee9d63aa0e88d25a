package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/abdulachik/wisdomcard/internal/logging"
)

// corpusColumns is the CSV layout: name_en, name_kr, wisdom_en, wisdom_kr.
const corpusColumns = 4

// ImportCSV inserts every complete row of the corpus CSV (header skipped)
// in one transaction and returns the number of quotes inserted. Rows that do
// not have exactly four fields are skipped.
func (s *Store) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	logger := logging.FromContext(ctx)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("read header: %w", err)
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.Queries.WithTx(tx)
	inserted, skipped := 0, 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read row %d: %w", inserted+skipped+2, err)
		}
		if len(record) != corpusColumns {
			skipped++
			continue
		}

		if _, err := qtx.CreateQuote(ctx, CreateQuoteParams{
			AuthorNameLatin:  record[0],
			AuthorNameNative: record[1],
			QuoteLatin:       record[2],
			QuoteNative:      record[3],
		}); err != nil {
			return 0, fmt.Errorf("insert quote: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	logger.Info("imported corpus", "inserted", inserted, "skipped", skipped)
	return inserted, nil
}

// ImportCSVFile imports the corpus from path.
func (s *Store) ImportCSVFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	return s.ImportCSV(ctx, f)
}

// Bootstrap imports the corpus CSV when the quotes table is empty. A missing
// CSV file is logged and ignored.
func (s *Store) Bootstrap(ctx context.Context, csvPath string) (int, error) {
	logger := logging.FromContext(ctx)

	count, err := s.CountQuotes(ctx)
	if err != nil {
		return 0, fmt.Errorf("count quotes: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	if _, err := os.Stat(csvPath); os.IsNotExist(err) {
		logger.Warn("corpus CSV not found, starting with an empty corpus", "path", csvPath)
		return 0, nil
	}

	return s.ImportCSVFile(ctx, csvPath)
}
