package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	ColumnTitle    = "title"
	ColumnYear     = "year_of_release"
	ColumnGenre    = "genre"
	ColumnEpisodes = "number_of_episodes"

	DefaultGenreDelimiter = ", "
)

var requiredColumns = []string{ColumnTitle, ColumnYear, ColumnGenre, ColumnEpisodes}

type LoadOptions struct {
	GenreDelimiter string
	// Fetcher is used for http(s) sources. A nil Fetcher uses http.DefaultClient.
	Fetcher *Fetcher
}

// Load reads a dataset from a local .csv/.xlsx file or an http(s) URL.
func Load(ctx context.Context, source string, opts LoadOptions) (*Dataset, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.New("dataset source is required")
	}

	if isRemote(source) {
		fetcher := opts.Fetcher
		if fetcher == nil {
			fetcher = NewFetcher(nil)
		}
		body, err := fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		if isXLSX(remotePath(source)) {
			return ParseXLSX(bytes.NewReader(body), opts.GenreDelimiter)
		}
		return ParseCSV(bytes.NewReader(body), opts.GenreDelimiter)
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	if isXLSX(source) {
		return ParseXLSX(file, opts.GenreDelimiter)
	}
	return ParseCSV(file, opts.GenreDelimiter)
}

func ParseCSV(r io.Reader, genreDelimiter string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset csv: %w", err)
	}
	return parseRows(rows, genreDelimiter)
}

// ParseXLSX reads the first sheet of a workbook.
func ParseXLSX(r io.Reader, genreDelimiter string) (*Dataset, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open dataset workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("dataset workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return parseRows(rows, genreDelimiter)
}

func parseRows(rows [][]string, genreDelimiter string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.New("dataset is missing a header row")
	}
	if genreDelimiter == "" {
		genreDelimiter = DefaultGenreDelimiter
	}

	index := make(map[string]int, len(rows[0]))
	for idx, name := range rows[0] {
		column := NormalizeColumn(name)
		if _, exists := index[column]; !exists {
			index[column] = idx
		}
	}

	missing := make([]string, 0)
	for _, column := range requiredColumns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("dataset is missing columns: %s", strings.Join(missing, ", "))
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}

		record := Record{
			Title: cell(row, index[ColumnTitle]),
			Genre: cell(row, index[ColumnGenre]),
		}
		record.Year, record.HasYear = parseCount(cell(row, index[ColumnYear]))
		record.Episodes, record.HasEpisodes = parseCount(cell(row, index[ColumnEpisodes]))
		record.Genres = splitGenres(record.Genre, genreDelimiter)
		records = append(records, record)
	}

	return New(records), nil
}

// NormalizeColumn maps a raw header such as " Year of Release" to
// "year_of_release".
func NormalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.TrimSpace(name)
	name = cases.Lower(language.Und).String(name)
	return strings.ReplaceAll(name, " ", "_")
}

func splitGenres(raw, delimiter string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, delimiter)
	genres := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			genres = append(genres, part)
		}
	}
	return genres
}

// parseCount accepts non-negative integers written as "16" or "16.0".
func parseCount(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	if value, err := strconv.Atoi(raw); err == nil {
		if value < 0 {
			return 0, false
		}
		return value, true
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 || value != math.Trunc(value) {
		return 0, false
	}
	if value > math.MaxInt32 {
		return 0, false
	}
	return int(value), true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func isXLSX(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

func remotePath(source string) string {
	if idx := strings.IndexAny(source, "?#"); idx >= 0 {
		source = source[:idx]
	}
	return path.Base(source)
}
