package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// fileLoader implements Loader for gzipped coupon book files on disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based coupon book loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-loader").Logger(),
	}
}

// Load reads a gzipped coupon book file. Each line is "CODE,PERCENT" with
// percent in the range 0-100; malformed lines are skipped with a warning.
func (l *fileLoader) Load(ctx context.Context, filePath string) (Book, error) {
	l.logger.Info().Str("file", filePath).Msg("loading coupon book file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open coupon book file")
		return nil, fmt.Errorf("failed to open coupon book file %s: %w", filePath, err)
	}
	defer file.Close()

	book, err := readBook(ctx, file, l.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to read coupon book file %s: %w", filePath, err)
	}

	l.logger.Info().Str("file", filePath).Int("codes", book.Size()).Msg("coupon book file loaded")

	return book, nil
}

// readBook parses a gzipped CODE,PERCENT stream into a Book.
func readBook(ctx context.Context, r io.Reader, logger zerolog.Logger) (Book, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	book := NewMapBook(1024)

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineCount := 0
	for scanner.Scan() {
		if lineCount%100_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		lineCount++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		code, percentStr, ok := strings.Cut(line, ",")
		if !ok {
			logger.Warn().Int("line", lineCount).Msg("skipping coupon book line without percent")
			continue
		}

		percent, err := decimal.NewFromString(strings.TrimSpace(percentStr))
		if err != nil || percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
			logger.Warn().Int("line", lineCount).Str("code", code).Msg("skipping coupon with invalid percent")
			continue
		}

		book.Add(strings.TrimSpace(code), percent)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan coupon book: %w", err)
	}

	return book, nil
}
