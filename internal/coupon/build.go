package coupon

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// BuildBook loads every configured coupon book file concurrently and merges
// the results on top of the built-in book. With no files configured the
// built-in book alone is returned.
func BuildBook(ctx context.Context, filePaths []string, loader Loader, logger zerolog.Logger) (Book, error) {
	logger = logger.With().Str("component", "coupon-book").Logger()

	if len(filePaths) == 0 {
		logger.Info().Msg("no coupon book files configured, using built-in book")
		return Static(), nil
	}

	type loadResult struct {
		index int
		book  Book
		err   error
	}

	resultChan := make(chan loadResult, len(filePaths))
	var wg sync.WaitGroup

	for i, filePath := range filePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			book, err := loader.Load(ctx, path)
			resultChan <- loadResult{index: index, book: book, err: err}
		}(i, filePath)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(filePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	books := []Book{Static()}
	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", filePaths[i]).
				Msg("failed to load coupon book file")
			return nil, fmt.Errorf("failed to load coupon book file %s: %w", filePaths[i], result.err)
		}
		books = append(books, result.book)
	}

	merged := Merge(books...)

	logger.Info().
		Int("files", len(filePaths)).
		Int("codes", merged.Size()).
		Msg("coupon book ready")

	return merged, nil
}
