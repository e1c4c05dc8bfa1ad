package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Generates sample coupon book files for local development. Each line is
// "CODE,PERCENT"; later files win on duplicate codes when merged.
func main() {
	dataDir := "data/coupons"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	books := map[string][]string{
		"couponbook1.gz": {
			"SUMMER25,25",
			"WELCOME5,5",
			"FLASH50,50",
		},
		"couponbook2.gz": {
			"WINTER15,15",
			"LOYAL20,20",
			"WELCOME5,7.5", // overrides book 1 when loaded after it
		},
	}

	for filename, lines := range books {
		filePath := filepath.Join(dataDir, filename)

		if err := createBookFile(filePath, lines); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d codes\n", filePath, len(lines))
	}

	fmt.Println("\nSample coupon book files created.")
	fmt.Printf("Run the server with COUPON_FILES=%s/couponbook1.gz,%s/couponbook2.gz\n", dataDir, dataDir)
	fmt.Println("The built-in FIRST10 code is always available.")
}

// createBookFile writes a gzipped coupon book file.
func createBookFile(filePath string, lines []string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, line := range lines {
		if _, err := gzipWriter.Write([]byte(line + "\n")); err != nil {
			return fmt.Errorf("failed to write line: %w", err)
		}
	}

	return nil
}
