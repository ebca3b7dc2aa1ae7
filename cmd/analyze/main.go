// Command analyze ranks the most common keywords of one column in a
// transaction CSV or XLSX export, without starting the web service.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MisterMushn/bilanzieren/internal/analysis"
	"github.com/MisterMushn/bilanzieren/internal/ingest"
	"github.com/MisterMushn/bilanzieren/internal/tabular"
	"github.com/MisterMushn/bilanzieren/pkg/contracts/domain"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(os.Args[1:], os.Stdout); err != nil {
		logger.Error("analyze failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("analyze", flag.ContinueOnError)
	var (
		in     = flags.String("in", "", "input CSV or XLSX file")
		column = flags.String("column", "", "text column to analyze")
		top    = flags.Int("top", 30, "number of keywords to report")
		minLen = flags.Int("min-len", analysis.DefaultMinTokenLen, "minimum keyword length in runes")
		out    = flags.String("out", "", "output CSV file (default stdout)")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *in == "" || *column == "" {
		flags.Usage()
		return fmt.Errorf("both -in and -column are required")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	table, err := loadTable(*in, data)
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	rows, err := analysis.MostCommon(table, *column, *top, *minLen)
	if err != nil {
		return err
	}

	dest := stdout
	if *out != "" {
		file, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		dest = file
	}
	return writeRanking(dest, rows)
}

func loadTable(filename string, data []byte) (*tabular.Table, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ingest.XLSX(data)
	}
	return ingest.CSV(data)
}

func writeRanking(w io.Writer, rows []domain.FrequencyRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"keyword", "count", "share"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Keyword,
			strconv.Itoa(row.Count),
			strconv.FormatFloat(row.Share, 'f', 4, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
