package manifest

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// WriteCSV writes a manifest with every cell quoted. The carrier portals
// parse uploads with quoting switched on for all cells, and encoding/csv
// only quotes cells that need it, so the quoting is done by hand: each cell
// wrapped in double quotes with embedded quotes doubled. The output still
// round-trips through any standard CSV reader.
func WriteCSV(w io.Writer, template *Template, rows []Row) error {
	for _, row := range rows {
		if err := template.ValidateRow(row); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, template.Headers()); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRecord(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(bw *bufio.Writer, cells []string) error {
	for i, cell := range cells {
		if i > 0 {
			if err := bw.WriteByte(','); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('"'); err != nil {
			return err
		}
		if _, err := bw.WriteString(strings.ReplaceAll(cell, `"`, `""`)); err != nil {
			return err
		}
		if err := bw.WriteByte('"'); err != nil {
			return err
		}
	}
	return bw.WriteByte('\n')
}

// WriteCSVFile writes the manifest to path, replacing any existing file.
func WriteCSVFile(path string, template *Template, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest file: %w", err)
	}

	if err := WriteCSV(f, template, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close manifest file: %w", err)
	}

	slog.Info("Wrote manifest",
		"path", path,
		"template", template.Name,
		"rows", len(rows))

	return nil
}
