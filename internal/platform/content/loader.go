package content

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ErrMissingColumn is returned when a required header column is absent.
var ErrMissingColumn = errors.New("missing required column")

var levelFile = regexp.MustCompile(`^level(\d+)\.(csv|xlsx)$`)

// Load reads a catalog from a file or a directory of level files.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open content: %w", err)
	}

	if !info.IsDir() {
		items, err := loadFile(path, 0)
		if err != nil {
			return nil, err
		}
		return New(items)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list content directory: %w", err)
	}

	var items []domain.ContentItem
	for _, e := range entries {
		m := levelFile.FindStringSubmatch(strings.ToLower(e.Name()))
		if e.IsDir() || m == nil {
			continue
		}
		level, _ := strconv.Atoi(m[1])
		levelItems, err := loadFile(filepath.Join(path, e.Name()), level)
		if err != nil {
			return nil, err
		}
		items = append(items, levelItems...)
	}
	return New(items)
}

// loadFile reads one file. A level > 0 applies to every row; otherwise the
// file must carry a level column.
func loadFile(path string, level int) ([]domain.ContentItem, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported content file %q", path)
	}
	if err != nil {
		return nil, err
	}

	items, err := parseRows(rows, level)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(f)
}

// ReadCSV reads every record of r. Rows may have a varying number of fields.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

type columns struct {
	level, id, prompt, answer, hint int
}

func parseHeader(header []string) (columns, error) {
	cols := columns{level: -1, id: -1, prompt: -1, answer: -1, hint: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "level":
			cols.level = i
		case "id", "content_id":
			cols.id = i
		case "prompt":
			cols.prompt = i
		case "answer":
			cols.answer = i
		case "hint":
			cols.hint = i
		}
	}
	if cols.prompt < 0 {
		return cols, fmt.Errorf("%w: prompt", ErrMissingColumn)
	}
	if cols.answer < 0 {
		return cols, fmt.Errorf("%w: answer", ErrMissingColumn)
	}
	return cols, nil
}

func parseRows(rows [][]string, fixedLevel int) ([]domain.ContentItem, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols, err := parseHeader(rows[0])
	if err != nil {
		return nil, err
	}
	if fixedLevel == 0 && cols.level < 0 {
		return nil, fmt.Errorf("%w: level", ErrMissingColumn)
	}

	positions := make(map[int]int)
	items := make([]domain.ContentItem, 0, len(rows)-1)
	for n, row := range rows[1:] {
		item := domain.ContentItem{
			Level:  fixedLevel,
			Prompt: cell(row, cols.prompt),
			Answer: cell(row, cols.answer),
			Hint:   cell(row, cols.hint),
		}
		if item.Prompt == "" || item.Answer == "" {
			continue
		}
		if fixedLevel == 0 {
			level, err := strconv.Atoi(cell(row, cols.level))
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid level: %w", n+2, err)
			}
			item.Level = level
		}

		positions[item.Level]++
		item.ID = domain.ContentID(cell(row, cols.id))
		if item.ID == "" {
			item.ID = domain.ContentID(strconv.Itoa(positions[item.Level]))
		}
		items = append(items, item)
	}
	return items, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
