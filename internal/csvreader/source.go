package csvreader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"gw-transaction-batch/internal/custom_err"
)

// Row сырая строка входного файла
type Row struct {
	Line   int
	Fields []string
}

// Source читает CSV с транзакциями. Первая строка считается заголовком и пропускается.
type Source struct {
	file *os.File
	path string
}

// Open открывает источник по пути или file:// URL
func Open(location string) (*Source, error) {
	const op = "csvreader.Open"

	path := strings.TrimPrefix(strings.TrimSpace(location), "file://")
	if path == "" {
		return nil, fmt.Errorf("%s: %w: empty location", op, custom_err.ErrSourceUnavailable)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, custom_err.ErrSourceUnavailable, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w: %v", op, custom_err.ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s: %w: %s is a directory", op, custom_err.ErrSourceUnavailable, path)
	}

	return &Source{file: f, path: path}, nil
}

func (s *Source) Path() string { return s.path }

// Rows возвращает ленивую последовательность строк. Каждый новый обход читает файл с начала.
// Строка, которую не удалось токенизировать, отдается с ошибкой ErrParseFault, и чтение продолжается.
// Любая другая ошибка чтения завершает последовательность.
func (s *Source) Rows() iter.Seq2[Row, error] {
	const op = "csvreader.Rows"

	return func(yield func(Row, error) bool) {
		if _, err := s.file.Seek(0, io.SeekStart); err != nil {
			yield(Row{}, fmt.Errorf("%s: %w: %v", op, custom_err.ErrSourceUnavailable, err))
			return
		}

		r := csv.NewReader(s.file)
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		r.TrimLeadingSpace = true

		header := true
		for {
			fields, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}

			if header {
				header = false
				if err == nil || isParseError(err) {
					continue
				}
			}

			if err != nil {
				var pe *csv.ParseError
				if errors.As(err, &pe) {
					if !yield(Row{Line: pe.StartLine}, fmt.Errorf("%s: %w: line %d: %v", op, custom_err.ErrParseFault, pe.StartLine, pe.Err)) {
						return
					}
					continue
				}
				yield(Row{}, fmt.Errorf("%s: %w", op, err))
				return
			}

			line, _ := r.FieldPos(0)
			if !yield(Row{Line: line, Fields: fields}, nil) {
				return
			}
		}
	}
}

func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func isParseError(err error) bool {
	var pe *csv.ParseError
	return errors.As(err, &pe)
}
