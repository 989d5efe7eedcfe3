package files

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/farxc/prestacao-contas/internal/campaign/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/charmap"
)

var (
	ErrSourceUnavailable = errors.New("source file unavailable")
	ErrEmptySource       = errors.New("source file has no data rows")
	ErrMissingColumns    = errors.New("source header is missing required columns")
)

// MalformedRowError describes a line that was skipped while reading.
type MalformedRowError struct {
	Line int
	Err  error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row at line %d: %v", e.Line, e.Err)
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

var errFieldCount = errors.New("wrong number of fields")

// Row is one well-formed source line projected onto types.RequiredColumns.
type Row struct {
	Line   int
	Fields []string
}

// Reader streams rows out of a Latin-1, semicolon delimited extract.
type Reader struct {
	csv     *csv.Reader
	closer  io.Closer
	header  []string
	columns []int
}

// Open opens path and reads its header.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	r, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.closer = file
	return r, nil
}

// NewReader decodes src as ISO-8859-1 and reads its header. The header must
// contain every column of types.RequiredColumns; extra columns are ignored.
func NewReader(src io.Reader) (*Reader, error) {
	decoded := charmap.ISO8859_1.NewDecoder().Reader(src)

	cr := csv.NewReader(decoded)
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptySource
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrSourceUnavailable, err)
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}

	var missing []string
	columns := make([]int, len(types.RequiredColumns))
	for i, col := range types.RequiredColumns {
		pos, ok := positions[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		columns[i] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return &Reader{csv: cr, header: header, columns: columns}, nil
}

// Header returns the source header as read.
func (r *Reader) Header() []string {
	return r.header
}

// Next returns the next row. A skipped line is reported as a
// *MalformedRowError and the caller may keep calling Next. io.EOF marks the
// end of the input.
func (r *Reader) Next() (Row, error) {
	record, err := r.csv.Read()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return Row{}, &MalformedRowError{Line: pe.StartLine, Err: pe.Err}
		}
		return Row{}, err
	}

	line, _ := r.csv.FieldPos(0)
	if len(record) != len(r.header) {
		return Row{}, &MalformedRowError{
			Line: line,
			Err:  fmt.Errorf("%w: got %d, header has %d", errFieldCount, len(record), len(r.header)),
		}
	}

	fields := make([]string, len(r.columns))
	for i, pos := range r.columns {
		fields[i] = record[pos]
	}
	return Row{Line: line, Fields: fields}, nil
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Frame is the materialized source: one DataFrame row per well-formed line.
// Lines[i] is the source line of frame row i.
type Frame struct {
	DataFrame dataframe.DataFrame
	Lines     []int
	Malformed []*MalformedRowError
}

// RowsRead counts well-formed and malformed data lines.
func (f *Frame) RowsRead() int {
	return len(f.Lines) + len(f.Malformed)
}

// ReadFrame reads the whole file at path into a Frame.
func ReadFrame(path string) (*Frame, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ReadAll(r)
}

// ReadAll drains r into a Frame. Integer columns become series.Int, every
// other column series.String, and the null sentinel or an empty field is NaN.
func ReadAll(r *Reader) (*Frame, error) {
	frame := &Frame{}
	records := [][]string{types.RequiredColumns}

	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var me *MalformedRowError
		if errors.As(err, &me) {
			frame.Malformed = append(frame.Malformed, me)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}

		trimIntColumns(row.Fields)
		records = append(records, row.Fields)
		frame.Lines = append(frame.Lines, row.Line)
	}

	if len(frame.Lines) == 0 {
		return nil, ErrEmptySource
	}

	colTypes := make(map[string]series.Type, len(types.IntColumns))
	for _, col := range types.IntColumns {
		colTypes[col] = series.Int
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(colTypes),
		dataframe.NaNValues([]string{types.NullSentinel, ""}),
	)
	if err := df.Error(); err != nil {
		return nil, fmt.Errorf("build frame: %w", err)
	}

	frame.DataFrame = df
	return frame, nil
}

var intColumnIndex = func() []int {
	var idx []int
	for i, col := range types.RequiredColumns {
		for _, ic := range types.IntColumns {
			if col == ic {
				idx = append(idx, i)
			}
		}
	}
	return idx
}()

func trimIntColumns(fields []string) {
	for _, i := range intColumnIndex {
		fields[i] = strings.TrimSpace(fields[i])
	}
}
