package xbase

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ColumnType is the single-byte type tag used in a DBF field descriptor.
type ColumnType byte

const (
	String        ColumnType = 'C'
	Date          ColumnType = 'D'
	Float         ColumnType = 'F'
	Numeric       ColumnType = 'N'
	Bool          ColumnType = 'L'
	Memo          ColumnType = 'M'
	OLE           ColumnType = 'G'
	Binary        ColumnType = 'B'
	Long          ColumnType = 'I'
	Autoincrement ColumnType = '+'
	Double        ColumnType = 'O'
	Timestamp     ColumnType = '@'
)

// defaultWidths holds the width every fixed-width type is forced to at
// AddColumn time. Types absent from this map (String, Float, Numeric) keep
// whatever width the caller supplied.
var defaultWidths = map[ColumnType]int{
	Date:          8,
	Bool:          1,
	Memo:          10,
	OLE:           10,
	Binary:        10,
	Long:          4,
	Autoincrement: 4,
	Double:        8,
	Timestamp:     8,
}

// isMemoLike reports whether t stores its payload indirectly in the DBT file.
func isMemoLike(t ColumnType) bool {
	return t == Memo || t == OLE || t == Binary
}

func validColumnType(t ColumnType) bool {
	switch t {
	case String, Date, Float, Numeric, Bool, Memo, OLE, Binary, Long, Autoincrement, Double, Timestamp:
		return true
	default:
		return false
	}
}

// Column is a single field descriptor: name, type tag, and byte width.
// Immutable once added to a Schema.
type Column struct {
	Name  string
	Type  ColumnType
	Width int
}

// resolveWidth applies the default-width correction for fixed-width types,
// logging an advisory when the caller's requested width is overridden.
func resolveWidth(name string, t ColumnType, width int) int {
	if def, ok := defaultWidths[t]; ok && width != def {
		advisory("column %q: width %d overridden to default %d for type %q", name, width, def, string(t))
		return def
	}
	return width
}

// NewColumn validates and constructs a Column, applying default-width
// correction. It does not check the column against a Schema's lock state;
// that is Schema.AddColumn's job.
func NewColumn(name string, t ColumnType, width int) (Column, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Column{}, &ColumnAddError{cause: errors.New("column name empty after trimming whitespace")}
	}
	if len(name) > 32 {
		return Column{}, &ColumnAddError{cause: errors.Errorf("column name %q exceeds 32 bytes", name)}
	}
	if !validColumnType(t) {
		return Column{}, &ColumnAddError{cause: errors.Errorf("unknown column type %q", string(t))}
	}
	width = resolveWidth(trimmed, t, width)
	if width < 1 || width > 254 {
		return Column{}, &ColumnAddError{cause: errors.Errorf("column %q: width %d out of range [1,254]", trimmed, width)}
	}
	return Column{Name: trimmed, Type: t, Width: width}, nil
}

// BoolToDBF converts a boolean to its single DBF character representation.
func BoolToDBF(v bool) byte {
	if v {
		return 'T'
	}
	return 'F'
}

// DBFToBool parses a DBF logical-field byte. Unknown ('?' or space) yields
// (false, false).
func DBFToBool(b byte) (value bool, known bool) {
	switch b {
	case 'T', 't', 'Y', 'y':
		return true, true
	case 'F', 'f', 'N', 'n':
		return false, true
	default:
		return false, false
	}
}

// DateToDBF formats a time.Time as the 8-digit YYYYMMDD field representation.
func DateToDBF(d time.Time) string {
	return d.Format("20060102")
}

// DBFToDate parses an 8-digit YYYYMMDD field value.
func DBFToDate(s string) (time.Time, error) {
	return time.Parse("20060102", s)
}

// julianDayNumber returns the day count of d from 4713-01-01 BC (proleptic
// Julian), the documented epoch for the Timestamp column type's day-count
// half.
//
// time.Time can't represent a BC proleptic-Julian date directly, so the
// day count is computed via the standard Julian Day Number algorithm
// relative to the Gregorian calendar, matching how xBase timestamp fields
// are produced by real-world tools.
func julianDayNumber(d time.Time) int64 {
	y, m, day := d.Date()
	a := (14 - int(m)) / 12
	y2 := int64(y) + 4800 - int64(a)
	m2 := int64(m) + 12*int64(a) - 3
	return int64(day) + (153*m2+2)/5 + 365*y2 + y2/4 - y2/100 + y2/400 - 32045
}

func dateFromJulianDayNumber(jdn int64) time.Time {
	a := jdn + 32044
	b := (4*a + 3) / 146097
	c := a - (146097*b)/4
	d := (4*c + 3) / 1461
	e := c - (1461*d)/4
	m := (5*e + 2) / 153
	day := e - (153*m+2)/5 + 1
	month := m + 3 - 12*(m/10)
	year := 100*b + d - 4800 + m/10
	return time.Date(int(year), time.Month(month), int(day), 0, 0, 0, 0, time.UTC)
}

// DateToTimestamp renders a time.Time as the Timestamp column's model-level
// string form: "<days> <ms>", days since the proleptic-Julian epoch and
// milliseconds since midnight.
func DateToTimestamp(d time.Time) string {
	days := julianDayNumber(d)
	ms := ((d.Hour()*3600 + d.Minute()*60 + d.Second()) * 1000) + d.Nanosecond()/1e6
	return strconv.FormatInt(days, 10) + " " + strconv.Itoa(ms)
}

// TimestampToDate inverts DateToTimestamp.
func TimestampToDate(s string) (time.Time, error) {
	parts := strings.SplitN(s, " ", 2)
	if len(parts) != 2 {
		return time.Time{}, errors.Errorf("malformed timestamp string %q", s)
	}
	days, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "malformed timestamp day count %q", parts[0])
	}
	ms, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "malformed timestamp millisecond offset %q", parts[1])
	}
	base := dateFromJulianDayNumber(days)
	return base.Add(time.Duration(ms) * time.Millisecond), nil
}
