// Package structbind is an optional reflect-based convenience layer that
// binds a Go struct type to a locked xbase.Schema's columns via an
// `xbase:"column"` struct tag, adapted from the teacher repo's
// reflect.Value + struct-tag approach (init.go's initModel, read.go's
// getRecord, write.go's Append). It is additive: xbase's canonical API is
// the plain string-row Schema/Writer/Reader.
package structbind

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/ulysses-xu/go-xbase"
)

// Binder maps between a Go struct type and a Schema's row columns.
type Binder struct {
	columns     []xbase.Column
	fieldByCol  map[string]int
	structType  reflect.Type
}

// Bind validates that structType (a struct, or pointer to struct) has an
// exported field tagged `xbase:"col"` for every column in schema, and
// returns a Binder that can Scan into / produce Values from instances of
// it. schema must be locked.
func Bind(schema *xbase.Schema, structType reflect.Type) (*Binder, error) {
	if !schema.Locked() {
		return nil, errors.New("structbind: schema must be locked before binding")
	}
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return nil, errors.Errorf("structbind: need a struct type, got %s", structType.Kind())
	}

	fieldByCol := make(map[string]int)
	for i := 0; i < structType.NumField(); i++ {
		f := structType.Field(i)
		tag := f.Tag.Get("xbase")
		if tag == "" {
			continue
		}
		fieldByCol[tag] = i
	}

	columns := schema.Columns()
	for _, c := range columns {
		if _, ok := fieldByCol[c.Name]; !ok {
			return nil, errors.Errorf("structbind: struct %s has no field tagged xbase:%q for schema column", structType.Name(), c.Name)
		}
	}

	return &Binder{columns: columns, fieldByCol: fieldByCol, structType: structType}, nil
}

// Scan populates dest (a pointer to the bound struct type) from a Schema
// row, converting each string field value per the column's struct field
// kind - generalizing the teacher's getRecord switch over
// string/int-family/uint-family/float-family to also cover bool (L
// columns) and time.Time (D/@ columns).
func (b *Binder) Scan(row []string, dest interface{}) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("structbind: Scan requires a non-nil pointer")
	}
	rv = rv.Elem()
	if rv.Type() != b.structType {
		return errors.Errorf("structbind: Scan destination is %s, binder is for %s", rv.Type(), b.structType)
	}
	if len(row) != len(b.columns) {
		return errors.Errorf("structbind: row has %d values, schema has %d columns", len(row), len(b.columns))
	}

	for i, c := range b.columns {
		fieldIndex := b.fieldByCol[c.Name]
		fv := rv.Field(fieldIndex)
		if err := setField(fv, c, row[i]); err != nil {
			return errors.Wrapf(err, "structbind: column %q", c.Name)
		}
	}
	return nil
}

// Values produces a Schema row from src (the bound struct type or a
// pointer to it), in schema column order - the inverse of Scan,
// generalizing the teacher's Append.
func (b *Binder) Values(src interface{}) ([]string, error) {
	rv := reflect.ValueOf(src)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Type() != b.structType {
		return nil, errors.Errorf("structbind: Values source is %s, binder is for %s", rv.Type(), b.structType)
	}

	row := make([]string, len(b.columns))
	for i, c := range b.columns {
		fieldIndex := b.fieldByCol[c.Name]
		fv := rv.Field(fieldIndex)
		v, err := fieldValue(fv, c)
		if err != nil {
			return nil, errors.Wrapf(err, "structbind: column %q", c.Name)
		}
		row[i] = v
	}
	return row, nil
}

func setField(fv reflect.Value, c xbase.Column, value string) error {
	if c.Type == xbase.Date && fv.Type() == reflect.TypeOf(time.Time{}) {
		t, err := xbase.DBFToDate(value)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(t))
		return nil
	}
	if c.Type == xbase.Timestamp && fv.Type() == reflect.TypeOf(time.Time{}) {
		t, err := xbase.TimestampToDate(value)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(t))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(value)
	case reflect.Bool:
		known, ok := xbase.DBFToBool(boolByte(value))
		_ = ok
		fv.SetBool(known)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(trimSpace(value), 10, 64)
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(trimSpace(value), 10, 64)
		if err != nil {
			return err
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(trimSpace(value), 64)
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	default:
		return fmt.Errorf("unsupported destination kind %s", fv.Kind())
	}
	return nil
}

func fieldValue(fv reflect.Value, c xbase.Column) (string, error) {
	if fv.Type() == reflect.TypeOf(time.Time{}) {
		t := fv.Interface().(time.Time)
		if c.Type == xbase.Timestamp {
			return xbase.DateToTimestamp(t), nil
		}
		return xbase.DateToDBF(t), nil
	}

	switch fv.Kind() {
	case reflect.String:
		return fv.String(), nil
	case reflect.Bool:
		return string(xbase.BoolToDBF(fv.Bool())), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(fv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(fv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(fv.Float(), 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported source kind %s", fv.Kind())
	}
}

func boolByte(s string) byte {
	if len(s) == 0 {
		return ' '
	}
	return s[0]
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == ' ' {
		start++
	}
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}
