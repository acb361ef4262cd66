// Command xbasectl inspects a .dbf file (and its optional .dbt companion),
// printing schema and record/memo statistics. It is a read-only demo of
// the xbase package, not a table editor.
package main

import (
	"fmt"
	"os"
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ulysses-xu/go-xbase"
	"github.com/ulysses-xu/go-xbase/structbind"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "xbasectl:", err)
		os.Exit(1)
	}
}

func run() error {
	pflag.String("dbf", "", "path to the .dbf file to inspect")
	pflag.String("dbt", "", "path to the companion .dbt file, if any")
	pflag.String("encoding", "utf-8", "text encoding for type-C fields")
	pflag.Bool("struct", false, "demo structbind.Bind against the first live row")
	pflag.Parse()

	v := viper.New()
	v.BindPFlags(pflag.CommandLine)
	v.SetEnvPrefix("XBASECTL")
	v.AutomaticEnv()

	dbfPath := v.GetString("dbf")
	if dbfPath == "" {
		return fmt.Errorf("--dbf is required")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	dbfBytes, err := os.ReadFile(dbfPath)
	if err != nil {
		return err
	}

	reader := xbase.NewReader()
	reader.Encoding = xbase.NewEncodingConverter(v.GetString("encoding"))
	schema, err := reader.Read(dbfBytes)
	if err != nil {
		return err
	}

	sugar.Infow("loaded table", "path", dbfPath, "size", humanize.Bytes(uint64(len(dbfBytes))))

	fmt.Printf("%s (%s)\n", dbfPath, humanize.Bytes(uint64(len(dbfBytes))))
	fmt.Printf("columns:\n")
	for _, c := range schema.Columns() {
		fmt.Printf("  %-10s %c width=%d\n", c.Name, c.Type, c.Width)
	}
	fmt.Printf("records: %s live, %s deleted\n",
		humanize.Comma(int64(len(schema.LiveRows()))),
		humanize.Comma(int64(len(schema.DeletedRows()))))

	if dbtPath := v.GetString("dbt"); dbtPath != "" {
		dbtBytes, err := os.ReadFile(dbtPath)
		if err != nil {
			return err
		}
		merged, err := xbase.ReadMemosMerged(dbtBytes)
		if err != nil {
			return err
		}
		fmt.Printf("memo file: %s (%s), %d memos\n", dbtPath, humanize.Bytes(uint64(len(dbtBytes))), len(merged)-1)
	}

	if v.GetBool("struct") {
		if err := printFirstRowAsStruct(schema); err != nil {
			return err
		}
	}

	return nil
}

// printFirstRowAsStruct demonstrates xbase/structbind against a table whose
// columns aren't known at compile time: it builds a throwaway struct type
// with one string field per column, tagged xbase:"<column name>", binds it,
// and scans the first live row through structbind.Binder.Scan.
func printFirstRowAsStruct(schema *xbase.Schema) error {
	rows := schema.LiveRows()
	if len(rows) == 0 {
		fmt.Println("struct demo: no live rows to bind")
		return nil
	}

	columns := schema.Columns()
	fields := make([]reflect.StructField, len(columns))
	for i, c := range columns {
		fields[i] = reflect.StructField{
			Name: fmt.Sprintf("F%d", i),
			Type: reflect.TypeOf(""),
			Tag:  reflect.StructTag(fmt.Sprintf(`xbase:%q`, c.Name)),
		}
	}
	structType := reflect.StructOf(fields)

	binder, err := structbind.Bind(schema, structType)
	if err != nil {
		return err
	}

	dest := reflect.New(structType)
	if err := binder.Scan(rows[0], dest.Interface()); err != nil {
		return err
	}

	fmt.Println("struct demo (first live row):")
	elem := dest.Elem()
	for i, c := range columns {
		fmt.Printf("  %-10s = %q\n", c.Name, elem.Field(i).String())
	}
	return nil
}
