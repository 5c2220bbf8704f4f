package models

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Column mismatch report

Set GENERATE_COLUMN_REPORT=true and start the binary. For every table owned by
this service the report lists columns that exist in the database but have no
field in the Go model, e.g.

	--- Table: projects ---
	Found 1 columns not accounted for in model:
	  - legacy_slug

Set GENERATE_MODELS=true to migrate the schema and emit typed query helpers
into ./generated with gorm/gen.
*/

// TableReport lists the columns of one table that no model field maps to.
type TableReport struct {
	Table         string
	Missing       bool
	Unaccounted   []string
	ModelColumns  []string
	DatabaseError error
}

// GenerateModels migrates every model and emits gorm/gen query code.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	verbose := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)
	migrateDB := db.Session(&gorm.Session{
		Logger:                 verbose,
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("migrate models: %w", err)
	}

	reports, err := ColumnMismatchReport(db)
	if err != nil {
		return err
	}
	WriteColumnReport(os.Stdout, reports)

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)
	g.Execute()
	return nil
}

// ColumnMismatchReport compares every table's columns against the model fields.
func ColumnMismatchReport(db *gorm.DB) ([]TableReport, error) {
	var reports []TableReport

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}

		report := TableReport{
			Table:        stmt.Schema.Table,
			ModelColumns: append([]string(nil), stmt.Schema.DBNames...),
		}

		if !db.Migrator().HasTable(model) {
			report.Missing = true
			reports = append(reports, report)
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			report.DatabaseError = err
			reports = append(reports, report)
			continue
		}

		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}
		report.Unaccounted = findColumnMismatches(dbColumns, report.ModelColumns)
		reports = append(reports, report)
	}

	return reports, nil
}

// WriteColumnReport prints reports in the human readable layout shown above.
func WriteColumnReport(w io.Writer, reports []TableReport) {
	fmt.Fprintln(w, "=== COLUMN MISMATCH REPORT ===")

	total := 0
	for _, r := range reports {
		fmt.Fprintf(w, "\n--- Table: %s ---\n", r.Table)
		switch {
		case r.Missing:
			fmt.Fprintln(w, "Table does not exist yet (will be created during migration)")
		case r.DatabaseError != nil:
			fmt.Fprintf(w, "Error getting columns: %v\n", r.DatabaseError)
		case len(r.Unaccounted) > 0:
			fmt.Fprintf(w, "Found %d columns not accounted for in model:\n", len(r.Unaccounted))
			for _, col := range r.Unaccounted {
				fmt.Fprintf(w, "  - %s\n", col)
			}
			total += len(r.Unaccounted)
		default:
			fmt.Fprintln(w, "All columns are accounted for in the model.")
		}
	}

	fmt.Fprintf(w, "\n=== SUMMARY ===\n")
	fmt.Fprintf(w, "Total mismatched columns across all tables: %d\n", total)
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}
	sort.Strings(mismatches)
	return mismatches
}
