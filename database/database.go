package database

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/SirZenith/kgebench/database/data_model"
	"github.com/glebarez/sqlite"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// table name -> model, names follow gorm's naming strategy
var models = map[string]data_model.DataModel{
	"trial_entries": &data_model.TrialEntry{},
}

// GetModel returns model value for given table name, nil for unknown table.
func GetModel(tableName string) data_model.DataModel {
	if model, ok := models[tableName]; ok {
		return model
	}
	return nil
}

// TableNames lists all tables managed by this package.
func TableNames() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func Open(filePath string) (*gorm.DB, error) {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %s", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(filePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %s", filePath, err)
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	for _, name := range TableNames() {
		if err := db.AutoMigrate(models[name]); err != nil {
			return fmt.Errorf("database migration of %s failed: %s", name, err)
		}
	}

	return nil
}

func Close(db *gorm.DB) error {
	inner, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to close database, can't read inner data: %s", err)
	}

	err = inner.Close()
	if err != nil {
		return fmt.Errorf("failed to close inner database: %s", err)
	}

	return nil
}

// ExportTable writes all rows of table to a delimiter separated file.
func ExportTable(db *gorm.DB, tableName string, outputPath string, delimiter rune) error {
	model := GetModel(tableName)
	if model == nil {
		return fmt.Errorf("invalid table name %q", tableName)
	}

	rows, err := db.Model(model).Rows()
	if err != nil {
		return fmt.Errorf("failed to make query to table %s: %s", tableName, err)
	}
	defer rows.Close()

	converter := New(rows)
	converter.Delimiter = delimiter
	converter.FloatFormat = "%.6g"

	return converter.WriteFile(outputPath)
}
