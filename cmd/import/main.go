package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/httpapi/models"
)

// Bulk loader for seed data. Expects the classic dump layout:
//
//	category.csv     id,name,slug
//	genre.csv        id,name,slug
//	titles.csv       id,name,year,category
//	genre_title.csv  id,title_id,genre_id
//
// Each file loads inside its own transaction, in dependency order, with
// upsert-on-id so reruns are safe.
func main() {
	dataDir := flag.String("data", "data", "directory containing the CSV files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	steps := []struct {
		file string
		load func(tx *gorm.DB, rows [][]string) (int, error)
	}{
		{"category.csv", loadCategories},
		{"genre.csv", loadGenres},
		{"titles.csv", loadTitles},
		{"genre_title.csv", loadTitleGenres},
	}

	for _, step := range steps {
		path := filepath.Join(*dataDir, step.file)
		rows, err := readCSV(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}

		var count int
		err = db.Transaction(func(tx *gorm.DB) error {
			count, err = step.load(tx, rows)
			return err
		})
		if err != nil {
			log.Fatalf("Failed to import %s: %v", step.file, err)
		}
		logger.Info("imported", "file", step.file, "rows", count)
	}
}

// readCSV returns the data rows, header stripped.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

func loadCategories(tx *gorm.DB, rows [][]string) (int, error) {
	for i, row := range rows {
		if len(row) < 3 {
			return i, fmt.Errorf("row %d: expected id,name,slug", i+2)
		}
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return i, fmt.Errorf("row %d: bad id %q: %w", i+2, row[0], err)
		}
		c := models.Category{ID: id, Name: row[1], Slug: row[2]}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "slug"}),
		}).Create(&c).Error; err != nil {
			return i, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return len(rows), nil
}

func loadGenres(tx *gorm.DB, rows [][]string) (int, error) {
	for i, row := range rows {
		if len(row) < 3 {
			return i, fmt.Errorf("row %d: expected id,name,slug", i+2)
		}
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return i, fmt.Errorf("row %d: bad id %q: %w", i+2, row[0], err)
		}
		g := models.Genre{ID: id, Name: row[1], Slug: row[2]}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "slug"}),
		}).Create(&g).Error; err != nil {
			return i, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return len(rows), nil
}

func loadTitles(tx *gorm.DB, rows [][]string) (int, error) {
	for i, row := range rows {
		if len(row) < 4 {
			return i, fmt.Errorf("row %d: expected id,name,year,category", i+2)
		}
		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return i, fmt.Errorf("row %d: bad id %q: %w", i+2, row[0], err)
		}
		year, err := strconv.Atoi(row[2])
		if err != nil {
			return i, fmt.Errorf("row %d: bad year %q: %w", i+2, row[2], err)
		}

		t := models.Title{ID: id, Name: row[1], Year: year}
		if row[3] != "" {
			categoryID, err := strconv.ParseInt(row[3], 10, 64)
			if err != nil {
				return i, fmt.Errorf("row %d: bad category %q: %w", i+2, row[3], err)
			}
			t.CategoryID = &categoryID
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "year", "category_id"}),
		}).Create(&t).Error; err != nil {
			return i, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return len(rows), nil
}

// loadTitleGenres fills the m2m join table directly; the dump's own row id
// is ignored since the table is keyed on (title_id, genre_id).
func loadTitleGenres(tx *gorm.DB, rows [][]string) (int, error) {
	for i, row := range rows {
		if len(row) < 3 {
			return i, fmt.Errorf("row %d: expected id,title_id,genre_id", i+2)
		}
		titleID, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return i, fmt.Errorf("row %d: bad title_id %q: %w", i+2, row[1], err)
		}
		genreID, err := strconv.ParseInt(row[2], 10, 64)
		if err != nil {
			return i, fmt.Errorf("row %d: bad genre_id %q: %w", i+2, row[2], err)
		}
		err = tx.Exec(
			"INSERT INTO title_genres (title_id, genre_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			titleID, genreID,
		).Error
		if err != nil {
			return i, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return len(rows), nil
}
