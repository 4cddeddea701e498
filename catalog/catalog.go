// Package catalog serves the two static reference datasets (Kepler and TESS
// objects of interest) behind paginated, read-only queries.
package catalog

import (
	"database/sql"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Object is one catalog row. Numeric fields are nullable because the source
// archives leave many columns blank.
type Object struct {
	ID          int64    `json:"id"`
	Name        string   `json:"object_name"`
	Mission     string   `json:"mission"`
	Disposition string   `json:"disposition"`
	PeriodDays  *float64 `json:"period_days"`
	RadiusEarth *float64 `json:"radius_earth"`
	EqTempK     *float64 `json:"eq_temp_k"`
	SNR         *float64 `json:"snr"`
	Magnitude   *float64 `json:"magnitude"`
}

type Page struct {
	Data       []Object `json:"data"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalItems int      `json:"total_items"`
	TotalPages int      `json:"total_pages"`
}

type DatasetInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

var datasetTables = map[string]string{
	"kepler": "kepler_objects",
	"tess":   "tess_objects",
}

var datasetInfos = map[string]DatasetInfo{
	"kepler": {
		Name:        "Kepler Objects of Interest",
		Description: "Planetary candidates and confirmed planets from the Kepler mission",
		Source:      "NASA Exoplanet Archive",
	},
	"tess": {
		Name:        "TESS Objects of Interest",
		Description: "Planetary candidates and confirmed planets from the TESS mission",
		Source:      "NASA Exoplanet Archive",
	},
}

// Store reads the catalogs. Pages are LRU-cached: the datasets are static, so
// entries never need invalidation.
type Store struct {
	db    *sql.DB
	cache *lru.Cache[string, *Page]
}

func NewStore(db *sql.DB) (*Store, error) {
	cache, err := lru.New[string, *Page](128)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

// Info returns the dataset description block, or false for an unknown dataset.
func Info(dataset string) (DatasetInfo, bool) {
	info, ok := datasetInfos[dataset]
	return info, ok
}

// List returns one page of a dataset, newest entries first by rowid.
func (s *Store) List(dataset string, page, limit int) (*Page, error) {
	table, ok := datasetTables[dataset]
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q", dataset)
	}

	key := fmt.Sprintf("%s:%d:%d", dataset, page, limit)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT id, object_name, disposition, period_days, radius_earth, eq_temp_k, snr, magnitude
         FROM `+table+` ORDER BY id LIMIT ? OFFSET ?`,
		limit, (page-1)*limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	objects, err := scanObjects(rows, dataset)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	result := &Page{
		Data:       objects,
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages,
	}
	s.cache.Add(key, result)
	return result, nil
}

// Seed inserts reference rows, storing a folded name column for search.
func Seed(db *sql.DB, dataset string, objects []Object) error {
	table, ok := datasetTables[dataset]
	if !ok {
		return fmt.Errorf("unknown dataset %q", dataset)
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		`INSERT INTO ` + table + ` (object_name, name_folded, disposition, period_days, radius_earth, eq_temp_k, snr, magnitude)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, obj := range objects {
		_, err := stmt.Exec(obj.Name, Fold(obj.Name), obj.Disposition,
			obj.PeriodDays, obj.RadiusEarth, obj.EqTempK, obj.SNR, obj.Magnitude)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func scanObjects(rows *sql.Rows, mission string) ([]Object, error) {
	objects := []Object{}
	for rows.Next() {
		var obj Object
		obj.Mission = mission
		var disposition sql.NullString
		err := rows.Scan(&obj.ID, &obj.Name, &disposition,
			&obj.PeriodDays, &obj.RadiusEarth, &obj.EqTempK, &obj.SNR, &obj.Magnitude)
		if err != nil {
			return nil, err
		}
		obj.Disposition = disposition.String
		objects = append(objects, obj)
	}
	return objects, rows.Err()
}
