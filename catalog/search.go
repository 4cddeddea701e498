package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases and strips diacritics so "Kepler-62é" matches "kepler-62e".
func Fold(s string) string {
	folded, _, err := transform.String(foldTransform, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// Search runs a folded free-text match on object names across both datasets.
func (s *Store) Search(query string, limit int) ([]Object, error) {
	needle := "%" + Fold(strings.TrimSpace(query)) + "%"
	results := []Object{}

	for _, dataset := range []string{"kepler", "tess"} {
		table := datasetTables[dataset]
		rows, err := s.db.Query(
			`SELECT id, object_name, disposition, period_days, radius_earth, eq_temp_k, snr, magnitude
             FROM `+table+` WHERE name_folded LIKE ? ORDER BY id LIMIT ?`,
			needle, limit-len(results),
		)
		if err != nil {
			return nil, err
		}
		objects, err := scanObjects(rows, dataset)
		rows.Close()
		if err != nil {
			return nil, err
		}
		results = append(results, objects...)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
