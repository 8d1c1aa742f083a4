// Package shaper holds the pure data-shaping step: a fixed-bucket age
// histogram and a top-N table of the oldest people.
package shaper

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"agedist/internal/demographics/models"
)

// DefaultTopN is the size of the oldest-people table.
const DefaultTopN = 10

// Shaper buckets ages into a fixed, ordered set of ranges.
type Shaper struct {
	ranges []Range
}

var defaultShaper = MustNew(DefaultLabels...)

// New parses the bucket labels once so bucketing never re-parses them.
func New(labels ...string) (*Shaper, error) {
	ranges, err := ParseRanges(labels)
	if err != nil {
		return nil, err
	}
	return &Shaper{ranges: ranges}, nil
}

// MustNew is New for labels known at compile time.
func MustNew(labels ...string) *Shaper {
	s, err := New(labels...)
	if err != nil {
		panic(err)
	}
	return s
}

// Default returns the shaper for DefaultLabels.
func Default() *Shaper {
	return defaultShaper
}

// Histogram assigns every age to the first range containing it. The result
// lists every range in declaration order, zero counts included. dropped is
// the number of ages no range contains.
func (s *Shaper) Histogram(ages []int) (buckets []models.AgeBucket, dropped int) {
	buckets = make([]models.AgeBucket, len(s.ranges))
	for i, r := range s.ranges {
		buckets[i].Label = r.Label
	}

	for _, age := range ages {
		idx := slices.IndexFunc(s.ranges, func(r Range) bool { return r.Contains(age) })
		if idx < 0 {
			dropped++
			continue
		}
		buckets[idx].Count++
	}
	return buckets, dropped
}

// BucketizeAges is Histogram over the records' ages, ignoring the drop count.
func (s *Shaper) BucketizeAges(records []models.PersonRecord) []models.AgeBucket {
	buckets, _ := s.Histogram(Ages(records))
	return buckets
}

// BucketizeAges buckets records with DefaultLabels.
func BucketizeAges(records []models.PersonRecord) []models.AgeBucket {
	return defaultShaper.BucketizeAges(records)
}

// Ages extracts the age of every record, in input order.
func Ages(records []models.PersonRecord) []int {
	ages := make([]int, len(records))
	for i, r := range records {
		ages[i] = r.Age()
	}
	return ages
}

// TopOldest returns the n oldest records projected to table rows, oldest
// first. Ties keep upstream order. The input slice is not reordered.
func TopOldest(records []models.PersonRecord, n int) []models.TableRow {
	if n <= 0 || len(records) == 0 {
		return []models.TableRow{}
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.PersonRecord) int {
		return cmp.Compare(b.Age(), a.Age())
	})

	n = min(n, len(sorted))
	rows := make([]models.TableRow, n)
	for i, r := range sorted[:n] {
		rows[i] = ToRow(r)
	}
	return rows
}

// ToRow projects a record to the table columns.
func ToRow(r models.PersonRecord) models.TableRow {
	return models.TableRow{
		Name:  FullName(r.Name),
		Age:   r.Age(),
		Email: r.Email,
		Phone: r.Phone,
	}
}

// FullName joins title, first and last name with single spaces, skipping
// empty parts.
func FullName(n models.PersonName) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{n.Title, n.First, n.Last} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Headers returns the column names of the table. With no rows there is
// nothing to derive them from and the result is empty.
func Headers(rows []models.TableRow) []string {
	if len(rows) == 0 {
		return nil
	}
	return []string{"name", "age", "email", "phone"}
}

// Cells renders a row in header order.
func Cells(row models.TableRow) []string {
	return []string{row.Name, strconv.Itoa(row.Age), row.Email, row.Phone}
}
