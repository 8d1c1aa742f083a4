package shaper

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"

	"agedist/internal/demographics/models"
	"agedist/pkg/testutil"
)

// ShaperSuite tests the histogram and top-N projection.
//
// Justification: pure functions whose output feeds both views directly.
// Bucket order, first-match assignment and the silent drop of young ages
// are the invariants the chart relies on.
type ShaperSuite struct {
	suite.Suite
}

func TestShaperSuite(t *testing.T) {
	suite.Run(t, new(ShaperSuite))
}

var people = testutil.PeopleAged

func countsOf(buckets []models.AgeBucket) []int {
	out := make([]int, len(buckets))
	for i, b := range buckets {
		out[i] = b.Count
	}
	return out
}

func (s *ShaperSuite) TestBucketizeAges_DecadeAssignment() {
	s.Run("every age in 20..89 lands in exactly its decade", func() {
		for age := 20; age <= 89; age++ {
			buckets := BucketizeAges(people(age))

			want := make([]int, len(DefaultLabels))
			want[min((age-20)/10, 6)] = 1
			s.Equal(want, countsOf(buckets), "age %d", age)
		}
	})

	s.Run("95 falls in >=80", func() {
		buckets := BucketizeAges(people(95))
		s.Equal(">=80", buckets[6].Label)
		s.Equal(1, buckets[6].Count)
	})

	s.Run("15 falls in no bucket", func() {
		buckets := BucketizeAges(people(15))
		s.Equal(make([]int, 7), countsOf(buckets))
	})

	s.Run("decade edges", func() {
		buckets := BucketizeAges(people(19, 20, 29, 30, 79, 80))
		s.Equal([]int{2, 1, 0, 0, 0, 1, 1}, countsOf(buckets))
	})
}

func (s *ShaperSuite) TestBucketizeAges_OrderIsDeclarationOrder() {
	buckets := BucketizeAges(people(85, 85, 33, 21))

	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}
	if diff := cmp.Diff(DefaultLabels, labels); diff != "" {
		s.Failf("labels out of order", "(-want +got):\n%s", diff)
	}
	s.Equal([]int{1, 1, 0, 0, 0, 0, 2}, countsOf(buckets))
}

func (s *ShaperSuite) TestBucketizeAges_SumMatchesAdults() {
	ages := []int{12, 19, 20, 25, 44, 61, 78, 80, 101, 3, 37}
	buckets := BucketizeAges(people(ages...))

	sum := 0
	for _, b := range buckets {
		sum += b.Count
	}
	adults := 0
	for _, a := range ages {
		if a >= 20 {
			adults++
		}
	}
	s.Equal(adults, sum)
}

func (s *ShaperSuite) TestHistogram_ReportsDropped() {
	_, dropped := Default().Histogram([]int{5, 18, 19, 20, 90})
	s.Equal(3, dropped)
}

func (s *ShaperSuite) TestHistogram_FirstMatchWins() {
	sh := MustNew("20-40", "30-50")
	buckets, _ := sh.Histogram([]int{35})
	s.Equal([]int{1, 0}, countsOf(buckets))
}

func (s *ShaperSuite) TestTopOldest() {
	s.Run("returns the n oldest, oldest first", func() {
		rows := TopOldest(people(30, 80, 50), 2)
		s.Require().Len(rows, 2)
		s.Equal(80, rows[0].Age)
		s.Equal(50, rows[1].Age)
	})

	s.Run("empty input yields an empty slice", func() {
		rows := TopOldest(nil, DefaultTopN)
		s.NotNil(rows)
		s.Empty(rows)
	})

	s.Run("non-positive n yields an empty slice", func() {
		s.Empty(TopOldest(people(40), 0))
		s.Empty(TopOldest(people(40), -1))
	})

	s.Run("n larger than input returns everything", func() {
		s.Len(TopOldest(people(40, 41), DefaultTopN), 2)
	})

	s.Run("input order is left untouched", func() {
		in := people(30, 80, 50)
		TopOldest(in, 3)
		s.Equal(30, in[0].Age())
		s.Equal(80, in[1].Age())
	})

	s.Run("equal ages keep upstream order", func() {
		in := []models.PersonRecord{
			testutil.NewPerson().WithName("Mr", "Paul", "Roux").WithAge(70).Build(),
			testutil.NewPerson().WithName("Mr", "Luc", "Martin").WithAge(70).Build(),
		}
		rows := TopOldest(in, 2)
		s.Equal([]string{"Mr Paul Roux", "Mr Luc Martin"}, []string{rows[0].Name, rows[1].Name})
	})

	s.Run("projects all four columns", func() {
		in := []models.PersonRecord{
			testutil.NewPerson().WithName("Mr", "Jean", "Dupont").WithAge(77).Build(),
		}
		want := []models.TableRow{{
			Name:  "Mr Jean Dupont",
			Age:   77,
			Email: "jean.dupont@example.com",
			Phone: "01-23-45-67-89",
		}}
		if diff := cmp.Diff(want, TopOldest(in, 10)); diff != "" {
			s.Failf("unexpected rows", "(-want +got):\n%s", diff)
		}
	})
}

func (s *ShaperSuite) TestFullName() {
	s.Equal("Mr Jean Dupont", FullName(models.PersonName{Title: "Mr", First: "Jean", Last: "Dupont"}))
	s.Equal("Jean Dupont", FullName(models.PersonName{First: "Jean", Last: "Dupont"}), "no leading space without title")
	s.Equal("", FullName(models.PersonName{}))
}

func (s *ShaperSuite) TestHeaders() {
	s.Nil(Headers(nil))
	s.Equal([]string{"name", "age", "email", "phone"}, Headers([]models.TableRow{{Name: "x"}}))
	s.Equal([]string{"Mr A B", "81", "a@b.c", "1"}, Cells(models.TableRow{Name: "Mr A B", Age: 81, Email: "a@b.c", Phone: "1"}))
}

func (s *ShaperSuite) TestParseRange() {
	tests := []struct {
		label   string
		want    Range
		wantErr bool
	}{
		{label: "20-29", want: Range{Label: "20-29", Min: 20, Max: 29}},
		{label: ">=80", want: Range{Label: ">=80", Min: 80, Max: math.MaxInt}},
		{label: " 30 - 39 ", want: Range{Label: " 30 - 39 ", Min: 30, Max: 39}},
		{label: "80+", wantErr: true},
		{label: "a-b", wantErr: true},
		{label: "40-30", wantErr: true},
		{label: ">=", wantErr: true},
	}

	for _, tt := range tests {
		s.Run(tt.label, func() {
			got, err := ParseRange(tt.label)
			if tt.wantErr {
				s.Error(err)
				return
			}
			s.Require().NoError(err)
			s.Equal(tt.want, got)
		})
	}
}

func (s *ShaperSuite) TestNew_RejectsBadLabels() {
	_, err := New("20-29", "oops")
	s.Error(err)
	s.Panics(func() { MustNew("oops") })
}
