package testutil

import (
	"fmt"
	"strings"

	"agedist/internal/demographics/models"
)

// PersonBuilder provides a fluent interface for building person records.
type PersonBuilder struct {
	p models.PersonRecord
}

// NewPerson starts from a 30 year old French man with filled contact fields.
func NewPerson() *PersonBuilder {
	return &PersonBuilder{p: models.PersonRecord{
		Gender:      "male",
		Name:        models.PersonName{Title: "Mr", First: "Jean", Last: "Dupont"},
		DOB:         models.DateOfBirth{Date: "1994-01-01T00:00:00.000Z", Age: 30},
		Email:       "jean.dupont@example.com",
		Phone:       "01-23-45-67-89",
		Cell:        "06-12-34-56-78",
		Nationality: "FR",
	}}
}

func (b *PersonBuilder) WithName(title, first, last string) *PersonBuilder {
	b.p.Name = models.PersonName{Title: title, First: first, Last: last}
	b.p.Email = strings.ToLower(first + "." + last + "@example.com")
	return b
}

func (b *PersonBuilder) WithAge(age int) *PersonBuilder {
	b.p.DOB.Age = age
	return b
}

func (b *PersonBuilder) WithPhone(phone string) *PersonBuilder {
	b.p.Phone = phone
	return b
}

func (b *PersonBuilder) Build() models.PersonRecord {
	return b.p
}

// PeopleAged builds one record per age, each with a distinct name.
func PeopleAged(ages ...int) []models.PersonRecord {
	out := make([]models.PersonRecord, len(ages))
	for i, a := range ages {
		out[i] = NewPerson().
			WithName("Mr", "Person", fmt.Sprintf("N%03d", i)).
			WithAge(a).
			Build()
	}
	return out
}

// BatchOf wraps records in an upstream batch with a fixed seed.
func BatchOf(records ...models.PersonRecord) *models.Batch {
	return &models.Batch{
		Results: records,
		Info: models.BatchInfo{
			Seed:    "testseed",
			Results: len(records),
			Page:    1,
			Version: "1.4",
		},
	}
}
