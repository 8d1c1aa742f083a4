package models

import "time"

// PersonName is the name block of an upstream person record.
type PersonName struct {
	Title string `json:"title"`
	First string `json:"first"`
	Last  string `json:"last"`
}

// DateOfBirth carries the upstream birth date and the age derived from it.
type DateOfBirth struct {
	Date string `json:"date"`
	Age  int    `json:"age"`
}

// PersonRecord is one entry of the upstream "results" array. Fields the
// shaper does not read are kept so the JSON API can echo them untouched.
type PersonRecord struct {
	Gender      string      `json:"gender,omitempty"`
	Name        PersonName  `json:"name"`
	DOB         DateOfBirth `json:"dob"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Cell        string      `json:"cell,omitempty"`
	Nationality string      `json:"nat,omitempty"`
}

// Age is a convenience accessor for DOB.Age.
func (p PersonRecord) Age() int {
	return p.DOB.Age
}

// BatchInfo is the upstream "info" block.
type BatchInfo struct {
	Seed    string `json:"seed"`
	Results int    `json:"results"`
	Page    int    `json:"page"`
	Version string `json:"version"`
}

// Batch is a decoded upstream response.
type Batch struct {
	Results []PersonRecord `json:"results"`
	Info    BatchInfo      `json:"info"`
}

// AgeBucket is one slice of the age histogram.
type AgeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TableRow is the projection of a person shown in the oldest-people table.
type TableRow struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Report is everything the views need from one fetch.
type Report struct {
	Buckets    []AgeBucket `json:"buckets"`
	Oldest     []TableRow  `json:"oldest"`
	Total      int         `json:"total"`
	Unbucketed int         `json:"unbucketed"`
	Seed       string      `json:"seed,omitempty"`
	FetchedAt  time.Time   `json:"fetched_at"`
}

// Labels returns the bucket labels in report order.
func (r *Report) Labels() []string {
	labels := make([]string, len(r.Buckets))
	for i, b := range r.Buckets {
		labels[i] = b.Label
	}
	return labels
}

// Counts returns the bucket counts in report order.
func (r *Report) Counts() []int {
	counts := make([]int, len(r.Buckets))
	for i, b := range r.Buckets {
		counts[i] = b.Count
	}
	return counts
}
