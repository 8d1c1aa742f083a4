package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "agedist/pkg/domain-errors"
)

type query struct {
	BaseURL string        `flag:"base-url" validate:"required,url"`
	Results int           `flag:"results" validate:"min=1,max=5000"`
	Gender  string        `flag:"gender" validate:"omitempty,oneof=male female"`
	Nat     string        `json:"nat" validate:"omitempty,natlist"`
	Timeout time.Duration `flag:"timeout" validate:"gte=0s"`
}

func valid() query {
	return query{BaseURL: "https://randomuser.me", Results: 1000, Gender: "male", Nat: "fr"}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*query)
		wantMsg string
	}{
		{"valid", func(*query) {}, ""},
		{"empty filters are allowed", func(q *query) { q.Gender, q.Nat = "", "" }, ""},
		{"nationality list", func(q *query) { q.Nat = "fr,de, gb" }, ""},
		{"missing url", func(q *query) { q.BaseURL = "" }, "base-url is required"},
		{"bad url", func(q *query) { q.BaseURL = "randomuser" }, "base-url must be a valid url"},
		{"zero results", func(q *query) { q.Results = 0 }, "results must be at least 1"},
		{"too many results", func(q *query) { q.Results = 5001 }, "results must be at most 5000"},
		{"unknown gender", func(q *query) { q.Gender = "other" }, "gender must be one of [male female]"},
		{"bad nationality", func(q *query) { q.Nat = "france" }, "nat must be comma separated two-letter codes"},
		{"negative timeout", func(q *query) { q.Timeout = -time.Second }, "timeout must be at least 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid()
			tt.mutate(&q)
			err := Validate(q)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestErrorMessage_NonValidatorError(t *testing.T) {
	assert.Equal(t, "invalid input", ErrorMessage(errors.New("boom")))
}
