package query

import (
	"testing"

	"go-jobalert/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single word", input: "Acme", expected: "acme"},
		{name: "spaces stripped", input: "Globex Corp", expected: "globexcorp"},
		{name: "extra whitespace", input: "  Initech \t Systems ", expected: "initechsystems"},
		{name: "diacritics folded", input: "Nestlé Purina", expected: "nestlepurina"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestBuilder_Primary(t *testing.T) {
	b := NewBuilder()
	q := b.Build(models.Employer{Name: "Globex Corp"}, models.QueryPrimary)

	assert.Equal(t, models.QueryPrimary, q.Kind)
	assert.Equal(t,
		`(site:globexcorp.myworkdayjobs.com OR site:careers.globexcorp.com OR site:greenhouse.io OR site:lever.co) "Globex Corp" (data OR analytics OR engineer OR analyst) "United States"`,
		q.Text)
}

func TestBuilder_Fallback(t *testing.T) {
	b := NewBuilder()
	q := b.Build(models.Employer{Name: "Acme"}, models.QueryFallback)

	assert.Equal(t, models.QueryFallback, q.Kind)
	assert.Equal(t, `(site:acme.com OR site:greenhouse.io OR site:lever.co) "Acme" data "United States"`, q.Text)
	assert.NotContains(t, q.Text, "myworkdayjobs")
	assert.NotContains(t, q.Text, "careers.acme.com")
}

func TestBuilder_Deterministic(t *testing.T) {
	b := NewBuilder()
	for _, name := range []string{"Acme", "Globex Corp", "Café Rouge", "AT&T"} {
		emp := models.Employer{Name: name}
		first := b.Build(emp, models.QueryPrimary)
		second := b.Build(emp, models.QueryPrimary)

		assert.Equal(t, first, second)
		assert.Contains(t, first.Text, `"`+name+`"`)
		assert.Contains(t, first.Text, Normalize(name))
		assert.Contains(t, first.Text, `"United States"`)
	}
}

func TestBuilder_CustomTables(t *testing.T) {
	b := &Builder{
		Aggregators:     []string{"ashbyhq.com"},
		Keywords:        []string{"backend"},
		FallbackKeyword: "software",
		Country:         "USA",
	}
	q := b.Build(models.Employer{Name: "Acme"}, models.QueryPrimary)
	assert.Equal(t, `(site:acme.myworkdayjobs.com OR site:careers.acme.com OR site:ashbyhq.com) "Acme" (backend) "USA"`, q.Text)

	q = b.Build(models.Employer{Name: "Acme"}, models.QueryFallback)
	assert.Equal(t, `(site:acme.com OR site:ashbyhq.com) "Acme" software "USA"`, q.Text)
}
