package schema

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func TestButterfly_Valid(t *testing.T) {
	v := newTestValidator(t)

	p, err := v.Butterfly([]byte(`{"commonName":"Plum Judy","species":"Abisara echerius","article":"https://en.wikipedia.org/wiki/Abisara_echerius"}`))
	require.NoError(t, err)
	assert.Equal(t, ButterflyPayload{
		CommonName: "Plum Judy",
		Species:    "Abisara echerius",
		Article:    "https://en.wikipedia.org/wiki/Abisara_echerius",
	}, p)
}

func TestButterfly_NormalizesText(t *testing.T) {
	v := newTestValidator(t)

	p, err := v.Butterfly([]byte("{\"commonName\":\"Cafe\u0301 Skipper\",\"species\":\"Papilio cafe\u0301\",\"article\":\"https://example.org/Cafe\u0301\"}"))
	require.NoError(t, err)
	assert.Equal(t, ButterflyPayload{
		CommonName: "Caf\u00e9 Skipper",
		Species:    "Papilio caf\u00e9",
		Article:    "https://example.org/Caf\u00e9",
	}, p)
}

func TestButterfly_Invalid(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing field", `{"commonName":"a","species":"b"}`},
		{"extra field", `{"commonName":"a","species":"b","article":"c","wingspan":"3cm"}`},
		{"wrong type", `{"commonName":"a","species":"b","article":7}`},
		{"null field", `{"commonName":"a","species":"b","article":null}`},
		{"empty object", `{}`},
		{"array", `[]`},
		{"string", `"butterfly"`},
		{"malformed", `{"commonName":`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Butterfly([]byte(tt.body))
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected *ValidationError, got %T", err)
			assert.Equal(t, KindButterfly, ve.Kind)
		})
	}
}

func TestUser(t *testing.T) {
	v := newTestValidator(t)

	p, err := v.User([]byte(`{"username":"flutterby"}`))
	require.NoError(t, err)
	assert.Equal(t, "flutterby", p.Username)

	for _, body := range []string{`{}`, `{"username":1}`, `{"username":"a","admin":"true"}`, `{"name":"a"}`} {
		_, err := v.User([]byte(body))
		assert.Error(t, err, "body %s", body)
	}
}

func TestRating_AcceptsDomain(t *testing.T) {
	v := newTestValidator(t)

	for _, r := range []string{"0", "1", "2", "3", "4", "5"} {
		p, err := v.Rating([]byte(`{"userid":"U1","rating":"` + r + `"}`))
		require.NoError(t, err, "rating %q", r)
		assert.Equal(t, RatingPayload{UserID: "U1", Rating: r}, p)
	}
}

func TestRating_RejectsOutsideDomain(t *testing.T) {
	v := newTestValidator(t)

	bodies := []string{
		`{"userid":"U1","rating":"6"}`,
		`{"userid":"U1","rating":"7"}`,
		`{"userid":"U1","rating":"-1"}`,
		`{"userid":"U1","rating":"five"}`,
		`{"userid":"U1","rating":""}`,
		`{"userid":"U1","rating":5}`,
		`{"userid":"U1"}`,
		`{"rating":"3"}`,
		`{"userid":1,"rating":"3"}`,
		`{"userid":"U1","rating":"3","type":"userid"}`,
	}
	for _, body := range bodies {
		_, err := v.Rating([]byte(body))
		var ve *ValidationError
		require.True(t, errors.As(err, &ve), "body %s: expected *ValidationError, got %v", body, err)
		assert.Equal(t, KindRating, ve.Kind)
	}
}

func TestValidationError_Error(t *testing.T) {
	withPath := &ValidationError{Kind: KindUser, Path: "username", Message: "conflicting values"}
	assert.Equal(t, "invalid #User: username: conflicting values", withPath.Error())

	noPath := &ValidationError{Kind: KindUser, Message: "malformed JSON"}
	assert.Equal(t, "invalid #User: malformed JSON", noPath.Error())
}

func TestValidator_Concurrent(t *testing.T) {
	v := newTestValidator(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := v.Rating([]byte(`{"userid":"U1","rating":"4"}`))
				assert.NoError(t, err)
			} else {
				_, err := v.Rating([]byte(`{"userid":"U1","rating":"9"}`))
				assert.Error(t, err)
			}
		}(i)
	}
	wg.Wait()
}
