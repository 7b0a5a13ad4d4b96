package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("Name is required"), http.StatusBadRequest},
		{"auth", Auth("Invalid username or password"), http.StatusUnauthorized},
		{"not found", NotFound("Customer not found"), http.StatusNotFound},
		{"store", Store("Error fetching customers", errors.New("conn refused")), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("move: %w", NotFound("Customer not found")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMessageHidesStoreDetail(t *testing.T) {
	err := Store("Error creating customer", errors.New("pq: relation does not exist"))

	assert.Equal(t, "Error creating customer", Message(err, "fallback"))
	assert.NotContains(t, Message(err, "fallback"), "relation")
	assert.Contains(t, err.Error(), "relation")
	assert.Equal(t, "fallback", Message(errors.New("raw"), "fallback"))
	assert.Equal(t, "Name is required", Message(Validation("Name is required"), "fallback"))
}

func TestWrap(t *testing.T) {
	nf := NotFound("Listing not found")
	assert.Same(t, nf, Wrap("x", nf))
	assert.Nil(t, Wrap("x", nil))

	cause := errors.New("timeout")
	err := Wrap("Error fetching listings", cause)
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, cause)
}
