package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(E(NotFound, "nope")))
	assert.Equal(t, Storage, KindOf(errors.New("plain")))
	assert.Equal(t, Storage, KindOf(Wrap("query failed", errors.New("conn reset"))))

	// Kind survives wrapping with fmt.Errorf.
	wrapped := fmt.Errorf("outer: %w", E(Forbidden, "no"))
	assert.Equal(t, Forbidden, KindOf(wrapped))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Unauthenticated, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{InvalidInput, http.StatusBadRequest},
		{InvalidTransition, http.StatusBadRequest},
		{Unavailable, http.StatusServiceUnavailable},
		{Storage, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(E(tc.kind, "x")), tc.kind.String())
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "chat is already resolved", PublicMessage(E(InvalidTransition, "chat is already resolved")))

	// Storage internals never reach the client.
	assert.Equal(t, "internal server error", PublicMessage(Wrap("insert failed", errors.New("pq: secret detail"))))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("raw")))
}
