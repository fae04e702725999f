package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("place order: %w", NotFound("product %d not found", 7))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestPublicMasksInternalErrors(t *testing.T) {
	pub := Public(errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	assert.Equal(t, "internal server error", pub.Error())
	assert.Equal(t, KindInternal, KindOf(pub))

	v := Validation("items must not be empty")
	assert.Same(t, v, Public(v))
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		http int
		grpc codes.Code
	}{
		{Validation("x"), http.StatusBadRequest, codes.InvalidArgument},
		{NotFound("x"), http.StatusNotFound, codes.NotFound},
		{Conflict("x"), http.StatusConflict, codes.AlreadyExists},
		{InsufficientStock("x"), http.StatusConflict, codes.FailedPrecondition},
		{Forbidden("x"), http.StatusForbidden, codes.PermissionDenied},
		{Unauthenticated("x"), http.StatusUnauthorized, codes.Unauthenticated},
		{errors.New("x"), http.StatusInternalServerError, codes.Internal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.http, HTTPStatus(tc.err), tc.err.Error())
		assert.Equal(t, tc.grpc, GRPCCode(tc.err), tc.err.Error())
	}
}

func TestExtensionsCarryKind(t *testing.T) {
	assert.Equal(t, map[string]any{"code": "INSUFFICIENT_STOCK"}, InsufficientStock("low").Extensions())
}
