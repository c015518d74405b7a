package errorbank_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"

	"github.com/Additional-Code/bookstore/pkg/errorbank"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *errorbank.AppError
		status   int
		grpcCode codes.Code
	}{
		{"bad request", errorbank.BadRequest("bad"), http.StatusBadRequest, codes.InvalidArgument},
		{"forbidden", errorbank.Forbidden("no"), http.StatusForbidden, codes.PermissionDenied},
		{"not found", errorbank.NotFound("missing"), http.StatusNotFound, codes.NotFound},
		{"conflict", errorbank.Conflict("dup"), http.StatusConflict, codes.AlreadyExists},
		{"unprocessable", errorbank.Unprocessable("nope"), http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{"internal", errorbank.Internal("boom"), http.StatusInternalServerError, codes.Internal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.status, test.err.StatusCode())
			assert.Equal(t, test.grpcCode, test.err.GRPCCode())
		})
	}
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset")
	appErr := errorbank.From(fmt.Errorf("query: %w", cause))

	assert.Equal(t, errorbank.KindInternal, appErr.Kind())
	assert.ErrorIs(t, appErr, cause)
}

func TestFromPreservesAppErrors(t *testing.T) {
	orig := errorbank.NotFound("order not found", errorbank.WithDetail("id", "42"))
	appErr := errorbank.From(fmt.Errorf("service: %w", orig))

	assert.Equal(t, errorbank.KindNotFound, appErr.Kind())
	assert.Equal(t, "order not found", appErr.Message())
	assert.Equal(t, "42", appErr.Details()["id"])
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", errorbank.Forbidden("denied"))

	assert.True(t, errorbank.IsKind(err, errorbank.KindForbidden))
	assert.False(t, errorbank.IsKind(err, errorbank.KindNotFound))
	assert.False(t, errorbank.IsKind(errors.New("plain"), errorbank.KindInternal))
}
