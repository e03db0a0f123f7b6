package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := error(&RequestError{Method: "POST", Path: "healthcheck", Err: cause})

	assert.True(t, IsUpstream(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, IsValidation(err))
	assert.Equal(t, "POST healthcheck: context deadline exceeded", err.Error())
}

func TestRequestError_StatusMessage(t *testing.T) {
	err := &RequestError{Method: "GET", Path: "user/monitors", StatusCode: 401, Message: "Invalid token"}
	assert.Equal(t, "GET user/monitors: status 401: Invalid token", err.Error())
}

func TestConstructors(t *testing.T) {
	assert.True(t, IsValidation(NewValidation("bad url %q", "x")))
	assert.True(t, IsNotFound(NewNotFound("setting %s", "api_key")))
	assert.True(t, IsUpstream(NewUpstream("status %s", "failed")))
	assert.False(t, IsNotFound(NewInternal("boom")))
}

func TestIsRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unauthorized", &RequestError{Method: "POST", Path: "tokens/validate", StatusCode: 401, Message: "invalid token"}, true},
		{"unprocessable", &RequestError{Method: "POST", Path: "tokens/validate", StatusCode: 422}, true},
		{"envelope error", &RequestError{Method: "POST", Path: "tokens/validate", Message: "token revoked"}, true},
		{"server error", &RequestError{Method: "POST", Path: "tokens/validate", StatusCode: 503, Message: "down"}, false},
		{"transport", &RequestError{Method: "POST", Path: "tokens/validate", Err: context.DeadlineExceeded}, false},
		{"malformed", ErrMalformedResponse, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRejected(tt.err))
		})
	}
}
