package common

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindsSurviveWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		msg  string
	}{
		{
			name: "validation",
			err:  ValidationError("l1_endpoint", errors.New("URL must start with http://")),
			kind: ErrValidation,
			msg:  "validation error: l1_endpoint: URL must start with http://",
		},
		{
			name: "missing field",
			err:  MissingField("base_path"),
			kind: ErrMissingRequiredField,
			msg:  "missing required field: base_path",
		},
		{
			name: "io",
			err:  IOError("deps/madara/.secrets", os.ErrPermission),
			kind: ErrIO,
			msg:  "io error: deps/madara/.secrets: permission denied",
		},
		{
			name: "unsupported",
			err:  Unsupported("prover stwo"),
			kind: ErrUnsupportedMode,
			msg:  "not supported yet: prover stwo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("failed to resolve configuration: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
			assert.Equal(t, tt.msg, tt.err.Error())

			var e *Error
			assert.True(t, errors.As(wrapped, &e))
		})
	}
}

func TestIOErrorKeepsCause(t *testing.T) {
	err := IOError("/tmp/x", os.ErrNotExist)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, err, ErrIO)
}

func TestRuntimeErrorIncludesOutput(t *testing.T) {
	err := RuntimeError("docker compose -f compose.yaml up", "no such service: madara", errors.New("exit status 1"))
	assert.ErrorIs(t, err, ErrRuntimeInvocation)
	assert.Contains(t, err.Error(), "docker compose -f compose.yaml up")
	assert.Contains(t, err.Error(), "no such service: madara")
}
