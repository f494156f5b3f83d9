// File: api/errors_test.go
// License: Apache-2.0

package api_test

import (
	"errors"
	"io"
	"testing"

	"github.com/struven/netsock/api"
)

func TestErrorMatchesSentinel(t *testing.T) {
	err := api.NewError(api.ErrCodeTimeout, "receive deadline passed")
	if !errors.Is(err, api.ErrTimeout) {
		t.Errorf("Expected ErrCodeTimeout to match ErrTimeout")
	}
	if errors.Is(err, api.ErrConnectionRefused) {
		t.Errorf("Expected ErrCodeTimeout not to match ErrConnectionRefused")
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := api.WrapError(api.ErrCodeInternal, "read frame", cause)
	if !errors.Is(err, cause) {
		t.Errorf("Expected wrapped cause to be reachable via errors.Is")
	}
	if got := err.Error(); got != "read frame: unexpected EOF" {
		t.Errorf("Expected formatted message with cause, got %q", got)
	}
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := api.NewError(api.ErrCodeInvalidSocket, "no descriptor")
	if got := err.Error(); got != "no descriptor" {
		t.Errorf("Expected bare message, got %q", got)
	}
}

func TestInternalCodeHasNoSentinel(t *testing.T) {
	err := api.NewError(api.ErrCodeInternal, "boom")
	for _, sentinel := range []error{
		api.ErrConnectionRefused, api.ErrTimeout, api.ErrWouldBlock,
		api.ErrInvalidArgument, api.ErrInvalidSocket, api.ErrNotSupported,
	} {
		if errors.Is(err, sentinel) {
			t.Errorf("Expected ErrCodeInternal not to match %v", sentinel)
		}
	}
}
