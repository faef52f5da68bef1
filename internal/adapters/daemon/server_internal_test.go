package daemon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/zerr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "canceled", err: context.Canceled, want: codes.Canceled},
		{name: "deadline", err: zerr.Wrap(context.DeadlineExceeded, "scan"), want: codes.DeadlineExceeded},
		{name: "relative path", err: zerr.With(domain.ErrPathNotAbsolute, "path", "a.cpp"), want: codes.InvalidArgument},
		{name: "include not found", err: &domain.IncludeNotFoundError{SearchValue: "a.h"}, want: codes.InvalidArgument},
		{name: "identifier", err: &domain.IdentifierNotDefinedError{Identifier: "X"}, want: codes.InvalidArgument},
		{name: "already running", err: domain.ErrCacheAlreadyRunning, want: codes.FailedPrecondition},
		{name: "other", err: domain.ErrStoreReadFailed, want: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(toStatus(tt.err)))
		})
	}
}
