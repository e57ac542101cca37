// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/holomush/pluginkit/pkg/errutil"
)

func TestErrUnknownCommand(t *testing.T) {
	err := ErrUnknownCommand("foo")
	assert.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	assert.True(t, ok)
	assert.Equal(t, "UNKNOWN_COMMAND", oopsErr.Code())
	assert.Equal(t, "foo", oopsErr.Context()["command"])
}

func TestErrPermissionDenied(t *testing.T) {
	err := ErrPermissionDenied("reload", "example.reload")
	errutil.AssertErrorCode(t, err, CodePermissionDenied)
	errutil.AssertErrorContext(t, err, "command", "reload")
	errutil.AssertErrorContext(t, err, "permission", "example.reload")
}

func TestErrInvalidArgs(t *testing.T) {
	err := ErrInvalidArgs("hello", 1)
	errutil.AssertErrorCode(t, err, CodeInvalidArgs)
	errutil.AssertErrorContext(t, err, "command", "hello")
	errutil.AssertErrorContext(t, err, "index", 1)
}

func TestErrHandlerFailure(t *testing.T) {
	cause := errors.New("boom")
	err := ErrHandlerFailure("test", cause)

	errutil.AssertErrorCode(t, err, CodeHandlerFailure)
	errutil.AssertErrorContext(t, err, "command", "test")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestErrHandlerFailure_CodedCauseKeepsOuterCode(t *testing.T) {
	cause := oops.Code("LOAD_FAILED").Errorf("disk gone")
	err := ErrHandlerFailure("reload", cause)

	errutil.AssertErrorCode(t, err, CodeHandlerFailure)
	errutil.AssertErrorContext(t, err, "cause_code", "LOAD_FAILED")
	errutil.AssertErrorContext(t, err, "command", "reload")
	assert.Contains(t, err.Error(), "disk gone")
}

func TestErrContractViolation(t *testing.T) {
	err := ErrContractViolation("example", "bad token", "invalid name")
	errutil.AssertErrorCode(t, err, CodeContractViolation)
	errutil.AssertErrorContext(t, err, "root", "example")
	errutil.AssertErrorContext(t, err, "command", "bad token")
}

func TestErrUnknownChapter(t *testing.T) {
	err := ErrUnknownChapter(4, 3)
	errutil.AssertErrorCode(t, err, CodeUnknownChapter)
	errutil.AssertErrorContext(t, err, "page", 4)
	errutil.AssertErrorContext(t, err, "max", 3)
}

func TestErrRateLimited(t *testing.T) {
	err := ErrRateLimited(1000)
	oopsErr, _ := oops.AsOops(err)
	assert.Equal(t, "RATE_LIMITED", oopsErr.Code())
	assert.Equal(t, int64(1000), oopsErr.Context()["cooldown_ms"])
}

func TestConstructorSentinels(t *testing.T) {
	errutil.AssertErrorCode(t, ErrNilCommand, CodeContractViolation)
	errutil.AssertErrorCode(t, ErrNilPermissions, CodeContractViolation)
}
