// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"github.com/samber/oops"

	"github.com/holomush/pluginkit/pkg/errutil"
)

// Error codes for command failures.
const (
	CodeUnknownCommand    = "UNKNOWN_COMMAND"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeInvalidArgs       = "INVALID_ARGS"
	CodeHandlerFailure    = "HANDLER_FAILURE"
	CodeContractViolation = "CONTRACT_VIOLATION"
	CodeUnknownChapter    = "UNKNOWN_CHAPTER"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInvalidName       = "INVALID_NAME"
)

// Sentinel errors for constructor validation.
var (
	ErrNilCommand     = oops.Code(CodeContractViolation).Errorf("command cannot be nil")
	ErrNilPermissions = oops.Code(CodeContractViolation).Errorf("permission checker cannot be nil")
)

// ErrUnknownCommand creates an error for a token with no execute handler.
func ErrUnknownCommand(token string) error {
	return oops.Code(CodeUnknownCommand).
		With("command", token).
		Errorf("unknown command: %s", token)
}

// ErrPermissionDenied creates an error for a sender lacking permission.
func ErrPermissionDenied(token, permission string) error {
	return oops.Code(CodePermissionDenied).
		With("command", token).
		With("permission", permission).
		Errorf("permission denied for command %s", token)
}

// ErrInvalidArgs creates an error for reading a missing argument.
func ErrInvalidArgs(token string, index int) error {
	return oops.Code(CodeInvalidArgs).
		With("command", token).
		With("index", index).
		Errorf("missing argument %d", index)
}

// ErrHandlerFailure wraps a failure raised inside a handler. oops reports
// the deepest code in a chain, so a cause that already carries a code is
// recorded as cause_code instead of wrapped; HANDLER_FAILURE stays the
// error's code either way.
func ErrHandlerFailure(token string, cause error) error {
	builder := oops.Code(CodeHandlerFailure).With("command", token)
	if causeCode := errutil.Code(cause); causeCode != "" {
		return builder.
			With("cause_code", causeCode).
			Errorf("command %s failed: %s", token, cause.Error())
	}
	return builder.Wrapf(cause, "command %s failed", token)
}

// ErrContractViolation creates an error for a malformed declaration.
func ErrContractViolation(root, token, reason string) error {
	return oops.Code(CodeContractViolation).
		With("root", root).
		With("command", token).
		Errorf("invalid declaration for %q: %s", token, reason)
}

// ErrUnknownChapter creates an error for an out-of-range help page.
func ErrUnknownChapter(page, maxPage int) error {
	return oops.Code(CodeUnknownChapter).
		With("page", page).
		With("max", maxPage).
		Errorf("unknown chapter %d", page)
}

// ErrRateLimited creates an error for a throttled sender.
func ErrRateLimited(cooldownMs int64) error {
	return oops.Code(CodeRateLimited).
		With("cooldown_ms", cooldownMs).
		Errorf("too many commands")
}
