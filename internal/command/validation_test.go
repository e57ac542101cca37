// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holomush/pluginkit/pkg/errutil"
)

func TestValidateToken(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple lowercase", "hello", false},
		{"mixed case", "Reload", false},
		{"at prefix", "@create", true},
		{"at in middle", "a@create", false},
		{"plus prefix", "+who", true},
		{"with underscore", "my_cmd", false},
		{"with question mark", "say?", false},
		{"with exclamation", "say!", false},
		{"max length 20", "abcdefghijklmnopqrst", false},
		{"too long 21", "abcdefghijklmnopqrstu", true},
		{"starts with digit", "123go", true},
		{"empty", "", true},
		{"only spaces", "   ", true},
		{"inner space", "a b", true},
		{"single letter", "l", false},
		{"with hyphen", "a-cmd", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateToken(tt.input)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, CodeInvalidName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRootName(t *testing.T) {
	assert.NoError(t, ValidateRootName("example"))
	errutil.AssertErrorCode(t, ValidateRootName(""), CodeInvalidName)
	errutil.AssertErrorCode(t, ValidateRootName("/example"), CodeInvalidName)
}
