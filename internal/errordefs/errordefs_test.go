/*
 *     Copyright 2024 The Netanomaly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errordefs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		expect string
	}{
		{
			name:   "without detail",
			err:    New(CodeServiceUnavailable, "model not loaded"),
			expect: "[ServiceUnavailable]model not loaded",
		},
		{
			name:   "with detail",
			err:    Newf(CodeBadRequest, "invalid %s", "input").WithDetail("missing inbound_rate"),
			expect: "[BadRequest]invalid input: missing inbound_rate",
		},
		{
			name:   "unknown code",
			err:    New(Code(42), "foo"),
			expect: "[Code(42)]foo",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.err.Error())
		})
	}
}

func TestError_WithDetail(t *testing.T) {
	assert := assert.New(t)
	base := New(CodeBadRequest, "foo")
	err := base.WithDetail("bar")
	assert.Equal("bar", err.Detail)
	assert.Empty(base.Detail)
	assert.Equal(base.Code, err.Code)
	assert.Equal(base.Message, err.Message)
}

func TestCheckError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   Code
		expect bool
	}{
		{
			name:   "nil error",
			err:    nil,
			code:   CodeBadRequest,
			expect: false,
		},
		{
			name:   "plain error",
			err:    errors.New("foo"),
			code:   CodeBadRequest,
			expect: false,
		},
		{
			name:   "code matches",
			err:    New(CodeResourceNotFound, "foo"),
			code:   CodeResourceNotFound,
			expect: true,
		},
		{
			name:   "code does not match",
			err:    New(CodeResourceNotFound, "foo"),
			code:   CodeBadRequest,
			expect: false,
		},
		{
			name:   "wrapped error",
			err:    fmt.Errorf("resolve: %w", New(CodeResourceNotFound, "foo")),
			code:   CodeResourceNotFound,
			expect: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, CheckError(tc.err, tc.code))
		})
	}
}

func TestCode_HTTPStatus(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(http.StatusBadRequest, CodeBadRequest.HTTPStatus())
	assert.Equal(http.StatusServiceUnavailable, CodeServiceUnavailable.HTTPStatus())
	assert.Equal(http.StatusNotFound, CodeResourceNotFound.HTTPStatus())
	assert.Equal(http.StatusInternalServerError, CodeInternal.HTTPStatus())
}
