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
)

// Code classifies an error.
type Code int

const (
	// CodeInternal is an unexpected failure.
	CodeInternal Code = iota

	// CodeResourceNotFound is returned when neither a model artifact nor a dataset exists.
	CodeResourceNotFound

	// CodeBadRequest is returned for malformed prediction input.
	CodeBadRequest

	// CodeServiceUnavailable is returned when no model is loaded.
	CodeServiceUnavailable
)

var codeNames = map[Code]string{
	CodeInternal:           "Internal",
	CodeResourceNotFound:   "ResourceNotFound",
	CodeBadRequest:         "BadRequest",
	CodeServiceUnavailable: "ServiceUnavailable",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("Code(%d)", int(c))
}

// HTTPStatus maps the code to a http status code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeResourceNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error with a code, a caller facing message and an optional detail.
type Error struct {
	Code    Code
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("[%s]%s", e.Code, e.Message)
	}

	return fmt.Sprintf("[%s]%s: %s", e.Code, e.Message, e.Detail)
}

// WithDetail returns a copy of the error carrying the given detail.
func (e *Error) WithDetail(detail string) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Detail:  detail,
	}
}

func New(code Code, msg string) *Error {
	return &Error{
		Code:    code,
		Message: msg,
	}
}

func Newf(code Code, format string, a ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, a...),
	}
}

// CheckError reports whether err, or any error it wraps, is an *Error with the given code.
func CheckError(err error, code Code) bool {
	if err == nil {
		return false
	}

	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// As returns the *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}
