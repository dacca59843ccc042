// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package handlers

import "fmt"

// Error messages returned to clients. Kept stable because callers match on
// them.
const (
	msgNoPayload = "No JSON payload provided"
	msgNoData    = "No valid 'data' array provided"
	msgMissing   = "Missing fileName or fileContent"
)

// InputError is returned when the request body fails validation. Reason is
// the client-facing message.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return e.Reason
}

// DecodeError is returned when a file's base64 content cannot be decoded.
type DecodeError struct {
	FileName string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Failed to decode base64 for %s: %v", e.FileName, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ConversionError is returned when the engine fails on a file.
type ConversionError struct {
	FileName string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("Conversion failed for file: %s. Error: %v", e.FileName, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
