/*
Copyright © 2024 Libero Linux contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package error provides a custom error type carrying exit codes
// across the installer commands.
package error

// InstallerError is our custom error to pass around exit codes in the error
type InstallerError struct {
	err  string
	code int
}

func (e *InstallerError) Error() string {
	return e.err
}

func (e *InstallerError) ExitCode() int {
	return e.code
}

// NewFromError generates an InstallerError from an existing error,
// maintaining its error message
func NewFromError(err error, code int) error {
	if err == nil {
		return nil
	}
	return &InstallerError{err: err.Error(), code: code}
}

// New generates an InstallerError from a string
func New(err string, code int) error {
	return &InstallerError{err: err, code: code}
}
