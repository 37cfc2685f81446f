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

package v1

import "errors"

// ErrCancelled is returned by Console methods when the user backs out
// of a menu or prompt without choosing.
var ErrCancelled = errors.New("cancelled by user")

// Console is the narrow surface the engine needs from the terminal UI.
// The engine never renders anything itself, it only asks questions and
// reports progress through this interface.
type Console interface {
	// Menu presents a titled list of items and returns the selected
	// index, or ErrCancelled.
	Menu(title string, subtitle string, items []string, selected int) (int, error)
	// Confirm presents a yes/no question, defaulting to no.
	Confirm(title string, message string) bool
	// Prompt requests a single line of input with an initial value.
	Prompt(title string, message string, initial string) (string, error)
	// PromptSecret requests input without echoing it. The caller owns
	// the returned buffer and is expected to zero it when done.
	PromptSecret(title string, message string) ([]byte, error)
	// Message displays a blocking informational or error message.
	Message(title string, message string)
	// Status reports a long-running operation; the returned function
	// stops the indicator.
	Status(message string) func()
}
