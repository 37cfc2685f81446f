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

package mocks

import (
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

var _ v1.Console = (*FakeConsole)(nil)

// FakeConsole is a scripted terminal for tests. Menu selections,
// prompt answers and secrets are consumed in FIFO order, an exhausted
// queue behaves as a cancellation.
type FakeConsole struct {
	MenuReturns    []int
	PromptReturns  []string
	SecretReturns  [][]byte
	ConfirmReturn  bool
	Messages       []string
	StatusMessages []string
}

func NewFakeConsole() *FakeConsole {
	return &FakeConsole{}
}

func (c *FakeConsole) Menu(_ string, _ string, _ []string, _ int) (int, error) {
	if len(c.MenuReturns) == 0 {
		return 0, v1.ErrCancelled
	}
	sel := c.MenuReturns[0]
	c.MenuReturns = c.MenuReturns[1:]
	return sel, nil
}

func (c *FakeConsole) Confirm(_ string, _ string) bool {
	return c.ConfirmReturn
}

func (c *FakeConsole) Prompt(_ string, _ string, initial string) (string, error) {
	if len(c.PromptReturns) == 0 {
		return initial, v1.ErrCancelled
	}
	answer := c.PromptReturns[0]
	c.PromptReturns = c.PromptReturns[1:]
	return answer, nil
}

func (c *FakeConsole) PromptSecret(_ string, _ string) ([]byte, error) {
	if len(c.SecretReturns) == 0 {
		return nil, v1.ErrCancelled
	}
	// hand out a copy, callers zero the buffer they receive
	secret := append([]byte{}, c.SecretReturns[0]...)
	c.SecretReturns = c.SecretReturns[1:]
	return secret, nil
}

func (c *FakeConsole) Message(_ string, message string) {
	c.Messages = append(c.Messages, message)
}

func (c *FakeConsole) Status(message string) func() {
	c.StatusMessages = append(c.StatusMessages, message)
	return func() {}
}
