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

// Package ui provides the line oriented terminal console used by the
// interactive session.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

type console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole returns a Console reading from stdin and writing to
// stdout.
func NewConsole() v1.Console {
	return &console{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (c *console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", v1.ErrCancelled
	}
	return strings.TrimSpace(line), nil
}

func (c *console) header(title string, subtitle string) {
	fmt.Fprintf(c.out, "\n== %s ==\n", title)
	if subtitle != "" {
		fmt.Fprintf(c.out, "%s\n", subtitle)
	}
	fmt.Fprintln(c.out)
}

func (c *console) Menu(title string, subtitle string, items []string, selected int) (int, error) {
	c.header(title, subtitle)
	for n, item := range items {
		marker := " "
		if n == selected {
			marker = "*"
		}
		fmt.Fprintf(c.out, " %s %2d) %s\n", marker, n+1, item)
	}

	for {
		fmt.Fprintf(c.out, "\nChoice [%d], q to go back: ", selected+1)
		line, err := c.readLine()
		if err != nil {
			return 0, err
		}
		if line == "" {
			return selected, nil
		}
		if line == "q" || line == "Q" {
			return 0, v1.ErrCancelled
		}
		choice, err := strconv.Atoi(line)
		if err == nil && choice >= 1 && choice <= len(items) {
			return choice - 1, nil
		}
		fmt.Fprintf(c.out, "Invalid choice '%s'\n", line)
	}
}

func (c *console) Confirm(title string, message string) bool {
	c.header(title, message)
	fmt.Fprint(c.out, "Proceed? [y/N]: ")
	line, err := c.readLine()
	if err != nil {
		return false
	}
	return line == "y" || line == "Y" || strings.EqualFold(line, "yes")
}

func (c *console) Prompt(title string, message string, initial string) (string, error) {
	c.header(title, message)
	if initial != "" {
		fmt.Fprintf(c.out, "[%s]: ", initial)
	} else {
		fmt.Fprint(c.out, ": ")
	}
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return initial, nil
	}
	return line, nil
}

func (c *console) PromptSecret(title string, message string) ([]byte, error) {
	c.header(title, message)
	fmt.Fprint(c.out, ": ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(c.out)
	if err != nil {
		return nil, v1.ErrCancelled
	}
	return secret, nil
}

func (c *console) Message(title string, message string) {
	c.header(title, message)
	fmt.Fprint(c.out, "Press enter to continue")
	_, _ = c.readLine()
}

// Status prints a progress indicator refreshed on a timer until the
// returned stop function is called.
func (c *console) Status(message string) func() {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		fmt.Fprintf(c.out, "%s ", message)
		for {
			select {
			case <-done:
				fmt.Fprintln(c.out, " done")
				return
			case <-ticker.C:
				fmt.Fprint(c.out, ".")
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}
