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

package utils

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

// CopyFile copies source to target with the source file permissions
// left to the target creation defaults.
func CopyFile(fs v1.FS, source string, target string) (err error) {
	sourceFile, err := fs.Open(source)
	if err != nil {
		return err
	}
	defer func() {
		if ferr := sourceFile.Close(); ferr != nil && err == nil {
			err = ferr
		}
	}()

	targetFile, err := fs.Create(target)
	if err != nil {
		return err
	}
	defer func() {
		if ferr := targetFile.Close(); ferr != nil && err == nil {
			err = ferr
		}
	}()

	_, err = io.Copy(targetFile, sourceFile)
	return err
}

// MoveFile moves source to target, first through a rename and, when
// both sit on different filesystems, through a copy followed by the
// removal of the source. The source is only removed once the target
// is fully written.
func MoveFile(fs v1.FS, source string, target string) error {
	err := fs.Rename(source, target)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return CopyAndRemove(fs, source, target)
}

// CopyAndRemove is the cross filesystem fallback of MoveFile.
func CopyAndRemove(fs v1.FS, source string, target string) error {
	if err := CopyFile(fs, source, target); err != nil {
		return err
	}
	return fs.Remove(source)
}

// LoadEnvFile will try to parse the file given and return a map with the kye/values
func LoadEnvFile(fs v1.FS, file string) (map[string]string, error) {
	var envMap map[string]string
	var err error

	f, err := fs.Open(file)
	if err != nil {
		return envMap, err
	}
	defer f.Close()

	envMap, err = godotenv.Parse(f)
	if err != nil {
		return envMap, err
	}

	return envMap, err
}

// GetDeviceByLabel will try to return the device that matches the given label.
// attempts value sets the number of tries to find the device, it
// waits a second between attempts.
func GetDeviceByLabel(runner v1.Runner, label string, attempts int) (string, error) {
	for tries := 0; tries < attempts; tries++ {
		_, _ = runner.Run("udevadm", "settle")
		out, err := runner.Run("blkid", "--label", label)
		if err == nil && strings.TrimSpace(string(out)) != "" {
			return strings.TrimSpace(string(out)), nil
		}
	}
	return "", fmt.Errorf("no device found with label %s", label)
}

// TrimDiskModel normalizes a sysfs model string, falling back to the
// given default when empty.
func TrimDiskModel(model string, fallback string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		return fallback
	}
	return model
}

// TruncateWithEllipsis shortens display strings to max runes. Only
// meant for cosmetic labels, device paths and commands must never be
// truncated.
func TruncateWithEllipsis(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// CleanPath returns an absolute cleaned version of path.
func CleanPath(path string) string {
	return filepath.Clean(path)
}
