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

package partitioner

import (
	"errors"
	"fmt"
	"strings"

	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

type MkfsCall struct {
	fileSystem string
	label      string
	customOpts []string
	dev        string
	runner     v1.Runner
}

func (mkfs MkfsCall) buildOptions() (string, []string, error) {
	opts := []string{}
	tool := fmt.Sprintf("mkfs.%s", mkfs.fileSystem)

	switch {
	case strings.HasPrefix(mkfs.fileSystem, "ext"):
		opts = append(opts, "-F")
		if mkfs.label != "" {
			opts = append(opts, "-L", mkfs.label)
		}
	case mkfs.fileSystem == "xfs" || mkfs.fileSystem == "btrfs":
		opts = append(opts, "-f")
		if mkfs.label != "" {
			opts = append(opts, "-L", mkfs.label)
		}
	case mkfs.fileSystem == "vfat" || mkfs.fileSystem == "fat32":
		tool = "mkfs.vfat"
		opts = append(opts, "-F", "32")
		if mkfs.label != "" {
			opts = append(opts, "-n", mkfs.label)
		}
	default:
		return "", []string{}, errors.New("unsupported filesystem: " + mkfs.fileSystem)
	}

	opts = append(opts, mkfs.customOpts...)
	opts = append(opts, mkfs.dev)
	return tool, opts, nil
}

func (mkfs MkfsCall) Apply() (string, error) {
	tool, opts, err := mkfs.buildOptions()
	if err != nil {
		return "", err
	}
	out, err := mkfs.runner.Run(tool, opts...)
	return string(out), err
}

// MakeSwap formats the device as swap space
func MakeSwap(runner v1.Runner, device string, label string) error {
	args := []string{}
	if label != "" {
		args = append(args, "-L", label)
	}
	args = append(args, device)
	_, err := runner.Run("mkswap", args...)
	return err
}
