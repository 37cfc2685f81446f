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

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/libero-linux/libero-installer/pkg/constants"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

// addLayoutFlags defines the disk layout flags shared by the non
// interactive commands.
func addLayoutFlags(flags *pflag.FlagSet) {
	flags.String("filesystem", "", "Root filesystem kind (ext4, xfs or btrfs)")
	flags.Uint("swap", constants.DefaultSwapSize, "Swap size in MiB, 0 disables swap")
	flags.Bool("encrypt", false, "Encrypt the root partition")
	flags.Bool("lvm", false, "Manage root and swap as logical volumes")
}

func validateLayoutFlags(log v1.Logger, flags *pflag.FlagSet) error {
	kind, _ := flags.GetString("filesystem")
	if kind == "" {
		return nil
	}
	for _, supported := range constants.GetRootFilesystems() {
		if strings.EqualFold(kind, supported) {
			return nil
		}
	}
	log.Errorf("unsupported root filesystem '%s'", kind)
	return fmt.Errorf("unsupported root filesystem '%s', supported: %s",
		kind, strings.Join(constants.GetRootFilesystems(), ", "))
}
