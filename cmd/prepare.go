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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/mount-utils"

	"github.com/libero-linux/libero-installer/cmd/config"
	"github.com/libero-linux/libero-installer/pkg/action"
	"github.com/libero-linux/libero-installer/pkg/constants"
	installererror "github.com/libero-linux/libero-installer/pkg/error"
	"github.com/libero-linux/libero-installer/pkg/utils"
)

func NewPrepareCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "prepare DEVICE",
		Args:  cobra.ExactArgs(1),
		Short: "Prepare a target disk without the interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.ReadConfigRun(viper.GetString("config-dir"), mount.New(constants.MountBinary))
			if err != nil {
				return err
			}
			if err = checkRoot(cfg); err != nil {
				return err
			}
			spec, err := config.ReadInstallSpec(cfg)
			if err != nil {
				return installererror.NewFromError(err, installererror.Validation)
			}

			spec.Target = args[0]
			spec.ClearResolved()
			spec.DiskSize = utils.GetDiskSizeMB(cfg.Fs, spec.Target)
			model, mErr := cfg.Fs.ReadFile(
				filepath.Join(constants.SysBlockDir, filepath.Base(spec.Target), "device/model"))
			if mErr == nil {
				spec.DiskModel = utils.TrimDiskModel(string(model), constants.GenericDiskModel)
			} else {
				spec.DiskModel = constants.GenericDiskModel
			}

			if err = validateLayoutFlags(cfg.Logger, cmd.Flags()); err != nil {
				return installererror.NewFromError(err, installererror.Validation)
			}
			if fs, _ := cmd.Flags().GetString("filesystem"); fs != "" {
				spec.RootFs = strings.ToLower(fs)
			}
			if cmd.Flags().Changed("swap") {
				swap, _ := cmd.Flags().GetUint("swap")
				spec.SwapSize = swap
			}
			if encrypt, _ := cmd.Flags().GetBool("encrypt"); encrypt {
				spec.Encrypt = true
			}
			if lvm, _ := cmd.Flags().GetBool("lvm"); lvm {
				spec.LVM = true
			}

			cmd.SilenceUsage = true
			return action.RunPrepareDisk(cfg, spec)
		},
	}
	root.AddCommand(c)
	addLayoutFlags(c.Flags())
	return c
}

// register the subcommand into rootCmd
var _ = NewPrepareCmd(rootCmd)
