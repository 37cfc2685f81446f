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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/mount-utils"

	"github.com/libero-linux/libero-installer/cmd/config"
	"github.com/libero-linux/libero-installer/pkg/action"
	"github.com/libero-linux/libero-installer/pkg/constants"
	installererror "github.com/libero-linux/libero-installer/pkg/error"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
	"github.com/libero-linux/libero-installer/pkg/utils"
)

// resolveByLabel recovers the partition paths of an already prepared
// disk so mounting works across installer restarts.
func resolveByLabel(cfg *v1.Config, spec *v1.InstallSpec) {
	labels := map[string]string{
		constants.RootPartName: constants.RootLabel,
		constants.BootPartName: constants.BootLabel,
		constants.EfiPartName:  constants.EfiLabel,
		constants.SwapPartName: constants.SwapLabel,
	}
	for role, label := range labels {
		if spec.Partitions.GetByRole(role) != nil {
			continue
		}
		device, err := utils.GetDeviceByLabel(cfg.Runner, label, 1)
		if err != nil {
			continue
		}
		part := &v1.Partition{Role: role, FilesystemLabel: label, Path: device}
		switch role {
		case constants.BootPartName:
			part.FS = constants.BootFs
		case constants.EfiPartName:
			part.FS = constants.EfiFs
		case constants.RootPartName:
			fs, err := utils.GetPartitionFS(device)
			if err == nil {
				spec.RootFs = fs
			}
		}
		spec.Partitions = append(spec.Partitions, part)
	}
}

func NewMountCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "mount",
		Args:  cobra.ExactArgs(0),
		Short: "Mount the prepared target partitions under the install root",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			resolveByLabel(cfg, spec)

			cmd.SilenceUsage = true
			return action.RunMountTargets(cfg, spec)
		},
	}
	root.AddCommand(c)
	return c
}

// register the subcommand into rootCmd
var _ = NewMountCmd(rootCmd)
