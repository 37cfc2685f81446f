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
)

func NewDisksCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "disks",
		Args:  cobra.ExactArgs(0),
		Short: "List candidate target disks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ReadConfigRun(viper.GetString("config-dir"), mount.New(constants.MountBinary))
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return action.RunListDisks(cfg)
		},
	}
	root.AddCommand(c)
	return c
}

// register the subcommand into rootCmd
var _ = NewDisksCmd(rootCmd)
