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
)

// checkRoot guards every command that touches block devices.
func checkRoot(cfg *v1.Config) error {
	if cfg.Syscall.Geteuid() != 0 {
		return installererror.New("this command requires root privileges", installererror.NotRoot)
	}
	return nil
}

func NewSessionCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "session",
		Args:  cobra.ExactArgs(0),
		Short: "Run the interactive installer session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ReadConfigRun(viper.GetString("config-dir"), mount.New(constants.MountBinary))
			if err != nil {
				return installererror.NewFromError(err, installererror.Validation)
			}
			if err = checkRoot(cfg); err != nil {
				return err
			}
			spec, err := config.ReadInstallSpec(cfg)
			if err != nil {
				cfg.Logger.Errorf("invalid install configuration: %s", err.Error())
				return installererror.NewFromError(err, installererror.Validation)
			}
			cmd.SilenceUsage = true
			return action.RunSession(cfg, spec)
		},
	}
	root.AddCommand(c)
	return c
}

// register the subcommand into rootCmd
var _ = NewSessionCmd(rootCmd)
