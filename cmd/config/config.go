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

// Package config wires the viper flag and file handling into the
// runtime configuration and the install session.
package config

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"k8s.io/mount-utils"

	"github.com/libero-linux/libero-installer/pkg/config"
	"github.com/libero-linux/libero-installer/pkg/constants"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
	"github.com/libero-linux/libero-installer/pkg/ui"
)

// ReadConfigRun builds the runtime configuration from the persistent
// flags and environment.
func ReadConfigRun(configDir string, mounter mount.Interface) (*v1.Config, error) {
	cfg := config.NewConfig(
		config.WithLogger(v1.NewLogger()),
		config.WithMounter(mounter),
		config.WithConsole(ui.NewConsole()),
	)

	// Set debug level
	if viper.GetBool("debug") {
		cfg.Logger.SetLevel(v1.DebugLevel())
	}

	// Set formatter so both file and stdout format are equal
	cfg.Logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:      true,
		DisableColors:    false,
		DisableTimestamp: false,
		FullTimestamp:    true,
	})

	// Logfile
	logfile := viper.GetString("logfile")
	if logfile == "" {
		logfile = constants.LogFile
	}
	o, err := cfg.Fs.OpenFile(logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, constants.FilePerm)
	if err != nil {
		cfg.Logger.Errorf("Could not open %s for logging to file: %s", logfile, err.Error())
	}

	if o != nil && viper.GetBool("quiet") { // if quiet is set, only set the log to the file
		cfg.Logger.SetOutput(o)
	} else if o != nil { // else set it to both stdout and the file
		mw := io.MultiWriter(os.Stdout, o)
		cfg.Logger.SetOutput(mw)
	} else if viper.GetBool("quiet") {
		cfg.Logger.SetOutput(io.Discard)
	}

	if configDir == "" {
		configDir = constants.ConfigDir
	}
	viper.AddConfigPath(configDir)
	viper.SetConfigType("yaml")
	viper.SetConfigName("config.yaml")
	// If a config file is found, read it in.
	_ = viper.MergeInConfig()

	// Set the prefix for vars so we get only the ones starting with LIBERO
	viper.SetEnvPrefix("LIBERO")
	replacer := strings.NewReplacer("-", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv() // read in environment variables that match

	return cfg, nil
}

// ReadInstallSpec builds the install session from defaults and host
// checks, then lets the merged viper configuration override it.
func ReadInstallSpec(cfg *v1.Config) (*v1.InstallSpec, error) {
	spec := config.NewInstallSpec(*cfg)

	vp := viper.Sub("install")
	if vp == nil {
		vp = viper.New()
	}
	if err := vp.Unmarshal(spec); err != nil {
		cfg.Logger.Warnf("error unmarshalling install spec: %s", err)
		return spec, err
	}
	return spec, nil
}
