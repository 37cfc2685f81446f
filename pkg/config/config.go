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

package config

import (
	"path/filepath"
	"strconv"

	"github.com/docker/go-units"
	"github.com/twpayne/go-vfs"

	"github.com/libero-linux/libero-installer/pkg/constants"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
	"github.com/libero-linux/libero-installer/pkg/utils"
)

type GenericOptions func(c *v1.Config) error

func WithFs(fs v1.FS) func(c *v1.Config) error {
	return func(c *v1.Config) error {
		c.Fs = fs
		return nil
	}
}

func WithLogger(logger v1.Logger) func(c *v1.Config) error {
	return func(c *v1.Config) error {
		c.Logger = logger
		return nil
	}
}

func WithSyscall(syscall v1.SyscallInterface) func(c *v1.Config) error {
	return func(c *v1.Config) error {
		c.Syscall = syscall
		return nil
	}
}

func WithMounter(mounter v1.Mounter) func(c *v1.Config) error {
	return func(c *v1.Config) error {
		c.Mounter = mounter
		return nil
	}
}

func WithRunner(runner v1.Runner) func(c *v1.Config) error {
	return func(c *v1.Config) error {
		c.Runner = runner
		return nil
	}
}

func WithConsole(console v1.Console) func(c *v1.Config) error {
	return func(c *v1.Config) error {
		c.Console = console
		return nil
	}
}

func NewConfig(opts ...GenericOptions) *v1.Config {
	log := v1.NewLogger()

	c := &v1.Config{
		Fs:      vfs.OSFS,
		Logger:  log,
		Syscall: &v1.RealSyscall{},
	}
	for _, o := range opts {
		err := o(c)
		if err != nil {
			log.Errorf("error applying config option: %s", err.Error())
			return nil
		}
	}

	// delay runner creation after we have run over the options in case we use WithRunner
	if c.Runner == nil {
		c.Runner = &v1.RealRunner{Logger: c.Logger}
	}

	// Now check if the runner has a logger inside, otherwise point our logger into it
	// This can happen if we set the WithRunner option as that doesn't set a logger
	if c.Runner.GetLogger() == nil {
		c.Runner.SetLogger(c.Logger)
	}

	if c.Mounter == nil {
		c.Mounter = v1.NewMounter(constants.MountBinary)
	}

	return c
}

// NewInstallSpec returns an InstallSpec based on defaults and basic
// host checks (e.g. EFI vs BIOS), overridden by any administrator
// defaults found under the configuration directory.
func NewInstallSpec(cfg v1.Config) *v1.InstallSpec {
	firmware := v1.BootLegacy
	if efiExists, _ := utils.Exists(cfg.Fs, constants.EfiDevice); efiExists {
		firmware = v1.BootUEFI
	}

	spec := &v1.InstallSpec{
		Firmware:     firmware,
		RootFs:       constants.LinuxFs,
		SwapSize:     constants.DefaultSwapSize,
		VGName:       constants.DefaultVGName,
		Mapping:      constants.DefaultMapping,
		InstallRoot:  constants.InstallRoot,
		CacheDir:     constants.CacheDir,
		Stage3Local:  filepath.Join(constants.CacheDir, constants.Stage3File),
		DigestLocal:  filepath.Join(constants.CacheDir, constants.Stage3Digest),
		PortageLocal: filepath.Join(constants.CacheDir, constants.PortageFile),
	}

	applyDefaultsFile(cfg, spec)
	return spec
}

// applyDefaultsFile merges the key=value defaults file into the spec.
// A missing file is not an error, a malformed value keeps the builtin
// default and logs it.
func applyDefaultsFile(cfg v1.Config, spec *v1.InstallSpec) {
	file := filepath.Join(constants.ConfigDir, constants.DefaultsEnv)
	env, err := utils.LoadEnvFile(cfg.Fs, file)
	if err != nil {
		return
	}
	cfg.Logger.Debugf("Applying defaults from %s", file)

	if v, ok := env["INSTALL_TARGET"]; ok {
		spec.Target = v
	}
	if v, ok := env["INSTALL_ROOT_FS"]; ok {
		spec.RootFs = v
	}
	if v, ok := env["INSTALL_SWAP_SIZE"]; ok {
		// bare numbers are MiB, anything else goes through suffix parsing
		if mib, perr := strconv.ParseUint(v, 10, 32); perr == nil {
			spec.SwapSize = uint(mib)
		} else if size, err := units.RAMInBytes(v); err == nil && size >= 0 {
			spec.SwapSize = uint(size / units.MiB)
		} else {
			cfg.Logger.Warnf("Ignoring invalid INSTALL_SWAP_SIZE '%s'", v)
		}
	}
	if v, ok := env["INSTALL_ENCRYPT"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			spec.Encrypt = b
		} else {
			cfg.Logger.Warnf("Ignoring invalid INSTALL_ENCRYPT '%s'", v)
		}
	}
	if v, ok := env["INSTALL_LVM"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			spec.LVM = b
		} else {
			cfg.Logger.Warnf("Ignoring invalid INSTALL_LVM '%s'", v)
		}
	}
	if v, ok := env["INSTALL_VG_NAME"]; ok {
		spec.VGName = v
	}
	if v, ok := env["INSTALL_MAPPING"]; ok {
		spec.Mapping = v
	}
	if v, ok := env["INSTALL_MOUNTPOINT"]; ok {
		spec.InstallRoot = v
	}
	if v, ok := env["INSTALL_CACHE_DIR"]; ok {
		spec.SetCacheDir(v)
	}
}
