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

package v1

import (
	"fmt"
	"path/filepath"
)

type BootMode string

const (
	BootLegacy BootMode = "legacy"
	BootUEFI   BootMode = "uefi"
)

func (b BootMode) String() string {
	switch b {
	case BootUEFI:
		return "UEFI (GPT)"
	case BootLegacy:
		return "Legacy BIOS (MBR)"
	default:
		return "Unknown"
	}
}

// PartTable returns the partition table label for the boot mode.
func (b BootMode) PartTable() string {
	if b == BootUEFI {
		return "gpt"
	}
	return "msdos"
}

// InstallSpec is the session state of a run. It is created once with
// defaults, mutated in place by each preparation step and never
// replaced mid run.
type InstallSpec struct {
	Target    string `yaml:"target,omitempty" mapstructure:"target"`
	DiskModel string `yaml:"-" mapstructure:"-"`
	// DiskSize is the target disk size in MiB
	DiskSize uint `yaml:"-" mapstructure:"-"`

	Firmware BootMode `yaml:"firmware,omitempty" mapstructure:"firmware"`
	RootFs   string   `yaml:"root-fs,omitempty" mapstructure:"root-fs"`
	Encrypt  bool     `yaml:"encrypt,omitempty" mapstructure:"encrypt"`
	LVM      bool     `yaml:"lvm,omitempty" mapstructure:"lvm"`
	// SwapSize is the requested swap size in MiB, zero disables swap
	SwapSize uint `yaml:"swap-size,omitempty" mapstructure:"swap-size"`

	VGName  string `yaml:"vg-name,omitempty" mapstructure:"vg-name"`
	Mapping string `yaml:"mapping,omitempty" mapstructure:"mapping"`

	InstallRoot string `yaml:"install-root,omitempty" mapstructure:"install-root"`
	Prepared    bool   `yaml:"-" mapstructure:"-"`

	// Partitions are resolved by the partition table applier
	Partitions PartitionList `yaml:"-" mapstructure:"-"`
	// RootMapper and SwapMapper supersede the raw partition paths
	// whenever encryption or volume management is active
	RootMapper string `yaml:"-" mapstructure:"-"`
	SwapMapper string `yaml:"-" mapstructure:"-"`

	// Cached artifact locations tracked for relocation once the
	// target root is mounted
	CacheDir     string `yaml:"cache-dir,omitempty" mapstructure:"cache-dir"`
	Stage3Local  string `yaml:"-" mapstructure:"-"`
	DigestLocal  string `yaml:"-" mapstructure:"-"`
	PortageLocal string `yaml:"-" mapstructure:"-"`
}

// Sanitize checks the session is coherent enough to plan a layout.
func (i *InstallSpec) Sanitize() error {
	if i.Target == "" {
		return fmt.Errorf("no target disk selected")
	}
	if i.DiskSize == 0 {
		return fmt.Errorf("unknown size for target disk %s", i.Target)
	}
	switch i.RootFs {
	case "ext4", "xfs", "btrfs":
	default:
		return fmt.Errorf("unsupported root filesystem '%s'", i.RootFs)
	}
	return nil
}

// RootDevice returns the device all root operations must use, the
// mapper path takes precedence over the raw partition once an
// encryption or volume manager layer is active.
func (i InstallSpec) RootDevice() string {
	if i.RootMapper != "" {
		return i.RootMapper
	}
	if part := i.Partitions.GetByRole("root"); part != nil {
		return part.Path
	}
	return ""
}

// SwapDevice returns the device swap operations must use or an empty
// string when the session carries no swap.
func (i InstallSpec) SwapDevice() string {
	if i.SwapMapper != "" {
		return i.SwapMapper
	}
	if part := i.Partitions.GetByRole("swap"); part != nil {
		return part.Path
	}
	return ""
}

// ClearResolved drops every fact derived from a previous target disk.
// Selecting a new disk invalidates partitions, mappers and the
// prepared flag.
func (i *InstallSpec) ClearResolved() {
	i.Partitions = nil
	i.RootMapper = ""
	i.SwapMapper = ""
	i.Prepared = false
}

// SetCacheDir moves the tracked artifact paths below dir keeping
// their base names.
func (i *InstallSpec) SetCacheDir(dir string) {
	if dir == "" {
		return
	}
	i.CacheDir = dir
	i.Stage3Local = filepath.Join(dir, filepath.Base(i.Stage3Local))
	i.DigestLocal = filepath.Join(dir, filepath.Base(i.DigestLocal))
	i.PortageLocal = filepath.Join(dir, filepath.Base(i.PortageLocal))
}
