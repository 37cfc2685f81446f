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

// Package installer implements the disk preparation engine: layout
// planning, partitioning, the optional encryption and volume manager
// layers, formatting and mount orchestration.
package installer

import (
	"fmt"

	"github.com/libero-linux/libero-installer/pkg/constants"
	installererror "github.com/libero-linux/libero-installer/pkg/error"
	"github.com/libero-linux/libero-installer/pkg/partitioner"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

// Installer drives every disk preparation step against a single
// session. The session is owned by the caller and mutated in place.
type Installer struct {
	config *v1.Config
	spec   *v1.InstallSpec
}

func NewInstaller(config *v1.Config, spec *v1.InstallSpec) *Installer {
	return &Installer{config: config, spec: spec}
}

// PlanLayout computes the partition plan for the session and stores it
// in the session state. Sizes are whole MiB, entries are ordered by
// strictly increasing partition number and only the final entry may
// consume the remainder of the disk.
func (i *Installer) PlanLayout() error {
	if err := i.spec.Sanitize(); err != nil {
		return installererror.NewFromError(err, installererror.Validation)
	}

	var parts v1.PartitionList
	consumed := constants.LeadInSize

	if i.spec.Firmware == v1.BootUEFI {
		parts = append(parts, &v1.Partition{
			Role:            constants.EfiPartName,
			Size:            constants.EfiSize,
			Name:            constants.EfiPartName,
			FilesystemLabel: constants.EfiLabel,
			FS:              constants.EfiFs,
			Flags:           []string{"esp"},
			GPTType:         constants.GPTTypeEfi,
			MountPoint:      constants.EfiMountPoint,
		})
		consumed += constants.EfiSize
	}

	boot := &v1.Partition{
		Role:            constants.BootPartName,
		Size:            constants.BootSize,
		Name:            constants.BootPartName,
		FilesystemLabel: constants.BootLabel,
		FS:              constants.BootFs,
		MBRType:         constants.MBRTypeLinux,
		GPTType:         constants.GPTTypeLinux,
		MountPoint:      constants.BootMountPoint,
	}
	// The boot partition carries the bootable flag on MBR tables only
	if i.spec.Firmware == v1.BootLegacy {
		boot.Flags = []string{"boot"}
	}
	parts = append(parts, boot)
	consumed += constants.BootSize

	if !i.spec.LVM && i.spec.SwapSize > 0 {
		parts = append(parts, &v1.Partition{
			Role:            constants.SwapPartName,
			Size:            i.spec.SwapSize,
			Name:            constants.SwapPartName,
			FilesystemLabel: constants.SwapLabel,
			FS:              "linux-swap",
			MBRType:         constants.MBRTypeSwap,
			GPTType:         constants.GPTTypeSwap,
		})
		consumed += i.spec.SwapSize
	}

	// Root ends a fixed slack before the end of the disk and must keep
	// a minimum working margin beyond the space already consumed
	if i.spec.DiskSize <= constants.RootSlack ||
		i.spec.DiskSize-constants.RootSlack <= consumed+constants.MinRootSize {
		return installererror.New(
			fmt.Sprintf(
				"insufficient space on %s: %d MiB total, %d MiB already allocated",
				i.spec.Target, i.spec.DiskSize, consumed,
			), installererror.InsufficientSpace,
		)
	}
	rootSize := i.spec.DiskSize - constants.RootSlack - consumed

	root := &v1.Partition{
		Role:            constants.RootPartName,
		Size:            rootSize,
		Name:            constants.RootPartName,
		FilesystemLabel: constants.RootLabel,
		FS:              i.spec.RootFs,
		MBRType:         constants.MBRTypeLinux,
		GPTType:         constants.GPTTypeLinux,
		MountPoint:      "/",
	}
	if i.spec.LVM {
		root.MBRType = constants.MBRTypeLVM
		root.GPTType = constants.GPTTypeLVM
		root.Flags = []string{"lvm"}
	}
	parts = append(parts, root)

	for n, part := range parts {
		part.Number = n + 1
	}

	i.spec.Partitions = parts
	return nil
}

// PartitionDevice wipes the target disk and applies the planned
// layout. On return every plan entry carries its resolved device
// node. Partial tables are left as-is on failure, rerunning the whole
// step is the recovery path.
func (i *Installer) PartitionDevice() error {
	if len(i.spec.Partitions) == 0 {
		return installererror.New("no partition layout planned", installererror.Validation)
	}

	disk := partitioner.NewDisk(
		i.spec.Target,
		partitioner.WithRunner(i.config.Runner),
		partitioner.WithFS(i.config.Fs),
		partitioner.WithLogger(i.config.Logger),
	)
	if !disk.Exists() {
		return installererror.New(
			fmt.Sprintf("disk %s does not exist", i.spec.Target), installererror.Validation,
		)
	}

	i.config.Logger.Infof("Wiping previous signatures on %s", i.spec.Target)
	if err := disk.WipeSignatures(); err != nil {
		return installererror.NewFromError(err, installererror.ToolFailure)
	}

	table := i.spec.Firmware.PartTable()
	i.config.Logger.Infof("Creating %s partition table on %s", table, i.spec.Target)
	if _, err := disk.NewPartitionTable(table); err != nil {
		return installererror.NewFromError(err, installererror.ToolFailure)
	}

	// The catalog size the plan was computed from may be stale, check
	// the written table really has room for the whole layout
	var planned uint
	for _, part := range i.spec.Partitions {
		planned += part.Size
	}
	if !disk.CheckDiskFreeSpaceMiB(planned) {
		return installererror.New(
			fmt.Sprintf("disk %s is smaller than the planned %d MiB layout", i.spec.Target, planned),
			installererror.InsufficientSpace,
		)
	}

	gpt := table == constants.GPT
	for _, part := range i.spec.Partitions {
		i.config.Logger.Infof("Creating %s partition (%d MiB)", part.Role, part.Size)
		num, err := disk.AddPartition(part.Size, part.FS, part.Name, part.Flags...)
		if err != nil {
			return installererror.NewFromError(err, installererror.ToolFailure)
		}
		part.Number = num
		if err = disk.SetPartitionType(num, part.TypeCode(gpt)); err != nil {
			return installererror.NewFromError(err, installererror.ToolFailure)
		}
	}

	if err := disk.ReloadPartitionTable(); err != nil {
		return installererror.NewFromError(err, installererror.ToolFailure)
	}

	for _, part := range i.spec.Partitions {
		device, err := disk.FindPartitionDevice(part.Number)
		if err != nil {
			return installererror.NewFromError(err, installererror.ToolFailure)
		}
		part.Path = device
	}
	return nil
}

// FormatPartitions creates the filesystems for every planned role.
// The root filesystem always lands on the resolved root device so an
// active encryption or volume manager layer is formatted through its
// mapper, never through the raw partition.
func (i *Installer) FormatPartitions() error {
	if efi := i.spec.Partitions.GetByRole(constants.EfiPartName); efi != nil {
		i.config.Logger.Infof("Formatting EFI partition %s", efi.Path)
		err := partitioner.FormatDevice(i.config.Runner, efi.Path, efi.FS, efi.FilesystemLabel)
		if err != nil {
			return installererror.NewFromError(err, installererror.ToolFailure)
		}
	}

	if boot := i.spec.Partitions.GetByRole(constants.BootPartName); boot != nil {
		i.config.Logger.Infof("Formatting boot partition %s", boot.Path)
		err := partitioner.FormatDevice(i.config.Runner, boot.Path, boot.FS, boot.FilesystemLabel)
		if err != nil {
			return installererror.NewFromError(err, installererror.ToolFailure)
		}
	}

	if swap := i.spec.Partitions.GetByRole(constants.SwapPartName); swap != nil {
		i.config.Logger.Infof("Formatting swap partition %s", swap.Path)
		if err := partitioner.MakeSwap(i.config.Runner, swap.Path, swap.FilesystemLabel); err != nil {
			return installererror.NewFromError(err, installererror.ToolFailure)
		}
		if _, err := i.config.Runner.Run("swapon", swap.Path); err != nil {
			return installererror.NewFromError(err, installererror.ToolFailure)
		}
	}

	device := i.spec.RootDevice()
	if device == "" {
		return installererror.New("no root device resolved", installererror.Validation)
	}
	i.config.Logger.Infof("Formatting root device %s as %s", device, i.spec.RootFs)
	err := partitioner.FormatDevice(i.config.Runner, device, i.spec.RootFs, constants.RootLabel)
	if err != nil {
		return installererror.NewFromError(err, installererror.ToolFailure)
	}
	return nil
}
