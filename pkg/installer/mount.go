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

package installer

import (
	"path/filepath"
	"strings"

	"github.com/libero-linux/libero-installer/pkg/constants"
	installererror "github.com/libero-linux/libero-installer/pkg/error"
	"github.com/libero-linux/libero-installer/pkg/partitioner"
	"github.com/libero-linux/libero-installer/pkg/utils"
)

// MountTargets assembles the target hierarchy under the install root:
// root first, boot beneath it, the EFI partition beneath boot on UEFI
// systems, then swap activation. If the install root is already a
// mount point the session is marked prepared and nothing is mounted
// again, repeating the action is safe. Partially mounted state is
// left as-is on failure.
func (i *Installer) MountTargets() error {
	device := i.spec.RootDevice()
	if device == "" {
		return installererror.New("no root device resolved", installererror.Validation)
	}

	notMnt, err := i.config.Mounter.IsLikelyNotMountPoint(i.spec.InstallRoot)
	if err == nil && !notMnt {
		i.config.Logger.Infof("%s is already mounted", i.spec.InstallRoot)
		i.spec.Prepared = true
		return nil
	}

	if err = utils.MkdirAll(i.config.Fs, i.spec.InstallRoot, constants.DirPerm); err != nil {
		return installererror.NewFromError(err, installererror.IOFailure)
	}
	i.logFsProbe(device)
	i.config.Logger.Infof("Mounting %s at %s", device, i.spec.InstallRoot)
	if err = i.config.Mounter.Mount(device, i.spec.InstallRoot, i.spec.RootFs, []string{}); err != nil {
		return installererror.NewFromError(err, installererror.MountFailure)
	}
	i.spec.Prepared = true

	if boot := i.spec.Partitions.GetByRole(constants.BootPartName); boot != nil {
		target := filepath.Join(i.spec.InstallRoot, constants.BootMountPoint)
		if err = utils.MkdirAll(i.config.Fs, target, constants.DirPerm); err != nil {
			return installererror.NewFromError(err, installererror.IOFailure)
		}
		i.config.Logger.Infof("Mounting %s at %s", boot.Path, target)
		if err = i.config.Mounter.Mount(boot.Path, target, boot.FS, []string{}); err != nil {
			return installererror.NewFromError(err, installererror.MountFailure)
		}
	}

	if efi := i.spec.Partitions.GetByRole(constants.EfiPartName); efi != nil {
		target := filepath.Join(i.spec.InstallRoot, constants.EfiMountPoint)
		if err = utils.MkdirAll(i.config.Fs, target, constants.DirPerm); err != nil {
			return installererror.NewFromError(err, installererror.IOFailure)
		}
		i.config.Logger.Infof("Mounting %s at %s", efi.Path, target)
		if err = i.config.Mounter.Mount(efi.Path, target, efi.FS, []string{}); err != nil {
			return installererror.NewFromError(err, installererror.MountFailure)
		}
	}

	return i.activateSwap()
}

// logFsProbe records the filesystem signature found on the root
// device right before it is mounted. Best effort, a failed probe
// never aborts the mount.
func (i *Installer) logFsProbe(device string) {
	out, err := i.config.Runner.Run("blkid", "-o", "export", device)
	probe := strings.TrimSpace(string(out))
	if err != nil || probe == "" {
		i.config.Logger.Warnf("Filesystem probe failed for %s", device)
		return
	}
	i.config.Logger.Infof("Filesystem probe for %s:\n%s", device, probe)
}

// activateSwap turns on the session's swap device. A swap logical
// volume is created after the partition formatting pass so it is
// initialized here on first use.
func (i *Installer) activateSwap() error {
	device := i.spec.SwapDevice()
	if device == "" {
		return nil
	}

	if i.spec.SwapMapper != "" {
		kind, err := utils.GetPartitionFS(device)
		if err != nil || kind != "swap" {
			i.config.Logger.Infof("Initializing swap on %s", device)
			if err = partitioner.MakeSwap(i.config.Runner, device, constants.SwapLabel); err != nil {
				return installererror.NewFromError(err, installererror.ToolFailure)
			}
		}
	}

	if active, _ := utils.IsSwapActive(i.config.Fs, device); active {
		i.config.Logger.Debugf("Swap already active on %s", device)
		return nil
	}
	i.config.Logger.Infof("Activating swap on %s", device)
	if _, err := i.config.Runner.Run("swapon", device); err != nil {
		return installererror.NewFromError(err, installererror.ToolFailure)
	}
	return nil
}
