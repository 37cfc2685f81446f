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
	"github.com/hashicorp/go-multierror"

	installererror "github.com/libero-linux/libero-installer/pkg/error"
	"github.com/libero-linux/libero-installer/pkg/utils"
)

// DeactivateDiskUsage releases every holder of the target disk before
// repartitioning: swap is switched off, mounts are force-unmounted,
// encryption mappings are closed and logical volumes taken offline.
// Holders are processed children first so stacked devices unwind in
// the right order. All failures are collected, a busy disk after this
// step is a hard stop for the partitioning step.
func (i *Installer) DeactivateDiskUsage() error {
	var allErrs *multierror.Error

	holders, err := utils.GetDeviceHolders(i.config.Runner, i.spec.Target)
	if err != nil {
		i.config.Logger.Warnf("Could not inspect holders of %s: %v", i.spec.Target, err)
	}

	for _, holder := range holders {
		// A swap holder can still be a crypt mapping or a logical
		// volume, the type switch below must run for it as well.
		if holder.IsSwap() {
			i.config.Logger.Debugf("Deactivating swap on %s", holder.Name)
			if _, err := i.config.Runner.Run("swapoff", holder.Name); err != nil {
				allErrs = multierror.Append(allErrs, err)
			}
		} else if holder.IsMounted() {
			i.config.Logger.Debugf("Unmounting %s from %s", holder.Name, holder.MountPoint)
			if _, err := i.config.Runner.Run("umount", "-f", holder.Name); err != nil {
				allErrs = multierror.Append(allErrs, err)
			}
		}
		switch holder.Type {
		case "crypt":
			i.config.Logger.Debugf("Closing encryption mapping %s", holder.Name)
			if _, err := i.config.Runner.Run("cryptsetup", "close", holder.Name); err != nil {
				allErrs = multierror.Append(allErrs, err)
			}
		case "lvm":
			i.config.Logger.Debugf("Deactivating logical volume %s", holder.Name)
			if _, err := i.config.Runner.Run("lvchange", "-an", holder.Name); err != nil {
				allErrs = multierror.Append(allErrs, err)
			}
		}
	}

	// Sweep swap entries matching the disk prefix, holders may miss
	// devices swapped on without being in the lsblk tree anymore
	swaps, err := utils.GetSwapDevices(i.config.Fs, i.spec.Target)
	if err != nil {
		i.config.Logger.Warnf("Could not read active swap devices: %v", err)
	}
	for _, swap := range swaps {
		i.config.Logger.Debugf("Deactivating swap on %s", swap)
		if _, err := i.config.Runner.Run("swapoff", swap); err != nil {
			allErrs = multierror.Append(allErrs, err)
		}
	}

	if err := allErrs.ErrorOrNil(); err != nil {
		return installererror.NewFromError(err, installererror.BusyResource)
	}
	return nil
}
