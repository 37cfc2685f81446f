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

package action

import (
	"fmt"
	"strings"

	"github.com/docker/go-units"

	installererror "github.com/libero-linux/libero-installer/pkg/error"
	"github.com/libero-linux/libero-installer/pkg/installer"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

// planSummary renders the computed layout for the confirmation gate.
func planSummary(spec *v1.InstallSpec) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Target: %s (%s)\n", spec.Target, spec.DiskModel)
	fmt.Fprintf(&sb, "Boot mode: %s\n\n", spec.Firmware)
	for _, part := range spec.Partitions {
		fmt.Fprintf(&sb, "%d. %-5s %10s  %s\n",
			part.Number, part.Role,
			units.BytesSize(float64(part.Size)*units.MiB), part.FS)
	}
	if spec.Encrypt {
		fmt.Fprintf(&sb, "\nRoot partition will be encrypted (mapping %q)", spec.Mapping)
	}
	if spec.LVM {
		fmt.Fprintf(&sb, "\nRoot partition will host volume group %q", spec.VGName)
	}
	return sb.String()
}

// RunPrepareDisk runs the whole preparation sequence on the selected
// target: plan, confirm, deactivate holders, partition, the optional
// encryption and volume manager layers, formatting, then mounting
// with cache relocation. No destructive step runs before the user
// confirms the printed plan.
func RunPrepareDisk(cfg *v1.Config, spec *v1.InstallSpec) (err error) {
	inst := installer.NewInstaller(cfg, spec)

	if err = inst.PlanLayout(); err != nil {
		return err
	}

	if !cfg.Console.Confirm("Prepare disk", planSummary(spec)) {
		cfg.Logger.Info("Disk preparation declined")
		return nil
	}

	cfg.Logger.Infof("Releasing current users of %s", spec.Target)
	stop := cfg.Console.Status(fmt.Sprintf("Deactivating %s", spec.Target))
	err = inst.DeactivateDiskUsage()
	stop()
	if err != nil {
		return err
	}

	stop = cfg.Console.Status(fmt.Sprintf("Partitioning %s", spec.Target))
	err = inst.PartitionDevice()
	stop()
	if err != nil {
		return err
	}

	if err = inst.ApplyEncryption(); err != nil {
		return err
	}

	if err = inst.ApplyVolumeManager(); err != nil {
		return err
	}

	stop = cfg.Console.Status("Creating filesystems")
	err = inst.FormatPartitions()
	stop()
	if err != nil {
		return err
	}

	return RunMountTargets(cfg, spec)
}

// ExitError extracts the exit code of an action error, defaulting to
// the unknown code for plain errors.
func ExitError(err error) int {
	if err == nil {
		return 0
	}
	if installerErr, ok := err.(*installererror.InstallerError); ok {
		return installerErr.ExitCode()
	}
	return installererror.Unknown
}
