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

	"github.com/docker/go-units"

	installererror "github.com/libero-linux/libero-installer/pkg/error"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
	"github.com/libero-linux/libero-installer/pkg/utils"
)

// DiskLine renders one catalog entry for listings and menus.
func DiskLine(disk v1.DiskInfo) string {
	return fmt.Sprintf(
		"%s  %s  %s", disk.Path,
		units.BytesSize(float64(disk.SizeMB)*units.MiB), disk.Model,
	)
}

// RunListDisks prints the disk catalog.
func RunListDisks(cfg *v1.Config) error {
	disks := utils.ListDisks(cfg.Fs, cfg.Logger)
	if len(disks) == 0 {
		cfg.Logger.Info("No candidate disks found")
		return nil
	}
	for _, disk := range disks {
		fmt.Println(DiskLine(disk))
	}
	return nil
}

// RunSelectDisk presents the disk catalog and records the chosen
// target in the session. A new target invalidates every derived
// partition and mapper fact from an earlier choice.
func RunSelectDisk(cfg *v1.Config, spec *v1.InstallSpec) error {
	disks := utils.ListDisks(cfg.Fs, cfg.Logger)
	if len(disks) == 0 {
		cfg.Console.Message("Select disk", "No candidate disks found")
		return installererror.New("no candidate disks found", installererror.Validation)
	}

	items := make([]string, 0, len(disks))
	selected := 0
	for n, disk := range disks {
		items = append(items, DiskLine(disk))
		if disk.Path == spec.Target {
			selected = n
		}
	}

	choice, err := cfg.Console.Menu("Select disk", "All data on the chosen disk will be lost", items, selected)
	if err != nil {
		return err
	}

	disk := disks[choice]
	spec.Target = disk.Path
	spec.DiskModel = disk.Model
	spec.DiskSize = disk.SizeMB
	spec.ClearResolved()
	cfg.Logger.Infof("Selected target disk %s (%s, %d MiB)", disk.Path, disk.Model, disk.SizeMB)
	return nil
}
