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

package partitioner

import (
	"fmt"

	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

// VolumeGroup drives LVM setup on a single physical volume.
type VolumeGroup struct {
	physical string
	name     string
	runner   v1.Runner
	logger   v1.Logger
}

func NewVolumeGroup(physical string, name string, config *v1.Config) *VolumeGroup {
	return &VolumeGroup{
		physical: physical,
		name:     name,
		runner:   config.Runner,
		logger:   config.Logger,
	}
}

// Create initializes the physical volume and builds the volume group
// on top of it.
func (vg VolumeGroup) Create() error {
	vg.logger.Infof("Creating physical volume on %s", vg.physical)
	out, err := vg.runner.Run("pvcreate", "--force", "--yes", vg.physical)
	if err != nil {
		vg.logger.Errorf("Failed creating physical volume: %s", string(out))
		return err
	}
	vg.logger.Infof("Creating volume group %s", vg.name)
	out, err = vg.runner.Run("vgcreate", vg.name, vg.physical)
	if err != nil {
		vg.logger.Errorf("Failed creating volume group: %s", string(out))
		return err
	}
	return nil
}

// AddVolume creates a fixed size logical volume. Size is in MiB.
func (vg VolumeGroup) AddVolume(name string, size uint) error {
	out, err := vg.runner.Run(
		"lvcreate", "--yes", "-L", fmt.Sprintf("%dM", size), "-n", name, vg.name,
	)
	if err != nil {
		vg.logger.Errorf("Failed creating logical volume %s: %s", name, string(out))
	}
	return err
}

// AddFillingVolume creates a logical volume spanning all remaining
// extents of the group.
func (vg VolumeGroup) AddFillingVolume(name string) error {
	out, err := vg.runner.Run(
		"lvcreate", "--yes", "-l", "100%FREE", "-n", name, vg.name,
	)
	if err != nil {
		vg.logger.Errorf("Failed creating logical volume %s: %s", name, string(out))
	}
	return err
}

// VolumePath returns the device node of a logical volume in the group.
func (vg VolumeGroup) VolumePath(name string) string {
	return fmt.Sprintf("/dev/%s/%s", vg.name, name)
}

// Deactivate takes all logical volumes of the group offline.
func (vg VolumeGroup) Deactivate() error {
	_, err := vg.runner.Run("vgchange", "-an", vg.name)
	return err
}
