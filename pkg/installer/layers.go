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
	"bytes"

	"github.com/libero-linux/libero-installer/pkg/constants"
	installererror "github.com/libero-linux/libero-installer/pkg/error"
	"github.com/libero-linux/libero-installer/pkg/partitioner"
)

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ApplyEncryption sets up the block encryption layer on the root
// partition. With encryption disabled the root mapper is reset to the
// raw partition path so a previously resolved mapping never leaks
// into later steps. The passphrase is confirmed before any on-disk
// command runs and both buffers are zeroed before returning.
func (i *Installer) ApplyEncryption() error {
	root := i.spec.Partitions.GetByRole(constants.RootPartName)
	if root == nil || root.Path == "" {
		return installererror.New("no root partition resolved", installererror.Validation)
	}

	if !i.spec.Encrypt {
		i.spec.RootMapper = root.Path
		return nil
	}

	passphrase, err := i.config.Console.PromptSecret("Disk encryption", "Enter passphrase")
	if err != nil {
		return err
	}
	defer zeroBytes(passphrase)
	confirmation, err := i.config.Console.PromptSecret("Disk encryption", "Confirm passphrase")
	if err != nil {
		return err
	}
	defer zeroBytes(confirmation)

	if !bytes.Equal(passphrase, confirmation) {
		return installererror.New("passphrases do not match", installererror.PassphraseMismatch)
	}

	luks := partitioner.NewLuksDevice(root.Path, i.spec.Mapping, i.config)
	if err := luks.FormatAndOpen(passphrase); err != nil {
		return installererror.NewFromError(err, installererror.ToolFailure)
	}

	i.spec.RootMapper = luks.MapperPath()
	return nil
}

// ApplyVolumeManager builds the LVM layer on the resolved root device.
// With the volume manager disabled any stale swap mapper from an
// earlier configuration is cleared, swap is then a raw partition or
// absent. The swap logical volume is created before the root one
// because root fills all remaining extents.
func (i *Installer) ApplyVolumeManager() error {
	if !i.spec.LVM {
		i.spec.SwapMapper = ""
		return nil
	}

	device := i.spec.RootDevice()
	if device == "" {
		return installererror.New("no root device resolved", installererror.Validation)
	}

	vg := partitioner.NewVolumeGroup(device, i.spec.VGName, i.config)
	if err := vg.Create(); err != nil {
		return installererror.NewFromError(err, installererror.ToolFailure)
	}

	if i.spec.SwapSize > 0 {
		i.config.Logger.Infof("Creating swap logical volume (%d MiB)", i.spec.SwapSize)
		if err := vg.AddVolume(constants.SwapPartName, i.spec.SwapSize); err != nil {
			return installererror.NewFromError(err, installererror.ToolFailure)
		}
		i.spec.SwapMapper = vg.VolumePath(constants.SwapPartName)
	}

	i.config.Logger.Infof("Creating root logical volume")
	if err := vg.AddFillingVolume(constants.RootPartName); err != nil {
		return installererror.NewFromError(err, installererror.ToolFailure)
	}
	i.spec.RootMapper = vg.VolumePath(constants.RootPartName)
	return nil
}
