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

package utils

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/libero-linux/libero-installer/pkg/constants"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

// virtual device classes excluded from the catalog
var skipPrefixes = []string{"loop", "ram", "fd"}

func isUsableDisk(name string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	return true
}

func readSectorCount(fs v1.FS, name string) int64 {
	data, err := fs.ReadFile(filepath.Join(constants.SysBlockDir, name, "size"))
	if err != nil {
		return -1
	}
	sectors, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return -1
	}
	return sectors
}

func readDiskModel(fs v1.FS, name string) string {
	data, err := fs.ReadFile(filepath.Join(constants.SysBlockDir, name, "device", "model"))
	if err != nil {
		return constants.GenericDiskModel
	}
	return TrimDiskModel(string(data), constants.GenericDiskModel)
}

// ListDisks enumerates the candidate target disks from the kernel
// block device topology. Virtual devices and devices without a
// positive size are skipped. Returns an empty list when the topology
// directory cannot be read, logging the cause.
func ListDisks(fs v1.FS, logger v1.Logger) []v1.DiskInfo {
	disks := []v1.DiskInfo{}

	entries, err := fs.ReadDir(constants.SysBlockDir)
	if err != nil {
		logger.Errorf("Unable to open %s: %v", constants.SysBlockDir, err)
		return disks
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !isUsableDisk(name) {
			continue
		}

		sectors := readSectorCount(fs, name)
		if sectors <= 0 {
			continue
		}
		sizeMB := uint(sectors * constants.SectorSize / (1024 * 1024))
		if sizeMB == 0 {
			continue
		}

		disks = append(disks, v1.DiskInfo{
			Name:   name,
			Path:   filepath.Join("/dev", name),
			Model:  readDiskModel(fs, name),
			SizeMB: sizeMB,
		})
	}
	return disks
}

// GetDiskSizeMB reads the size of a single disk device, returns zero
// when the device is unknown.
func GetDiskSizeMB(fs v1.FS, device string) uint {
	name := filepath.Base(device)
	sectors := readSectorCount(fs, name)
	if sectors <= 0 {
		return 0
	}
	return uint(sectors * constants.SectorSize / (1024 * 1024))
}
