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
	"bufio"
	"encoding/json"
	"errors"
	"strings"

	"github.com/libero-linux/libero-installer/pkg/constants"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

// BlockDevice is one entry of the lsblk JSON tree for a disk.
type BlockDevice struct {
	Name       string        `json:"name,omitempty"`
	Type       string        `json:"type,omitempty"`
	MountPoint string        `json:"mountpoint,omitempty"`
	Children   []BlockDevice `json:"children,omitempty"`
}

// IsSwap reports whether the device is currently used as swap space.
func (b BlockDevice) IsSwap() bool {
	return b.MountPoint == "[SWAP]"
}

// IsMounted reports whether the device holds a filesystem mount.
func (b BlockDevice) IsMounted() bool {
	return b.MountPoint != "" && !b.IsSwap()
}

func unmarshalLsblk(lsblkOut []byte) ([]BlockDevice, error) {
	var objmap map[string]json.RawMessage
	err := json.Unmarshal(lsblkOut, &objmap)
	if err != nil {
		return nil, err
	}

	raw, ok := objmap["blockdevices"]
	if !ok {
		return nil, errors.New("invalid json object, no 'blockdevices' key found")
	}

	var devices []BlockDevice
	err = json.Unmarshal(raw, &devices)
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func flattenHolders(devices []BlockDevice, out *[]BlockDevice) {
	// children first, so the deepest holders are released before
	// the devices they stack on
	for _, dev := range devices {
		flattenHolders(dev.Children, out)
		if dev.Type != "disk" {
			*out = append(*out, dev)
		}
	}
}

// GetDeviceHolders lists every block device stacked on the given disk
// (partitions, encryption mappings, logical volumes), deepest first.
// The disk entry itself is excluded.
func GetDeviceHolders(runner v1.Runner, device string) ([]BlockDevice, error) {
	out, err := runner.Run("lsblk", "-p", "-n", "-J", "--output", "NAME,TYPE,MOUNTPOINT", device)
	if err != nil {
		return nil, err
	}

	devices, err := unmarshalLsblk(out)
	if err != nil {
		return nil, err
	}

	var holders []BlockDevice
	flattenHolders(devices, &holders)
	return holders, nil
}

// IsSwapActive reports whether the exact device path is listed in
// /proc/swaps. Prefix matching would confuse sibling partitions, a
// /dev/sda1 lookup must not match an active /dev/sda10.
func IsSwapActive(fs v1.FS, device string) (bool, error) {
	devices, err := GetSwapDevices(fs, device)
	if err != nil {
		return false, err
	}
	for _, dev := range devices {
		if dev == device {
			return true, nil
		}
	}
	return false, nil
}

// GetSwapDevices parses /proc/swaps and returns the active swap
// devices whose path starts with the given prefix.
func GetSwapDevices(fs v1.FS, prefix string) ([]string, error) {
	data, err := fs.ReadFile(constants.ProcSwaps)
	if err != nil {
		return nil, err
	}

	var devices []string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	// skip the header line
	if scanner.Scan() {
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}
			if strings.HasPrefix(fields[0], prefix) {
				devices = append(devices, fields[0])
			}
		}
	}
	return devices, nil
}
