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

package constants

import (
	"os"
)

const (
	// Filesystem labels, fixed so installed systems can resolve
	// partitions by label instead of transient device names
	BootLabel = "LIBERO_BOOT"
	EfiLabel  = "LIBERO_EFI"
	RootLabel = "LIBERO_ROOT"
	SwapLabel = "LIBERO_SWAP"

	// Partition roles
	EfiPartName  = "efi"
	BootPartName = "boot"
	SwapPartName = "swap"
	RootPartName = "root"

	// Partition sizes in MiB
	EfiSize  = uint(512)
	BootSize = uint(512)
	// Trailing slack kept free at the end of the disk
	RootSlack = uint(8)
	// Minimum usable space the root partition must end up with
	MinRootSize = uint(128)
	// First partition starts at a 1MiB offset
	LeadInSize = uint(1)

	DefaultSwapSize = uint(1024)

	GPT   = "gpt"
	MSDOS = "msdos"

	BootFs  = "ext2"
	EfiFs   = "vfat"
	LinuxFs = "ext4"
	XfsFs   = "xfs"
	BtrfsFs = "btrfs"

	// MBR partition type ids and GPT type GUIDs applied after
	// partition creation
	MBRTypeLinux = "83"
	MBRTypeSwap  = "82"
	MBRTypeLVM   = "8e"
	GPTTypeEfi   = "C12A7328-F81F-11D2-BA4B-00A0C93EC93B"
	GPTTypeLinux = "0FC63DAF-8483-4772-8E79-3D69D8477DE4"
	GPTTypeSwap  = "0657FD6D-A4AB-43C4-84E5-0933C84B4F4F"
	GPTTypeLVM   = "E6D6D379-F507-44C2-A23C-238F2A3DF928"

	// Device naming
	MapperDir      = "/dev/mapper"
	DefaultVGName  = "libero"
	DefaultMapping = "cryptroot"

	// Kernel interfaces consumed by the disk catalog and the
	// deactivation sweep
	SysBlockDir = "/sys/block"
	ProcSwaps   = "/proc/swaps"
	EfiDevice   = "/sys/firmware/efi/efivars"
	SectorSize  = 512

	GenericDiskModel = "Generic"

	// Install root and cache locations
	InstallRoot    = "/mnt/libero"
	CacheDir       = "/var/cache/libero-install"
	Stage3File     = "stage3.tar.xz"
	Stage3Digest   = "stage3.tar.xz.DIGESTS"
	PortageFile    = "portage-latest.tar.xz"
	BootMountPoint = "/boot"
	EfiMountPoint  = "/boot/efi"

	ConfigDir   = "/etc/libero-installer"
	DefaultsEnv = "install.env"
	LogFile     = "/var/log/libero-install.log"

	MountBinary = "/usr/bin/mount"

	// Default directory and file modes
	DirPerm     = os.ModeDir | os.ModePerm
	FilePerm    = 0666
	KeyFilePerm = 0600
)

// GetRootFilesystems lists the filesystem kinds supported for the
// root partition, in menu order.
func GetRootFilesystems() []string {
	return []string{LinuxFs, XfsFs, BtrfsFs}
}
