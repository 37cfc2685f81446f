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

package installer_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs"
	"github.com/twpayne/go-vfs/vfst"

	"github.com/libero-linux/libero-installer/pkg/constants"
	installererror "github.com/libero-linux/libero-installer/pkg/error"
	"github.com/libero-linux/libero-installer/pkg/installer"
	"github.com/libero-linux/libero-installer/pkg/mocks"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

func exitCode(err error) int {
	var instErr *installererror.InstallerError
	if errors.As(err, &instErr) {
		return instErr.ExitCode()
	}
	return 0
}

var _ = Describe("Installer", Label("installer"), func() {
	var config *v1.Config
	var runner *mocks.FakeRunner
	var mounter *mocks.FakeMounter
	var console *mocks.FakeConsole
	var fs vfs.FS
	var cleanup func()
	var spec *v1.InstallSpec
	var inst *installer.Installer

	BeforeEach(func() {
		runner = mocks.NewFakeRunner()
		mounter = mocks.NewFakeMounter()
		console = mocks.NewFakeConsole()
		var err error
		fs, cleanup, err = vfst.NewTestFS(nil)
		Expect(err).Should(BeNil())
		config = &v1.Config{
			Fs:      fs,
			Runner:  runner,
			Logger:  v1.NewNullLogger(),
			Mounter: mounter,
			Console: console,
			Syscall: &mocks.FakeSyscall{},
		}
		spec = &v1.InstallSpec{
			Target:      "/dev/device",
			DiskSize:    20000,
			Firmware:    v1.BootUEFI,
			RootFs:      "ext4",
			SwapSize:    2048,
			VGName:      constants.DefaultVGName,
			Mapping:     constants.DefaultMapping,
			InstallRoot: constants.InstallRoot,
		}
		inst = installer.NewInstaller(config, spec)
	})
	AfterEach(func() {
		cleanup()
	})

	Describe("PlanLayout", Label("plan"), func() {
		It("plans EFI, boot, swap and root on a UEFI target", func() {
			Expect(inst.PlanLayout()).To(BeNil())
			Expect(len(spec.Partitions)).To(Equal(4))

			Expect(spec.Partitions[0].Role).To(Equal("efi"))
			Expect(spec.Partitions[0].Size).To(Equal(uint(512)))
			Expect(spec.Partitions[0].FS).To(Equal("vfat"))
			Expect(spec.Partitions[0].Flags).To(ContainElement("esp"))

			Expect(spec.Partitions[1].Role).To(Equal("boot"))
			Expect(spec.Partitions[1].Size).To(Equal(uint(512)))
			Expect(spec.Partitions[1].FS).To(Equal("ext2"))
			Expect(spec.Partitions[1].Flags).To(BeEmpty())

			Expect(spec.Partitions[2].Role).To(Equal("swap"))
			Expect(spec.Partitions[2].Size).To(Equal(uint(2048)))

			Expect(spec.Partitions[3].Role).To(Equal("root"))
			Expect(spec.Partitions[3].Size).To(Equal(uint(16919)))
			Expect(spec.Partitions[3].FS).To(Equal("ext4"))
			Expect(spec.Partitions[3].MountPoint).To(Equal("/"))
		})
		It("assigns strictly increasing partition numbers", func() {
			Expect(inst.PlanLayout()).To(BeNil())
			for n, part := range spec.Partitions {
				Expect(part.Number).To(Equal(n + 1))
			}
		})
		It("keeps a fixed slack between root and the end of the disk", func() {
			Expect(inst.PlanLayout()).To(BeNil())
			var total uint = 1
			for _, part := range spec.Partitions {
				total += part.Size
			}
			Expect(total).To(Equal(spec.DiskSize - 8))
		})
		It("marks the boot partition bootable on legacy targets only", func() {
			spec.Firmware = v1.BootLegacy
			Expect(inst.PlanLayout()).To(BeNil())
			boot := spec.Partitions.GetByRole("boot")
			Expect(boot.Flags).To(ContainElement("boot"))
			Expect(spec.Partitions.GetByRole("efi")).To(BeNil())
		})
		It("omits the swap partition when LVM carries the swap volume", func() {
			spec.LVM = true
			Expect(inst.PlanLayout()).To(BeNil())
			Expect(spec.Partitions.GetByRole("swap")).To(BeNil())
			root := spec.Partitions.GetByRole("root")
			Expect(root.Flags).To(ContainElement("lvm"))
			Expect(root.GPTType).To(Equal(constants.GPTTypeLVM))
		})
		It("omits the swap partition when the requested size is zero", func() {
			spec.SwapSize = 0
			Expect(inst.PlanLayout()).To(BeNil())
			Expect(spec.Partitions.GetByRole("swap")).To(BeNil())
			Expect(spec.Partitions.GetByRole("root").Size).To(Equal(uint(18967)))
		})
		It("accepts a small disk while the root margin holds", func() {
			spec.Firmware = v1.BootLegacy
			spec.DiskSize = 4000
			spec.SwapSize = 1024
			Expect(inst.PlanLayout()).To(BeNil())
			Expect(spec.Partitions.GetByRole("root").Size).To(Equal(uint(2455)))
		})
		It("fails once the root margin is exhausted", func() {
			spec.Firmware = v1.BootLegacy
			spec.DiskSize = 1670
			spec.SwapSize = 1024
			err := inst.PlanLayout()
			Expect(err).NotTo(BeNil())
			Expect(exitCode(err)).To(Equal(installererror.InsufficientSpace))
		})
		It("fails on an unsupported root filesystem", func() {
			spec.RootFs = "zfs"
			err := inst.PlanLayout()
			Expect(err).NotTo(BeNil())
			Expect(exitCode(err)).To(Equal(installererror.Validation))
		})
		It("fails without a selected target", func() {
			spec.Target = ""
			Expect(exitCode(inst.PlanLayout())).To(Equal(installererror.Validation))
		})
	})

	Describe("PartitionDevice", Label("partition"), func() {
		var created int

		gptHeader := "BYT;\n/dev/device:41943040s:scsi:512:512:gpt:QEMU HARDDISK:;"
		gptParts := []string{
			"1:2048s:1050623s:1048576s:fat32:efi:boot, esp;",
			"2:1050624s:2099199s:1048576s:ext2:boot:;",
			"3:2099200s:6293503s:4194304s:linux-swap(v1):swap:;",
			"4:6293504s:41926655s:35633152s:ext4:root:;",
		}

		BeforeEach(func() {
			spec.DiskSize = 20480
			created = 0
			runner.SideEffect = func(cmd string, args ...string) ([]byte, error) {
				if cmd != "parted" {
					return []byte{}, nil
				}
				for _, arg := range args {
					if arg == "mkpart" {
						created++
					}
				}
				if args[len(args)-1] == "print" {
					out := gptHeader
					for i := 0; i < created; i++ {
						out += "\n" + gptParts[i]
					}
					return []byte(out), nil
				}
				return []byte{}, nil
			}
			Expect(vfs.MkdirAll(fs, "/dev", 0o755)).To(BeNil())
			for _, node := range []string{
				"/dev/device", "/dev/device1", "/dev/device2", "/dev/device3", "/dev/device4",
			} {
				Expect(fs.WriteFile(node, []byte{}, 0o644)).To(BeNil())
			}
			Expect(inst.PlanLayout()).To(BeNil())
		})
		It("wipes, labels and applies the planned layout", func() {
			Expect(inst.PartitionDevice()).To(BeNil())
			Expect(runner.MatchMilestones([][]string{
				{"wipefs", "--all", "/dev/device"},
				{"parted", "--script", "--machine", "--", "/dev/device", "unit", "s", "mklabel", "gpt"},
				{
					"parted", "--script", "--machine", "--", "/dev/device", "unit", "s",
					"mkpart", "efi", "fat32", "2048", "1050623", "set", "1", "esp", "on",
				},
				{"sfdisk", "--part-type", "/dev/device", "1", constants.GPTTypeEfi},
				{
					"parted", "--script", "--machine", "--", "/dev/device", "unit", "s",
					"mkpart", "boot", "ext2", "1050624", "2099199",
				},
				{"sfdisk", "--part-type", "/dev/device", "2", constants.GPTTypeLinux},
				{
					"parted", "--script", "--machine", "--", "/dev/device", "unit", "s",
					"mkpart", "swap", "linux-swap", "2099200", "6293503",
				},
				{"sfdisk", "--part-type", "/dev/device", "3", constants.GPTTypeSwap},
				{
					"parted", "--script", "--machine", "--", "/dev/device", "unit", "s",
					"mkpart", "root", "ext4", "6293504", "41926655",
				},
				{"sfdisk", "--part-type", "/dev/device", "4", constants.GPTTypeLinux},
				{"partprobe", "/dev/device"},
			})).To(BeNil())
		})
		It("resolves the device node of every planned entry", func() {
			Expect(inst.PartitionDevice()).To(BeNil())
			for n, part := range spec.Partitions {
				Expect(part.Path).To(Equal(fmt.Sprintf("/dev/device%d", n+1)))
			}
		})
		It("fails before creating partitions when the disk is smaller than planned", func() {
			smallHeader := "BYT;\n/dev/device:4194304s:scsi:512:512:gpt:QEMU HARDDISK:;"
			runner.SideEffect = func(cmd string, args ...string) ([]byte, error) {
				if cmd == "parted" && args[len(args)-1] == "print" {
					return []byte(smallHeader), nil
				}
				return []byte{}, nil
			}
			err := inst.PartitionDevice()
			Expect(err).NotTo(BeNil())
			Expect(exitCode(err)).To(Equal(installererror.InsufficientSpace))
			for _, cmd := range runner.GetCmds() {
				Expect(strings.Join(cmd, " ")).NotTo(ContainSubstring("mkpart"))
			}
		})
		It("fails when the target disk is missing", func() {
			Expect(fs.Remove("/dev/device")).To(BeNil())
			err := inst.PartitionDevice()
			Expect(err).NotTo(BeNil())
			Expect(exitCode(err)).To(Equal(installererror.Validation))
		})
		It("fails without a planned layout", func() {
			spec.Partitions = nil
			Expect(exitCode(inst.PartitionDevice())).To(Equal(installererror.Validation))
		})
	})

	Describe("ApplyEncryption", Label("luks"), func() {
		BeforeEach(func() {
			// key files are staged under the default temp directory
			Expect(vfs.MkdirAll(fs, os.TempDir(), 0o755)).To(BeNil())
			spec.Partitions = v1.PartitionList{
				{Role: "root", Number: 1, Path: "/dev/device1", FS: "ext4"},
			}
		})
		It("resets the root mapper to the raw partition when disabled", func() {
			spec.Encrypt = false
			spec.RootMapper = "/dev/mapper/stale"
			Expect(inst.ApplyEncryption()).To(BeNil())
			Expect(spec.RootMapper).To(Equal("/dev/device1"))
			Expect(runner.GetCmds()).To(BeEmpty())
		})
		It("formats and opens the container with a staged key file", func() {
			spec.Encrypt = true
			console.SecretReturns = [][]byte{[]byte("hunter2"), []byte("hunter2")}
			Expect(inst.ApplyEncryption()).To(BeNil())
			Expect(spec.RootMapper).To(Equal("/dev/mapper/cryptroot"))
			Expect(runner.MatchMilestones([][]string{
				{"cryptsetup", "luksFormat", "--type", "luks1", "--batch-mode", "--key-file"},
				{"cryptsetup", "open", "--key-file"},
			})).To(BeNil())
			// the key file must not survive the call
			cmds := runner.GetCmds()
			keyFile := cmds[0][6]
			exists := true
			if _, err := fs.Stat(keyFile); err != nil {
				exists = false
			}
			Expect(exists).To(BeFalse())
		})
		It("rejects mismatched passphrases before touching the disk", func() {
			spec.Encrypt = true
			console.SecretReturns = [][]byte{[]byte("hunter2"), []byte("hunter3")}
			err := inst.ApplyEncryption()
			Expect(err).NotTo(BeNil())
			Expect(exitCode(err)).To(Equal(installererror.PassphraseMismatch))
			Expect(runner.GetCmds()).To(BeEmpty())
		})
		It("propagates a cancelled prompt", func() {
			spec.Encrypt = true
			err := inst.ApplyEncryption()
			Expect(err).To(MatchError(v1.ErrCancelled))
			Expect(runner.GetCmds()).To(BeEmpty())
		})
	})

	Describe("ApplyVolumeManager", Label("lvm"), func() {
		BeforeEach(func() {
			spec.LVM = true
			spec.Partitions = v1.PartitionList{
				{Role: "root", Number: 1, Path: "/dev/device1", FS: "ext4"},
			}
		})
		It("clears a stale swap mapper when disabled", func() {
			spec.LVM = false
			spec.SwapMapper = "/dev/libero/swap"
			Expect(inst.ApplyVolumeManager()).To(BeNil())
			Expect(spec.SwapMapper).To(BeEmpty())
			Expect(runner.GetCmds()).To(BeEmpty())
		})
		It("creates the swap volume before the filling root volume", func() {
			Expect(inst.ApplyVolumeManager()).To(BeNil())
			Expect(runner.MatchMilestones([][]string{
				{"pvcreate", "--force", "--yes", "/dev/device1"},
				{"vgcreate", "libero", "/dev/device1"},
				{"lvcreate", "--yes", "-L", "2048M", "-n", "swap", "libero"},
				{"lvcreate", "--yes", "-l", "100%FREE", "-n", "root", "libero"},
			})).To(BeNil())
			Expect(spec.RootMapper).To(Equal("/dev/libero/root"))
			Expect(spec.SwapMapper).To(Equal("/dev/libero/swap"))
		})
		It("builds on top of an open encryption mapping", func() {
			spec.RootMapper = "/dev/mapper/cryptroot"
			Expect(inst.ApplyVolumeManager()).To(BeNil())
			Expect(runner.MatchMilestones([][]string{
				{"pvcreate", "--force", "--yes", "/dev/mapper/cryptroot"},
			})).To(BeNil())
		})
		It("skips the swap volume when swap is disabled", func() {
			spec.SwapSize = 0
			Expect(inst.ApplyVolumeManager()).To(BeNil())
			Expect(spec.SwapMapper).To(BeEmpty())
			for _, cmd := range runner.GetCmds() {
				Expect(strings.Join(cmd, " ")).NotTo(ContainSubstring("-n swap"))
			}
		})
	})

	Describe("FormatPartitions", Label("format"), func() {
		BeforeEach(func() {
			spec.Partitions = v1.PartitionList{
				{Role: "efi", Number: 1, Path: "/dev/device1", FS: "vfat", FilesystemLabel: "LIBERO_EFI"},
				{Role: "boot", Number: 2, Path: "/dev/device2", FS: "ext2", FilesystemLabel: "LIBERO_BOOT"},
				{Role: "swap", Number: 3, Path: "/dev/device3", FS: "linux-swap", FilesystemLabel: "LIBERO_SWAP"},
				{Role: "root", Number: 4, Path: "/dev/device4", FS: "ext4", FilesystemLabel: "LIBERO_ROOT"},
			}
		})
		It("formats every role with its filesystem and label", func() {
			Expect(inst.FormatPartitions()).To(BeNil())
			Expect(runner.CmdsMatch([][]string{
				{"mkfs.vfat", "-F", "32", "-n", "LIBERO_EFI", "/dev/device1"},
				{"mkfs.ext2", "-F", "-L", "LIBERO_BOOT", "/dev/device2"},
				{"mkswap", "-L", "LIBERO_SWAP", "/dev/device3"},
				{"swapon", "/dev/device3"},
				{"mkfs.ext4", "-F", "-L", "LIBERO_ROOT", "/dev/device4"},
			})).To(BeNil())
		})
		It("formats root through the mapper when a layer is active", func() {
			spec.RootMapper = "/dev/mapper/cryptroot"
			Expect(inst.FormatPartitions()).To(BeNil())
			Expect(runner.IncludesCmds([][]string{
				{"mkfs.ext4", "-F", "-L", "LIBERO_ROOT", "/dev/mapper/cryptroot"},
			})).To(BeNil())
			for _, cmd := range runner.GetCmds() {
				Expect(strings.Join(cmd, " ")).NotTo(ContainSubstring("mkfs.ext4 -F -L LIBERO_ROOT /dev/device4"))
			}
		})
		It("fails when no root device was resolved", func() {
			spec.Partitions = v1.PartitionList{}
			Expect(exitCode(inst.FormatPartitions())).To(Equal(installererror.Validation))
		})
	})

	Describe("MountTargets", Label("mount"), func() {
		BeforeEach(func() {
			spec.Partitions = v1.PartitionList{
				{Role: "efi", Number: 1, Path: "/dev/device1", FS: "vfat", MountPoint: "/boot/efi"},
				{Role: "boot", Number: 2, Path: "/dev/device2", FS: "ext2", MountPoint: "/boot"},
				{Role: "swap", Number: 3, Path: "/dev/device3", FS: "linux-swap"},
				{Role: "root", Number: 4, Path: "/dev/device4", FS: "ext4", MountPoint: "/"},
			}
			swaps := "Filename\tType\tSize\tUsed\tPriority\n"
			Expect(fs.Mkdir("/proc", 0o755)).To(BeNil())
			Expect(fs.WriteFile(constants.ProcSwaps, []byte(swaps), 0o644)).To(BeNil())
		})
		It("mounts root, boot and EFI under the install root and activates swap", func() {
			Expect(inst.MountTargets()).To(BeNil())
			Expect(spec.Prepared).To(BeTrue())

			mounts, err := mounter.List()
			Expect(err).To(BeNil())
			Expect(len(mounts)).To(Equal(3))
			Expect(mounts[0].Device).To(Equal("/dev/device4"))
			Expect(mounts[0].Path).To(Equal("/mnt/libero"))
			Expect(mounts[1].Device).To(Equal("/dev/device2"))
			Expect(mounts[1].Path).To(Equal("/mnt/libero/boot"))
			Expect(mounts[2].Device).To(Equal("/dev/device1"))
			Expect(mounts[2].Path).To(Equal("/mnt/libero/boot/efi"))

			Expect(runner.CmdsMatch([][]string{
				{"blkid", "-o", "export", "/dev/device4"},
				{"swapon", "/dev/device3"},
			})).To(BeNil())
		})
		It("does nothing when the install root is already mounted", func() {
			Expect(inst.MountTargets()).To(BeNil())
			runner.ClearCmds()

			Expect(inst.MountTargets()).To(BeNil())
			Expect(spec.Prepared).To(BeTrue())
			Expect(runner.GetCmds()).To(BeEmpty())
			mounts, _ := mounter.List()
			Expect(len(mounts)).To(Equal(3))
		})
		It("skips swap activation when the device is already swapped on", func() {
			swaps := "Filename\tType\tSize\tUsed\tPriority\n/dev/device3 partition 2097148 0 -2\n"
			Expect(fs.WriteFile(constants.ProcSwaps, []byte(swaps), 0o644)).To(BeNil())
			Expect(inst.MountTargets()).To(BeNil())
			Expect(runner.CmdsMatch([][]string{
				{"blkid", "-o", "export", "/dev/device4"},
			})).To(BeNil())
		})
		It("activates swap when only a longer sibling partition is swapped on", func() {
			swaps := "Filename\tType\tSize\tUsed\tPriority\n/dev/device30 partition 2097148 0 -2\n"
			Expect(fs.WriteFile(constants.ProcSwaps, []byte(swaps), 0o644)).To(BeNil())
			Expect(inst.MountTargets()).To(BeNil())
			Expect(runner.IncludesCmds([][]string{
				{"swapon", "/dev/device3"},
			})).To(BeNil())
		})
		It("skips swap handling entirely on a swapless session", func() {
			spec.Partitions = v1.PartitionList{
				{Role: "root", Number: 1, Path: "/dev/device1", FS: "ext4", MountPoint: "/"},
			}
			Expect(inst.MountTargets()).To(BeNil())
			Expect(runner.CmdsMatch([][]string{
				{"blkid", "-o", "export", "/dev/device1"},
			})).To(BeNil())
		})
		It("fails when mounting the root device fails", func() {
			mounter.ErrorOnMount = true
			err := inst.MountTargets()
			Expect(err).NotTo(BeNil())
			Expect(exitCode(err)).To(Equal(installererror.MountFailure))
			Expect(spec.Prepared).To(BeFalse())
		})
	})

	Describe("DeactivateDiskUsage", Label("deactivate"), func() {
		BeforeEach(func() {
			lsblkOut := `{"blockdevices": [
				{"name": "/dev/device", "type": "disk", "children": [
					{"name": "/dev/device1", "type": "part", "mountpoint": "/boot"},
					{"name": "/dev/device2", "type": "part", "mountpoint": "[SWAP]"},
					{"name": "/dev/device3", "type": "part", "children": [
						{"name": "/dev/mapper/cryptroot", "type": "crypt", "mountpoint": "/mnt/libero"}
					]}
				]}
			]}`
			runner.SideEffect = func(cmd string, _ ...string) ([]byte, error) {
				if cmd == "lsblk" {
					return []byte(lsblkOut), nil
				}
				return []byte{}, nil
			}
			swaps := "Filename\tType\tSize\tUsed\tPriority\n/dev/device2 partition 2097148 0 -2\n"
			Expect(fs.Mkdir("/proc", 0o755)).To(BeNil())
			Expect(fs.WriteFile(constants.ProcSwaps, []byte(swaps), 0o644)).To(BeNil())
		})
		It("releases holders deepest first before sweeping swap entries", func() {
			Expect(inst.DeactivateDiskUsage()).To(BeNil())
			Expect(runner.MatchMilestones([][]string{
				{"umount", "-f", "/dev/device1"},
				{"swapoff", "/dev/device2"},
				{"umount", "-f", "/dev/mapper/cryptroot"},
				{"cryptsetup", "close", "/dev/mapper/cryptroot"},
				{"swapoff", "/dev/device2"},
			})).To(BeNil())
		})
		It("takes an active swap volume offline after switching it off", func() {
			lsblkOut := `{"blockdevices": [
				{"name": "/dev/device", "type": "disk", "children": [
					{"name": "/dev/device1", "type": "part", "children": [
						{"name": "/dev/libero/swap", "type": "lvm", "mountpoint": "[SWAP]"},
						{"name": "/dev/libero/root", "type": "lvm", "mountpoint": "/mnt/libero"}
					]}
				]}
			]}`
			runner.SideEffect = func(cmd string, _ ...string) ([]byte, error) {
				if cmd == "lsblk" {
					return []byte(lsblkOut), nil
				}
				return []byte{}, nil
			}
			Expect(inst.DeactivateDiskUsage()).To(BeNil())
			Expect(runner.MatchMilestones([][]string{
				{"swapoff", "/dev/libero/swap"},
				{"lvchange", "-an", "/dev/libero/swap"},
				{"umount", "-f", "/dev/libero/root"},
				{"lvchange", "-an", "/dev/libero/root"},
			})).To(BeNil())
		})
		It("collects failures into a busy resource error", func() {
			side := runner.SideEffect
			runner.SideEffect = func(cmd string, args ...string) ([]byte, error) {
				if cmd == "umount" {
					return []byte{}, errors.New("target is busy")
				}
				return side(cmd, args...)
			}
			err := inst.DeactivateDiskUsage()
			Expect(err).NotTo(BeNil())
			Expect(exitCode(err)).To(Equal(installererror.BusyResource))
			// remaining holders are still processed
			Expect(runner.IncludesCmds([][]string{
				{"cryptsetup", "close", "/dev/mapper/cryptroot"},
				{"swapoff", "/dev/device2"},
			})).To(BeNil())
		})
	})

	Describe("RelocateCache", Label("cache"), func() {
		BeforeEach(func() {
			spec.CacheDir = constants.CacheDir
			spec.Stage3Local = filepath.Join(constants.CacheDir, constants.Stage3File)
			spec.DigestLocal = filepath.Join(constants.CacheDir, constants.Stage3Digest)
			spec.PortageLocal = filepath.Join(constants.CacheDir, constants.PortageFile)
			Expect(vfs.MkdirAll(fs, constants.CacheDir, 0o755)).To(BeNil())
			Expect(fs.WriteFile(spec.Stage3Local, []byte("stage3 payload"), 0o644)).To(BeNil())
			Expect(fs.WriteFile(spec.DigestLocal, []byte("digest payload"), 0o644)).To(BeNil())
		})
		It("moves cached artifacts to the relocated cache directory", func() {
			oldPaths := inst.CachePaths()
			oldStage3 := spec.Stage3Local
			spec.SetCacheDir(filepath.Join(constants.InstallRoot, constants.CacheDir))

			inst.RelocateCache(oldPaths)

			data, err := fs.ReadFile(spec.Stage3Local)
			Expect(err).To(BeNil())
			Expect(string(data)).To(Equal("stage3 payload"))
			if _, err := fs.Stat(oldStage3); err == nil {
				Fail("old cache file should be gone")
			}
			// the portage tarball was never fetched, nothing to move
			if _, err := fs.Stat(spec.PortageLocal); err == nil {
				Fail("missing artifact must not be created")
			}
		})
		It("is a no-op when the cache location did not change", func() {
			inst.RelocateCache(inst.CachePaths())
			data, err := fs.ReadFile(spec.Stage3Local)
			Expect(err).To(BeNil())
			Expect(string(data)).To(Equal("stage3 payload"))
		})
	})
})
