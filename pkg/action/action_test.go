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

package action_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs"
	"github.com/twpayne/go-vfs/vfst"

	"github.com/libero-linux/libero-installer/pkg/action"
	"github.com/libero-linux/libero-installer/pkg/constants"
	installererror "github.com/libero-linux/libero-installer/pkg/error"
	"github.com/libero-linux/libero-installer/pkg/mocks"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

var _ = Describe("Actions", Label("action"), func() {
	var config *v1.Config
	var runner *mocks.FakeRunner
	var mounter *mocks.FakeMounter
	var console *mocks.FakeConsole
	var fs vfs.FS
	var cleanup func()
	var spec *v1.InstallSpec

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
			Firmware:    v1.BootLegacy,
			RootFs:      "ext4",
			VGName:      constants.DefaultVGName,
			Mapping:     constants.DefaultMapping,
			InstallRoot: constants.InstallRoot,
			CacheDir:    constants.CacheDir,
		}
	})
	AfterEach(func() {
		cleanup()
	})

	Describe("DiskLine", func() {
		It("renders path, size and model", func() {
			line := action.DiskLine(v1.DiskInfo{
				Name: "sda", Path: "/dev/sda", Model: "QEMU HARDDISK", SizeMB: 20480,
			})
			Expect(line).To(Equal("/dev/sda  20GiB  QEMU HARDDISK"))
		})
	})

	Describe("RunSelectDisk", func() {
		BeforeEach(func() {
			Expect(vfs.MkdirAll(fs, "/sys/block/sda/device", 0o755)).To(BeNil())
			Expect(fs.WriteFile("/sys/block/sda/size", []byte("41943040\n"), 0o644)).To(BeNil())
			Expect(fs.WriteFile("/sys/block/sda/device/model", []byte("QEMU HARDDISK\n"), 0o644)).To(BeNil())
		})
		It("records the chosen disk and drops stale facts", func() {
			spec.Partitions = v1.PartitionList{{Role: "root", Path: "/dev/old1"}}
			spec.RootMapper = "/dev/mapper/cryptroot"
			spec.Prepared = true
			console.MenuReturns = []int{0}

			Expect(action.RunSelectDisk(config, spec)).To(BeNil())
			Expect(spec.Target).To(Equal("/dev/sda"))
			Expect(spec.DiskModel).To(Equal("QEMU HARDDISK"))
			Expect(spec.DiskSize).To(Equal(uint(20480)))
			Expect(spec.Partitions).To(BeNil())
			Expect(spec.RootMapper).To(BeEmpty())
			Expect(spec.Prepared).To(BeFalse())
		})
		It("propagates a cancelled menu", func() {
			err := action.RunSelectDisk(config, spec)
			Expect(err).To(MatchError(v1.ErrCancelled))
			Expect(spec.Target).To(BeEmpty())
		})
		It("fails without candidate disks", func() {
			Expect(fs.RemoveAll("/sys/block/sda")).To(BeNil())
			err := action.RunSelectDisk(config, spec)
			Expect(err).NotTo(BeNil())
			Expect(action.ExitError(err)).To(Equal(installererror.Validation))
		})
	})

	Describe("RunPrepareDisk", func() {
		mbrHeader := "BYT;\n/dev/device:41943040s:scsi:512:512:msdos:QEMU HARDDISK:;"
		mbrParts := []string{
			"1:2048s:1050623s:1048576s:ext2::boot;",
			"2:1050624s:41926655s:40876032s:ext4::;",
		}

		BeforeEach(func() {
			spec.Target = "/dev/device"
			spec.DiskModel = "QEMU HARDDISK"
			spec.DiskSize = 20480
			spec.SwapSize = 0

			created := 0
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
					out := mbrHeader
					for i := 0; i < created; i++ {
						out += "\n" + mbrParts[i]
					}
					return []byte(out), nil
				}
				return []byte{}, nil
			}
			Expect(vfs.MkdirAll(fs, "/dev", 0o755)).To(BeNil())
			for _, node := range []string{"/dev/device", "/dev/device1", "/dev/device2"} {
				Expect(fs.WriteFile(node, []byte{}, 0o644)).To(BeNil())
			}
		})
		It("issues no command when the plan is declined", func() {
			console.ConfirmReturn = false
			Expect(action.RunPrepareDisk(config, spec)).To(BeNil())
			Expect(runner.GetCmds()).To(BeEmpty())
			Expect(spec.Prepared).To(BeFalse())
		})
		It("runs the whole sequence once confirmed", func() {
			console.ConfirmReturn = true
			Expect(action.RunPrepareDisk(config, spec)).To(BeNil())

			Expect(runner.MatchMilestones([][]string{
				{"lsblk"},
				{"wipefs", "--all", "/dev/device"},
				{"parted", "--script", "--machine", "--", "/dev/device", "unit", "s", "mklabel", "msdos"},
				{
					"parted", "--script", "--machine", "--", "/dev/device", "unit", "s",
					"mkpart", "primary", "ext2", "2048", "1050623", "set", "1", "boot", "on",
				},
				{"sfdisk", "--part-type", "/dev/device", "1", "83"},
				{
					"parted", "--script", "--machine", "--", "/dev/device", "unit", "s",
					"mkpart", "primary", "ext4", "1050624", "41926655",
				},
				{"sfdisk", "--part-type", "/dev/device", "2", "83"},
				{"partprobe", "/dev/device"},
				{"mkfs.ext2", "-F", "-L", "LIBERO_BOOT", "/dev/device1"},
				{"mkfs.ext4", "-F", "-L", "LIBERO_ROOT", "/dev/device2"},
				{"blkid", "-o", "export", "/dev/device2"},
			})).To(BeNil())

			Expect(spec.Prepared).To(BeTrue())
			mounts, _ := mounter.List()
			Expect(len(mounts)).To(Equal(2))
			Expect(mounts[0].Path).To(Equal("/mnt/libero"))
			Expect(mounts[1].Path).To(Equal("/mnt/libero/boot"))

			// without a layer the mapper is the raw root partition
			Expect(spec.RootMapper).To(Equal("/dev/device2"))
			Expect(spec.SwapMapper).To(BeEmpty())
		})
		It("stops before partitioning on planning failures", func() {
			console.ConfirmReturn = true
			spec.DiskSize = 600
			err := action.RunPrepareDisk(config, spec)
			Expect(err).NotTo(BeNil())
			Expect(action.ExitError(err)).To(Equal(installererror.InsufficientSpace))
			Expect(runner.GetCmds()).To(BeEmpty())
		})
	})

	Describe("RunMountTargets", func() {
		BeforeEach(func() {
			spec.Target = "/dev/device"
			spec.Partitions = v1.PartitionList{
				{Role: "root", Number: 1, Path: "/dev/device1", FS: "ext4", MountPoint: "/"},
			}
			spec.Stage3Local = "/var/cache/libero-install/stage3.tar.xz"
			spec.DigestLocal = "/var/cache/libero-install/stage3.tar.xz.DIGESTS"
			spec.PortageLocal = "/var/cache/libero-install/portage-latest.tar.xz"
			Expect(vfs.MkdirAll(fs, constants.CacheDir, 0o755)).To(BeNil())
			Expect(fs.WriteFile(spec.Stage3Local, []byte("stage3 payload"), 0o644)).To(BeNil())
		})
		It("mounts the target and moves the cache onto it", func() {
			Expect(action.RunMountTargets(config, spec)).To(BeNil())
			Expect(spec.Prepared).To(BeTrue())
			Expect(spec.CacheDir).To(Equal("/mnt/libero/var/cache/libero-install"))

			data, err := fs.ReadFile("/mnt/libero/var/cache/libero-install/stage3.tar.xz")
			Expect(err).To(BeNil())
			Expect(string(data)).To(Equal("stage3 payload"))
			if _, err := fs.Stat("/var/cache/libero-install/stage3.tar.xz"); err == nil {
				Fail("cache file should have moved to the target")
			}
		})
		It("does not move the cache twice", func() {
			Expect(action.RunMountTargets(config, spec)).To(BeNil())
			Expect(action.RunMountTargets(config, spec)).To(BeNil())
			data, err := fs.ReadFile("/mnt/libero/var/cache/libero-install/stage3.tar.xz")
			Expect(err).To(BeNil())
			Expect(string(data)).To(Equal("stage3 payload"))
		})
		It("keeps the cache in place on mount failures", func() {
			mounter.ErrorOnMount = true
			Expect(action.RunMountTargets(config, spec)).NotTo(BeNil())
			Expect(spec.CacheDir).To(Equal(constants.CacheDir))
			_, err := fs.Stat(spec.Stage3Local)
			Expect(err).To(BeNil())
		})
	})

	Describe("RunSession", func() {
		It("exits when the menu is cancelled", func() {
			Expect(action.RunSession(config, spec)).To(BeNil())
		})
		It("toggles encryption and the volume manager", func() {
			console.MenuReturns = []int{4, 5, 8}
			Expect(action.RunSession(config, spec)).To(BeNil())
			Expect(spec.Encrypt).To(BeTrue())
			Expect(spec.LVM).To(BeTrue())
		})
		It("changes the boot mode through its submenu", func() {
			console.MenuReturns = []int{1, 0, 8}
			Expect(action.RunSession(config, spec)).To(BeNil())
			Expect(spec.Firmware).To(Equal(v1.BootUEFI))
		})
		It("reads the swap size with suffix support", func() {
			console.MenuReturns = []int{3, 3, 8}
			console.PromptReturns = []string{"2G", "512"}
			Expect(action.RunSession(config, spec)).To(BeNil())
			Expect(spec.SwapSize).To(Equal(uint(512)))
		})
		It("reports action failures and returns to the menu", func() {
			// no target selected yet, preparing must fail
			console.MenuReturns = []int{6, 8}
			console.ConfirmReturn = true
			Expect(action.RunSession(config, spec)).To(BeNil())
			Expect(len(console.Messages)).To(Equal(1))
			Expect(console.Messages[0]).To(ContainSubstring("target"))
		})
	})

	Describe("ExitError", func() {
		It("maps errors to exit codes", func() {
			Expect(action.ExitError(nil)).To(Equal(0))
			Expect(action.ExitError(installererror.New("busy", installererror.BusyResource))).
				To(Equal(installererror.BusyResource))
			Expect(action.ExitError(errors.New("plain"))).To(Equal(installererror.Unknown))
		})
	})
})
