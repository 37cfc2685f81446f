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
	"errors"
	"fmt"
	"strconv"

	"github.com/docker/go-units"

	"github.com/libero-linux/libero-installer/pkg/constants"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
	"github.com/libero-linux/libero-installer/pkg/utils"
)

const subtitleWidth = 60

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// sessionSubtitle is the one line session summary under the main menu
// title. Cosmetic only, long model strings get an ellipsis.
func sessionSubtitle(spec *v1.InstallSpec) string {
	if spec.Target == "" {
		return "No target disk selected"
	}
	line := fmt.Sprintf("%s (%s, %s)", spec.Target, spec.DiskModel,
		units.BytesSize(float64(spec.DiskSize)*units.MiB))
	return utils.TruncateWithEllipsis(line, subtitleWidth)
}

func selectBootMode(cfg *v1.Config, spec *v1.InstallSpec) error {
	modes := []v1.BootMode{v1.BootUEFI, v1.BootLegacy}
	items := []string{v1.BootUEFI.String(), v1.BootLegacy.String()}
	selected := 0
	if spec.Firmware == v1.BootLegacy {
		selected = 1
	}
	choice, err := cfg.Console.Menu("Boot mode", "", items, selected)
	if err != nil {
		return err
	}
	spec.Firmware = modes[choice]
	return nil
}

func selectRootFilesystem(cfg *v1.Config, spec *v1.InstallSpec) error {
	items := constants.GetRootFilesystems()
	selected := 0
	for n, fs := range items {
		if fs == spec.RootFs {
			selected = n
		}
	}
	choice, err := cfg.Console.Menu("Root filesystem", "", items, selected)
	if err != nil {
		return err
	}
	spec.RootFs = items[choice]
	return nil
}

func promptSwapSize(cfg *v1.Config, spec *v1.InstallSpec) error {
	initial := fmt.Sprintf("%d", spec.SwapSize)
	answer, err := cfg.Console.Prompt("Swap size", "Size in MiB (accepts suffixes, 0 disables swap)", initial)
	if err != nil {
		return err
	}
	// bare numbers are MiB, anything else goes through suffix parsing
	if mib, perr := strconv.ParseUint(answer, 10, 32); perr == nil {
		spec.SwapSize = uint(mib)
		return nil
	}
	size, err := units.RAMInBytes(answer)
	if err != nil || size < 0 {
		cfg.Console.Message("Swap size", fmt.Sprintf("Invalid size '%s'", answer))
		return nil
	}
	spec.SwapSize = uint(size / units.MiB)
	return nil
}

// RunSession drives the interactive main menu until the user exits.
// Each action runs to completion before the next choice is read,
// failures are reported and control returns to the menu.
func RunSession(cfg *v1.Config, spec *v1.InstallSpec) error {
	selected := 0
	for {
		items := []string{
			"Select target disk",
			fmt.Sprintf("Boot mode         [%s]", spec.Firmware),
			fmt.Sprintf("Root filesystem   [%s]", spec.RootFs),
			fmt.Sprintf("Swap size         [%d MiB]", spec.SwapSize),
			fmt.Sprintf("Disk encryption   [%s]", onOff(spec.Encrypt)),
			fmt.Sprintf("Volume manager    [%s]", onOff(spec.LVM)),
			"Prepare disk",
			"Mount target partitions",
			"Exit",
		}

		choice, err := cfg.Console.Menu("Libero installer", sessionSubtitle(spec), items, selected)
		if errors.Is(err, v1.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		selected = choice

		switch choice {
		case 0:
			err = RunSelectDisk(cfg, spec)
		case 1:
			err = selectBootMode(cfg, spec)
		case 2:
			err = selectRootFilesystem(cfg, spec)
		case 3:
			err = promptSwapSize(cfg, spec)
		case 4:
			spec.Encrypt = !spec.Encrypt
		case 5:
			spec.LVM = !spec.LVM
		case 6:
			err = RunPrepareDisk(cfg, spec)
		case 7:
			err = RunMountTargets(cfg, spec)
		default:
			return nil
		}

		if errors.Is(err, v1.ErrCancelled) {
			continue
		}
		if err != nil {
			cfg.Logger.Errorf("Action failed: %s", err.Error())
			cfg.Console.Message("Error", fmt.Sprintf("%s\n\nSee %s for details", err.Error(), constants.LogFile))
		}
	}
}
