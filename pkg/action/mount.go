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
	"path/filepath"

	"github.com/libero-linux/libero-installer/pkg/constants"
	"github.com/libero-linux/libero-installer/pkg/installer"
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

// RunMountTargets mounts the prepared partitions under the install
// root and, once the target is up, moves the download cache onto it.
// The action is safe to repeat, an already mounted install root is
// left untouched.
func RunMountTargets(cfg *v1.Config, spec *v1.InstallSpec) error {
	inst := installer.NewInstaller(cfg, spec)

	oldPaths := inst.CachePaths()

	if err := inst.MountTargets(); err != nil {
		cfg.Logger.Errorf("Error mounting target partitions: %s", err.Error())
		return err
	}
	cfg.Logger.Infof("Target partitions mounted at %s", spec.InstallRoot)

	// The cache belongs on the target disk from now on
	targetCache := filepath.Join(spec.InstallRoot, constants.CacheDir)
	if spec.CacheDir != targetCache {
		spec.SetCacheDir(targetCache)
		inst.RelocateCache(oldPaths)
	}
	return nil
}
