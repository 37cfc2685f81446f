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
	"path/filepath"

	"github.com/libero-linux/libero-installer/pkg/constants"
	"github.com/libero-linux/libero-installer/pkg/utils"
)

// RelocateCache migrates previously fetched artifacts from their old
// locations to the cache directory now tracked by the session, after
// the install root comes up and the cache moves onto the target disk.
// Relocation is best effort, failures are logged and never abort the
// surrounding mount action.
func (i *Installer) RelocateCache(oldPaths []string) {
	newPaths := []string{i.spec.Stage3Local, i.spec.DigestLocal, i.spec.PortageLocal}

	for n, oldPath := range oldPaths {
		if n >= len(newPaths) {
			break
		}
		newPath := newPaths[n]
		if oldPath == "" || oldPath == newPath {
			continue
		}
		if exists, _ := utils.Exists(i.config.Fs, oldPath); !exists {
			continue
		}
		if err := utils.MkdirAll(i.config.Fs, filepath.Dir(newPath), constants.DirPerm); err != nil {
			i.config.Logger.Warnf("Could not create cache directory for %s: %v", newPath, err)
			continue
		}
		i.config.Logger.Infof("Relocating cached %s to %s", filepath.Base(oldPath), newPath)
		if err := utils.MoveFile(i.config.Fs, oldPath, newPath); err != nil {
			i.config.Logger.Warnf("Could not relocate %s: %v", oldPath, err)
		}
	}
}

// CachePaths returns the artifact locations currently tracked by the
// session, in the order RelocateCache consumes them.
func (i *Installer) CachePaths() []string {
	return []string{i.spec.Stage3Local, i.spec.DigestLocal, i.spec.PortageLocal}
}
