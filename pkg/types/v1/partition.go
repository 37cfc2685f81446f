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

package v1

// Partition is one entry of the computed disk layout. Size is
// expressed in MiB, a zero size means all remaining space.
type Partition struct {
	Role            string
	Number          int
	Size            uint
	Name            string
	FilesystemLabel string
	FS              string
	Flags           []string
	MBRType         string
	GPTType         string
	MountPoint      string
	Path            string
}

type PartitionList []*Partition

// GetByRole returns the partition with the given role or nil if the
// layout does not include it.
func (pl PartitionList) GetByRole(role string) *Partition {
	for _, p := range pl {
		if p.Role == role {
			return p
		}
	}
	return nil
}

// TypeCode returns the partition type identifier matching the given
// partition table label.
func (p Partition) TypeCode(gpt bool) string {
	if gpt {
		return p.GPTType
	}
	return p.MBRType
}
