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

package partitioner

import (
	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
)

// Partitioner is the scriptable backend driving the on-disk partition
// table. Changes are collected and flushed in a single non-interactive
// invocation by WriteChanges.
type Partitioner interface {
	WriteChanges() (string, error)
	SetPartitionTableLabel(label string) error
	CreatePartition(p *Partition)
	DeletePartition(num int)
	SetPartitionFlag(num int, flag string, active bool)
	WipeTable(wipe bool)
	Print() (string, error)
	GetLastSector(printOut string) (uint, error)
	GetSectorSize(printOut string) (uint, error)
	GetPartitionTableLabel(printOut string) (string, error)
	GetPartitions(printOut string) []Partition
}

// Partition sizes are expressed in sectors in the backend wrapper.
// FileSystem is only used to determine the partition type hint.
type Partition struct {
	Number     int
	StartS     uint
	SizeS      uint
	PLabel     string
	FileSystem string
}

func NewPartitioner(dev string, runner v1.Runner) Partitioner {
	return newPartedCall(dev, runner)
}
