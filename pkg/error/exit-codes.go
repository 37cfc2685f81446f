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

package error

// Exit codes for the libero-installer commands.

// Not running with root privileges
const NotRoot = 1

// Session validation failed before any destructive action
const Validation = 10

// Target disk or one of its children is still busy
const BusyResource = 11

// An external partitioning, formatting, encryption or volume manager
// tool failed
const ToolFailure = 12

// Layout planning failed, the disk is too small for the request
const InsufficientSpace = 13

// Passphrase confirmation mismatch
const PassphraseMismatch = 14

// Mounting one of the target partitions failed
const MountFailure = 15

// Filesystem level failure, directory creation or file copy
const IOFailure = 16

// Unknown error
const Unknown int = 255
