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

// Config is the bundle of collaborators shared by every component of
// the installer. It is created once at program start and passed by
// reference, no component keeps a private copy of its fields.
type Config struct {
	Fs      FS
	Logger  Logger
	Runner  Runner
	Mounter Mounter
	Syscall SyscallInterface
	Console Console
}
