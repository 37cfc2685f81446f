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
	"fmt"

	v1 "github.com/libero-linux/libero-installer/pkg/types/v1"
	"github.com/libero-linux/libero-installer/pkg/utils"
)

// LuksDevice handles LUKS formatting and mapping of a single
// partition device.
type LuksDevice struct {
	device  string
	mapping string
	runner  v1.Runner
	fs      v1.FS
	logger  v1.Logger
}

func NewLuksDevice(device string, mapping string, config *v1.Config) *LuksDevice {
	return &LuksDevice{
		device:  device,
		mapping: mapping,
		runner:  config.Runner,
		fs:      config.Fs,
		logger:  config.Logger,
	}
}

// MapperPath returns the device node the open mapping is published at.
func (l LuksDevice) MapperPath() string {
	return fmt.Sprintf("/dev/mapper/%s", l.mapping)
}

// FormatAndOpen creates the LUKS container on the device and opens it
// under the configured mapping name. The passphrase never reaches a
// command line; it is staged in an exclusive 0600 key file which is
// removed before returning.
func (l LuksDevice) FormatAndOpen(passphrase []byte) error {
	keyFile, err := l.stageKeyFile(passphrase)
	if err != nil {
		return err
	}
	defer func() {
		_ = l.fs.Remove(keyFile)
	}()

	l.logger.Infof("Creating LUKS container on %s", l.device)
	out, err := l.runner.Run(
		"cryptsetup", "luksFormat", "--type", "luks1", "--batch-mode",
		"--key-file", keyFile, l.device,
	)
	if err != nil {
		l.logger.Errorf("Failed formatting LUKS container: %s", string(out))
		return err
	}

	l.logger.Infof("Opening LUKS container %s as %s", l.device, l.mapping)
	out, err = l.runner.Run(
		"cryptsetup", "open", "--key-file", keyFile, l.device, l.mapping,
	)
	if err != nil {
		l.logger.Errorf("Failed opening LUKS container: %s", string(out))
		return err
	}
	return nil
}

// Close tears down the mapping if it is present.
func (l LuksDevice) Close() error {
	_, err := l.runner.Run("cryptsetup", "close", l.mapping)
	return err
}

func (l LuksDevice) stageKeyFile(passphrase []byte) (string, error) {
	file, err := utils.TempFile(l.fs, "", "libero-luks-key")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err = file.Write(passphrase); err != nil {
		_ = l.fs.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}
