/*
 *     Copyright 2024 The Netanomaly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package workpath

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
)

var (
	// DefaultWorkHome is the default home of the service files.
	DefaultWorkHome = defaultWorkHome()

	// DefaultLogDir is the default log directory.
	DefaultLogDir = filepath.Join(DefaultWorkHome, "logs")
)

// DefaultLogDirMode is the mode of a created log directory.
const DefaultLogDirMode fs.FileMode = 0700

// Workpath is the interface used for the directories of a process.
type Workpath interface {
	// WorkDir is the directory searched first for the model and the dataset.
	WorkDir() string

	// LogDir is the directory of the log files.
	LogDir() string
}

type workpath struct {
	workDir string
	logDir  string
}

// Option is a functional option for configuring the workpath.
type Option func(w *workpath)

// WithWorkDir sets the work directory.
func WithWorkDir(dir string) Option {
	return func(w *workpath) {
		w.workDir = dir
	}
}

// WithLogDir sets the log directory.
func WithLogDir(dir string) Option {
	return func(w *workpath) {
		w.logDir = dir
	}
}

// New returns a new Workpath. The work directory defaults to the process working
// directory and must exist, the log directory is created when missing.
func New(options ...Option) (Workpath, error) {
	w := &workpath{
		logDir: DefaultLogDir,
	}

	for _, opt := range options {
		opt(w)
	}

	var result *multierror.Error
	if w.workDir == "" {
		dir, err := os.Getwd()
		if err != nil {
			result = multierror.Append(result, err)
		}
		w.workDir = dir
	}

	if w.workDir != "" {
		dir, err := filepath.Abs(w.workDir)
		if err != nil {
			result = multierror.Append(result, err)
		} else {
			w.workDir = dir
		}

		info, err := os.Stat(w.workDir)
		if err != nil {
			result = multierror.Append(result, err)
		} else if !info.IsDir() {
			result = multierror.Append(result, fmt.Errorf("work directory %s is not a directory", w.workDir))
		}
	}

	// Create log directory.
	if err := os.MkdirAll(w.logDir, DefaultLogDirMode); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *workpath) WorkDir() string {
	return w.workDir
}

func (w *workpath) LogDir() string {
	return w.logDir
}

func defaultWorkHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".netanomaly")
	}

	return filepath.Join(home, ".netanomaly")
}
