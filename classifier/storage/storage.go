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

//go:generate mockgen -destination mocks/storage_mock.go -source storage.go -package mocks

package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/netanomaly/netanomaly/internal/logger"
	"github.com/netanomaly/netanomaly/pkg/dataset"
	"github.com/netanomaly/netanomaly/pkg/types"
	"github.com/netanomaly/netanomaly/trainer/models"
)

const (
	// lockFileExt is extension of the lock file guarding model writes.
	lockFileExt = "lock"

	// tempFilePattern is the pattern of temporary model files.
	tempFilePattern = ".%s.*.tmp"
)

var (
	// ErrNotFound is returned when a file is in neither the work directory nor its parent.
	ErrNotFound = errors.New("file not found")
)

// Storage is the interface used for model and dataset files.
type Storage interface {
	// FindModel returns the path of the model artifact in the work directory or its parent.
	FindModel() (string, error)

	// FindDataset returns the path of the dataset in the work directory or its parent.
	FindDataset() (string, error)

	// LoadModel loads the model artifact stored at path.
	LoadModel(string) (*models.RandomForest, error)

	// OpenDataset loads the dataset stored at path.
	OpenDataset(string) (*dataset.Dataset, error)

	// SaveModel writes the model artifact into the work directory and returns its path.
	SaveModel(*models.RandomForest) (string, error)

	// ModelFilename returns the file name of the model artifact.
	ModelFilename() string

	// DatasetFilename returns the file name of the dataset.
	DatasetFilename() string
}

// Option is a functional option for configuring the storage.
type Option func(s *storage)

// WithModelFilename sets the file name of the model artifact.
func WithModelFilename(name string) Option {
	return func(s *storage) {
		s.modelFilename = name
	}
}

// WithDatasetFilename sets the file name of the dataset.
func WithDatasetFilename(name string) Option {
	return func(s *storage) {
		s.datasetFilename = name
	}
}

type storage struct {
	workDir         string
	modelFilename   string
	datasetFilename string
}

// New returns a new Storage instance rooted at workDir.
func New(workDir string, options ...Option) (Storage, error) {
	dir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, err
	}

	s := &storage{
		workDir:         dir,
		modelFilename:   types.DefaultModelFilename,
		datasetFilename: types.DefaultDatasetFilename,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// FindModel returns the path of the model artifact in the work directory or its parent.
func (s *storage) FindModel() (string, error) {
	return s.find(s.modelFilename)
}

// FindDataset returns the path of the dataset in the work directory or its parent.
func (s *storage) FindDataset() (string, error) {
	return s.find(s.datasetFilename)
}

// LoadModel loads the model artifact stored at path.
func (s *storage) LoadModel(path string) (*models.RandomForest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	model, err := models.Load(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}

	return model, nil
}

// OpenDataset loads the dataset stored at path.
func (s *storage) OpenDataset(path string) (*dataset.Dataset, error) {
	return dataset.Open(path)
}

// SaveModel writes the model artifact into the work directory and returns its path.
// The artifact is replaced atomically under a file lock.
func (s *storage) SaveModel(model *models.RandomForest) (string, error) {
	path := filepath.Join(s.workDir, s.modelFilename)
	lock := flock.New(fmt.Sprintf("%s.%s", path, lockFileExt))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("lock %s: %w", lock.Path(), err)
	}
	defer lock.Unlock()

	file, err := os.CreateTemp(s.workDir, fmt.Sprintf(tempFilePattern, s.modelFilename))
	if err != nil {
		return "", err
	}

	if err := writeModel(file, model); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", err
	}

	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", err
	}

	if err := os.Rename(file.Name(), path); err != nil {
		os.Remove(file.Name())
		return "", err
	}

	logger.With("path", path).Info("model saved")
	return path, nil
}

// ModelFilename returns the file name of the model artifact.
func (s *storage) ModelFilename() string {
	return s.modelFilename
}

// DatasetFilename returns the file name of the dataset.
func (s *storage) DatasetFilename() string {
	return s.datasetFilename
}

// find returns the first regular file named name in the work directory, then its parent.
func (s *storage) find(name string) (string, error) {
	dirs := []string{s.workDir}
	if parent := filepath.Dir(s.workDir); parent != s.workDir {
		dirs = append(dirs, parent)
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warnf("stat %s failed: %s", path, err.Error())
			}
			continue
		}

		if info.Mode().IsRegular() {
			return path, nil
		}
	}

	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

func writeModel(file *os.File, model *models.RandomForest) error {
	w := bufio.NewWriter(file)
	if err := model.Save(w); err != nil {
		return err
	}

	if err := w.Flush(); err != nil {
		return err
	}

	return file.Sync()
}
