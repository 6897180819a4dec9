package confkit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeromicro/go-zero/core/conf"
)

// ErrSectionNotLoaded is returned by Section.Get before a successful Hydrate.
var ErrSectionNotLoaded = errors.New("confkit: section not loaded")

// ResolvePath expands environment variables in file and joins it to base
// unless it is already absolute.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// LoadFile loads a go-zero config file into T, expanding ${ENV} references
// when useEnv is set.
func LoadFile[T any](path string, useEnv bool) (*T, error) {
	var cfg T
	var opts []conf.Option
	if useEnv {
		opts = append(opts, conf.UseEnv())
	}
	if err := conf.Load(path, &cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// Section is a part of the main config kept in its own file.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Hydrate loads File, resolved against base, through loader. An empty File
// leaves the section unconfigured.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return err
	}
	s.File, s.Value = p, v
	return nil
}

// Configured reports whether the section names a file or holds a value.
func (s Section[T]) Configured() bool {
	return s.File != "" || s.Value != nil
}

// Get returns the hydrated value.
func (s Section[T]) Get() (*T, error) {
	if s.Value == nil {
		return nil, ErrSectionNotLoaded
	}
	return s.Value, nil
}
