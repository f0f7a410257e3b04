// Package yamlfile stores one YAML document per region in a local directory.
package yamlfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/modelwatch/pkg/constants"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/state"
)

// Backend writes <dir>/<region>.yaml.
type Backend struct {
	dir string
}

var _ state.Backend = (*Backend)(nil)

// New returns a backend rooted at dir, creating it when needed.
func New(dir string) (*Backend, error) {
	if dir == "" {
		return nil, errors.NewConfigError("yamlfile", "directory is required", nil)
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	return &Backend{dir: dir}, nil
}

// Dir returns the state directory.
func (b *Backend) Dir() string { return b.dir }

func (b *Backend) path(region string) (string, error) {
	if region == "" || strings.ContainsAny(region, `/\`) || strings.HasPrefix(region, ".") {
		return "", &errors.ValidationError{Field: "region", Value: region, Message: "not usable as a file name"}
	}
	return filepath.Join(b.dir, region+".yaml"), nil
}

// Load implements state.Backend.
func (b *Backend) Load(_ context.Context, region string) (*state.Record, error) {
	path, err := b.path(region)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is built from a validated region
	if os.IsNotExist(err) {
		return nil, errors.NewNotFoundError("state record", region)
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var doc state.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if doc.Region == "" {
		doc.Region = region
	}
	return doc.Record(), nil
}

// Put implements state.Backend. The file is replaced atomically.
func (b *Backend) Put(_ context.Context, rec state.Record) error {
	path, err := b.path(rec.Region)
	if err != nil {
		return err
	}

	data, err := yaml.MarshalWithOptions(rec.Document(), yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}

	tmp, err := os.CreateTemp(b.dir, "."+rec.Region+"-*.yaml")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.WrapIO("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("close", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("chmod", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("move", path, err)
	}
	return nil
}

// Close implements state.Backend.
func (b *Backend) Close() error { return nil }
