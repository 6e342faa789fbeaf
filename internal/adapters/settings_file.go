package adapters

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"domverify/internal/ports"
	"domverify/internal/types"
)

// SettingsFileAdapter persists engine settings as YAML.
type SettingsFileAdapter struct {
	Path string
}

func NewSettingsFileAdapter(path string) SettingsFileAdapter {
	return SettingsFileAdapter{Path: path}
}

var _ ports.SettingsStorePort = SettingsFileAdapter{}

// Read returns an empty settings file when none has been written yet.
func (a SettingsFileAdapter) Read() (types.SettingsFile, error) {
	data, err := os.ReadFile(a.Path)
	if errors.Is(err, os.ErrNotExist) {
		return types.SettingsFile{Version: types.SettingsFileVersion}, nil
	}
	if err != nil {
		return types.SettingsFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read settings").
			WithCause(err)
	}
	var file types.SettingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return types.SettingsFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse settings yaml").
			WithCause(err)
	}
	return file, nil
}

// Write replaces the settings file atomically.
func (a SettingsFileAdapter) Write(file types.SettingsFile) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode settings").
			WithCause(err)
	}
	dir := filepath.Dir(a.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create settings directory").
			WithCause(err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create temp settings file").
			WithCause(err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write settings").
			WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to close settings").
			WithCause(err)
	}
	if err := os.Rename(tmp.Name(), a.Path); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to replace settings").
			WithCause(err)
	}
	return nil
}
