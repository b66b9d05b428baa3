// Copyright (c) smurfix 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package appconfig

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-getter/v2"
	"github.com/spf13/afero"
)

var (
	// ErrGetConfigFile is returned when the config source cannot be read.
	ErrGetConfigFile = errors.New("failed to get config file")
	// ErrDecodeConfig is returned when the config file is not valid YAML.
	ErrDecodeConfig = errors.New("failed to decode config file")
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Load reads the YAML application configuration from src. Plain paths are
// read from the local filesystem; sources with a URL scheme or go-getter
// forcing token are fetched with go-getter.
func Load(ctx context.Context, src string) (map[string]any, error) {
	if src == "" {
		return nil, ErrGetConfigFile
	}

	var (
		data []byte
		err  error
	)

	if isRemote(src) {
		data, err = fetch(ctx, src)
	} else {
		data, err = afero.ReadFile(FsFactory(), src)
	}

	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	var cfg map[string]any
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Join(ErrDecodeConfig, err)
	}

	return cfg, nil
}

// isRemote reports whether src uses go-getter URL syntax rather than a plain
// local path.
func isRemote(src string) bool {
	return strings.Contains(src, "://") || strings.Contains(src, "::")
}

// fetch retrieves the content from the given URL using Hashicorp's go-getter.
// The temporary download directory is removed after reading.
func fetch(ctx context.Context, url string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "flask-script-getter-*")
	if err != nil {
		return nil, err
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	dst := filepath.Join(tmpDir, "config")

	req := &getter.Request{
		Src:     url,
		Dst:     dst,
		Pwd:     wd,
		GetMode: getter.ModeFile,
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, err
	}

	return os.ReadFile(res.Dst)
}
