// Copyright 2018 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package compositor

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/TobyLyon/MOJOpfpMaker/mojo"
)

// DirSource loads layers from an asset directory laid out as
//
//	<root>/base.png
//	<root>/<category>/<id>.png
//
// Decoded images are cached, so repeated renders only touch the disk once
// per layer.
type DirSource struct {
	root string

	mu    sync.Mutex
	cache map[string]image.Image
}

func NewDirSource(root string) *DirSource {
	return &DirSource{
		root:  root,
		cache: make(map[string]image.Image),
	}
}

func (s *DirSource) Base(ctx context.Context) (image.Image, error) {
	return s.load(filepath.Join(s.root, "base.png"))
}

func (s *DirSource) Layer(ctx context.Context, c mojo.Category, id string) (image.Image, error) {
	return s.load(filepath.Join(s.root, string(c), id+".png"))
}

func (s *DirSource) load(path string) (image.Image, error) {
	s.mu.Lock()
	img, ok := s.cache[path]
	s.mu.Unlock()
	if ok {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("compositor: open layer: %w", err)
	}
	defer f.Close()

	img, err = png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("compositor: decode %s: %w", path, err)
	}
	s.mu.Lock()
	s.cache[path] = img
	s.mu.Unlock()
	return img, nil
}
