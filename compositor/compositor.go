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

// Package compositor renders a character from its trait selection by stacking
// transparent PNG layers over the base body in a fixed z-order.
package compositor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/TobyLyon/MOJOpfpMaker/mojo"
	"github.com/ethereum/go-ethereum/log"
)

const (
	// ExportSize is the edge length of the full-resolution mint image.
	ExportSize = 1600

	// PreviewSize is the edge length of the interactive preview.
	PreviewSize = 400
)

var ErrNoBase = errors.New("compositor: base layer unavailable")

// Source resolves trait selections to their layer images. Implementations
// must be safe for concurrent calls: layers are fetched in parallel.
type Source interface {
	// Base returns the character body every render starts from.
	Base(ctx context.Context) (image.Image, error)

	// Layer returns the overlay for a trait option.
	Layer(ctx context.Context, c mojo.Category, id string) (image.Image, error)
}

// zOrder is the paint order. The base body slots in after the background;
// headwear paints last so it sits over everything.
var zOrder = []mojo.Category{
	mojo.CategoryBackground,
	mojo.CategoryClothes,
	mojo.CategoryEyes,
	mojo.CategoryMouth,
	mojo.CategoryHead,
}

// Compositor renders characters from a layer source.
type Compositor struct {
	src Source
	log log.Logger
}

func New(src Source) *Compositor {
	return &Compositor{src: src, log: log.New("module", "compositor")}
}

// Render composites the full-resolution image for the given selections.
// Default selections contribute no layer. All layers load concurrently; a
// trait layer that fails to load is logged and rendered empty, so a single
// bad asset never blocks the character. Only a missing base is fatal.
func (c *Compositor) Render(ctx context.Context, sels []mojo.Selection) (*image.RGBA, error) {
	byCat := make(map[mojo.Category]string, len(sels))
	for _, s := range sels {
		byCat[s.Category] = s.ID
	}

	var base image.Image
	layers := make([]image.Image, len(zOrder))
	layerErrs := make([]error, len(zOrder))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := c.src.Base(gctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoBase, err)
		}
		base = img
		return nil
	})
	for i, cat := range zOrder {
		id, ok := byCat[cat]
		if !ok {
			continue
		}
		i, cat, id := i, cat, id
		g.Go(func() error {
			img, err := c.src.Layer(gctx, cat, id)
			if err != nil {
				layerErrs[i] = err
				return nil
			}
			layers[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, err := range layerErrs {
		if err != nil {
			c.log.Warn("Layer unavailable, rendering category empty", "category", zOrder[i], "id", byCat[zOrder[i]], "err", err)
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, ExportSize, ExportSize))
	paint := func(img image.Image) {
		if img == nil {
			return
		}
		xdraw.CatmullRom.Scale(canvas, canvas.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	}
	paint(layers[0]) // background sits under the body
	paint(base)
	for _, img := range layers[1:] {
		paint(img)
	}
	return canvas, nil
}

// Preview downscales a rendered image to the preview resolution.
func Preview(img image.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, PreviewSize, PreviewSize))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return out
}

// EncodePNG serializes an image for upload or HTTP delivery.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("compositor: encode: %w", err)
	}
	return buf.Bytes(), nil
}
