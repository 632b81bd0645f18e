// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/Elias-Graf/cosmic-comp/surface"
)

// ErrNoAdapter is returned when a HAL instance exposes no adapter.
var ErrNoAdapter = errors.New("backend: no GPU adapter")

// HALAPI creates instances of a wgpu HAL backend. hal.GetBackend results and
// the noop API satisfy it.
type HALAPI interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// GPU is an opened HAL device that receives imported client buffers.
type GPU struct {
	Device hal.Device
	Queue  hal.Queue

	// Adapter is the name of the opened adapter.
	Adapter string

	instance hal.Instance
}

// OpenGPU opens a device on the first hardware adapter of api, falling back
// to the first adapter if there is none.
func OpenGPU(api HALAPI) (*GPU, error) {
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("backend: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("backend: open device: %w", err)
	}
	return &GPU{
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		Adapter:  selected.Info.Name,
		instance: instance,
	}, nil
}

// OpenGPUFor opens a device through the registered HAL backend of api.
func OpenGPUFor(api gputypes.Backend) (*GPU, error) {
	b, ok := hal.GetBackend(api)
	if !ok {
		return nil, fmt.Errorf("backend: %v HAL backend not available", api)
	}
	return OpenGPU(b)
}

// Close destroys the device and its instance.
func (g *GPU) Close() {
	g.Device.Destroy()
	g.instance.Destroy()
}

// upload creates a texture holding buf. Shared memory pixels are copied to
// it; GPU-only buffers get an empty texture of the same size.
func (g *GPU) upload(label string, buf *surface.Buffer) (hal.Texture, error) {
	size := hal.Extent3D{Width: buf.Size.Width, Height: buf.Size.Height, DepthOrArrayLayers: 1}
	tex, err := g.Device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        buf.Format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("backend: create texture: %w", err)
	}
	if buf.Image == nil || size.Width == 0 || size.Height == 0 {
		return tex, nil
	}

	g.Queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		buf.Image.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(buf.Image.Stride),
			RowsPerImage: size.Height,
		},
		&size,
	)
	return tex, nil
}
