// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rvt"
)

// PhysicalFormat is the format of the physical tile textures.
const PhysicalFormat = gputypes.TextureFormatRGBA8Unorm

// PageTableFormat is the format of the page-table texture.
const PageTableFormat = gputypes.TextureFormatRGBA8Unorm

// PageTableDescriptor describes the pageNum × pageNum page-table texture.
// It is written by the page-table draw or by PageTableImage.Upload.
func PageTableDescriptor(pageNum int) hal.TextureDescriptor {
	return hal.TextureDescriptor{
		Label:         "rvt_page_table",
		Size:          hal.Extent3D{Width: uint32(pageNum), Height: uint32(pageNum), DepthOrArrayLayers: 1}, //nolint:gosec // validated config
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        PageTableFormat,
		Usage: gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopyDst,
	}
}

// PhysicalDescriptor describes one physical tile texture.
func (l PhysicalLayout) PhysicalDescriptor(label string) hal.TextureDescriptor {
	size := uint32(l.TextureSize()) //nolint:gosec // validated config
	return hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        PhysicalFormat,
		Usage: gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopyDst,
	}
}

// FeedbackBufferDescriptor describes the storage buffer the feedback pass
// writes one uint32 per sample into.
func FeedbackBufferDescriptor(samples int) hal.BufferDescriptor {
	return hal.BufferDescriptor{
		Label: "rvt_feedback",
		Size:  uint64(samples) * 4, //nolint:gosec // validated config
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	}
}

// StagingBufferDescriptor describes the mappable buffer feedback samples are
// copied into for readback.
func StagingBufferDescriptor(samples int) hal.BufferDescriptor {
	return hal.BufferDescriptor{
		Label: "rvt_feedback_staging",
		Size:  uint64(samples) * 4, //nolint:gosec // validated config
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	}
}

// Resources owns the HAL objects of one virtual texture activation.
type Resources struct {
	device hal.Device

	PageTable hal.Texture
	// PhysicalA holds albedo, PhysicalB normals.
	PhysicalA hal.Texture
	PhysicalB hal.Texture

	Feedback hal.Buffer
	Staging  hal.Buffer
}

// NewResources creates every texture and buffer for cfg on device. On
// failure the objects created so far are destroyed.
func NewResources(device hal.Device, cfg rvt.Config) (*Resources, error) {
	layout := NewPhysicalLayout(cfg)
	r := &Resources{device: device}

	var err error
	create := func(desc hal.TextureDescriptor) hal.Texture {
		if err != nil {
			return nil
		}
		var tex hal.Texture
		tex, err = device.CreateTexture(&desc)
		if err != nil {
			err = fmt.Errorf("texture: create %s: %w", desc.Label, err)
		}
		return tex
	}
	createBuffer := func(desc hal.BufferDescriptor) hal.Buffer {
		if err != nil {
			return nil
		}
		var buf hal.Buffer
		buf, err = device.CreateBuffer(&desc)
		if err != nil {
			err = fmt.Errorf("texture: create %s: %w", desc.Label, err)
		}
		return buf
	}

	r.PageTable = create(PageTableDescriptor(cfg.PageNum))
	r.PhysicalA = create(layout.PhysicalDescriptor("rvt_physical_a"))
	r.PhysicalB = create(layout.PhysicalDescriptor("rvt_physical_b"))
	r.Feedback = createBuffer(FeedbackBufferDescriptor(cfg.FeedbackSize()))
	r.Staging = createBuffer(StagingBufferDescriptor(cfg.FeedbackSize()))
	if err != nil {
		r.Destroy()
		return nil, err
	}

	rvt.Logger().Debug("texture: resources created",
		"pageTable", cfg.PageNum,
		"physical", layout.TextureSize(),
		"feedbackBytes", cfg.FeedbackSize()*4)
	return r, nil
}

// Destroy releases all objects. It is safe to call more than once.
func (r *Resources) Destroy() {
	if r.device == nil {
		return
	}
	for _, tex := range []*hal.Texture{&r.PageTable, &r.PhysicalA, &r.PhysicalB} {
		if *tex != nil {
			r.device.DestroyTexture(*tex)
			*tex = nil
		}
	}
	for _, buf := range []*hal.Buffer{&r.Feedback, &r.Staging} {
		if *buf != nil {
			r.device.DestroyBuffer(*buf)
			*buf = nil
		}
	}
}
