// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader holds the WGSL programs of the virtual texture and turns
// them into HAL shader modules.
package shader

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rvt"
)

// PageTableWGSL draws page-table updates as instanced quads.
// Instances use the texture.PageInstance layout.
//
//go:embed shaders/pagetable.wgsl
var PageTableWGSL string

// TileWGSL renders terrain into physical tiles as instanced quads.
// Instances use the texture.TileInstance layout.
//
//go:embed shaders/tile.wgsl
var TileWGSL string

// FeedbackDebugWGSL visualizes the feedback sample buffer.
//
//go:embed shaders/feedback_debug.wgsl
var FeedbackDebugWGSL string

// Entry point names shared by every program.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// ErrNilDevice is returned by Load without a device.
var ErrNilDevice = errors.New("shader: nil device")

// Sources maps program labels to their WGSL source.
func Sources() map[string]string {
	return map[string]string{
		"rvt_page_table":     PageTableWGSL,
		"rvt_tile":           TileWGSL,
		"rvt_feedback_debug": FeedbackDebugWGSL,
	}
}

// Compile compiles WGSL source to SPIR-V words.
func Compile(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("shader: compile: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// CreateModule creates a HAL shader module from SPIR-V code.
func CreateModule(device hal.Device, label string, code []uint32) (hal.ShaderModule, error) {
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: code,
		},
	})
}

// Program is a compiled shader module bound to the device that owns it.
type Program struct {
	Device hal.Device
	Label  string
	Module hal.ShaderModule
	// Words is the SPIR-V size of the module.
	Words int
}

// Load compiles wgsl and creates its module on device.
func Load(device hal.Device, label, wgsl string) (*Program, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	code, err := Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	module, err := CreateModule(device, label, code)
	if err != nil {
		return nil, fmt.Errorf("shader: create %s: %w", label, err)
	}
	rvt.Logger().Debug("shader: module created", "label", label, "words", len(code))
	return &Program{Device: device, Label: label, Module: module, Words: len(code)}, nil
}

// Destroy releases the module. It is safe to call more than once.
func (p *Program) Destroy() {
	if p.Device == nil || p.Module == nil {
		return
	}
	p.Device.DestroyShaderModule(p.Module)
	p.Module = nil
}
