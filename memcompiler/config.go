package memcompiler

import (
	_ "embed"
	"fmt"
	"io"
	"strconv"
)

//go:embed default_sram.cfg
var defaultSRAMConfig []byte

const (
	minBlockBytes = 4
	minWords      = 64
)

// ToolConfig is the part of the tool configuration that depends on the SRAM.
type ToolConfig struct {
	SizeBytes    int
	Ports        int
	BlockBytes   int
	TechnologyUM float64
	BusWidth     int
	Banks        int

	// Resized tells that the size was increased to hold at least 64 words.
	Resized bool
}

// MakeToolConfig converts a cache key into a tool configuration that uses
// the given, power-of-two, bank count.
func MakeToolConfig(key Key, banks int) ToolConfig {
	c := ToolConfig{
		SizeBytes:    key.SizeBytes,
		Ports:        key.Ports,
		BlockBytes:   key.WordBytes,
		TechnologyUM: float64(key.TechnologyNM) / 1000,
		BusWidth:     key.WordBytes * 8,
		Banks:        banks,
	}

	if c.BlockBytes < minBlockBytes {
		c.BlockBytes = minBlockBytes
	}

	if c.SizeBytes/c.BlockBytes < minWords {
		c.SizeBytes = c.BlockBytes * minWords
		c.Resized = true
	}

	// All the ports of a plain scratchpad are read-write ports.
	if c.Ports == 0 {
		c.Ports = 1
	}

	return c
}

// Render writes the complete configuration file.
func (c ToolConfig) Render(w io.Writer) error {
	if _, err := w.Write(defaultSRAMConfig); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w,
		"\n############## User-Specified Hardware Attributes ##############\n"+
			"-size (bytes) %d\n"+
			"-read-write port %d\n"+
			"-block size (bytes) %d\n"+
			"-technology (u) %s\n"+
			"-output/input bus width %d\n"+
			"-UCA bank %d\n",
		c.SizeBytes,
		c.Ports,
		c.BlockBytes,
		strconv.FormatFloat(c.TechnologyUM, 'f', -1, 64),
		c.BusWidth,
		c.Banks,
	)

	return err
}
