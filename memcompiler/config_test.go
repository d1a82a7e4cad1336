package memcompiler

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ToolConfig", func() {
	It("should convert a cache key", func() {
		c := MakeToolConfig(Key{
			TechnologyNM: 45,
			SizeBytes:    4096,
			WordBytes:    8,
			Ports:        2,
			Banks:        3,
		}, 4)

		Expect(c).To(Equal(ToolConfig{
			SizeBytes:    4096,
			Ports:        2,
			BlockBytes:   8,
			TechnologyUM: 0.045,
			BusWidth:     64,
			Banks:        4,
		}))
	})

	It("should use at least 4-byte blocks, 64 words and one port", func() {
		c := MakeToolConfig(Key{
			TechnologyNM: 22,
			SizeBytes:    64,
			WordBytes:    2,
			Ports:        0,
			Banks:        1,
		}, 1)

		Expect(c.BlockBytes).To(Equal(4))
		Expect(c.SizeBytes).To(Equal(256))
		Expect(c.Resized).To(BeTrue())
		Expect(c.Ports).To(Equal(1))
		Expect(c.BusWidth).To(Equal(16))
	})

	It("should append the attributes to the default configuration", func() {
		buf := new(bytes.Buffer)
		c := MakeToolConfig(Key{
			TechnologyNM: 32,
			SizeBytes:    8192,
			WordBytes:    16,
			Ports:        1,
			Banks:        2,
		}, 2)

		Expect(c.Render(buf)).To(Succeed())

		out := buf.String()
		Expect(strings.HasPrefix(out, string(defaultSRAMConfig))).To(BeTrue())
		Expect(out).To(HaveSuffix(
			"-size (bytes) 8192\n" +
				"-read-write port 1\n" +
				"-block size (bytes) 16\n" +
				"-technology (u) 0.032\n" +
				"-output/input bus width 128\n" +
				"-UCA bank 2\n"))
	})
})
