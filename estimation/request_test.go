package estimation

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Request", func() {
	It("should read numeric attributes of any kind", func() {
		req := Request{
			ClassName: "regfile",
			Attributes: map[string]any{
				"width":  32,
				"depth":  int64(16),
				"height": 2.5,
				"ports":  "4",
				"banks":  uint8(2),
			},
		}

		Expect(req.Int("width")).To(Equal(32))
		Expect(req.Int("depth")).To(Equal(16))
		Expect(req.Float("height")).To(Equal(2.5))
		Expect(req.Int("ports")).To(Equal(4))
		Expect(req.Int("banks")).To(Equal(2))
	})

	It("should read numbers decoded from JSON", func() {
		req := Request{}
		err := json.Unmarshal(
			[]byte(`{"class_name":"intadder","attributes":{"datawidth":16}}`),
			&req)
		Expect(err).NotTo(HaveOccurred())

		Expect(req.Class()).To(Equal(ClassIntAdder))
		Expect(req.Int("datawidth")).To(Equal(16))
	})

	It("should read attributes as text", func() {
		req := Request{Attributes: map[string]any{"type": "LPDDR4", "width": 64}}

		Expect(req.Text("type")).To(Equal("LPDDR4"))
		Expect(req.Text("width")).To(Equal("64"))

		_, err := req.Text("technology")
		Expect(err).To(MatchError(ErrMissingAttribute))
	})

	It("should report missing attributes", func() {
		req := Request{Attributes: map[string]any{}}

		_, err := req.Int("width")

		Expect(err).To(MatchError(ErrMissingAttribute))
	})

	It("should report non-numeric attributes as missing", func() {
		req := Request{Attributes: map[string]any{"width": "wide"}}

		_, err := req.Float("width")

		Expect(err).To(MatchError(ErrMissingAttribute))
	})

	It("should use the default when an attribute is absent", func() {
		req := Request{Attributes: map[string]any{"n_banks": 4}}

		Expect(req.IntOr("n_banks", 1)).To(Equal(4))
		Expect(req.IntOr("n_rd_ports", 0)).To(Equal(0))
	})

	It("should read arguments", func() {
		req := Request{Arguments: map[string]any{"data_delta": 0}}

		v, ok, err := req.Argument("data_delta")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(0.0))

		Expect(req.ArgumentOr("address_delta", 1)).To(Equal(1.0))
	})

	It("should not change the original request when deriving", func() {
		req := Request{
			ClassName:  "intmac",
			ActionName: "mac_gated",
			Attributes: map[string]any{"datawidth": 8},
		}

		sub := Derive("comparator", "idle", map[string]any{"datawidth": 3})
		other := req.WithAction("mult_gated")

		Expect(req.ActionName).To(Equal("mac_gated"))
		Expect(other.ActionName).To(Equal("mult_gated"))
		Expect(sub.ClassName).To(Equal("comparator"))
		Expect(sub.Arguments).To(BeNil())
	})

	DescribeTable("power of two",
		func(n int, isPow bool, next int) {
			Expect(IsPowerOfTwo(n)).To(Equal(isPow))
			Expect(NextPowerOfTwo(n)).To(Equal(next))
		},
		Entry("1", 1, true, 1),
		Entry("2", 2, true, 2),
		Entry("3", 3, false, 4),
		Entry("6", 6, false, 8),
		Entry("16", 16, true, 16),
		Entry("17", 17, false, 32),
	)
})

var _ = Describe("Class", func() {
	It("should parse class names", func() {
		Expect(ParseClass("regfile")).To(Equal(ClassRegFile))
		Expect(ParseClass("FIFO")).To(Equal(ClassFIFO))
		Expect(ParseClass("SRAM")).To(Equal(ClassSRAM))
		Expect(ParseClass("fifo")).To(Equal(ClassUnknown))
		Expect(ParseClass("")).To(Equal(ClassUnknown))
	})

	It("should print class names", func() {
		Expect(ClassFPMAC.String()).To(Equal("fpmac"))
		Expect(ClassUnknown.String()).To(Equal("unknown"))
	})
})
