package quantity

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parse", func() {
	DescribeTable("unit-suffixed strings",
		func(in any, value float64, unit Unit) {
			q, err := Parse(in)

			Expect(err).NotTo(HaveOccurred())
			Expect(q.Value).To(BeNumerically("~", value, 1e-12))
			Expect(q.Unit).To(Equal(unit))
		},
		Entry("bare int", 5, 5.0, UnitNone),
		Entry("bare float", 2.5, 2.5, UnitNone),
		Entry("numeric string", "40", 40.0, UnitNone),
		Entry("ns", "5ns", 5.0, UnitNanosecond),
		Entry("ps with space", "500 ps", 500.0, UnitPicosecond),
		Entry("mm", "3mm", 3.0, UnitMillimeter),
		Entry("um", "1.5um", 1.5, UnitMicrometer),
		Entry("micro sign", "2µm", 2.0, UnitMicrometer),
		Entry("nm", "45nm", 45.0, UnitNanometer),
		Entry("upper case", "45NM", 45.0, UnitNanometer),
		Entry("exponent", "1e-3m", 1e-3, UnitMeter),
	)

	It("should reject unknown suffixes", func() {
		_, err := Parse("3furlongs")

		Expect(err).To(MatchError(ErrUnknownUnit))
	})

	It("should reject values that are not quantities", func() {
		_, err := Parse("fast")
		Expect(err).To(MatchError(ErrNotAQuantity))

		_, err = Parse(true)
		Expect(err).To(MatchError(ErrNotAQuantity))
	})
})

var _ = Describe("Quantity", func() {
	It("should convert durations to ns", func() {
		ns, err := Quantity{Value: 1500, Unit: UnitPicosecond}.Nanoseconds()

		Expect(err).NotTo(HaveOccurred())
		Expect(ns).To(Equal(1.5))
	})

	It("should not convert lengths to ns", func() {
		_, err := Quantity{Value: 1, Unit: UnitMillimeter}.Nanoseconds()

		Expect(err).To(MatchError(ErrUnknownUnit))
	})

	It("should convert lengths to meters", func() {
		m, err := Quantity{Value: 3, Unit: UnitMillimeter}.Meters()

		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(BeNumerically("~", 3e-3, 1e-15))
	})

	It("should report the dimension", func() {
		Expect(Quantity{Unit: UnitPicosecond}.Dimension()).
			To(Equal(DimensionTime))
		Expect(Quantity{Unit: UnitNanometer}.Dimension()).
			To(Equal(DimensionLength))
		Expect(Quantity{}.Dimension()).To(Equal(DimensionNone))
	})

	It("should print the value with its unit", func() {
		Expect(Quantity{Value: 5, Unit: UnitNanosecond}.String()).
			To(Equal("5ns"))
	})
})

var _ = Describe("CeilNanoseconds", func() {
	DescribeTable("rounding up",
		func(in any, expected int) {
			ns, err := CeilNanoseconds(in)

			Expect(err).NotTo(HaveOccurred())
			Expect(ns).To(Equal(expected))
		},
		Entry("bare", 5, 5),
		Entry("fractional bare", 4.2, 5),
		Entry("ns", "2.1ns", 3),
		Entry("ps", "1500ps", 2),
		Entry("exact ps", "3000ps", 3),
	)
})

var _ = Describe("TechnologyNode", func() {
	DescribeTable("nodes",
		func(in any, expected int) {
			nm, err := TechnologyNode(in)

			Expect(err).NotTo(HaveOccurred())
			Expect(nm).To(Equal(expected))
		},
		Entry("bare", 45, 45),
		Entry("string", "40", 40),
		Entry("nm", "22nm", 22),
		Entry("um", "0.18um", 180),
	)

	It("should reject durations", func() {
		_, err := TechnologyNode("5ns")

		Expect(err).To(MatchError(ErrUnknownUnit))
	})
})
