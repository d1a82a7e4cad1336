package composite

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/akitapower/estimation"
	"github.com/sarchlab/akitapower/latencytable"
)

type estimateCollector struct {
	ctxs []estimation.HookCtx
}

func (c *estimateCollector) Func(ctx estimation.HookCtx) {
	c.ctxs = append(c.ctxs, ctx)
}

func request(
	class, action string,
	attrs map[string]any,
) estimation.Request {
	all := map[string]any{"technology": "45nm"}
	for k, v := range attrs {
		all[k] = v
	}

	return estimation.Request{
		ClassName:  class,
		Attributes: all,
		ActionName: action,
	}
}

var _ = Describe("Estimator", func() {
	var (
		ctx     context.Context
		tables  *latencytable.Set
		logHook *test.Hook
		e       *Estimator
	)

	row := func(id latencytable.ID) latencytable.Row {
		r, err := tables.Table(id).Row(latencytable.DefaultLatency)
		Expect(err).NotTo(HaveOccurred())

		return r
	}

	energy := func(req estimation.Request) float64 {
		v, err := e.EstimateEnergy(ctx, req)
		Expect(err).NotTo(HaveOccurred())

		return v
	}

	area := func(req estimation.Request) float64 {
		v, err := e.EstimateArea(ctx, req)
		Expect(err).NotTo(HaveOccurred())

		return v
	}

	BeforeEach(func() {
		var logger *logrus.Logger

		ctx = context.Background()
		tables = latencytable.Embedded()
		logger, logHook = test.NewNullLogger()
		e = MakeBuilder().
			WithTables(tables).
			WithLogger(logger).
			Build("table")
	})

	Context("support", func() {
		DescribeTable("technology",
			func(tech any, accuracy estimation.Accuracy) {
				req := request("intadder", "add", map[string]any{
					"technology": tech,
				})

				Expect(e.SupportsAction(req)).To(Equal(accuracy))
				Expect(e.SupportsArea(req)).To(Equal(accuracy))
			},
			Entry("40", 40, Accuracy),
			Entry("\"40\"", "40", Accuracy),
			Entry("40nm", "40nm", Accuracy),
			Entry("45", 45, Accuracy),
			Entry("45nm", "45nm", Accuracy),
			Entry("22nm", "22nm", estimation.NotSupported),
			Entry("garbage", "tiny", estimation.NotSupported),
		)

		It("should warn when the technology is missing", func() {
			req := estimation.Request{
				ClassName:  "intadder",
				Attributes: map[string]any{"datawidth": 32},
				ActionName: "add",
			}

			Expect(e.SupportsAction(req)).To(Equal(estimation.NotSupported))
			Expect(logHook.LastEntry()).NotTo(BeNil())
			Expect(logHook.LastEntry().Level).To(Equal(logrus.WarnLevel))
		})

		It("should not support unknown classes", func() {
			req := request("SRAM", "read", nil)

			Expect(e.SupportsAction(req)).To(Equal(estimation.NotSupported))
			Expect(e.SupportsArea(req)).To(Equal(estimation.NotSupported))

			_, err := e.EstimateEnergy(ctx, req)
			Expect(err).To(MatchError(estimation.ErrUnsupported))
		})

		It("should support wire energy but not wire area", func() {
			req := request("wire", "transfer", nil)

			Expect(e.SupportsAction(req)).To(Equal(Accuracy))
			Expect(e.SupportsArea(req)).To(Equal(estimation.NotSupported))
		})
	})

	Context("adders", func() {
		It("should return the table value at the native width", func() {
			req := request("intadder", "add", map[string]any{"datawidth": 32})

			Expect(energy(req)).To(Equal(row(latencytable.Adder).DynamicEnergy))
			Expect(area(req)).To(Equal(row(latencytable.Adder).Area))
		})

		It("should scale linearly", func() {
			req := request("intadder", "add", map[string]any{"datawidth": 64})

			Expect(energy(req)).To(BeNumerically("~",
				2*row(latencytable.Adder).DynamicEnergy, 1e-12))
		})

		It("should use the single precision table up to 32 bits", func() {
			req := request("fpadder", "add", map[string]any{
				"exponent": 8, "mantissa": 24,
			})

			Expect(energy(req)).To(Equal(row(latencytable.FPSPAdder).DynamicEnergy))
		})

		It("should use the double precision table above 32 bits", func() {
			req := request("fpadder", "idle", map[string]any{
				"exponent": 11, "mantissa": 53,
			})

			Expect(energy(req)).To(Equal(row(latencytable.FPDPAdder).IdleEnergy))
		})

		It("should fail when the width is missing", func() {
			req := request("intadder", "add", nil)

			_, err := e.EstimateEnergy(ctx, req)

			Expect(err).To(MatchError(estimation.ErrMissingAttribute))
		})
	})

	Context("multipliers", func() {
		It("should scale quadratically", func() {
			req := request("intmultiplier", "mult_random",
				map[string]any{"datawidth": 16})

			Expect(energy(req)).To(BeNumerically("~",
				row(latencytable.Multiplier).DynamicEnergy/4, 1e-12))
			Expect(area(req)).To(BeNumerically("~",
				row(latencytable.Multiplier).Area/4, 1e-9))
		})

		It("should use the idle energy when gated", func() {
			req := request("intmultiplier", "mult_gated",
				map[string]any{"datawidth": 16})

			Expect(energy(req)).To(BeNumerically("~",
				row(latencytable.Multiplier).IdleEnergy/4, 1e-12))
		})

		It("should discount reused operands", func() {
			random := energy(request("fpmultiplier", "mult_random",
				map[string]any{"exponent": 8, "mantissa": 24}))
			reused := energy(request("fpmultiplier", "mult_reused",
				map[string]any{"exponent": 8, "mantissa": 24}))

			Expect(reused).To(BeNumerically("~", 0.85*random, 1e-12))
		})

		It("should not change the request", func() {
			req := request("intmultiplier", "mult_gated",
				map[string]any{"datawidth": 32})

			energy(req)

			Expect(req.ActionName).To(Equal("mult_gated"))
		})
	})

	Context("MACs", func() {
		DescribeTable("adder plus remapped multiplier",
			func(class, adder, multiplier, action, multAction string) {
				attrs := map[string]any{
					"datawidth": 24, "exponent": 11, "mantissa": 53,
				}

				mac := energy(request(class, action, attrs))
				add := energy(request(adder, action, attrs))
				mult := energy(request(multiplier, multAction, attrs))

				Expect(mac).To(BeNumerically("~", add+mult, 1e-12))
			},
			Entry(nil, "intmac", "intadder", "intmultiplier",
				"mac_random", "mult_random"),
			Entry(nil, "intmac", "intadder", "intmultiplier",
				"mac_gated", "mult_gated"),
			Entry(nil, "intmac", "intadder", "intmultiplier",
				"mac_reused", "mult_reused"),
			Entry(nil, "intmac", "intadder", "intmultiplier",
				"idle", "idle"),
			Entry(nil, "intmac", "intadder", "intmultiplier",
				"anything", "mult_random"),
			Entry(nil, "fpmac", "fpadder", "fpmultiplier",
				"mac_random", "mult_random"),
			Entry(nil, "fpmac", "fpadder", "fpmultiplier",
				"mac_gated", "mult_gated"),
			Entry(nil, "fpmac", "fpadder", "fpmultiplier",
				"mac_reused", "mult_reused"),
			Entry(nil, "fpmac", "fpadder", "fpmultiplier",
				"idle", "idle"),
		)

		It("should add the areas", func() {
			attrs := map[string]any{"datawidth": 8}

			Expect(area(request("intmac", "", attrs))).To(BeNumerically("~",
				area(request("intadder", "", attrs))+
					area(request("intmultiplier", "", attrs)), 1e-9))
		})
	})

	Context("storage", func() {
		It("should return 0 for register files without rows", func() {
			req := request("regfile", "read", map[string]any{
				"width": 32, "depth": 0,
			})

			Expect(energy(req)).To(Equal(0.0))
			Expect(area(req)).To(Equal(0.0))
		})

		It("should return 0 for FIFOs without entries", func() {
			req := request("FIFO", "write", map[string]any{
				"datawidth": 32, "depth": 0,
			})

			Expect(energy(req)).To(Equal(0.0))
			Expect(area(req)).To(Equal(0.0))
		})

		It("should model a register file access", func() {
			req := request("regfile", "read", map[string]any{
				"width": 16, "depth": 8, "latency": "5ns",
			})

			expected := row(latencytable.Register).DynamicEnergy*16 +
				row(latencytable.Comparator).DynamicEnergy*3/32*8

			Expect(energy(req)).To(BeNumerically("~", expected, 1e-12))
		})

		It("should idle the parts that do not change", func() {
			req := request("regfile", "read", map[string]any{
				"width": 16, "depth": 5,
			})
			req.Arguments = map[string]any{"data_delta": 0, "address_delta": 0}

			expected := row(latencytable.Register).IdleEnergy*16 +
				row(latencytable.Comparator).IdleEnergy*3/32*5

			Expect(energy(req)).To(BeNumerically("~", expected, 1e-12))
		})

		It("should model the register file area", func() {
			req := request("regfile", "", map[string]any{
				"width": 16, "depth": 8,
			})

			expected := row(latencytable.Register).Area*16 +
				row(latencytable.Comparator).Area*3/32*8

			Expect(area(req)).To(BeNumerically("~", expected, 1e-9))
		})

		It("should model a FIFO access", func() {
			req := request("FIFO", "write", map[string]any{
				"datawidth": 32, "depth": 16,
			})

			expected := row(latencytable.Register).DynamicEnergy*32 +
				row(latencytable.Comparator).DynamicEnergy*4/32

			Expect(energy(req)).To(BeNumerically("~", expected, 1e-12))
		})

		It("should model an idle FIFO", func() {
			req := request("FIFO", "idle", map[string]any{
				"datawidth": 8, "depth": 4,
			})

			expected := row(latencytable.Register).IdleEnergy*8 +
				row(latencytable.Comparator).IdleEnergy*2/32

			Expect(energy(req)).To(BeNumerically("~", expected, 1e-12))
		})
	})

	Context("scaled primitives", func() {
		It("should scale crossbars", func() {
			req := request("crossbar", "transfer", map[string]any{
				"n_inputs": 4, "n_outputs": 8, "datawidth": 64,
			})

			Expect(energy(req)).To(BeNumerically("~",
				row(latencytable.Crossbar).DynamicEnergy*4*2*2, 1e-12))
		})

		It("should scale counters", func() {
			req := request("counter", "count", map[string]any{"width": 8})

			Expect(energy(req)).To(BeNumerically("~",
				row(latencytable.Counter).DynamicEnergy/4, 1e-12))
		})

		It("should not scale bitwise units", func() {
			req := request("bitwise", "process", nil)

			Expect(energy(req)).To(Equal(row(latencytable.Bitwise).DynamicEnergy))
		})

		It("should default shifters to 32 bits", func() {
			req := request("shifter", "shift", nil)

			Expect(energy(req)).To(Equal(row(latencytable.Shifter).DynamicEnergy))
		})
	})

	Context("wires", func() {
		It("should charge transfers", func() {
			req := request("wire", "transfer", map[string]any{
				"length": "1mm", "datawidth": 32,
			})

			Expect(energy(req)).To(BeNumerically("~",
				32*0.2*1.627e-15*1e-3*1e12, 1e-15))
		})

		It("should take bare lengths in meters", func() {
			req := request("wire", "transfer", map[string]any{
				"length": 0.002, "datawidth": 1,
			})

			Expect(energy(req)).To(BeNumerically("~",
				0.2*1.627e-15*0.002*1e12, 1e-15))
		})

		It("should not charge other actions", func() {
			req := request("wire", "idle", map[string]any{
				"length": "1mm", "datawidth": 32,
			})

			Expect(energy(req)).To(Equal(0.0))
		})

		It("should warn about unknown units", func() {
			req := request("wire", "transfer", map[string]any{
				"length": "3ft", "datawidth": 32,
			})

			Expect(energy(req)).To(Equal(0.0))
			Expect(logHook.LastEntry().Level).To(Equal(logrus.WarnLevel))
		})
	})

	Context("hooks", func() {
		It("should invoke hooks after each estimate", func() {
			collector := &estimateCollector{}
			e.AcceptHook(collector)
			req := request("bitwise", "process", nil)

			v := energy(req)
			area(req)

			Expect(collector.ctxs).To(HaveLen(2))
			Expect(collector.ctxs[0].Pos).
				To(BeIdenticalTo(estimation.HookPosEnergyEstimated))
			Expect(collector.ctxs[1].Pos).
				To(BeIdenticalTo(estimation.HookPosAreaEstimated))

			detail := collector.ctxs[0].Detail.(estimation.Estimate)
			Expect(detail.Value).To(Equal(v))
			Expect(detail.Estimator).To(Equal("table"))
			Expect(detail.Quantity).To(Equal(estimation.QuantityEnergy))
		})
	})

	It("should stop on canceled contexts", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := e.EstimateEnergy(canceled, request("bitwise", "process", nil))

		Expect(err).To(MatchError(context.Canceled))
	})
})
