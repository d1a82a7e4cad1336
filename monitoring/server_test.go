package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/akitapower/composite"
	"github.com/sarchlab/akitapower/estimation"
)

var _ = Describe("Server", func() {
	var (
		registry *estimation.Registry
		server   *Server
		handler  http.Handler
	)

	adder := estimation.Request{
		ClassName: "intadder",
		Attributes: map[string]any{
			"technology": "45nm",
			"datawidth":  32,
		},
		ActionName: "add",
	}

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		buf := bytes.NewBuffer(nil)
		if body != nil {
			Expect(json.NewEncoder(buf).Encode(body)).To(Succeed())
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(method, path, buf))

		return rec
	}

	BeforeEach(func() {
		logger, _ := test.NewNullLogger()

		registry = estimation.NewRegistry(
			composite.MakeBuilder().WithLogger(logger).Build("table"))
		server = NewServer(registry).WithLogger(logger)
		handler = server.Handler()
	})

	It("should replace reserved ports with a random port", func() {
		server.WithPortNumber(80)
		Expect(server.portNumber).To(Equal(0))

		server.WithPortNumber(8080)
		Expect(server.portNumber).To(Equal(8080))
	})

	It("should list the estimators", func() {
		rec := do(http.MethodGet, "/api/estimators", nil)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`["table"]`))
	})

	It("should answer energy queries", func() {
		expected, err := registry.EstimateEnergy(context.Background(), adder)
		Expect(err).NotTo(HaveOccurred())

		rec := do(http.MethodPost, "/api/energy", adder)

		Expect(rec.Code).To(Equal(http.StatusOK))

		answer := estimation.Answer{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &answer)).To(Succeed())
		Expect(answer.Estimator).To(Equal("table"))
		Expect(answer.Accuracy).To(Equal(composite.Accuracy))
		Expect(answer.Value).To(BeNumerically("~", expected.Value, 1e-12))
	})

	It("should answer area queries", func() {
		expected, err := registry.EstimateArea(context.Background(), adder)
		Expect(err).NotTo(HaveOccurred())

		rec := do(http.MethodPost, "/api/area", adder)

		Expect(rec.Code).To(Equal(http.StatusOK))

		answer := estimation.Answer{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &answer)).To(Succeed())
		Expect(answer.Value).To(BeNumerically("~", expected.Value, 1e-12))
	})

	It("should reject malformed bodies", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(
			http.MethodPost, "/api/energy", bytes.NewBufferString("{")))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 404 when no estimator supports the request", func() {
		rec := do(http.MethodPost, "/api/energy", estimation.Request{
			ClassName:  "SRAM",
			Attributes: map[string]any{"technology": "45nm"},
			ActionName: "read",
		})

		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring("no estimator"))
	})

	It("should return 422 when an attribute is missing", func() {
		rec := do(http.MethodPost, "/api/energy", estimation.Request{
			ClassName:  "intadder",
			Attributes: map[string]any{"technology": "45nm"},
			ActionName: "add",
		})

		Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
	})

	It("should answer batches and report errors per request", func() {
		rec := do(http.MethodPost, "/api/batch", batchReq{
			Requests: []estimation.Request{adder, {ClassName: "DRAM"}, {}},
		})

		Expect(rec.Code).To(Equal(http.StatusOK))

		rsp := batchRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Answers).To(HaveLen(3))
		Expect(rsp.Errors[2]).To(Equal("request has no class_name"))
		Expect(rsp.Answers[0].Estimator).To(Equal("table"))
		Expect(rsp.Errors[0]).To(BeEmpty())
		Expect(rsp.Errors[1]).To(ContainSubstring("no estimator"))
		Expect(server.progressBars).To(BeEmpty())
	})

	It("should reject unknown batch quantities", func() {
		rec := do(http.MethodPost, "/api/batch", batchReq{Quantity: "power"})

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 404 for unknown estimators", func() {
		rec := do(http.MethodGet, "/api/estimator/cacti", nil)

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should list progress bars", func() {
		bar := server.CreateProgressBar("batch energy", 4)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)
		bar.IncrementFinished(1)

		rec := do(http.MethodGet, "/api/progress", nil)

		snapshots := []ProgressSnapshot{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &snapshots)).To(Succeed())
		Expect(snapshots).To(HaveLen(1))
		Expect(snapshots[0].Total).To(Equal(uint64(4)))
		Expect(snapshots[0].Finished).To(Equal(uint64(2)))
		Expect(snapshots[0].InProgress).To(Equal(uint64(1)))

		server.CompleteProgressBar(bar)
		Expect(server.progressBars).To(BeEmpty())
	})

	It("should report the resources of the process", func() {
		rec := do(http.MethodGet, "/api/resource", nil)

		Expect(rec.Code).To(Equal(http.StatusOK))

		rsp := resourceRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should start and stop", func() {
		addr, err := server.StartServer()
		Expect(err).NotTo(HaveOccurred())

		rsp, err := http.Get(addr + "/api/estimators")
		Expect(err).NotTo(HaveOccurred())
		rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))

		Expect(server.Shutdown(context.Background())).To(Succeed())
	})
})
