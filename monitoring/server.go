// Package monitoring turns a set of estimators into an HTTP server, so that
// tools written in other languages can query them.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
	"github.com/syifan/goseth"

	"github.com/sarchlab/akitapower/estimation"
)

// Server answers estimation queries over HTTP.
type Server struct {
	registry   *estimation.Registry
	portNumber int
	log        logrus.FieldLogger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	httpServer *http.Server
}

// NewServer creates a server that routes the queries through the registry.
func NewServer(registry *estimation.Registry) *Server {
	return &Server{
		registry: registry,
		log:      logrus.StandardLogger(),
		locks:    make(map[string]*sync.Mutex),
	}
}

// WithPortNumber sets the port number of the server. Ports below 1000 are
// replaced by a random port.
func (s *Server) WithPortNumber(portNumber int) *Server {
	if portNumber != 0 && portNumber < 1000 {
		s.log.Warnf("Port number %d is not allowed, using a random port",
			portNumber)

		portNumber = 0
	}

	s.portNumber = portNumber

	return s
}

// WithLogger sets the logger of the server.
func (s *Server) WithLogger(logger logrus.FieldLogger) *Server {
	s.log = logger
	return s
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/energy", s.estimateEnergy).Methods(http.MethodPost)
	r.HandleFunc("/api/area", s.estimateArea).Methods(http.MethodPost)
	r.HandleFunc("/api/batch", s.estimateBatch).Methods(http.MethodPost)
	r.HandleFunc("/api/estimators", s.listEstimators)
	r.HandleFunc("/api/estimator/{name}", s.estimatorDetails)
	r.HandleFunc("/api/progress", s.listProgressBars)
	r.HandleFunc("/api/resource", s.listResources)
	r.HandleFunc("/api/profile", s.collectProfile)

	return r
}

// StartServer starts listening in the background and returns the address
// that the server listens on.
func (s *Server) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(s.portNumber))
	if err != nil {
		return "", err
	}

	addr := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Serving estimators with %s\n", addr)

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := s.httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("server stopped")
		}
	}()

	return addr, nil
}

// Shutdown stops a started server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) lockEstimator(name string) func() {
	s.locksMu.Lock()

	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}

	s.locksMu.Unlock()

	l.Lock()

	return l.Unlock
}

func (s *Server) estimateEnergy(w http.ResponseWriter, r *http.Request) {
	s.serveQuery(w, r, estimation.QuantityEnergy)
}

func (s *Server) estimateArea(w http.ResponseWriter, r *http.Request) {
	s.serveQuery(w, r, estimation.QuantityArea)
}

func (s *Server) serveQuery(
	w http.ResponseWriter,
	r *http.Request,
	q estimation.Quantity,
) {
	req := estimation.Request{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	answer, err := s.answer(r.Context(), req, q)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	writeJSON(w, answer)
}

func (s *Server) answer(
	ctx context.Context,
	req estimation.Request,
	q estimation.Quantity,
) (estimation.Answer, error) {
	best := s.registry.BestForEnergy
	if q == estimation.QuantityArea {
		best = s.registry.BestForArea
	}

	e, accuracy, err := best(req)
	if err != nil {
		return estimation.Answer{}, err
	}

	unlock := s.lockEstimator(e.Name())
	defer unlock()

	var v float64
	if q == estimation.QuantityArea {
		v, err = e.EstimateArea(ctx, req)
	} else {
		v, err = e.EstimateEnergy(ctx, req)
	}

	if err != nil {
		return estimation.Answer{}, fmt.Errorf("%s: %w", e.Name(), err)
	}

	return estimation.Answer{
		Estimator: e.Name(),
		Accuracy:  accuracy,
		Value:     v,
	}, nil
}

type batchReq struct {
	Quantity estimation.Quantity  `json:"quantity"`
	Requests []estimation.Request `json:"requests"`
}

type batchRsp struct {
	Answers []estimation.Answer `json:"answers"`
	Errors  []string            `json:"errors"`
}

func (s *Server) estimateBatch(w http.ResponseWriter, r *http.Request) {
	req := batchReq{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Quantity == "" {
		req.Quantity = estimation.QuantityEnergy
	}

	if req.Quantity != estimation.QuantityEnergy &&
		req.Quantity != estimation.QuantityArea {
		writeError(w, http.StatusBadRequest,
			fmt.Errorf("unknown quantity %q", req.Quantity))
		return
	}

	bar := s.CreateProgressBar("batch "+string(req.Quantity),
		uint64(len(req.Requests)))
	defer s.CompleteProgressBar(bar)

	rsp := batchRsp{
		Answers: make([]estimation.Answer, len(req.Requests)),
		Errors:  make([]string, len(req.Requests)),
	}

	for i, q := range req.Requests {
		if q.ClassName == "" {
			rsp.Errors[i] = "request has no class_name"
			bar.IncrementFinished(1)

			continue
		}

		bar.IncrementInProgress(1)

		answer, err := s.answer(r.Context(), q, req.Quantity)
		if err != nil {
			rsp.Errors[i] = err.Error()
		}

		rsp.Answers[i] = answer

		bar.MoveInProgressToFinished(1)
	}

	writeJSON(w, rsp)
}

func (s *Server) listEstimators(w http.ResponseWriter, _ *http.Request) {
	names := []string{}
	for _, e := range s.registry.Estimators() {
		names = append(names, e.Name())
	}

	writeJSON(w, names)
}

func (s *Server) estimatorDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	e, ok := s.registry.Find(name)
	if !ok {
		writeError(w, http.StatusNotFound,
			fmt.Errorf("estimator %s not found", name))
		return
	}

	unlock := s.lockEstimator(name)
	defer unlock()

	buf := bytes.NewBuffer(nil)

	serializer := goseth.NewSerializer()
	serializer.SetRoot(e)
	serializer.SetMaxDepth(1)

	if err := serializer.Serialize(buf); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

// CreateProgressBar creates a new progress bar.
func (s *Server) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	s.progressBarsLock.Lock()
	defer s.progressBarsLock.Unlock()

	s.progressBars = append(s.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the progress list.
func (s *Server) CompleteProgressBar(pb *ProgressBar) {
	s.progressBarsLock.Lock()
	defer s.progressBarsLock.Unlock()

	bars := make([]*ProgressBar, 0, len(s.progressBars))
	for _, b := range s.progressBars {
		if b != pb {
			bars = append(bars, b)
		}
	}

	s.progressBars = bars
}

func (s *Server) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	s.progressBarsLock.Lock()
	defer s.progressBarsLock.Unlock()

	snapshots := make([]ProgressSnapshot, 0, len(s.progressBars))
	for _, b := range s.progressBars {
		snapshots = append(snapshots, b.Snapshot())
	}

	writeJSON(w, snapshots)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (s *Server) listResources(w http.ResponseWriter, _ *http.Request) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	memory, err := p.MemoryInfo()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memory.RSS,
	})
}

func (s *Server) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, prof)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, estimation.ErrNoEstimator):
		return http.StatusNotFound
	case errors.Is(err, estimation.ErrMissingAttribute),
		errors.Is(err, estimation.ErrUnsupported):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type errorRsp struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorRsp{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
