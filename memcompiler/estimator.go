// Package memcompiler provides an estimator that characterizes SRAM with an
// external memory compiler and DRAM with per-technology constants.
//
// Running the memory compiler is slow, so the results of each SRAM
// configuration are cached for the lifetime of the estimator. One run gives
// the read, write, and idle energy and the area of a configuration.
package memcompiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/akitapower/estimation"
	"github.com/sarchlab/akitapower/quantity"
)

// Accuracies reported by the estimator.
const (
	SRAMAccuracy estimation.Accuracy = 70
	DRAMAccuracy estimation.Accuracy = 95
)

// Bounds of the SRAM configurations that the tool can characterize.
const (
	MinTechnologyNM = 22
	MaxTechnologyNM = 180
	MinSizeBytes    = 64
)

// Shares of the dynamic energy of an SRAM access.
const (
	addressDecodeShare = 0.3
	cellAccessShare    = 0.7
)

// Invocation is the detail of the hook invoked after each tool run.
type Invocation struct {
	Tool       string
	ConfigFile string
	Key        Key
	Banks      int
	Record     Record
	Duration   time.Duration
}

// Estimator answers SRAM and DRAM queries.
type Estimator struct {
	estimation.HookableBase

	name      string
	runner    Runner
	log       logrus.FieldLogger
	toolPath  string
	searchDir string
	tool      string
	prefix    string
	cache     *ResultCache
	history   *history
}

// Name returns the name of the estimator.
func (e *Estimator) Name() string {
	return e.name
}

// Cache returns the results cache of the estimator.
func (e *Estimator) Cache() *ResultCache {
	return e.cache
}

// ConfigFileName returns the name of the configuration file that the
// estimator writes next to the tool.
func (e *Estimator) ConfigFileName() string {
	return e.prefix + "SRAM.cfg"
}

func isAccess(action string) bool {
	return action == "read" || action == "write" || action == "idle"
}

// SupportsAction reports whether the estimator can estimate the energy of the
// action.
func (e *Estimator) SupportsAction(req estimation.Request) estimation.Accuracy {
	switch req.Class() {
	case estimation.ClassSRAM:
		if isAccess(req.ActionName) && e.sramSupported(req) {
			return SRAMAccuracy
		}
	case estimation.ClassDRAM:
		if isAccess(req.ActionName) && dramSupported(req) {
			return DRAMAccuracy
		}
	}

	return estimation.NotSupported
}

// SupportsArea reports whether the estimator can estimate the area. Only SRAM
// area is supported.
func (e *Estimator) SupportsArea(req estimation.Request) estimation.Accuracy {
	if req.Class() == estimation.ClassSRAM && e.sramSupported(req) {
		return SRAMAccuracy
	}

	return estimation.NotSupported
}

func (e *Estimator) sramSupported(req estimation.Request) bool {
	key, err := sramKey(req)
	if err != nil {
		e.log.WithError(err).WithField("class", req.ClassName).
			Warn("cannot estimate SRAM")

		return false
	}

	if key.SizeBytes < MinSizeBytes {
		return false
	}

	return key.TechnologyNM >= MinTechnologyNM &&
		key.TechnologyNM <= MaxTechnologyNM
}

func dramSupported(req estimation.Request) bool {
	if !req.Has("width") {
		return false
	}

	name, err := req.Text("type")
	if err != nil {
		return false
	}

	_, ok := ParseDRAMType(name).EnergyPerBit()

	return ok
}

func sramKey(req estimation.Request) (Key, error) {
	tech, ok := req.Attr("technology")
	if !ok {
		return Key{}, fmt.Errorf("%w: technology",
			estimation.ErrMissingAttribute)
	}

	nm, err := quantity.TechnologyNode(tech)
	if err != nil {
		return Key{}, fmt.Errorf("technology: %w", err)
	}

	width, err := req.Int("width")
	if err != nil {
		return Key{}, err
	}

	depth, err := req.Int("depth")
	if err != nil {
		return Key{}, err
	}

	ports := 0
	for _, attr := range []string{"n_rdwr_ports", "n_rd_ports", "n_wr_ports"} {
		n, err := req.IntOr(attr, 0)
		if err != nil {
			return Key{}, err
		}

		ports += n
	}

	banks, err := req.IntOr("n_banks", 1)
	if err != nil {
		return Key{}, err
	}

	if banks < 1 {
		return Key{}, fmt.Errorf("%w: n_banks must be positive, got %d",
			estimation.ErrMissingAttribute, banks)
	}

	return Key{
		TechnologyNM: nm,
		SizeBytes:    width * depth / 8,
		WordBytes:    width / 8,
		Ports:        ports,
		Banks:        banks,
	}, nil
}

// EstimateEnergy returns the energy of an access, in pJ.
func (e *Estimator) EstimateEnergy(
	ctx context.Context,
	req estimation.Request,
) (float64, error) {
	start := time.Now()

	var (
		v        float64
		err      error
		accuracy estimation.Accuracy
	)

	switch req.Class() {
	case estimation.ClassDRAM:
		accuracy = DRAMAccuracy
		v, err = dramEnergy(req)
	case estimation.ClassSRAM:
		accuracy = SRAMAccuracy
		v, err = e.sramEnergy(ctx, req)
	default:
		err = fmt.Errorf("%w: %s", estimation.ErrUnsupported, req.ClassName)
	}

	if err != nil {
		return 0, err
	}

	e.invokeEstimateHook(estimation.HookPosEnergyEstimated,
		estimation.QuantityEnergy, req, v, accuracy, start)

	return v, nil
}

// EstimateArea returns the area of an SRAM, in um^2.
func (e *Estimator) EstimateArea(
	ctx context.Context,
	req estimation.Request,
) (float64, error) {
	if req.Class() != estimation.ClassSRAM {
		return 0, fmt.Errorf("%w: %s area",
			estimation.ErrUnsupported, req.ClassName)
	}

	start := time.Now()

	key, err := sramKey(req)
	if err != nil {
		return 0, err
	}

	record, err := e.record(ctx, key)
	if err != nil {
		return 0, err
	}

	e.invokeEstimateHook(estimation.HookPosAreaEstimated,
		estimation.QuantityArea, req, record.Area, SRAMAccuracy, start)

	return record.Area, nil
}

func (e *Estimator) invokeEstimateHook(
	pos *estimation.HookPos,
	q estimation.Quantity,
	req estimation.Request,
	v float64,
	accuracy estimation.Accuracy,
	start time.Time,
) {
	if e.NumHooks() == 0 {
		return
	}

	e.InvokeHook(estimation.HookCtx{
		Domain: e,
		Pos:    pos,
		Item:   req,
		Detail: estimation.Estimate{
			Estimator: e.name,
			Quantity:  q,
			Request:   req,
			Value:     v,
			Accuracy:  accuracy,
			Duration:  time.Since(start),
		},
	})
}

// dramEnergy charges reads and writes per bit of width. Everything else is
// free.
func dramEnergy(req estimation.Request) (float64, error) {
	width, err := req.Float("width")
	if err != nil {
		return 0, err
	}

	if !strings.Contains(req.ActionName, "read") &&
		!strings.Contains(req.ActionName, "write") {
		return 0, nil
	}

	name, err := req.Text("type")
	if err != nil {
		return 0, err
	}

	perBit, ok := ParseDRAMType(name).EnergyPerBit()
	if !ok {
		return 0, nil
	}

	return perBit * width, nil
}

func (e *Estimator) sramEnergy(
	ctx context.Context,
	req estimation.Request,
) (float64, error) {
	key, err := sramKey(req)
	if err != nil {
		return 0, err
	}

	record, err := e.record(ctx, key)
	if err != nil {
		return 0, err
	}

	full, ok := record.Field(req.ActionName)
	if !ok || req.ActionName == "area" {
		return 0, fmt.Errorf("%w: SRAM action %q",
			estimation.ErrUnsupported, req.ActionName)
	}

	if req.ActionName == "idle" {
		return record.Idle, nil
	}

	return partialActivity(req, full, record.Idle, key.Banks)
}

// partialActivity blends the idle and the full access energy. Address
// decoding takes 30% of the dynamic energy and is shared by the banks. Cell
// access takes the other 70%.
func partialActivity(
	req estimation.Request,
	full, idle float64,
	banks int,
) (float64, error) {
	addressDelta, hasAddress, err := req.Argument("address_delta")
	if err != nil {
		return 0, err
	}

	dataDelta, hasData, err := req.Argument("data_delta")
	if err != nil {
		return 0, err
	}

	if !hasAddress && !hasData {
		return full, nil
	}

	if !hasAddress {
		addressDelta = 1
	}

	if !hasData {
		dataDelta = 1
	}

	if addressDelta == 0 && dataDelta == 0 {
		return idle, nil
	}

	dynamic := full - idle
	decode := dynamic * addressDecodeShare * addressDelta / float64(banks)
	access := dynamic * cellAccessShare * dataDelta

	return idle + decode + access, nil
}

func (e *Estimator) record(ctx context.Context, key Key) (Record, error) {
	if r, ok := e.cache.Lookup(key); ok {
		return r, nil
	}

	r, err := e.populate(ctx, key)
	if err != nil {
		return Record{}, err
	}

	e.cache.Populate(key, r)

	return r, nil
}

func (e *Estimator) findTool() (string, error) {
	if e.tool != "" {
		return e.tool, nil
	}

	tool, err := FindTool(e.toolPath, e.searchDir)
	if err != nil {
		return "", err
	}

	e.tool = tool

	return tool, nil
}

// populate runs the tool once for a configuration.
func (e *Estimator) populate(ctx context.Context, key Key) (Record, error) {
	banks := key.Banks
	if !estimation.IsPowerOfTwo(banks) {
		banks = estimation.NextPowerOfTwo(banks)
		e.log.WithFields(logrus.Fields{
			"n_banks":   key.Banks,
			"corrected": banks,
		}).Warn("n_banks is not a power of 2")
	}

	config := MakeToolConfig(key, banks)
	if config.Resized {
		e.log.WithFields(logrus.Fields{
			"size":      key.SizeBytes,
			"line_size": config.BlockBytes,
			"corrected": config.SizeBytes,
		}).Warn("intended SRAM size is smaller than 64 words")
	}

	tool, err := e.findTool()
	if err != nil {
		return Record{}, err
	}

	dir := filepath.Dir(tool)
	start := time.Now()

	var record Record

	err = withWorkingDir(dir, func() error {
		var runErr error
		record, runErr = e.run(ctx, tool, dir, config, banks)

		return runErr
	})
	if err != nil {
		return Record{}, err
	}

	if e.NumHooks() > 0 {
		e.InvokeHook(estimation.HookCtx{
			Domain: e,
			Pos:    estimation.HookPosToolInvoked,
			Item:   key,
			Detail: Invocation{
				Tool:       tool,
				ConfigFile: e.ConfigFileName(),
				Key:        key,
				Banks:      banks,
				Record:     record,
				Duration:   time.Since(start),
			},
		})
	}

	return record, nil
}

func (e *Estimator) run(
	ctx context.Context,
	tool, dir string,
	config ToolConfig,
	banks int,
) (Record, error) {
	cfgName := e.ConfigFileName()
	cfgPath := filepath.Join(dir, cfgName)
	outPath := cfgPath + ".out"

	defer os.Remove(outPath)
	defer os.Remove(cfgPath)

	if err := writeConfig(cfgPath, config); err != nil {
		return Record{}, fmt.Errorf("%w: write configuration: %v",
			ErrToolFailed, err)
	}

	e.log.WithField("config", cfgName).Info("querying the memory compiler")

	runErr := e.runner.Run(ctx, tool, dir, cfgName)

	if archived, err := e.history.archive(cfgPath); err != nil {
		e.log.WithError(err).Warn("cannot archive the configuration")
	} else {
		e.log.WithField("archive", archived).Debug("configuration archived")
	}

	if runErr != nil {
		if errors.Is(runErr, ErrToolFailed) {
			return Record{}, runErr
		}

		return Record{}, fmt.Errorf("%w: %w", ErrToolFailed, runErr)
	}

	out, err := os.Open(outPath)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrToolFailed, err)
	}
	defer out.Close()

	parsed, err := ParseToolOutput(out)
	if err != nil {
		return Record{}, err
	}

	return parsed.Record(banks), nil
}

func writeConfig(path string, config ToolConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := config.Render(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
