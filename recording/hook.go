package recording

import (
	"encoding/json"

	"github.com/rs/xid"
	"github.com/sarchlab/akitapower/estimation"
	"github.com/sarchlab/akitapower/memcompiler"
)

// Table names used by the EstimateRecorder.
const (
	EstimateTable   = "estimates"
	InvocationTable = "tool_invocations"
)

// EstimateEntry is one row of the estimates table.
type EstimateEntry struct {
	ID         string
	Estimator  string
	Quantity   string
	Class      string
	Action     string
	Attributes string
	Arguments  string
	Value      float64
	Accuracy   int
	DurationNS int64
}

// InvocationEntry is one row of the tool_invocations table.
type InvocationEntry struct {
	ID           string
	Estimator    string
	Tool         string
	ConfigFile   string
	TechnologyNM int
	SizeBytes    int
	WordBytes    int
	Ports        int
	Banks        int
	UsedBanks    int
	Read         float64
	Write        float64
	Idle         float64
	Area         float64
	DurationNS   int64
}

// EstimateRecorder is a hook that writes the estimates and the tool
// invocations of the estimators it is attached to.
type EstimateRecorder struct {
	recorder DataRecorder
}

// NewEstimateRecorder creates the tables and returns the hook.
func NewEstimateRecorder(recorder DataRecorder) *EstimateRecorder {
	recorder.CreateTable(EstimateTable, EstimateEntry{})
	recorder.CreateTable(InvocationTable, InvocationEntry{})

	return &EstimateRecorder{recorder: recorder}
}

// Func records the detail of the hook context.
func (r *EstimateRecorder) Func(ctx estimation.HookCtx) {
	switch detail := ctx.Detail.(type) {
	case estimation.Estimate:
		r.recordEstimate(detail)
	case memcompiler.Invocation:
		r.recordInvocation(domainName(ctx.Domain), detail)
	}
}

func (r *EstimateRecorder) recordEstimate(e estimation.Estimate) {
	r.recorder.InsertData(EstimateTable, EstimateEntry{
		ID:         xid.New().String(),
		Estimator:  e.Estimator,
		Quantity:   string(e.Quantity),
		Class:      e.Request.ClassName,
		Action:     e.Request.ActionName,
		Attributes: mustJSON(e.Request.Attributes),
		Arguments:  mustJSON(e.Request.Arguments),
		Value:      e.Value,
		Accuracy:   int(e.Accuracy),
		DurationNS: e.Duration.Nanoseconds(),
	})
}

func (r *EstimateRecorder) recordInvocation(
	estimator string,
	inv memcompiler.Invocation,
) {
	r.recorder.InsertData(InvocationTable, InvocationEntry{
		ID:           xid.New().String(),
		Estimator:    estimator,
		Tool:         inv.Tool,
		ConfigFile:   inv.ConfigFile,
		TechnologyNM: inv.Key.TechnologyNM,
		SizeBytes:    inv.Key.SizeBytes,
		WordBytes:    inv.Key.WordBytes,
		Ports:        inv.Key.Ports,
		Banks:        inv.Key.Banks,
		UsedBanks:    inv.Banks,
		Read:         inv.Record.Read,
		Write:        inv.Record.Write,
		Idle:         inv.Record.Idle,
		Area:         inv.Record.Area,
		DurationNS:   inv.Duration.Nanoseconds(),
	})
}

func domainName(domain estimation.Hookable) string {
	if named, ok := domain.(interface{ Name() string }); ok {
		return named.Name()
	}

	return ""
}

func mustJSON(v map[string]any) string {
	if len(v) == 0 {
		return "{}"
	}

	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return string(b)
}
