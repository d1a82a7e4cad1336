package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/akitapower/composite"
	"github.com/sarchlab/akitapower/config"
	"github.com/sarchlab/akitapower/estimation"
	"github.com/sarchlab/akitapower/latencytable"
	"github.com/sarchlab/akitapower/memcompiler"
	"github.com/sarchlab/akitapower/recording"
)

// buildRegistry creates the table-driven and the tool-backed estimators.
func buildRegistry(
	c config.Config,
	log logrus.FieldLogger,
) (*estimation.Registry, error) {
	tables := latencytable.Embedded()

	if c.TableDir != "" {
		var err error

		tables, err = latencytable.LoadDir(c.TableDir)
		if err != nil {
			return nil, err
		}
	}

	table := composite.MakeBuilder().
		WithTables(tables).
		WithLogger(log.WithField("estimator", composite.DefaultName)).
		Build(composite.DefaultName)

	toolBuilder := memcompiler.MakeBuilder().
		WithLogger(log.WithField("estimator", memcompiler.DefaultName)).
		WithToolPath(c.ToolPath).
		WithSearchDir(c.ToolSearchDir).
		WithHistoryLimit(c.HistoryLimit)

	if c.ScratchDir != "" {
		toolBuilder = toolBuilder.WithHistoryDir(c.ScratchDir)
	}

	tool := toolBuilder.Build(memcompiler.DefaultName)

	return estimation.NewRegistry(table, tool), nil
}

// attachRecorder records every estimate and tool invocation of the
// registered estimators into the target.
func attachRecorder(
	registry *estimation.Registry,
	target string,
) (recording.DataRecorder, error) {
	recorder, err := recording.Open(target)
	if err != nil {
		return nil, err
	}

	hook := recording.NewEstimateRecorder(recorder)

	for _, e := range registry.Estimators() {
		if h, ok := e.(estimation.Hookable); ok {
			h.AcceptHook(hook)
		}
	}

	execRecorder := recording.NewExecRecorder(recorder)
	execRecorder.Start()
	atexit.Register(execRecorder.End)

	return recorder, nil
}

func recordTarget(flag string) string {
	if flag != "" {
		return flag
	}

	return cfg.Record
}
