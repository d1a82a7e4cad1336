package recording

import (
	"os"
	"strings"
	"time"
)

// ExecInfoTable is the table that describes the program execution.
const ExecInfoTable = "exec_info"

const execTimeFormat = "2006-01-02 15:04:05.000000000"

// ExecInfo is one property of the program execution.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecRecorder records when and how the program was executed.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []ExecInfo
	now      func() time.Time
}

// NewExecRecorder creates the exec_info table.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	recorder.CreateTable(ExecInfoTable, ExecInfo{})

	return &ExecRecorder{
		recorder: recorder,
		now:      time.Now,
	}
}

// Start remembers the start time, the command line and the working
// directory.
func (e *ExecRecorder) Start() {
	e.entries = append(e.entries,
		ExecInfo{"Start Time", e.now().Format(execTimeFormat)},
		ExecInfo{"Command", strings.Join(os.Args, " ")},
	)

	if cwd, err := os.Getwd(); err == nil {
		e.entries = append(e.entries, ExecInfo{"Working Directory", cwd})
	}
}

// End writes the remembered properties together with the end time.
func (e *ExecRecorder) End() {
	for _, entry := range e.entries {
		e.recorder.InsertData(ExecInfoTable, entry)
	}

	e.recorder.InsertData(ExecInfoTable,
		ExecInfo{"End Time", e.now().Format(execTimeFormat)})

	e.entries = nil

	e.recorder.Flush()
}
