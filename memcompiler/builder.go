package memcompiler

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// DefaultName is the name of the estimator when it is registered with the
// command line tool and the server.
const DefaultName = "cacti"

// Builder can build tool-backed estimators.
type Builder struct {
	runner       Runner
	logger       logrus.FieldLogger
	toolPath     string
	searchDir    string
	historyDir   string
	historyLimit int
	prefix       string
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		runner:       CommandRunner{},
		historyDir:   filepath.Join(os.TempDir(), "akitapower"),
		historyLimit: DefaultHistoryLimit,
	}
}

// WithRunner sets the way that the tool is run.
func (b Builder) WithRunner(runner Runner) Builder {
	b.runner = runner
	return b
}

// WithLogger sets the logger that receives the warnings.
func (b Builder) WithLogger(logger logrus.FieldLogger) Builder {
	b.logger = logger
	return b
}

// WithToolPath sets the path to the tool executable, or to the directory that
// contains it.
func (b Builder) WithToolPath(path string) Builder {
	b.toolPath = path
	return b
}

// WithSearchDir sets a directory to search for the tool when no path is
// given.
func (b Builder) WithSearchDir(dir string) Builder {
	b.searchDir = dir
	return b
}

// WithHistoryDir sets where the configuration files are archived.
func (b Builder) WithHistoryDir(dir string) Builder {
	b.historyDir = dir
	return b
}

// WithHistoryLimit sets the number of archived configuration files to keep.
func (b Builder) WithHistoryLimit(limit int) Builder {
	b.historyLimit = limit
	return b
}

// WithScratchPrefix sets the prefix of the configuration file name. By
// default, each estimator uses a unique prefix.
func (b Builder) WithScratchPrefix(prefix string) Builder {
	b.prefix = prefix
	return b
}

// Build creates a new estimator.
func (b Builder) Build(name string) *Estimator {
	e := &Estimator{
		name:      name,
		runner:    b.runner,
		log:       b.logger,
		toolPath:  b.toolPath,
		searchDir: b.searchDir,
		prefix:    b.prefix,
		cache:     NewResultCache(),
		history: &history{
			dir:   b.historyDir,
			limit: b.historyLimit,
			now:   time.Now,
		},
	}

	if e.log == nil {
		e.log = logrus.StandardLogger().WithField("estimator", name)
	}

	if e.prefix == "" {
		e.prefix = xid.New().String() + "_"
	}

	return e
}
