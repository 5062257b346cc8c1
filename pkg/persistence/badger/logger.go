package badger

import (
	"fmt"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

// journalLogger routes badger's printf-style logs into zap. Badger reports
// compactions and value-log replays at info level, which is noise for a
// journal, so those go to debug.
type journalLogger struct {
	logger *zap.Logger
}

var _ badgerdb.Logger = (*journalLogger)(nil)

func newJournalLogger(logger *zap.Logger, dataPath string) *journalLogger {
	return &journalLogger{logger: logger.With(zap.String("component", "badger"), zap.String("path", dataPath))}
}

func format(f string, args ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(f, args...), "\n")
}

func (l *journalLogger) Errorf(f string, args ...interface{}) {
	l.logger.Error(format(f, args...))
}

func (l *journalLogger) Warningf(f string, args ...interface{}) {
	l.logger.Warn(format(f, args...))
}

func (l *journalLogger) Infof(f string, args ...interface{}) {
	l.logger.Debug(format(f, args...))
}

func (l *journalLogger) Debugf(f string, args ...interface{}) {
	l.logger.Debug(format(f, args...))
}
