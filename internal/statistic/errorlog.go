package statistic

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/searchmeter/searchmeter/internal/solr"
)

// ErrorLog is an Observer that writes every failed operation to the log.
type ErrorLog struct {
	logger *logrus.Entry
	count  int64
}

func NewErrorLog(logger *logrus.Entry) *ErrorLog {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ErrorLog{logger: logger}
}

func (e *ErrorLog) Prepare() {
	e.count = 0
}

func (e *ErrorLog) OnExecutedQuery(_ *solr.QueryResponse, _ time.Duration) {}

func (e *ErrorLog) OnQueryError(err error) {
	e.count++
	e.logger.WithError(err).Warn("query failed")
}

func (e *ErrorLog) OnFinishedTest() {
	if e.count > 0 {
		e.logger.WithField("failures", e.count).Info("test finished with errors")
	}
}
