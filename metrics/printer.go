package metrics

import (
	"log/slog"

	"github.com/statsbridge/statsbridge/utils"
)

// BasePrinter simply logs stats as structured log
type BasePrinter struct {
	filter map[string]struct{}
	log    *slog.Logger
}

var _ IntervalWriter = (*BasePrinter)(nil)

// NewBasePrinter returns new base printer struct.
// If filter is not empty, only the listed metrics are printed.
func NewBasePrinter(filter []string, l *slog.Logger) *BasePrinter {
	var filterSet map[string]struct{}

	if len(filter) > 0 {
		filterSet = make(map[string]struct{}, len(filter))

		for _, name := range filter {
			filterSet[name] = struct{}{}
		}
	}

	return &BasePrinter{filter: filterSet, log: l.With("context", "metrics")}
}

// Run prints a message to the log with metrics logging details
func (p *BasePrinter) Run(interval int) error {
	p.log.Info("log metrics", "interval", interval)
	return nil
}

func (p *BasePrinter) Stop() {
}

// Write prints formatted snapshot to the log
func (p *BasePrinter) Write(m *Metrics) error {
	p.Print(m.IntervalSnapshot())
	return nil
}

// Print logs stats data with info level; attributes are sorted by name
func (p *BasePrinter) Print(snapshot map[string]uint64) {
	attrs := make([]any, 0, len(snapshot)*2)

	for _, name := range utils.SortedKeys(snapshot) {
		if p.filter != nil {
			if _, ok := p.filter[name]; !ok {
				continue
			}
		}

		attrs = append(attrs, name, snapshot[name])
	}

	p.log.Info("", attrs...)
}
