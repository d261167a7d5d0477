// Package pipeline runs one statement through extraction, role
// resolution, normalization and ledger building.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/extractor"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/ledger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/logger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/metrics"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/normalizer"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/resolver"
)

// Options configure a Pipeline.
type Options struct {
	DayFirst  bool
	Metrics   *metrics.Metrics // may be nil
	Extractor *extractor.Extractor
	Resolver  *resolver.Resolver
}

// Pipeline turns statement bytes into a Ledger. It holds no per-run
// state and is safe for concurrent use.
type Pipeline struct {
	extractor  *extractor.Extractor
	resolver   *resolver.Resolver
	normalizer *normalizer.Normalizer
	metrics    *metrics.Metrics
}

// Result is the outcome of one successful run.
type Result struct {
	Source  string
	Format  models.SourceFormat
	Header  []string
	Mapping models.RoleMapping
	Ledger  *ledger.Ledger
	Report  ledger.ParseReport
}

func New(opts Options) *Pipeline {
	p := &Pipeline{
		extractor:  opts.Extractor,
		resolver:   opts.Resolver,
		normalizer: normalizer.New(normalizer.Options{DayFirst: opts.DayFirst}),
		metrics:    opts.Metrics,
	}
	if p.resolver == nil {
		p.resolver = resolver.New(resolver.DefaultKeywords)
	}
	if p.extractor == nil {
		p.extractor = extractor.New()
		p.extractor.IsHeader = p.resolver.LooksLikeHeader
	}
	return p
}

// RunFile reads and processes a statement from disk.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	return p.Run(ctx, filepath.Base(path), data)
}

// Run processes one uploaded statement. name is used for format detection.
// Extraction and resolution failures abort the run; row-level problems
// only show up in the ParseReport.
func (p *Pipeline) Run(ctx context.Context, name string, data []byte) (*Result, error) {
	start := time.Now()
	format := extractor.DetectFormat(name, data)
	log := logger.FromContext(ctx).With().
		Str(logger.FieldFile, name).
		Str(logger.FieldFormat, string(format)).
		Logger()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := p.extractor.Extract(data, format)
	if err != nil {
		p.fail(log, format, err)
		return nil, err
	}
	log.Debug().Str(logger.FieldStage, "extract").Int(logger.FieldRows, len(table.Rows)).Strs("header", table.Header).Msg("table extracted")

	mapping, err := p.resolver.Resolve(table.Header)
	for _, d := range mapping.Diagnostics {
		log.Debug().Str(logger.FieldStage, "resolve").Str("role", string(d.Role)).Str(logger.FieldKind, string(d.Kind)).Msg(d.Message)
	}
	if err != nil {
		p.fail(log, format, err)
		return nil, err
	}
	log.Debug().Str(logger.FieldStage, "resolve").Stringer(logger.FieldMapping, mapping).Msg("columns resolved")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := p.normalizer.Normalize(table, mapping)
	l, report := ledger.Build(candidates)

	outcome := metrics.OutcomeOK
	if l.Len() == 0 {
		outcome = metrics.OutcomeEmpty
	}
	p.metrics.Upload(string(format), outcome)
	p.metrics.RowsDropped(ledger.ReasonNonPositiveAmount, report.DroppedNonPositiveAmount)
	p.metrics.RowsDropped(ledger.ReasonBadDate, report.DroppedBadDate)
	p.metrics.LedgerRows(report.Kept)

	log.Info().
		Int(logger.FieldRows, report.TotalRows).
		Int(logger.FieldKept, report.Kept).
		Int(logger.FieldDropped, report.Dropped()).
		Int("dropped_amount", report.DroppedNonPositiveAmount).
		Int("dropped_date", report.DroppedBadDate).
		Dur(logger.FieldDuration, time.Since(start)).
		Msg("statement processed")

	return &Result{
		Source:  name,
		Format:  format,
		Header:  table.Header,
		Mapping: mapping,
		Ledger:  l,
		Report:  report,
	}, nil
}

func (p *Pipeline) fail(log zerolog.Logger, format models.SourceFormat, err error) {
	kind := models.ErrorKind(err)
	outcome := metrics.OutcomeError
	switch {
	case errors.Is(err, models.ErrMalformedInput):
		outcome = metrics.OutcomeMalformed
	case errors.Is(err, models.ErrMissingColumn):
		outcome = metrics.OutcomeMissingColumn
	}
	p.metrics.Upload(string(format), outcome)
	log.Warn().Err(err).Str(logger.FieldKind, kind).Msg("statement rejected")
}
