package otel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goCred "github.com/MrEthical07/goCred"
	"github.com/MrEthical07/goCred/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNilMeter is returned when no meter is supplied.
	ErrNilMeter = errors.New("nil meter")
	// ErrNilSource is returned when no metrics source is supplied.
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() goCred.MetricsSnapshot
}

// opCounter is the instrument for one operation. Each engine counter of that
// operation is observed as a data point with its outcome attribute.
type opCounter struct {
	instrument metric.Int64ObservableCounter
	points     []outcomePoint
}

type outcomePoint struct {
	id  goCred.MetricID
	opt metric.ObserveOption
}

type latencyInstruments struct {
	id      goCred.MetricID
	buckets metric.Int64ObservableGauge
	count   metric.Int64ObservableCounter
	le      []metric.ObserveOption
}

// Exporter publishes engine snapshots through observable instruments.
type Exporter struct {
	source       metricsSource
	registration metric.Registration
	ops          []*opCounter
	latency      []latencyInstruments
}

// New registers instruments on meter that read from engine.
func New(meter metric.Meter, engine *goCred.Engine) (*Exporter, error) {
	if engine == nil {
		return nil, ErrNilSource
	}
	return NewFromSource(meter, engine)
}

// NewFromSource registers instruments reading from source.
//
// Instruments:
//   - gocred.verify, gocred.enroll, gocred.password_change: counters with an
//     "outcome" attribute
//   - gocred.verify.latency.seconds.bucket: cumulative count per "le" bound
//   - gocred.verify.latency.seconds.count: total samples
//
// Close unregisters the callback.
func NewFromSource(meter metric.Meter, source metricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &Exporter{source: source}
	var observables []metric.Observable

	byOp := make(map[string]*opCounter)
	for _, def := range internaldefs.CounterDefs {
		oc, ok := byOp[def.Op]
		if !ok {
			name := "gocred." + def.Op
			ins, err := meter.Int64ObservableCounter(name,
				metric.WithDescription(fmt.Sprintf("gocred %s calls by outcome.", def.Op)),
				metric.WithUnit("{call}"),
			)
			if err != nil {
				return nil, fmt.Errorf("create counter %s: %w", name, err)
			}
			oc = &opCounter{instrument: ins}
			byOp[def.Op] = oc
			e.ops = append(e.ops, oc)
			observables = append(observables, ins)
		}
		oc.points = append(oc.points, outcomePoint{
			id:  def.ID,
			opt: metric.WithAttributes(attribute.String("outcome", def.Outcome)),
		})
	}

	for _, def := range internaldefs.HistogramDefs {
		base := strings.ReplaceAll(def.Name, "_", ".")

		buckets, err := meter.Int64ObservableGauge(base+".bucket", metric.WithDescription(def.Help+" Cumulative count per upper bound."))
		if err != nil {
			return nil, fmt.Errorf("create gauge %s.bucket: %w", base, err)
		}
		count, err := meter.Int64ObservableCounter(base+".count", metric.WithDescription(def.Help+" Sample count."))
		if err != nil {
			return nil, fmt.Errorf("create counter %s.count: %w", base, err)
		}

		li := latencyInstruments{id: def.ID, buckets: buckets, count: count}
		for _, le := range internaldefs.HistogramBounds {
			li.le = append(li.le, metric.WithAttributes(attribute.String("le", le)))
		}
		e.latency = append(e.latency, li)
		observables = append(observables, buckets, count)
	}

	reg, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func (e *Exporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()

	for _, oc := range e.ops {
		for _, p := range oc.points {
			o.ObserveInt64(oc.instrument, int64(snap.Counters[p.id]), p.opt)
		}
	}

	for _, l := range e.latency {
		cum := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[l.id]))
		for i, opt := range l.le {
			o.ObserveInt64(l.buckets, int64(cum[i]), opt)
		}
		o.ObserveInt64(l.count, int64(cum[len(cum)-1]))
	}
	return nil
}

// Close unregisters the collection callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
