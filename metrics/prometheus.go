// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rnt-network/stakeledger/log"
)

const namespace = "stakeledger"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics installs the prometheus backend as the
// process-wide metrics service. Meters created before initialization stay
// no-ops; LazyLoad meters bind on first use.
func InitializePrometheusMetrics() {
	// don't allow for reset
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = newPrometheusMetrics()
	}
}

type prometheusMetrics struct {
	meters sync.Map
}

func newPrometheusMetrics() Metrics {
	return &prometheusMetrics{}
}

func (p *prometheusMetrics) getOrCreate(name string, create func() any) any {
	if m, ok := p.meters.Load(name); ok {
		return m
	}
	m, _ := p.meters.LoadOrStore(name, create())
	return m
}

func register(c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		logger.Warn("unable to register metric", "err", err)
	}
}

func (p *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	return p.getOrCreate(name, func() any {
		meter := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
		register(meter)
		return &promCounter{meter}
	}).(CountMeter)
}

func (p *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	return p.getOrCreate(name, func() any {
		meter := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
		register(meter)
		return &promCounterVec{meter}
	}).(CountVecMeter)
}

func (p *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	return p.getOrCreate(name, func() any {
		meter := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
		register(meter)
		return &promGauge{meter}
	}).(GaugeMeter)
}

func (p *prometheusMetrics) GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	return p.getOrCreate(name, func() any {
		meter := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name}, labels)
		register(meter)
		return &promGaugeVec{meter}
	}).(GaugeVecMeter)
}

func (p *prometheusMetrics) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	return p.getOrCreate(name, func() any {
		meter := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets(buckets),
		})
		register(meter)
		return &promHistogram{meter}
	}).(HistogramMeter)
}

func (p *prometheusMetrics) GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter {
	return p.getOrCreate(name, func() any {
		meter := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets(buckets),
		}, labels)
		register(meter)
		return &promHistogramVec{meter}
	}).(HistogramVecMeter)
}

func (p *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.Handler()
}

func floatBuckets(buckets []int64) []float64 {
	floats := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		floats = append(floats, float64(b))
	}
	return floats
}

type promCounter struct {
	counter prometheus.Counter
}

func (c *promCounter) Add(v int64) {
	c.counter.Add(float64(v))
}

type promCounterVec struct {
	counter *prometheus.CounterVec
}

func (c *promCounterVec) AddWithLabel(v int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(v))
}

type promGauge struct {
	gauge prometheus.Gauge
}

func (g *promGauge) Add(v int64) {
	g.gauge.Add(float64(v))
}

func (g *promGauge) Set(v int64) {
	g.gauge.Set(float64(v))
}

type promGaugeVec struct {
	gauge *prometheus.GaugeVec
}

func (g *promGaugeVec) AddWithLabel(v int64, labels map[string]string) {
	g.gauge.With(labels).Add(float64(v))
}

func (g *promGaugeVec) SetWithLabel(v int64, labels map[string]string) {
	g.gauge.With(labels).Set(float64(v))
}

type promHistogram struct {
	histogram prometheus.Histogram
}

func (h *promHistogram) Observe(v int64) {
	h.histogram.Observe(float64(v))
}

type promHistogramVec struct {
	histogram *prometheus.HistogramVec
}

func (h *promHistogramVec) ObserveWithLabels(v int64, labels map[string]string) {
	h.histogram.With(labels).Observe(float64(v))
}
