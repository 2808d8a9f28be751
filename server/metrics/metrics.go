// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics 以 Prometheus 輸出會話與 HTTP 指標。
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zintix-labs/autobet"
	"github.com/zintix-labs/autobet/sdk/buf"
	"github.com/zintix-labs/autobet/stats"
)

const namespace = "autobet"

// Metrics 持有自己的 registry，不使用全域 DefaultRegisterer（測試可重複建立）
type Metrics struct {
	reg *prometheus.Registry

	SessionsStarted   *prometheus.CounterVec
	SessionsStopped   *prometheus.CounterVec
	SessionsRunning   *prometheus.GaugeVec
	RoundsSettled     *prometheus.CounterVec
	AmountWagered     *prometheus.CounterVec
	UnexpectedSettles *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPLatency       *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		SessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Auto-bet sessions started.",
		}, []string{"game"}),
		SessionsStopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_stopped_total",
			Help:      "Auto-bet sessions stopped, by stop reason.",
		}, []string{"game", "reason"}),
		SessionsRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_running",
			Help:      "Auto-bet sessions not yet stopped.",
		}, []string{"game"}),
		RoundsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_settled_total",
			Help:      "Rounds settled, by result.",
		}, []string{"game", "result"}),
		AmountWagered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "amount_wagered_total",
			Help:      "Sum of settled bet amounts.",
		}, []string{"game"}),
		UnexpectedSettles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unexpected_settlements_total",
			Help:      "Settlements that arrived for a round that was not in flight.",
		}, []string{"game"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and status.",
		}, []string{"method", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SessionsStarted,
		m.SessionsStopped,
		m.SessionsRunning,
		m.RoundsSettled,
		m.AmountWagered,
		m.UnexpectedSettles,
		m.HTTPRequests,
		m.HTTPLatency,
	)
	return m
}

// Registry 供測試或額外 collector 使用
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler /metrics（壓縮交給 HTTP middleware）
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{DisableCompression: true})
}

// GaugeFunc 註冊一個即時計算的 gauge（例如 log 丟棄數、registry 大小）
func (m *Metrics) GaugeFunc(name, help string, fn func() float64) {
	m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// Middleware 記錄每個請求的狀態碼與延遲
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(sw.status)).Inc()
		m.HTTPLatency.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap 讓 http.ResponseController 找到底層 writer
func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Observer 為單一會話建立 observer，須在 autobet.Start 時掛上。
//
// started / running 在收到第一個事件時才計入，Start 失敗的會話不會留在 gauge 裡。
func (m *Metrics) Observer(game string) autobet.Observer {
	return &sessionObserver{m: m, game: game}
}

type sessionObserver struct {
	m       *Metrics
	game    string
	started sync.Once
	once    sync.Once
}

func (o *sessionObserver) begin() {
	o.started.Do(func() {
		o.m.SessionsStarted.WithLabelValues(o.game).Inc()
		o.m.SessionsRunning.WithLabelValues(o.game).Inc()
	})
}

func (o *sessionObserver) OnStateChanged(autobet.State) { o.begin() }

func (o *sessionObserver) OnStatsChanged(st stats.SessionStats) {
	o.begin()
	if st.StopReason == stats.ReasonNone {
		return
	}
	o.once.Do(func() {
		o.m.SessionsRunning.WithLabelValues(o.game).Dec()
		o.m.SessionsStopped.WithLabelValues(o.game, string(st.StopReason)).Inc()
	})
}

func (o *sessionObserver) OnRoundSettled(out buf.RoundOutcome) {
	o.begin()
	result := "loss"
	if out.Won {
		result = "win"
	}
	o.m.RoundsSettled.WithLabelValues(o.game, result).Inc()
	o.m.AmountWagered.WithLabelValues(o.game).Add(out.BetAmount.InexactFloat64())
}

func (o *sessionObserver) OnUnexpectedSettlement(int) {
	o.begin()
	o.m.UnexpectedSettles.WithLabelValues(o.game).Inc()
}
