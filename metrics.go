/*
 * Copyright 2024 ScopeDB, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package influxdb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeResponse       = "response"
	outcomeTransportError = "transport_error"
	outcomeClientError    = "client_error"
)

// routerMetrics are owned by a single client; nothing is registered globally.
type routerMetrics struct {
	attempts   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	promotions prometheus.Counter
	exhausted  prometheus.Counter
}

func newRouterMetrics() *routerMetrics {
	return &routerMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "influxdb_client",
			Name:      "host_attempts_total",
			Help:      "HTTP attempts per host, partitioned by outcome.",
		}, []string{"host", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "influxdb_client",
			Name:      "host_attempt_duration_seconds",
			Help:      "Time until a host answered or failed.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		promotions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "influxdb_client",
			Name:      "host_promotions_total",
			Help:      "Times a host other than the first answered and was moved to the front.",
		}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "influxdb_client",
			Name:      "no_reachable_host_total",
			Help:      "Requests that failed on every configured host.",
		}),
	}
}

func (m *routerMetrics) observe(host, outcome string, start time.Time) {
	m.attempts.WithLabelValues(host, outcome).Inc()
	m.latency.WithLabelValues(host).Observe(time.Since(start).Seconds())
}

func (m *routerMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.attempts, m.latency, m.promotions, m.exhausted}
}
