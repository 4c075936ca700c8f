// Copyright 2023 LiveKit, Inc.
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


package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	promPeerSessionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: meshroomNamespace,
		Subsystem: "peer",
		Name:      "sessions",
	}, []string{"event"})
	promPeerFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: meshroomNamespace,
		Subsystem: "peer",
		Name:      "failures",
	}, []string{"kind", "terminal"})
	promPeerQuality = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: meshroomNamespace,
		Subsystem: "peer",
		Name:      "quality_changes",
	}, []string{"quality"})
	promPeerConnectTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: meshroomNamespace,
		Subsystem: "peer",
		Name:      "connect_time_ms",
		Buckets:   prometheus.ExponentialBucketsRange(100, 20000, 12),
	})
)

func init() {
	register(promPeerSessionCounter, promPeerFailureCounter, promPeerQuality, promPeerConnectTime)
}

func PeerSessionStarted() {
	promPeerSessionCounter.WithLabelValues("started").Inc()
}

func PeerSessionRetried() {
	promPeerSessionCounter.WithLabelValues("retried").Inc()
}

func PeerSessionClosed() {
	promPeerSessionCounter.WithLabelValues("closed").Inc()
}

func PeerSessionConnected(d time.Duration) {
	promPeerSessionCounter.WithLabelValues("connected").Inc()
	promPeerConnectTime.Observe(float64(d.Milliseconds()))
}

func PeerSessionFailed(kind string, terminal bool) {
	t := "false"
	if terminal {
		t = "true"
	}
	promPeerFailureCounter.WithLabelValues(kind, t).Inc()
}

func PeerQualityChanged(quality string) {
	promPeerQuality.WithLabelValues(quality).Inc()
}
