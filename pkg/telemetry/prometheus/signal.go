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
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

const (
	SignalRelayed  = "relayed"
	SignalDropped  = "dropped"
	SignalRejected = "rejected"
)

var (
	connectionCurrent atomic.Int32

	// MessageCounter counts inbound signal requests by type and outcome.
	MessageCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: meshroomNamespace,
		Subsystem: "signal",
		Name:      "messages",
	}, []string{"type", "status"})

	promConnectionCurrent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: meshroomNamespace,
		Subsystem: "signal",
		Name:      "connections",
	})
	promConnectionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: meshroomNamespace,
		Subsystem: "signal",
		Name:      "connection_events",
	}, []string{"event"})
)

func init() {
	register(MessageCounter, promConnectionCurrent, promConnectionCounter)
}

func RecordSignal(reqType, status string) {
	MessageCounter.WithLabelValues(reqType, status).Inc()
}

func ConnectionOpened() {
	promConnectionCurrent.Add(1)
	promConnectionCounter.WithLabelValues("opened").Inc()
	connectionCurrent.Inc()
}

// ConnectionClosed records a signal connection teardown; reason is a short
// label such as "client", "slow_consumer" or "timeout".
func ConnectionClosed(reason string) {
	promConnectionCurrent.Sub(1)
	promConnectionCounter.WithLabelValues(reason).Inc()
	connectionCurrent.Dec()
}

func CurrentConnections() int32 {
	return connectionCurrent.Load()
}
