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
	meshroomNamespace string = "meshroom"
)

var (
	initialized atomic.Bool

	collectors []prometheus.Collector
)

// register queues a collector for registration in Init. Metrics are usable
// before Init, they are just not exported.
func register(c ...prometheus.Collector) {
	collectors = append(collectors, c...)
}

// Init registers all meshroom metrics with the default registerer, labelled
// with the given node id. Subsequent calls are no-ops.
func Init(nodeID string) {
	if initialized.Swap(true) {
		return
	}

	registerer := prometheus.WrapRegistererWith(prometheus.Labels{"node_id": nodeID}, prometheus.DefaultRegisterer)
	for _, c := range collectors {
		registerer.MustRegister(c)
	}
}
