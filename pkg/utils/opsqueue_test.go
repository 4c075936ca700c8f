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


package utils

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livekit/protocol/logger"
)

func TestOpsQueue(t *testing.T) {
	t.Run("runs in order without dropping", func(t *testing.T) {
		oq := NewOpsQueue(logger.GetLogger(), "test", 2)
		oq.Start()
		defer oq.Stop()

		var lock sync.Mutex
		var seen []int
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			i := i
			oq.Enqueue(func() {
				defer wg.Done()
				lock.Lock()
				seen = append(seen, i)
				lock.Unlock()
			})
		}
		wg.Wait()

		require.Len(t, seen, 100)
		for i, v := range seen {
			require.Equal(t, i, v)
		}
	})

	t.Run("survives panicking op", func(t *testing.T) {
		oq := NewOpsQueue(logger.GetLogger(), "test", 2)
		oq.Start()
		defer oq.Stop()

		done := make(chan struct{})
		oq.Enqueue(func() { panic("boom") })
		oq.Enqueue(func() { close(done) })

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("queue stopped processing after panic")
		}
	})

	t.Run("stop before start", func(t *testing.T) {
		oq := NewOpsQueue(logger.GetLogger(), "test", 2)
		oq.Stop()
		oq.Start()
		oq.Enqueue(func() { t.Fatal("op ran after stop") })

		select {
		case <-oq.Done():
		case <-time.After(time.Second):
			t.Fatal("done not closed")
		}
	})

	t.Run("stop exits processing", func(t *testing.T) {
		oq := NewOpsQueue(logger.GetLogger(), "test", 2)
		oq.Start()
		oq.Stop()
		oq.Stop()

		select {
		case <-oq.Done():
		case <-time.After(time.Second):
			t.Fatal("done not closed")
		}
	})
}
