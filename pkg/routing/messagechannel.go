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

package routing

import (
	"sync"

	"github.com/frostbyte73/core"
	"github.com/gammazero/deque"

	"github.com/livekit/meshroom/pkg/signalling"
)

// MessageChannel is a FIFO of responses for one connection. Writers never block,
// a channel holding more than maxSize undelivered messages closes itself.
type MessageChannel struct {
	lock    sync.Mutex
	queue   deque.Deque[*signalling.Response]
	maxSize int
	notify  chan struct{}
	closed  core.Fuse
	onClose func()
	// set when the channel closed itself because the consumer fell behind
	overflowed bool
}

// NewMessageChannel creates a channel, maxSize <= 0 means unbounded.
func NewMessageChannel(maxSize int) *MessageChannel {
	return &MessageChannel{
		maxSize: maxSize,
		notify:  make(chan struct{}, 1),
	}
}

func (m *MessageChannel) OnClose(f func()) {
	m.lock.Lock()
	m.onClose = f
	m.lock.Unlock()
}

func (m *MessageChannel) WriteMessage(msg *signalling.Response) error {
	m.lock.Lock()
	if m.closed.IsBroken() {
		m.lock.Unlock()
		return ErrChannelClosed
	}
	if m.maxSize > 0 && m.queue.Len() >= m.maxSize {
		m.overflowed = true
		m.lock.Unlock()
		m.Close()
		return ErrChannelFull
	}
	m.queue.PushBack(msg)
	m.lock.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return nil
}

// Notify fires whenever messages may be waiting in Drain.
func (m *MessageChannel) Notify() <-chan struct{} {
	return m.notify
}

// Done is closed once the channel is closed. Messages queued before Close remain drainable.
func (m *MessageChannel) Done() <-chan struct{} {
	return m.closed.Watch()
}

// Drain removes and returns every queued message in order.
func (m *MessageChannel) Drain() []*signalling.Response {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.queue.Len() == 0 {
		return nil
	}
	msgs := make([]*signalling.Response, 0, m.queue.Len())
	for m.queue.Len() > 0 {
		msgs = append(msgs, m.queue.PopFront())
	}
	return msgs
}

func (m *MessageChannel) Len() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.queue.Len()
}

// Overflowed reports whether the channel was closed for falling more than maxSize behind.
func (m *MessageChannel) Overflowed() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.overflowed
}

func (m *MessageChannel) IsClosed() bool {
	return m.closed.IsBroken()
}

func (m *MessageChannel) Close() {
	m.lock.Lock()
	if m.closed.IsBroken() {
		m.lock.Unlock()
		return
	}
	m.closed.Break()
	onClose := m.onClose
	m.lock.Unlock()

	if onClose != nil {
		onClose()
	}
}
