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

package rtc

import (
	"sync"

	"github.com/bep/debounce"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/frostbyte73/core"
	"github.com/gammazero/workerpool"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/rtc/types"
	"github.com/livekit/meshroom/pkg/signalling"
	"github.com/livekit/meshroom/pkg/utils"
)

const (
	replaceWorkers   = 4
	opsQueueMinSize  = 64
	managerQueueName = "peer-manager"
)

type ManagerParams struct {
	LocalID          signalling.ParticipantID
	RoomID           signalling.RoomID
	Config           config.PeerConfig
	TransportFactory types.PeerTransportFactory
	Signal           types.SignalSender
	// defaults to MeshStrategy
	Strategy RoleStrategy
	Logger   logger.Logger
}

// RemoteStream is the media received from one remote participant. An empty Tracks means the
// stream went away.
type RemoteStream struct {
	ParticipantID signalling.ParticipantID
	Tracks        []types.RemoteTrack
}

type sourceRef struct {
	types.MediaSource
}

// Manager owns the peer sessions of one local participant in one room.
//
// Lock order is replaceLock, lock, then the session lock. Sessions report back through the ops
// queue and never take the manager lock.
type Manager struct {
	params ManagerParams
	logger logger.Logger

	replaceLock sync.Mutex

	lock     sync.RWMutex
	localID  signalling.ParticipantID
	sessions map[signalling.ParticipantID]*PeerSession
	presence *orderedmap.OrderedMap[signalling.ParticipantID, *signalling.Presence]

	onStatusChanged   func(statuses []ConnectionStatus)
	onRemoteStream    func(stream RemoteStream)
	onPresenceChanged func(presence *signalling.Presence)

	source atomic.Pointer[sourceRef]

	opsQueue       *utils.OpsQueue
	pool           *workerpool.WorkerPool
	debounceStatus func(f func())

	closed core.Fuse
}

func NewManager(params ManagerParams) *Manager {
	if params.Strategy == nil {
		params.Strategy = MeshStrategy{}
	}
	if params.Logger == nil {
		params.Logger = logger.GetLogger()
	}
	l := params.Logger.WithValues("participant", params.LocalID, "room", params.RoomID)

	m := &Manager{
		params:   params,
		logger:   l,
		localID:  params.LocalID,
		sessions: make(map[signalling.ParticipantID]*PeerSession),
		presence: orderedmap.NewOrderedMap[signalling.ParticipantID, *signalling.Presence](),
		opsQueue: utils.NewOpsQueue(l, managerQueueName, opsQueueMinSize),
		pool:     workerpool.New(replaceWorkers),
	}
	if d := params.Config.StatusDebounce; d > 0 {
		m.debounceStatus = debounce.New(d)
	} else {
		m.debounceStatus = func(f func()) { f() }
	}
	m.opsQueue.Start()
	return m
}

func (m *Manager) OnStatusChanged(f func(statuses []ConnectionStatus)) {
	m.lock.Lock()
	m.onStatusChanged = f
	m.lock.Unlock()
}

func (m *Manager) OnRemoteStream(f func(stream RemoteStream)) {
	m.lock.Lock()
	m.onRemoteStream = f
	m.lock.Unlock()
}

func (m *Manager) OnPresenceChanged(f func(presence *signalling.Presence)) {
	m.lock.Lock()
	m.onPresenceChanged = f
	m.lock.Unlock()
}

// HandleExistingMembers creates a session for every member present before we joined.
// Errors attaching local media are returned, the failed sessions stay tracked.
func (m *Manager) HandleExistingMembers(members []*signalling.Presence) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.closed.IsBroken() {
		return ErrManagerClosed
	}

	var errs error
	for _, p := range members {
		if p == nil || p.ParticipantID == m.localID {
			continue
		}
		m.setPresenceLocked(p)
		if err := m.addSessionLocked(p.ParticipantID, DiscoveryExistingMember); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (m *Manager) HandlePeerJoined(p *signalling.Presence) error {
	if p == nil {
		return nil
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if m.closed.IsBroken() {
		return ErrManagerClosed
	}
	if p.ParticipantID == m.localID {
		return nil
	}

	m.setPresenceLocked(p)
	return m.addSessionLocked(p.ParticipantID, DiscoveryPeerJoined)
}

func (m *Manager) HandlePeerLeft(participantID signalling.ParticipantID) {
	m.lock.Lock()
	s := m.sessions[participantID]
	delete(m.sessions, participantID)
	m.presence.Delete(participantID)
	hadStream := false
	if s != nil {
		hadStream = len(s.RemoteTracks()) != 0
		s.Close()
	}
	onRemoteStream := m.onRemoteStream
	m.lock.Unlock()

	if s == nil {
		return
	}
	m.logger.Infow("peer left", "remote", participantID)
	if hadStream && onRemoteStream != nil {
		m.opsQueue.Enqueue(func() {
			onRemoteStream(RemoteStream{ParticipantID: participantID})
		})
	}
	m.notifyStatus()
}

// HandleSignal routes a handshake payload to the session of its sender. Payloads from
// participants without a session are dropped.
func (m *Manager) HandleSignal(from signalling.ParticipantID, payload signalling.Payload) {
	m.lock.RLock()
	s := m.sessions[from]
	m.lock.RUnlock()

	if s == nil {
		m.logger.Debugw("dropping signal from unknown participant", "from", from)
		return
	}
	s.HandleSignal(payload)
}

func (m *Manager) HandlePresenceChanged(participantID signalling.ParticipantID, patch signalling.PresencePatch) {
	m.lock.Lock()
	p, ok := m.presence.Get(participantID)
	if !ok {
		m.lock.Unlock()
		return
	}
	p.Apply(patch)
	updated := p.Clone()
	m.lock.Unlock()

	m.enqueuePresence(updated)
}

// ReplaceLocalSource swaps the source used by every session. Sessions started after the swap
// attach the new source, live ones switch their tracks before this returns.
func (m *Manager) ReplaceLocalSource(src types.MediaSource) error {
	m.replaceLock.Lock()
	defer m.replaceLock.Unlock()

	m.lock.Lock()
	if m.closed.IsBroken() {
		m.lock.Unlock()
		return ErrManagerClosed
	}
	m.source.Store(&sourceRef{MediaSource: src})
	sessions := m.sessionsLocked()
	m.lock.Unlock()

	var (
		wg      sync.WaitGroup
		errLock sync.Mutex
		errs    error
	)
	for _, s := range sessions {
		wg.Add(1)
		m.pool.Submit(func() {
			defer wg.Done()
			if err := s.ReplaceSource(src); err != nil {
				errLock.Lock()
				errs = multierr.Append(errs, err)
				errLock.Unlock()
			}
		})
	}
	wg.Wait()
	return errs
}

func (m *Manager) LocalSource() types.MediaSource {
	if ref := m.source.Load(); ref != nil {
		return ref.MediaSource
	}
	return nil
}

// ResetSessions closes every session and forgets the room view, the local source is kept.
// A non empty localID replaces the participant id used for new sessions.
func (m *Manager) ResetSessions(localID signalling.ParticipantID) {
	m.lock.Lock()
	if localID != "" && localID != m.localID {
		m.logger.Infow("local participant id changed", "previous", m.localID, "current", localID)
		m.localID = localID
	}
	sessions := m.sessions
	m.sessions = make(map[signalling.ParticipantID]*PeerSession)
	m.presence = orderedmap.NewOrderedMap[signalling.ParticipantID, *signalling.Presence]()
	for _, s := range sessions {
		s.Close()
	}
	m.lock.Unlock()

	if len(sessions) != 0 {
		m.notifyStatus()
	}
}

// Shutdown closes all sessions and stops the local source. It is safe to call more than once.
func (m *Manager) Shutdown() {
	m.replaceLock.Lock()
	defer m.replaceLock.Unlock()

	m.lock.Lock()
	if m.closed.IsBroken() {
		m.lock.Unlock()
		return
	}
	m.closed.Break()

	sessions := m.sessions
	m.sessions = make(map[signalling.ParticipantID]*PeerSession)
	m.presence = orderedmap.NewOrderedMap[signalling.ParticipantID, *signalling.Presence]()
	for _, s := range sessions {
		s.Close()
	}
	ref := m.source.Swap(nil)
	m.lock.Unlock()

	if ref != nil && ref.MediaSource != nil {
		ref.Stop()
	}
	m.pool.Stop()
	m.opsQueue.Stop()
	m.logger.Debugw("peer manager shut down", "sessions", len(sessions))
}

func (m *Manager) LocalID() signalling.ParticipantID {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.localID
}

func (m *Manager) IsClosed() bool {
	return m.closed.IsBroken()
}

func (m *Manager) Session(participantID signalling.ParticipantID) *PeerSession {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.sessions[participantID]
}

func (m *Manager) ConnectionStatus(participantID signalling.ParticipantID) (ConnectionStatus, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	s, ok := m.sessions[participantID]
	if !ok {
		return ConnectionStatus{}, false
	}
	return s.Status(), true
}

// ConnectionStatuses lists the status of every session in join order.
func (m *Manager) ConnectionStatuses() []ConnectionStatus {
	m.lock.RLock()
	defer m.lock.RUnlock()

	statuses := make([]ConnectionStatus, 0, len(m.sessions))
	for el := m.presence.Front(); el != nil; el = el.Next() {
		if s, ok := m.sessions[el.Key]; ok {
			statuses = append(statuses, s.Status())
		}
	}
	return statuses
}

func (m *Manager) RemoteStreams() map[signalling.ParticipantID]RemoteStream {
	m.lock.RLock()
	defer m.lock.RUnlock()

	streams := make(map[signalling.ParticipantID]RemoteStream)
	for id, s := range m.sessions {
		if tracks := s.RemoteTracks(); len(tracks) != 0 {
			streams[id] = RemoteStream{ParticipantID: id, Tracks: tracks}
		}
	}
	return streams
}

// Presence returns a copy of the remote presence records in join order.
func (m *Manager) Presence() []*signalling.Presence {
	m.lock.RLock()
	defer m.lock.RUnlock()

	presences := make([]*signalling.Presence, 0, m.presence.Len())
	for el := m.presence.Front(); el != nil; el = el.Next() {
		presences = append(presences, el.Value.Clone())
	}
	return presences
}

// ------------------------------------------------------------

func (m *Manager) addSessionLocked(participantID signalling.ParticipantID, discovery Discovery) error {
	if _, ok := m.sessions[participantID]; ok {
		m.logger.Debugw("session already exists", "remote", participantID, "discovery", discovery)
		return nil
	}

	role := m.params.Strategy.RoleFor(m.localID, participantID, discovery)
	s := NewPeerSession(PeerSessionParams{
		LocalID:          m.localID,
		RemoteID:         participantID,
		Role:             role,
		Config:           m.params.Config,
		TransportFactory: m.params.TransportFactory,
		Signal:           m.params.Signal,
		LocalSource:      m.LocalSource,
		Logger:           m.logger,
		OnStatusChanged:  m.onSessionStatusChanged,
		OnTrack:          m.onSessionTrack,
	})
	m.sessions[participantID] = s
	m.logger.Infow("adding peer session", "remote", participantID, "role", role, "discovery", discovery)
	return s.Start()
}

func (m *Manager) setPresenceLocked(p *signalling.Presence) {
	m.presence.Set(p.ParticipantID, p.Clone())
	m.enqueuePresence(p.Clone())
}

func (m *Manager) sessionsLocked() []*PeerSession {
	sessions := make([]*PeerSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

func (m *Manager) isCurrent(s *PeerSession) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.sessions[s.ParticipantID()] == s
}

func (m *Manager) onSessionStatusChanged(s *PeerSession) {
	m.opsQueue.Enqueue(func() {
		if m.isCurrent(s) {
			m.notifyStatus()
		}
	})
}

func (m *Manager) onSessionTrack(s *PeerSession, _ types.RemoteTrack) {
	m.opsQueue.Enqueue(func() {
		if !m.isCurrent(s) {
			return
		}
		m.lock.RLock()
		onRemoteStream := m.onRemoteStream
		m.lock.RUnlock()
		if onRemoteStream != nil {
			onRemoteStream(RemoteStream{ParticipantID: s.ParticipantID(), Tracks: s.RemoteTracks()})
		}
	})
}

func (m *Manager) enqueuePresence(p *signalling.Presence) {
	m.opsQueue.Enqueue(func() {
		m.lock.RLock()
		onPresenceChanged := m.onPresenceChanged
		m.lock.RUnlock()
		if onPresenceChanged != nil {
			onPresenceChanged(p)
		}
	})
}

func (m *Manager) notifyStatus() {
	m.debounceStatus(func() {
		m.lock.RLock()
		onStatusChanged := m.onStatusChanged
		m.lock.RUnlock()
		if onStatusChanged != nil {
			onStatusChanged(m.ConnectionStatuses())
		}
	})
}
