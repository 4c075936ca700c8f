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
	"time"

	"github.com/frostbyte73/core"
	"github.com/pion/webrtc/v3"
	"github.com/pkg/errors"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/rtc/types"
	"github.com/livekit/meshroom/pkg/signalling"
	"github.com/livekit/meshroom/pkg/telemetry/prometheus"
	"github.com/livekit/meshroom/pkg/utils"
)

type PeerSessionParams struct {
	LocalID          signalling.ParticipantID
	RemoteID         signalling.ParticipantID
	Role             Role
	Config           config.PeerConfig
	TransportFactory types.PeerTransportFactory
	Signal           types.SignalSender
	// LocalSource returns the source to attach when an attempt starts, nil sends no media
	LocalSource func() types.MediaSource
	Logger      logger.Logger

	// callbacks are invoked with the session lock held and must not call back into the session
	OnStatusChanged func(s *PeerSession)
	OnTrack         func(s *PeerSession, track types.RemoteTrack)
}

// PeerSession maintains the media connection to one remote participant. Every connection attempt
// uses a fresh transport. Callbacks from the transport of an older attempt are recognized by
// their generation and ignored.
type PeerSession struct {
	params PeerSessionParams
	logger logger.Logger

	mu    sync.Mutex
	state SessionState
	gen   uint64
	// token of the current attempt, chosen by the initiator
	token string
	// latest token received from the initiator
	lastSeen string

	transport         types.PeerTransport
	remoteSet         bool
	pendingToken      string
	pendingCandidates []webrtc.ICECandidateInit

	attempts        int
	terminal        bool
	quality         Quality
	lastErr         *SessionError
	iceDisconnected bool
	statsBaseline   types.TransportStats
	tracks          []types.RemoteTrack
	attemptStart    time.Time

	negotiationTimer *time.Timer
	retryTimer       *time.Timer

	// transports discarded while holding the lock, closed on unlock
	toClose []types.PeerTransport

	closed core.Fuse
}

func NewPeerSession(params PeerSessionParams) *PeerSession {
	if params.LocalSource == nil {
		params.LocalSource = func() types.MediaSource { return nil }
	}
	if params.Logger == nil {
		params.Logger = logger.GetLogger()
	}
	return &PeerSession{
		params:  params,
		logger:  params.Logger.WithValues("remote", params.RemoteID, "role", params.Role),
		state:   SessionStateCreated,
		quality: QualityUnknown,
	}
}

func (s *PeerSession) ParticipantID() signalling.ParticipantID {
	return s.params.RemoteID
}

func (s *PeerSession) Role() Role {
	return s.params.Role
}

// Start begins the first connection attempt. Errors acquiring local media are returned,
// other failures are handled by the session itself.
func (s *PeerSession) Start() error {
	s.lock()
	defer s.unlock()

	if s.closed.IsBroken() {
		return ErrSessionClosed
	}
	if s.transport != nil || s.gen != 0 {
		return nil
	}

	prometheus.PeerSessionStarted()
	s.logger.Debugw("starting peer session")
	if se := s.startAttemptLocked(false); se != nil && se.Kind == ErrorKindResource {
		return se
	}
	return nil
}

// HandleSignal applies a handshake payload received from the remote participant.
func (s *PeerSession) HandleSignal(payload signalling.Payload) {
	s.lock()
	defer s.unlock()

	if s.closed.IsBroken() {
		return
	}

	m, err := ParseHandshake(payload)
	if err != nil {
		s.logger.Warnw("invalid handshake payload", err)
		s.failLocked(err)
		return
	}

	switch m.Type {
	case HandshakeOffer:
		s.handleOfferLocked(m)
	case HandshakeAnswer:
		s.handleAnswerLocked(m)
	case HandshakeCandidate:
		s.handleCandidateLocked(m)
	case HandshakeRestart:
		s.handleRestartLocked(m)
	}
}

// ReplaceSource swaps the local tracks on the live transport. When the transport cannot take
// the new tracks without renegotiation, a fresh attempt is started instead, which is not
// counted as a failure.
func (s *PeerSession) ReplaceSource(src types.MediaSource) error {
	s.lock()
	defer s.unlock()

	if s.closed.IsBroken() || s.transport == nil {
		// a pending attempt picks up the current source when it starts
		return nil
	}

	err := s.attachSourceLocked(s.transport, src)
	if err == nil {
		return nil
	}
	if ClassifyError(err) == ErrorKindResource {
		return s.failLocked(err)
	}

	s.logger.Infow("could not replace tracks in place, starting a fresh attempt", "error", err)
	s.startAttemptLocked(s.params.Role == RoleResponder)
	return nil
}

// Close tears the session down. A closed session never transitions again.
func (s *PeerSession) Close() {
	s.lock()
	defer s.unlock()

	if s.closed.IsBroken() {
		return
	}
	s.closed.Break()

	s.stopTimersLocked()
	s.discardTransportLocked()
	s.gen++
	s.tracks = nil
	s.setStateLocked(SessionStateClosed)
	prometheus.PeerSessionClosed()
	s.logger.Debugw("peer session closed")
}

func (s *PeerSession) IsClosed() bool {
	return s.closed.IsBroken()
}

func (s *PeerSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *PeerSession) Status() ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := ConnectionStatus{
		ParticipantID:     s.params.RemoteID,
		Role:              s.params.Role,
		State:             s.state,
		Connected:         s.state == SessionStateConnected,
		Quality:           s.quality,
		ReconnectAttempts: s.attempts,
		Terminal:          s.terminal,
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
		status.ErrorKind = s.lastErr.Kind
	}
	return status
}

func (s *PeerSession) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastErr == nil {
		return nil
	}
	return s.lastErr
}

func (s *PeerSession) RemoteTracks() []types.RemoteTrack {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tracks) == 0 {
		return nil
	}
	return append([]types.RemoteTrack(nil), s.tracks...)
}

// ------------------------------------------------------------

func (s *PeerSession) lock() {
	s.mu.Lock()
}

func (s *PeerSession) unlock() {
	toClose := s.toClose
	s.toClose = nil
	s.mu.Unlock()

	for _, t := range toClose {
		go func(t types.PeerTransport) {
			if err := t.Close(); err != nil {
				s.logger.Debugw("error closing transport", "error", err)
			}
		}(t)
	}
}

// startAttemptLocked discards the current transport and starts over on a new one.
// A responder passes restart to ask the initiator for a new offer.
func (s *PeerSession) startAttemptLocked(restart bool) *SessionError {
	s.stopTimersLocked()
	s.discardTransportLocked()

	s.gen++
	gen := s.gen
	s.remoteSet = false
	s.iceDisconnected = false
	s.statsBaseline = types.TransportStats{}
	s.tracks = nil
	s.attemptStart = time.Now()
	if s.params.Role == RoleInitiator {
		s.token = utils.NewGuid(utils.SessionPrefix)
		s.pendingToken = ""
		s.pendingCandidates = nil
	} else {
		s.token = ""
	}

	t, err := s.params.TransportFactory.NewTransport(s.params.RemoteID)
	if err != nil {
		return s.failLocked(err)
	}
	s.transport = t
	t.OnICECandidate(func(c *webrtc.ICECandidateInit) {
		s.onLocalCandidate(gen, c)
	})
	t.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		s.onICEConnectionStateChange(gen, state)
	})
	t.OnTrack(func(track types.RemoteTrack) {
		s.onRemoteTrack(gen, track)
	})

	if err := s.attachSourceLocked(t, s.params.LocalSource()); err != nil {
		return s.failLocked(err)
	}

	s.setStateLocked(SessionStateCreated)
	s.startNegotiationTimerLocked(gen)

	switch s.params.Role {
	case RoleInitiator:
		offer, err := t.CreateOffer()
		if err != nil {
			return s.failLocked(err)
		}
		s.setStateLocked(SessionStateNegotiating)
		if err := s.sendLocked(newDescriptionMessage(s.token, offer)); err != nil {
			return s.failLocked(err)
		}

	case RoleResponder:
		if restart {
			if err := s.sendLocked(&HandshakeMessage{Type: HandshakeRestart, Session: s.lastSeen}); err != nil {
				return s.failLocked(err)
			}
		}
	}
	return nil
}

func (s *PeerSession) attachSourceLocked(t types.PeerTransport, src types.MediaSource) error {
	var tracks []webrtc.TrackLocal
	if src != nil {
		var err error
		if tracks, err = src.Tracks(); err != nil {
			return err
		}
	}
	if err := t.SetTracks(tracks); err != nil {
		return errors.Wrapf(ErrTrackReplaceFailed, "%v", err)
	}
	return nil
}

func (s *PeerSession) handleOfferLocked(m *HandshakeMessage) {
	if s.params.Role != RoleResponder {
		s.failLocked(errors.Wrap(ErrUnexpectedHandshake, "offer received by initiator"))
		return
	}
	if s.terminal {
		s.logger.Debugw("dropping offer, session has given up")
		return
	}

	s.lastSeen = m.Session
	if m.Session == s.token && s.remoteSet {
		s.logger.Debugw("ignoring duplicate offer", "session", m.Session)
		return
	}
	if s.transport == nil || (s.token != "" && s.token != m.Session) {
		s.logger.Debugw("initiator started a new attempt", "session", m.Session)
		if se := s.startAttemptLocked(false); se != nil {
			return
		}
	}

	s.token = m.Session
	s.setStateLocked(SessionStateNegotiating)
	answer, err := s.transport.HandleOffer(m.SessionDescription())
	if err != nil {
		s.failLocked(err)
		return
	}
	s.remoteSet = true
	if err := s.sendLocked(newDescriptionMessage(s.token, answer)); err != nil {
		s.failLocked(err)
		return
	}
	s.flushCandidatesLocked()
}

func (s *PeerSession) handleAnswerLocked(m *HandshakeMessage) {
	if s.params.Role != RoleInitiator {
		s.failLocked(errors.Wrap(ErrUnexpectedHandshake, "answer received by responder"))
		return
	}
	if s.transport == nil || m.Session != s.token {
		s.logger.Debugw("dropping stale answer", "session", m.Session)
		return
	}
	if s.remoteSet {
		s.logger.Debugw("ignoring duplicate answer", "session", m.Session)
		return
	}

	if err := s.transport.HandleAnswer(m.SessionDescription()); err != nil {
		s.failLocked(err)
		return
	}
	s.remoteSet = true
	s.flushCandidatesLocked()
}

func (s *PeerSession) handleCandidateLocked(m *HandshakeMessage) {
	if s.transport == nil {
		return
	}
	if m.Session != s.token {
		if s.params.Role == RoleInitiator {
			s.logger.Debugw("dropping stale candidate", "session", m.Session)
			return
		}
		// the offer for this attempt has not been applied yet
		s.bufferCandidateLocked(m.Session, *m.Candidate)
		return
	}
	if !s.remoteSet {
		s.bufferCandidateLocked(m.Session, *m.Candidate)
		return
	}
	s.addCandidateLocked(*m.Candidate)
}

func (s *PeerSession) handleRestartLocked(m *HandshakeMessage) {
	if s.params.Role != RoleInitiator {
		s.failLocked(errors.Wrap(ErrUnexpectedHandshake, "restart received by responder"))
		return
	}
	if s.terminal {
		s.logger.Debugw("dropping restart, session has given up")
		return
	}
	inBackoff := s.state == SessionStateFailed
	if m.Session != "" && m.Session != s.token && !inBackoff {
		s.logger.Debugw("dropping stale restart", "session", m.Session)
		return
	}

	s.logger.Infow("remote requested a new attempt", "session", m.Session)
	s.startAttemptLocked(false)
}

func (s *PeerSession) bufferCandidateLocked(token string, c webrtc.ICECandidateInit) {
	if s.pendingToken != token {
		s.pendingToken = token
		s.pendingCandidates = nil
	}
	s.pendingCandidates = append(s.pendingCandidates, c)
}

func (s *PeerSession) flushCandidatesLocked() {
	pending := s.pendingCandidates
	matches := s.pendingToken == s.token
	s.pendingToken = ""
	s.pendingCandidates = nil
	if !matches {
		return
	}
	for _, c := range pending {
		s.addCandidateLocked(c)
	}
}

func (s *PeerSession) addCandidateLocked(c webrtc.ICECandidateInit) {
	if err := s.transport.AddICECandidate(c); err != nil {
		s.logger.Warnw("could not add remote candidate", err, "candidate", c.Candidate)
	}
}

func (s *PeerSession) sendLocked(m *HandshakeMessage) error {
	payload, err := m.Marshal()
	if err != nil {
		return err
	}
	return s.params.Signal.SendSignal(s.params.RemoteID, payload)
}

func (s *PeerSession) onLocalCandidate(gen uint64, c *webrtc.ICECandidateInit) {
	if c == nil {
		return
	}

	s.lock()
	defer s.unlock()
	if gen != s.gen || s.closed.IsBroken() {
		return
	}
	if err := s.sendLocked(&HandshakeMessage{Type: HandshakeCandidate, Session: s.token, Candidate: c}); err != nil {
		s.logger.Warnw("could not send candidate", err)
	}
}

func (s *PeerSession) onICEConnectionStateChange(gen uint64, state webrtc.ICEConnectionState) {
	s.lock()
	defer s.unlock()
	if gen != s.gen || s.closed.IsBroken() {
		return
	}

	s.logger.Debugw("ice connection state change", "state", state.String())
	switch state {
	case webrtc.ICEConnectionStateConnected, webrtc.ICEConnectionStateCompleted:
		s.iceDisconnected = false
		if s.state == SessionStateConnected {
			s.setQualityLocked(QualityGood)
			return
		}
		s.stopNegotiationTimerLocked()
		s.attempts = 0
		s.lastErr = nil
		prometheus.PeerSessionConnected(time.Since(s.attemptStart))
		s.logger.Infow("peer connected", "duration", time.Since(s.attemptStart))
		s.setQualityLocked(QualityGood)
		s.setStateLocked(SessionStateConnected)
		if interval := s.params.Config.QualitySampleInterval; interval > 0 {
			go s.qualityWorker(gen, s.transport, interval)
		}

	case webrtc.ICEConnectionStateDisconnected:
		s.iceDisconnected = true
		if s.state == SessionStateConnected {
			s.setQualityLocked(QualityPoor)
		}

	case webrtc.ICEConnectionStateFailed:
		s.failLocked(ErrICEFailed)

	case webrtc.ICEConnectionStateClosed:
		s.failLocked(ErrTransportClosed)
	}
}

func (s *PeerSession) onRemoteTrack(gen uint64, track types.RemoteTrack) {
	s.lock()
	defer s.unlock()
	if gen != s.gen || s.closed.IsBroken() {
		return
	}

	s.logger.Debugw("remote track added", "trackID", track.ID(), "kind", track.Kind().String())
	s.tracks = append(s.tracks, track)
	if s.params.OnTrack != nil {
		s.params.OnTrack(s, track)
	}
}

func (s *PeerSession) qualityWorker(gen uint64, t types.PeerTransport, interval time.Duration) {
	tk := time.NewTicker(interval)
	defer tk.Stop()

	for {
		select {
		case <-s.closed.Watch():
			return

		case <-tk.C:
			stats, err := t.GetStats()
			if err != nil {
				if !s.isCurrent(gen) {
					return
				}
				s.logger.Debugw("could not get transport stats", "error", err)
				continue
			}
			if !s.updateQuality(gen, stats) {
				return
			}
		}
	}
}

func (s *PeerSession) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen && !s.closed.IsBroken()
}

// updateQuality rates the packet loss since the previous sample. It returns false once the
// attempt the sample belongs to is over.
func (s *PeerSession) updateQuality(gen uint64, stats types.TransportStats) bool {
	s.lock()
	defer s.unlock()
	if gen != s.gen || s.closed.IsBroken() {
		return false
	}

	var received, lost uint64
	if stats.PacketsReceived > s.statsBaseline.PacketsReceived {
		received = stats.PacketsReceived - s.statsBaseline.PacketsReceived
	}
	if stats.PacketsLost > s.statsBaseline.PacketsLost {
		lost = stats.PacketsLost - s.statsBaseline.PacketsLost
	}
	s.statsBaseline = stats

	if s.state != SessionStateConnected || s.iceDisconnected || received+lost == 0 {
		return true
	}
	if float64(lost)/float64(received+lost) > s.params.Config.PoorQualityLossRatio {
		s.setQualityLocked(QualityPoor)
	} else {
		s.setQualityLocked(QualityGood)
	}
	return true
}

// failLocked records a failure of the current attempt and either schedules the next attempt
// or gives up.
func (s *PeerSession) failLocked(err error) *SessionError {
	se := classify(err)
	if s.closed.IsBroken() || s.terminal {
		return se
	}

	s.stopTimersLocked()
	s.discardTransportLocked()
	s.gen++
	s.tracks = nil
	s.lastErr = se

	retry := se.Kind.Retryable() && s.attempts < s.params.Config.MaxReconnectAttempts
	prometheus.PeerSessionFailed(se.Kind.String(), !retry)
	if retry {
		s.attempts++
		delay := s.params.Config.ReconnectBaseDelay * time.Duration(s.attempts)
		s.logger.Infow("peer session failed, retrying",
			"error", se,
			"attempt", s.attempts,
			"delay", delay,
		)
		gen := s.gen
		s.retryTimer = time.AfterFunc(delay, func() {
			s.retry(gen)
		})
		s.setQualityLocked(QualityPoor)
	} else {
		s.terminal = true
		s.logger.Warnw("peer session failed", se, "attempts", s.attempts)
		s.setQualityLocked(QualityError)
	}
	s.setStateLocked(SessionStateFailed)
	return se
}

func (s *PeerSession) retry(gen uint64) {
	s.lock()
	defer s.unlock()
	if gen != s.gen || s.closed.IsBroken() || s.terminal {
		return
	}

	prometheus.PeerSessionRetried()
	s.startAttemptLocked(s.params.Role == RoleResponder)
}

func (s *PeerSession) startNegotiationTimerLocked(gen uint64) {
	timeout := s.params.Config.NegotiationTimeout
	if timeout <= 0 {
		return
	}
	s.negotiationTimer = time.AfterFunc(timeout, func() {
		s.lock()
		defer s.unlock()
		if gen != s.gen || s.closed.IsBroken() || s.state == SessionStateConnected {
			return
		}
		s.failLocked(ErrNegotiationTimeout)
	})
}

func (s *PeerSession) stopNegotiationTimerLocked() {
	if s.negotiationTimer != nil {
		s.negotiationTimer.Stop()
		s.negotiationTimer = nil
	}
}

func (s *PeerSession) stopTimersLocked() {
	s.stopNegotiationTimerLocked()
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
}

func (s *PeerSession) discardTransportLocked() {
	if s.transport != nil {
		s.toClose = append(s.toClose, s.transport)
		s.transport = nil
	}
	s.remoteSet = false
}

func (s *PeerSession) setQualityLocked(q Quality) {
	if s.quality == q {
		return
	}
	s.quality = q
	prometheus.PeerQualityChanged(string(q))
	s.notifyLocked()
}

func (s *PeerSession) setStateLocked(state SessionState) {
	if s.state == state && state != SessionStateFailed {
		return
	}
	s.state = state
	s.notifyLocked()
}

func (s *PeerSession) notifyLocked() {
	if s.params.OnStatusChanged != nil {
		s.params.OnStatusChanged(s)
	}
}
