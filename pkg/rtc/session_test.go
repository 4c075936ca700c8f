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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/rtc/types"
	"github.com/livekit/meshroom/pkg/signalling"
)

const remoteID = signalling.ParticipantID("P-remote")

func newTestSession(t *testing.T, role Role, mutate ...func(p *PeerSessionParams)) (*PeerSession, *fakeNetwork) {
	n := newFakeNetwork()
	params := PeerSessionParams{
		LocalID:          "P-local",
		RemoteID:         remoteID,
		Role:             role,
		Config:           testPeerConfig(),
		TransportFactory: n.factory,
		Signal:           n.signal,
	}
	for _, m := range mutate {
		m(&params)
	}
	s := NewPeerSession(params)
	t.Cleanup(s.Close)
	return s, n
}

func withConfig(f func(c *config.PeerConfig)) func(p *PeerSessionParams) {
	return func(p *PeerSessionParams) {
		f(&p.Config)
	}
}

func connectInitiator(t *testing.T, s *PeerSession, n *fakeNetwork) {
	require.Eventually(t, func() bool {
		return s.State() == SessionStateNegotiating
	}, waitFor, tick)
	_, offer := n.lastSent(t)
	require.Equal(t, HandshakeOffer, offer.Type)
	s.HandleSignal(handshakePayload(t, answerFor(offer.Session)))
	setICEState(t, n.latest(t, remoteID), webrtc.ICEConnectionStateConnected)
	require.Equal(t, SessionStateConnected, s.State())
}

func TestInitiatorHandshake(t *testing.T) {
	src := newFakeSource(t, "MS-camera", types.SourceKindCamera)
	s, n := newTestSession(t, RoleInitiator, func(p *PeerSessionParams) {
		p.LocalSource = func() types.MediaSource { return src }
	})

	require.NoError(t, s.Start())
	require.Equal(t, SessionStateNegotiating, s.State())

	tr := n.latest(t, remoteID)
	require.Equal(t, 1, tr.SetTracksCallCount())
	requireTracksOf(t, src, tr.SetTracksArgsForCall(0))

	target, offer := n.sent(t, 0)
	require.Equal(t, remoteID, target)
	require.Equal(t, HandshakeOffer, offer.Type)
	require.NotEmpty(t, offer.Session)

	// candidates wait for the answer
	s.HandleSignal(handshakePayload(t, candidateFor(offer.Session)))
	require.Equal(t, 0, tr.AddICECandidateCallCount())

	s.HandleSignal(handshakePayload(t, answerFor(offer.Session)))
	require.Equal(t, 1, tr.HandleAnswerCallCount())
	require.Equal(t, 1, tr.AddICECandidateCallCount())
	require.Equal(t, testCandidate, tr.AddICECandidateArgsForCall(0).Candidate)

	// duplicate answers and stale candidates are ignored
	s.HandleSignal(handshakePayload(t, answerFor(offer.Session)))
	require.Equal(t, 1, tr.HandleAnswerCallCount())
	s.HandleSignal(handshakePayload(t, candidateFor("S-stale")))
	require.Equal(t, 1, tr.AddICECandidateCallCount())

	setICEState(t, tr, webrtc.ICEConnectionStateConnected)
	status := s.Status()
	require.True(t, status.Connected)
	require.Equal(t, QualityGood, status.Quality)
	require.Zero(t, status.ReconnectAttempts)
	require.Empty(t, status.LastError)
}

func TestLocalCandidatesAreSent(t *testing.T) {
	s, n := newTestSession(t, RoleInitiator)
	require.NoError(t, s.Start())
	_, offer := n.lastSent(t)

	tr := n.latest(t, remoteID)
	require.Equal(t, 1, tr.OnICECandidateCallCount())
	tr.OnICECandidateArgsForCall(0)(&webrtc.ICECandidateInit{Candidate: testCandidate})
	tr.OnICECandidateArgsForCall(0)(nil)

	require.Equal(t, 2, n.signal.SendSignalCallCount())
	_, m := n.lastSent(t)
	require.Equal(t, HandshakeCandidate, m.Type)
	require.Equal(t, offer.Session, m.Session)
	require.Equal(t, testCandidate, m.Candidate.Candidate)
}

func TestResponderHandshake(t *testing.T) {
	s, n := newTestSession(t, RoleResponder)

	require.NoError(t, s.Start())
	require.Equal(t, SessionStateCreated, s.State())
	require.Zero(t, n.signal.SendSignalCallCount())

	s.HandleSignal(handshakePayload(t, offerFor("S-first")))
	require.Equal(t, SessionStateNegotiating, s.State())
	first := n.latest(t, remoteID)
	require.Equal(t, 1, first.HandleOfferCallCount())

	_, answer := n.lastSent(t)
	require.Equal(t, HandshakeAnswer, answer.Type)
	require.Equal(t, "S-first", answer.Session)

	s.HandleSignal(handshakePayload(t, candidateFor("S-first")))
	require.Equal(t, 1, first.AddICECandidateCallCount())

	// the initiator started over, a fresh transport answers
	s.HandleSignal(handshakePayload(t, offerFor("S-second")))
	require.Equal(t, 2, n.numTransports(remoteID))
	second := n.latest(t, remoteID)
	require.Equal(t, 1, second.HandleOfferCallCount())
	require.Eventually(t, func() bool {
		return first.CloseCallCount() == 1
	}, waitFor, tick)

	_, answer = n.lastSent(t)
	require.Equal(t, "S-second", answer.Session)
	require.Zero(t, s.Status().ReconnectAttempts)
}

func TestUnexpectedHandshakeIsTerminal(t *testing.T) {
	s, _ := newTestSession(t, RoleInitiator)
	require.NoError(t, s.Start())

	s.HandleSignal(handshakePayload(t, offerFor("S-other")))

	status := s.Status()
	require.Equal(t, SessionStateFailed, status.State)
	require.True(t, status.Terminal)
	require.Equal(t, ErrorKindNegotiation, status.ErrorKind)
	require.Equal(t, QualityError, status.Quality)
	require.True(t, errors.Is(s.LastError(), ErrUnexpectedHandshake))
}

func TestMalformedPayloadIsTerminal(t *testing.T) {
	s, n := newTestSession(t, RoleResponder)
	require.NoError(t, s.Start())

	s.HandleSignal(signalling.Payload(`{"type":"offer","session":"S-1","sdp":"garbage"}`))

	status := s.Status()
	require.True(t, status.Terminal)
	require.Equal(t, ErrorKindNegotiation, status.ErrorKind)
	require.True(t, errors.Is(s.LastError(), ErrMalformedHandshake))

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, n.numTransports(remoteID))
}

func TestRetryIsBounded(t *testing.T) {
	s, n := newTestSession(t, RoleInitiator)
	require.NoError(t, s.Start())

	maxAttempts := testPeerConfig().MaxReconnectAttempts
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		setICEState(t, n.latest(t, remoteID), webrtc.ICEConnectionStateFailed)
		status := s.Status()
		require.Equal(t, attempt, status.ReconnectAttempts)
		require.False(t, status.Terminal)
		require.Equal(t, ErrorKindTransient, status.ErrorKind)

		require.Eventually(t, func() bool {
			return n.numTransports(remoteID) == attempt+1
		}, waitFor, tick)
		require.Equal(t, SessionStateNegotiating, s.State())
	}

	setICEState(t, n.latest(t, remoteID), webrtc.ICEConnectionStateFailed)
	status := s.Status()
	require.True(t, status.Terminal)
	require.Equal(t, SessionStateFailed, status.State)
	require.Equal(t, maxAttempts, status.ReconnectAttempts)
	require.Equal(t, QualityError, status.Quality)
	require.True(t, errors.Is(s.LastError(), ErrICEFailed))

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, maxAttempts+1, n.numTransports(remoteID))

	s.Close()
	require.Equal(t, SessionStateClosed, s.State())
}

func TestConnectResetsAttempts(t *testing.T) {
	s, n := newTestSession(t, RoleInitiator)
	require.NoError(t, s.Start())

	setICEState(t, n.latest(t, remoteID), webrtc.ICEConnectionStateFailed)
	require.Equal(t, 1, s.Status().ReconnectAttempts)
	require.Eventually(t, func() bool {
		return n.numTransports(remoteID) == 2
	}, waitFor, tick)

	connectInitiator(t, s, n)
	require.Zero(t, s.Status().ReconnectAttempts)
}

func TestCloseCancelsRetry(t *testing.T) {
	s, n := newTestSession(t, RoleInitiator, withConfig(func(c *config.PeerConfig) {
		c.ReconnectBaseDelay = 20 * time.Millisecond
	}))
	require.NoError(t, s.Start())

	setICEState(t, n.latest(t, remoteID), webrtc.ICEConnectionStateFailed)
	s.Close()
	s.Close()

	time.Sleep(60 * time.Millisecond)
	require.Equal(t, 1, n.numTransports(remoteID))
	require.Equal(t, SessionStateClosed, s.State())

	// closed sessions ignore everything
	s.HandleSignal(handshakePayload(t, offerFor("S-late")))
	require.NoError(t, s.ReplaceSource(nil))
	require.Equal(t, SessionStateClosed, s.State())
	require.ErrorIs(t, s.Start(), ErrSessionClosed)
}

func TestStaleTransportCallbacksAreIgnored(t *testing.T) {
	s, n := newTestSession(t, RoleInitiator)
	require.NoError(t, s.Start())

	first := n.latest(t, remoteID)
	setICEState(t, first, webrtc.ICEConnectionStateFailed)
	require.Eventually(t, func() bool {
		return n.numTransports(remoteID) == 2
	}, waitFor, tick)

	setICEState(t, first, webrtc.ICEConnectionStateConnected)
	require.Equal(t, SessionStateNegotiating, s.State())

	// the transport closing as part of the retry is not a failure
	setICEState(t, first, webrtc.ICEConnectionStateClosed)
	require.Equal(t, 1, s.Status().ReconnectAttempts)
}

func TestUnexpectedCloseIsRetried(t *testing.T) {
	s, n := newTestSession(t, RoleInitiator)
	require.NoError(t, s.Start())
	connectInitiator(t, s, n)

	setICEState(t, n.latest(t, remoteID), webrtc.ICEConnectionStateClosed)
	status := s.Status()
	require.Equal(t, SessionStateFailed, status.State)
	require.Equal(t, 1, status.ReconnectAttempts)
	require.True(t, errors.Is(s.LastError(), ErrTransportClosed))
}

func TestDisconnectedIsPoor(t *testing.T) {
	s, n := newTestSession(t, RoleInitiator)
	require.NoError(t, s.Start())
	connectInitiator(t, s, n)

	tr := n.latest(t, remoteID)
	setICEState(t, tr, webrtc.ICEConnectionStateDisconnected)
	require.Equal(t, QualityPoor, s.Status().Quality)
	require.True(t, s.Status().Connected)

	setICEState(t, tr, webrtc.ICEConnectionStateConnected)
	require.Equal(t, QualityGood, s.Status().Quality)
}

func TestNegotiationTimeout(t *testing.T) {
	s, n := newTestSession(t, RoleInitiator, withConfig(func(c *config.PeerConfig) {
		c.NegotiationTimeout = 20 * time.Millisecond
		c.MaxReconnectAttempts = 1
	}))
	require.NoError(t, s.Start())

	require.Eventually(t, func() bool {
		return s.Status().Terminal
	}, waitFor, tick)
	status := s.Status()
	require.Equal(t, ErrorKindTransient, status.ErrorKind)
	require.True(t, errors.Is(s.LastError(), ErrNegotiationTimeout))
	require.Equal(t, 2, n.numTransports(remoteID))
}

func TestNegotiationTimerStopsOnConnect(t *testing.T) {
	s, n := newTestSession(t, RoleInitiator, withConfig(func(c *config.PeerConfig) {
		c.NegotiationTimeout = 20 * time.Millisecond
	}))
	require.NoError(t, s.Start())
	connectInitiator(t, s, n)

	time.Sleep(60 * time.Millisecond)
	require.Equal(t, SessionStateConnected, s.State())
	require.Equal(t, 1, n.numTransports(remoteID))
}

func TestResourceErrorIsNotRetried(t *testing.T) {
	src := newFakeSource(t, "MS-camera", types.SourceKindCamera)
	src.TracksReturns(nil, NewMediaError(MediaErrorPermissionDenied, nil))
	s, n := newTestSession(t, RoleInitiator, func(p *PeerSessionParams) {
		p.LocalSource = func() types.MediaSource { return src }
	})

	err := s.Start()
	require.Error(t, err)
	require.Equal(t, ErrorKindResource, ClassifyError(err))
	var me *MediaError
	require.True(t, errors.As(err, &me))
	require.Equal(t, MediaErrorPermissionDenied, me.Kind)

	status := s.Status()
	require.True(t, status.Terminal)
	require.Equal(t, ErrorKindResource, status.ErrorKind)
	require.Zero(t, status.ReconnectAttempts)

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, n.numTransports(remoteID))
	require.Zero(t, n.signal.SendSignalCallCount())
}

func TestInitiatorHonorsRestart(t *testing.T) {
	s, n := newTestSession(t, RoleInitiator)
	require.NoError(t, s.Start())
	connectInitiator(t, s, n)
	_, first := n.sent(t, 0)

	s.HandleSignal(handshakePayload(t, &HandshakeMessage{Type: HandshakeRestart, Session: "S-unknown"}))
	require.Equal(t, 1, n.numTransports(remoteID))

	s.HandleSignal(handshakePayload(t, &HandshakeMessage{Type: HandshakeRestart, Session: first.Session}))
	require.Equal(t, 2, n.numTransports(remoteID))
	_, offer := n.lastSent(t)
	require.Equal(t, HandshakeOffer, offer.Type)
	require.NotEqual(t, first.Session, offer.Session)
	require.Zero(t, s.Status().ReconnectAttempts)
}

func TestInitiatorRestartsDuringBackoff(t *testing.T) {
	s, n := newTestSession(t, RoleInitiator, withConfig(func(c *config.PeerConfig) {
		c.ReconnectBaseDelay = time.Minute
	}))
	require.NoError(t, s.Start())

	setICEState(t, n.latest(t, remoteID), webrtc.ICEConnectionStateFailed)
	require.Equal(t, SessionStateFailed, s.State())

	s.HandleSignal(handshakePayload(t, &HandshakeMessage{Type: HandshakeRestart, Session: "S-old"}))
	require.Equal(t, 2, n.numTransports(remoteID))
	require.Equal(t, SessionStateNegotiating, s.State())
	require.Equal(t, 1, s.Status().ReconnectAttempts)
}

func TestResponderRetryRequestsRestart(t *testing.T) {
	s, n := newTestSession(t, RoleResponder)
	require.NoError(t, s.Start())

	s.HandleSignal(handshakePayload(t, offerFor("S-first")))
	setICEState(t, n.latest(t, remoteID), webrtc.ICEConnectionStateFailed)

	require.Eventually(t, func() bool {
		return s.State() == SessionStateCreated
	}, waitFor, tick)
	require.Equal(t, 2, n.numTransports(remoteID))
	_, restart := n.lastSent(t)
	require.Equal(t, HandshakeRestart, restart.Type)
	require.Equal(t, "S-first", restart.Session)

	// candidates may arrive ahead of the offer they belong to
	s.HandleSignal(handshakePayload(t, candidateFor("S-second")))
	s.HandleSignal(handshakePayload(t, offerFor("S-second")))
	require.Equal(t, 2, n.numTransports(remoteID))
	tr := n.latest(t, remoteID)
	require.Equal(t, 1, tr.HandleOfferCallCount())
	require.Equal(t, 1, tr.AddICECandidateCallCount())
}

func TestReplaceSource(t *testing.T) {
	camera := newFakeSource(t, "MS-camera", types.SourceKindCamera)
	screen := newFakeSource(t, "MS-screen", types.SourceKindScreen)
	current := types.MediaSource(camera)
	s, n := newTestSession(t, RoleInitiator, func(p *PeerSessionParams) {
		p.LocalSource = func() types.MediaSource { return current }
	})
	require.NoError(t, s.Start())
	connectInitiator(t, s, n)

	tr := n.latest(t, remoteID)
	current = screen
	require.NoError(t, s.ReplaceSource(screen))
	require.Equal(t, 2, tr.SetTracksCallCount())
	requireTracksOf(t, screen, tr.SetTracksArgsForCall(1))
	require.Equal(t, 1, n.numTransports(remoteID))
	require.Equal(t, SessionStateConnected, s.State())
}

func TestReplaceSourceFallsBackToNewAttempt(t *testing.T) {
	camera := newFakeSource(t, "MS-camera", types.SourceKindCamera)
	screen := newFakeSource(t, "MS-screen", types.SourceKindScreen)
	current := types.MediaSource(camera)
	s, n := newTestSession(t, RoleInitiator, func(p *PeerSessionParams) {
		p.LocalSource = func() types.MediaSource { return current }
	})
	require.NoError(t, s.Start())
	connectInitiator(t, s, n)

	first := n.latest(t, remoteID)
	first.SetTracksReturns(webrtc.ErrUnsupportedCodec)
	current = screen
	require.NoError(t, s.ReplaceSource(screen))

	require.Equal(t, 2, n.numTransports(remoteID))
	second := n.latest(t, remoteID)
	requireTracksOf(t, screen, second.SetTracksArgsForCall(0))
	require.Equal(t, SessionStateNegotiating, s.State())
	require.Zero(t, s.Status().ReconnectAttempts)
}

func TestRemoteTracks(t *testing.T) {
	var added []types.RemoteTrack
	s, n := newTestSession(t, RoleInitiator, func(p *PeerSessionParams) {
		p.OnTrack = func(_ *PeerSession, track types.RemoteTrack) {
			added = append(added, track)
		}
	})
	require.NoError(t, s.Start())
	connectInitiator(t, s, n)

	tr := n.latest(t, remoteID)
	track := newFakeRemoteTrack("TR-1", webrtc.RTPCodecTypeVideo)
	tr.OnTrackArgsForCall(0)(track)
	require.Equal(t, []types.RemoteTrack{track}, s.RemoteTracks())
	require.Len(t, added, 1)

	// a failed attempt loses its tracks
	setICEState(t, tr, webrtc.ICEConnectionStateFailed)
	require.Empty(t, s.RemoteTracks())
}

func TestQualityFollowsPacketLoss(t *testing.T) {
	s, n := newTestSession(t, RoleInitiator, withConfig(func(c *config.PeerConfig) {
		c.QualitySampleInterval = 5 * time.Millisecond
	}))
	require.NoError(t, s.Start())

	tr := n.latest(t, remoteID)
	var (
		lossy          atomic.Bool
		lock           sync.Mutex
		received, lost uint64
	)
	lossy.Store(true)
	tr.GetStatsCalls(func() (types.TransportStats, error) {
		lock.Lock()
		defer lock.Unlock()
		received += 50
		if lossy.Load() {
			lost += 50
		}
		return types.TransportStats{PacketsReceived: received, PacketsLost: lost}, nil
	})
	connectInitiator(t, s, n)

	require.Eventually(t, func() bool {
		return s.Status().Quality == QualityPoor
	}, waitFor, tick)
	require.True(t, s.Status().Connected)

	lossy.Store(false)
	require.Eventually(t, func() bool {
		return s.Status().Quality == QualityGood
	}, waitFor, tick)
}
