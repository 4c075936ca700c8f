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
	"testing"
	"time"

	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/require"

	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/rtc/types"
	"github.com/livekit/meshroom/pkg/rtc/types/typesfakes"
	"github.com/livekit/meshroom/pkg/signalling"
)

const (
	testSDP = "v=0\r\n" +
		"o=- 4215775240449105457 2 IN IP4 127.0.0.1\r\n" +
		"s=-\r\n" +
		"t=0 0\r\n" +
		"m=audio 9 UDP/TLS/RTP/SAVPF 111\r\n" +
		"c=IN IP4 0.0.0.0\r\n" +
		"a=mid:0\r\n" +
		"a=sendrecv\r\n" +
		"a=rtpmap:111 opus/48000/2\r\n"

	testCandidate = "candidate:1966762134 1 udp 2122260223 192.168.1.2 54321 typ host"

	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func testPeerConfig() config.PeerConfig {
	return config.PeerConfig{
		MaxReconnectAttempts: 3,
		ReconnectBaseDelay:   5 * time.Millisecond,
		PoorQualityLossRatio: 0.1,
	}
}

// fakeNetwork hands out a fresh fake transport per attempt and records outgoing signals.
type fakeNetwork struct {
	factory *typesfakes.FakePeerTransportFactory
	signal  *typesfakes.FakeSignalSender

	lock       sync.Mutex
	transports map[signalling.ParticipantID][]*typesfakes.FakePeerTransport
}

func newFakeNetwork() *fakeNetwork {
	n := &fakeNetwork{
		factory:    &typesfakes.FakePeerTransportFactory{},
		signal:     &typesfakes.FakeSignalSender{},
		transports: make(map[signalling.ParticipantID][]*typesfakes.FakePeerTransport),
	}
	n.factory.NewTransportCalls(func(remote signalling.ParticipantID) (types.PeerTransport, error) {
		t := &typesfakes.FakePeerTransport{}
		t.CreateOfferReturns(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: testSDP}, nil)
		t.HandleOfferReturns(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: testSDP}, nil)
		n.lock.Lock()
		n.transports[remote] = append(n.transports[remote], t)
		n.lock.Unlock()
		return t, nil
	})
	return n
}

func (n *fakeNetwork) numTransports(remote signalling.ParticipantID) int {
	n.lock.Lock()
	defer n.lock.Unlock()
	return len(n.transports[remote])
}

func (n *fakeNetwork) transport(t *testing.T, remote signalling.ParticipantID, i int) *typesfakes.FakePeerTransport {
	n.lock.Lock()
	defer n.lock.Unlock()
	require.Greater(t, len(n.transports[remote]), i)
	return n.transports[remote][i]
}

func (n *fakeNetwork) latest(t *testing.T, remote signalling.ParticipantID) *typesfakes.FakePeerTransport {
	n.lock.Lock()
	defer n.lock.Unlock()
	require.NotEmpty(t, n.transports[remote])
	return n.transports[remote][len(n.transports[remote])-1]
}

// sent decodes the i-th signal sent to any participant.
func (n *fakeNetwork) sent(t *testing.T, i int) (signalling.ParticipantID, *HandshakeMessage) {
	require.Greater(t, n.signal.SendSignalCallCount(), i)
	target, payload := n.signal.SendSignalArgsForCall(i)
	m, err := ParseHandshake(payload)
	require.NoError(t, err)
	return target, m
}

func (n *fakeNetwork) lastSent(t *testing.T) (signalling.ParticipantID, *HandshakeMessage) {
	return n.sent(t, n.signal.SendSignalCallCount()-1)
}

func setICEState(t *testing.T, tr *typesfakes.FakePeerTransport, state webrtc.ICEConnectionState) {
	require.Equal(t, 1, tr.OnICEConnectionStateChangeCallCount())
	tr.OnICEConnectionStateChangeArgsForCall(0)(state)
}

func handshakePayload(t *testing.T, m *HandshakeMessage) signalling.Payload {
	payload, err := m.Marshal()
	require.NoError(t, err)
	return payload
}

func answerFor(session string) *HandshakeMessage {
	return &HandshakeMessage{Type: HandshakeAnswer, Session: session, SDP: testSDP}
}

func offerFor(session string) *HandshakeMessage {
	return &HandshakeMessage{Type: HandshakeOffer, Session: session, SDP: testSDP}
}

func candidateFor(session string) *HandshakeMessage {
	return &HandshakeMessage{
		Type:      HandshakeCandidate,
		Session:   session,
		Candidate: &webrtc.ICECandidateInit{Candidate: testCandidate},
	}
}

func newFakeSource(t *testing.T, id string, kind types.SourceKind) *typesfakes.FakeMediaSource {
	video, err := webrtc.NewTrackLocalStaticSample(videoCodec, id+"-video", id)
	require.NoError(t, err)
	audio, err := webrtc.NewTrackLocalStaticSample(audioCodec, id+"-audio", id)
	require.NoError(t, err)

	src := &typesfakes.FakeMediaSource{}
	src.IDReturns(id)
	src.KindReturns(kind)
	src.TracksReturns([]webrtc.TrackLocal{video, audio}, nil)
	return src
}

func newFakeRemoteTrack(id string, kind webrtc.RTPCodecType) *typesfakes.FakeRemoteTrack {
	track := &typesfakes.FakeRemoteTrack{}
	track.IDReturns(id)
	track.StreamIDReturns("stream-" + id)
	track.KindReturns(kind)
	return track
}

func requireTracksOf(t *testing.T, src types.MediaSource, tracks []webrtc.TrackLocal) {
	expected, err := src.Tracks()
	require.NoError(t, err)
	require.Equal(t, expected, tracks)
}
