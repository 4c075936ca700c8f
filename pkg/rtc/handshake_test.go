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
	"testing"

	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/require"

	"github.com/livekit/meshroom/pkg/signalling"
)

func TestParseHandshake(t *testing.T) {
	t.Run("offer", func(t *testing.T) {
		payload, err := newDescriptionMessage("S-1", webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: testSDP}).Marshal()
		require.NoError(t, err)

		m, err := ParseHandshake(payload)
		require.NoError(t, err)
		require.Equal(t, HandshakeOffer, m.Type)
		require.Equal(t, "S-1", m.Session)
		sd := m.SessionDescription()
		require.Equal(t, webrtc.SDPTypeOffer, sd.Type)
		require.Equal(t, testSDP, sd.SDP)
	})

	t.Run("answer", func(t *testing.T) {
		payload, err := newDescriptionMessage("S-1", webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: testSDP}).Marshal()
		require.NoError(t, err)

		m, err := ParseHandshake(payload)
		require.NoError(t, err)
		require.Equal(t, webrtc.SDPTypeAnswer, m.SessionDescription().Type)
	})

	t.Run("candidate", func(t *testing.T) {
		payload, err := (&HandshakeMessage{
			Type:      HandshakeCandidate,
			Session:   "S-1",
			Candidate: &webrtc.ICECandidateInit{Candidate: testCandidate},
		}).Marshal()
		require.NoError(t, err)

		m, err := ParseHandshake(payload)
		require.NoError(t, err)
		require.Equal(t, testCandidate, m.Candidate.Candidate)
	})

	t.Run("end of candidates", func(t *testing.T) {
		m, err := ParseHandshake(signalling.Payload(`{"type":"candidate","session":"S-1","candidate":{"candidate":""}}`))
		require.NoError(t, err)
		require.Empty(t, m.Candidate.Candidate)
	})

	t.Run("restart", func(t *testing.T) {
		m, err := ParseHandshake(signalling.Payload(`{"type":"restart"}`))
		require.NoError(t, err)
		require.Equal(t, HandshakeRestart, m.Type)
		require.Empty(t, m.Session)
	})
}

func TestParseHandshakeMalformed(t *testing.T) {
	for name, payload := range map[string]string{
		"empty":                 ``,
		"not json":              `offer`,
		"unknown type":          `{"type":"bogus"}`,
		"offer without sdp":     `{"type":"offer","session":"S-1"}`,
		"offer without session": `{"type":"offer","sdp":"v=0"}`,
		"sdp without media":     `{"type":"answer","session":"S-1","sdp":"v=0\r\no=- 1 1 IN IP4 0.0.0.0\r\ns=-\r\nt=0 0\r\n"}`,
		"candidate missing":     `{"type":"candidate","session":"S-1"}`,
		"candidate invalid":     `{"type":"candidate","session":"S-1","candidate":{"candidate":"candidate:garbage"}}`,
		"candidate no session":  `{"type":"candidate","candidate":{"candidate":""}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseHandshake(signalling.Payload(payload))
			require.ErrorIs(t, err, ErrMalformedHandshake)
			require.Equal(t, ErrorKindNegotiation, ClassifyError(err))
		})
	}
}
