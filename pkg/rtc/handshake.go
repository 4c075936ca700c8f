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
	"encoding/json"
	"strings"

	"github.com/pion/ice/v2"
	"github.com/pion/sdp/v3"
	"github.com/pion/webrtc/v3"
	"github.com/pkg/errors"

	"github.com/livekit/meshroom/pkg/signalling"
)

type HandshakeType string

const (
	HandshakeOffer     HandshakeType = "offer"
	HandshakeAnswer    HandshakeType = "answer"
	HandshakeCandidate HandshakeType = "candidate"
	// HandshakeRestart asks the initiator to start over with a fresh attempt
	HandshakeRestart HandshakeType = "restart"
)

// HandshakeMessage is the payload peers exchange through the relay. Session identifies the
// connection attempt the message belongs to, it is chosen by the offering side.
type HandshakeMessage struct {
	Type      HandshakeType            `json:"type"`
	Session   string                   `json:"session,omitempty"`
	SDP       string                   `json:"sdp,omitempty"`
	Candidate *webrtc.ICECandidateInit `json:"candidate,omitempty"`
}

func (m *HandshakeMessage) SessionDescription() webrtc.SessionDescription {
	sd := webrtc.SessionDescription{SDP: m.SDP}
	switch m.Type {
	case HandshakeOffer:
		sd.Type = webrtc.SDPTypeOffer
	case HandshakeAnswer:
		sd.Type = webrtc.SDPTypeAnswer
	}
	return sd
}

func (m *HandshakeMessage) Marshal() (signalling.Payload, error) {
	return json.Marshal(m)
}

func newDescriptionMessage(session string, sd webrtc.SessionDescription) *HandshakeMessage {
	m := &HandshakeMessage{Session: session, SDP: sd.SDP}
	if sd.Type == webrtc.SDPTypeAnswer {
		m.Type = HandshakeAnswer
	} else {
		m.Type = HandshakeOffer
	}
	return m
}

// ParseHandshake decodes and validates a payload received from a remote participant.
// All errors wrap ErrMalformedHandshake.
func ParseHandshake(payload signalling.Payload) (*HandshakeMessage, error) {
	if len(payload) == 0 {
		return nil, errors.Wrap(ErrMalformedHandshake, "empty payload")
	}
	m := &HandshakeMessage{}
	if err := json.Unmarshal(payload, m); err != nil {
		return nil, errors.Wrap(ErrMalformedHandshake, err.Error())
	}

	switch m.Type {
	case HandshakeOffer, HandshakeAnswer:
		if m.Session == "" {
			return nil, errors.Wrapf(ErrMalformedHandshake, "%s without session", m.Type)
		}
		parsed := sdp.SessionDescription{}
		if err := parsed.Unmarshal([]byte(m.SDP)); err != nil {
			return nil, errors.Wrapf(ErrMalformedHandshake, "invalid sdp: %v", err)
		}
		if len(parsed.MediaDescriptions) == 0 {
			return nil, errors.Wrap(ErrMalformedHandshake, "sdp has no media sections")
		}

	case HandshakeCandidate:
		if m.Session == "" {
			return nil, errors.Wrap(ErrMalformedHandshake, "candidate without session")
		}
		if m.Candidate == nil {
			return nil, errors.Wrap(ErrMalformedHandshake, "missing candidate")
		}
		// an empty candidate marks the end of gathering
		if c := m.Candidate.Candidate; c != "" {
			if _, err := ice.UnmarshalCandidate(strings.TrimPrefix(c, "candidate:")); err != nil {
				return nil, errors.Wrapf(ErrMalformedHandshake, "invalid candidate: %v", err)
			}
		}

	case HandshakeRestart:

	default:
		return nil, errors.Wrapf(ErrMalformedHandshake, "unknown type %q", m.Type)
	}
	return m, nil
}
