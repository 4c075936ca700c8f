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
	"github.com/livekit/meshroom/pkg/signalling"
)

type Quality string

const (
	QualityUnknown Quality = "unknown"
	QualityGood    Quality = "good"
	QualityPoor    Quality = "poor"
	QualityError   Quality = "error"
)

type SessionState int

const (
	SessionStateCreated SessionState = iota
	SessionStateNegotiating
	SessionStateConnected
	SessionStateFailed
	SessionStateClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionStateCreated:
		return "CREATED"
	case SessionStateNegotiating:
		return "NEGOTIATING"
	case SessionStateConnected:
		return "CONNECTED"
	case SessionStateFailed:
		return "FAILED"
	case SessionStateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ConnectionStatus is the externally visible health of one peer session.
type ConnectionStatus struct {
	ParticipantID     signalling.ParticipantID `json:"participant_id"`
	Role              Role                     `json:"role"`
	State             SessionState             `json:"-"`
	Connected         bool                     `json:"connected"`
	Quality           Quality                  `json:"quality"`
	ReconnectAttempts int                      `json:"reconnect_attempts"`
	// Terminal is set once the session gave up and will not retry anymore
	Terminal  bool      `json:"terminal,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
}
