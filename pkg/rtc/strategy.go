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

type Role string

const (
	RoleInitiator Role = "initiator"
	RoleResponder Role = "responder"
)

// Discovery is how the local participant learned about a remote one.
type Discovery int

const (
	// DiscoveryExistingMember: the remote was already in the room when we joined
	DiscoveryExistingMember Discovery = iota
	// DiscoveryPeerJoined: the remote joined after us
	DiscoveryPeerJoined
)

func (d Discovery) String() string {
	switch d {
	case DiscoveryExistingMember:
		return "existing_member"
	case DiscoveryPeerJoined:
		return "peer_joined"
	default:
		return "unknown"
	}
}

// RoleStrategy decides which side of a pair sends the offer.
//
// Both sides of a pair must come to opposite answers.
type RoleStrategy interface {
	RoleFor(local, remote signalling.ParticipantID, discovery Discovery) Role
}

// MeshStrategy has everyone already in the room send an offer to a newcomer, which only answers.
type MeshStrategy struct{}

func (MeshStrategy) RoleFor(_, _ signalling.ParticipantID, discovery Discovery) Role {
	if discovery == DiscoveryPeerJoined {
		return RoleInitiator
	}
	return RoleResponder
}
