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

// Package signalling defines the messages exchanged between participants and the relay.
package signalling

// ProtocolVersion is sent by clients on join and checked against the relay's constraint.
const ProtocolVersion = "1.0.0"

type (
	RoomID        string
	ParticipantID string
)

type RequestType string

const (
	RequestJoin           RequestType = "join"
	RequestRelay          RequestType = "relay"
	RequestUpdatePresence RequestType = "update_presence"
	RequestLeave          RequestType = "leave"
	RequestPing           RequestType = "ping"
)

type ResponseType string

const (
	ResponseExistingMembers ResponseType = "existing_members"
	ResponsePeerJoined      ResponseType = "peer_joined"
	ResponsePeerLeft        ResponseType = "peer_left"
	ResponseSignal          ResponseType = "signal"
	ResponsePresenceChanged ResponseType = "presence_changed"
	ResponseError           ResponseType = "error"
	ResponsePong            ResponseType = "pong"
)

// error codes carried by ErrorResponse
const (
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeNotJoined            = "not_joined"
	ErrorCodeRoomFull             = "room_full"
	ErrorCodeUnsupportedProtocol  = "unsupported_protocol"
	ErrorCodeDuplicateParticipant = "duplicate_participant"
	ErrorCodeSlowConsumer         = "slow_consumer"
)

// Request is sent by a client to the relay. Exactly one payload field is set, matching Type.
type Request struct {
	Type     RequestType    `json:"type" msgpack:"type"`
	Join     *JoinRequest   `json:"join,omitempty" msgpack:"join,omitempty"`
	Relay    *RelayRequest  `json:"relay,omitempty" msgpack:"relay,omitempty"`
	Presence *PresencePatch `json:"presence,omitempty" msgpack:"presence,omitempty"`
	Ping     int64          `json:"ping,omitempty" msgpack:"ping,omitempty"`
}

type JoinRequest struct {
	RoomID   RoomID   `json:"room_id" msgpack:"room_id"`
	Presence Presence `json:"presence" msgpack:"presence"`
	Protocol string   `json:"protocol,omitempty" msgpack:"protocol,omitempty"`
}

type RelayRequest struct {
	Target  ParticipantID `json:"target" msgpack:"target"`
	Payload Payload       `json:"payload" msgpack:"payload"`
}

// Response is sent by the relay to a client.
type Response struct {
	Type            ResponseType           `json:"type" msgpack:"type"`
	Join            *JoinResponse          `json:"join,omitempty" msgpack:"join,omitempty"`
	Peer            *Presence              `json:"peer,omitempty" msgpack:"peer,omitempty"`
	ParticipantID   ParticipantID          `json:"participant_id,omitempty" msgpack:"participant_id,omitempty"`
	Signal          *SignalMessage         `json:"signal,omitempty" msgpack:"signal,omitempty"`
	PresenceChanged *PresenceChangeMessage `json:"presence_changed,omitempty" msgpack:"presence_changed,omitempty"`
	Error           *ErrorResponse         `json:"error,omitempty" msgpack:"error,omitempty"`
	Pong            int64                  `json:"pong,omitempty" msgpack:"pong,omitempty"`
}

// JoinResponse carries the existing members snapshot, in join order, excluding the joiner.
type JoinResponse struct {
	RoomID     RoomID      `json:"room_id" msgpack:"room_id"`
	Members    []*Presence `json:"members" msgpack:"members"`
	ICEServers []ICEServer `json:"ice_servers,omitempty" msgpack:"ice_servers,omitempty"`
}

type ICEServer struct {
	URLs       []string `json:"urls" msgpack:"urls"`
	Username   string   `json:"username,omitempty" msgpack:"username,omitempty"`
	Credential string   `json:"credential,omitempty" msgpack:"credential,omitempty"`
}

type SignalMessage struct {
	From    ParticipantID `json:"from" msgpack:"from"`
	Payload Payload       `json:"payload" msgpack:"payload"`
}

type PresenceChangeMessage struct {
	ParticipantID ParticipantID `json:"participant_id" msgpack:"participant_id"`
	Patch         PresencePatch `json:"patch" msgpack:"patch"`
}

type ErrorResponse struct {
	Code    string `json:"code" msgpack:"code"`
	Message string `json:"message,omitempty" msgpack:"message,omitempty"`
}

func NewErrorResponse(code string, message string) *Response {
	return &Response{
		Type:  ResponseError,
		Error: &ErrorResponse{Code: code, Message: message},
	}
}
