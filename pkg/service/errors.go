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


package service

import (
	"errors"
)

var (
	ErrNoRoomID                  = errors.New("room id is required")
	ErrRoomIDExceedsLimits       = errors.New("room id length exceeds limits")
	ErrNoParticipantID           = errors.New("participant id is required")
	ErrParticipantIDExceedsLimit = errors.New("participant id length exceeds limits")
	ErrDisplayNameExceedsLimits  = errors.New("display name length exceeds limits")
	ErrUnsupportedProtocol       = errors.New("client protocol version is not supported")
	ErrNotJoined                 = errors.New("connection has not joined a room")
	ErrConnectionClosed          = errors.New("connection is closed")
	ErrInvalidTURNPorts          = errors.New("invalid TURN ports")
	ErrInvalidTURNUsername       = errors.New("invalid TURN username")
)
