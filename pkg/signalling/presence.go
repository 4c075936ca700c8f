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

package signalling

import (
	"encoding/json"
)

// Presence is the lightweight state a participant shares with the rest of its room.
type Presence struct {
	ParticipantID ParticipantID `json:"participant_id" msgpack:"participant_id"`
	DisplayName   string        `json:"display_name,omitempty" msgpack:"display_name,omitempty"`
	CameraOn      bool          `json:"camera_on" msgpack:"camera_on"`
	MicOn         bool          `json:"mic_on" msgpack:"mic_on"`
}

func (p *Presence) Clone() *Presence {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Apply merges the fields set in patch.
func (p *Presence) Apply(patch PresencePatch) {
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.CameraOn != nil {
		p.CameraOn = *patch.CameraOn
	}
	if patch.MicOn != nil {
		p.MicOn = *patch.MicOn
	}
}

// PresencePatch is a partial presence update, nil fields are left untouched.
type PresencePatch struct {
	DisplayName *string `json:"display_name,omitempty" msgpack:"display_name,omitempty"`
	CameraOn    *bool   `json:"camera_on,omitempty" msgpack:"camera_on,omitempty"`
	MicOn       *bool   `json:"mic_on,omitempty" msgpack:"mic_on,omitempty"`
}

func (p PresencePatch) IsEmpty() bool {
	return p.DisplayName == nil && p.CameraOn == nil && p.MicOn == nil
}

// FullPatch returns a patch that sets every field of presence.
func FullPatch(p *Presence) PresencePatch {
	name, camera, mic := p.DisplayName, p.CameraOn, p.MicOn
	return PresencePatch{
		DisplayName: &name,
		CameraOn:    &camera,
		MicOn:       &mic,
	}
}

// Payload is an opaque handshake blob. The relay forwards it without looking inside.
// Over JSON it is embedded as a raw JSON value when it is one, otherwise as a string.
type Payload []byte

func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	if json.Valid(p) {
		return p, nil
	}
	return json.Marshal(string(p))
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = nil
		return nil
	}
	*p = append((*p)[:0], data...)
	return nil
}
