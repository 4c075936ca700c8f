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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadCrossEncoding(t *testing.T) {
	payload := Payload(`{"type":"offer","sdp":"v=0"}`)
	res := &Response{
		Type:   ResponseSignal,
		Signal: &SignalMessage{From: "PA", Payload: payload},
	}

	// a payload received over msgpack must reach a JSON client untouched, and the reverse
	packed, err := EncodingMsgpack.Marshal(res)
	require.NoError(t, err)
	fromPacked := &Response{}
	require.NoError(t, EncodingMsgpack.Unmarshal(packed, fromPacked))
	require.Equal(t, payload, fromPacked.Signal.Payload)

	text, err := EncodingJSON.Marshal(fromPacked)
	require.NoError(t, err)
	require.Contains(t, string(text), `"payload":{"type":"offer","sdp":"v=0"}`)

	fromText := &Response{}
	require.NoError(t, EncodingJSON.Unmarshal(text, fromText))
	require.JSONEq(t, string(payload), string(fromText.Signal.Payload))
}

func TestPayloadNotJSON(t *testing.T) {
	data, err := json.Marshal(Payload("not json"))
	require.NoError(t, err)
	require.Equal(t, `"not json"`, string(data))

	data, err = json.Marshal(Payload(nil))
	require.NoError(t, err)
	require.Equal(t, "null", string(data))
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"join", Request{Type: RequestJoin, Join: &JoinRequest{RoomID: "r"}}, false},
		{"join missing payload", Request{Type: RequestJoin}, true},
		{"relay missing payload", Request{Type: RequestRelay}, true},
		{"presence", Request{Type: RequestUpdatePresence, Presence: &PresencePatch{}}, false},
		{"leave", Request{Type: RequestLeave}, false},
		{"unknown", Request{Type: "bogus"}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.req.Validate()
			if test.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPresenceApply(t *testing.T) {
	p := &Presence{ParticipantID: "PA", DisplayName: "a", CameraOn: true, MicOn: true}
	off := false
	p.Apply(PresencePatch{CameraOn: &off})
	require.False(t, p.CameraOn)
	require.True(t, p.MicOn)
	require.Equal(t, "a", p.DisplayName)

	q := &Presence{ParticipantID: "PA"}
	q.Apply(FullPatch(p))
	require.Equal(t, p, q)
	require.True(t, PresencePatch{}.IsEmpty())
}
