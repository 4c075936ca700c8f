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

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects how messages are framed on a signal connection.
// Binary frames carry msgpack, text frames carry JSON.
type Encoding int

const (
	EncodingMsgpack Encoding = iota
	EncodingJSON
)

var ErrUnknownMessageType = errors.New("unknown message type")

func (e Encoding) String() string {
	switch e {
	case EncodingMsgpack:
		return "msgpack"
	case EncodingJSON:
		return "json"
	default:
		return "unknown"
	}
}

func (e Encoding) Marshal(v interface{}) ([]byte, error) {
	if e == EncodingJSON {
		return json.Marshal(v)
	}
	return msgpack.Marshal(v)
}

func (e Encoding) Unmarshal(data []byte, v interface{}) error {
	if e == EncodingJSON {
		return json.Unmarshal(data, v)
	}
	return msgpack.Unmarshal(data, v)
}

// Validate checks that a decoded request carries the payload its type requires.
func (r *Request) Validate() error {
	switch r.Type {
	case RequestJoin:
		if r.Join == nil {
			return errors.New("join request without join payload")
		}
	case RequestRelay:
		if r.Relay == nil {
			return errors.New("relay request without relay payload")
		}
	case RequestUpdatePresence:
		if r.Presence == nil {
			return errors.New("presence request without patch")
		}
	case RequestLeave, RequestPing:
	default:
		return errors.Wrapf(ErrUnknownMessageType, "%q", r.Type)
	}
	return nil
}
