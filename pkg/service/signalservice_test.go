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
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/rooms"
	"github.com/livekit/meshroom/pkg/signalling"
)

type wsTestClient struct {
	t    *testing.T
	conn *websocket.Conn
	json bool
}

func newSignalTestServer(t *testing.T) (*httptest.Server, *rooms.Registry) {
	conf := config.DefaultConfig
	registry := rooms.NewRegistry(rooms.RegistryParams{})
	relay, err := NewSignalRelay(&conf, registry, NewICEServerProvider(&conf, NewTURNAuthHandler(&conf)))
	require.NoError(t, err)

	server := httptest.NewServer(NewSignalService(&conf, relay))
	t.Cleanup(server.Close)
	return server, registry
}

func dialTestClient(t *testing.T, server *httptest.Server, useJSON bool) *wsTestClient {
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/signal"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsTestClient{t: t, conn: conn, json: useJSON}
}

func (c *wsTestClient) send(req *signalling.Request) {
	var err error
	if c.json {
		var data []byte
		data, err = json.Marshal(req)
		require.NoError(c.t, err)
		err = c.conn.WriteMessage(websocket.TextMessage, data)
	} else {
		var data []byte
		data, err = msgpack.Marshal(req)
		require.NoError(c.t, err)
		err = c.conn.WriteMessage(websocket.BinaryMessage, data)
	}
	require.NoError(c.t, err)
}

func (c *wsTestClient) read() *signalling.Response {
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	messageType, data, err := c.conn.ReadMessage()
	require.NoError(c.t, err)

	res := &signalling.Response{}
	if c.json {
		require.Equal(c.t, websocket.TextMessage, messageType)
		require.NoError(c.t, json.Unmarshal(data, res))
	} else {
		require.Equal(c.t, websocket.BinaryMessage, messageType)
		require.NoError(c.t, msgpack.Unmarshal(data, res))
	}
	return res
}

func TestSignalServiceEndToEnd(t *testing.T) {
	server, registry := newSignalTestServer(t)

	a := dialTestClient(t, server, true)
	a.send(joinReq("room", "pa"))
	res := a.read()
	require.Equal(t, signalling.ResponseExistingMembers, res.Type)
	require.Empty(t, res.Join.Members)

	b := dialTestClient(t, server, false)
	b.send(joinReq("room", "pb"))
	res = b.read()
	require.Equal(t, signalling.ResponseExistingMembers, res.Type)
	require.Len(t, res.Join.Members, 1)

	res = a.read()
	require.Equal(t, signalling.ResponsePeerJoined, res.Type)
	require.Equal(t, signalling.ParticipantID("pb"), res.Peer.ParticipantID)

	// payloads cross encodings untouched
	payload := `{"type":"offer","session":"s1","sdp":"v=0"}`
	b.send(relayReq("pa", payload))
	res = a.read()
	require.Equal(t, signalling.ResponseSignal, res.Type)
	require.Equal(t, signalling.ParticipantID("pb"), res.Signal.From)
	require.JSONEq(t, payload, string(res.Signal.Payload))

	a.send(relayReq("pb", `{"type":"answer","session":"s1","sdp":"v=0"}`))
	res = b.read()
	require.Equal(t, signalling.ResponseSignal, res.Type)
	require.JSONEq(t, `{"type":"answer","session":"s1","sdp":"v=0"}`, string(res.Signal.Payload))

	b.send(&signalling.Request{Type: signalling.RequestPing, Ping: 7})
	res = b.read()
	require.Equal(t, signalling.ResponsePong, res.Type)
	require.Equal(t, int64(7), res.Pong)

	// an unclean drop still produces peer_left
	require.NoError(t, b.conn.UnderlyingConn().Close())
	res = a.read()
	require.Equal(t, signalling.ResponsePeerLeft, res.Type)
	require.Equal(t, signalling.ParticipantID("pb"), res.ParticipantID)

	require.Eventually(t, func() bool {
		return len(registry.MembersExcept("room", "")) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSignalServiceMalformed(t *testing.T) {
	server, _ := newSignalTestServer(t)

	c := dialTestClient(t, server, true)
	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	res := c.read()
	require.Equal(t, signalling.ResponseError, res.Type)
	require.Equal(t, signalling.ErrorCodeInvalidRequest, res.Error.Code)

	// still usable afterwards
	c.send(joinReq("room", "pc"))
	res = c.read()
	require.Equal(t, signalling.ResponseExistingMembers, res.Type)
}

func TestSignalServiceDuplicateParticipant(t *testing.T) {
	server, _ := newSignalTestServer(t)

	old := dialTestClient(t, server, true)
	old.send(joinReq("room", "p"))
	old.read()

	replacement := dialTestClient(t, server, true)
	replacement.send(joinReq("room", "p"))
	replacement.read()

	res := old.read()
	require.Equal(t, signalling.ResponseError, res.Type)
	require.Equal(t, signalling.ErrorCodeDuplicateParticipant, res.Error.Code)

	// then the old socket is closed by the relay
	require.NoError(t, old.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := old.conn.ReadMessage()
	require.Error(t, err)
	require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}
