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
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/rooms"
	"github.com/livekit/meshroom/pkg/routing"
	"github.com/livekit/meshroom/pkg/signalling"
)

type testConn struct {
	*RelayConnection
	sink *routing.MessageChannel
}

func newTestRelay(t *testing.T, mutate ...func(conf *config.Config)) (*SignalRelay, *rooms.Registry) {
	conf := config.DefaultConfig
	for _, m := range mutate {
		m(&conf)
	}
	registry := rooms.NewRegistry(rooms.RegistryParams{MaxParticipants: conf.Room.MaxParticipants})
	relay, err := NewSignalRelay(&conf, registry, NewICEServerProvider(&conf, NewTURNAuthHandler(&conf)))
	require.NoError(t, err)
	return relay, registry
}

func newTestConn(r *SignalRelay, id string) *testConn {
	sink := routing.NewMessageChannel(0)
	return &testConn{RelayConnection: r.NewConnection(id, sink, nil), sink: sink}
}

func joinReq(room signalling.RoomID, pID signalling.ParticipantID) *signalling.Request {
	return &signalling.Request{
		Type: signalling.RequestJoin,
		Join: &signalling.JoinRequest{
			RoomID:   room,
			Presence: signalling.Presence{ParticipantID: pID, DisplayName: string(pID)},
			Protocol: signalling.ProtocolVersion,
		},
	}
}

func relayReq(target signalling.ParticipantID, payload string) *signalling.Request {
	return &signalling.Request{
		Type:  signalling.RequestRelay,
		Relay: &signalling.RelayRequest{Target: target, Payload: signalling.Payload(payload)},
	}
}

func requireError(t *testing.T, c *testConn, code string) {
	msgs := c.sink.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ResponseError, msgs[0].Type)
	require.Equal(t, code, msgs[0].Error.Code)
}

func TestRelayJoin(t *testing.T) {
	relay, registry := newTestRelay(t)
	a, b := newTestConn(relay, "a"), newTestConn(relay, "b")

	relay.HandleRequest(a.RelayConnection, joinReq("room", "pa"))
	msgs := a.sink.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ResponseExistingMembers, msgs[0].Type)
	require.Empty(t, msgs[0].Join.Members)
	require.NotEmpty(t, msgs[0].Join.ICEServers)

	relay.HandleRequest(b.RelayConnection, joinReq("room", "pb"))
	msgs = b.sink.Drain()
	require.Len(t, msgs, 1)
	require.Len(t, msgs[0].Join.Members, 1)
	require.Equal(t, signalling.ParticipantID("pa"), msgs[0].Join.Members[0].ParticipantID)

	msgs = a.sink.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ResponsePeerJoined, msgs[0].Type)
	require.Equal(t, signalling.ParticipantID("pb"), msgs[0].Peer.ParticipantID)

	room, pID, bound := b.Binding()
	require.True(t, bound)
	require.Equal(t, signalling.RoomID("room"), room)
	require.Equal(t, signalling.ParticipantID("pb"), pID)
	require.Len(t, registry.MembersExcept("room", ""), 2)
}

func TestRelayJoinValidation(t *testing.T) {
	relay, registry := newTestRelay(t, func(conf *config.Config) {
		conf.Room.MaxRoomIDLength = 4
		conf.Room.MaxParticipants = 1
	})

	for name, tc := range map[string]struct {
		req  *signalling.Request
		code string
	}{
		"no room":   {req: joinReq("", "p"), code: signalling.ErrorCodeInvalidRequest},
		"long room": {req: joinReq("toolong", "p"), code: signalling.ErrorCodeInvalidRequest},
		"no id":     {req: joinReq("room", ""), code: signalling.ErrorCodeInvalidRequest},
		"no payload": {
			req:  &signalling.Request{Type: signalling.RequestJoin},
			code: signalling.ErrorCodeInvalidRequest,
		},
		"old protocol": {
			req: func() *signalling.Request {
				req := joinReq("room", "p")
				req.Join.Protocol = "0.9.0"
				return req
			}(),
			code: signalling.ErrorCodeUnsupportedProtocol,
		},
		"garbage protocol": {
			req: func() *signalling.Request {
				req := joinReq("room", "p")
				req.Join.Protocol = "not-a-version"
				return req
			}(),
			code: signalling.ErrorCodeUnsupportedProtocol,
		},
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestConn(relay, name)
			relay.HandleRequest(c.RelayConnection, tc.req)
			requireError(t, c, tc.code)
			_, _, bound := c.Binding()
			require.False(t, bound)
		})
	}
	require.Equal(t, 0, registry.NumRooms())

	a, b := newTestConn(relay, "a"), newTestConn(relay, "b")
	relay.HandleRequest(a.RelayConnection, joinReq("room", "pa"))
	relay.HandleRequest(b.RelayConnection, joinReq("room", "pb"))
	requireError(t, b, signalling.ErrorCodeRoomFull)
}

func TestRelayRequiresJoin(t *testing.T) {
	relay, _ := newTestRelay(t)
	c := newTestConn(relay, "c")

	on := true
	for _, req := range []*signalling.Request{
		relayReq("x", `{}`),
		{Type: signalling.RequestUpdatePresence, Presence: &signalling.PresencePatch{CameraOn: &on}},
		{Type: signalling.RequestLeave},
	} {
		relay.HandleRequest(c.RelayConnection, req)
		requireError(t, c, signalling.ErrorCodeNotJoined)
	}

	relay.HandleRequest(c.RelayConnection, &signalling.Request{Type: "bogus"})
	requireError(t, c, signalling.ErrorCodeInvalidRequest)

	// ping works in any state
	relay.HandleRequest(c.RelayConnection, &signalling.Request{Type: signalling.RequestPing, Ping: 42})
	msgs := c.sink.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ResponsePong, msgs[0].Type)
	require.Equal(t, int64(42), msgs[0].Pong)
}

func TestRelaySignal(t *testing.T) {
	relay, _ := newTestRelay(t)
	a, b := newTestConn(relay, "a"), newTestConn(relay, "b")
	relay.HandleRequest(a.RelayConnection, joinReq("room", "pa"))
	relay.HandleRequest(b.RelayConnection, joinReq("room", "pb"))
	a.sink.Drain()
	b.sink.Drain()

	payload := `{"type":"offer","session":"s1","sdp":"v=0"}`
	relay.HandleRequest(a.RelayConnection, relayReq("pb", payload))
	msgs := b.sink.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ResponseSignal, msgs[0].Type)
	require.Equal(t, signalling.ParticipantID("pa"), msgs[0].Signal.From)
	require.Equal(t, payload, string(msgs[0].Signal.Payload))

	// unknown targets and self are dropped without an error
	relay.HandleRequest(a.RelayConnection, relayReq("nobody", payload))
	relay.HandleRequest(a.RelayConnection, relayReq("pa", payload))
	require.Empty(t, a.sink.Drain())
	require.Empty(t, b.sink.Drain())

	// targets in other rooms are unknown
	c := newTestConn(relay, "c")
	relay.HandleRequest(c.RelayConnection, joinReq("other", "pc"))
	c.sink.Drain()
	relay.HandleRequest(a.RelayConnection, relayReq("pc", payload))
	require.Empty(t, c.sink.Drain())

	// signals to someone who left are dropped too
	relay.HandleRequest(b.RelayConnection, &signalling.Request{Type: signalling.RequestLeave})
	a.sink.Drain()
	relay.HandleRequest(a.RelayConnection, relayReq("pb", payload))
	require.Empty(t, b.sink.Drain())
	_, departed := relay.departed.Peek(departedKey{roomID: "room", pID: "pb"})
	require.True(t, departed)
}

func TestRelayPresence(t *testing.T) {
	relay, registry := newTestRelay(t)
	a, b := newTestConn(relay, "a"), newTestConn(relay, "b")
	relay.HandleRequest(a.RelayConnection, joinReq("room", "pa"))
	relay.HandleRequest(b.RelayConnection, joinReq("room", "pb"))
	a.sink.Drain()
	b.sink.Drain()

	off := false
	relay.HandleRequest(a.RelayConnection, &signalling.Request{
		Type:     signalling.RequestUpdatePresence,
		Presence: &signalling.PresencePatch{MicOn: &off},
	})
	require.Empty(t, a.sink.Drain())
	msgs := b.sink.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ResponsePresenceChanged, msgs[0].Type)
	require.Equal(t, signalling.ParticipantID("pa"), msgs[0].PresenceChanged.ParticipantID)
	require.False(t, *msgs[0].PresenceChanged.Patch.MicOn)

	members := registry.MembersExcept("room", "pb")
	require.Len(t, members, 1)
	require.False(t, members[0].MicOn)
}

func TestRelayRejoinOtherRoom(t *testing.T) {
	relay, registry := newTestRelay(t)
	a, b := newTestConn(relay, "a"), newTestConn(relay, "b")
	relay.HandleRequest(a.RelayConnection, joinReq("one", "pa"))
	relay.HandleRequest(b.RelayConnection, joinReq("one", "pb"))
	a.sink.Drain()
	b.sink.Drain()

	relay.HandleRequest(b.RelayConnection, joinReq("two", "pb"))
	msgs := a.sink.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ResponsePeerLeft, msgs[0].Type)
	require.Equal(t, signalling.ParticipantID("pb"), msgs[0].ParticipantID)

	msgs = b.sink.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ResponseExistingMembers, msgs[0].Type)
	require.Equal(t, signalling.RoomID("two"), msgs[0].Join.RoomID)
	require.Equal(t, 2, registry.NumRooms())

	// same room and id again refreshes the snapshot
	relay.HandleRequest(b.RelayConnection, joinReq("two", "pb"))
	msgs = b.sink.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ResponseExistingMembers, msgs[0].Type)
}

func TestRelayClose(t *testing.T) {
	relay, registry := newTestRelay(t)
	a, b := newTestConn(relay, "a"), newTestConn(relay, "b")
	relay.HandleRequest(a.RelayConnection, joinReq("room", "pa"))
	relay.HandleRequest(b.RelayConnection, joinReq("room", "pb"))
	a.sink.Drain()

	relay.CloseConnection(b.RelayConnection)
	relay.CloseConnection(b.RelayConnection)
	require.True(t, b.sink.IsClosed())

	msgs := a.sink.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ResponsePeerLeft, msgs[0].Type)

	// closed connections ignore further requests
	relay.HandleRequest(b.RelayConnection, joinReq("room", "pb"))
	require.Len(t, registry.MembersExcept("room", ""), 1)

	relay.CloseConnection(a.RelayConnection)
	require.Equal(t, 0, registry.NumRooms())
}

func TestRelayDuplicateParticipant(t *testing.T) {
	relay, registry := newTestRelay(t)
	a, old, replacement := newTestConn(relay, "a"), newTestConn(relay, "old"), newTestConn(relay, "new")
	relay.HandleRequest(a.RelayConnection, joinReq("room", "pa"))
	relay.HandleRequest(old.RelayConnection, joinReq("room", "pb"))
	a.sink.Drain()
	old.sink.Drain()

	relay.HandleRequest(replacement.RelayConnection, joinReq("room", "pb"))
	requireError(t, old, signalling.ErrorCodeDuplicateParticipant)
	require.True(t, old.sink.IsClosed())

	msgs := a.sink.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ResponsePresenceChanged, msgs[0].Type)

	// tearing down the replaced connection must not evict its successor
	relay.CloseConnection(old.RelayConnection)
	require.Empty(t, a.sink.Drain())
	sink, ok := registry.Sink("room", "pb")
	require.True(t, ok)
	require.Equal(t, routing.MessageSink(replacement.sink), sink)
}

func TestRelayReplacedConnectionIsUnbound(t *testing.T) {
	relay, _ := newTestRelay(t)
	a := newTestConn(relay, "a")
	relay.HandleRequest(a.RelayConnection, joinReq("room", "pa"))

	old := newTestConn(relay, "old")
	relay.HandleRequest(old.RelayConnection, joinReq("room", "pb"))
	replacement := newTestConn(relay, "new")
	relay.HandleRequest(replacement.RelayConnection, joinReq("room", "pb"))
	a.sink.Drain()
	replacement.sink.Drain()

	relay.HandleRequest(old.RelayConnection, relayReq("pa", `{}`))
	require.Empty(t, a.sink.Drain())
	_, _, bound := old.Binding()
	require.False(t, bound)
}

// Every client's view, built only from the messages it received, matches the registry.
func TestRelayViewsConverge(t *testing.T) {
	relay, registry := newTestRelay(t)

	conns := make(map[signalling.ParticipantID]*testConn)
	views := make(map[signalling.ParticipantID]map[signalling.ParticipantID]bool)
	apply := func(pID signalling.ParticipantID) {
		view := views[pID]
		for _, msg := range conns[pID].sink.Drain() {
			switch msg.Type {
			case signalling.ResponseExistingMembers:
				for _, m := range msg.Join.Members {
					require.NotEqual(t, pID, m.ParticipantID)
					view[m.ParticipantID] = true
				}
			case signalling.ResponsePeerJoined:
				require.NotEqual(t, pID, msg.Peer.ParticipantID, "self join")
				require.False(t, view[msg.Peer.ParticipantID], "joined twice")
				view[msg.Peer.ParticipantID] = true
			case signalling.ResponsePeerLeft:
				require.True(t, view[msg.ParticipantID], "left without joining")
				delete(view, msg.ParticipantID)
			}
		}
	}

	for i := 0; i < 8; i++ {
		pID := signalling.ParticipantID(fmt.Sprintf("p%d", i))
		conns[pID] = newTestConn(relay, string(pID))
		views[pID] = make(map[signalling.ParticipantID]bool)
		relay.HandleRequest(conns[pID].RelayConnection, joinReq("room", pID))
		if i%3 == 2 {
			leaving := signalling.ParticipantID(fmt.Sprintf("p%d", i-1))
			relay.CloseConnection(conns[leaving].RelayConnection)
			apply(leaving)
			delete(conns, leaving)
			delete(views, leaving)
		}
	}

	for pID := range conns {
		apply(pID)
		expected := make(map[signalling.ParticipantID]bool)
		for _, m := range registry.MembersExcept("room", pID) {
			expected[m.ParticipantID] = true
		}
		require.Equal(t, expected, views[pID], pID)
	}
}
