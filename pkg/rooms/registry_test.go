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


package rooms

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/livekit/meshroom/pkg/routing"
	"github.com/livekit/meshroom/pkg/signalling"
)

func newSink() *routing.MessageChannel {
	return routing.NewMessageChannel(0)
}

func join(t *testing.T, r *Registry, room signalling.RoomID, pID signalling.ParticipantID, sink routing.MessageSink) []*signalling.Presence {
	existing, err := r.Join(JoinParams{
		RoomID:   room,
		Presence: &signalling.Presence{ParticipantID: pID, DisplayName: string(pID)},
		Sink:     sink,
	})
	require.NoError(t, err)
	return existing
}

func ids(presences []*signalling.Presence) []signalling.ParticipantID {
	out := make([]signalling.ParticipantID, 0, len(presences))
	for _, p := range presences {
		out = append(out, p.ParticipantID)
	}
	return out
}

func types(msgs []*signalling.Response) []signalling.ResponseType {
	out := make([]signalling.ResponseType, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Type)
	}
	return out
}

func TestJoinLeave(t *testing.T) {
	r := NewRegistry(RegistryParams{})
	a, b, c := newSink(), newSink(), newSink()

	require.Empty(t, join(t, r, "room", "a", a))
	require.Equal(t, []signalling.ParticipantID{"a"}, ids(join(t, r, "room", "b", b)))
	require.Equal(t, []signalling.ParticipantID{"a", "b"}, ids(join(t, r, "room", "c", c)))
	require.Equal(t, 1, r.NumRooms())

	// joiner gets the snapshot first and never hears about itself
	msgs := c.Drain()
	require.Equal(t, []signalling.ResponseType{signalling.ResponseExistingMembers}, types(msgs))
	require.Equal(t, []signalling.ParticipantID{"a", "b"}, ids(msgs[0].Join.Members))

	msgs = a.Drain()
	require.Equal(t, []signalling.ResponseType{
		signalling.ResponseExistingMembers,
		signalling.ResponsePeerJoined,
		signalling.ResponsePeerJoined,
	}, types(msgs))
	require.Equal(t, signalling.ParticipantID("b"), msgs[1].Peer.ParticipantID)
	require.Equal(t, signalling.ParticipantID("c"), msgs[2].Peer.ParticipantID)
	b.Drain()

	require.True(t, r.Leave("room", "b"))
	require.False(t, r.Leave("room", "b"))
	for _, sink := range []*routing.MessageChannel{a, c} {
		msgs := sink.Drain()
		require.Len(t, msgs, 1)
		require.Equal(t, signalling.ResponsePeerLeft, msgs[0].Type)
		require.Equal(t, signalling.ParticipantID("b"), msgs[0].ParticipantID)
	}
	require.Empty(t, b.Drain())

	require.Equal(t, []signalling.ParticipantID{"c"}, ids(r.MembersExcept("room", "a")))

	r.Leave("room", "a")
	r.Leave("room", "c")
	require.Equal(t, 0, r.NumRooms())
	require.Empty(t, r.Rooms())
	require.Nil(t, r.MembersExcept("room", "a"))
}

func TestRoomsAreIsolated(t *testing.T) {
	r := NewRegistry(RegistryParams{})
	a, b := newSink(), newSink()

	join(t, r, "one", "a", a)
	require.Empty(t, join(t, r, "two", "b", b))
	require.Len(t, a.Drain(), 1)

	infos := r.Rooms()
	require.Len(t, infos, 2)
	require.Equal(t, signalling.RoomID("one"), infos[0].ID)
	require.Equal(t, signalling.RoomID("two"), infos[1].ID)
}

func TestRejoinReplacesRecord(t *testing.T) {
	r := NewRegistry(RegistryParams{})
	a, b, b2 := newSink(), newSink(), newSink()

	join(t, r, "room", "a", a)
	join(t, r, "room", "b", b)
	a.Drain()
	b.Drain()

	existing, err := r.Join(JoinParams{
		RoomID:   "room",
		Presence: &signalling.Presence{ParticipantID: "b", DisplayName: "bee", CameraOn: true},
		Sink:     b2,
	})
	require.NoError(t, err)
	require.Equal(t, []signalling.ParticipantID{"a"}, ids(existing))

	// the old connection is told why and closed
	msgs := b.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ErrorCodeDuplicateParticipant, msgs[0].Error.Code)
	require.True(t, b.IsClosed())

	// others see a presence change, not a second join
	msgs = a.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ResponsePresenceChanged, msgs[0].Type)
	require.Equal(t, "bee", *msgs[0].PresenceChanged.Patch.DisplayName)
	require.True(t, *msgs[0].PresenceChanged.Patch.CameraOn)

	require.Len(t, r.MembersExcept("room", ""), 2)

	sink, ok := r.Sink("room", "b")
	require.True(t, ok)
	require.Equal(t, routing.MessageSink(b2), sink)

	// the stale connection's teardown must not evict the new one
	require.False(t, r.Release("room", "b", b))
	require.Len(t, r.MembersExcept("room", ""), 2)
	require.True(t, r.Release("room", "b", b2))
	require.Len(t, r.MembersExcept("room", ""), 1)
}

func TestMaxParticipants(t *testing.T) {
	r := NewRegistry(RegistryParams{MaxParticipants: 2})

	join(t, r, "room", "a", newSink())
	join(t, r, "room", "b", newSink())

	_, err := r.Join(JoinParams{
		RoomID:   "room",
		Presence: &signalling.Presence{ParticipantID: "c"},
		Sink:     newSink(),
	})
	require.ErrorIs(t, err, ErrRoomFull)

	// replacing an existing member is not a new seat
	join(t, r, "room", "b", newSink())
	require.Len(t, r.MembersExcept("room", ""), 2)
}

func TestInvalidParticipant(t *testing.T) {
	r := NewRegistry(RegistryParams{})
	_, err := r.Join(JoinParams{RoomID: "room", Presence: &signalling.Presence{}, Sink: newSink()})
	require.ErrorIs(t, err, ErrInvalidParticipant)
	require.Equal(t, 0, r.NumRooms())
}

func TestUpdatePresence(t *testing.T) {
	r := NewRegistry(RegistryParams{})
	a, b := newSink(), newSink()
	join(t, r, "room", "a", a)
	join(t, r, "room", "b", b)
	a.Drain()
	b.Drain()

	on := true
	p, ok := r.UpdatePresence("room", "a", signalling.PresencePatch{CameraOn: &on})
	require.True(t, ok)
	require.True(t, p.CameraOn)
	require.Equal(t, "a", p.DisplayName)

	require.Empty(t, a.Drain())
	msgs := b.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, signalling.ParticipantID("a"), msgs[0].PresenceChanged.ParticipantID)
	require.Nil(t, msgs[0].PresenceChanged.Patch.MicOn)

	// late joiners see the merged presence
	existing := join(t, r, "room", "c", newSink())
	require.Equal(t, []signalling.ParticipantID{"a", "b"}, ids(existing))
	require.True(t, existing[0].CameraOn)
	require.False(t, existing[1].CameraOn)

	r.Leave("room", "a")
	_, ok = r.UpdatePresence("room", "a", signalling.PresencePatch{CameraOn: &on})
	require.False(t, ok)
}

func TestConcurrentJoinLeave(t *testing.T) {
	r := NewRegistry(RegistryParams{})
	observer := newSink()
	join(t, r, "room", "observer", observer)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pID := signalling.ParticipantID(fmt.Sprintf("p%d", i))
			for j := 0; j < 10; j++ {
				join(t, r, "room", pID, newSink())
				r.Leave("room", pID)
			}
		}(i)
	}
	wg.Wait()

	require.Empty(t, r.MembersExcept("room", "observer"))

	// the observer saw a balanced stream of joins and leaves
	present := make(map[signalling.ParticipantID]bool)
	for _, msg := range observer.Drain() {
		switch msg.Type {
		case signalling.ResponsePeerJoined:
			require.False(t, present[msg.Peer.ParticipantID])
			present[msg.Peer.ParticipantID] = true
		case signalling.ResponsePeerLeft:
			require.True(t, present[msg.ParticipantID])
			delete(present, msg.ParticipantID)
		}
	}
	require.Empty(t, present)
}

func TestConcurrentRoomChurn(t *testing.T) {
	r := NewRegistry(RegistryParams{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pID := signalling.ParticipantID(fmt.Sprintf("p%d", i))
			for j := 0; j < 20; j++ {
				join(t, r, "room", pID, newSink())
				r.Leave("room", pID)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 0, r.NumRooms())
}
