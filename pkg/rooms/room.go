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
	"sync"
	"time"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/routing"
	"github.com/livekit/meshroom/pkg/signalling"
)

type member struct {
	presence *signalling.Presence
	sink     routing.MessageSink
}

// Room holds the members of one room in join order. Every mutation, together with the
// notifications it causes, runs under lock so each member observes the same history.
type Room struct {
	id        signalling.RoomID
	createdAt time.Time
	logger    logger.Logger

	lock    sync.Mutex
	members *orderedmap.OrderedMap[signalling.ParticipantID, *member]
	// set once the last member leaves, a closed room is never reused
	closed bool
}

func newRoom(id signalling.RoomID, l logger.Logger) *Room {
	return &Room{
		id:        id,
		createdAt: time.Now(),
		logger:    l.WithValues("room", id),
		members:   orderedmap.NewOrderedMap[signalling.ParticipantID, *member](),
	}
}

func (r *Room) ID() signalling.RoomID {
	return r.id
}

func (r *Room) isClosed() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.closed
}

type joinResult struct {
	existing []*signalling.Presence
	// false when an existing record for the participant was replaced
	added bool
}

// join returns false when the room was closed concurrently and the caller must retry on a fresh room.
func (r *Room) join(p JoinParams, maxParticipants uint32) (joinResult, bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return joinResult{}, false, nil
	}

	pID := p.Presence.ParticipantID
	prev, replacing := r.members.Get(pID)
	if !replacing && maxParticipants > 0 && uint32(r.members.Len()) >= maxParticipants {
		return joinResult{}, true, ErrRoomFull
	}

	existing := r.snapshotLocked(pID)
	presence := p.Presence.Clone()
	r.members.Set(pID, &member{presence: presence, sink: p.Sink})

	if replacing && prev.sink != p.Sink {
		r.logger.Infow("participant replaced by a newer connection", "participant", pID)
		_ = prev.sink.WriteMessage(signalling.NewErrorResponse(
			signalling.ErrorCodeDuplicateParticipant,
			"participant joined from another connection",
		))
		prev.sink.Close()
	}

	// the snapshot is queued before any later broadcast can reach this sink
	r.writeLocked(p.Sink, pID, &signalling.Response{
		Type: signalling.ResponseExistingMembers,
		Join: &signalling.JoinResponse{
			RoomID:     r.id,
			Members:    existing,
			ICEServers: p.ICEServers,
		},
	})

	if replacing {
		r.broadcastLocked(pID, &signalling.Response{
			Type: signalling.ResponsePresenceChanged,
			PresenceChanged: &signalling.PresenceChangeMessage{
				ParticipantID: pID,
				Patch:         signalling.FullPatch(presence),
			},
		})
	} else {
		r.broadcastLocked(pID, &signalling.Response{
			Type: signalling.ResponsePeerJoined,
			Peer: presence.Clone(),
		})
	}
	return joinResult{existing: existing, added: !replacing}, true, nil
}

// leave removes pID, when sink is non nil only if pID is still bound to it.
// It reports whether a member was removed and whether the room is now empty.
func (r *Room) leave(pID signalling.ParticipantID, sink routing.MessageSink) (bool, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	m, ok := r.members.Get(pID)
	if !ok || (sink != nil && m.sink != sink) {
		return false, false
	}
	r.members.Delete(pID)

	r.broadcastLocked(pID, &signalling.Response{
		Type:          signalling.ResponsePeerLeft,
		ParticipantID: pID,
	})

	if r.members.Len() == 0 {
		r.closed = true
	}
	return true, r.closed
}

func (r *Room) updatePresence(pID signalling.ParticipantID, patch signalling.PresencePatch) (*signalling.Presence, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	m, ok := r.members.Get(pID)
	if !ok {
		return nil, false
	}
	m.presence.Apply(patch)

	r.broadcastLocked(pID, &signalling.Response{
		Type: signalling.ResponsePresenceChanged,
		PresenceChanged: &signalling.PresenceChangeMessage{
			ParticipantID: pID,
			Patch:         patch,
		},
	})
	return m.presence.Clone(), true
}

func (r *Room) membersExcept(pID signalling.ParticipantID) []*signalling.Presence {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.snapshotLocked(pID)
}

func (r *Room) sink(pID signalling.ParticipantID) (routing.MessageSink, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	m, ok := r.members.Get(pID)
	if !ok {
		return nil, false
	}
	return m.sink, true
}

func (r *Room) info() RoomInfo {
	r.lock.Lock()
	defer r.lock.Unlock()

	return RoomInfo{
		ID:           r.id,
		CreatedAt:    r.createdAt,
		Participants: r.snapshotLocked(""),
	}
}

func (r *Room) snapshotLocked(except signalling.ParticipantID) []*signalling.Presence {
	presences := make([]*signalling.Presence, 0, r.members.Len())
	for el := r.members.Front(); el != nil; el = el.Next() {
		if el.Key == except {
			continue
		}
		presences = append(presences, el.Value.presence.Clone())
	}
	return presences
}

func (r *Room) broadcastLocked(from signalling.ParticipantID, msg *signalling.Response) {
	for el := r.members.Front(); el != nil; el = el.Next() {
		if el.Key == from {
			continue
		}
		r.writeLocked(el.Value.sink, el.Key, msg)
	}
}

func (r *Room) writeLocked(sink routing.MessageSink, to signalling.ParticipantID, msg *signalling.Response) {
	if err := sink.WriteMessage(msg); err != nil {
		r.logger.Debugw("could not queue message", "participant", to, "type", msg.Type, "error", err)
	}
}
