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
	"sort"
	"sync"
	"time"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/routing"
	"github.com/livekit/meshroom/pkg/signalling"
	"github.com/livekit/meshroom/pkg/telemetry/prometheus"
)

type RegistryParams struct {
	// 0 for unlimited
	MaxParticipants uint32
	Logger          logger.Logger
}

type JoinParams struct {
	RoomID   signalling.RoomID
	Presence *signalling.Presence
	Sink     routing.MessageSink
	// returned to the joiner along with the existing members
	ICEServers []signalling.ICEServer
}

type RoomInfo struct {
	ID           signalling.RoomID      `json:"id"`
	CreatedAt    time.Time              `json:"created_at"`
	Participants []*signalling.Presence `json:"participants"`
}

// Registry tracks who is in which room. It is purely in memory, rooms appear on
// first join and disappear when their last member leaves.
type Registry struct {
	params RegistryParams

	// guards the map only, membership is guarded per room
	lock  sync.RWMutex
	rooms map[signalling.RoomID]*Room
}

func NewRegistry(params RegistryParams) *Registry {
	if params.Logger == nil {
		params.Logger = logger.GetLogger()
	}
	return &Registry{
		params: params,
		rooms:  make(map[signalling.RoomID]*Room),
	}
}

// Join registers the participant and queues the existing members snapshot on its sink,
// then notifies everyone else. It returns the snapshot, which excludes the joiner.
// Joining again with the same participant id replaces the previous record.
func (r *Registry) Join(p JoinParams) ([]*signalling.Presence, error) {
	if p.Presence == nil || p.Presence.ParticipantID == "" {
		return nil, ErrInvalidParticipant
	}
	for {
		room := r.getOrCreateRoom(p.RoomID)
		res, ok, err := room.join(p, r.params.MaxParticipants)
		if !ok {
			// emptied and closed between lookup and join
			continue
		}
		if err != nil {
			return nil, err
		}
		if res.added {
			prometheus.AddParticipant()
		}
		return res.existing, nil
	}
}

// Leave removes the participant, deleting the room once it is empty.
func (r *Registry) Leave(roomID signalling.RoomID, pID signalling.ParticipantID) bool {
	return r.leave(roomID, pID, nil)
}

// Release is Leave for a specific connection: it is a no-op when the participant
// has since been rebound to another sink.
func (r *Registry) Release(roomID signalling.RoomID, pID signalling.ParticipantID, sink routing.MessageSink) bool {
	return r.leave(roomID, pID, sink)
}

func (r *Registry) leave(roomID signalling.RoomID, pID signalling.ParticipantID, sink routing.MessageSink) bool {
	room := r.getRoom(roomID)
	if room == nil {
		return false
	}
	removed, empty := room.leave(pID, sink)
	if removed {
		prometheus.SubParticipant()
	}
	if empty {
		r.removeRoom(room)
	}
	return removed
}

// UpdatePresence merges patch into the participant's record and notifies the room.
// Returns false when the participant is not in the room.
func (r *Registry) UpdatePresence(roomID signalling.RoomID, pID signalling.ParticipantID, patch signalling.PresencePatch) (*signalling.Presence, bool) {
	room := r.getRoom(roomID)
	if room == nil {
		return nil, false
	}
	return room.updatePresence(pID, patch)
}

func (r *Registry) MembersExcept(roomID signalling.RoomID, pID signalling.ParticipantID) []*signalling.Presence {
	room := r.getRoom(roomID)
	if room == nil {
		return nil
	}
	return room.membersExcept(pID)
}

// Sink returns the connection a participant is bound to.
func (r *Registry) Sink(roomID signalling.RoomID, pID signalling.ParticipantID) (routing.MessageSink, bool) {
	room := r.getRoom(roomID)
	if room == nil {
		return nil, false
	}
	return room.sink(pID)
}

func (r *Registry) NumRooms() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.rooms)
}

// Rooms lists every room, oldest first.
func (r *Registry) Rooms() []RoomInfo {
	r.lock.RLock()
	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.lock.RUnlock()

	infos := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		info := room.info()
		if len(info.Participants) == 0 {
			continue
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

func (r *Registry) getRoom(roomID signalling.RoomID) *Room {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.rooms[roomID]
}

func (r *Registry) getOrCreateRoom(roomID signalling.RoomID) *Room {
	if room := r.getRoom(roomID); room != nil && !room.isClosed() {
		return room
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	room := r.rooms[roomID]
	if room != nil && room.isClosed() {
		// its last member left but removeRoom has not run yet
		prometheus.RoomEnded(time.Since(room.createdAt))
		room = nil
	}
	if room == nil {
		room = newRoom(roomID, r.params.Logger)
		r.rooms[roomID] = room
		prometheus.RoomStarted()
		r.params.Logger.Debugw("room created", "room", roomID)
	}
	return room
}

func (r *Registry) removeRoom(room *Room) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.rooms[room.id] != room {
		return
	}
	delete(r.rooms, room.id)
	prometheus.RoomEnded(time.Since(room.createdAt))
	r.params.Logger.Debugw("room closed", "room", room.id)
}
