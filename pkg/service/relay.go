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
	"sync"
	"time"

	goversion "github.com/hashicorp/go-version"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/rooms"
	"github.com/livekit/meshroom/pkg/routing"
	"github.com/livekit/meshroom/pkg/signalling"
	"github.com/livekit/meshroom/pkg/telemetry/prometheus"
)

type connState int

const (
	connUnbound connState = iota
	connBound
	connClosed
)

func (s connState) String() string {
	switch s {
	case connUnbound:
		return "UNBOUND"
	case connBound:
		return "BOUND"
	case connClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("%d", int(s))
	}
}

type departedKey struct {
	roomID signalling.RoomID
	pID    signalling.ParticipantID
}

// RelayConnection is the relay's view of one signal transport.
type RelayConnection struct {
	id     string
	sink   routing.MessageSink
	logger logger.Logger

	lock     sync.Mutex
	state    connState
	roomID   signalling.RoomID
	pID      signalling.ParticipantID
	joinedAt time.Time
}

func (c *RelayConnection) ID() string {
	return c.id
}

// Binding returns the room and participant the connection is bound to, if any.
func (c *RelayConnection) Binding() (signalling.RoomID, signalling.ParticipantID, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.roomID, c.pID, c.state == connBound
}

// SignalRelay admits connections into rooms and forwards handshake payloads
// between participants of the same room. It never inspects payloads.
type SignalRelay struct {
	roomConf   config.RoomConfig
	registry   *rooms.Registry
	iceServers *ICEServerProvider
	constraint goversion.Constraints
	departed   *lru.Cache[departedKey, time.Time]
	logger     logger.Logger
}

func NewSignalRelay(conf *config.Config, registry *rooms.Registry, iceServers *ICEServerProvider) (*SignalRelay, error) {
	r := &SignalRelay{
		roomConf:   conf.Room,
		registry:   registry,
		iceServers: iceServers,
		logger:     logger.GetLogger().WithValues("component", "relay"),
	}

	if conf.Signal.ProtocolConstraint != "" {
		constraint, err := goversion.NewConstraint(conf.Signal.ProtocolConstraint)
		if err != nil {
			return nil, errors.Wrap(err, "invalid protocol constraint")
		}
		r.constraint = constraint
	}

	size := conf.Signal.DepartedCacheSize
	if size <= 0 {
		size = 1
	}
	departed, err := lru.New[departedKey, time.Time](size)
	if err != nil {
		return nil, err
	}
	r.departed = departed

	return r, nil
}

func (r *SignalRelay) NewConnection(id string, sink routing.MessageSink, l logger.Logger) *RelayConnection {
	if l == nil {
		l = r.logger
	}
	return &RelayConnection{
		id:     id,
		sink:   sink,
		logger: l,
	}
}

// HandleRequest processes one request. Problems are reported to the client as
// error responses, the connection stays usable.
func (r *SignalRelay) HandleRequest(c *RelayConnection, req *signalling.Request) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state == connClosed {
		return
	}

	if err := req.Validate(); err != nil {
		r.reject(c, req.Type, signalling.ErrorCodeInvalidRequest, err)
		return
	}

	switch req.Type {
	case signalling.RequestJoin:
		r.handleJoin(c, req.Join)
	case signalling.RequestPing:
		r.write(c, &signalling.Response{Type: signalling.ResponsePong, Pong: req.Ping})
		prometheus.RecordSignal(string(req.Type), prometheus.SignalRelayed)
	default:
		if !r.isBoundLocked(c) {
			r.reject(c, req.Type, signalling.ErrorCodeNotJoined, ErrNotJoined)
			return
		}
		switch req.Type {
		case signalling.RequestRelay:
			r.handleRelay(c, req.Relay)
		case signalling.RequestUpdatePresence:
			r.handleUpdatePresence(c, *req.Presence)
		case signalling.RequestLeave:
			r.leaveLocked(c)
			prometheus.RecordSignal(string(req.Type), prometheus.SignalRelayed)
		}
	}
}

// CloseConnection releases whatever the connection holds. Safe to call more than once.
func (r *SignalRelay) CloseConnection(c *RelayConnection) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state == connClosed {
		return
	}
	if c.state == connBound {
		r.leaveLocked(c)
	}
	c.state = connClosed
	c.sink.Close()
}

func (r *SignalRelay) handleJoin(c *RelayConnection, join *signalling.JoinRequest) {
	if err := r.validateJoin(join); err != nil {
		code := signalling.ErrorCodeInvalidRequest
		if errors.Is(err, ErrUnsupportedProtocol) {
			code = signalling.ErrorCodeUnsupportedProtocol
		}
		r.reject(c, signalling.RequestJoin, code, err)
		return
	}

	pID := join.Presence.ParticipantID
	if c.state == connBound && (c.roomID != join.RoomID || c.pID != pID) {
		r.leaveLocked(c)
	}

	presence := join.Presence
	existing, err := r.registry.Join(rooms.JoinParams{
		RoomID:     join.RoomID,
		Presence:   &presence,
		Sink:       c.sink,
		ICEServers: r.iceServers.ICEServers(pID),
	})
	if err != nil {
		code := signalling.ErrorCodeInvalidRequest
		if errors.Is(err, rooms.ErrRoomFull) {
			code = signalling.ErrorCodeRoomFull
		}
		r.reject(c, signalling.RequestJoin, code, err)
		return
	}

	if c.state != connBound {
		c.joinedAt = time.Now()
	}
	c.state = connBound
	c.roomID = join.RoomID
	c.pID = pID
	r.departed.Remove(departedKey{roomID: join.RoomID, pID: pID})

	c.logger.Infow("participant joined",
		"room", join.RoomID,
		"participant", pID,
		"existingMembers", len(existing),
	)
	prometheus.RecordSignal(string(signalling.RequestJoin), prometheus.SignalRelayed)
}

func (r *SignalRelay) validateJoin(join *signalling.JoinRequest) error {
	if join.RoomID == "" {
		return ErrNoRoomID
	}
	if limit := r.roomConf.MaxRoomIDLength; limit > 0 && len(join.RoomID) > limit {
		return ErrRoomIDExceedsLimits
	}
	if join.Presence.ParticipantID == "" {
		return ErrNoParticipantID
	}
	if limit := r.roomConf.MaxParticipantIDLength; limit > 0 && len(join.Presence.ParticipantID) > limit {
		return ErrParticipantIDExceedsLimit
	}
	if limit := r.roomConf.MaxDisplayNameLength; limit > 0 && len(join.Presence.DisplayName) > limit {
		return ErrDisplayNameExceedsLimits
	}
	if r.constraint != nil {
		protocol := join.Protocol
		if protocol == "" {
			protocol = signalling.ProtocolVersion
		}
		v, err := goversion.NewVersion(protocol)
		if err != nil || !r.constraint.Check(v) {
			return errors.Wrapf(ErrUnsupportedProtocol, "protocol %q", protocol)
		}
	}
	return nil
}

func (r *SignalRelay) handleRelay(c *RelayConnection, relay *signalling.RelayRequest) {
	target := relay.Target
	if target == c.pID {
		c.logger.Debugw("dropping signal addressed to self", "participant", c.pID)
		prometheus.RecordSignal(string(signalling.RequestRelay), prometheus.SignalDropped)
		return
	}

	sink, ok := r.registry.Sink(c.roomID, target)
	if !ok {
		departedAt, departed := r.departed.Peek(departedKey{roomID: c.roomID, pID: target})
		values := []interface{}{"room", c.roomID, "from", c.pID, "target", target, "recentlyDeparted", departed}
		if departed {
			values = append(values, "departedAgo", time.Since(departedAt))
		}
		c.logger.Debugw("dropping signal for unknown participant", values...)
		prometheus.RecordSignal(string(signalling.RequestRelay), prometheus.SignalDropped)
		return
	}

	err := sink.WriteMessage(&signalling.Response{
		Type: signalling.ResponseSignal,
		Signal: &signalling.SignalMessage{
			From:    c.pID,
			Payload: relay.Payload,
		},
	})
	if err != nil {
		c.logger.Debugw("could not relay signal", "target", target, "error", err)
		prometheus.RecordSignal(string(signalling.RequestRelay), prometheus.SignalDropped)
		return
	}
	prometheus.RecordSignal(string(signalling.RequestRelay), prometheus.SignalRelayed)
}

func (r *SignalRelay) handleUpdatePresence(c *RelayConnection, patch signalling.PresencePatch) {
	if patch.DisplayName != nil {
		if limit := r.roomConf.MaxDisplayNameLength; limit > 0 && len(*patch.DisplayName) > limit {
			r.reject(c, signalling.RequestUpdatePresence, signalling.ErrorCodeInvalidRequest, ErrDisplayNameExceedsLimits)
			return
		}
	}
	if patch.IsEmpty() {
		return
	}
	if _, ok := r.registry.UpdatePresence(c.roomID, c.pID, patch); !ok {
		r.reject(c, signalling.RequestUpdatePresence, signalling.ErrorCodeNotJoined, ErrNotJoined)
		return
	}
	prometheus.RecordSignal(string(signalling.RequestUpdatePresence), prometheus.SignalRelayed)
}

// isBoundLocked also detects a connection whose participant has since joined
// from another transport, which leaves this one unbound.
func (r *SignalRelay) isBoundLocked(c *RelayConnection) bool {
	if c.state != connBound {
		return false
	}
	sink, ok := r.registry.Sink(c.roomID, c.pID)
	if !ok || sink != c.sink {
		c.state = connUnbound
		return false
	}
	return true
}

func (r *SignalRelay) leaveLocked(c *RelayConnection) {
	if r.registry.Release(c.roomID, c.pID, c.sink) {
		r.departed.Add(departedKey{roomID: c.roomID, pID: c.pID}, time.Now())
		c.logger.Infow("participant left",
			"room", c.roomID,
			"participant", c.pID,
			"duration", time.Since(c.joinedAt),
		)
	}
	c.state = connUnbound
	c.roomID = ""
	c.pID = ""
}

func (r *SignalRelay) reject(c *RelayConnection, reqType signalling.RequestType, code string, err error) {
	c.logger.Debugw("rejecting request", "type", reqType, "code", code, "error", err)
	r.write(c, signalling.NewErrorResponse(code, err.Error()))
	prometheus.RecordSignal(string(reqType), prometheus.SignalRejected)
}

func (r *SignalRelay) write(c *RelayConnection, msg *signalling.Response) {
	if err := c.sink.WriteMessage(msg); err != nil {
		c.logger.Debugw("could not queue response", "type", msg.Type, "error", err)
	}
}
