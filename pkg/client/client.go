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

// Package client is the participant side of the signal transport. It joins a room on the relay
// and feeds room events to a peer connection manager.
package client

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/frostbyte73/core"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/thoas/go-funk"
	"go.uber.org/atomic"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/signalling"
	"github.com/livekit/meshroom/pkg/utils"
)

const (
	joinTimeout   = 10 * time.Second
	leaveTimeout  = time.Second
	signalPath    = "/signal"
	defaultScheme = "ws"
)

// RoomHandler receives room events, implemented by rtc.Manager.
type RoomHandler interface {
	HandleExistingMembers(members []*signalling.Presence) error
	HandlePeerJoined(p *signalling.Presence) error
	HandlePeerLeft(participantID signalling.ParticipantID)
	HandleSignal(from signalling.ParticipantID, payload signalling.Payload)
	HandlePresenceChanged(participantID signalling.ParticipantID, patch signalling.PresencePatch)
	ResetSessions(localID signalling.ParticipantID)
}

// ICEServerSetter takes the ICE servers handed out by the relay on join.
type ICEServerSetter interface {
	SetICEServers(servers []signalling.ICEServer)
}

type SignalClientParams struct {
	// relay address, http(s) and ws(s) urls are accepted
	URL         string
	RoomID      signalling.RoomID
	DisplayName string
	Encoding    signalling.Encoding
	// SignalReconnectAttempts and ReconnectBaseDelay bound rejoining after the connection drops
	Config config.PeerConfig
	// optional
	ICEServers ICEServerSetter
	Dialer     *websocket.Dialer
	Logger     logger.Logger
}

// SignalClient keeps one participant joined to a room. When the connection drops it rejoins
// with a fresh participant id, since the relay has already announced the old one as gone.
type SignalClient struct {
	params SignalClientParams
	logger logger.Logger

	participantID atomic.String
	connected     atomic.Bool

	lock     sync.Mutex
	handler  RoomHandler
	presence signalling.Presence

	wsLock sync.Mutex
	conn   *websocket.Conn

	onDisconnected func(err error)

	closed core.Fuse
	done   core.Fuse
}

func NewSignalClient(params SignalClientParams) *SignalClient {
	if params.Logger == nil {
		params.Logger = logger.GetLogger()
	}
	if params.Dialer == nil {
		params.Dialer = websocket.DefaultDialer
	}

	c := &SignalClient{
		params: params,
		logger: params.Logger.WithValues("room", params.RoomID),
		presence: signalling.Presence{
			DisplayName: params.DisplayName,
			CameraOn:    true,
			MicOn:       true,
		},
	}
	c.participantID.Store(utils.NewGuid(utils.ParticipantPrefix))
	return c
}

func (c *SignalClient) ParticipantID() signalling.ParticipantID {
	return signalling.ParticipantID(c.participantID.Load())
}

func (c *SignalClient) IsConnected() bool {
	return c.connected.Load()
}

// OnDisconnected is called once when the client gives up on the relay. It is not called after Close.
func (c *SignalClient) OnDisconnected(f func(err error)) {
	c.lock.Lock()
	c.onDisconnected = f
	c.lock.Unlock()
}

// Done is closed once the client stopped, by Close or after running out of reconnect attempts.
func (c *SignalClient) Done() <-chan struct{} {
	return c.done.Watch()
}

// Start joins the room and hands the existing members to handler before returning.
func (c *SignalClient) Start(ctx context.Context, handler RoomHandler) error {
	if c.closed.IsBroken() {
		return ErrClientClosed
	}

	c.lock.Lock()
	c.handler = handler
	c.lock.Unlock()

	conn, join, err := c.join(ctx)
	if err != nil {
		return err
	}
	c.setConn(conn)
	c.handleJoin(join)

	go c.run(conn)
	return nil
}

func (c *SignalClient) SendSignal(target signalling.ParticipantID, payload signalling.Payload) error {
	return c.send(&signalling.Request{
		Type: signalling.RequestRelay,
		Relay: &signalling.RelayRequest{
			Target:  target,
			Payload: payload,
		},
	})
}

// UpdatePresence publishes patch to the room. The patch is also kept for future rejoins.
func (c *SignalClient) UpdatePresence(patch signalling.PresencePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	c.lock.Lock()
	c.presence.Apply(patch)
	c.lock.Unlock()

	return c.send(&signalling.Request{
		Type:     signalling.RequestUpdatePresence,
		Presence: &patch,
	})
}

func (c *SignalClient) Presence() signalling.Presence {
	c.lock.Lock()
	defer c.lock.Unlock()
	p := c.presence
	p.ParticipantID = c.ParticipantID()
	return p
}

// Ping asks the relay for a pong, the round trip is logged when it arrives.
func (c *SignalClient) Ping() error {
	return c.send(&signalling.Request{
		Type: signalling.RequestPing,
		Ping: time.Now().UnixMilli(),
	})
}

// Close leaves the room and closes the connection. It is safe to call more than once.
func (c *SignalClient) Close() {
	if c.closed.IsBroken() {
		return
	}
	c.closed.Break()

	if c.connected.Load() {
		if err := c.send(&signalling.Request{Type: signalling.RequestLeave}); err != nil {
			c.logger.Debugw("could not send leave", "error", err)
		}
	}
	conn := c.setConn(nil)
	if conn != nil {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(leaveTimeout),
		)
		_ = conn.Close()
	}
	c.done.Break()
}

// ------------------------------------------------------------

func (c *SignalClient) signalURL() (string, error) {
	raw := c.params.URL
	if !strings.Contains(raw, "://") {
		raw = defaultScheme + "://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + signalPath
	return u.String(), nil
}

// join dials the relay and sends a join with the current participant id. It returns the
// connection together with the relay's existing members snapshot.
func (c *SignalClient) join(ctx context.Context) (*websocket.Conn, *signalling.JoinResponse, error) {
	u, err := c.signalURL()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, joinTimeout)
	defer cancel()

	conn, _, err := c.params.Dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not connect to relay")
	}

	presence := c.Presence()
	err = c.writeRequest(conn, &signalling.Request{
		Type: signalling.RequestJoin,
		Join: &signalling.JoinRequest{
			RoomID:   c.params.RoomID,
			Presence: presence,
			Protocol: signalling.ProtocolVersion,
		},
	})
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	deadline, _ := ctx.Deadline()
	_ = conn.SetReadDeadline(deadline)
	for {
		res, err := c.readResponse(conn)
		if err != nil {
			_ = conn.Close()
			return nil, nil, errors.Wrap(err, "no join response")
		}
		switch res.Type {
		case signalling.ResponseExistingMembers:
			if res.Join == nil {
				_ = conn.Close()
				return nil, nil, errors.Wrap(ErrUnexpectedResponse, "existing members without payload")
			}
			_ = conn.SetReadDeadline(time.Time{})
			return conn, res.Join, nil

		case signalling.ResponseError:
			_ = conn.Close()
			if res.Error == nil {
				return nil, nil, &JoinError{Code: signalling.ErrorCodeInvalidRequest}
			}
			return nil, nil, &JoinError{Code: res.Error.Code, Message: res.Error.Message}

		default:
			c.logger.Debugw("ignoring response before join", "type", res.Type)
		}
	}
}

func (c *SignalClient) handleJoin(join *signalling.JoinResponse) {
	c.connected.Store(true)
	c.logger.Infow("joined room",
		"participant", c.ParticipantID(),
		"members", funk.Map(join.Members, func(p *signalling.Presence) signalling.ParticipantID {
			return p.ParticipantID
		}),
	)

	if c.params.ICEServers != nil && len(join.ICEServers) != 0 {
		c.params.ICEServers.SetICEServers(join.ICEServers)
	}
	if h := c.getHandler(); h != nil {
		if err := h.HandleExistingMembers(join.Members); err != nil {
			c.logger.Warnw("could not connect to all existing members", err)
		}
	}
}

// run reads from conn until it fails, then rejoins.
func (c *SignalClient) run(conn *websocket.Conn) {
	for {
		err := c.readLoop(conn)
		c.connected.Store(false)
		if c.closed.IsBroken() {
			return
		}
		c.logger.Infow("lost connection to relay", "error", err)

		conn, err = c.rejoin()
		if err != nil {
			c.fail(err)
			return
		}
	}
}

func (c *SignalClient) readLoop(conn *websocket.Conn) error {
	for {
		res, err := c.readResponse(conn)
		if err != nil {
			return err
		}
		c.handleResponse(res)
	}
}

func (c *SignalClient) handleResponse(res *signalling.Response) {
	h := c.getHandler()
	if h == nil {
		return
	}

	switch res.Type {
	case signalling.ResponsePeerJoined:
		if res.Peer == nil {
			return
		}
		if err := h.HandlePeerJoined(res.Peer); err != nil {
			c.logger.Warnw("could not connect to new peer", err, "remote", res.Peer.ParticipantID)
		}

	case signalling.ResponsePeerLeft:
		h.HandlePeerLeft(res.ParticipantID)

	case signalling.ResponseSignal:
		if res.Signal == nil {
			return
		}
		h.HandleSignal(res.Signal.From, res.Signal.Payload)

	case signalling.ResponsePresenceChanged:
		if res.PresenceChanged == nil {
			return
		}
		h.HandlePresenceChanged(res.PresenceChanged.ParticipantID, res.PresenceChanged.Patch)

	case signalling.ResponseExistingMembers:
		if res.Join != nil {
			c.handleJoin(res.Join)
		}

	case signalling.ResponseError:
		if res.Error != nil {
			c.logger.Warnw("relay reported an error", nil, "code", res.Error.Code, "message", res.Error.Message)
		}

	case signalling.ResponsePong:
		c.logger.Debugw("pong", "rtt", time.Since(time.UnixMilli(res.Pong)))

	default:
		c.logger.Debugw("unknown response", "type", res.Type)
	}
}

// rejoin resets the peer sessions and joins again under a fresh participant id, with linear
// backoff between attempts.
func (c *SignalClient) rejoin() (*websocket.Conn, error) {
	c.setConn(nil)

	attempts := c.params.Config.SignalReconnectAttempts
	if attempts <= 0 {
		return nil, ErrNotConnected
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-c.closed.Watch():
			return nil, ErrClientClosed
		case <-time.After(c.params.Config.ReconnectBaseDelay * time.Duration(attempt)):
		}

		id := utils.NewGuid(utils.ParticipantPrefix)
		c.participantID.Store(id)
		if h := c.getHandler(); h != nil {
			h.ResetSessions(signalling.ParticipantID(id))
		}

		c.logger.Infow("rejoining room", "participant", id, "attempt", attempt)
		conn, join, err := c.join(context.Background())
		if err != nil {
			lastErr = err
			c.logger.Warnw("could not rejoin room", err, "attempt", attempt)
			continue
		}
		if c.closed.IsBroken() {
			_ = conn.Close()
			return nil, ErrClientClosed
		}
		c.setConn(conn)
		c.handleJoin(join)
		return conn, nil
	}
	return nil, lastErr
}

func (c *SignalClient) fail(err error) {
	c.logger.Warnw("giving up on relay", err)
	if h := c.getHandler(); h != nil {
		h.ResetSessions("")
	}

	c.lock.Lock()
	onDisconnected := c.onDisconnected
	c.lock.Unlock()

	c.done.Break()
	if onDisconnected != nil && !c.closed.IsBroken() {
		onDisconnected(err)
	}
}

func (c *SignalClient) getHandler() RoomHandler {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.handler
}

// setConn swaps the connection used for sending and returns the previous one.
func (c *SignalClient) setConn(conn *websocket.Conn) *websocket.Conn {
	c.wsLock.Lock()
	defer c.wsLock.Unlock()
	prev := c.conn
	c.conn = conn
	return prev
}

func (c *SignalClient) send(req *signalling.Request) error {
	c.wsLock.Lock()
	conn := c.conn
	c.wsLock.Unlock()

	if conn == nil || !c.connected.Load() {
		return ErrNotConnected
	}
	return c.writeRequest(conn, req)
}

func (c *SignalClient) writeRequest(conn *websocket.Conn, req *signalling.Request) error {
	data, err := c.params.Encoding.Marshal(req)
	if err != nil {
		return err
	}
	msgType := websocket.BinaryMessage
	if c.params.Encoding == signalling.EncodingJSON {
		msgType = websocket.TextMessage
	}

	c.wsLock.Lock()
	defer c.wsLock.Unlock()
	return conn.WriteMessage(msgType, data)
}

func (c *SignalClient) readResponse(conn *websocket.Conn) (*signalling.Response, error) {
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		var encoding signalling.Encoding
		switch messageType {
		case websocket.BinaryMessage:
			encoding = signalling.EncodingMsgpack
		case websocket.TextMessage:
			encoding = signalling.EncodingJSON
		default:
			continue
		}

		res := &signalling.Response{}
		if err := encoding.Unmarshal(payload, res); err != nil {
			c.logger.Debugw("could not decode response", "error", err)
			continue
		}
		return res, nil
	}
}
