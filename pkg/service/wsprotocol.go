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
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/signalling"
)

var ErrMalformedRequest = errors.New("malformed request")

type WebsocketClient interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

type WSSignalConnection struct {
	conn     WebsocketClient
	mu       sync.Mutex
	encoding signalling.Encoding
}

// NewWSSignalConnection wraps conn and starts pinging it every pingInterval.
// A client that answers no ping within pingInterval+pingTimeout is considered gone.
func NewWSSignalConnection(conn WebsocketClient, pingInterval, pingTimeout time.Duration) *WSSignalConnection {
	wsc := &WSSignalConnection{
		conn:     conn,
		encoding: signalling.EncodingMsgpack,
	}
	if pingInterval > 0 {
		readTimeout := pingInterval + pingTimeout
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readTimeout))
		})
		go wsc.pingWorker(pingInterval, pingTimeout)
	}
	return wsc
}

func (c *WSSignalConnection) Close() error {
	return c.conn.Close()
}

func (c *WSSignalConnection) Encoding() signalling.Encoding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.encoding
}

func (c *WSSignalConnection) SetReadDeadline(deadline time.Time) error {
	return c.conn.SetReadDeadline(deadline)
}

// ReadRequest returns nil without error for frames that carry no request.
func (c *WSSignalConnection) ReadRequest() (*signalling.Request, int, error) {
	messageType, payload, err := c.conn.ReadMessage()
	if err != nil {
		return nil, 0, err
	}

	var encoding signalling.Encoding
	switch messageType {
	case websocket.BinaryMessage:
		encoding = signalling.EncodingMsgpack
	case websocket.TextMessage:
		encoding = signalling.EncodingJSON
	default:
		logger.Debugw("unsupported message", "message", messageType)
		return nil, len(payload), nil
	}

	// answer in whatever the client last spoke
	c.mu.Lock()
	c.encoding = encoding
	c.mu.Unlock()

	msg := &signalling.Request{}
	if err := encoding.Unmarshal(payload, msg); err != nil {
		return nil, len(payload), fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return msg, len(payload), nil
}

func (c *WSSignalConnection) WriteResponse(msg *signalling.Response) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgType := websocket.BinaryMessage
	if c.encoding == signalling.EncodingJSON {
		msgType = websocket.TextMessage
	}
	payload, err := c.encoding.Marshal(msg)
	if err != nil {
		return 0, err
	}

	return len(payload), c.conn.WriteMessage(msgType, payload)
}

func (c *WSSignalConnection) pingWorker(interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		err := c.conn.WriteControl(websocket.PingMessage, []byte(""), time.Now().Add(timeout))
		if err != nil {
			return
		}
	}
}

// IsWebSocketCloseError checks that error is normal/expected closure
func IsWebSocketCloseError(err error) bool {
	return errors.Is(err, io.EOF) ||
		strings.HasSuffix(err.Error(), "use of closed network connection") ||
		strings.HasSuffix(err.Error(), "connection reset by peer") ||
		websocket.IsCloseError(
			err,
			websocket.CloseAbnormalClosure,
			websocket.CloseGoingAway,
			websocket.CloseNormalClosure,
			websocket.CloseNoStatusReceived,
		)
}
