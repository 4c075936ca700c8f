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
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ua-parser/uap-go/uaparser"
	"golang.org/x/exp/slices"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/routing"
	"github.com/livekit/meshroom/pkg/signalling"
	"github.com/livekit/meshroom/pkg/telemetry/prometheus"
	"github.com/livekit/meshroom/pkg/utils"
)

const closeWriteTimeout = time.Second

// SignalService upgrades /signal requests to websockets and pumps them through the relay.
type SignalService struct {
	conf     config.SignalConfig
	relay    *SignalRelay
	upgrader websocket.Upgrader
	uaParser *uaparser.Parser
}

func NewSignalService(conf *config.Config, relay *SignalRelay) *SignalService {
	s := &SignalService{
		conf:     conf.Signal,
		relay:    relay,
		uaParser: uaparser.NewFromSaved(),
	}

	origins := conf.Signal.AllowedOrigins
	s.upgrader.CheckOrigin = func(r *http.Request) bool {
		if len(origins) == 0 || slices.Contains(origins, "*") {
			return true
		}
		return slices.Contains(origins, r.Header.Get("Origin"))
	}
	return s
}

func (s *SignalService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	connID := utils.NewGuid(utils.ConnectionPrefix)
	client := s.uaParser.Parse(r.UserAgent())
	l := logger.GetLogger().WithValues(
		"connID", connID,
		"clientIP", GetClientIP(r),
	)

	// the upgrader has already replied on failure
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Warnw("could not upgrade to WS", err)
		return
	}
	if s.conf.ReadLimit > 0 {
		conn.SetReadLimit(s.conf.ReadLimit)
	}

	sigConn := NewWSSignalConnection(conn, s.conf.PingInterval, s.conf.PingTimeout)
	sink := routing.NewMessageChannel(s.conf.OutboundQueueSize)
	rc := s.relay.NewConnection(connID, sink, l)

	prometheus.ConnectionOpened()
	l.Infow("new client WS connected",
		"browser", client.UserAgent.Family,
		"os", client.Os.Family,
		"device", client.Device.Family,
	)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(sigConn, sink, l)
	}()

	reason := s.readLoop(sigConn, rc, l)

	s.relay.CloseConnection(rc)
	select {
	case <-writerDone:
	case <-time.After(closeWriteTimeout):
		// unblock a writer stuck on a dead peer
		_ = sigConn.Close()
		<-writerDone
	}

	if sink.Overflowed() {
		reason = "slow_consumer"
	}
	prometheus.ConnectionClosed(reason)
	l.Infow("WS connection closed", "reason", reason)
}

func (s *SignalService) readLoop(sigConn *WSSignalConnection, rc *RelayConnection, l logger.Logger) string {
	for {
		req, _, err := sigConn.ReadRequest()
		if err != nil {
			if errors.Is(err, ErrMalformedRequest) {
				l.Debugw("malformed request", "error", err)
				s.relay.write(rc, signalling.NewErrorResponse(signalling.ErrorCodeInvalidRequest, err.Error()))
				continue
			}
			if IsWebSocketCloseError(err) {
				return "client"
			}
			var netErr interface{ Timeout() bool }
			if errors.As(err, &netErr) && netErr.Timeout() {
				l.Infow("WS connection timed out")
				return "timeout"
			}
			l.Warnw("error reading from websocket", err)
			return "error"
		}
		if req == nil {
			continue
		}
		s.relay.HandleRequest(rc, req)
	}
}

// writeLoop delivers queued responses until the sink closes, then
// closes the websocket so the read loop ends too.
func (s *SignalService) writeLoop(sigConn *WSSignalConnection, sink *routing.MessageChannel, l logger.Logger) {
	defer func() {
		_ = sigConn.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeWriteTimeout),
		)
		_ = sigConn.Close()
	}()

	write := func(msgs []*signalling.Response) bool {
		for _, msg := range msgs {
			if _, err := sigConn.WriteResponse(msg); err != nil {
				if !IsWebSocketCloseError(err) {
					l.Warnw("error writing to websocket", err)
				}
				return false
			}
		}
		return true
	}

	for {
		select {
		case <-sink.Notify():
			if !write(sink.Drain()) {
				sink.Close()
				return
			}
		case <-sink.Done():
			if sink.Overflowed() {
				l.Infow("closing slow consumer", "queued", sink.Len())
				write([]*signalling.Response{
					signalling.NewErrorResponse(signalling.ErrorCodeSlowConsumer, "too many undelivered messages"),
				})
				return
			}
			write(sink.Drain())
			return
		}
	}
}
