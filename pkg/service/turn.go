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
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/jxskiss/base62"
	"github.com/pion/turn/v2"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/config"
	serverlogger "github.com/livekit/meshroom/pkg/logger"
	"github.com/livekit/meshroom/pkg/signalling"
)

const (
	allocateRetries = 50
)

func NewTurnServer(conf *config.Config, authHandler turn.AuthHandler) (*turn.Server, error) {
	turnConf := conf.TURN
	if !turnConf.Enabled {
		return nil, nil
	}

	if turnConf.UDPPort <= 0 {
		return nil, ErrInvalidTURNPorts
	}

	serverConfig := turn.ServerConfig{
		Realm:         turnConf.Realm,
		AuthHandler:   authHandler,
		LoggerFactory: serverlogger.NewLoggerFactory(logger.GetLogger(), conf.Logging.PionLevel),
	}
	relayAddrGen := &turn.RelayAddressGeneratorPortRange{
		RelayAddress: net.ParseIP(turnConf.RelayIP),
		Address:      "0.0.0.0",
		MinPort:      turnConf.RelayPortRangeStart,
		MaxPort:      turnConf.RelayPortRangeEnd,
		MaxRetries:   allocateRetries,
	}

	udpListener, err := net.ListenPacket("udp4", "0.0.0.0:"+strconv.Itoa(turnConf.UDPPort))
	if err != nil {
		return nil, fmt.Errorf("could not listen on TURN UDP port: %w", err)
	}
	serverConfig.PacketConnConfigs = append(serverConfig.PacketConnConfigs, turn.PacketConnConfig{
		PacketConn:            udpListener,
		RelayAddressGenerator: relayAddrGen,
	})

	logger.Infow("Starting TURN server",
		"turn.relay_range_start", turnConf.RelayPortRangeStart,
		"turn.relay_range_end", turnConf.RelayPortRangeEnd,
		"turn.portUDP", turnConf.UDPPort,
		"turn.relayIP", turnConf.RelayIP,
	)
	return turn.NewServer(serverConfig)
}

func getTURNAuthHandlerFunc(handler *TURNAuthHandler) turn.AuthHandler {
	return handler.HandleAuth
}

// TURNAuthHandler derives per participant TURN credentials from a shared secret,
// so the relay keeps no credential state.
type TURNAuthHandler struct {
	realm  string
	secret []byte
}

func NewTURNAuthHandler(conf *config.Config) *TURNAuthHandler {
	return &TURNAuthHandler{
		realm:  conf.TURN.Realm,
		secret: []byte(conf.TURN.Secret),
	}
}

func (h *TURNAuthHandler) CreateUsername(pID signalling.ParticipantID) string {
	return base62.EncodeToString([]byte(fmt.Sprintf("%s|%s", h.realm, pID)))
}

func (h *TURNAuthHandler) ParseUsername(username string) (signalling.ParticipantID, error) {
	decoded, err := base62.DecodeString(username)
	if err != nil {
		return "", err
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[0] != h.realm || parts[1] == "" {
		return "", ErrInvalidTURNUsername
	}
	return signalling.ParticipantID(parts[1]), nil
}

func (h *TURNAuthHandler) CreatePassword(pID signalling.ParticipantID) string {
	mac := hmac.New(sha256.New, h.secret)
	_, _ = mac.Write([]byte(pID))
	return base62.EncodeToString(mac.Sum(nil))
}

func (h *TURNAuthHandler) HandleAuth(username, realm string, srcAddr net.Addr) (key []byte, ok bool) {
	pID, err := h.ParseUsername(username)
	if err != nil {
		logger.Debugw("rejecting TURN username", "username", username, "remote", srcAddr, "error", err)
		return nil, false
	}
	return turn.GenerateAuthKey(username, h.realm, h.CreatePassword(pID)), true
}

// ICEServerProvider builds the ICE server list the relay hands to each joining participant.
type ICEServerProvider struct {
	static   []signalling.ICEServer
	turnURLs []string
	auth     *TURNAuthHandler
}

func NewICEServerProvider(conf *config.Config, auth *TURNAuthHandler) *ICEServerProvider {
	p := &ICEServerProvider{}
	for _, s := range conf.Peer.ICEServers {
		p.static = append(p.static, signalling.ICEServer{
			URLs:       s.URLs,
			Username:   s.Username,
			Credential: s.Credential,
		})
	}

	if conf.TURN.Enabled && conf.TURN.UDPPort > 0 {
		host := conf.TURN.Domain
		if host == "" {
			host = conf.TURN.RelayIP
		}
		if host != "" {
			p.turnURLs = []string{fmt.Sprintf("turn:%s?transport=udp", net.JoinHostPort(host, strconv.Itoa(conf.TURN.UDPPort)))}
			p.auth = auth
		}
	}
	return p
}

func (p *ICEServerProvider) ICEServers(pID signalling.ParticipantID) []signalling.ICEServer {
	servers := make([]signalling.ICEServer, 0, len(p.static)+1)
	servers = append(servers, p.static...)
	if p.auth != nil {
		servers = append(servers, signalling.ICEServer{
			URLs:       p.turnURLs,
			Username:   p.auth.CreateUsername(pID),
			Credential: p.auth.CreatePassword(pID),
		})
	}
	return servers
}
