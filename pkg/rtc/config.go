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

package rtc

import (
	"github.com/pion/ice/v2"
	"github.com/pion/webrtc/v3"

	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/signalling"
)

type WebRTCConfig struct {
	Configuration webrtc.Configuration
	SettingEngine webrtc.SettingEngine
}

func NewWebRTCConfig(conf *config.PeerConfig) (*WebRTCConfig, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	c := webrtc.Configuration{
		SDPSemantics: webrtc.SDPSemanticsUnifiedPlan,
		ICEServers:   make([]webrtc.ICEServer, 0, len(conf.ICEServers)),
	}
	for _, s := range conf.ICEServers {
		c.ICEServers = append(c.ICEServers, toWebRTCICEServer(s.URLs, s.Username, s.Credential))
	}

	s := webrtc.SettingEngine{}
	if conf.ICEPortRangeStart != 0 && conf.ICEPortRangeEnd != 0 {
		if err := s.SetEphemeralUDPPortRange(conf.ICEPortRangeStart, conf.ICEPortRangeEnd); err != nil {
			return nil, err
		}
	}
	// candidates are exchanged through the relay, .local names would not resolve for remote peers
	s.SetICEMulticastDNSMode(ice.MulticastDNSModeDisabled)

	return &WebRTCConfig{
		Configuration: c,
		SettingEngine: s,
	}, nil
}

// SetICEServers replaces the configured ICE servers with the ones handed out by the relay.
func (c *WebRTCConfig) SetICEServers(servers []signalling.ICEServer) {
	if len(servers) == 0 {
		return
	}
	iceServers := make([]webrtc.ICEServer, 0, len(servers))
	for _, s := range servers {
		iceServers = append(iceServers, toWebRTCICEServer(s.URLs, s.Username, s.Credential))
	}
	c.Configuration.ICEServers = iceServers
}

func toWebRTCICEServer(urls []string, username, credential string) webrtc.ICEServer {
	s := webrtc.ICEServer{
		URLs:     urls,
		Username: username,
	}
	if credential != "" {
		s.Credential = credential
		s.CredentialType = webrtc.ICECredentialTypePassword
	}
	return s
}
