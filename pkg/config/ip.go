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

package config

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/pion/stun"
	"github.com/pkg/errors"
)

const externalIPTimeout = 5 * time.Second

var DefaultStunServers = []string{
	"stun.l.google.com:19302",
	"stun1.l.google.com:19302",
}

func (t *TURNConfig) determineIP() (string, error) {
	if t.UseExternalIP {
		stunServers := t.STUNServers
		if len(stunServers) == 0 {
			stunServers = DefaultStunServers
		}
		var err error
		for _, server := range stunServers {
			var ip string
			ctx, cancel := context.WithTimeout(context.Background(), externalIPTimeout)
			ip, err = GetExternalIP(ctx, server)
			cancel()
			if err == nil {
				return ip, nil
			}
		}
		return "", errors.Errorf("could not resolve external IP: %v", err)
	}

	// use local ip instead
	addresses, err := GetLocalIPAddresses(false)
	if len(addresses) > 0 {
		return addresses[0], err
	}
	return "", err
}

func GetLocalIPAddresses(includeLoopback bool) ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var loopBacks, addresses []string
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP.To4()
			if ip == nil {
				continue
			}
			if ip.IsLoopback() {
				loopBacks = append(loopBacks, ip.String())
			} else {
				addresses = append(addresses, ip.String())
			}
		}
	}

	if includeLoopback {
		addresses = append(addresses, loopBacks...)
	}
	if len(addresses) > 0 {
		return addresses, nil
	}
	if len(loopBacks) > 0 {
		return loopBacks, nil
	}
	return nil, fmt.Errorf("could not find local IP address")
}

// GetExternalIP asks a STUN server for the reflexive IPv4 address of this host.
func GetExternalIP(ctx context.Context, stunServer string) (string, error) {
	c, err := stun.Dial("udp4", stunServer)
	if err != nil {
		return "", err
	}
	defer c.Close()

	message, err := stun.Build(stun.TransactionID, stun.BindingRequest)
	if err != nil {
		return "", err
	}

	type result struct {
		ip  string
		err error
	}
	resChan := make(chan result, 1)
	err = c.Start(message, func(res stun.Event) {
		if res.Error != nil {
			resChan <- result{err: res.Error}
			return
		}

		var xorAddr stun.XORMappedAddress
		if err := xorAddr.GetFrom(res.Message); err != nil {
			resChan <- result{err: err}
			return
		}
		if ip := xorAddr.IP.To4(); ip != nil {
			resChan <- result{ip: ip.String()}
		} else {
			resChan <- result{err: errors.New("stun server returned a non IPv4 address")}
		}
	})
	if err != nil {
		return "", err
	}

	select {
	case res := <-resChan:
		return res.ip, res.err
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), "could not determine public IP")
	}
}
