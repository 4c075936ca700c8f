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
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pion/stun"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/livekit/protocol/logger"
)

const (
	generatedCLIFlagUsage = "generated"
	envVarPrefix          = "MESHROOM"
)

var (
	ErrInvalidICEServer     = errors.New("invalid ice server url")
	ErrInvalidPortRange     = errors.New("invalid port range")
	ErrTURNSecretRequired   = errors.New("turn.secret is required when the embedded TURN server is enabled")
	ErrInvalidReconnectPlan = errors.New("peer.reconnect_base_delay must be positive when reconnects are enabled")

	durationType = reflect.TypeOf(time.Duration(0))
)

type Config struct {
	Port           uint32        `yaml:"port,omitempty"`
	BindAddresses  []string      `yaml:"bind_addresses,omitempty"`
	PrometheusPort uint32        `yaml:"prometheus_port,omitempty"`
	Signal         SignalConfig  `yaml:"signal,omitempty"`
	Room           RoomConfig    `yaml:"room,omitempty"`
	TURN           TURNConfig    `yaml:"turn,omitempty"`
	Peer           PeerConfig    `yaml:"peer,omitempty"`
	Logging        LoggingConfig `yaml:"logging,omitempty"`

	Development bool `yaml:"development,omitempty"`
}

type SignalConfig struct {
	// interval between websocket pings sent to each client
	PingInterval time.Duration `yaml:"ping_interval,omitempty"`
	PingTimeout  time.Duration `yaml:"ping_timeout,omitempty"`
	// number of responses that may wait for a slow client before it is disconnected
	OutboundQueueSize int `yaml:"outbound_queue_size,omitempty"`
	// max size in bytes of a single inbound message
	ReadLimit int64 `yaml:"read_limit,omitempty"`
	// number of recently departed participants remembered for diagnostics
	DepartedCacheSize int `yaml:"departed_cache_size,omitempty"`
	// version constraint clients must satisfy, e.g. ">= 1, < 2"
	ProtocolConstraint string   `yaml:"protocol_constraint,omitempty"`
	AllowedOrigins     []string `yaml:"allowed_origins,omitempty"`
}

type RoomConfig struct {
	// 0 for unlimited
	MaxParticipants        uint32 `yaml:"max_participants,omitempty"`
	MaxRoomIDLength        int    `yaml:"max_room_id_length,omitempty"`
	MaxParticipantIDLength int    `yaml:"max_participant_id_length,omitempty"`
	MaxDisplayNameLength   int    `yaml:"max_display_name_length,omitempty"`
}

type TURNConfig struct {
	Enabled             bool   `yaml:"enabled,omitempty"`
	Domain              string `yaml:"domain,omitempty"`
	UDPPort             int    `yaml:"udp_port,omitempty"`
	RelayPortRangeStart uint16 `yaml:"relay_range_start,omitempty"`
	RelayPortRangeEnd   uint16 `yaml:"relay_range_end,omitempty"`
	Realm               string `yaml:"realm,omitempty"`
	// shared secret used to derive per participant credentials
	Secret string `yaml:"secret,omitempty"`
	// address advertised for relayed candidates, discovered when empty
	RelayIP       string   `yaml:"relay_ip,omitempty"`
	UseExternalIP bool     `yaml:"use_external_ip,omitempty"`
	STUNServers   []string `yaml:"stun_servers,omitempty"`
}

// PeerConfig holds the policy used by participants to maintain their peer connections.
type PeerConfig struct {
	MaxReconnectAttempts  int           `yaml:"max_reconnect_attempts,omitempty"`
	ReconnectBaseDelay    time.Duration `yaml:"reconnect_base_delay,omitempty"`
	NegotiationTimeout    time.Duration `yaml:"negotiation_timeout,omitempty"`
	QualitySampleInterval time.Duration `yaml:"quality_sample_interval,omitempty"`
	// fraction of lost packets above which a connection is reported as poor
	PoorQualityLossRatio float64       `yaml:"poor_quality_loss_ratio,omitempty"`
	StatusDebounce       time.Duration `yaml:"status_debounce,omitempty"`
	ICEServers           []ICEServer   `yaml:"ice_servers,omitempty"`
	ICEPortRangeStart    uint16        `yaml:"ice_port_range_start,omitempty"`
	ICEPortRangeEnd      uint16        `yaml:"ice_port_range_end,omitempty"`
	// attempts to re-establish a lost signal connection, 0 disables
	SignalReconnectAttempts int `yaml:"signal_reconnect_attempts,omitempty"`
}

type ICEServer struct {
	URLs       []string `yaml:"urls,omitempty"`
	Username   string   `yaml:"username,omitempty"`
	Credential string   `yaml:"credential,omitempty"`
}

type LoggingConfig struct {
	logger.Config `yaml:",inline"`
	PionLevel     string `yaml:"pion_level,omitempty"`
}

var DefaultConfig = Config{
	Port: 7880,
	Signal: SignalConfig{
		PingInterval:       10 * time.Second,
		PingTimeout:        2 * time.Second,
		OutboundQueueSize:  256,
		ReadLimit:          64 * 1024,
		DepartedCacheSize:  1024,
		ProtocolConstraint: ">= 1",
	},
	Room: RoomConfig{
		MaxRoomIDLength:        256,
		MaxParticipantIDLength: 256,
		MaxDisplayNameLength:   128,
	},
	TURN: TURNConfig{
		Enabled: false,
		Realm:   "meshroom",
	},
	Peer: PeerConfig{
		MaxReconnectAttempts:    3,
		ReconnectBaseDelay:      2 * time.Second,
		NegotiationTimeout:      15 * time.Second,
		QualitySampleInterval:   5 * time.Second,
		PoorQualityLossRatio:    0.1,
		StatusDebounce:          250 * time.Millisecond,
		SignalReconnectAttempts: 3,
		ICEServers: []ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	},
	Logging: LoggingConfig{
		PionLevel: "error",
	},
}

func NewConfig(confString string, strictMode bool, c *cli.Context, baseFlags []cli.Flag) (*Config, error) {
	// start with defaults
	marshalled, err := yaml.Marshal(&DefaultConfig)
	if err != nil {
		return nil, err
	}

	var conf Config
	err = yaml.Unmarshal(marshalled, &conf)
	if err != nil {
		return nil, err
	}

	if confString != "" {
		decoder := yaml.NewDecoder(strings.NewReader(confString))
		decoder.KnownFields(strictMode)
		if err := decoder.Decode(&conf); err != nil {
			return nil, fmt.Errorf("could not parse config: %v", err)
		}
	}

	if c != nil {
		if err := conf.updateFromCLI(c, baseFlags); err != nil {
			return nil, err
		}
	}

	if err := conf.Peer.Validate(); err != nil {
		return nil, fmt.Errorf("could not validate peer config: %v", err)
	}

	// set defaults for Turn relay if none are set
	if conf.TURN.RelayPortRangeStart == 0 || conf.TURN.RelayPortRangeEnd == 0 {
		// to make it easier to run in dev mode/docker, default to two ports
		if conf.Development {
			conf.TURN.RelayPortRangeStart = 30000
			conf.TURN.RelayPortRangeEnd = 30002
		} else {
			conf.TURN.RelayPortRangeStart = 30000
			conf.TURN.RelayPortRangeEnd = 40000
		}
	}
	if conf.TURN.Enabled {
		if conf.TURN.Secret == "" {
			return nil, ErrTURNSecretRequired
		}
		if conf.TURN.UDPPort == 0 {
			conf.TURN.UDPPort = 3478
		}
		if conf.TURN.RelayIP == "" {
			if conf.TURN.RelayIP, err = conf.TURN.determineIP(); err != nil {
				return nil, err
			}
		}
	}

	if conf.Logging.Level == "" && conf.Development {
		conf.Logging.Level = "debug"
	}
	if conf.Logging.PionLevel != "" {
		if conf.Logging.ComponentLevels == nil {
			conf.Logging.ComponentLevels = map[string]string{}
		}
		conf.Logging.ComponentLevels["pion"] = conf.Logging.PionLevel
	}

	return &conf, nil
}

// Validate checks ICE server urls and port ranges, the only settings pion would otherwise reject late.
func (p *PeerConfig) Validate() error {
	for _, s := range p.ICEServers {
		for _, u := range s.URLs {
			if _, err := stun.ParseURI(u); err != nil {
				return errors.Wrapf(ErrInvalidICEServer, "%s: %v", u, err)
			}
		}
	}
	if p.ICEPortRangeStart > p.ICEPortRangeEnd {
		return errors.Wrapf(ErrInvalidPortRange, "%d-%d", p.ICEPortRangeStart, p.ICEPortRangeEnd)
	}
	if p.MaxReconnectAttempts > 0 && p.ReconnectBaseDelay <= 0 {
		return ErrInvalidReconnectPlan
	}
	return nil
}

// ExpandPath resolves env vars and ~ in a path taken from the config or the command line.
func ExpandPath(path string) (string, error) {
	return homedir.Expand(os.ExpandEnv(path))
}

type configNode struct {
	TypeNode  reflect.Value
	TagPrefix string
}

func (conf *Config) ToCLIFlagNames(existingFlags []cli.Flag) map[string]reflect.Value {
	existingFlagNames := map[string]bool{}
	for _, flag := range existingFlags {
		for _, flagName := range flag.Names() {
			existingFlagNames[flagName] = true
		}
	}

	flagNames := map[string]reflect.Value{}
	var currNode configNode
	nodes := []configNode{{reflect.ValueOf(conf).Elem(), ""}}
	for len(nodes) > 0 {
		currNode, nodes = nodes[0], nodes[1:]
		for i := 0; i < currNode.TypeNode.NumField(); i++ {
			// inspect yaml tag from struct field to get path
			field := currNode.TypeNode.Type().Field(i)
			yamlTagArray := strings.SplitN(field.Tag.Get("yaml"), ",", 2)
			yamlTag := yamlTagArray[0]
			isInline := false
			if len(yamlTagArray) > 1 && yamlTagArray[1] == "inline" {
				isInline = true
			}
			if (yamlTag == "" && (!isInline || currNode.TagPrefix == "")) || yamlTag == "-" {
				continue
			}
			yamlPath := yamlTag
			if currNode.TagPrefix != "" {
				if isInline {
					yamlPath = currNode.TagPrefix
				} else {
					yamlPath = fmt.Sprintf("%s.%s", currNode.TagPrefix, yamlTag)
				}
			}
			if existingFlagNames[yamlPath] {
				continue
			}

			// map flag name to value
			value := currNode.TypeNode.Field(i)
			if value.Kind() == reflect.Struct {
				nodes = append(nodes, configNode{value, yamlPath})
			} else {
				flagNames[yamlPath] = value
			}
		}
	}

	return flagNames
}

func GenerateCLIFlags(existingFlags []cli.Flag, hidden bool) ([]cli.Flag, error) {
	blankConfig := &Config{}
	flags := make([]cli.Flag, 0)
	for name, value := range blankConfig.ToCLIFlagNames(existingFlags) {
		kind := value.Kind()
		if kind == reflect.Ptr {
			kind = value.Type().Elem().Kind()
		}

		var flag cli.Flag
		envVar := fmt.Sprintf("%s_%s", envVarPrefix, strings.ToUpper(strings.Replace(name, ".", "_", -1)))

		if value.Type() == durationType {
			flags = append(flags, &cli.DurationFlag{
				Name:    name,
				EnvVars: []string{envVar},
				Usage:   generatedCLIFlagUsage,
				Hidden:  hidden,
			})
			continue
		}

		switch kind {
		case reflect.Bool:
			flag = &cli.BoolFlag{
				Name:   name,
				Usage:  generatedCLIFlagUsage,
				Hidden: hidden,
			}
		case reflect.String:
			flag = &cli.StringFlag{
				Name:    name,
				EnvVars: []string{envVar},
				Usage:   generatedCLIFlagUsage,
				Hidden:  hidden,
			}
		case reflect.Int, reflect.Int32, reflect.Int64:
			flag = &cli.Int64Flag{
				Name:    name,
				EnvVars: []string{envVar},
				Usage:   generatedCLIFlagUsage,
				Hidden:  hidden,
			}
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			flag = &cli.Uint64Flag{
				Name:    name,
				EnvVars: []string{envVar},
				Usage:   generatedCLIFlagUsage,
				Hidden:  hidden,
			}
		case reflect.Float32, reflect.Float64:
			flag = &cli.Float64Flag{
				Name:    name,
				EnvVars: []string{envVar},
				Usage:   generatedCLIFlagUsage,
				Hidden:  hidden,
			}
		case reflect.Slice, reflect.Map:
			// only settable through the config file
			continue
		default:
			return flags, fmt.Errorf("cli flag generation unsupported for config type: %s is a %s", name, kind.String())
		}

		flags = append(flags, flag)
	}

	return flags, nil
}

func (conf *Config) updateFromCLI(c *cli.Context, baseFlags []cli.Flag) error {
	generatedFlagNames := conf.ToCLIFlagNames(baseFlags)
	for _, flag := range c.App.Flags {
		flagName := flag.Names()[0]

		// the `c.App.Name != "test"` check is needed because `c.IsSet(...)` is always false in unit tests
		if !c.IsSet(flagName) && c.App.Name != "test" {
			continue
		}

		configValue, ok := generatedFlagNames[flagName]
		if !ok {
			continue
		}

		if configValue.Type() == durationType {
			configValue.SetInt(int64(c.Duration(flagName)))
			continue
		}

		kind := configValue.Kind()
		if kind == reflect.Ptr {
			// instantiate value to be set
			configValue.Set(reflect.New(configValue.Type().Elem()))

			kind = configValue.Type().Elem().Kind()
			configValue = configValue.Elem()
		}

		switch kind {
		case reflect.Bool:
			configValue.SetBool(c.Bool(flagName))
		case reflect.String:
			configValue.SetString(c.String(flagName))
		case reflect.Int, reflect.Int32, reflect.Int64:
			configValue.SetInt(c.Int64(flagName))
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			configValue.SetUint(c.Uint64(flagName))
		case reflect.Float32, reflect.Float64:
			configValue.SetFloat(c.Float64(flagName))
		default:
			return fmt.Errorf("unsupported generated cli flag type for config: %s is a %s", flagName, kind.String())
		}
	}

	if c.IsSet("dev") {
		conf.Development = c.Bool("dev")
	}
	if c.IsSet("bind") {
		conf.BindAddresses = c.StringSlice("bind")
	}
	if c.IsSet("turn-secret") {
		conf.TURN.Secret = c.String("turn-secret")
	}
	return nil
}

// Note: only pass in logr.Logger with default depth
func SetLogger(l logger.Logger) {
	logger.SetLogger(l, "meshroom")
}

func InitLoggerFromConfig(config *LoggingConfig) {
	logger.InitFromConfig(&config.Config, "meshroom")
}
