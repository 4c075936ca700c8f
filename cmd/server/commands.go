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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/thoas/go-funk"
	"github.com/urfave/cli/v2"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/client"
	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/rooms"
	"github.com/livekit/meshroom/pkg/rtc"
	"github.com/livekit/meshroom/pkg/signalling"
)

const listRoomsTimeout = 10 * time.Second

var (
	hostFlag = &cli.StringFlag{
		Name:    "host",
		Usage:   "address of the relay",
		Value:   "http://localhost:7880",
		EnvVars: []string{"MESHROOM_HOST"},
	}

	joinFlags = []cli.Flag{
		hostFlag,
		&cli.StringFlag{
			Name:     "room",
			Usage:    "id of the room to join",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "display name of the participant",
		},
		&cli.BoolFlag{
			Name:  "screen",
			Usage: "share a synthetic screen after joining",
		},
		&cli.DurationFlag{
			Name:  "screen-duration",
			Usage: "end the screen share on its own after the given time",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "speak JSON instead of msgpack to the relay",
		},
	}
)

func helpVerbose(c *cli.Context) error {
	generatedFlags, err := config.GenerateCLIFlags(baseFlags, false)
	if err != nil {
		return err
	}

	c.App.Flags = append(baseFlags, generatedFlags...)
	return cli.ShowAppHelp(c)
}

func fetchRooms(ctx context.Context, host string) ([]rooms.RoomInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(host, "/")+"/rooms", nil)
	if err != nil {
		return nil, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "could not reach relay")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay returned %s", res.Status)
	}
	var infos []rooms.RoomInfo
	if err := json.NewDecoder(res.Body).Decode(&infos); err != nil {
		return nil, errors.Wrap(err, "could not decode rooms")
	}
	return infos, nil
}

func listRooms(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, listRoomsTimeout)
	defer cancel()

	infos, err := fetchRooms(ctx, c.String("host"))
	if err != nil {
		return err
	}
	renderRooms(os.Stdout, infos)
	return nil
}

func renderRooms(w io.Writer, infos []rooms.RoomInfo) {
	table := tablewriter.NewWriter(w)
	table.SetRowLine(true)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Room", "Participants", "Members\nCamera / Mic", "Created"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
	})

	for _, info := range infos {
		members := funk.Map(info.Participants, func(p *signalling.Presence) string {
			name := string(p.ParticipantID)
			if p.DisplayName != "" {
				name = fmt.Sprintf("%s (%s)", p.DisplayName, p.ParticipantID)
			}
			return fmt.Sprintf("%s %s / %s", name, onOff(p.CameraOn), onOff(p.MicOn))
		}).([]string)

		table.Append([]string{
			string(info.ID),
			strconv.Itoa(len(info.Participants)),
			strings.Join(members, "\n"),
			humanize.Time(info.CreatedAt),
		})
	}
	table.Render()
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func joinRoom(c *cli.Context) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}
	l := logger.GetLogger()
	roomID := signalling.RoomID(c.String("room"))

	factory, err := rtc.NewPCTransportFactory(&conf.Peer, conf.Logging.PionLevel, l)
	if err != nil {
		return err
	}

	encoding := signalling.EncodingMsgpack
	if c.Bool("json") {
		encoding = signalling.EncodingJSON
	}
	sc := client.NewSignalClient(client.SignalClientParams{
		URL:         c.String("host"),
		RoomID:      roomID,
		DisplayName: c.String("name"),
		Encoding:    encoding,
		Config:      conf.Peer,
		ICEServers:  factory,
		Logger:      l,
	})

	manager := rtc.NewManager(rtc.ManagerParams{
		LocalID:          sc.ParticipantID(),
		RoomID:           roomID,
		Config:           conf.Peer,
		TransportFactory: factory,
		Signal:           sc,
		Logger:           l,
	})
	defer manager.Shutdown()

	manager.OnStatusChanged(func(statuses []rtc.ConnectionStatus) {
		renderStatuses(os.Stdout, statuses)
	})
	manager.OnRemoteStream(func(stream rtc.RemoteStream) {
		l.Infow("remote stream", "remote", stream.ParticipantID, "tracks", len(stream.Tracks))
	})
	manager.OnPresenceChanged(func(p *signalling.Presence) {
		l.Infow("presence", "remote", p.ParticipantID, "name", p.DisplayName, "camera", p.CameraOn, "mic", p.MicOn)
	})

	media := rtc.NewMediaSourceController(rtc.MediaSourceControllerParams{
		Capturer: &rtc.SyntheticCapturer{ScreenDuration: c.Duration("screen-duration")},
		Replacer: manager,
		Presence: sc,
		Logger:   l,
	})
	media.OnScreenShareEnded(func(err error) {
		if err != nil {
			l.Warnw("screen share ended without camera", err)
			return
		}
		l.Infow("screen share ended, back on camera")
	})
	if err := media.StartCamera(c.Context); err != nil {
		return err
	}

	if err := sc.Start(c.Context, manager); err != nil {
		return err
	}
	defer sc.Close()
	l.Infow("joined room", "room", roomID, "participant", sc.ParticipantID())

	if c.Bool("screen") {
		if err := media.StartScreenShare(c.Context); err != nil {
			l.Warnw("could not share screen", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		l.Infow("leaving room", "signal", sig)
	case <-sc.Done():
		return client.ErrNotConnected
	}
	return nil
}

func renderStatuses(w io.Writer, statuses []rtc.ConnectionStatus) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Participant", "Role", "State", "Quality", "Retries", "Error"})

	for _, s := range statuses {
		lastErr := ""
		if s.LastError != "" {
			lastErr = fmt.Sprintf("%s: %s", s.ErrorKind, s.LastError)
		}
		table.Append([]string{
			string(s.ParticipantID),
			string(s.Role),
			s.State.String(),
			string(s.Quality),
			strconv.Itoa(s.ReconnectAttempts),
			lastErr,
		})
	}
	table.Render()
}
