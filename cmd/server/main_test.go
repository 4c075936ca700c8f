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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livekit/meshroom/pkg/rooms"
	"github.com/livekit/meshroom/pkg/rtc"
	"github.com/livekit/meshroom/pkg/signalling"
)

func TestGetConfigString(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "meshroom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("fileContent"), 0o644))

	tests := []struct {
		name       string
		configFile string
		configBody string
		expected   string
	}{
		{"nothing", "", "", ""},
		{"body", "", "configBody", "configBody"},
		{"body wins", file, "configBody", "configBody"},
		{"file", file, "", "fileContent"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			configBody, err := getConfigString(test.configFile, test.configBody)
			require.NoError(t, err)
			require.Equal(t, test.expected, configBody)
		})
	}
}

func TestShouldReturnErrorIfConfigFileDoesNotExist(t *testing.T) {
	configBody, err := getConfigString("notExistingFile", "")
	require.Error(t, err)
	require.Empty(t, configBody)
}

func TestListRooms(t *testing.T) {
	infos := []rooms.RoomInfo{{
		ID:        "standup",
		CreatedAt: time.Now().Add(-time.Hour),
		Participants: []*signalling.Presence{
			{ParticipantID: "P-a", DisplayName: "alice", CameraOn: true, MicOn: false},
			{ParticipantID: "P-b"},
		},
	}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rooms", r.URL.Path)
		_ = json.NewEncoder(w).Encode(infos)
	}))
	defer server.Close()

	fetched, err := fetchRooms(context.Background(), server.URL+"/")
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	require.Equal(t, signalling.RoomID("standup"), fetched[0].ID)

	var buf bytes.Buffer
	renderRooms(&buf, fetched)
	out := buf.String()
	require.Contains(t, out, "standup")
	require.Contains(t, out, "alice (P-a) on / off")
	require.Contains(t, out, "P-b off / off")
	require.Contains(t, out, "1 hour ago")
}

func TestListRoomsRelayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := fetchRooms(context.Background(), server.URL)
	require.Error(t, err)
}

func TestRenderStatuses(t *testing.T) {
	var buf bytes.Buffer
	renderStatuses(&buf, []rtc.ConnectionStatus{
		{ParticipantID: "P-b", Role: rtc.RoleInitiator, State: rtc.SessionStateConnected, Quality: rtc.QualityGood},
		{
			ParticipantID:     "P-c",
			Role:              rtc.RoleResponder,
			State:             rtc.SessionStateFailed,
			Quality:           rtc.QualityError,
			ReconnectAttempts: 3,
			LastError:         "ICE connection failed",
			ErrorKind:         rtc.ErrorKindTransient,
		},
	})
	out := buf.String()
	require.Contains(t, out, "CONNECTED")
	require.Contains(t, out, "FAILED")
	require.Contains(t, out, "transient: ICE connection failed")
}
