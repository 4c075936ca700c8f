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
	"context"
	"sync"
	"time"

	"github.com/frostbyte73/core"
	"github.com/pion/webrtc/v3"
	"github.com/pion/webrtc/v3/pkg/media"

	"github.com/livekit/meshroom/pkg/rtc/types"
	"github.com/livekit/meshroom/pkg/utils"
)

const (
	defaultVideoFrameInterval = 33 * time.Millisecond
	audioFrameInterval        = 20 * time.Millisecond
)

var (
	videoCodec = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}
	audioCodec = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2}

	// not decodable, receivers only count packets
	videoFrame = []byte{0x10, 0x02, 0x00, 0x9d, 0x01, 0x2a, 0x10, 0x00, 0x10, 0x00}
	audioFrame = []byte{0xf8, 0xff, 0xfe}
)

// SyntheticCapturer produces sources writing generated samples, for headless participants.
type SyntheticCapturer struct {
	VideoFrameInterval time.Duration
	// ScreenDuration ends screen sources on their own after the given time, zero never ends them
	ScreenDuration time.Duration
}

func (c *SyntheticCapturer) AcquireCamera(ctx context.Context) (types.MediaSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewSyntheticSource(types.SourceKindCamera, true, c.frameInterval())
}

func (c *SyntheticCapturer) AcquireScreen(ctx context.Context) (types.MediaSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := NewSyntheticSource(types.SourceKindScreen, false, c.frameInterval())
	if err != nil {
		return nil, err
	}
	if c.ScreenDuration > 0 {
		time.AfterFunc(c.ScreenDuration, src.End)
	}
	return src, nil
}

func (c *SyntheticCapturer) frameInterval() time.Duration {
	if c.VideoFrameInterval > 0 {
		return c.VideoFrameInterval
	}
	return defaultVideoFrameInterval
}

type syntheticTrack struct {
	track    *webrtc.TrackLocalStaticSample
	frame    []byte
	interval time.Duration
}

type SyntheticSource struct {
	id     string
	kind   types.SourceKind
	tracks []syntheticTrack

	lock    sync.Mutex
	enabled map[webrtc.RTPCodecType]bool
	onEnded func()

	stopped core.Fuse
}

func NewSyntheticSource(kind types.SourceKind, withAudio bool, videoInterval time.Duration) (*SyntheticSource, error) {
	id := utils.NewGuid(utils.SourcePrefix)
	s := &SyntheticSource{
		id:   id,
		kind: kind,
		enabled: map[webrtc.RTPCodecType]bool{
			webrtc.RTPCodecTypeAudio: true,
			webrtc.RTPCodecTypeVideo: true,
		},
	}

	video, err := webrtc.NewTrackLocalStaticSample(videoCodec, utils.NewGuid(utils.TrackPrefix), id)
	if err != nil {
		return nil, err
	}
	s.tracks = append(s.tracks, syntheticTrack{track: video, frame: videoFrame, interval: videoInterval})

	if withAudio {
		audio, err := webrtc.NewTrackLocalStaticSample(audioCodec, utils.NewGuid(utils.TrackPrefix), id)
		if err != nil {
			return nil, err
		}
		s.tracks = append(s.tracks, syntheticTrack{track: audio, frame: audioFrame, interval: audioFrameInterval})
	}

	for _, t := range s.tracks {
		go s.writeWorker(t)
	}
	return s, nil
}

func (s *SyntheticSource) ID() string {
	return s.id
}

func (s *SyntheticSource) Kind() types.SourceKind {
	return s.kind
}

func (s *SyntheticSource) Tracks() ([]webrtc.TrackLocal, error) {
	if s.stopped.IsBroken() {
		return nil, NewMediaError(MediaErrorAborted, ErrSourceStopped)
	}
	tracks := make([]webrtc.TrackLocal, 0, len(s.tracks))
	for _, t := range s.tracks {
		tracks = append(tracks, t.track)
	}
	return tracks, nil
}

func (s *SyntheticSource) SetTrackEnabled(kind webrtc.RTPCodecType, enabled bool) {
	s.lock.Lock()
	s.enabled[kind] = enabled
	s.lock.Unlock()
}

func (s *SyntheticSource) IsTrackEnabled(kind webrtc.RTPCodecType) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.enabled[kind]
}

func (s *SyntheticSource) OnEnded(f func()) {
	s.lock.Lock()
	s.onEnded = f
	s.lock.Unlock()
}

func (s *SyntheticSource) Stop() {
	s.stopped.Break()
}

func (s *SyntheticSource) IsStopped() bool {
	return s.stopped.IsBroken()
}

// End stops the source as if the capture device went away.
func (s *SyntheticSource) End() {
	if s.stopped.IsBroken() {
		return
	}
	s.stopped.Break()

	s.lock.Lock()
	onEnded := s.onEnded
	s.lock.Unlock()
	if onEnded != nil {
		onEnded()
	}
}

func (s *SyntheticSource) writeWorker(t syntheticTrack) {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	kind := t.track.Kind()
	for {
		select {
		case <-s.stopped.Watch():
			return

		case <-tk.C:
			if !s.IsTrackEnabled(kind) {
				continue
			}
			// fails harmlessly while the track is not bound to any sender
			_ = t.track.WriteSample(media.Sample{Data: t.frame, Duration: t.interval})
		}
	}
}
