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
	"errors"
	"sync"
	"time"

	"github.com/pion/webrtc/v3"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/rtc/types"
	"github.com/livekit/meshroom/pkg/signalling"
)

const revertTimeout = 10 * time.Second

// LocalSourceReplacer is implemented by Manager.
type LocalSourceReplacer interface {
	ReplaceLocalSource(src types.MediaSource) error
}

type MediaSourceControllerParams struct {
	Capturer types.MediaCapturer
	Replacer LocalSourceReplacer
	// optional, camera and mic toggles are not published when nil
	Presence types.PresencePublisher
	Logger   logger.Logger
}

// MediaSourceController switches the local source between camera and screen. A new source is
// always acquired before it replaces the old one, and the old one is stopped only afterwards.
type MediaSourceController struct {
	params MediaSourceControllerParams

	lock          sync.Mutex
	active        types.MediaSource
	screen        types.MediaSource
	cameraEnabled bool
	micEnabled    bool

	onScreenShareEnded func(err error)
}

func NewMediaSourceController(params MediaSourceControllerParams) *MediaSourceController {
	if params.Logger == nil {
		params.Logger = logger.GetLogger()
	}
	return &MediaSourceController{
		params:        params,
		cameraEnabled: true,
		micEnabled:    true,
	}
}

// OnScreenShareEnded is called after a screen source ended on its own and the controller went
// back to the camera. err is set when the camera could not be reacquired.
func (c *MediaSourceController) OnScreenShareEnded(f func(err error)) {
	c.lock.Lock()
	c.onScreenShareEnded = f
	c.lock.Unlock()
}

func (c *MediaSourceController) StartCamera(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	src, err := c.params.Capturer.AcquireCamera(ctx)
	if err != nil {
		return wrapCaptureError(err)
	}
	if err := c.switchToLocked(src); err != nil {
		return err
	}
	c.screen = nil
	return nil
}

func (c *MediaSourceController) StartScreenShare(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.screen != nil {
		return nil
	}

	src, err := c.params.Capturer.AcquireScreen(ctx)
	if err != nil {
		return wrapCaptureError(err)
	}
	src.OnEnded(func() {
		go c.handleScreenEnded(src)
	})
	if err := c.switchToLocked(src); err != nil {
		return err
	}
	c.screen = src
	c.params.Logger.Infow("screen share started", "source", src.ID())
	return nil
}

func (c *MediaSourceController) StopScreenShare(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.screen == nil {
		return nil
	}
	return c.revertToCameraLocked(ctx, false)
}

func (c *MediaSourceController) SetCameraEnabled(enabled bool) error {
	c.lock.Lock()
	c.cameraEnabled = enabled
	if c.active != nil {
		c.active.SetTrackEnabled(webrtc.RTPCodecTypeVideo, enabled)
	}
	c.lock.Unlock()

	return c.publish(signalling.PresencePatch{CameraOn: &enabled})
}

func (c *MediaSourceController) SetMicEnabled(enabled bool) error {
	c.lock.Lock()
	c.micEnabled = enabled
	if c.active != nil {
		c.active.SetTrackEnabled(webrtc.RTPCodecTypeAudio, enabled)
	}
	c.lock.Unlock()

	return c.publish(signalling.PresencePatch{MicOn: &enabled})
}

func (c *MediaSourceController) ActiveSource() types.MediaSource {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.active
}

func (c *MediaSourceController) IsScreenSharing() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.screen != nil
}

func (c *MediaSourceController) handleScreenEnded(src types.MediaSource) {
	c.lock.Lock()
	if c.screen != src {
		c.lock.Unlock()
		return
	}
	c.params.Logger.Infow("screen share ended", "source", src.ID())
	ctx, cancel := context.WithTimeout(context.Background(), revertTimeout)
	err := c.revertToCameraLocked(ctx, true)
	cancel()
	onEnded := c.onScreenShareEnded
	c.lock.Unlock()

	if err != nil {
		c.params.Logger.Warnw("could not return to camera after screen share", err)
	}
	if onEnded != nil {
		onEnded(err)
	}
}

// revertToCameraLocked replaces the screen source with a fresh camera source. When the screen
// has already ended, a failure to get the camera leaves no source at all.
func (c *MediaSourceController) revertToCameraLocked(ctx context.Context, screenEnded bool) error {
	screen := c.screen
	cam, err := c.params.Capturer.AcquireCamera(ctx)
	if err != nil {
		err = wrapCaptureError(err)
		if screenEnded {
			if rerr := c.params.Replacer.ReplaceLocalSource(nil); rerr != nil {
				c.params.Logger.Debugw("could not clear local source", "error", rerr)
			}
			c.active = nil
			c.screen = nil
			screen.Stop()
		}
		return err
	}
	if err := c.switchToLocked(cam); err != nil {
		return err
	}
	c.screen = nil
	return nil
}

// switchToLocked makes src the active source and stops the previous one.
func (c *MediaSourceController) switchToLocked(src types.MediaSource) error {
	src.SetTrackEnabled(webrtc.RTPCodecTypeVideo, c.cameraEnabled)
	src.SetTrackEnabled(webrtc.RTPCodecTypeAudio, c.micEnabled)

	err := c.params.Replacer.ReplaceLocalSource(src)
	if errors.Is(err, ErrManagerClosed) {
		src.Stop()
		return err
	}
	if err != nil {
		// the source is in place, only some sessions could not switch
		c.params.Logger.Warnw("local source replaced with errors", err, "source", src.ID())
	}

	prev := c.active
	c.active = src
	if prev != nil && prev != src {
		prev.Stop()
	}
	return err
}

func (c *MediaSourceController) publish(patch signalling.PresencePatch) error {
	if c.params.Presence == nil {
		return nil
	}
	return c.params.Presence.UpdatePresence(patch)
}

// wrapCaptureError turns capture failures into resource errors.
func wrapCaptureError(err error) error {
	var me *MediaError
	if errors.As(err, &me) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewMediaError(MediaErrorAborted, err)
	}
	return NewMediaError(MediaErrorKindFromName(err.Error()), err)
}

// MediaErrorKindFromName maps the capture error names reported by browsers.
func MediaErrorKindFromName(name string) MediaErrorKind {
	switch name {
	case "NotReadableError", "TrackStartError":
		return MediaErrorDeviceInUse
	case "NotAllowedError", "PermissionDeniedError", "SecurityError":
		return MediaErrorPermissionDenied
	case "NotFoundError", "DevicesNotFoundError", "OverconstrainedError":
		return MediaErrorDeviceNotFound
	case "NotSupportedError", "TypeError":
		return MediaErrorNotSupported
	default:
		return MediaErrorAborted
	}
}
