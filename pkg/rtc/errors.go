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
	"errors"
	"fmt"

	"github.com/pion/webrtc/v3"

	"github.com/livekit/meshroom/pkg/config"
)

var (
	ErrNegotiationTimeout  = errors.New("negotiation did not complete in time")
	ErrICEFailed           = errors.New("ICE connection failed")
	ErrTransportClosed     = errors.New("transport closed unexpectedly")
	ErrMalformedHandshake  = errors.New("malformed handshake payload")
	ErrUnexpectedHandshake = errors.New("unexpected handshake message for role")
	ErrTrackReplaceFailed  = errors.New("could not replace local track")
	ErrSessionClosed       = errors.New("session is closed")
	ErrSourceStopped       = errors.New("media source is stopped")
	ErrManagerClosed       = errors.New("manager is shut down")
)

type ErrorKind string

const (
	ErrorKindNone        ErrorKind = ""
	ErrorKindTransient   ErrorKind = "transient"
	ErrorKindNegotiation ErrorKind = "negotiation"
	ErrorKindResource    ErrorKind = "resource"
	ErrorKindUnknown     ErrorKind = "unknown"
)

func (k ErrorKind) String() string {
	if k == ErrorKindNone {
		return "none"
	}
	return string(k)
}

// Retryable reports whether a session may start a new attempt after an error of this kind.
// Errors that could not be classified are retried, bounded by the attempt cap.
func (k ErrorKind) Retryable() bool {
	return k == ErrorKindTransient || k == ErrorKindUnknown
}

// SessionError is a classified failure of one peer session attempt.
type SessionError struct {
	Kind ErrorKind
	Err  error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

type MediaErrorKind string

const (
	MediaErrorDeviceInUse      MediaErrorKind = "device_in_use"
	MediaErrorPermissionDenied MediaErrorKind = "permission_denied"
	MediaErrorDeviceNotFound   MediaErrorKind = "device_not_found"
	MediaErrorNotSupported     MediaErrorKind = "not_supported"
	MediaErrorAborted          MediaErrorKind = "aborted"
)

// MediaError is a failure to acquire or read local capture devices.
type MediaError struct {
	Kind MediaErrorKind
	Err  error
}

func NewMediaError(kind MediaErrorKind, err error) *MediaError {
	return &MediaError{Kind: kind, Err: err}
}

func (e *MediaError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

var negotiationErrors = []error{
	ErrMalformedHandshake,
	ErrUnexpectedHandshake,
	ErrTrackReplaceFailed,
	config.ErrInvalidICEServer,
	webrtc.ErrIncorrectSignalingState,
	webrtc.ErrSessionDescriptionNoFingerprint,
	webrtc.ErrSessionDescriptionInvalidFingerprint,
	webrtc.ErrSessionDescriptionConflictingFingerprints,
	webrtc.ErrSessionDescriptionMissingIceUfrag,
	webrtc.ErrSessionDescriptionMissingIcePwd,
	webrtc.ErrSessionDescriptionConflictingIceUfrag,
	webrtc.ErrSessionDescriptionConflictingIcePwd,
	webrtc.ErrCodecNotFound,
	webrtc.ErrUnsupportedCodec,
	webrtc.ErrNoRemoteDescription,
	webrtc.ErrRTPSenderNewTrackHasIncorrectKind,
}

var transientErrors = []error{
	ErrNegotiationTimeout,
	ErrICEFailed,
	ErrTransportClosed,
	webrtc.ErrConnectionClosed,
}

// ClassifyError maps an error to its kind. Already classified errors keep their kind.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}

	var se *SessionError
	if errors.As(err, &se) {
		return se.Kind
	}
	var me *MediaError
	if errors.As(err, &me) {
		return ErrorKindResource
	}
	for _, e := range negotiationErrors {
		if errors.Is(err, e) {
			return ErrorKindNegotiation
		}
	}
	for _, e := range transientErrors {
		if errors.Is(err, e) {
			return ErrorKindTransient
		}
	}
	return ErrorKindUnknown
}

// classify wraps err in a SessionError unless it already is one.
func classify(err error) *SessionError {
	var se *SessionError
	if errors.As(err, &se) {
		return se
	}
	return &SessionError{Kind: ClassifyError(err), Err: err}
}

func IsRetryable(err error) bool {
	return err != nil && ClassifyError(err).Retryable()
}
