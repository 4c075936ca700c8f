package types

import (
	"context"

	"github.com/pion/webrtc/v3"

	"github.com/livekit/meshroom/pkg/signalling"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// SignalSender delivers an opaque handshake payload to another participant through the relay.
//
//counterfeiter:generate . SignalSender
type SignalSender interface {
	SendSignal(target signalling.ParticipantID, payload signalling.Payload) error
}

//counterfeiter:generate . PresencePublisher
type PresencePublisher interface {
	UpdatePresence(patch signalling.PresencePatch) error
}

type SourceKind string

const (
	SourceKindCamera SourceKind = "camera"
	SourceKindScreen SourceKind = "screen"
)

func (k SourceKind) String() string {
	return string(k)
}

// MediaSource is a captured local stream. It is shared by reference across every peer session,
// so Tracks must return the same track objects on every call.
//
//counterfeiter:generate . MediaSource
type MediaSource interface {
	ID() string
	Kind() SourceKind
	Tracks() ([]webrtc.TrackLocal, error)
	SetTrackEnabled(kind webrtc.RTPCodecType, enabled bool)
	// OnEnded is called when the source stops outside of the application's control
	OnEnded(f func())
	Stop()
}

//counterfeiter:generate . MediaCapturer
type MediaCapturer interface {
	AcquireCamera(ctx context.Context) (MediaSource, error)
	AcquireScreen(ctx context.Context) (MediaSource, error)
}

//counterfeiter:generate . RemoteTrack
type RemoteTrack interface {
	ID() string
	StreamID() string
	Kind() webrtc.RTPCodecType
}

type TransportStats struct {
	PacketsReceived uint64
	PacketsLost     uint64
}

// PeerTransport is a single media connection to one remote participant. A transport is used for
// exactly one connection attempt and discarded afterwards.
//
//counterfeiter:generate . PeerTransport
type PeerTransport interface {
	// SetTracks attaches the local tracks, one per kind. Kinds missing from tracks are muted.
	SetTracks(tracks []webrtc.TrackLocal) error
	CreateOffer() (webrtc.SessionDescription, error)
	HandleOffer(offer webrtc.SessionDescription) (webrtc.SessionDescription, error)
	HandleAnswer(answer webrtc.SessionDescription) error
	AddICECandidate(candidate webrtc.ICECandidateInit) error
	OnICECandidate(f func(candidate *webrtc.ICECandidateInit))
	OnICEConnectionStateChange(f func(state webrtc.ICEConnectionState))
	OnTrack(f func(track RemoteTrack))
	GetStats() (TransportStats, error)
	Close() error
}

//counterfeiter:generate . PeerTransportFactory
type PeerTransportFactory interface {
	NewTransport(remote signalling.ParticipantID) (PeerTransport, error)
}
