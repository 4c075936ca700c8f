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
	"sync"

	"github.com/frostbyte73/core"
	"github.com/pion/interceptor"
	"github.com/pion/logging"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/config"
	serverlogger "github.com/livekit/meshroom/pkg/logger"
	"github.com/livekit/meshroom/pkg/rtc/types"
	"github.com/livekit/meshroom/pkg/signalling"
)

const rtpBufferSize = 1500

var mediaKinds = []webrtc.RTPCodecType{webrtc.RTPCodecTypeAudio, webrtc.RTPCodecTypeVideo}

type TransportParams struct {
	Remote        signalling.ParticipantID
	Config        *WebRTCConfig
	LoggerFactory logging.LoggerFactory
	Logger        logger.Logger
}

// PCTransport is a wrapper around PeerConnection carrying one audio and one video transceiver.
// Tracks are swapped on the existing senders, so changing the local source never renegotiates.
type PCTransport struct {
	params TransportParams
	pc     *webrtc.PeerConnection

	// senders and their initial tracks, placeholders come from pion and never carry samples
	senders      map[webrtc.RTPCodecType]*webrtc.RTPSender
	placeholders map[webrtc.RTPCodecType]webrtc.TrackLocal

	lock             sync.RWMutex
	onICECandidate   func(candidate *webrtc.ICECandidateInit)
	onICEStateChange func(state webrtc.ICEConnectionState)
	onTrack          func(track types.RemoteTrack)
	receivers        []*receiveStats

	closed core.Fuse
}

func newPeerConnection(params TransportParams) (*webrtc.PeerConnection, error) {
	me := &webrtc.MediaEngine{}
	if err := me.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}

	ir := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(me, ir); err != nil {
		return nil, err
	}

	se := params.Config.SettingEngine
	if params.LoggerFactory != nil {
		se.LoggerFactory = params.LoggerFactory
	}

	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(me),
		webrtc.WithSettingEngine(se),
		webrtc.WithInterceptorRegistry(ir),
	)
	return api.NewPeerConnection(params.Config.Configuration)
}

func NewPCTransport(params TransportParams) (*PCTransport, error) {
	if params.Logger == nil {
		params.Logger = logger.GetLogger()
	}
	pc, err := newPeerConnection(params)
	if err != nil {
		return nil, err
	}

	t := &PCTransport{
		params:       params,
		pc:           pc,
		senders:      make(map[webrtc.RTPCodecType]*webrtc.RTPSender),
		placeholders: make(map[webrtc.RTPCodecType]webrtc.TrackLocal),
	}
	for _, kind := range mediaKinds {
		tr, err := pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionSendrecv,
		})
		if err != nil {
			_ = pc.Close()
			return nil, err
		}
		sender := tr.Sender()
		t.senders[kind] = sender
		t.placeholders[kind] = sender.Track()
		go t.readSenderRTCP(sender)
	}

	pc.OnICECandidate(t.handleICECandidate)
	pc.OnICEConnectionStateChange(t.handleICEConnectionStateChange)
	pc.OnTrack(t.handleTrack)

	return t, nil
}

func (t *PCTransport) SetTracks(tracks []webrtc.TrackLocal) error {
	byKind := make(map[webrtc.RTPCodecType]webrtc.TrackLocal, len(tracks))
	for _, track := range tracks {
		byKind[track.Kind()] = track
	}

	for _, kind := range mediaKinds {
		sender := t.senders[kind]
		track, ok := byKind[kind]
		if !ok {
			track = t.placeholders[kind]
		}
		if sender.Track() == track {
			continue
		}
		if err := sender.ReplaceTrack(track); err != nil {
			return err
		}
	}
	return nil
}

func (t *PCTransport) CreateOffer() (webrtc.SessionDescription, error) {
	offer, err := t.pc.CreateOffer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	if err := t.pc.SetLocalDescription(offer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	return offer, nil
}

func (t *PCTransport) HandleOffer(offer webrtc.SessionDescription) (webrtc.SessionDescription, error) {
	if err := t.pc.SetRemoteDescription(offer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	answer, err := t.pc.CreateAnswer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	if err := t.pc.SetLocalDescription(answer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	return answer, nil
}

func (t *PCTransport) HandleAnswer(answer webrtc.SessionDescription) error {
	return t.pc.SetRemoteDescription(answer)
}

func (t *PCTransport) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	t.params.Logger.Debugw("add candidate", "candidate", candidate.Candidate)
	return t.pc.AddICECandidate(candidate)
}

func (t *PCTransport) OnICECandidate(f func(candidate *webrtc.ICECandidateInit)) {
	t.lock.Lock()
	t.onICECandidate = f
	t.lock.Unlock()
}

func (t *PCTransport) OnICEConnectionStateChange(f func(state webrtc.ICEConnectionState)) {
	t.lock.Lock()
	t.onICEStateChange = f
	t.lock.Unlock()
}

func (t *PCTransport) OnTrack(f func(track types.RemoteTrack)) {
	t.lock.Lock()
	t.onTrack = f
	t.lock.Unlock()
}

// GetStats sums the packet counters of all remote tracks.
func (t *PCTransport) GetStats() (types.TransportStats, error) {
	if t.closed.IsBroken() {
		return types.TransportStats{}, webrtc.ErrConnectionClosed
	}

	t.lock.RLock()
	defer t.lock.RUnlock()

	var stats types.TransportStats
	for _, r := range t.receivers {
		received, lost := r.counters()
		stats.PacketsReceived += received
		stats.PacketsLost += lost
	}
	return stats, nil
}

func (t *PCTransport) PeerConnection() *webrtc.PeerConnection {
	return t.pc
}

func (t *PCTransport) Close() error {
	if t.closed.IsBroken() {
		return nil
	}
	t.closed.Break()
	return t.pc.Close()
}

func (t *PCTransport) handleICECandidate(c *webrtc.ICECandidate) {
	if c == nil {
		return
	}

	t.lock.RLock()
	onICECandidate := t.onICECandidate
	t.lock.RUnlock()

	if onICECandidate != nil {
		init := c.ToJSON()
		onICECandidate(&init)
	}
}

func (t *PCTransport) handleICEConnectionStateChange(state webrtc.ICEConnectionState) {
	t.params.Logger.Debugw("ice connection state change", "state", state.String())

	t.lock.RLock()
	onICEStateChange := t.onICEStateChange
	t.lock.RUnlock()

	if onICEStateChange != nil {
		onICEStateChange(state)
	}
}

func (t *PCTransport) handleTrack(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
	t.params.Logger.Infow("remote track added",
		"kind", track.Kind().String(),
		"codec", track.Codec().MimeType,
		"ssrc", track.SSRC(),
	)

	stats := &receiveStats{}
	t.lock.Lock()
	t.receivers = append(t.receivers, stats)
	onTrack := t.onTrack
	t.lock.Unlock()

	if track.Kind() == webrtc.RTPCodecTypeVideo {
		t.sendPLI(track.SSRC())
	}
	go t.readRTP(track, stats)
	go t.readReceiverRTCP(receiver)

	if onTrack != nil {
		onTrack(track)
	}
}

func (t *PCTransport) sendPLI(ssrc webrtc.SSRC) {
	err := t.pc.WriteRTCP([]rtcp.Packet{&rtcp.PictureLossIndication{MediaSSRC: uint32(ssrc)}})
	if err != nil {
		t.params.Logger.Debugw("could not send PLI", "error", err)
	}
}

func (t *PCTransport) readRTP(track *webrtc.TrackRemote, stats *receiveStats) {
	buf := make([]byte, rtpBufferSize)
	pkt := &rtp.Packet{}
	for {
		n, _, err := track.Read(buf)
		if err != nil {
			return
		}
		if err := pkt.Unmarshal(buf[:n]); err != nil {
			continue
		}
		stats.update(pkt.SequenceNumber)
	}
}

// sender RTCP has to be drained for the interceptors to work
func (t *PCTransport) readSenderRTCP(sender *webrtc.RTPSender) {
	for {
		if _, _, err := sender.ReadRTCP(); err != nil {
			return
		}
	}
}

func (t *PCTransport) readReceiverRTCP(receiver *webrtc.RTPReceiver) {
	for {
		if _, _, err := receiver.ReadRTCP(); err != nil {
			return
		}
	}
}

// ------------------------------------------------------------

// receiveStats derives loss from gaps in the sequence numbers of one stream.
type receiveStats struct {
	lock     sync.Mutex
	started  bool
	baseSeq  uint16
	maxSeq   uint16
	cycles   uint64
	received uint64
}

func (r *receiveStats) update(seq uint16) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.received++
	if !r.started {
		r.started = true
		r.baseSeq = seq
		r.maxSeq = seq
		return
	}

	diff := seq - r.maxSeq
	if diff == 0 || diff >= 1<<15 {
		// duplicate or reordered
		return
	}
	if seq < r.maxSeq {
		r.cycles++
	}
	r.maxSeq = seq
}

func (r *receiveStats) counters() (received, lost uint64) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if !r.started {
		return 0, 0
	}
	expected := (r.cycles<<16 | uint64(r.maxSeq)) - uint64(r.baseSeq) + 1
	if expected > r.received {
		lost = expected - r.received
	}
	return r.received, lost
}

// ------------------------------------------------------------

// PCTransportFactory creates pion backed transports sharing one configuration.
type PCTransportFactory struct {
	lock          sync.RWMutex
	conf          WebRTCConfig
	loggerFactory logging.LoggerFactory
	logger        logger.Logger
}

func NewPCTransportFactory(conf *config.PeerConfig, pionLevel string, l logger.Logger) (*PCTransportFactory, error) {
	if l == nil {
		l = logger.GetLogger()
	}
	wc, err := NewWebRTCConfig(conf)
	if err != nil {
		return nil, err
	}
	return &PCTransportFactory{
		conf:          *wc,
		loggerFactory: serverlogger.NewLoggerFactory(l, pionLevel),
		logger:        l,
	}, nil
}

// SetICEServers switches to the ICE servers handed out by the relay for transports created
// from now on.
func (f *PCTransportFactory) SetICEServers(servers []signalling.ICEServer) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.conf.SetICEServers(servers)
}

func (f *PCTransportFactory) NewTransport(remote signalling.ParticipantID) (types.PeerTransport, error) {
	f.lock.RLock()
	conf := f.conf
	conf.Configuration.ICEServers = append([]webrtc.ICEServer(nil), f.conf.Configuration.ICEServers...)
	f.lock.RUnlock()

	return NewPCTransport(TransportParams{
		Remote:        remote,
		Config:        &conf,
		LoggerFactory: f.loggerFactory,
		Logger:        f.logger.WithValues("transport", remote),
	})
}
