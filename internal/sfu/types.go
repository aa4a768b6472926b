// Package sfu implements the voice routing control plane (spec §4.4): a
// round-robin worker pool, one audio router per room, one peer per
// participant with a send transport, a receive transport, at most one
// producer, and a set of consumers. The actual media plane — RTP
// forwarding, ICE/DTLS negotiation — is out of scope (spec §1 non-goals,
// "handled by an embedded media library"); this package models the
// allocation and handshake bookkeeping the teacher's internal/app/sfu
// package builds around its relay manager, generalized from one ad-hoc
// relay per room to the producer/consumer/transport vocabulary spec.md
// asks for, using pion/webrtc/v4's codec types for router capability
// negotiation the way the teacher's relay.go registers codecs.
package sfu

import "github.com/pion/webrtc/v4"

// OpusCapability is the one codec every router registers (spec §4.4:
// "one audio codec, Opus, 48 kHz, stereo").
var OpusCapability = webrtc.RTPCodecCapability{
	MimeType:     webrtc.MimeTypeOpus,
	ClockRate:    48000,
	Channels:     2,
	SDPFmtpLine:  "minptime=10;useinbandfec=1",
	RTCPFeedback: nil,
}

// RTPCapabilities is the control-plane capability set exchanged during
// voice:join / voice:consume. It is deliberately thin: the spec's control
// surface only needs the caller to echo back what the router supports.
type RTPCapabilities struct {
	Codecs []webrtc.RTPCodecCapability `json:"codecs"`
}

// ProducerRef names one other room member's active producer, returned in
// voice:join's existingProducers list.
type ProducerRef struct {
	ConnectionID string `json:"connectionId"`
	ProducerID   string `json:"producerId"`
}

// TransportParams is the control-plane description of one DTLS/ICE
// transport. The embedded media library is the real owner of ICE
// candidates and DTLS fingerprints; this struct is the shape the
// handshake ack carries, populated with allocation bookkeeping only.
type TransportParams struct {
	TransportID              string `json:"transportId"`
	InitialAvailableOutgoing int    `json:"initialAvailableOutgoingBitrate,omitempty"`
}

// ProducerParams is the ack payload for voice:produce.
type ProducerParams struct {
	ProducerID string `json:"producerId"`
}

// ConsumerParams is the ack payload for voice:consume.
type ConsumerParams struct {
	ConsumerID    string                    `json:"consumerId"`
	ProducerID    string                    `json:"producerId"`
	Kind          string                    `json:"kind"`
	RTPCapability webrtc.RTPCodecCapability `json:"rtpParameters"`
}

const initialOutgoingBitrate = 600_000 // 600 kbps, spec §4.4 step 2
