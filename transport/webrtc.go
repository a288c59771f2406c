// Copyright 2026 The Blobwire Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pion/datachannel"
	"github.com/pion/webrtc/v4"
)

// iceGatherTimeout is the maximum time to wait for ICE candidate
// gathering to complete before surfacing the SDP.
const iceGatherTimeout = 15 * time.Second

// channelLabel names the single data channel a transfer uses.
const channelLabel = "blobwire"

// WebRTCPeer is one end of a data channel transport. Signaling is
// manual: the offering side calls Offer and delivers the SDP to the
// answering side out of band, the answering side calls Accept and
// returns its SDP the same way. Both then call Datagram to wait for
// the channel to open.
//
// Connection establishment uses vanilla ICE: all candidates are
// gathered before the SDP is surfaced, so signaling is exactly one
// round-trip.
type WebRTCPeer struct {
	connection *webrtc.PeerConnection

	// opened delivers the detached channel once SCTP is up.
	opened chan datachannel.ReadWriteCloser

	closed    chan struct{}
	closeOnce sync.Once
}

// NewWebRTCPeer creates a peer with the given ICE servers. An empty
// server list limits connectivity to host candidates, which is
// enough on one LAN.
func NewWebRTCPeer(iceServers []webrtc.ICEServer) (*WebRTCPeer, error) {
	// Detach gives direct message access to the channel; loopback
	// candidates make same-machine transfers and tests work.
	settingEngine := webrtc.SettingEngine{}
	settingEngine.DetachDataChannels()
	settingEngine.SetIncludeLoopbackCandidate(true)

	api := webrtc.NewAPI(webrtc.WithSettingEngine(settingEngine))
	connection, err := api.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers})
	if err != nil {
		return nil, fmt.Errorf("creating peer connection: %w", err)
	}

	peer := &WebRTCPeer{
		connection: connection,
		opened:     make(chan datachannel.ReadWriteCloser, 1),
		closed:     make(chan struct{}),
	}
	connection.OnDataChannel(func(dc *webrtc.DataChannel) {
		peer.adoptChannel(dc)
	})
	return peer, nil
}

// Offer creates the transfer data channel and returns the complete
// local SDP offer once ICE gathering finishes.
func (p *WebRTCPeer) Offer(ctx context.Context) (string, error) {
	dc, err := p.connection.CreateDataChannel(channelLabel, nil)
	if err != nil {
		return "", fmt.Errorf("creating data channel: %w", err)
	}
	p.adoptChannel(dc)

	offer, err := p.connection.CreateOffer(nil)
	if err != nil {
		return "", fmt.Errorf("creating offer: %w", err)
	}
	return p.finishLocalDescription(ctx, offer)
}

// Accept applies the remote offer and returns the complete local SDP
// answer once ICE gathering finishes.
func (p *WebRTCPeer) Accept(ctx context.Context, offerSDP string) (string, error) {
	remote := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: offerSDP}
	if err := p.connection.SetRemoteDescription(remote); err != nil {
		return "", fmt.Errorf("setting remote offer: %w", err)
	}
	answer, err := p.connection.CreateAnswer(nil)
	if err != nil {
		return "", fmt.Errorf("creating answer: %w", err)
	}
	return p.finishLocalDescription(ctx, answer)
}

// HandleAnswer applies the remote answer on the offering side.
func (p *WebRTCPeer) HandleAnswer(answerSDP string) error {
	remote := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: answerSDP}
	if err := p.connection.SetRemoteDescription(remote); err != nil {
		return fmt.Errorf("setting remote answer: %w", err)
	}
	return nil
}

// Datagram blocks until the data channel opens and returns it as a
// message-oriented connection.
func (p *WebRTCPeer) Datagram(ctx context.Context) (Datagram, error) {
	select {
	case rwc := <-p.opened:
		return newChannelConn(rwc), nil
	case <-p.closed:
		return nil, net.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close tears down the peer connection.
func (p *WebRTCPeer) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })
	return p.connection.Close()
}

// finishLocalDescription sets the local SDP, waits for vanilla ICE
// gathering, and returns the complete description.
func (p *WebRTCPeer) finishLocalDescription(ctx context.Context, description webrtc.SessionDescription) (string, error) {
	gatherComplete := webrtc.GatheringCompletePromise(p.connection)
	if err := p.connection.SetLocalDescription(description); err != nil {
		return "", fmt.Errorf("setting local description: %w", err)
	}
	select {
	case <-gatherComplete:
	case <-time.After(iceGatherTimeout):
		return "", fmt.Errorf("ICE gathering timed out after %s", iceGatherTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return p.connection.LocalDescription().SDP, nil
}

// adoptChannel detaches the channel once it opens and hands it to
// the Datagram waiter. Only the first channel counts; a transfer
// uses exactly one.
func (p *WebRTCPeer) adoptChannel(dc *webrtc.DataChannel) {
	dc.OnOpen(func() {
		rwc, err := dc.Detach()
		if err != nil {
			return
		}
		select {
		case p.opened <- rwc:
		default:
			rwc.Close()
		}
	})
}

// Compile-time interface check.
var _ Datagram = (*channelConn)(nil)

// channelConn adapts a detached data channel to the Datagram
// interface. SCTP preserves message boundaries, so each read is one
// command. A pump goroutine owns the blocking reads; ReadDatagram
// stays cancellable without tearing the channel down.
type channelConn struct {
	rwc      datachannel.ReadWriteCloser
	messages chan []byte
	readErr  error

	closed    chan struct{}
	closeOnce sync.Once
}

func newChannelConn(rwc datachannel.ReadWriteCloser) *channelConn {
	conn := &channelConn{
		rwc:      rwc,
		messages: make(chan []byte, 64),
		closed:   make(chan struct{}),
	}
	go conn.readPump()
	return conn
}

func (c *channelConn) readPump() {
	for {
		buffer := make([]byte, MaxDatagramSize)
		length, err := c.rwc.Read(buffer)
		if err != nil {
			c.readErr = err
			close(c.messages)
			return
		}
		select {
		case c.messages <- buffer[:length]:
		case <-c.closed:
			return
		}
	}
}

func (c *channelConn) WriteDatagram(ctx context.Context, payload []byte) error {
	if len(payload) > MaxDatagramSize {
		return fmt.Errorf("datagram is %d bytes, max %d", len(payload), MaxDatagramSize)
	}
	select {
	case <-c.closed:
		return net.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if _, err := c.rwc.Write(payload); err != nil {
		return fmt.Errorf("data channel write: %w", err)
	}
	return nil
}

func (c *channelConn) ReadDatagram(ctx context.Context) ([]byte, error) {
	select {
	case payload, ok := <-c.messages:
		if !ok {
			return nil, fmt.Errorf("data channel read: %w", c.readErr)
		}
		return payload, nil
	case <-c.closed:
		return nil, net.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *channelConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.rwc.Close()
}
