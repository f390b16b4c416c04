// Package audiosource captures receiver audio from a ka9q-radio-style RTP
// multicast stream into frames of signed 16-bit big-endian PCM samples
// (ka9q-radio wire order); callers swap them to little-endian before
// handing them to internal/wspr.Decode.
// Grounded on the teacher's audio.go: an SO_REUSEPORT/SO_REUSEADDR multicast
// UDP socket, a receive loop parsing pion/rtp packets, routed by payload
// type rather than by per-session SSRC (WSPR has exactly one receive chain,
// not per-client sessions).
package audiosource

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"syscall"

	"github.com/pion/rtp"
	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// PayloadType distinguishes the RTP payload encoding.
type PayloadType uint8

const (
	PayloadPCM  PayloadType = 0 // signed 16-bit big-endian PCM, ka9q-radio convention
	PayloadOpus PayloadType = 1
)

// Frame is one received and decoded audio packet.
type Frame struct {
	PCM       []byte
	SSRC      uint32
	Timestamp uint32
}

// Receiver joins a ka9q-radio-style multicast group and decodes arriving RTP
// packets into PCM frames delivered on a channel.
type Receiver struct {
	addr    *net.UDPAddr
	iface   *net.Interface
	payload PayloadType

	mu      sync.RWMutex
	running bool
	conn    *net.UDPConn
	frames  chan Frame
}

// New creates a Receiver bound to addr on iface (nil uses the system
// default interface for the multicast join).
func New(addr *net.UDPAddr, iface *net.Interface, payload PayloadType) (*Receiver, error) {
	conn, err := listenMulticast(addr, iface)
	if err != nil {
		return nil, fmt.Errorf("audiosource: %w", err)
	}
	return &Receiver{
		addr:    addr,
		iface:   iface,
		payload: payload,
		conn:    conn,
		frames:  make(chan Frame, 64),
	}, nil
}

// listenMulticast mirrors the teacher's setupDataSocket: SO_REUSEPORT and
// SO_REUSEADDR let multiple processes join the same multicast group.
func listenMulticast(addr *net.UDPAddr, iface *net.Interface) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
					sockErr = fmt.Errorf("set SO_REUSEPORT: %w", err)
					return
				}
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
					sockErr = fmt.Errorf("set SO_REUSEADDR: %w", err)
					return
				}
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	packetConn, err := lc.ListenPacket(context.Background(), "udp4", addr.String())
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	conn := packetConn.(*net.UDPConn)

	if err := conn.SetReadBuffer(1024 * 1024); err != nil {
		log.Printf("audiosource: failed to set read buffer size: %v", err)
	}

	if addr.IP.IsMulticast() && iface != nil {
		p := ipv4.NewPacketConn(conn)
		if err := p.JoinGroup(iface, addr); err != nil {
			log.Printf("audiosource: failed to join multicast group on %s: %v", iface.Name, err)
		}
	}
	return conn, nil
}

// Start begins the receive loop in a background goroutine.
func (r *Receiver) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	go r.receiveLoop()
	log.Printf("audiosource: receiving on %s", r.addr)
}

// Stop closes the socket and ends the receive loop.
func (r *Receiver) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	r.conn.Close()
}

// Frames returns the channel of decoded PCM frames.
func (r *Receiver) Frames() <-chan Frame {
	return r.frames
}

func (r *Receiver) receiveLoop() {
	defer close(r.frames)
	buf := make([]byte, 65536)

	for {
		r.mu.RLock()
		running := r.running
		r.mu.RUnlock()
		if !running {
			return
		}

		n, err := r.conn.Read(buf)
		if err != nil {
			if !r.running {
				return
			}
			log.Printf("audiosource: read error: %v", err)
			continue
		}
		if n < 12 {
			continue
		}

		var pkt rtp.Packet
		if err := pkt.Unmarshal(buf[:n]); err != nil {
			log.Printf("audiosource: RTP parse error: %v", err)
			continue
		}

		pcm, err := r.decodePayload(pkt.Payload)
		if err != nil {
			log.Printf("audiosource: payload decode error: %v", err)
			continue
		}

		select {
		case r.frames <- Frame{PCM: pcm, SSRC: pkt.SSRC, Timestamp: pkt.Timestamp}:
		default:
			log.Printf("audiosource: frame channel full, dropping packet")
		}
	}
}

func (r *Receiver) decodePayload(payload []byte) ([]byte, error) {
	if r.payload == PayloadPCM {
		return payload, nil
	}
	return decodeOpus(payload)
}
