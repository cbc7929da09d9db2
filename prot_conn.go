/*
  The MIT License (MIT)

  Copyright (c) 2015 Nirbhay Choubey

  Permission is hereby granted, free of charge, to any person obtaining a copy
  of this software and associated documentation files (the "Software"), to deal
  in the Software without restriction, including without limitation the rights
  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
  copies of the Software, and to permit persons to whom the Software is
  furnished to do so, subject to the following conditions:

  The above copyright notice and this permission notice shall be included in all
  copies or substantial portions of the Software.

  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
  SOFTWARE.
*/

package mysql

import (
	"net"
)

// _MAX_PAYLOAD_LENGTH is the largest payload a single protocol packet can
// carry. A payload of exactly this size implies continuation: the sender
// splits it across multiple frames sharing the same logical packet, ending
// with a frame shorter than the max (zero-length if the split landed on an
// exact multiple).
const _MAX_PAYLOAD_LENGTH = 0xFFFFFF

type Conn struct {
	// connection properties
	p properties

	conn  net.Conn
	rw    readWriter
	seqno uint8 // packet sequence number

	// scratch buffer reused by packet builders to avoid a fresh
	// allocation on every outgoing command.
	buff buffer

	// OK packet
	affectedRows uint64
	lastInsertId uint64
	statusFlags  uint16
	warnings     uint16

	// ERR packet
	e Error

	// handshake initialization packet (from server)
	serverVersion      string
	connectionId       uint32
	serverCapabilities uint32
	serverCharset      uint8
	authPluginData     []byte
	authPluginName     string

	// handshake response packet (from client)
	clientCharset uint8
}

func open(p properties) (*Conn, error) {
	var err error

	c := &Conn{}
	c.rw = &defaultReadWriter{}
	c.p = p

	// open a connection with the server
	if c.conn, err = dial(p.address, p.socket); err != nil {
		return nil, err
	}

	// perform handshake
	if err = c.handshake(); err != nil {
		return nil, err
	}

	return c, nil
}

// readPacket reads the next protocol packet from the network and returns the
// payload after increment the packet sequence number. A payload frame of
// exactly _MAX_PAYLOAD_LENGTH bytes is a continuation: the next frame is
// read and its payload appended, each frame's own sequence id validated in
// turn, until a frame shorter than the max terminates the packet.
func (c *Conn) readPacket() ([]byte, error) {
	var payload []byte

	for {
		// first read the packet header
		header := make([]byte, 4)
		if _, err := c.rw.read(c.conn, header); err != nil {
			return nil, err
		}

		// payload length
		payloadLength := getUint24(header[0:3])

		if header[3] != c.seqno {
			return nil, myError(ErrPacketOutOfSync, c.seqno, header[3])
		}

		// increment the packet sequence number
		c.seqno++

		// read this frame's payload
		frame := make([]byte, payloadLength)
		if _, err := c.rw.read(c.conn, frame); err != nil {
			return nil, err
		}
		payload = append(payload, frame...)

		if payloadLength < _MAX_PAYLOAD_LENGTH {
			break
		}
	}

	return payload, nil
}

// writePacket accepts the protocol packet to be written (a 4-byte header
// placeholder followed by the payload), splits it into on-wire frames of at
// most _MAX_PAYLOAD_LENGTH bytes, and writes each in turn, populating its
// header and advancing the packet sequence number as it goes.
func (c *Conn) writePacket(b []byte) error {
	payload := b[4:]

	for {
		n := len(payload)
		if n > _MAX_PAYLOAD_LENGTH {
			n = _MAX_PAYLOAD_LENGTH
		}

		frame := make([]byte, 4+n)
		putUint24(frame[0:3], uint32(n)) // payload length
		frame[3] = c.seqno               // packet sequence number
		copy(frame[4:], payload[:n])

		if _, err := c.rw.write(c.conn, frame); err != nil {
			return err
		}
		c.seqno++

		payload = payload[n:]
		if n < _MAX_PAYLOAD_LENGTH {
			return nil
		}
	}
}

// resetSeqno resets the packet sequence number.
func (c *Conn) resetSeqno() {
	c.seqno = 0
	c.rw.reset()
}
