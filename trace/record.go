// Package trace defines the wire format for alarm firing reports: one
// compact CRC-framed record per fired alarm, emitted by the firmware over
// a serial link and decoded by host tooling. Integers are varint-encoded
// to keep records short at typical latencies; the fire tick is carried as
// a delta from the wake tick for the same reason.
//
// Frame layout: 0x7E sync byte, payload length, payload (channel, wake
// tick, fire delta), CRC16 over length and payload. The decoder
// resynchronizes on the sync byte after corrupt or partial frames.
package trace

import "errors"

// SyncByte marks the start of every frame.
const SyncByte = 0x7E

// MaxFrameLen bounds a full frame: sync, length, worst-case payload
// (1 + 10 + 10 varint bytes), CRC.
const MaxFrameLen = 2 + 21 + 2

var (
	// ErrBadFrame means a frame's CRC did not match its body.
	ErrBadFrame = errors.New("trace: frame CRC mismatch")

	// ErrFrameTooLong means a length byte exceeded the worst-case
	// payload size; the decoder treats it as corruption.
	ErrFrameTooLong = errors.New("trace: frame length out of range")
)

// Record is one alarm firing report.
type Record struct {
	Channel  uint8  // compare channel the alarm fired on
	WakeTick uint64 // requested deadline
	FireTick uint64 // tick observed when the callback ran, >= WakeTick
}

// Latency returns how late the alarm fired, in ticks.
func (r Record) Latency() uint64 {
	return r.FireTick - r.WakeTick
}

// AppendRecord appends one framed record to dst and returns the extended
// slice. The firmware side passes a fixed scratch buffer as dst to stay
// allocation-free.
func AppendRecord(dst []byte, r Record) []byte {
	var payload [21]byte
	p := payload[:0]
	p = appendUvarint(p, uint64(r.Channel))
	p = appendUvarint(p, r.WakeTick)
	p = appendUvarint(p, r.FireTick-r.WakeTick)

	lenByte := [1]byte{byte(len(p))}
	crc := crc16Update(crc16Update(0xFFFF, lenByte[:]), p)

	dst = append(dst, SyncByte, lenByte[0])
	dst = append(dst, p...)
	return append(dst, byte(crc>>8), byte(crc))
}

// Decoder reassembles records from a byte stream, tolerating partial
// reads and resynchronizing after garbage.
type Decoder struct {
	buf []byte
}

// Feed appends raw bytes received from the link.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next extracts the next complete record. It returns ok=false when the
// buffer holds no complete frame yet; a non-nil error reports a corrupt
// frame that was skipped (the caller may keep calling Next).
func (d *Decoder) Next() (r Record, ok bool, err error) {
	// Drop everything before the next sync byte.
	start := -1
	for i, b := range d.buf {
		if b == SyncByte {
			start = i
			break
		}
	}
	if start < 0 {
		d.buf = d.buf[:0]
		return Record{}, false, nil
	}
	d.buf = d.buf[start:]

	if len(d.buf) < 2 {
		return Record{}, false, nil
	}
	plen := int(d.buf[1])
	if plen > MaxFrameLen-4 {
		d.buf = d.buf[1:]
		return Record{}, false, ErrFrameTooLong
	}
	if len(d.buf) < 2+plen+2 {
		return Record{}, false, nil
	}

	body := d.buf[1 : 2+plen] // length byte + payload
	wire := uint16(d.buf[2+plen])<<8 | uint16(d.buf[2+plen+1])
	if crc16(body) != wire {
		// Skip the sync byte and rescan; the real frame may start
		// inside what we just treated as payload.
		d.buf = d.buf[1:]
		return Record{}, false, ErrBadFrame
	}

	payload := d.buf[2 : 2+plen]
	d.buf = d.buf[2+plen+2:]

	r, err = decodeRecord(payload)
	if err != nil {
		return Record{}, false, err
	}
	return r, true, nil
}

func decodeRecord(payload []byte) (Record, error) {
	ch, err := decodeUvarint(&payload)
	if err != nil {
		return Record{}, err
	}
	wake, err := decodeUvarint(&payload)
	if err != nil {
		return Record{}, err
	}
	delta, err := decodeUvarint(&payload)
	if err != nil {
		return Record{}, err
	}
	return Record{Channel: uint8(ch), WakeTick: wake, FireTick: wake + delta}, nil
}
