package trace

import "errors"

var (
	// ErrShortBuffer means a varint ran past the end of the frame.
	ErrShortBuffer = errors.New("trace: truncated varint")

	// ErrOverlong means a varint encoded more than 64 bits.
	ErrOverlong = errors.New("trace: varint longer than 64 bits")
)

// appendUvarint appends v in base-128 groups, most significant first.
// Every byte except the last has the high bit set. Tick values are 64 bit
// so the worst case is ten bytes; channel numbers and latency deltas are
// typically one.
func appendUvarint(dst []byte, v uint64) []byte {
	if v >= 0x80 {
		dst = appendContinuation(dst, v>>7)
	}
	return append(dst, byte(v&0x7F))
}

func appendContinuation(dst []byte, v uint64) []byte {
	if v >= 0x80 {
		dst = appendContinuation(dst, v>>7)
	}
	return append(dst, byte(v&0x7F)|0x80)
}

// decodeUvarint reads one varint from the front of *data, advancing it
// past the consumed bytes.
func decodeUvarint(data *[]byte) (uint64, error) {
	var v uint64
	for i := 0; ; i++ {
		if len(*data) == 0 {
			return 0, ErrShortBuffer
		}
		if i == 10 {
			return 0, ErrOverlong
		}
		c := (*data)[0]
		*data = (*data)[1:]
		v = v<<7 | uint64(c&0x7F)
		if c&0x80 == 0 {
			return v, nil
		}
	}
}
