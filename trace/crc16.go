package trace

// crc16Update folds data into a running checksum. CCITT-style shift/xor
// form, small enough to run from the firmware side without a lookup
// table.
func crc16Update(crc uint16, data []byte) uint16 {
	for _, b := range data {
		b = b ^ uint8(crc&0xFF)
		b = b ^ (b << 4)
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}

// crc16 checksums a complete frame body.
func crc16(data []byte) uint16 {
	return crc16Update(0xFFFF, data)
}
