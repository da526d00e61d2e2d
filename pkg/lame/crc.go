package lame

import "github.com/sigurn/crc16"

// LAME uses CRC-16/ARC for both of its checksums.
var arcTable = crc16.MakeTable(crc16.CRC16_ARC)

// Checksum returns the CRC-16/ARC of b.
func Checksum(b []byte) uint16 {
	return crc16.Checksum(b, arcTable)
}

// MusicCRC accumulates the CRC of the audio bytes following a LAME frame.
// The zero value is not ready for use; call NewMusicCRC.
type MusicCRC struct {
	crc uint16
	n   int64
}

func NewMusicCRC() *MusicCRC {
	return &MusicCRC{crc: crc16.Init(arcTable)}
}

// Write adds p to the checksum. It never fails.
func (m *MusicCRC) Write(p []byte) (int, error) {
	m.crc = crc16.Update(m.crc, p, arcTable)
	m.n += int64(len(p))
	return len(p), nil
}

// Sum16 returns the checksum of everything written so far.
func (m *MusicCRC) Sum16() uint16 {
	return crc16.Complete(m.crc, arcTable)
}

// Len is the number of bytes written.
func (m *MusicCRC) Len() int64 { return m.n }
