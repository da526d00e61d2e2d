package mpeg

// ID3v2 tag header layout: "ID3", version (2), flags (1), synchsafe size (4).
const (
	id3HeaderSize = 10
	id3MarkerSize = 3
)

var id3Marker = [id3MarkerSize]byte{'I', 'D', '3'}

func hasID3Marker(b []byte) bool {
	return len(b) >= id3MarkerSize &&
		b[0] == id3Marker[0] &&
		b[1] == id3Marker[1] &&
		b[2] == id3Marker[2]
}

// id3TagLength returns the total length of the tag whose 10-byte header is
// b, header included. The size field stores 7 bits per byte.
func id3TagLength(b []byte) int64 {
	size := int64(b[6]&0x7F)<<21 |
		int64(b[7]&0x7F)<<14 |
		int64(b[8]&0x7F)<<7 |
		int64(b[9]&0x7F)
	return id3HeaderSize + size
}

// ID3TagLength returns the total length of the ID3v2 tag b starts with. ok
// is false if b does not start with a complete tag header.
func ID3TagLength(b []byte) (n int64, ok bool) {
	if len(b) < id3HeaderSize || !hasID3Marker(b) {
		return 0, false
	}
	return id3TagLength(b), true
}
