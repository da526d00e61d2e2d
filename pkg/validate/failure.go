package validate

import "fmt"

// FailureType names the check a Failure comes from.
type FailureType string

const (
	FailureParser            FailureType = "parser failure"
	FailureBrokenFrame       FailureType = "broken frame"
	FailureJunkData          FailureType = "junk data"
	FailureLameHeaderMissing FailureType = "LAME header not present"
	FailureLameInfoCRC       FailureType = "LAME info CRC"
	FailureLameMusicCRC      FailureType = "LAME music CRC"
	FailureFrameCRC          FailureType = "frame CRC"
	FailureAverageBitrate    FailureType = "average bitrate"
)

// NoOffset marks a failure that concerns the stream as a whole.
const NoOffset int64 = -1

// Failure is one defect found in a stream.
type Failure struct {
	Type    FailureType `json:"type"`
	Details string      `json:"details,omitempty"`
	Offset  int64       `json:"offset"`
}

func (f Failure) String() string {
	s := string(f.Type)
	if f.Offset != NoOffset {
		s = fmt.Sprintf("%s at offset %d", s, f.Offset)
	}
	if f.Details != "" {
		s += ": " + f.Details
	}
	return s
}
