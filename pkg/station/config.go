package station

import "time"

type Options struct {
	StationName    string
	StartALFN      uint32
	StrictAlphabet bool
	// FrameInterval defaults to util.FramePeriod.
	FrameInterval  time.Duration
	Outputs        []BitOutput
	Loopback       bool
}

// Status is a point-in-time view of the station.
type Status struct {
	StationName      string    `json:"station_name"`
	ALFN             uint32    `json:"alfn"`
	FramesEmitted    int       `json:"frames_emitted"`
	SkippedOutputs   int       `json:"skipped_outputs"`
	LastFrameTime    time.Time `json:"last_frame_time"`
	Loopback         bool      `json:"loopback"`
	VerifiedFrames   int       `json:"verified_frames"`
	LastVerifiedALFN uint32    `json:"last_verified_alfn"`
	Discontinuities  int       `json:"discontinuities"`
}
