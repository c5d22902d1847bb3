package util

import "time"

const (
	// ALFN frames are 65536 samples at 44.1 kHz.
	FrameSamples    = 65536
	FrameSampleRate = 44100

	// GPSLeapSeconds is GPS time minus UTC.
	GPSLeapSeconds = 18
)

var gpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// FramePeriod is the duration of one ALFN frame, about 1.486s.
const FramePeriod = time.Duration(int64(FrameSamples) * int64(time.Second) / FrameSampleRate)

// ALFNForTime returns the frame number in progress at t. Frame 0 began
// at the GPS epoch.
func ALFNForTime(t time.Time) uint32 {
	gps := t.Sub(gpsEpoch) + GPSLeapSeconds*time.Second
	if gps < 0 {
		return 0
	}
	// Sample counts overflow a Duration, so split on seconds.
	secs := uint64(gps / time.Second)
	nanos := uint64(gps % time.Second)
	samples := secs*FrameSampleRate + nanos*FrameSampleRate/uint64(time.Second)
	return uint32(samples / FrameSamples)
}

// TimeForALFN returns the UTC start time of frame alfn, rounded up to
// the nanosecond.
func TimeForALFN(alfn uint32) time.Time {
	samples := uint64(alfn) * FrameSamples
	secs := samples / FrameSampleRate
	rem := samples % FrameSampleRate
	d := time.Duration(secs)*time.Second + time.Duration((rem*uint64(time.Second)+FrameSampleRate-1)/FrameSampleRate)
	return gpsEpoch.Add(d - GPSLeapSeconds*time.Second)
}
