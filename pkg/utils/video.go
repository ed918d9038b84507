package utils

// bitrateTier bounds the video bitrate, in kbps, for outputs of at least minHeight lines.
type bitrateTier struct {
	minHeight int
	min, max  int
}

// Ordered tallest first.
var bitrateTiers = []bitrateTier{
	{2160, 8000, 40000},
	{1440, 5000, 16000},
	{1080, 3000, 8000},
	{720, 1500, 4000},
	{480, 500, 2000},
	{360, 300, 1000},
}

// BitrateBounds returns the accepted video bitrate range for an output height.
// Heights below the smallest tier get the 480p range.
func BitrateBounds(height int) (int, int) {
	for _, t := range bitrateTiers {
		if height >= t.minHeight {
			return t.min, t.max
		}
	}
	return 500, 2000
}

func ClampBitrate(kbps, height int) int {
	lo, hi := BitrateBounds(height)
	switch {
	case kbps < lo:
		return lo
	case kbps > hi:
		return hi
	}
	return kbps
}
