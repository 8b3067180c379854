package speech

// Profile names a coarse voice character used by the selection
// heuristic.
type Profile string

// Supported voice profiles.
const (
	ProfileCalm      Profile = "calm"
	ProfileEnergetic Profile = "energetic"
	ProfileDeep      Profile = "deep"
)

// Options tunes a generation request.
type Options struct {
	Profile Profile
	Rate    float64 // playback rate multiplier, 0.5..2.0
	Pitch   float64 // pitch multiplier, 0.0..2.0
	Volume  float64 // 0.0..1.0
}

// DefaultOptions returns neutral generation options.
func DefaultOptions() Options {
	return Options{Profile: ProfileCalm, Rate: 1.0, Pitch: 1.0, Volume: 1.0}
}

// normalized fills zero values with defaults and clamps the rest.
func (o Options) normalized() Options {
	if o.Profile == "" {
		o.Profile = ProfileCalm
	}
	if o.Rate == 0 {
		o.Rate = 1.0
	}
	o.Rate = clamp(o.Rate, 0.5, 2.0)
	if o.Pitch == 0 {
		o.Pitch = 1.0
	}
	o.Pitch = clamp(o.Pitch, 0.0, 2.0)
	if o.Volume == 0 {
		o.Volume = 1.0
	}
	o.Volume = clamp(o.Volume, 0.0, 1.0)
	return o
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
