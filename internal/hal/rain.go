package hal

// RainSensor reports the raw analog value and whether rain is detected.
type RainSensor interface {
	Read() (raw int, raining bool)
}

// ThresholdRainSensor reads an analog input and applies the detection
// threshold: readings below the threshold mean the pad is wet.
type ThresholdRainSensor struct {
	source    RawReader
	threshold int
}

func NewThresholdRainSensor(source RawReader, threshold int) *ThresholdRainSensor {
	return &ThresholdRainSensor{source: source, threshold: threshold}
}

func (s *ThresholdRainSensor) Read() (int, bool) {
	raw := s.source.ReadRaw()
	return raw, raw < s.threshold
}
