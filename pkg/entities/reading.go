package entities

// Channel names in the fixed order used by feature vectors, statistics and exports.
const (
	ChannelCOMics      string = "co_m"
	ChannelEthanolMics string = "eth_m"
	ChannelVOCMics     string = "voc_m"
	ChannelNO2Grove    string = "no2"
	ChannelEthanolGM   string = "eth_gm"
	ChannelVOCGM       string = "voc_gm"
	ChannelCOGM        string = "co_gm"
)

// ChannelCount is the number of sensor channels carried by a reading.
const ChannelCount = 7

// Channels lists every sensor channel in canonical order.
var Channels = [ChannelCount]string{
	ChannelCOMics,
	ChannelEthanolMics,
	ChannelVOCMics,
	ChannelNO2Grove,
	ChannelEthanolGM,
	ChannelVOCGM,
	ChannelCOGM,
}

// Reading is one timestamped multi-channel sensor sample.
type Reading struct {
	Timestamp    int64   `json:"timestamp"`
	Sample       string  `json:"sample"`
	COMics       float64 `json:"co_m"`
	EthanolMics  float64 `json:"eth_m"`
	VOCMics      float64 `json:"voc_m"`
	NO2Grove     float64 `json:"no2"`
	EthanolGM    float64 `json:"eth_gm"`
	VOCGM        float64 `json:"voc_gm"`
	COGM         float64 `json:"co_gm"`
	RelativeTime float64 `json:"relative_time"`
}

// Values returns the channel values in canonical order.
func (r Reading) Values() [ChannelCount]float64 {
	return [ChannelCount]float64{
		r.COMics,
		r.EthanolMics,
		r.VOCMics,
		r.NO2Grove,
		r.EthanolGM,
		r.VOCGM,
		r.COGM,
	}
}

// Session is a point-in-time copy of a recording.
type Session struct {
	Name           string
	StartTimestamp *int64
	Readings       []Reading
}
