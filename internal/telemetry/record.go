package telemetry

import "encoding/json"

// wireRecord is the outbound telemetry schema.
type wireRecord struct {
	Type       string `json:"type"`
	Timestamp  uint64 `json:"timestamp"`
	RSSI       int    `json:"rssi"`
	Len        int    `json:"len"`
	Amplitudes []int  `json:"amplitudes"`
}

// Marshal serializes the record to the collector's CSI JSON schema.
func (r *Record) Marshal() ([]byte, error) {
	return json.Marshal(wireRecord{
		Type:       "csi",
		Timestamp:  r.Timestamp,
		RSSI:       r.RSSI,
		Len:        r.Len,
		Amplitudes: r.Amplitudes,
	})
}
