package apimodel

type FaceStatus struct {
	Mode             string     `json:"mode"`
	Visible          bool       `json:"visible"`
	LowBitColor      bool       `json:"low_bit_color"`
	BurnInProtection bool       `json:"burn_in_protection"`
	Surface          Surface    `json:"surface"`
	Ticks            uint64     `json:"ticks"`
	Weather          Weather    `json:"weather"`
	Sync             SyncStatus `json:"sync"`
	Version          string     `json:"version"`
}

type Surface struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	Round  bool `json:"round"`
}

type Weather struct {
	High    string `json:"high"`
	Low     string `json:"low"`
	IconId  int    `json:"icon_id"`
	Icon    string `json:"icon"`
	Updates uint64 `json:"updates"`
}

type SyncStatus struct {
	State      string `json:"state"`
	Handshakes uint64 `json:"handshakes"`
	Sent       uint64 `json:"sent"`
	Failed     uint64 `json:"failed"`
	Pending    int    `json:"pending"`
	Coalesced  uint64 `json:"coalesced"`
	Evicted    uint64 `json:"evicted"`
	Received   uint64 `json:"received"`
	Dropped    uint64 `json:"dropped"`
}

type WeatherRequest struct {
	RequestId string `json:"request_id"`
}
