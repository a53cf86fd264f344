package api

import (
	"github.com/jypelle/sunface/apimodel"
	"github.com/jypelle/sunface/internal/face"
	"github.com/jypelle/sunface/internal/face/weather"
	"github.com/jypelle/sunface/internal/version"
)

func NewFaceStatus(status face.Status) apimodel.FaceStatus {
	return apimodel.FaceStatus{
		Mode:             status.Mode.String(),
		Visible:          status.Visible,
		LowBitColor:      status.Properties.LowBitColor,
		BurnInProtection: status.Properties.BurnInProtection,
		Surface: apimodel.Surface{
			Width:  status.Geometry.Width,
			Height: status.Geometry.Height,
			Round:  status.Geometry.Round,
		},
		Ticks: status.Ticks,
		Weather: apimodel.Weather{
			High:    status.Weather.High,
			Low:     status.Weather.Low,
			IconId:  status.Weather.IconId,
			Icon:    weather.IconFor(status.Weather.IconId).String(),
			Updates: status.Updates,
		},
		Sync: apimodel.SyncStatus{
			State:      status.Sync.State.String(),
			Handshakes: status.Sync.Handshakes,
			Sent:       status.Sync.Sent,
			Failed:     status.Sync.Failed,
			Pending:    status.Sync.Pending,
			Coalesced:  status.Sync.Coalesced,
			Evicted:    status.Sync.Evicted,
			Received:   status.Sync.Received,
			Dropped:    status.Sync.Dropped,
		},
		Version: version.AppVersion.String(),
	}
}
