package order

import (
	"context"
	"net/http"
	"net/url"
	"sort"

	"github.com/rs/zerolog/log"
)

// Tracking is the normalized view of one shipment's journey, checkpoints
// newest-first.
type Tracking struct {
	AWB         string       `json:"awb"`
	Status      string       `json:"status"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

// Track queries the carrier-specific endpoint when an AWB is known, the
// generic endpoint otherwise. A failed live query falls back to whatever
// status/checkpoints the order record carried; the fallback is not an error.
func (s *Service) Track(ctx context.Context, shipment Shipment) Tracking {
	var trk Tracking
	var err error
	queried := false

	switch {
	case shipment.AWB != "" && shipment.Carrier != "":
		queried = true
		query := url.Values{}
		query.Set("awb", shipment.AWB)
		err = s.client.JSON(ctx, http.MethodGet, "/api/track/"+shipment.Carrier, query, nil, &trk)
	case shipment.TrackingURL != "":
		queried = true
		query := url.Values{}
		query.Set("url", shipment.TrackingURL)
		err = s.client.JSON(ctx, http.MethodGet, "/api/track/generic", query, nil, &trk)
	}

	if !queried || err != nil {
		if err != nil {
			log.Warn().Err(err).Str("awb", shipment.AWB).Msg("order: live tracking failed, using embedded shipment data")
		}
		status := shipment.Status
		if status == "" {
			status = "UNKNOWN"
		}
		trk = Tracking{
			AWB:         shipment.AWB,
			Status:      status,
			Checkpoints: append([]Checkpoint(nil), shipment.Checkpoints...),
		}
	}

	sortCheckpoints(trk.Checkpoints)
	return trk
}

func sortCheckpoints(cps []Checkpoint) {
	sort.SliceStable(cps, func(i, j int) bool {
		return cps[i].Time.After(cps[j].Time)
	})
}
