package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/csinode/internal/camera"
	"github.com/smazurov/csinode/internal/events"
	"github.com/smazurov/csinode/internal/version"
)

// StatusResponse represents the node status endpoint output.
type StatusResponse struct {
	Body struct {
		LinkState        string         `json:"link_state" doc:"Network link state: disconnected, connecting or connected"`
		SessionConnected bool           `json:"session_connected" doc:"Whether the collector session is up"`
		UptimeSeconds    int64          `json:"uptime_seconds" doc:"Seconds since the process started"`
		RecentEvents     []events.Entry `json:"recent_events,omitempty" doc:"Most recent node events, newest first"`
		Version          version.Info   `json:"version" doc:"Build and version metadata"`
	}
}

// CameraResponse represents the current camera parameter set.
type CameraResponse struct {
	Body camera.Params
}

func (s *Server) registerStatusRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Get Node Status",
		Description: "Get the current network link state, collector session state and build information",
		Tags:        []string{"status"},
	}, func(ctx context.Context, input *struct{}) (*StatusResponse, error) {
		resp := &StatusResponse{}
		resp.Body.LinkState = s.options.LinkState().String()
		resp.Body.SessionConnected = s.options.SessionConnected()
		resp.Body.UptimeSeconds = int64(time.Since(s.started) / time.Second)
		if s.options.RecentEvents != nil {
			resp.Body.RecentEvents = s.options.RecentEvents()
		}
		resp.Body.Version = version.Get()
		return resp, nil
	})
}

func (s *Server) registerCameraRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-camera",
		Method:      http.MethodGet,
		Path:        "/api/camera",
		Summary:     "Get Camera Parameters",
		Description: "Get the currently applied camera sensor parameters",
		Tags:        []string{"camera"},
		Errors:      []int{503},
	}, func(ctx context.Context, input *struct{}) (*CameraResponse, error) {
		sensor := s.options.Sensor()
		if sensor == nil {
			return nil, huma.Error503ServiceUnavailable("Camera sensor unavailable")
		}
		return &CameraResponse{Body: sensor.Status()}, nil
	})
}
