package scrapybara

// InstanceType selects the remote environment to provision.
type InstanceType string

const (
	// InstanceBrowser is a hosted Chromium instance.
	InstanceBrowser InstanceType = "browser"
	// InstanceUbuntu is a full Ubuntu desktop instance.
	InstanceUbuntu InstanceType = "ubuntu"
)

// Wire DTOs for the provider's JSON API.

type startRequest struct {
	InstanceType InstanceType `json:"instance_type"`
}

type startResponse struct {
	InstanceID string `json:"instance_id"`
}

type computerRequest struct {
	Action      string   `json:"action"`
	Coordinates []int    `json:"coordinates,omitempty"`
	Button      string   `json:"button,omitempty"`
	NumClicks   int      `json:"num_clicks,omitempty"`
	DeltaX      int      `json:"delta_x,omitempty"`
	DeltaY      int      `json:"delta_y,omitempty"`
	Text        string   `json:"text,omitempty"`
	Keys        []string `json:"keys,omitempty"`
	DurationMs  int      `json:"duration_ms,omitempty"`
}

type screenshotResponse struct {
	Base64Image string `json:"base_64_image"`
}

type gotoRequest struct {
	URL string `json:"url"`
}

type currentURLResponse struct {
	CurrentURL string `json:"current_url"`
}

type streamURLResponse struct {
	StreamURL string `json:"stream_url"`
}

type errorResponse struct {
	Error string `json:"error"`
}
