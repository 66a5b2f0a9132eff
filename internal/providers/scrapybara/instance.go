package scrapybara

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/opencua/gateway/internal/shared/errdefs"
)

// Instance is one provisioned remote browser or desktop instance.
// Exactly one session owns an Instance; Stop releases it.
type Instance interface {
	// ID returns the provider's opaque instance identifier.
	ID() string

	// Screenshot captures the current screen as a base64 PNG.
	Screenshot(ctx context.Context) (string, error)

	// Click performs a single mouse click at (x, y).
	Click(ctx context.Context, x, y int, button string) error

	// DoubleClick performs a double left click at (x, y).
	DoubleClick(ctx context.Context, x, y int) error

	// Scroll scrolls by (deltaX, deltaY) with the cursor at (x, y).
	Scroll(ctx context.Context, x, y, deltaX, deltaY int) error

	// TypeText types the text at the current focus.
	TypeText(ctx context.Context, text string) error

	// MoveCursor moves the cursor to (x, y).
	MoveCursor(ctx context.Context, x, y int) error

	// PressKeys presses the named keys together, in order.
	PressKeys(ctx context.Context, keys []string) error

	// Wait pauses the instance for the given duration.
	Wait(ctx context.Context, d time.Duration) error

	// Navigate loads a URL. Browser instances only.
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the active page URL. Browser instances only.
	CurrentURL(ctx context.Context) (string, error)

	// StreamURL returns the provider's live-view URL for the instance.
	StreamURL(ctx context.Context) (string, error)

	// Stop releases the remote instance.
	Stop(ctx context.Context) error
}

// remoteInstance is the wire-backed Instance implementation.
type remoteInstance struct {
	client *Client
	id     string
}

func (r *remoteInstance) ID() string { return r.id }

func (r *remoteInstance) path(suffix string) string {
	return fmt.Sprintf("/instance/%s/%s", r.id, suffix)
}

func (r *remoteInstance) computer(ctx context.Context, op string, req computerRequest) error {
	return r.client.do(ctx, op, resty.MethodPost, r.path("computer"), req, nil)
}

func (r *remoteInstance) Screenshot(ctx context.Context) (string, error) {
	var out screenshotResponse
	if err := r.client.do(ctx, "screenshot", resty.MethodGet, r.path("screenshot"), nil, &out); err != nil {
		return "", err
	}
	if out.Base64Image == "" {
		return "", &errdefs.ProviderError{Op: "screenshot", Message: "provider returned empty screenshot"}
	}
	return out.Base64Image, nil
}

func (r *remoteInstance) Click(ctx context.Context, x, y int, button string) error {
	if button == "" {
		button = "left"
	}
	return r.computer(ctx, "click", computerRequest{
		Action:      "click_mouse",
		Coordinates: []int{x, y},
		Button:      button,
		NumClicks:   1,
	})
}

func (r *remoteInstance) DoubleClick(ctx context.Context, x, y int) error {
	return r.computer(ctx, "double_click", computerRequest{
		Action:      "click_mouse",
		Coordinates: []int{x, y},
		Button:      "left",
		NumClicks:   2,
	})
}

func (r *remoteInstance) Scroll(ctx context.Context, x, y, deltaX, deltaY int) error {
	return r.computer(ctx, "scroll", computerRequest{
		Action:      "scroll",
		Coordinates: []int{x, y},
		DeltaX:      deltaX,
		DeltaY:      deltaY,
	})
}

func (r *remoteInstance) TypeText(ctx context.Context, text string) error {
	return r.computer(ctx, "type", computerRequest{
		Action: "type_text",
		Text:   text,
	})
}

func (r *remoteInstance) MoveCursor(ctx context.Context, x, y int) error {
	return r.computer(ctx, "move", computerRequest{
		Action:      "move_mouse",
		Coordinates: []int{x, y},
	})
}

func (r *remoteInstance) PressKeys(ctx context.Context, keys []string) error {
	return r.computer(ctx, "keypress", computerRequest{
		Action: "press_key",
		Keys:   keys,
	})
}

func (r *remoteInstance) Wait(ctx context.Context, d time.Duration) error {
	return r.computer(ctx, "wait", computerRequest{
		Action:     "wait",
		DurationMs: int(d.Milliseconds()),
	})
}

func (r *remoteInstance) Navigate(ctx context.Context, url string) error {
	return r.client.do(ctx, "goto", resty.MethodPost, r.path("browser/goto"), gotoRequest{URL: url}, nil)
}

func (r *remoteInstance) CurrentURL(ctx context.Context) (string, error) {
	var out currentURLResponse
	if err := r.client.do(ctx, "current_url", resty.MethodGet, r.path("browser/current_url"), nil, &out); err != nil {
		return "", err
	}
	return out.CurrentURL, nil
}

func (r *remoteInstance) StreamURL(ctx context.Context) (string, error) {
	var out streamURLResponse
	if err := r.client.do(ctx, "stream_url", resty.MethodGet, r.path("stream_url"), nil, &out); err != nil {
		return "", err
	}
	return out.StreamURL, nil
}

func (r *remoteInstance) Stop(ctx context.Context) error {
	return r.client.do(ctx, "stop", resty.MethodPost, r.path("stop"), nil, nil)
}
