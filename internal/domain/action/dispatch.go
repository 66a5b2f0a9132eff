package action

import (
	"context"
	"time"

	"github.com/opencua/gateway/internal/providers/scrapybara"
	"github.com/opencua/gateway/internal/shared/errdefs"
	"github.com/opencua/gateway/internal/shared/types"
)

// Result carries the visual confirmation returned after every dispatch.
type Result struct {
	Screenshot string
	CurrentURL string
}

// Dispatch maps one validated action to exactly one provider call, then
// fetches a fresh screenshot (and the current URL for browser sessions)
// so the caller can confirm state. Provider failures propagate without
// retry.
func Dispatch(ctx context.Context, inst scrapybara.Instance, computerType types.ComputerType, a *Action) (*Result, error) {
	if a.Type == TypeGoto && !computerType.IsBrowser() {
		return nil, &errdefs.InvalidActionError{
			Reason: "goto is only supported on browser sessions",
		}
	}

	var err error
	switch a.Type {
	case TypeClick:
		err = inst.Click(ctx, a.X, a.Y, a.Button)
	case TypeDoubleClick:
		err = inst.DoubleClick(ctx, a.X, a.Y)
	case TypeScroll:
		err = inst.Scroll(ctx, a.X, a.Y, a.DeltaX, a.DeltaY)
	case TypeType:
		err = inst.TypeText(ctx, a.Text)
	case TypeWait:
		err = inst.Wait(ctx, time.Duration(a.Ms)*time.Millisecond)
	case TypeMove:
		err = inst.MoveCursor(ctx, a.X, a.Y)
	case TypeKeypress:
		err = inst.PressKeys(ctx, a.Keys)
	case TypeGoto:
		err = inst.Navigate(ctx, a.URL)
	default:
		return nil, &errdefs.InvalidActionError{Reason: "unknown action type " + string(a.Type)}
	}
	if err != nil {
		return nil, err
	}

	shot, err := inst.Screenshot(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Screenshot: shot}
	if computerType.IsBrowser() {
		// Current URL is informational; a failure here must not fail
		// an action that already ran.
		if url, err := inst.CurrentURL(ctx); err == nil {
			result.CurrentURL = url
		}
	}
	return result, nil
}
