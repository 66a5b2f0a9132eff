package action

import (
	"encoding/json"
	"fmt"

	"github.com/opencua/gateway/internal/shared/errdefs"
)

// Type tags one action kind in the fixed vocabulary.
type Type string

const (
	TypeClick       Type = "click"
	TypeDoubleClick Type = "double_click"
	TypeScroll      Type = "scroll"
	TypeType        Type = "type"
	TypeWait        Type = "wait"
	TypeMove        Type = "move"
	TypeKeypress    Type = "keypress"
	TypeGoto        Type = "goto"
)

// defaultWaitMs is applied when a wait action omits its duration.
const defaultWaitMs = 1000

// Action is a validated input-injection or navigation command. Only the
// fields relevant to Type are meaningful.
type Action struct {
	Type   Type
	X      int
	Y      int
	Button string
	DeltaX int
	DeltaY int
	Text   string
	Keys   []string
	Ms     int
	URL    string
}

// payload mirrors the wire shape with pointer fields so missing and
// mistyped values are told apart during decoding.
type payload struct {
	Type   *string   `json:"type"`
	X      *float64  `json:"x"`
	Y      *float64  `json:"y"`
	Button *string   `json:"button"`
	DeltaX *float64  `json:"delta_x"`
	DeltaY *float64  `json:"delta_y"`
	Text   *string   `json:"text"`
	Keys   *[]string `json:"keys"`
	Ms     *float64  `json:"ms"`
	URL    *string   `json:"url"`
}

func invalid(format string, args ...interface{}) error {
	return &errdefs.InvalidActionError{Reason: fmt.Sprintf(format, args...)}
}

// Parse decodes and validates a tagged action payload. Every rejection
// happens here, before any provider call is issued.
func Parse(data []byte) (*Action, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, invalid("malformed action payload: %v", err)
	}

	if p.Type == nil || *p.Type == "" {
		return nil, invalid("action type is required")
	}

	a := &Action{Type: Type(*p.Type)}

	switch a.Type {
	case TypeClick:
		if err := requireCoordinates(p, a); err != nil {
			return nil, err
		}
		a.Button = "left"
		if p.Button != nil {
			a.Button = *p.Button
		}
		switch a.Button {
		case "left", "right", "middle":
		default:
			return nil, invalid("unsupported button %q", a.Button)
		}

	case TypeDoubleClick, TypeMove:
		if err := requireCoordinates(p, a); err != nil {
			return nil, err
		}

	case TypeScroll:
		if err := requireCoordinates(p, a); err != nil {
			return nil, err
		}
		if p.DeltaX != nil {
			a.DeltaX = int(*p.DeltaX)
		}
		if p.DeltaY != nil {
			a.DeltaY = int(*p.DeltaY)
		}
		if p.DeltaX == nil && p.DeltaY == nil {
			return nil, invalid("scroll requires delta_x or delta_y")
		}

	case TypeType:
		if p.Text == nil || *p.Text == "" {
			return nil, invalid("type requires non-empty text")
		}
		a.Text = *p.Text

	case TypeWait:
		a.Ms = defaultWaitMs
		if p.Ms != nil {
			if *p.Ms < 0 {
				return nil, invalid("wait ms must not be negative")
			}
			a.Ms = int(*p.Ms)
		}

	case TypeKeypress:
		if p.Keys == nil || len(*p.Keys) == 0 {
			return nil, invalid("keypress requires a non-empty keys list")
		}
		for _, k := range *p.Keys {
			if k == "" {
				return nil, invalid("keypress keys must not contain empty names")
			}
		}
		a.Keys = *p.Keys

	case TypeGoto:
		if p.URL == nil || *p.URL == "" {
			return nil, invalid("goto requires a url")
		}
		a.URL = *p.URL

	default:
		return nil, invalid("unknown action type %q", *p.Type)
	}

	return a, nil
}

func requireCoordinates(p payload, a *Action) error {
	if p.X == nil || p.Y == nil {
		return invalid("%s requires numeric x and y", *p.Type)
	}
	a.X = int(*p.X)
	a.Y = int(*p.Y)
	return nil
}
