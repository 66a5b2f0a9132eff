package action

import (
	"errors"
	"testing"

	"github.com/opencua/gateway/internal/shared/errdefs"
)

func TestParseClick(t *testing.T) {
	a, err := Parse([]byte(`{"type":"click","x":100,"y":200,"button":"left"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if a.Type != TypeClick {
		t.Errorf("Expected type click, got %s", a.Type)
	}
	if a.X != 100 || a.Y != 200 {
		t.Errorf("Expected coordinates (100, 200), got (%d, %d)", a.X, a.Y)
	}
	if a.Button != "left" {
		t.Errorf("Expected button left, got %s", a.Button)
	}
}

func TestParseClickDefaultButton(t *testing.T) {
	a, err := Parse([]byte(`{"type":"click","x":1,"y":2}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if a.Button != "left" {
		t.Errorf("Expected default button left, got %s", a.Button)
	}
}

func TestParseValid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"double_click", `{"type":"double_click","x":10,"y":20}`},
		{"scroll", `{"type":"scroll","x":0,"y":0,"delta_y":-120}`},
		{"type", `{"type":"type","text":"hello world"}`},
		{"wait default", `{"type":"wait"}`},
		{"wait explicit", `{"type":"wait","ms":250}`},
		{"move", `{"type":"move","x":5,"y":6}`},
		{"keypress", `{"type":"keypress","keys":["ctrl","l"]}`},
		{"goto", `{"type":"goto","url":"https://example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.payload)); err != nil {
				t.Errorf("Parse(%s) failed: %v", tt.payload, err)
			}
		})
	}
}

func TestParseWaitDefault(t *testing.T) {
	a, err := Parse([]byte(`{"type":"wait"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if a.Ms != 1000 {
		t.Errorf("Expected default wait of 1000ms, got %d", a.Ms)
	}
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty body", `{}`},
		{"empty type", `{"type":""}`},
		{"unknown type", `{"type":"drag","x":1,"y":2}`},
		{"click missing y", `{"type":"click","x":100}`},
		{"click string x", `{"type":"click","x":"100","y":200}`},
		{"scroll without deltas", `{"type":"scroll","x":0,"y":0}`},
		{"type missing text", `{"type":"type"}`},
		{"type empty text", `{"type":"type","text":""}`},
		{"wait negative", `{"type":"wait","ms":-5}`},
		{"keypress missing keys", `{"type":"keypress"}`},
		{"keypress empty keys", `{"type":"keypress","keys":[]}`},
		{"keypress empty key name", `{"type":"keypress","keys":["ctrl",""]}`},
		{"keypress mistyped keys", `{"type":"keypress","keys":"ctrl"}`},
		{"goto missing url", `{"type":"goto"}`},
		{"bad button", `{"type":"click","x":1,"y":2,"button":"top"}`},
		{"not json", `click`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.payload))
			if err == nil {
				t.Fatalf("Parse(%s) should fail", tt.payload)
			}

			var invalidErr *errdefs.InvalidActionError
			if !errors.As(err, &invalidErr) {
				t.Errorf("Expected InvalidActionError, got %T", err)
			}
		})
	}
}
