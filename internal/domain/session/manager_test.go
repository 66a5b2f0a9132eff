package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opencua/gateway/internal/domain/agent"
	"github.com/opencua/gateway/internal/providers/scrapybara"
	"github.com/opencua/gateway/internal/shared/errdefs"
	"github.com/opencua/gateway/internal/shared/types"
)

type fakeInstance struct {
	mu        sync.Mutex
	id        string
	shot      string
	stream    string
	pageURL   string
	navigated []string
	clicks    int
	stops     int
	shotErr   error
	navErr    error
	stopErr   error
}

func newFakeInstance() *fakeInstance {
	return &fakeInstance{id: "inst-1", shot: "cGl4ZWxz", stream: "https://stream.example/inst-1", pageURL: "https://bing.com"}
}

func (f *fakeInstance) ID() string { return f.id }

func (f *fakeInstance) Screenshot(ctx context.Context) (string, error) {
	if f.shotErr != nil {
		return "", f.shotErr
	}
	return f.shot, nil
}

func (f *fakeInstance) Click(ctx context.Context, x, y int, button string) error {
	f.mu.Lock()
	f.clicks++
	f.mu.Unlock()
	return nil
}

func (f *fakeInstance) DoubleClick(ctx context.Context, x, y int) error          { return nil }
func (f *fakeInstance) Scroll(ctx context.Context, x, y, dx, dy int) error       { return nil }
func (f *fakeInstance) TypeText(ctx context.Context, text string) error          { return nil }
func (f *fakeInstance) MoveCursor(ctx context.Context, x, y int) error           { return nil }
func (f *fakeInstance) PressKeys(ctx context.Context, keys []string) error       { return nil }
func (f *fakeInstance) Wait(ctx context.Context, d time.Duration) error          { return nil }
func (f *fakeInstance) CurrentURL(ctx context.Context) (string, error)           { return f.pageURL, nil }
func (f *fakeInstance) StreamURL(ctx context.Context) (string, error)            { return f.stream, nil }

func (f *fakeInstance) Navigate(ctx context.Context, url string) error {
	if f.navErr != nil {
		return f.navErr
	}
	f.navigated = append(f.navigated, url)
	return nil
}

func (f *fakeInstance) Stop(ctx context.Context) error {
	if f.stopErr != nil {
		return f.stopErr
	}
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()
	return nil
}

type fakeProvisioner struct {
	inst *fakeInstance
	err  error
}

func (f *fakeProvisioner) Start(ctx context.Context, t scrapybara.InstanceType) (scrapybara.Instance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.inst, nil
}

// scriptedStepper replays canned item batches, one per step.
type scriptedStepper struct {
	steps [][]types.Item
	calls int
}

func (s *scriptedStepper) Step(ctx context.Context, history []types.Item, screenshot string) ([]types.Item, error) {
	if s.calls >= len(s.steps) {
		return []types.Item{types.AssistantMessage("done")}, nil
	}
	out := s.steps[s.calls]
	s.calls++
	return out, nil
}

func newTestManager(inst *fakeInstance, stepper agent.Stepper) *Manager {
	if stepper == nil {
		stepper = &scriptedStepper{}
	}
	return NewManager(&fakeProvisioner{inst: inst}, agent.NewLoop(stepper, 5))
}

func TestCreateBrowserSession(t *testing.T) {
	inst := newFakeInstance()
	m := newTestManager(inst, nil)

	sess, shot, err := m.Create(context.Background(), types.CreateParams{ComputerType: types.ComputerBrowser})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(sess.ID, "sess_") {
		t.Errorf("session id = %q, want sess_ prefix", sess.ID)
	}
	if shot != inst.shot {
		t.Errorf("screenshot = %q, want %q", shot, inst.shot)
	}
	if len(inst.navigated) != 1 || inst.navigated[0] != DefaultStartURL {
		t.Errorf("navigated = %v, want [%s]", inst.navigated, DefaultStartURL)
	}
	if sess.StreamURL != inst.stream {
		t.Errorf("stream url = %q, want %q", sess.StreamURL, inst.stream)
	}

	listed := m.List()
	if meta, ok := listed[sess.ID]; !ok {
		t.Fatalf("session %s missing from listing", sess.ID)
	} else if meta.ComputerType != types.ComputerBrowser {
		t.Errorf("listed computer type = %s", meta.ComputerType)
	}
}

func TestCreateBrowserSessionCustomStartURL(t *testing.T) {
	inst := newFakeInstance()
	m := newTestManager(inst, nil)

	_, _, err := m.Create(context.Background(), types.CreateParams{
		ComputerType: types.ComputerBrowser,
		StartURL:     "https://example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(inst.navigated) != 1 || inst.navigated[0] != "https://example.com" {
		t.Errorf("navigated = %v", inst.navigated)
	}
}

func TestCreateDesktopSessionSkipsNavigation(t *testing.T) {
	inst := newFakeInstance()
	m := newTestManager(inst, nil)

	sess, _, err := m.Create(context.Background(), types.CreateParams{ComputerType: types.ComputerDesktop})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(inst.navigated) != 0 {
		t.Errorf("desktop session navigated: %v", inst.navigated)
	}
	if sess.IsBrowser() {
		t.Error("desktop session reports IsBrowser")
	}
}

func TestCreateProvisioningFailure(t *testing.T) {
	provErr := &errdefs.ProvisioningError{Err: errors.New("capacity")}
	m := NewManager(&fakeProvisioner{err: provErr}, agent.NewLoop(&scriptedStepper{}, 5))

	_, _, err := m.Create(context.Background(), types.CreateParams{ComputerType: types.ComputerBrowser})
	var pe *errdefs.ProvisioningError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ProvisioningError", err)
	}
	if m.Count() != 0 {
		t.Errorf("Count = %d after failed create", m.Count())
	}
}

func TestCreateNavigateFailureReleasesInstance(t *testing.T) {
	inst := newFakeInstance()
	inst.navErr = &errdefs.ProviderError{Op: "browser_goto", Status: 500, Message: "boom"}
	m := newTestManager(inst, nil)

	_, _, err := m.Create(context.Background(), types.CreateParams{ComputerType: types.ComputerBrowser})
	if err == nil {
		t.Fatal("Create succeeded despite navigate failure")
	}
	if inst.stops != 1 {
		t.Errorf("stops = %d, want 1", inst.stops)
	}
	if m.Count() != 0 {
		t.Errorf("Count = %d", m.Count())
	}
}

func TestGetUnknownSession(t *testing.T) {
	m := newTestManager(newFakeInstance(), nil)
	_, err := m.Get("sess_missing")
	var nf *errdefs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestDeleteReleasesHandleOnce(t *testing.T) {
	inst := newFakeInstance()
	m := newTestManager(inst, nil)
	sess, _, err := m.Create(context.Background(), types.CreateParams{ComputerType: types.ComputerDesktop})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := m.Delete(context.Background(), sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if inst.stops != 1 {
		t.Errorf("stops = %d, want 1", inst.stops)
	}

	err = m.Delete(context.Background(), sess.ID)
	var nf *errdefs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("second delete err = %v, want NotFoundError", err)
	}
	if inst.stops != 1 {
		t.Errorf("stops = %d after second delete, want 1", inst.stops)
	}
}

func TestDeleteStopFailureKeepsSession(t *testing.T) {
	inst := newFakeInstance()
	inst.stopErr = &errdefs.ProviderError{Op: "instance_stop", Status: 500, Message: "busy"}
	m := newTestManager(inst, nil)
	sess, _, err := m.Create(context.Background(), types.CreateParams{ComputerType: types.ComputerDesktop})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := m.Delete(context.Background(), sess.ID); err == nil {
		t.Fatal("Delete succeeded despite stop failure")
	}
	if _, err := m.Get(sess.ID); err != nil {
		t.Fatalf("session gone after failed delete: %v", err)
	}

	inst.stopErr = nil
	if err := m.Delete(context.Background(), sess.ID); err != nil {
		t.Fatalf("retried delete: %v", err)
	}
}

func TestOperationsAfterDelete(t *testing.T) {
	inst := newFakeInstance()
	m := newTestManager(inst, nil)
	sess, _, err := m.Create(context.Background(), types.CreateParams{ComputerType: types.ComputerDesktop})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Delete(context.Background(), sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var nf *errdefs.NotFoundError
	if _, err := m.Screenshot(context.Background(), sess.ID); !errors.As(err, &nf) {
		t.Errorf("Screenshot err = %v, want NotFoundError", err)
	}
	payload := json.RawMessage(`{"type":"click","x":1,"y":2}`)
	if _, _, err := m.ExecuteAction(context.Background(), sess.ID, payload); !errors.As(err, &nf) {
		t.Errorf("ExecuteAction err = %v, want NotFoundError", err)
	}
	if _, err := m.Interact(context.Background(), sess.ID, "hello"); !errors.As(err, &nf) {
		t.Errorf("Interact err = %v, want NotFoundError", err)
	}
}

func TestExecuteAction(t *testing.T) {
	inst := newFakeInstance()
	m := newTestManager(inst, nil)
	sess, _, err := m.Create(context.Background(), types.CreateParams{ComputerType: types.ComputerDesktop})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, res, err := m.ExecuteAction(context.Background(), sess.ID, json.RawMessage(`{"type":"click","x":10,"y":20}`))
	if err != nil {
		t.Fatalf("ExecuteAction: %v", err)
	}
	if a.Type != "click" {
		t.Errorf("action type = %s", a.Type)
	}
	if inst.clicks != 1 {
		t.Errorf("clicks = %d, want 1", inst.clicks)
	}
	if res.Screenshot != inst.shot {
		t.Errorf("screenshot = %q", res.Screenshot)
	}
}

func TestExecuteActionInvalidPayload(t *testing.T) {
	m := newTestManager(newFakeInstance(), nil)
	sess, _, err := m.Create(context.Background(), types.CreateParams{ComputerType: types.ComputerDesktop})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, _, err = m.ExecuteAction(context.Background(), sess.ID, json.RawMessage(`{"type":"launch_missiles"}`))
	var ia *errdefs.InvalidActionError
	if !errors.As(err, &ia) {
		t.Fatalf("err = %v, want InvalidActionError", err)
	}
}

func TestInteractAppendsHistory(t *testing.T) {
	inst := newFakeInstance()
	stepper := &scriptedStepper{steps: [][]types.Item{
		{types.ActionRequest(json.RawMessage(`{"type":"click","x":5,"y":6}`))},
		{types.AssistantMessage("clicked it")},
	}}
	m := newTestManager(inst, stepper)
	sess, _, err := m.Create(context.Background(), types.CreateParams{ComputerType: types.ComputerDesktop})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := m.Interact(context.Background(), sess.ID, "click the button")
	if err != nil {
		t.Fatalf("Interact: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(res.Items))
	}
	if inst.clicks != 1 {
		t.Errorf("clicks = %d, want 1", inst.clicks)
	}
	// user input + action + final message
	if got := sess.HistoryLen(); got != 3 {
		t.Errorf("history length = %d, want 3", got)
	}
	if res.Screenshot != inst.shot {
		t.Errorf("final screenshot = %q", res.Screenshot)
	}
}

// slowStepper paces its steps so history writes overlap with readers.
type slowStepper struct {
	actions int
	calls   int
}

func (s *slowStepper) Step(ctx context.Context, history []types.Item, screenshot string) ([]types.Item, error) {
	time.Sleep(2 * time.Millisecond)
	if s.calls < s.actions {
		s.calls++
		return []types.Item{types.ActionRequest(json.RawMessage(`{"type":"click","x":1,"y":1}`))}, nil
	}
	return []types.Item{types.AssistantMessage("done")}, nil
}

func TestHistoryReadsDuringInteract(t *testing.T) {
	inst := newFakeInstance()
	m := newTestManager(inst, &slowStepper{actions: 3})
	sess, _, err := m.Create(context.Background(), types.CreateParams{ComputerType: types.ComputerDesktop})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := m.Interact(context.Background(), sess.ID, "keep clicking")
		done <- err
	}()

	// Read concurrently with the loop's appends until the turn ends.
	for {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Interact: %v", err)
			}
			// user input + 3 actions + final message
			if got := sess.HistoryLen(); got != 5 {
				t.Errorf("history length = %d, want 5", got)
			}
			return
		default:
			_ = sess.HistoryLen()
			_ = sess.History()
		}
	}
}

func TestShutdownReleasesAll(t *testing.T) {
	inst := newFakeInstance()
	m := newTestManager(inst, nil)
	for i := 0; i < 3; i++ {
		if _, _, err := m.Create(context.Background(), types.CreateParams{ComputerType: types.ComputerDesktop}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	m.Shutdown(context.Background())
	if m.Count() != 0 {
		t.Errorf("Count = %d after shutdown", m.Count())
	}
	if inst.stops != 3 {
		t.Errorf("stops = %d, want 3", inst.stops)
	}
}
