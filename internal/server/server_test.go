package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"
	"go.viam.com/test"

	"github.com/soar/padnav/internal/gamepad"
	"github.com/soar/padnav/internal/hub"
)

type fakeController struct {
	mu         sync.Mutex
	vibrations []string
	intensity  []float64
	calibrated chan struct{}
	scans      int
	snap       gamepad.Snapshot
}

func (f *fakeController) Vibrate(pattern string, intensity float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vibrations = append(f.vibrations, pattern)
	f.intensity = append(f.intensity, intensity)
}

func (f *fakeController) Calibrate(ctx context.Context) {
	close(f.calibrated)
}

func (f *fakeController) Scan() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
}

func (f *fakeController) Snapshot() gamepad.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

type fixture struct {
	ctrl   *fakeController
	events chan hub.Event
	hub    *hub.Hub
	srv    *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t).Sugar()
	ctx, cancel := context.WithCancel(context.Background())
	fam := gamepad.FamilyXbox
	f := &fixture{
		ctrl: &fakeController{
			calibrated: make(chan struct{}),
			snap:       gamepad.Snapshot{Connected: true, Family: &fam, Profile: "Xbox", Labels: map[string]string{"confirm": "A"}},
		},
		events: make(chan hub.Event, 8),
		hub:    hub.NewHub(logger),
	}
	b := hub.NewBroadcaster(f.hub, f.events, clock.NewMock(), logger)
	b.Seed(f.ctrl.snap)
	go f.hub.Run(ctx)
	go b.Run(ctx)

	frontend := fstest.MapFS{
		"index.html": {Data: []byte("<html>\n  <body>\n    <p>padnav</p>\n  </body>\n</html>\n")},
		"app.js":     {Data: []byte("let   answer = 42 ;\n")},
	}
	s := New(f.hub, b, f.ctrl, frontend, ":0", logger)
	f.srv = httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		f.srv.Close()
		cancel()
		test.That(t, s.Shutdown(context.Background()), test.ShouldBeNil)
	})
	return f
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) hub.WSMessage {
	t.Helper()
	test.That(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)), test.ShouldBeNil)
	var msg hub.WSMessage
	test.That(t, conn.ReadJSON(&msg), test.ShouldBeNil)
	return msg
}

func TestInitialStateAndIntents(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	msg := readMessage(t, conn)
	test.That(t, msg.Type, test.ShouldEqual, hub.TypeFull)
	test.That(t, msg.Data, test.ShouldNotBeNil)
	test.That(t, msg.Data.Connected, test.ShouldBeTrue)
	test.That(t, msg.Data.Labels["confirm"], test.ShouldEqual, "A")

	// empty frames are not forwarded
	f.events <- hub.Event{Frame: &gamepad.NavigationIntentFrame{}}
	f.events <- hub.Event{Frame: &gamepad.NavigationIntentFrame{Confirm: true}}
	msg = readMessage(t, conn)
	test.That(t, msg.Type, test.ShouldEqual, hub.TypeIntent)
	test.That(t, msg.Intents.Confirm, test.ShouldBeTrue)
	test.That(t, msg.Seq, test.ShouldBeGreaterThan, 1)

	// a connection change resends the full state
	f.events <- hub.Event{Snapshot: &gamepad.Snapshot{Slot: -1}}
	msg = readMessage(t, conn)
	test.That(t, msg.Type, test.ShouldEqual, hub.TypeFull)
	test.That(t, msg.Data.Connected, test.ShouldBeFalse)
}

func TestCommands(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	readMessage(t, conn)

	test.That(t, conn.WriteJSON(map[string]any{"type": "vibrate", "pattern": "medium", "intensity": 0.5}), test.ShouldBeNil)
	ack := readMessage(t, conn)
	test.That(t, ack.Type, test.ShouldEqual, hub.TypeAck)
	test.That(t, ack.Command, test.ShouldEqual, hub.CmdVibrate)
	test.That(t, ack.Error, test.ShouldEqual, "")

	test.That(t, conn.WriteJSON(map[string]any{"type": "vibrate"}), test.ShouldBeNil)
	readMessage(t, conn)

	f.ctrl.mu.Lock()
	test.That(t, f.ctrl.vibrations, test.ShouldResemble, []string{"medium", "short"})
	test.That(t, f.ctrl.intensity, test.ShouldResemble, []float64{0.5, 1})
	f.ctrl.mu.Unlock()

	test.That(t, conn.WriteJSON(map[string]any{"type": "calibrate"}), test.ShouldBeNil)
	test.That(t, readMessage(t, conn).Command, test.ShouldEqual, hub.CmdCalibrate)
	select {
	case <-f.ctrl.calibrated:
	case <-time.After(5 * time.Second):
		t.Fatal("calibrate not called")
	}

	test.That(t, conn.WriteJSON(map[string]any{"type": "rescan"}), test.ShouldBeNil)
	test.That(t, readMessage(t, conn).Command, test.ShouldEqual, hub.CmdRescan)

	test.That(t, conn.WriteJSON(map[string]any{"type": "dance"}), test.ShouldBeNil)
	ack = readMessage(t, conn)
	test.That(t, ack.Error, test.ShouldEqual, "unknown command")

	test.That(t, conn.WriteMessage(websocket.TextMessage, []byte("{")), test.ShouldBeNil)
	ack = readMessage(t, conn)
	test.That(t, ack.Error, test.ShouldEqual, "malformed message")
}

func TestStatusAndStatic(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.srv.URL + "/api/status")
	test.That(t, err, test.ShouldBeNil)
	defer resp.Body.Close()
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	var snap map[string]any
	test.That(t, json.NewDecoder(resp.Body).Decode(&snap), test.ShouldBeNil)
	test.That(t, snap["family"], test.ShouldEqual, "XBOX")
	test.That(t, snap["connected"], test.ShouldEqual, true)

	post, err := http.Post(f.srv.URL+"/api/status", "application/json", nil)
	test.That(t, err, test.ShouldBeNil)
	post.Body.Close()
	test.That(t, post.StatusCode, test.ShouldEqual, http.StatusMethodNotAllowed)

	page, err := http.Get(f.srv.URL + "/")
	test.That(t, err, test.ShouldBeNil)
	defer page.Body.Close()
	test.That(t, page.StatusCode, test.ShouldEqual, http.StatusOK)
	body, err := io.ReadAll(page.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(body), test.ShouldContainSubstring, "padnav")
	test.That(t, string(body), test.ShouldNotContainSubstring, "\n  ")

	script, err := http.Get(f.srv.URL + "/app.js")
	test.That(t, err, test.ShouldBeNil)
	defer script.Body.Close()
	src, err := io.ReadAll(script.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(src), test.ShouldContainSubstring, "answer=42")
}
