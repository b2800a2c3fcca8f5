package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/pixelpick/internal/colour"
	"github.com/jmylchreest/pixelpick/internal/config"
	"github.com/jmylchreest/pixelpick/internal/history"
	"github.com/jmylchreest/pixelpick/internal/picker"
	"github.com/jmylchreest/pixelpick/internal/sampler"
	"github.com/jmylchreest/pixelpick/internal/store"
)

// gatedSampler returns colour once release is closed.
type gatedSampler struct {
	colour  colour.Hex
	started chan struct{}
	release chan struct{}
}

func (s *gatedSampler) Name() string     { return "gated" }
func (s *gatedSampler) Available() error { return nil }

func (s *gatedSampler) Open(ctx context.Context) sampler.Result {
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	return sampler.Sampled(s.colour)
}

type fakeClipboard struct {
	copied []string
}

func (c *fakeClipboard) Write(_ context.Context, text string) error {
	c.copied = append(c.copied, text)
	return nil
}

func newTestServer(t *testing.T, smp sampler.Sampler, entries ...string) (*Server, *history.History, *httptest.Server) {
	t.Helper()

	ctx := context.Background()
	st := store.NewMemoryStore()
	seed := struct {
		Colors []string `toml:"colors"`
	}{Colors: append([]string{}, entries...)}
	if err := st.Set(ctx, store.KeyColorHistory, seed); err != nil {
		t.Fatal(err)
	}
	h := history.New(st, nil)
	h.Load(ctx)

	app := picker.New(picker.Options{
		History:   h,
		Settings:  config.Defaults(),
		Sampler:   smp,
		Clipboard: &fakeClipboard{},
	})
	s := New(app, "127.0.0.1:0", nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, h, ts
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestGetHistory(t *testing.T) {
	_, _, ts := newTestServer(t, nil, "#FF0000", "#00FF00")

	resp, err := http.Get(ts.URL + "/api/history")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	got := decode[HistoryPayload](t, resp)
	if len(got.Colors) != 2 || got.Colors[0].Hex != "#FF0000" || got.Colors[1].Hex != "#00FF00" {
		t.Errorf("colors = %+v", got.Colors)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name        string
		sampler     sampler.Sampler
		wantCanPick bool
	}{
		{name: "sampler ready", sampler: &gatedSampler{colour: "#FFFFFF"}, wantCanPick: true},
		{name: "no sampler", sampler: sampler.Unavailable{}, wantCanPick: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ts := newTestServer(t, tt.sampler)

			resp, err := http.Get(ts.URL + "/api/status")
			if err != nil {
				t.Fatal(err)
			}
			got := decode[StatusPayload](t, resp)
			if got.CanPick != tt.wantCanPick {
				t.Errorf("can_pick = %v, want %v", got.CanPick, tt.wantCanPick)
			}
			if !tt.wantCanPick && got.Reason == "" {
				t.Error("reason is empty for an unusable sampler")
			}
		})
	}
}

func TestPickRecordsAndCopies(t *testing.T) {
	_, h, ts := newTestServer(t, &gatedSampler{colour: "#3366CC"}, "#FF0000")

	resp, err := http.Post(ts.URL+"/api/pick", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	got := decode[outcomeResponse](t, resp)
	if got.Colour == nil || got.Colour.Hex != "#3366CC" {
		t.Errorf("colour = %+v, want #3366CC", got.Colour)
	}
	if got.Copied != "#3366CC" {
		t.Errorf("copied = %q, want #3366CC", got.Copied)
	}
	if front, _ := h.Front(); front != "#3366CC" {
		t.Errorf("history front = %q, want #3366CC", front)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		path    string
		sampler sampler.Sampler
		want    int
	}{
		{name: "pick unsupported", method: http.MethodPost, path: "/api/pick", sampler: sampler.Unavailable{}, want: http.StatusNotImplemented},
		{name: "history index out of range", method: http.MethodPost, path: "/api/history/5/copy", want: http.StatusNotFound},
		{name: "history index not a number", method: http.MethodPost, path: "/api/history/first/copy", want: http.StatusBadRequest},
		{name: "unknown format", method: http.MethodPost, path: "/api/copy?format=cmyk", want: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodGet, path: "/api/pick", want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ts := newTestServer(t, tt.sampler, "#FF0000")

			req, _ := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestCopyHistoryAndClear(t *testing.T) {
	_, h, ts := newTestServer(t, nil, "#FF0000", "#00FF00")

	resp, err := http.Post(ts.URL+"/api/history/1/copy", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := decode[outcomeResponse](t, resp); got.Copied != "#00FF00" {
		t.Errorf("copied = %q, want #00FF00", got.Copied)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/history", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("clear status = %d, want 200", resp.StatusCode)
	}
	if h.Len() != 0 {
		t.Errorf("history has %d entries after clear", h.Len())
	}
}

func TestCommandsRejectedWhilePicking(t *testing.T) {
	smp := &gatedSampler{colour: "#123456", started: make(chan struct{}), release: make(chan struct{})}
	_, _, ts := newTestServer(t, smp, "#FF0000")

	done := make(chan int, 1)
	go func() {
		resp, err := http.Post(ts.URL+"/api/pick", "", nil)
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	<-smp.started

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/history", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("clear during pick: status = %d, want 409", resp.StatusCode)
	}

	// Reads do not wait for the pick.
	resp, err = http.Get(ts.URL + "/api/history")
	if err != nil {
		t.Fatal(err)
	}
	if got := decode[HistoryPayload](t, resp); len(got.Colors) != 1 {
		t.Errorf("history during pick = %+v", got.Colors)
	}

	close(smp.release)
	if status := <-done; status != http.StatusOK {
		t.Errorf("pick status = %d, want 200", status)
	}
}

func TestWebSocketStreamsHistory(t *testing.T) {
	_, _, ts := newTestServer(t, &gatedSampler{colour: "#ABCDEF"}, "#FF0000")

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() (string, ConnectedPayload) {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg struct {
			Type string           `json:"type"`
			Data ConnectedPayload `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg.Type, msg.Data
	}

	typ, data := read()
	if typ != MessageConnected || len(data.Colors) != 1 || data.Colors[0].Hex != "#FF0000" {
		t.Fatalf("first message = %s %+v", typ, data.Colors)
	}
	if !data.CanPick {
		t.Errorf("connected message can_pick = false, want true")
	}

	resp, err := http.Post(ts.URL+"/api/pick", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	typ, data = read()
	if typ != MessageHistoryChanged {
		t.Fatalf("type = %q, want %q", typ, MessageHistoryChanged)
	}
	if len(data.Colors) != 2 || data.Colors[0].Hex != "#ABCDEF" {
		t.Errorf("colors = %+v", data.Colors)
	}
}

func TestOnStoreChangeReloads(t *testing.T) {
	st := store.NewMemoryStore()
	h := history.New(st, nil)
	app := picker.New(picker.Options{History: h, Clipboard: &fakeClipboard{}})
	s := New(app, "", nil)

	// Another process rewrites the history.
	other := history.New(st, nil)
	other.Add(context.Background(), "#00FF00")

	s.OnStoreChange(store.Change{Key: store.KeySettings, Op: store.ChangeModified})
	if h.Len() != 0 {
		t.Fatalf("settings change reloaded history")
	}

	s.OnStoreChange(store.Change{Key: store.KeyColorHistory, Op: store.ChangeModified})
	if front, _ := h.Front(); front != "#00FF00" {
		t.Errorf("front = %q, want #00FF00", front)
	}
	if got := s.entries(); len(got) != 1 {
		t.Errorf("snapshot = %v, want reloaded entry", got)
	}
}
