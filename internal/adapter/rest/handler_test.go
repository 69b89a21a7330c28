package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/GrandZah/Learning-Matan/internal/entity"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/config"
)

type fakeSessions struct {
	lastEvent entity.Event
	reply     *entity.Reply
	err       error
}

func (f *fakeSessions) Handle(_ context.Context, event entity.Event) (*entity.Reply, error) {
	f.lastEvent = event
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

type fakeScheduler struct {
	stats *entity.UserStats
	err   error
}

func (f *fakeScheduler) Assign(context.Context, int64, int64) error { return nil }
func (f *fakeScheduler) Grade(context.Context, int64, int64, bool) (int, error) {
	return 0, nil
}
func (f *fakeScheduler) Due(context.Context, int64) ([]entity.Card, error)    { return nil, nil }
func (f *fakeScheduler) Unseen(context.Context, int64) ([]entity.Card, error) { return nil, nil }
func (f *fakeScheduler) Stats(_ context.Context, userID int64) (*entity.UserStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

type fakeCards struct {
	card *entity.Card
	err  error
}

func (f *fakeCards) Ensure(context.Context, string) (*entity.Card, bool, error) {
	return nil, false, nil
}
func (f *fakeCards) GetByID(context.Context, int64) (*entity.Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.card, nil
}
func (f *fakeCards) UnseenForUser(context.Context, int64) ([]entity.Card, error) { return nil, nil }
func (f *fakeCards) Count(context.Context) (int64, error)                        { return 0, nil }

func newTestHandler(sessions *fakeSessions, scheduler *fakeScheduler, cards *fakeCards) *httptest.Server {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{}
	cfg.Catalog.Dir = "testdata"

	h := NewHandler(cfg, sessions, scheduler, cards, logger)
	mux := http.NewServeMux()
	h.Register(mux)
	return httptest.NewServer(mux)
}

func TestEventEndpointReturnsReply(t *testing.T) {
	sessions := &fakeSessions{
		reply: &entity.Reply{
			Kind: entity.ReplyCard,
			Card: &entity.CardPrompt{CardID: 7, ImageRef: "limits/007.png", Actions: []string{"know", "dont_know", "view"}},
		},
	}
	srv := newTestHandler(sessions, &fakeScheduler{}, &fakeCards{})
	defer srv.Close()

	body := `{"user_id": 42, "username": "ada", "kind": "learn"}`
	resp, err := http.Post(srv.URL+"/api/v1/events", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST events: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if sessions.lastEvent.UserID != 42 || sessions.lastEvent.Kind != entity.EventLearn {
		t.Errorf("event = %+v, want user 42 learn", sessions.lastEvent)
	}

	var reply replyResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.Kind != "card" {
		t.Errorf("kind = %q, want card", reply.Kind)
	}
	if reply.Card == nil || reply.Card.ID != 7 {
		t.Errorf("card = %+v, want id 7", reply.Card)
	}
}

func TestEventEndpointRejectsBadJSON(t *testing.T) {
	srv := newTestHandler(&fakeSessions{}, &fakeScheduler{}, &fakeCards{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/events", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("POST events: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestEventEndpointMapsDomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown event", entity.ErrUnknownEvent, http.StatusBadRequest},
		{"invalid user", entity.ErrInvalidUserID, http.StatusBadRequest},
		{"user not found", entity.ErrUserNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestHandler(&fakeSessions{err: tt.err}, &fakeScheduler{}, &fakeCards{})
			defer srv.Close()

			body := `{"user_id": 1, "kind": "start"}`
			resp, err := http.Post(srv.URL+"/api/v1/events", "application/json", strings.NewReader(body))
			if err != nil {
				t.Fatalf("POST events: %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestEventEndpointHidesInternalErrors(t *testing.T) {
	cause := errors.New("pq: connection reset by peer")
	srv := newTestHandler(&fakeSessions{err: cause}, &fakeScheduler{}, &fakeCards{})
	defer srv.Close()

	body := `{"user_id": 1, "kind": "start"}`
	resp, err := http.Post(srv.URL+"/api/v1/events", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST events: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(string(raw), cause.Error()) {
		t.Errorf("response leaks the internal error: %s", raw)
	}
	if !strings.Contains(string(raw), "internal error") {
		t.Errorf("response missing generic message: %s", raw)
	}
}

func TestStatsEndpointHidesInternalErrors(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	srv := newTestHandler(&fakeSessions{}, &fakeScheduler{err: cause}, &fakeCards{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/users/1/stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(string(raw), "127.0.0.1") {
		t.Errorf("response leaks the internal error: %s", raw)
	}
}

func TestStatsEndpoint(t *testing.T) {
	scheduler := &fakeScheduler{
		stats: &entity.UserStats{
			UserID:        42,
			CountsByLevel: map[int]int64{0: 2, 1: 0, 2: 1, 3: 0, 4: 0},
			TotalAssigned: 3,
		},
	}
	srv := newTestHandler(&fakeSessions{}, scheduler, &fakeCards{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/users/42/stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var stats statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalAssigned != 3 {
		t.Errorf("total = %d, want 3", stats.TotalAssigned)
	}
	if stats.CountsByLevel[2] != 1 {
		t.Errorf("level 2 count = %d, want 1", stats.CountsByLevel[2])
	}
}

func TestStatsEndpointRejectsBadID(t *testing.T) {
	srv := newTestHandler(&fakeSessions{}, &fakeScheduler{}, &fakeCards{})
	defer srv.Close()

	for _, path := range []string{"/api/v1/users/abc/stats", "/api/v1/users/0/stats"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", path, resp.StatusCode, http.StatusBadRequest)
		}
	}
}

func TestCardImageUnknownCard(t *testing.T) {
	srv := newTestHandler(&fakeSessions{}, &fakeScheduler{}, &fakeCards{err: entity.ErrCardNotFound})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/cards/99/image")
	if err != nil {
		t.Fatalf("GET image: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestCardImageRejectsEscapingRef(t *testing.T) {
	srv := newTestHandler(&fakeSessions{}, &fakeScheduler{}, &fakeCards{
		card: &entity.Card{ID: 1, ImageRef: "../secrets.png"},
	})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/cards/1/image")
	if err != nil {
		t.Fatalf("GET image: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestHandler(&fakeSessions{}, &fakeScheduler{}, &fakeCards{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}
