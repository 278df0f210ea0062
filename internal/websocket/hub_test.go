package websocket

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/matcher"
	"github.com/dennisdiepolder/monti/leadqueue/internal/ranker"
	"github.com/dennisdiepolder/monti/leadqueue/internal/scoring"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/rs/zerolog"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	clock := scoring.FixedClock{T: time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)}
	s, err := scoring.NewScorer(scoring.DefaultWeights(), clock)
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}
	r := ranker.New(s, matcher.New(matcher.StaticDirectory{{ID: "agent-1", Availability: 0.5}}))
	return NewHub(r, ranker.Query{Sort: ranker.SortPriority}, zerolog.New(&bytes.Buffer{}))
}

func newTestClient(hub *Hub, id string, q ranker.Query) *Client {
	return &Client{
		id:      id,
		hub:     hub,
		send:    make(chan []byte, 10),
		replies: make(chan []byte, 4),
		logger:  zerolog.Nop(),
		view:    q,
	}
}

func testSnapshot() Snapshot {
	sla := 60
	return Snapshot{
		Timestamp: time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC),
		Leads: []types.Lead{
			{ID: "calm", Name: "Calm Co", Score: 20, WaitMinutes: 2},
			{ID: "hot", Name: "Hot Inc", Score: 95, WaitMinutes: 65, SLAMinutes: &sla, Online: true,
				Tags: []string{"Enterprise", "Hot Lead"}, CompanySize: 5000},
		},
		ServiceLevel: types.ServiceLevel{TotalRouted: 2, RoutedInSLA: 1, CurrentSL: 50},
	}
}

func receive(t *testing.T, c *Client) types.QueueSnapshot {
	t.Helper()
	select {
	case data := <-c.send:
		var msg types.QueueSnapshot
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("client %s: invalid snapshot: %v", c.id, err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatalf("client %s did not receive snapshot", c.id)
		return types.QueueSnapshot{}
	}
}

func TestNewHub(t *testing.T) {
	hub := newTestHub(t)

	if hub == nil {
		t.Fatal("expected hub to be created")
	}
	if hub.clients == nil {
		t.Error("expected clients map to be initialized")
	}
	if hub.broadcast == nil {
		t.Error("expected broadcast channel to be initialized")
	}
	if hub.register == nil {
		t.Error("expected register channel to be initialized")
	}
	if hub.unregister == nil {
		t.Error("expected unregister channel to be initialized")
	}
	if hub.DefaultQuery().Sort != ranker.SortPriority {
		t.Errorf("expected default sort priority, got %s", hub.DefaultQuery().Sort)
	}
}

func TestHubClientCount(t *testing.T) {
	hub := newTestHub(t)

	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}

	hub.mu.Lock()
	hub.clients[&Client{id: "test1"}] = true
	hub.clients[&Client{id: "test2"}] = true
	hub.mu.Unlock()

	if hub.ClientCount() != 2 {
		t.Errorf("expected 2 clients, got %d", hub.ClientCount())
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := newTestHub(t)
	go hub.Run()

	client := newTestClient(hub, "test-client", hub.DefaultQuery())

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client after register, got %d", hub.ClientCount())
	}

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients after unregister, got %d", hub.ClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("expected send channel to be closed")
	}
}

func TestHubPublishRanksPerClientView(t *testing.T) {
	hub := newTestHub(t)
	go hub.Run()

	all := newTestClient(hub, "all", ranker.Query{Sort: ranker.SortPriority})
	critical := newTestClient(hub, "critical", ranker.Query{Sort: ranker.SortPriority, Level: types.LevelCritical})
	hub.register <- all
	hub.register <- critical
	time.Sleep(10 * time.Millisecond)

	if !hub.Publish(testSnapshot()) {
		t.Fatal("expected publish to be accepted")
	}

	msg := receive(t, all)
	if msg.Type != "queue_snapshot" {
		t.Errorf("expected queue_snapshot, got %s", msg.Type)
	}
	if len(msg.Leads) != 2 || msg.Leads[0].Lead.ID != "hot" {
		t.Errorf("expected hot lead first of 2, got %+v", msg.Leads)
	}
	if msg.ServiceLevel.CurrentSL != 50 {
		t.Errorf("expected service level 50, got %v", msg.ServiceLevel.CurrentSL)
	}

	msg = receive(t, critical)
	if msg.View.Level != "critical" {
		t.Errorf("expected critical view echoed, got %q", msg.View.Level)
	}
	if len(msg.Leads) != 1 || msg.Leads[0].Lead.ID != "hot" {
		t.Errorf("expected only hot lead, got %+v", msg.Leads)
	}
	if msg.Stats.Total != 2 {
		t.Errorf("expected stats over whole queue, got %d", msg.Stats.Total)
	}
}

func TestHubReplaysLastSnapshotOnRegister(t *testing.T) {
	hub := newTestHub(t)
	go hub.Run()

	hub.Publish(testSnapshot())
	time.Sleep(10 * time.Millisecond)

	late := newTestClient(hub, "late", hub.DefaultQuery())
	hub.register <- late

	if msg := receive(t, late); len(msg.Leads) != 2 {
		t.Errorf("expected replayed snapshot with 2 leads, got %d", len(msg.Leads))
	}
}

func TestHubRefreshAfterViewChange(t *testing.T) {
	hub := newTestHub(t)
	go hub.Run()

	client := newTestClient(hub, "viewer", hub.DefaultQuery())
	hub.register <- client
	hub.Publish(testSnapshot())
	receive(t, client)

	if errMsg := client.handleMessage([]byte(`{"type":"view","sort":"waitTime","search":"calm"}`)); errMsg != nil {
		t.Fatalf("unexpected error reply: %+v", errMsg)
	}
	hub.requestRefresh(client)

	msg := receive(t, client)
	if msg.View.Sort != "waitTime" || msg.View.Search != "calm" {
		t.Errorf("expected new view echoed, got %+v", msg.View)
	}
	if len(msg.Leads) != 1 || msg.Leads[0].Lead.ID != "calm" {
		t.Errorf("expected only calm lead, got %+v", msg.Leads)
	}
}

func TestClientHandleMessage(t *testing.T) {
	hub := newTestHub(t)

	tests := []struct {
		name    string
		message string
		wantErr bool
		want    ranker.Query
	}{
		{
			name:    "valid view",
			message: `{"type":"view","sort":"leadScore","level":"high"}`,
			want:    ranker.Query{Sort: ranker.SortLeadScore, Level: types.LevelHigh},
		},
		{
			name:    "empty sort means priority",
			message: `{"type":"view"}`,
			want:    ranker.Query{Sort: ranker.SortPriority},
		},
		{
			name:    "unknown sort key",
			message: `{"type":"view","sort":"alphabetical"}`,
			wantErr: true,
		},
		{
			name:    "unknown level",
			message: `{"type":"view","level":"urgent"}`,
			wantErr: true,
		},
		{
			name:    "unknown message type",
			message: `{"type":"subscribe"}`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			message: `{not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := ranker.Query{Sort: ranker.SortWaitTime, Search: "keep"}
			client := newTestClient(hub, "c", start)

			errMsg := client.handleMessage([]byte(tt.message))
			if tt.wantErr {
				if errMsg == nil {
					t.Fatal("expected error reply")
				}
				if errMsg.Type != "error" {
					t.Errorf("expected error type, got %s", errMsg.Type)
				}
				if client.View() != start {
					t.Errorf("view changed on error: %+v", client.View())
				}
				return
			}
			if errMsg != nil {
				t.Fatalf("unexpected error reply: %+v", errMsg)
			}
			if client.View() != tt.want {
				t.Errorf("expected view %+v, got %+v", tt.want, client.View())
			}
		})
	}
}

func TestClientReplyQueuesMessage(t *testing.T) {
	client := newTestClient(newTestHub(t), "c", ranker.Query{Sort: ranker.SortPriority})
	client.reply(types.ErrorMessage{Type: "error", Message: "bad"})

	select {
	case data := <-client.replies:
		var msg types.ErrorMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Message != "bad" {
			t.Errorf("unexpected reply %s (%v)", data, err)
		}
	default:
		t.Error("expected reply to be queued")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := newTestHub(t)
	go hub.Run()

	slow := &Client{id: "slow", hub: hub, send: make(chan []byte), replies: make(chan []byte, 1),
		logger: zerolog.Nop(), view: hub.DefaultQuery()}
	hub.register <- slow
	time.Sleep(10 * time.Millisecond)

	hub.Publish(testSnapshot())
	time.Sleep(20 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("expected slow client to be dropped, got %d clients", hub.ClientCount())
	}
}
