package signal

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/akhilnr/classcord/internal/app"
	"github.com/akhilnr/classcord/internal/config"
	"github.com/akhilnr/classcord/internal/core"
)

// recConn is a recording stand-in for a websocket connection.
type recConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (c *recConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("connection closed")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *recConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// events decodes every recorded frame into a generic map.
func (c *recConn) events(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err != nil {
			t.Fatalf("recorded frame is not json: %v (%s)", err, f)
		}
		out = append(out, m)
	}
	return out
}

// ofType filters recorded events by their type field.
func (c *recConn) ofType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ev := range c.events(t) {
		if ev["type"] == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (c *recConn) reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}

func newTestController() *SignalWSController {
	orch := &app.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomTable(),
	}
	cfg := &config.Config{
		ReadLimit:  65536,
		PingPeriod: time.Minute,
	}
	return NewSignalWSController(orch, cfg)
}

// connect registers a fresh fake connection the way HandleSignal would.
func connect(ctl *SignalWSController, sid core.ConnID) *recConn {
	conn := &recConn{}
	ctl.Orch.Registry.Register(sid, conn)
	return conn
}

func joinChannel(t *testing.T, ctl *SignalWSController, sid core.ConnID, conn core.SignalConnection, channel, username string) {
	t.Helper()
	payload := fmt.Sprintf(`{"type":"join-channel","channelId":%q,"username":%q}`, channel, username)
	ctl.handleEvent(sid, conn, "", []byte(payload))
}

func TestJoinSendsRosterAndNotifiesOthers(t *testing.T) {
	ctl := newTestController()
	alice := connect(ctl, "conn-alice")
	bob := connect(ctl, "conn-bob")

	joinChannel(t, ctl, "conn-alice", alice, "general", "Alice")
	joinChannel(t, ctl, "conn-bob", bob, "general", "Bob")

	// Bob gets the full roster including himself.
	rosters := bob.ofType(t, "channel-participants")
	if len(rosters) != 1 {
		t.Fatalf("bob roster events: got %d, want 1", len(rosters))
	}
	parts, ok := rosters[0]["participants"].(map[string]any)
	if !ok {
		t.Fatalf("roster participants missing: %v", rosters[0])
	}
	if len(parts) != 2 {
		t.Fatalf("roster size: got %d, want 2", len(parts))
	}
	if _, ok := parts["conn-bob"]; !ok {
		t.Fatal("joiner must appear in its own roster")
	}

	// Alice, already present, hears user-joined for Bob and nothing else
	// about her own join.
	joins := alice.ofType(t, "user-joined")
	if len(joins) != 1 {
		t.Fatalf("alice user-joined events: got %d, want 1", len(joins))
	}
	if joins[0]["username"] != "Bob" || joins[0]["connectionId"] != "conn-bob" {
		t.Fatalf("user-joined payload wrong: %v", joins[0])
	}

	// Bob never hears user-joined about himself.
	if got := bob.ofType(t, "user-joined"); len(got) != 0 {
		t.Fatalf("joiner received its own user-joined: %v", got)
	}
}

func TestJoinWithoutRegistrationIsRejected(t *testing.T) {
	ctl := newTestController()
	conn := &recConn{} // never registered

	joinChannel(t, ctl, "ghost", conn, "general", "Alice")

	errs := conn.ofType(t, "error")
	if len(errs) != 1 || errs[0]["error"] != "not_connected" {
		t.Fatalf("expected not_connected error reply, got %v", conn.events(t))
	}
	if _, ok := ctl.Orch.Rooms.Get("general"); ok {
		t.Fatal("rejected join must not create the room")
	}
}

func TestJoinMissingFieldsGetsErrorReply(t *testing.T) {
	ctl := newTestController()
	conn := connect(ctl, "conn-a")

	ctl.handleEvent("conn-a", conn, "", []byte(`{"type":"join-channel","username":"Alice"}`))

	errs := conn.ofType(t, "error")
	if len(errs) != 1 || errs[0]["error"] != "missing_field" {
		t.Fatalf("expected missing_field error reply, got %v", conn.events(t))
	}

	// The connection stays usable after a bad event.
	conn.reset()
	joinChannel(t, ctl, "conn-a", conn, "general", "Alice")
	if got := conn.ofType(t, "channel-participants"); len(got) != 1 {
		t.Fatalf("join after bad event should still work, got %v", conn.events(t))
	}
}

func TestMalformedJSONGetsErrorReply(t *testing.T) {
	ctl := newTestController()
	conn := connect(ctl, "conn-a")

	ctl.handleEvent("conn-a", conn, "", []byte(`{not json`))

	errs := conn.ofType(t, "error")
	if len(errs) != 1 || errs[0]["error"] != "bad_payload" {
		t.Fatalf("expected bad_payload error reply, got %v", conn.events(t))
	}
}

func TestUnknownEventTypeIsIgnored(t *testing.T) {
	ctl := newTestController()
	conn := connect(ctl, "conn-a")

	ctl.handleEvent("conn-a", conn, "", []byte(`{"type":"warp-drive"}`))
	if got := conn.events(t); len(got) != 0 {
		t.Fatalf("unknown event must be dropped silently, got %v", got)
	}
}

func TestSendMessageReachesOthersExactlyOnce(t *testing.T) {
	ctl := newTestController()
	alice := connect(ctl, "conn-alice")
	bob := connect(ctl, "conn-bob")
	carol := connect(ctl, "conn-carol")
	joinChannel(t, ctl, "conn-alice", alice, "general", "Alice")
	joinChannel(t, ctl, "conn-bob", bob, "general", "Bob")
	joinChannel(t, ctl, "conn-carol", carol, "general", "Carol")
	alice.reset()
	bob.reset()
	carol.reset()

	ctl.handleEvent("conn-alice", alice, "", []byte(`{"type":"send-message","channelId":"general","message":{"text":"hi"}}`))

	for name, c := range map[string]*recConn{"bob": bob, "carol": carol} {
		msgs := c.ofType(t, "new-message")
		if len(msgs) != 1 {
			t.Fatalf("%s new-message events: got %d, want 1", name, len(msgs))
		}
		body, _ := msgs[0]["message"].(map[string]any)
		if body["text"] != "hi" {
			t.Fatalf("%s message body not passed through: %v", name, msgs[0])
		}
	}
	if got := alice.ofType(t, "new-message"); len(got) != 0 {
		t.Fatal("sender must not receive its own message")
	}
}

func TestMessageToUntrackedChannelIsBenign(t *testing.T) {
	ctl := newTestController()
	conn := connect(ctl, "conn-a")

	ctl.handleEvent("conn-a", conn, "", []byte(`{"type":"send-message","channelId":"empty","message":{}}`))
	if got := conn.events(t); len(got) != 0 {
		t.Fatalf("message to empty channel must be a silent no-op, got %v", got)
	}
}

func TestWhiteboardUpdateFansOut(t *testing.T) {
	ctl := newTestController()
	alice := connect(ctl, "conn-alice")
	bob := connect(ctl, "conn-bob")
	joinChannel(t, ctl, "conn-alice", alice, "art", "Alice")
	joinChannel(t, ctl, "conn-bob", bob, "art", "Bob")
	bob.reset()

	ctl.handleEvent("conn-alice", alice, "", []byte(`{"type":"whiteboard-update","channelId":"art","data":[{"stroke":1}]}`))

	ups := bob.ofType(t, "whiteboard-updated")
	if len(ups) != 1 {
		t.Fatalf("whiteboard-updated events: got %d, want 1", len(ups))
	}
	if ups[0]["channelId"] != "art" {
		t.Fatalf("whiteboard event wrong channel: %v", ups[0])
	}
}

func TestOfferRelayedPointToPointWithFrom(t *testing.T) {
	ctl := newTestController()
	alice := connect(ctl, "conn-alice")
	bob := connect(ctl, "conn-bob")
	carol := connect(ctl, "conn-carol")
	joinChannel(t, ctl, "conn-alice", alice, "general", "Alice")
	joinChannel(t, ctl, "conn-bob", bob, "general", "Bob")
	joinChannel(t, ctl, "conn-carol", carol, "general", "Carol")
	bob.reset()
	carol.reset()

	ctl.handleEvent("conn-alice", alice, "", []byte(`{"type":"rtc-offer","channelId":"general","to":"conn-bob","offer":{"sdp":"v=0","type":"offer"}}`))

	offers := bob.ofType(t, "rtc-offer")
	if len(offers) != 1 {
		t.Fatalf("bob rtc-offer events: got %d, want 1", len(offers))
	}
	if offers[0]["from"] != "conn-alice" {
		t.Fatalf("relayed offer must carry the sender id, got %v", offers[0])
	}
	sdp, _ := offers[0]["offer"].(map[string]any)
	if sdp["sdp"] != "v=0" {
		t.Fatalf("offer body not passed through: %v", offers[0])
	}
	if got := carol.events(t); len(got) != 0 {
		t.Fatalf("relay is point-to-point, carol saw %v", got)
	}
}

func TestAnswerAndCandidateRelay(t *testing.T) {
	ctl := newTestController()
	alice := connect(ctl, "conn-alice")
	bob := connect(ctl, "conn-bob")

	ctl.handleEvent("conn-bob", bob, "", []byte(`{"type":"rtc-answer","channelId":"general","to":"conn-alice","answer":{"type":"answer"}}`))
	ctl.handleEvent("conn-bob", bob, "", []byte(`{"type":"ice-candidate","channelId":"general","to":"conn-alice","candidate":{"candidate":"c"}}`))

	if got := alice.ofType(t, "rtc-answer"); len(got) != 1 || got[0]["from"] != "conn-bob" {
		t.Fatalf("rtc-answer relay wrong: %v", alice.events(t))
	}
	if got := alice.ofType(t, "ice-candidate"); len(got) != 1 || got[0]["from"] != "conn-bob" {
		t.Fatalf("ice-candidate relay wrong: %v", alice.events(t))
	}
}

func TestRelayToDeadTargetIsDroppedSilently(t *testing.T) {
	ctl := newTestController()
	alice := connect(ctl, "conn-alice")

	ctl.handleEvent("conn-alice", alice, "", []byte(`{"type":"rtc-offer","channelId":"general","to":"conn-gone","offer":{"sdp":"v=0"}}`))

	// No error frame back to the sender; the failure is log-only.
	if got := alice.events(t); len(got) != 0 {
		t.Fatalf("sender must not be told about an unreachable target, got %v", got)
	}
}

func TestRelayWithoutBodyIsRejected(t *testing.T) {
	ctl := newTestController()
	alice := connect(ctl, "conn-alice")
	connect(ctl, "conn-bob")

	ctl.handleEvent("conn-alice", alice, "", []byte(`{"type":"rtc-offer","channelId":"general","to":"conn-bob"}`))

	errs := alice.ofType(t, "error")
	if len(errs) != 1 || errs[0]["error"] != "missing_field" {
		t.Fatalf("offer without body should be rejected, got %v", alice.events(t))
	}
}

func TestLeaveBroadcastsUserLeft(t *testing.T) {
	ctl := newTestController()
	alice := connect(ctl, "conn-alice")
	bob := connect(ctl, "conn-bob")
	joinChannel(t, ctl, "conn-alice", alice, "general", "Alice")
	joinChannel(t, ctl, "conn-bob", bob, "general", "Bob")
	bob.reset()

	ctl.handleEvent("conn-alice", alice, "", []byte(`{"type":"leave-channel","channelId":"general"}`))

	lefts := bob.ofType(t, "user-left")
	if len(lefts) != 1 {
		t.Fatalf("user-left events: got %d, want 1", len(lefts))
	}
	if lefts[0]["username"] != "Alice" || lefts[0]["connectionId"] != "conn-alice" {
		t.Fatalf("user-left payload wrong: %v", lefts[0])
	}

	// Second leave of the same channel is a benign no-op.
	bob.reset()
	ctl.handleEvent("conn-alice", alice, "", []byte(`{"type":"leave-channel","channelId":"general"}`))
	if got := bob.events(t); len(got) != 0 {
		t.Fatalf("repeated leave must not re-broadcast, got %v", got)
	}
}

// The two-room teardown: Alice shares one channel with Bob and another with
// Carol; when Alice drops, each of them hears user-left exactly once, for
// their shared channel only.
func TestDisconnectNotifiesEveryRoom(t *testing.T) {
	ctl := newTestController()
	alice := connect(ctl, "conn-alice")
	bob := connect(ctl, "conn-bob")
	carol := connect(ctl, "conn-carol")
	joinChannel(t, ctl, "conn-alice", alice, "alpha", "Alice")
	joinChannel(t, ctl, "conn-alice", alice, "beta", "Alice")
	joinChannel(t, ctl, "conn-bob", bob, "alpha", "Bob")
	joinChannel(t, ctl, "conn-carol", carol, "beta", "Carol")
	bob.reset()
	carol.reset()

	ctl.handleDisconnect("conn-alice")

	for c, want := range map[*recConn]string{bob: "alpha", carol: "beta"} {
		lefts := c.ofType(t, "user-left")
		if len(lefts) != 1 {
			t.Fatalf("user-left events for %s: got %d, want 1", want, len(lefts))
		}
		if lefts[0]["channelId"] != want || lefts[0]["username"] != "Alice" {
			t.Fatalf("user-left payload wrong for %s: %v", want, lefts[0])
		}
	}

	if ctl.Orch.Registry.IsLive("conn-alice") {
		t.Fatal("disconnected connection must be unregistered")
	}
	if _, ok := ctl.Orch.Rooms.Get("alpha"); !ok {
		t.Fatal("alpha should survive, Bob is still in it")
	}

	// Signaling to the gone connection now drops.
	ctl.handleEvent("conn-bob", bob, "", []byte(`{"type":"rtc-offer","channelId":"alpha","to":"conn-alice","offer":{"sdp":"v=0"}}`))
	if got := alice.ofType(t, "rtc-offer"); len(got) != 0 {
		t.Fatal("frames must not reach a disconnected target")
	}
}

func TestScreenShareToggleBroadcast(t *testing.T) {
	ctl := newTestController()
	alice := connect(ctl, "conn-alice")
	bob := connect(ctl, "conn-bob")
	joinChannel(t, ctl, "conn-alice", alice, "general", "Alice")
	joinChannel(t, ctl, "conn-bob", bob, "general", "Bob")
	bob.reset()

	ctl.handleEvent("conn-alice", alice, "", []byte(`{"type":"start-screen-share","channelId":"general"}`))
	ctl.handleEvent("conn-alice", alice, "", []byte(`{"type":"stop-screen-share","channelId":"general"}`))

	shares := bob.ofType(t, "user-screen-share")
	if len(shares) != 2 {
		t.Fatalf("user-screen-share events: got %d, want 2", len(shares))
	}
	if shares[0]["isSharing"] != true || shares[1]["isSharing"] != false {
		t.Fatalf("share flags wrong: %v", shares)
	}
	if shares[0]["connectionId"] != "conn-alice" {
		t.Fatalf("share event must name the sharer: %v", shares[0])
	}
}

func TestMediaStateBroadcast(t *testing.T) {
	ctl := newTestController()
	alice := connect(ctl, "conn-alice")
	bob := connect(ctl, "conn-bob")
	joinChannel(t, ctl, "conn-alice", alice, "general", "Alice")
	joinChannel(t, ctl, "conn-bob", bob, "general", "Bob")
	bob.reset()

	ctl.handleEvent("conn-alice", alice, "", []byte(`{"type":"media-state-change","channelId":"general","audioEnabled":false}`))

	states := bob.ofType(t, "user-media-state")
	if len(states) != 1 {
		t.Fatalf("user-media-state events: got %d, want 1", len(states))
	}
	if states[0]["audioEnabled"] != false {
		t.Fatalf("audio flag wrong: %v", states[0])
	}
	if _, ok := states[0]["videoEnabled"]; ok {
		t.Fatalf("unset video flag must be omitted: %v", states[0])
	}
}

func TestPingPong(t *testing.T) {
	ctl := newTestController()
	conn := connect(ctl, "conn-a")

	ctl.handleEvent("conn-a", conn, "", []byte(`{"type":"ping"}`))
	if got := conn.ofType(t, "pong"); len(got) != 1 {
		t.Fatalf("expected one pong, got %v", conn.events(t))
	}
}

func TestJoinUsesClientTokenWhenNoUserID(t *testing.T) {
	ctl := newTestController()
	alice := connect(ctl, "conn-alice")
	bob := connect(ctl, "conn-bob")
	joinChannel(t, ctl, "conn-bob", bob, "general", "Bob")
	bob.reset()

	ctl.handleEvent("conn-alice", alice, "guest-token-1", []byte(`{"type":"join-channel","channelId":"general","username":"Alice"}`))

	joins := bob.ofType(t, "user-joined")
	if len(joins) != 1 {
		t.Fatalf("user-joined events: got %d, want 1", len(joins))
	}
	if joins[0]["userId"] != "guest-token-1" {
		t.Fatalf("guest identity should fall back to the client token, got %v", joins[0])
	}
}
