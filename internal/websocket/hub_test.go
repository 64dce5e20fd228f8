package websocket

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// waitForDrop polls until the client is gone from the hub's registry, failing
// the test if that never happens. Broadcasts are asynchronous, so tests can't
// assert on the registry immediately after BroadcastToEvent returns.
func waitForDrop(t *testing.T, hub *Hub, eventID string, client *Client) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.mu.RLock()
		_, present := hub.clients[eventID][client]
		hub.mu.RUnlock()
		if !present {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("client with a full Send buffer was never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubDropsSlowClientsWithoutStalling(t *testing.T) {
	Convey("Given a running hub with one client whose Send buffer is full", t, func() {
		hub := NewHub()
		go hub.Run()

		// An unbuffered Send channel with nobody reading it models a stalled
		// connection: no broadcast to it can ever complete.
		slow := &Client{EventID: "event-1", Send: make(chan []byte)}
		hub.Register(slow)

		Convey("When a message is broadcast to that event", func() {
			hub.BroadcastToEvent("event-1", []byte(`{"type":"teams_published"}`))

			Convey("The slow client is dropped, its channel closed, and the hub keeps serving", func() {
				waitForDrop(t, hub, "event-1", slow)

				// A closed channel yields immediately with open == false.
				_, open := <-slow.Send
				So(open, ShouldBeFalse)

				// The loop must still be processing: a later Register completes.
				registered := make(chan struct{})
				go func() {
					hub.Register(&Client{EventID: "event-1", Send: make(chan []byte, 1)})
					close(registered)
				}()
				select {
				case <-registered:
				case <-time.After(2 * time.Second):
					t.Fatal("hub stopped processing after broadcasting to a slow client")
				}
			})
		})

		Convey("When another client can keep up, it still receives the message", func() {
			fast := &Client{EventID: "event-1", Send: make(chan []byte, 1)}
			hub.Register(fast)
			hub.BroadcastToEvent("event-1", []byte(`{"type":"payment_reviewed"}`))

			select {
			case data := <-fast.Send:
				So(string(data), ShouldEqual, `{"type":"payment_reviewed"}`)
			case <-time.After(2 * time.Second):
				t.Fatal("buffered client never received the broadcast")
			}
		})
	})
}
