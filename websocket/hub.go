package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/hospitalhq/hospital_ops/scheduling"
)

// Client is one connected dashboard session, pinned to the branch its actor
// belongs to. Events never cross branches, mirroring the scope guard.
type Client struct {
	ActorID  uuid.UUID
	BranchID uuid.UUID
	Conn     *websocket.Conn
}

type connKey struct {
	actorID uuid.UUID
	conn    *websocket.Conn
}

var clients = make(map[connKey]*Client)
var clientsMu sync.RWMutex

var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan scheduling.ScheduleEvent, 64)

// Hub is the scheduling.EventPublisher backed by the channels above.
type Hub struct{}

func (Hub) Publish(ev scheduling.ScheduleEvent) {
	select {
	case Broadcast <- ev:
	default:
		log.Printf("Schedule event dropped, broadcast queue full: %s", ev.Type)
	}
}

// RunHub fans committed schedule events out to every client of the affected
// branch. Mutations are confirmed to clients only here, after the store
// accepted them, never from unconfirmed local state.
func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Schedule feed client registered: %s", client.ActorID)
			clientsMu.Lock()
			clients[connKey{client.ActorID, client.Conn}] = client
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Schedule feed client unregistered: %s", client.ActorID)
			clientsMu.Lock()
			delete(clients, connKey{client.ActorID, client.Conn})
			clientsMu.Unlock()
		case event := <-Broadcast:
			clientsMu.RLock()
			stale := []connKey{}
			for key, client := range clients {
				if client.BranchID != event.BranchID {
					continue
				}
				if err := client.Conn.WriteJSON(event); err != nil {
					log.Printf("Error sending schedule event to client %s: %v", client.ActorID, err)
					client.Conn.Close()
					stale = append(stale, key)
				}
			}
			clientsMu.RUnlock()
			if len(stale) > 0 {
				clientsMu.Lock()
				for _, key := range stale {
					delete(clients, key)
				}
				clientsMu.Unlock()
			}
		}
	}
}
