package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
)

// Event types. Every event carries a full snapshot of its feed; receivers
// replace their local copy instead of merging.
const (
	EventOrders      = "orders"
	EventSessions    = "sessions"
	EventWaiterCalls = "waiter_calls"
	EventMenu        = "menu"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	role   models.Role
	userID string
}

// Hub holds the connected dashboards and tables.
type Hub struct {
	clients map[*websocket.Conn]client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]client)}
}

var defaultHub = NewHub()

// Default returns the process-wide hub used by the change monitor.
func Default() *Hub {
	return defaultHub
}

func (h *Hub) Register(conn *websocket.Conn, role models.Role, userID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = client{role: role, userID: userID}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// BroadcastOrders sends the active order list. Staff receive every order,
// a table only its own.
func (h *Hub) BroadcastOrders(orders []models.Order) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	var staffPayload []byte
	for conn, cl := range h.clients {
		var data []byte
		if cl.role.IsStaff() {
			if staffPayload == nil {
				staffPayload = marshal(Message{Event: EventOrders, Data: orders})
			}
			data = staffPayload
		} else {
			own := make([]models.Order, 0)
			for _, o := range orders {
				if o.UserID == cl.userID {
					own = append(own, o)
				}
			}
			data = marshal(Message{Event: EventOrders, Data: own})
		}
		h.send(conn, data)
	}
}

func (h *Hub) BroadcastSessions(sessions []models.ActiveSession) {
	h.broadcast(Message{Event: EventSessions, Data: sessions}, staffOnly)
}

func (h *Hub) BroadcastWaiterCalls(calls []models.WaiterCall) {
	h.broadcast(Message{Event: EventWaiterCalls, Data: calls}, staffOnly)
}

func (h *Hub) BroadcastMenu(items []models.MenuItem) {
	h.broadcast(Message{Event: EventMenu, Data: items}, everyone)
}

func staffOnly(c client) bool { return c.role.IsStaff() }
func everyone(client) bool { return true }

func (h *Hub) broadcast(msg Message, audience func(client) bool) {
	data := marshal(msg)
	if data == nil {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, cl := range h.clients {
		if audience(cl) {
			h.send(conn, data)
		}
	}
}

// send must be called with the mutex held. A failed write drops the client.
func (h *Hub) send(conn *websocket.Conn, data []byte) {
	if data == nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		utils.ErrorLogger.Warnf("Dropping websocket client: %v", err)
		delete(h.clients, conn)
		conn.Close()
	}
}

func marshal(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s message: %v", msg.Event, err)
		return nil
	}
	return data
}
