package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/voluzi/debugpilot/pkg/cpusampler"
)

const (
	MessageTypeThreadCpuUsage = "threadCpuUsage"

	streamBufferSize = 16
	writeTimeout     = 5 * time.Second
)

// StreamMessage is sent to websocket subscribers for every sampler tick.
type StreamMessage struct {
	ID      string                            `json:"id"`
	Type    string                            `json:"type"`
	Payload cpusampler.TimeAndThreadCpuUsages `json:"payload"`
}

// stream fans sampler records out to websocket subscribers.
type stream struct {
	upgrader websocket.Upgrader
	ch       chan cpusampler.TimeAndThreadCpuUsages

	mu      sync.Mutex
	conns   map[int]*websocket.Conn
	counter int
}

func newStream() *stream {
	return &stream{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		ch:    make(chan cpusampler.TimeAndThreadCpuUsages, streamBufferSize),
		conns: make(map[int]*websocket.Conn),
	}
}

// publish never blocks the sampler. Records are dropped when subscribers lag.
func (s *stream) publish(record cpusampler.TimeAndThreadCpuUsages) {
	select {
	case s.ch <- record:
	default:
		log.Warn("thread cpu usage stream is full, dropping record")
	}
}

func (s *stream) run(stop <-chan struct{}) {
	defer s.closeAll()
	for {
		select {
		case <-stop:
			return
		case record := <-s.ch:
			s.broadcast(record)
		}
	}
}

func (s *stream) broadcast(record cpusampler.TimeAndThreadCpuUsages) {
	b, err := json.Marshal(StreamMessage{
		ID:      uuid.NewString(),
		Type:    MessageTypeThreadCpuUsage,
		Payload: record,
	})
	if err != nil {
		log.Errorf("error encoding stream message: %v", err)
		return
	}

	// gather connections with lock, but send without it
	s.mu.Lock()
	conns := make(map[int]*websocket.Conn, len(s.conns))
	for id, c := range s.conns {
		conns[id] = c
	}
	s.mu.Unlock()

	for id, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.WithField("subscriber", id).Debugf("dropping stream subscriber: %v", err)
			s.removeConn(id)
		}
	}
}

func (s *stream) addConn(c *websocket.Conn) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	s.conns[s.counter] = c
	return s.counter
}

func (s *stream) removeConn(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.conns[id]; ok {
		c.Close()
		delete(s.conns, id)
	}
}

func (s *stream) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *stream) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.conns {
		c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
			time.Now().Add(time.Second))
		c.Close()
		delete(s.conns, id)
	}
}

func (s *stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("websocket upgrade failed: %v", err)
		return
	}
	id := s.addConn(c)
	log.WithField("remote", r.RemoteAddr).Debug("stream subscriber connected")

	// Subscribers only listen. Reading is still required to process control
	// frames and to notice when they go away.
	go func() {
		defer s.removeConn(id)
		for {
			if _, _, err := c.NextReader(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debugf("stream subscriber: %v", err)
				}
				return
			}
		}
	}()
}
