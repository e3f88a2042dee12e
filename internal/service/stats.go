package service

import (
	"sync/atomic"
	"time"
)

// Stats is the process-wide counters block. Observability only; values
// reset on restart and nothing depends on them for correctness.
type Stats struct {
	startedAt        time.Time
	rooms            atomic.Int64
	messages         atomic.Int64
	directedMessages atomic.Int64
	requests         atomic.Int64
}

func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

func (s *Stats) IncRooms()            { s.rooms.Add(1) }
func (s *Stats) IncMessages()         { s.messages.Add(1) }
func (s *Stats) IncDirectedMessages() { s.directedMessages.Add(1) }
func (s *Stats) IncRequests()         { s.requests.Add(1) }

func (s *Stats) Rooms() int64            { return s.rooms.Load() }
func (s *Stats) Messages() int64         { return s.messages.Load() }
func (s *Stats) DirectedMessages() int64 { return s.directedMessages.Load() }
func (s *Stats) Requests() int64         { return s.requests.Load() }
func (s *Stats) StartedAt() time.Time    { return s.startedAt }
func (s *Stats) Uptime() time.Duration   { return time.Since(s.startedAt) }
