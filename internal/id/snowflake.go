// Package id provides the single 64-bit id space used for every entity
// in the system: users, channels, chat lines, ws sessions.
package id

import (
	"sync"
	"time"
)

const (
	epoch        int64 = 1700000000000 // ms, arbitrary recent epoch
	timeBits           = 41
	sequenceBits       = 12
	sequenceMask int64 = -1 ^ (-1 << sequenceBits)
)

// Generator mints monotonically increasing 64-bit ids, real-time-component
// first so ids sort the same as creation order. ChatLine pagination and
// Channel/User ids need a single, sortable, thread-safe id space rather
// than database-generated UUIDs.
type Generator struct {
	mu       sync.Mutex
	lastTime int64
	seq      int64
}

func NewGenerator() *Generator {
	return &Generator{}
}

// Next returns a fresh id. Safe for concurrent use.
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli()
	if now == g.lastTime {
		g.seq = (g.seq + 1) & sequenceMask
		if g.seq == 0 {
			for now <= g.lastTime {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		g.seq = 0
	}
	g.lastTime = now

	return ((now - epoch) << (sequenceBits)) | g.seq
}
