// File: pipeline/subscribers.go
package pipeline

import "github.com/lguibr/flowline/bollywood"

// subscribers is the observer list each core actor keeps privately.
type subscribers struct {
	pids []*bollywood.PID
}

func (s *subscribers) add(pid *bollywood.PID) {
	if pid == nil {
		return
	}
	for _, existing := range s.pids {
		if existing.ID == pid.ID {
			return
		}
	}
	s.pids = append(s.pids, pid)
}

func (s *subscribers) remove(pid *bollywood.PID) {
	if pid == nil {
		return
	}
	for i, existing := range s.pids {
		if existing.ID == pid.ID {
			s.pids = append(s.pids[:i], s.pids[i+1:]...)
			return
		}
	}
}

// broadcast sends msg to every observer. Receivers must not mutate shared
// slices inside msg.
func (s *subscribers) broadcast(ctx bollywood.Context, msg interface{}) {
	for _, pid := range s.pids {
		ctx.Engine().Send(pid, msg, ctx.Self())
	}
}
