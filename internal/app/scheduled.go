package app

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"domverify/internal/types"
)

// RunScheduled executes work previously queued through Connection.Schedule.
func (s *Service) RunScheduled(ctx context.Context, what int, obj any) error {
	switch what {
	case types.ScheduleSendRequest:
		names, ok := obj.([]string)
		if !ok {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("send request expects package names, got %T", obj))
		}
		s.mu.RLock()
		live := make([]string, 0, len(names))
		for _, name := range names {
			if _, ok := s.registry.DomainSetID(name); ok {
				live = append(live, name)
			}
		}
		s.mu.RUnlock()

		if len(live) > 0 {
			s.Proxy.SendBroadcastForPackages(live)
		}
		log.Ctx(ctx).Debug().Strs("packages", live).Msg("verification request sent")
		s.observe(OpRunScheduledRequests, types.StatusOK)
		return nil
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown scheduled work: %d", what))
	}
}
