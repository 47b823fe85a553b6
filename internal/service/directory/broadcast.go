package directory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Sender delivers one announcement to one member.
type Sender interface {
	Send(ctx context.Context, recipient domain.MemberID, announcement *domain.Announcement) error
}

// Broadcast delivers the announcement to every member of its group except the
// author. Recipients are resolved once up front; a failed delivery is recorded
// in the report and never stops the rest of the batch. The returned error is
// non-nil only when recipients could not be resolved.
func (s *Service) Broadcast(ctx context.Context, a *domain.Announcement, sender Sender) (*domain.BroadcastReport, error) {
	report := &domain.BroadcastReport{
		BatchID:   uuid.NewString(),
		GroupName: a.GroupName,
		Delivered: make([]domain.MemberID, 0),
		Failed:    make(map[domain.MemberID]error),
	}

	lookupCtx, cancel := s.withTimeout(ctx)
	members, err := s.members.ListByGroup(lookupCtx, a.GroupName)
	cancel()
	if err != nil {
		return nil, s.fail("broadcast", err, zap.String("group", a.GroupName))
	}

	p := pool.New().WithMaxGoroutines(s.cfg.BroadcastConcurrency)
	var mu sync.Mutex

	for _, m := range members {
		if m.ID == a.AuthorID {
			continue
		}
		recipient := m.ID
		p.Go(func() {
			err := sender.Send(ctx, recipient, a)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed[recipient] = err
				return
			}
			report.Delivered = append(report.Delivered, recipient)
		})
	}

	p.Wait()

	s.metrics.ObserveBroadcast(len(report.Delivered), len(report.Failed))

	if len(report.Failed) > 0 {
		s.logger.Warn("Broadcast completed with failures",
			zap.String("batch_id", report.BatchID),
			zap.String("group", report.GroupName),
			zap.Int("delivered", len(report.Delivered)),
			zap.Int("failed", len(report.Failed)),
		)
	} else {
		s.logger.Info("Broadcast completed",
			zap.String("batch_id", report.BatchID),
			zap.String("group", report.GroupName),
			zap.Int("delivered", len(report.Delivered)),
		)
	}

	return report, nil
}
