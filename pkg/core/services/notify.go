package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

// ConflictNotifier tells a member that another member won a date they booked
type ConflictNotifier interface {
	NotifyConflict(ctx context.Context, member model.TeamMember, conflict model.ConflictResolution) error
}

// EmailSender sends a plain text email
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// EmailConflictNotifier delivers conflict notices by email
type EmailConflictNotifier struct {
	sender EmailSender
}

// NewEmailConflictNotifier creates a notifier that sends through sender
func NewEmailConflictNotifier(sender EmailSender) *EmailConflictNotifier {
	return &EmailConflictNotifier{sender: sender}
}

// NotifyConflict emails the member about the lost date
func (n *EmailConflictNotifier) NotifyConflict(ctx context.Context, member model.TeamMember, conflict model.ConflictResolution) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if member.Email == "" {
		return fmt.Errorf("member %s has no email address", member.Name)
	}

	subject := fmt.Sprintf("Weekend duty: %s assigned to %s", conflict.Date, conflict.Winner)

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", member.Name)
	fmt.Fprintf(&body, "Your booking for %s clashed with a higher priority booking.\n", conflict.Date)
	fmt.Fprintf(&body, "The day has been assigned to %s.\n\n", conflict.Winner)
	body.WriteString("Your booking has been kept as conflicted. If the assignee cancels, it will be confirmed automatically.\n")
	body.WriteString("You can cancel it and pick another weekend day instead.\n")

	return n.sender.SendEmail(member.Email, subject, body.String())
}

// notifyLosers sends a notice to every loser of the booked date other than
// the requester. Notices go out in the background after the month lock has
// been released; failures are logged and never fail the booking.
func (s *Scheduler) notifyLosers(ctx context.Context, requester, date string, conflicts []model.ConflictResolution) {
	if s.notifier == nil {
		return
	}

	type notice struct {
		member   model.TeamMember
		conflict model.ConflictResolution
	}
	var notices []notice
	for _, conflict := range conflicts {
		if conflict.Date != date || conflict.Winner != requester {
			continue
		}
		for _, loser := range conflict.Losers {
			if loser == requester {
				continue
			}
			member, ok := s.directory.FindByName(loser)
			if !ok || member.Email == "" {
				s.logger.Debug("Skipping conflict notice", zap.String("member", loser))
				continue
			}
			notices = append(notices, notice{member: member, conflict: conflict})
		}
	}
	if len(notices) == 0 {
		return
	}

	// The request context ends with the request; the notices must outlive it
	ctx = context.WithoutCancel(ctx)
	s.notices.Add(1)
	go func() {
		defer s.notices.Done()
		for _, n := range notices {
			if err := s.notifier.NotifyConflict(ctx, n.member, n.conflict); err != nil {
				s.logger.Warn("Failed to send conflict notice",
					zap.String("member", n.member.Name),
					zap.String("date", date),
					zap.Error(err))
				continue
			}
			s.logger.Info("Conflict notice sent",
				zap.String("member", n.member.Name),
				zap.String("date", date))
		}
	}()
}

// WaitForNotices blocks until every conflict notice started so far has been sent
func (s *Scheduler) WaitForNotices() {
	s.notices.Wait()
}
