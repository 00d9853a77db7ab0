package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/config"
	apperrors "github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/errors"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/google"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/repository"
)

// SyncSummary is the per-run outcome. Per-event failures are counted here,
// never propagated: one bad event does not abort the batch.
type SyncSummary struct {
	EventsProcessed int `json:"eventsProcessed"`
	Errors          int `json:"errors"`
}

type CalendarSyncService struct {
	google      *google.Client
	tokens      *TokenService
	connRepo    repository.ConnectionRepository
	contactRepo repository.ContactRepository
	apptRepo    repository.AppointmentRepository
}

func NewCalendarSyncService(
	googleClient *google.Client,
	tokens *TokenService,
	connRepo repository.ConnectionRepository,
	contactRepo repository.ContactRepository,
	apptRepo repository.AppointmentRepository,
) *CalendarSyncService {
	return &CalendarSyncService{
		google:      googleClient,
		tokens:      tokens,
		connRepo:    connRepo,
		contactRepo: contactRepo,
		apptRepo:    apptRepo,
	}
}

// SyncUser pulls the user's upcoming calendar events and mirrors them into
// contacts and appointments. Events are processed sequentially; each failure
// is logged and counted without stopping the rest.
func (s *CalendarSyncService) SyncUser(ctx context.Context, userID string) (*SyncSummary, error) {
	conn, err := s.connRepo.FindActiveByUserAndIntegration(ctx, userID, model.IntegrationCalendar)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if conn == nil {
		return nil, apperrors.NotFound("Calendar connection")
	}

	conn, err = s.tokens.EnsureFresh(ctx, conn)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	events, err := s.google.ListEvents(ctx, conn.AccessToken, now, now.Add(config.CalendarLookahead), config.CalendarMaxResults)
	if err != nil {
		return nil, err
	}

	runLog := log.With().
		Str("syncRunId", uuid.NewString()).
		Str("userId", userID).
		Logger()

	summary := &SyncSummary{}
	for i := range events {
		ev := &events[i]
		if !ev.Timed() {
			// All-day events carry no concrete times; skipped entirely.
			continue
		}
		if err := s.syncEvent(ctx, userID, ev); err != nil {
			runLog.Error().Err(err).Str("eventId", ev.ID).Msg("failed to sync calendar event")
			summary.Errors++
			continue
		}
		summary.EventsProcessed++
	}

	runLog.Info().
		Int("eventsProcessed", summary.EventsProcessed).
		Int("errors", summary.Errors).
		Msg("calendar sync completed")

	return summary, nil
}

func (s *CalendarSyncService) syncEvent(ctx context.Context, userID string, ev *google.CalendarEvent) error {
	startsAt, err := time.Parse(time.RFC3339, ev.Start.DateTime)
	if err != nil {
		return fmt.Errorf("parse event start: %w", err)
	}
	endsAt, err := time.Parse(time.RFC3339, ev.End.DateTime)
	if err != nil {
		return fmt.Errorf("parse event end: %w", err)
	}

	contact, err := s.resolveContact(ctx, userID, ev)
	if err != nil {
		return fmt.Errorf("resolve contact: %w", err)
	}

	var description *string
	if ev.Description != "" {
		description = &ev.Description
	}

	_, err = s.apptRepo.Upsert(ctx, model.UpsertAppointmentParams{
		UserID:          userID,
		ContactID:       contact.ID,
		ExternalEventID: ev.ID,
		Title:           eventTitle(ev),
		Description:     description,
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		Origin:          model.AppointmentOriginGoogleCalendar,
	})
	if err != nil {
		return fmt.Errorf("upsert appointment: %w", err)
	}
	return nil
}

// resolveContact maps the event's primary attendee to a contact, looking up by
// email first, then phone, creating one when neither matches. An event with no
// attendees maps to a contact named after the event with no email or phone.
func (s *CalendarSyncService) resolveContact(ctx context.Context, userID string, ev *google.CalendarEvent) (*model.Contact, error) {
	var name, email string
	if attendee := primaryAttendee(ev.Attendees); attendee != nil {
		email = attendee.Email
		name = attendee.DisplayName
		if name == "" {
			name = attendee.Email
		}
	}
	if name == "" {
		name = eventTitle(ev)
	}

	contact, err := s.findContact(ctx, userID, email, "")
	if err != nil {
		return nil, err
	}
	if contact != nil {
		return contact, nil
	}

	var emailPtr *string
	if email != "" {
		emailPtr = &email
	}
	return s.contactRepo.Create(ctx, model.CreateContactParams{
		UserID: userID,
		Name:   name,
		Email:  emailPtr,
		Source: model.ContactSourceCalendar,
	})
}

func (s *CalendarSyncService) findContact(ctx context.Context, userID, email, phone string) (*model.Contact, error) {
	if email != "" {
		contact, err := s.contactRepo.FindByEmail(ctx, userID, email)
		if err != nil {
			return nil, err
		}
		if contact != nil {
			return contact, nil
		}
	}
	if phone != "" {
		contact, err := s.contactRepo.FindByPhone(ctx, userID, phone)
		if err != nil {
			return nil, err
		}
		if contact != nil {
			return contact, nil
		}
	}
	return nil, nil
}

// primaryAttendee picks the participant that represents the patient: the
// first attendee that is neither the organizer nor a resource, falling back
// to the first attendee of any kind.
func primaryAttendee(attendees []google.EventAttendee) *google.EventAttendee {
	for i := range attendees {
		if !attendees[i].Organizer && !attendees[i].Resource {
			return &attendees[i]
		}
	}
	if len(attendees) > 0 {
		return &attendees[0]
	}
	return nil
}

func eventTitle(ev *google.CalendarEvent) string {
	if ev.Summary != "" {
		return ev.Summary
	}
	return "Untitled event"
}
