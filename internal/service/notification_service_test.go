package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticket-desk/internal/config"
	"github.com/spec-kit/ticket-desk/internal/events"
)

func TestNotificationServiceLogsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	n := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom:  "desk@example.com",
		WebhookURL: "https://hooks.example.com/tickets",
	})
	n.RegisterHandlers()

	ctx := context.Background()
	_ = dispatcher.Publish(ctx, events.New(events.EventTicketCreated, "TK-007", events.Actor{}, epoch, nil))
	_ = dispatcher.Publish(ctx, events.New(events.EventSessionLoggedOut, "", events.Actor{UserID: "1"}, epoch, nil))

	for _, msg := range []string{"TicketCreated", "sendEmailNotificationStub", "sendWebhookNotificationStub", "Audit"} {
		if logs.FilterMessage(msg).Len() == 0 {
			t.Errorf("no %q log entry", msg)
		}
	}
}

func TestNotificationStubsSkipWhenUnconfigured(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{}).RegisterHandlers()

	_ = dispatcher.Publish(context.Background(), events.New(events.EventTicketCommentAdded, "TK-001", events.Actor{}, epoch, nil))
	if logs.FilterMessage("sendEmailNotificationStub").Len() != 0 {
		t.Fatal("email stub ran without a sender")
	}
	if logs.FilterMessage("TicketCommentAdded").Len() != 1 {
		t.Fatal("comment event not logged")
	}
}
