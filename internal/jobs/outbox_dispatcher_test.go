package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"livetokens/internal/database"
	"livetokens/internal/models"
	"livetokens/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

// fakePublisher records published messages and fails on demand
type fakePublisher struct {
	published []string
	fail      error
}

func (p *fakePublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	if p.fail != nil {
		return p.fail
	}
	p.published = append(p.published, subject)
	return nil
}

func (p *fakePublisher) Close() {}

func seedEvent(t *testing.T, db *gorm.DB, subject string) *models.OutboxEvent {
	event := &models.OutboxEvent{
		Subject: subject,
		Key:     "key-1",
		Payload: []byte(`{"amount":100}`),
		Status:  models.OutboxStatusPending,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to seed outbox event: %v", err)
	}
	return event
}

func TestDispatchMarksEventSent(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	publisher := &fakePublisher{}
	dispatcher := NewOutboxDispatcher(repo, publisher)

	event := seedEvent(t, db, "tips.completed")

	dispatcher.drain(context.Background())

	if len(publisher.published) != 1 || publisher.published[0] != "tips.completed" {
		t.Fatalf("expected one publish to tips.completed, got %v", publisher.published)
	}

	var row models.OutboxEvent
	db.First(&row, event.ID)
	if row.Status != models.OutboxStatusSent {
		t.Errorf("expected SENT, got %s", row.Status)
	}
	if row.SentAt == nil {
		t.Error("expected sent_at to be set")
	}
}

func TestDispatchRetriesThenParks(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	publisher := &fakePublisher{fail: errors.New("broker unavailable")}
	dispatcher := NewOutboxDispatcher(repo, publisher)

	event := seedEvent(t, db, "tips.completed")

	for i := 0; i < dispatcher.maxRetries; i++ {
		dispatcher.drain(context.Background())
	}

	var row models.OutboxEvent
	db.First(&row, event.ID)
	if row.Status != models.OutboxStatusFailed {
		t.Errorf("expected FAILED after %d attempts, got %s", dispatcher.maxRetries, row.Status)
	}
	if row.RetryCount != dispatcher.maxRetries {
		t.Errorf("expected retry count %d, got %d", dispatcher.maxRetries, row.RetryCount)
	}

	// A parked event is no longer picked up
	publisher.fail = nil
	dispatcher.drain(context.Background())
	if len(publisher.published) != 0 {
		t.Errorf("expected no publishes for a parked event, got %v", publisher.published)
	}
}

func TestDispatchRecoversAfterBrokerOutage(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	publisher := &fakePublisher{fail: errors.New("broker unavailable")}
	dispatcher := NewOutboxDispatcher(repo, publisher)

	event := seedEvent(t, db, "tips.completed")

	dispatcher.drain(context.Background())

	var row models.OutboxEvent
	db.First(&row, event.ID)
	if row.Status != models.OutboxStatusPending {
		t.Fatalf("expected event still PENDING after one failure, got %s", row.Status)
	}

	publisher.fail = nil
	dispatcher.drain(context.Background())

	db.First(&row, event.ID)
	if row.Status != models.OutboxStatusSent {
		t.Errorf("expected SENT once the broker recovered, got %s", row.Status)
	}
}
