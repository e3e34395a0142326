package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/relaymill/towncrier/pkg/domain/model"
	"github.com/relaymill/towncrier/pkg/domain/model/config"
	"github.com/relaymill/towncrier/pkg/domain/types"
	"github.com/relaymill/towncrier/pkg/usecase"
	"github.com/slack-go/slack"
)

// mockCRM is a mock implementation of crm.Service
type mockCRM struct {
	mu           sync.Mutex
	recordings   []*model.Recording
	listErr      error
	userErr      map[int64]error
	subjectErr   map[string]error
	subjectCalls []string
}

func (m *mockCRM) ListRecordings(_ context.Context, _ time.Time) ([]*model.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.recordings, nil
}

func (m *mockCRM) GetUser(_ context.Context, id int64) (*model.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.userErr[id]; err != nil {
		return nil, err
	}
	return &model.Author{ID: id, Name: fmt.Sprintf("User%d Lastname", id)}, nil
}

func (m *mockCRM) GetSubject(_ context.Context, collection string, id int64) (*model.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjectCalls = append(m.subjectCalls, fmt.Sprintf("%s/%d", collection, id))
	if err := m.subjectErr[collection]; err != nil {
		return nil, err
	}
	return &model.Subject{ID: id, Name: fmt.Sprintf("Subject %d", id)}, nil
}

// mockWebhook is a mock implementation of webhook.Service
type mockWebhook struct {
	mu      sync.Mutex
	posted  []*slack.WebhookMessage
	postErr error
}

func (m *mockWebhook) Post(_ context.Context, msg *slack.WebhookMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return m.postErr
	}
	m.posted = append(m.posted, msg)
	return nil
}

func (m *mockWebhook) messages() []*slack.WebhookMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*slack.WebhookMessage{}, m.posted...)
}

func testNotifyConfig() *config.NotifyConfig {
	return &config.NotifyConfig{
		ShowEveryone: true,
		Groups:       []int64{42},
		Username:     "towncrier",
	}
}

func testRecording(id int64, created time.Time) *model.Recording {
	return &model.Recording{
		ID:          id,
		Type:        types.RecordingTypeNote,
		Body:        fmt.Sprintf("note body %d", id),
		AuthorID:    100 + id,
		SubjectID:   200 + id,
		SubjectType: types.SubjectTypeParty,
		SubjectName: fmt.Sprintf("Subject %d", 200+id),
		VisibleTo:   types.VisibilityEveryone,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestSync_PostsQualifiedRecordings(t *testing.T) {
	checkpoint := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	newest := checkpoint.Add(3 * time.Hour)

	owner := testRecording(3, checkpoint.Add(2*time.Hour))
	owner.VisibleTo = types.VisibilityOwner
	owner.UpdatedAt = newest

	crmSvc := &mockCRM{recordings: []*model.Recording{
		testRecording(1, checkpoint.Add(1*time.Hour)),
		testRecording(2, checkpoint.Add(2*time.Hour)),
		owner,
	}}
	webhookSvc := &mockWebhook{}

	uc := usecase.NewSyncUseCase(crmSvc, webhookSvc, testNotifyConfig(),
		usecase.WithBaseURL("https://crm.example.com"))

	result, err := uc.Sync(context.Background(), checkpoint)
	gt.NoError(t, err).Required()

	gt.Value(t, result.Fetched).Equal(3)
	gt.Value(t, result.Candidates).Equal(2)
	gt.Value(t, result.Posted).Equal(2)
	gt.Value(t, result.Skipped).Equal(0)

	// Owner-only recording was filtered but still advances the checkpoint
	gt.Value(t, result.Checkpoint).Equal(newest)

	msgs := webhookSvc.messages()
	gt.Array(t, msgs).Length(2)
	for _, msg := range msgs {
		gt.Value(t, msg.Username).Equal("towncrier")
		gt.Array(t, msg.Attachments).Length(1)
	}
}

func TestSync_MessageText(t *testing.T) {
	checkpoint := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	crmSvc := &mockCRM{recordings: []*model.Recording{
		testRecording(7, checkpoint.Add(time.Minute)),
	}}
	webhookSvc := &mockWebhook{}

	uc := usecase.NewSyncUseCase(crmSvc, webhookSvc, testNotifyConfig(),
		usecase.WithBaseURL("https://crm.example.com"))

	_, err := uc.Sync(context.Background(), checkpoint)
	gt.NoError(t, err).Required()

	msgs := webhookSvc.messages()
	gt.Array(t, msgs).Length(1)
	gt.Value(t, msgs[0].Text).Equal(
		"User107 shared <https://crm.example.com/notes/7|a note> about <https://crm.example.com/people/207|Subject 207>")
	gt.Value(t, msgs[0].Attachments[0].Text).Equal("note body 7")
}

func TestSync_StrictCheckpointGate(t *testing.T) {
	checkpoint := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	atCheckpoint := testRecording(1, checkpoint)
	edited := testRecording(2, checkpoint.Add(-time.Hour))
	edited.UpdatedAt = checkpoint.Add(time.Hour)

	crmSvc := &mockCRM{recordings: []*model.Recording{atCheckpoint, edited}}
	webhookSvc := &mockWebhook{}

	uc := usecase.NewSyncUseCase(crmSvc, webhookSvc, testNotifyConfig())

	result, err := uc.Sync(context.Background(), checkpoint)
	gt.NoError(t, err).Required()

	// Created at or before the checkpoint is never re-posted, but an
	// edited old recording still rolls the checkpoint forward
	gt.Value(t, result.Posted).Equal(0)
	gt.Value(t, result.Checkpoint).Equal(checkpoint.Add(time.Hour))
	gt.Array(t, webhookSvc.messages()).Length(0)
}

func TestSync_EmptyFetch(t *testing.T) {
	checkpoint := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	crmSvc := &mockCRM{}
	webhookSvc := &mockWebhook{}

	uc := usecase.NewSyncUseCase(crmSvc, webhookSvc, testNotifyConfig())

	result, err := uc.Sync(context.Background(), checkpoint)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Fetched).Equal(0)
	gt.Value(t, result.Checkpoint).Equal(checkpoint)
}

func TestSync_ListFetchFailureIsFatal(t *testing.T) {
	crmSvc := &mockCRM{listErr: errors.New("CRM is down")}
	webhookSvc := &mockWebhook{}

	uc := usecase.NewSyncUseCase(crmSvc, webhookSvc, testNotifyConfig())

	_, err := uc.Sync(context.Background(), time.Now())
	gt.Error(t, err)
	gt.Array(t, webhookSvc.messages()).Length(0)
}

func TestSync_EnrichmentFailureSkipsRecord(t *testing.T) {
	checkpoint := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	crmSvc := &mockCRM{
		recordings: []*model.Recording{
			testRecording(1, checkpoint.Add(1*time.Hour)),
			testRecording(2, checkpoint.Add(2*time.Hour)),
		},
		userErr: map[int64]error{101: errors.New("user not found")},
	}
	webhookSvc := &mockWebhook{}

	uc := usecase.NewSyncUseCase(crmSvc, webhookSvc, testNotifyConfig())

	result, err := uc.Sync(context.Background(), checkpoint)
	gt.NoError(t, err).Required()

	gt.Value(t, result.Posted).Equal(1)
	gt.Value(t, result.Skipped).Equal(1)
	// The skipped recording does not hold the checkpoint back
	gt.Value(t, result.Checkpoint).Equal(checkpoint.Add(2 * time.Hour))
}

func TestSync_DeliveryFailureSkipsRecord(t *testing.T) {
	checkpoint := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	crmSvc := &mockCRM{recordings: []*model.Recording{
		testRecording(1, checkpoint.Add(time.Hour)),
	}}
	webhookSvc := &mockWebhook{postErr: errors.New("webhook rejected")}

	uc := usecase.NewSyncUseCase(crmSvc, webhookSvc, testNotifyConfig())

	result, err := uc.Sync(context.Background(), checkpoint)
	gt.NoError(t, err).Required()

	gt.Value(t, result.Posted).Equal(0)
	gt.Value(t, result.Skipped).Equal(1)
	gt.Value(t, result.Checkpoint).Equal(checkpoint.Add(time.Hour))
}

func TestSync_PartySubjectFallsBackToCompanies(t *testing.T) {
	checkpoint := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	crmSvc := &mockCRM{
		recordings: []*model.Recording{
			testRecording(1, checkpoint.Add(time.Hour)),
		},
		subjectErr: map[string]error{"people": errors.New("not found")},
	}
	webhookSvc := &mockWebhook{}

	uc := usecase.NewSyncUseCase(crmSvc, webhookSvc, testNotifyConfig())

	result, err := uc.Sync(context.Background(), checkpoint)
	gt.NoError(t, err).Required()

	gt.Value(t, result.Posted).Equal(1)
	gt.Array(t, crmSvc.subjectCalls).Length(2)
	gt.Value(t, crmSvc.subjectCalls[0]).Equal("people/201")
	gt.Value(t, crmSvc.subjectCalls[1]).Equal("companies/201")
}

func TestSync_DealSubjectGetsNoFallback(t *testing.T) {
	checkpoint := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	deal := testRecording(1, checkpoint.Add(time.Hour))
	deal.SubjectType = types.SubjectTypeDeal

	crmSvc := &mockCRM{
		recordings: []*model.Recording{deal},
		subjectErr: map[string]error{"deals": errors.New("not found")},
	}
	webhookSvc := &mockWebhook{}

	uc := usecase.NewSyncUseCase(crmSvc, webhookSvc, testNotifyConfig())

	result, err := uc.Sync(context.Background(), checkpoint)
	gt.NoError(t, err).Required()

	gt.Value(t, result.Posted).Equal(0)
	gt.Value(t, result.Skipped).Equal(1)
	gt.Array(t, crmSvc.subjectCalls).Length(1)
	gt.Value(t, crmSvc.subjectCalls[0]).Equal("deals/201")
}

func TestSync_GroupVisibility(t *testing.T) {
	checkpoint := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	inGroup := testRecording(1, checkpoint.Add(time.Hour))
	inGroup.VisibleTo = types.VisibilityNamedGroup
	inGroup.GroupID = 42

	otherGroup := testRecording(2, checkpoint.Add(time.Hour))
	otherGroup.VisibleTo = types.VisibilityNamedGroup
	otherGroup.GroupID = 99

	crmSvc := &mockCRM{recordings: []*model.Recording{inGroup, otherGroup}}
	webhookSvc := &mockWebhook{}

	uc := usecase.NewSyncUseCase(crmSvc, webhookSvc, testNotifyConfig())

	result, err := uc.Sync(context.Background(), checkpoint)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Posted).Equal(1)
	gt.Value(t, result.Candidates).Equal(1)
}

func TestSync_CheckpointNeverRegresses(t *testing.T) {
	checkpoint := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	stale := testRecording(1, checkpoint.Add(-2*time.Hour))
	stale.UpdatedAt = checkpoint.Add(-time.Hour)

	crmSvc := &mockCRM{recordings: []*model.Recording{stale}}
	webhookSvc := &mockWebhook{}

	uc := usecase.NewSyncUseCase(crmSvc, webhookSvc, testNotifyConfig())

	result, err := uc.Sync(context.Background(), checkpoint)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Checkpoint).Equal(checkpoint)
}

func TestSync_Idempotence(t *testing.T) {
	checkpoint := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	crmSvc := &mockCRM{recordings: []*model.Recording{
		testRecording(1, checkpoint.Add(time.Hour)),
	}}
	webhookSvc := &mockWebhook{}

	uc := usecase.NewSyncUseCase(crmSvc, webhookSvc, testNotifyConfig())

	first, err := uc.Sync(context.Background(), checkpoint)
	gt.NoError(t, err).Required()
	gt.Value(t, first.Posted).Equal(1)

	// A second run from the advanced checkpoint re-fetches the same data
	// but posts nothing
	second, err := uc.Sync(context.Background(), first.Checkpoint)
	gt.NoError(t, err).Required()
	gt.Value(t, second.Posted).Equal(0)
	gt.Value(t, second.Checkpoint).Equal(first.Checkpoint)
	gt.Array(t, webhookSvc.messages()).Length(1)
}
