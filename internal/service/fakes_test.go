package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"job_marketplace/internal/domain"
	"job_marketplace/internal/repository"
	apperrors "job_marketplace/pkg/errors"
)

// Фейки репозиториев и клиентов для тестов сервисного слоя:
// состояние в памяти плюс инъекция ошибок по полям.

type fakeAccounts struct {
	byID map[uuid.UUID]*domain.Account

	getErr error
}

var _ repository.AccountRepository = (*fakeAccounts)(nil)

func newFakeAccounts(accounts ...*domain.Account) *fakeAccounts {
	f := &fakeAccounts{byID: map[uuid.UUID]*domain.Account{}}
	for _, a := range accounts {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccounts) AddBlockedBy(_ context.Context, accountID, blockerID uuid.UUID) error {
	a, ok := f.byID[accountID]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	if !a.IsBlockedBy(blockerID) {
		a.BlockedBy = append(a.BlockedBy, blockerID)
	}
	return nil
}

func (f *fakeAccounts) RemoveBlockedBy(_ context.Context, accountID, blockerID uuid.UUID) error {
	a, ok := f.byID[accountID]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	kept := a.BlockedBy[:0]
	for _, id := range a.BlockedBy {
		if id != blockerID {
			kept = append(kept, id)
		}
	}
	a.BlockedBy = kept
	return nil
}

type fakeSubscriptions struct {
	sub *domain.Subscription // nil - активной подписки нет

	decrements int
	debits     []float64
}

var _ repository.SubscriptionRepository = (*fakeSubscriptions)(nil)

func (f *fakeSubscriptions) GetActiveByAccount(_ context.Context, accountID uuid.UUID) (*domain.Subscription, error) {
	if f.sub == nil || f.sub.AccountID != accountID {
		return nil, apperrors.ErrNotFound
	}
	return f.sub, nil
}

func (f *fakeSubscriptions) DecrementViews(_ context.Context, id uuid.UUID) (bool, error) {
	if f.sub == nil || f.sub.ID != id {
		return false, apperrors.ErrNotFound
	}
	if f.sub.Views.Count <= 0 {
		return false, nil
	}
	f.sub.Views.Count--
	f.decrements++
	return true, nil
}

func (f *fakeSubscriptions) DebitWallet(_ context.Context, id uuid.UUID, amount float64) (bool, error) {
	if f.sub == nil || f.sub.ID != id {
		return false, apperrors.ErrNotFound
	}
	if f.sub.WalletAmount < amount {
		return false, nil
	}
	f.sub.WalletAmount -= amount
	f.debits = append(f.debits, amount)
	return true, nil
}

type fakeViews struct {
	active map[string]*domain.View

	recorded []*domain.View
}

var _ repository.ViewRepository = (*fakeViews)(nil)

func viewKey(groupID, candidateID uuid.UUID) string {
	return groupID.String() + "/" + candidateID.String()
}

func newFakeViews() *fakeViews {
	return &fakeViews{active: map[string]*domain.View{}}
}

func (f *fakeViews) FindActive(_ context.Context, groupID, candidateID uuid.UUID) (*domain.View, error) {
	v, ok := f.active[viewKey(groupID, candidateID)]
	if !ok || !v.IsActive(time.Now()) {
		return nil, nil
	}
	return v, nil
}

func (f *fakeViews) Record(_ context.Context, view *domain.View) (bool, error) {
	key := viewKey(view.GroupID, view.CandidateID)
	if existing, ok := f.active[key]; ok && existing.IsActive(time.Now()) {
		return false, nil
	}
	f.active[key] = view
	f.recorded = append(f.recorded, view)
	return true, nil
}

type fakeJobs struct {
	byID map[uuid.UUID]*domain.Job
}

var _ repository.JobRepository = (*fakeJobs)(nil)

func newFakeJobs(jobs ...*domain.Job) *fakeJobs {
	f := &fakeJobs{byID: map[uuid.UUID]*domain.Job{}}
	for _, j := range jobs {
		f.byID[j.ID] = j
	}
	return f
}

func (f *fakeJobs) GetByID(_ context.Context, id uuid.UUID) (*domain.Job, error) {
	j, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}
	return j, nil
}

type fakePricing struct {
	pricing *domain.Pricing
	policy  *domain.FreeTierPolicy
}

var _ repository.PricingRepository = (*fakePricing)(nil)

func (f *fakePricing) GetPricing(_ context.Context, _ string) (*domain.Pricing, error) {
	if f.pricing == nil {
		return nil, apperrors.ErrNotFound
	}
	return f.pricing, nil
}

func (f *fakePricing) GetFreeTierPolicy(_ context.Context, _ string) (*domain.FreeTierPolicy, error) {
	return f.policy, nil
}

type convKey struct {
	employerID, candidateID, jobID uuid.UUID
}

type fakeConversations struct {
	byID  map[uuid.UUID]*domain.Conversation
	byKey map[convKey]*domain.Conversation

	applicantCount int
	createdCount   int
	blockCalls     []blockFlagCall
}

type blockFlagCall struct {
	employerID, candidateID uuid.UUID
	initiator               domain.Role
	blocked                 bool
}

var _ repository.ConversationRepository = (*fakeConversations)(nil)

func newFakeConversations(convs ...*domain.Conversation) *fakeConversations {
	f := &fakeConversations{
		byID:  map[uuid.UUID]*domain.Conversation{},
		byKey: map[convKey]*domain.Conversation{},
	}
	for _, c := range convs {
		f.byID[c.ID] = c
		f.byKey[convKey{c.EmployerID, c.CandidateID, c.JobID}] = c
	}
	return f
}

func (f *fakeConversations) GetByID(_ context.Context, id uuid.UUID) (*domain.Conversation, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrConversationNotFound
	}
	return c, nil
}

func (f *fakeConversations) GetByKey(_ context.Context, employerID, candidateID, jobID uuid.UUID) (*domain.Conversation, error) {
	return f.byKey[convKey{employerID, candidateID, jobID}], nil
}

func (f *fakeConversations) Create(_ context.Context, conv *domain.Conversation) (bool, error) {
	key := convKey{conv.EmployerID, conv.CandidateID, conv.JobID}
	if existing, ok := f.byKey[key]; ok {
		*conv = *existing
		return false, nil
	}
	f.byID[conv.ID] = conv
	f.byKey[key] = conv
	f.createdCount++
	return true, nil
}

func (f *fakeConversations) ListByAccount(_ context.Context, accountID uuid.UUID, role domain.Role) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, c := range f.byID {
		if c.Participant(role) == accountID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConversations) CountDistinctApplicants(_ context.Context, _, _ uuid.UUID) (int, error) {
	return f.applicantCount, nil
}

func (f *fakeConversations) SetInterested(_ context.Context, id uuid.UUID) error {
	c, ok := f.byID[id]
	if !ok {
		return apperrors.ErrConversationNotFound
	}
	c.IsInterested = true
	return nil
}

func (f *fakeConversations) SetInvitationRejected(_ context.Context, id uuid.UUID) error {
	c, ok := f.byID[id]
	if !ok {
		return apperrors.ErrConversationNotFound
	}
	c.IsInvitationRejected = true
	return nil
}

func (f *fakeConversations) SetDeleted(_ context.Context, id uuid.UUID, role domain.Role) error {
	c, ok := f.byID[id]
	if !ok {
		return apperrors.ErrConversationNotFound
	}
	if role == domain.RoleCandidate {
		c.HasCandidateDeleted = true
	} else {
		c.HasEmployerDeleted = true
	}
	return nil
}

func (f *fakeConversations) SetBlockFlag(_ context.Context, employerID, candidateID uuid.UUID, initiator domain.Role, blocked bool) error {
	f.blockCalls = append(f.blockCalls, blockFlagCall{employerID, candidateID, initiator, blocked})
	for _, c := range f.byID {
		if c.EmployerID != employerID || c.CandidateID != candidateID {
			continue
		}
		if initiator == domain.RoleCandidate {
			c.IsEmployerBlocked = blocked
		} else {
			c.IsCandidateBlocked = blocked
		}
	}
	return nil
}

type fakeMessages struct {
	appended []*domain.Message

	unread     int
	markedRead int64
	blockCalls []blockFlagCall
}

var _ repository.MessageRepository = (*fakeMessages)(nil)

func (f *fakeMessages) Append(_ context.Context, message *domain.Message) error {
	message.ID = int64(len(f.appended) + 1)
	message.CreatedAt = time.Now()
	// Копия, как при записи в БД: последующие мутации аргумента
	// не меняют хранимую запись
	cpy := *message
	f.appended = append(f.appended, &cpy)
	return nil
}

func (f *fakeMessages) ListRecent(_ context.Context, conversationID uuid.UUID, limit int) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range f.appended {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, conversationID, toID uuid.UUID, _ domain.Role) (int64, error) {
	var marked int64
	for _, m := range f.appended {
		if m.ConversationID == conversationID && m.ToID == toID && !m.IsRead {
			m.IsRead = true
			marked++
		}
	}
	f.markedRead += marked
	return marked, nil
}

func (f *fakeMessages) CountUnread(_ context.Context, _ uuid.UUID, _ domain.Role) (int, error) {
	return f.unread, nil
}

func (f *fakeMessages) SetBlockFlag(_ context.Context, employerID, candidateID uuid.UUID, initiator domain.Role, blocked bool) error {
	f.blockCalls = append(f.blockCalls, blockFlagCall{employerID, candidateID, initiator, blocked})
	return nil
}

type requestKey struct {
	paID, jobID, candidateID, employerID uuid.UUID
}

type fakeChatRequests struct {
	byID  map[uuid.UUID]*domain.ChatRequest
	byKey map[requestKey]*domain.ChatRequest

	created  int
	reopened int
}

var _ repository.ChatRequestRepository = (*fakeChatRequests)(nil)

func newFakeChatRequests(requests ...*domain.ChatRequest) *fakeChatRequests {
	f := &fakeChatRequests{
		byID:  map[uuid.UUID]*domain.ChatRequest{},
		byKey: map[requestKey]*domain.ChatRequest{},
	}
	for _, r := range requests {
		f.byID[r.ID] = r
		f.byKey[requestKey{r.PaID, r.JobID, r.CandidateID, r.EmployerID}] = r
	}
	return f
}

func (f *fakeChatRequests) GetByID(_ context.Context, id uuid.UUID) (*domain.ChatRequest, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r, nil
}

func (f *fakeChatRequests) GetByKey(_ context.Context, paID, jobID, candidateID, employerID uuid.UUID) (*domain.ChatRequest, error) {
	return f.byKey[requestKey{paID, jobID, candidateID, employerID}], nil
}

func (f *fakeChatRequests) Create(_ context.Context, request *domain.ChatRequest) error {
	f.byID[request.ID] = request
	f.byKey[requestKey{request.PaID, request.JobID, request.CandidateID, request.EmployerID}] = request
	f.created++
	return nil
}

func (f *fakeChatRequests) Reopen(_ context.Context, id uuid.UUID) error {
	r, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	r.IsAccepted = false
	r.IsRejected = false
	f.reopened++
	return nil
}

func (f *fakeChatRequests) SetDecision(_ context.Context, id uuid.UUID, accepted bool) error {
	r, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	r.IsAccepted = accepted
	r.IsRejected = !accepted
	return nil
}

func (f *fakeChatRequests) ListPendingForRecruiter(_ context.Context, paID uuid.UUID) ([]*domain.ChatRequest, error) {
	var out []*domain.ChatRequest
	for _, r := range f.byID {
		if r.PaID == paID && r.IsPending() {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeNotifications struct {
	created []*domain.Notification
	unread  int
}

var _ repository.NotificationRepository = (*fakeNotifications)(nil)

func (f *fakeNotifications) Create(_ context.Context, notification *domain.Notification) error {
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeNotifications) CountUnread(_ context.Context, _ uuid.UUID) (int, error) {
	return f.unread, nil
}

type fakeUnreadCache struct {
	store map[uuid.UUID]*domain.UnreadCounts

	invalidated []uuid.UUID
	sets        int
}

var _ repository.UnreadCacheRepository = (*fakeUnreadCache)(nil)

func newFakeUnreadCache() *fakeUnreadCache {
	return &fakeUnreadCache{store: map[uuid.UUID]*domain.UnreadCounts{}}
}

func (f *fakeUnreadCache) Get(_ context.Context, accountID uuid.UUID) (*domain.UnreadCounts, bool, error) {
	c, ok := f.store[accountID]
	return c, ok, nil
}

func (f *fakeUnreadCache) Set(_ context.Context, accountID uuid.UUID, counts *domain.UnreadCounts, _ time.Duration) error {
	f.store[accountID] = counts
	f.sets++
	return nil
}

func (f *fakeUnreadCache) Invalidate(_ context.Context, accountIDs ...uuid.UUID) error {
	for _, id := range accountIDs {
		delete(f.store, id)
		f.invalidated = append(f.invalidated, id)
	}
	return nil
}

// fakeTranslator помечает текст целевым языком, чтобы перевод был виден
type fakeTranslator struct {
	err   error
	calls int
}

var _ Translator = (*fakeTranslator)(nil)

func (f *fakeTranslator) Translate(_ context.Context, text, _, to string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("[%s] %s", to, text), nil
}

type pushCall struct {
	deviceToken, title, body string
}

type fakeNotifier struct {
	pushes []pushCall
	emails []string
	sms    []string

	pushErr error
}

var _ Notifier = (*fakeNotifier)(nil)

func (f *fakeNotifier) SendPush(_ context.Context, deviceToken, _, title, body string, _ map[string]string) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes = append(f.pushes, pushCall{deviceToken, title, body})
	return nil
}

func (f *fakeNotifier) SendEmail(_ context.Context, template, _ string, _ map[string]string) error {
	f.emails = append(f.emails, template)
	return nil
}

func (f *fakeNotifier) SendSms(_ context.Context, _, phone, _ string) error {
	f.sms = append(f.sms, phone)
	return nil
}

type fakeATS struct {
	forwarded []uuid.UUID
	posted    []string

	forwardErr error
}

var _ ATSForwarder = (*fakeATS)(nil)

func (f *fakeATS) ForwardApplication(_ context.Context, job *domain.Job, _ *domain.Account) error {
	if f.forwardErr != nil {
		return f.forwardErr
	}
	f.forwarded = append(f.forwarded, job.ID)
	return nil
}

func (f *fakeATS) PostApplicant(_ context.Context, url string, _ map[string]interface{}) error {
	f.posted = append(f.posted, url)
	return nil
}
