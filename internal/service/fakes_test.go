package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"talent-match-go/internal/model"
	"talent-match-go/pkg/llm"
	"talent-match-go/pkg/tasks"
)

func noSleep(context.Context, time.Duration) error { return nil }

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uint]*model.User
	nextID uint
	embeds *fakeEmbeddingRepo
}

func newFakeUserRepo(embeds *fakeEmbeddingRepo) *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*model.User{}, embeds: embeds}
}

func (r *fakeUserRepo) add(u model.User) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	} else if u.ID > r.nextID {
		r.nextID = u.ID
	}
	cp := u
	r.users[u.ID] = &cp
	return &cp
}

func (r *fakeUserRepo) Create(user *model.User) error {
	created := r.add(*user)
	user.ID = created.ID
	return nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(userID uint) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) sorted() []model.User {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeUserRepo) FindTalentsWithoutEmbedding() ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.sorted() {
		if u.IsTalent() && !r.embeds.has(u.ID) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindWithPagination(offset, limit int) ([]model.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted()
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

type fakeEmbeddingRepo struct {
	mu      sync.Mutex
	records map[uint]model.ProfileEmbedding
	users   *fakeUserRepo
}

func newFakeEmbeddingRepo() *fakeEmbeddingRepo {
	return &fakeEmbeddingRepo{records: map[uint]model.ProfileEmbedding{}}
}

func (r *fakeEmbeddingRepo) has(userID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[userID]
	return ok
}

func (r *fakeEmbeddingRepo) Upsert(_ context.Context, record *model.ProfileEmbedding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.UserID] = *record
	return nil
}

func (r *fakeEmbeddingRepo) FindByUserID(_ context.Context, userID uint) (*model.ProfileEmbedding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rec, nil
}

func (r *fakeEmbeddingRepo) ListTalentVectors(_ context.Context) ([]model.CandidateVector, error) {
	users, _, _ := r.users.FindWithPagination(0, 1<<30)
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.CandidateVector{}
	for _, u := range users {
		rec, ok := r.records[u.ID]
		if ok && u.IsTalent() {
			out = append(out, model.CandidateVector{Profile: u, Vector: rec.Vector})
		}
	}
	return out, nil
}

// newFakeStore 创建相互关联的用户与向量仓库。
func newFakeStore() (*fakeUserRepo, *fakeEmbeddingRepo) {
	embeds := newFakeEmbeddingRepo()
	users := newFakeUserRepo(embeds)
	embeds.users = users
	return users, embeds
}

type fakeMatchRepo struct {
	mu       sync.Mutex
	requests map[uint]*model.MatchRequest
	matches  []model.TalentMatch
	nextReq  uint
	nextM    uint
	statuses []string

	failCreateMatchAfter int // >0 时第 N+1 次 CreateMatch 返回错误
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{requests: map[uint]*model.MatchRequest{}}
}

func (r *fakeMatchRepo) CreateRequest(_ context.Context, req *model.MatchRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextReq++
	req.ID = r.nextReq
	req.CreatedAt = time.Now()
	cp := *req
	r.requests[req.ID] = &cp
	r.statuses = append(r.statuses, req.Status)
	return nil
}

func (r *fakeMatchRepo) UpdateRequestStatus(_ context.Context, requestID uint, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	req.Status = status
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *fakeMatchRepo) SaveRequestAnalysis(_ context.Context, requestID uint, analysis *model.PromptAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	req.Keywords = analysis.Keywords
	req.Skills = analysis.Skills
	return nil
}

func (r *fakeMatchRepo) FindRequestByID(_ context.Context, requestID uint) (*model.MatchRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeMatchRepo) ListRequestsByUser(_ context.Context, userID uint, offset, limit int) ([]model.MatchRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MatchRequest
	for _, req := range r.requests {
		if req.UserID == userID {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (r *fakeMatchRepo) CountMatchesByRequests(_ context.Context, requestIDs []uint) (map[uint]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[uint]int64{}
	for _, m := range r.matches {
		counts[m.MatchRequestID]++
	}
	return counts, nil
}

func (r *fakeMatchRepo) CreateMatch(_ context.Context, match *model.TalentMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateMatchAfter > 0 && len(r.matches) >= r.failCreateMatchAfter {
		return errors.New("db down")
	}
	r.nextM++
	match.ID = r.nextM
	r.matches = append(r.matches, *match)
	return nil
}

func (r *fakeMatchRepo) FindMatchByID(_ context.Context, matchID uint) (*model.TalentMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == matchID {
			cp := m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMatchRepo) ListMatchesByRequest(_ context.Context, requestID uint) ([]model.TalentMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TalentMatch
	for _, m := range r.matches {
		if m.MatchRequestID == requestID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (r *fakeMatchRepo) status(requestID uint) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[requestID].Status
}

type fakeSwipeRepo struct {
	mu     sync.Mutex
	swipes map[uint]model.Swipe
	writes int
}

func newFakeSwipeRepo() *fakeSwipeRepo {
	return &fakeSwipeRepo{swipes: map[uint]model.Swipe{}}
}

func (r *fakeSwipeRepo) Upsert(_ context.Context, swipe *model.Swipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swipes[swipe.TalentMatchID] = *swipe
	r.writes++
	return nil
}

func (r *fakeSwipeRepo) DirectionsByMatches(_ context.Context, matchIDs []uint) (map[uint]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[uint]string{}
	for _, id := range matchIDs {
		if s, ok := r.swipes[id]; ok {
			out[id] = s.Direction
		}
	}
	return out, nil
}

type fakeConversationRepo struct {
	mu    sync.Mutex
	convs map[string]*model.Conversation
	next  uint
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convs: map[string]*model.Conversation{}}
}

func (r *fakeConversationRepo) FindOrCreateBetween(_ context.Context, a, b uint) (*model.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := model.PairKey(a, b)
	if c, ok := r.convs[key]; ok {
		return c, false, nil
	}
	r.next++
	c := &model.Conversation{
		ID:      r.next,
		PairKey: key,
		Participants: []model.ConversationParticipant{
			{ConversationID: r.next, UserID: a},
			{ConversationID: r.next, UserID: b},
		},
	}
	r.convs[key] = c
	return c, true, nil
}

func (r *fakeConversationRepo) ListByUser(_ context.Context, userID uint) ([]model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Conversation
	for _, c := range r.convs {
		for _, p := range c.Participants {
			if p.UserID == userID {
				out = append(out, *c)
				break
			}
		}
	}
	return out, nil
}

// fakeEmbedder 按文本返回预设向量，未预设的文本返回 fallback。
type fakeEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	failOn   map[int]error // 第 N 次调用（从 1 开始）返回的错误
	calls    []string
}

func (e *fakeEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, text)
	if err, ok := e.failOn[len(e.calls)]; ok {
		return nil, err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return e.fallback, nil
}

func (e *fakeEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// fakeLLM 按操作标签返回预设回复。
type fakeLLM struct {
	mu        sync.Mutex
	replies   map[string]string
	errs      map[string]error
	calls     map[string]int
	lastInput map[string]string
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		replies:   map[string]string{},
		errs:      map[string]error{},
		calls:     map[string]int{},
		lastInput: map[string]string{},
	}
}

func (f *fakeLLM) Complete(_ context.Context, operation string, messages []llm.Message, _ *llm.GenerationParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[operation]++
	if len(messages) > 0 {
		f.lastInput[operation] = messages[len(messages)-1].Content
	}
	if err, ok := f.errs[operation]; ok {
		return "", err
	}
	return f.replies[operation], nil
}

type fakeAnalysisCache struct {
	mu    sync.Mutex
	items map[string]model.PromptAnalysis
	sets  int
}

func newFakeAnalysisCache() *fakeAnalysisCache {
	return &fakeAnalysisCache{items: map[string]model.PromptAnalysis{}}
}

func (c *fakeAnalysisCache) Get(_ context.Context, prompt string) (*model.PromptAnalysis, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.items[prompt]
	if !ok {
		return nil, false, nil
	}
	return &a, true, nil
}

func (c *fakeAnalysisCache) Set(_ context.Context, prompt string, analysis *model.PromptAnalysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[prompt] = *analysis
	c.sets++
	return nil
}

type fakeBlacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Duration
}

func (b *fakeBlacklist) Add(_ context.Context, token string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tokens == nil {
		b.tokens = map[string]time.Duration{}
	}
	b.tokens[token] = ttl
	return nil
}

func (b *fakeBlacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.tokens[token]
	return ok, nil
}

type fakePublisher struct {
	mu    sync.Mutex
	tasks []tasks.ProfileEmbeddingTask
	err   error
}

func (p *fakePublisher) PublishProfileEmbedding(_ context.Context, task tasks.ProfileEmbeddingTask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task)
	return nil
}
