package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/soundofguitara/parma/internal/model"
	"github.com/soundofguitara/parma/internal/repository"
)

// ── In-memory store wiring every mock ──

type mockStore struct {
	users       *mockUserRepo
	batches     *mockBatchRepo
	assignments *mockAssignmentRepo
	operators   *mockOperatorRepo
	anomalies   *mockAnomalyRepo
	planning    *mockPlanningRepo
}

func newMockStore() *mockStore {
	s := &mockStore{
		users:       newMockUserRepo(),
		batches:     &mockBatchRepo{items: make(map[string]*model.Batch)},
		assignments: &mockAssignmentRepo{items: make(map[string]*model.Assignment)},
		operators:   &mockOperatorRepo{items: make(map[string]*model.Operator)},
		anomalies:   &mockAnomalyRepo{items: make(map[string]*model.Anomaly)},
		planning:    &mockPlanningRepo{items: make(map[string]*model.PlanningItem)},
	}
	s.batches.store = s
	s.assignments.store = s
	s.anomalies.store = s
	s.planning.store = s
	return s
}

// repository returns an aggregate without database: transactions are no-ops.
func (s *mockStore) repository() *repository.Repository {
	return &repository.Repository{
		User:       s.users,
		Batch:      s.batches,
		Assignment: s.assignments,
		Operator:   s.operators,
		Anomaly:    s.anomalies,
		Planning:   s.planning,
	}
}

func (s *mockStore) addBatch(b model.Batch) {
	s.batches.items[b.ID] = &b
}

func (s *mockStore) addOperator(id, name string) {
	s.operators.items[id] = &model.Operator{ID: id, Name: name}
}

func (s *mockStore) addAssignment(a model.Assignment) {
	s.assignments.items[a.ID] = &a
}

// ── Mock BatchRepository ──

type mockBatchRepo struct {
	items map[string]*model.Batch
	store *mockStore
	seq   int
	err   error
}

func (m *mockBatchRepo) withAssignments(b *model.Batch) model.Batch {
	out := *b
	out.Assignments = nil
	for _, a := range m.store.assignments.sorted() {
		if a.BatchID == b.ID {
			out.Assignments = append(out.Assignments, a)
		}
	}
	sort.SliceStable(out.Assignments, func(i, j int) bool {
		return out.Assignments[i].StartTime.Before(out.Assignments[j].StartTime)
	})
	return out
}

func (m *mockBatchRepo) Create(_ context.Context, b *model.Batch) error {
	if m.err != nil {
		return m.err
	}
	if b.ID == "" {
		m.seq++
		b.ID = fmt.Sprintf("batch-%d", m.seq)
	}
	cp := *b
	m.items[b.ID] = &cp
	return nil
}

func (m *mockBatchRepo) GetByID(_ context.Context, id string) (*model.Batch, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := m.withAssignments(b)
	return &out, nil
}

func (m *mockBatchRepo) List(_ context.Context) ([]model.Batch, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Batch
	for _, b := range m.items {
		result = append(result, m.withAssignments(b))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockBatchRepo) ListCreatedBetween(_ context.Context, from, to time.Time) ([]model.Batch, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Batch
	for _, b := range m.items {
		if !b.CreatedAt.Before(from) && !b.CreatedAt.After(to) {
			result = append(result, m.withAssignments(b))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockBatchRepo) Update(_ context.Context, b *model.Batch) error {
	if m.err != nil {
		return m.err
	}
	cp := *b
	cp.Assignments = nil
	m.items[b.ID] = &cp
	return nil
}

func (m *mockBatchRepo) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.items, id)
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	items map[string]*model.Assignment
	store *mockStore
	seq   int
	err   error
}

func (m *mockAssignmentRepo) sorted() []model.Assignment {
	var result []model.Assignment
	for _, a := range m.items {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	if m.err != nil {
		return m.err
	}
	if a.ID == "" {
		m.seq++
		a.ID = fmt.Sprintf("asg-%d", m.seq)
	}
	cp := *a
	cp.Batch = nil
	m.items[a.ID] = &cp
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAssignmentRepo) List(_ context.Context, f repository.AssignmentFilter) ([]model.Assignment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Assignment
	for _, a := range m.sorted() {
		if f.BatchID != "" && a.BatchID != f.BatchID {
			continue
		}
		if f.OperatorID != "" && a.OperatorID != f.OperatorID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if b, ok := m.store.batches.items[a.BatchID]; ok {
			cp := *b
			a.Batch = &cp
		}
		result = append(result, a)
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListInWindow(_ context.Context, from, to time.Time) ([]model.Assignment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Assignment
	for _, a := range m.sorted() {
		if a.EndTime == nil || a.StartTime.Before(from) || a.EndTime.After(to) {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	if m.err != nil {
		return m.err
	}
	cp := *a
	cp.Batch = nil
	m.items[a.ID] = &cp
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func (m *mockAssignmentRepo) DeleteByBatch(_ context.Context, batchID string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for id, a := range m.items {
		if a.BatchID == batchID {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

func (m *mockAssignmentRepo) DeleteByOperator(_ context.Context, operatorID string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for id, a := range m.items {
		if a.OperatorID == operatorID {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

func (m *mockAssignmentRepo) RenameOperator(_ context.Context, operatorID, name string) error {
	for _, a := range m.items {
		if a.OperatorID == operatorID {
			a.OperatorName = name
		}
	}
	return nil
}

// ── Mock OperatorRepository ──

type mockOperatorRepo struct {
	items map[string]*model.Operator
	seq   int
	err   error
}

func (m *mockOperatorRepo) Create(_ context.Context, op *model.Operator) error {
	if op.ID == "" {
		m.seq++
		op.ID = fmt.Sprintf("op-%d", m.seq)
	}
	cp := *op
	m.items[op.ID] = &cp
	return nil
}

func (m *mockOperatorRepo) GetByID(_ context.Context, id string) (*model.Operator, error) {
	op, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *op
	return &cp, nil
}

func (m *mockOperatorRepo) List(_ context.Context) ([]model.Operator, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Operator
	for _, op := range m.items {
		result = append(result, *op)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockOperatorRepo) Update(_ context.Context, op *model.Operator) error {
	cp := *op
	m.items[op.ID] = &cp
	return nil
}

func (m *mockOperatorRepo) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

// ── Mock AnomalyRepository ──

type mockAnomalyRepo struct {
	items map[string]*model.Anomaly
	store *mockStore
	seq   int
	err   error
}

func (m *mockAnomalyRepo) joined(a *model.Anomaly) model.Anomaly {
	out := *a
	if op, ok := m.store.operators.items[a.OperatorID]; ok {
		cp := *op
		out.Operator = &cp
	}
	if b, ok := m.store.batches.items[a.BatchID]; ok {
		cp := *b
		out.Batch = &cp
	}
	return out
}

func (m *mockAnomalyRepo) Create(_ context.Context, a *model.Anomaly) error {
	if m.err != nil {
		return m.err
	}
	if a.ID == "" {
		m.seq++
		a.ID = fmt.Sprintf("ano-%d", m.seq)
	}
	cp := *a
	cp.Operator, cp.Batch = nil, nil
	m.items[a.ID] = &cp
	return nil
}

func (m *mockAnomalyRepo) GetByID(_ context.Context, id string) (*model.Anomaly, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := m.joined(a)
	return &out, nil
}

func (m *mockAnomalyRepo) List(_ context.Context, batchID string) ([]model.Anomaly, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Anomaly
	for _, a := range m.items {
		if batchID == "" || a.BatchID == batchID {
			result = append(result, m.joined(a))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DetectionDate.After(result[j].DetectionDate) })
	return result, nil
}

func (m *mockAnomalyRepo) ListDetectedBetween(_ context.Context, from, to time.Time) ([]model.Anomaly, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Anomaly
	for _, a := range m.items {
		if !a.DetectionDate.Before(from) && !a.DetectionDate.After(to) {
			result = append(result, m.joined(a))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DetectionDate.After(result[j].DetectionDate) })
	return result, nil
}

func (m *mockAnomalyRepo) Update(_ context.Context, a *model.Anomaly) error {
	cp := *a
	cp.Operator, cp.Batch = nil, nil
	m.items[a.ID] = &cp
	return nil
}

// ── Mock PlanningRepository ──

type mockPlanningRepo struct {
	items map[string]*model.PlanningItem
	store *mockStore
	seq   int
}

func (m *mockPlanningRepo) Create(_ context.Context, item *model.PlanningItem) error {
	if item.ID == "" {
		m.seq++
		item.ID = fmt.Sprintf("plan-%d", m.seq)
	}
	cp := *item
	cp.Batch = nil
	m.items[item.ID] = &cp
	return nil
}

func (m *mockPlanningRepo) GetByID(_ context.Context, id string) (*model.PlanningItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *mockPlanningRepo) List(_ context.Context) ([]model.PlanningItem, error) {
	var result []model.PlanningItem
	for _, item := range m.items {
		cp := *item
		if b, ok := m.store.batches.items[item.BatchID]; ok {
			bc := *b
			cp.Batch = &bc
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		return result[i].PlannedStartDate.Before(result[j].PlannedStartDate)
	})
	return result, nil
}

func (m *mockPlanningRepo) Update(_ context.Context, item *model.PlanningItem) error {
	cp := *item
	cp.Batch = nil
	m.items[item.ID] = &cp
	return nil
}

func (m *mockPlanningRepo) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: id
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == "" {
		m.seq++
		user.ID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) SetRole(_ context.Context, userID, role string) error {
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Role = &model.UserRole{UserID: userID, Role: role}
	return nil
}
