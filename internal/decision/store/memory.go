package store

import (
	"context"
	"sort"
	"sync"

	"verdict/internal/decision/models"
	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

type edgeKey struct {
	from id.DecisionID
	to   id.DecisionID
}

// InMemoryStore keeps everything in maps behind one RWMutex, so every read
// is a consistent snapshot and every write is atomic with respect to
// readers. Cross-entity atomicity for multi-write operations comes from the
// service's project-sharded transaction runner, which serializes writers.
type InMemoryStore struct {
	mu sync.RWMutex

	decisions   map[id.DecisionID]*models.Decision
	projectSeqs map[id.ProjectID]int64
	signals     map[id.DecisionID]map[id.SignalID]*models.Signal
	options     map[id.DecisionID]map[id.OptionID]*models.Option
	edges       map[id.ProjectID]map[edgeKey]models.Edge
	transitions map[id.DecisionID][]*models.StateTransition
	commits     map[id.DecisionID]*models.CommitRecord
	reviews     map[id.DecisionID][]*models.Review
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		decisions:   make(map[id.DecisionID]*models.Decision),
		projectSeqs: make(map[id.ProjectID]int64),
		signals:     make(map[id.DecisionID]map[id.SignalID]*models.Signal),
		options:     make(map[id.DecisionID]map[id.OptionID]*models.Option),
		edges:       make(map[id.ProjectID]map[edgeKey]models.Edge),
		transitions: make(map[id.DecisionID][]*models.StateTransition),
		commits:     make(map[id.DecisionID]*models.CommitRecord),
		reviews:     make(map[id.DecisionID][]*models.Review),
	}
}

func (s *InMemoryStore) CreateDecision(_ context.Context, d *models.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.decisions[d.ID]; exists {
		return sentinel.ErrConflict
	}
	s.projectSeqs[d.ProjectID]++
	d.ProjectSeq = s.projectSeqs[d.ProjectID]
	s.decisions[d.ID] = d.Clone()
	return nil
}

func (s *InMemoryStore) GetDecision(_ context.Context, decisionID id.DecisionID) (*models.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decisions[decisionID]
	if !ok || d.IsDeleted {
		return nil, sentinel.ErrNotFound
	}
	return d.Clone(), nil
}

func (s *InMemoryStore) UpdateDecision(_ context.Context, d *models.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decisions[d.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.decisions[d.ID] = d.Clone()
	return nil
}

func (s *InMemoryStore) ListProjectDecisions(_ context.Context, projectID id.ProjectID) ([]*models.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Decision
	for _, d := range s.decisions {
		if d.ProjectID == projectID && !d.IsDeleted {
			out = append(out, d.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectSeq < out[j].ProjectSeq })
	return out, nil
}

func (s *InMemoryStore) ListSignals(_ context.Context, decisionID id.DecisionID) ([]*models.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listSignalsLocked(decisionID), nil
}

func (s *InMemoryStore) listSignalsLocked(decisionID id.DecisionID) []*models.Signal {
	var out []*models.Signal
	for _, sig := range s.signals[decisionID] {
		out = append(out, sig.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *InMemoryStore) GetSignal(_ context.Context, decisionID id.DecisionID, signalID id.SignalID) (*models.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sig, ok := s.signals[decisionID][signalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return sig.Clone(), nil
}

func (s *InMemoryStore) SaveSignal(_ context.Context, sig *models.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.signals[sig.DecisionID]
	if !ok {
		bucket = make(map[id.SignalID]*models.Signal)
		s.signals[sig.DecisionID] = bucket
	}
	bucket[sig.ID] = sig.Clone()
	return nil
}

func (s *InMemoryStore) DeleteSignal(_ context.Context, decisionID id.DecisionID, signalID id.SignalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.signals[decisionID][signalID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.signals[decisionID], signalID)
	return nil
}

func (s *InMemoryStore) ListOptions(_ context.Context, decisionID id.DecisionID) ([]*models.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listOptionsLocked(decisionID), nil
}

func (s *InMemoryStore) listOptionsLocked(decisionID id.DecisionID) []*models.Option {
	var out []*models.Option
	for _, o := range s.options[decisionID] {
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *InMemoryStore) GetOption(_ context.Context, decisionID id.DecisionID, optionID id.OptionID) (*models.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.options[decisionID][optionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return o.Clone(), nil
}

func (s *InMemoryStore) SaveOption(_ context.Context, o *models.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.options[o.DecisionID]
	if !ok {
		bucket = make(map[id.OptionID]*models.Option)
		s.options[o.DecisionID] = bucket
	}
	bucket[o.ID] = o.Clone()
	return nil
}

func (s *InMemoryStore) ListProjectEdges(_ context.Context, projectID id.ProjectID) ([]models.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listEdgesLocked(projectID), nil
}

func (s *InMemoryStore) listEdgesLocked(projectID id.ProjectID) []models.Edge {
	var out []models.Edge
	for _, e := range s.edges[projectID] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *InMemoryStore) ListParents(_ context.Context, decisionID id.DecisionID) ([]id.DecisionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var parents []id.DecisionID
	for _, project := range s.edges {
		for key := range project {
			if key.to == decisionID {
				parents = append(parents, key.from)
			}
		}
	}
	return parents, nil
}

func (s *InMemoryStore) InsertEdge(_ context.Context, e models.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.edges[e.ProjectID]
	if !ok {
		bucket = make(map[edgeKey]models.Edge)
		s.edges[e.ProjectID] = bucket
	}
	key := edgeKey{from: e.From, to: e.To}
	if _, exists := bucket[key]; exists {
		return sentinel.ErrConflict
	}
	bucket[key] = e
	return nil
}

func (s *InMemoryStore) DeleteEdge(_ context.Context, projectID id.ProjectID, from, to id.DecisionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := edgeKey{from: from, to: to}
	if _, ok := s.edges[projectID][key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.edges[projectID], key)
	return nil
}

func (s *InMemoryStore) AppendTransition(_ context.Context, t *models.StateTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.transitions[t.DecisionID] = append(s.transitions[t.DecisionID], &cp)
	return nil
}

func (s *InMemoryStore) ListTransitions(_ context.Context, decisionID id.DecisionID) ([]*models.StateTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.StateTransition
	for _, t := range s.transitions[decisionID] {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) CreateCommitRecord(_ context.Context, r *models.CommitRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.commits[r.DecisionID]; exists {
		return sentinel.ErrConflict
	}
	cp := *r
	s.commits[r.DecisionID] = &cp
	return nil
}

func (s *InMemoryStore) GetCommitRecord(_ context.Context, decisionID id.DecisionID) (*models.CommitRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.commits[decisionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *InMemoryStore) AddReview(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.reviews[r.DecisionID] = append(s.reviews[r.DecisionID], &cp)
	return nil
}

func (s *InMemoryStore) ListReviews(_ context.Context, decisionID id.DecisionID) ([]*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Review
	for _, r := range s.reviews[decisionID] {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) CountReviews(_ context.Context, decisionID id.DecisionID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews[decisionID]), nil
}

func (s *InMemoryStore) ProjectGraph(_ context.Context, projectID id.ProjectID) (*models.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := &models.Graph{}
	for _, d := range s.decisions {
		if d.ProjectID != projectID || d.IsDeleted {
			continue
		}
		g.Nodes = append(g.Nodes, models.GraphNode{
			ID:         d.ID,
			ProjectSeq: d.ProjectSeq,
			Title:      d.Title,
			Status:     d.Status,
		})
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ProjectSeq < g.Nodes[j].ProjectSeq })
	g.Edges = s.listEdgesLocked(projectID)
	return g, nil
}
