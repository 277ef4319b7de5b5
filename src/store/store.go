package store

import (
	"sync"
	"time"

	"token-pulse/src/logger"
	"token-pulse/src/models"
	"token-pulse/src/observability"
	"token-pulse/src/utils"
)

// -----------------------------------------------------------------------------
// Store is the canonical token state. Every mutation runs under one lock;
// reads return copies.
// -----------------------------------------------------------------------------

type Store struct {
	clock   utils.Clock
	history *utils.HistoryManager
	Logger  *logger.Logger
	metrics *observability.Metrics

	mu        sync.RWMutex
	state     models.TokensState
	revisions map[models.TokenCategory]uint64
}

// -----------------------------------------------------------------------------

func NewStore(clock utils.Clock, history *utils.HistoryManager, log *logger.Logger, metrics *observability.Metrics) *Store {
	if clock == nil {
		clock = utils.NewRealClock()
	}
	if history == nil {
		history = utils.NewHistoryManager(utils.DefaultHistoryPoints)
	}
	s := &Store{
		clock:     clock,
		history:   history,
		Logger:    log,
		metrics:   metrics,
		revisions: make(map[models.TokenCategory]uint64),
	}
	s.state = initialState()
	return s
}

func initialState() models.TokensState {
	return models.TokensState{
		NewPairs:     []models.Token{},
		FinalStretch: []models.Token{},
		Migrated:     []models.Token{},
		Loading: map[models.TokenCategory]bool{
			models.CategoryNewPairs:     true,
			models.CategoryFinalStretch: true,
			models.CategoryMigrated:     true,
		},
		ConnectionStatus: models.StatusDisconnected,
		SortConfig:       models.DefaultSortConfig(),
		ActivePreset:     models.DefaultPresets(),
	}
}

// -----------------------------------------------------------------------------
// Collections
// -----------------------------------------------------------------------------

// SetTokens replaces the whole collection of category
func (s *Store) SetTokens(category models.TokenCategory, tokens []models.Token) {
	if !category.IsValid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		kept[t.ID] = struct{}{}
	}
	var dropped []string
	for _, t := range s.collection(category) {
		if _, ok := kept[t.ID]; !ok {
			dropped = append(dropped, t.ID)
		}
	}
	s.history.Drop(dropped...)

	next := make([]models.Token, len(tokens))
	copy(next, tokens)
	for _, t := range next {
		s.history.Seed(t.ID, models.PricePoint{Timestamp: t.CreatedAt.UnixMilli(), Price: t.Price})
	}

	s.setCollection(category, next)
	s.stampUpdated()
}

// -----------------------------------------------------------------------------

// AddToken prepends token to category
func (s *Store) AddToken(category models.TokenCategory, token models.Token) {
	if !category.IsValid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.collection(category)
	next := make([]models.Token, 0, len(current)+1)
	next = append(next, token)
	next = append(next, current...)

	s.history.Seed(token.ID, models.PricePoint{Timestamp: utils.UnixMilli(s.clock), Price: token.Price})
	s.setCollection(category, next)
	s.stampUpdated()
}

// -----------------------------------------------------------------------------

// RemoveToken filters tokenID out of category
func (s *Store) RemoveToken(category models.TokenCategory, tokenID string) {
	if !category.IsValid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.collection(category)
	next := make([]models.Token, 0, len(current))
	for _, t := range current {
		if t.ID != tokenID {
			next = append(next, t)
		}
	}

	if len(next) != len(current) {
		s.history.Drop(tokenID)
	}
	s.setCollection(category, next)
	s.stampUpdated()
}

// -----------------------------------------------------------------------------
// Price Updates
// -----------------------------------------------------------------------------

// ApplyPriceUpdate patches price and short-term changes of the first token
// matching update.TokenID, searching categories in fixed order.
func (s *Store) ApplyPriceUpdate(update models.PriceUpdate) {
	s.ApplyPriceUpdates([]models.PriceUpdate{update})
}

// -----------------------------------------------------------------------------

// ApplyPriceUpdates applies updates in array order; later entries for the
// same id win. Unknown ids are ignored.
func (s *Store) ApplyPriceUpdates(updates []models.PriceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched, missed := 0, 0
	changed := make(map[models.TokenCategory]bool)

	for _, u := range updates {
		category, idx, ok := s.locate(u.TokenID)
		if !ok {
			missed++
			continue
		}
		// Copy on first write so earlier snapshots stay untouched
		if !changed[category] {
			s.setCollection(category, append([]models.Token(nil), s.collection(category)...))
			changed[category] = true
		}
		coll := s.collection(category)
		coll[idx] = u.Apply(coll[idx])
		s.history.Record(u.TokenID, models.PricePoint{Timestamp: u.Timestamp, Price: u.Price})
		matched++
	}

	s.stampUpdated()
	s.metrics.ObserveApplied(matched, missed)
}

// -----------------------------------------------------------------------------
// Status
// -----------------------------------------------------------------------------

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range models.Categories {
		s.state.Loading[c] = loading
	}
}

func (s *Store) SetCategoryLoading(category models.TokenCategory, loading bool) {
	if !category.IsValid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading[category] = loading
}

// SetError records message (nil clears it) and forces every loading flag off
func (s *Store) SetError(message *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message != nil {
		m := *message
		s.state.Error = &m
	} else {
		s.state.Error = nil
	}
	for _, c := range models.Categories {
		s.state.Loading[c] = false
	}
}

// SetConnectionStatus records status and stamps lastConnectionTime on connect
func (s *Store) SetConnectionStatus(status models.ConnectionStatus) {
	if !status.IsValid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ConnectionStatus = status
	if status == models.StatusConnected {
		now := s.clock.Now()
		s.state.LastConnectionTime = &now
	}
}

// -----------------------------------------------------------------------------
// Presentation State
// -----------------------------------------------------------------------------

func (s *Store) SetSortConfig(category models.TokenCategory, sortBy models.SortOption, sortOrder models.SortOrder) {
	if !category.IsValid() || !sortBy.IsValid() || !sortOrder.IsValid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SortConfig[category] = models.SortConfig{SortBy: sortBy, SortOrder: sortOrder}
}

func (s *Store) SetActivePreset(category models.TokenCategory, preset models.Preset) {
	if !category.IsValid() || !preset.IsValid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ActivePreset[category] = preset
}

// SetSelectedToken focuses token; nil clears the selection
func (s *Store) SetSelectedToken(token *models.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == nil {
		s.state.SelectedToken = nil
		return
	}
	t := *token
	s.state.SelectedToken = &t
}

// -----------------------------------------------------------------------------

// Reset restores every field to its initial value
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = initialState()
	for _, c := range models.Categories {
		s.revisions[c]++
		s.metrics.SetTokenCount(string(c), 0)
	}
	s.history.Cleanup()
}

// -----------------------------------------------------------------------------
// Internal helpers (caller holds s.mu)
// -----------------------------------------------------------------------------

func (s *Store) collection(c models.TokenCategory) []models.Token {
	return s.state.Collection(c)
}

func (s *Store) setCollection(c models.TokenCategory, tokens []models.Token) {
	switch c {
	case models.CategoryNewPairs:
		s.state.NewPairs = tokens
	case models.CategoryFinalStretch:
		s.state.FinalStretch = tokens
	case models.CategoryMigrated:
		s.state.Migrated = tokens
	default:
		return
	}
	s.revisions[c]++
	s.metrics.SetTokenCount(string(c), len(tokens))
}

// locate finds the first category holding tokenID, in models.Categories order
func (s *Store) locate(tokenID string) (models.TokenCategory, int, bool) {
	for _, c := range models.Categories {
		for i, t := range s.collection(c) {
			if t.ID == tokenID {
				return c, i, true
			}
		}
	}
	return "", 0, false
}

func (s *Store) stampUpdated() {
	now := s.clock.Now()
	s.state.LastUpdated = &now
}

// -----------------------------------------------------------------------------

func timePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
