package store

import (
	"token-pulse/src/models"
)

// -----------------------------------------------------------------------------
// Read Side
// -----------------------------------------------------------------------------

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() models.TokensState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	out := models.TokensState{
		NewPairs:           cloneTokens(st.NewPairs),
		FinalStretch:       cloneTokens(st.FinalStretch),
		Migrated:           cloneTokens(st.Migrated),
		Loading:            make(map[models.TokenCategory]bool, len(st.Loading)),
		ConnectionStatus:   st.ConnectionStatus,
		SortConfig:         make(map[models.TokenCategory]models.SortConfig, len(st.SortConfig)),
		ActivePreset:       make(map[models.TokenCategory]models.Preset, len(st.ActivePreset)),
		LastUpdated:        timePtr(st.LastUpdated),
		LastConnectionTime: timePtr(st.LastConnectionTime),
	}
	for k, v := range st.Loading {
		out.Loading[k] = v
	}
	for k, v := range st.SortConfig {
		out.SortConfig[k] = v
	}
	for k, v := range st.ActivePreset {
		out.ActivePreset[k] = v
	}
	if st.Error != nil {
		e := *st.Error
		out.Error = &e
	}
	if st.SelectedToken != nil {
		t := *st.SelectedToken
		out.SelectedToken = &t
	}
	return out
}

// -----------------------------------------------------------------------------

// Tokens returns a copy of one category's collection
func (s *Store) Tokens(category models.TokenCategory) []models.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTokens(s.collection(category))
}

// TokensWithRevision returns the collection together with its revision
func (s *Store) TokensWithRevision(category models.TokenCategory) ([]models.Token, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTokens(s.collection(category)), s.revisions[category]
}

// AllTokens returns every token in category order
func (s *Store) AllTokens() []models.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []models.Token
	for _, c := range models.Categories {
		all = append(all, s.collection(c)...)
	}
	return all
}

// FindToken looks a token up by id, in fixed category order
func (s *Store) FindToken(tokenID string) (models.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, idx, ok := s.locate(tokenID)
	if !ok {
		return models.Token{}, false
	}
	return s.collection(c)[idx], true
}

// -----------------------------------------------------------------------------

func (s *Store) Revision(category models.TokenCategory) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revisions[category]
}

func (s *Store) SortConfig(category models.TokenCategory) (models.SortConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.state.SortConfig[category]
	return cfg, ok
}

func (s *Store) ActivePreset(category models.TokenCategory) models.Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ActivePreset[category]
}

func (s *Store) Loading(category models.TokenCategory) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading[category]
}

func (s *Store) ConnectionStatus() models.ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ConnectionStatus
}

// LastUpdated returns the last collection change in unix ms, 0 if none
func (s *Store) LastUpdated() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.LastUpdated == nil {
		return 0
	}
	return s.state.LastUpdated.UnixMilli()
}

// -----------------------------------------------------------------------------

// History returns the recorded price points of a token
func (s *Store) History(tokenID string) ([]models.PricePoint, bool) {
	return s.history.History(tokenID)
}

// -----------------------------------------------------------------------------

func cloneTokens(tokens []models.Token) []models.Token {
	out := make([]models.Token, len(tokens))
	copy(out, tokens)
	return out
}
