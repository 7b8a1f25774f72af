package world

import (
	"sort"
	"sync"
)

// State holds the authoritative inventories of every online player and every
// open chest. The maps are guarded by mu; each entry carries its own lock for
// the validate-then-commit window.
type State struct {
	mu      sync.RWMutex
	players map[string]*PlayerInventory
	chests  map[ChestKey]*Chest
}

func NewState() *State {
	return &State{
		players: make(map[string]*PlayerInventory),
		chests:  make(map[ChestKey]*Chest),
	}
}

// AddPlayer installs a player's inventory and returns the entry now
// registered. A player already online keeps the existing entry.
func (s *State) AddPlayer(p *PlayerInventory) *PlayerInventory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.players[p.Name]; ok {
		return existing
	}
	s.players[p.Name] = p
	return p
}

// RemovePlayer drops a player and returns the removed inventory.
func (s *State) RemovePlayer(name string) *PlayerInventory {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.players[name]
	delete(s.players, name)
	return p
}

// GetPlayer returns the inventory of an online player, or nil.
func (s *State) GetPlayer(name string) *PlayerInventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.players[name]
}

func (s *State) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// AllPlayers calls fn for every online player in name order. fn must not
// call back into State methods that take the write lock.
func (s *State) AllPlayers(fn func(*PlayerInventory)) {
	s.mu.RLock()
	list := make([]*PlayerInventory, 0, len(s.players))
	for _, p := range s.players {
		list = append(list, p)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	for _, p := range list {
		fn(p)
	}
}

// AddChest installs a chest, returning the existing one if it was already open.
func (s *State) AddChest(c *Chest) *Chest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.chests[c.Key]; ok {
		return existing
	}
	s.chests[c.Key] = c
	return c
}

// GetChest returns an open chest, or nil.
func (s *State) GetChest(key ChestKey) *Chest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chests[key]
}

// RemoveChest drops a chest (broken or unloaded) and returns it.
func (s *State) RemoveChest(key ChestKey) *Chest {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.chests[key]
	delete(s.chests, key)
	return c
}

func (s *State) ChestCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chests)
}
