package progress

import "sync"

// StateStore 线程安全的状态仓：流水线写，渲染循环读
type StateStore struct {
	mu    sync.Mutex
	state State
}

// NewStateStore 创建状态仓
func NewStateStore() *StateStore {
	return &StateStore{state: DefaultState()}
}

// Set 写入新状态
func (s *StateStore) Set(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// Get 读取当前状态快照
func (s *StateStore) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
