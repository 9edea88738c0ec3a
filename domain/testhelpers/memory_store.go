package testhelpers

import (
	"context"
	"sort"
	"sync"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"
	"prizepool/domain/ledger"
)

// MemoryStore implements every repository in process memory. Values are copied
// on the way in and out so callers never share state with the store.
type MemoryStore struct {
	mu        sync.Mutex
	config    *entities.PoolConfig
	pool      *entities.SupplyPool
	window    *entities.LotteryWindow
	accounts  map[string]*entities.UserAccount
	wins      []*entities.WinRecord
	keys      map[string][]byte
	nextWinID int64
	slots     *ledger.MemorySlotStore
}

// NewMemoryStore returns an empty, uninitialized store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*entities.UserAccount),
		keys:     make(map[string][]byte),
		slots:    ledger.NewMemorySlotStore(),
	}
}

func (m *MemoryStore) PoolConfigRepository() interfaces.PoolConfigRepository {
	return memoryConfigRepo{m}
}

func (m *MemoryStore) SupplyPoolRepository() interfaces.SupplyPoolRepository {
	return memoryPoolRepo{m}
}

func (m *MemoryStore) LotteryWindowRepository() interfaces.LotteryWindowRepository {
	return memoryWindowRepo{m}
}

func (m *MemoryStore) UserAccountRepository() interfaces.UserAccountRepository {
	return memoryAccountRepo{m}
}

func (m *MemoryStore) WinRecordRepository() interfaces.WinRecordRepository {
	return memoryWinRepo{m}
}

func (m *MemoryStore) ViewingKeyRepository() interfaces.ViewingKeyRepository {
	return memoryKeyRepo{m}
}

func (m *MemoryStore) StakeSlotRepository() interfaces.StakeSlotRepository {
	return m.slots
}

// Accounts returns copies of every stored account, sorted by address.
func (m *MemoryStore) Accounts() []*entities.UserAccount {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entities.UserAccount, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, copyAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// MemorySnapshot is a full copy of a MemoryStore.
type MemorySnapshot struct {
	config    *entities.PoolConfig
	pool      *entities.SupplyPool
	window    *entities.LotteryWindow
	accounts  map[string]*entities.UserAccount
	wins      []*entities.WinRecord
	keys      map[string][]byte
	nextWinID int64
	slots     []ledger.Slot
}

// Snapshot copies the store so a failed call can be rolled back.
func (m *MemoryStore) Snapshot() *MemorySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := &MemorySnapshot{
		config:    copyConfig(m.config),
		pool:      copyPool(m.pool),
		window:    copyWindow(m.window),
		accounts:  make(map[string]*entities.UserAccount, len(m.accounts)),
		wins:      make([]*entities.WinRecord, len(m.wins)),
		keys:      make(map[string][]byte, len(m.keys)),
		nextWinID: m.nextWinID,
		slots:     m.slots.Snapshot(),
	}
	for k, v := range m.accounts {
		snap.accounts[k] = copyAccount(v)
	}
	for i, w := range m.wins {
		c := *w
		snap.wins[i] = &c
	}
	for k, v := range m.keys {
		snap.keys[k] = append([]byte(nil), v...)
	}
	return snap
}

// Restore replaces the store's contents with snap.
func (m *MemoryStore) Restore(snap *MemorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = snap.config
	m.pool = snap.pool
	m.window = snap.window
	m.accounts = snap.accounts
	m.wins = snap.wins
	m.keys = snap.keys
	m.nextWinID = snap.nextWinID
	m.slots.Restore(snap.slots)
}

func copyConfig(c *entities.PoolConfig) *entities.PoolConfig {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

func copyPool(p *entities.SupplyPool) *entities.SupplyPool {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

func copyWindow(w *entities.LotteryWindow) *entities.LotteryWindow {
	if w == nil {
		return nil
	}
	out := *w
	return &out
}

func copyAccount(a *entities.UserAccount) *entities.UserAccount {
	if a == nil {
		return nil
	}
	out := *a
	out.Entries = append([]entities.SlotRef(nil), a.Entries...)
	return &out
}

type memoryConfigRepo struct{ m *MemoryStore }

func (r memoryConfigRepo) Get(context.Context) (*entities.PoolConfig, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return copyConfig(r.m.config), nil
}

func (r memoryConfigRepo) Save(_ context.Context, cfg *entities.PoolConfig) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.config = copyConfig(cfg)
	return nil
}

type memoryPoolRepo struct{ m *MemoryStore }

func (r memoryPoolRepo) Get(context.Context) (*entities.SupplyPool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return copyPool(r.m.pool), nil
}

func (r memoryPoolRepo) Save(_ context.Context, pool *entities.SupplyPool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.pool = copyPool(pool)
	return nil
}

type memoryWindowRepo struct{ m *MemoryStore }

func (r memoryWindowRepo) Get(context.Context) (*entities.LotteryWindow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return copyWindow(r.m.window), nil
}

func (r memoryWindowRepo) Save(_ context.Context, window *entities.LotteryWindow) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.window = copyWindow(window)
	return nil
}

type memoryAccountRepo struct{ m *MemoryStore }

func (r memoryAccountRepo) GetByAddress(_ context.Context, address string) (*entities.UserAccount, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return copyAccount(r.m.accounts[address]), nil
}

func (r memoryAccountRepo) Save(_ context.Context, account *entities.UserAccount) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.accounts[account.Address] = copyAccount(account)
	return nil
}

type memoryWinRepo struct{ m *MemoryStore }

func (r memoryWinRepo) Create(_ context.Context, record *entities.WinRecord) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextWinID++
	record.ID = r.m.nextWinID
	c := *record
	r.m.wins = append(r.m.wins, &c)
	return nil
}

func (r memoryWinRepo) filter(winner string) []*entities.WinRecord {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entities.WinRecord
	for _, w := range r.m.wins {
		if winner == "" || w.Winner == winner {
			c := *w
			out = append(out, &c)
		}
	}
	return out
}

func recent(records []*entities.WinRecord, limit int) []*entities.WinRecord {
	out := make([]*entities.WinRecord, 0, limit)
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out
}

func (r memoryWinRepo) GetRecent(_ context.Context, limit int) ([]*entities.WinRecord, error) {
	return recent(r.filter(""), limit), nil
}

func (r memoryWinRepo) GetAll(context.Context) ([]*entities.WinRecord, error) {
	return r.filter(""), nil
}

func (r memoryWinRepo) GetRecentByWinner(_ context.Context, winner string, limit int) ([]*entities.WinRecord, error) {
	if winner == "" {
		return nil, nil
	}
	return recent(r.filter(winner), limit), nil
}

func (r memoryWinRepo) GetAllByWinner(_ context.Context, winner string) ([]*entities.WinRecord, error) {
	if winner == "" {
		return nil, nil
	}
	return r.filter(winner), nil
}

type memoryKeyRepo struct{ m *MemoryStore }

func (r memoryKeyRepo) GetHash(_ context.Context, address string) ([]byte, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	hash, ok := r.m.keys[address]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), hash...), nil
}

func (r memoryKeyRepo) SetHash(_ context.Context, address string, hash []byte) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.keys[address] = append([]byte(nil), hash...)
	return nil
}
