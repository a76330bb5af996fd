package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/roulettedraft/go/internal/models"
)

// MemoryRepository is an in-process Store. Transactions take the store lock for their whole
// duration and write to an overlay that is merged into the committed state only on success.
// The overlay copies a room's rows the first time the transaction writes them.
type MemoryRepository struct {
	mu    *sync.Mutex // nil on a transactional view; the enclosing InTx holds the lock
	state *memState
	base  *memState // committed state behind a transactional view
}

type memState struct {
	rooms        map[uuid.UUID]*models.Room
	participants map[uuid.UUID][]*models.Participant // join order
	picks        map[uuid.UUID][]models.DraftPick
	outbox       []models.OutboxEvent   // unsent only; sent rows are dropped
	sent         map[uuid.UUID]struct{} // committed rows a transaction marked sent
}

var _ Store = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{mu: &sync.Mutex{}, state: newMemState()}
}

func newMemState() *memState {
	return &memState{
		rooms:        make(map[uuid.UUID]*models.Room),
		participants: make(map[uuid.UUID][]*models.Participant),
		picks:        make(map[uuid.UUID][]models.DraftPick),
		sent:         make(map[uuid.UUID]struct{}),
	}
}

// merge applies a committed transaction overlay.
func (s *memState) merge(tx *memState) {
	maps.Copy(s.rooms, tx.rooms)
	maps.Copy(s.participants, tx.participants)
	maps.Copy(s.picks, tx.picks)
	if len(tx.sent) > 0 {
		s.outbox = slices.DeleteFunc(s.outbox, func(e models.OutboxEvent) bool {
			_, ok := tx.sent[e.ID]
			return ok
		})
	}
	s.outbox = append(s.outbox, tx.outbox...)
}

func (r *MemoryRepository) lock() func() {
	if r.mu == nil {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *MemoryRepository) InTx(ctx context.Context, fn func(tx Store) error) error {
	if r.mu == nil {
		return fn(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	view := &MemoryRepository{state: newMemState(), base: r.state}
	if err := fn(view); err != nil {
		return err
	}
	r.state.merge(view.state)
	return nil
}

// room returns the stored room. With forWrite a transactional view copies it into its overlay
// first, so the returned pointer may be mutated.
func (r *MemoryRepository) room(id uuid.UUID, forWrite bool) (*models.Room, bool) {
	if room, ok := r.state.rooms[id]; ok {
		return room, true
	}
	if r.base == nil {
		return nil, false
	}
	room, ok := r.base.rooms[id]
	if ok && forWrite {
		room = room.Clone()
		r.state.rooms[id] = room
	}
	return room, ok
}

func (r *MemoryRepository) participants(roomID uuid.UUID, forWrite bool) []*models.Participant {
	if ps, ok := r.state.participants[roomID]; ok || r.base == nil {
		return ps
	}
	ps := r.base.participants[roomID]
	if !forWrite {
		return ps
	}
	cloned := make([]*models.Participant, len(ps))
	for i, p := range ps {
		cloned[i] = p.Clone()
	}
	r.state.participants[roomID] = cloned
	return cloned
}

func (r *MemoryRepository) picks(roomID uuid.UUID) []models.DraftPick {
	if picks, ok := r.state.picks[roomID]; ok || r.base == nil {
		return picks
	}
	return r.base.picks[roomID]
}

func (r *MemoryRepository) CreateRoom(_ context.Context, room *models.Room) error {
	defer r.lock()()
	if _, ok := r.room(room.ID, false); ok {
		return fmt.Errorf("failed to create room: room %s already exists", room.ID)
	}
	now := time.Now().UTC()
	room.CreatedAt, room.UpdatedAt = now, now
	if room.PickOrder == nil {
		room.PickOrder = []string{}
	}
	r.state.rooms[room.ID] = room.Clone()
	return nil
}

func (r *MemoryRepository) GetRoom(_ context.Context, id uuid.UUID) (*models.Room, error) {
	defer r.lock()()
	room, ok := r.room(id, false)
	if !ok {
		return nil, fmt.Errorf("failed to get room: %w", ErrNotFound)
	}
	return room.Clone(), nil
}

func (r *MemoryRepository) LockRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return r.GetRoom(ctx, id)
}

func (r *MemoryRepository) SaveRoom(_ context.Context, room *models.Room) error {
	defer r.lock()()
	current, ok := r.room(room.ID, false)
	if !ok {
		return fmt.Errorf("failed to save room: %w", ErrNotFound)
	}
	room.CreatedAt = current.CreatedAt
	room.UpdatedAt = time.Now().UTC()
	r.state.rooms[room.ID] = room.Clone()
	return nil
}

func (r *MemoryRepository) ConditionalAdvancePick(_ context.Context, roomID uuid.UUID, expectedIndex, expectedVersion int) (*models.Room, error) {
	defer r.lock()()
	room, ok := r.room(roomID, false)
	if !ok || room.Status != models.RoomStatusDrafting ||
		room.CurrentPickIndex != expectedIndex || room.Version != expectedVersion {
		return nil, ErrConditionNotMet
	}
	room, _ = r.room(roomID, true)
	room.CurrentPickIndex++
	room.Version++
	room.UpdatedAt = time.Now().UTC()
	return room.Clone(), nil
}

func (r *MemoryRepository) CompleteRoom(_ context.Context, roomID uuid.UUID) (*models.Room, error) {
	defer r.lock()()
	room, ok := r.room(roomID, false)
	if !ok || room.Status != models.RoomStatusDrafting {
		return nil, ErrConditionNotMet
	}
	room, _ = r.room(roomID, true)
	room.Status = models.RoomStatusDone
	room.UpdatedAt = time.Now().UTC()
	return room.Clone(), nil
}

func (r *MemoryRepository) FindRoomsWithStatus(_ context.Context, ids []uuid.UUID, status models.RoomStatus) ([]models.Room, error) {
	defer r.lock()()
	var rooms []models.Room
	for _, id := range ids {
		if room, ok := r.room(id, false); ok && room.Status == status {
			rooms = append(rooms, *room.Clone())
		}
	}
	return rooms, nil
}

func (r *MemoryRepository) GetParticipants(_ context.Context, roomID uuid.UUID) ([]models.Participant, error) {
	defer r.lock()()
	ps := r.participants(roomID, false)
	out := make([]models.Participant, len(ps))
	for i, p := range ps {
		out[i] = *p.Clone()
	}
	return out, nil
}

func (r *MemoryRepository) findParticipant(roomID uuid.UUID, userID string, forWrite bool) *models.Participant {
	for _, p := range r.participants(roomID, forWrite) {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (r *MemoryRepository) GetParticipant(_ context.Context, roomID uuid.UUID, userID string) (*models.Participant, error) {
	defer r.lock()()
	p := r.findParticipant(roomID, userID, false)
	if p == nil {
		return nil, fmt.Errorf("failed to get participant: %w", ErrNotFound)
	}
	return p.Clone(), nil
}

func (r *MemoryRepository) AddParticipant(_ context.Context, p *models.Participant) error {
	defer r.lock()()
	if _, ok := r.room(p.RoomID, false); !ok {
		return fmt.Errorf("failed to add participant: room %s: %w", p.RoomID, ErrNotFound)
	}
	if r.findParticipant(p.RoomID, p.UserID, false) != nil {
		return ErrDuplicateParticipant
	}
	p.CreatedAt = time.Now().UTC()
	if p.SelectedPlayerIDs == nil {
		p.SelectedPlayerIDs = []string{}
	}
	if p.SelectedTeams == nil {
		p.SelectedTeams = []string{}
	}
	ps := r.participants(p.RoomID, true)
	r.state.participants[p.RoomID] = append(ps, p.Clone())
	return nil
}

func (r *MemoryRepository) AppendSelectedPlayer(_ context.Context, roomID uuid.UUID, userID string, playerID string) (*models.Participant, error) {
	defer r.lock()()
	p := r.findParticipant(roomID, userID, true)
	if p == nil {
		return nil, fmt.Errorf("failed to append selected player: %w", ErrNotFound)
	}
	if len(p.SelectedPlayerIDs) >= p.RosterSizeLimit {
		return nil, fmt.Errorf("failed to append selected player: roster of %s is full", userID)
	}
	p.SelectedPlayerIDs = append(p.SelectedPlayerIDs, playerID)
	return p.Clone(), nil
}

func (r *MemoryRepository) UpdateSelectedTeams(_ context.Context, roomID uuid.UUID, userID string, teams []string) (*models.Participant, error) {
	defer r.lock()()
	p := r.findParticipant(roomID, userID, true)
	if p == nil {
		return nil, fmt.Errorf("failed to update selected teams: %w", ErrNotFound)
	}
	p.SelectedTeams = append([]string{}, teams...)
	return p.Clone(), nil
}

func (r *MemoryRepository) PickExists(_ context.Context, roomID uuid.UUID, playerID string) (bool, error) {
	defer r.lock()()
	for _, pick := range r.picks(roomID) {
		if pick.PlayerID == playerID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) CountPicks(_ context.Context, roomID uuid.UUID) (int, error) {
	defer r.lock()()
	return len(r.picks(roomID)), nil
}

func (r *MemoryRepository) InsertPick(_ context.Context, pick *models.DraftPick) error {
	defer r.lock()()
	picks := r.picks(pick.RoomID)
	for _, existing := range picks {
		if existing.PlayerID == pick.PlayerID {
			return ErrDuplicatePick
		}
		if existing.PickNo == pick.PickNo {
			return fmt.Errorf("failed to insert pick: pick %d already recorded", pick.PickNo)
		}
	}
	pick.CreatedAt = time.Now().UTC()
	// Clip so a transaction never writes into the committed backing array.
	r.state.picks[pick.RoomID] = append(slices.Clip(picks), *pick)
	return nil
}

func (r *MemoryRepository) ListPicks(_ context.Context, roomID uuid.UUID) ([]models.DraftPick, error) {
	defer r.lock()()
	picks := slices.Clone(r.picks(roomID))
	sort.Slice(picks, func(i, j int) bool { return picks[i].PickNo < picks[j].PickNo })
	return picks, nil
}

func (r *MemoryRepository) InsertOutboxEvent(_ context.Context, event *models.OutboxEvent) error {
	defer r.lock()()
	event.CreatedAt = time.Now().UTC()
	r.state.outbox = append(r.state.outbox, *event)
	return nil
}

func (r *MemoryRepository) FetchUnsentOutbox(_ context.Context, limit int) ([]models.OutboxEvent, error) {
	defer r.lock()()
	var out []models.OutboxEvent
	if r.base != nil {
		for _, e := range r.base.outbox {
			if len(out) == limit {
				return out, nil
			}
			if _, sent := r.state.sent[e.ID]; !sent {
				out = append(out, e)
			}
		}
	}
	for _, e := range r.state.outbox {
		if len(out) == limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

// MarkOutboxSent drops the row; nothing reads sent rows back.
func (r *MemoryRepository) MarkOutboxSent(_ context.Context, id uuid.UUID) error {
	defer r.lock()()
	if i := slices.IndexFunc(r.state.outbox, func(e models.OutboxEvent) bool { return e.ID == id }); i >= 0 {
		r.state.outbox = slices.Delete(r.state.outbox, i, i+1)
		return nil
	}
	if r.base != nil {
		_, already := r.state.sent[id]
		if !already && slices.ContainsFunc(r.base.outbox, func(e models.OutboxEvent) bool { return e.ID == id }) {
			r.state.sent[id] = struct{}{}
			return nil
		}
	}
	return fmt.Errorf("failed to mark outbox event sent: %w", ErrNotFound)
}
