// Package board keeps the live boards of a server. Each board is one engine
// guarded by its own mutex; snapshots go through the store.
package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/sketchboard/internal/collab"
	"github.com/inamate/sketchboard/internal/document"
	"github.com/inamate/sketchboard/internal/engine"
	"github.com/inamate/sketchboard/internal/history"
	"github.com/inamate/sketchboard/internal/snapshot"
	"github.com/inamate/sketchboard/internal/store"
	"github.com/inamate/sketchboard/internal/typeid"
)

var ErrNotFound = errors.New("board not found")

// ChangeFunc is told about every history event on a board, together with the
// board's encoded state after the change.
type ChangeFunc func(boardID string, ev history.Event, snapshot []byte)

type Board struct {
	ID     string
	mu     sync.Mutex
	engine *engine.Engine
	dirty  bool
}

// Info describes a board to HTTP callers.
type Info struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
	Shapes  int    `json:"shapes"`
	CanUndo bool   `json:"canUndo"`
	CanRedo bool   `json:"canRedo"`
	Undo    string `json:"undo,omitempty"`
	Redo    string `json:"redo,omitempty"`
}

type Service struct {
	mu           sync.Mutex
	boards       map[string]*Board
	store        store.Store
	ids          document.IDSource
	historyLimit int
	logger       *slog.Logger
	onChange     ChangeFunc
}

type Option func(*Service)

func WithHistoryLimit(n int) Option {
	return func(s *Service) { s.historyLimit = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithIDSource overrides the shape id source. Tests use it for stable ids.
func WithIDSource(ids document.IDSource) Option {
	return func(s *Service) { s.ids = ids }
}

// OnChange registers fn to be told about board changes. It runs with the
// board locked and must not call back into the service for the same board.
func (s *Service) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		boards:       make(map[string]*Board),
		store:        st,
		ids:          typeid.ShapeIDs{},
		historyLimit: history.DefaultLimit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new board, seeded with the starter shapes when sample is
// set, and saves its first snapshot.
func (s *Service) Create(ctx context.Context, sample bool) (*Info, error) {
	id := typeid.NewBoardID()
	e := s.newEngine()
	if sample {
		if err := e.LoadSample(); err != nil {
			return nil, fmt.Errorf("load sample: %w", err)
		}
	}

	data, err := snapshot.Encode(e.ExportSnapshot())
	if err != nil {
		return nil, err
	}
	rec, err := s.store.Save(ctx, id, data)
	if err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	b := s.attach(id, e)
	s.logger.Info("board created", "board", id, "sample", sample)

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.info(rec.Version), nil
}

// Get returns the live board id, loading its latest snapshot on first use.
func (s *Service) Get(ctx context.Context, id string) (*Board, error) {
	s.mu.Lock()
	b, ok := s.boards[id]
	s.mu.Unlock()
	if ok {
		return b, nil
	}

	rec, err := s.store.Latest(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load board %s: %w", id, err)
	}
	shapes, err := snapshot.Decode(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("decode board %s: %w", id, err)
	}
	e := s.newEngine()
	if err := e.ImportSnapshot(shapes); err != nil {
		return nil, fmt.Errorf("import board %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have loaded it meanwhile.
	if b, ok := s.boards[id]; ok {
		return b, nil
	}
	b = &Board{ID: id, engine: e}
	s.subscribe(b)
	s.boards[id] = b
	s.logger.Info("board loaded", "board", id, "version", rec.Version)
	return b, nil
}

// Info summarizes board id.
func (s *Service) Info(ctx context.Context, id string) (*Info, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	version := 0
	if rec, err := s.store.Latest(ctx, id); err == nil {
		version = rec.Version
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.info(version), nil
}

// Apply runs op on board id. It satisfies collab.OpHandler.
func (s *Service) Apply(ctx context.Context, id, userID string, op collab.Operation) (json.RawMessage, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	result, err := apply(b.engine, op)
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("operation applied", "board", id, "user", userID, "op", op.Type)
	if result == nil {
		return nil, nil
	}
	return json.Marshal(result)
}

// Sync returns the encoded state of board id. It satisfies collab.OpHandler.
func (s *Service) Sync(ctx context.Context, id string) (json.RawMessage, error) {
	return s.Snapshot(ctx, id)
}

// Snapshot encodes the current state of board id.
func (s *Service) Snapshot(ctx context.Context, id string) ([]byte, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return snapshot.Encode(b.engine.ExportSnapshot())
}

// Import replaces board id with the shapes in data. History is cleared.
func (s *Service) Import(ctx context.Context, id string, data []byte) error {
	shapes, err := snapshot.Decode(data)
	if err != nil {
		return err
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.ImportSnapshot(shapes)
}

// DisplayList compiles the draw list of board id.
func (s *Service) DisplayList(ctx context.Context, id string) ([]engine.DrawCommand, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.DisplayList(), nil
}

// Save writes a new snapshot version of board id.
func (s *Service) Save(ctx context.Context, id string) (store.Record, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return store.Record{}, err
	}
	return s.save(ctx, b)
}

// SaveAll saves every board changed since its last save.
func (s *Service) SaveAll(ctx context.Context) error {
	s.mu.Lock()
	boards := make([]*Board, 0, len(s.boards))
	for _, b := range s.boards {
		boards = append(boards, b)
	}
	s.mu.Unlock()

	var errs []error
	for _, b := range boards {
		b.mu.Lock()
		dirty := b.dirty
		b.mu.Unlock()
		if !dirty {
			continue
		}
		if _, err := s.save(ctx, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Autosave calls SaveAll every interval until ctx is done.
func (s *Service) Autosave(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.SaveAll(ctx); err != nil {
				s.logger.Error("autosave", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) save(ctx context.Context, b *Board) (store.Record, error) {
	b.mu.Lock()
	data, err := snapshot.Encode(b.engine.ExportSnapshot())
	b.dirty = false
	b.mu.Unlock()
	if err != nil {
		return store.Record{}, err
	}

	rec, err := s.store.Save(ctx, b.ID, data)
	if err != nil {
		b.mu.Lock()
		b.dirty = true
		b.mu.Unlock()
		return store.Record{}, fmt.Errorf("save board %s: %w", b.ID, err)
	}
	s.logger.Info("board saved", "board", b.ID, "version", rec.Version)
	return rec, nil
}

func (s *Service) newEngine() *engine.Engine {
	return engine.New(document.NewFactory(s.ids),
		engine.WithHistoryLimit(s.historyLimit),
		engine.WithLogger(s.logger))
}

func (s *Service) attach(id string, e *engine.Engine) *Board {
	b := &Board{ID: id, engine: e}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribe(b)
	s.boards[id] = b
	return b
}

// subscribe marks b dirty on every change and forwards the change to the
// OnChange hook. Events fire inside engine calls, so b.mu is already held.
func (s *Service) subscribe(b *Board) {
	b.engine.Subscribe(func(ev history.Event) {
		b.dirty = true

		s.mu.Lock()
		fn := s.onChange
		s.mu.Unlock()
		if fn == nil {
			return
		}
		data, err := snapshot.Encode(b.engine.ExportSnapshot())
		if err != nil {
			s.logger.Error("encode change", "board", b.ID, "error", err)
			return
		}
		fn(b.ID, ev, data)
	})
}

func (b *Board) info(version int) *Info {
	undo, _ := b.engine.PeekUndo()
	redo, _ := b.engine.PeekRedo()
	return &Info{
		ID:      b.ID,
		Version: version,
		Shapes:  len(b.engine.Shapes()),
		CanUndo: b.engine.CanUndo(),
		CanRedo: b.engine.CanRedo(),
		Undo:    undo,
		Redo:    redo,
	}
}
