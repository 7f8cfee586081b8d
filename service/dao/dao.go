// Package dao provides data access objects for the BarScript run service:
// accounts, saved scripts, and the recorded results of feeding bar data
// through a compiled script.
package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
)

// Store holds all the repositories making up a run service's persistence
// layer.
type Store interface {
	Users() UserRepository
	Scripts() ScriptRepository
	Runs() RunRepository
	Close() error
}

type Role int

const (
	Normal Role = iota
	Admin
)

func (r Role) String() string {
	if r == Admin {
		return "admin"
	}
	return "normal"
}

// User is an account that owns scripts and runs.
type User struct {
	ID             uuid.UUID
	Username       string
	Password       string // bcrypt hash, never the plaintext
	Role           Role
	Created        time.Time
	Modified       time.Time
	LastLoginTime  time.Time
	LastLogoutTime time.Time
}

type UserRepository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)
	Close() error
}

// Script is a saved BarScript source, owned by a user.
type Script struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Name     string
	Source   string
	Created  time.Time
	Modified time.Time
}

type ScriptRepository interface {
	Create(ctx context.Context, s Script) (Script, error)
	GetByID(ctx context.Context, id uuid.UUID) (Script, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]Script, error)
	Update(ctx context.Context, id uuid.UUID, s Script) (Script, error)
	Delete(ctx context.Context, id uuid.UUID) (Script, error)
	Close() error
}

// TradeRecord is a persisted view of a closed strategy trade, decoupled from
// the runtime package so dao has no dependency on the engine.
type TradeRecord struct {
	EntryTime  int64
	EntryPrice float64
	ExitTime   int64
	ExitPrice  float64
	Quantity   float64
	PnL        float64
	Direction  string // "long" or "short"
}

// Run is one execution of a Script over a bar feed: its plotted series and
// any trades the strategy took, or the compile/fatal error that stopped it.
type Run struct {
	ID         uuid.UUID
	ScriptID   uuid.UUID
	UserID     uuid.UUID
	Created    time.Time
	Completed  bool
	BarCount   int
	FatalError string
	Plots      map[string][]float64
	Trades     []TradeRecord
}

type RunRepository interface {
	Create(ctx context.Context, r Run) (Run, error)
	GetByID(ctx context.Context, id uuid.UUID) (Run, error)
	GetAllByScript(ctx context.Context, scriptID uuid.UUID) ([]Run, error)
	Update(ctx context.Context, id uuid.UUID, r Run) (Run, error)
	Delete(ctx context.Context, id uuid.UUID) (Run, error)
	Close() error
}
