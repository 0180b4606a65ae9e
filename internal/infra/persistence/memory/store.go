// Package memory is an in-process implementation of the repository layer.
// It backs local development and the service-level scenario tests with the
// same atomicity guarantees the PostgreSQL implementation gives.
package memory

import (
	"maps"
	"sync"

	"jobconnect/internal/domain/entity"
	"jobconnect/internal/domain/repository"
	"jobconnect/internal/errors"
)

// Store owns every table. Writes made outside a transaction and whole
// transactions are serialized by txMu; mu guards the maps themselves.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data tables
}

type tables struct {
	applicants  map[int64]*entity.Account
	employers   map[int64]*entity.Account
	emails      map[string]entity.Role
	tokens      map[int64]*entity.PasswordResetToken
	tokenByHash map[string]int64

	nextApplicantID int64
	nextEmployerID  int64
	nextTokenID     int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		data: tables{
			applicants:  make(map[int64]*entity.Account),
			employers:   make(map[int64]*entity.Account),
			emails:      make(map[string]entity.Role),
			tokens:      make(map[int64]*entity.PasswordResetToken),
			tokenByHash: make(map[string]int64),
		},
	}
}

func (s *Store) read(fn func(t *tables) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&s.data)
}

// write runs fn under the write lock. Outside a transaction it also takes
// txMu so it cannot interleave with a transaction that may later roll back.
func (s *Store) write(inTx bool, fn func(t *tables) error) error {
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(&s.data)
}

func (s *Store) snapshot() tables {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.clone()
}

func (s *Store) restore(t tables) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = t
}

func (t *tables) clone() tables {
	out := tables{
		applicants:      make(map[int64]*entity.Account, len(t.applicants)),
		employers:       make(map[int64]*entity.Account, len(t.employers)),
		emails:          maps.Clone(t.emails),
		tokens:          make(map[int64]*entity.PasswordResetToken, len(t.tokens)),
		tokenByHash:     maps.Clone(t.tokenByHash),
		nextApplicantID: t.nextApplicantID,
		nextEmployerID:  t.nextEmployerID,
		nextTokenID:     t.nextTokenID,
	}
	for id, a := range t.applicants {
		out.applicants[id] = cloneAccount(a)
	}
	for id, a := range t.employers {
		out.employers[id] = cloneAccount(a)
	}
	for id, tok := range t.tokens {
		out.tokens[id] = cloneToken(tok)
	}

	return out
}

func (t *tables) accounts(role entity.Role) (map[int64]*entity.Account, bool) {
	switch role {
	case entity.RoleApplicant:
		return t.applicants, true
	case entity.RoleEmployer:
		return t.employers, true
	default:
		return nil, false
	}
}

// account returns the stored row itself; callers must clone before mutating.
func (t *tables) account(role entity.Role, id int64) (*entity.Account, error) {
	table, ok := t.accounts(role)
	if !ok {
		return nil, errors.Wrapf(entity.ErrUnknownRole, "account lookup: %q", role)
	}
	current, ok := table[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return current, nil
}

func (t *tables) put(a *entity.Account) {
	table, _ := t.accounts(a.Role)
	table[a.ID] = a
}

func cloneAccount(a *entity.Account) *entity.Account {
	if a == nil {
		return nil
	}

	out := *a
	if a.Applicant != nil {
		p := *a.Applicant
		out.Applicant = &p
	}
	if a.Employer != nil {
		p := *a.Employer
		out.Employer = &p
	}

	return &out
}

func cloneToken(t *entity.PasswordResetToken) *entity.PasswordResetToken {
	if t == nil {
		return nil
	}

	out := *t
	if t.ApplicantID != nil {
		id := *t.ApplicantID
		out.ApplicantID = &id
	}
	if t.EmployerID != nil {
		id := *t.EmployerID
		out.EmployerID = &id
	}

	return &out
}
