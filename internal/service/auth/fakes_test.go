package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/machwork/identity/internal/domain/repository"
)

// Fakes en memoria para los repositorios. Mantienen la misma semántica
// de un solo uso que el almacén real.

type fakeUsers struct {
	mu    sync.Mutex
	seq   int
	users map[string]*repository.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*repository.User{}}
}

func (f *fakeUsers) Create(_ context.Context, input repository.CreateUserInput) (*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == input.Email {
			return nil, repository.ErrConflict
		}
	}
	f.seq++
	u := &repository.User{
		ID:           fmt.Sprintf("user-%d", f.seq),
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SetEmailVerified(_ context.Context, userID string, at time.Time) error {
	return f.update(userID, func(u *repository.User) { u.EmailVerifiedAt = &at })
}

func (f *fakeUsers) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	return f.update(userID, func(u *repository.User) { u.PasswordHash = hash })
}

func (f *fakeUsers) SetMFASecret(_ context.Context, userID, secret string) error {
	return f.update(userID, func(u *repository.User) {
		u.MFASecret = &secret
		u.MFAEnabled = false
	})
}

func (f *fakeUsers) EnableMFA(_ context.Context, userID string) error {
	return f.update(userID, func(u *repository.User) { u.MFAEnabled = true })
}

func (f *fakeUsers) DisableMFA(_ context.Context, userID string) error {
	return f.update(userID, func(u *repository.User) {
		u.MFAEnabled = false
		u.MFASecret = nil
	})
}

func (f *fakeUsers) update(userID string, fn func(*repository.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

type fakeMemberships struct {
	mu      sync.Mutex
	primary map[string]*repository.CompanyMembership
}

func newFakeMemberships() *fakeMemberships {
	return &fakeMemberships{primary: map[string]*repository.CompanyMembership{}}
}

func (f *fakeMemberships) GetPrimary(_ context.Context, userID string) (*repository.CompanyMembership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.primary[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMemberships) Exists(_ context.Context, companyID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.primary[userID]
	return ok && m.CompanyID == companyID, nil
}

func (f *fakeMemberships) ListByCompany(_ context.Context, companyID string) ([]repository.CompanyMembership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.CompanyMembership
	for _, m := range f.primary {
		if m.CompanyID == companyID {
			out = append(out, *m)
		}
	}
	return out, nil
}

type fakeActionTokens struct {
	mu     sync.Mutex
	seq    int
	tokens []*repository.ActionToken
}

func newFakeActionTokens() *fakeActionTokens { return &fakeActionTokens{} }

func (f *fakeActionTokens) Create(_ context.Context, input repository.CreateActionTokenInput) (*repository.ActionToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &repository.ActionToken{
		ID:        fmt.Sprintf("at-%d", f.seq),
		UserID:    input.UserID,
		Purpose:   input.Purpose,
		TokenHash: input.TokenHash,
		ExpiresAt: input.ExpiresAt,
		CreatedAt: time.Now(),
	}
	f.tokens = append(f.tokens, t)
	cp := *t
	return &cp, nil
}

func (f *fakeActionTokens) Consume(_ context.Context, purpose repository.ActionTokenPurpose, tokenHash string, at time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.Purpose != purpose || t.TokenHash != tokenHash {
			continue
		}
		if t.UsedAt != nil || !t.ExpiresAt.After(at) {
			return "", repository.ErrTokenExpired
		}
		t.UsedAt = &at
		return t.UserID, nil
	}
	return "", repository.ErrNotFound
}

func (f *fakeActionTokens) DeleteExpired(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	kept := f.tokens[:0]
	removed := 0
	for _, t := range f.tokens {
		if t.UsedAt != nil || t.ExpiresAt.Before(now) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	f.tokens = kept
	return removed, nil
}

type fakeRefreshTokens struct {
	mu     sync.Mutex
	seq    int
	byHash map[string]*repository.RefreshToken
}

func newFakeRefreshTokens() *fakeRefreshTokens {
	return &fakeRefreshTokens{byHash: map[string]*repository.RefreshToken{}}
}

func (f *fakeRefreshTokens) Create(_ context.Context, input repository.CreateRefreshTokenInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(input), nil
}

func (f *fakeRefreshTokens) insert(input repository.CreateRefreshTokenInput) string {
	f.seq++
	rt := &repository.RefreshToken{
		ID:        fmt.Sprintf("rt-%d", f.seq),
		UserID:    input.UserID,
		JTI:       input.JTI,
		TokenHash: input.TokenHash,
		IssuedAt:  time.Now(),
		ExpiresAt: input.ExpiresAt,
	}
	f.byHash[input.TokenHash] = rt
	return rt.ID
}

func (f *fakeRefreshTokens) Rotate(_ context.Context, oldHash string, next repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.byHash[oldHash]
	if !ok || old.RevokedAt != nil || !old.ExpiresAt.After(time.Now()) {
		return nil, repository.ErrNotFound
	}
	now := time.Now()
	old.RevokedAt = &now
	newID := f.insert(next)
	old.ReplacedBy = &newID
	cp := *old
	return &cp, nil
}

func (f *fakeRefreshTokens) RevokeAllForUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	n := 0
	for _, rt := range f.byHash {
		if rt.UserID == userID && rt.RevokedAt == nil {
			rt.RevokedAt = &now
			n++
		}
	}
	return n, nil
}

type fakeBackupCodes struct {
	mu    sync.Mutex
	codes map[string]map[string]bool // userID -> hash -> used
}

func newFakeBackupCodes() *fakeBackupCodes {
	return &fakeBackupCodes{codes: map[string]map[string]bool{}}
}

func (f *fakeBackupCodes) Replace(_ context.Context, userID string, hashes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pool := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		pool[h] = false
	}
	f.codes[userID] = pool
	return nil
}

func (f *fakeBackupCodes) Use(_ context.Context, userID, codeHash string, _ time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pool, ok := f.codes[userID]
	if !ok {
		return false, nil
	}
	used, ok := pool[codeHash]
	if !ok || used {
		return false, nil
	}
	pool[codeHash] = true
	return true, nil
}

func (f *fakeBackupCodes) DeleteAll(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, userID)
	return nil
}

// fakeAtomic ejecuta fn directo y cuenta cuántas veces lo invocaron.
type fakeAtomic struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeAtomic) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeAtomic) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
