package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/internal/policy"
	"github.com/memberguard/block-registry/internal/session"
)

func TestAuthGuard_CheckLogin(t *testing.T) {
	f := newRegistryFixture()
	guard := NewAuthGuard(f.registry, f.sessions, time.Hour)
	ctx := context.Background()

	_, err := f.registry.Block(ctx, 1, 0, policy.UnitIndefinitely)
	require.NoError(t, err)
	_, err = f.registry.Block(ctx, 2, 2, policy.UnitHours)
	require.NoError(t, err)

	tests := []struct {
		name     string
		userID   int64
		wantKind models.BlockKind
		wantMsg  string
		wantCode string
	}{
		{name: "not blocked", userID: 3},
		{name: "indefinite", userID: 1, wantKind: models.BlockKindIndefinite, wantMsg: MessageBlocked, wantCode: CodeBlocked},
		{name: "temporary", userID: 2, wantKind: models.BlockKindTemporary, wantMsg: MessageTemporaryBlocked, wantCode: CodeBlockedTemporary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.CheckLogin(ctx, tt.userID)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}

			blocked, ok := IsBlockedError(err)
			require.True(t, ok, "expected BlockedError, got %v", err)
			assert.Equal(t, tt.userID, blocked.UserID)
			assert.Equal(t, tt.wantKind, blocked.Kind)
			assert.Equal(t, tt.wantMsg, blocked.Error())
			assert.Equal(t, tt.wantCode, blocked.Code())
		})
	}
}

func TestAuthGuard_CheckLogin_ExpiredBlock(t *testing.T) {
	f := newRegistryFixture()
	guard := NewAuthGuard(f.registry, f.sessions, time.Hour)
	ctx := context.Background()

	_, err := f.registry.Block(ctx, 5, 10, policy.UnitMinutes)
	require.NoError(t, err)

	f.clock.Advance(11 * time.Minute)
	assert.NoError(t, guard.CheckLogin(ctx, 5))
}

func TestAuthGuard_CheckLogin_StoreFailure(t *testing.T) {
	f := newRegistryFixture()
	f.repo.failGet = true
	guard := NewAuthGuard(f.registry, f.sessions, time.Hour)

	err := guard.CheckLogin(context.Background(), 1)
	assert.ErrorIs(t, err, errBackend)
	_, blocked := IsBlockedError(err)
	assert.False(t, blocked)
}

func TestAuthGuard_CheckSession(t *testing.T) {
	f := newRegistryFixture()
	guard := NewAuthGuard(f.registry, f.sessions, time.Hour)
	ctx := context.Background()

	// a session opened after the block survives until the next check
	_, err := f.registry.Block(ctx, 9, 0, policy.UnitIndefinitely)
	require.NoError(t, err)
	blockedToken, err := f.sessions.Create(ctx, 9, time.Hour)
	require.NoError(t, err)

	err = guard.CheckSession(ctx, 9)
	_, ok := IsBlockedError(err)
	assert.True(t, ok)
	_, live, err := f.sessions.Lookup(ctx, blockedToken)
	require.NoError(t, err)
	assert.False(t, live)

	activeToken, err := f.sessions.Create(ctx, 10, time.Hour)
	require.NoError(t, err)
	assert.NoError(t, guard.CheckSession(ctx, 10))
	_, live, err = f.sessions.Lookup(ctx, activeToken)
	require.NoError(t, err)
	assert.True(t, live)
}

func TestAuthGuard_CheckSession_DestroyFailure(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	_, err := f.registry.Block(ctx, 9, 0, policy.UnitIndefinitely)
	require.NoError(t, err)

	guard := NewAuthGuard(f.registry, failingSessions{}, time.Hour)

	err = guard.CheckSession(ctx, 9)
	assert.ErrorIs(t, err, ErrSessionInvalidation)
}

func TestAuthGuard_LoginIssuesSession(t *testing.T) {
	f := newRegistryFixture()
	guard := NewAuthGuard(f.registry, f.sessions, time.Hour)
	ctx := context.Background()
	require.True(t, guard.ManagesSessions())

	token, err := guard.Login(ctx, 11)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, live, err := f.sessions.Lookup(ctx, token)
	require.NoError(t, err)
	assert.True(t, live)
	assert.Equal(t, int64(11), userID)

	_, err = f.registry.Block(ctx, 12, 0, policy.UnitIndefinitely)
	require.NoError(t, err)
	token, err = guard.Login(ctx, 12)
	_, blocked := IsBlockedError(err)
	assert.True(t, blocked)
	assert.Empty(t, token)
}

func TestAuthGuard_CheckToken(t *testing.T) {
	f := newRegistryFixture()
	guard := NewAuthGuard(f.registry, f.sessions, time.Hour)
	ctx := context.Background()

	token, err := guard.Login(ctx, 20)
	require.NoError(t, err)

	userID, err := guard.CheckToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(20), userID)

	_, err = f.registry.Block(ctx, 20, 1, policy.UnitDays)
	require.NoError(t, err)

	// blocking already revoked the token
	_, err = guard.CheckToken(ctx, token)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = guard.CheckToken(ctx, "unknown")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestAuthGuard_CheckToken_BlockedOwner(t *testing.T) {
	f := newRegistryFixture()
	guard := NewAuthGuard(f.registry, f.sessions, time.Hour)
	ctx := context.Background()

	_, err := f.registry.Block(ctx, 21, 0, policy.UnitIndefinitely)
	require.NoError(t, err)
	// a session opened behind the registry's back, e.g. before a restart
	token, err := f.sessions.Create(ctx, 21, time.Hour)
	require.NoError(t, err)

	userID, err := guard.CheckToken(ctx, token)
	assert.Equal(t, int64(21), userID)
	_, blocked := IsBlockedError(err)
	assert.True(t, blocked)

	_, live, err := f.sessions.Lookup(ctx, token)
	require.NoError(t, err)
	assert.False(t, live)
}

func TestAuthGuard_HostManagedSessions(t *testing.T) {
	f := newRegistryFixture()
	guard := NewAuthGuard(f.registry, session.NopStore{}, time.Hour)
	ctx := context.Background()
	assert.False(t, guard.ManagesSessions())

	token, err := guard.Login(ctx, 30)
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = guard.CheckToken(ctx, "anything")
	assert.ErrorIs(t, err, ErrSessionsUnmanaged)
}
