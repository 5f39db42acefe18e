package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"nesttask/backend/config"
	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/model"
	"nesttask/backend/pkg/jwt"
)

// mockBlacklist 内存 Token 黑名单
type mockBlacklist struct {
	revoked map[string]time.Duration
	err     error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

func setupTestAuthService() (AuthService, *testRepos, *mockBlacklist, *jwt.Manager) {
	cfg := &config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
	repo, mocks := newTestRepos()
	jwtMgr := jwt.NewManager(cfg)
	blacklist := newMockBlacklist()

	svc := NewAuthService(repo, jwtMgr, blacklist, zap.NewNop())
	return svc, mocks, blacklist, jwtMgr
}

func createTestUser(mocks *testRepos, email, password, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		ID:           "user-" + email,
		Name:         "测试用户",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	mocks.user.users[user.ID] = user
	return user
}

// ── 登录测试 ──

func TestLogin_Success(t *testing.T) {
	svc, mocks, _, jwtMgr := setupTestAuthService()
	createTestUser(mocks, "alice@test.com", "password123", model.RoleSectionAdmin)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "Alice@test.com", Password: "password123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("期望返回 Token 对")
	}
	if result.ExpiresIn != 900 {
		t.Errorf("期望 expires_in=900，实际=%d", result.ExpiresIn)
	}

	claims, err := jwtMgr.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("解析 AccessToken 失败: %v", err)
	}
	if claims.Role != model.RoleSectionAdmin || claims.TokenType != jwt.TokenTypeAccess {
		t.Errorf("claims 不符: %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	createTestUser(mocks, "alice@test.com", "password123", model.RoleUser)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "alice@test.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际=%v", err)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@test.com", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("用户不存在应返回 ErrInvalidCredentials，实际=%v", err)
	}
}

// ── 刷新测试 ──

func TestRefresh_RotatesToken(t *testing.T) {
	svc, mocks, blacklist, jwtMgr := setupTestAuthService()
	user := createTestUser(mocks, "alice@test.com", "password123", model.RoleUser)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{Email: user.Email, Password: "password123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	// 刷新前提升角色，新 Token 应带上新角色
	mocks.user.users[user.ID].Role = model.RoleAdmin

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	claims, _ := jwtMgr.ParseToken(refreshed.AccessToken)
	if claims.Role != model.RoleAdmin {
		t.Errorf("刷新后应使用最新角色，实际=%s", claims.Role)
	}

	old, _ := jwtMgr.ParseToken(login.RefreshToken)
	if _, ok := blacklist.revoked[old.ID]; !ok {
		t.Error("旧 RefreshToken 应被加入黑名单")
	}

	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("旧 RefreshToken 不能重复使用，实际=%v", err)
	}
}

func TestRefresh_AccessTokenNotAllowed(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	user := createTestUser(mocks, "alice@test.com", "password123", model.RoleUser)
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: user.Email, Password: "password123"})

	if _, err := svc.Refresh(context.Background(), login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("AccessToken 不能用于刷新，实际=%v", err)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	if _, err := svc.Refresh(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("期望 ErrInvalidToken，实际=%v", err)
	}
}

func TestRefresh_BlacklistUnavailableDegradesOpen(t *testing.T) {
	svc, mocks, blacklist, _ := setupTestAuthService()
	user := createTestUser(mocks, "alice@test.com", "password123", model.RoleUser)
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: user.Email, Password: "password123"})
	blacklist.err = errors.New("redis down")

	if _, err := svc.Refresh(context.Background(), login.RefreshToken); err != nil {
		t.Errorf("黑名单不可用时应降级放行，实际=%v", err)
	}
}

// ── 注销测试 ──

func TestLogout_RevokesBothTokens(t *testing.T) {
	svc, mocks, blacklist, jwtMgr := setupTestAuthService()
	user := createTestUser(mocks, "alice@test.com", "password123", model.RoleUser)
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: user.Email, Password: "password123"})
	access, _ := jwtMgr.ParseToken(login.AccessToken)

	if err := svc.Logout(context.Background(), access, login.RefreshToken); err != nil {
		t.Fatalf("注销失败: %v", err)
	}
	if len(blacklist.revoked) != 2 {
		t.Errorf("期望两个 Token 均被注销，实际=%d", len(blacklist.revoked))
	}
}

func TestLogout_NilClaims(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	if err := svc.Logout(context.Background(), nil, ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("期望 ErrInvalidToken，实际=%v", err)
	}
}

// ── 当前用户 / 修改密码 ──

func TestMe(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	user := createTestUser(mocks, "alice@test.com", "password123", model.RoleUser)

	me, err := svc.Me(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if me.Email != user.Email {
		t.Errorf("期望 email=%s，实际=%s", user.Email, me.Email)
	}

	if _, err := svc.Me(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际=%v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, mocks, _, _ := setupTestAuthService()
	user := createTestUser(mocks, "alice@test.com", "password123", model.RoleUser)

	err := svc.ChangePassword(context.Background(), user.ID, &dto.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newpassword1"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("期望 ErrWrongPassword，实际=%v", err)
	}

	err = svc.ChangePassword(context.Background(), user.ID, &dto.ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpassword1"})
	if err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Email: user.Email, Password: "newpassword1"}); err != nil {
		t.Errorf("新密码应可登录，实际=%v", err)
	}
}
