package service

import (
	"context"
	"testing"
	"time"

	"frota/internal/dto"
	"frota/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func seedOperador(t *testing.T, repo *stubOperadorRepo, username, password, rol string) *model.Operador {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	email := username + "@frota.com"
	o := &model.Operador{
		ID: uuid.New(), Username: username, Nome: "Operador Teste", Email: &email,
		PasswordHash: string(hash), Rol: rol, Ativo: true,
	}
	repo.ops[username] = o
	return o
}

func signToken(t *testing.T, userID string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID, "username": "testuser", "rol": "master",
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

// ── Login ─────────────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	repo := newStubOperadorRepo()
	op := seedOperador(t, repo, "gestor", "senha1234", "master")
	svc := NewAuthService(repo, newTestCfg())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "gestor", Password: "senha1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, op.ID.String(), resp.User.ID)
	assert.Equal(t, "master", resp.User.Rol)

	tok, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, op.ID.String(), claims["user_id"])
	assert.Equal(t, "master", claims["rol"])
}

func TestLogin_ByEmail(t *testing.T) {
	repo := newStubOperadorRepo()
	seedOperador(t, repo, "gestor", "senha1234", "user")
	svc := NewAuthService(repo, newTestCfg())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "GESTOR@frota.com", Password: "senha1234"})
	assert.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newStubOperadorRepo()
	seedOperador(t, repo, "gestor", "senha1234", "master")
	svc := NewAuthService(repo, newTestCfg())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "gestor", Password: "errada"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownOrInactive(t *testing.T) {
	repo := newStubOperadorRepo()
	op := seedOperador(t, repo, "gestor", "senha1234", "master")
	op.Ativo = false
	svc := NewAuthService(repo, newTestCfg())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "gestor", Password: "senha1234"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "ninguem", Password: "senha1234"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// ── Refresh ───────────────────────────────────────────────────────────────────

func TestRefresh_IssuesNewPair(t *testing.T) {
	repo := newStubOperadorRepo()
	op := seedOperador(t, repo, "gestor", "senha1234", "master")
	svc := NewAuthService(repo, newTestCfg())

	resp, err := svc.Refresh(context.Background(), signToken(t, op.ID.String(), time.Hour))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "gestor", resp.User.Username)
}

func TestRefresh_Rejects(t *testing.T) {
	repo := newStubOperadorRepo()
	op := seedOperador(t, repo, "gestor", "senha1234", "master")
	svc := NewAuthService(repo, newTestCfg())
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Refresh(ctx, signToken(t, op.ID.String(), -time.Minute))
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	_, err = svc.Refresh(ctx, signToken(t, "not-a-uuid", time.Hour))
	assert.ErrorIs(t, err, ErrInvalidToken)

	op.Ativo = false
	_, err = svc.Refresh(ctx, signToken(t, op.ID.String(), time.Hour))
	assert.ErrorIs(t, err, ErrOperadorInativo)
}

// ── Operadores ────────────────────────────────────────────────────────────────

func TestSalvarOperador_CreatesThenReplaces(t *testing.T) {
	repo := newStubOperadorRepo()
	svc := NewAuthService(repo, newTestCfg())
	ctx := context.Background()

	first, err := svc.SalvarOperador(ctx, dto.SalvarOperadorRequest{
		Username: "gestor", Nome: "Gestora", Password: "senha1234", Rol: "user",
	})
	require.NoError(t, err)
	assert.True(t, first.Ativo)

	second, err := svc.SalvarOperador(ctx, dto.SalvarOperadorRequest{
		Username: "gestor", Nome: "Gestora Frota", Password: "outrasenha", Rol: "master",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "master", second.Rol)

	stored := repo.ops["gestor"]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("outrasenha")))

	list, err := svc.ListarOperadores(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
