package service

import (
	"context"
	"errors"
	"time"

	"frota/internal/config"
	"frota/internal/dto"
	"frota/internal/model"
	"frota/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	ListarOperadores(ctx context.Context) ([]dto.OperadorResponse, error)
	// SalvarOperador creates the operator or replaces the one with the same
	// username. The operator is always left active.
	SalvarOperador(ctx context.Context, req dto.SalvarOperadorRequest) (*dto.OperadorResponse, error)
}

type authService struct {
	repo repository.OperadorRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.OperadorRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	op, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(op)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	idStr, _ := claims["user_id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	op, err := s.repo.FindByID(ctx, id)
	if err != nil || !op.Ativo {
		return nil, ErrOperadorInativo
	}
	return s.issueTokens(op)
}

func (s *authService) ListarOperadores(ctx context.Context) ([]dto.OperadorResponse, error) {
	ops, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.OperadorResponse, len(ops))
	for i := range ops {
		resp[i] = toOperadorResponse(&ops[i])
	}
	return resp, nil
}

func (s *authService) SalvarOperador(ctx context.Context, req dto.SalvarOperadorRequest) (*dto.OperadorResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	op := &model.Operador{
		Username:     req.Username,
		Nome:         req.Nome,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          req.Rol,
		Ativo:        true,
	}
	if err := s.repo.Upsert(ctx, op); err != nil {
		return nil, err
	}
	resp := toOperadorResponse(op)
	return &resp, nil
}

func (s *authService) issueTokens(op *model.Operador) (*dto.LoginResponse, error) {
	access, err := s.generateToken(op, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(op, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         toOperadorResponse(op),
	}, nil
}

func (s *authService) generateToken(op *model.Operador, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  op.ID.String(),
		"username": op.Username,
		"rol":      op.Rol,
		"exp":      now.Add(duration).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func toOperadorResponse(op *model.Operador) dto.OperadorResponse {
	return dto.OperadorResponse{
		ID:       op.ID.String(),
		Username: op.Username,
		Nome:     op.Nome,
		Email:    op.Email,
		Rol:      op.Rol,
		Ativo:    op.Ativo,
	}
}
