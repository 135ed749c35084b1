// cmd/seedoperator creates or replaces an API operator.
// Usage: go run ./cmd/seedoperator -username gestor -password 's3nha-forte' -rol master
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"frota/internal/config"
	"frota/internal/dto"
	"frota/internal/infra"
	"frota/internal/repository"
	"frota/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	var req dto.SalvarOperadorRequest
	var email string
	flag.StringVar(&req.Username, "username", "", "login do operador")
	flag.StringVar(&req.Nome, "nome", "Gestor da Frota", "nome de exibição")
	flag.StringVar(&email, "email", "", "e-mail (opcional, também aceito no login)")
	flag.StringVar(&req.Password, "password", "", "senha, mínimo 8 caracteres")
	flag.StringVar(&req.Rol, "rol", "master", "master ou user")
	flag.Parse()
	if email != "" {
		req.Email = &email
	}

	if err := validator.New().Struct(req); err != nil {
		fmt.Fprintln(os.Stderr, "parâmetros inválidos:", err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	svc := service.NewAuthService(repository.NewOperadorRepository(db), cfg)
	op, err := svc.SalvarOperador(context.Background(), req)
	if err != nil {
		log.Fatal().Err(err).Str("username", req.Username).Msg("failed to save operator")
	}
	log.Info().Str("id", op.ID).Str("username", op.Username).Str("rol", op.Rol).Msg("operator saved")
}
