package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"

	"taskdesk/internal/auth"
	"taskdesk/internal/repository"
	"taskdesk/internal/token"
	"taskdesk/internal/ws"
)

// Handler carries every dependency the HTTP layer needs. Constructed once in
// main; nothing here is package-global so tests can build their own.
type Handler struct {
	Repo     *repository.TaskRepository
	Verifier *auth.Verifier
	Issuer   *token.Issuer
	Cache    *redis.Client
	Validate *validator.Validate
	Hub      *ws.Hub
}

func New(repo *repository.TaskRepository, verifier *auth.Verifier, issuer *token.Issuer, cache *redis.Client, hub *ws.Hub) *Handler {
	return &Handler{
		Repo:     repo,
		Verifier: verifier,
		Issuer:   issuer,
		Cache:    cache,
		Validate: validator.New(),
		Hub:      hub,
	}
}
