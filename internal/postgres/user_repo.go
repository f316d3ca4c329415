package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/cwrk-planet/watch-together/internal/domain"
	"github.com/cwrk-planet/watch-together/internal/service"

	"github.com/jackc/pgx/v5"
)

// UserRepo: профили пользователей основного бэкенда (только чтение).
type UserRepo struct {
	q querier
}

func NewUserRepo(q querier) *UserRepo {
	return &UserRepo{q: q}
}

func (r *UserRepo) ResolveIdentity(ctx context.Context, login string) (domain.Participant, error) {
	var (
		dbLogin  string
		imageURL *string
	)
	err := r.q.QueryRow(ctx, QueryGetUserByLogin, login).Scan(&dbLogin, &imageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Participant{}, service.ErrIdentityNotFound
		}
		return domain.Participant{}, err
	}

	p := domain.Participant{Login: dbLogin}
	if imageURL != nil {
		p.ImageURL = strings.TrimSpace(*imageURL)
	}

	return p, nil
}
