package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/watch-together/internal/domain"
	"github.com/cwrk-planet/watch-together/internal/service"

	"github.com/jackc/pgx/v5"
)

// VideoRepo: каталог видео. Наружу отдаются только опубликованные.
type VideoRepo struct {
	q querier
}

func NewVideoRepo(q querier) *VideoRepo {
	return &VideoRepo{q: q}
}

func (r *VideoRepo) GetPublished(ctx context.Context, videoID string) (domain.Video, error) {
	var v domain.Video
	err := r.q.QueryRow(ctx, QueryGetVideoByIDAndStatus, videoID, string(domain.VideoPublished)).
		Scan(&v.ID, &v.Title, &v.Path)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Video{}, service.ErrVideoNotFound
		}
		return domain.Video{}, err
	}
	// опубликованное видео без файла играть нечем
	if v.Path == "" {
		return domain.Video{}, service.ErrVideoNotFound
	}

	return v, nil
}

// IsPublished проверяет только статус, без чтения записи.
func (r *VideoRepo) IsPublished(ctx context.Context, videoID string) (bool, error) {
	var ok bool
	if err := r.q.QueryRow(ctx, QueryVideoHasStatus, videoID, string(domain.VideoPublished)).Scan(&ok); err != nil {
		return false, err
	}

	return ok, nil
}
