package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"juneberry/internal/domain/model"
	repo "juneberry/internal/repository"

	"github.com/google/uuid"
)

type CatalogUsecase struct {
	articles     repo.ArticleRepository
	liveSessions repo.LiveSessionRepository
}

// DI
func NewCatalogUsecase(articles repo.ArticleRepository, liveSessions repo.LiveSessionRepository) *CatalogUsecase {
	return &CatalogUsecase{articles: articles, liveSessions: liveSessions}
}

// GET /articlesの入力DTO
type ListArticlesInput struct {
	Page          int
	Limit         int
	LiveSessionID string
	Sort          string
}

type ArticleListOutput struct {
	Items []model.Article `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *CatalogUsecase) ListArticles(ctx context.Context, in ListArticlesInput) (ArticleListOutput, error) {
	if in.Page < 1 {
		return ArticleListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ArticleListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ArticleListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}
	live := strings.TrimSpace(in.LiveSessionID)
	if live != "" {
		if _, err := uuid.Parse(live); err != nil {
			return ArticleListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid live_session_id")
		}
	}

	items, total, err := u.articles.ListPublic(ctx, repo.ArticleListQuery{
		Page:          in.Page,
		Limit:         in.Limit,
		LiveSessionID: live,
		Sort:          in.Sort,
	})
	if err != nil {
		return ArticleListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if items == nil {
		items = []model.Article{}
	}

	return ArticleListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 非公開・削除済みは404
func (u *CatalogUsecase) GetArticle(ctx context.Context, id string) (model.Article, error) {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return model.Article{}, NewHTTPError(http.StatusBadRequest, "invalid article id")
	}

	a, err := u.articles.FindByID(ctx, strings.TrimSpace(id))
	if errors.Is(err, repo.ErrNotFound) {
		return model.Article{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Article{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !a.IsActive {
		return model.Article{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return a, nil
}

func (u *CatalogUsecase) ListLiveSessions(ctx context.Context) ([]model.LiveSession, error) {
	sessions, err := u.liveSessions.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if sessions == nil {
		sessions = []model.LiveSession{}
	}
	return sessions, nil
}
