package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"juneberry/internal/domain/model"
	repo "juneberry/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// 在庫フラグとサイズの管理（カートを古くする操作）
type AdminArticleUsecase struct {
	articles  repo.ArticleRepository
	auditRepo repo.AuditLogRepository
	log       logrus.FieldLogger
}

func NewAdminArticleUsecase(articles repo.ArticleRepository, auditRepo repo.AuditLogRepository, log logrus.FieldLogger) *AdminArticleUsecase {
	return &AdminArticleUsecase{articles: articles, auditRepo: auditRepo, log: log}
}

type AdminUpdateAvailabilityInput struct {
	InStock bool
	Sizes   []string
}

type availabilitySnapshot struct {
	InStock bool     `json:"in_stock"`
	Sizes   []string `json:"sizes"`
}

func (u *AdminArticleUsecase) UpdateAvailability(ctx context.Context, actorAdminUserID int64, articleID string, in AdminUpdateAvailabilityInput) (model.Article, error) {
	if actorAdminUserID <= 0 {
		return model.Article{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if _, err := uuid.Parse(articleID); err != nil {
		return model.Article{}, NewHTTPError(http.StatusBadRequest, "invalid article id")
	}

	sizes, err := normalizeSizes(in.Sizes)
	if err != nil {
		return model.Article{}, err
	}

	//変更前（before）
	before, err := u.articles.FindByID(ctx, articleID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Article{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Article{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.articles.UpdateAvailability(ctx, articleID, in.InStock, sizes); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Article{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Article{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	beforeJSON, _ := json.Marshal(availabilitySnapshot{InStock: before.InStock, Sizes: before.SizeLabels()})
	afterJSON, _ := json.Marshal(availabilitySnapshot{InStock: in.InStock, Sizes: sizes})

	//監査ログ
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       model.AuditActionUpdateAvailability,
		ResourceType: model.AuditResourceArticle,
		ResourceID:   articleID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    time.Now(),
	}); err != nil {
		return model.Article{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	u.log.WithFields(logrus.Fields{
		"article_id": articleID,
		"in_stock":   in.InStock,
		"sizes":      sizes,
		"actor":      actorAdminUserID,
	}).Info("article availability updated")

	after, err := u.articles.FindByID(ctx, articleID)
	if err != nil {
		return model.Article{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return after, nil
}

type AdminAuditLogQuery struct {
	Action       string
	ResourceType string
	ResourceID   string
	Limit        int
	Offset       int
}

func (u *AdminArticleUsecase) ListAuditLogs(ctx context.Context, q AdminAuditLogQuery) ([]model.AuditLog, error) {
	if q.Limit < 0 || q.Limit > 200 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if q.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	f := repo.AuditLogFilter{Limit: q.Limit, Offset: q.Offset}
	if rt := strings.TrimSpace(q.ResourceType); rt != "" {
		t := model.AuditResourceType(strings.ToLower(rt))
		if !t.Valid() {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid resource_type")
		}
		f.ResourceType = &t
	}
	if a := strings.TrimSpace(q.Action); a != "" {
		action := model.AuditAction(strings.ToUpper(a))
		rt, ok := action.ResourceType()
		if !ok {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid action")
		}
		if f.ResourceType != nil && *f.ResourceType != rt {
			return nil, NewHTTPError(http.StatusBadRequest, "action does not apply to resource_type")
		}
		f.Action = &action
	}
	if id := strings.TrimSpace(q.ResourceID); id != "" {
		f.ResourceID = &id
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}

// 空白除去・重複除去（順序は保つ）
func normalizeSizes(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, NewHTTPError(http.StatusBadRequest, "size label required")
		}
		if len(s) > 20 {
			return nil, NewHTTPError(http.StatusBadRequest, "size label too long")
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}
