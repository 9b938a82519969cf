package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"juneberry/internal/domain/model"
	repo "juneberry/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// 一覧キャッシュの世代。更新時に INCR して古いキーを無効にする
const generationKey = "catalog:gen"

type cachedList struct {
	Items []model.Article `json:"items"`
	Total int64           `json:"total"`
}

// CachedArticleRepository は公開一覧だけを Redis に載せる。
// FindByID は常に下のリポジトリを読む（チェックアウトの検証用）。
type CachedArticleRepository struct {
	next   repo.ArticleRepository
	client *redis.Client
	ttl    time.Duration
	log    logrus.FieldLogger
	group  singleflight.Group
}

func NewCachedArticleRepository(next repo.ArticleRepository, client *redis.Client, ttl time.Duration, log logrus.FieldLogger) *CachedArticleRepository {
	return &CachedArticleRepository{next: next, client: client, ttl: ttl, log: log}
}

func (r *CachedArticleRepository) ListPublic(ctx context.Context, q repo.ArticleListQuery) ([]model.Article, int64, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		r.log.WithError(err).Warn("catalog cache unavailable")
		return r.next.ListPublic(ctx, q)
	}
	key := listKey(gen, q)

	if hit, err := r.get(ctx, key); err == nil {
		return hit.Items, hit.Total, nil
	} else if !errors.Is(err, redis.Nil) {
		r.log.WithError(err).Warn("catalog cache read failed")
	}

	// 同じキーの取りこぼしは1回の読み込みにまとめる
	// 呼び出し元のキャンセルは共有の読み込みに伝えない
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		fctx := context.WithoutCancel(ctx)
		items, total, err := r.next.ListPublic(fctx, q)
		if err != nil {
			return nil, err
		}
		list := cachedList{Items: items, Total: total}
		if err := r.set(fctx, key, list); err != nil {
			r.log.WithError(err).Warn("catalog cache write failed")
		}
		return list, nil
	})
	if err != nil {
		return []model.Article{}, 0, err
	}
	list := v.(cachedList)
	return list.Items, list.Total, nil
}

func (r *CachedArticleRepository) FindByID(ctx context.Context, id string) (model.Article, error) {
	return r.next.FindByID(ctx, id)
}

func (r *CachedArticleRepository) UpdateAvailability(ctx context.Context, id string, inStock bool, sizes []string) error {
	if err := r.next.UpdateAvailability(ctx, id, inStock, sizes); err != nil {
		return err
	}
	if err := r.Invalidate(ctx); err != nil {
		r.log.WithError(err).Warn("catalog cache invalidation failed")
	}
	return nil
}

// Invalidate は一覧キャッシュを全部無効にする。
func (r *CachedArticleRepository) Invalidate(ctx context.Context) error {
	if err := r.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}
	return nil
}

func (r *CachedArticleRepository) generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return gen, nil
}

func (r *CachedArticleRepository) get(ctx context.Context, key string) (cachedList, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return cachedList{}, err
	}
	var list cachedList
	if err := json.Unmarshal(data, &list); err != nil {
		return cachedList{}, fmt.Errorf("unmarshal article list failed: %w", err)
	}
	return list, nil
}

func (r *CachedArticleRepository) set(ctx context.Context, key string, list cachedList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal article list failed: %w", err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func listKey(gen int64, q repo.ArticleListQuery) string {
	return fmt.Sprintf("catalog:list:%d:%d:%d:%s:%s", gen, q.Page, q.Limit, q.LiveSessionID, q.Sort)
}
