package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"juneberry/internal/config"
	"juneberry/internal/handler"
	"juneberry/internal/infra/cache"
	"juneberry/internal/infra/db"
	"juneberry/internal/infra/logger"
	"juneberry/internal/infra/messaging"
	infraRepo "juneberry/internal/infra/repository"
	repo "juneberry/internal/repository"
	"juneberry/internal/server"
	"juneberry/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	//.envは無くてもよい（本番は環境変数）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Fatal("failed to load .env")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid config")
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		log.WithError(err).Fatal("auto migrate failed")
	}

	//Repository（GORM実装）生成
	var articles repo.ArticleRepository = infraRepo.NewArticleGormRepository(gormDB)
	liveSessions := infraRepo.NewLiveSessionGormRepository(gormDB)
	auditLogs := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//一覧キャッシュ（REDIS_ADDRがあるときだけ）
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unavailable, catalog cache disabled")
		} else {
			articles = cache.NewCachedArticleRepository(articles, rdb, cfg.CatalogCacheTTL, log)
		}
	}

	//注文通知（KAFKA_BROKERSがあるときだけ）
	var notifier usecase.OrderNotifier = usecase.NopOrderNotifier{}
	if len(cfg.KafkaBrokers) > 0 {
		kn := messaging.NewKafkaOrderNotifier(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer kn.Close()
		notifier = kn
	}

	//Usecase生成
	shipping := usecase.ShippingPolicy{
		DomesticCountry: cfg.DomesticCountry,
		DomesticCost:    cfg.DomesticShippingCost,
	}
	checkoutUC := usecase.NewCheckoutUsecase(articles, txm, shipping, notifier, log)
	cartUC := usecase.NewCartUsecase(checkoutUC)
	catalogUC := usecase.NewCatalogUsecase(articles, liveSessions)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, log)
	adminArticleUC := usecase.NewAdminArticleUsecase(articles, auditLogs, log)

	//Handler生成
	cookies := handler.NewCartCookies(cfg, log)
	e := server.New(cfg, log, server.Handlers{
		Catalog:      handler.NewCatalogHandler(catalogUC),
		Cart:         handler.NewCartHandler(cartUC, cookies),
		Checkout:     handler.NewCheckoutHandler(checkoutUC, cartUC, cookies),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminArticle: handler.NewAdminArticleHandler(adminArticleUC),
	})

	//Server起動
	addr := cfg.Port
	if addr == "" || addr[0] != ':' {
		addr = ":" + addr
	}
	log.WithField("addr", addr).Info("server starting")
	if err := server.Start(ctx, e, addr); err != nil {
		log.WithError(err).Error("server stopped")
		return
	}
	log.Info("server stopped")
}
