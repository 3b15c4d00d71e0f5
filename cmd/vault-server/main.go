package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vault-core/internal/handler"
	"vault-core/internal/ledger"
	"vault-core/internal/model"
	"vault-core/internal/registry"
	"vault-core/internal/server"
	"vault-core/internal/service"
	"vault-core/internal/service/mq"
	"vault-core/internal/worker"
	"vault-core/pkg/cache"
	"vault-core/pkg/config"
	"vault-core/pkg/database"
	"vault-core/pkg/logger"
	"vault-core/pkg/principal"

	_ "vault-core/docs/swagger"
)

// @title Vault Core API
// @version 1.0
// @description Custodial Balance Vault API

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 构造 DSN 并连接数据库
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)
	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3. 连接 Redis
	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 4. 数据库迁移 (仅开发环境 AutoMigrate, 生产用 migrate 工具)
	if config.Global.App.Env == "development" {
		logger.Info("开发环境: 尝试自动迁移 Schema (GORM AutoMigrate)...")
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("数据库自动迁移失败", zap.Error(err))
		}
		logger.Info("数据库自动迁移完成 (Dev Mode)")
	} else {
		logger.Info("生产环境: 跳过 AutoMigrate，请使用 migrate 工具管理 Schema")
	}

	// 5. 初始化账户注册表并从快照恢复
	owner, err := principal.Parse(config.Global.Vault.OwnerPrincipal)
	if err != nil || owner.IsAnonymous() {
		logger.Fatal("金库主体标识非法", zap.String("owner", config.Global.Vault.OwnerPrincipal), zap.Error(err))
	}
	reg := registry.New(owner)
	store := registry.NewStore(db)
	if err := store.Restore(context.Background(), reg); err != nil {
		logger.Fatal("注册表恢复失败", zap.Error(err))
	}
	logger.Info("注册表已从快照恢复", zap.Int("accounts", reg.Len()))

	// 6. 账本客户端与手续费
	ledgerClient := ledger.NewHTTPClient(config.Global.Vault.LedgerURL, config.Global.Vault.LedgerTimeout)
	fee, err := decimal.NewFromString(config.Global.Vault.WithdrawFee)
	if err != nil || fee.IsNegative() {
		logger.Fatal("提现手续费配置非法", zap.String("withdraw_fee", config.Global.Vault.WithdrawFee))
	}

	// 7. 多级缓存 (L1 进程内 + L2 Redis)
	detailCache := cache.NewMultiLevelCache(
		cache.NewMemoryCache(time.Minute, 5*time.Minute),
		cache.NewRedisCache(rdb),
	)

	// 8. 初始化消息队列
	var producer mq.Producer
	var consumer mq.Consumer
	if config.Global.Redis.MQType == "kafka" {
		logger.Info("使用 Kafka 作为消息队列...")
		producer = mq.NewKafkaProducer(config.Global.Kafka.Brokers)
		consumer = mq.NewKafkaConsumer(config.Global.Kafka.Brokers, "vault_notifier_group")
	} else {
		logger.Info("使用 Redis Streams 作为消息队列...")
		producer = mq.NewRedisProducer(rdb)
		consumer = mq.NewRedisConsumer(rdb, "vault_notifier", "notifier-0")
	}

	// 9. 启动消息中继服务 (outbox -> MQ) 和事件通知消费者
	relayCtx, relayCancel := context.WithCancel(context.Background())
	relayService := service.NewRelayService(db, producer)
	go relayService.Start(relayCtx)
	service.NewNotifierService(consumer).Start(relayCtx)

	// 10. 异步任务 (提现回执)
	asynqClient := worker.NewClient(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	workerServer := worker.NewServer(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB, 10)
	workerServer.Start()

	// 11. 业务服务
	recorder := service.NewGormRecorder(db)
	accountService := service.NewAccountService(reg, store, detailCache)
	depositService := service.NewDepositService(reg, ledgerClient, recorder, detailCache)
	withdrawService := service.NewWithdrawService(reg, ledgerClient, fee, recorder, detailCache, asynqClient)

	// 12. 周期快照任务
	cronService := service.NewCronService(rdb, reg, store, config.Global.Vault.SnapshotInterval)
	if err := cronService.Start(); err != nil {
		logger.Fatal("定时任务启动失败", zap.Error(err))
	}

	// 13. HTTP Router + App
	vaultHandler := handler.NewVaultHandler(accountService, depositService, withdrawService)
	r := server.NewHTTPRouter(vaultHandler)
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r)

	// 14. 注册退出回调: 停调度 (含最后一次快照)、停 worker、停中继
	app.OnShutdown(func() {
		cronService.Stop()
		workerServer.Stop()
		relayCancel()
		_ = asynqClient.Close()
	})

	// 运行 (阻塞)
	app.Run()

	// 15. 退出后资源清理
	logger.Info("正在关闭数据库连接...")
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	rdb.Close()
	logger.Info("系统已退出")
}
