package main

import (
	"time"

	"clickgo/internal/config"
	"clickgo/internal/domain/model"
	"clickgo/internal/events"
	"clickgo/internal/handler"
	"clickgo/internal/identity"
	"clickgo/internal/infra/db"
	infraRepo "clickgo/internal/infra/repository"
	"clickgo/internal/server"
	"clickgo/internal/usecase"
	auth "clickgo/internal/usecase/auth_usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		logger.Fatal("failed to migrate", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	passVerifier := auth.NewBcryptPasswordVerifier()

	//JWT（発行と検証で同じシークレット）
	issuer := identity.NewJWTIssuer(cfg.JWTSecret, 15*time.Minute)
	tokenVerifier := identity.NewJWTVerifier(cfg.JWTSecret)

	//注文イベント（ブローカー未設定なら配信しない）
	var publisher usecase.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer kp.Close()
		publisher = kp
	}

	//refresh TTL
	refreshTTL := 14 * 24 * time.Hour

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, passVerifier, issuer, idGen, clock, refreshTTL)
	refreshUC := auth.NewRefreshUsecase(userRepo, rtRepo, issuer, idGen, clock, refreshTTL)
	productUC := usecase.NewProductUsecase(productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, idGen, clock, publisher, logger)
	roleUC := usecase.NewRoleUsecase(userRepo)

	//Handler生成
	authH := handler.NewAuthHandler(registerUC, loginUC, refreshUC, refreshTTL)
	productH := handler.NewProductHandler(productUC)
	orderH := handler.NewOrderHandler(orderUC)
	roleH := handler.NewRoleHandler(roleUC)
	httpOrderH := handler.NewHTTPOrderHandler(orderUC, tokenVerifier)

	//Server起動
	e := server.New()
	server.RegisterRoutes(e, tokenVerifier, authH, productH, orderH, roleH, httpOrderH)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(e, addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
