package main

import (
	"context"
	"strings"

	"clickgo/internal/config"
	"clickgo/internal/domain/model"
	"clickgo/internal/infra/db"
	infraRepo "clickgo/internal/infra/repository"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 開発用の商品投入。
func main() {
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(&model.Product{}); err != nil {
		logger.Fatal("failed to migrate", zap.Error(err))
	}

	products := []model.Product{
		{Name: "Audífonos Bluetooth", Price: decimal.NewFromFloat(39.99), Stock: 100, Description: "Inalámbricos, 20h de batería", Category: "electronica"},
		{Name: "Cargador USB-C 65W", Price: decimal.NewFromFloat(24.50), Stock: 80, Description: "Carga rápida", Category: "electronica"},
		{Name: "Mochila urbana", Price: decimal.NewFromInt(55), Stock: 40, Description: "Resistente al agua", Category: "accesorios"},
	}

	repo := infraRepo.NewProductGormRepository(gormDB)
	ctx := context.Background()

	for _, p := range products {
		p.ID = uuid.NewString()
		p.NameLower = strings.ToLower(p.Name)
		p.IsActive = true
		if err := repo.Create(ctx, p); err != nil {
			logger.Fatal("failed to seed product", zap.String("name", p.Name), zap.Error(err))
		}
		logger.Info("seeded product", zap.String("id", p.ID), zap.String("name", p.Name))
	}
}
