package main

import (
	"time"

	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Seeds demo data for local development: plans, a producer with a
// product, a QR code pointing at it, and a consumer account.
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("failed to migrate database: %v", err)
	}

	plans := []models.SubscriptionPlan{
		{
			Code:         "free",
			Name:         "Free",
			MonthlyPrice: decimal.Zero,
			MaxProducts:  3,
			MaxQRCodes:   5,
			IsActive:     true,
		},
		{
			Code:         "standard",
			Name:         "Standard",
			MonthlyPrice: decimal.NewFromInt(2900),
			MaxProducts:  50,
			MaxQRCodes:   200,
			IsActive:     true,
		},
		{
			Code:         "enterprise",
			Name:         "Enterprise",
			MonthlyPrice: decimal.NewFromInt(14900),
			MaxProducts:  0,
			MaxQRCodes:   0,
			IsActive:     true,
		},
	}
	for _, plan := range plans {
		var existing models.SubscriptionPlan
		if err := models.DB.Where("code = ?", plan.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&plan).Error; err != nil {
				stdLog.Printf("failed to create plan %s: %v", plan.Code, err)
			} else {
				stdLog.Printf("created plan: %s", plan.Code)
			}
		} else {
			stdLog.Printf("plan already exists: %s", plan.Code)
		}
	}

	var owner models.User
	if err := models.DB.Where("email = ?", "owner@severny-dvor.ru").First(&owner).Error; err != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte("Owner1234"), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("failed to hash demo password: %v", err)
		}
		owner = models.User{
			Email:        "owner@severny-dvor.ru",
			PasswordHash: string(hash),
			DisplayName:  "Demo Owner",
			Locale:       "ru",
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&owner).Error; err != nil {
			stdLog.Fatalf("failed to create demo owner: %v", err)
		}
		stdLog.Printf("created demo owner: %s", owner.Email)
	} else {
		stdLog.Printf("demo owner already exists: %s", owner.Email)
	}

	var org models.Organization
	if err := models.DB.Where("slug = ?", "severny-dvor").First(&org).Error; err != nil {
		org = models.Organization{
			Slug:         "severny-dvor",
			Name:         "Северный двор",
			Description:  "Фермерские молочные продукты из Вологодской области.",
			Website:      "https://severny-dvor.ru",
			Country:      "RU",
			ContactEmail: "hello@severny-dvor.ru",
			StatusLevel:  constants.StatusLevelC,
		}
		if err := models.DB.Create(&org).Error; err != nil {
			stdLog.Fatalf("failed to create demo organization: %v", err)
		}
		if err := models.DB.Create(&models.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         owner.ID,
			Role:           constants.OrgRoleOwner,
		}).Error; err != nil {
			stdLog.Printf("failed to create demo membership: %v", err)
		}
		stdLog.Printf("created demo organization: %s", org.Slug)
	} else {
		stdLog.Printf("demo organization already exists: %s", org.Slug)
	}

	var freePlan models.SubscriptionPlan
	if err := models.DB.Where("code = ?", "free").First(&freePlan).Error; err == nil {
		var sub models.OrgSubscription
		if err := models.DB.Where("organization_id = ? AND status = ?", org.ID, "active").First(&sub).Error; err != nil {
			now := time.Now()
			sub = models.OrgSubscription{
				OrganizationID: org.ID,
				PlanID:         freePlan.ID,
				Status:         "active",
				StartsAt:       now,
				EndsAt:         now.AddDate(0, 12, 0),
			}
			if err := models.DB.Create(&sub).Error; err != nil {
				stdLog.Printf("failed to create demo subscription: %v", err)
			} else {
				stdLog.Printf("created demo subscription on plan: %s", freePlan.Code)
			}
		}
	}

	var product models.Product
	if err := models.DB.Where("slug = ?", "tvorog-9").First(&product).Error; err != nil {
		product = models.Product{
			OrganizationID: org.ID,
			Slug:           "tvorog-9",
			Name:           "Творог 9%",
			Description:    "Классический творог из цельного молока.",
			Category:       "dairy",
			Attributes: models.JSON(map[string]interface{}{
				"fat_percent": 9,
				"weight_g":    300,
			}),
			IsActive: true,
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Fatalf("failed to create demo product: %v", err)
		}
		steps := []models.JourneyStep{
			{
				ProductID:  product.ID,
				Title:      "Молоко принято",
				Details:    "Партия цельного молока с фермы.",
				Location:   "Вологодская область",
				OccurredAt: time.Now().AddDate(0, 0, -3),
			},
			{
				ProductID:  product.ID,
				Title:      "Произведено",
				Details:    "Сквашивание и отделение сыворотки.",
				Location:   "Цех №1",
				OccurredAt: time.Now().AddDate(0, 0, -2),
			},
		}
		for _, step := range steps {
			if err := models.DB.Create(&step).Error; err != nil {
				stdLog.Printf("failed to create journey step: %v", err)
			}
		}
		stdLog.Printf("created demo product: %s", product.Slug)
	} else {
		stdLog.Printf("demo product already exists: %s", product.Slug)
	}

	var qr models.QRCode
	if err := models.DB.Where("slug = ?", "demo-tvorog").First(&qr).Error; err != nil {
		qr = models.QRCode{
			OrganizationID: org.ID,
			ProductID:      product.ID,
			Slug:           "demo-tvorog",
			Label:          "Упаковка творога",
			IsActive:       true,
		}
		if err := models.DB.Create(&qr).Error; err != nil {
			stdLog.Fatalf("failed to create demo qr code: %v", err)
		}
		if err := models.DB.Create(&models.QRUrlVersion{
			QRCodeID:  qr.ID,
			URL:       "https://severny-dvor.ru/products/tvorog-9",
			Comment:   "initial",
			IsCurrent: true,
		}).Error; err != nil {
			stdLog.Printf("failed to create demo qr version: %v", err)
		}
		stdLog.Printf("created demo qr code: %s", qr.Slug)
	} else {
		stdLog.Printf("demo qr code already exists: %s", qr.Slug)
	}

	stdLog.Printf("seed finished")
}
