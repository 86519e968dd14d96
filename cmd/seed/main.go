package main

import (
	"time"

	"github.com/spiral-platform/spiral-api/internal/config"
	"github.com/spiral-platform/spiral-api/internal/constants"
	"github.com/spiral-platform/spiral-api/internal/logger"
	"github.com/spiral-platform/spiral-api/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo dataset: two shoppers, completed orders inside and outside
// the return window, a perk catalog, and an open shopping trip.
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

	users := []struct {
		Email       string
		DisplayName string
		Password    string
	}{
		{Email: "ada@example.com", DisplayName: "Ada", Password: "spiral-demo-1"},
		{Email: "grace@example.com", DisplayName: "Grace", Password: "spiral-demo-2"},
	}
	userIDs := map[string]uint{}
	for _, u := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", u.Email).First(&existing).Error; err == nil {
			stdLog.Printf("user already exists: %s", u.Email)
			userIDs[u.Email] = existing.ID
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("failed to hash password: %v", err)
		}
		user := models.User{
			Email:        u.Email,
			DisplayName:  u.DisplayName,
			PasswordHash: string(hash),
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("failed to create user %s: %v", u.Email, err)
			continue
		}
		stdLog.Printf("created user: %s", u.Email)
		userIDs[u.Email] = user.ID
	}

	now := time.Now()
	recentCompleted := now.AddDate(0, 0, -5)
	staleCompleted := now.AddDate(0, 0, -60)

	orders := []models.Order{
		{
			OrderNo:     "SPRL-1001",
			UserID:      userIDs["ada@example.com"],
			StoreID:     1,
			StoreName:   "Riverside Outfitters",
			Status:      constants.OrderStatusCompleted,
			Currency:    constants.SiteCurrencyDefault,
			TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(84.50)),
			CompletedAt: &recentCompleted,
			Items: []models.OrderItem{
				{
					ProductName: "Trail Daypack",
					UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromFloat(59.50)),
					Quantity:    1,
					TotalPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(59.50)),
				},
				{
					ProductName: "Steel Water Bottle",
					UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromFloat(12.50)),
					Quantity:    2,
					TotalPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(25.00)),
				},
			},
		},
		{
			OrderNo:     "SPRL-1002",
			UserID:      userIDs["ada@example.com"],
			StoreID:     2,
			StoreName:   "Maple & Main Goods",
			Status:      constants.OrderStatusCompleted,
			Currency:    constants.SiteCurrencyDefault,
			TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(240.00)),
			CompletedAt: &staleCompleted,
			Items: []models.OrderItem{
				{
					ProductName: "Cast Iron Dutch Oven",
					UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromFloat(240.00)),
					Quantity:    1,
					TotalPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(240.00)),
				},
			},
		},
		{
			OrderNo:     "SPRL-1003",
			UserID:      userIDs["grace@example.com"],
			StoreID:     1,
			StoreName:   "Riverside Outfitters",
			Status:      constants.OrderStatusCompleted,
			Currency:    constants.SiteCurrencyDefault,
			TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(312.75)),
			CompletedAt: &recentCompleted,
			Items: []models.OrderItem{
				{
					ProductName: "Down Jacket",
					UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromFloat(312.75)),
					Quantity:    1,
					TotalPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(312.75)),
				},
			},
		},
	}
	for _, order := range orders {
		var existing models.Order
		if err := models.DB.Where("order_no = ?", order.OrderNo).First(&existing).Error; err == nil {
			stdLog.Printf("order already exists: %s", order.OrderNo)
			continue
		}
		if err := models.DB.Create(&order).Error; err != nil {
			stdLog.Printf("failed to create order %s: %v", order.OrderNo, err)
			continue
		}
		stdLog.Printf("created order: %s", order.OrderNo)
	}

	minCartFifty := models.NewMoneyFromDecimal(decimal.NewFromFloat(50.00))
	minThree := 3
	scheduleStart := now.AddDate(0, 0, -14)
	perks := []models.RetailerPerk{
		{
			StoreID:      1,
			Title:        "10% off group trips",
			Type:         constants.PerkTypeDiscount,
			Value:        models.NewMoneyFromDecimal(decimal.NewFromFloat(10)),
			ScheduleType: constants.PerkScheduleAlways,
			MinCartValue: &minCartFifty,
			IsActive:     true,
		},
		{
			StoreID:         2,
			Title:           "Free tote for parties of three",
			Type:            constants.PerkTypeFreebie,
			Value:           models.NewMoneyFromDecimal(decimal.NewFromFloat(15.00)),
			ScheduleType:    constants.PerkScheduleWeekly,
			ScheduleStart:   &scheduleStart,
			ScheduleDays:    models.IntArray{6, 0},
			MinParticipants: &minThree,
			UsageLimit:      100,
			IsActive:        true,
		},
		{
			StoreID:          1,
			Title:            "$20 new customer bonus",
			Type:             constants.PerkTypeBonus,
			Value:            models.NewMoneyFromDecimal(decimal.NewFromFloat(20.00)),
			ScheduleType:     constants.PerkScheduleAlways,
			NewCustomersOnly: true,
			UsageLimit:       50,
			IsActive:         true,
		},
	}
	for _, perk := range perks {
		var existing models.RetailerPerk
		if err := models.DB.Where("store_id = ? AND title = ?", perk.StoreID, perk.Title).First(&existing).Error; err == nil {
			stdLog.Printf("perk already exists: %s", perk.Title)
			continue
		}
		if err := models.DB.Create(&perk).Error; err != nil {
			stdLog.Printf("failed to create perk %s: %v", perk.Title, err)
			continue
		}
		stdLog.Printf("created perk: %s", perk.Title)
	}

	tripStore := uint(1)
	trip := models.ShoppingTrip{
		TripCode:        "SPRL-DEMO-TRIP",
		HostUserID:      userIDs["ada@example.com"],
		Name:            "Saturday market run",
		Date:            now.AddDate(0, 0, 7),
		Location:        "Riverside Market, north entrance",
		StoreID:         &tripStore,
		MaxParticipants: 6,
		Status:          constants.TripStatusOpen,
		Invites: []models.TripInvite{
			{GuestEmail: "grace@example.com", InvitedAt: now},
			{GuestEmail: "lin@example.com", InvitedAt: now},
			{GuestEmail: "sam@example.com", InvitedAt: now},
		},
	}
	var existingTrip models.ShoppingTrip
	if err := models.DB.Where("trip_code = ?", trip.TripCode).First(&existingTrip).Error; err == nil {
		stdLog.Printf("trip already exists: %s", trip.TripCode)
	} else if err := models.DB.Create(&trip).Error; err != nil {
		stdLog.Printf("failed to create trip %s: %v", trip.TripCode, err)
	} else {
		stdLog.Printf("created trip: %s", trip.TripCode)
	}

	stdLog.Printf("seed finished")
}
