package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"hotel-booking-api/models"

	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(AppConfig.DatabaseURL)
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		AppConfig.DBUser, AppConfig.DBPass, AppConfig.DBHost, AppConfig.DBPort, AppConfig.DBName,
	), nil
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      !IsProduction(),
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	if err := Migrate(DB); err != nil {
		return err
	}

	SeedDatabase(DB)
	return nil
}

// Migrate applies the schema in parent->child order.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Booking{},
	)
}

func jsonList(items ...string) datatypes.JSON {
	out := "["
	for i, it := range items {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%q", it)
	}
	out += "]"
	return datatypes.JSON(out)
}

// SeedDatabase ensures a default admin account and a starter room inventory.
func SeedDatabase(db *gorm.DB) {
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount)
	if adminCount == 0 {
		admin := models.User{
			Name:     "Admin User",
			Email:    "admin@hotelbooking.com",
			Role:     models.RoleAdmin,
			Phone:    "+1234567890",
			IsActive: true,
		}
		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("warning: failed to hash default admin password: %v", err)
		} else if err := db.Create(&admin).Error; err != nil {
			log.Printf("warning: failed to create default admin: %v", err)
		} else {
			log.Println("Default admin seeded")
		}
	}

	var roomCount int64
	db.Model(&models.Room{}).Count(&roomCount)
	if roomCount > 0 {
		log.Println("Rooms already seeded")
		return
	}

	baseAmenities := []string{"WiFi", "TV", "Mini Bar", "Air Conditioning", "Room Service"}
	suiteAmenities := append(append([]string{}, baseAmenities...), "Kitchenette", "Balcony")

	rooms := []models.Room{
		{
			RoomNumber: "101", Type: models.RoomTypeDeluxe, Price: 150.00,
			Status: models.RoomStatusAvailable, Capacity: 2, Size: "350 sq ft",
			Description: "Comfortable deluxe room with city view, perfect for business travelers.",
			Amenities:   jsonList(baseAmenities...),
		},
		{
			RoomNumber: "102", Type: models.RoomTypeDeluxe, Price: 150.00,
			Status: models.RoomStatusAvailable, Capacity: 2, Size: "350 sq ft",
			Description: "Spacious deluxe room with modern amenities and comfortable bedding.",
			Amenities:   jsonList(baseAmenities...),
		},
		{
			RoomNumber: "103", Type: models.RoomTypeDeluxe, Price: 160.00,
			Status: models.RoomStatusAvailable, Capacity: 2, Size: "360 sq ft",
			Description: "Premium deluxe room with enhanced amenities and superior comfort.",
			Amenities:   jsonList(append(append([]string{}, baseAmenities...), "Coffee Maker")...),
		},
		{
			RoomNumber: "201", Type: models.RoomTypeSuite, Price: 250.00,
			Status: models.RoomStatusAvailable, Capacity: 4, Size: "650 sq ft",
			Description: "Luxurious suite with separate living area, perfect for families or extended stays.",
			Amenities:   jsonList(suiteAmenities...),
		},
		{
			RoomNumber: "202", Type: models.RoomTypeSuite, Price: 280.00,
			Status: models.RoomStatusAvailable, Capacity: 4, Size: "700 sq ft",
			Description: "Executive suite with premium furnishings and panoramic city views.",
			Amenities:   jsonList(append(append([]string{}, suiteAmenities...), "Jacuzzi")...),
		},
		{
			RoomNumber: "301", Type: models.RoomTypeExecutive, Price: 350.00,
			Status: models.RoomStatusAvailable, Capacity: 3, Size: "500 sq ft",
			Description: "Executive room with dedicated workspace and lounge access.",
			Amenities:   jsonList(append(append([]string{}, baseAmenities...), "Workspace", "Lounge Access")...),
		},
		{
			RoomNumber: "401", Type: models.RoomTypePresidential, Price: 800.00,
			Status: models.RoomStatusAvailable, Capacity: 6, Size: "1200 sq ft",
			Description: "Presidential suite with private terrace, butler service and skyline views.",
			Amenities:   jsonList(append(append([]string{}, suiteAmenities...), "Private Terrace", "Butler Service")...),
		},
	}

	if err := db.Create(&rooms).Error; err != nil {
		log.Printf("warning: failed to seed rooms: %v", err)
		return
	}
	log.Println("Rooms seeded")
}
