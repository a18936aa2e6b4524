package services

import (
	"errors"
	"fmt"
	"strings"

	"hotel-booking-api/models"

	"gorm.io/gorm"
)

// UserService handles registration, authentication and profile updates.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

func (s *UserService) Register(in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if len(name) < 2 || len(name) > 100 {
		return nil, NewBookingError(KindValidation, "Name must be 2-100 characters")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, NewBookingError(KindValidation, "Valid email required")
	}
	if len(in.Password) < 6 {
		return nil, NewBookingError(KindValidation, "Password must be at least 6 characters")
	}

	var existing models.User
	err := s.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, NewBookingError(KindConflict, "User with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("db error checking email: %w", err)
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Role:     models.RoleCustomer,
		Phone:    strings.TrimSpace(in.Phone),
		IsActive: true,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.DB.Create(&user).Error; err != nil {
		lc := strings.ToLower(err.Error())
		if strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique") {
			return nil, NewBookingError(KindConflict, "User with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Authenticate verifies credentials. Unknown emails, inactive accounts and
// wrong passwords all produce the same rejection.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewBookingError(KindForbidden, "Invalid credentials")
		}
		return nil, fmt.Errorf("db error looking up user: %w", err)
	}

	if !user.IsActive || !user.CheckPassword(password) {
		return nil, NewBookingError(KindForbidden, "Invalid credentials")
	}
	return &user, nil
}

func (s *UserService) GetByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewBookingError(KindForbidden, "Invalid or inactive user")
		}
		return nil, fmt.Errorf("db error looking up user %d: %w", userID, err)
	}
	return &user, nil
}

// UpdateProfile changes name and/or phone; empty values leave fields untouched.
func (s *UserService) UpdateProfile(userID uint, name, phone string) (*models.User, error) {
	updates := map[string]interface{}{}
	if n := strings.TrimSpace(name); n != "" {
		if len(n) < 2 || len(n) > 100 {
			return nil, NewBookingError(KindValidation, "Name must be 2-100 characters")
		}
		updates["name"] = n
	}
	if p := strings.TrimSpace(phone); p != "" {
		updates["phone"] = p
	}

	if len(updates) > 0 {
		if err := s.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
		}
	}
	return s.GetByID(userID)
}

func (s *UserService) ChangePassword(userID uint, current, next string) error {
	user, err := s.GetByID(userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return NewBookingError(KindValidation, "Current password is incorrect")
	}
	if len(next) < 6 {
		return NewBookingError(KindValidation, "New password must be at least 6 characters")
	}
	if err := user.SetPassword(next); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("password", user.Password).Error; err != nil {
		return fmt.Errorf("failed to change password for user %d: %w", userID, err)
	}
	return nil
}
