package user

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lubd/app/database"
	"lubd/pkg/utils"
)

var ErrUserNotFound = errors.New("user not found")

type UserService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(user *database.User) error {
	result := s.db.Create(user)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (s *UserService) GetUserByID(userID string) (*database.User, error) {
	var user database.User

	result := s.db.Preload("Properties").First(&user, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *UserService) GetUserByUsername(username string) (*database.User, error) {
	var user database.User

	result := s.db.Preload("Properties").First(&user, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *UserService) GetUserByEmail(email string) (*database.User, error) {
	var user database.User

	result := s.db.Preload("Properties").First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// Upsert creates the user when absent and refreshes the mirrored profile
// fields when present. The returned record carries the preloaded property
// relation for existing users; a freshly created user has none yet.
func (s *UserService) Upsert(user *database.User) (*database.User, error) {
	var existing database.User

	result := s.db.Preload("Properties").First(&existing, "id = ?", user.ID)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, result.Error
		}

		if err := s.db.Create(user).Error; err != nil {
			return nil, err
		}
		return user, nil
	}

	updates := map[string]any{
		"username":      user.Username,
		"email":         user.Email,
		"profile_image": user.ProfileImage,
		"positions":     user.Positions,
	}
	if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
		return nil, err
	}

	return &existing, nil
}

func (s *UserService) Update(user *database.User) error {
	result := s.db.Save(user)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (s *UserService) UpdatePassword(user *database.User, password string) error {
	user.PasswordHash = utils.HashPassword(password)

	result := s.db.Save(user)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// AddProperty links a user to a property. Inserting an existing pair is
// a no-op: the join table has a composite primary key and the insert is
// issued with ON CONFLICT DO NOTHING.
func (s *UserService) AddProperty(userID string, propertyID uint) error {
	link := database.UserProperty{UserID: userID, PropertyID: propertyID}

	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (s *UserService) RemoveProperty(userID string, propertyID uint) error {
	result := s.db.Delete(&database.UserProperty{}, "user_id = ? AND property_id = ?", userID, propertyID)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// PropertyRow is one row of the raw reconstruction query.
type PropertyRow struct {
	ID   uint
	Name string
}

// PropertiesByRawQuery rebuilds the property list for a user straight
// from the join table, bypassing the ORM relation. Last-resort tier for
// records the relation lookup missed.
func (s *UserService) PropertiesByRawQuery(userID string) ([]PropertyRow, error) {
	var rows []PropertyRow

	err := s.db.Raw(`
		SELECT p.id, p.name
		FROM user_properties up
		JOIN properties p ON p.id = up.property_id
		WHERE up.user_id = ?
		ORDER BY p.id`, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}
