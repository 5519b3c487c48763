package breach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"cyguard-backend/internal/database"
	"cyguard-backend/pkg/api"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInvalidEmail is returned when the lookup address fails basic parsing.
var ErrInvalidEmail = errors.New("invalid email address")

// Store answers breach lookups from a fixture table. A real deployment would
// front a service like Have I Been Pwned here.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Check looks up the address case-insensitively. Known addresses report
// found:true even when they carry no breaches; unknown addresses report
// found:false.
func (s *Store) Check(ctx context.Context, email string) (*api.CheckBreachResponse, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	normalized := strings.ToLower(email)

	var account database.BreachAccount
	err := s.db.WithContext(ctx).
		Preload("Breaches").
		First(&account, "email = ?", normalized).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &api.CheckBreachResponse{
			Found:    false,
			Breaches: []api.BreachDetail{},
			Message:  fmt.Sprintf("The email address %s does not exist in our database. This does not mean the email is not real, only that we have no breach records for it.", email),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup breach records: %w", err)
	}

	details := make([]api.BreachDetail, 0, len(account.Breaches))
	for _, b := range account.Breaches {
		var dataClasses []string
		if len(b.DataClasses) > 0 {
			if err := json.Unmarshal(b.DataClasses, &dataClasses); err != nil {
				slog.Error("skipping breach with corrupt data classes", "breach_id", b.Id, "error", err)
				continue
			}
		}
		details = append(details, api.BreachDetail{
			Name:        b.Name,
			Date:        b.Date,
			Description: b.Description,
			DataClasses: dataClasses,
		})
	}

	message := fmt.Sprintf("The email address %s was found in our database but had no associated breaches. Continue to practice good security hygiene by using strong, unique passwords and enabling 2FA.", email)
	if len(details) > 0 {
		message = fmt.Sprintf("The email address %s was found in %d known breach(es). It is highly recommended to change the passwords for any accounts associated with this email, especially on the services listed. Enable Two-Factor Authentication (2FA) wherever possible.", email, len(details))
	}

	return &api.CheckBreachResponse{
		Found:    true,
		Breaches: details,
		Message:  message,
	}, nil
}

// SeedFixtures loads the demo breach records. Idempotent.
func SeedFixtures(db *gorm.DB) error {
	accounts := []database.BreachAccount{
		{
			Email: "test@example.com",
			Breaches: []database.Breach{
				{
					Id:          uuid.New(),
					Email:       "test@example.com",
					Name:        "SocialConnect Platform",
					Date:        "2023-01-15",
					Description: "A massive data breach at SocialConnect exposed the personal information of over 200 million users due to a misconfigured database.",
					DataClasses: mustJSON([]string{"Email addresses", "Passwords", "Usernames", "Phone numbers"}),
				},
				{
					Id:          uuid.New(),
					Email:       "test@example.com",
					Name:        "E-Shop Mania",
					Date:        "2022-11-20",
					Description: "E-Shop Mania suffered a sophisticated cyberattack where attackers gained access to customer account details.",
					DataClasses: mustJSON([]string{"Email addresses", "Passwords", "Physical addresses"}),
				},
			},
		},
		{
			Email: "user@example.com",
			Breaches: []database.Breach{
				{
					Id:          uuid.New(),
					Email:       "user@example.com",
					Name:        "MegaCloud Storage",
					Date:        "2021-05-30",
					Description: "Attackers exploited a vulnerability in MegaCloud's API, leading to the exposure of user emails and hashed passwords.",
					DataClasses: mustJSON([]string{"Email addresses", "Hashed passwords"}),
				},
			},
		},
		{Email: "safe@example.com"},
	}

	for _, account := range accounts {
		var existing database.BreachAccount
		err := db.First(&existing, "email = ?", account.Email).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check breach fixture %s: %w", account.Email, err)
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&account).Error; err != nil {
			return fmt.Errorf("seed breach fixture %s: %w", account.Email, err)
		}
	}
	return nil
}

func mustJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(data)
}
