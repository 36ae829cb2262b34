package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"lubd/app/auth"
	"lubd/app/database"
	"lubd/app/platform/user"
)

var (
	// ErrInvalidCredentials covers every upstream rejection of the
	// credential exchange; details stay in the server log.
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	// ErrMalformedTokenResponse marks a 2xx token response missing one
	// of the token fields. Hard failure, nothing is written.
	ErrMalformedTokenResponse = errors.New("token endpoint returned malformed response")
)

// TokenPair is the upstream token endpoint response.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// UserSession is the session object handed to the session consumer.
type UserSession struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	ProfileImage string     `json:"profile_image"`
	Positions    string     `json:"positions"`
	Properties   []Property `json:"properties"`
	CreatedAt    time.Time  `json:"created_at"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	SessionToken string     `json:"session_token"`
}

type Service struct {
	db     *gorm.DB
	users  *user.UserService
	client *resty.Client
	log    *logrus.Logger
}

// NewService builds the login orchestrator. upstreamURL is the base URL
// of the identity backend the credentials are exchanged against.
func NewService(db *gorm.DB, upstreamURL string, log *logrus.Logger) *Service {
	client := resty.New().
		SetBaseURL(upstreamURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	return &Service{
		db:     db,
		users:  user.NewService(db),
		client: client,
		log:    log,
	}
}

// Login runs the full flow: credential exchange, token introspection,
// local profile reconciliation, property normalization and session
// materialization. One sequential chain; the first fatal error aborts
// the attempt before anything is persisted.
func (s *Service) Login(ctx context.Context, username, password string) (*UserSession, error) {
	pair, err := s.exchangeCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	userID, err := auth.DecodeSubject(pair.Access)
	if err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}

	profile := s.fetchProfile(ctx, userID, pair.Access)

	record, err := s.reconcileUser(userID, username, profile)
	if err != nil {
		return nil, fmt.Errorf("reconcile user %s: %w", userID, err)
	}

	properties := s.resolveProperties(record, profile)

	return s.materialize(record, properties, pair)
}

// exchangeCredentials trades the username/password for a token pair.
func (s *Service) exchangeCredentials(ctx context.Context, username, password string) (*TokenPair, error) {
	var pair TokenPair

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&pair).
		Post("/api/token/")
	if err != nil {
		return nil, fmt.Errorf("token endpoint: %w", err)
	}

	if resp.IsError() {
		s.log.WithFields(logrus.Fields{
			"status": resp.StatusCode(),
			"body":   string(resp.Body()),
		}).Warn("credential exchange rejected")
		return nil, ErrInvalidCredentials
	}

	if pair.Access == "" || pair.Refresh == "" {
		return nil, ErrMalformedTokenResponse
	}

	return &pair, nil
}

// upstreamProfile is the profile endpoint payload; the properties field
// stays raw so the shape normalization can deal with it.
type upstreamProfile struct {
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	ProfileImage string          `json:"profile_image"`
	Positions    string          `json:"positions"`
	CreatedAt    *time.Time      `json:"created_at"`
	Properties   json.RawMessage `json:"properties"`
}

// fetchProfile pulls the fuller profile from the upstream. Best-effort:
// any failure degrades the login to defaults instead of aborting it.
func (s *Service) fetchProfile(ctx context.Context, userID, accessToken string) *upstreamProfile {
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get(fmt.Sprintf("/api/user-profiles/%s/", userID))
	if err != nil || resp.IsError() {
		s.log.WithField("user_id", userID).Debug("profile fetch failed, using defaults")
		return nil
	}

	var profile upstreamProfile
	if err := json.Unmarshal(resp.Body(), &profile); err != nil {
		s.log.WithField("user_id", userID).Debug("profile payload not decodable, using defaults")
		return nil
	}

	return &profile
}

// reconcileUser upserts the local user record from the profile payload,
// falling back to the credential username and placeholder defaults.
func (s *Service) reconcileUser(userID, username string, profile *upstreamProfile) (*database.User, error) {
	record := database.User{
		ID:        userID,
		Username:  username,
		Positions: "User",
	}

	if profile != nil {
		if profile.Username != "" {
			record.Username = profile.Username
		}
		if profile.Email != "" {
			record.Email = &profile.Email
		}
		if profile.ProfileImage != "" {
			record.ProfileImage = &profile.ProfileImage
		}
		if profile.Positions != "" {
			record.Positions = profile.Positions
		}
		if profile.CreatedAt != nil {
			record.CreatedAt = *profile.CreatedAt
		}
	}

	return s.users.Upsert(&record)
}

// resolveProperties produces the session property list, preferring the
// upstream payload, then the preloaded local relation, then a raw-query
// reconstruction. A user with zero properties is valid; every tier may
// come up empty without failing the login.
func (s *Service) resolveProperties(record *database.User, profile *upstreamProfile) []Property {
	if profile != nil {
		if properties := NormalizeProperties(profile.Properties); len(properties) > 0 {
			s.mirrorAssociations(record.ID, properties)
			return properties
		}
	}

	if len(record.Properties) > 0 {
		rows := make([]user.PropertyRow, 0, len(record.Properties))
		for _, p := range record.Properties {
			rows = append(rows, user.PropertyRow{ID: p.ID, Name: p.Name})
		}
		return normalizeLocal(rows)
	}

	rows, err := s.users.PropertiesByRawQuery(record.ID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", record.ID).Warn("property reconstruction failed")
		return []Property{}
	}

	return normalizeLocal(rows)
}

// mirrorAssociations lazily records upstream property access in the
// local join table. Best-effort: the upstream stays the system of
// record and the next login repairs anything missed here.
func (s *Service) mirrorAssociations(userID string, properties []Property) {
	for _, p := range properties {
		id, err := strconv.ParseUint(p.ID, 10, 64)
		if err != nil {
			continue
		}

		local := database.Property{ID: uint(id)}
		res := s.db.Where("id = ?", uint(id)).
			Attrs(database.Property{Name: p.Name, PropertyID: p.PropertyID}).
			FirstOrCreate(&local)
		if res.Error != nil {
			s.log.WithError(res.Error).WithField("property_id", p.ID).Debug("property mirror skipped")
			continue
		}

		if err := s.users.AddProperty(userID, local.ID); err != nil {
			s.log.WithError(err).WithField("property_id", p.ID).Debug("association mirror skipped")
		}
	}
}

// ErrSessionNotFound is returned for unknown or expired session tokens.
var ErrSessionNotFound = errors.New("session not found")

// Get resolves a session token back into the full session object.
func (s *Service) Get(sessionToken string) (*UserSession, error) {
	var stored database.Session
	if err := s.db.Where("session_token = ?", sessionToken).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if stored.IsExpired() {
		return nil, ErrSessionNotFound
	}

	record, err := s.users.GetUserByID(stored.UserID)
	if err != nil {
		return nil, err
	}

	properties := s.resolveProperties(record, nil)

	return s.assemble(record, properties, &stored), nil
}

// Refresh trades the stored refresh token for a new access token and
// updates the session row in place.
func (s *Service) Refresh(ctx context.Context, sessionToken string) (*UserSession, error) {
	var stored database.Session
	if err := s.db.Where("session_token = ?", sessionToken).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var pair TokenPair
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"refresh": stored.RefreshToken}).
		SetResult(&pair).
		Post("/api/token/refresh/")
	if err != nil {
		return nil, fmt.Errorf("token refresh endpoint: %w", err)
	}
	if resp.IsError() {
		return nil, ErrInvalidCredentials
	}
	if pair.Access == "" {
		return nil, ErrMalformedTokenResponse
	}
	if pair.Refresh == "" {
		pair.Refresh = stored.RefreshToken
	}

	stored.AccessToken = pair.Access
	stored.RefreshToken = pair.Refresh
	stored.ExpiresAt = time.Now().Add(auth.RefreshTokenExp)
	if err := s.db.Save(&stored).Error; err != nil {
		return nil, fmt.Errorf("persist refreshed session: %w", err)
	}

	record, err := s.users.GetUserByID(stored.UserID)
	if err != nil {
		return nil, err
	}

	properties := s.resolveProperties(record, nil)

	return s.assemble(record, properties, &stored), nil
}

// Logout drops the session row. Unknown tokens are not an error.
func (s *Service) Logout(sessionToken string) error {
	return s.db.Where("session_token = ?", sessionToken).Delete(&database.Session{}).Error
}

// materialize assembles the session object and replaces the user's
// session row. Tokens pass through untouched; refresh rotation belongs
// to the token endpoints, not here.
func (s *Service) materialize(record *database.User, properties []Property, pair *TokenPair) (*UserSession, error) {
	stored := database.Session{UserID: record.ID}

	assigned := database.Session{
		SessionToken: uuid.NewString(),
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		ExpiresAt:    time.Now().Add(auth.RefreshTokenExp),
	}
	result := s.db.Where(database.Session{UserID: record.ID}).
		Assign(assigned).
		FirstOrCreate(&stored)
	if result.Error != nil {
		return nil, fmt.Errorf("persist session: %w", result.Error)
	}

	return s.assemble(record, properties, &stored), nil
}

func (s *Service) assemble(record *database.User, properties []Property, stored *database.Session) *UserSession {
	email := ""
	if record.Email != nil {
		email = *record.Email
	}
	profileImage := ""
	if record.ProfileImage != nil {
		profileImage = *record.ProfileImage
	}

	return &UserSession{
		ID:           record.ID,
		Username:     record.Username,
		Email:        email,
		ProfileImage: profileImage,
		Positions:    record.Positions,
		Properties:   properties,
		CreatedAt:    record.CreatedAt,
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		SessionToken: stored.SessionToken,
	}
}
