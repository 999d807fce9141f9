package auth

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/chefgenie/internal/dependencies/clock"
	"github.com/mcoot/chefgenie/internal/dependencies/idgen"
	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/storage"
)

// Service manages the users collection and each client's current session
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     idgen.Generator
	logger  *slog.Logger

	// Serializes read-modify-write of the users collection
	mu sync.Mutex

	latency    time.Duration
	bcryptCost int
}

// Config holds configuration for the auth service
type Config struct {
	// Latency is a simulated delay before login and signup
	Latency    time.Duration
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Latency:    0,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, ids idgen.Generator, logger *slog.Logger, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		storage:    storage,
		clock:      clock,
		ids:        ids,
		logger:     logger.With(slog.String("component", "auth")),
		latency:    cfg.Latency,
		bcryptCost: cfg.BcryptCost,
	}
}

// NewClient issues a fresh client token
func (s *Service) NewClient() model.ClientID {
	return model.ClientID(s.ids.NewID())
}

// Signup creates a user account and logs the client in as it
func (s *Service) Signup(ctx context.Context, client model.ClientID, username, password string) (*model.User, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if utf8.RuneCountInString(username) < model.MinUsernameLength {
		return nil, model.ErrUsernameTooShort
	}
	if utf8.RuneCountInString(password) < model.MinPasswordLength {
		return nil, model.ErrPasswordTooWeak
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	if findUser(users, username) >= 0 {
		return nil, model.ErrUsernameExists
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    s.clock.Now(),
	}
	users = append(users, user)
	if err := s.saveUsers(ctx, users); err != nil {
		return nil, err
	}
	if err := s.saveSession(ctx, client, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", slog.String("username", username))
	public := user.Public()
	return &public, nil
}

// Login authenticates a user and records the session for client.
// Records still holding a legacy checksum are upgraded to bcrypt.
func (s *Service) Login(ctx context.Context, client model.ClientID, username, password string) (*model.User, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	idx := findUser(users, username)
	if idx < 0 {
		return nil, model.ErrAccountNotFound
	}
	user := &users[idx]
	if user.IsBanned {
		return nil, model.ErrAccountBanned
	}
	if !checkPassword(user.PasswordHash, password) {
		return nil, model.ErrIncorrectPassword
	}

	if isLegacyHash(user.PasswordHash) {
		hash, err := s.hashPassword(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		if err := s.saveUsers(ctx, users); err != nil {
			return nil, err
		}
		s.logger.Info("upgraded legacy password hash", slog.String("username", user.Username))
	}

	if err := s.saveSession(ctx, client, *user); err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// ChangePassword replaces a user's password after checking the current one
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < model.MinPasswordLength {
		return model.ErrNewPasswordTooWeak
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	idx := findUser(users, username)
	if idx < 0 {
		return model.ErrUserNotFound
	}
	if !checkPassword(users[idx].PasswordHash, oldPassword) {
		return model.ErrIncorrectCurrentPassword
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	users[idx].PasswordHash = hash
	return s.saveUsers(ctx, users)
}

// DeleteAccount removes a user after checking their password, and logs client out
func (s *Service) DeleteAccount(ctx context.Context, client model.ClientID, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	idx := findUser(users, username)
	if idx < 0 {
		return model.ErrUserNotFound
	}
	if users[idx].IsOwner() {
		return model.ErrCannotDeleteOwner
	}
	if !checkPassword(users[idx].PasswordHash, password) {
		return model.ErrIncorrectPassword
	}

	deleted := users[idx].Username
	users = append(users[:idx], users[idx+1:]...)
	if err := s.saveUsers(ctx, users); err != nil {
		return err
	}
	s.logger.Info("account deleted", slog.String("username", deleted))

	if client == "" {
		return nil
	}
	return s.storage.Remove(ctx, storage.SessionKey(client))
}

// UpdateUserScore sets a user's score and counts one more game played.
// Unknown users are ignored.
func (s *Service) UpdateUserScore(ctx context.Context, username string, score int) error {
	if score < 0 {
		score = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	idx := findUser(users, username)
	if idx < 0 {
		return nil
	}
	users[idx].Score = score
	users[idx].GamesPlayed++
	return s.saveUsers(ctx, users)
}

// BanUser sets a user's banned flag. The owner is never banned; requests
// against it are ignored, as are unknown usernames.
func (s *Service) BanUser(ctx context.Context, username string, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	idx := findUser(users, username)
	if idx < 0 || users[idx].IsOwner() {
		return nil
	}
	users[idx].IsBanned = banned
	if err := s.saveUsers(ctx, users); err != nil {
		return err
	}
	s.logger.Info("ban status changed",
		slog.String("username", users[idx].Username),
		slog.Bool("banned", banned),
	)
	return nil
}

// GetAllUsers returns every user, owner included, without password hashes
func (s *Service) GetAllUsers(ctx context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out, nil
}

// SearchUsers returns non-owner users whose name contains query, case-insensitively
func (s *Service) SearchUsers(ctx context.Context, query string) ([]model.User, error) {
	all, err := s.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := []model.User{}
	for _, u := range all {
		if u.IsOwner() {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), q) {
			out = append(out, u)
		}
	}
	return out, nil
}

// Leaderboard returns non-owner users by descending score. limit <= 0 means all.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]model.User, error) {
	users, err := s.SearchUsers(ctx, "")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].Score != users[j].Score {
			return users[i].Score > users[j].Score
		}
		return strings.ToLower(users[i].Username) < strings.ToLower(users[j].Username)
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// CurrentSession returns the live record of the user logged in on client, or
// nil. A pointer to a banned or deleted user is cleared.
func (s *Service) CurrentSession(ctx context.Context, client model.ClientID) (*model.User, error) {
	var snapshot model.User
	err := storage.GetJSON(ctx, s.storage, storage.SessionKey(client), &snapshot)
	if errors.Is(err, model.ErrKeyNotFound) {
		return nil, nil
	}
	if errors.Is(err, storage.ErrCorrupt) {
		s.logger.Warn("discarding corrupt session",
			slog.String("client", string(client)),
			slog.String("error", err.Error()),
		)
		return nil, s.storage.Remove(ctx, storage.SessionKey(client))
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	users, err := s.loadUsers(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	idx := findUser(users, snapshot.Username)
	if idx < 0 || users[idx].IsBanned {
		return nil, s.storage.Remove(ctx, storage.SessionKey(client))
	}
	fresh := users[idx].Public()
	return &fresh, nil
}

// Logout clears client's session
func (s *Service) Logout(ctx context.Context, client model.ClientID) error {
	return s.storage.Remove(ctx, storage.SessionKey(client))
}

// UsersBlobSize returns the size in bytes of the stored users collection
func (s *Service) UsersBlobSize(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.loadUsers(ctx); err != nil {
		return 0, err
	}
	data, err := s.storage.Get(ctx, storage.UsersKey())
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

func (s *Service) delay(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loadUsers reads the users collection, creating the owner when absent.
// Callers must hold s.mu.
func (s *Service) loadUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := storage.GetJSON(ctx, s.storage, storage.UsersKey(), &users)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrKeyNotFound):
		users = nil
	case errors.Is(err, storage.ErrCorrupt):
		s.logger.Warn("users collection is corrupt, starting empty", slog.String("error", err.Error()))
		users = nil
	default:
		return nil, err
	}

	for _, u := range users {
		if u.IsOwner() {
			return users, nil
		}
	}

	hash, err := s.hashPassword(model.OwnerPassword)
	if err != nil {
		return nil, err
	}
	users = append(users, model.User{
		Username:     model.OwnerUsername,
		PasswordHash: hash,
		Role:         model.RoleOwner,
		Score:        model.OwnerInitialScore,
		CreatedAt:    s.clock.Now(),
	})
	if err := s.saveUsers(ctx, users); err != nil {
		return nil, err
	}
	s.logger.Info("created owner account")
	return users, nil
}

func (s *Service) saveUsers(ctx context.Context, users []model.User) error {
	if users == nil {
		users = []model.User{}
	}
	return storage.SetJSON(ctx, s.storage, storage.UsersKey(), users)
}

func (s *Service) saveSession(ctx context.Context, client model.ClientID, user model.User) error {
	if client == "" {
		return nil
	}
	return storage.SetJSON(ctx, s.storage, storage.SessionKey(client), user.Public())
}

// findUser returns the index of username (case-insensitive), or -1
func findUser(users []model.User, username string) int {
	username = strings.TrimSpace(username)
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return i
		}
	}
	return -1
}
