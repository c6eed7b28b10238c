package account

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UseCase describes all identity operations: authentication, registration,
// profile reads and the mutation flows. It is the only writer of account
// state.
type UseCase interface {
	Authenticate(ctx context.Context, username, password string) (View, error)
	Register(ctx context.Context, username, password, gender, birthDate string) error
	Profile(ctx context.Context, id int64) (View, error)
	UpdateProfile(ctx context.Context, id int64, username string) error
	ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error
	SetProfilePicture(ctx context.Context, id int64, data []byte, filename string) (string, error)
}

type service struct {
	repo   Repository
	hasher PasswordHasher
	files  FileStore
	views  ViewCache // optional; nil disables caching
}

// NewService returns the default implementation of UseCase. views may be nil
// when no cache is configured; reads then always go to the repository.
func NewService(repo Repository, hasher PasswordHasher, files FileStore, views ViewCache) UseCase {
	return &service{repo: repo, hasher: hasher, files: files, views: views}
}

func (s *service) Authenticate(ctx context.Context, username, password string) (View, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return View{}, ValidationError("username and password are required")
	}
	acc, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		// Collapsed with the wrong-password case so the response does not
		// reveal which of the two was wrong.
		return View{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, acc.PasswordHash) {
		return View{}, ErrInvalidCredentials
	}
	return acc.Sanitize(), nil
}

func (s *service) Register(ctx context.Context, username, password, gender, birthDate string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ValidationError("username and password are required")
	}

	// If the username is taken, fail fast (best-effort check; the unique
	// constraint in the store is the real backstop under concurrency).
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	acc := Account{
		Username:     username,
		PasswordHash: digest,
		Gender:       gender,
		BirthDate:    parseBirthDate(birthDate),
		Active:       true,
	}
	if err := s.repo.Create(ctx, &acc); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	s.cacheView(ctx, acc)
	return nil
}

func (s *service) Profile(ctx context.Context, id int64) (View, error) {
	if s.views != nil {
		if v, ok := s.views.Get(ctx, id); ok {
			return v, nil
		}
	}
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	v := acc.Sanitize()
	if s.views != nil {
		s.views.Set(ctx, id, v)
	}
	return v, nil
}

func (s *service) UpdateProfile(ctx context.Context, id int64, username string) error {
	if strings.TrimSpace(username) == "" {
		return ValidationError("username is required")
	}
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	// Renaming to the account's own current username is allowed.
	if owner, err := s.repo.FindByUsername(ctx, username); err == nil && owner.ID != id {
		return ErrUsernameTaken
	}
	acc.Username = username
	if err := s.repo.Update(ctx, acc); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	s.cacheView(ctx, acc)
	return nil
}

func (s *service) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ValidationError("old and new passwords are required")
	}
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(oldPassword, acc.PasswordHash) {
		return ErrInvalidCredentials
	}
	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	acc.PasswordHash = digest
	if err := s.repo.Update(ctx, acc); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

func (s *service) SetProfilePicture(ctx context.Context, id int64, data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", ValidationError("file is empty")
	}
	acc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	name := uuid.New().String() + filepath.Ext(filename)
	// Write the bytes first; the account record is only touched after the
	// file is safely stored.
	if err := s.files.Save(ctx, name, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// The timestamp defeats client-side caching of the previous picture.
	url := fmt.Sprintf("/uploads/%s?t=%d", name, time.Now().UnixMilli())
	acc.ProfilePictureURL = url
	if err := s.repo.Update(ctx, acc); err != nil {
		return "", fmt.Errorf("update account: %w", err)
	}
	s.cacheView(ctx, acc)
	return url, nil
}

func (s *service) cacheView(ctx context.Context, acc Account) {
	if s.views != nil {
		s.views.Set(ctx, acc.ID, acc.Sanitize())
	}
}

// parseBirthDate parses an ISO calendar date. A malformed value is treated
// as absent rather than rejected; registration never fails on the birth
// date.
func parseBirthDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(birthDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
