package account

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeRepo struct {
	accounts map[int64]Account
	nextID   int64

	createErr error
	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{accounts: make(map[int64]Account)}
}

func (f *fakeRepo) Create(_ context.Context, acc *Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	// Unique constraint backstop, like the real store.
	for _, existing := range f.accounts {
		if existing.Username == acc.Username {
			return ErrUsernameTaken
		}
	}
	f.nextID++
	acc.ID = f.nextID
	f.accounts[acc.ID] = *acc
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id int64) (Account, error) {
	acc, ok := f.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (f *fakeRepo) FindByUsername(_ context.Context, username string) (Account, error) {
	for _, acc := range f.accounts {
		if acc.Username == username {
			return acc, nil
		}
	}
	return Account{}, ErrNotFound
}

func (f *fakeRepo) Update(_ context.Context, acc Account) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.accounts[acc.ID]; !ok {
		return ErrNotFound
	}
	f.accounts[acc.ID] = acc
	return nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "digest:" + plain, nil }
func (fakeHasher) Verify(plain, digest string) bool  { return digest == "digest:"+plain }

type fakeFiles struct {
	saved map[string][]byte
	err   error
}

func newFakeFiles() *fakeFiles { return &fakeFiles{saved: make(map[string][]byte)} }

func (f *fakeFiles) Save(_ context.Context, name string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.saved[name] = data
	return nil
}

type mapCache struct {
	views map[int64]View
}

func newMapCache() *mapCache { return &mapCache{views: make(map[int64]View)} }

func (c *mapCache) Get(_ context.Context, id int64) (View, bool) {
	v, ok := c.views[id]
	return v, ok
}

func (c *mapCache) Set(_ context.Context, id int64, v View) { c.views[id] = v }

func newTestService(t *testing.T) (UseCase, *fakeRepo, *fakeFiles) {
	t.Helper()
	repo := newFakeRepo()
	files := newFakeFiles()
	return NewService(repo, fakeHasher{}, files, nil), repo, files
}

// --- registration ---

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var vErr ValidationError
	require.ErrorAs(t, svc.Register(ctx, "", "pw", "", ""), &vErr)
	require.ErrorAs(t, svc.Register(ctx, "alice", "", "", ""), &vErr)
	require.ErrorAs(t, svc.Register(ctx, "   ", "pw", "", ""), &vErr)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))
	// A different password does not make the username available.
	require.ErrorIs(t, svc.Register(ctx, "alice", "pw2", "", ""), ErrUsernameTaken)
}

func TestRegisterStoresDigestNotPlaintext(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "secret", "F", ""))

	acc, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", acc.PasswordHash)
	assert.True(t, acc.Active)
	assert.Equal(t, "F", acc.Gender)
}

func TestRegisterBirthDate(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw", "", "1999-05-04"))
	acc, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, acc.BirthDate)
	assert.Equal(t, "1999-05-04", acc.BirthDate.Format("2006-01-02"))

	// A malformed date is dropped, not rejected.
	require.NoError(t, svc.Register(ctx, "bob", "pw", "", "not-a-date"))
	acc, err = repo.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, acc.BirthDate)
}

// --- authentication ---

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "F", "2000-01-02"))

	view, err := svc.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.ID)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "F", view.Gender)
	require.NotNil(t, view.BirthDate)
	assert.Equal(t, "2000-01-02", *view.BirthDate)
}

func TestAuthenticateIndistinguishableFailures(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))

	_, wrongPassword := svc.Authenticate(ctx, "alice", "nope")
	_, unknownUser := svc.Authenticate(ctx, "mallory", "pw1")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	// Same error value either way; the caller cannot tell which field was
	// wrong.
	assert.Equal(t, wrongPassword, unknownUser)
}

func TestAuthenticateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var vErr ValidationError
	_, err := svc.Authenticate(ctx, "", "pw")
	require.ErrorAs(t, err, &vErr)
	_, err = svc.Authenticate(ctx, "alice", "")
	require.ErrorAs(t, err, &vErr)
}

// --- profile update ---

func TestUpdateProfile(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))
	require.NoError(t, svc.UpdateProfile(ctx, 1, "alice2"))

	acc, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice2", acc.Username)
}

func TestUpdateProfileSelfRename(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))
	// Renaming to the current username is not a conflict.
	require.NoError(t, svc.UpdateProfile(ctx, 1, "alice"))
}

func TestUpdateProfileConflict(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))
	require.NoError(t, svc.Register(ctx, "bob", "pw2", "", ""))

	require.ErrorIs(t, svc.UpdateProfile(ctx, 2, "alice"), ErrUsernameTaken)
}

func TestUpdateProfileNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	require.ErrorIs(t, svc.UpdateProfile(context.Background(), 42, "ghost"), ErrNotFound)
}

// --- password change ---

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "old-pw", "", ""))
	require.NoError(t, svc.ChangePassword(ctx, 1, "old-pw", "new-pw"))

	_, err := svc.Authenticate(ctx, "alice", "new-pw")
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "alice", "old-pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePasswordWrongOld(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))
	require.ErrorIs(t, svc.ChangePassword(ctx, 1, "wrong", "new-pw"), ErrInvalidCredentials)

	// The digest is untouched after a failed attempt.
	_, err := svc.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
}

func TestChangePasswordValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var vErr ValidationError
	require.ErrorAs(t, svc.ChangePassword(ctx, 1, "", "new"), &vErr)
	require.ErrorAs(t, svc.ChangePassword(ctx, 1, "old", ""), &vErr)
}

// --- profile picture ---

func TestSetProfilePicture(t *testing.T) {
	svc, repo, files := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))

	url, err := svc.SetProfilePicture(ctx, 1, []byte("png-bytes"), "avatar.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"), "url %q", url)
	assert.Contains(t, url, "?t=")
	assert.Contains(t, url, ".png?")

	acc, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, url, acc.ProfilePictureURL)

	require.Len(t, files.saved, 1)
	for name, data := range files.saved {
		assert.True(t, strings.HasSuffix(name, ".png"))
		assert.Equal(t, []byte("png-bytes"), data)
	}
}

func TestSetProfilePictureNoExtension(t *testing.T) {
	svc, _, files := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))

	_, err := svc.SetProfilePicture(ctx, 1, []byte("bytes"), "avatar")
	require.NoError(t, err)
	for name := range files.saved {
		assert.NotContains(t, name, ".")
	}
}

func TestSetProfilePictureEmptyFile(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))

	var vErr ValidationError
	_, err := svc.SetProfilePicture(ctx, 1, nil, "avatar.png")
	require.ErrorAs(t, err, &vErr)
}

func TestSetProfilePictureNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.SetProfilePicture(context.Background(), 42, []byte("x"), "a.png")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetProfilePictureStorageFailure(t *testing.T) {
	repo := newFakeRepo()
	files := newFakeFiles()
	files.err = errors.New("disk full")
	svc := NewService(repo, fakeHasher{}, files, nil)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))

	_, err := svc.SetProfilePicture(ctx, 1, []byte("x"), "a.png")
	require.ErrorIs(t, err, ErrStorage)

	// The account stays untouched when the byte write fails.
	acc, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, acc.ProfilePictureURL)
}

// --- profile reads and cache ---

func TestProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "F", ""))

	view, err := svc.Profile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)
	assert.Nil(t, view.BirthDate)

	_, err = svc.Profile(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProfileCacheReadThrough(t *testing.T) {
	repo := newFakeRepo()
	views := newMapCache()
	svc := NewService(repo, fakeHasher{}, newFakeFiles(), views)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))

	// Registration primed the cache; a read served from it survives the
	// record vanishing from the store.
	delete(repo.accounts, 1)
	view, err := svc.Profile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)
}

func TestProfileCacheRefreshedOnRename(t *testing.T) {
	repo := newFakeRepo()
	views := newMapCache()
	svc := NewService(repo, fakeHasher{}, newFakeFiles(), views)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))
	require.NoError(t, svc.UpdateProfile(ctx, 1, "alice2"))

	v, ok := views.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "alice2", v.Username)
}

// --- end to end scenario against the fakes ---

func TestAccountLifecycleScenario(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1", "", ""))
	require.ErrorIs(t, svc.Register(ctx, "alice", "pw2", "", ""), ErrUsernameTaken)

	view, err := svc.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.Equal(t, int64(1), view.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.UpdateProfile(ctx, 1, "alice2"))

	// The old username no longer authenticates; the account is reachable
	// under the new one with the unchanged password.
	_, err = svc.Authenticate(ctx, "alice", "pw1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	view, err = svc.Authenticate(ctx, "alice2", "pw1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.ID)
}
