package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"lab/internal/config"
	laberrors "lab/internal/errors"
)

func TestStore_TokenRoundTrip(t *testing.T) {
	store := NewTestStore(t)

	_, ok, err := store.Token("invent.kde.org")
	require.NoError(t, err)
	assert.False(t, ok, "fresh store should have no credential")

	require.NoError(t, store.SetToken("invent.kde.org", "glpat-abcdef"))

	cred, ok, err := store.Token("invent.kde.org")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "glpat-abcdef", cred.Token)
	assert.False(t, cred.IsCommand())

	_, ok, err = store.Token("gitlab.com")
	require.NoError(t, err)
	assert.False(t, ok, "tokens are per host")
}

func TestStore_SetTokenValidation(t *testing.T) {
	store := NewTestStore(t)

	tests := []struct {
		name  string
		host  string
		token string
	}{
		{"empty token", "invent.kde.org", "   "},
		{"whitespace in token", "invent.kde.org", "abc def"},
		{"empty host", "", "glpat-abc"},
		{"host with path", "invent.kde.org/KDE", "glpat-abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SetToken(tt.host, tt.token)
			require.Error(t, err)
			assert.True(t, laberrors.Is(err, laberrors.KindInvalid))
		})
	}
}

func TestStore_AuthCommandReplacesToken(t *testing.T) {
	store := NewTestStore(t)

	require.NoError(t, store.SetToken("invent.kde.org", "glpat-abcdef"))
	require.NoError(t, store.SetAuthCommand("invent.kde.org", "echo from-command"))

	cred, ok, err := store.Token("invent.kde.org")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, cred.IsCommand())
	assert.Empty(t, cred.Token)

	_, err = keyring.Get(Service, "invent.kde.org")
	assert.ErrorIs(t, err, keyring.ErrNotFound, "SetAuthCommand should delete the stored token")

	secret, err := cred.Secret(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-command", secret)
}

func TestStore_TokenReplacesAuthCommand(t *testing.T) {
	store := NewTestStore(t)

	require.NoError(t, store.SetAuthCommand("invent.kde.org", "echo old"))
	require.NoError(t, store.SetToken("invent.kde.org", "glpat-new"))

	cred, ok, err := store.Token("invent.kde.org")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, cred.IsCommand())
	assert.Equal(t, "glpat-new", cred.Token)
}

func TestStore_SavePersistsHosts(t *testing.T) {
	store := NewTestStore(t)

	require.NoError(t, store.SetToken("invent.kde.org", "glpat-abcdef"))
	require.NoError(t, store.SetAuthCommand("gitlab.example.com", "pass show gitlab"))
	require.NoError(t, store.Save())

	// A second store reading the same config file sees both hosts.
	reopened, err := Open(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"gitlab.example.com", "invent.kde.org"}, reopened.Hosts())

	cred, ok, err := reopened.Token("gitlab.example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "pass show gitlab", cred.Command)

	cfg, err := config.LoadFrom(reopened.cfg.Path())
	require.NoError(t, err)
	inst, _ := cfg.Instance("invent.kde.org")
	assert.True(t, inst.HasToken)
}

func TestStore_Delete(t *testing.T) {
	store := NewTestStore(t)

	require.NoError(t, store.SetToken("invent.kde.org", "glpat-abcdef"))
	require.NoError(t, store.Delete("invent.kde.org"))

	_, ok, err := store.Token("invent.kde.org")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store.Hosts())

	// Deleting an unknown host is not an error.
	assert.NoError(t, store.Delete("unknown.example.com"))
}

func TestCredential_Secret(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cred    Credential
		want    string
		wantErr bool
	}{
		{name: "plain token", cred: Credential{Token: "glpat-x"}, want: "glpat-x"},
		{name: "command output trimmed", cred: Credential{Command: "printf '  glpat-y\\n\\n'"}, want: "glpat-y"},
		{name: "command fails", cred: Credential{Command: "echo nope >&2; exit 3"}, wantErr: true},
		{name: "command prints nothing", cred: Credential{Command: "true"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cred.Secret(ctx)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, laberrors.Is(err, laberrors.KindCredentialMissing))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCredential_SecretReportsStderr(t *testing.T) {
	_, err := Credential{Command: "echo locked >&2; exit 1"}.Secret(context.Background())
	require.Error(t, err)
	assert.Contains(t, laberrors.UserMessage(err), "locked")
}

func TestStore_CheckKeyring(t *testing.T) {
	store := NewTestStore(t)
	assert.NoError(t, store.CheckKeyring())

	keyring.MockInitWithError(keyring.ErrUnsupportedPlatform)
	t.Cleanup(keyring.MockInit)
	err := store.CheckKeyring()
	require.Error(t, err)
	assert.True(t, laberrors.Is(err, laberrors.KindIO))
}
