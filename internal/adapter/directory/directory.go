package directory

import (
	"crypto/sha256"
	"crypto/subtle"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"teamassist/internal/domain"
)

//go:embed users.yaml
var defaultUsers []byte

var ErrInvalidCredentials = errors.New("invalid username or password")

type entry struct {
	domain.User    `yaml:",inline"`
	PasswordSHA256 string `yaml:"password_sha256"`
}

type usersFile struct {
	Users []entry `yaml:"users"`
}

// Directory is a static, read-only user table.
type Directory struct {
	users map[string]entry
}

// Default returns the built-in sample team.
func Default() *Directory {
	d, err := parse(defaultUsers)
	if err != nil {
		panic(fmt.Sprintf("embedded users.yaml: %v", err))
	}
	return d
}

// Load reads a users file; an empty path gives the built-in team.
func Load(path string) (*Directory, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	d, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse users file %s: %w", path, err)
	}
	return d, nil
}

func parse(data []byte) (*Directory, error) {
	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	d := &Directory{users: make(map[string]entry, len(f.Users))}
	for i, e := range f.Users {
		key := normalize(e.Username)
		if key == "" {
			return nil, fmt.Errorf("user %d has no username", i)
		}
		if _, dup := d.users[key]; dup {
			return nil, fmt.Errorf("duplicate user %q", e.Username)
		}
		if _, err := hex.DecodeString(e.PasswordSHA256); err != nil || len(e.PasswordSHA256) != sha256.Size*2 {
			return nil, fmt.Errorf("user %q: password_sha256 must be a hex sha256 digest", e.Username)
		}
		e.Username = key
		e.PasswordSHA256 = strings.ToLower(e.PasswordSHA256)
		d.users[key] = e
	}
	return d, nil
}

// HashPassword returns the hex sha256 digest stored in users files.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (d *Directory) Authenticate(username, password string) (domain.User, error) {
	e, ok := d.users[normalize(username)]
	if !ok {
		return domain.User{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(e.PasswordSHA256)) != 1 {
		return domain.User{}, ErrInvalidCredentials
	}
	return e.User, nil
}

func (d *Directory) Lookup(username string) (domain.User, bool) {
	e, ok := d.users[normalize(username)]
	return e.User, ok
}

// Users lists everyone, sorted by username.
func (d *Directory) Users() []domain.User {
	out := make([]domain.User, 0, len(d.users))
	for _, e := range d.users {
		out = append(out, e.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
