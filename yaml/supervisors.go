package yaml

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JimmyYuu29/cartarev"
)

var _ cartarev.SupervisorDirectory = (*Directory)(nil)

// Directory is a SupervisorDirectory backed by a YAML file. Passwords are
// stored exclusively as SHA-256 hex digests; a file containing anything that
// does not look like a digest is rejected at load time.
type Directory struct {
	supervisors map[string]*cartarev.Supervisor
}

type supervisorFile struct {
	Supervisors []supervisorEntry `yaml:"supervisors"`
}

type supervisorEntry struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
	Disabled     bool   `yaml:"disabled"`
}

// NewDirectory loads the supervisor directory from path.
func NewDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading supervisor file: %w", err)
	}

	var file supervisorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing supervisor file: %w", err)
	}

	d := &Directory{supervisors: make(map[string]*cartarev.Supervisor)}
	for _, entry := range file.Supervisors {
		if entry.ID == "" {
			return nil, cartarev.Errorf(cartarev.EINVALID, "supervisor entry without id")
		}
		if !isSHA256Hex(entry.PasswordHash) {
			return nil, cartarev.Errorf(cartarev.EINVALID, "supervisor %q: password_hash must be a SHA-256 hex digest", entry.ID)
		}
		if _, ok := d.supervisors[entry.ID]; ok {
			return nil, cartarev.Errorf(cartarev.EINVALID, "duplicate supervisor id %q", entry.ID)
		}
		d.supervisors[entry.ID] = &cartarev.Supervisor{
			ID:           entry.ID,
			Name:         entry.Name,
			Email:        entry.Email,
			PasswordHash: strings.ToLower(entry.PasswordHash),
			Active:       !entry.Disabled,
		}
	}
	return d, nil
}

// Supervisor returns an active supervisor by ID.
func (d *Directory) Supervisor(id string) (*cartarev.Supervisor, error) {
	s, ok := d.supervisors[id]
	if !ok || !s.Active {
		return nil, cartarev.Errorf(cartarev.ENOTFOUND, "unknown supervisor %q", id)
	}
	return s, nil
}

// Supervisors returns all active supervisors sorted by name, without
// credentials.
func (d *Directory) Supervisors() []*cartarev.Supervisor {
	list := make([]*cartarev.Supervisor, 0, len(d.supervisors))
	for _, s := range d.supervisors {
		if !s.Active {
			continue
		}
		list = append(list, &cartarev.Supervisor{
			ID:     s.ID,
			Name:   s.Name,
			Email:  s.Email,
			Active: s.Active,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// VerifyPassword checks a supervisor's password against the stored hash in
// constant time. Unknown and inactive supervisors fail the same way as a
// wrong password.
func (d *Directory) VerifyPassword(id, password string) error {
	s, ok := d.supervisors[id]
	if !ok || !s.Active {
		return cartarev.Errorf(cartarev.EUNAUTHORIZED, "invalid credentials")
	}
	if subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(s.PasswordHash)) != 1 {
		return cartarev.Errorf(cartarev.EUNAUTHORIZED, "invalid credentials")
	}
	return nil
}

// HashPassword returns the SHA-256 hex digest used for stored supervisor
// passwords.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func isSHA256Hex(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
