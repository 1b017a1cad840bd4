package connector

import (
	"errors"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/crypto"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/sshkey"
)

// ErrKeyExists is returned when a profile already holds a key pair.
var ErrKeyExists = errors.New("key already exists")

// ProfileStore is the persistence the key service needs.
type ProfileStore interface {
	FindByID(id uint) (*model.ConnectionProfile, error)
	Save(p *model.ConnectionProfile) error
}

// KeyService generates client key pairs for profiles.
type KeyService struct {
	profiles ProfileStore
	crypto   *crypto.Crypto
}

func NewKeyService(profiles ProfileStore, c *crypto.Crypto) *KeyService {
	return &KeyService{profiles: profiles, crypto: c}
}

// Generate creates a key pair of mode for the profile, stores it (private
// half encrypted) and switches the profile to key authentication. It refuses
// to replace an existing pair.
func (k *KeyService) Generate(profileID uint, mode model.CredentialMode) (*sshkey.KeyPair, error) {
	if !mode.IsKey() {
		return nil, errs.Invalid("credential_mode", "not a key mode: "+string(mode))
	}

	p, err := k.profiles.FindByID(profileID)
	if err != nil {
		return nil, err
	}
	if p.PrivateKey != "" && p.PublicKey != "" {
		return nil, &errs.ConfigurationError{Field: "private_key", Reason: ErrKeyExists.Error()}
	}

	kp, err := sshkey.Generate(keyType(mode))
	if err != nil {
		return nil, &errs.CredentialError{Mode: string(mode), Err: err}
	}

	private := kp.PrivateKey
	if k.crypto != nil {
		if private, err = k.crypto.Encrypt(kp.PrivateKey); err != nil {
			return nil, &errs.CredentialError{Mode: string(mode), Err: err}
		}
	}

	p.CredentialMode = mode
	p.PrivateKey = private
	p.PrivateKeyName = kp.PrivateKeyName
	p.PublicKey = kp.PublicKey
	p.PublicKeyName = kp.PublicKeyName

	if err := k.profiles.Save(p); err != nil {
		return nil, err
	}

	logger.Infof("[Keys] Generated %s key for profile %d (%s)", kp.Type, p.ID, kp.Fingerprint)
	return kp, nil
}
