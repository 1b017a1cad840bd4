package model

import (
	"fmt"
	"strings"
	"time"
)

// Protocol is the transport a Connection Profile resolves to.
type Protocol string

const (
	ProtocolNone Protocol = "none"
	ProtocolFTP  Protocol = "ftp"
	ProtocolFTPS Protocol = "ftps"
	ProtocolSFTP Protocol = "sftp"
)

// CredentialMode selects how the session authenticates.
type CredentialMode string

const (
	CredentialPassword   CredentialMode = "password"
	CredentialRSAKey     CredentialMode = "rsa_key"
	CredentialEd25519Key CredentialMode = "ed25519_key"
)

// IsKey reports whether the mode authenticates with a private key.
func (m CredentialMode) IsKey() bool {
	return m == CredentialRSAKey || m == CredentialEd25519Key
}

// ConnectionProfile is the configuration of one remote bank endpoint.
// Password and PrivateKey are stored encrypted; the connector service
// decrypts them before handing the profile to the factory.
type ConnectionProfile struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string `json:"name" gorm:"type:varchar(100);not null"`
	CompanyID uint   `json:"companyId" gorm:"index"`

	Protocol Protocol `json:"protocol" gorm:"type:varchar(10);default:'none'"`
	Host     string   `json:"host" gorm:"type:varchar(255)"`
	Port     int      `json:"port"`
	Login    string   `json:"login" gorm:"type:varchar(100)"`

	CredentialMode CredentialMode `json:"credentialMode" gorm:"type:varchar(20);default:'password'"`
	Password       string         `json:"-" gorm:"type:text"`
	PrivateKey     string         `json:"-" gorm:"type:text"`
	PrivateKeyName string         `json:"privateKeyName" gorm:"type:varchar(50)"`
	PublicKey      string         `json:"publicKey" gorm:"type:text"`
	PublicKeyName  string         `json:"publicKeyName" gorm:"type:varchar(50)"`

	AutoAddHostKey bool `json:"autoAddHostKey" gorm:"default:false"`
	AllowAgent     bool `json:"allowAgent" gorm:"default:false"`
	LookForKeys    bool `json:"lookForKeys" gorm:"default:false"`

	DisabledAlgorithms []DisabledAlgorithm `json:"disabledAlgorithms" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`

	MainPath string `json:"mainPath" gorm:"type:varchar(255);default:'/'"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (ConnectionProfile) TableName() string {
	return "connection_profiles"
}

// Address returns host:port.
func (p *ConnectionProfile) Address() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// DisabledAlgorithmNames lists the algorithm identifiers excluded from
// negotiation, in storage order.
func (p *ConnectionProfile) DisabledAlgorithmNames() []string {
	names := make([]string, 0, len(p.DisabledAlgorithms))
	for _, a := range p.DisabledAlgorithms {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Paths derives the fixed remote directories from MainPath.
func (p *ConnectionProfile) Paths() RemotePaths {
	return DerivePaths(p.MainPath)
}

// DisabledAlgorithm is one algorithm name excluded from SSH negotiation.
type DisabledAlgorithm struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	ProfileID uint   `json:"profileId" gorm:"index;not null"`
	Name      string `json:"name" gorm:"type:varchar(100);not null"`
}

func (DisabledAlgorithm) TableName() string {
	return "disabled_algorithms"
}
