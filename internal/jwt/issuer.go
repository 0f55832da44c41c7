// Package jwt emite y verifica los tokens firmados del servicio.
//
// Access tokens: EdDSA, vida corta (15m), claims sub/role/company_id.
// Refresh tokens: EdDSA, vida larga (30d), claims sub/jti; el jti ancla
// el token a su registro persistido en la cadena de rotación.
package jwt

import (
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims son los claims de un access token.
type AccessClaims struct {
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	jwtv5.RegisteredClaims
}

// RefreshClaims son los claims de un refresh token. El ID (jti) debe
// coincidir con el registro activo de la cadena de rotación.
type RefreshClaims struct {
	jwtv5.RegisteredClaims
}

// Issuer firma los tokens del servicio con la clave activa.
type Issuer struct {
	keys       *KeyPair
	iss        string
	aud        string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer construye un Issuer. TTLs en cero caen a 15m / 720h.
func NewIssuer(keys *KeyPair, iss, aud string, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 720 * time.Hour
	}
	return &Issuer{
		keys:       keys,
		iss:        iss,
		aud:        aud,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL expone la vida del access token (expires_in de la respuesta).
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL expone la vida del refresh token (expiración del registro).
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssueAccess emite un access token para el usuario con su rol primario.
func (i *Issuer) IssueAccess(userID, role, companyID string) (string, error) {
	now := i.now().UTC()
	claims := AccessClaims{
		Role:      role,
		CompanyID: companyID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.iss,
			Audience:  jwtv5.ClaimStrings{i.aud},
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(i.accessTTL)),
			ID:        uuid.NewString(),
		},
	}
	return i.sign(claims)
}

// IssueRefresh emite un refresh token nuevo. Devuelve el token firmado,
// su jti y su expiración; el llamador persiste el hash junto al jti.
func (i *Issuer) IssueRefresh(userID string) (token, jti string, expiresAt time.Time, err error) {
	now := i.now().UTC()
	jti = uuid.NewString()
	expiresAt = now.Add(i.refreshTTL)
	claims := RefreshClaims{
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.iss,
			Audience:  jwtv5.ClaimStrings{i.aud},
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(expiresAt),
			ID:        jti,
		},
	}
	token, err = i.sign(claims)
	return token, jti, expiresAt, err
}

func (i *Issuer) sign(claims jwtv5.Claims) (string, error) {
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["typ"] = "JWT"
	return tk.SignedString(i.keys.Priv)
}
