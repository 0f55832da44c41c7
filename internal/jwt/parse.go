package jwt

import (
	"errors"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Errores tipados de verificación. El llamador decide el mapeo HTTP;
// aquí solo se distingue la causa.
var (
	// ErrTokenMalformed: la cadena no es un JWT parseable.
	ErrTokenMalformed = errors.New("jwt: token malformed")
	// ErrTokenSignature: firma inválida o algoritmo no permitido.
	ErrTokenSignature = errors.New("jwt: invalid signature")
	// ErrTokenExpired: exp vencido o nbf en el futuro.
	ErrTokenExpired = errors.New("jwt: token expired")
	// ErrTokenClaims: issuer o audience no coinciden con el servicio.
	ErrTokenClaims = errors.New("jwt: issuer/audience mismatch")
)

// Verifier valida tokens emitidos por el servicio. Solo necesita la
// clave pública, así que puede vivir en procesos sin acceso a la privada.
type Verifier struct {
	keys *KeyPair
	iss  string
	aud  string
}

// NewVerifier construye un Verifier para la clave activa.
func NewVerifier(keys *KeyPair, iss, aud string) *Verifier {
	return &Verifier{keys: keys, iss: iss, aud: aud}
}

// ParseAccess valida un access token y devuelve sus claims.
func (v *Verifier) ParseAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := v.parse(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefresh valida un refresh token firmado. La validez de firma no
// implica validez de la cadena: el jti todavía debe coincidir con el
// registro activo en el almacén.
func (v *Verifier) ParseRefresh(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := v.parse(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (v *Verifier) parse(raw string, claims jwtv5.Claims) error {
	_, err := jwtv5.ParseWithClaims(raw, claims,
		func(t *jwtv5.Token) (any, error) { return v.keys.Pub, nil },
		jwtv5.WithValidMethods([]string{"EdDSA"}),
		jwtv5.WithIssuer(v.iss),
		jwtv5.WithAudience(v.aud),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, jwtv5.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwtv5.ErrTokenExpired), errors.Is(err, jwtv5.ErrTokenNotValidYet):
		return ErrTokenExpired
	case errors.Is(err, jwtv5.ErrTokenInvalidIssuer), errors.Is(err, jwtv5.ErrTokenInvalidAudience):
		return ErrTokenClaims
	case errors.Is(err, jwtv5.ErrTokenSignatureInvalid), errors.Is(err, jwtv5.ErrTokenUnverifiable):
		return ErrTokenSignature
	default:
		return ErrTokenSignature
	}
}
