package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles reconocidos por la API del ledger.
const (
	RoleAdmin         = "admin"
	RoleInventario    = "inventario"
	RoleLaboratorista = "laboratorista"
)

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// EmployeeID identifica a quien registra los movimientos; Role alimenta el middleware RBAC.
type Claims struct {
	jwt.RegisteredClaims
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"` // "admin" | "inventario" | "laboratorista"
}

// Generate genera un token JWT firmado que incluye employeeID y role.
func Generate(secret, employeeID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   employeeID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		EmployeeID: employeeID,
		Role:       role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve employeeID y role.
// Si issuer no es vacío el claim iss debe coincidir.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, issuer, tokenString string) (employeeID, role string, err error) {
	if secret == "" {
		return "", "", fmt.Errorf("jwt: secret vacío")
	}
	var opts []jwt.ParserOption
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return "", "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("claims inválidos")
	}
	if claims.EmployeeID == "" {
		claims.EmployeeID = claims.Subject
	}
	return claims.EmployeeID, claims.Role, nil
}
