package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/pkg/jwt"
)

const testSecret = "secreto-de-pruebas"

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := jwt.Generate(testSecret, "E1", jwt.RoleInventario, "labstock", 5)
	require.NoError(t, err)

	employeeID, role, err := jwt.Parse(testSecret, "labstock", token)
	require.NoError(t, err)
	assert.Equal(t, "E1", employeeID)
	assert.Equal(t, jwt.RoleInventario, role)
}

func TestParse_Rechazos(t *testing.T) {
	token, err := jwt.Generate(testSecret, "E1", jwt.RoleAdmin, "labstock", 5)
	require.NoError(t, err)

	_, _, err = jwt.Parse("otro-secreto", "labstock", token)
	assert.Error(t, err, "firma incorrecta")

	_, _, err = jwt.Parse(testSecret, "otro-emisor", token)
	assert.Error(t, err, "emisor distinto")

	expired, err := jwt.Generate(testSecret, "E1", jwt.RoleAdmin, "labstock", -1)
	require.NoError(t, err)
	_, _, err = jwt.Parse(testSecret, "labstock", expired)
	assert.Error(t, err, "token expirado")

	_, _, err = jwt.Parse("", "", token)
	assert.Error(t, err, "secret vacío")
}
