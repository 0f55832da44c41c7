package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// parámetros bajos para la suite
var testParams = Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashAndVerify(t *testing.T) {
	phc, err := Hash(testParams, "hunter2 but longer")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(phc, "$argon2id$"))

	require.True(t, Verify("hunter2 but longer", phc))
	require.False(t, Verify("hunter2 but wrong", phc))
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash(testParams, "same password here")
	require.NoError(t, err)
	b, err := Hash(testParams, "same password here")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyGarbage(t *testing.T) {
	require.False(t, Verify("whatever", "not-a-phc-string"))
	require.False(t, Verify("whatever", ""))
}

// el parser del PHC string tiene que separar por "$": con Sscanf y %s el
// salt y el dk quedaban pegados y Verify rechazaba hasta el password correcto.
func TestVerifyParsesPHCSegments(t *testing.T) {
	phc, err := Hash(testParams, "correct horse battery")
	require.NoError(t, err)
	require.Len(t, strings.Split(phc, "$"), 6)
	require.True(t, Verify("correct horse battery", phc))

	require.False(t, Verify("correct horse battery", strings.Replace(phc, "argon2id", "argon2i", 1)))
	require.False(t, Verify("correct horse battery", strings.Replace(phc, "v=19", "v=16", 1)))
	require.False(t, Verify("correct horse battery", phc+"$extra"))
}

func TestPolicy(t *testing.T) {
	p := Policy{MinLength: 12}
	require.True(t, p.Validate("exactly 12 c"))
	require.False(t, p.Validate("short"))
	require.False(t, p.Validate(""))
}
