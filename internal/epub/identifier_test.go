package epub

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uuidV4Pattern = regexp.MustCompile(
	`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestNewPackageIDIsVersion4(t *testing.T) {
	for range 1000 {
		id, err := NewPackageID()
		require.NoError(t, err)
		assert.Regexp(t, uuidV4Pattern, string(id))
	}
}

func TestNewPackageIDUnique(t *testing.T) {
	seen := make(map[PackageID]struct{}, 1000)
	for range 1000 {
		id, err := NewPackageID()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate identifier %s", id)
		seen[id] = struct{}{}
	}
}

func TestPackageIDURN(t *testing.T) {
	id, err := NewPackageID()
	require.NoError(t, err)
	urn := id.URN()
	assert.True(t, strings.HasPrefix(urn, "urn:uuid:"))
	assert.Equal(t, string(id), strings.TrimPrefix(urn, "urn:uuid:"))
}
