package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/duynguyendang/implica/pkg/common/errors"
	"github.com/duynguyendang/implica/pkg/typing"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewGraphManager()

	worksAt, err := typing.NewConstant("worksAt", "Person -> Company")
	require.NoError(t, err)
	require.NoError(t, m.Create(DefaultGraph, worksAt))

	g, err := m.Get("")
	require.NoError(t, err)
	assert.Equal(t, 1, g.Constants().Len())

	require.NoError(t, m.Create("people"))
	metas := m.List()
	require.Len(t, metas, 2)
	assert.Equal(t, DefaultGraph, metas[0].Name)
	assert.Equal(t, "people", metas[1].Name)
}

func TestManagerErrors(t *testing.T) {
	m := NewGraphManager()
	require.NoError(t, m.Create(DefaultGraph))

	assert.ErrorIs(t, m.Create(DefaultGraph), apperrors.ErrAlreadyBound)
	assert.ErrorIs(t, m.Create(""), apperrors.ErrEmptyName)

	_, err := m.Get("defalut")
	require.ErrorIs(t, err, apperrors.ErrElementNotFound)
	assert.Contains(t, err.Error(), "default")
}
