package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct{ signedIn bool }

func (f *fakeSession) SignedIn() bool { return f.signedIn }

func TestMachineStartsOnBrowse(t *testing.T) {
	m := NewMachine(&fakeSession{})
	assert.Equal(t, Browse, m.Page())
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestMachineDetailRoundTrip(t *testing.T) {
	m := NewMachine(&fakeSession{})

	require.True(t, m.SelectItem("42"))
	assert.Equal(t, Detail, m.Page())
	id, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "42", id)

	// Selecting again is only valid from Browse
	assert.False(t, m.SelectItem("43"))

	require.True(t, m.Back())
	assert.Equal(t, Browse, m.Page())
	_, ok = m.Selected()
	assert.False(t, ok)
	assert.False(t, m.Back())
}

func TestMachineAdminGuardThenDirectAfterSignIn(t *testing.T) {
	sess := &fakeSession{}
	m := NewMachine(sess)

	assert.Equal(t, Login, m.RequestAdmin())
	require.True(t, m.CancelLogin())
	assert.Equal(t, Browse, m.Page())

	assert.Equal(t, Login, m.RequestAdmin())
	sess.signedIn = true
	require.True(t, m.LoginSucceeded())
	assert.Equal(t, Admin, m.Page())

	m.Home()
	assert.Equal(t, Admin, m.RequestAdmin())
}

func TestMachineRequestAdminFromDetailClearsSelection(t *testing.T) {
	m := NewMachine(&fakeSession{signedIn: true})
	require.True(t, m.SelectItem("7"))

	assert.Equal(t, Admin, m.RequestAdmin())
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestMachineRequestAdminIgnoredOnLogin(t *testing.T) {
	sess := &fakeSession{}
	m := NewMachine(sess)
	m.RequestAdmin()

	sess.signedIn = true
	assert.Equal(t, Login, m.RequestAdmin())
}

func TestMachineAddFormIsAdminOnly(t *testing.T) {
	m := NewMachine(&fakeSession{signedIn: true})
	assert.False(t, m.OpenAddForm())

	m.RequestAdmin()
	require.True(t, m.OpenAddForm())
	assert.True(t, m.AddFormOpen())

	m.Home()
	assert.False(t, m.AddFormOpen())

	m.RequestAdmin()
	assert.False(t, m.AddFormOpen())
}

func TestMachineSignedOutReturnsHome(t *testing.T) {
	m := NewMachine(&fakeSession{signedIn: true})
	m.RequestAdmin()
	m.OpenAddForm()

	m.SignedOut()
	assert.Equal(t, Browse, m.Page())
	assert.False(t, m.AddFormOpen())
}

func TestMachineLoginTransitionsOnlyFromLogin(t *testing.T) {
	m := NewMachine(&fakeSession{})
	assert.False(t, m.LoginSucceeded())
	assert.False(t, m.CancelLogin())
	assert.Equal(t, Browse, m.Page())
}
