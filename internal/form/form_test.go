package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormHasNoVisibleErrors(t *testing.T) {
	f := New()

	assert.Empty(t, f.VisibleErrors())
	assert.Equal(t, 3, f.Errors().Count(), "required fields are invalid before any input")
	assert.False(t, f.Valid())

	_, ok := f.Submitted()
	assert.False(t, ok)
}

func TestSubmitEmptyFormShowsThreeErrors(t *testing.T) {
	f := New()

	ok := f.Submit()

	assert.False(t, ok)
	errs := f.VisibleErrors()
	require.Equal(t, 3, errs.Count())
	assert.Equal(t, "firstName must have at least 5 characters.", errs[FieldFirstName])
	assert.Equal(t, MsgLastNameRequired, errs[FieldLastName])
	assert.Equal(t, MsgEmailRequired, errs[FieldEmail])
	assert.False(t, errs.Has(FieldMessage))
}

func TestShortFirstNameShowsOneError(t *testing.T) {
	for _, name := range []string{"a", "ab", "abc", "abcd"} {
		t.Run(name, func(t *testing.T) {
			f := New()
			require.NoError(t, f.Change(FieldFirstName, name))

			errs := f.VisibleErrors()
			require.Equal(t, 1, errs.Count())
			assert.Equal(t, "firstName must have at least 5 characters.", errs[FieldFirstName])
		})
	}
}

func TestTypingKeystrokesRevalidates(t *testing.T) {
	f := New()

	typed := ""
	for _, r := range "Jonny" {
		typed += string(r)
		require.NoError(t, f.Change(FieldFirstName, typed))
		if len(typed) < 5 {
			assert.True(t, f.VisibleErrors().Has(FieldFirstName), "after %q", typed)
		}
	}

	assert.Empty(t, f.VisibleErrors())
}

func TestMissingEmailShowsOneErrorOnSubmit(t *testing.T) {
	f := New()
	require.NoError(t, f.Change(FieldFirstName, "Jonny"))
	require.NoError(t, f.Change(FieldLastName, "Bravo"))

	assert.False(t, f.Submit())

	errs := f.VisibleErrors()
	require.Equal(t, 1, errs.Count())
	assert.Equal(t, MsgEmailRequired, errs[FieldEmail])
}

func TestMalformedEmailShowsInvalidMessage(t *testing.T) {
	f := New()
	require.NoError(t, f.Change(FieldEmail, "somee@amil"))

	errs := f.VisibleErrors()
	require.Equal(t, 1, errs.Count())
	assert.Equal(t, "email must be a valid email address.", errs[FieldEmail])
}

func TestMissingLastNameOnSubmit(t *testing.T) {
	f := New()
	require.NoError(t, f.Change(FieldFirstName, "Jonny"))
	require.NoError(t, f.Change(FieldEmail, "jonny@bravo.com"))

	assert.False(t, f.Submit())
	assert.Equal(t, "lastName is a required field.", f.VisibleErrors()[FieldLastName])
	assert.Equal(t, 1, f.VisibleErrors().Count())
}

func TestValidSubmitWithoutMessage(t *testing.T) {
	f := New()
	f.Fill(Values{FirstName: "Jonny", LastName: "Bravo", Email: "jonny@bravo.com"})

	require.True(t, f.Submit())

	got, ok := f.Submitted()
	require.True(t, ok)
	assert.Equal(t, Values{FirstName: "Jonny", LastName: "Bravo", Email: "jonny@bravo.com"}, got)
	assert.Empty(t, got.Message)
	assert.Empty(t, f.VisibleErrors())
}

func TestValidSubmitWithMessage(t *testing.T) {
	f := New()
	want := Values{FirstName: "Jonny", LastName: "Bravo", Email: "jonny@bravo.com", Message: "Whoa, mama!"}
	f.Fill(want)

	require.True(t, f.Submit())

	got, ok := f.Submitted()
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFailedSubmitKeepsPreviousSnapshot(t *testing.T) {
	f := New()
	first := Values{FirstName: "Jonny", LastName: "Bravo", Email: "jonny@bravo.com"}
	f.Fill(first)
	require.True(t, f.Submit())

	require.NoError(t, f.Change(FieldEmail, "broken"))
	assert.False(t, f.Submit())

	got, ok := f.Submitted()
	require.True(t, ok)
	assert.Equal(t, first, got)
	assert.Equal(t, 2, f.Attempts())
}

func TestSnapshotIsACopy(t *testing.T) {
	f := New()
	f.Fill(Values{FirstName: "Jonny", LastName: "Bravo", Email: "jonny@bravo.com"})
	require.True(t, f.Submit())

	require.NoError(t, f.Change(FieldFirstName, "Johnny"))

	got, _ := f.Submitted()
	assert.Equal(t, "Jonny", got.FirstName)
	assert.Equal(t, "Johnny", f.Values().FirstName)
}

func TestChangeUnknownField(t *testing.T) {
	f := New()

	err := f.Change(Field("phone"), "555")

	require.ErrorIs(t, err, ErrUnknownField)
	assert.Empty(t, f.VisibleErrors())
}

func TestReset(t *testing.T) {
	f := New()
	f.Fill(Values{FirstName: "Jonny", LastName: "Bravo", Email: "jonny@bravo.com"})
	require.True(t, f.Submit())

	f.Reset()

	assert.Equal(t, Values{}, f.Values())
	assert.Empty(t, f.VisibleErrors())
	assert.Zero(t, f.Attempts())
	_, ok := f.Submitted()
	assert.False(t, ok)
}

func TestStateExposesVisibleErrorsOnly(t *testing.T) {
	f := New()
	require.NoError(t, f.Change(FieldEmail, "nope"))

	s := f.State()

	assert.Equal(t, Errors{FieldEmail: MsgEmailInvalid}, s.Errors)
	assert.Nil(t, s.Submitted)
	assert.Equal(t, "nope", s.Values.Email)
}

func TestWithRules(t *testing.T) {
	f := New(WithRules(Rules{FirstNameMinLength: 2}))
	require.NoError(t, f.Change(FieldFirstName, "Al"))

	assert.False(t, f.VisibleErrors().Has(FieldFirstName))

	require.NoError(t, f.Change(FieldFirstName, "A"))
	assert.Equal(t, "firstName must have at least 2 characters.", f.VisibleErrors()[FieldFirstName])
}
