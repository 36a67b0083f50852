package gedcom

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseAddGetRemove(t *testing.T) {
	db := NewDatabase()
	require.NoError(t, db.Add("@I1@", &IndividualRecord{}))
	require.NoError(t, db.Add("F1", &FamilyRecord{}))

	err := db.Add("I1", &IndividualRecord{})
	assert.True(t, errors.Is(err, ErrDuplicateXref))
	assert.Error(t, db.Add("", &NoteRecord{}))

	assert.NotNil(t, db.Individual("I1"))
	assert.NotNil(t, db.Individual("@I1@"))
	assert.Nil(t, db.Individual("F1"))
	assert.NotNil(t, db.Family("F1"))
	assert.Equal(t, 2, db.Len())
	assert.Equal(t, "I1", db.Records()[0].Base().XrefID)
	assert.Same(t, db, db.Individual("I1").Database())

	assert.True(t, db.Remove("I1"))
	assert.False(t, db.Remove("I1"))
	assert.Equal(t, 1, db.Len())
	assert.Len(t, db.Records(), 1)
}

func TestDatabaseGenerateXref(t *testing.T) {
	db := NewDatabase()
	require.NoError(t, db.Add("I1", &IndividualRecord{}))
	require.NoError(t, db.Add("I3", &IndividualRecord{}))
	x := db.GenerateXref("I")
	_, taken := db.Get(x)
	assert.False(t, taken)
	assert.Equal(t, "I4", x)
}

func TestDatabasePlaces(t *testing.T) {
	db := NewDatabase()
	a := db.InternPlace("Girona")
	b := db.InternPlace("GIRONA")
	db.InternPlace("Girona")
	db.InternPlace("Vic")
	assert.Equal(t, "Girona", a)
	assert.Equal(t, "GIRONA", b)
	assert.Equal(t, []PlaceUsage{{Name: "GIRONA", Count: 1}, {Name: "Girona", Count: 2}, {Name: "Vic", Count: 1}}, db.PlaceUsage())
}

func TestDateTextSetterMarksChange(t *testing.T) {
	db := NewDatabase()
	ev := &EventRecord{EventType: EventBirth}
	ev.db = db
	ev.SetDateText("BET 1820 AND 1825")
	require.NotNil(t, ev.Date)
	assert.Equal(t, "BET 1820 AND 1825", ev.DateText())
	require.NotNil(t, ev.ChangeDate)

	ev.SetDateText("ABT 1830")
	assert.Equal(t, "ABT 1830", ev.DateText())
	assert.NotNil(t, ev.Date.ChangeDate)
}
