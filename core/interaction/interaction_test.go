package interaction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection(t *testing.T) {
	s := NewSelection()
	s.Add("b", "a", "c")
	s.Remove("c", "missing")
	assert.Equal(t, []string{"a", "b"}, s.IDs())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Toggle("a"))
	assert.True(t, s.Toggle("z"))
	s.Retain(func(id string) bool { return id != "z" })
	assert.Equal(t, []string{"b"}, s.IDs())
	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestContextMenuShowReplaces(t *testing.T) {
	m := NewContextMenu()
	assert.Equal(t, KindNone, m.Current().Kind)

	m.Show(10, 20, TripTarget{TripID: "T1"})
	m.Show(30, 40, TaskTarget{TaskID: "K1", TripID: "T1"})
	cur := m.Current()
	assert.True(t, cur.Visible)
	assert.Equal(t, KindTask, cur.Kind)
	assert.Equal(t, 30.0, cur.X)
	assert.Equal(t, TaskTarget{TaskID: "K1", TripID: "T1"}, cur.Payload)
}

func TestContextMenuHideKeepsPayload(t *testing.T) {
	m := NewContextMenu()
	m.Show(1, 2, TrackTarget{VehicleID: "V1"})
	m.Hide()
	p, visible := m.Target()
	assert.False(t, visible)
	assert.Equal(t, TrackTarget{VehicleID: "V1"}, p)
	assert.Equal(t, KindTrack, m.Current().Kind)
}

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload(KindTrip, json.RawMessage(`{"tripId":"T9"}`))
	require.NoError(t, err)
	assert.Equal(t, TripTarget{TripID: "T9"}, p)

	_, err = DecodePayload("blank", json.RawMessage(`{}`))
	var uk *UnknownKindError
	require.ErrorAs(t, err, &uk)

	p, err = DecodePayload(KindNone, nil)
	require.NoError(t, err)
	assert.Nil(t, p)
}
