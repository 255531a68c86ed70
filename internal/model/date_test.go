package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSONRoundTrip(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	require.NoError(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-15"`, string(data))

	var parsed Date
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, d, parsed)
}

func TestDateUnmarshalRejectsBadFormat(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"15/03/2026"`), &d))
}

func TestDateUnmarshalNullIsNoop(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
}

func TestDateOfTruncates(t *testing.T) {
	ts := time.Date(2026, 3, 15, 17, 42, 9, 0, time.UTC)
	d := DateOf(ts)
	assert.Equal(t, "2026-03-15", d.String())
	assert.Equal(t, 0, d.Hour())
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-03-15", d.String())

	var fromString Date
	require.NoError(t, fromString.Scan("2026-03-15"))
	assert.Equal(t, d, fromString)

	var bad Date
	assert.Error(t, bad.Scan(42))
}

func TestStatusValidators(t *testing.T) {
	assert.True(t, ValidAppointmentStatus(AppointmentScheduled))
	assert.True(t, ValidAppointmentStatus(AppointmentCompleted))
	assert.True(t, ValidAppointmentStatus(AppointmentCancelled))
	assert.False(t, ValidAppointmentStatus("rescheduled"))

	assert.True(t, ValidFollowUpStatus(FollowUpOpen))
	assert.True(t, ValidFollowUpStatus(FollowUpCompleted))
	assert.False(t, ValidFollowUpStatus("closed"))
}
