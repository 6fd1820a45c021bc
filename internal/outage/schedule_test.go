package outage

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outage-checker/internal/models"
)

func testData(t *testing.T) (models.ScheduleData, models.SchedulePreset) {
	t.Helper()
	var data models.ScheduleData
	var preset models.SchedulePreset
	require.NoError(t, ParseObject(testFact, &data))
	require.NoError(t, ParseObject(testPreset, &preset))
	data.Normalize()
	preset.Normalize()
	return data, preset
}

func TestBuildSchedules(t *testing.T) {
	data, preset := testData(t)

	days, err := BuildSchedules(data, preset, "G1", time.UTC, nil)
	require.NoError(t, err)
	require.Len(t, days, 2)

	first := days[0]
	assert.EqualValues(t, 1700000000, first.Date.Unix(), "earliest date first")
	assert.Equal(t, "14.11.2023", first.DateString())
	assert.Equal(t, "Вівторок", first.DayName)
	assert.Equal(t, "G1", first.Group)
	require.Len(t, first.Hours, 24)

	assert.True(t, first.Hours[0].Status.NoPower())
	assert.True(t, first.Hours[1].Status.HasPower())
	for _, h := range first.Hours[2:] {
		assert.Equal(t, models.StatusYes, h.Status, "hour %d", h.Hour)
	}
	for i, h := range first.Hours {
		assert.Equal(t, i+1, h.Hour)
	}
	assert.Equal(t, "00-01", first.Hours[0].TimeRange)
	assert.Equal(t, "02-03", first.Hours[2].TimeRange)
	assert.Equal(t, "23-24", first.Hours[23].TimeRange)

	second := days[1]
	assert.Equal(t, "Середа", second.DayName)
	assert.Equal(t, []models.OutagePeriod{{Start: "23:00", End: "24:00", Status: models.StatusNo}}, second.OutagePeriods())
}

func TestBuildSchedulesMissingGroup(t *testing.T) {
	data, preset := testData(t)
	days, err := BuildSchedules(data, preset, "G9", time.UTC, nil)
	require.NoError(t, err)
	for _, d := range days {
		assert.Empty(t, d.OutagePeriods())
	}
}

func TestBuildSchedulesTimezone(t *testing.T) {
	kyiv, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)
	data := models.ScheduleData{Data: map[string]map[string]map[string]string{
		"1760562000": {"G1": {}}, // 2025-10-16 00:00 in Kyiv
	}}
	days, err := BuildSchedules(data, models.SchedulePreset{}, "G1", kyiv, nil)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "16.10.2025", days[0].DateString())
}

func TestBuildSchedulesErrors(t *testing.T) {
	_, err := BuildSchedules(models.ScheduleData{Data: map[string]map[string]map[string]string{
		"1700000000": {"G1": {"3": "sometimes"}},
	}}, models.SchedulePreset{}, "G1", time.UTC, nil)
	var pe *ParseError
	assert.True(t, errors.As(err, &pe), "unknown code: %v", err)

	_, err = BuildSchedules(models.ScheduleData{Data: map[string]map[string]map[string]string{
		"today": {},
	}}, models.SchedulePreset{}, "G1", time.UTC, nil)
	assert.True(t, errors.As(err, &pe), "bad timestamp: %v", err)
}

func TestGetScheduleForAddress(t *testing.T) {
	p := newProvider(t, jsonReply(`{"result":true,"data":{"5":{"sub_type_reason":["G1"]}}}`))
	opts := p.options()

	var days []models.DaySchedule
	err := WithClient(opts, func(c *Client) error {
		var err error
		days, err = c.GetScheduleForAddress(context.Background(), models.Address{City: "a", Street: "b", House: "5"})
		return err
	})
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "G1", days[0].Group)
	assert.EqualValues(t, 1, p.pageHits.Load(), "page fetched once per session")
	assert.EqualValues(t, 1, p.ajaxHits.Load())
}

func TestGetScheduleForAddressNotFound(t *testing.T) {
	p := newProvider(t, jsonReply(`{"result":false}`))
	addr := models.Address{City: "a", Street: "b", House: "404"}

	c := NewClient(p.options())
	defer c.Close()

	_, err := c.GetScheduleForAddress(context.Background(), addr)
	var nf *AddressNotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)
	assert.Equal(t, addr, nf.Address)
	assert.Contains(t, err.Error(), "a, b, 404")
}
