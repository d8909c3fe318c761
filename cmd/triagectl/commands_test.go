package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSymptoms = `{"symptoms": [
	{
		"id": "chest_pain",
		"name": "Chest Pain",
		"keywords": ["chest pain", "chest tightness"],
		"urgency": "HIGH",
		"urgency_score": 9,
		"specialties": ["Cardiology", "Emergency Medicine"],
		"first_aid": ["Sit down and rest"],
		"red_flags": ["Pain spreading to arm"],
		"description": "Chest pain can signal a heart problem."
	}
]}`

const testFacilities = `{"hospitals": [
	{
		"id": "h1",
		"name": "City Heart Centre",
		"location": {"lat": 12.975, "lng": 77.600},
		"type": "Private",
		"specialties": ["Cardiology"],
		"emergency_available": true,
		"open_24_7": true,
		"rating": 4.5,
		"phone": "080-1111"
	},
	{
		"id": "h2",
		"name": "Community Clinic",
		"location": {"lat": 12.980, "lng": 77.590},
		"type": "Government",
		"specialties": ["General Medicine", "Cardiology"],
		"emergency_available": false,
		"open_24_7": false,
		"rating": 3.8
	}
]}`

func writeCatalogs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	symptoms := filepath.Join(dir, "symptoms.json")
	facilities := filepath.Join(dir, "facilities.json")
	require.NoError(t, os.WriteFile(symptoms, []byte(testSymptoms), 0o600))
	require.NoError(t, os.WriteFile(facilities, []byte(testFacilities), 0o600))
	return symptoms, facilities
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	symptoms, facilities := writeCatalogs(t)

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--symptoms", symptoms, "--facilities", facilities}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	out, err := execute(t, "analyze", "--format", "json", "sudden", "chest", "pain")
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "HIGH", result["urgency_level"])
	assert.Contains(t, result["recommended_specialties"], "Cardiology")
}

func TestAnalyzeCommand_Text(t *testing.T) {
	out, err := execute(t, "analyze", "chest tightness since morning")
	require.NoError(t, err)
	assert.Contains(t, out, "Urgency:      HIGH")
	assert.Contains(t, out, "Matched:      Chest Pain")
	assert.Contains(t, out, "Sit down and rest")
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	_, err := execute(t, "analyze", "--language", "fr", "chest pain")
	assert.ErrorContains(t, err, "unsupported language")

	_, err = execute(t, "analyze")
	assert.Error(t, err)

	_, err = execute(t, "--format", "xml", "analyze", "chest pain")
	assert.ErrorContains(t, err, "unknown format")
}

func TestFacilitiesCommand(t *testing.T) {
	out, err := execute(t, "facilities", "--format", "json",
		"--specialty", "Cardiology", "--urgency", "HIGH", "--lat", "12.97", "--lng", "77.59")
	require.NoError(t, err)

	var ranked []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &ranked))
	require.Len(t, ranked, 1)
	assert.Equal(t, "h1", ranked[0]["id"])
}

func TestFacilitiesCommand_Filters(t *testing.T) {
	out, err := execute(t, "facilities", "--format", "json", "--specialty", "Cardiology", "--type", "government")
	require.NoError(t, err)

	var ranked []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &ranked))
	require.Len(t, ranked, 1)
	assert.Equal(t, "h2", ranked[0]["id"])

	_, err = execute(t, "facilities", "--urgency", "URGENT")
	assert.ErrorContains(t, err, "urgency must be")

	_, err = execute(t, "facilities", "--max-distance=-1")
	assert.ErrorContains(t, err, "max-distance")
}

func TestEmergencyCommand(t *testing.T) {
	out, err := execute(t, "emergency", "--lat", "12.97", "--lng", "77.59")
	require.NoError(t, err)
	assert.Contains(t, out, "City Heart Centre")
	assert.Contains(t, out, "080-1111")
	assert.NotContains(t, out, "Community Clinic")

	_, err = execute(t, "emergency", "--lat", "12.97")
	assert.ErrorContains(t, err, "--lat and --lng are required")

	_, err = execute(t, "emergency", "--lat", "12.97", "--lng", "77.59", "--max", "50")
	assert.ErrorContains(t, err, "--max must be between")
}

func TestStatsCommand(t *testing.T) {
	out, err := execute(t, "stats", "--format", "json")
	require.NoError(t, err)

	var stats struct {
		Facilities struct {
			Total     int `json:"total_hospitals"`
			Emergency int `json:"emergency_hospitals"`
		} `json:"facilities"`
		Symptoms int `json:"symptoms"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 2, stats.Facilities.Total)
	assert.Equal(t, 1, stats.Facilities.Emergency)
	assert.Equal(t, 1, stats.Symptoms)
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "symptoms")
	assert.Contains(t, out, "active")

	_, err = execute(t, "--facilities", filepath.Join(t.TempDir(), "missing.json"), "validate")
	assert.ErrorContains(t, err, "catalog validation failed")
}
