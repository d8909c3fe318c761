package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

func TestRecallAtK(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		k         int
		want      float64
	}{
		{"all found", []string{"Cardiology", "Emergency Medicine"}, []string{"Emergency Medicine", "Cardiology"}, 3, 1.0},
		{"case-insensitive", []string{"cardiology"}, []string{"Cardiology"}, 3, 1.0},
		{"half found", []string{"Cardiology", "Pulmonology"}, []string{"Cardiology", "General Medicine"}, 3, 0.5},
		{"outside cutoff", []string{"Neurology"}, []string{"a", "b", "c", "Neurology"}, 3, 0.0},
		{"nothing retrieved", []string{"Neurology"}, nil, 3, 0.0},
		{"no relevant", nil, []string{"Neurology"}, 3, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RecallAtK(tt.relevant, tt.retrieved, tt.k), 1e-9)
		})
	}
}

func TestMRRAtK(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []string
		retrieved []string
		want      float64
	}{
		{"first position", []string{"Cardiology"}, []string{"Cardiology", "Neurology"}, 1.0},
		{"second position", []string{"Neurology"}, []string{"Cardiology", "neurology"}, 0.5},
		{"third position", []string{"Dermatology"}, []string{"a", "b", "Dermatology"}, 1.0 / 3.0},
		{"beyond cutoff", []string{"Dermatology"}, []string{"a", "b", "c", "Dermatology"}, 0.0},
		{"empty", []string{"Dermatology"}, nil, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MRRAtK(tt.relevant, tt.retrieved, 3), 1e-9)
		})
	}
}

func TestUnderTriaged(t *testing.T) {
	assert.True(t, UnderTriaged(entities.UrgencyHigh, entities.UrgencyMedium))
	assert.True(t, UnderTriaged(entities.UrgencyHigh, entities.UrgencyLow))
	assert.False(t, UnderTriaged(entities.UrgencyHigh, entities.UrgencyHigh))
	assert.False(t, UnderTriaged(entities.UrgencyMedium, entities.UrgencyLow))
}
