package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	apperrors "github.com/zatekoja/elastic-opd/pkg/errors"
)

func TestTokenPrefix(t *testing.T) {
	assert.Equal(t, "CAR", (&Doctor{Department: "Cardiology"}).TokenPrefix())
	assert.Equal(t, "GEN", (&Doctor{Department: "general medicine"}).TokenPrefix())
	assert.Equal(t, "GI", (&Doctor{Department: "GI"}).TokenPrefix())
}

func TestConsultationInterval(t *testing.T) {
	doctor := &Doctor{AvgConsultationTime: 15}
	assert.Equal(t, 15*time.Minute, doctor.ConsultationInterval())
}

func TestDoctorValidate(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	valid := &Doctor{
		Name:                "Dr. Rao",
		Department:          "Cardiology",
		AvgConsultationTime: 10,
		ActiveSlots: []Slot{
			{Start: start, End: start.Add(time.Hour), MaxCapacity: 5},
		},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Doctor)
	}{
		{"missing name", func(d *Doctor) { d.Name = " " }},
		{"missing department", func(d *Doctor) { d.Department = "" }},
		{"zero avg time", func(d *Doctor) { d.AvgConsultationTime = 0 }},
		{"no slots", func(d *Doctor) { d.ActiveSlots = nil }},
		{"inverted slot", func(d *Doctor) {
			d.ActiveSlots = []Slot{{Start: start.Add(time.Hour), End: start, MaxCapacity: 5}}
		}},
		{"zero capacity", func(d *Doctor) {
			d.ActiveSlots = []Slot{{Start: start, End: start.Add(time.Hour), MaxCapacity: 0}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doctor := *valid
			tt.mutate(&doctor)
			err := doctor.Validate()
			assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
		})
	}
}
