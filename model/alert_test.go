package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func delivery(sms, email DeliveryStatus) ContactDelivery {
	return ContactDelivery{SMSStatus: sms, EmailStatus: email}
}

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name   string
		ledger []ContactDelivery
		want   AlertStatus
	}{
		{"no contacts", nil, AlertSent},
		{
			"all delivered",
			[]ContactDelivery{
				delivery(DeliverySent, DeliverySent),
				delivery(DeliverySent, DeliverySent),
				delivery(DeliverySent, DeliverySent),
			},
			AlertSent,
		},
		{
			"one sms failed",
			[]ContactDelivery{
				delivery(DeliveryFailed, DeliverySent),
				delivery(DeliverySent, DeliverySent),
				delivery(DeliverySent, DeliverySent),
			},
			AlertPartial,
		},
		{
			"one contact lost entirely",
			[]ContactDelivery{
				delivery(DeliveryFailed, DeliveryFailed),
				delivery(DeliverySent, DeliverySent),
			},
			AlertPartial,
		},
		{
			"everything failed",
			[]ContactDelivery{
				delivery(DeliveryFailed, DeliveryFailed),
				delivery(DeliveryFailed, DeliveryFailed),
				delivery(DeliveryFailed, DeliveryFailed),
			},
			AlertFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.ledger))
		})
	}
}

func TestReasonLabel(t *testing.T) {
	assert.Equal(t, "Safety timer expired without confirmation", ReasonTimerExpired.Label())
	assert.Equal(t, "Panic button activated", ReasonPanicButton.Label())
	assert.Equal(t, "fell_off_bike", AlertReason("fell_off_bike").Label())
	assert.False(t, AlertReason("fell_off_bike").Valid())
}

func TestNewSessionDeadline(t *testing.T) {
	start := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	s := NewSession("s1", "u1", VehicleCab, 10, start)

	assert.Equal(t, start.Add(10*time.Minute), s.ScheduledEndTime)
	assert.Equal(t, SessionActive, s.Status)
	assert.False(t, s.Status.Terminal())
}

func TestVehicleDescriptor(t *testing.T) {
	s := &Session{VehicleType: VehicleCar, VehicleNumber: "KA01AB1234"}
	assert.Equal(t, "CAR (KA01AB1234)", s.VehicleDescriptor())

	s = &Session{VehicleType: VehicleWalk}
	assert.Equal(t, "WALK", s.VehicleDescriptor())
}

func TestLocation(t *testing.T) {
	loc := Location{Latitude: 12.97, Longitude: 77.59}
	assert.NoError(t, loc.Validate())
	assert.Equal(t, "https://www.openstreetmap.org/?mlat=12.97&mlon=77.59#map=15/12.97/77.59", loc.MapLink())

	assert.Error(t, Location{Latitude: 91}.Validate())
	assert.Error(t, Location{Longitude: -181}.Validate())
}
