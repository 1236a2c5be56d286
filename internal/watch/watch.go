// Package watch subscribes to the edge MQTT broker and feeds two paths:
// vehicle telemetry into the telemetry store, and safety events
// (inactivity timeouts, geofence exits) into automated session closures.
// It is the only component that constructs the system actor.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/forklift-safety/internal/db"
	"github.com/ukydev/forklift-safety/internal/models"
	"github.com/ukydev/forklift-safety/internal/session"
)

// Safety event types published by edge units.
const (
	EventInactivityTimeout = "inactivity_timeout"
	EventGeofenceExit      = "geofence_exit"
)

// SafetyEvent is the payload on the safety topic.
type SafetyEvent struct {
	BusinessID string           `json:"business_id"`
	VehicleID  string           `json:"vehicle_id"`
	Type       string           `json:"type"`
	Location   *models.Location `json:"location,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Lifecycle is the part of the session service the watcher uses.
type Lifecycle interface {
	ActiveForVehicle(ctx context.Context, vehicleID, businessID string) *models.Session
	End(ctx context.Context, actor session.Actor, sessionID string, method models.CloseMethod, opts session.EndOptions) (*models.Session, error)
}

// Watcher consumes edge messages and applies them.
type Watcher struct {
	client    mqtt.Client
	sessions  Lifecycle
	telemetry db.TelemetryCollection
	log       *logrus.Entry

	telemetryTopic string
	safetyTopic    string
}

// Connect opens an MQTT client against the given broker.
func Connect(brokerURL, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", brokerURL, err)
	}
	return client, nil
}

// New creates a watcher over an already-connected client.
func New(client mqtt.Client, sessions Lifecycle, telemetry db.TelemetryCollection, telemetryTopic, safetyTopic string) *Watcher {
	return &Watcher{
		client:         client,
		sessions:       sessions,
		telemetry:      telemetry,
		log:            logrus.WithField("component", "watch"),
		telemetryTopic: telemetryTopic,
		safetyTopic:    safetyTopic,
	}
}

// Start subscribes to the telemetry and safety topics.
func (w *Watcher) Start() error {
	if token := w.client.Subscribe(w.telemetryTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		w.HandleTelemetry(context.Background(), msg.Payload())
	}); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", w.telemetryTopic, token.Error())
	}

	if token := w.client.Subscribe(w.safetyTopic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		w.HandleSafetyEvent(context.Background(), msg.Payload())
	}); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", w.safetyTopic, token.Error())
	}

	w.log.WithFields(logrus.Fields{
		"telemetry_topic": w.telemetryTopic,
		"safety_topic":    w.safetyTopic,
	}).Info("watcher subscribed")
	return nil
}

// Stop disconnects the MQTT client.
func (w *Watcher) Stop() {
	w.client.Disconnect(250)
}

// HandleTelemetry stores one telemetry report. Malformed payloads are
// logged and dropped.
func (w *Watcher) HandleTelemetry(ctx context.Context, payload []byte) {
	var telemetry models.Telemetry
	if err := json.Unmarshal(payload, &telemetry); err != nil {
		w.log.WithError(err).Warn("dropping malformed telemetry payload")
		return
	}
	if telemetry.VehicleID == "" {
		w.log.Warn("dropping telemetry without vehicle id")
		return
	}
	if telemetry.Timestamp.IsZero() {
		telemetry.Timestamp = time.Now()
	}

	if err := w.telemetry.InsertTelemetry(ctx, telemetry); err != nil {
		w.log.WithError(err).WithField("vehicle_id", telemetry.VehicleID).Error("failed to store telemetry")
	}
}

// HandleSafetyEvent closes the vehicle's active session in response to an
// edge safety event. A vehicle with no open session is not an error;
// timeout and geofence units fire regardless of occupancy.
func (w *Watcher) HandleSafetyEvent(ctx context.Context, payload []byte) {
	var event SafetyEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		w.log.WithError(err).Warn("dropping malformed safety event")
		return
	}

	var method models.CloseMethod
	switch event.Type {
	case EventInactivityTimeout:
		method = models.CloseByTimeout
	case EventGeofenceExit:
		method = models.CloseByGeofence
	default:
		w.log.WithField("type", event.Type).Warn("dropping unknown safety event type")
		return
	}

	if event.VehicleID == "" || event.BusinessID == "" {
		w.log.Warn("dropping safety event without vehicle or business id")
		return
	}

	active := w.sessions.ActiveForVehicle(ctx, event.VehicleID, event.BusinessID)
	if active == nil {
		w.log.WithFields(logrus.Fields{
			"vehicle_id": event.VehicleID,
			"type":       event.Type,
		}).Debug("safety event for vehicle with no open session")
		return
	}

	actor := session.SystemActor(event.BusinessID)
	_, err := w.sessions.End(ctx, actor, active.ID.Hex(), method, session.EndOptions{
		Location: event.Location,
		Notes:    fmt.Sprintf("closed automatically: %s", event.Type),
	})
	if err != nil {
		w.log.WithError(err).WithFields(logrus.Fields{
			"session_id": active.ID.Hex(),
			"vehicle_id": event.VehicleID,
			"type":       event.Type,
		}).Error("automated session closure failed")
		return
	}

	w.log.WithFields(logrus.Fields{
		"session_id": active.ID.Hex(),
		"vehicle_id": event.VehicleID,
		"type":       event.Type,
	}).Info("session closed by safety event")
}
