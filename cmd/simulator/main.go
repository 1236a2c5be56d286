// Simulator drives the forklift safety API the way a warehouse full of
// operators would: it registers users, seeds vehicles, submits pre-shift
// checks, starts and ends sessions, and publishes telemetry and safety
// events over MQTT so the server's automated closure path gets exercised.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Telemetry mirrors the server's telemetry payload.
type Telemetry struct {
	BusinessID   string    `json:"business_id"`
	VehicleID    string    `json:"vehicle_id"`
	Timestamp    time.Time `json:"timestamp"`
	Location     Location  `json:"location"`
	Speed        float64   `json:"speed"`
	BatteryLevel *float64  `json:"battery_level,omitempty"`
	Hours        float64   `json:"hours"`
}

// SafetyEvent mirrors the server's safety event payload.
type SafetyEvent struct {
	BusinessID string    `json:"business_id"`
	VehicleID  string    `json:"vehicle_id"`
	Type       string    `json:"type"`
	Location   *Location `json:"location,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Warehouse sites for realistic forklift positions
var sites = []Location{
	{Lat: 51.5074, Lon: -0.1278},   // London DC
	{Lat: 40.7128, Lon: -74.0060},  // New York DC
	{Lat: 52.5200, Lon: 13.4050},   // Berlin DC
	{Lat: 41.0082, Lon: 28.9784},   // Istanbul DC
	{Lat: 34.0522, Lon: -118.2437}, // Los Angeles DC
	{Lat: 1.3521, Lon: 103.8198},   // Singapore DC
	{Lat: -23.5505, Lon: -46.6333}, // São Paulo DC
	{Lat: 43.6532, Lon: -79.3832},  // Toronto DC
}

func jitterLocation(base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rand.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rand.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

func siteLocation() Location {
	base := sites[rand.Intn(len(sites))]
	return jitterLocation(base, 150) // stay inside the yard
}

var checklistItems = []string{
	"brakes", "horn", "forks", "mast chains", "tires", "seat belt",
	"hydraulics", "battery connections", "warning lights",
}

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) do(method, path string, payload interface{}, out interface{}) (int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, err
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%s %s: %s", method, path, string(bytes.TrimSpace(data)))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
}

// ensureUser registers the user, falling back to login if it already exists.
func ensureUser(c *apiClient, businessID, username, role string) (string, error) {
	password := "simulator-pass-123"
	var resp loginResponse
	_, err := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"business_id": businessID,
		"username":    username,
		"email":       username + "@sim.example.com",
		"password":    password,
		"first_name":  "Sim",
		"last_name":   username,
		"role":        role,
	}, &resp)
	if err != nil {
		if _, err := c.do(http.MethodPost, "/api/auth/login", map[string]string{
			"username": username,
			"password": password,
		}, &resp); err != nil {
			return "", err
		}
	}
	c.token = resp.Token
	return resp.User.ID, nil
}

func createVehicle(c *apiClient, serial string) (string, error) {
	var vehicle struct {
		ID string `json:"id"`
	}
	makes := []string{"Toyota", "Hyster", "Crown", "Linde", "Jungheinrich"}
	_, err := c.do(http.MethodPost, "/api/vehicles/create", map[string]interface{}{
		"serial_number":    serial,
		"make":             makes[rand.Intn(len(makes))],
		"model":            fmt.Sprintf("FL-%d", 100+rand.Intn(900)),
		"year":             2018 + rand.Intn(8),
		"current_location": siteLocation(),
	}, &vehicle)
	return vehicle.ID, err
}

func submitCheck(c *apiClient, vehicleID string, pass bool) (string, string, error) {
	items := make([]map[string]interface{}, 0, len(checklistItems))
	for i, name := range checklistItems {
		passed := true
		if !pass && i == rand.Intn(len(checklistItems)) {
			passed = false
		}
		items = append(items, map[string]interface{}{"name": name, "passed": passed})
	}

	var check struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	_, err := c.do(http.MethodPost, "/api/checks/submit", map[string]interface{}{
		"vehicle_id": vehicleID,
		"items":      items,
	}, &check)
	return check.ID, check.Status, err
}

func startSession(c *apiClient, vehicleID, checkID string, loc Location) (string, error) {
	var session struct {
		ID string `json:"id"`
	}
	_, err := c.do(http.MethodPost, "/api/sessions/start", map[string]interface{}{
		"vehicle_id": vehicleID,
		"check_id":   checkID,
		"location":   loc,
	}, &session)
	return session.ID, err
}

func endSession(c *apiClient, sessionID string, loc Location) error {
	_, err := c.do(http.MethodPost, "/api/sessions/end", map[string]interface{}{
		"session_id":   sessionID,
		"close_method": "USER_CLOSED",
		"notes":        "shift complete",
		"location":     loc,
	}, nil)
	return err
}

func connectMQTT(broker string) mqtt.Client {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("forklift-sim-%d", rand.Intn(100000))).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Fatal("mqtt connect failed")
	}
	return client
}

func publishJSON(client mqtt.Client, topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("marshal publish payload")
		return
	}
	if token := client.Publish(topic, 0, false, data); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).WithField("topic", topic).Error("publish failed")
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	apiURL := getenv("API_URL", "http://localhost:8080")
	broker := getenv("MQTT_BROKER", "tcp://localhost:1883")
	telemetryTopic := getenv("MQTT_TELEMETRY_TOPIC", "fleet/telemetry")
	safetyTopic := getenv("MQTT_SAFETY_TOPIC", "fleet/safety")
	businessID := getenv("BUSINESS_ID", "sim-business")
	cycles, _ := strconv.Atoi(getenv("SIM_CYCLES", "20"))
	if cycles <= 0 {
		cycles = 20
	}

	admin := newAPIClient(apiURL)
	if _, err := ensureUser(admin, businessID, "sim-admin", "admin"); err != nil {
		log.WithError(err).Fatal("failed to provision admin")
	}

	operator := newAPIClient(apiURL)
	if _, err := ensureUser(operator, businessID, "sim-operator", "operator"); err != nil {
		log.WithError(err).Fatal("failed to provision operator")
	}

	vehicleID, err := createVehicle(admin, fmt.Sprintf("SIM-%06d", rand.Intn(1000000)))
	if err != nil {
		log.WithError(err).Fatal("failed to create vehicle")
	}
	log.WithField("vehicle_id", vehicleID).Info("vehicle created")

	mqttClient := connectMQTT(broker)
	defer mqttClient.Disconnect(250)

	for cycle := 0; cycle < cycles; cycle++ {
		loc := siteLocation()

		checkID, status, err := submitCheck(operator, vehicleID, rand.Float64() > 0.1)
		if err != nil {
			log.WithError(err).Error("check submission failed")
			continue
		}
		if status != "APPROVED" {
			log.WithField("check_id", checkID).Info("check rejected, operator retries next cycle")
			continue
		}

		sessionID, err := startSession(operator, vehicleID, checkID, loc)
		if err != nil {
			log.WithError(err).Error("session start failed")
			continue
		}
		log.WithField("session_id", sessionID).Info("session started")

		// A short burst of telemetry while the forklift works.
		battery := 20 + rand.Float64()*80
		for i := 0; i < 5; i++ {
			loc = jitterLocation(loc, 25)
			publishJSON(mqttClient, telemetryTopic, Telemetry{
				BusinessID:   businessID,
				VehicleID:    vehicleID,
				Timestamp:    time.Now(),
				Location:     loc,
				Speed:        rand.Float64() * 12,
				BatteryLevel: &battery,
				Hours:        float64(cycle) + float64(i)/10,
			})
			time.Sleep(200 * time.Millisecond)
		}

		if rand.Float64() < 0.2 {
			// Leave the session open and let the geofence watcher close it.
			publishJSON(mqttClient, safetyTopic, SafetyEvent{
				BusinessID: businessID,
				VehicleID:  vehicleID,
				Type:       "geofence_exit",
				Location:   &loc,
				Timestamp:  time.Now(),
			})
			log.WithField("session_id", sessionID).Info("published geofence exit, server closes session")
			time.Sleep(time.Second)
			continue
		}

		if err := endSession(operator, sessionID, loc); err != nil {
			log.WithError(err).Error("session end failed")
			continue
		}
		log.WithField("session_id", sessionID).Info("session ended")
	}

	log.Info("simulation complete")
}
