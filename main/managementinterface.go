package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/websocket"

	"imunode/sensors"
)

// AJAX call - /data. Responds with the current sensor reading in the fixed
// schema the desktop client consumes, straight off the sample cache.
func handleDataRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	var buf [sensors.RecordSize]byte
	out := currentReading().AppendJSON(buf[:0])
	w.Write(append(out, '\n'))
}

// AJAX call - /status. Responds with uptime, device states and counters.
func handleStatusRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	rep := submitCommand(cmdStatus)
	statusJSON, _ := json.Marshal(&rep.Status)
	fmt.Fprintf(w, "%s\n", statusJSON)
}

// AJAX call - /settings. Responds with the active settings.
func handleSettingsRequest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	settingsJSON, _ := json.Marshal(&globalSettings)
	fmt.Fprintf(w, "%s\n", settingsJSON)
}

// commandHandler runs one operator command through the core loop.
func commandHandler(kind commandKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		rep := submitCommand(kind)
		resp := struct {
			OK     bool   `json:"ok"`
			WhoAmI string `json:"whoAmI,omitempty"`
			Error  string `json:"error,omitempty"`
		}{OK: rep.Err == nil}
		if kind == cmdDiagIMU {
			resp.WhoAmI = fmt.Sprintf("%#02x", rep.WhoAmI)
		}
		if rep.Err != nil {
			resp.Error = rep.Err.Error()
		}
		out, _ := json.Marshal(resp)
		fmt.Fprintf(w, "%s\n", out)
	}
}

// readingSender pushes the current reading to a websocket client at the
// configured interval until the client goes away.
func readingSender(conn *websocket.Conn) {
	timer := time.NewTicker(time.Duration(globalSettings.PushIntervalMs) * time.Millisecond)
	defer timer.Stop()
	for {
		<-timer.C
		var buf [sensors.RecordSize]byte
		if _, err := conn.Write(currentReading().AppendJSON(buf[:0])); err != nil {
			break
		}
	}
}

func managementInterface() {
	http.HandleFunc("/data", handleDataRequest)
	http.HandleFunc("/status", handleStatusRequest)
	http.HandleFunc("/settings", handleSettingsRequest)
	http.HandleFunc("/diag", commandHandler(cmdDiagIMU))
	http.HandleFunc("/reconfig", commandHandler(cmdReconfigIMU))
	http.HandleFunc("/reprobe", commandHandler(cmdReprobeAngle))
	http.Handle("/ws", websocket.Handler(readingSender))
	http.Handle("/metrics", promhttp.Handler())

	log.Infof("management interface listening on %s", globalSettings.ListenAddr)
	if err := http.ListenAndServe(globalSettings.ListenAddr, nil); err != nil {
		log.Errorf("managementInterface ListenAndServe: %v", err)
	}
}
