package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const defaultSettingsFile = "/etc/imunode.yaml"

type settings struct {
	SPIChannel     int    `yaml:"spi_channel" json:"SPIChannel"`
	SPISpeedHz     int    `yaml:"spi_speed_hz" json:"SPISpeedHz"`
	I2CBus         int    `yaml:"i2c_bus" json:"I2CBus"`
	ListenAddr     string `yaml:"listen_addr" json:"ListenAddr"`
	PushIntervalMs int    `yaml:"push_interval_ms" json:"PushIntervalMs"`
	LEDPin         int    `yaml:"led_pin" json:"LEDPin"`
	LogDir         string `yaml:"log_dir" json:"LogDir"`
	Debug          bool   `yaml:"debug" json:"Debug"`
}

var (
	globalSettings settings
	settingsFile   string
)

func defaultSettings() settings {
	return settings{
		SPIChannel:     0,
		SPISpeedHz:     1000000,
		I2CBus:         1,
		ListenAddr:     ":8080",
		PushIntervalMs: 100,
		LEDPin:         -1, // disabled unless the board wires one
		LogDir:         "/var/log/imunode",
		Debug:          false,
	}
}

// loadSettings reads the yaml settings file, falling back to defaults and
// writing them out when the file does not exist yet.
func loadSettings(path string) {
	settingsFile = path
	globalSettings = defaultSettings()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Infof("settings: %s not found, writing defaults", path)
		saveSettings()
	} else if err != nil {
		log.Warnf("settings: couldn't read %s, using defaults: %v", path, err)
	} else if err := yaml.Unmarshal(raw, &globalSettings); err != nil {
		log.Errorf("settings: bad yaml in %s, using defaults: %v", path, err)
		globalSettings = defaultSettings()
	}

	if globalSettings.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func saveSettings() {
	raw, err := yaml.Marshal(&globalSettings)
	if err != nil {
		log.Errorf("settings: marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(settingsFile, raw, 0644); err != nil {
		log.Errorf("settings: couldn't write %s: %v", settingsFile, err)
	}
}
