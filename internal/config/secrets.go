package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultSecretsPath = "/var/run/secrets/idm"
	usernameFile       = "username"
	passwordFile       = "password"
	mqttPasswordFile   = "mqtt_password"
)

type secretValues struct {
	username     string
	password     string
	mqttPassword string
}

// tryLoadFromSecrets reads credentials from mounted Kubernetes secret files.
// Missing directories or files yield empty values, not errors.
func tryLoadFromSecrets() (secretValues, error) {
	secretsPath := os.Getenv("IDM_SECRETS_PATH")
	if secretsPath == "" {
		secretsPath = defaultSecretsPath
	}

	if _, err := os.Stat(secretsPath); os.IsNotExist(err) {
		return secretValues{}, nil
	}

	var s secretValues
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{usernameFile, &s.username},
		{passwordFile, &s.password},
		{mqttPasswordFile, &s.mqttPassword},
	} {
		data, err := os.ReadFile(filepath.Join(secretsPath, f.name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return secretValues{}, err
		}
		*f.dst = strings.TrimSpace(string(data))
	}

	return s, nil
}
