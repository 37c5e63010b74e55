package client

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gigbook/internal/common"
)

// Environment selects how the API base URL is derived.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvDevelopment Environment = "development"
	// EnvEmulator reaches the host machine from an Android emulator.
	EnvEmulator Environment = "emulator"
	// EnvDevice reaches a development host by address from a physical device.
	EnvDevice Environment = "device"
)

const (
	ProductionBaseURL = "https://api.gigbook.app"
	emulatorHost      = "10.0.2.2"
)

// ResolveBaseURL returns explicit when it is set, otherwise the base URL for
// env. devHost is only used by EnvDevice; port by every non-production env.
func ResolveBaseURL(explicit string, env Environment, devHost string, port int) (string, error) {
	if explicit != "" {
		return strings.TrimRight(explicit, "/"), nil
	}

	hostURL := func(host string) string {
		return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
	}

	switch env {
	case EnvProduction, "":
		return ProductionBaseURL, nil
	case EnvDevelopment:
		return hostURL("localhost"), nil
	case EnvEmulator:
		return hostURL(emulatorHost), nil
	case EnvDevice:
		if devHost == "" {
			return "", fmt.Errorf("device environment needs a dev host: %w", common.ErrValidation)
		}
		return hostURL(devHost), nil
	default:
		return "", fmt.Errorf("unknown environment %q: %w", env, common.ErrValidation)
	}
}
