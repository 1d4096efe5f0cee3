package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a dev server listen address in format [host]:[port]
//	-s backend base URL for the client
//	-request-timeout outbound request timeout (e.g., "30s", "1m")
//	-l prompt library file path
//	-state-dir sync state directory
//	-device-name device display name used in conflict fork titles
//	-workspace workspace name registered on first personal sync
//	-i sync interval for the background job (e.g., "5m")
//	-concurrency parallel upload/download bound
//	-watch keep running, syncing every interval
//	-reset wipe the sync baseline for this scope and exit
//	-team team identifier for shared-library sync
//	-role team role: viewer, editor, admin or owner
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var baseURL string
	var requestTimeout time.Duration
	var libraryPath string
	var stateDir string
	var deviceName string
	var workspaceName string
	var syncInterval time.Duration
	var concurrency int
	var watch bool
	var reset bool
	var teamID string
	var teamRole string
	var jsonConfigPath string

	flag.Var(&serverAddress, "a", "Dev server listen address host:port")
	flag.StringVar(&baseURL, "s", "", "Backend base URL")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&libraryPath, "l", "", "Prompt library file path")
	flag.StringVar(&stateDir, "state-dir", "", "Sync state directory")
	flag.StringVar(&deviceName, "device-name", "", "Device display name")
	flag.StringVar(&workspaceName, "workspace", "", "Workspace name for first sync registration")
	flag.DurationVar(&syncInterval, "i", 0, "Background sync interval (e.g., 5m)")
	flag.IntVar(&concurrency, "concurrency", 0, "Parallel upload/download bound")
	flag.BoolVar(&watch, "watch", false, "Keep running and sync on an interval")
	flag.BoolVar(&reset, "reset", false, "Wipe the sync baseline for this scope and exit")
	flag.StringVar(&teamID, "team", "", "Team identifier")
	flag.StringVar(&teamRole, "role", "", "Team role (viewer, editor, admin, owner)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		Server: Server{
			HTTPAddress: serverAddress.String(),
		},
		Adapter: Adapter{
			BaseURL:        baseURL,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			LibraryPath: libraryPath,
			StateDir:    stateDir,
		},
		Sync: Sync{
			DeviceName:    deviceName,
			WorkspaceName: workspaceName,
			Interval:      syncInterval,
			Concurrency:   concurrency,
			Watch:         watch,
			Reset:         reset,
		},
		Team: Team{
			ID:   teamID,
			Role: teamRole,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
