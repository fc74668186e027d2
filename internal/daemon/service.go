package daemon

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"

	"github.com/adrg/xdg"

	"github.com/manav03panchal/remindly/internal/logging"
)

// Service identifiers.
const (
	LaunchdLabel    = "com.remindly.daemon"
	SystemdUnitName = "remindly.service"
)

// ServiceManager installs the daemon as a per-user system service.
type ServiceManager struct {
	executablePath string
	dataFile       string
	paths          Paths
	goos           string
	home           string

	// run executes a service manager command; tests replace it.
	run func(name string, args ...string) ([]byte, error)
}

// NewServiceManager creates a service manager for the running binary.
func NewServiceManager(paths Paths, dataFile string) (*ServiceManager, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	return &ServiceManager{
		executablePath: execPath,
		dataFile:       dataFile,
		paths:          paths,
		goos:           runtime.GOOS,
		home:           xdg.Home,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).CombinedOutput()
		},
	}, nil
}

// Install installs and starts the service.
func (m *ServiceManager) Install() error {
	switch m.goos {
	case "darwin":
		return m.installLaunchd()
	case "linux":
		return m.installSystemd()
	default:
		return fmt.Errorf("service installation not supported on %s; use 'remindly daemon start'", m.goos)
	}
}

// Uninstall stops and removes the service.
func (m *ServiceManager) Uninstall() error {
	switch m.goos {
	case "darwin":
		return m.uninstallLaunchd()
	case "linux":
		return m.uninstallSystemd()
	default:
		return fmt.Errorf("service uninstallation not supported on %s", m.goos)
	}
}

// IsInstalled checks if the service definition exists.
func (m *ServiceManager) IsInstalled() bool {
	path := m.ServicePath()
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// ServicePath returns where the service definition is written, or "" on
// unsupported platforms.
func (m *ServiceManager) ServicePath() string {
	switch m.goos {
	case "darwin":
		return filepath.Join(m.home, "Library", "LaunchAgents", LaunchdLabel+".plist")
	case "linux":
		return filepath.Join(xdg.ConfigHome, "systemd", "user", SystemdUnitName)
	default:
		return ""
	}
}

type serviceData struct {
	ExecutablePath   string
	DataFile         string
	LogPath          string
	WorkingDirectory string
	HomeDirectory    string
	DataHome         string
	StateHome        string
	Label            string
}

func (m *ServiceManager) data() serviceData {
	return serviceData{
		ExecutablePath:   m.executablePath,
		DataFile:         m.dataFile,
		LogPath:          m.paths.Log(),
		WorkingDirectory: filepath.Dir(m.executablePath),
		HomeDirectory:    m.home,
		DataHome:         xdg.DataHome,
		StateHome:        xdg.StateHome,
		Label:            LaunchdLabel,
	}
}

func render(name, text string, data serviceData) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (m *ServiceManager) writeDefinition(name, text string) (string, error) {
	path := m.ServicePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create service directory: %w", err)
	}
	content, err := render(name, text, m.data())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// macOS launchd support

const launchdPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.ExecutablePath}}</string>
        <string>daemon</string>
        <string>start</string>
        <string>--foreground</string>
{{- if .DataFile}}
        <string>--file</string>
        <string>{{.DataFile}}</string>
{{- end}}
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
    <key>StandardOutPath</key>
    <string>{{.LogPath}}</string>
    <key>StandardErrorPath</key>
    <string>{{.LogPath}}</string>
    <key>WorkingDirectory</key>
    <string>{{.WorkingDirectory}}</string>
</dict>
</plist>
`

func (m *ServiceManager) installLaunchd() error {
	path, err := m.writeDefinition("plist", launchdPlist)
	if err != nil {
		return err
	}

	if output, err := m.run("launchctl", "load", path); err != nil {
		return fmt.Errorf("failed to load service: %w: %s", err, string(output))
	}

	logging.DebugLog("installed launchd service", logging.KeyPath, path)
	return nil
}

func (m *ServiceManager) uninstallLaunchd() error {
	path := m.ServicePath()

	// Not being loaded is fine.
	m.run("launchctl", "unload", path)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove plist file: %w", err)
	}

	logging.DebugLog("uninstalled launchd service", logging.KeyPath, path)
	return nil
}

// Linux systemd support

const systemdUnit = `[Unit]
Description=Remindly reminder scheduler
After=graphical-session.target

[Service]
Type=simple
ExecStart={{.ExecutablePath}} daemon start --foreground{{if .DataFile}} --file {{.DataFile}}{{end}}
Restart=on-failure
RestartSec=5
StandardOutput=append:{{.LogPath}}
StandardError=append:{{.LogPath}}
Environment="HOME={{.HomeDirectory}}"
Environment="XDG_DATA_HOME={{.DataHome}}"
Environment="XDG_STATE_HOME={{.StateHome}}"

[Install]
WantedBy=default.target
`

func (m *ServiceManager) installSystemd() error {
	path, err := m.writeDefinition("unit", systemdUnit)
	if err != nil {
		return err
	}

	steps := [][]string{
		{"systemctl", "--user", "daemon-reload"},
		{"systemctl", "--user", "enable", SystemdUnitName},
		{"systemctl", "--user", "start", SystemdUnitName},
	}
	for _, step := range steps {
		if output, err := m.run(step[0], step[1:]...); err != nil {
			return fmt.Errorf("%s failed: %w: %s", strings.Join(step, " "), err, string(output))
		}
	}

	logging.DebugLog("installed systemd user service", logging.KeyPath, path)
	return nil
}

func (m *ServiceManager) uninstallSystemd() error {
	path := m.ServicePath()

	// Stop and disable may fail if the unit is not active; that is fine.
	m.run("systemctl", "--user", "stop", SystemdUnitName)
	m.run("systemctl", "--user", "disable", SystemdUnitName)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove unit file: %w", err)
	}

	m.run("systemctl", "--user", "daemon-reload")

	logging.DebugLog("uninstalled systemd user service", logging.KeyPath, path)
	return nil
}
