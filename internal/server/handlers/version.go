package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"

	"github.com/fulmenhq/gofulmen/crucible"

	"github.com/scryinline/scryinline/internal/scryfall"
)

// Build metadata, set once from main through SetVersionInfo.
var (
	AppName      = "scryinline"
	AppVersion   = "dev"
	AppCommit    = "unknown"
	AppBuildDate = "unknown"
)

func SetVersionInfo(version, commit, buildDate string) {
	AppVersion = version
	AppCommit = commit
	AppBuildDate = buildDate
}

// SetAppName overrides the name reported by /version. Empty names are ignored.
func SetAppName(name string) {
	if name != "" {
		AppName = name
	}
}

// ServiceInfo describes how this instance answers inline queries.
type ServiceInfo struct {
	ScryfallAPI  string `json:"scryfall_api"`
	AnswerViaAPI bool   `json:"answer_via_api"`
	MaxResults   int    `json:"max_results"`
}

var (
	serviceMu   sync.RWMutex
	serviceInfo = ServiceInfo{ScryfallAPI: scryfall.DefaultBaseURL}
)

// SetServiceInfo records the serving configuration reported by /version.
// An empty ScryfallAPI keeps the public API root.
func SetServiceInfo(info ServiceInfo) {
	if info.ScryfallAPI == "" {
		info.ScryfallAPI = scryfall.DefaultBaseURL
	}
	serviceMu.Lock()
	serviceInfo = info
	serviceMu.Unlock()
}

func currentServiceInfo() ServiceInfo {
	serviceMu.RLock()
	defer serviceMu.RUnlock()
	return serviceInfo
}

type VersionResponse struct {
	App          AppInfo     `json:"app"`
	Service      ServiceInfo `json:"service"`
	Dependencies DepInfo     `json:"dependencies"`
	Runtime      RuntimeInfo `json:"runtime"`
}

type AppInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

type DepInfo struct {
	Gofulmen string `json:"gofulmen"`
	Crucible string `json:"crucible"`
}

type RuntimeInfo struct {
	Platform      string `json:"platform"`
	NumCPU        int    `json:"num_cpu"`
	NumGoroutines int    `json:"num_goroutines"`
}

func buildVersionResponse() VersionResponse {
	deps := crucible.GetVersion()
	return VersionResponse{
		App: AppInfo{
			Name:      AppName,
			Version:   AppVersion,
			Commit:    AppCommit,
			BuildDate: AppBuildDate,
			GoVersion: runtime.Version(),
		},
		Service:      currentServiceInfo(),
		Dependencies: DepInfo{Gofulmen: deps.Gofulmen, Crucible: deps.Crucible},
		Runtime: RuntimeInfo{
			Platform:      runtime.GOOS + "/" + runtime.GOARCH,
			NumCPU:        runtime.NumCPU(),
			NumGoroutines: runtime.NumGoroutine(),
		},
	}
}

// VersionHandler serves GET /version.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(buildVersionResponse())
}
