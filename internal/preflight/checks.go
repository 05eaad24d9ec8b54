package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"newsreel/internal/config"
)

// Requirement defines an external binary the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// SystemRequirements lists the external binaries the configured pipeline
// needs. The local synthesizer binary is only required when the provider
// chain can reach it.
func SystemRequirements(cfg *config.Config) []Requirement {
	requirements := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for video compositing",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for render verification",
		},
	}
	for _, provider := range cfg.Speech.ProviderOrder {
		if strings.EqualFold(strings.TrimSpace(provider), "local") {
			binary := strings.TrimSpace(cfg.Speech.LocalBinary)
			if binary == "" {
				binary = "espeak-ng"
			}
			requirements = append(requirements, Requirement{
				Name:        "Local synthesizer",
				Command:     binary,
				Description: "Offline narration fallback",
				Optional:    true,
			})
			break
		}
	}
	return requirements
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Result {
	results := make([]Result, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		result := Result{Name: req.Name, Optional: req.Optional}
		switch {
		case cmd == "":
			result.Detail = "command not configured"
		default:
			if _, err := exec.LookPath(cmd); err != nil {
				result.Detail = fmt.Sprintf("binary %q not found", cmd)
			} else {
				result.Passed = true
				result.Detail = req.Description
			}
		}
		results = append(results, result)
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem holding path has at least minBytes free.
func CheckDiskSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minBytes {
		return Result{
			Name:   name,
			Detail: fmt.Sprintf("%s (%.1f GiB free, need %.1f GiB)", path, gib(free), gib(minBytes)),
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%.1f GiB free)", path, gib(free))}
}

// CheckSpeechCredentials reports missing credentials for the hosted providers
// in the configured chain. Missing keys are optional failures because the
// chain falls back to the next provider.
func CheckSpeechCredentials(cfg *config.Config) []Result {
	var results []Result
	for _, provider := range cfg.Speech.ProviderOrder {
		switch strings.ToLower(strings.TrimSpace(provider)) {
		case "elevenlabs":
			result := Result{Name: "ElevenLabs credentials", Optional: true}
			if strings.TrimSpace(cfg.Speech.ElevenLabsAPIKey) == "" {
				result.Detail = "api key missing; provider will be skipped"
			} else {
				result.Passed = true
				result.Detail = "api key configured"
			}
			results = append(results, result)
		case "azure":
			result := Result{Name: "Azure Speech credentials", Optional: true}
			switch {
			case strings.TrimSpace(cfg.Speech.AzureAPIKey) == "":
				result.Detail = "api key missing; provider will be skipped"
			case strings.TrimSpace(cfg.Speech.AzureRegion) == "":
				result.Detail = "region missing; provider will be skipped"
			default:
				result.Passed = true
				result.Detail = "api key and region configured"
			}
			results = append(results, result)
		}
	}
	return results
}

func gib(bytes uint64) float64 {
	return float64(bytes) / float64(1<<30)
}
