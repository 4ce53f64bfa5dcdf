package calibration

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/agbru/karacalc/internal/karatsuba"
)

const (
	// CurrentProfileVersion is bumped whenever the meaning of a stored
	// threshold changes, which invalidates older profiles.
	CurrentProfileVersion = 1
	// DefaultProfileFileName is the profile file stored in the home
	// directory.
	DefaultProfileFileName = ".karacalc_calibration.json"
	// MaxProfileAge is the age after which a cached profile is ignored.
	MaxProfileAge = 30 * 24 * time.Hour
)

// CalibrationProfile is the persisted result of a calibration run. It is
// only reused on the machine it was measured on.
type CalibrationProfile struct {
	ProfileVersion int       `json:"profile_version"`
	CalibratedAt   time.Time `json:"calibrated_at"`

	NumCPU    int    `json:"num_cpu"`
	GOARCH    string `json:"goarch"`
	GOOS      string `json:"goos"`
	GoVersion string `json:"go_version"`
	WordSize  int    `json:"word_size"`

	// OptimalCutoff is the fastest base-case threshold measured.
	OptimalCutoff uint32 `json:"optimal_cutoff"`
	// OptimalParallelThreshold is the fastest parallel threshold, in
	// digits, or 0 when sequential recursion won.
	OptimalParallelThreshold int `json:"optimal_parallel_threshold"`

	CalibrationDigits int    `json:"calibration_digits"`
	CalibrationTime   string `json:"calibration_time"`
}

// NewProfile returns an empty profile describing the current machine.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		ProfileVersion: CurrentProfileVersion,
		CalibratedAt:   time.Now(),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
	}
}

// SaveProfile writes the profile as indented JSON, creating the parent
// directory if needed.
func (p *CalibrationProfile) SaveProfile(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating profile directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding calibration profile: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing calibration profile: %w", err)
	}
	return nil
}

func loadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading calibration profile: %w", err)
	}
	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding calibration profile %s: %w", path, err)
	}
	return &p, nil
}

// IsValid reports whether the profile was produced by this version on
// matching hardware and holds usable thresholds.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	return p.ProfileVersion == CurrentProfileVersion &&
		p.NumCPU == runtime.NumCPU() &&
		p.GOARCH == runtime.GOARCH &&
		p.WordSize == 32<<(^uint(0)>>63) &&
		(p.OptimalCutoff == 0 || (p.OptimalCutoff >= karatsuba.DefaultCutoff && p.OptimalCutoff <= karatsuba.MaxCutoff)) &&
		p.OptimalParallelThreshold >= 0
}

// IsStale reports whether the profile is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

func (p *CalibrationProfile) String() string {
	parallel := "sequential"
	if p.OptimalParallelThreshold > 0 {
		parallel = fmt.Sprintf("%d digits", p.OptimalParallelThreshold)
	}
	return fmt.Sprintf("Calibration profile v%d (%s/%s, %d CPUs, %s): cutoff=%d, parallel threshold=%s, measured on %d-digit operands at %s",
		p.ProfileVersion, p.GOOS, p.GOARCH, p.NumCPU, p.GoVersion,
		p.OptimalCutoff, parallel, p.CalibrationDigits, p.CalibratedAt.Format(time.RFC3339))
}

// LoadOrCreateProfile loads the profile at path. When it is missing,
// unreadable or invalid a fresh profile is returned with loaded false.
func LoadOrCreateProfile(path string) (profile *CalibrationProfile, loaded bool) {
	p, err := loadProfile(path)
	if err != nil || !p.IsValid() {
		return NewProfile(), false
	}
	return p, true
}

// GetDefaultProfilePath returns the profile path in the user's home
// directory, or in the working directory when there is none.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

// resolveProfilePath returns path, or the default path when it is empty.
func resolveProfilePath(path string) string {
	if path == "" {
		return GetDefaultProfilePath()
	}
	return path
}

var errNoKaratsuba = errors.New("calibration needs the karatsuba calculator")
