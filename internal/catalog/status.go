// Package catalog loads the read-only symptom and facility reference data.
//
// Loading never fails: a missing or unreadable file yields an empty catalog
// whose Status explains why, so the process can still start and report the
// condition through its health endpoint.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// State is the load outcome of a catalog
type State string

const (
	// StateActive means records were loaded
	StateActive State = "active"
	// StateNoData means the source was missing or contained no usable records
	StateNoData State = "no data"
	// StateDegraded means the source exists but could not be parsed
	StateDegraded State = "degraded"
)

// Status describes how a catalog was loaded
type Status struct {
	State    State    `json:"status"`
	Source   string   `json:"source,omitempty"`
	Records  int      `json:"records"`
	Reason   string   `json:"reason,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Healthy reports whether the catalog holds usable data.
func (s Status) Healthy() bool {
	return s.State == StateActive
}

func (s *Status) warnf(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// readDocument reads path and decodes it into out, choosing YAML for .yaml
// and .yml files and JSON otherwise. The returned status is already set to
// no-data or degraded when err is non-nil.
func readDocument(path string, out any) (Status, error) {
	status := Status{Source: path}

	data, err := os.ReadFile(path)
	if err != nil {
		status.State = StateNoData
		if errors.Is(err, os.ErrNotExist) {
			status.Reason = "file not found"
		} else {
			status.Reason = err.Error()
		}
		return status, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		err = json.Unmarshal(data, out)
	}
	if err != nil {
		status.State = StateDegraded
		status.Reason = fmt.Sprintf("malformed catalog: %v", err)
		return status, err
	}

	return status, nil
}

func finalize(status *Status, count int) {
	status.Records = count
	if status.State != "" {
		return
	}
	if count == 0 {
		status.State = StateNoData
		status.Reason = "catalog contains no usable records"
		return
	}
	status.State = StateActive
}

// dedupeStrings trims entries, drops empties and keeps the first spelling of
// case-insensitive duplicates.
func dedupeStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
