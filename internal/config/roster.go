/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "errors"
    "fmt"
    "os"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/capacity"
    "gopkg.in/yaml.v3"
)

// LoadPolicy reads the roster/classification file and layers it over the
// built-in policy. A missing file yields the defaults.
func LoadPolicy(path string) (capacity.Policy, error) {
    def := capacity.DefaultPolicy()
    if path == "" { return def, nil }
    data, err := os.ReadFile(path)
    if err != nil {
        if errors.Is(err, os.ErrNotExist) { return def, nil }
        return def, fmt.Errorf("read roster: %w", err)
    }
    var file capacity.Policy
    if err := yaml.Unmarshal(data, &file); err != nil {
        return def, fmt.Errorf("parse roster %s: %w", path, err)
    }
    p := mergePolicy(def, file)
    if err := validatePolicy(p); err != nil {
        return def, fmt.Errorf("roster %s: %w", path, err)
    }
    return p, nil
}

// mergePolicy replaces every field the file sets; unset fields keep the default.
func mergePolicy(def, file capacity.Policy) capacity.Policy {
    p := def
    if file.RequestsProject != "" {
        p.RequestsProject = file.RequestsProject
        p.Requests.Project = file.RequestsProject
    }
    if file.RoadmapProject != "" { p.RoadmapProject = file.RoadmapProject }
    if len(file.HigherComplexityRequestTypes) > 0 { p.HigherComplexityRequestTypes = file.HigherComplexityRequestTypes }
    if len(file.InitiativeTypes) > 0 { p.InitiativeTypes = file.InitiativeTypes }
    if len(file.ImproveTypes) > 0 { p.ImproveTypes = file.ImproveTypes }
    if file.AssigneeOverrides != nil { p.AssigneeOverrides = file.AssigneeOverrides }
    if file.Requests.Prefix != "" { p.Requests.Prefix = file.Requests.Prefix }
    if file.Requests.Project != "" { p.Requests.Project = file.Requests.Project }
    if file.Requests.Rollup != "" { p.Requests.Rollup = file.Requests.Rollup }
    if len(file.Families) > 0 { p.Families = file.Families }
    if file.HoursPerDay > 0 { p.HoursPerDay = file.HoursPerDay }
    if len(file.Roster) > 0 { p.Roster = file.Roster }
    return p
}

func validatePolicy(p capacity.Policy) error {
    seen := map[string]bool{}
    for _, t := range p.Roster {
        if t.Name == "" { return errors.New("team without name") }
        if t.Engineers < 0 { return fmt.Errorf("team %s: negative engineer count", t.Name) }
        if seen[t.Name] { return fmt.Errorf("team %s listed twice", t.Name) }
        seen[t.Name] = true
    }
    for _, f := range p.Families {
        if f.Prefix == "" || f.Rollup == "" { return fmt.Errorf("family %q needs prefix and rollup", f.Project) }
    }
    return nil
}
