package buildconfig

import "fmt"

// Jobs expands the jobs key into independent configs. Each job starts from
// the top-level mapping (without jobs) and overrides it key by key. A config
// without jobs yields itself as the only job.
//
// Both a plain list and a mapping with an "include" list are accepted.
func (c *Config) Jobs() ([]*Config, error) {
	raw, ok := c.data[KeyJobs]
	if !ok || raw == nil {
		return []*Config{c}, nil
	}

	var entries []any
	switch v := raw.(type) {
	case []any:
		entries = v
	case map[string]any:
		include, _ := v["include"].([]any)
		entries = include
	default:
		return nil, &ConfigurationError{Plugin: "jobs", Option: KeyJobs, Err: fmt.Errorf("expected a list, got %T", raw)}
	}
	if len(entries) == 0 {
		return []*Config{c}, nil
	}

	base := c.Map()
	delete(base, KeyJobs)

	jobs := make([]*Config, 0, len(entries))
	for i, entry := range entries {
		override, ok := entry.(map[string]any)
		if !ok {
			return nil, &ConfigurationError{Plugin: "jobs", Option: fmt.Sprintf("jobs[%d]", i), Err: fmt.Errorf("expected a mapping, got %T", entry)}
		}
		merged := deepCopyMap(base)
		for k, v := range override {
			merged[k] = deepCopyValue(v)
		}
		jobs = append(jobs, &Config{data: merged, dir: c.dir})
	}
	return jobs, nil
}
