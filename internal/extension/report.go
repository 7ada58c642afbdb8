package extension

import "time"

// Result is the outcome of loading one extension.
type Result struct {
	ExtensionID   string        `json:"extensionId"`
	State         State         `json:"state"`
	Contributions int           `json:"contributions"`
	Elapsed       time.Duration `json:"elapsed"`
	Err           error         `json:"-"`
	Error         string        `json:"error,omitempty"`
}

// Report summarizes a LoadAll pass.
type Report struct {
	PassID  string   `json:"passId"`
	Results []Result `json:"results"`
}

// Loaded returns the ids of extensions that registered, in load order.
func (r Report) Loaded() []string {
	var ids []string
	for _, res := range r.Results {
		if res.Err == nil {
			ids = append(ids, res.ExtensionID)
		}
	}
	return ids
}

// Failed returns the results that carry an error.
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}
