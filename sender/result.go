package sender

import "strings"

const (
	checkName    = "statsd"
	checkType    = "metric"
	checkHandler = "graphite"
)

// Check is a monitoring check result carrying metric lines
type Check struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Status  int    `json:"status"`
	Output  string `json:"output"`
	Handler string `json:"handler"`
}

// Result is the envelope published on every send cycle
type Result struct {
	Client string `json:"client"`
	Check  Check  `json:"check"`
}

// NewResult builds an envelope for the given lines;
// the output contains every line terminated with a newline
func NewResult(client string, lines []string) *Result {
	return &Result{
		Client: client,
		Check: Check{
			Name:    checkName,
			Type:    checkType,
			Status:  0,
			Output:  strings.Join(lines, "\n") + "\n",
			Handler: checkHandler,
		},
	}
}

// Lines returns metric lines from the output
func (r *Result) Lines() []string {
	output := strings.TrimSuffix(r.Check.Output, "\n")

	if output == "" {
		return nil
	}

	return strings.Split(output, "\n")
}
