package msclust

// Reporter is the injected progress-reporting boundary: the core never owns a process-wide gauge or document
// registry, it only calls into whatever the caller supplies.
type Reporter interface {
	// Next advances the progress counter by one unit of work.
	Next()
	// SetValue sets the progress to an absolute percentage in [0,100].
	SetValue(pct float64)
	// Blink signals a momentary "still alive" pulse with no progress
	// change, for long steps that don't have natural sub-units.
	Blink()
}

// NopReporter is a Reporter that does nothing; it is the zero value used
// when a caller passes a nil Reporter.
type NopReporter struct{}

func (NopReporter) Next()             {}
func (NopReporter) SetValue(_ float64) {}
func (NopReporter) Blink()            {}
