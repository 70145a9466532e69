package scraper

import "fmt"

// NavigationError reports a failure while driving the portal: navigation,
// form interaction, or waiting for the results to render.
type NavigationError struct {
	Stage string
	Err   error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("portal navigation failed at %s: %v", e.Stage, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// ExtractionError reports that a scrape produced no usable data: the results
// table was missing or contained no data rows.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "extraction failed: " + e.Reason
}
