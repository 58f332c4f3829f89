package scan

import (
	"strconv"
	"strings"
)

// Class is the coarse category a raw line falls into.
type Class int

const (
	// ClassNoise marks lines to discard: empty lines, boot chatter, and
	// malformed data rows. Noise is expected in the stream and is never an
	// error.
	ClassNoise Class = iota
	// ClassData marks a well-formed measurement row.
	ClassData
	// ClassStatus marks a recognized device status or banner line.
	ClassStatus
)

// StatusKind categorizes a recognized status line.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusScanStarted
	StatusScanComplete
	StatusDeviceError
)

func (k StatusKind) String() string {
	switch k {
	case StatusScanStarted:
		return "scan_started"
	case StatusScanComplete:
		return "scan_complete"
	case StatusDeviceError:
		return "device_error"
	default:
		return "info"
	}
}

// StatusEvent is a recognized non-data line, surfaced to the session observer.
// VerticalAngle is set when the line carries a per-band angle (for example
// "Scan complete at vertical angle 45").
type StatusEvent struct {
	Kind          StatusKind
	Message       string
	VerticalAngle *float64
}

// Result is the outcome of classifying one raw line. Fields is populated for
// ClassData, Status for ClassStatus.
type Result struct {
	Class  Class
	Schema SchemaID
	Fields []float64
	Status StatusEvent
}

// StatusPhrase binds a substring to the status kind it signals.
type StatusPhrase struct {
	Match string
	Kind  StatusKind
}

// Classifier decides whether a raw line is measurement data, a status
// message, or noise. Classification is a pure function of line content; the
// classifier holds only configuration.
type Classifier struct {
	noiseMarkers  []string
	statusPhrases []StatusPhrase
	// schemas restricts which field layouts are accepted as data. Empty
	// means all known layouts.
	schemas map[SchemaID]bool
}

// DefaultNoiseMarkers are ESP32 boot-chatter fragments. Lines containing them
// are plain noise, not status: they are ROM diagnostics the host never acts
// on, and they can embed commas and numbers that would confuse field parsing.
func DefaultNoiseMarkers() []string {
	return []string{"SPIWP:", "clk_drv:", "mode:", "load:"}
}

// DefaultStatusPhrases are the banner substrings the known firmware variants
// emit. Matching is case-sensitive substring containment; the phrase sets are
// disjoint in practice so first match wins.
func DefaultStatusPhrases() []StatusPhrase {
	return []StatusPhrase{
		{Match: "Failed", Kind: StatusDeviceError},
		{Match: "error", Kind: StatusDeviceError},
		{Match: "Scan complete", Kind: StatusScanComplete},
		{Match: "Starting", Kind: StatusScanStarted},
		{Match: "Scanner initialized", Kind: StatusInfo},
		{Match: "initialized", Kind: StatusInfo},
		{Match: "Scanning at vertical angle", Kind: StatusInfo},
		{Match: "ready", Kind: StatusInfo},
		{Match: "configured", Kind: StatusInfo},
		{Match: "detected", Kind: StatusInfo},
	}
}

// NewClassifier builds a classifier from explicit marker and phrase sets.
// Nil slices select the defaults. Passing no schemas accepts every known
// layout.
func NewClassifier(noiseMarkers []string, statusPhrases []StatusPhrase, schemas ...SchemaID) *Classifier {
	if noiseMarkers == nil {
		noiseMarkers = DefaultNoiseMarkers()
	}
	if statusPhrases == nil {
		statusPhrases = DefaultStatusPhrases()
	}
	c := &Classifier{
		noiseMarkers:  noiseMarkers,
		statusPhrases: statusPhrases,
	}
	if len(schemas) > 0 {
		c.schemas = make(map[SchemaID]bool, len(schemas))
		for _, s := range schemas {
			c.schemas[s] = true
		}
	}
	return c
}

// DefaultClassifier returns a classifier with the default marker and phrase
// sets, accepting all known schemas.
func DefaultClassifier() *Classifier {
	return NewClassifier(nil, nil)
}

// Classify categorizes one raw line. Status detection runs before numeric
// parsing because banner lines can incidentally contain commas and numbers.
func (c *Classifier) Classify(line string) Result {
	line = strings.TrimSpace(line)
	if line == "" {
		return Result{Class: ClassNoise}
	}

	for _, marker := range c.noiseMarkers {
		if strings.Contains(line, marker) {
			return Result{Class: ClassNoise}
		}
	}

	for _, phrase := range c.statusPhrases {
		if strings.Contains(line, phrase.Match) {
			return Result{
				Class:  ClassStatus,
				Status: statusEvent(phrase.Kind, line),
			}
		}
	}

	parts := strings.Split(line, ",")
	schema := SchemaForFieldCount(len(parts))
	if schema == SchemaUnknown {
		return Result{Class: ClassNoise}
	}
	if c.schemas != nil && !c.schemas[schema] {
		return Result{Class: ClassNoise}
	}

	fields := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			// Malformed data rows are expected in the stream; the
			// session counts them so they stay observable.
			return Result{Class: ClassNoise}
		}
		fields[i] = v
	}

	return Result{Class: ClassData, Schema: schema, Fields: fields}
}

// statusEvent builds the event for a matched status line, extracting a
// trailing vertical angle when the line ends with a number (the firmware
// appends the band angle to per-band progress and completion messages).
func statusEvent(kind StatusKind, line string) StatusEvent {
	ev := StatusEvent{Kind: kind, Message: line}
	if angle, ok := trailingNumber(line); ok {
		ev.VerticalAngle = &angle
	}
	return ev
}

// trailingNumber parses a float from the last whitespace-separated token of
// the line, tolerating trailing punctuation like "°" or "!".
func trailingNumber(line string) (float64, bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return 0, false
	}
	last := strings.TrimRight(tokens[len(tokens)-1], "°!.:")
	v, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
