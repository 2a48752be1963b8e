package process

import (
	"log/slog"

	"github.com/sfomuseum/go-photos-geojson/operations/gather"
)

// Summary counts the outcome of every file considered by Processor.Run.
type Summary struct {
	Scanned     int `json:"scanned"`
	Written     int `json:"written"`
	Ignored     int `json:"ignored"`
	NoGPS       int `json:"no_gps"`
	Malformed   int `json:"malformed"`
	NoTimestamp int `json:"no_timestamp"`
	Duplicate   int `json:"duplicate"`
	Failed      int `json:"failed"`
	// Paths of photos with malformed GPS metadata.
	MalformedPaths []string `json:"malformed_paths,omitempty"`
}

// NewSummary returns an empty Summary.
func NewSummary() *Summary {

	s := &Summary{
		MalformedPaths: make([]string, 0),
	}

	return s
}

// Add counts 'rsp'.
func (s *Summary) Add(rsp *gather.GatherPhotoResponse) {

	s.Scanned += 1

	switch rsp.Status {
	case gather.StatusIgnored:
		s.Ignored += 1
	case gather.StatusNoGPS:
		s.NoGPS += 1
	case gather.StatusMalformed:
		s.Malformed += 1
		s.MalformedPaths = append(s.MalformedPaths, rsp.Path)
	case gather.StatusNoTimestamp:
		s.NoTimestamp += 1
	case gather.StatusDuplicate:
		s.Duplicate += 1
	case gather.StatusFailed:
		s.Failed += 1
	default:
		// pass
	}
}

// Skipped returns the number of images that did not produce a record.
func (s *Summary) Skipped() int {
	return s.NoGPS + s.Malformed + s.NoTimestamp + s.Duplicate + s.Failed
}

// Log writes 's' to 'logger' at the info level.
func (s *Summary) Log(logger *slog.Logger) {

	logger.Info("Complete!",
		"scanned", s.Scanned,
		"written", s.Written,
		"skipped", s.Skipped(),
		"ignored", s.Ignored,
		"no_gps", s.NoGPS,
		"malformed", s.Malformed,
		"no_timestamp", s.NoTimestamp,
		"duplicate", s.Duplicate,
		"failed", s.Failed,
	)
}
