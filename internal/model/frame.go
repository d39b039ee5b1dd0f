package model

import "time"

// ScoredFrame is a preprocessed frame carried through a burst: the image it
// owns, the segmentation located on it, and its quality score. The consumer
// must call Release exactly once.
type ScoredFrame struct {
	Image   *GrayImage
	Seg     Segmentation
	Quality QualityScore
	strip   *NormalizedStrip // cached by the controller once normalized, may be nil
}

// Strip returns the cached normalized strip for this frame, if computed.
func (f *ScoredFrame) Strip() *NormalizedStrip {
	if f == nil {
		return nil
	}
	return f.strip
}

// SetStrip caches the normalized strip for this frame.
func (f *ScoredFrame) SetStrip(s *NormalizedStrip) {
	if f != nil {
		f.strip = s
	}
}

// Release drops the frame's owned resources. GrayImage is plain Go memory,
// so Release is a no-op beyond nil-ing references defensively; it exists so
// callers have a single place to extend if a frame later owns a gocv handle.
func (f *ScoredFrame) Release() {
	if f == nil {
		return
	}
	f.Image = nil
	f.strip = nil
}

// SubjectRecord is an enrolled subject: identity, opaque demographic
// fields, and one or more templates from the same eye.
type SubjectRecord struct {
	ID             string
	FirstName      string
	LastName       string
	Age            int
	Email          string
	Phone          string
	Notes          string
	IrisImagePath  string
	Templates      []*Template
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
