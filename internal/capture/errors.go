package capture

import "errors"

// Error taxonomy from spec.md §7. SegmentationFailed and EncodingTooNoisy
// are not declared here: they stay in the producing packages
// (segmentation.ErrSegmentationFailed, encode.ErrTooNoisy). The values
// below are the session/burst-level outcomes specific to the controller.
var (
	ErrQualityTooLow       = errors.New("capture: burst produced no template above the minimum score")
	ErrInconsistent        = errors.New("capture: templates within a burst disagree")
	ErrRepositoryUnavailable = errors.New("capture: repository adapter unavailable")
	ErrCameraUnavailable   = errors.New("capture: camera unavailable")
)
